package privacy_test

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"

	"github.com/knuut/knuut-api/internal/privacy"
)

func TestPseudonymize_Deterministic(t *testing.T) {
	first := privacy.Pseudonymize("usr_a1b2c3")
	for i := 0; i < 1000; i++ {
		assert.Equal(t, first, privacy.Pseudonymize("usr_a1b2c3"))
	}
}

func TestPseudonymize_HandleShape(t *testing.T) {
	handle := privacy.Pseudonymize("usr_a1b2c3")
	assert.Len(t, handle, privacy.HandleLength)
	assert.Regexp(t, "^[0-9a-f]+$", handle)

	// The handle must not leak the identifier itself.
	assert.NotContains(t, handle, "usr_")
}

func TestPseudonymize_KnownVector(t *testing.T) {
	// SHA-256("") = e3b0c44298fc1c14..., truncated to 16 hex chars.
	assert.Equal(t, "e3b0c44298fc1c14", privacy.Pseudonymize(""))
}

func TestPseudonymize_DistinctInputsDistinctHandles(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 500

	properties := gopter.NewProperties(parameters)

	properties.Property("distinct identifiers yield distinct handles", prop.ForAll(
		func(a, b string) bool {
			if a == b {
				return privacy.Pseudonymize(a) == privacy.Pseudonymize(b)
			}
			return privacy.Pseudonymize(a) != privacy.Pseudonymize(b)
		},
		gen.Identifier(),
		gen.Identifier(),
	))

	properties.Property("handle length is constant", prop.ForAll(
		func(a string) bool {
			return len(privacy.Pseudonymize(a)) == privacy.HandleLength
		},
		gen.AnyString(),
	))

	properties.TestingRun(t)
}
