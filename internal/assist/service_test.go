package assist

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/knuut/knuut-api/internal/ailog"
	"github.com/knuut/knuut-api/internal/assist/openai"
	"github.com/knuut/knuut-api/internal/consent"
	"github.com/knuut/knuut-api/internal/privacy"
)

type fakeChatClient struct {
	lastReq *openai.ChatRequest
	result  *openai.ChatResult
	err     error
}

func (c *fakeChatClient) Complete(_ context.Context, req openai.ChatRequest) (*openai.ChatResult, error) {
	c.lastReq = &req
	if c.err != nil {
		return nil, c.err
	}
	return c.result, nil
}

type fakeConsents struct {
	flags consent.Flags
	err   error
}

func (c *fakeConsents) CurrentConsent(context.Context, string) (consent.Flags, error) {
	return c.flags, c.err
}

type fakeKillSwitch struct {
	disabled bool
}

func (k *fakeKillSwitch) IsAIAssistDisabled(context.Context) bool {
	return k.disabled
}

type assistFixture struct {
	service  *Service
	client   *fakeChatClient
	consents *fakeConsents
	flags    *fakeKillSwitch
	logs     *ailog.InMemoryRepository
}

func newAssistFixture() *assistFixture {
	tokens := 42
	client := &fakeChatClient{
		result: &openai.ChatResult{
			Content:    "Voisitko auttaa minua? (Could you help me?)",
			Model:      "gpt-4o-mini",
			TokensUsed: tokens,
		},
	}
	consents := &fakeConsents{flags: consent.Flags{GDPR: true, AIProcessing: true}}
	flags := &fakeKillSwitch{}
	logs := ailog.NewInMemoryRepository()

	return &assistFixture{
		service: NewService(ServiceConfig{
			Consents:     consents,
			Client:       client,
			Interactions: logs,
			Flags:        flags,
			Logger:       zerolog.Nop(),
		}),
		client:   client,
		consents: consents,
		flags:    flags,
		logs:     logs,
	}
}

func TestWorkplacePhrase(t *testing.T) {
	f := newAssistFixture()

	suggestion, err := f.service.WorkplacePhrase(context.Background(), PhraseRequest{
		UserID:  "usr_1",
		Text:    "How do I ask my boss for a day off?",
		Context: "vacation request",
	})

	require.NoError(t, err)
	assert.Equal(t, "Voisitko auttaa minua? (Could you help me?)", suggestion.Phrase)
	assert.Equal(t, "gpt-4o-mini", suggestion.Model)

	// The provider sees the pseudonymized handle, never the identifier.
	require.NotNil(t, f.client.lastReq)
	assert.Equal(t, privacy.Pseudonymize("usr_1"), f.client.lastReq.UserHandle)
	assert.NotContains(t, f.client.lastReq.Prompt, "usr_1")
	assert.Contains(t, f.client.lastReq.Prompt, "vacation request")

	logged, err := f.logs.ListByHash(context.Background(), privacy.Pseudonymize("usr_1"))
	require.NoError(t, err)
	require.Len(t, logged, 1)
	assert.Equal(t, "workplace-language", logged[0].Topic)
	assert.Equal(t, ailog.StatusSuccess, logged[0].Status)
	require.NotNil(t, logged[0].TokensUsed)
	assert.Equal(t, 42, *logged[0].TokensUsed)
}

func TestWorkplacePhraseSanitizesInput(t *testing.T) {
	f := newAssistFixture()

	_, err := f.service.WorkplacePhrase(context.Background(), PhraseRequest{
		UserID: "usr_1",
		Text:   "My email is amina@example.com, how do I introduce myself?",
	})

	require.NoError(t, err)
	assert.NotContains(t, f.client.lastReq.Prompt, "amina@example.com")
	assert.Contains(t, f.client.lastReq.Prompt, "[EMAIL]")
}

func TestWorkplacePhraseRequiresConsent(t *testing.T) {
	f := newAssistFixture()
	f.consents.flags = consent.Flags{GDPR: true, AIProcessing: false}

	_, err := f.service.WorkplacePhrase(context.Background(), PhraseRequest{
		UserID: "usr_1",
		Text:   "hello",
	})

	require.ErrorIs(t, err, ErrConsentRequired)
	assert.Nil(t, f.client.lastReq)

	// Nothing is logged for a refused request.
	logged, _ := f.logs.ListByHash(context.Background(), privacy.Pseudonymize("usr_1"))
	assert.Empty(t, logged)
}

func TestWorkplacePhraseKillSwitch(t *testing.T) {
	f := newAssistFixture()
	f.flags.disabled = true

	_, err := f.service.WorkplacePhrase(context.Background(), PhraseRequest{
		UserID: "usr_1",
		Text:   "hello",
	})

	require.ErrorIs(t, err, ErrAssistDisabled)
	assert.Nil(t, f.client.lastReq)
}

func TestWorkplacePhraseRejectsUnsafeInput(t *testing.T) {
	f := newAssistFixture()

	_, err := f.service.WorkplacePhrase(context.Background(), PhraseRequest{
		UserID: "usr_1",
		Text:   "a@b.com c@d.com e@f.com say hi",
	})

	require.ErrorIs(t, err, privacy.ErrTooManyEmails)
	assert.Nil(t, f.client.lastReq)
}

func TestWorkplacePhraseProviderFailureLogged(t *testing.T) {
	f := newAssistFixture()
	f.client.err = openai.ErrUnavailable

	_, err := f.service.WorkplacePhrase(context.Background(), PhraseRequest{
		UserID: "usr_1",
		Text:   "hello",
	})

	require.ErrorIs(t, err, openai.ErrUnavailable)

	logged, _ := f.logs.ListByHash(context.Background(), privacy.Pseudonymize("usr_1"))
	require.Len(t, logged, 1)
	assert.Equal(t, ailog.StatusError, logged[0].Status)
}

func TestWorkplacePhraseConsentLookupFailure(t *testing.T) {
	f := newAssistFixture()
	f.consents.err = errors.New("connection refused")

	_, err := f.service.WorkplacePhrase(context.Background(), PhraseRequest{
		UserID: "usr_1",
		Text:   "hello",
	})

	require.Error(t, err)
	assert.Nil(t, f.client.lastReq)
}
