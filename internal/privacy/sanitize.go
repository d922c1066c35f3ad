package privacy

import (
	"errors"
	"regexp"
	"strings"
)

// Sanitization errors.
var (
	// ErrTooManyEmails indicates the input carries more email addresses
	// than a legitimate phrase request would.
	ErrTooManyEmails = errors.New("too many email addresses detected")

	// ErrTooManyPhones indicates the input carries more phone numbers
	// than a legitimate phrase request would.
	ErrTooManyPhones = errors.New("too many phone numbers detected")
)

var (
	emailPattern = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)

	// Finnish and international phone formats. The word boundary sits
	// inside the alternation: \b can never match before a literal '+'.
	phonePattern     = regexp.MustCompile(`(?:\+358|\b0)[\s-]?\d{2,3}[\s-]?\d{3,4}[\s-]?\d{2,4}\b`)
	longDigitPattern = regexp.MustCompile(`\b\d{10,}\b`)

	addressPattern = regexp.MustCompile(`(?i)\b\d+\s+[A-Za-z\s]+(?:Street|Avenue|Road|Katu|Tie|Kuja|Keskusta|Kylä)\b`)

	// Finnish personal identity code (henkilötunnus).
	ssnPattern = regexp.MustCompile(`(?i)\b\d{6}[-+A]\d{3}[A-Z0-9]\b`)

	cardPattern = regexp.MustCompile(`\b\d{4}[\s-]?\d{4}[\s-]?\d{4}[\s-]?\d{4}\b`)
)

// Sanitize strips personally identifiable information from free text before
// it is forwarded to an external processor, replacing each match with a
// category placeholder.
func Sanitize(input string) string {
	s := emailPattern.ReplaceAllString(input, "[EMAIL]")
	s = phonePattern.ReplaceAllString(s, "[PHONE]")
	s = longDigitPattern.ReplaceAllString(s, "[PHONE]")
	s = addressPattern.ReplaceAllString(s, "[ADDRESS]")
	s = ssnPattern.ReplaceAllString(s, "[SSN]")
	s = cardPattern.ReplaceAllString(s, "[CARD]")
	return strings.TrimSpace(s)
}

// CheckInputSafety rejects inputs that look like bulk PII rather than a
// phrase to translate. Sanitize would scrub them anyway; this guard exists
// so obviously misdirected submissions fail loudly instead of silently
// losing most of their content.
func CheckInputSafety(input string) error {
	if len(emailPattern.FindAllString(input, 3)) > 2 {
		return ErrTooManyEmails
	}
	if len(phonePattern.FindAllString(input, 3)) > 2 {
		return ErrTooManyPhones
	}
	return nil
}
