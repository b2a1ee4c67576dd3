package auth

import (
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation"
)

// ViolationCode is a stable, locale-agnostic identifier for a single failed
// rule. Clients map codes to localized messages; the engine never emits
// message strings.
type ViolationCode int

const (
	ViolationTooShort ViolationCode = iota + 1
	ViolationTooLong
	ViolationInvalidCharacters
	ViolationInvalidFormat
	ViolationMissingLowercase
	ViolationMissingUppercase
	ViolationMissingDigit
	ViolationMissingSpecialCharacter
	ViolationTaken
)

// ValidationResult collects every failed rule for one value. OK is true iff
// Violations is empty.
type ValidationResult struct {
	OK         bool            `json:"result"`
	Violations []ViolationCode `json:"details"`
}

const (
	usernameMinLen = 8
	usernameMaxLen = 20
	passwordMinLen = 10
)

var (
	usernameCharset = regexp.MustCompile(`^[A-Za-z0-9._-]*$`)
	emailShape      = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	hasLowercase    = regexp.MustCompile(`[a-z]`)
	hasUppercase    = regexp.MustCompile(`[A-Z]`)
	hasDigit        = regexp.MustCompile(`[0-9]`)
	hasSpecial      = regexp.MustCompile(`[^a-zA-Z0-9]`)
)

// check runs a single ozzo rule and appends the code when it fails. Rules
// run independently so the caller sees every violation at once.
func check(violations []ViolationCode, value string, code ViolationCode, rules ...validation.Rule) []ViolationCode {
	if err := validation.Validate(value, rules...); err != nil {
		violations = append(violations, code)
	}
	return violations
}

func result(violations []ViolationCode) ValidationResult {
	return ValidationResult{OK: len(violations) == 0, Violations: violations}
}

// ValidateUsername checks length bounds and the allowed character set.
func ValidateUsername(s string) (ValidationResult, error) {
	if s == "" {
		return ValidationResult{}, ErrNoEmptyString
	}

	violations := []ViolationCode{}
	violations = check(violations, s, ViolationTooShort, validation.RuneLength(usernameMinLen, 0))
	violations = check(violations, s, ViolationTooLong, validation.RuneLength(0, usernameMaxLen))
	violations = check(violations, s, ViolationInvalidCharacters, validation.Match(usernameCharset))

	return result(violations), nil
}

// ValidateEmail checks the local@domain.tld shape.
func ValidateEmail(s string) (ValidationResult, error) {
	if s == "" {
		return ValidationResult{}, ErrNoEmptyString
	}

	violations := []ViolationCode{}
	violations = check(violations, s, ViolationInvalidFormat, validation.Match(emailShape))

	return result(violations), nil
}

// ValidatePassword checks minimum length and the four character classes.
// Every rule is evaluated; none short-circuits the others. Length counts
// runes, not bytes, so multibyte characters each count once.
func ValidatePassword(s string) (ValidationResult, error) {
	if s == "" {
		return ValidationResult{}, ErrNoEmptyString
	}

	violations := []ViolationCode{}
	violations = check(violations, s, ViolationMissingLowercase, validation.Match(hasLowercase))
	violations = check(violations, s, ViolationMissingUppercase, validation.Match(hasUppercase))
	violations = check(violations, s, ViolationMissingDigit, validation.Match(hasDigit))
	violations = check(violations, s, ViolationMissingSpecialCharacter, validation.Match(hasSpecial))
	violations = check(violations, s, ViolationTooShort, validation.RuneLength(passwordMinLen, 0))

	return result(violations), nil
}
