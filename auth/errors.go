package auth

import (
	goerrors "github.com/goliatone/go-errors"
)

// Text codes exposed to API clients for programmatic error handling.
const (
	TextCodeAccountNotFound       = "ACCOUNT_NOT_FOUND"
	TextCodeInvalidCreds          = "INVALID_CREDENTIALS"
	TextCodeTokenExpired          = "TOKEN_EXPIRED"
	TextCodeTokenMalformed        = "TOKEN_MALFORMED"
	TextCodeTokenBadSignature     = "TOKEN_BAD_SIGNATURE"
	TextCodeNoSuchAccount         = "NO_SUCH_ACCOUNT"
	TextCodeInsufficientPrivilege = "INSUFFICIENT_PRIVILEGE"
	TextCodeApplicationNotFound   = "APPLICATION_NOT_FOUND"
	TextCodeValidationFailed      = "VALIDATION_FAILED"
	TextCodeIdentifierTaken       = "IDENTIFIER_TAKEN"
	TextCodeEmptyValue            = "EMPTY_VALUE"
	TextCodeMalformedID           = "MALFORMED_ID"
)

// ErrAccountNotFound is returned when no active account matches the username.
var ErrAccountNotFound = goerrors.New("no account with that username", goerrors.CategoryNotFound).
	WithTextCode(TextCodeAccountNotFound).
	WithCode(goerrors.CodeNotFound)

// ErrBadPassword is returned when the password does not match the stored hash.
var ErrBadPassword = goerrors.New("incorrect password", goerrors.CategoryAuth).
	WithTextCode(TextCodeInvalidCreds).
	WithCode(goerrors.CodeBadRequest)

// ErrTokenExpired is returned for tokens past their expiry.
var ErrTokenExpired = goerrors.New("token is expired", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired).
	WithCode(goerrors.CodeForbidden)

// ErrTokenMalformed is returned for tokens that cannot be decoded, including
// tokens whose subject is not a valid account identifier.
var ErrTokenMalformed = goerrors.New("token is malformed", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenMalformed).
	WithCode(goerrors.CodeBadRequest)

// ErrTokenBadSignature is returned when the signature does not verify.
var ErrTokenBadSignature = goerrors.New("token signature is invalid", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenBadSignature).
	WithCode(goerrors.CodeBadRequest)

// ErrNoSuchAccount is returned when a valid token points at an account that
// no longer exists in the active partition.
var ErrNoSuchAccount = goerrors.New("no account associated with that token", goerrors.CategoryNotFound).
	WithTextCode(TextCodeNoSuchAccount).
	WithCode(goerrors.CodeNotFound)

// ErrInsufficientPrivilege is returned when the caller's privilege level does
// not clear the required tier.
var ErrInsufficientPrivilege = goerrors.New("insufficient privilege", goerrors.CategoryAuthz).
	WithTextCode(TextCodeInsufficientPrivilege).
	WithCode(goerrors.CodeForbidden)

// ErrApplicationNotFound is returned when the review target is absent from
// both pending partitions.
var ErrApplicationNotFound = goerrors.New("application not found", goerrors.CategoryNotFound).
	WithTextCode(TextCodeApplicationNotFound).
	WithCode(goerrors.CodeNotFound)

// ErrIdentifierTaken is returned when a username or email already exists in
// any partition.
var ErrIdentifierTaken = goerrors.New("username or email already in use", goerrors.CategoryConflict).
	WithTextCode(TextCodeIdentifierTaken).
	WithCode(goerrors.CodeBadRequest)

// ErrNoEmptyString is the precondition failure for empty inputs, distinct
// from a format violation.
var ErrNoEmptyString = goerrors.New("value must not be empty", goerrors.CategoryValidation).
	WithTextCode(TextCodeEmptyValue).
	WithCode(goerrors.CodeBadRequest)

// ErrMalformedID is returned when a client-supplied record id does not parse.
var ErrMalformedID = goerrors.New("malformed record id", goerrors.CategoryBadInput).
	WithTextCode(TextCodeMalformedID).
	WithCode(goerrors.CodeBadRequest)

// newValidationError builds the multi-reason validation failure of the error
// taxonomy. Violations are keyed by field so clients see every failing rule
// at once.
func newValidationError(details map[string][]ViolationCode) *goerrors.Error {
	return goerrors.New("validation failed", goerrors.CategoryValidation).
		WithTextCode(TextCodeValidationFailed).
		WithCode(goerrors.CodeBadRequest).
		WithMetadata(map[string]any{"details": details})
}

// wrapStoreError tags document store failures so the boundary reports them
// as server-side errors instead of client mistakes.
func wrapStoreError(err error, msg string) *goerrors.Error {
	return goerrors.Wrap(err, goerrors.CategoryInternal, msg).
		WithCode(goerrors.CodeInternal)
}
