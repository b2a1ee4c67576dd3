package auth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skostadinov0141/soulforger-sr6-backend-api/auth"
)

func TestValidateUsername(t *testing.T) {
	tests := []struct {
		name     string
		username string
		want     []auth.ViolationCode
	}{
		{
			name:     "valid username",
			username: "valid_user123",
			want:     []auth.ViolationCode{},
		},
		{
			name:     "all allowed characters",
			username: "aA0._-bcde",
			want:     []auth.ViolationCode{},
		},
		{
			name:     "too short",
			username: "ab",
			want:     []auth.ViolationCode{auth.ViolationTooShort},
		},
		{
			name:     "too long",
			username: "this_username_is_way_too_long",
			want:     []auth.ViolationCode{auth.ViolationTooLong},
		},
		{
			name:     "invalid characters reported once",
			username: "bad user!!",
			want:     []auth.ViolationCode{auth.ViolationInvalidCharacters},
		},
		{
			name:     "short and invalid at once",
			username: "a b",
			want:     []auth.ViolationCode{auth.ViolationTooShort, auth.ViolationInvalidCharacters},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := auth.ValidateUsername(tt.username)

			require.NoError(t, err)
			assert.Equal(t, len(tt.want) == 0, res.OK)
			assert.ElementsMatch(t, tt.want, res.Violations)
		})
	}

	t.Run("empty username is a precondition failure", func(t *testing.T) {
		_, err := auth.ValidateUsername("")
		assert.Equal(t, auth.ErrNoEmptyString, err)
	})
}

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		name  string
		email string
		want  []auth.ViolationCode
	}{
		{
			name:  "valid email",
			email: "a@x.com",
			want:  []auth.ViolationCode{},
		},
		{
			name:  "missing tld",
			email: "user@host",
			want:  []auth.ViolationCode{auth.ViolationInvalidFormat},
		},
		{
			name:  "missing at sign",
			email: "user.host.com",
			want:  []auth.ViolationCode{auth.ViolationInvalidFormat},
		},
		{
			name:  "whitespace",
			email: "user name@host.com",
			want:  []auth.ViolationCode{auth.ViolationInvalidFormat},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := auth.ValidateEmail(tt.email)

			require.NoError(t, err)
			assert.Equal(t, len(tt.want) == 0, res.OK)
			assert.ElementsMatch(t, tt.want, res.Violations)
		})
	}

	t.Run("empty email is a precondition failure", func(t *testing.T) {
		_, err := auth.ValidateEmail("")
		assert.Equal(t, auth.ErrNoEmptyString, err)
	})
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		want     []auth.ViolationCode
	}{
		{
			name:     "valid password",
			password: "Abcdef1!gh",
			want:     []auth.ViolationCode{},
		},
		{
			name:     "missing uppercase and special",
			password: "abcdefgh12",
			want: []auth.ViolationCode{
				auth.ViolationMissingUppercase,
				auth.ViolationMissingSpecialCharacter,
			},
		},
		{
			name:     "everything wrong at once",
			password: "a",
			want: []auth.ViolationCode{
				auth.ViolationMissingUppercase,
				auth.ViolationMissingDigit,
				auth.ViolationMissingSpecialCharacter,
				auth.ViolationTooShort,
			},
		},
		{
			name:     "long but single class",
			password: "aaaaaaaaaaaa",
			want: []auth.ViolationCode{
				auth.ViolationMissingUppercase,
				auth.ViolationMissingDigit,
				auth.ViolationMissingSpecialCharacter,
			},
		},
		{
			name:     "short but all classes",
			password: "Ab1!",
			want:     []auth.ViolationCode{auth.ViolationTooShort},
		},
		{
			name:     "multibyte characters count once",
			password: "Aää1!aaaa",
			want:     []auth.ViolationCode{auth.ViolationTooShort},
		},
		{
			name:     "ten runes of multibyte input pass",
			password: "Aää1!aaaaa",
			want:     []auth.ViolationCode{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := auth.ValidatePassword(tt.password)

			require.NoError(t, err)
			assert.Equal(t, len(tt.want) == 0, res.OK)
			assert.ElementsMatch(t, tt.want, res.Violations)
		})
	}

	t.Run("empty password is a precondition failure", func(t *testing.T) {
		_, err := auth.ValidatePassword("")
		assert.Equal(t, auth.ErrNoEmptyString, err)
	})
}
