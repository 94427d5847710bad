package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lastochka/messenger/internal/apperr"
)

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		username string
		email    string
		reason   string
	}{
		{name: "valid", password: "s3cure-pass!", username: "alice", email: "alice@example.com"},
		{name: "too short", password: "a1!", reason: "password-policy/too-short"},
		{name: "multibyte counts runes not bytes", password: "пар0ль!", reason: "password-policy/too-short"},
		{name: "no digit", password: "password!", reason: "password-policy/no-digit"},
		{name: "no letter", password: "12345678!", reason: "password-policy/no-letter"},
		{name: "no punctuation", password: "password1", reason: "password-policy/no-punctuation"},
		{name: "equals email", password: "a1!b@example.com", email: "a1!b@example.com", reason: "password-policy/equals-email"},
		{name: "equals username ignoring case", password: "Al1ce-User!", username: "al1ce-user!", reason: "password-policy/equals-username"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password, tt.username, tt.email)
			if tt.reason == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, apperr.KindBadRequest, apperr.KindOf(err))
			assert.Equal(t, tt.reason, apperr.ReasonOf(err))
		})
	}
}

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("s3cure-pass!")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cure-pass!", hash)

	assert.True(t, CheckPasswordHash("s3cure-pass!", hash))
	assert.False(t, CheckPasswordHash("wrong-pass1!", hash))
}
