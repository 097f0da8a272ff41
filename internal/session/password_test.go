package session

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword_RoundTrip(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("café-com-leite")
	require.NoError(t, err)

	ok, err := VerifyPassword("café-com-leite", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword("café-com-leite ", hash)
	require.NoError(t, err)
	assert.False(t, ok, "trailing space must not verify")

	ok, err = VerifyPassword("", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHashPassword_SaltsAreRandom(t *testing.T) {
	t.Parallel()

	first, err := HashPassword("segredo")
	require.NoError(t, err)
	second, err := HashPassword("segredo")
	require.NoError(t, err)

	assert.NotEqual(t, first, second, "same password must hash differently each time")

	// Both still verify
	for _, hash := range []string{first, second} {
		ok, err := VerifyPassword("segredo", hash)
		require.NoError(t, err)
		assert.True(t, ok)
	}
}

func TestHashPassword_PHCFormat(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("segredo")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(hash, "$argon2id$v=19$m=65536,t=1,p=8$"), "got %q", hash)
	assert.Len(t, strings.Split(hash, "$"), 6)
}

func TestVerifyPassword_RejectsUnusableHashes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		encoded       string
		errorContains string
	}{
		{
			name:          "empty string",
			encoded:       "",
			errorContains: "malformed",
		},
		{
			name:          "not a PHC string",
			encoded:       "5e884898da28047151d0e56f8dc629277",
			errorContains: "malformed",
		},
		{
			name:          "wrong algorithm",
			encoded:       "$argon2i$v=19$m=65536,t=1,p=8$c2FsdHNhbHRzYWx0c2FsdA$a2V5a2V5a2V5a2V5a2V5a2V5a2V5a2V5a2V5a2V5",
			errorContains: "unsupported hash algorithm",
		},
		{
			name:          "wrong version",
			encoded:       "$argon2id$v=18$m=65536,t=1,p=8$c2FsdHNhbHRzYWx0c2FsdA$a2V5a2V5a2V5a2V5a2V5a2V5a2V5a2V5a2V5a2V5",
			errorContains: "unsupported argon2 version",
		},
		{
			name:          "garbled parameters",
			encoded:       "$argon2id$v=19$m=sixtyfour$c2FsdHNhbHRzYWx0c2FsdA$a2V5a2V5a2V5a2V5a2V5a2V5a2V5a2V5a2V5a2V5",
			errorContains: "malformed",
		},
		{
			name:          "invalid salt encoding",
			encoded:       "$argon2id$v=19$m=65536,t=1,p=8$!!!$a2V5a2V5a2V5a2V5a2V5a2V5a2V5a2V5a2V5a2V5",
			errorContains: "malformed",
		},
		{
			name:          "missing key section",
			encoded:       "$argon2id$v=19$m=65536,t=1,p=8$c2FsdHNhbHRzYWx0c2FsdA",
			errorContains: "malformed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ok, err := VerifyPassword("qualquer", tt.encoded)
			assert.False(t, ok)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorContains)
		})
	}
}
