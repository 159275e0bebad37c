// internal/utils/crypto_test.go
package utils

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateDispatchPin(t *testing.T) {
	pinPattern := regexp.MustCompile(`^[1-9][0-9]{5}$`)

	for i := 0; i < 50; i++ {
		pin, err := GenerateDispatchPin()
		require.NoError(t, err)
		assert.Regexp(t, pinPattern, pin)
	}
}

func TestGenerateCouponCode(t *testing.T) {
	codePattern := regexp.MustCompile(`^REWARD-[A-Z0-9]{6}$`)

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		code, err := GenerateCouponCode()
		require.NoError(t, err)
		assert.Regexp(t, codePattern, code)
		seen[code] = true
	}

	// 50 draws from a 36^6 space should not collide
	assert.Greater(t, len(seen), 45)
}

func TestGenerateRandomString(t *testing.T) {
	s, err := GenerateRandomString(12)
	require.NoError(t, err)
	assert.Len(t, s, 12)
}
