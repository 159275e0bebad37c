// internal/utils/crypto.go
package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

func GenerateRandomString(length int) (string, error) {
	const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	b := make([]byte, length)

	for i := range b {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		b[i] = charset[n.Int64()]
	}

	return string(b), nil
}

// GenerateDispatchPin returns the 6-digit one-time code set on an order
// when it is marked dispatched.
func GenerateDispatchPin() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

// GenerateCouponCode returns a REWARD-XXXXXX code for issued coupons.
func GenerateCouponCode() (string, error) {
	randomPart, err := GenerateRandomString(6)
	if err != nil {
		return "", err
	}
	return "REWARD-" + randomPart, nil
}
