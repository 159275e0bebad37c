// internal/services/invoice_words_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNumberToWords(t *testing.T) {
	cases := []struct {
		n    int
		want string
	}{
		{0, "Zero"},
		{7, "Seven"},
		{13, "Thirteen"},
		{20, "Twenty"},
		{42, "Forty Two"},
		{100, "One Hundred"},
		{105, "One Hundred and Five"},
		{999, "Nine Hundred and Ninety Nine"},
		{1000, "One Thousand"},
		{1250, "One Thousand Two Hundred and Fifty"},
		{2000000, "Two Million"},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, numberToWords(tc.n), "n=%d", tc.n)
	}
}

func TestAmountInWords(t *testing.T) {
	assert.Equal(t, "Fifty Rand", amountInWords(50, "Rand"))
	assert.Equal(t, "Fifty Rand and Twenty Five Cents", amountInWords(50.25, "Rand"))
	assert.Equal(t, "Zero Rand", amountInWords(0, "Rand"))
	assert.Equal(t, "Zero Rand", amountInWords(-10, "Rand"))

	// Cents that round up to a whole unit
	assert.Equal(t, "Ten Rand", amountInWords(9.999, "Rand"))
}
