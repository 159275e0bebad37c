// internal/services/invoice_words.go
package services

import (
	"fmt"
	"math"
	"strings"
)

var (
	onesWords = []string{"", "One", "Two", "Three", "Four", "Five", "Six",
		"Seven", "Eight", "Nine", "Ten", "Eleven", "Twelve", "Thirteen",
		"Fourteen", "Fifteen", "Sixteen", "Seventeen", "Eighteen", "Nineteen"}
	tensWords = []string{"", "", "Twenty", "Thirty", "Forty", "Fifty",
		"Sixty", "Seventy", "Eighty", "Ninety"}
)

// amountInWords spells out a currency amount for the invoice footer,
// e.g. 1250.50 becomes "One Thousand Two Hundred and Fifty Rand and
// Fifty Cents".
func amountInWords(amount float64, currency string) string {
	if amount < 0 {
		amount = 0
	}

	whole := int(amount)
	cents := int(math.Round((amount - float64(whole)) * 100))
	if cents == 100 {
		whole++
		cents = 0
	}

	words := numberToWords(whole)
	result := fmt.Sprintf("%s %s", words, currency)
	if cents > 0 {
		result += fmt.Sprintf(" and %s Cents", numberToWords(cents))
	}
	return result
}

func numberToWords(n int) string {
	if n == 0 {
		return "Zero"
	}

	var parts []string

	if n >= 1000000 {
		parts = append(parts, numberToWords(n/1000000), "Million")
		n %= 1000000
	}
	if n >= 1000 {
		parts = append(parts, numberToWords(n/1000), "Thousand")
		n %= 1000
	}
	if n >= 100 {
		parts = append(parts, onesWords[n/100], "Hundred")
		n %= 100
	}
	if n > 0 {
		if len(parts) > 0 {
			parts = append(parts, "and")
		}
		if n < 20 {
			parts = append(parts, onesWords[n])
		} else {
			word := tensWords[n/10]
			if n%10 > 0 {
				word += " " + onesWords[n%10]
			}
			parts = append(parts, word)
		}
	}

	return strings.Join(parts, " ")
}
