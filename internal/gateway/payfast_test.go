// internal/gateway/payfast_test.go
package gateway

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ghanadude/backend/internal/config"
)

func TestBuildReference(t *testing.T) {
	assert.Equal(t, "ORDER_42", BuildReference(KindOrder, 42))
	assert.Equal(t, "BULKORDER_7", BuildReference(KindBulkOrder, 7))
}

func TestParseReference(t *testing.T) {
	kind, id, err := ParseReference("ORDER_42")
	require.NoError(t, err)
	assert.Equal(t, KindOrder, kind)
	assert.Equal(t, uint(42), id)

	kind, id, err = ParseReference("BULKORDER_7")
	require.NoError(t, err)
	assert.Equal(t, KindBulkOrder, kind)
	assert.Equal(t, uint(7), id)
}

func TestParseReferenceRejectsMalformedInput(t *testing.T) {
	cases := []string{
		"",
		"ORDER_",
		"ORDER_abc",
		"ORDER_0",
		"ORDER-42",
		"42",
		"INVOICE_42",
		"ORDER_-3",
	}

	for _, ref := range cases {
		_, _, err := ParseReference(ref)
		assert.Error(t, err, "reference %q should not parse", ref)

		var invalid *ErrInvalidReference
		assert.ErrorAs(t, err, &invalid)
	}
}

func TestRoundTripReference(t *testing.T) {
	for _, kind := range []AggregateKind{KindOrder, KindBulkOrder} {
		ref := BuildReference(kind, 913)
		gotKind, gotID, err := ParseReference(ref)
		require.NoError(t, err)
		assert.Equal(t, kind, gotKind)
		assert.Equal(t, uint(913), gotID)
	}
}

func TestBuildCheckoutForm(t *testing.T) {
	client := NewClient(config.PaymentConfig{
		GatewayURL:  "https://sandbox.payfast.co.za/eng/process",
		MerchantID:  "10000100",
		MerchantKey: "46f0cd694581a",
		ReturnURL:   "https://shop.example.com/return",
		CancelURL:   "https://shop.example.com/cancel",
		NotifyURL:   "https://shop.example.com/v1/payments/notify",
		Passphrase:  "secret phrase",
	})

	form := client.BuildCheckoutForm("ORDER_42", "Order #42", "buyer@example.com", 335.0)

	assert.Equal(t, "https://sandbox.payfast.co.za/eng/process", form.URL)
	assert.Equal(t, "ORDER_42", form.Fields["m_payment_id"])
	assert.Equal(t, "335.00", form.Fields["amount"])
	assert.Equal(t, "10000100", form.Fields["merchant_id"])
	assert.NotEmpty(t, form.Fields["signature"])
	assert.Len(t, form.Fields["signature"], 32)
}

func TestSignIsDeterministicAndPassphraseSensitive(t *testing.T) {
	fields := []field{
		{"merchant_id", "10000100"},
		{"m_payment_id", "ORDER_1"},
		{"amount", "100.00"},
	}

	a := Sign(fields, "pass one")
	b := Sign(fields, "pass one")
	c := Sign(fields, "pass two")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestSignSkipsEmptyFields(t *testing.T) {
	withEmpty := []field{
		{"merchant_id", "10000100"},
		{"return_url", ""},
		{"amount", "100.00"},
	}
	without := []field{
		{"merchant_id", "10000100"},
		{"amount", "100.00"},
	}

	assert.Equal(t, Sign(without, ""), Sign(withEmpty, ""))
}
