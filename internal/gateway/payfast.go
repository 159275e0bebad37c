// internal/gateway/payfast.go

// Package gateway implements the hosted-redirect payment gateway
// integration: building the signed form the client is redirected with and
// the opaque payment references its webhook notifications carry.
package gateway

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/ghanadude/backend/internal/config"
)

// AggregateKind distinguishes the two order aggregates inside a payment
// reference.
type AggregateKind string

const (
	KindOrder     AggregateKind = "ORDER"
	KindBulkOrder AggregateKind = "BULKORDER"
)

const (
	orderPrefix     = "ORDER_"
	bulkOrderPrefix = "BULKORDER_"
)

// ErrInvalidReference is returned when a webhook payment identifier does
// not parse. The webhook handler maps it to a permanent-reject response.
type ErrInvalidReference struct {
	Reference string
}

func (e *ErrInvalidReference) Error() string {
	return fmt.Sprintf("invalid payment reference %q", e.Reference)
}

// BuildReference encodes an aggregate into the m_payment_id sent to the
// gateway, e.g. ORDER_42 or BULKORDER_7.
func BuildReference(kind AggregateKind, id uint) string {
	return fmt.Sprintf("%s_%d", kind, id)
}

// ParseReference decodes an m_payment_id back into the aggregate kind and
// numeric id.
func ParseReference(ref string) (AggregateKind, uint, error) {
	var kind AggregateKind
	var raw string

	switch {
	case strings.HasPrefix(ref, bulkOrderPrefix):
		kind = KindBulkOrder
		raw = strings.TrimPrefix(ref, bulkOrderPrefix)
	case strings.HasPrefix(ref, orderPrefix):
		kind = KindOrder
		raw = strings.TrimPrefix(ref, orderPrefix)
	default:
		return "", 0, &ErrInvalidReference{Reference: ref}
	}

	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return "", 0, &ErrInvalidReference{Reference: ref}
	}

	return kind, uint(id), nil
}

// PaymentStatus values posted by the gateway webhook.
const (
	StatusComplete  = "COMPLETE"
	StatusCancelled = "CANCELLED"
)

type Client struct {
	cfg config.PaymentConfig
}

func NewClient(cfg config.PaymentConfig) *Client {
	return &Client{cfg: cfg}
}

// field preserves the gateway's required parameter ordering; the signature
// is computed over the fields in this order, not sorted.
type field struct {
	name  string
	value string
}

// CheckoutForm holds everything a client needs to drive the hosted
// checkout page for one aggregate.
type CheckoutForm struct {
	URL    string            `json:"url"`
	Fields map[string]string `json:"fields"`
}

// BuildCheckoutForm assembles the signed redirect form for a payment of
// amount against the given reference.
func (c *Client) BuildCheckoutForm(reference, itemName, email string, amount float64) CheckoutForm {
	fields := []field{
		{"merchant_id", c.cfg.MerchantID},
		{"merchant_key", c.cfg.MerchantKey},
		{"return_url", c.cfg.ReturnURL},
		{"cancel_url", c.cfg.CancelURL},
		{"notify_url", c.cfg.NotifyURL},
		{"email_address", email},
		{"m_payment_id", reference},
		{"amount", fmt.Sprintf("%.2f", amount)},
		{"item_name", itemName},
	}

	out := make(map[string]string, len(fields)+1)
	for _, f := range fields {
		if f.value != "" {
			out[f.name] = f.value
		}
	}
	out["signature"] = Sign(fields, c.cfg.Passphrase)

	return CheckoutForm{URL: c.cfg.GatewayURL, Fields: out}
}

// Sign computes the gateway's MD5 request signature: the non-empty fields
// url-encoded in order, with the passphrase appended last.
func Sign(fields []field, passphrase string) string {
	var b strings.Builder
	for _, f := range fields {
		if f.value == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('&')
		}
		b.WriteString(f.name)
		b.WriteByte('=')
		b.WriteString(encode(f.value))
	}
	if passphrase != "" {
		b.WriteString("&passphrase=")
		b.WriteString(encode(passphrase))
	}

	sum := md5.Sum([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

// VerifySignature checks the signature on an incoming webhook payload.
// The gateway signs the parameters in the order it posted them, which is
// the same order it received them in.
func (c *Client) VerifySignature(form url.Values, order []string) bool {
	got := form.Get("signature")
	if got == "" {
		return false
	}

	fields := make([]field, 0, len(order))
	for _, name := range order {
		if name == "signature" {
			continue
		}
		fields = append(fields, field{name: name, value: form.Get(name)})
	}

	return Sign(fields, c.cfg.Passphrase) == got
}

// encode matches the gateway's encoding: url query escaping with spaces
// as '+' and upper-case hex, which is what net/url produces.
func encode(v string) string {
	return url.QueryEscape(v)
}
