// internal/handlers/payment_test.go
package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ghanadude/backend/internal/config"
	"github.com/ghanadude/backend/internal/services"
)

func newNotifyRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)

	// Malformed-reference rejection happens before any database access,
	// so the service can run without a connection here.
	svc := services.NewPaymentService(nil, &config.Config{}, nil, nil)
	h := NewPaymentHandler(svc)

	r := gin.New()
	r.POST("/v1/payments/notify", h.Notify)
	return r
}

func postNotify(t *testing.T, r *gin.Engine, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/v1/payments/notify", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestNotifyRejectsMalformedReference(t *testing.T) {
	r := newNotifyRouter()

	cases := []string{
		"m_payment_id=GARBAGE&payment_status=COMPLETE",
		"m_payment_id=ORDER_&payment_status=COMPLETE",
		"m_payment_id=ORDER_abc&payment_status=COMPLETE",
		"m_payment_id=ORDER_0&payment_status=COMPLETE",
		"payment_status=COMPLETE",
	}

	for _, body := range cases {
		w := postNotify(t, r, body)
		assert.Equal(t, http.StatusBadRequest, w.Code, "body=%s", body)
	}
}

func TestNotifyIgnoresInterimStatus(t *testing.T) {
	r := newNotifyRouter()

	// A parseable reference with an unrecognized status is acknowledged
	// without touching the aggregate.
	w := postNotify(t, r, "m_payment_id=ORDER_42&payment_status=PENDING")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestParseOrderedForm(t *testing.T) {
	values, order, err := parseOrderedForm("b=2&a=1&c=hello+world")
	require.NoError(t, err)

	assert.Equal(t, []string{"b", "a", "c"}, order)
	assert.Equal(t, "2", values.Get("b"))
	assert.Equal(t, "1", values.Get("a"))
	assert.Equal(t, "hello world", values.Get("c"))
}

func TestParseOrderedFormEmpty(t *testing.T) {
	values, order, err := parseOrderedForm("")
	require.NoError(t, err)
	assert.Empty(t, order)
	assert.Empty(t, values)
}
