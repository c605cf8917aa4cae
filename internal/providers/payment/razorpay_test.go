package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pinobite/storefront/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRazorpayCreateOrder(t *testing.T) {
	var got types.CreateOrderRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/orders", r.URL.Path)

		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "rzp_test_key", user)
		assert.Equal(t, "s3cret", pass)

		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"order_Abc123","entity":"order","amount":102000,"currency":"INR","receipt":"order_7","status":"created"}`))
	}))
	defer srv.Close()

	g, err := NewRazorpayGateway("rzp_test_key", "", "s3cret", srv.URL+"/", time.Second)
	require.NoError(t, err)

	order, err := g.CreateOrder(context.Background(), types.CreateOrderRequest{Amount: 102000, Currency: "INR", Receipt: "order_7"})
	require.NoError(t, err)

	assert.Equal(t, "order_Abc123", order.ID)
	assert.Equal(t, int64(102000), order.Amount)
	assert.Equal(t, int64(102000), got.Amount)
	assert.Equal(t, "order_7", got.Receipt)
}

func TestRazorpayCreateOrderAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"code":"BAD_REQUEST_ERROR","description":"Authentication failed"}}`))
	}))
	defer srv.Close()

	g, err := NewRazorpayGateway("rzp_test_key", "", "wrong", srv.URL, time.Second)
	require.NoError(t, err)

	_, err = g.CreateOrder(context.Background(), types.CreateOrderRequest{Amount: 100, Currency: "INR"})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
}

func TestNewRazorpayGatewayReadsSecretFromEnv(t *testing.T) {
	t.Setenv("TEST_RAZORPAY_SECRET", "from-env")

	g, err := NewRazorpayGateway("rzp_test_key", "TEST_RAZORPAY_SECRET", "", "https://api.razorpay.com", 0)
	require.NoError(t, err)
	assert.Equal(t, "from-env", g.keySecret)

	_, err = NewRazorpayGateway("rzp_test_key", "TEST_UNSET_SECRET", "", "https://api.razorpay.com", 0)
	assert.Error(t, err)
}

func TestVerifySignature(t *testing.T) {
	g, err := NewRazorpayGateway("rzp_test_key", "", "s3cret", "https://api.razorpay.com", 0)
	require.NoError(t, err)

	// hex(HMAC-SHA256("s3cret", "order_1|pay_1"))
	sig := sign("s3cret", "order_1", "pay_1")
	require.Len(t, sig, 64)

	assert.NoError(t, g.VerifySignature("order_1", "pay_1", sig))
	assert.ErrorIs(t, g.VerifySignature("order_1", "pay_2", sig), ErrSignatureMismatch)
	assert.ErrorIs(t, g.VerifySignature("order_1", "pay_1", "deadbeef"), ErrSignatureMismatch)
	assert.ErrorIs(t, g.VerifySignature("order_1", "pay_1", ""), ErrSignatureMismatch)
}

func TestMockGatewaySignsLikeRazorpay(t *testing.T) {
	g := NewMockGateway("", "s3cret")

	order, err := g.CreateOrder(context.Background(), types.CreateOrderRequest{Amount: 500, Currency: "INR", Receipt: "order_1"})
	require.NoError(t, err)
	assert.Contains(t, order.ID, "order_mock_")

	sig := g.Sign(order.ID, "pay_1")
	assert.Equal(t, sign("s3cret", order.ID, "pay_1"), sig)
	assert.NoError(t, g.VerifySignature(order.ID, "pay_1", sig))

	g.FailNext(nil)
	_, err = g.CreateOrder(context.Background(), types.CreateOrderRequest{Amount: 500, Currency: "INR"})
	assert.Error(t, err)
	assert.Len(t, g.Requests(), 1)
}
