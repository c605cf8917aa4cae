package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/pinobite/storefront/internal/types"
)

var ErrSignatureMismatch = errors.New("payment signature mismatch")

// APIError is a non-2xx answer from the gateway.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("razorpay API error %d: %s", e.StatusCode, e.Body)
}

type RazorpayGateway struct {
	keyID     string
	keySecret string
	baseURL   string
	client    *http.Client
}

type razorpayOrderResponse struct {
	ID       string `json:"id"`
	Entity   string `json:"entity"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

func NewRazorpayGateway(keyID, keySecretEnv, directKeySecret, baseURL string, timeout time.Duration) (*RazorpayGateway, error) {
	var keySecret string

	// First try the secret from config
	if directKeySecret != "" {
		keySecret = directKeySecret
	} else if keySecretEnv != "" {
		// Fallback to environment variable
		keySecret = os.Getenv(keySecretEnv)
	}

	if keyID == "" {
		return nil, errors.New("razorpay key id is not configured")
	}
	if keySecret == "" {
		return nil, fmt.Errorf("razorpay key secret not found in config or environment variable %s", keySecretEnv)
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return &RazorpayGateway{
		keyID:     keyID,
		keySecret: keySecret,
		baseURL:   strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

func (g *RazorpayGateway) CreateOrder(ctx context.Context, req types.CreateOrderRequest) (*types.GatewayOrder, error) {
	jsonData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/v1/orders", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.SetBasicAuth(g.keyID, g.keySecret)

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var response razorpayOrderResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if response.ID == "" {
		return nil, errors.New("no order id in response")
	}

	return &types.GatewayOrder{
		ID:       response.ID,
		Amount:   response.Amount,
		Currency: response.Currency,
		Receipt:  response.Receipt,
		Status:   response.Status,
	}, nil
}

// VerifySignature checks hex(HMAC-SHA256(secret, orderID|paymentID)).
func (g *RazorpayGateway) VerifySignature(orderID, paymentID, signature string) error {
	return verify(g.keySecret, orderID, paymentID, signature)
}

func (g *RazorpayGateway) KeyID() string {
	return g.keyID
}

func sign(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func verify(secret, orderID, paymentID, signature string) error {
	if orderID == "" || paymentID == "" || signature == "" {
		return ErrSignatureMismatch
	}
	expected := sign(secret, orderID, paymentID)
	if !hmac.Equal([]byte(expected), []byte(strings.ToLower(signature))) {
		return ErrSignatureMismatch
	}
	return nil
}

// Compile-time interface check
var _ types.PaymentGateway = (*RazorpayGateway)(nil)
