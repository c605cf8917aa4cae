package payment

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/pinobite/storefront/internal/types"
)

// MockGateway issues local order ids and signs payments with the same
// scheme as Razorpay, so the whole checkout flow runs without network.
type MockGateway struct {
	keyID  string
	secret string

	mu       sync.Mutex
	requests []types.CreateOrderRequest
	failNext error
}

func NewMockGateway(keyID, secret string) *MockGateway {
	if keyID == "" {
		keyID = "rzp_test_mock"
	}
	if secret == "" {
		secret = "mock_secret"
	}
	return &MockGateway{keyID: keyID, secret: secret}
}

func (g *MockGateway) CreateOrder(ctx context.Context, req types.CreateOrderRequest) (*types.GatewayOrder, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.failNext != nil {
		err := g.failNext
		g.failNext = nil
		return nil, err
	}
	g.requests = append(g.requests, req)

	return &types.GatewayOrder{
		ID:       "order_mock_" + uuid.NewString(),
		Amount:   req.Amount,
		Currency: req.Currency,
		Receipt:  req.Receipt,
		Status:   "created",
	}, nil
}

func (g *MockGateway) VerifySignature(orderID, paymentID, signature string) error {
	return verify(g.secret, orderID, paymentID, signature)
}

func (g *MockGateway) KeyID() string {
	return g.keyID
}

// Sign returns the signature the gateway would attach to this payment.
func (g *MockGateway) Sign(orderID, paymentID string) string {
	return sign(g.secret, orderID, paymentID)
}

// FailNext makes the next CreateOrder call return err.
func (g *MockGateway) FailNext(err error) {
	if err == nil {
		err = errors.New("mock gateway unavailable")
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.failNext = err
}

// Requests returns every CreateOrder request received so far.
func (g *MockGateway) Requests() []types.CreateOrderRequest {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]types.CreateOrderRequest(nil), g.requests...)
}

// Compile-time interface check
var _ types.PaymentGateway = (*MockGateway)(nil)
