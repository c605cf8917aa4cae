package types

import "context"

// PaymentGateway creates payment intents and checks the signatures the
// gateway attaches to completed payments.
type PaymentGateway interface {
	CreateOrder(ctx context.Context, req CreateOrderRequest) (*GatewayOrder, error)
	VerifySignature(orderID, paymentID, signature string) error
	KeyID() string
}

// Mailer delivers one email message.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
	Name() string
}

// CreateOrderRequest asks the gateway for a payment intent. Amount is in
// the currency's minor unit.
type CreateOrderRequest struct {
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt"`
	Notes    map[string]string `json:"notes,omitempty"`
}

// GatewayOrder is the gateway's view of a created payment intent.
type GatewayOrder struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
}
