package notify

import (
	"time"

	"github.com/pinobite/storefront/internal/models"
)

// Event is something that happened after a committed state change and may
// result in an email.
type Event interface {
	// Recipient is the address the resulting email goes to.
	Recipient() string
}

// OrderStatusChanged is published after an order's new status is committed.
type OrderStatusChanged struct {
	Order    models.Order
	Previous models.OrderStatus
}

func (e OrderStatusChanged) Recipient() string { return e.Order.Email }

type PasswordResetRequested struct {
	Email string
	Name  string
	Code  string
	TTL   time.Duration
}

func (e PasswordResetRequested) Recipient() string { return e.Email }

type VisitorSubmitted struct {
	Submission models.VisitorSubmission
	Form       models.VisitorForm
}

func (e VisitorSubmitted) Recipient() string { return e.Submission.Email }

// Publisher accepts events without blocking the caller.
type Publisher interface {
	Publish(event Event)
}

// Discard drops every event.
type Discard struct{}

func (Discard) Publish(Event) {}
