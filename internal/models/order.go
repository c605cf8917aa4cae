package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderStatus is the closed set of states an order moves through.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusShipped    OrderStatus = "SHIPPED"
	OrderStatusDelivered  OrderStatus = "DELIVERED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
)

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:    {OrderStatusDelivered},
	OrderStatusDelivered:  nil,
	OrderStatusCancelled:  nil,
}

// ParseOrderStatus accepts any letter case and rejects values outside the enum.
func ParseOrderStatus(s string) (OrderStatus, error) {
	status := OrderStatus(strings.ToUpper(strings.TrimSpace(s)))
	if !status.Valid() {
		return "", fmt.Errorf("unknown order status %q", s)
	}
	return status, nil
}

func (s OrderStatus) Valid() bool {
	_, ok := orderTransitions[s]
	return ok
}

func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s OrderStatus) Terminal() bool {
	return s.Valid() && len(orderTransitions[s]) == 0
}

// TransitionError reports a status change the transition table does not allow.
type TransitionError struct {
	From OrderStatus
	To   OrderStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot move order from %s to %s", e.From, e.To)
}

type Order struct {
	ID               int64           `json:"id" gorm:"primaryKey"`
	UserID           int64           `json:"user" gorm:"not null;index;uniqueIndex:idx_orders_user_idempotency,priority:1"`
	Email            string          `json:"user_email" gorm:"size:254;not null"`
	Phone            string          `json:"phone" gorm:"size:20"`
	FirstName        string          `json:"first_name" gorm:"size:100"`
	LastName         string          `json:"last_name" gorm:"size:100"`
	Address          string          `json:"address" gorm:"type:text"`
	City             string          `json:"city" gorm:"size:100"`
	State            string          `json:"state" gorm:"size:100"`
	PinCode          string          `json:"pin_code" gorm:"size:20"`
	TotalAmount      decimal.Decimal `json:"total_amount" gorm:"type:decimal(10,2);not null"`
	Currency         string          `json:"currency" gorm:"size:3;not null"`
	Status           OrderStatus     `json:"status" gorm:"size:20;not null;index"`
	GatewayOrderID   *string         `json:"razorpay_order_id" gorm:"size:100;index"`
	GatewayPaymentID *string         `json:"razorpay_payment_id" gorm:"size:100"`
	IdempotencyKey   *string         `json:"-" gorm:"size:255;uniqueIndex:idx_orders_user_idempotency,priority:2"`
	CreatedAt        time.Time       `json:"created_at" gorm:"index"`
	UpdatedAt        time.Time       `json:"updated_at"`
	Items            []OrderItem     `json:"items" gorm:"constraint:OnDelete:CASCADE"`
}

func (o *Order) BeforeSave(*gorm.DB) error {
	if !o.Status.Valid() {
		return FieldErrors{"status": "oneof=PENDING PROCESSING SHIPPED DELIVERED CANCELLED"}
	}
	if o.TotalAmount.IsNegative() {
		return FieldErrors{"total_amount": "gte=0"}
	}
	return nil
}

func (o *Order) CustomerName() string {
	name := strings.TrimSpace(o.FirstName + " " + o.LastName)
	if name == "" {
		return "there"
	}
	return name
}

// OrderItem is one cart line frozen at checkout time. ProductName and Price
// are snapshots and do not follow later product edits.
type OrderItem struct {
	ID          int64           `json:"id" gorm:"primaryKey"`
	OrderID     int64           `json:"order" gorm:"not null;index"`
	ProductID   *int64          `json:"product" gorm:"index"`
	Product     *Product        `json:"-" gorm:"constraint:OnDelete:SET NULL"`
	ProductName string          `json:"product_name" gorm:"size:255;not null"`
	Price       decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null"`
	Quantity    int             `json:"quantity" gorm:"not null"`
}

func (i *OrderItem) BeforeSave(*gorm.DB) error {
	if i.Quantity < 1 {
		return FieldErrors{"quantity": "min=1"}
	}
	return nil
}

func (i OrderItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
