package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/pinobite/storefront/internal/models"
	"github.com/pinobite/storefront/internal/notify"
	"github.com/pinobite/storefront/internal/store"
	"github.com/pinobite/storefront/internal/types"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CartItem struct {
	ProductID int64 `json:"id" binding:"required,gt=0"`
	Quantity  int   `json:"quantity" binding:"required,min=1,max=1000"`
}

type ShippingAddress struct {
	Street string `json:"street" binding:"required"`
	City   string `json:"city" binding:"required,max=100"`
	State  string `json:"state" binding:"required,max=100"`
	Zip    string `json:"zip" binding:"required,max=20"`
}

type InitiateInput struct {
	Items           []CartItem      `json:"items" binding:"required,min=1,dive"`
	ShippingAddress ShippingAddress `json:"shipping_address"`

	// Contact details default to the account's when empty.
	Email     string `json:"email" binding:"omitempty,email,max=254"`
	Phone     string `json:"phone" binding:"max=20"`
	FirstName string `json:"first_name" binding:"max=100"`
	LastName  string `json:"last_name" binding:"max=100"`

	IdempotencyKey string `json:"-"`
}

// InitiateResult is what the client needs to open the payment widget.
type InitiateResult struct {
	OrderID        int64  `json:"order_id"`
	GatewayOrderID string `json:"razorpay_order_id"`
	Amount         int64  `json:"amount"`
	Currency       string `json:"currency"`
	KeyID          string `json:"key_id"`
}

type VerifyInput struct {
	OrderID        int64  `json:"order_id" binding:"required,gt=0"`
	GatewayOrderID string `json:"razorpay_order_id" binding:"required"`
	PaymentID      string `json:"razorpay_payment_id" binding:"required"`
	Signature      string `json:"razorpay_signature" binding:"required"`
}

// Viewer is the account on whose behalf orders are read or verified.
type Viewer struct {
	UserID int64
	Staff  bool
}

func (v Viewer) owns(order *models.Order) bool {
	return v.Staff || order.UserID == v.UserID
}

type Service struct {
	store     *store.Store
	gateway   types.PaymentGateway
	publisher notify.Publisher
	currency  string
	logger    *slog.Logger

	// Clock defaults to time.Now.
	Clock func() time.Time
}

func NewService(st *store.Store, gateway types.PaymentGateway, publisher notify.Publisher, currency string, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if publisher == nil {
		publisher = notify.Discard{}
	}
	return &Service{
		store:     st,
		gateway:   gateway,
		publisher: publisher,
		currency:  strings.ToUpper(currency),
		logger:    logger.With("component", "checkout"),
		Clock:     time.Now,
	}
}

// MinorUnits converts an amount to the currency's smallest unit.
func MinorUnits(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}

// Initiate turns a cart into a PENDING order and a gateway payment intent.
// Prices always come from the catalog. A repeated idempotency key returns
// the order created by the first call.
func (s *Service) Initiate(ctx context.Context, userID int64, in InitiateInput) (*InitiateResult, error) {
	if len(in.Items) == 0 {
		return nil, models.FieldErrors{"items": "required"}
	}

	if in.IdempotencyKey != "" {
		existing, err := s.store.FindOrderByIdempotencyKey(ctx, userID, in.IdempotencyKey)
		if err == nil {
			return s.replayInitiate(existing)
		}
		if !errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
	}

	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load buyer: %w", err)
	}

	order := &models.Order{
		UserID:    userID,
		Email:     firstNonEmpty(in.Email, user.Email),
		Phone:     in.Phone,
		FirstName: firstNonEmpty(in.FirstName, user.FirstName),
		LastName:  firstNonEmpty(in.LastName, user.LastName),
		Address:   strings.TrimSpace(in.ShippingAddress.Street),
		City:      strings.TrimSpace(in.ShippingAddress.City),
		State:     strings.TrimSpace(in.ShippingAddress.State),
		PinCode:   strings.TrimSpace(in.ShippingAddress.Zip),
		Currency:  s.currency,
		Status:    models.OrderStatusPending,
	}
	if order.Phone == "" && user.Profile != nil && user.Profile.Phone != nil {
		order.Phone = *user.Profile.Phone
	}
	if in.IdempotencyKey != "" {
		key := in.IdempotencyKey
		order.IdempotencyKey = &key
	}

	err = s.store.Transaction(ctx, func(tx *store.Store) error {
		items, total, err := priceCart(ctx, tx, in.Items)
		if err != nil {
			return err
		}
		order.Items = items
		order.TotalAmount = total
		return tx.CreateOrder(ctx, order)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) && in.IdempotencyKey != "" {
			existing, findErr := s.store.FindOrderByIdempotencyKey(ctx, userID, in.IdempotencyKey)
			if findErr == nil {
				return s.replayInitiate(existing)
			}
		}
		return nil, err
	}

	amount := MinorUnits(order.TotalAmount)
	gwOrder, err := s.gateway.CreateOrder(ctx, types.CreateOrderRequest{
		Amount:   amount,
		Currency: order.Currency,
		Receipt:  fmt.Sprintf("order_%d", order.ID),
		Notes:    map[string]string{"order_id": fmt.Sprint(order.ID)},
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "payment intent failed, cancelling order", "order_id", order.ID, "error", err)
		s.abandon(ctx, order.ID)
		return nil, fmt.Errorf("%w: %v", ErrGateway, err)
	}

	if err := s.store.UpdateOrder(ctx, order.ID, map[string]any{"gateway_order_id": gwOrder.ID}); err != nil {
		return nil, fmt.Errorf("failed to store gateway order id: %w", err)
	}

	s.logger.InfoContext(ctx, "order initiated",
		"order_id", order.ID,
		"gateway_order_id", gwOrder.ID,
		"amount", amount,
		"currency", order.Currency,
	)

	return &InitiateResult{
		OrderID:        order.ID,
		GatewayOrderID: gwOrder.ID,
		Amount:         amount,
		Currency:       order.Currency,
		KeyID:          s.gateway.KeyID(),
	}, nil
}

// priceCart resolves every cart line against the catalog. Any unknown
// product aborts the whole cart.
func priceCart(ctx context.Context, tx *store.Store, cart []CartItem) ([]models.OrderItem, decimal.Decimal, error) {
	ids := make([]int64, 0, len(cart))
	for _, line := range cart {
		ids = append(ids, line.ProductID)
	}

	var products []models.Product
	if err := tx.DB(ctx).Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, decimal.Zero, fmt.Errorf("failed to load products: %w", err)
	}
	byID := make(map[int64]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	items := make([]models.OrderItem, 0, len(cart))
	total := decimal.Zero
	for _, line := range cart {
		if line.Quantity < 1 {
			return nil, decimal.Zero, models.FieldErrors{"quantity": "min=1"}
		}
		p, ok := byID[line.ProductID]
		if !ok {
			return nil, decimal.Zero, &ProductNotFoundError{ID: line.ProductID}
		}

		productID := p.ID
		item := models.OrderItem{
			ProductID:   &productID,
			ProductName: p.Name,
			Price:       p.Price,
			Quantity:    line.Quantity,
		}
		items = append(items, item)
		total = total.Add(item.LineTotal())
	}
	return items, total, nil
}

func (s *Service) replayInitiate(order *models.Order) (*InitiateResult, error) {
	if order.GatewayOrderID == nil {
		return nil, fmt.Errorf("%w: order %d", ErrRequestInProgress, order.ID)
	}
	return &InitiateResult{
		OrderID:        order.ID,
		GatewayOrderID: *order.GatewayOrderID,
		Amount:         MinorUnits(order.TotalAmount),
		Currency:       order.Currency,
		KeyID:          s.gateway.KeyID(),
	}, nil
}

// abandon cancels an order whose payment intent could not be created and
// frees its idempotency key so the client can retry.
func (s *Service) abandon(ctx context.Context, orderID int64) {
	ctx = context.WithoutCancel(ctx)
	if _, err := s.store.TransitionOrder(ctx, orderID, models.OrderStatusPending, models.OrderStatusCancelled,
		map[string]any{"idempotency_key": nil}); err != nil {
		s.logger.ErrorContext(ctx, "failed to cancel abandoned order", "order_id", orderID, "error", err)
	}
}

// Verify checks the gateway signature and moves the order to PROCESSING.
// Replaying a verification that already succeeded returns the order without
// publishing a second event. Every failure is reported as
// ErrSignatureInvalid.
func (s *Service) Verify(ctx context.Context, viewer Viewer, in VerifyInput) (*models.Order, error) {
	log := s.logger.With("order_id", in.OrderID, "gateway_order_id", in.GatewayOrderID)

	if err := s.gateway.VerifySignature(in.GatewayOrderID, in.PaymentID, in.Signature); err != nil {
		log.WarnContext(ctx, "payment signature rejected", "error", err)
		return nil, ErrSignatureInvalid
	}

	order, err := s.store.FindOrderForVerification(ctx, in.OrderID, in.GatewayOrderID)
	if errors.Is(err, store.ErrNotFound) {
		log.WarnContext(ctx, "verified payment matches no order")
		return nil, ErrSignatureInvalid
	}
	if err != nil {
		return nil, err
	}
	if !viewer.owns(order) {
		log.WarnContext(ctx, "payment verification by non-owner", "user_id", viewer.UserID)
		return nil, ErrSignatureInvalid
	}

	if order.Status == models.OrderStatusPending {
		moved, err := s.store.TransitionOrder(ctx, order.ID, models.OrderStatusPending, models.OrderStatusProcessing,
			map[string]any{"gateway_payment_id": in.PaymentID})
		if err != nil {
			return nil, err
		}

		order, err = s.store.GetOrder(ctx, order.ID)
		if err != nil {
			return nil, err
		}
		if moved {
			log.InfoContext(ctx, "payment verified", "payment_id", in.PaymentID)
			s.publisher.Publish(notify.OrderStatusChanged{Order: *order, Previous: models.OrderStatusPending})
			return order, nil
		}
	}

	if order.GatewayPaymentID != nil && *order.GatewayPaymentID == in.PaymentID {
		log.InfoContext(ctx, "payment verification replayed", "status", order.Status)
		return order, nil
	}

	log.ErrorContext(ctx, "valid payment for order that is no longer pending",
		"status", order.Status,
		"payment_id", in.PaymentID,
	)
	return nil, ErrSignatureInvalid
}

// UpdateStatus applies a staff status change. Writing the current status
// again is a no-op. PENDING orders only leave for PROCESSING through
// payment verification.
func (s *Service) UpdateStatus(ctx context.Context, orderID int64, next models.OrderStatus) (*models.Order, error) {
	if !next.Valid() {
		return nil, models.FieldErrors{"status": "oneof=PENDING PROCESSING SHIPPED DELIVERED CANCELLED"}
	}

	var (
		order    *models.Order
		previous models.OrderStatus
		changed  bool
	)
	err := s.store.Transaction(ctx, func(tx *store.Store) error {
		current, err := tx.GetOrder(ctx, orderID)
		if err != nil {
			return err
		}
		previous = current.Status

		if current.Status == next {
			order = current
			return nil
		}
		if !current.Status.CanTransitionTo(next) ||
			(current.Status == models.OrderStatusPending && next == models.OrderStatusProcessing) {
			return fmt.Errorf("%w: %w", ErrInvalidTransition, &models.TransitionError{From: current.Status, To: next})
		}

		moved, err := tx.TransitionOrder(ctx, orderID, current.Status, next, nil)
		if err != nil {
			return err
		}
		if !moved {
			return fmt.Errorf("%w: order %d changed concurrently", ErrInvalidTransition, orderID)
		}
		changed = true

		order, err = tx.GetOrder(ctx, orderID)
		return err
	})
	if err != nil {
		return nil, err
	}

	if changed {
		s.logger.InfoContext(ctx, "order status changed", "order_id", orderID, "from", previous, "to", next)
		s.publisher.Publish(notify.OrderStatusChanged{Order: *order, Previous: previous})
	}
	return order, nil
}

// Get returns the order if the viewer may see it. Other users' orders are
// reported as missing.
func (s *Service) Get(ctx context.Context, viewer Viewer, id int64) (*models.Order, error) {
	order, err := s.store.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if !viewer.owns(order) {
		return nil, store.ErrNotFound
	}
	return order, nil
}

// List returns every order for staff and the viewer's own orders otherwise.
func (s *Service) List(ctx context.Context, viewer Viewer, limit, offset int) ([]models.Order, error) {
	ownerID := viewer.UserID
	if viewer.Staff {
		ownerID = 0
	}
	return s.store.ListOrdersForUser(ctx, ownerID, limit, offset)
}

// StaleOrders lists PENDING orders older than olderThan, i.e. payment
// intents that were never verified.
func (s *Service) StaleOrders(ctx context.Context, olderThan time.Duration) ([]models.Order, error) {
	return s.store.ListStalePendingOrders(ctx, s.Clock().UTC().Add(-olderThan))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
