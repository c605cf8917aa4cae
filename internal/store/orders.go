package store

import (
	"context"
	"fmt"
	"time"

	"github.com/pinobite/storefront/internal/models"
)

// CreateOrder inserts the order together with its items.
func (s *Store) CreateOrder(ctx context.Context, order *models.Order) error {
	if err := s.db.WithContext(ctx).Create(order).Error; err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

func (s *Store) GetOrder(ctx context.Context, id int64) (*models.Order, error) {
	var order models.Order
	if err := s.db.WithContext(ctx).Preload("Items").First(&order, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &order, nil
}

// FindOrderForVerification loads the order only when both the local id and
// the gateway order id match.
func (s *Store) FindOrderForVerification(ctx context.Context, id int64, gatewayOrderID string) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).
		Preload("Items").
		Where("id = ? AND gateway_order_id = ?", id, gatewayOrderID).
		First(&order).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &order, nil
}

func (s *Store) FindOrderByIdempotencyKey(ctx context.Context, userID int64, key string) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).
		Preload("Items").
		Where("user_id = ? AND idempotency_key = ?", userID, key).
		First(&order).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &order, nil
}

// ListOrdersForUser returns the user's orders, newest first. A zero userID
// lists every order.
func (s *Store) ListOrdersForUser(ctx context.Context, userID int64, limit, offset int) ([]models.Order, error) {
	opts := ListOptions{Limit: limit, Offset: offset, Preload: []string{"Items"}}
	if userID != 0 {
		opts.Filters = map[string]any{"user_id": userID}
	}
	return NewRepo[models.Order](s).WithOrder("created_at DESC, id DESC").List(ctx, opts)
}

// ListStalePendingOrders returns PENDING orders created before the cutoff.
func (s *Store) ListStalePendingOrders(ctx context.Context, before time.Time) ([]models.Order, error) {
	orders := []models.Order{}
	err := s.db.WithContext(ctx).
		Preload("Items").
		Where("status = ? AND created_at < ?", models.OrderStatusPending, before).
		Order("created_at").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list stale orders: %w", err)
	}
	return orders, nil
}

// UpdateOrder writes the given columns onto the order row. Model hooks do
// not run, callers pass already validated values.
func (s *Store) UpdateOrder(ctx context.Context, id int64, updates map[string]any) error {
	columns := map[string]any{"updated_at": time.Now().UTC()}
	for k, v := range updates {
		columns[k] = v
	}
	result := s.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).UpdateColumns(columns)
	if result.Error != nil {
		return fmt.Errorf("failed to update order %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// TransitionOrder moves the order from one status to another only if the row
// still holds the expected status. It reports false when another writer got
// there first.
func (s *Store) TransitionOrder(ctx context.Context, id int64, from, to models.OrderStatus, extra map[string]any) (bool, error) {
	if !to.Valid() {
		return false, fmt.Errorf("unknown order status %q", to)
	}
	updates := map[string]any{"status": to, "updated_at": time.Now().UTC()}
	for k, v := range extra {
		updates[k] = v
	}

	result := s.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND status = ?", id, from).
		UpdateColumns(updates)
	if result.Error != nil {
		return false, fmt.Errorf("failed to move order %d to %s: %w", id, to, result.Error)
	}
	return result.RowsAffected == 1, nil
}
