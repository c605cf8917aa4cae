package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderStatusTransitions(t *testing.T) {
	tests := []struct {
		from, to OrderStatus
		allowed  bool
	}{
		{OrderStatusPending, OrderStatusProcessing, true},
		{OrderStatusPending, OrderStatusCancelled, true},
		{OrderStatusPending, OrderStatusShipped, false},
		{OrderStatusProcessing, OrderStatusShipped, true},
		{OrderStatusProcessing, OrderStatusCancelled, true},
		{OrderStatusProcessing, OrderStatusPending, false},
		{OrderStatusShipped, OrderStatusDelivered, true},
		{OrderStatusShipped, OrderStatusCancelled, false},
		{OrderStatusDelivered, OrderStatusPending, false},
		{OrderStatusCancelled, OrderStatusProcessing, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}

	assert.True(t, OrderStatusDelivered.Terminal())
	assert.True(t, OrderStatusCancelled.Terminal())
	assert.False(t, OrderStatusShipped.Terminal())
}

func TestParseOrderStatus(t *testing.T) {
	status, err := ParseOrderStatus(" shipped ")
	require.NoError(t, err)
	assert.Equal(t, OrderStatusShipped, status)

	_, err = ParseOrderStatus("Paid")
	assert.Error(t, err)
}

func TestOrderBeforeSaveRejectsUnknownStatus(t *testing.T) {
	o := &Order{Status: "Paid"}
	err := o.BeforeSave(nil)

	var fields FieldErrors
	require.ErrorAs(t, err, &fields)
	assert.Contains(t, fields, "status")
}

func TestOrderItemLineTotal(t *testing.T) {
	item := OrderItem{Price: decimal.RequireFromString("510.00"), Quantity: 2}
	assert.True(t, item.LineTotal().Equal(decimal.NewFromInt(1020)))
}

func TestProductBeforeSave(t *testing.T) {
	p := &Product{Name: "Oats", Price: decimal.NewFromInt(-1), Stock: -3}
	err := p.BeforeSave(nil)

	var fields FieldErrors
	require.ErrorAs(t, err, &fields)
	assert.Equal(t, "gte=0", fields["price"])
	assert.Equal(t, "gte=0", fields["stock"])
	assert.NotNil(t, p.Gallery)
	assert.NotNil(t, p.Nutrients)
}
