package trade

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from, to OrderStatus
		want     bool
	}{
		{OrderStatusPending, OrderStatusPaid, true},
		{OrderStatusPending, OrderStatusCancelled, true},
		{OrderStatusPending, OrderStatusShipped, false},
		{OrderStatusPaid, OrderStatusShipped, true},
		{OrderStatusPaid, OrderStatusCancelled, false},
		{OrderStatusShipped, OrderStatusDelivered, true},
		{OrderStatusDelivered, OrderStatusCancelled, false},
		{OrderStatusCancelled, OrderStatusPending, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestOrderStatus_Actions(t *testing.T) {
	assert.Equal(t, []OrderStatus{OrderStatusCancelled}, OrderStatusPending.BuyerActions())
	assert.Equal(t, []OrderStatus{OrderStatusDelivered}, OrderStatusShipped.BuyerActions())
	assert.Empty(t, OrderStatusPaid.BuyerActions())

	assert.True(t, Allows(OrderStatusPending.SellerActions(), OrderStatusPaid))
	assert.True(t, Allows(OrderStatusPaid.SellerActions(), OrderStatusShipped))
	assert.False(t, Allows(OrderStatusDelivered.SellerActions(), OrderStatusCancelled))

	for _, s := range []OrderStatus{OrderStatusPending, OrderStatusPaid, OrderStatusShipped} {
		for _, next := range s.SellerActions() {
			assert.True(t, s.CanTransitionTo(next), "%s -> %s", s, next)
		}
	}
}

func TestOrderStatus_IsValid(t *testing.T) {
	assert.True(t, OrderStatusDelivered.IsValid())
	assert.False(t, OrderStatus("lost").IsValid())
	assert.True(t, OrderStatusCancelled.IsTerminal())
	assert.False(t, OrderStatusShipped.IsTerminal())
}

func TestOrderStatus_EarnsRevenue(t *testing.T) {
	assert.True(t, OrderStatusPaid.EarnsRevenue())
	assert.True(t, OrderStatusDelivered.EarnsRevenue())
	assert.False(t, OrderStatusShipped.EarnsRevenue())
	assert.False(t, OrderStatusPending.EarnsRevenue())
	assert.False(t, OrderStatusCancelled.EarnsRevenue())
}

func TestOrder_Decode(t *testing.T) {
	raw := `{
		"id": 15,
		"status": "shipped",
		"total_amount": "25.50",
		"payment_method": "card",
		"items": [{"id": 1, "title": "Taza", "price": "10.00", "quantity": 2}]
	}`
	var o Order
	require.NoError(t, json.Unmarshal([]byte(raw), &o))
	assert.Equal(t, "15", o.ID.String())
	assert.Equal(t, OrderStatusShipped, o.Status)
	assert.Equal(t, "25.50", o.TotalAmount.StringFixed(2))
	require.Len(t, o.Items, 1)
	assert.Equal(t, 2, o.Items[0].Quantity)
}

func TestOrder_DecodeSellerTotal(t *testing.T) {
	var o Order
	require.NoError(t, json.Unmarshal([]byte(`{"id":1,"status":"paid","seller_total":150.5}`), &o))
	require.NotNil(t, o.SellerTotal)
	assert.Equal(t, "150.50", o.SellerTotal.StringFixed(2))

	require.NoError(t, json.Unmarshal([]byte(`{"id":2,"status":"paid"}`), &o))
	assert.Nil(t, o.SellerTotal)
}
