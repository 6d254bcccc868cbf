package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testProduct() *Product {
	return &Product{ID: "p1", SellerID: "s1", Name: "Kettle", Images: []string{"/uploads/images/kettle.png"}, BasePrice: 1000, SellingPrice: 900, PriceDiscount: 10, Stock: 5, IsActive: true}
}

func TestNewOrder_ScenarioA(t *testing.T) {
	item, err := NewOrderItem(testProduct(), 2, 900)
	require.NoError(t, err)

	order, err := NewOrder("u1", "s1", []OrderItem{*item}, SellerPickup{}, PaymentCOD)
	require.NoError(t, err)

	assert.Equal(t, 1800.0, order.Subtotal)
	assert.Equal(t, 0.0, order.DeliveryCharge)
	assert.Equal(t, 1800.0, order.Total)
	assert.Equal(t, StatusPending, order.Status)
	assert.Equal(t, PaymentPending, order.PaymentStatus)
	require.Len(t, order.StatusHistory, 1)
	assert.Equal(t, StatusPending, order.StatusHistory[0].Status)
	assert.Equal(t, "/uploads/images/kettle.png", order.Items[0].Image)
}

func TestNewOrder_TotalIncludesDelivery(t *testing.T) {
	item, err := NewOrderItem(testProduct(), 1, 120.25)
	require.NoError(t, err)

	order, err := NewOrder("u1", "s1", []OrderItem{*item}, Metro{Station: "Dadar"}, PaymentOnline)
	require.NoError(t, err)
	assert.Equal(t, 120.25, order.Subtotal)
	assert.Equal(t, 50.0, order.DeliveryCharge)
	assert.Equal(t, 170.25, order.Total)
	assert.Equal(t, DeliveryMetro, order.Delivery.Option)
	assert.Equal(t, "Dadar", order.Delivery.MetroStation)
}

func TestNewOrder_Rejects(t *testing.T) {
	item, _ := NewOrderItem(testProduct(), 1, 900)
	_, err := NewOrder("u1", "s1", nil, SellerPickup{}, PaymentCOD)
	assert.Error(t, err)
	_, err = NewOrder("u1", "s1", []OrderItem{*item}, nil, PaymentCOD)
	assert.Error(t, err)
	_, err = NewOrder("u1", "s1", []OrderItem{*item}, SellerPickup{}, PaymentMethod("barter"))
	assert.Error(t, err)
}

func TestOrder_ForwardTransitions(t *testing.T) {
	item, _ := NewOrderItem(testProduct(), 1, 900)
	order, _ := NewOrder("u1", "s1", []OrderItem{*item}, SellerPickup{}, PaymentCOD)

	path := []OrderStatus{StatusConfirmed, StatusProcessing, StatusShipped, StatusOutForDelivery, StatusDelivered}
	for _, next := range path {
		_, err := order.UpdateStatus(next, "", "s1")
		require.NoError(t, err, "transition to %s", next)
	}
	assert.Len(t, order.StatusHistory, len(path)+1)
	assert.NotNil(t, order.DeliveredAt)

	_, err := order.UpdateStatus(StatusCancelled, "", "s1")
	assert.ErrorIs(t, err, ErrOrderTerminal)
}

func TestOrder_RejectsBackwardsAndSameStatus(t *testing.T) {
	item, _ := NewOrderItem(testProduct(), 1, 900)
	order, _ := NewOrder("u1", "s1", []OrderItem{*item}, SellerPickup{}, PaymentCOD)
	_, err := order.UpdateStatus(StatusShipped, "", "s1")
	require.NoError(t, err)

	_, err = order.UpdateStatus(StatusProcessing, "", "s1")
	assert.ErrorIs(t, err, ErrInvalidTransition)
	_, err = order.UpdateStatus(StatusShipped, "", "s1")
	assert.ErrorIs(t, err, ErrSameStatus)
	assert.Len(t, order.StatusHistory, 2)
}

func TestOrder_CancelPaidMarksRefunded(t *testing.T) {
	item, _ := NewOrderItem(testProduct(), 1, 900)
	order, _ := NewOrder("u1", "s1", []OrderItem{*item}, SellerPickup{}, PaymentOnline)

	entry, err := order.MarkPaid(PaymentDetails{GatewayOrderID: "g1", PaymentID: "pay1", Signature: "sig"})
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, StatusConfirmed, order.Status)
	assert.Equal(t, PaymentPaid, order.PaymentStatus)
	assert.True(t, order.CanBeCancelledByBuyer())

	_, err = order.UpdateStatus(StatusCancelled, "changed my mind", "u1")
	require.NoError(t, err)
	assert.Equal(t, PaymentRefunded, order.PaymentStatus)
	assert.NotNil(t, order.CancelledAt)
	assert.Equal(t, "changed my mind", order.CancelReason)
}

func TestOrder_MarkPaidIsIdempotent(t *testing.T) {
	item, _ := NewOrderItem(testProduct(), 1, 900)
	order, _ := NewOrder("u1", "s1", []OrderItem{*item}, SellerPickup{}, PaymentOnline)
	_, err := order.MarkPaid(PaymentDetails{PaymentID: "pay1"})
	require.NoError(t, err)

	entry, err := order.MarkPaid(PaymentDetails{PaymentID: "pay2"})
	require.NoError(t, err)
	assert.Nil(t, entry)
	assert.Equal(t, "pay1", order.Payment.PaymentID)
	assert.Len(t, order.StatusHistory, 2)
}

func TestParseOrderStatus(t *testing.T) {
	s, err := ParseOrderStatus("out_for_delivery")
	require.NoError(t, err)
	assert.Equal(t, StatusOutForDelivery, s)
	_, err = ParseOrderStatus("lost")
	assert.Error(t, err)
}
