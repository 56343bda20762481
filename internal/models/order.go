package models

import (
	"time"

	"github.com/mimos-de-madera/backoffice-service/internal/ledger"
	"github.com/mimos-de-madera/backoffice-service/internal/money"
)

// OrderStatus is the fulfilment state of an order.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// Order is a customer order as managed from the dashboard.
type Order struct {
	ID              string               `json:"id"`
	OrderCode       string               `json:"order_code"`
	CustomerName    string               `json:"customer_name"`
	CustomerEmail   string               `json:"customer_email"`
	CustomerPhone   string               `json:"customer_phone,omitempty"`
	ShippingAddress string               `json:"shipping_address"`
	Items           []OrderItem          `json:"items"`
	TotalAmount     money.Money          `json:"total_amount"`
	Status          OrderStatus          `json:"status"`
	PaymentMethod   string               `json:"payment_method,omitempty"`
	PaymentStatus   ledger.PaymentStatus `json:"payment_status"`
	// PaymentAmount and PaymentNotes are derived from the payment ledger on
	// every append; they are stored for display but the events table is the
	// source of truth.
	PaymentAmount money.Money `json:"payment_amount"`
	PaymentNotes  string      `json:"payment_notes,omitempty"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// OrderItem is a single line of an order.
type OrderItem struct {
	ProductID   string      `json:"product_id"`
	ProductName string      `json:"product_name"`
	Quantity    int         `json:"quantity"`
	UnitPrice   money.Money `json:"unit_price"`
	Total       money.Money `json:"total"`
}

// CanCancel reports whether the order may still be cancelled.
func (o *Order) CanCancel() bool {
	return o.Status == OrderStatusPending || o.Status == OrderStatusConfirmed
}

// CanRefund reports whether payments on the order may be refunded.
func (o *Order) CanRefund() bool {
	return o.PaymentStatus == ledger.StatusSucceeded || o.PaymentStatus == ledger.StatusPartial
}

// CreateOrderRequest is the payload for creating an order.
type CreateOrderRequest struct {
	OrderCode       string      `json:"order_code"`
	CustomerName    string      `json:"customer_name"`
	CustomerEmail   string      `json:"customer_email"`
	CustomerPhone   string      `json:"customer_phone"`
	ShippingAddress string      `json:"shipping_address"`
	Items           []OrderItem `json:"items"`
	PaymentMethod   string      `json:"payment_method"`
}

// UpdateOrderRequest is the payload for updating order fields. Nil fields
// are left unchanged.
type UpdateOrderRequest struct {
	Status          *OrderStatus `json:"status,omitempty"`
	CustomerName    *string      `json:"customer_name,omitempty"`
	CustomerEmail   *string      `json:"customer_email,omitempty"`
	CustomerPhone   *string      `json:"customer_phone,omitempty"`
	ShippingAddress *string      `json:"shipping_address,omitempty"`
	PaymentMethod   *string      `json:"payment_method,omitempty"`
}

// SearchType selects the order search criterion.
type SearchType string

const (
	SearchAll             SearchType = "all"
	SearchID              SearchType = "id"
	SearchOrderCode       SearchType = "order_code"
	SearchCustomerName    SearchType = "customer_name"
	SearchCustomerEmail   SearchType = "customer_email"
	SearchCustomerPhone   SearchType = "customer_phone"
	SearchShippingAddress SearchType = "shipping_address"
)

// Valid reports whether the search type is recognised.
func (t SearchType) Valid() bool {
	switch t {
	case SearchAll, SearchID, SearchOrderCode, SearchCustomerName,
		SearchCustomerEmail, SearchCustomerPhone, SearchShippingAddress:
		return true
	}
	return false
}

// RecordPaymentRequest is the payload for appending a payment event to an
// order's ledger.
type RecordPaymentRequest struct {
	Kind       ledger.EventKind `json:"kind"`
	Amount     money.Money      `json:"amount"`
	OccurredOn time.Time        `json:"occurred_on"`
	Reference  string           `json:"reference"`
	Notes      string           `json:"notes"`
}

// RefundRequest is the payload for recording a refund against an order.
type RefundRequest struct {
	OrderID string      `json:"order_id"`
	Amount  money.Money `json:"amount"`
	Full    bool        `json:"full"`
	Reason  string      `json:"reason"`
}

// RefundStatus summarises the refund position of an order.
type RefundStatus struct {
	OrderID       string               `json:"order_id"`
	PaymentStatus ledger.PaymentStatus `json:"payment_status"`
	Paid          money.Money          `json:"paid"`
	Refunded      money.Money          `json:"refunded"`
	Net           money.Money          `json:"net"`
	Events        []ledger.Event       `json:"events"`
}

var validOrderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:   {OrderStatusConfirmed, OrderStatusCancelled},
	OrderStatusConfirmed: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:   {OrderStatusDelivered},
	OrderStatusDelivered: {},
	OrderStatusCancelled: {},
}

// IsValidStatusTransition reports whether an order may move between the two
// statuses.
func IsValidStatusTransition(from, to OrderStatus) bool {
	if from == to {
		return true
	}
	allowed, ok := validOrderTransitions[from]
	if !ok {
		return false
	}
	for _, status := range allowed {
		if status == to {
			return true
		}
	}
	return false
}
