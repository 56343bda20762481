package models

import "github.com/mimos-de-madera/backoffice-service/internal/money"

// AdminStats is the dashboard landing-page summary.
type AdminStats struct {
	OrdersByStatus   map[OrderStatus]int `json:"orders_by_status"`
	TotalOrders      int                 `json:"total_orders"`
	TotalRevenue     money.Money         `json:"total_revenue"`
	PendingPayments  money.Money         `json:"pending_payments"`
	TotalProducts    int                 `json:"total_products"`
	ActiveProducts   int                 `json:"active_products"`
	UnreadContacts   int                 `json:"unread_contacts"`
	TotalSubscribers int                 `json:"total_subscribers"`
}
