package domain

import "time"

// Order is the cart snapshot taken at checkout submission, identified by an
// externally-visible reference. Line items are embedded and never re-derived
// from the live catalog, so the historical invoice stays intact even if
// products change later.
type Order struct {
	Reference    string
	PayerEmail   string
	Items        []LineItem
	Subtotal     int64
	ShippingCost int64
	Total        int64
	Status       OrderStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// LineItem is an immutable snapshot of a product at order time.
// Prices are integer rupiah, no fractional unit.
type LineItem struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Quantity  int    `json:"quantity"`
}

func (i LineItem) Subtotal() int64 {
	return i.Price * int64(i.Quantity)
}

type OrderStatus string

const (
	OrderPending OrderStatus = "PENDING"
	OrderPaid    OrderStatus = "PAID"
	OrderExpired OrderStatus = "EXPIRED"
	OrderFailed  OrderStatus = "FAILED"
)
