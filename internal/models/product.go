package models

import (
	"time"

	"github.com/mimos-de-madera/backoffice-service/internal/money"
)

// Product is a catalogue item. Price is the canonical pre-tax base price;
// the tax-inclusive price is always derived, never stored.
type Product struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	CategoryID  string      `json:"category_id,omitempty"`
	Price       money.Money `json:"price"`
	Stock       int         `json:"stock"`
	Active      bool        `json:"active"`

	// Costing inputs used to derive the recommended price. Optional; a
	// missing margin falls back to the shop default.
	ProductionCost *money.Money `json:"production_cost,omitempty"`
	ProfitMargin   *float64     `json:"profit_margin,omitempty"`
	ShippingCost   *money.Money `json:"shipping_cost,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateProductRequest is the payload for creating a product. When Price is
// zero and costing fields are present the service derives it.
type CreateProductRequest struct {
	Name           string       `json:"name"`
	Description    string       `json:"description"`
	CategoryID     string       `json:"category_id"`
	Price          money.Money  `json:"price"`
	Stock          int          `json:"stock"`
	ProductionCost *money.Money `json:"production_cost"`
	ProfitMargin   *float64     `json:"profit_margin"`
	ShippingCost   *money.Money `json:"shipping_cost"`
}

// UpdateProductRequest is the payload for updating a product. Nil fields
// are left unchanged.
type UpdateProductRequest struct {
	Name           *string      `json:"name,omitempty"`
	Description    *string      `json:"description,omitempty"`
	CategoryID     *string      `json:"category_id,omitempty"`
	Price          *money.Money `json:"price,omitempty"`
	Stock          *int         `json:"stock,omitempty"`
	ProductionCost *money.Money `json:"production_cost,omitempty"`
	ProfitMargin   *float64     `json:"profit_margin,omitempty"`
	ShippingCost   *money.Money `json:"shipping_cost,omitempty"`
}

// Category groups products in the catalogue.
type Category struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CategoryRequest is the payload for creating or updating a category.
type CategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}
