package repository

import (
	"context"

	"github.com/mimos-de-madera/backoffice-service/internal/ledger"
	"github.com/mimos-de-madera/backoffice-service/internal/models"
	"github.com/mimos-de-madera/backoffice-service/internal/money"
)

// OrderRepository persists orders and their payment ledgers.
type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, id string) (*models.Order, error)
	List(ctx context.Context, skip, limit int) ([]*models.Order, int, error)
	Update(ctx context.Context, order *models.Order) error
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, query string, searchType models.SearchType, skip, limit int) ([]*models.Order, error)

	// AppendPaymentEvent stores the event and the order's recomputed payment
	// fields in one transaction: the ledger row and the denormalised order
	// columns must never diverge.
	AppendPaymentEvent(ctx context.Context, order *models.Order, event ledger.Event) error
	ListPaymentEvents(ctx context.Context, orderID string) ([]ledger.Event, error)

	CountByStatus(ctx context.Context) (map[models.OrderStatus]int, error)
	RevenueTotals(ctx context.Context) (revenue, pending money.Money, err error)
}

// ProductRepository persists catalogue items.
type ProductRepository interface {
	Create(ctx context.Context, product *models.Product) error
	GetByID(ctx context.Context, id string) (*models.Product, error)
	List(ctx context.Context, skip, limit int) ([]*models.Product, int, error)
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id string) error
	ToggleStatus(ctx context.Context, id string) (*models.Product, error)
	Counts(ctx context.Context) (total, active int, err error)
}

// CategoryRepository persists product categories.
type CategoryRepository interface {
	Create(ctx context.Context, category *models.Category) error
	List(ctx context.Context) ([]*models.Category, error)
	Update(ctx context.Context, category *models.Category) error
	Delete(ctx context.Context, id string) error
	ToggleStatus(ctx context.Context, id string) (*models.Category, error)
}

// UserRepository persists dashboard accounts.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id string) error
	ToggleAdmin(ctx context.Context, id string) (*models.User, error)
}

// ContactRepository persists contact-form messages.
type ContactRepository interface {
	GetByID(ctx context.Context, id string) (*models.Contact, error)
	List(ctx context.Context) ([]*models.Contact, error)
	Update(ctx context.Context, contact *models.Contact) error
	Delete(ctx context.Context, id string) error
	UnreadCount(ctx context.Context) (int, error)
}

// SubscriptionRepository persists newsletter signups.
type SubscriptionRepository interface {
	List(ctx context.Context) ([]*models.Subscription, error)
	Count(ctx context.Context) (int, error)
	Delete(ctx context.Context, id string) error
}

// OrderCache defines caching operations for orders.
type OrderCache interface {
	Get(ctx context.Context, id string) (*models.Order, error)
	Set(ctx context.Context, order *models.Order) error
	Delete(ctx context.Context, id string) error
}

// ProductCache defines caching operations for products.
type ProductCache interface {
	Get(ctx context.Context, id string) (*models.Product, error)
	Set(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id string) error
}
