package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mimos-de-madera/backoffice-service/internal/apperrors"
	"github.com/mimos-de-madera/backoffice-service/internal/ledger"
	"github.com/mimos-de-madera/backoffice-service/internal/logging"
	"github.com/mimos-de-madera/backoffice-service/internal/models"
	"github.com/mimos-de-madera/backoffice-service/internal/money"
)

// PostgresOrderRepository implements OrderRepository using PostgreSQL.
type PostgresOrderRepository struct {
	db     *sql.DB
	logger *logging.Logger
}

// NewPostgresOrderRepository creates a new PostgreSQL order repository.
func NewPostgresOrderRepository(db *sql.DB, logger *logging.Logger) *PostgresOrderRepository {
	return &PostgresOrderRepository{db: db, logger: logger}
}

var _ OrderRepository = (*PostgresOrderRepository)(nil)

const orderColumns = `
	id, order_code, customer_name, customer_email, customer_phone,
	shipping_address, items, total_amount, status, payment_method,
	payment_status, payment_amount, payment_notes, created_at, updated_at
`

func (r *PostgresOrderRepository) scanOrder(row interface {
	Scan(dest ...interface{}) error
}) (*models.Order, error) {
	var order models.Order
	var itemsJSON []byte
	var phone, paymentMethod, paymentNotes sql.NullString

	err := row.Scan(
		&order.ID,
		&order.OrderCode,
		&order.CustomerName,
		&order.CustomerEmail,
		&phone,
		&order.ShippingAddress,
		&itemsJSON,
		&order.TotalAmount,
		&order.Status,
		&paymentMethod,
		&order.PaymentStatus,
		&order.PaymentAmount,
		&paymentNotes,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(itemsJSON, &order.Items); err != nil {
		return nil, err
	}
	if phone.Valid {
		order.CustomerPhone = phone.String
	}
	if paymentMethod.Valid {
		order.PaymentMethod = paymentMethod.String
	}
	if paymentNotes.Valid {
		order.PaymentNotes = paymentNotes.String
	}
	return &order, nil
}

// Create creates a new order.
func (r *PostgresOrderRepository) Create(ctx context.Context, order *models.Order) error {
	r.logger.Debug("Creating order", logging.Fields{"order_code": order.OrderCode})

	itemsJSON, err := json.Marshal(order.Items)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO orders (
			id, order_code, customer_name, customer_email, customer_phone,
			shipping_address, items, total_amount, status, payment_method,
			payment_status, payment_amount, payment_notes, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,NOW(),NOW())`,
		order.ID, order.OrderCode, order.CustomerName, order.CustomerEmail,
		nullString(order.CustomerPhone), order.ShippingAddress, itemsJSON,
		order.TotalAmount, order.Status, nullString(order.PaymentMethod),
		order.PaymentStatus, order.PaymentAmount, nullString(order.PaymentNotes),
	)
	if err != nil {
		r.logger.Error("Failed to create order", logging.Fields{
			"order_code": order.OrderCode,
			"error":      err.Error(),
		})
		return err
	}
	return nil
}

// GetByID retrieves an order by its unique identifier.
func (r *PostgresOrderRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	r.logger.Debug("Fetching order", logging.Fields{"order_id": id})

	row := r.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1 AND deleted_at IS NULL`, id)

	order, err := r.scanOrder(row)
	if err == sql.ErrNoRows {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		r.logger.Error("Failed to fetch order", logging.Fields{
			"order_id": id,
			"error":    err.Error(),
		})
		return nil, err
	}
	return order, nil
}

// List retrieves orders newest first with skip/limit pagination.
func (r *PostgresOrderRepository) List(ctx context.Context, skip, limit int) ([]*models.Order, int, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+orderColumns+` FROM orders
		 WHERE deleted_at IS NULL
		 ORDER BY created_at DESC
		 OFFSET $1 LIMIT $2`, skip, limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var orders []*models.Order
	for rows.Next() {
		order, err := r.scanOrder(rows)
		if err != nil {
			return nil, 0, err
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM orders WHERE deleted_at IS NULL`).Scan(&total); err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

// Update persists mutable order fields.
func (r *PostgresOrderRepository) Update(ctx context.Context, order *models.Order) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE orders
		SET customer_name = $1, customer_email = $2, customer_phone = $3,
		    shipping_address = $4, status = $5, payment_method = $6,
		    updated_at = NOW()
		WHERE id = $7 AND deleted_at IS NULL`,
		order.CustomerName, order.CustomerEmail, nullString(order.CustomerPhone),
		order.ShippingAddress, order.Status, nullString(order.PaymentMethod),
		order.ID,
	)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

// Delete soft-deletes an order.
func (r *PostgresOrderRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE orders SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

var searchColumns = map[models.SearchType]string{
	models.SearchID:              "id::text",
	models.SearchOrderCode:       "order_code",
	models.SearchCustomerName:    "customer_name",
	models.SearchCustomerEmail:   "customer_email",
	models.SearchCustomerPhone:   "customer_phone",
	models.SearchShippingAddress: "shipping_address",
}

// Search retrieves orders matching the query on the selected field, or on
// any searchable field for SearchAll.
func (r *PostgresOrderRepository) Search(ctx context.Context, query string, searchType models.SearchType, skip, limit int) ([]*models.Order, error) {
	r.logger.Debug("Searching orders", logging.Fields{
		"query":       query,
		"search_type": string(searchType),
	})

	var where string
	if searchType == models.SearchAll {
		where = `(id::text ILIKE $1 OR order_code ILIKE $1 OR customer_name ILIKE $1
			OR customer_email ILIKE $1 OR customer_phone ILIKE $1 OR shipping_address ILIKE $1)`
	} else {
		column, ok := searchColumns[searchType]
		if !ok {
			return nil, apperrors.NewValidationError("search_type", fmt.Sprintf("unknown search type %q", searchType))
		}
		where = column + ` ILIKE $1`
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+orderColumns+` FROM orders
		 WHERE deleted_at IS NULL AND `+where+`
		 ORDER BY created_at DESC
		 OFFSET $2 LIMIT $3`,
		"%"+query+"%", skip, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*models.Order
	for rows.Next() {
		order, err := r.scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, rows.Err()
}

// AppendPaymentEvent inserts the ledger event and updates the order's
// derived payment columns in one transaction.
func (r *PostgresOrderRepository) AppendPaymentEvent(ctx context.Context, order *models.Order, event ledger.Event) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if event.ID == "" {
		event.ID = uuid.New().String()
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO payment_events (id, order_id, kind, amount, occurred_on, reference, notes, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,NOW())`,
		event.ID, order.ID, event.Kind, event.Amount,
		nullTime(event.OccurredOn), nullString(event.Reference), nullString(event.Notes),
	)
	if err != nil {
		r.logger.Error("Failed to insert payment event", logging.Fields{
			"order_id": order.ID,
			"kind":     string(event.Kind),
			"error":    err.Error(),
		})
		return err
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE orders
		SET status = $1, payment_status = $2, payment_amount = $3,
		    payment_notes = $4, updated_at = NOW()
		WHERE id = $5 AND deleted_at IS NULL`,
		order.Status, order.PaymentStatus, order.PaymentAmount,
		nullString(order.PaymentNotes), order.ID,
	)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// ListPaymentEvents retrieves an order's ledger in append order.
func (r *PostgresOrderRepository) ListPaymentEvents(ctx context.Context, orderID string) ([]ledger.Event, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, kind, amount, occurred_on, reference, notes
		FROM payment_events
		WHERE order_id = $1
		ORDER BY created_at, id`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []ledger.Event
	for rows.Next() {
		var e ledger.Event
		var occurredOn sql.NullTime
		var reference, notes sql.NullString

		if err := rows.Scan(&e.ID, &e.Kind, &e.Amount, &occurredOn, &reference, &notes); err != nil {
			return nil, err
		}
		if occurredOn.Valid {
			e.OccurredOn = occurredOn.Time
		}
		if reference.Valid {
			e.Reference = reference.String
		}
		if notes.Valid {
			e.Notes = notes.String
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// CountByStatus returns order counts grouped by status.
func (r *PostgresOrderRepository) CountByStatus(ctx context.Context) (map[models.OrderStatus]int, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT status, COUNT(*) FROM orders WHERE deleted_at IS NULL GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[models.OrderStatus]int)
	for rows.Next() {
		var status models.OrderStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

// RevenueTotals sums collected and outstanding amounts across live orders.
func (r *PostgresOrderRepository) RevenueTotals(ctx context.Context) (money.Money, money.Money, error) {
	var revenue, pending money.Money
	err := r.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(payment_amount), 0),
		       COALESCE(SUM(GREATEST(total_amount - payment_amount, 0)), 0)
		FROM orders
		WHERE deleted_at IS NULL AND status <> 'cancelled'`,
	).Scan(&revenue, &pending)
	if err != nil {
		return money.Zero, money.Zero, err
	}
	return revenue, pending, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}

func requireRowAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
