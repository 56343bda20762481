package repository

import (
	"context"
	"database/sql"

	"github.com/mimos-de-madera/backoffice-service/internal/apperrors"
	"github.com/mimos-de-madera/backoffice-service/internal/logging"
	"github.com/mimos-de-madera/backoffice-service/internal/models"
	"github.com/mimos-de-madera/backoffice-service/internal/money"
)

// PostgresProductRepository implements ProductRepository using PostgreSQL.
type PostgresProductRepository struct {
	db     *sql.DB
	logger *logging.Logger
}

// NewPostgresProductRepository creates a new PostgreSQL product repository.
func NewPostgresProductRepository(db *sql.DB, logger *logging.Logger) *PostgresProductRepository {
	return &PostgresProductRepository{db: db, logger: logger}
}

var _ ProductRepository = (*PostgresProductRepository)(nil)

const productColumns = `
	id, name, description, category_id, price, stock, active,
	production_cost, profit_margin, shipping_cost, created_at, updated_at
`

func (r *PostgresProductRepository) scanProduct(row interface {
	Scan(dest ...interface{}) error
}) (*models.Product, error) {
	var p models.Product
	var description, categoryID sql.NullString
	var productionCost, shippingCost sql.NullString
	var profitMargin sql.NullFloat64

	err := row.Scan(
		&p.ID, &p.Name, &description, &categoryID, &p.Price, &p.Stock, &p.Active,
		&productionCost, &profitMargin, &shippingCost, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if description.Valid {
		p.Description = description.String
	}
	if categoryID.Valid {
		p.CategoryID = categoryID.String
	}
	if productionCost.Valid {
		m, err := money.Parse(productionCost.String)
		if err != nil {
			return nil, err
		}
		p.ProductionCost = &m
	}
	if shippingCost.Valid {
		m, err := money.Parse(shippingCost.String)
		if err != nil {
			return nil, err
		}
		p.ShippingCost = &m
	}
	if profitMargin.Valid {
		p.ProfitMargin = &profitMargin.Float64
	}
	return &p, nil
}

// Create creates a new product.
func (r *PostgresProductRepository) Create(ctx context.Context, product *models.Product) error {
	r.logger.Debug("Creating product", logging.Fields{"name": product.Name})

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO products (
			id, name, description, category_id, price, stock, active,
			production_cost, profit_margin, shipping_cost, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,NOW(),NOW())`,
		product.ID, product.Name, nullString(product.Description),
		nullString(product.CategoryID), product.Price, product.Stock, product.Active,
		nullMoney(product.ProductionCost), nullFloat(product.ProfitMargin),
		nullMoney(product.ShippingCost),
	)
	if err != nil {
		r.logger.Error("Failed to create product", logging.Fields{
			"name":  product.Name,
			"error": err.Error(),
		})
	}
	return err
}

// GetByID retrieves a product by ID.
func (r *PostgresProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1 AND deleted_at IS NULL`, id)

	product, err := r.scanProduct(row)
	if err == sql.ErrNoRows {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return product, nil
}

// List retrieves products with skip/limit pagination.
func (r *PostgresProductRepository) List(ctx context.Context, skip, limit int) ([]*models.Product, int, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+productColumns+` FROM products
		 WHERE deleted_at IS NULL
		 ORDER BY name
		 OFFSET $1 LIMIT $2`, skip, limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var products []*models.Product
	for rows.Next() {
		product, err := r.scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM products WHERE deleted_at IS NULL`).Scan(&total); err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// Update persists mutable product fields.
func (r *PostgresProductRepository) Update(ctx context.Context, product *models.Product) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE products
		SET name = $1, description = $2, category_id = $3, price = $4,
		    stock = $5, production_cost = $6, profit_margin = $7,
		    shipping_cost = $8, updated_at = NOW()
		WHERE id = $9 AND deleted_at IS NULL`,
		product.Name, nullString(product.Description), nullString(product.CategoryID),
		product.Price, product.Stock, nullMoney(product.ProductionCost),
		nullFloat(product.ProfitMargin), nullMoney(product.ShippingCost),
		product.ID,
	)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

// Delete soft-deletes a product.
func (r *PostgresProductRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE products SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

// ToggleStatus flips a product's active flag and returns the updated row.
func (r *PostgresProductRepository) ToggleStatus(ctx context.Context, id string) (*models.Product, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE products SET active = NOT active, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING `+productColumns, id)

	product, err := r.scanProduct(row)
	if err == sql.ErrNoRows {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return product, nil
}

// Counts returns total and active product counts.
func (r *PostgresProductRepository) Counts(ctx context.Context) (int, int, error) {
	var total, active int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE active)
		FROM products WHERE deleted_at IS NULL`,
	).Scan(&total, &active)
	return total, active, err
}

func nullMoney(m *money.Money) interface{} {
	if m == nil {
		return nil
	}
	return *m
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}
