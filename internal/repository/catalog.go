package repository

import (
	"context"
	"database/sql"

	"github.com/mimos-de-madera/backoffice-service/internal/apperrors"
	"github.com/mimos-de-madera/backoffice-service/internal/logging"
	"github.com/mimos-de-madera/backoffice-service/internal/models"
)

// PostgresCategoryRepository implements CategoryRepository using PostgreSQL.
type PostgresCategoryRepository struct {
	db     *sql.DB
	logger *logging.Logger
}

// NewPostgresCategoryRepository creates a new PostgreSQL category repository.
func NewPostgresCategoryRepository(db *sql.DB, logger *logging.Logger) *PostgresCategoryRepository {
	return &PostgresCategoryRepository{db: db, logger: logger}
}

var _ CategoryRepository = (*PostgresCategoryRepository)(nil)

// Create creates a new category.
func (r *PostgresCategoryRepository) Create(ctx context.Context, category *models.Category) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO categories (id, name, description, active, created_at, updated_at)
		VALUES ($1,$2,$3,$4,NOW(),NOW())`,
		category.ID, category.Name, nullString(category.Description), category.Active,
	)
	return err
}

// List retrieves all categories ordered by name.
func (r *PostgresCategoryRepository) List(ctx context.Context) ([]*models.Category, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, description, active, created_at, updated_at
		FROM categories ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []*models.Category
	for rows.Next() {
		var c models.Category
		var description sql.NullString
		if err := rows.Scan(&c.ID, &c.Name, &description, &c.Active, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		if description.Valid {
			c.Description = description.String
		}
		categories = append(categories, &c)
	}
	return categories, rows.Err()
}

// Update persists category fields.
func (r *PostgresCategoryRepository) Update(ctx context.Context, category *models.Category) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE categories SET name = $1, description = $2, updated_at = NOW()
		WHERE id = $3`,
		category.Name, nullString(category.Description), category.ID,
	)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

// Delete removes a category.
func (r *PostgresCategoryRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

// ToggleStatus flips a category's active flag and returns the updated row.
func (r *PostgresCategoryRepository) ToggleStatus(ctx context.Context, id string) (*models.Category, error) {
	var c models.Category
	var description sql.NullString

	err := r.db.QueryRowContext(ctx, `
		UPDATE categories SET active = NOT active, updated_at = NOW()
		WHERE id = $1
		RETURNING id, name, description, active, created_at, updated_at`, id,
	).Scan(&c.ID, &c.Name, &description, &c.Active, &c.CreatedAt, &c.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if description.Valid {
		c.Description = description.String
	}
	return &c, nil
}
