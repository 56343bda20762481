package repository

import (
	"context"
	"database/sql"

	"github.com/mimos-de-madera/backoffice-service/internal/apperrors"
	"github.com/mimos-de-madera/backoffice-service/internal/logging"
	"github.com/mimos-de-madera/backoffice-service/internal/models"
)

// PostgresUserRepository implements UserRepository using PostgreSQL.
type PostgresUserRepository struct {
	db     *sql.DB
	logger *logging.Logger
}

// NewPostgresUserRepository creates a new PostgreSQL user repository.
func NewPostgresUserRepository(db *sql.DB, logger *logging.Logger) *PostgresUserRepository {
	return &PostgresUserRepository{db: db, logger: logger}
}

var _ UserRepository = (*PostgresUserRepository)(nil)

const userColumns = `id, username, email, password_hash, is_admin, active, created_at, updated_at`

func scanUser(row interface{ Scan(dest ...interface{}) error }) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash,
		&u.IsAdmin, &u.Active, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Create creates a new user.
func (r *PostgresUserRepository) Create(ctx context.Context, user *models.User) error {
	r.logger.Debug("Creating user", logging.Fields{"username": user.Username})

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, username, email, password_hash, is_admin, active, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,NOW(),NOW())`,
		user.ID, user.Username, user.Email, user.PasswordHash, user.IsAdmin, user.Active,
	)
	return err
}

// GetByID retrieves a user by ID.
func (r *PostgresUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, apperrors.ErrNotFound
	}
	return user, err
}

// GetByUsername retrieves a user by username.
func (r *PostgresUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = $1`, username))
	if err == sql.ErrNoRows {
		return nil, apperrors.ErrNotFound
	}
	return user, err
}

// List retrieves all users.
func (r *PostgresUserRepository) List(ctx context.Context) ([]*models.User, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY username`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// Update persists mutable user fields.
func (r *PostgresUserRepository) Update(ctx context.Context, user *models.User) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users SET email = $1, password_hash = $2, active = $3, updated_at = NOW()
		WHERE id = $4`,
		user.Email, user.PasswordHash, user.Active, user.ID,
	)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

// Delete removes a user.
func (r *PostgresUserRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

// ToggleAdmin flips the admin flag and returns the updated row.
func (r *PostgresUserRepository) ToggleAdmin(ctx context.Context, id string) (*models.User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx, `
		UPDATE users SET is_admin = NOT is_admin, updated_at = NOW()
		WHERE id = $1
		RETURNING `+userColumns, id))
	if err == sql.ErrNoRows {
		return nil, apperrors.ErrNotFound
	}
	return user, err
}
