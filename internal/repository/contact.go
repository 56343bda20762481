package repository

import (
	"context"
	"database/sql"

	"github.com/mimos-de-madera/backoffice-service/internal/apperrors"
	"github.com/mimos-de-madera/backoffice-service/internal/logging"
	"github.com/mimos-de-madera/backoffice-service/internal/models"
)

// PostgresContactRepository implements ContactRepository using PostgreSQL.
type PostgresContactRepository struct {
	db     *sql.DB
	logger *logging.Logger
}

// NewPostgresContactRepository creates a new PostgreSQL contact repository.
func NewPostgresContactRepository(db *sql.DB, logger *logging.Logger) *PostgresContactRepository {
	return &PostgresContactRepository{db: db, logger: logger}
}

var _ ContactRepository = (*PostgresContactRepository)(nil)

const contactColumns = `id, name, email, subject, message, read, notes, created_at, updated_at`

func scanContact(row interface{ Scan(dest ...interface{}) error }) (*models.Contact, error) {
	var c models.Contact
	var subject, notes sql.NullString
	err := row.Scan(&c.ID, &c.Name, &c.Email, &subject, &c.Message,
		&c.Read, &notes, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if subject.Valid {
		c.Subject = subject.String
	}
	if notes.Valid {
		c.Notes = notes.String
	}
	return &c, nil
}

// GetByID retrieves a contact message by ID.
func (r *PostgresContactRepository) GetByID(ctx context.Context, id string) (*models.Contact, error) {
	contact, err := scanContact(r.db.QueryRowContext(ctx,
		`SELECT `+contactColumns+` FROM contacts WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, apperrors.ErrNotFound
	}
	return contact, err
}

// List retrieves contact messages newest first.
func (r *PostgresContactRepository) List(ctx context.Context) ([]*models.Contact, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+contactColumns+` FROM contacts ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var contacts []*models.Contact
	for rows.Next() {
		contact, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		contacts = append(contacts, contact)
	}
	return contacts, rows.Err()
}

// Update persists the read flag and internal notes.
func (r *PostgresContactRepository) Update(ctx context.Context, contact *models.Contact) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE contacts SET read = $1, notes = $2, updated_at = NOW()
		WHERE id = $3`,
		contact.Read, nullString(contact.Notes), contact.ID,
	)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

// Delete removes a contact message.
func (r *PostgresContactRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM contacts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

// UnreadCount returns the number of unread contact messages.
func (r *PostgresContactRepository) UnreadCount(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM contacts WHERE NOT read`).Scan(&count)
	return count, err
}

// PostgresSubscriptionRepository implements SubscriptionRepository using
// PostgreSQL.
type PostgresSubscriptionRepository struct {
	db *sql.DB
}

// NewPostgresSubscriptionRepository creates a new subscription repository.
func NewPostgresSubscriptionRepository(db *sql.DB) *PostgresSubscriptionRepository {
	return &PostgresSubscriptionRepository{db: db}
}

var _ SubscriptionRepository = (*PostgresSubscriptionRepository)(nil)

// List retrieves newsletter subscriptions newest first.
func (r *PostgresSubscriptionRepository) List(ctx context.Context) ([]*models.Subscription, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, email, created_at FROM email_subscriptions ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []*models.Subscription
	for rows.Next() {
		var s models.Subscription
		if err := rows.Scan(&s.ID, &s.Email, &s.CreatedAt); err != nil {
			return nil, err
		}
		subs = append(subs, &s)
	}
	return subs, rows.Err()
}

// Count returns the number of subscriptions.
func (r *PostgresSubscriptionRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM email_subscriptions`).Scan(&count)
	return count, err
}

// Delete removes a subscription.
func (r *PostgresSubscriptionRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM email_subscriptions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}
