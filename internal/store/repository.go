/**
 * @description
 * This file implements the data access layer for the subtrack-service. All
 * reads and writes are scoped by owner, and every mutation is a single atomic
 * statement: updates and deletes use RETURNING / affected-row checks instead
 * of a separate existence query, so there is no time-of-check/time-of-use gap
 * between "does the row exist" and "change it".
 */
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/subtrack/subtrack-service/internal/domain"
)

// ErrSubscriptionNotFound is returned when no row matches (id, owner).
var ErrSubscriptionNotFound = errors.New("subscription not found")

// subscriptionColumns is the column list shared by every subscription query.
const subscriptionColumns = `id, owner, name, amount, start_date, frequency, business_days_only, notes, category, payment_method, status, auto_renew, final_date`

// Repository handles database operations for subscriptions and preferences.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new repository over the given pool.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// CreateSubscription inserts a new record and returns it with its generated id.
func (r *Repository) CreateSubscription(ctx context.Context, sub domain.Subscription) (domain.Subscription, error) {
	query := `
        INSERT INTO subscriptions (owner, name, amount, start_date, frequency, business_days_only, notes, category, payment_method, status, auto_renew, final_date)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
        RETURNING ` + subscriptionColumns
	row := r.db.QueryRow(ctx, query,
		sub.Owner,
		sub.Name,
		sub.Amount,
		sub.StartDate,
		sub.Frequency,
		sub.BusinessDaysOnly,
		sub.Notes,
		sub.Category,
		sub.PaymentMethod,
		sub.Status,
		sub.AutoRenew,
		sub.FinalDate,
	)
	return scanSubscription(row)
}

// ListByOwner returns every subscription the owner has, oldest first.
func (r *Repository) ListByOwner(ctx context.Context, owner string) ([]domain.Subscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE owner = $1 ORDER BY start_date, id`
	rows, err := r.db.Query(ctx, query, owner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSubscriptions(rows)
}

// ListActiveByOwner returns the owner's subscriptions that can still produce
// occurrences: active, auto-renewing, and not past their final date as of
// the supplied reference instant.
func (r *Repository) ListActiveByOwner(ctx context.Context, owner string, now time.Time) ([]domain.Subscription, error) {
	query := `
        SELECT ` + subscriptionColumns + `
        FROM subscriptions
        WHERE owner = $1
          AND status = 'active'
          AND auto_renew = TRUE
          AND (final_date IS NULL OR final_date > $2)
        ORDER BY start_date, id`
	rows, err := r.db.Query(ctx, query, owner, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSubscriptions(rows)
}

// GetSubscription returns the record matching (id, owner).
func (r *Repository) GetSubscription(ctx context.Context, id uuid.UUID, owner string) (domain.Subscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE id = $1 AND owner = $2`
	sub, err := scanSubscription(r.db.QueryRow(ctx, query, id, owner))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Subscription{}, ErrSubscriptionNotFound
		}
		return domain.Subscription{}, err
	}
	return sub, nil
}

// UpdateSubscription replaces the mutable fields of the record matching
// (id, owner) in one statement and returns the updated row.
func (r *Repository) UpdateSubscription(ctx context.Context, sub domain.Subscription) (domain.Subscription, error) {
	query := `
        UPDATE subscriptions
        SET name = $1,
            amount = $2,
            start_date = $3,
            frequency = $4,
            business_days_only = $5,
            notes = $6,
            category = $7,
            payment_method = $8,
            status = $9,
            auto_renew = $10,
            final_date = $11,
            updated_at = NOW()
        WHERE id = $12 AND owner = $13
        RETURNING ` + subscriptionColumns
	row := r.db.QueryRow(ctx, query,
		sub.Name,
		sub.Amount,
		sub.StartDate,
		sub.Frequency,
		sub.BusinessDaysOnly,
		sub.Notes,
		sub.Category,
		sub.PaymentMethod,
		sub.Status,
		sub.AutoRenew,
		sub.FinalDate,
		sub.ID,
		sub.Owner,
	)
	updated, err := scanSubscription(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Subscription{}, ErrSubscriptionNotFound
		}
		return domain.Subscription{}, err
	}
	return updated, nil
}

// DeleteSubscription removes the record matching (id, owner).
func (r *Repository) DeleteSubscription(ctx context.Context, id uuid.UUID, owner string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM subscriptions WHERE id = $1 AND owner = $2`, id, owner)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrSubscriptionNotFound
	}
	return nil
}

// GetPreferences returns the owner's stored preferences, or the defaults when
// none have been saved yet.
func (r *Repository) GetPreferences(ctx context.Context, owner string) (domain.Preferences, error) {
	var prefs domain.Preferences
	err := r.db.QueryRow(ctx, `SELECT currency, theme FROM user_preferences WHERE user_id = $1`, owner).
		Scan(&prefs.Currency, &prefs.Theme)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return DefaultPreferences(), nil
		}
		return domain.Preferences{}, err
	}
	return prefs, nil
}

// UpsertPreferences creates or replaces the owner's preferences.
func (r *Repository) UpsertPreferences(ctx context.Context, owner string, prefs domain.Preferences) error {
	query := `
        INSERT INTO user_preferences (user_id, currency, theme)
        VALUES ($1, $2, $3)
        ON CONFLICT (user_id) DO UPDATE SET
            currency = EXCLUDED.currency,
            theme = EXCLUDED.theme,
            updated_at = NOW()`
	_, err := r.db.Exec(ctx, query, owner, prefs.Currency, prefs.Theme)
	return err
}

// DefaultPreferences are used for users who never saved settings.
func DefaultPreferences() domain.Preferences {
	return domain.Preferences{Currency: "GBP", Theme: "system"}
}

func scanSubscription(row pgx.Row) (domain.Subscription, error) {
	var sub domain.Subscription
	err := row.Scan(
		&sub.ID,
		&sub.Owner,
		&sub.Name,
		&sub.Amount,
		&sub.StartDate,
		&sub.Frequency,
		&sub.BusinessDaysOnly,
		&sub.Notes,
		&sub.Category,
		&sub.PaymentMethod,
		&sub.Status,
		&sub.AutoRenew,
		&sub.FinalDate,
	)
	return sub, err
}

func scanSubscriptions(rows pgx.Rows) ([]domain.Subscription, error) {
	var subs []domain.Subscription
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}
