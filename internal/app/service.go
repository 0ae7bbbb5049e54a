/**
 * @description
 * This file contains the application service for the subtrack-service. The
 * Service orchestrates validation, persistence and billing projection: write
 * paths run requests through the validator before touching the repository,
 * read paths load records and hand them to the projector, then aggregate the
 * results for the dashboard and detail views.
 */
package app

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/subtrack/subtrack-service/internal/domain"
)

// Repository defines the persistence operations the service needs.
type Repository interface {
	CreateSubscription(ctx context.Context, sub domain.Subscription) (domain.Subscription, error)
	ListByOwner(ctx context.Context, owner string) ([]domain.Subscription, error)
	ListActiveByOwner(ctx context.Context, owner string, now time.Time) ([]domain.Subscription, error)
	GetSubscription(ctx context.Context, id uuid.UUID, owner string) (domain.Subscription, error)
	UpdateSubscription(ctx context.Context, sub domain.Subscription) (domain.Subscription, error)
	DeleteSubscription(ctx context.Context, id uuid.UUID, owner string) error
	GetPreferences(ctx context.Context, owner string) (domain.Preferences, error)
	UpsertPreferences(ctx context.Context, owner string, prefs domain.Preferences) error
}

// currencySymbols maps supported preference currency codes to their display
// symbol. GBP is the fallback for unknown or unset preferences.
var currencySymbols = map[string]string{
	"GBP": "£",
	"USD": "$",
	"EUR": "€",
}

const defaultCurrency = "GBP"

var allowedThemes = map[string]bool{"light": true, "dark": true, "system": true}

// Service provides the business logic for subscription tracking.
type Service struct {
	repo   Repository
	logger *slog.Logger

	// now is swappable so tests can pin the reference instant.
	now func() time.Time
}

// NewService creates a new Service over the given repository.
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger, now: time.Now}
}

// CreateSubscription validates a create-request body and persists the
// normalized record for the owner.
func (s *Service) CreateSubscription(ctx context.Context, owner string, input map[string]any) (domain.Subscription, error) {
	sub, err := ValidateCreate(input, s.now())
	if err != nil {
		return domain.Subscription{}, err
	}
	sub.Owner = owner
	return s.repo.CreateSubscription(ctx, sub)
}

// UpdateSubscription validates an edit-request body and atomically replaces
// the mutable fields of the record matching (id, owner). The repository
// reports store.ErrSubscriptionNotFound when no row matches.
func (s *Service) UpdateSubscription(ctx context.Context, owner string, input map[string]any) (domain.Subscription, error) {
	rawID := stringValue(input["id"])
	if rawID == "" {
		return domain.Subscription{}, domain.NewFieldError("id", domain.ErrMissingField, "ID is required")
	}
	id, err := uuid.Parse(rawID)
	if err != nil {
		return domain.Subscription{}, domain.NewFieldError("id", domain.ErrInvalidFormat, "Invalid subscription ID")
	}

	sub, verr := ValidateUpdate(input, s.now())
	if verr != nil {
		return domain.Subscription{}, verr
	}
	sub.ID = id
	sub.Owner = owner
	return s.repo.UpdateSubscription(ctx, sub)
}

// DeleteSubscription removes the record matching (id, owner).
func (s *Service) DeleteSubscription(ctx context.Context, owner string, id uuid.UUID) error {
	return s.repo.DeleteSubscription(ctx, id, owner)
}

// ListSubscriptions returns every record the owner has.
func (s *Service) ListSubscriptions(ctx context.Context, owner string) ([]domain.Subscription, error) {
	return s.repo.ListByOwner(ctx, owner)
}

// SubscriptionDetail loads one record and projects its next payment dates.
func (s *Service) SubscriptionDetail(ctx context.Context, owner string, id uuid.UUID) (domain.SubscriptionDetail, error) {
	sub, err := s.repo.GetSubscription(ctx, id, owner)
	if err != nil {
		return domain.SubscriptionDetail{}, err
	}

	prefs, err := s.repo.GetPreferences(ctx, owner)
	if err != nil {
		return domain.SubscriptionDetail{}, err
	}

	return domain.SubscriptionDetail{
		Subscription:   sub,
		NextPayments:   ProjectDetail(sub, s.now()),
		CurrencySymbol: currencySymbol(prefs.Currency),
	}, nil
}

// Dashboard projects the owner's active subscriptions over the forward
// horizon and aggregates weekly spend totals for the current and next week.
// Skipped records are logged and carried in the payload rather than failing
// the page.
func (s *Service) Dashboard(ctx context.Context, owner string) (domain.DashboardView, error) {
	now := s.now()

	subs, err := s.repo.ListActiveByOwner(ctx, owner, now)
	if err != nil {
		return domain.DashboardView{}, err
	}

	upcoming, skipped := ProjectUpcoming(subs, now)
	for _, skip := range skipped {
		s.logger.Warn("subscription skipped during projection", "subscription_id", skip.ID, "reason", skip.Reason)
	}

	prefs, err := s.repo.GetPreferences(ctx, owner)
	if err != nil {
		return domain.DashboardView{}, err
	}

	thisWeek := weekStart(now)
	nextWeek := thisWeek.AddDate(0, 0, 7)

	var thisWeekTotal, nextWeekTotal float64
	for _, p := range upcoming {
		switch weekStart(p.Date) {
		case thisWeek:
			thisWeekTotal += p.Amount
		case nextWeek:
			nextWeekTotal += p.Amount
		}
	}

	return domain.DashboardView{
		CurrencySymbol: currencySymbol(prefs.Currency),
		ThisWeekTotal:  roundAmount(thisWeekTotal),
		NextWeekTotal:  roundAmount(nextWeekTotal),
		Upcoming:       upcoming,
		Skipped:        skipped,
	}, nil
}

// GetPreferences returns the owner's display preferences, defaulted by the
// repository when none are stored.
func (s *Service) GetPreferences(ctx context.Context, owner string) (domain.Preferences, error) {
	return s.repo.GetPreferences(ctx, owner)
}

// SavePreferences validates and stores the owner's display preferences.
func (s *Service) SavePreferences(ctx context.Context, owner string, prefs domain.Preferences) (domain.Preferences, error) {
	if _, ok := currencySymbols[prefs.Currency]; !ok {
		return domain.Preferences{}, domain.NewFieldError("currency", domain.ErrInvalidEnumValue, "Currency is not supported")
	}
	if prefs.Theme == "" {
		prefs.Theme = "system"
	}
	if !allowedThemes[prefs.Theme] {
		return domain.Preferences{}, domain.NewFieldError("theme", domain.ErrInvalidEnumValue, "Theme is not supported")
	}
	if err := s.repo.UpsertPreferences(ctx, owner, prefs); err != nil {
		return domain.Preferences{}, err
	}
	return prefs, nil
}

// currencySymbol resolves a preference code to its display symbol, falling
// back to the GBP symbol.
func currencySymbol(code string) string {
	if symbol, ok := currencySymbols[code]; ok {
		return symbol
	}
	return currencySymbols[defaultCurrency]
}

// weekStart truncates an instant to the start of its week (Sunday, UTC).
func weekStart(t time.Time) time.Time {
	t = t.UTC()
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return day.AddDate(0, 0, -int(day.Weekday()))
}

// roundAmount rounds a spend total to two decimal places.
func roundAmount(v float64) float64 {
	return math.Round(v*100) / 100
}
