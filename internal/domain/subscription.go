/**
 * @description
 * This file defines the core domain models for the subtrack-service.
 * It includes the Subscription entity that maps to the subscriptions table,
 * the fixed enumerations for frequency, category and status, and the
 * projection result types used by the dashboard and detail views.
 */
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Frequency is the billing cadence of a subscription.
type Frequency string

const (
	FrequencyDaily    Frequency = "daily"
	FrequencyWeekly   Frequency = "weekly"
	FrequencyBiWeekly Frequency = "bi-weekly"
	FrequencyMonthly  Frequency = "monthly"
	FrequencyQuarter  Frequency = "quarterly"
	FrequencyYearly   Frequency = "yearly"
	FrequencyOneTime  Frequency = "one-time"
)

// Frequencies lists every permitted frequency value.
var Frequencies = []Frequency{
	FrequencyDaily,
	FrequencyWeekly,
	FrequencyBiWeekly,
	FrequencyMonthly,
	FrequencyQuarter,
	FrequencyYearly,
	FrequencyOneTime,
}

// Valid reports whether f is one of the permitted frequency values.
func (f Frequency) Valid() bool {
	for _, v := range Frequencies {
		if f == v {
			return true
		}
	}
	return false
}

// Category is the spending category of a subscription.
type Category string

const (
	CategoryEntertainment Category = "entertainment"
	CategoryUtilities     Category = "utilities"
	CategoryFood          Category = "food"
	CategoryTransport     Category = "transportation"
	CategoryHealthcare    Category = "healthcare"
	CategoryOther         Category = "other"
)

// Categories lists every permitted category value.
var Categories = []Category{
	CategoryEntertainment,
	CategoryUtilities,
	CategoryFood,
	CategoryTransport,
	CategoryHealthcare,
	CategoryOther,
}

// Valid reports whether c is one of the permitted category values.
func (c Category) Valid() bool {
	for _, v := range Categories {
		if c == v {
			return true
		}
	}
	return false
}

// Status is the lifecycle state of a subscription record.
type Status string

const (
	StatusActive    Status = "active"
	StatusInactive  Status = "inactive"
	StatusCancelled Status = "cancelled"
)

// Statuses lists every permitted status value.
var Statuses = []Status{StatusActive, StatusInactive, StatusCancelled}

// Valid reports whether s is one of the permitted status values.
func (s Status) Valid() bool {
	for _, v := range Statuses {
		if s == v {
			return true
		}
	}
	return false
}

// Subscription represents a recurring payment record owned by a single user.
// All timestamps are stored and compared in UTC.
type Subscription struct {
	ID               uuid.UUID  `json:"id"`
	Owner            string     `json:"owner"`
	Name             string     `json:"name"`
	Amount           float64    `json:"amount"`
	StartDate        time.Time  `json:"start_date"`
	Frequency        Frequency  `json:"frequency"`
	BusinessDaysOnly bool       `json:"business_days_only"`
	Notes            *string    `json:"notes,omitempty"`
	Category         Category   `json:"category"`
	PaymentMethod    string     `json:"payment_method"`
	Status           Status     `json:"status"`
	AutoRenew        bool       `json:"auto_renew"`
	FinalDate        *time.Time `json:"final_date,omitempty"`
}

// UpcomingPayment is a single projected billing occurrence surfaced on the
// dashboard. Subscription carries the source record for the card views.
type UpcomingPayment struct {
	ID           uuid.UUID    `json:"id"`
	Date         time.Time    `json:"date"`
	Amount       float64      `json:"amount"`
	Name         string       `json:"name"`
	Subscription Subscription `json:"subscription"`
}

// SkippedSubscription records a subscription that contributed no occurrence
// during batch projection, with the reason it was skipped. One bad record must
// never blank the whole dashboard, so skips are data rather than errors.
type SkippedSubscription struct {
	ID     uuid.UUID `json:"id"`
	Reason string    `json:"reason"`
}

// DashboardView is the aggregated payload for the dashboard page.
type DashboardView struct {
	CurrencySymbol string                `json:"currency_symbol"`
	ThisWeekTotal  float64               `json:"this_week_total"`
	NextWeekTotal  float64               `json:"next_week_total"`
	Upcoming       []UpcomingPayment     `json:"upcoming"`
	Skipped        []SkippedSubscription `json:"skipped,omitempty"`
}

// SubscriptionDetail is the payload for the single-subscription view page:
// the record itself plus its next few projected payment dates.
type SubscriptionDetail struct {
	Subscription   Subscription `json:"subscription"`
	NextPayments   []time.Time  `json:"next_payments"`
	CurrencySymbol string       `json:"currency_symbol"`
}

// Preferences holds the per-user display settings kept outside the core:
// a currency code for amounts and a UI theme. Neither is consulted by
// validation or projection.
type Preferences struct {
	Currency string `json:"currency"`
	Theme    string `json:"theme"`
}
