/**
 * @description
 * This file implements the billing projection core: pure functions that turn
 * a subscription record and a reference instant into its upcoming occurrence
 * dates. Nothing here reads the wall clock; callers thread `now` through
 * every call so the projection is deterministic and testable.
 *
 * Occurrence N is always computed as N calendar steps from the unadjusted
 * start date (month arithmetic clamps to the end of shorter months), so a
 * monthly subscription anchored on Jan 31 yields Feb 28 and then Mar 31
 * rather than drifting to the 28th forever. Business-day adjustment is then
 * applied to each candidate independently, and the final date is an exclusive
 * upper bound on the adjusted date.
 */
package app

import (
	"sort"
	"time"

	"github.com/subtrack/subtrack-service/internal/domain"
)

const (
	// dashboardHorizonDays is the forward window the dashboard reports on.
	dashboardHorizonDays = 30
	// detailOccurrenceLimit caps the dates shown on the detail page.
	detailOccurrenceLimit = 3
)

// Skip reasons surfaced in batch projection results.
const (
	skipAutoRenewOff   = "auto-renew disabled"
	skipEnded          = "final date has passed"
	skipNotActive      = "subscription is not active"
	skipBadFrequency   = "unrecognized frequency"
	skipOutsideHorizon = "no occurrence within horizon"
)

// projectionGate decides whether a subscription contributes any occurrences
// at all. It returns the skip reason when it does not.
func projectionGate(sub domain.Subscription, now time.Time) (string, bool) {
	if !sub.AutoRenew {
		return skipAutoRenewOff, false
	}
	if sub.FinalDate != nil && sub.FinalDate.Before(now) {
		return skipEnded, false
	}
	if sub.Status != domain.StatusActive {
		return skipNotActive, false
	}
	if !sub.Frequency.Valid() {
		return skipBadFrequency, false
	}
	return "", true
}

// occurrenceAt returns occurrence i (zero-based) of the unadjusted chain.
// The second result is false once the chain is exhausted, which only happens
// for one-time subscriptions.
func occurrenceAt(start time.Time, freq domain.Frequency, i int) (time.Time, bool) {
	switch freq {
	case domain.FrequencyDaily:
		return start.AddDate(0, 0, i), true
	case domain.FrequencyWeekly:
		return start.AddDate(0, 0, 7*i), true
	case domain.FrequencyBiWeekly:
		return start.AddDate(0, 0, 14*i), true
	case domain.FrequencyMonthly:
		return addMonthsClamped(start, i), true
	case domain.FrequencyQuarter:
		return addMonthsClamped(start, 3*i), true
	case domain.FrequencyYearly:
		return addMonthsClamped(start, 12*i), true
	case domain.FrequencyOneTime:
		if i == 0 {
			return start, true
		}
		return time.Time{}, false
	default:
		return time.Time{}, false
	}
}

// addMonthsClamped adds n calendar months, clamping the day to the end of the
// target month instead of letting it overflow (Jan 31 + 1 month is Feb 28,
// not Mar 3).
func addMonthsClamped(t time.Time, n int) time.Time {
	year, month, day := t.Date()
	hour, minute, sec := t.Clock()
	lastDay := daysInMonth(year, month+time.Month(n), t.Location())
	if day > lastDay {
		day = lastDay
	}
	return time.Date(year, month+time.Month(n), day, hour, minute, sec, t.Nanosecond(), t.Location())
}

func daysInMonth(year int, month time.Month, loc *time.Location) int {
	// Day zero of the following month normalizes to this month's last day.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
}

// nextBusinessDay pushes a date landing on Saturday or Sunday forward one day
// at a time until it lands on a weekday.
func nextBusinessDay(t time.Time) time.Time {
	for t.Weekday() == time.Saturday || t.Weekday() == time.Sunday {
		t = t.AddDate(0, 0, 1)
	}
	return t
}

// nextOccurrences enumerates up to limit occurrence dates at or after now.
// Anchoring walks the unadjusted chain forward from the start date; each
// emitted date has the business-day adjustment applied, and enumeration stops
// at the final date (exclusive) when one is set.
func nextOccurrences(sub domain.Subscription, now time.Time, limit int) []time.Time {
	var occs []time.Time
	for i := 0; len(occs) < limit; i++ {
		d, ok := occurrenceAt(sub.StartDate, sub.Frequency, i)
		if !ok {
			break
		}
		if d.Before(now) {
			continue
		}
		if sub.BusinessDaysOnly {
			d = nextBusinessDay(d)
		}
		if sub.FinalDate != nil && !d.Before(*sub.FinalDate) {
			break
		}
		occs = append(occs, d)
	}
	return occs
}

// ProjectUpcoming is the dashboard batch projection: for each subscription it
// finds the next occurrence and reports it when it falls inside the forward
// horizon. Subscriptions that contribute nothing are returned as skips with a
// reason instead of failing the batch, so one bad record cannot blank the
// whole view. Results are ordered by date ascending; ties keep input order.
func ProjectUpcoming(subs []domain.Subscription, now time.Time) ([]domain.UpcomingPayment, []domain.SkippedSubscription) {
	horizon := now.AddDate(0, 0, dashboardHorizonDays)

	var (
		upcoming []domain.UpcomingPayment
		skipped  []domain.SkippedSubscription
	)
	for _, sub := range subs {
		if reason, ok := projectionGate(sub, now); !ok {
			skipped = append(skipped, domain.SkippedSubscription{ID: sub.ID, Reason: reason})
			continue
		}
		occs := nextOccurrences(sub, now, 1)
		if len(occs) == 0 || !occs[0].Before(horizon) {
			skipped = append(skipped, domain.SkippedSubscription{ID: sub.ID, Reason: skipOutsideHorizon})
			continue
		}
		upcoming = append(upcoming, domain.UpcomingPayment{
			ID:           sub.ID,
			Date:         occs[0],
			Amount:       sub.Amount,
			Name:         sub.Name,
			Subscription: sub,
		})
	}

	sort.SliceStable(upcoming, func(i, j int) bool {
		return upcoming[i].Date.Before(upcoming[j].Date)
	})
	return upcoming, skipped
}

// ProjectDetail enumerates the next few occurrences for the detail view.
// Ineligible subscriptions yield an empty slice.
func ProjectDetail(sub domain.Subscription, now time.Time) []time.Time {
	if _, ok := projectionGate(sub, now); !ok {
		return nil
	}
	return nextOccurrences(sub, now, detailOccurrenceLimit)
}
