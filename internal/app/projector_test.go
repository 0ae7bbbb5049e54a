package app

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/subtrack/subtrack-service/internal/domain"
)

func activeSub(freq domain.Frequency, start time.Time) domain.Subscription {
	return domain.Subscription{
		ID:        uuid.New(),
		Owner:     "user_1",
		Name:      "Netflix",
		Amount:    9.99,
		StartDate: start,
		Frequency: freq,
		Status:    domain.StatusActive,
		AutoRenew: true,
	}
}

func TestNextOccurrences_MonthlyClampsToMonthEnd(t *testing.T) {
	// A subscription anchored on Jan 31 bills on Feb 28 and then Mar 31:
	// each occurrence is stepped from the original start date, so the day
	// of month recovers after short months.
	sub := activeSub(domain.FrequencyMonthly, time.Date(2025, time.January, 31, 0, 0, 0, 0, time.UTC))
	now := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)

	occs := nextOccurrences(sub, now, 1)
	if len(occs) != 1 {
		t.Fatalf("expected one occurrence, got %d", len(occs))
	}
	want := time.Date(2025, time.March, 31, 0, 0, 0, 0, time.UTC)
	if !occs[0].Equal(want) {
		t.Fatalf("expected next occurrence %v, got %v", want, occs[0])
	}
}

func TestNextOccurrences_SaturdayStartPushedToMonday(t *testing.T) {
	// 2025-08-02 is a Saturday; with business days only the anchor lands on
	// the following Monday.
	start := time.Date(2025, time.August, 2, 0, 0, 0, 0, time.UTC)
	sub := activeSub(domain.FrequencyWeekly, start)
	sub.BusinessDaysOnly = true
	now := time.Date(2025, time.August, 1, 0, 0, 0, 0, time.UTC)

	occs := nextOccurrences(sub, now, 1)
	if len(occs) != 1 {
		t.Fatalf("expected one occurrence, got %d", len(occs))
	}
	want := time.Date(2025, time.August, 4, 0, 0, 0, 0, time.UTC)
	if !occs[0].Equal(want) {
		t.Fatalf("expected Monday %v, got %v", want, occs[0])
	}
}

func TestNextOccurrences_BusinessDaysNeverYieldWeekends(t *testing.T) {
	for _, freq := range []domain.Frequency{
		domain.FrequencyDaily,
		domain.FrequencyWeekly,
		domain.FrequencyBiWeekly,
		domain.FrequencyMonthly,
		domain.FrequencyQuarter,
		domain.FrequencyYearly,
	} {
		sub := activeSub(freq, time.Date(2025, time.August, 2, 0, 0, 0, 0, time.UTC))
		sub.BusinessDaysOnly = true
		now := time.Date(2025, time.August, 1, 0, 0, 0, 0, time.UTC)

		for _, occ := range nextOccurrences(sub, now, 20) {
			if wd := occ.Weekday(); wd == time.Saturday || wd == time.Sunday {
				t.Errorf("frequency %s produced weekend occurrence %v", freq, occ)
			}
		}
	}
}

func TestNextOccurrences_FinalDateIsExclusive(t *testing.T) {
	start := time.Date(2025, time.August, 4, 0, 0, 0, 0, time.UTC)
	final := start.AddDate(0, 0, 14)
	sub := activeSub(domain.FrequencyWeekly, start)
	sub.FinalDate = &final

	occs := nextOccurrences(sub, start, 10)
	if len(occs) != 2 {
		t.Fatalf("expected two occurrences before the final date, got %d: %v", len(occs), occs)
	}
	for _, occ := range occs {
		if !occ.Before(final) {
			t.Errorf("occurrence %v is on or after final date %v", occ, final)
		}
	}
}

func TestNextOccurrences_OneTime(t *testing.T) {
	start := time.Date(2025, time.September, 1, 0, 0, 0, 0, time.UTC)
	sub := activeSub(domain.FrequencyOneTime, start)

	before := time.Date(2025, time.August, 1, 0, 0, 0, 0, time.UTC)
	occs := nextOccurrences(sub, before, 3)
	if len(occs) != 1 || !occs[0].Equal(start) {
		t.Fatalf("expected the single start date occurrence, got %v", occs)
	}

	after := time.Date(2025, time.October, 1, 0, 0, 0, 0, time.UTC)
	if occs := nextOccurrences(sub, after, 3); len(occs) != 0 {
		t.Fatalf("a past one-time payment must contribute nothing, got %v", occs)
	}
}

func TestStepCompositionMatchesDirectOccurrence(t *testing.T) {
	// For a mid-month anchor, N single steps and one N-step jump agree for
	// every repeating frequency.
	start := time.Date(2025, time.March, 15, 9, 30, 0, 0, time.UTC)
	const n = 5

	for _, freq := range []domain.Frequency{
		domain.FrequencyDaily,
		domain.FrequencyWeekly,
		domain.FrequencyBiWeekly,
		domain.FrequencyMonthly,
		domain.FrequencyQuarter,
		domain.FrequencyYearly,
	} {
		stepped := start
		for i := 0; i < n; i++ {
			next, ok := occurrenceAt(stepped, freq, 1)
			if !ok {
				t.Fatalf("frequency %s refused to step", freq)
			}
			stepped = next
		}
		direct, ok := occurrenceAt(start, freq, n)
		if !ok {
			t.Fatalf("frequency %s refused a direct jump", freq)
		}
		if !stepped.Equal(direct) {
			t.Errorf("frequency %s: stepped %v != direct %v", freq, stepped, direct)
		}
	}
}

func TestProjectUpcoming_AutoRenewOffYieldsNothing(t *testing.T) {
	sub := activeSub(domain.FrequencyDaily, time.Date(2025, time.August, 10, 0, 0, 0, 0, time.UTC))
	sub.AutoRenew = false
	now := time.Date(2025, time.August, 1, 0, 0, 0, 0, time.UTC)

	upcoming, skipped := ProjectUpcoming([]domain.Subscription{sub}, now)
	if len(upcoming) != 0 {
		t.Fatalf("expected no upcoming payments, got %v", upcoming)
	}
	if len(skipped) != 1 || skipped[0].Reason != skipAutoRenewOff {
		t.Fatalf("expected auto-renew skip, got %v", skipped)
	}
}

func TestProjectUpcoming_SkipsWithoutFailingBatch(t *testing.T) {
	now := time.Date(2025, time.August, 1, 0, 0, 0, 0, time.UTC)

	good := activeSub(domain.FrequencyWeekly, now.AddDate(0, 0, 3))
	bad := activeSub(domain.FrequencyWeekly, now.AddDate(0, 0, 3))
	bad.Frequency = "fortnightly"
	ended := activeSub(domain.FrequencyWeekly, now.AddDate(0, -2, 0))
	endedAt := now.AddDate(0, -1, 0)
	ended.FinalDate = &endedAt
	farOut := activeSub(domain.FrequencyYearly, now.AddDate(0, 3, 0))

	upcoming, skipped := ProjectUpcoming([]domain.Subscription{bad, good, ended, farOut}, now)
	if len(upcoming) != 1 || upcoming[0].ID != good.ID {
		t.Fatalf("expected only the good record to project, got %v", upcoming)
	}
	reasons := map[uuid.UUID]string{}
	for _, s := range skipped {
		reasons[s.ID] = s.Reason
	}
	if reasons[bad.ID] != skipBadFrequency {
		t.Errorf("expected bad frequency skip, got %q", reasons[bad.ID])
	}
	if reasons[ended.ID] != skipEnded {
		t.Errorf("expected ended skip, got %q", reasons[ended.ID])
	}
	if reasons[farOut.ID] != skipOutsideHorizon {
		t.Errorf("expected horizon skip, got %q", reasons[farOut.ID])
	}
}

func TestProjectUpcoming_InactiveStatusSkipped(t *testing.T) {
	now := time.Date(2025, time.August, 1, 0, 0, 0, 0, time.UTC)
	sub := activeSub(domain.FrequencyDaily, now.AddDate(0, 0, 1))
	sub.Status = domain.StatusCancelled

	upcoming, skipped := ProjectUpcoming([]domain.Subscription{sub}, now)
	if len(upcoming) != 0 || len(skipped) != 1 || skipped[0].Reason != skipNotActive {
		t.Fatalf("expected not-active skip, got upcoming=%v skipped=%v", upcoming, skipped)
	}
}

func TestProjectUpcoming_SortedByDateStable(t *testing.T) {
	now := time.Date(2025, time.August, 1, 0, 0, 0, 0, time.UTC)

	later := activeSub(domain.FrequencyWeekly, now.AddDate(0, 0, 10))
	sooner := activeSub(domain.FrequencyWeekly, now.AddDate(0, 0, 2))
	sameDayFirst := activeSub(domain.FrequencyWeekly, now.AddDate(0, 0, 5))
	sameDaySecond := activeSub(domain.FrequencyWeekly, now.AddDate(0, 0, 5))

	upcoming, _ := ProjectUpcoming([]domain.Subscription{later, sameDayFirst, sameDaySecond, sooner}, now)
	if len(upcoming) != 4 {
		t.Fatalf("expected four payments, got %d", len(upcoming))
	}
	wantOrder := []uuid.UUID{sooner.ID, sameDayFirst.ID, sameDaySecond.ID, later.ID}
	for i, want := range wantOrder {
		if upcoming[i].ID != want {
			t.Fatalf("position %d: expected %v, got %v", i, want, upcoming[i].ID)
		}
	}
}

func TestProjectDetail_LimitsToThree(t *testing.T) {
	now := time.Date(2025, time.August, 6, 0, 0, 0, 0, time.UTC)
	sub := activeSub(domain.FrequencyDaily, now.AddDate(0, 0, -30))

	occs := ProjectDetail(sub, now)
	if len(occs) != detailOccurrenceLimit {
		t.Fatalf("expected %d occurrences, got %d", detailOccurrenceLimit, len(occs))
	}
	for i, occ := range occs {
		if occ.Before(now) {
			t.Errorf("occurrence %d (%v) is before now", i, occ)
		}
		if i > 0 && occ.Before(occs[i-1]) {
			t.Errorf("occurrences out of order: %v before %v", occ, occs[i-1])
		}
	}
}

func TestProjectDetail_IneligibleYieldsNil(t *testing.T) {
	now := time.Date(2025, time.August, 6, 0, 0, 0, 0, time.UTC)
	sub := activeSub(domain.FrequencyDaily, now)
	sub.Status = domain.StatusInactive

	if occs := ProjectDetail(sub, now); occs != nil {
		t.Fatalf("expected nil for inactive subscription, got %v", occs)
	}
}

func TestAddMonthsClamped(t *testing.T) {
	cases := []struct {
		start  time.Time
		months int
		want   time.Time
	}{
		{time.Date(2025, time.January, 31, 0, 0, 0, 0, time.UTC), 1, time.Date(2025, time.February, 28, 0, 0, 0, 0, time.UTC)},
		{time.Date(2025, time.January, 31, 0, 0, 0, 0, time.UTC), 2, time.Date(2025, time.March, 31, 0, 0, 0, 0, time.UTC)},
		{time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC), 12, time.Date(2025, time.February, 28, 0, 0, 0, 0, time.UTC)},
		{time.Date(2025, time.November, 15, 0, 0, 0, 0, time.UTC), 3, time.Date(2026, time.February, 15, 0, 0, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		if got := addMonthsClamped(tc.start, tc.months); !got.Equal(tc.want) {
			t.Errorf("addMonthsClamped(%v, %d) = %v, want %v", tc.start, tc.months, got, tc.want)
		}
	}
}
