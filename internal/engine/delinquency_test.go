package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestClassifyCurrentLoan(t *testing.T) {
	due := date(2026, time.March, 15)

	d := Classify(due, date(2026, time.March, 10), false, StatusActive, false)
	assert.False(t, d.IsOverdue)
	assert.Equal(t, 0, d.DaysOverdue)
	assert.Equal(t, TierNone, d.Tier)

	// Due today is not overdue.
	d = Classify(due, due, false, StatusActive, false)
	assert.False(t, d.IsOverdue)
}

func TestClassifyOverdueTiers(t *testing.T) {
	due := date(2026, time.January, 1)

	cases := []struct {
		today      time.Time
		noticeSent bool
		wantDays   int
		wantTier   FeeTier
	}{
		{date(2026, time.January, 4), false, 3, TierLate},
		{date(2026, time.January, 8), false, 7, TierLate},
		{date(2026, time.January, 9), false, 8, TierLateWaivable},
		// 20 days overdue, no notice: still below the 30-day threshold.
		{date(2026, time.January, 21), false, 20, TierLateWaivable},
		{date(2026, time.January, 31), false, 30, TierNoticeEligible},
		{date(2026, time.February, 15), false, 45, TierNoticeEligible},
		// Notice already on file drops back to the waivable tier.
		{date(2026, time.February, 15), true, 45, TierLateWaivable},
	}

	for _, tc := range cases {
		d := Classify(due, tc.today, false, StatusActive, tc.noticeSent)
		assert.True(t, d.IsOverdue, "today=%s", tc.today)
		assert.Equal(t, tc.wantDays, d.DaysOverdue, "today=%s", tc.today)
		assert.Equal(t, tc.wantTier, d.Tier, "today=%s", tc.today)
	}
}

func TestClassifyTwentyDaysNoNotice(t *testing.T) {
	// 20 days overdue with no notice sent reports late-fee-only, not notice
	// eligibility.
	due := date(2026, time.May, 1)
	d := Classify(due, date(2026, time.May, 21), false, StatusActive, false)

	assert.True(t, d.IsOverdue)
	assert.Equal(t, 20, d.DaysOverdue)
	assert.NotEqual(t, TierNoticeEligible, d.Tier)
}

func TestClassifyInertStates(t *testing.T) {
	due := date(2025, time.June, 1)
	today := date(2026, time.June, 1)

	// Alerts disabled.
	d := Classify(due, today, true, StatusActive, false)
	assert.False(t, d.IsOverdue)
	assert.Equal(t, TierNone, d.Tier)

	// Non-active statuses can never be overdue.
	for _, status := range []LoanStatus{StatusPaidOff, StatusDefaulted, StatusArchived} {
		d := Classify(due, today, false, status, false)
		assert.False(t, d.IsOverdue, "status=%s", status)
		assert.Equal(t, 0, d.DaysOverdue, "status=%s", status)
	}
}

func TestClassifyIdempotent(t *testing.T) {
	due := date(2026, time.April, 1)
	today := date(2026, time.April, 20)

	first := Classify(due, today, false, StatusActive, false)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, Classify(due, today, false, StatusActive, false))
	}
}
