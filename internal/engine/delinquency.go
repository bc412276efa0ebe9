package engine

import (
	"math"
	"time"
)

// LoanStatus is the lifecycle state of a loan record.
type LoanStatus string

const (
	StatusActive    LoanStatus = "active"
	StatusPaidOff   LoanStatus = "paid_off"
	StatusDefaulted LoanStatus = "defaulted"
	StatusArchived  LoanStatus = "archived"
)

// FeeTier is the delinquency fee tier derived from days overdue.
type FeeTier string

const (
	// TierNone: the loan is current.
	TierNone FeeTier = "none"

	// TierLate: overdue up to the grace threshold; standard late fee applies.
	TierLate FeeTier = "late"

	// TierLateWaivable: past the grace threshold; late fee applies and an
	// admin may waive it.
	TierLateWaivable FeeTier = "late_waivable"

	// TierNoticeEligible: at or past the notice threshold with no notice on
	// file; eligible for a formal default/cure notice.
	TierNoticeEligible FeeTier = "notice_eligible"
)

// Day thresholds for the fee tiers.
const (
	GraceDays  = 7
	NoticeDays = 30
)

// Delinquency is the derived, never-persisted overdue state of a loan.
// Recomputed from the loan and the current date on every read.
type Delinquency struct {
	IsOverdue   bool    `json:"is_overdue"`
	DaysOverdue int     `json:"days_overdue"`
	Tier        FeeTier `json:"fee_tier"`
}

// Classify computes the overdue state of a loan as of today. Only active
// loans with alerts enabled can be overdue; everything else reports current.
// The computation has no side effects and is idempotent for a given
// (nextDue, today) pair.
func Classify(nextDue, today time.Time, alertsDisabled bool, status LoanStatus, noticeSent bool) Delinquency {
	if status != StatusActive || alertsDisabled {
		return Delinquency{Tier: TierNone}
	}

	days := daysOverdue(nextDue, today)
	return Delinquency{
		IsOverdue:   days > 0,
		DaysOverdue: days,
		Tier:        FeeTierFor(days, noticeSent),
	}
}

// FeeTierFor derives the fee tier for a number of days overdue.
func FeeTierFor(daysOverdue int, noticeSent bool) FeeTier {
	switch {
	case daysOverdue <= 0:
		return TierNone
	case daysOverdue >= NoticeDays && !noticeSent:
		return TierNoticeEligible
	case daysOverdue > GraceDays:
		return TierLateWaivable
	default:
		return TierLate
	}
}

// daysOverdue is max(0, ceil(today - due)) in whole days.
func daysOverdue(nextDue, today time.Time) int {
	diff := today.Sub(nextDue)
	if diff <= 0 {
		return 0
	}
	return int(math.Ceil(diff.Hours() / 24))
}
