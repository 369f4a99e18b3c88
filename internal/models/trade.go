package models

import "time"

// Trade represents a single closed position logged by the trader.
// Nullable fields use pointers: a nil value means "unknown" and must be
// excluded from every aggregate, never defaulted to zero.
type Trade struct {
	ID                    string
	EntryTime             time.Time
	ExitTime              time.Time
	ProfitLoss            float64 // signed, percent of account
	RiskPercentUsed       *float64
	RiskRewardAchieved    *float64
	TargetPercentAchieved *float64
	Session               Session
	StopLossHit           bool
	ExitedEarly           bool
	Notes                 string
}

// IsWin reports whether the trade closed in profit.
func (t *Trade) IsWin() bool {
	return t.ProfitLoss > 0
}

// Day returns the calendar date of the trade entry, truncated to midnight
// in the entry's location.
func (t *Trade) Day() time.Time {
	y, m, d := t.EntryTime.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.EntryTime.Location())
}

// Float64Ptr returns a pointer to v. Convenience for nullable trade fields.
func Float64Ptr(v float64) *float64 {
	return &v
}
