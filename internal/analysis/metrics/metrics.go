// Package metrics provides the aggregate statistics every higher-level
// behavioral component builds on. All functions are pure and operate on a
// bounded, most-recent-first trade window.
package metrics

import (
	"math"
	"sort"
	"time"

	"traderlens/internal/models"
)

// Risk multipliers shared across the analytics suite.
const (
	// BreachMultiple flags a trade whose risk exceeds this multiple of the
	// plan's per-trade allowance.
	BreachMultiple = 1.5
	// OversizeMultiple flags a moderately oversized trade.
	OversizeMultiple = 1.3
	// SpikeMultiple is the threshold for the recent risk-spike signal.
	SpikeMultiple = 1.3
)

// ImpulsiveGap is the maximum entry-to-previous-exit gap that counts as an
// impulsive re-entry.
const ImpulsiveGap = 30 * time.Minute

// DisciplinedPause is the minimum gap between trades treated as a
// deliberate, positive break.
const DisciplinedPause = 2 * time.Hour

// Snapshot holds the aggregate statistics for one trade window.
// Sample counters record how many trades carried the relevant nullable
// field; an average with zero samples is reported as 0 and must be treated
// as "unknown", not as a literal zero.
type Snapshot struct {
	TradeCount int

	WinRate float64 // 0-1

	AvgRiskUsed float64
	RiskSamples int

	AvgRiskReward float64
	RRSamples     int

	MedianTargetPct float64
	TargetSamples   int

	EarlyExits   int
	RiskBreaches int
	RiskSpike    bool

	DaysWithTrades     int
	ExceededDays       int
	OutsideSessionDays int
}

// Compute derives a Snapshot from a most-recent-first trade window and the
// trader's plan. The plan may be nil, in which case all plan-relative
// statistics (breaches, spike, day discipline) stay zero.
func Compute(trades []models.Trade, plan *models.TradingPlan) Snapshot {
	var s Snapshot
	s.TradeCount = len(trades)
	if s.TradeCount == 0 {
		return s
	}

	wins := 0
	var riskSum, rrSum float64
	var targets []float64
	for i := range trades {
		t := &trades[i]
		if t.IsWin() {
			wins++
		}
		if t.RiskPercentUsed != nil {
			riskSum += *t.RiskPercentUsed
			s.RiskSamples++
		}
		if t.RiskRewardAchieved != nil {
			rrSum += *t.RiskRewardAchieved
			s.RRSamples++
		}
		if t.TargetPercentAchieved != nil {
			targets = append(targets, *t.TargetPercentAchieved)
			s.TargetSamples++
		}
		if EarlyExit(t) {
			s.EarlyExits++
		}
	}

	s.WinRate = float64(wins) / float64(s.TradeCount)
	if s.RiskSamples > 0 {
		s.AvgRiskUsed = riskSum / float64(s.RiskSamples)
	}
	if s.RRSamples > 0 {
		s.AvgRiskReward = rrSum / float64(s.RRSamples)
	}
	if s.TargetSamples > 0 {
		s.MedianTargetPct = Median(targets)
	}

	days := GroupByDay(trades)
	s.DaysWithTrades = len(days)

	if plan != nil {
		planRisk := plan.RiskPercentPerTrade
		if planRisk > 0 {
			for i := range trades {
				r := trades[i].RiskPercentUsed
				if r != nil && *r > planRisk*BreachMultiple {
					s.RiskBreaches++
				}
			}
			s.RiskSpike = riskSpike(trades, planRisk, s.AvgRiskUsed, s.RiskSamples)
		}
		if plan.MaxTradesPerDay > 0 {
			for _, dayTrades := range days {
				if len(dayTrades) > plan.MaxTradesPerDay {
					s.ExceededDays++
				}
			}
		}
		if plan.HasSessionPreference() {
			for _, dayTrades := range days {
				for i := range dayTrades {
					if !plan.AllowsSession(dayTrades[i].Session) {
						s.OutsideSessionDays++
						break
					}
				}
			}
		}
	}

	return s
}

// riskSpike reports whether at least 2 of the last 3 trades exceed
// max(planRisk*1.3, recentAvgRisk*1.3). Trades without risk data are
// skipped, never counted as exceeding.
func riskSpike(trades []models.Trade, planRisk, avgRisk float64, riskSamples int) bool {
	if riskSamples == 0 {
		return false
	}
	threshold := planRisk * SpikeMultiple
	if avg := avgRisk * SpikeMultiple; avg > threshold {
		threshold = avg
	}

	exceeding := 0
	n := len(trades)
	if n > 3 {
		n = 3
	}
	for i := 0; i < n; i++ {
		if r := trades[i].RiskPercentUsed; r != nil && *r > threshold {
			exceeding++
		}
	}
	return exceeding >= 2
}

// EarlyExit reports whether a trade counts as an early exit: either flagged
// explicitly, or a winner that stalled between 30% and 80% of its target.
func EarlyExit(t *models.Trade) bool {
	if t.ExitedEarly {
		return true
	}
	if t.IsWin() && t.TargetPercentAchieved != nil {
		tp := *t.TargetPercentAchieved
		return tp >= 30 && tp <= 80
	}
	return false
}

// OutsideSessionRatio returns the fraction of trades entered outside the
// plan's preferred sessions. Zero when the plan carries no preference.
func OutsideSessionRatio(trades []models.Trade, plan *models.TradingPlan) float64 {
	if plan == nil || !plan.HasSessionPreference() || len(trades) == 0 {
		return 0
	}
	outside := 0
	for i := range trades {
		if !plan.AllowsSession(trades[i].Session) {
			outside++
		}
	}
	return float64(outside) / float64(len(trades))
}

// GroupByDay buckets trades by the calendar date of their entry time.
func GroupByDay(trades []models.Trade) map[time.Time][]models.Trade {
	days := make(map[time.Time][]models.Trade)
	for i := range trades {
		day := trades[i].Day()
		days[day] = append(days[day], trades[i])
	}
	return days
}

// FilterSession returns the trades entered in the given session, preserving
// order.
func FilterSession(trades []models.Trade, session models.Session) []models.Trade {
	var out []models.Trade
	for i := range trades {
		if trades[i].Session == session {
			out = append(out, trades[i])
		}
	}
	return out
}

// SortAscending returns a copy sorted oldest-first by entry time.
func SortAscending(trades []models.Trade) []models.Trade {
	out := make([]models.Trade, len(trades))
	copy(out, trades)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].EntryTime.Before(out[j].EntryTime)
	})
	return out
}

// SortDescending returns a copy sorted most-recent-first by entry time.
func SortDescending(trades []models.Trade) []models.Trade {
	out := make([]models.Trade, len(trades))
	copy(out, trades)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].EntryTime.After(out[j].EntryTime)
	})
	return out
}

// Risks collects the non-nil risk percentages of a window.
func Risks(trades []models.Trade) []float64 {
	var out []float64
	for i := range trades {
		if r := trades[i].RiskPercentUsed; r != nil {
			out = append(out, *r)
		}
	}
	return out
}

// Median returns the median of values; the mean of the two middle values
// for even counts. Returns 0 for an empty slice.
func Median(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}
	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// Mean returns the arithmetic mean, or 0 for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// StdDev returns the population standard deviation, or 0 for fewer than two
// values.
func StdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	mean := Mean(values)
	var sum float64
	for _, v := range values {
		d := v - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)))
}

// Clamp restricts value to [minVal, maxVal].
func Clamp(value, minVal, maxVal float64) float64 {
	if value < minVal {
		return minVal
	}
	if value > maxVal {
		return maxVal
	}
	return value
}
