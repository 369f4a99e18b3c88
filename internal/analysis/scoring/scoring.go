// Package scoring implements the behavioral scoring suite: plan-control
// score with deviation attribution, mental battery, six-trait radar,
// time-of-day behavior heatmap, and daily consistency trend. All scorers
// share one pattern: extract sub-signals from a short trade window, combine
// via fixed weights, clamp to [0,100], label by threshold band.
package scoring

import (
	"time"

	"traderlens/internal/analysis/metrics"
	"traderlens/internal/models"
)

// scoringWindow is the default short window the scorers operate on.
const scoringWindow = 5

const largeLossMultiple = 2.0

// behaviorEvents counts the discrete behavioral events of a chronological
// trade window. Every scorer derives its sub-signals from these counts.
type behaviorEvents struct {
	impulsive         int // re-entries under 30 minutes after the prior exit
	oversized         int // risk above 1.3x the plan allowance
	breaches          int // risk above 1.5x the plan allowance
	clusters          int // runs of 3 trades inside 2 hours
	largeLosses       int // losses beyond 2x the plan risk
	earlyExits        int
	pauses            int // deliberate gaps of 2+ hours
	revenge           int // oversized entries directly after a loss
	postWinOversize   int // oversized entries directly after a win
	sessionViolations int
}

// extractEvents scans a chronological (oldest-first) window.
// Trades with unknown risk never count toward any risk-based event.
func extractEvents(chrono []models.Trade, plan *models.TradingPlan) behaviorEvents {
	var ev behaviorEvents
	var planRisk float64
	if plan != nil {
		planRisk = plan.RiskPercentPerTrade
	}

	for i := range chrono {
		t := &chrono[i]

		if metrics.EarlyExit(t) {
			ev.earlyExits++
		}
		if plan != nil && !plan.AllowsSession(t.Session) {
			ev.sessionViolations++
		}

		over := oversized(t, planRisk)
		if over {
			ev.oversized++
		}
		if r := t.RiskPercentUsed; r != nil && planRisk > 0 && *r > planRisk*metrics.BreachMultiple {
			ev.breaches++
		}
		if planRisk > 0 && t.ProfitLoss < -largeLossMultiple*planRisk {
			ev.largeLosses++
		}

		if i > 0 {
			prev := &chrono[i-1]
			gap := t.EntryTime.Sub(prev.ExitTime)
			if gap < metrics.ImpulsiveGap {
				ev.impulsive++
			}
			if gap >= metrics.DisciplinedPause {
				ev.pauses++
			}
			if over && prev.ProfitLoss < 0 {
				ev.revenge++
			}
			if over && prev.ProfitLoss > 0 {
				ev.postWinOversize++
			}
		}
		if i >= 2 && chrono[i].EntryTime.Sub(chrono[i-2].EntryTime) <= 2*time.Hour {
			ev.clusters++
		}
	}
	return ev
}

func oversized(t *models.Trade, planRisk float64) bool {
	return t.RiskPercentUsed != nil && planRisk > 0 && *t.RiskPercentUsed > planRisk*metrics.OversizeMultiple
}

// withinPlanRisk reports whether the trade's risk sits inside +-10% of the
// plan allowance. Unknown risk is never "within".
func withinPlanRisk(t *models.Trade, planRisk float64) bool {
	if t.RiskPercentUsed == nil || planRisk <= 0 {
		return false
	}
	d := *t.RiskPercentUsed - planRisk
	if d < 0 {
		d = -d
	}
	return d <= 0.1*planRisk
}

// lastN returns the first n elements of a most-recent-first slice.
func lastN(trades []models.Trade, n int) []models.Trade {
	if len(trades) > n {
		return trades[:n]
	}
	return trades
}
