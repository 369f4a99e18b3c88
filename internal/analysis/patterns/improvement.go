// Package patterns implements the priority-ordered boolean rule matchers:
// the improvement detector and the breathwork-suggestion trigger.
package patterns

import (
	"time"

	"traderlens/internal/analysis/metrics"
	"traderlens/internal/analysis/scoring"
	"traderlens/internal/models"
)

const improvementWindow = 5

// Improvement names. Priority follows the order of improvementRules.
const (
	ImprovementAvoidedRevenge = "avoided_revenge"
	ImprovementStableRisk     = "stable_risk"
	ImprovementNoImpulsive    = "no_impulsive_entries"
	ImprovementPlanControl    = "improved_plan_control"
	ImprovementNoEarlyExits   = "no_early_exits"
	ImprovementHealthyPacing  = "healthy_pacing"
)

// ImprovementResult reports the highest-priority improvement found in the
// recent window, if any.
type ImprovementResult struct {
	Found    bool
	Name     string
	Message  string
	Priority int // 1 is highest
}

// improvementRule is one (predicate, outcome) pair of the cascade.
type improvementRule struct {
	name    string
	message string
	check   func(in improvementInput) bool
}

// improvementInput bundles everything the rules read, computed once.
type improvementInput struct {
	window      []models.Trade // chronological
	hadLoss     bool
	revenge     int
	impulsive   int
	earlyExits  int
	riskCV      float64
	riskSamples int
	controlNow  int
	controlPrev int
	hasPrev     bool
}

var improvementRules = []improvementRule{
	{
		name:    ImprovementAvoidedRevenge,
		message: "You took a loss without sizing up on the next trade",
		check: func(in improvementInput) bool {
			return in.hadLoss && in.revenge == 0
		},
	},
	{
		name:    ImprovementStableRisk,
		message: "Your position sizing stayed tight across recent trades",
		check: func(in improvementInput) bool {
			return in.riskSamples >= 2 && in.riskCV < 15
		},
	},
	{
		name:    ImprovementNoImpulsive,
		message: "No rushed re-entries in your recent trades",
		check: func(in improvementInput) bool {
			return len(in.window) >= 2 && in.impulsive == 0
		},
	},
	{
		name:    ImprovementPlanControl,
		message: "Plan compliance improved versus your previous trades",
		check: func(in improvementInput) bool {
			return in.hasPrev && in.controlNow >= in.controlPrev+5
		},
	},
	{
		name:    ImprovementNoEarlyExits,
		message: "Every recent trade ran to its stop or target",
		check: func(in improvementInput) bool {
			return len(in.window) >= 2 && in.earlyExits == 0
		},
	},
	{
		name:    ImprovementHealthyPacing,
		message: "Your entries were spaced deliberately, 1 to 4 hours apart",
		check: func(in improvementInput) bool {
			if len(in.window) < 2 {
				return false
			}
			for i := 1; i < len(in.window); i++ {
				gap := in.window[i].EntryTime.Sub(in.window[i-1].EntryTime)
				if gap < time.Hour || gap > 4*time.Hour {
					return false
				}
			}
			return true
		},
	},
}

// DetectImprovement evaluates the six improvement checks over the last (up
// to 5) trades in fixed priority order and reports the first that holds.
// Trades are expected most-recent-first.
func DetectImprovement(trades []models.Trade, plan *models.TradingPlan) ImprovementResult {
	if len(trades) == 0 {
		return ImprovementResult{}
	}

	recent := trades
	if len(recent) > improvementWindow {
		recent = recent[:improvementWindow]
	}
	previous := []models.Trade(nil)
	if len(trades) > improvementWindow {
		previous = trades[improvementWindow:]
		if len(previous) > improvementWindow {
			previous = previous[:improvementWindow]
		}
	}

	in := buildImprovementInput(recent, previous, plan)
	for i, rule := range improvementRules {
		if rule.check(in) {
			return ImprovementResult{
				Found:    true,
				Name:     rule.name,
				Message:  rule.message,
				Priority: i + 1,
			}
		}
	}
	return ImprovementResult{}
}

func buildImprovementInput(recent, previous []models.Trade, plan *models.TradingPlan) improvementInput {
	chrono := make([]models.Trade, len(recent))
	for i := range recent {
		chrono[len(recent)-1-i] = recent[i]
	}

	in := improvementInput{window: chrono}

	var planRisk float64
	if plan != nil {
		planRisk = plan.RiskPercentPerTrade
	}
	for i := range chrono {
		t := &chrono[i]
		if t.ProfitLoss < 0 {
			in.hadLoss = true
		}
		if metrics.EarlyExit(t) {
			in.earlyExits++
		}
		if i > 0 {
			prev := &chrono[i-1]
			if t.EntryTime.Sub(prev.ExitTime) < metrics.ImpulsiveGap {
				in.impulsive++
			}
			if prev.ProfitLoss < 0 && t.RiskPercentUsed != nil && planRisk > 0 &&
				*t.RiskPercentUsed > planRisk*metrics.OversizeMultiple {
				in.revenge++
			}
		}
	}

	risks := metrics.Risks(chrono)
	in.riskSamples = len(risks)
	if mean := metrics.Mean(risks); len(risks) >= 2 && mean > 0 {
		in.riskCV = metrics.StdDev(risks) / mean * 100
	}

	in.controlNow = scoring.PlanControlScore(recent, plan).Score
	if len(previous) > 0 {
		in.controlPrev = scoring.PlanControlScore(previous, plan).Score
		in.hasPrev = true
	}
	return in
}
