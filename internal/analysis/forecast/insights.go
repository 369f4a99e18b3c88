package forecast

import (
	"fmt"
	"math"
	"time"

	"traderlens/internal/analysis"
	"traderlens/internal/analysis/metrics"
	"traderlens/internal/models"
)

const (
	adherenceStrong  = 70
	adherenceWeak    = 60
	winRateStrong    = 60.0
	earlyExitConcern = 0.3
)

// Insights summarizes a period-filtered trade list. The generator always
// emits exactly one POSITIVE and one CONSTRUCTIVE insight, falling back to
// generic observations when nothing specific fires.
func Insights(trades []models.Trade, plan *models.TradingPlan, now time.Time) analysis.PerformanceSnapshot {
	snap := metrics.Compute(trades, plan)

	adherence := periodAdherence(trades, plan, snap)
	weekStart := now.Add(-7 * 24 * time.Hour)
	thisWeek := 0
	for i := range trades {
		if trades[i].EntryTime.After(weekStart) {
			thisWeek++
		}
	}

	result := analysis.PerformanceSnapshot{
		WinRate:        math.Round(snap.WinRate * 100),
		AvgRiskReward:  snap.AvgRiskReward,
		PlanAdherence:  adherence,
		TradesThisWeek: thisWeek,
		TradeCount:     snap.TradeCount,
		GeneratedAt:    time.Now(),
	}
	result.Insights = []analysis.Insight{
		positiveInsight(result),
		constructiveInsight(result, snap),
	}
	return result
}

// periodAdherence is the period-level composite:
// round(((1-riskBreachRatio)+(1-outsideSessionRatio))/2*100).
func periodAdherence(trades []models.Trade, plan *models.TradingPlan, snap metrics.Snapshot) int {
	var breachRatio float64
	if snap.RiskSamples > 0 {
		breachRatio = float64(snap.RiskBreaches) / float64(snap.RiskSamples)
	}
	outsideRatio := metrics.OutsideSessionRatio(trades, plan)
	return int(math.Round(((1 - breachRatio) + (1 - outsideRatio)) / 2 * 100))
}

func positiveInsight(r analysis.PerformanceSnapshot) analysis.Insight {
	switch {
	case r.TradeCount > 0 && r.PlanAdherence >= adherenceStrong:
		return analysis.Insight{
			Kind:   analysis.InsightPositive,
			Title:  "Strong plan adherence",
			Detail: fmt.Sprintf("You followed your plan %d%% of the time this period", r.PlanAdherence),
		}
	case r.TradeCount > 0 && r.WinRate >= winRateStrong:
		return analysis.Insight{
			Kind:   analysis.InsightPositive,
			Title:  "Healthy win rate",
			Detail: fmt.Sprintf("%.0f%% of trades this period closed in profit", r.WinRate),
		}
	default:
		return analysis.Insight{
			Kind:   analysis.InsightPositive,
			Title:  "Building the habit",
			Detail: "Consistent trade logging is the foundation of every other signal",
		}
	}
}

func constructiveInsight(r analysis.PerformanceSnapshot, snap metrics.Snapshot) analysis.Insight {
	earlyRatio := 0.0
	if snap.TradeCount > 0 {
		earlyRatio = float64(snap.EarlyExits) / float64(snap.TradeCount)
	}
	switch {
	case earlyRatio >= earlyExitConcern:
		return analysis.Insight{
			Kind:   analysis.InsightConstructive,
			Title:  "Frequent early exits",
			Detail: fmt.Sprintf("%d of %d trades were cut before their target", snap.EarlyExits, snap.TradeCount),
		}
	case r.TradeCount > 0 && r.PlanAdherence < adherenceWeak:
		return analysis.Insight{
			Kind:   analysis.InsightConstructive,
			Title:  "Plan adherence slipping",
			Detail: fmt.Sprintf("Adherence fell to %d%% this period; revisit your risk and session rules", r.PlanAdherence),
		}
	default:
		return analysis.Insight{
			Kind:   analysis.InsightConstructive,
			Title:  "Room to refine",
			Detail: "Add notes to your trades to sharpen the behavioral signals",
		}
	}
}
