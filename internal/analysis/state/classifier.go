// Package state classifies a trader's psychological state from recent
// trades and re-evaluates it over sliding windows to build a change-point
// timeline.
package state

import (
	"fmt"
	"math"
	"time"

	"traderlens/internal/analysis"
	"traderlens/internal/analysis/metrics"
	"traderlens/internal/models"
)

// Classification thresholds. The day-ratio threshold for OVEREXTENDED is
// strictly greater-than one third: a trader touching exactly one third of
// their trading days must not flip state on a rounding artifact.
const (
	classifierWindow  = 10
	minTradesFullConf = 5
	lowDataConfCap    = 40
	overextendedRatio = 1.0 / 3.0
	breachRatioLimit  = 0.25
	aggressiveAvgRisk = 1.25
	hesitantExitRatio = 0.4
	hesitantTargetMed = 60.0
	hesitantWinRate   = 0.6
)

// Plan-adherence component weights, renormalized over whichever components
// are computable for the window.
const (
	weightRiskDiscipline  = 0.40
	weightSessionAdhere   = 0.25
	weightCountDiscipline = 0.25
	weightTargetProgress  = 0.10
)

// Fallback strings for the insufficient-data response. Exact values are
// load-bearing: callers and tests key on them.
const (
	FallbackIndicator      = "Insufficient trade data for behavioral analysis"
	FallbackRecommendation = "Log more trades to unlock behavioral analysis"
)

// Classify derives the trader's psychological state from the most recent
// min(10, len(trades)) trades, expected most-recent-first. A nil plan or an
// empty trade list yields the defined neutral fallback, not an error.
func Classify(trades []models.Trade, plan *models.TradingPlan) analysis.StateAnalysis {
	if plan == nil || len(trades) == 0 {
		return analysis.StateAnalysis{
			State:           analysis.StateStable,
			Confidence:      50,
			PlanAdherence:   50,
			AnalyzedTrades:  0,
			Indicators:      []string{FallbackIndicator},
			Recommendations: []string{FallbackRecommendation},
			GeneratedAt:     time.Now(),
		}
	}

	window := trades
	if len(window) > classifierWindow {
		window = window[:classifierWindow]
	}

	snap := metrics.Compute(window, plan)
	adherence := planAdherence(snap, plan)
	st, indicators := classifyState(snap, plan)

	return analysis.StateAnalysis{
		State:           st,
		Confidence:      confidence(snap, plan, adherence),
		PlanAdherence:   adherence,
		AnalyzedTrades:  snap.TradeCount,
		Indicators:      indicators,
		Recommendations: recommendationsFor(st),
		GeneratedAt:     time.Now(),
	}
}

// classifyState runs the priority cascade and returns the winning state
// together with the indicator strings for every condition of that state
// which fired.
func classifyState(snap metrics.Snapshot, plan *models.TradingPlan) (analysis.State, []string) {
	days := float64(snap.DaysWithTrades)

	if days > 0 {
		var indicators []string
		if float64(snap.ExceededDays)/days > overextendedRatio {
			indicators = append(indicators, fmt.Sprintf(
				"Daily trade limit exceeded on %d of %d trading days", snap.ExceededDays, snap.DaysWithTrades))
		}
		if float64(snap.OutsideSessionDays)/days > overextendedRatio {
			indicators = append(indicators, fmt.Sprintf(
				"Traded outside preferred sessions on %d of %d trading days", snap.OutsideSessionDays, snap.DaysWithTrades))
		}
		if len(indicators) > 0 {
			return analysis.StateOverextended, indicators
		}
	}

	var aggressive []string
	if snap.RiskSpike {
		aggressive = append(aggressive, "Risk sharply escalated over the last 3 trades")
	}
	if snap.TradeCount > 0 && float64(snap.RiskBreaches)/float64(snap.TradeCount) >= breachRatioLimit {
		aggressive = append(aggressive, fmt.Sprintf(
			"%d of %d trades breached the plan risk allowance", snap.RiskBreaches, snap.TradeCount))
	}
	if snap.RiskSamples > 0 && plan.RiskPercentPerTrade > 0 &&
		snap.AvgRiskUsed > plan.RiskPercentPerTrade*aggressiveAvgRisk {
		aggressive = append(aggressive, fmt.Sprintf(
			"Average risk %.2f%% is well above the planned %.2f%%", snap.AvgRiskUsed, plan.RiskPercentPerTrade))
	}
	if len(aggressive) > 0 {
		return analysis.StateAggressive, aggressive
	}

	var hesitant []string
	if snap.TradeCount > 0 && float64(snap.EarlyExits)/float64(snap.TradeCount) >= hesitantExitRatio {
		hesitant = append(hesitant, fmt.Sprintf(
			"%d of %d trades were cut early", snap.EarlyExits, snap.TradeCount))
	}
	if snap.TargetSamples > 0 && snap.MedianTargetPct < hesitantTargetMed && snap.WinRate <= hesitantWinRate {
		hesitant = append(hesitant, fmt.Sprintf(
			"Median target achievement %.0f%% with a %.0f%% win rate", snap.MedianTargetPct, snap.WinRate*100))
	}
	if len(hesitant) > 0 {
		return analysis.StateHesitant, hesitant
	}

	return analysis.StateStable, []string{"Recent trading is consistent with the plan"}
}

// planAdherence combines the four discipline components, renormalizing the
// weights over whichever components the window can actually support.
func planAdherence(snap metrics.Snapshot, plan *models.TradingPlan) int {
	type component struct {
		weight float64
		value  float64
		ok     bool
	}

	days := float64(snap.DaysWithTrades)
	components := []component{
		{
			weight: weightRiskDiscipline,
			value:  1 - float64(snap.RiskBreaches)/math.Max(1, float64(snap.RiskSamples)),
			ok:     snap.RiskSamples > 0 && plan.RiskPercentPerTrade > 0,
		},
		{
			weight: weightSessionAdhere,
			value:  1 - float64(snap.OutsideSessionDays)/math.Max(1, days),
			ok:     plan.HasSessionPreference() && days > 0,
		},
		{
			weight: weightCountDiscipline,
			value:  1 - float64(snap.ExceededDays)/math.Max(1, days),
			ok:     plan.MaxTradesPerDay > 0 && days > 0,
		},
		{
			weight: weightTargetProgress,
			value:  snap.MedianTargetPct / 100,
			ok:     snap.TargetSamples > 0,
		},
	}

	var weighted, totalWeight float64
	for _, c := range components {
		if !c.ok {
			continue
		}
		weighted += metrics.Clamp(c.value, 0, 1) * c.weight
		totalWeight += c.weight
	}
	if totalWeight == 0 {
		return 50
	}
	return int(math.Round(100 * weighted / totalWeight))
}

// confidence scores how much signal backs the classification.
func confidence(snap metrics.Snapshot, plan *models.TradingPlan, adherence int) int {
	sample := float64(snap.TradeCount)
	if sample > classifierWindow {
		sample = classifierWindow
	}

	var riskSignal float64
	if snap.RiskSamples > 0 && plan.RiskPercentPerTrade > 0 {
		riskSignal = math.Abs(snap.AvgRiskUsed/plan.RiskPercentPerTrade - 1)
	}
	winSignal := math.Abs(snap.WinRate-0.5) * 2
	var targetSignal float64
	if snap.TargetSamples > 0 {
		targetSignal = math.Abs(snap.MedianTargetPct/100 - 0.6)
	}
	signal := math.Max(riskSignal, math.Max(winSignal, targetSignal))

	conf := math.Round(100 * (0.5*float64(adherence)/100 + 0.3*sample/classifierWindow + 0.2*signal))
	if snap.TradeCount < minTradesFullConf && conf > lowDataConfCap {
		conf = lowDataConfCap
	}
	return int(metrics.Clamp(conf, 10, 95))
}

// recommendationsFor returns the canned guidance for each state.
// Presentation data only: control flow never branches on these strings.
func recommendationsFor(st analysis.State) []string {
	switch st {
	case analysis.StateOverextended:
		return []string{
			"Cut back to your planned trades-per-day limit",
			"Stick to your preferred sessions for the rest of the week",
		}
	case analysis.StateAggressive:
		return []string{
			"Reduce position size back to plan before the next entry",
			"Take a break after any trade that breaches your risk allowance",
		}
	case analysis.StateHesitant:
		return []string{
			"Let winners run to target instead of cutting early",
			"Review your last five exits against their original targets",
		}
	default:
		return []string{
			"Keep following the plan; log every trade to maintain the signal",
		}
	}
}
