package state

import (
	"math"

	"traderlens/internal/analysis"
	"traderlens/internal/analysis/metrics"
	"traderlens/internal/models"
)

const (
	historyWindow       = 5
	confidenceJump      = 15
	defaultHistoryLimit = 20
)

// History re-runs the classifier over sliding 5-trade windows across the
// full trade sequence (sorted ascending by entry time) and emits a point
// whenever the state label changes or confidence jumps by more than 15.
// Emission stops once limit points have been produced; limit <= 0 uses the
// default of 20.
func History(trades []models.Trade, plan *models.TradingPlan, limit int) analysis.StateHistory {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	asc := metrics.SortAscending(trades)
	var points []analysis.HistoryPoint

	for i := range asc {
		if len(points) >= limit {
			break
		}

		start := i - (historyWindow - 1)
		if start < 0 {
			start = 0
		}
		window := reverseWindow(asc[start : i+1])
		result := Classify(window, plan)

		if len(points) > 0 {
			prev := points[len(points)-1]
			stateChanged := result.State != prev.State
			confJumped := abs(result.Confidence-prev.Confidence) > confidenceJump
			if !stateChanged && !confJumped {
				continue
			}
		}

		points = append(points, analysis.HistoryPoint{
			TradeIndex: i,
			Timestamp:  asc[i].EntryTime,
			State:      result.State,
			Confidence: result.Confidence,
		})
	}

	return analysis.StateHistory{
		Points:  points,
		Summary: summarize(points),
	}
}

// reverseWindow converts an ascending sub-slice into the most-recent-first
// ordering the classifier expects.
func reverseWindow(asc []models.Trade) []models.Trade {
	out := make([]models.Trade, len(asc))
	for i := range asc {
		out[len(asc)-1-i] = asc[i]
	}
	return out
}

func summarize(points []analysis.HistoryPoint) analysis.HistorySummary {
	var summary analysis.HistorySummary
	if len(points) == 0 {
		summary.DominantState = analysis.StateStable
		return summary
	}

	summary.Changes = len(points) - 1

	counts := make(map[analysis.State]int)
	firstSeen := make(map[analysis.State]int)
	confidences := make([]float64, len(points))
	for i, p := range points {
		counts[p.State]++
		if _, ok := firstSeen[p.State]; !ok {
			firstSeen[p.State] = i
		}
		confidences[i] = float64(p.Confidence)
	}

	dominant := points[0].State
	for st, n := range counts {
		best := counts[dominant]
		if n > best || (n == best && firstSeen[st] < firstSeen[dominant]) {
			dominant = st
		}
	}
	summary.DominantState = dominant
	summary.MeanConfidence = metrics.Mean(confidences)
	summary.Volatility = math.Round(metrics.StdDev(confidences)/100*100) / 100
	return summary
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
