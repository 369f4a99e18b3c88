package scoring

import (
	"math"
	"sort"
	"strings"
	"time"

	"traderlens/internal/models"
)

// Per-trade plan-control points, out of 100.
const (
	pointsSession    = 20
	pointsStopTarget = 30
	pointsSizing     = 25
	pointsNotes      = 10
	pointsSpacing    = 15
)

// compliantScore is the plan-control level above which no deviation cause
// is attributed.
const compliantScore = 80

// PlanControl is the plan-compliance score with causal attribution.
type PlanControl struct {
	Score       int
	TradeScores []int // chronological, most recent last
	TopCause    string
	Patterns    []string
	SampleSize  int
}

// deviationCause pairs a candidate cause with its attribution weight and
// the event counter it reads. Order matters: earlier entries win weighted
// ties.
type deviationCause struct {
	name   string
	weight float64
	count  func(ev behaviorEvents, lowEnergy bool) int
}

var deviationCauses = []deviationCause{
	{"post-loss revenge pattern", 1.6, func(ev behaviorEvents, _ bool) int { return ev.revenge }},
	{"oversizing", 1.5, func(ev behaviorEvents, _ bool) int { return ev.oversized }},
	{"impulsive timing", 1.4, func(ev behaviorEvents, _ bool) int { return ev.impulsive }},
	{"high-frequency clustering", 1.2, func(ev behaviorEvents, _ bool) int { return ev.clusters }},
	{"session violation", 1.1, func(ev behaviorEvents, _ bool) int { return ev.sessionViolations }},
	{"post-win overconfidence", 1.0, func(ev behaviorEvents, _ bool) int { return ev.postWinOversize }},
	{"low energy", 0.9, func(_ behaviorEvents, lowEnergy bool) int {
		if lowEnergy {
			return 1
		}
		return 0
	}},
}

// PlanControlScore grades how closely the most recent (up to 5) trades
// follow the declared plan and, when compliance slips, attributes the most
// likely behavioral cause. Trades are expected most-recent-first.
func PlanControlScore(trades []models.Trade, plan *models.TradingPlan) PlanControl {
	if plan == nil || len(trades) == 0 {
		return PlanControl{Score: 100}
	}

	score, scores, window := planControlMean(trades, plan)
	result := PlanControl{
		Score:       score,
		TradeScores: scores,
		SampleSize:  len(window),
	}
	if score < compliantScore {
		ev := extractEvents(window, plan)
		lowEnergy := MentalBattery(trades, plan).Score < 50
		result.TopCause, result.Patterns = attributeDeviation(ev, lowEnergy)
	}
	return result
}

// planControlMean computes the mean per-trade control score over the last
// (up to 5) trades without attribution. Shared with the battery scorer,
// which must not recurse back into attribution.
func planControlMean(trades []models.Trade, plan *models.TradingPlan) (int, []int, []models.Trade) {
	if plan == nil || len(trades) == 0 {
		return 100, nil, nil
	}

	chrono := chronological(trades)
	window := chrono
	if len(window) > scoringWindow {
		window = window[len(window)-scoringWindow:]
	}
	windowStart := len(chrono) - len(window)

	scores := make([]int, 0, len(window))
	total := 0
	for i := range window {
		var prev *models.Trade
		if windowStart+i > 0 {
			prev = &chrono[windowStart+i-1]
		}
		s := tradeControlScore(&window[i], prev, plan)
		scores = append(scores, s)
		total += s
	}
	return int(math.Round(float64(total) / float64(len(scores)))), scores, window
}

// tradeControlScore awards the five per-trade criteria.
func tradeControlScore(t, prev *models.Trade, plan *models.TradingPlan) int {
	score := 0
	if plan.AllowsSession(t.Session) {
		score += pointsSession
	}
	if !t.ExitedEarly {
		score += pointsStopTarget
	}
	if withinPlanRisk(t, plan.RiskPercentPerTrade) {
		score += pointsSizing
	}
	if strings.TrimSpace(t.Notes) != "" {
		score += pointsNotes
	}
	if prev == nil || t.EntryTime.Sub(prev.ExitTime) >= 30*time.Minute {
		score += pointsSpacing
	}
	return score
}

// attributeDeviation ranks candidate causes by weighted occurrence count and
// returns the top cause plus up to 3 observed patterns.
func attributeDeviation(ev behaviorEvents, lowEnergy bool) (string, []string) {
	type ranked struct {
		name     string
		weighted float64
		order    int
	}
	var hits []ranked
	for i, c := range deviationCauses {
		n := c.count(ev, lowEnergy)
		if n == 0 {
			continue
		}
		hits = append(hits, ranked{c.name, float64(n) * c.weight, i})
	}
	if len(hits) == 0 {
		return "", nil
	}
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].weighted != hits[j].weighted {
			return hits[i].weighted > hits[j].weighted
		}
		return hits[i].order < hits[j].order
	})

	patterns := make([]string, 0, 3)
	for _, h := range hits {
		if len(patterns) == 3 {
			break
		}
		patterns = append(patterns, h.name)
	}
	return hits[0].name, patterns
}

func chronological(trades []models.Trade) []models.Trade {
	out := make([]models.Trade, len(trades))
	for i := range trades {
		out[len(trades)-1-i] = trades[i]
	}
	return out
}
