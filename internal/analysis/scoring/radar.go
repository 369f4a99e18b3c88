package scoring

import (
	"math"

	"traderlens/internal/analysis/metrics"
	"traderlens/internal/models"
)

// Radar holds the six behavioral traits, each on a 0-100 scale.
// Discipline, ImpulseControl and Consistency read high when behavior is
// healthy; Aggression, Hesitation and EmotionalVolatility read high when it
// is not.
type Radar struct {
	Discipline          float64
	ImpulseControl      float64
	Aggression          float64
	Hesitation          float64
	Consistency         float64
	EmotionalVolatility float64
	SampleSize          int
}

// Radar trait bonuses.
const (
	bonusNoBreach        = 10
	bonusNoViolation     = 5
	bonusAnyExtremeRisk  = 20
	bonusRevenge         = 15
	bonusLowTargetWin    = 20
	bonusLongGap         = 15
	bonusSameSession     = 10
	bonusStableTiming    = 5
	bonusDoubleVolatile  = 20
	lowTargetWinCeiling  = 60.0
	longGapHours         = 4
	extremeRiskMultiple  = 1.5
	stableTimingHourSpan = 2.0
)

// PsychRadar extracts the six-trait behavioral radar from the last (up to
// 5) trades, most-recent-first. An empty window returns the neutral
// no-evidence radar: full discipline scores, zero pressure scores.
func PsychRadar(trades []models.Trade, plan *models.TradingPlan) Radar {
	window := lastN(trades, scoringWindow)
	if len(window) == 0 {
		return Radar{Discipline: 100, ImpulseControl: 100, Consistency: 100}
	}

	chrono := chronological(window)
	ev := extractEvents(chrono, plan)
	snap := metrics.Compute(window, plan)
	var planRisk float64
	if plan != nil {
		planRisk = plan.RiskPercentPerTrade
	}

	r := Radar{SampleSize: len(window)}

	control, _, _ := planControlMean(window, plan)
	discipline := float64(control)
	if ev.breaches == 0 {
		discipline += bonusNoBreach
	}
	if ev.sessionViolations == 0 {
		discipline += bonusNoViolation
	}
	r.Discipline = metrics.Clamp(discipline, 0, 100)

	r.ImpulseControl = metrics.Clamp(100-float64(ev.impulsive)/scoringWindow*100, 0, 100)

	var aggression float64
	if snap.RiskSamples > 0 && planRisk > 0 {
		aggression = snap.AvgRiskUsed / planRisk * 50
	}
	if anyRiskAbove(window, planRisk*extremeRiskMultiple) {
		aggression += bonusAnyExtremeRisk
	}
	if ev.revenge > 0 {
		aggression += bonusRevenge
	}
	r.Aggression = metrics.Clamp(aggression, 0, 100)

	hesitation := float64(ev.earlyExits) / scoringWindow * 100
	if hasLowTargetWin(window) {
		hesitation += bonusLowTargetWin
	}
	if hasLongGap(chrono) {
		hesitation += bonusLongGap
	}
	r.Hesitation = metrics.Clamp(hesitation, 0, 100)

	consistency := 100 - riskVariabilityPct(window)
	if sameSession(window) {
		consistency += bonusSameSession
	}
	if stableTiming(chrono) {
		consistency += bonusStableTiming
	}
	r.Consistency = metrics.Clamp(consistency, 0, 100)

	volatility := math.Abs(r.Aggression-r.Hesitation) / 2
	if r.Aggression > 60 && r.Hesitation > 60 {
		volatility += bonusDoubleVolatile
	}
	r.EmotionalVolatility = metrics.Clamp(volatility, 0, 100)

	return r
}

func anyRiskAbove(trades []models.Trade, threshold float64) bool {
	if threshold <= 0 {
		return false
	}
	for i := range trades {
		if r := trades[i].RiskPercentUsed; r != nil && *r > threshold {
			return true
		}
	}
	return false
}

// hasLowTargetWin reports a winner that banked well short of its target,
// a classic hesitation tell.
func hasLowTargetWin(trades []models.Trade) bool {
	for i := range trades {
		t := &trades[i]
		if t.IsWin() && t.TargetPercentAchieved != nil && *t.TargetPercentAchieved < lowTargetWinCeiling {
			return true
		}
	}
	return false
}

// hasLongGap reports an entry-to-entry gap above 4 hours inside the window.
func hasLongGap(chrono []models.Trade) bool {
	for i := 1; i < len(chrono); i++ {
		if chrono[i].EntryTime.Sub(chrono[i-1].EntryTime).Hours() > longGapHours {
			return true
		}
	}
	return false
}

// riskVariabilityPct is the coefficient of variation of the known risks,
// as a percentage capped at 100.
func riskVariabilityPct(trades []models.Trade) float64 {
	risks := metrics.Risks(trades)
	if len(risks) < 2 {
		return 0
	}
	mean := metrics.Mean(risks)
	if mean == 0 {
		return 0
	}
	return metrics.Clamp(metrics.StdDev(risks)/mean*100, 0, 100)
}

func sameSession(trades []models.Trade) bool {
	for i := 1; i < len(trades); i++ {
		if trades[i].Session != trades[0].Session {
			return false
		}
	}
	return len(trades) > 0
}

// stableTiming checks that entries cluster around the same time of day:
// the standard deviation of the entry hour stays within 2 hours.
func stableTiming(chrono []models.Trade) bool {
	if len(chrono) < 2 {
		return true
	}
	hours := make([]float64, len(chrono))
	for i := range chrono {
		hours[i] = float64(chrono[i].EntryTime.Hour()) + float64(chrono[i].EntryTime.Minute())/60
	}
	return metrics.StdDev(hours) <= stableTimingHourSpan
}
