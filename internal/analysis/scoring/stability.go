package scoring

import (
	"sort"
	"time"

	"traderlens/internal/analysis/metrics"
	"traderlens/internal/models"
)

// Daily stability score weights.
const (
	stabilityWeightCompliance  = 0.35
	stabilityWeightVolatility  = 0.25
	stabilityWeightRisk        = 0.20
	stabilityWeightEmotional   = 0.15
	stabilityWeightBattery     = 0.05
	emotionalEventKinds        = 3 // impulsive, oversized, large-loss
	trendSignificantDifference = 5.0
)

// TrendDirection labels the first-half versus second-half comparison.
type TrendDirection string

const (
	TrendImproving     TrendDirection = "improving"
	TrendStable        TrendDirection = "stable"
	TrendDeteriorating TrendDirection = "deteriorating"
)

// StabilityDay is the consistency score for one calendar day, with its
// sub-metric breakdown.
type StabilityDay struct {
	Day                     time.Time
	Score                   float64
	PlanCompliance          float64
	BehavioralVolatility    float64
	RiskConsistency         float64
	EmotionalTradeFrequency float64
	BatteryStability        float64
	TradeCount              int
}

// StabilityTrend is the day-by-day consistency trend over a range.
type StabilityTrend struct {
	Days          []StabilityDay // chronological
	Direction     TrendDirection
	FirstHalfAvg  float64
	SecondHalfAvg float64
}

// ConsistencyTrend scores each trading day in the trailing dayRange days
// and compares the first half of those days against the second half to
// derive the trend direction. Days without trades are skipped.
func ConsistencyTrend(trades []models.Trade, plan *models.TradingPlan, dayRange int, now time.Time) StabilityTrend {
	if dayRange <= 0 {
		dayRange = 7
	}
	cutoff := now.AddDate(0, 0, -dayRange)

	var inRange []models.Trade
	for i := range trades {
		if trades[i].EntryTime.After(cutoff) && !trades[i].EntryTime.After(now) {
			inRange = append(inRange, trades[i])
		}
	}

	byDay := metrics.GroupByDay(inRange)
	days := make([]StabilityDay, 0, len(byDay))
	for day, dayTrades := range byDay {
		days = append(days, DayStability(day, dayTrades, plan))
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Day.Before(days[j].Day) })

	trend := StabilityTrend{Days: days, Direction: TrendStable}
	if len(days) >= 2 {
		half := len(days) / 2
		first := make([]float64, 0, half)
		second := make([]float64, 0, len(days)-half)
		for i, d := range days {
			if i < half {
				first = append(first, d.Score)
			} else {
				second = append(second, d.Score)
			}
		}
		trend.FirstHalfAvg = metrics.Mean(first)
		trend.SecondHalfAvg = metrics.Mean(second)
		switch diff := trend.SecondHalfAvg - trend.FirstHalfAvg; {
		case diff > trendSignificantDifference:
			trend.Direction = TrendImproving
		case diff < -trendSignificantDifference:
			trend.Direction = TrendDeteriorating
		}
	}
	return trend
}

// DayStability computes the composite consistency score for one day's
// trades.
func DayStability(day time.Time, dayTrades []models.Trade, plan *models.TradingPlan) StabilityDay {
	if len(dayTrades) == 0 {
		return StabilityDay{Day: day}
	}
	desc := metrics.SortDescending(dayTrades)
	chrono := chronological(desc)
	ev := extractEvents(chrono, plan)

	compliance, _, _ := planControlMean(desc, plan)
	volatility := PsychRadar(desc, plan).EmotionalVolatility
	riskConsistency := metrics.Clamp(100-riskVariabilityPct(dayTrades), 0, 100)

	// Impulsive, oversized and large-loss events as a fraction of the
	// theoretical maximum of one of each per trade.
	emotionalEvents := ev.impulsive + ev.oversized + ev.largeLosses
	emotionalFrequency := metrics.Clamp(
		float64(emotionalEvents)/float64(emotionalEventKinds*len(dayTrades))*100, 0, 100)

	battery := float64(MentalBattery(desc, plan).Score)

	score := stabilityWeightCompliance*float64(compliance) +
		stabilityWeightVolatility*(100-volatility) +
		stabilityWeightRisk*riskConsistency +
		stabilityWeightEmotional*(100-emotionalFrequency) +
		stabilityWeightBattery*battery

	return StabilityDay{
		Day:                     day,
		Score:                   metrics.Clamp(score, 0, 100),
		PlanCompliance:          float64(compliance),
		BehavioralVolatility:    volatility,
		RiskConsistency:         riskConsistency,
		EmotionalTradeFrequency: emotionalFrequency,
		BatteryStability:        battery,
		TradeCount:              len(dayTrades),
	}
}
