package scoring

import (
	"traderlens/internal/analysis/metrics"
	"traderlens/internal/models"
)

// BatteryStatus bands the mental energy score.
type BatteryStatus string

const (
	BatteryOptimal  BatteryStatus = "optimal"   // >= 80
	BatteryStrained BatteryStatus = "strained"  // >= 50
	BatteryHighRisk BatteryStatus = "high_risk" // below 50
)

// Battery drain and recharge magnitudes.
const (
	drainImpulsive   = 15
	drainOversized   = 10
	drainCluster     = 8
	drainLargeLoss   = 20
	drainMixedSignal = 12

	rechargePause       = 5
	rechargePlanControl = 8
	rechargeSteadyRisk  = 5

	maxClusterDrains    = 2
	maxPauseRecharges   = 3
	planControlRecharge = 80
)

// BatteryEvent records one drain or recharge applied to the battery.
type BatteryEvent struct {
	Reason string
	Delta  int // negative for drains
	Count  int
}

// Battery is the mental-energy score for a trade window (typically today's
// trades).
type Battery struct {
	Score      int
	Status     BatteryStatus
	Events     []BatteryEvent
	TradeCount int
}

// MentalBattery computes the mental-energy level over the given trades
// (most-recent-first). The battery starts full at 100, drains on impulsive
// and oversized behavior, and recharges on deliberate pauses and tight
// plan compliance. A window with no trades is a full battery.
func MentalBattery(trades []models.Trade, plan *models.TradingPlan) Battery {
	if len(trades) == 0 {
		return Battery{Score: 100, Status: BatteryOptimal}
	}

	chrono := chronological(trades)
	ev := extractEvents(chrono, plan)

	score := 100
	var events []BatteryEvent
	apply := func(reason string, delta, count int) {
		if count == 0 {
			return
		}
		score += delta * count
		events = append(events, BatteryEvent{Reason: reason, Delta: delta * count, Count: count})
	}

	apply("impulsive re-entry", -drainImpulsive, ev.impulsive)
	apply("oversized trade", -drainOversized, ev.oversized)
	clusters := ev.clusters
	if clusters > maxClusterDrains {
		clusters = maxClusterDrains
	}
	apply("trade cluster", -drainCluster, clusters)
	apply("large loss", -drainLargeLoss, ev.largeLosses)
	if ev.impulsive > 0 && ev.earlyExits > 0 {
		apply("mixed impulsive and hesitant signals", -drainMixedSignal, 1)
	}

	pauses := ev.pauses
	if pauses > maxPauseRecharges {
		pauses = maxPauseRecharges
	}
	apply("disciplined pause", rechargePause, pauses)

	if control, _, _ := planControlMean(trades, plan); control >= planControlRecharge {
		apply("plan control held", rechargePlanControl, 1)
	}
	if plan != nil && allWithinPlanRisk(chrono, plan.RiskPercentPerTrade) {
		apply("steady position sizing", rechargeSteadyRisk, 1)
	}

	score = int(metrics.Clamp(float64(score), 0, 100))
	return Battery{
		Score:      score,
		Status:     batteryStatus(score),
		Events:     events,
		TradeCount: len(trades),
	}
}

// allWithinPlanRisk requires every trade with known risk to sit inside the
// +-10% band, and at least one trade to carry risk data at all.
func allWithinPlanRisk(chrono []models.Trade, planRisk float64) bool {
	if planRisk <= 0 {
		return false
	}
	known := 0
	for i := range chrono {
		if chrono[i].RiskPercentUsed == nil {
			continue
		}
		known++
		if !withinPlanRisk(&chrono[i], planRisk) {
			return false
		}
	}
	return known > 0
}

func batteryStatus(score int) BatteryStatus {
	switch {
	case score >= 80:
		return BatteryOptimal
	case score >= 50:
		return BatteryStrained
	default:
		return BatteryHighRisk
	}
}
