package patterns

import (
	"time"

	"traderlens/internal/analysis/metrics"
	"traderlens/internal/analysis/scoring"
	"traderlens/internal/models"
)

// BreathingExercise is the recommended intervention.
type BreathingExercise string

const (
	ExerciseBox        BreathingExercise = "box_breathing"
	ExerciseEnergizing BreathingExercise = "energizing_breath"
	ExerciseCalming    BreathingExercise = "calming_breath"
)

// UrgencyBand buckets the urgency score.
type UrgencyBand string

const (
	UrgencyNone   UrgencyBand = "none"
	UrgencyLow    UrgencyBand = "low"    // 1-40
	UrgencyMedium UrgencyBand = "medium" // 41-70
	UrgencyHigh   UrgencyBand = "high"   // above 70
)

// Breathwork trigger labels.
const (
	TriggerVolatility      = "high emotional volatility"
	TriggerLowBattery      = "low mental battery"
	TriggerImpulsiveStreak = "impulsive streak"
	TriggerBatteryDrop     = "sharp battery drop"
)

// Breathwork trigger thresholds and urgency bonuses.
const (
	volatilityTrigger   = 70
	batteryTrigger      = 40
	impulsiveHourCount  = 3
	batteryDropTrigger  = 30
	pointsPerTrigger    = 20
	bonusBatteryVeryLow = 30 // battery below 30
	bonusBatteryLow     = 15 // battery below 40
	bonusVolatilityPeak = 25 // volatility above 80
	bonusVolatilityHigh = 10 // volatility above 70
	bonusSevereCombo    = 20 // two or more severe triggers
)

// BreathworkResult is the breathwork-suggestion trigger output.
type BreathworkResult struct {
	ShouldSuggest bool
	Urgency       int
	Band          UrgencyBand
	Triggers      []string
	Exercise      BreathingExercise
}

// SuggestBreathwork checks the session's trades (most-recent-first,
// typically today's) against the four breathwork triggers and grades the
// urgency of intervening. now anchors the trailing-hour impulsive check.
func SuggestBreathwork(trades []models.Trade, plan *models.TradingPlan, now time.Time) BreathworkResult {
	battery := scoring.MentalBattery(trades, plan).Score
	volatility := scoring.PsychRadar(trades, plan).EmotionalVolatility

	var triggers []string
	severe := 0

	if volatility > volatilityTrigger {
		triggers = append(triggers, TriggerVolatility)
		severe++
	}
	if battery < batteryTrigger {
		triggers = append(triggers, TriggerLowBattery)
		severe++
	}
	impulsiveHour := impulsiveInTrailingHour(trades, now)
	if impulsiveHour >= impulsiveHourCount {
		triggers = append(triggers, TriggerImpulsiveStreak)
	}
	if drop := sessionStartBattery(trades, plan) - battery; len(trades) >= 2 && drop > batteryDropTrigger {
		triggers = append(triggers, TriggerBatteryDrop)
		severe++
	}

	urgency := pointsPerTrigger * len(triggers)
	if len(triggers) > 0 {
		switch {
		case battery < 30:
			urgency += bonusBatteryVeryLow
		case battery < batteryTrigger:
			urgency += bonusBatteryLow
		}
		switch {
		case volatility > 80:
			urgency += bonusVolatilityPeak
		case volatility > volatilityTrigger:
			urgency += bonusVolatilityHigh
		}
		if severe >= 2 {
			urgency += bonusSevereCombo
		}
	}

	return BreathworkResult{
		ShouldSuggest: len(triggers) > 0,
		Urgency:       urgency,
		Band:          urgencyBand(urgency),
		Triggers:      triggers,
		Exercise:      pickExercise(volatility > volatilityTrigger, impulsiveHour >= impulsiveHourCount, battery < batteryTrigger),
	}
}

// impulsiveInTrailingHour counts impulsive re-entries whose entry falls in
// the hour before now.
func impulsiveInTrailingHour(trades []models.Trade, now time.Time) int {
	chrono := metrics.SortAscending(trades)
	cutoff := now.Add(-time.Hour)
	count := 0
	for i := 1; i < len(chrono); i++ {
		t := &chrono[i]
		if t.EntryTime.Before(cutoff) || t.EntryTime.After(now) {
			continue
		}
		if t.EntryTime.Sub(chrono[i-1].ExitTime) < metrics.ImpulsiveGap {
			count++
		}
	}
	return count
}

// sessionStartBattery is the battery level after the first trade of the
// window, the baseline for the drop trigger.
func sessionStartBattery(trades []models.Trade, plan *models.TradingPlan) int {
	if len(trades) == 0 {
		return 100
	}
	chrono := metrics.SortAscending(trades)
	return scoring.MentalBattery(chrono[:1], plan).Score
}

func urgencyBand(urgency int) UrgencyBand {
	switch {
	case urgency == 0:
		return UrgencyNone
	case urgency <= 40:
		return UrgencyLow
	case urgency <= 70:
		return UrgencyMedium
	default:
		return UrgencyHigh
	}
}

// pickExercise maps the firing trigger category to an exercise: agitation
// (volatility, impulsiveness) calls for box breathing, depletion for an
// energizing breath, everything else for a calming breath.
func pickExercise(volatile, impulsive, depleted bool) BreathingExercise {
	switch {
	case volatile || impulsive:
		return ExerciseBox
	case depleted:
		return ExerciseEnergizing
	default:
		return ExerciseCalming
	}
}
