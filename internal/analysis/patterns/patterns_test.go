package patterns

import (
	"testing"
	"time"

	"traderlens/internal/models"
)

var baseTime = time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC)

func standardPlan() *models.TradingPlan {
	return &models.TradingPlan{
		MaxTradesPerDay:       5,
		RiskPercentPerTrade:   1.5,
		TargetRiskRewardRatio: 2.0,
		PreferredSessions:     []models.Session{models.SessionLondon, models.SessionNY},
	}
}

func riskTrade(entry time.Time, hold time.Duration, pl, risk float64) models.Trade {
	return models.Trade{
		EntryTime:       entry,
		ExitTime:        entry.Add(hold),
		ProfitLoss:      pl,
		RiskPercentUsed: models.Float64Ptr(risk),
		Session:         models.SessionLondon,
		Notes:           "planned setup",
	}
}

func TestDetectImprovement_Empty(t *testing.T) {
	result := DetectImprovement(nil, standardPlan())
	if result.Found {
		t.Errorf("no trades must detect nothing, got %+v", result)
	}
}

// TestDetectImprovement_RevengePriority: a window satisfying both "avoided
// revenge" and "stable risk" must report avoided revenge, the higher
// priority rule.
func TestDetectImprovement_RevengePriority(t *testing.T) {
	trades := []models.Trade{ // most recent first, steady risk, one loss
		riskTrade(baseTime.Add(8*time.Hour), time.Hour, 1.0, 1.5),
		riskTrade(baseTime.Add(4*time.Hour), time.Hour, -1.0, 1.5),
		riskTrade(baseTime, time.Hour, 1.0, 1.5),
	}

	result := DetectImprovement(trades, standardPlan())
	if !result.Found {
		t.Fatal("expected an improvement")
	}
	if result.Name != ImprovementAvoidedRevenge {
		t.Errorf("Name = %q, want %q", result.Name, ImprovementAvoidedRevenge)
	}
	if result.Priority != 1 {
		t.Errorf("Priority = %d, want 1", result.Priority)
	}
}

func TestDetectImprovement_StableRiskWithoutLoss(t *testing.T) {
	// All winners: the revenge rule cannot fire, stable risk is next.
	trades := []models.Trade{
		riskTrade(baseTime.Add(8*time.Hour), time.Hour, 1.0, 1.5),
		riskTrade(baseTime.Add(4*time.Hour), time.Hour, 1.0, 1.5),
		riskTrade(baseTime, time.Hour, 1.0, 1.5),
	}

	result := DetectImprovement(trades, standardPlan())
	if !result.Found || result.Name != ImprovementStableRisk {
		t.Errorf("got %+v, want stable_risk", result)
	}
	if result.Priority != 2 {
		t.Errorf("Priority = %d, want 2", result.Priority)
	}
}

func TestDetectImprovement_NoImpulsiveWhenRiskVaries(t *testing.T) {
	// Winners with wildly varying risk (CV >= 15) and spaced entries.
	trades := []models.Trade{
		riskTrade(baseTime.Add(16*time.Hour), time.Hour, 1.0, 0.5),
		riskTrade(baseTime.Add(8*time.Hour), time.Hour, 1.0, 2.5),
		riskTrade(baseTime, time.Hour, 1.0, 1.0),
	}

	result := DetectImprovement(trades, standardPlan())
	if !result.Found || result.Name != ImprovementNoImpulsive {
		t.Errorf("got %+v, want no_impulsive_entries", result)
	}
	if result.Priority != 3 {
		t.Errorf("Priority = %d, want 3", result.Priority)
	}
}

func TestSuggestBreathwork_CalmSession(t *testing.T) {
	trades := []models.Trade{
		riskTrade(baseTime.Add(4*time.Hour), time.Hour, 1.0, 1.5),
		riskTrade(baseTime, time.Hour, 1.0, 1.5),
	}

	result := SuggestBreathwork(trades, standardPlan(), baseTime.Add(6*time.Hour))
	if result.ShouldSuggest {
		t.Fatalf("calm session must not trigger breathwork: %+v", result)
	}
	if result.Urgency != 0 || result.Band != UrgencyNone {
		t.Errorf("Urgency/Band = %d/%s, want 0/none", result.Urgency, result.Band)
	}
}

// TestSuggestBreathwork_DepletedSession drives the battery down via two
// oversized large losses: the low-battery and battery-drop triggers fire,
// volatility stays at 50, and the depletion maps to the energizing exercise.
func TestSuggestBreathwork_DepletedSession(t *testing.T) {
	first := riskTrade(baseTime, 30*time.Minute, -4.0, 3.0)
	second := riskTrade(baseTime.Add(45*time.Minute), 30*time.Minute, -4.0, 3.0)
	first.Notes, second.Notes = "", ""
	trades := []models.Trade{second, first}

	result := SuggestBreathwork(trades, standardPlan(), baseTime.Add(2*time.Hour))
	if !result.ShouldSuggest {
		t.Fatal("expected a breathwork suggestion")
	}
	if !containsTrigger(result.Triggers, TriggerLowBattery) {
		t.Errorf("Triggers = %v, want %q", result.Triggers, TriggerLowBattery)
	}
	if !containsTrigger(result.Triggers, TriggerBatteryDrop) {
		t.Errorf("Triggers = %v, want %q", result.Triggers, TriggerBatteryDrop)
	}
	// 2 triggers * 20 + 30 (battery below 30) + 20 (two severe triggers).
	if result.Urgency != 90 {
		t.Errorf("Urgency = %d, want 90", result.Urgency)
	}
	if result.Band != UrgencyHigh {
		t.Errorf("Band = %s, want high", result.Band)
	}
	if result.Exercise != ExerciseEnergizing {
		t.Errorf("Exercise = %s, want energizing_breath for depletion", result.Exercise)
	}
}

func TestUrgencyBand(t *testing.T) {
	tests := []struct {
		urgency int
		want    UrgencyBand
	}{
		{0, UrgencyNone},
		{35, UrgencyLow},
		{40, UrgencyLow},
		{41, UrgencyMedium},
		{70, UrgencyMedium},
		{71, UrgencyHigh},
	}
	for _, tt := range tests {
		if got := urgencyBand(tt.urgency); got != tt.want {
			t.Errorf("urgencyBand(%d) = %s, want %s", tt.urgency, got, tt.want)
		}
	}
}

func TestPickExercise(t *testing.T) {
	if got := pickExercise(true, false, true); got != ExerciseBox {
		t.Errorf("agitation must win over depletion, got %s", got)
	}
	if got := pickExercise(false, true, false); got != ExerciseBox {
		t.Errorf("impulsiveness maps to box breathing, got %s", got)
	}
	if got := pickExercise(false, false, true); got != ExerciseEnergizing {
		t.Errorf("depletion maps to energizing breath, got %s", got)
	}
	if got := pickExercise(false, false, false); got != ExerciseCalming {
		t.Errorf("default is calming breath, got %s", got)
	}
}

func containsTrigger(triggers []string, want string) bool {
	for _, tr := range triggers {
		if tr == want {
			return true
		}
	}
	return false
}
