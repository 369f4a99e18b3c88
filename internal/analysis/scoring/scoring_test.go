package scoring

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

func riskTrade(entry time.Time, hold time.Duration, pl, risk float64, session models.Session) models.Trade {
	return models.Trade{
		EntryTime:       entry,
		ExitTime:        entry.Add(hold),
		ProfitLoss:      pl,
		RiskPercentUsed: models.Float64Ptr(risk),
		Session:         session,
		Notes:           "planned setup",
	}
}

// tiltedPair is a reference meltdown: two oversized large losses, the second
// re-entered 15 minutes after the first exit. Most recent first.
func tiltedPair() []models.Trade {
	first := riskTrade(baseTime, 30*time.Minute, -4.0, 3.0, models.SessionLondon)
	second := riskTrade(baseTime.Add(45*time.Minute), 30*time.Minute, -4.0, 3.0, models.SessionLondon)
	first.Notes, second.Notes = "", ""
	return []models.Trade{second, first}
}

func TestExtractEvents(t *testing.T) {
	plan := standardPlan()
	chrono := chronological(tiltedPair())

	ev := extractEvents(chrono, plan)
	if ev.impulsive != 1 {
		t.Errorf("impulsive = %d, want 1", ev.impulsive)
	}
	if ev.oversized != 2 {
		t.Errorf("oversized = %d, want 2", ev.oversized)
	}
	if ev.breaches != 2 {
		t.Errorf("breaches = %d, want 2", ev.breaches)
	}
	if ev.largeLosses != 2 {
		t.Errorf("largeLosses = %d, want 2", ev.largeLosses)
	}
	if ev.revenge != 1 {
		t.Errorf("revenge = %d, want 1", ev.revenge)
	}
}

func TestExtractEvents_UnknownRiskNeverCounts(t *testing.T) {
	plan := standardPlan()
	trades := []models.Trade{
		{EntryTime: baseTime, ExitTime: baseTime.Add(time.Hour), ProfitLoss: -1, Session: models.SessionLondon},
		{EntryTime: baseTime.Add(3 * time.Hour), ExitTime: baseTime.Add(4 * time.Hour), ProfitLoss: -1, Session: models.SessionLondon},
	}

	ev := extractEvents(trades, plan)
	if ev.oversized != 0 || ev.breaches != 0 || ev.revenge != 0 {
		t.Errorf("risk events fired on unknown risk: %+v", ev)
	}
	if ev.pauses != 1 {
		t.Errorf("pauses = %d, want 1 for the 2h+ gap", ev.pauses)
	}
}

func TestMentalBattery_EmptyWindowIsFull(t *testing.T) {
	result := MentalBattery(nil, standardPlan())
	if result.Score != 100 || result.Status != BatteryOptimal {
		t.Errorf("empty window = %d/%s, want 100/optimal", result.Score, result.Status)
	}
}

func TestMentalBattery_Drains(t *testing.T) {
	result := MentalBattery(tiltedPair(), standardPlan())

	// 100 - 15 (impulsive) - 20 (2x oversized) - 40 (2x large loss) = 25.
	if result.Score != 25 {
		t.Errorf("Score = %d, want 25", result.Score)
	}
	if result.Status != BatteryHighRisk {
		t.Errorf("Status = %s, want high_risk", result.Status)
	}
	if result.TradeCount != 2 {
		t.Errorf("TradeCount = %d, want 2", result.TradeCount)
	}
}

func TestMentalBattery_CalmTradeRecharges(t *testing.T) {
	trades := []models.Trade{riskTrade(baseTime, time.Hour, 1.0, 1.5, models.SessionLondon)}

	result := MentalBattery(trades, standardPlan())
	if result.Score != 100 {
		t.Errorf("Score = %d, want 100 (recharges clamp at full)", result.Score)
	}
	if result.Status != BatteryOptimal {
		t.Errorf("Status = %s, want optimal", result.Status)
	}
}

func TestPlanControl_CompliantWindow(t *testing.T) {
	trades := []models.Trade{
		riskTrade(baseTime.Add(4*time.Hour), time.Hour, 1.0, 1.5, models.SessionNY),
		riskTrade(baseTime, time.Hour, -1.0, 1.5, models.SessionLondon),
	}

	result := PlanControlScore(trades, standardPlan())
	if result.Score != 100 {
		t.Errorf("Score = %d, want 100 for fully compliant trades", result.Score)
	}
	if result.TopCause != "" {
		t.Errorf("TopCause = %q, want none above the compliance threshold", result.TopCause)
	}
}

func TestPlanControl_NilPlan(t *testing.T) {
	result := PlanControlScore(tiltedPair(), nil)
	if result.Score != 100 {
		t.Errorf("Score = %d, want 100 without a plan to deviate from", result.Score)
	}
}

func TestPlanControl_DeviationAttribution(t *testing.T) {
	result := PlanControlScore(tiltedPair(), standardPlan())

	if result.Score >= compliantScore {
		t.Fatalf("Score = %d, expected below %d", result.Score, compliantScore)
	}
	// Weighted counts: oversizing 2*1.5=3.0 beats revenge 1*1.6 and
	// impulsive 1*1.4.
	if result.TopCause != "oversizing" {
		t.Errorf("TopCause = %q, want oversizing", result.TopCause)
	}
	if len(result.Patterns) == 0 || result.Patterns[0] != "oversizing" {
		t.Errorf("Patterns = %v, want oversizing ranked first", result.Patterns)
	}
}

func TestPsychRadar_EmptyWindow(t *testing.T) {
	r := PsychRadar(nil, standardPlan())
	if r.Discipline != 100 || r.ImpulseControl != 100 || r.Consistency != 100 {
		t.Errorf("healthy traits = %v/%v/%v, want 100 each", r.Discipline, r.ImpulseControl, r.Consistency)
	}
	if r.Aggression != 0 || r.Hesitation != 0 || r.EmotionalVolatility != 0 {
		t.Errorf("pressure traits = %v/%v/%v, want 0 each", r.Aggression, r.Hesitation, r.EmotionalVolatility)
	}
}

func TestPsychRadar_TiltReadsAggressive(t *testing.T) {
	r := PsychRadar(tiltedPair(), standardPlan())
	if r.Aggression != 100 {
		t.Errorf("Aggression = %v, want 100 (double plan risk, extreme risk, revenge)", r.Aggression)
	}
	if r.Hesitation != 0 {
		t.Errorf("Hesitation = %v, want 0 with no early exits", r.Hesitation)
	}
	if r.EmotionalVolatility != 50 {
		t.Errorf("EmotionalVolatility = %v, want 50", r.EmotionalVolatility)
	}
	if r.SampleSize != 2 {
		t.Errorf("SampleSize = %d, want 2", r.SampleSize)
	}
}

func TestBehaviorHeatmap_EmptyWindowsAreGrey(t *testing.T) {
	trades := []models.Trade{
		riskTrade(time.Date(2026, 1, 5, 10, 30, 0, 0, time.UTC), time.Hour, 1.0, 1.5, models.SessionLondon),
	}

	hm := BehaviorHeatmap(trades, standardPlan(), baseTime)
	for w, window := range hm.Windows {
		if w == 3 { // 09-12 holds the single trade
			if window.Score == nil || window.Color == HeatGrey {
				t.Errorf("window %d: expected a scored, colored window", w)
			}
			if window.TradeCount != 1 {
				t.Errorf("window %d: TradeCount = %d, want 1", w, window.TradeCount)
			}
			continue
		}
		if window.Score != nil || window.Color != HeatGrey {
			t.Errorf("window %d: empty window must be nil score and grey, got %v/%s", w, window.Score, window.Color)
		}
	}
}

func TestBehaviorHeatmap_IgnoresOtherDays(t *testing.T) {
	trades := []models.Trade{
		riskTrade(baseTime.AddDate(0, 0, -1), time.Hour, 1.0, 1.5, models.SessionLondon),
	}

	hm := BehaviorHeatmap(trades, standardPlan(), baseTime)
	for w, window := range hm.Windows {
		if window.TradeCount != 0 {
			t.Errorf("window %d counted a trade from another day", w)
		}
	}
	if hm.Insight != "No trades recorded for this day" {
		t.Errorf("Insight = %q, want the no-trades message", hm.Insight)
	}
}

func TestDayStability_EmptyDay(t *testing.T) {
	d := DayStability(baseTime, nil, standardPlan())
	if d.Score != 0 || d.TradeCount != 0 {
		t.Errorf("empty day = %v/%d, want zero values", d.Score, d.TradeCount)
	}
}

func TestConsistencyTrend_Improving(t *testing.T) {
	var trades []models.Trade
	now := time.Date(2026, 1, 10, 18, 0, 0, 0, time.UTC)

	// Two early meltdown days, then two clean days.
	for d := 0; d < 2; d++ {
		day := now.AddDate(0, 0, d-6)
		for _, tr := range tiltedPair() {
			tr.EntryTime = day.Add(tr.EntryTime.Sub(baseTime))
			tr.ExitTime = tr.EntryTime.Add(30 * time.Minute)
			trades = append(trades, tr)
		}
	}
	for d := 0; d < 2; d++ {
		day := now.AddDate(0, 0, d-2)
		trades = append(trades, riskTrade(day, time.Hour, 1.0, 1.5, models.SessionLondon))
	}

	trend := ConsistencyTrend(trades, standardPlan(), 7, now)
	if len(trend.Days) != 4 {
		t.Fatalf("got %d days, want 4", len(trend.Days))
	}
	if trend.SecondHalfAvg <= trend.FirstHalfAvg {
		t.Errorf("second half avg %.1f not above first half %.1f", trend.SecondHalfAvg, trend.FirstHalfAvg)
	}
	if trend.Direction != TrendImproving {
		t.Errorf("Direction = %s, want improving", trend.Direction)
	}
}

func TestConsistencyTrend_StableWithNoDays(t *testing.T) {
	trend := ConsistencyTrend(nil, standardPlan(), 7, baseTime)
	if trend.Direction != TrendStable {
		t.Errorf("Direction = %s, want stable for an empty range", trend.Direction)
	}
	if len(trend.Days) != 0 {
		t.Errorf("got %d days, want 0", len(trend.Days))
	}
}
