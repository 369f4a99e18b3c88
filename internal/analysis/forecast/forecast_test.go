package forecast

import (
	"testing"
	"time"

	"traderlens/internal/analysis"
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

func sessionTrade(entry time.Time, pl, risk float64, session models.Session) models.Trade {
	return models.Trade{
		EntryTime:       entry,
		ExitTime:        entry.Add(time.Hour),
		ProfitLoss:      pl,
		RiskPercentUsed: models.Float64Ptr(risk),
		Session:         session,
	}
}

func TestSession_Fallback(t *testing.T) {
	result := Session(nil, standardPlan(), models.SessionLondon)
	if result.Outlook != analysis.OutlookNeutral || result.RiskLevel != analysis.RiskMedium {
		t.Errorf("fallback = %s/%s, want NEUTRAL/MEDIUM", result.Outlook, result.RiskLevel)
	}
	if len(result.Recommendations) != 1 || result.Recommendations[0] != FallbackForecastRecommendation {
		t.Errorf("Recommendations = %v, want [%q]", result.Recommendations, FallbackForecastRecommendation)
	}

	// Trades in other sessions leave the requested session empty.
	other := []models.Trade{sessionTrade(baseTime, 1, 1.5, models.SessionAsia)}
	result = Session(other, standardPlan(), models.SessionLondon)
	if result.SampleSize != 0 || result.Outlook != analysis.OutlookNeutral {
		t.Errorf("cross-session trades must not feed the forecast: %+v", result)
	}
}

func TestSession_RevengeRisk(t *testing.T) {
	trades := []models.Trade{ // three most recent all losses
		sessionTrade(baseTime.AddDate(0, 0, 3), -1, 1.5, models.SessionNY),
		sessionTrade(baseTime.AddDate(0, 0, 2), -1, 1.5, models.SessionNY),
		sessionTrade(baseTime.AddDate(0, 0, 1), -1, 1.5, models.SessionNY),
		sessionTrade(baseTime, 1, 1.5, models.SessionNY),
	}

	result := Session(trades, standardPlan(), models.SessionNY)
	if result.RiskLevel != analysis.RiskHigh {
		t.Errorf("RiskLevel = %s, want HIGH on a loss streak", result.RiskLevel)
	}
	if result.Outlook != analysis.OutlookNegative {
		t.Errorf("Outlook = %s, want NEGATIVE", result.Outlook)
	}
	if !containsBias(result.Biases, BiasRevengeRisk) {
		t.Errorf("Biases = %v, want %q", result.Biases, BiasRevengeRisk)
	}
}

func TestSession_RiskEscalation(t *testing.T) {
	trades := []models.Trade{
		sessionTrade(baseTime.AddDate(0, 0, 2), 1, 2.2, models.SessionLondon),
		sessionTrade(baseTime.AddDate(0, 0, 1), -1, 2.0, models.SessionLondon),
		sessionTrade(baseTime, 1, 2.1, models.SessionLondon),
	}

	result := Session(trades, standardPlan(), models.SessionLondon)
	if !containsBias(result.Biases, BiasRiskEscalation) {
		t.Errorf("Biases = %v, want %q with avg risk over 1.25x plan", result.Biases, BiasRiskEscalation)
	}
	if result.RiskLevel != analysis.RiskHigh {
		t.Errorf("RiskLevel = %s, want HIGH", result.RiskLevel)
	}
}

func TestSession_DriftRaisesToMedium(t *testing.T) {
	plan := standardPlan()
	trades := []models.Trade{ // clean trading, wrong session
		sessionTrade(baseTime.AddDate(0, 0, 1), 1, 1.5, models.SessionAsia),
		sessionTrade(baseTime, 1, 1.5, models.SessionAsia),
	}

	result := Session(trades, plan, models.SessionAsia)
	if !containsBias(result.Biases, BiasSessionDrift) {
		t.Errorf("Biases = %v, want %q", result.Biases, BiasSessionDrift)
	}
	if result.RiskLevel != analysis.RiskMedium {
		t.Errorf("RiskLevel = %s, drift alone must raise to MEDIUM, not HIGH", result.RiskLevel)
	}
	if result.Outlook != analysis.OutlookNeutral {
		t.Errorf("Outlook = %s, want NEUTRAL at MEDIUM risk", result.Outlook)
	}
}

func TestSession_CleanIsPositive(t *testing.T) {
	trades := []models.Trade{
		sessionTrade(baseTime.AddDate(0, 0, 1), 1, 1.5, models.SessionLondon),
		sessionTrade(baseTime, -1, 1.5, models.SessionLondon),
	}

	result := Session(trades, standardPlan(), models.SessionLondon)
	if result.RiskLevel != analysis.RiskLow || result.Outlook != analysis.OutlookPositive {
		t.Errorf("clean session = %s/%s, want LOW/POSITIVE", result.RiskLevel, result.Outlook)
	}
	if len(result.Biases) != 0 {
		t.Errorf("Biases = %v, want none", result.Biases)
	}
	if len(result.Recommendations) == 0 {
		t.Error("expected a default recommendation")
	}
}

func containsBias(biases []string, want string) bool {
	for _, b := range biases {
		if b == want {
			return true
		}
	}
	return false
}

func TestInsights_AlwaysOnePositiveOneConstructive(t *testing.T) {
	for _, tc := range []struct {
		name   string
		trades []models.Trade
	}{
		{"no trades", nil},
		{"some trades", []models.Trade{
			sessionTrade(baseTime.AddDate(0, 0, 1), 1, 1.5, models.SessionLondon),
			sessionTrade(baseTime, -1, 1.5, models.SessionLondon),
		}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			result := Insights(tc.trades, standardPlan(), baseTime.AddDate(0, 0, 2))
			if len(result.Insights) != 2 {
				t.Fatalf("got %d insights, want exactly 2", len(result.Insights))
			}
			if result.Insights[0].Kind != analysis.InsightPositive {
				t.Errorf("first insight kind = %s, want POSITIVE", result.Insights[0].Kind)
			}
			if result.Insights[1].Kind != analysis.InsightConstructive {
				t.Errorf("second insight kind = %s, want CONSTRUCTIVE", result.Insights[1].Kind)
			}
		})
	}
}

func TestInsights_EarlyExitConcern(t *testing.T) {
	trades := []models.Trade{
		{EntryTime: baseTime.AddDate(0, 0, 2), ExitTime: baseTime.AddDate(0, 0, 2).Add(time.Hour), ProfitLoss: 0.5, ExitedEarly: true, Session: models.SessionLondon},
		{EntryTime: baseTime.AddDate(0, 0, 1), ExitTime: baseTime.AddDate(0, 0, 1).Add(time.Hour), ProfitLoss: 0.5, ExitedEarly: true, Session: models.SessionLondon},
		{EntryTime: baseTime, ExitTime: baseTime.Add(time.Hour), ProfitLoss: -0.5, Session: models.SessionLondon},
	}

	result := Insights(trades, standardPlan(), baseTime.AddDate(0, 0, 3))
	if result.Insights[1].Title != "Frequent early exits" {
		t.Errorf("constructive insight = %q, want the early-exit concern", result.Insights[1].Title)
	}
}

func TestInsights_PeriodNumbers(t *testing.T) {
	now := baseTime.AddDate(0, 0, 10)
	trades := []models.Trade{
		sessionTrade(now.AddDate(0, 0, -1), 1, 1.5, models.SessionLondon), // this week
		sessionTrade(now.AddDate(0, 0, -9), 1, 1.5, models.SessionLondon),
		sessionTrade(now.AddDate(0, 0, -10), -1, 1.5, models.SessionLondon),
	}

	result := Insights(trades, standardPlan(), now)
	if result.TradesThisWeek != 1 {
		t.Errorf("TradesThisWeek = %d, want 1", result.TradesThisWeek)
	}
	if result.WinRate != 67 {
		t.Errorf("WinRate = %v, want 67", result.WinRate)
	}
	if result.PlanAdherence != 100 {
		t.Errorf("PlanAdherence = %d, want 100 with no breaches or drift", result.PlanAdherence)
	}
}
