// Package forecast produces session-scoped bias forecasts and period-scoped
// performance insights from the trade log and plan.
package forecast

import (
	"time"

	"traderlens/internal/analysis"
	"traderlens/internal/analysis/metrics"
	"traderlens/internal/models"
)

const (
	forecastWindow     = 20
	lossStreakLength   = 3
	escalationMultiple = 1.25
	driftRatio         = 0.2
)

// Bias flag labels.
const (
	BiasRevengeRisk    = "Revenge trading risk"
	BiasRiskEscalation = "Risk escalation"
	BiasSessionDrift   = "Session drift"
)

// FallbackForecastRecommendation is the no-data response text.
const FallbackForecastRecommendation = "Log more trades in this session to build a forecast"

// Session builds a bias forecast for the requested session from the last 20
// trades entered in that session. Trades are expected most-recent-first.
// Bias flags accumulate independently; the resulting risk level is the
// highest any flag demands.
func Session(trades []models.Trade, plan *models.TradingPlan, session models.Session) analysis.SessionForecast {
	window := metrics.FilterSession(trades, session)
	if len(window) > forecastWindow {
		window = window[:forecastWindow]
	}

	if plan == nil || len(window) == 0 {
		return analysis.SessionForecast{
			Session:         session,
			Outlook:         analysis.OutlookNeutral,
			RiskLevel:       analysis.RiskMedium,
			Recommendations: []string{FallbackForecastRecommendation},
			GeneratedAt:     time.Now(),
		}
	}

	snap := metrics.Compute(window, plan)
	level := analysis.RiskLow
	var biases, recs []string

	if lossStreak(window) {
		biases = append(biases, BiasRevengeRisk)
		recs = append(recs, "Step away after the next loss instead of re-entering")
		level = analysis.RiskHigh
	}
	if snap.RiskSamples > 0 && plan.RiskPercentPerTrade > 0 &&
		snap.AvgRiskUsed > plan.RiskPercentPerTrade*escalationMultiple {
		biases = append(biases, BiasRiskEscalation)
		recs = append(recs, "Size the next trades strictly to plan risk")
		level = analysis.RiskHigh
	}
	if metrics.OutsideSessionRatio(window, plan) >= driftRatio {
		biases = append(biases, BiasSessionDrift)
		recs = append(recs, "This session is outside your plan; trade it deliberately or not at all")
		if level == analysis.RiskLow {
			level = analysis.RiskMedium
		}
	}

	outlook := analysis.OutlookNeutral
	switch level {
	case analysis.RiskHigh:
		outlook = analysis.OutlookNegative
	case analysis.RiskLow:
		outlook = analysis.OutlookPositive
	}
	if len(recs) == 0 {
		recs = append(recs, "No behavioral red flags for this session; follow the plan")
	}

	return analysis.SessionForecast{
		Session:         session,
		Outlook:         outlook,
		RiskLevel:       level,
		Biases:          biases,
		Recommendations: recs,
		SampleSize:      len(window),
		GeneratedAt:     time.Now(),
	}
}

// lossStreak reports whether the most recent 3 trades of the window all
// closed at a loss.
func lossStreak(window []models.Trade) bool {
	if len(window) < lossStreakLength {
		return false
	}
	for i := 0; i < lossStreakLength; i++ {
		if window[i].ProfitLoss >= 0 {
			return false
		}
	}
	return true
}
