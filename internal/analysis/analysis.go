// Package analysis provides the behavioral analytics core: psychological
// state classification, session forecasts, and performance insights derived
// from logged trades and the trader's declared plan.
//
// Every function in this package and its sub-packages is pure: inputs are
// in-memory trade and plan records, outputs are fresh result snapshots.
// Fetching and persisting data is the caller's concern.
package analysis

import (
	"time"

	"traderlens/internal/models"
)

// State is the classified psychological state of the trader.
type State string

const (
	StateStable       State = "STABLE"
	StateAggressive   State = "AGGRESSIVE"
	StateHesitant     State = "HESITANT"
	StateOverextended State = "OVEREXTENDED"
)

// RiskLevel grades the behavioral risk attached to a forecast.
type RiskLevel string

const (
	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"
)

// Outlook is the forecast label for an upcoming session.
type Outlook string

const (
	OutlookPositive Outlook = "POSITIVE"
	OutlookNeutral  Outlook = "NEUTRAL"
	OutlookNegative Outlook = "NEGATIVE"
)

// StateAnalysis is the classifier's output snapshot.
type StateAnalysis struct {
	State           State
	Confidence      int // 10-95
	PlanAdherence   int // 0-100
	AnalyzedTrades  int
	Indicators      []string
	Recommendations []string
	GeneratedAt     time.Time
}

// HistoryPoint is one emitted change point in the temporal state history.
type HistoryPoint struct {
	TradeIndex int
	Timestamp  time.Time
	State      State
	Confidence int
}

// HistorySummary aggregates an emitted state history.
type HistorySummary struct {
	Changes        int
	DominantState  State
	MeanConfidence float64
	Volatility     float64 // stddev of confidences / 100, rounded to 2 decimals
}

// StateHistory is the sliding-window re-evaluation result.
type StateHistory struct {
	Points  []HistoryPoint
	Summary HistorySummary
}

// SessionForecast is the heuristic bias forecast for one session.
type SessionForecast struct {
	Session         models.Session
	Outlook         Outlook
	RiskLevel       RiskLevel
	Biases          []string
	Recommendations []string
	SampleSize      int
	GeneratedAt     time.Time
}

// InsightKind distinguishes encouraging from corrective insights.
type InsightKind string

const (
	InsightPositive     InsightKind = "POSITIVE"
	InsightConstructive InsightKind = "CONSTRUCTIVE"
)

// Insight is a single human-readable performance observation.
type Insight struct {
	Kind   InsightKind
	Title  string
	Detail string
}

// PerformanceSnapshot summarizes a period of trading.
type PerformanceSnapshot struct {
	WinRate        float64 // percent
	AvgRiskReward  float64
	PlanAdherence  int // percent
	TradesThisWeek int
	TradeCount     int
	Insights       []Insight
	GeneratedAt    time.Time
}
