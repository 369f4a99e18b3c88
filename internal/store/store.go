// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"
	"time"

	"traderlens/internal/analysis"
	"traderlens/internal/analysis/scoring"
	"traderlens/internal/models"
)

// DataStore defines the interface for data persistence. The analytics core
// never touches it: commands fetch trades and the plan, call the pure core,
// and hand derived snapshots back for storage.
type DataStore interface {
	// Trades
	SaveTrade(ctx context.Context, trade *models.Trade) error
	GetTrades(ctx context.Context, filter TradeFilter) ([]models.Trade, error)

	// Trading plan (single active plan, upsert semantics)
	SavePlan(ctx context.Context, plan *models.TradingPlan) error
	GetPlan(ctx context.Context) (*models.TradingPlan, error)

	// Derived snapshots (append-only; one fresh record per core call)
	SaveStateSnapshot(ctx context.Context, snapshot *analysis.StateAnalysis) error
	GetStateSnapshots(ctx context.Context, limit int) ([]analysis.StateAnalysis, error)
	SaveHeatmapDay(ctx context.Context, hm *scoring.Heatmap) error
	GetHeatmapHistory(ctx context.Context, days int) ([]scoring.Heatmap, error)
	SaveStabilityDay(ctx context.Context, day *scoring.StabilityDay) error
	GetStabilityHistory(ctx context.Context, days int) ([]scoring.StabilityDay, error)

	// Lifecycle
	Close() error
}

// TradeFilter represents filters for querying trades. Results are returned
// most-recent-first, the ordering the analytics core expects.
type TradeFilter struct {
	From    time.Time
	To      time.Time
	Session models.Session
	Limit   int
}
