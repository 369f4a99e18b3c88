// Package store provides data persistence implementations.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"traderlens/internal/analysis"
	"traderlens/internal/analysis/scoring"
	apperrors "traderlens/internal/errors"
	"traderlens/internal/models"
)

// SQLiteStore implements DataStore using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite-based data store.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

// initSchema creates all required tables and indexes.
func (s *SQLiteStore) initSchema() error {
	schema := `
	-- Trades table for closed positions
	CREATE TABLE IF NOT EXISTS trades (
		id TEXT PRIMARY KEY,
		entry_time DATETIME NOT NULL,
		exit_time DATETIME NOT NULL,
		profit_loss REAL NOT NULL,
		risk_percent_used REAL,
		risk_reward_achieved REAL,
		target_percent_achieved REAL,
		session TEXT NOT NULL,
		stop_loss_hit INTEGER NOT NULL DEFAULT 0,
		exited_early INTEGER NOT NULL DEFAULT 0,
		notes TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_trades_entry_time ON trades(entry_time);
	CREATE INDEX IF NOT EXISTS idx_trades_session ON trades(session);

	-- Single active trading plan (upsert on the fixed row)
	CREATE TABLE IF NOT EXISTS trading_plan (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		max_trades_per_day INTEGER NOT NULL,
		risk_percent_per_trade REAL NOT NULL,
		target_risk_reward REAL NOT NULL,
		preferred_sessions TEXT NOT NULL,
		stop_loss_discipline TEXT NOT NULL,
		updated_at DATETIME NOT NULL
	);

	-- Derived snapshot history, append-only
	CREATE TABLE IF NOT EXISTS state_snapshots (
		id TEXT PRIMARY KEY,
		state TEXT NOT NULL,
		confidence INTEGER NOT NULL,
		plan_adherence INTEGER NOT NULL,
		analyzed_trades INTEGER NOT NULL,
		indicators TEXT,
		recommendations TEXT,
		generated_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_state_snapshots_generated ON state_snapshots(generated_at);

	CREATE TABLE IF NOT EXISTS heatmap_history (
		id TEXT PRIMARY KEY,
		day DATE NOT NULL,
		windows TEXT NOT NULL,
		insight TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_heatmap_history_day ON heatmap_history(day);

	CREATE TABLE IF NOT EXISTS stability_history (
		id TEXT PRIMARY KEY,
		day DATE NOT NULL,
		score REAL NOT NULL,
		plan_compliance REAL NOT NULL,
		behavioral_volatility REAL NOT NULL,
		risk_consistency REAL NOT NULL,
		emotional_trade_frequency REAL NOT NULL,
		battery_stability REAL NOT NULL,
		trade_count INTEGER NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_stability_history_day ON stability_history(day);
	`

	_, err := s.db.Exec(schema)
	return err
}

// SaveTrade persists a trade. Missing IDs are assigned.
func (s *SQLiteStore) SaveTrade(ctx context.Context, trade *models.Trade) error {
	if trade.ID == "" {
		trade.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO trades (id, entry_time, exit_time, profit_loss, risk_percent_used,
			risk_reward_achieved, target_percent_achieved, session, stop_loss_hit, exited_early, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		trade.ID, trade.EntryTime, trade.ExitTime, trade.ProfitLoss,
		nullableFloat(trade.RiskPercentUsed), nullableFloat(trade.RiskRewardAchieved),
		nullableFloat(trade.TargetPercentAchieved),
		string(trade.Session), boolToInt(trade.StopLossHit), boolToInt(trade.ExitedEarly), trade.Notes)
	if err != nil {
		return apperrors.NewStoreError("insert", "trade", err)
	}
	return nil
}

// GetTrades queries trades most-recent-first.
func (s *SQLiteStore) GetTrades(ctx context.Context, filter TradeFilter) ([]models.Trade, error) {
	query := `SELECT id, entry_time, exit_time, profit_loss, risk_percent_used,
		risk_reward_achieved, target_percent_achieved, session, stop_loss_hit, exited_early, notes
		FROM trades WHERE 1=1`
	var args []interface{}

	if !filter.From.IsZero() {
		query += " AND entry_time >= ?"
		args = append(args, filter.From)
	}
	if !filter.To.IsZero() {
		query += " AND entry_time <= ?"
		args = append(args, filter.To)
	}
	if filter.Session != "" {
		query += " AND session = ?"
		args = append(args, string(filter.Session))
	}
	query += " ORDER BY entry_time DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewStoreError("query", "trades", err)
	}
	defer rows.Close()

	var trades []models.Trade
	for rows.Next() {
		var t models.Trade
		var risk, rr, target sql.NullFloat64
		var session string
		var stopHit, early int
		var notes sql.NullString
		if err := rows.Scan(&t.ID, &t.EntryTime, &t.ExitTime, &t.ProfitLoss,
			&risk, &rr, &target, &session, &stopHit, &early, &notes); err != nil {
			return nil, apperrors.NewStoreError("scan", "trade", err)
		}
		if risk.Valid {
			t.RiskPercentUsed = &risk.Float64
		}
		if rr.Valid {
			t.RiskRewardAchieved = &rr.Float64
		}
		if target.Valid {
			t.TargetPercentAchieved = &target.Float64
		}
		t.Session = models.Session(session)
		t.StopLossHit = stopHit != 0
		t.ExitedEarly = early != 0
		t.Notes = notes.String
		trades = append(trades, t)
	}
	return trades, rows.Err()
}

// SavePlan upserts the single active trading plan.
func (s *SQLiteStore) SavePlan(ctx context.Context, plan *models.TradingPlan) error {
	sessions := make([]string, len(plan.PreferredSessions))
	for i, ps := range plan.PreferredSessions {
		sessions[i] = string(ps)
	}
	plan.UpdatedAt = time.Now()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO trading_plan (id, max_trades_per_day, risk_percent_per_trade,
			target_risk_reward, preferred_sessions, stop_loss_discipline, updated_at)
		VALUES (1, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			max_trades_per_day = excluded.max_trades_per_day,
			risk_percent_per_trade = excluded.risk_percent_per_trade,
			target_risk_reward = excluded.target_risk_reward,
			preferred_sessions = excluded.preferred_sessions,
			stop_loss_discipline = excluded.stop_loss_discipline,
			updated_at = excluded.updated_at`,
		plan.MaxTradesPerDay, plan.RiskPercentPerTrade, plan.TargetRiskRewardRatio,
		strings.Join(sessions, ","), string(plan.StopLossDiscipline), plan.UpdatedAt)
	if err != nil {
		return apperrors.NewStoreError("upsert", "plan", err)
	}
	return nil
}

// GetPlan returns the active plan, or ErrNoActivePlan when none is set.
func (s *SQLiteStore) GetPlan(ctx context.Context) (*models.TradingPlan, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT max_trades_per_day, risk_percent_per_trade, target_risk_reward,
			preferred_sessions, stop_loss_discipline, updated_at
		FROM trading_plan WHERE id = 1`)

	var plan models.TradingPlan
	var sessions, discipline string
	err := row.Scan(&plan.MaxTradesPerDay, &plan.RiskPercentPerTrade,
		&plan.TargetRiskRewardRatio, &sessions, &discipline, &plan.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, apperrors.ErrNoActivePlan
	}
	if err != nil {
		return nil, apperrors.NewStoreError("query", "plan", err)
	}

	for _, sess := range strings.Split(sessions, ",") {
		if sess == "" {
			continue
		}
		plan.PreferredSessions = append(plan.PreferredSessions, models.Session(sess))
	}
	plan.StopLossDiscipline = models.StopLossDiscipline(discipline)
	return &plan, nil
}

// SaveStateSnapshot appends a classifier snapshot.
func (s *SQLiteStore) SaveStateSnapshot(ctx context.Context, snapshot *analysis.StateAnalysis) error {
	indicators, err := json.Marshal(snapshot.Indicators)
	if err != nil {
		return apperrors.NewStoreError("marshal", "state snapshot", err)
	}
	recommendations, err := json.Marshal(snapshot.Recommendations)
	if err != nil {
		return apperrors.NewStoreError("marshal", "state snapshot", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO state_snapshots (id, state, confidence, plan_adherence,
			analyzed_trades, indicators, recommendations, generated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		uuid.NewString(), string(snapshot.State), snapshot.Confidence, snapshot.PlanAdherence,
		snapshot.AnalyzedTrades, string(indicators), string(recommendations), snapshot.GeneratedAt)
	if err != nil {
		return apperrors.NewStoreError("insert", "state snapshot", err)
	}
	return nil
}

// GetStateSnapshots returns the most recent snapshots, newest first.
func (s *SQLiteStore) GetStateSnapshots(ctx context.Context, limit int) ([]analysis.StateAnalysis, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT state, confidence, plan_adherence, analyzed_trades,
			indicators, recommendations, generated_at
		FROM state_snapshots ORDER BY generated_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, apperrors.NewStoreError("query", "state snapshots", err)
	}
	defer rows.Close()

	var snapshots []analysis.StateAnalysis
	for rows.Next() {
		var snap analysis.StateAnalysis
		var state, indicators, recommendations string
		if err := rows.Scan(&state, &snap.Confidence, &snap.PlanAdherence,
			&snap.AnalyzedTrades, &indicators, &recommendations, &snap.GeneratedAt); err != nil {
			return nil, apperrors.NewStoreError("scan", "state snapshot", err)
		}
		snap.State = analysis.State(state)
		if err := json.Unmarshal([]byte(indicators), &snap.Indicators); err != nil {
			return nil, apperrors.NewStoreError("unmarshal", "state snapshot", err)
		}
		if err := json.Unmarshal([]byte(recommendations), &snap.Recommendations); err != nil {
			return nil, apperrors.NewStoreError("unmarshal", "state snapshot", err)
		}
		snapshots = append(snapshots, snap)
	}
	return snapshots, rows.Err()
}

// SaveHeatmapDay appends one day's behavior heatmap.
func (s *SQLiteStore) SaveHeatmapDay(ctx context.Context, hm *scoring.Heatmap) error {
	windows, err := json.Marshal(hm.Windows)
	if err != nil {
		return apperrors.NewStoreError("marshal", "heatmap", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO heatmap_history (id, day, windows, insight)
		VALUES (?, ?, ?, ?)`,
		uuid.NewString(), hm.Day.Format("2006-01-02"), string(windows), hm.Insight)
	if err != nil {
		return apperrors.NewStoreError("insert", "heatmap", err)
	}
	return nil
}

// GetHeatmapHistory returns heatmaps for the trailing day range, newest
// first.
func (s *SQLiteStore) GetHeatmapHistory(ctx context.Context, days int) ([]scoring.Heatmap, error) {
	if days <= 0 {
		days = 7
	}
	cutoff := time.Now().AddDate(0, 0, -days).Format("2006-01-02")
	rows, err := s.db.QueryContext(ctx, `
		SELECT day, windows, insight FROM heatmap_history
		WHERE day >= ? ORDER BY day DESC, created_at DESC`, cutoff)
	if err != nil {
		return nil, apperrors.NewStoreError("query", "heatmap history", err)
	}
	defer rows.Close()

	var maps []scoring.Heatmap
	for rows.Next() {
		var hm scoring.Heatmap
		var day, windows string
		var insight sql.NullString
		if err := rows.Scan(&day, &windows, &insight); err != nil {
			return nil, apperrors.NewStoreError("scan", "heatmap", err)
		}
		if hm.Day, err = time.Parse("2006-01-02", day); err != nil {
			return nil, apperrors.NewStoreError("parse", "heatmap day", err)
		}
		if err := json.Unmarshal([]byte(windows), &hm.Windows); err != nil {
			return nil, apperrors.NewStoreError("unmarshal", "heatmap windows", err)
		}
		hm.Insight = insight.String
		maps = append(maps, hm)
	}
	return maps, rows.Err()
}

// SaveStabilityDay appends one day's consistency score.
func (s *SQLiteStore) SaveStabilityDay(ctx context.Context, day *scoring.StabilityDay) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO stability_history (id, day, score, plan_compliance, behavioral_volatility,
			risk_consistency, emotional_trade_frequency, battery_stability, trade_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		uuid.NewString(), day.Day.Format("2006-01-02"), day.Score, day.PlanCompliance,
		day.BehavioralVolatility, day.RiskConsistency, day.EmotionalTradeFrequency,
		day.BatteryStability, day.TradeCount)
	if err != nil {
		return apperrors.NewStoreError("insert", "stability day", err)
	}
	return nil
}

// GetStabilityHistory returns stability days for the trailing range, newest
// first.
func (s *SQLiteStore) GetStabilityHistory(ctx context.Context, days int) ([]scoring.StabilityDay, error) {
	if days <= 0 {
		days = 7
	}
	cutoff := time.Now().AddDate(0, 0, -days).Format("2006-01-02")
	rows, err := s.db.QueryContext(ctx, `
		SELECT day, score, plan_compliance, behavioral_volatility, risk_consistency,
			emotional_trade_frequency, battery_stability, trade_count
		FROM stability_history WHERE day >= ? ORDER BY day DESC, created_at DESC`, cutoff)
	if err != nil {
		return nil, apperrors.NewStoreError("query", "stability history", err)
	}
	defer rows.Close()

	var result []scoring.StabilityDay
	for rows.Next() {
		var d scoring.StabilityDay
		var day string
		if err := rows.Scan(&day, &d.Score, &d.PlanCompliance, &d.BehavioralVolatility,
			&d.RiskConsistency, &d.EmotionalTradeFrequency, &d.BatteryStability, &d.TradeCount); err != nil {
			return nil, apperrors.NewStoreError("scan", "stability day", err)
		}
		if d.Day, err = time.Parse("2006-01-02", day); err != nil {
			return nil, apperrors.NewStoreError("parse", "stability day", err)
		}
		result = append(result, d)
	}
	return result, rows.Err()
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func nullableFloat(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
