package state

import (
	"testing"
	"time"

	"traderlens/internal/analysis"
	"traderlens/internal/models"
)

func calmTrades(n int) []models.Trade {
	trades := make([]models.Trade, n)
	for i := range trades {
		entry := baseTime.Add(time.Duration(i) * 24 * time.Hour)
		trades[i] = trade(entry, 1, 1.5, 100, models.SessionLondon)
	}
	return trades
}

func TestHistory_Empty(t *testing.T) {
	result := History(nil, standardPlan(), 0)
	if len(result.Points) != 0 {
		t.Fatalf("got %d points, want 0", len(result.Points))
	}
	if result.Summary.DominantState != analysis.StateStable {
		t.Errorf("DominantState = %s, want STABLE for empty history", result.Summary.DominantState)
	}
	if result.Summary.Changes != 0 {
		t.Errorf("Changes = %d, want 0", result.Summary.Changes)
	}
}

func TestHistory_FirstPointAlwaysEmitted(t *testing.T) {
	result := History(calmTrades(3), standardPlan(), 0)
	if len(result.Points) == 0 {
		t.Fatal("expected at least the initial point")
	}
	if result.Points[0].TradeIndex != 0 {
		t.Errorf("first point index = %d, want 0", result.Points[0].TradeIndex)
	}
}

func TestHistory_StateShiftEmitsPoint(t *testing.T) {
	// Five calm trades, then five heavily oversized ones: the window
	// composition shifts and the classifier must flip state at least once.
	trades := calmTrades(5)
	for i := 0; i < 5; i++ {
		entry := baseTime.Add(time.Duration(5+i) * 24 * time.Hour)
		trades = append(trades, trade(entry, -1, 4.0, 40, models.SessionLondon))
	}

	result := History(trades, standardPlan(), 0)

	seen := map[analysis.State]bool{}
	for _, p := range result.Points {
		seen[p.State] = true
	}
	if !seen[analysis.StateAggressive] {
		t.Errorf("expected an AGGRESSIVE change point, states seen: %v", seen)
	}
	if result.Summary.Changes != len(result.Points)-1 {
		t.Errorf("Changes = %d, want %d", result.Summary.Changes, len(result.Points)-1)
	}
}

func TestHistory_LimitHonored(t *testing.T) {
	trades := calmTrades(5)
	for i := 0; i < 5; i++ {
		entry := baseTime.Add(time.Duration(5+i) * 24 * time.Hour)
		trades = append(trades, trade(entry, -1, 4.0, 40, models.SessionLondon))
	}

	result := History(trades, standardPlan(), 2)
	if len(result.Points) > 2 {
		t.Errorf("got %d points, limit was 2", len(result.Points))
	}
}

func TestHistory_PointsChronological(t *testing.T) {
	trades := calmTrades(8)
	result := History(trades, standardPlan(), 0)
	for i := 1; i < len(result.Points); i++ {
		if result.Points[i].Timestamp.Before(result.Points[i-1].Timestamp) {
			t.Fatal("history points must be emitted in chronological order")
		}
	}
}
