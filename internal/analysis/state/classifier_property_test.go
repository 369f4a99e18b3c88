package state

import (
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"traderlens/internal/analysis"
	"traderlens/internal/analysis/metrics"
	"traderlens/internal/models"
)

// Property: classification is a total function. For any trade window it
// returns one of the four states, confidence within [10, 95] (capped at 40
// below 5 trades), and plan adherence within [0, 100].

func genTrade() gopter.Gen {
	return gopter.CombineGens(
		gen.Int64Range(0, 13*24*60), // entry offset in minutes
		gen.Int64Range(5, 300),      // hold duration in minutes
		gen.Float64Range(-8, 8),     // profit/loss
		gen.Float64Range(0.1, 6),    // risk percent
		gen.IntRange(0, 2),          // 0 => risk unknown
		gen.Float64Range(0, 150),    // target percent achieved
		gen.IntRange(0, 2),          // 0 => target unknown
		gen.Bool(),                  // exited early
		gen.IntRange(0, 2),          // session selector
	).Map(func(values []interface{}) models.Trade {
		entry := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).
			Add(time.Duration(values[0].(int64)) * time.Minute)
		t := models.Trade{
			EntryTime:   entry,
			ExitTime:    entry.Add(time.Duration(values[1].(int64)) * time.Minute),
			ProfitLoss:  values[2].(float64),
			ExitedEarly: values[7].(bool),
			Session:     []models.Session{models.SessionLondon, models.SessionNY, models.SessionAsia}[values[8].(int)],
		}
		if values[4].(int) > 0 {
			t.RiskPercentUsed = models.Float64Ptr(values[3].(float64))
		}
		if values[6].(int) > 0 {
			t.TargetPercentAchieved = models.Float64Ptr(values[5].(float64))
		}
		return t
	})
}

func genTrades(maxLen int) gopter.Gen {
	return gen.SliceOfN(maxLen, genTrade()).Map(func(trades []models.Trade) []models.Trade {
		return metrics.SortDescending(trades)
	})
}

func propertyParameters() *gopter.TestParameters {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())
	parameters.MaxShrinkCount = 0
	return parameters
}

func validState(st analysis.State) bool {
	switch st {
	case analysis.StateStable, analysis.StateAggressive, analysis.StateHesitant, analysis.StateOverextended:
		return true
	}
	return false
}

func TestProperty_ClassifyTotalAndBounded(t *testing.T) {
	properties := gopter.NewProperties(propertyParameters())

	properties.Property("classification is total with bounded outputs", prop.ForAll(
		func(trades []models.Trade) bool {
			result := Classify(trades, standardPlan())
			if !validState(result.State) {
				return false
			}
			if result.Confidence < 10 || result.Confidence > 95 {
				return false
			}
			if result.PlanAdherence < 0 || result.PlanAdherence > 100 {
				return false
			}
			return len(result.Indicators) > 0 && len(result.Recommendations) > 0
		},
		genTrades(15),
	))

	properties.TestingRun(t)
}

func TestProperty_LowDataConfidenceCapped(t *testing.T) {
	properties := gopter.NewProperties(propertyParameters())

	properties.Property("confidence stays at or below 40 under 5 trades", prop.ForAll(
		func(trades []models.Trade) bool {
			result := Classify(trades, standardPlan())
			return result.Confidence <= 40
		},
		genTrades(4),
	))

	properties.TestingRun(t)
}

func TestProperty_HistoryRespectsLimit(t *testing.T) {
	properties := gopter.NewProperties(propertyParameters())

	properties.Property("history never exceeds its limit", prop.ForAll(
		func(trades []models.Trade, limit int) bool {
			result := History(trades, standardPlan(), limit)
			max := limit
			if max <= 0 {
				max = 20
			}
			return len(result.Points) <= max
		},
		genTrades(15),
		gen.IntRange(-1, 10),
	))

	properties.TestingRun(t)
}
