package scoring

import (
	"fmt"
	"time"

	"traderlens/internal/analysis/metrics"
	"traderlens/internal/models"
)

// HeatmapWindows is the number of fixed 3-hour windows in a day.
const HeatmapWindows = 8

// HeatColor is the categorical label for one heatmap window.
type HeatColor string

const (
	HeatGreen  HeatColor = "green"  // score >= 70
	HeatYellow HeatColor = "yellow" // score >= 40
	HeatRed    HeatColor = "red"    // below 40
	HeatGrey   HeatColor = "grey"   // no trades
)

// Heatmap window score weights.
const (
	weightExpectancy = 0.20
	weightCompliance = 0.30
	weightImpulse    = 0.15
	weightHesitation = 0.15
	weightRiskDev    = 0.10
	weightVolatility = 0.05
	weightFrequency  = 0.05
	windowFreeTrades = 3  // trades per window before the frequency penalty kicks in
	frequencyStepPct = 25 // penalty per extra trade
)

// HeatWindow is one 3-hour slot of the behavior heatmap. Score is nil for
// windows without trades; such windows are always grey.
type HeatWindow struct {
	Label      string
	StartHour  int
	TradeCount int
	Score      *float64
	Color      HeatColor
}

// Heatmap is the full-day time-of-day behavior picture plus one derived
// insight.
type Heatmap struct {
	Day     time.Time
	Windows [HeatmapWindows]HeatWindow
	Insight string
}

// BehaviorHeatmap partitions the given day's trades into eight 3-hour
// windows and scores each window that saw activity. Trades outside the
// requested calendar day are ignored.
func BehaviorHeatmap(trades []models.Trade, plan *models.TradingPlan, day time.Time) Heatmap {
	y, m, d := day.Date()
	dayStart := time.Date(y, m, d, 0, 0, 0, 0, day.Location())

	hm := Heatmap{Day: dayStart}
	var dayTrades []models.Trade
	for i := range trades {
		if trades[i].Day().Equal(dayStart) {
			dayTrades = append(dayTrades, trades[i])
		}
	}
	chrono := chronological(metrics.SortDescending(dayTrades))

	buckets := make([][]models.Trade, HeatmapWindows)
	prevByWindow := make([][]*models.Trade, HeatmapWindows)
	for i := range chrono {
		w := chrono[i].EntryTime.Hour() / 3
		buckets[w] = append(buckets[w], chrono[i])
		if i > 0 {
			prevByWindow[w] = append(prevByWindow[w], &chrono[i-1])
		} else {
			prevByWindow[w] = append(prevByWindow[w], nil)
		}
	}

	for w := 0; w < HeatmapWindows; w++ {
		hw := HeatWindow{
			Label:      fmt.Sprintf("%02d-%02d", w*3, w*3+3),
			StartHour:  w * 3,
			TradeCount: len(buckets[w]),
			Color:      HeatGrey,
		}
		if len(buckets[w]) > 0 {
			score := windowScore(buckets[w], prevByWindow[w], plan)
			hw.Score = &score
			hw.Color = heatColor(score)
		}
		hm.Windows[w] = hw
	}

	hm.Insight = heatmapInsight(hm)
	return hm
}

// windowScore is the weighted composite for one active window. prev carries
// each trade's chronological predecessor from the full day, so impulsive
// re-entries across window boundaries still count.
func windowScore(windowTrades []models.Trade, prev []*models.Trade, plan *models.TradingPlan) float64 {
	n := float64(len(windowTrades))

	wins := 0
	impulsive := 0
	early := 0
	for i := range windowTrades {
		t := &windowTrades[i]
		if t.IsWin() {
			wins++
		}
		if metrics.EarlyExit(t) {
			early++
		}
		if prev[i] != nil && t.EntryTime.Sub(prev[i].ExitTime) < metrics.ImpulsiveGap {
			impulsive++
		}
	}

	expectancy := float64(wins) / n * 100
	compliance, _, _ := planControlMean(metrics.SortDescending(windowTrades), plan)
	impulsiveness := float64(impulsive) / n * 100
	hesitation := float64(early) / n * 100
	riskDeviation := windowRiskDeviation(windowTrades, plan)
	volatilityPenalty := metrics.Clamp(metrics.StdDev(profits(windowTrades))*10, 0, 100)
	frequencyPenalty := metrics.Clamp(float64(len(windowTrades)-windowFreeTrades)*frequencyStepPct, 0, 100)

	score := weightExpectancy*expectancy +
		weightCompliance*float64(compliance) +
		weightImpulse*(100-impulsiveness) +
		weightHesitation*(100-hesitation) +
		weightRiskDev*(100-riskDeviation) +
		weightVolatility*(100-volatilityPenalty) +
		weightFrequency*(100-frequencyPenalty)
	return metrics.Clamp(score, 0, 100)
}

// windowRiskDeviation is the percent distance of the window's average risk
// from the plan allowance, capped at 100. Unknown risk deviates nothing.
func windowRiskDeviation(trades []models.Trade, plan *models.TradingPlan) float64 {
	if plan == nil || plan.RiskPercentPerTrade <= 0 {
		return 0
	}
	risks := metrics.Risks(trades)
	if len(risks) == 0 {
		return 0
	}
	dev := metrics.Mean(risks) - plan.RiskPercentPerTrade
	if dev < 0 {
		dev = -dev
	}
	return metrics.Clamp(dev/plan.RiskPercentPerTrade*100, 0, 100)
}

func profits(trades []models.Trade) []float64 {
	out := make([]float64, len(trades))
	for i := range trades {
		out[i] = trades[i].ProfitLoss
	}
	return out
}

func heatColor(score float64) HeatColor {
	switch {
	case score >= 70:
		return HeatGreen
	case score >= 40:
		return HeatYellow
	default:
		return HeatRed
	}
}

// heatmapInsight picks the single most explanatory pattern for the day, in
// fixed priority order.
func heatmapInsight(hm Heatmap) string {
	type active struct {
		label string
		count int
		score float64
	}
	var windows []active
	reds, greens := 0, 0
	var scoreSum float64
	for _, w := range hm.Windows {
		if w.Score == nil {
			continue
		}
		windows = append(windows, active{w.Label, w.TradeCount, *w.Score})
		scoreSum += *w.Score
		switch w.Color {
		case HeatRed:
			reds++
		case HeatGreen:
			greens++
		}
	}
	if len(windows) == 0 {
		return "No trades recorded for this day"
	}

	avg := scoreSum / float64(len(windows))
	busiest, quietest, best, worst := windows[0], windows[0], windows[0], windows[0]
	for _, w := range windows[1:] {
		if w.count > busiest.count {
			busiest = w
		}
		if w.count < quietest.count {
			quietest = w
		}
		if w.score > best.score {
			best = w
		}
		if w.score < worst.score {
			worst = w
		}
	}

	switch {
	case len(windows) > 1 && busiest.score < avg-10:
		return fmt.Sprintf("Your busiest window (%s) scores well below your average; activity is hurting quality", busiest.label)
	case len(windows) > 1 && quietest.score > avg+10:
		return fmt.Sprintf("Your calmest window (%s) is your best; fewer, more deliberate trades pay off", quietest.label)
	case reds >= 2:
		return fmt.Sprintf("%d time windows scored red today; consider restricting your trading hours", reds)
	case greens*2 > len(windows):
		return "Most of your active windows scored green; current timing works"
	case best.score-worst.score > 30:
		return fmt.Sprintf("Large quality gap between %s and %s; study what differs between them", best.label, worst.label)
	default:
		return "Behavior is evenly spread across your trading windows"
	}
}
