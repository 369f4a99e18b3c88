package cli

import (
	"time"

	"github.com/spf13/cobra"

	"traderlens/internal/analysis/patterns"
	"traderlens/internal/analysis/scoring"
	"traderlens/internal/logging"
	"traderlens/internal/store"
	"traderlens/pkg/utils"
)

// addScoreCommands adds the behavioral scoring suite and pattern matcher
// commands.
func addScoreCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newBatteryCmd(app))
	rootCmd.AddCommand(newPlanControlCmd(app))
	rootCmd.AddCommand(newRadarCmd(app))
	rootCmd.AddCommand(newHeatmapCmd(app))
	rootCmd.AddCommand(newConsistencyCmd(app))
	rootCmd.AddCommand(newBreathworkCmd(app))
	rootCmd.AddCommand(newImprovementCmd(app))
}

// todayFilter selects today's trades, the window the battery, heatmap and
// breathwork scorers operate on.
func todayFilter(now time.Time) store.TradeFilter {
	y, m, d := now.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	return store.TradeFilter{From: start, To: now}
}

func newBatteryCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "battery",
		Short: "Show today's mental energy level",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := commandContext()
			defer cancel()

			trades, plan, err := app.loadInputs(ctx, todayFilter(time.Now()))
			if err != nil {
				return err
			}

			result := scoring.MentalBattery(trades, plan)
			if output.IsJSON() {
				return output.JSON(result)
			}

			output.Bold("Mental Battery: %s", utils.FormatScore(float64(result.Score)))
			output.Printf("  Status: %s\n", result.Status)
			output.Printf("  Trades today: %d\n", result.TradeCount)
			for _, ev := range result.Events {
				if ev.Delta < 0 {
					output.Warning("  %+d  %s (x%d)", ev.Delta, ev.Reason, ev.Count)
				} else {
					output.Success("  %+d  %s (x%d)", ev.Delta, ev.Reason, ev.Count)
				}
			}
			return nil
		},
	}
}

func newPlanControlCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "plancontrol",
		Short: "Score plan compliance with causal attribution",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := commandContext()
			defer cancel()

			trades, plan, err := app.loadInputs(ctx, store.TradeFilter{})
			if err != nil {
				return err
			}

			result := scoring.PlanControlScore(trades, plan)
			if output.IsJSON() {
				return output.JSON(result)
			}

			output.Bold("Plan Control: %s", utils.FormatScore(float64(result.Score)))
			output.Printf("  Trades scored: %d\n", result.SampleSize)
			if result.TopCause != "" {
				output.Warning("  Top deviation cause: %s", result.TopCause)
				for _, p := range result.Patterns {
					output.Printf("  - %s\n", p)
				}
			} else {
				output.Success("  No deviation cause attributed")
			}
			return nil
		},
	}
}

func newRadarCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "radar",
		Short: "Show the six-trait behavioral radar",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := commandContext()
			defer cancel()

			trades, plan, err := app.loadInputs(ctx, store.TradeFilter{})
			if err != nil {
				return err
			}

			result := scoring.PsychRadar(trades, plan)
			if output.IsJSON() {
				return output.JSON(result)
			}

			output.Bold("Behavioral Radar (%d trades)", result.SampleSize)
			output.Printf("  Discipline:           %s\n", utils.FormatScore(result.Discipline))
			output.Printf("  Impulse control:      %s\n", utils.FormatScore(result.ImpulseControl))
			output.Printf("  Aggression:           %s\n", utils.FormatScore(result.Aggression))
			output.Printf("  Hesitation:           %s\n", utils.FormatScore(result.Hesitation))
			output.Printf("  Consistency:          %s\n", utils.FormatScore(result.Consistency))
			output.Printf("  Emotional volatility: %s\n", utils.FormatScore(result.EmotionalVolatility))
			return nil
		},
	}
}

func newHeatmapCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "heatmap",
		Short: "Show today's time-of-day behavior heatmap",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := commandContext()
			defer cancel()

			if history, _ := cmd.Flags().GetBool("history"); history {
				days, _ := cmd.Flags().GetInt("days")
				maps, err := app.Store.GetHeatmapHistory(ctx, days)
				if err != nil {
					return err
				}
				if output.IsJSON() {
					return output.JSON(maps)
				}
				for _, hm := range maps {
					renderHeatmap(output, hm)
				}
				return nil
			}

			now := time.Now()
			trades, plan, err := app.loadInputs(ctx, todayFilter(now))
			if err != nil {
				return err
			}

			result := scoring.BehaviorHeatmap(trades, plan, now)
			if err := app.Store.SaveHeatmapDay(ctx, &result); err != nil {
				app.Logger.Warn().Err(err).Msg("Failed to persist heatmap")
			}
			logging.LogSnapshot(app.Logger, "heatmap", len(trades))

			if output.IsJSON() {
				return output.JSON(result)
			}
			renderHeatmap(output, result)
			return nil
		},
	}
	cmd.Flags().Bool("history", false, "show stored heatmap history")
	cmd.Flags().Int("days", 7, "history range in days")
	return cmd
}

func renderHeatmap(output *Output, hm scoring.Heatmap) {
	output.Bold("Behavior Heatmap - %s", utils.FormatDate(hm.Day))
	for _, w := range hm.Windows {
		if w.Score == nil {
			output.Dim("  %s  %-6s (no trades)", w.Label, w.Color)
			continue
		}
		line := "  %s  %-6s %s (%d trades)"
		switch w.Color {
		case scoring.HeatGreen:
			output.Success(line, w.Label, w.Color, utils.FormatScore(*w.Score), w.TradeCount)
		case scoring.HeatRed:
			output.Error(line, w.Label, w.Color, utils.FormatScore(*w.Score), w.TradeCount)
		default:
			output.Warning(line, w.Label, w.Color, utils.FormatScore(*w.Score), w.TradeCount)
		}
	}
	output.Info("  %s", hm.Insight)
}

func newConsistencyCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "consistency",
		Short: "Show the day-by-day consistency trend",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := commandContext()
			defer cancel()

			days, _ := cmd.Flags().GetInt("days")
			if days <= 0 {
				days = app.Config.Analytics.TrendDays
			}

			if history, _ := cmd.Flags().GetBool("history"); history {
				stored, err := app.Store.GetStabilityHistory(ctx, days)
				if err != nil {
					return err
				}
				if output.IsJSON() {
					return output.JSON(stored)
				}
				for _, d := range stored {
					output.Printf("  %s  %s (%d trades)\n",
						utils.FormatDate(d.Day), utils.FormatScore(d.Score), d.TradeCount)
				}
				return nil
			}

			now := time.Now()

			trades, plan, err := app.loadInputs(ctx, store.TradeFilter{
				From: now.AddDate(0, 0, -days),
			})
			if err != nil {
				return err
			}

			result := scoring.ConsistencyTrend(trades, plan, days, now)
			for i := range result.Days {
				if err := app.Store.SaveStabilityDay(ctx, &result.Days[i]); err != nil {
					app.Logger.Warn().Err(err).Msg("Failed to persist stability day")
					break
				}
			}

			if output.IsJSON() {
				return output.JSON(result)
			}

			output.Bold("Consistency Trend: %s", result.Direction)
			for _, d := range result.Days {
				output.Printf("  %s  %s (%d trades)\n",
					utils.FormatDate(d.Day), utils.FormatScore(d.Score), d.TradeCount)
			}
			if len(result.Days) >= 2 {
				output.Printf("  First half avg:  %.1f\n", result.FirstHalfAvg)
				output.Printf("  Second half avg: %.1f\n", result.SecondHalfAvg)
			}
			return nil
		},
	}
	cmd.Flags().Int("days", 0, "trend range in days")
	cmd.Flags().Bool("history", false, "show stored stability history")
	return cmd
}

func newBreathworkCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "breathwork",
		Short: "Check whether a breathing break is warranted",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := commandContext()
			defer cancel()

			now := time.Now()
			trades, plan, err := app.loadInputs(ctx, todayFilter(now))
			if err != nil {
				return err
			}

			result := patterns.SuggestBreathwork(trades, plan, now)
			if output.IsJSON() {
				return output.JSON(result)
			}

			if !result.ShouldSuggest {
				output.Success("No intervention needed right now")
				return nil
			}
			output.Bold("Breathwork suggested (urgency %d, %s)", result.Urgency, result.Band)
			for _, t := range result.Triggers {
				output.Warning("  ! %s", t)
			}
			output.Info("  Recommended exercise: %s", result.Exercise)
			return nil
		},
	}
}

func newImprovementCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "improvement",
		Short: "Detect the strongest recent improvement",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := commandContext()
			defer cancel()

			trades, plan, err := app.loadInputs(ctx, store.TradeFilter{})
			if err != nil {
				return err
			}

			result := patterns.DetectImprovement(trades, plan)
			if output.IsJSON() {
				return output.JSON(result)
			}

			if !result.Found {
				output.Dim("No notable improvement in the recent window")
				return nil
			}
			output.Success("%s", result.Message)
			return nil
		},
	}
}
