package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"traderlens/internal/analysis"
	"traderlens/internal/analysis/forecast"
	"traderlens/internal/analysis/state"
	"traderlens/internal/logging"
	"traderlens/internal/models"
	"traderlens/internal/store"
)

// addAnalysisCommands adds the classifier, history, forecast and insight
// commands.
func addAnalysisCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newStateCmd(app))
	rootCmd.AddCommand(newHistoryCmd(app))
	rootCmd.AddCommand(newForecastCmd(app))
	rootCmd.AddCommand(newInsightsCmd(app))
}

func newStateCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "state",
		Short: "Classify your current psychological state",
		Long:  "Analyze your most recent trades against your plan and classify your trading psychology.",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := commandContext()
			defer cancel()

			if n, _ := cmd.Flags().GetInt("snapshots"); n > 0 {
				snaps, err := app.Store.GetStateSnapshots(ctx, n)
				if err != nil {
					return err
				}
				if output.IsJSON() {
					return output.JSON(snaps)
				}
				for _, snap := range snaps {
					output.Printf("  %s  %-13s confidence %d%%, adherence %d%%\n",
						snap.GeneratedAt.Format("2006-01-02 15:04"), snap.State,
						snap.Confidence, snap.PlanAdherence)
				}
				return nil
			}

			trades, plan, err := app.loadInputs(ctx, store.TradeFilter{})
			if err != nil {
				return err
			}

			result := state.Classify(trades, plan)
			if err := app.Store.SaveStateSnapshot(ctx, &result); err != nil {
				app.Logger.Warn().Err(err).Msg("Failed to persist state snapshot")
			}
			logging.LogSnapshot(app.Logger, "state", result.AnalyzedTrades)

			if output.IsJSON() {
				return output.JSON(result)
			}
			renderState(output, result)
			return nil
		},
	}
	cmd.Flags().Int("snapshots", 0, "list the N most recent stored snapshots instead")
	return cmd
}

func renderState(output *Output, result analysis.StateAnalysis) {
	output.Bold("Psychological State: %s", result.State)
	output.Printf("  Confidence:     %d%%\n", result.Confidence)
	output.Printf("  Plan adherence: %d%%\n", result.PlanAdherence)
	output.Printf("  Trades scored:  %d\n", result.AnalyzedTrades)
	output.Println()
	output.Bold("Indicators")
	for _, ind := range result.Indicators {
		output.Printf("  - %s\n", ind)
	}
	output.Bold("Recommendations")
	for _, rec := range result.Recommendations {
		output.Printf("  - %s\n", rec)
	}
}

func newHistoryCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the state change-point timeline",
		Long:  "Re-evaluate your state over sliding 5-trade windows and show when it shifted.",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := commandContext()
			defer cancel()

			limit, _ := cmd.Flags().GetInt("limit")
			if limit <= 0 {
				limit = app.Config.Analytics.HistoryLimit
			}

			trades, plan, err := app.loadInputs(ctx, store.TradeFilter{})
			if err != nil {
				return err
			}

			result := state.History(trades, plan, limit)
			if output.IsJSON() {
				return output.JSON(result)
			}

			output.Bold("State History (%d change points)", len(result.Points))
			for _, p := range result.Points {
				output.Printf("  %s  %-13s confidence %d%%\n",
					p.Timestamp.Format("2006-01-02 15:04"), p.State, p.Confidence)
			}
			output.Println()
			output.Bold("Summary")
			output.Printf("  Changes:         %d\n", result.Summary.Changes)
			output.Printf("  Dominant state:  %s\n", result.Summary.DominantState)
			output.Printf("  Mean confidence: %.1f%%\n", result.Summary.MeanConfidence)
			output.Printf("  Volatility:      %.2f\n", result.Summary.Volatility)
			return nil
		},
	}
	cmd.Flags().Int("limit", 0, "maximum change points to emit")
	return cmd
}

func newForecastCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "forecast <session>",
		Short: "Forecast behavioral bias for a session",
		Long:  "Build a bias forecast for LONDON, NY or ASIA from your last trades in that session.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := commandContext()
			defer cancel()

			session := models.Session(args[0])
			if !models.ValidSession(session) {
				return fmt.Errorf("unknown session %q (expected LONDON, NY or ASIA)", args[0])
			}

			trades, plan, err := app.loadInputs(ctx, store.TradeFilter{})
			if err != nil {
				return err
			}

			result := forecast.Session(trades, plan, session)
			if output.IsJSON() {
				return output.JSON(result)
			}

			output.Bold("%s Session Forecast: %s", result.Session, result.Outlook)
			output.Printf("  Risk level: %s\n", result.RiskLevel)
			output.Printf("  Sample:     %d trades\n", result.SampleSize)
			if len(result.Biases) > 0 {
				output.Bold("Biases")
				for _, b := range result.Biases {
					output.Warning("  ! %s", b)
				}
			}
			output.Bold("Recommendations")
			for _, rec := range result.Recommendations {
				output.Printf("  - %s\n", rec)
			}
			return nil
		},
	}
	return cmd
}

func newInsightsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "insights",
		Short: "Show period performance insights",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := commandContext()
			defer cancel()

			days, _ := cmd.Flags().GetInt("days")
			if days <= 0 {
				days = app.Config.Analytics.InsightDays
			}
			now := time.Now()

			trades, plan, err := app.loadInputs(ctx, store.TradeFilter{
				From: now.AddDate(0, 0, -days),
			})
			if err != nil {
				return err
			}

			result := forecast.Insights(trades, plan, now)
			if output.IsJSON() {
				return output.JSON(result)
			}

			output.Bold("Performance (last %d days)", days)
			output.Printf("  Win rate:        %.0f%%\n", result.WinRate)
			output.Printf("  Avg risk/reward: %.2f\n", result.AvgRiskReward)
			output.Printf("  Plan adherence:  %d%%\n", result.PlanAdherence)
			output.Printf("  Trades this week: %d\n", result.TradesThisWeek)
			output.Println()
			for _, insight := range result.Insights {
				if insight.Kind == analysis.InsightPositive {
					output.Success("+ %s: %s", insight.Title, insight.Detail)
				} else {
					output.Warning("~ %s: %s", insight.Title, insight.Detail)
				}
			}
			return nil
		},
	}
	cmd.Flags().Int("days", 0, "period length in days")
	return cmd
}
