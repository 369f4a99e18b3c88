package cli

import (
	"strings"
	"time"

	"github.com/spf13/cobra"

	apperrors "traderlens/internal/errors"
	"traderlens/internal/models"
)

// addPlanCommands adds the trading plan commands.
func addPlanCommands(rootCmd *cobra.Command, app *App) {
	planCmd := &cobra.Command{
		Use:   "plan",
		Short: "Manage the active trading plan",
	}
	planCmd.AddCommand(newPlanSetCmd(app))
	planCmd.AddCommand(newPlanShowCmd(app))
	rootCmd.AddCommand(planCmd)
}

func newPlanSetCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Declare or replace the active trading plan",
		Long:  "Set the single active plan. Every analytics command grades trades against it.",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := commandContext()
			defer cancel()

			plan, err := planFromFlags(cmd)
			if err != nil {
				return err
			}
			if err := app.Store.SavePlan(ctx, plan); err != nil {
				return err
			}
			app.Logger.Info().
				Float64("risk_percent", plan.RiskPercentPerTrade).
				Int("max_trades", plan.MaxTradesPerDay).
				Msg("Trading plan updated")

			if output.IsJSON() {
				return output.JSON(plan)
			}
			output.Success("Trading plan saved")
			renderPlan(output, plan)
			return nil
		},
	}

	cmd.Flags().Int("max-trades", 0, "maximum trades per day")
	cmd.Flags().Float64("risk", 0, "risk percent per trade")
	cmd.Flags().Float64("rr", 0, "target risk/reward ratio")
	cmd.Flags().StringSlice("sessions", nil, "preferred sessions (empty: no restriction)")
	cmd.Flags().String("stop-discipline", string(models.StopDisciplineStrict), "stop discipline: STRICT, FLEXIBLE or MENTAL")
	cmd.MarkFlagRequired("max-trades")
	cmd.MarkFlagRequired("risk")
	cmd.MarkFlagRequired("rr")
	return cmd
}

func planFromFlags(cmd *cobra.Command) (*models.TradingPlan, error) {
	maxTrades, _ := cmd.Flags().GetInt("max-trades")
	risk, _ := cmd.Flags().GetFloat64("risk")
	rr, _ := cmd.Flags().GetFloat64("rr")
	sessionStrs, _ := cmd.Flags().GetStringSlice("sessions")
	disciplineStr, _ := cmd.Flags().GetString("stop-discipline")

	if maxTrades <= 0 {
		return nil, apperrors.NewValidationError("max-trades", maxTrades, "must be positive")
	}
	if risk <= 0 || risk > 100 {
		return nil, apperrors.NewValidationError("risk", risk, "must be in (0, 100]")
	}
	if rr <= 0 {
		return nil, apperrors.NewValidationError("rr", rr, "must be positive")
	}
	discipline := models.StopLossDiscipline(strings.ToUpper(disciplineStr))
	if !models.ValidStopLossDiscipline(discipline) {
		return nil, apperrors.NewValidationError("stop-discipline", disciplineStr, "expected STRICT, FLEXIBLE or MENTAL")
	}

	sessions := make([]models.Session, 0, len(sessionStrs))
	for _, s := range sessionStrs {
		session := models.Session(strings.ToUpper(strings.TrimSpace(s)))
		if !models.ValidSession(session) {
			return nil, apperrors.NewValidationError("sessions", s, "expected LONDON, NY or ASIA")
		}
		sessions = append(sessions, session)
	}

	return &models.TradingPlan{
		MaxTradesPerDay:       maxTrades,
		RiskPercentPerTrade:   risk,
		TargetRiskRewardRatio: rr,
		PreferredSessions:     sessions,
		StopLossDiscipline:    discipline,
		UpdatedAt:             time.Now(),
	}, nil
}

func newPlanShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the active trading plan",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := commandContext()
			defer cancel()

			plan, err := app.Store.GetPlan(ctx)
			if err != nil {
				if apperrors.Is(err, apperrors.ErrNoActivePlan) {
					output.Dim("No active plan. Set one with 'traderlens plan set'.")
					return nil
				}
				return err
			}
			if output.IsJSON() {
				return output.JSON(plan)
			}
			renderPlan(output, plan)
			return nil
		},
	}
}

func renderPlan(output *Output, plan *models.TradingPlan) {
	output.Bold("Trading Plan")
	output.Printf("  Max trades/day:     %d\n", plan.MaxTradesPerDay)
	output.Printf("  Risk per trade:     %.2f%%\n", plan.RiskPercentPerTrade)
	output.Printf("  Target R:R:         %.1f\n", plan.TargetRiskRewardRatio)
	if plan.HasSessionPreference() {
		labels := make([]string, len(plan.PreferredSessions))
		for i, s := range plan.PreferredSessions {
			labels[i] = string(s)
		}
		output.Printf("  Preferred sessions: %s\n", strings.Join(labels, ", "))
	} else {
		output.Printf("  Preferred sessions: any\n")
	}
	output.Printf("  Stop discipline:    %s\n", plan.StopLossDiscipline)
	output.Printf("  Updated:            %s\n", plan.UpdatedAt.Format("2006-01-02 15:04"))
}
