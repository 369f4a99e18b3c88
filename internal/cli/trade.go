package cli

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/spf13/cobra"

	apperrors "traderlens/internal/errors"
	"traderlens/internal/logging"
	"traderlens/internal/models"
	"traderlens/internal/store"
	"traderlens/pkg/utils"
)

const timeLayout = "2006-01-02 15:04"

// addTradeCommands adds the trade log commands.
func addTradeCommands(rootCmd *cobra.Command, app *App) {
	tradeCmd := &cobra.Command{
		Use:   "trade",
		Short: "Manage the trade log",
	}
	tradeCmd.AddCommand(newTradeAddCmd(app))
	tradeCmd.AddCommand(newTradeListCmd(app))
	tradeCmd.AddCommand(newTradeImportCmd(app))
	rootCmd.AddCommand(tradeCmd)
}

func newTradeAddCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Log a closed trade",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := commandContext()
			defer cancel()

			trade, err := tradeFromFlags(cmd)
			if err != nil {
				return err
			}
			if err := app.Store.SaveTrade(ctx, trade); err != nil {
				return err
			}
			app.Logger.Info().Str("id", trade.ID).Str("session", string(trade.Session)).Msg("Trade logged")

			if output.IsJSON() {
				return output.JSON(trade)
			}
			output.Success("Trade logged (%s, %s)", trade.ID, utils.FormatPercent(trade.ProfitLoss))
			return nil
		},
	}

	cmd.Flags().String("entry", "", "entry time (YYYY-MM-DD HH:MM)")
	cmd.Flags().String("exit", "", "exit time (YYYY-MM-DD HH:MM)")
	cmd.Flags().Float64("pl", 0, "profit or loss, percent of account")
	cmd.Flags().String("risk", "", "risk percent used (omit if unknown)")
	cmd.Flags().String("rr", "", "risk/reward achieved (omit if unknown)")
	cmd.Flags().String("target", "", "percent of target achieved (omit if unknown)")
	cmd.Flags().String("session", "", "session: LONDON, NY or ASIA")
	cmd.Flags().Bool("stop-hit", false, "the stop loss was hit")
	cmd.Flags().Bool("exited-early", false, "the trade was closed before stop or target")
	cmd.Flags().String("notes", "", "free-form notes")
	cmd.MarkFlagRequired("entry")
	cmd.MarkFlagRequired("exit")
	cmd.MarkFlagRequired("pl")
	cmd.MarkFlagRequired("session")
	return cmd
}

// tradeFromFlags builds and validates a trade from the add command's flags.
func tradeFromFlags(cmd *cobra.Command) (*models.Trade, error) {
	entryStr, _ := cmd.Flags().GetString("entry")
	exitStr, _ := cmd.Flags().GetString("exit")
	pl, _ := cmd.Flags().GetFloat64("pl")
	sessionStr, _ := cmd.Flags().GetString("session")
	stopHit, _ := cmd.Flags().GetBool("stop-hit")
	exitedEarly, _ := cmd.Flags().GetBool("exited-early")
	notes, _ := cmd.Flags().GetString("notes")

	entry, err := time.ParseInLocation(timeLayout, entryStr, time.Local)
	if err != nil {
		return nil, apperrors.NewValidationError("entry", entryStr, "expected YYYY-MM-DD HH:MM")
	}
	exit, err := time.ParseInLocation(timeLayout, exitStr, time.Local)
	if err != nil {
		return nil, apperrors.NewValidationError("exit", exitStr, "expected YYYY-MM-DD HH:MM")
	}
	if exit.Before(entry) {
		return nil, apperrors.NewValidationError("exit", exitStr, "exit precedes entry")
	}
	session := models.Session(strings.ToUpper(sessionStr))
	if !models.ValidSession(session) {
		return nil, apperrors.NewValidationError("session", sessionStr, "expected LONDON, NY or ASIA")
	}

	trade := &models.Trade{
		EntryTime:   entry,
		ExitTime:    exit,
		ProfitLoss:  pl,
		Session:     session,
		StopLossHit: stopHit,
		ExitedEarly: exitedEarly,
		Notes:       notes,
	}
	if trade.RiskPercentUsed, err = optionalFloatFlag(cmd, "risk", 0, 100); err != nil {
		return nil, err
	}
	if trade.RiskRewardAchieved, err = optionalFloatFlag(cmd, "rr", -100, 100); err != nil {
		return nil, err
	}
	if trade.TargetPercentAchieved, err = optionalFloatFlag(cmd, "target", 0, 1000); err != nil {
		return nil, err
	}
	return trade, nil
}

// optionalFloatFlag parses a string flag into a nullable float. An unset or
// empty flag stays nil, which excludes the field from every aggregate.
func optionalFloatFlag(cmd *cobra.Command, name string, min, max float64) (*float64, error) {
	raw, _ := cmd.Flags().GetString(name)
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, apperrors.NewValidationError(name, raw, "not a number")
	}
	if v < min || v > max {
		return nil, apperrors.NewValidationError(name, raw, "out of range")
	}
	return models.Float64Ptr(v), nil
}

func newTradeListCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent trades",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := commandContext()
			defer cancel()

			limit, _ := cmd.Flags().GetInt("limit")
			filter := store.TradeFilter{Limit: limit}
			if sessionStr, _ := cmd.Flags().GetString("session"); sessionStr != "" {
				session := models.Session(strings.ToUpper(sessionStr))
				if !models.ValidSession(session) {
					return apperrors.NewValidationError("session", sessionStr, "expected LONDON, NY or ASIA")
				}
				filter.Session = session
			}

			trades, err := app.Store.GetTrades(ctx, filter)
			if err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(trades)
			}
			if len(trades) == 0 {
				output.Dim("No trades logged yet")
				return nil
			}

			for i := range trades {
				t := &trades[i]
				line := output.Warning
				if t.IsWin() {
					line = output.Success
				}
				line("%s  %-6s %8s  held %s",
					t.EntryTime.Format(timeLayout), t.Session,
					utils.FormatPercent(t.ProfitLoss), utils.FormatGap(t.ExitTime.Sub(t.EntryTime)))
				if t.Notes != "" {
					output.Dim("  %s", utils.Truncate(t.Notes, 70))
				}
			}
			return nil
		},
	}
	cmd.Flags().Int("limit", 20, "maximum trades to list")
	cmd.Flags().String("session", "", "filter by session")
	return cmd
}

// tradeCSVRow is the import file schema. Nullable numeric columns come in as
// strings so a blank cell maps to nil rather than zero.
type tradeCSVRow struct {
	EntryTime             string `csv:"entry_time"`
	ExitTime              string `csv:"exit_time"`
	ProfitLoss            string `csv:"profit_loss"`
	RiskPercentUsed       string `csv:"risk_percent_used"`
	RiskRewardAchieved    string `csv:"risk_reward_achieved"`
	TargetPercentAchieved string `csv:"target_percent_achieved"`
	Session               string `csv:"session"`
	StopLossHit           string `csv:"stop_loss_hit"`
	ExitedEarly           string `csv:"exited_early"`
	Notes                 string `csv:"notes"`
}

func newTradeImportCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Import trades from a CSV export",
		Long:  "Import trades in bulk. Rows that fail validation are skipped and reported; valid rows still import.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := commandContext()
			defer cancel()

			path := args[0]
			f, err := os.Open(path)
			if err != nil {
				return apperrors.Wrapf(err, "opening %s", path)
			}
			defer f.Close()

			var rows []tradeCSVRow
			if err := gocsv.UnmarshalFile(f, &rows); err != nil {
				return apperrors.NewImportError(path, 0, err)
			}

			imported, rejected := 0, 0
			for i := range rows {
				rowNum := i + 2 // header is row 1
				trade, err := tradeFromCSVRow(&rows[i])
				if err != nil {
					rejected++
					impErr := apperrors.NewImportError(path, rowNum, err)
					app.Logger.Warn().Err(impErr).Msg("Skipping row")
					output.Warning("  row %d skipped: %v", rowNum, err)
					continue
				}
				if err := app.Store.SaveTrade(ctx, trade); err != nil {
					return apperrors.NewImportError(path, rowNum, err)
				}
				imported++
			}
			logging.LogImport(app.Logger, path, imported, rejected)

			if output.IsJSON() {
				return output.JSON(map[string]int{"imported": imported, "rejected": rejected})
			}
			output.Success("Imported %d trades (%d rejected)", imported, rejected)
			return nil
		},
	}
}

func tradeFromCSVRow(row *tradeCSVRow) (*models.Trade, error) {
	entry, err := time.ParseInLocation(timeLayout, strings.TrimSpace(row.EntryTime), time.Local)
	if err != nil {
		return nil, apperrors.NewValidationError("entry_time", row.EntryTime, "expected YYYY-MM-DD HH:MM")
	}
	exit, err := time.ParseInLocation(timeLayout, strings.TrimSpace(row.ExitTime), time.Local)
	if err != nil {
		return nil, apperrors.NewValidationError("exit_time", row.ExitTime, "expected YYYY-MM-DD HH:MM")
	}
	if exit.Before(entry) {
		return nil, apperrors.NewValidationError("exit_time", row.ExitTime, "exit precedes entry")
	}
	pl, err := strconv.ParseFloat(strings.TrimSpace(row.ProfitLoss), 64)
	if err != nil {
		return nil, apperrors.NewValidationError("profit_loss", row.ProfitLoss, "not a number")
	}
	session := models.Session(strings.ToUpper(strings.TrimSpace(row.Session)))
	if !models.ValidSession(session) {
		return nil, apperrors.NewValidationError("session", row.Session, "expected LONDON, NY or ASIA")
	}

	trade := &models.Trade{
		EntryTime:   entry,
		ExitTime:    exit,
		ProfitLoss:  pl,
		Session:     session,
		StopLossHit: csvBool(row.StopLossHit),
		ExitedEarly: csvBool(row.ExitedEarly),
		Notes:       strings.TrimSpace(row.Notes),
	}
	if trade.RiskPercentUsed, err = csvFloat("risk_percent_used", row.RiskPercentUsed); err != nil {
		return nil, err
	}
	if trade.RiskRewardAchieved, err = csvFloat("risk_reward_achieved", row.RiskRewardAchieved); err != nil {
		return nil, err
	}
	if trade.TargetPercentAchieved, err = csvFloat("target_percent_achieved", row.TargetPercentAchieved); err != nil {
		return nil, err
	}
	return trade, nil
}

func csvFloat(field, raw string) (*float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, apperrors.NewValidationError(field, raw, "not a number")
	}
	return models.Float64Ptr(v), nil
}

func csvBool(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "1", "yes", "y":
		return true
	}
	return false
}
