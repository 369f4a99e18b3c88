// Package cli provides the command-line interface for the analytics
// application.
package cli

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"traderlens/internal/config"
	"traderlens/internal/logging"
	"traderlens/internal/models"
	"traderlens/internal/store"
)

// Version information
const (
	Version = "0.1.0"
)

const commandTimeout = 30 * time.Second

// App holds the application dependencies.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
	Store  store.DataStore
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd(cfg *config.Config, logger zerolog.Logger, dataStore store.DataStore) *cobra.Command {
	app := &App{
		Config: cfg,
		Logger: logger,
		Store:  dataStore,
	}

	rootCmd := &cobra.Command{
		Use:   "traderlens",
		Short: "Traderlens - behavioral analytics for discretionary traders",
		Long: `Traderlens turns your trade log and trading plan into behavioral signals:
psychological state, session bias forecasts, mental battery, plan control,
a six-trait radar, a time-of-day heatmap, and a daily consistency trend.

Use 'traderlens help <command>' for more information about a command.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			debug, _ := cmd.Flags().GetBool("debug")
			if debug {
				logging.SetDebugLevel()
				app.Logger = app.Logger.Level(zerolog.DebugLevel)
			}
			return nil
		},
	}

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/traderlens)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	addAnalysisCommands(rootCmd, app)
	addScoreCommands(rootCmd, app)
	addTradeCommands(rootCmd, app)
	addPlanCommands(rootCmd, app)
	addCoreCommands(rootCmd, app)

	return rootCmd
}

// commandContext returns the bounded context analytics commands run under.
func commandContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), commandTimeout)
}

// loadInputs fetches the trade window and active plan consistently, in one
// place, so every command passes the core a matching snapshot. A missing
// plan is returned as nil: the core's defined fallback handles it.
func (app *App) loadInputs(ctx context.Context, filter store.TradeFilter) ([]models.Trade, *models.TradingPlan, error) {
	if filter.Limit == 0 {
		filter.Limit = app.Config.Analytics.TradeFetchLimit
	}
	trades, err := app.Store.GetTrades(ctx, filter)
	if err != nil {
		return nil, nil, err
	}
	plan, err := app.Store.GetPlan(ctx)
	if err != nil {
		app.Logger.Debug().Err(err).Msg("No active plan; using core fallback")
		plan = nil
	}
	return trades, plan, nil
}

// addCoreCommands adds core utility commands.
func addCoreCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{"version": Version})
			} else {
				output.Printf("traderlens v%s\n", Version)
			}
		},
	})

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
	}
	configCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration directory path",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{"path": config.DefaultConfigDir()})
			} else {
				output.Println(config.DefaultConfigDir())
			}
		},
	})
	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if output.IsJSON() {
				return output.JSON(app.Config)
			}
			output.Bold("Analytics")
			output.Printf("  Trade fetch limit: %d\n", app.Config.Analytics.TradeFetchLimit)
			output.Printf("  History limit:     %d\n", app.Config.Analytics.HistoryLimit)
			output.Printf("  Trend days:        %d\n", app.Config.Analytics.TrendDays)
			output.Printf("  Insight days:      %d\n", app.Config.Analytics.InsightDays)
			output.Bold("Logging")
			output.Printf("  Level: %s\n", app.Config.Logging.Level)
			output.Printf("  File:  %v\n", app.Config.Logging.File)
			return nil
		},
	})
	rootCmd.AddCommand(configCmd)
}
