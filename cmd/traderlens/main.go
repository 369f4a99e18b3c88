package main

import (
	"fmt"
	"os"
	"path/filepath"

	"traderlens/internal/cli"
	"traderlens/internal/config"
	"traderlens/internal/logging"
	"traderlens/internal/store"
)

func main() {
	configDir := configDirFromArgs(os.Args[1:])

	cfg, err := config.Load(configDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logCfg := logging.DefaultLogConfig()
	logCfg.Level = cfg.Logging.Level
	logCfg.File = cfg.Logging.File
	if configDir != "" {
		logCfg.FilePath = filepath.Join(configDir, "logs", "traderlens.log")
	}
	logger := logging.NewLoggerWithConfig(logCfg)

	dbPath := config.DefaultDBPath()
	if configDir != "" {
		dbPath = filepath.Join(configDir, "traderlens.db")
	}
	dataStore, err := store.NewSQLiteStore(dbPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to open database")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer dataStore.Close()

	rootCmd := cli.NewRootCmd(cfg, logger, dataStore)
	if err := rootCmd.Execute(); err != nil {
		logger.Error().Err(err).Msg("Command failed")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// configDirFromArgs extracts the --config flag before cobra parses anything,
// so config loading can honor it.
func configDirFromArgs(args []string) string {
	for i, arg := range args {
		if arg == "--config" && i+1 < len(args) {
			return args[i+1]
		}
		if len(arg) > len("--config=") && arg[:len("--config=")] == "--config=" {
			return arg[len("--config="):]
		}
	}
	return ""
}
