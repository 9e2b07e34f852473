// Package cli implements the prodexport command line.
package cli

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"prodexport/internal/config"
	"prodexport/internal/logging"
)

var version = "dev"

var (
	configPath string
	envFile    string
)

// errReported marks an error that has already been logged.
var errReported = errors.New("reported")

var rootCmd = &cobra.Command{
	Use:   "prodexport",
	Short: "Export the product catalog to a delimited file",
	Long: `prodexport streams product records from the product pool, resolves
supplier, category and family names, writes a delimited export file and
stages it (plain and gzipped) into the object store.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", os.Getenv("PRODEXPORT_CONFIG"), "path to the YAML configuration file")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before the configuration")
}

// Execute runs the root command and returns the process exit status.
func Execute(ctx context.Context) int {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errReported) {
			rootCmd.PrintErrln("Error:", err)
		}
		return 1
	}
	return 0
}

// loadConfig loads the configuration and installs the configured logger.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Debug("configuration loaded", "path", configPath, "source", cfg.Source.Type)
	return cfg, nil
}
