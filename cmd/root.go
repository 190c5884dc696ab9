// Package cmd provides the CLI commands for bookrfm.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/chrisdamba/bookrfm/internal/logging"
	"github.com/chrisdamba/bookrfm/internal/models"
)

var (
	cfgFile string
	verbose bool
	cfg     *models.Config
)

var rootCmd = &cobra.Command{
	Use:   "bookrfm",
	Short: "Segments bookstore customers by recency, frequency and monetary value",
	Long: `bookrfm reads the books, customers, orders and marketing_spend tables of a bookstore
from Postgres, MySQL/MariaDB or a directory of CSV files, scores every purchasing
customer on recency, frequency and monetary value, and writes the segmented result to
the console, JSON/CSV/Parquet files, Kafka or Postgres.

Examples:
  bookrfm seed --create-schema
  bookrfm rfm --output json
  bookrfm report bestsellers --top-n 5`,
	SilenceUsage:      true,
	PersistentPreRunE: initConfig,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is examples/config.json)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().String("source", models.SourceCSV, "input store (postgres, mysql, csv)")
	rootCmd.PersistentFlags().String("dsn", "", "connection string for postgres or mysql sources")
	rootCmd.PersistentFlags().String("csv-dir", "data", "directory holding the csv tables")
	rootCmd.PersistentFlags().String("output", models.OutputConsole, "output destination (console, json, csv, parquet, kafka, postgres)")
	rootCmd.PersistentFlags().String("output-path", "output", "base path for file outputs")

	bindFlags(rootCmd, map[string]string{
		"source.kind":        "source",
		"source.dsn":         "dsn",
		"source.csv_dir":     "csv-dir",
		"output.destination": "output",
		"output.path":        "output-path",
	}, true)

	rootCmd.AddCommand(rfmCmd, reportCmd, seedCmd, versionCmd)
}

// bindFlags maps config keys to the named flags of cmd.
func bindFlags(cmd *cobra.Command, keys map[string]string, persistent bool) {
	flags := cmd.Flags()
	if persistent {
		flags = cmd.PersistentFlags()
	}
	for key, name := range keys {
		if err := viper.BindPFlag(key, flags.Lookup(name)); err != nil {
			panic(fmt.Sprintf("bind flag %s: %v", name, err))
		}
	}
}

func initConfig(cmd *cobra.Command, args []string) error {
	if cmd == versionCmd {
		return nil
	}
	var err error
	cfg, err = models.LoadConfig(cfgFile)
	if err != nil {
		return err
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}
	if err := logging.Initialize(cfg.Logging); err != nil {
		return fmt.Errorf("error initializing logging: %w", err)
	}
	logging.Debug("configuration loaded")
	return nil
}

// Execute runs the CLI until it finishes or the process is interrupted.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}
