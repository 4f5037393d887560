package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"sqdu/internal/inspect"
	_ "sqdu/internal/inspect/dialects"
	"sqdu/internal/logger"
	"sqdu/internal/tui"
	"sqdu/pkg/config"
)

var (
	cfgFile     string
	driverFlag  string
	dsnFlag     string
	timeoutFlag int
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sqdu <database-file>",
		Short: "Browse disk usage of a database, table by table",
		Long: `sqdu inspects a database file and shows a navigable breakdown of
storage consumption: per-table size, row count and index sizes, drillable
into per-index metadata and the full table schema.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			return run(cmd, args[0])
		},
	}

	cmd.Flags().StringVar(&cfgFile, "config", "", "path to config YAML")
	cmd.Flags().StringVar(&driverFlag, "driver", "", fmt.Sprintf("db driver override (available: %v)", inspect.RegisteredDialects()))
	cmd.Flags().StringVar(&dsnFlag, "dsn", "", "dsn override for server databases")
	cmd.Flags().IntVar(&timeoutFlag, "timeout", 0, "db connect timeout seconds")
	return cmd
}

func run(cmd *cobra.Command, path string) error {
	var cfg config.AppConfig
	if cfgFile != "" {
		c, err := config.LoadFile(cfgFile)
		if err != nil {
			return fmt.Errorf("load config %s: %w", cfgFile, err)
		}
		cfg = c
	}

	cfg.Database.Path = path
	if driverFlag != "" {
		cfg.Database.Type = driverFlag
	}
	if dsnFlag != "" {
		cfg.Database.DSN = dsnFlag
	}
	if timeoutFlag > 0 {
		cfg.TimeoutSec = timeoutFlag
	}
	if cfg.TimeoutSec <= 0 {
		cfg.TimeoutSec = config.DefaultTimeoutSec
	}

	driver, dsn, err := config.BuildDriverAndDSN(cfg.Database)
	if err != nil {
		return err
	}

	engine, err := inspect.NewEngine(driver, dsn, time.Duration(cfg.TimeoutSec)*time.Second)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Analyzing database: %s\n", path)
	tables, err := engine.ListTables(context.Background())
	if err != nil {
		return err
	}
	if len(tables) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No tables found in database.")
		return nil
	}

	// Keep log output off the alternate screen while interactive.
	logger.SetOutput(io.Discard)
	defer logger.SetOutput(os.Stderr)

	program := tea.NewProgram(tui.New(engine, path, tables), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("run ui: %w", err)
	}
	return nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
