package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/pegmacro/driver"
)

const defaultTimeout = 5 * time.Minute

var (
	cfgFile string
	timeout time.Duration
	verbose bool

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:              "pegmacro [paths...]",
	Short:            "pegmacro - parse with extensible PEG grammars and expand macros",
	TraverseChildren: true, // Prioritize subcommands
	SilenceUsage:     true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if verbose {
			logger, err = zap.NewDevelopment()
		} else {
			logger, err = zap.NewProduction()
		}
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		// no subcommand
		if len(args) == 0 {
			return cmd.Help()
		}
		// pegmacro [path1 path2 ...] => behaves like the expand subcommand
		return expandCmd.RunE(expandCmd, args)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", driver.DefaultConfigFile, "Configuration file")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", defaultTimeout, "Timeout for the whole command")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log engine and expansion details")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(expandCmd)
	rootCmd.AddCommand(quoteCmd)
	rootCmd.AddCommand(grammarCmd)
	rootCmd.AddCommand(replCmd)
}

// loadEngine builds the engine of the configuration file. A missing
// default configuration file selects the default configuration.
func loadEngine() (*driver.Engine, error) {
	engine, err := driver.New(cfgFile, logger)
	if err == nil {
		return engine, nil
	}
	if !errors.Is(err, fs.ErrNotExist) || cfgFile != driver.DefaultConfigFile {
		return nil, fmt.Errorf("initializing engine: %w", err)
	}
	if _, statErr := os.Stat(cfgFile); statErr == nil {
		// the configuration exists; something it names is missing
		return nil, fmt.Errorf("initializing engine: %w", err)
	}
	logger.Debug("no configuration file, using defaults", zap.String("config", cfgFile))
	return driver.NewFromConfig(driver.DefaultConfig(), ".", logger)
}

// runWithTimeout runs f and gives up waiting once ctx is done. Matching
// cannot be interrupted, so f may still be running when this returns.
func runWithTimeout(ctx context.Context, f func() error) error {
	done := make(chan error, 1)
	go func() { done <- f() }()

	select {
	case <-ctx.Done():
		return fmt.Errorf("timed out after %s: %w", timeout, ctx.Err())
	case err := <-done:
		return err
	}
}

// closeEngine leaves the macro scope of engine. After a timeout the run may
// still be matching with the grammar, so the engine is left as it is.
func closeEngine(engine *driver.Engine, err error) {
	if errors.Is(err, context.DeadlineExceeded) {
		if logger != nil {
			logger.Warn("timed out run still holds the engine; macros left enabled")
		}
		return
	}
	if err := engine.Close(); err != nil && logger != nil {
		logger.Error("Error closing engine", zap.Error(err))
	}
}
