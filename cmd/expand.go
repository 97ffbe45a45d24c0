package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/pegmacro/driver"
	"github.com/gnolang/pegmacro/formatter"
	"github.com/gnolang/pegmacro/peg"
)

var headerStyle = color.New(color.FgCyan, color.Bold)

var (
	expandExpr  string
	expandTree  bool
	expandWatch bool
)

var expandCmd = &cobra.Command{
	Use:   "expand [paths...]",
	Short: "Parse files, expand their macros and print the result",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		if len(args) == 0 && expandExpr == "" {
			return errors.New("please provide file or directory paths or --expr")
		}

		engine, err := loadEngine()
		if err != nil {
			return err
		}
		defer func() { closeEngine(engine, err) }()

		processing := driver.Processing{
			Logger:     logger,
			Extensions: engine.Config().Extensions,
			Progress:   cmd.ErrOrStderr(),
		}
		out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()

		if expandExpr != "" {
			result, err := engine.RunSource("<expr>", expandExpr)
			if err != nil {
				fmt.Fprint(errOut, formatter.FormatError(err))
				return errors.New("expansion failed")
			}
			if err := printResult(out, result, false); err != nil {
				return err
			}
		}
		if len(args) == 0 {
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		err = runWithTimeout(ctx, func() error {
			return runExpand(ctx, out, errOut, processing, engine, args)
		})
		if !expandWatch || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		if err != nil {
			fmt.Fprintln(errOut, err)
		}
		return watch(out, errOut, processing, engine, args)
	},
}

func init() {
	expandCmd.Flags().StringVarP(&expandExpr, "expr", "e", "", "Expand this text as well as the files")
	expandCmd.Flags().BoolVar(&expandTree, "tree", false, "Print the expanded match trees instead of their text")
	expandCmd.Flags().BoolVarP(&expandWatch, "watch", "w", false, "Expand files again when they change")
}

func runExpand(
	ctx context.Context,
	out, errOut io.Writer,
	processing driver.Processing,
	engine driver.Runner,
	paths []string,
) error {
	report, err := processing.ProcessFiles(ctx, engine, paths, driver.ProcessFile)
	if report != nil {
		for _, result := range report.Results {
			if err := printResult(out, result, len(report.Results) > 1); err != nil {
				return err
			}
		}
		for _, failure := range report.Failures {
			fmt.Fprint(errOut, formatter.FormatError(failure.Err))
		}
	}
	if err != nil {
		return err
	}
	if n := len(report.Failures); n > 0 {
		return fmt.Errorf("%d of %d files failed to expand", n, n+len(report.Results))
	}
	return nil
}

func printResult(out io.Writer, result *driver.Result, header bool) error {
	if header {
		headerStyle.Fprintf(out, "// %s\n", result.Name)
	}
	if expandTree {
		return peg.PrintTree(out, result.Expanded)
	}
	_, err := fmt.Fprintln(out, result.Output())
	return err
}

// watch blocks until interrupted.
func watch(out, errOut io.Writer, processing driver.Processing, engine driver.Runner, paths []string) error {
	w, err := driver.NewWatcher(processing, engine, driver.ProcessFile,
		func(path string, result *driver.Result, err error) {
			if err != nil {
				fmt.Fprint(errOut, formatter.FormatError(err))
				return
			}
			if err := printResult(out, result, true); err != nil {
				logger.Error("Error printing result", zap.String("file", path), zap.Error(err))
			}
		})
	if err != nil {
		return err
	}
	defer w.Close()
	if err := w.Add(paths...); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	logger.Info("watching for changes", zap.Strings("paths", paths))
	if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
