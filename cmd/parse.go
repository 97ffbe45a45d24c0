package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/pegmacro/driver"
	"github.com/gnolang/pegmacro/formatter"
	"github.com/gnolang/pegmacro/peg"
	"github.com/gnolang/pegmacro/source"
)

var (
	parseRule string
	parseExpr string
)

var parseCmd = &cobra.Command{
	Use:   "parse [paths...]",
	Short: "Parse files and print their match trees without expanding macros",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		if len(args) == 0 && parseExpr == "" {
			return errors.New("please provide file paths or --expr")
		}

		engine, err := loadEngine()
		if err != nil {
			return err
		}
		defer func() { closeEngine(engine, err) }()

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return runWithTimeout(ctx, func() error {
			return runParse(cmd.OutOrStdout(), cmd.ErrOrStderr(), engine, args)
		})
	},
}

func init() {
	parseCmd.Flags().StringVar(&parseRule, "rule", "", "Rule to parse with (default: the configured root rule)")
	parseCmd.Flags().StringVarP(&parseExpr, "expr", "e", "", "Parse this text instead of files")
}

func runParse(out, errOut io.Writer, engine *driver.Engine, paths []string) error {
	var sources []source.Source
	if parseExpr != "" {
		sources = append(sources, source.Named("<expr>", parseExpr))
	}
	for _, path := range paths {
		src, err := source.ReadFile(path)
		if err != nil {
			return err
		}
		sources = append(sources, src)
	}

	failed := 0
	for _, src := range sources {
		m, err := engine.Parse(parseRule, src)
		if err != nil {
			logger.Debug("parse failed", zap.String("source", src.Name()), zap.Error(err))
			fmt.Fprint(errOut, formatter.FormatError(err))
			failed++
			continue
		}
		if len(sources) > 1 {
			headerStyle.Fprintf(out, "// %s\n", src.Name())
		}
		if err := peg.PrintTree(out, m); err != nil {
			return err
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d sources failed to parse", failed, len(sources))
	}
	return nil
}
