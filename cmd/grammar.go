package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gnolang/pegmacro/peg"
)

var grammarCmd = &cobra.Command{
	Use:   "grammar [rules...]",
	Short: "Print the configured grammar, with its macros enabled",
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := loadEngine()
		if err != nil {
			return err
		}
		defer engine.Close()

		g := engine.Grammar()
		if len(args) == 0 {
			return peg.PrintGrammar(cmd.OutOrStdout(), g)
		}
		for _, name := range args {
			rule, err := g.Rule(name)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), peg.RuleString(rule))
		}
		return nil
	},
}
