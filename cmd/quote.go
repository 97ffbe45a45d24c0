package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gnolang/pegmacro/formatter"
	"github.com/gnolang/pegmacro/peg"
)

var quoteTree bool

var quoteCmd = &cobra.Command{
	Use:   "quote RULE TEMPLATE [values...]",
	Short: "Fill the insert markers of a quotation template and parse it",
	Long: `Fills the markers #1, #2, ... of TEMPLATE with the values and parses the
result as RULE. A value written [a,b,c] is a list, for splice markers
#@|left|separator|right|N.

Example) pegmacro quote expression 'f(#@||, ||1) + #2' '[x,y]' 3`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := loadEngine()
		if err != nil {
			return err
		}
		defer engine.Close()

		m, err := engine.Quote(args[0], args[1], quoteValues(args[2:])...)
		if err != nil {
			fmt.Fprint(cmd.ErrOrStderr(), formatter.FormatError(err))
			return fmt.Errorf("quoting %s failed", args[0])
		}
		if quoteTree {
			return peg.PrintTree(cmd.OutOrStdout(), m)
		}
		fmt.Fprintln(cmd.OutOrStdout(), m.String())
		return nil
	},
}

func init() {
	quoteCmd.Flags().BoolVar(&quoteTree, "tree", false, "Print the match tree instead of its text")
}

func quoteValues(args []string) []any {
	values := make([]any, len(args))
	for i, arg := range args {
		if len(arg) < 2 || arg[0] != '[' || arg[len(arg)-1] != ']' {
			values[i] = arg
			continue
		}
		items := []string{}
		if inner := strings.TrimSpace(arg[1 : len(arg)-1]); inner != "" {
			for _, item := range strings.Split(inner, ",") {
				items = append(items, strings.TrimSpace(item))
			}
		}
		values[i] = items
	}
	return values
}
