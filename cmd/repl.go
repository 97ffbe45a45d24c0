package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/gnolang/pegmacro/driver"
	"github.com/gnolang/pegmacro/formatter"
	"github.com/gnolang/pegmacro/internal/trie"
	"github.com/gnolang/pegmacro/peg"
	"github.com/gnolang/pegmacro/source"
)

const (
	historyFile = ".pegmacro_history"
	promptMain  = "pegmacro> "
	promptCont  = "........> "
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Parse and expand input line by line",
	Long: `Reads text, expands it with the configured grammar and macros, and prints
the result. Input that stops short of a complete parse continues on the
next line; an empty line submits it anyway. Tab completes commands and
rule names.

Commands:
  :rule NAME   parse with another rule (no NAME: back to the root rule)
  :tree        toggle printing match trees
  :raw         toggle printing the parse without expansion
  :grammar     print the grammar
  :quit        leave`,
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := loadEngine()
		if err != nil {
			return err
		}
		defer engine.Close()
		return runRepl(newSession(engine, cmd.OutOrStdout(), cmd.ErrOrStderr()))
	},
}

func runRepl(s *session) error {
	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)
	ln.SetCompleter(s.complete)

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	for {
		code, ok := s.read(ln.Prompt)
		if !ok {
			fmt.Fprintln(s.out)
			return nil
		}
		if strings.TrimSpace(code) == "" {
			continue
		}
		ln.AppendHistory(strings.ReplaceAll(code, "\n", " "))
		if s.handle(code) {
			return nil
		}
	}
}

// session is the state of a repl independent of the terminal.
type session struct {
	engine *driver.Engine
	rule   string
	tree   bool
	raw    bool
	out    io.Writer
	errOut io.Writer
}

func newSession(engine *driver.Engine, out, errOut io.Writer) *session {
	return &session{engine: engine, rule: engine.Config().Root, out: out, errOut: errOut}
}

// read prompts until the input parses, fails before its end, or an empty
// line is entered. It reports false at end of input or on ctrl-c.
func (s *session) read(prompt func(string) (string, error)) (string, bool) {
	var b strings.Builder
	for {
		p := promptMain
		if b.Len() > 0 {
			p = promptCont
		}
		line, err := prompt(p)
		if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
			return "", false
		}
		if err != nil {
			return "", true
		}

		if b.Len() > 0 {
			if strings.TrimSpace(line) == "" {
				return b.String(), true
			}
			b.WriteByte('\n')
		}
		b.WriteString(line)

		code := b.String()
		if strings.HasPrefix(strings.TrimSpace(code), ":") || !s.incomplete(code) {
			return code, true
		}
	}
}

// incomplete reports whether code fails to parse only at its very end.
func (s *session) incomplete(code string) bool {
	if strings.TrimSpace(code) == "" {
		return false
	}
	_, err := s.engine.Parse(s.rule, source.New(code))
	var perr *peg.ParseError
	return errors.As(err, &perr) && perr.Errors.Position() >= len(code)
}

var commands = []string{":quit", ":q", ":tree", ":raw", ":grammar", ":rule"}

// complete completes the last word of line with a command or a rule name.
// Rules are read on every call since macros may add some.
func (s *session) complete(line string) []string {
	index := trie.New(commands...)
	for _, r := range s.engine.Grammar().Rules() {
		index.Insert(r.Name)
	}

	start := strings.LastIndexAny(line, " \t\n(") + 1
	head, word := line[:start], line[start:]
	if word == "" {
		return nil
	}
	words := index.Complete(word)
	for i, w := range words {
		words[i] = head + w
	}
	return words
}

// handle runs a command or expands code. It reports whether to quit.
func (s *session) handle(code string) bool {
	trimmed := strings.TrimSpace(code)
	if strings.HasPrefix(trimmed, ":") {
		return s.command(strings.Fields(trimmed))
	}

	src := source.Named("<repl>", code)
	m, err := s.engine.Parse(s.rule, src)
	if err == nil && !s.raw {
		m, err = s.engine.Pipeline().Run(m)
	}
	if err != nil {
		fmt.Fprint(s.errOut, formatter.FormatError(err))
		return false
	}
	if s.tree {
		_ = peg.PrintTree(s.out, m)
	} else {
		fmt.Fprintln(s.out, m.String())
	}
	return false
}

func (s *session) command(fields []string) bool {
	switch fields[0] {
	case ":quit", ":q":
		return true
	case ":tree":
		s.tree = !s.tree
		fmt.Fprintf(s.out, "tree output: %t\n", s.tree)
	case ":raw":
		s.raw = !s.raw
		fmt.Fprintf(s.out, "raw output: %t\n", s.raw)
	case ":grammar":
		_ = peg.PrintGrammar(s.out, s.engine.Grammar())
	case ":rule":
		rule := s.engine.Config().Root
		if len(fields) > 1 {
			rule = fields[1]
		}
		if _, err := s.engine.Grammar().Rule(rule); err != nil {
			fmt.Fprint(s.errOut, formatter.FormatError(err))
			return false
		}
		s.rule = rule
		fmt.Fprintf(s.out, "parsing with %s\n", rule)
	default:
		fmt.Fprintf(s.errOut, "unknown command %s. Type :quit to exit.\n", fields[0])
	}
	return false
}
