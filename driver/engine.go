// Package driver runs the parse and expansion pipeline over files, as
// configured by a project configuration file.
package driver

import (
	"errors"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/gnolang/pegmacro/internal/minilang"
	"github.com/gnolang/pegmacro/macro"
	"github.com/gnolang/pegmacro/notation"
	"github.com/gnolang/pegmacro/peg"
	"github.com/gnolang/pegmacro/quote"
	"github.com/gnolang/pegmacro/source"
)

// Runner expands files and in-memory sources.
type Runner interface {
	Run(path string) (*Result, error)
	RunSource(name, text string) (*Result, error)
}

// Result is the outcome of expanding one source.
type Result struct {
	Name     string
	Source   source.Source
	Parsed   *peg.Match
	Expanded *peg.Match
}

// Output is the text of the expanded tree.
func (r *Result) Output() string {
	if r.Expanded == nil {
		return ""
	}
	return r.Expanded.String()
}

// Engine holds a grammar with the configured macros enabled. Sources are
// processed one at a time; the grammar must not be used by another parse
// while the engine runs.
type Engine struct {
	config   Config
	grammar  *peg.Grammar
	scope    *macro.Scope
	pipeline *macro.Pipeline
	options  []peg.Option
	logger   *zap.Logger
}

var _ Runner = (*Engine)(nil)

// New loads the configuration at configPath and builds an engine from it.
func New(configPath string, logger *zap.Logger) (*Engine, error) {
	config, err := LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	return NewFromConfig(config, filepath.Dir(configPath), logger)
}

// NewFromConfig builds an engine. Relative paths in config are resolved
// against baseDir.
func NewFromConfig(config Config, baseDir string, logger *zap.Logger) (*Engine, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := config.validate(); err != nil {
		return nil, err
	}
	resolve := func(p string) string {
		if filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(baseDir, p)
	}

	g, err := loadGrammar(config, resolve)
	if err != nil {
		return nil, err
	}
	if _, err := g.Rule(config.Root); err != nil {
		return nil, fmt.Errorf("root rule: %w", err)
	}

	// Definitions are enabled as they are built so that later files can use
	// the called macros of earlier ones.
	scope := macro.NewScope()
	if err := scope.Enter(); err != nil {
		return nil, err
	}
	for _, path := range config.Macros {
		defs, err := macro.LoadDefinitions(resolve(path))
		if err == nil {
			if err = scope.Build(g, defs, quote.TemplateCompiler{}); err != nil {
				err = fmt.Errorf("%s: %w", path, err)
			}
		}
		if err != nil {
			return nil, errors.Join(err, scope.Leave())
		}
	}

	strategy, _ := peg.ParseMemoStrategy(config.Memo)
	e := &Engine{
		config:   config,
		grammar:  g,
		scope:    scope,
		pipeline: macro.NewPipeline(logger),
		options: []peg.Option{
			peg.WithMemo(strategy),
			peg.WithMemoLimit(config.MemoLimit),
			peg.WithLogger(logger),
		},
		logger: logger,
	}
	logger.Debug("engine ready",
		zap.String("grammar", g.Name()),
		zap.String("root", config.Root),
		zap.Int("macros", len(scope.Macros())),
	)
	return e, nil
}

func loadGrammar(config Config, resolve func(string) string) (*peg.Grammar, error) {
	if config.Grammar == "" {
		return minilang.New()
	}
	g, err := notation.LoadGrammar(resolve(config.Grammar))
	if err != nil {
		return nil, err
	}
	if config.Quotation != nil {
		if _, err := quote.Install(g, config.Quotation.syntax()); err != nil {
			return nil, err
		}
	}
	return g, nil
}

func (e *Engine) Config() Config            { return e.config }
func (e *Engine) Grammar() *peg.Grammar     { return e.grammar }
func (e *Engine) Macros() []*macro.Macro    { return e.scope.Macros() }
func (e *Engine) Pipeline() *macro.Pipeline { return e.pipeline }

// Close disables the configured macros.
func (e *Engine) Close() error {
	return e.scope.Leave()
}

// Parse matches the root rule, or the rule called rule if it is not empty,
// against src without expanding it.
func (e *Engine) Parse(rule string, src source.Source) (*peg.Match, error) {
	if rule == "" {
		rule = e.config.Root
	}
	return peg.Parse(e.grammar, rule, src, e.options...)
}

// Run reads and expands the file at path.
func (e *Engine) Run(path string) (*Result, error) {
	src, err := source.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return e.run(src)
}

// RunSource expands text; name is used in positions and diagnostics.
func (e *Engine) RunSource(name, text string) (*Result, error) {
	return e.run(source.Named(name, text))
}

func (e *Engine) run(src *source.Text) (*Result, error) {
	parsed, err := e.Parse("", src)
	if err != nil {
		return nil, err
	}
	expanded, err := e.pipeline.Run(parsed)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", displayName(src), err)
	}
	e.logger.Debug("expanded", zap.String("source", displayName(src)))
	return &Result{Name: src.Name(), Source: src, Parsed: parsed, Expanded: expanded}, nil
}

// Quote builds a match of rule from a dynamic quotation template.
func (e *Engine) Quote(rule, template string, values ...any) (*peg.Match, error) {
	return quote.Dynamic(e.grammar, rule, template, values...)
}

func displayName(src source.Source) string {
	if src.Name() == "" {
		return "<input>"
	}
	return src.Name()
}
