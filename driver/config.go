package driver

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/gnolang/pegmacro/internal/minilang"
	"github.com/gnolang/pegmacro/peg"
	"github.com/gnolang/pegmacro/quote"
)

// DefaultConfigFile is the configuration read when no path is given.
const DefaultConfigFile = ".pegmacro.yaml"

// Config is a project configuration. Paths are relative to the directory of
// the configuration file.
type Config struct {
	Name string `yaml:"name"`
	// Grammar is a grammar file; empty selects the built-in demonstration
	// language.
	Grammar    string   `yaml:"grammar,omitempty"`
	Root       string   `yaml:"root"`
	Memo       string   `yaml:"memo"`
	MemoLimit  int      `yaml:"memoLimit"`
	Extensions []string `yaml:"extensions"`
	Macros     []string `yaml:"macros,omitempty"`
	// Quotation installs the quotation syntax into a grammar file's rules.
	Quotation *QuotationConfig `yaml:"quotation,omitempty"`
}

// QuotationConfig names the grammar rules the quotation syntax is built
// on. Empty fields take the names of the demonstration language.
type QuotationConfig struct {
	Expression string `yaml:"expression,omitempty"`
	Identifier string `yaml:"identifier,omitempty"`
	Spacing    string `yaml:"spacing,omitempty"`
	LBracket   string `yaml:"lbracket,omitempty"`
	RBracket   string `yaml:"rbracket,omitempty"`
}

func (q QuotationConfig) syntax() quote.Syntax {
	s := quote.DefaultSyntax()
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&s.Expression, q.Expression)
	set(&s.Identifier, q.Identifier)
	set(&s.Spacing, q.Spacing)
	set(&s.LBracket, q.LBracket)
	set(&s.RBracket, q.RBracket)
	return s
}

func DefaultConfig() Config {
	return Config{
		Name:       "pegmacro",
		Root:       minilang.Root,
		Memo:       peg.MemoLimited.String(),
		Extensions: []string{".mini"},
	}
}

// LoadConfig reads a configuration file. Fields it leaves out keep their
// defaults.
func LoadConfig(path string) (Config, error) {
	config := DefaultConfig()

	f, err := os.Open(path)
	if err != nil {
		return config, err
	}
	defer f.Close()

	decoder := yaml.NewDecoder(f)
	decoder.KnownFields(true)
	if err := decoder.Decode(&config); err != nil {
		return config, fmt.Errorf("%s: %w", path, err)
	}
	if err := config.validate(); err != nil {
		return config, fmt.Errorf("%s: %w", path, err)
	}
	return config, nil
}

func (c Config) validate() error {
	if c.Root == "" {
		return errors.New("no root rule")
	}
	if _, ok := peg.ParseMemoStrategy(c.Memo); !ok {
		return fmt.Errorf("unknown memo strategy %q", c.Memo)
	}
	if c.MemoLimit < 0 {
		return fmt.Errorf("negative memo limit %d", c.MemoLimit)
	}
	return nil
}

// WriteConfig writes config as YAML to path, replacing the file.
func WriteConfig(path string, config Config) error {
	d, err := yaml.Marshal(config)
	if err != nil {
		return err
	}
	return os.WriteFile(path, d, 0o644)
}
