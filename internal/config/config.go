// Package config loads, defaults, and validates the stepls project
// configuration.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/oakwood-commons/stepls/internal/pattern"
	"github.com/oakwood-commons/stepls/internal/scanner"
	"github.com/oakwood-commons/stepls/pkg/settings"
)

// DefaultFeatureGlob is the scenario glob used when syncFeatures is true.
const DefaultFeatureGlob = "**/*.feature"

// ErrInvalidConfig classifies every configuration validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the complete set of options recognized in a .stepls.yaml file.
type Config struct {
	Steps                   Globs               `yaml:"steps" json:"steps"`
	SyncFeatures            SyncFeatures        `yaml:"syncFeatures" json:"syncFeatures"`
	StrictGherkinCompletion bool                `yaml:"strictGherkinCompletion" json:"strictGherkinCompletion"`
	StrictGherkinValidation bool                `yaml:"strictGherkinValidation" json:"strictGherkinValidation"`
	SmartSnippets           bool                `yaml:"smartSnippets" json:"smartSnippets"`
	StepsInvariants         bool                `yaml:"stepsInvariants" json:"stepsInvariants"`
	CustomParameters        []pattern.Parameter `yaml:"customParameters" json:"customParameters"`
	StepRegExSymbol         string              `yaml:"stepRegExSymbol" json:"stepRegExSymbol"`
	GherkinDefinitionPart   string              `yaml:"gherkinDefinitionPart" json:"gherkinDefinitionPart"`

	// Path is the file the configuration was read from, empty for defaults.
	Path string `yaml:"-" json:"-"`

	root   *yaml.Node
	source string
}

// Globs is a list of path globs. In YAML it may be written as a single
// string or a sequence of strings.
type Globs []string

// UnmarshalYAML implements yaml.Unmarshaler.
func (g *Globs) UnmarshalYAML(n *yaml.Node) error {
	switch n.Kind {
	case yaml.ScalarNode:
		if n.Tag == "!!null" {
			*g = nil
			return nil
		}
		*g = Globs{n.Value}
		return nil
	case yaml.SequenceNode:
		var out []string
		if err := n.Decode(&out); err != nil {
			return err
		}
		*g = out
		return nil
	}
	return fmt.Errorf("line %d: steps must be a glob or a list of globs", n.Line)
}

// UnmarshalJSON implements json.Unmarshaler with the same shapes as YAML.
func (g *Globs) UnmarshalJSON(data []byte) error {
	var one string
	if err := json.Unmarshal(data, &one); err == nil {
		*g = Globs{one}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("steps must be a glob or a list of globs: %w", err)
	}
	*g = many
	return nil
}

// SyncFeatures selects the scenario documents used to seed usage counts.
// It is written as a boolean or as a glob.
type SyncFeatures struct {
	Enabled bool
	Glob    string
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (s *SyncFeatures) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: syncFeatures must be a boolean or a glob", n.Line)
	}
	switch n.Tag {
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return err
		}
		*s = SyncFeatures{Enabled: b}
	case "!!null":
		*s = SyncFeatures{}
	default:
		*s = SyncFeatures{Enabled: n.Value != "", Glob: n.Value}
	}
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (s SyncFeatures) MarshalYAML() (any, error) {
	if s.Glob != "" {
		return s.Glob, nil
	}
	return s.Enabled, nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *SyncFeatures) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*s = SyncFeatures{Enabled: b}
		return nil
	}
	var glob string
	if err := json.Unmarshal(data, &glob); err != nil {
		return fmt.Errorf("syncFeatures must be a boolean or a glob: %w", err)
	}
	*s = SyncFeatures{Enabled: glob != "", Glob: glob}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (s SyncFeatures) MarshalJSON() ([]byte, error) {
	v, _ := s.MarshalYAML()
	return json.Marshal(v)
}

// Default returns the embedded default configuration.
func Default() *Config {
	cfg, err := embeddedDefaults()
	if err != nil {
		return &Config{StepsInvariants: true}
	}
	cfg.Steps = append(Globs(nil), cfg.Steps...)
	cfg.CustomParameters = append([]pattern.Parameter(nil), cfg.CustomParameters...)
	cfg.root = nil
	return &cfg
}

// decode parses data into cfg, leaving fields the document omits untouched.
func decode(data []byte, cfg *Config) error {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return err
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return nil
	}
	if err := doc.Decode(cfg); err != nil {
		return err
	}
	cfg.root = &doc
	return nil
}

// Parse decodes a YAML configuration over the defaults and validates it.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := decode(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ParseJSON decodes JSON settings, as sent by an editor client, over the
// defaults and validates them.
func ParseJSON(data []byte) (*Config, error) {
	cfg := Default()
	if len(bytes.TrimSpace(data)) > 0 && !bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load reads and parses the configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	cfg.Path = path
	return cfg, nil
}

// LoadFor loads the configuration for a workspace root, using explicit when
// set and discovery otherwise. With nothing to load it returns the defaults.
func LoadFor(root, explicit string) (*Config, error) {
	path := Discover(root, explicit)
	if path == "" {
		return Default(), nil
	}
	return Load(path)
}

// Discover returns the explicit path if set, otherwise the first existing
// file among <root>/.stepls.yaml, $XDG_CONFIG_HOME/stepls/config.yaml and
// ~/.config/stepls/config.yaml. It returns "" when none exists.
func Discover(root, explicit string) string {
	if explicit != "" {
		return explicit
	}
	candidates := []string{filepath.Join(root, settings.ConfigFileName)}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		candidates = append(candidates, filepath.Join(xdg, "stepls", "config.yaml"))
	} else if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".config", "stepls", "config.yaml"))
	}
	for _, c := range candidates {
		if st, err := os.Stat(c); err == nil && !st.IsDir() {
			return c
		}
	}
	return ""
}

// Validate reports every problem in the configuration at once. The returned
// error wraps ErrInvalidConfig.
func (c *Config) Validate() error {
	var errs error
	for i, g := range c.Steps {
		if strings.TrimSpace(g) == "" {
			errs = multierr.Append(errs, fmt.Errorf("steps[%d]: empty glob", i))
			continue
		}
		if !doublestar.ValidatePattern(filepath.ToSlash(g)) {
			errs = multierr.Append(errs, fmt.Errorf("steps[%d]: malformed glob %q", i, g))
		}
	}
	if c.SyncFeatures.Glob != "" && !doublestar.ValidatePattern(filepath.ToSlash(c.SyncFeatures.Glob)) {
		errs = multierr.Append(errs, fmt.Errorf("syncFeatures: malformed glob %q", c.SyncFeatures.Glob))
	}
	for i, p := range c.CustomParameters {
		if p.Parameter == "" {
			errs = multierr.Append(errs, fmt.Errorf("customParameters[%d]: parameter is empty", i))
		}
	}
	if strings.ContainsAny(c.StepRegExSymbol, "\r\n") {
		errs = multierr.Append(errs, fmt.Errorf("stepRegExSymbol: must not contain line breaks"))
	}
	if c.GherkinDefinitionPart != "" {
		if _, err := regexp.Compile(c.GherkinDefinitionPart); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("gherkinDefinitionPart: %w", err))
		}
	}
	if errs != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errs)
	}
	return nil
}

// FeatureGlob returns the scenario glob for usage synchronization, or ""
// when synchronization is off.
func (c *Config) FeatureGlob() string {
	if !c.SyncFeatures.Enabled {
		return ""
	}
	if c.SyncFeatures.Glob != "" {
		return c.SyncFeatures.Glob
	}
	return DefaultFeatureGlob
}

// ScannerOptions returns the declaration scanner settings.
func (c *Config) ScannerOptions() scanner.Options {
	return scanner.Options{
		KeywordPattern: c.GherkinDefinitionPart,
		Delimiter:      c.StepRegExSymbol,
	}
}

// CompilerOptions returns the pattern compiler settings.
func (c *Config) CompilerOptions() pattern.Options {
	return pattern.Options{
		Parameters:    c.CustomParameters,
		Invariants:    c.StepsInvariants,
		SmartSnippets: c.SmartSnippets,
	}
}
