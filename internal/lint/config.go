package lint

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/BurntSushi/toml"

	"nulint/internal/diag"
)

// ConfigFileName is searched for in the working directory and its
// ancestors when no explicit config path is given.
const ConfigFileName = ".nu-lint.toml"

// Config is the on-disk linter configuration.
type Config struct {
	General GeneralConfig     `toml:"general"`
	Rules   map[string]string `toml:"rules"`
}

// GeneralConfig holds file-wide settings.
type GeneralConfig struct {
	// MaxSeverity is the floor: violations below it are dropped.
	MaxSeverity string `toml:"max_severity"`
}

// DefaultConfig is the configuration used when no file is found.
func DefaultConfig() *Config {
	return &Config{}
}

// LoadConfig reads and validates a TOML config file.
func LoadConfig(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	if cfg.General.MaxSeverity != "" {
		if _, err := diag.ParseLevel(cfg.General.MaxSeverity); err != nil {
			return nil, fmt.Errorf("load config %s: invalid max_severity %q", path, cfg.General.MaxSeverity)
		}
	}
	for id, lvl := range cfg.Rules {
		if _, err := diag.ParseLevel(lvl); err != nil {
			return nil, fmt.Errorf("load config %s: invalid level %q for rule %s", path, lvl, id)
		}
	}
	return &cfg, nil
}

// DiscoverConfig walks from startDir upward and returns the nearest
// config file path.
func DiscoverConfig(startDir string) (string, bool) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false
	}
	for {
		candidate := filepath.Join(dir, ConfigFileName)
		if st, err := os.Stat(candidate); err == nil && !st.IsDir() {
			return candidate, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// Floor returns the configured severity floor; everything passes when the
// config does not set one.
func (c *Config) Floor() diag.LintLevel {
	if c == nil || c.General.MaxSeverity == "" {
		return diag.LevelHint
	}
	lvl, err := diag.ParseLevel(c.General.MaxSeverity)
	if err != nil {
		return diag.LevelHint
	}
	return lvl
}

// LevelFor resolves the effective level of a rule: the per-rule override
// when present, the rule's default otherwise.
func (c *Config) LevelFor(id string, def diag.LintLevel) diag.LintLevel {
	if c == nil {
		return def
	}
	if raw, ok := c.Rules[id]; ok {
		if lvl, err := diag.ParseLevel(raw); err == nil {
			return lvl
		}
	}
	return def
}

// UnknownRules lists configured rule ids the registry does not know, in
// stable order. Callers warn about them; version skew must not be fatal.
func (c *Config) UnknownRules(known func(string) bool) []string {
	if c == nil {
		return nil
	}
	var out []string
	for id := range c.Rules {
		if !known(id) {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}
