// Package config loads the optional HCL configuration file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/umizher/domino-home-visitors/internal/match"
	"github.com/umizher/domino-home-visitors/internal/store"
)

// DefaultFilename is looked up in the working directory when no path is given.
const DefaultFilename = "domino.hcl"

// Config is the complete application configuration.
type Config struct {
	Match   MatchSettings
	Storage StorageSettings
	UI      UISettings

	// HasMatchDefaults is true when the file carried a match block.
	HasMatchDefaults bool
}

// MatchSettings are the defaults applied to a fresh match.
type MatchSettings struct {
	Home     []string `hcl:"home,optional"`
	Visitors []string `hcl:"visitors,optional"`
	Mode     string   `hcl:"mode,optional"`
	Target   int      `hcl:"target,optional"`
	Minutes  int      `hcl:"minutes,optional"`
}

// StorageSettings control where match state is checkpointed.
type StorageSettings struct {
	StateFile string `hcl:"state_file,optional"`
	Ephemeral bool   `hcl:"ephemeral,optional"`
}

// UISettings contains interactive mode settings
type UISettings struct {
	LogLevel string `hcl:"log_level,optional"`
	LogFile  string `hcl:"log_file,optional"`
	TickMS   int    `hcl:"tick_ms,optional"`
	Bell     *bool  `hcl:"bell,optional"`
}

type fileConfig struct {
	Match   *MatchSettings   `hcl:"match,block"`
	Storage *StorageSettings `hcl:"storage,block"`
	UI      *UISettings      `hcl:"ui,block"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	bell := true
	return &Config{
		Match: MatchSettings{
			Mode:    string(match.ModeTarget),
			Target:  match.DefaultTarget,
			Minutes: match.DefaultMinutes,
		},
		Storage: StorageSettings{
			StateFile: store.DefaultPath(),
		},
		UI: UISettings{
			LogLevel: "info",
			LogFile:  "domino.log",
			TickMS:   int(match.DefaultTickInterval / time.Millisecond),
			Bell:     &bell,
		},
	}
}

// Load reads configuration from an HCL file. A missing file yields the
// defaults; omitted blocks and attributes keep their default values.
func Load(filename string) (*Config, error) {
	cfg := DefaultConfig()
	if filename == "" {
		return cfg, nil
	}
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return cfg, nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var fc fileConfig
	diags = gohcl.DecodeBody(file.Body, nil, &fc)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	if m := fc.Match; m != nil {
		cfg.HasMatchDefaults = true
		cfg.Match.Home = m.Home
		cfg.Match.Visitors = m.Visitors
		if m.Mode != "" {
			cfg.Match.Mode = m.Mode
		}
		if m.Target != 0 {
			cfg.Match.Target = m.Target
		}
		if m.Minutes != 0 {
			cfg.Match.Minutes = m.Minutes
		}
	}

	if s := fc.Storage; s != nil {
		if s.StateFile != "" {
			cfg.Storage.StateFile = s.StateFile
		}
		cfg.Storage.Ephemeral = s.Ephemeral
	}

	if u := fc.UI; u != nil {
		if u.LogLevel != "" {
			cfg.UI.LogLevel = u.LogLevel
		}
		if u.LogFile != "" {
			cfg.UI.LogFile = u.LogFile
		}
		if u.TickMS != 0 {
			cfg.UI.TickMS = u.TickMS
		}
		if u.Bell != nil {
			cfg.UI.Bell = u.Bell
		}
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if len(c.Match.Home) > 2 {
		return fmt.Errorf("home takes at most two player names")
	}
	if len(c.Match.Visitors) > 2 {
		return fmt.Errorf("visitors takes at most two player names")
	}
	if _, ok := match.ParseWinMode(c.Match.Mode); !ok {
		return fmt.Errorf("invalid mode: %s", c.Match.Mode)
	}
	if c.Match.Target < 1 {
		return fmt.Errorf("target must be positive")
	}
	if c.Match.Minutes < 1 || c.Match.Minutes > match.MaxMinutes {
		return fmt.Errorf("minutes must be between 1 and %d", match.MaxMinutes)
	}

	if !c.Storage.Ephemeral && c.Storage.StateFile == "" {
		return fmt.Errorf("state file is required unless storage is ephemeral")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.UI.LogLevel] {
		return fmt.Errorf("invalid log level: %s", c.UI.LogLevel)
	}

	if c.UI.TickMS < 50 || c.UI.TickMS > 5000 {
		return fmt.Errorf("tick_ms must be between 50 and 5000")
	}

	return nil
}

// TickInterval returns the countdown check interval.
func (c *Config) TickInterval() time.Duration {
	return time.Duration(c.UI.TickMS) * time.Millisecond
}

// BellEnabled reports whether finishing a match rings the terminal bell.
func (c *Config) BellEnabled() bool {
	return c.UI.Bell == nil || *c.UI.Bell
}

// MatchDefaults converts the match block into engine settings.
func (c *Config) MatchDefaults() match.Settings {
	var s match.Settings
	copy(s.Home[:], c.Match.Home)
	copy(s.Visitors[:], c.Match.Visitors)
	s.Mode = c.Match.Mode
	s.Target = strconv.Itoa(c.Match.Target)
	s.Minutes = strconv.Itoa(c.Match.Minutes)
	return s
}
