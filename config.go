package main

import (
	"errors"
	"fmt"
	"strings"

	rcs "github.com/kfsone/rcs-go/lib"
	"github.com/spf13/viper"
)

// Configuration keys, shared by rcs.yml, RCSGO_* environment variables and
// command-line flags.
const (
	keyVerbose   = "verbose"
	keyQuiet     = "quiet"
	keyFormat    = "format"
	keyExpand    = "expand"
	keyColor     = "color"
	keyJobs      = "jobs"
	keyCacheSize = "cache-size"
	keyExclude   = "exclude"
)

const (
	FormatText = "text"
	FormatYAML = "yaml"
)

// Config captures the merged settings for a run.
type Config struct {
	Filename  string   `yaml:"-"`
	Verbose   bool     `yaml:"verbose"`
	Quiet     bool     `yaml:"quiet"`
	Format    string   `yaml:"format"`
	Expand    string   `yaml:"expand,omitempty"`
	Color     bool     `yaml:"color"`
	Jobs      int      `yaml:"jobs"`
	CacheSize int      `yaml:"cache-size"`
	Exclude   []string `yaml:"exclude,omitempty"`
}

// newViper returns a viper instance looking for rcs.yml in the working
// directory and RCSGO_* in the environment.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigName("rcs")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.SetEnvPrefix("rcsgo")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault(keyVerbose, false)
	v.SetDefault(keyQuiet, false)
	v.SetDefault(keyFormat, FormatText)
	v.SetDefault(keyExpand, "")
	v.SetDefault(keyColor, true)
	v.SetDefault(keyJobs, 4)
	v.SetDefault(keyCacheSize, 64)
	v.SetDefault(keyExclude, []string{})
	return v
}

// LoadConfig reads filename, or rcs.yml if filename is empty, and returns
// the settings merged with the environment and any bound flags. A missing
// rcs.yml is fine; a missing named file is not.
func LoadConfig(v *viper.Viper, filename string) (*Config, error) {
	if filename != "" {
		v.SetConfigFile(filename)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if filename != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: %w", err)
		}
	}

	cfg := &Config{
		Filename:  v.ConfigFileUsed(),
		Verbose:   v.GetBool(keyVerbose),
		Quiet:     v.GetBool(keyQuiet),
		Format:    v.GetString(keyFormat),
		Expand:    v.GetString(keyExpand),
		Color:     v.GetBool(keyColor),
		Jobs:      v.GetInt(keyJobs),
		CacheSize: v.GetInt(keyCacheSize),
		Exclude:   v.GetStringSlice(keyExclude),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects contradictory or out-of-range settings.
func (c *Config) Validate() error {
	if c.Verbose && c.Quiet {
		return errors.New("--quiet and --verbose are mutually exclusive")
	}
	switch c.Format {
	case FormatText, FormatYAML:
	default:
		return fmt.Errorf("unknown format %q: want %s or %s", c.Format, FormatText, FormatYAML)
	}
	if c.Expand != "" {
		if _, err := rcs.ParseExpandMode(c.Expand); err != nil {
			return err
		}
	}
	if c.Jobs < 1 {
		return fmt.Errorf("jobs must be at least 1, not %d", c.Jobs)
	}
	if c.CacheSize < 1 {
		return fmt.Errorf("cache-size must be at least 1, not %d", c.CacheSize)
	}
	return nil
}

// ExpandMode returns the keyword mode to force on checkouts, or "" to use
// each file's own default.
func (c *Config) ExpandMode() rcs.ExpandMode {
	if c.Expand == "" {
		return ""
	}
	mode, _ := rcs.ParseExpandMode(c.Expand)
	return mode
}
