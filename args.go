package main

import (
	"fmt"

	"github.com/fatih/color"
	rcs "github.com/kfsone/rcs-go/lib"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Session carries what every subcommand needs once configuration is read.
type Session struct {
	cfg   *Config
	cache *rcs.Cache
}

func NewSession(cfg *Config) (*Session, error) {
	cache, err := rcs.NewCache(cfg.CacheSize, rcs.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	return &Session{cfg: cfg, cache: cache}, nil
}

// newRootCommand assembles the command tree. The session it hands to
// subcommands is filled in before any of them runs.
func newRootCommand() *cobra.Command {
	v := newViper()
	session := &Session{}
	var configFile string
	var noColor bool

	root := &cobra.Command{
		Use:           "rcs-go",
		Short:         "Read RCS ,v files: log, checkout, annotate and verify",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig(v, configFile)
			if err != nil {
				return err
			}
			if noColor {
				cfg.Color = false
			}
			if !cfg.Color {
				color.NoColor = true
			}

			sugar, err := newLogger(cfg)
			if err != nil {
				return err
			}
			logger = sugar
			if cfg.Filename != "" {
				Log("using config %s", cfg.Filename)
			}

			s, err := NewSession(cfg)
			if err != nil {
				return err
			}
			*session = *s
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "path to config file (default ./rcs.yml)")
	flags.Bool(keyVerbose, false, "log debugging detail")
	flags.Bool(keyQuiet, false, "only log warnings and errors")
	flags.String(keyFormat, FormatText, "report format: text or yaml")
	flags.BoolVar(&noColor, "no-color", false, "disable colored output")
	bindFlags(v, flags, keyVerbose, keyQuiet, keyFormat)

	root.AddCommand(
		newLogCommand(session),
		newCheckoutCommand(session, v),
		newAnnotateCommand(session),
		newVerifyCommand(session, v),
		newConfigCommand(session),
	)
	return root
}

// bindFlags lets flags given on the command line override the config
// file and environment for the named keys.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet, keys ...string) {
	for _, key := range keys {
		// BindPFlag only fails on a nil flag.
		if err := v.BindPFlag(key, flags.Lookup(key)); err != nil {
			panic(fmt.Sprintf("binding flag %s: %v", key, err))
		}
	}
}
