package main

// rcs-go reads RCS ",v" history files without the RCS tools.
//
// It lists revision history the way rlog does, prints any revision the way
// "co -p" does, annotates each line of a revision with the revision that
// introduced it, and verifies whole trees of ,v files by reconstructing and
// re-diffing every revision.
//
// Settings come from flags, RCSGO_* environment variables, or "rcs.yml":
//
//	# print reports as text or yaml
//	format: text
//
//	# keyword substitution for co: kv, kvl, k, v, o or b
//	expand: kv
//
//	# files verified in parallel
//	jobs: 4
//
//	# like svndumpfilter, paths under these prefixes are skipped by verify
//	exclude:
//	- Attic
//	- vendor/old

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
)

// logger is replaced once the configuration has been read.
var logger = zap.NewNop().Sugar()

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, fmt.Errorf("error: %w", err))
		os.Exit(1)
	}
}

// newLogger builds the process logger: human readable when verbose, JSON
// otherwise, and warnings only when quiet.
func newLogger(cfg *Config) (*zap.SugaredLogger, error) {
	var zcfg zap.Config
	if cfg.Verbose {
		zcfg = zap.NewDevelopmentConfig()
	} else {
		zcfg = zap.NewProductionConfig()
		zcfg.Sampling = nil
		if cfg.Quiet {
			zcfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
		}
	}
	built, err := zcfg.Build()
	if err != nil {
		return nil, err
	}
	return built.Sugar(), nil
}

// Log writes a debug message, visible with --verbose.
func Log(format string, args ...any) {
	logger.Debug(flatten(fmt.Sprintf(format, args...)))
}

// Info writes a message unless --quiet was given.
func Info(format string, args ...any) {
	logger.Info(flatten(fmt.Sprintf(format, args...)))
}

func flatten(s string) string {
	s = strings.ReplaceAll(s, "\r", "<cr>")
	return strings.ReplaceAll(s, "\n", "<lf>")
}
