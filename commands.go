package main

import (
	"fmt"

	rcs "github.com/kfsone/rcs-go/lib"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newLogCommand(s *Session) *cobra.Command {
	return &cobra.Command{
		Use:   "log FILE,v...",
		Short: "List the revision history of each file, youngest first",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, path := range args {
				f, err := s.cache.Load(path)
				if err != nil {
					return err
				}
				report, err := NewLogReport(f)
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				if err := writeReport(cmd.OutOrStdout(), s.cfg.Format, report); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func newCheckoutCommand(s *Session, v *viper.Viper) *cobra.Command {
	var revision string
	cmd := &cobra.Command{
		Use:     "co [-r REV] [-k MODE] FILE,v",
		Aliases: []string{"checkout"},
		Short:   "Print the text of a revision",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := s.cache.Load(args[0])
			if err != nil {
				return err
			}
			rev, text, err := f.Checkout(revision, rcs.CheckoutOptions{Mode: s.cfg.ExpandMode()})
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			Info("%s revision %s", args[0], rev)
			_, err = cmd.OutOrStdout().Write(text)
			return err
		},
	}
	cmd.Flags().StringVarP(&revision, "revision", "r", "", "revision number, branch or tag (default: head)")
	cmd.Flags().StringP(keyExpand, "k", "", "keyword substitution mode: kv, kvl, k, v, o or b")
	bindFlags(v, cmd.Flags(), keyExpand)
	return cmd
}

func newAnnotateCommand(s *Session) *cobra.Command {
	var revision string
	cmd := &cobra.Command{
		Use:     "annotate [-r REV] FILE,v",
		Aliases: []string{"blame"},
		Short:   "Show the revision that introduced each line",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := s.cache.Load(args[0])
			if err != nil {
				return err
			}
			rev, err := f.Resolve(revision)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			annotated, err := f.AnnotateRevision(rev)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			Info("annotated %s revision %s", args[0], rev)
			return writeReport(cmd.OutOrStdout(), s.cfg.Format, NewAnnotateReport(f, rev, annotated))
		},
	}
	cmd.Flags().StringVarP(&revision, "revision", "r", "", "revision number, branch or tag (default: head)")
	return cmd
}

func newVerifyCommand(s *Session, v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify DIR|FILE,v...",
		Short: "Reconstruct and re-diff every revision of every ,v file",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, err := findRCSFiles(args, s.cfg.Exclude)
			if err != nil {
				return err
			}
			Info("verifying %d files with %d jobs", len(paths), s.cfg.Jobs)

			report, err := s.verifyFiles(cmd.Context(), paths)
			if err != nil {
				return err
			}
			if err := writeReport(cmd.OutOrStdout(), s.cfg.Format, report); err != nil {
				return err
			}
			if report.Failed > 0 {
				return fmt.Errorf("%d of %d files failed verification", report.Failed, report.Files)
			}
			return nil
		},
	}
	cmd.Flags().IntP(keyJobs, "j", 4, "files to verify in parallel")
	cmd.Flags().StringSlice(keyExclude, nil, "path prefixes to skip")
	bindFlags(v, cmd.Flags(), keyJobs, keyExclude)
	return cmd
}

func newConfigCommand(s *Session) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as yaml",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeYAML(cmd.OutOrStdout(), s.cfg)
		},
	}
}
