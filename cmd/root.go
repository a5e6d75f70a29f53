package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/shmakota/cata-git-mod-manager/internal/logging"
	"github.com/shmakota/cata-git-mod-manager/internal/preset"
	"github.com/spf13/cobra"
)

var (
	rootDir      string
	presetName   string
	verbose      bool
	logFile      string
	experimental bool
)

var rootCmd = &cobra.Command{
	Use:           "cata-mod-manager",
	Short:         "Mod, tileset and game manager for Cataclysm",
	Long:          "Install and update Cataclysm mods from git repositories, manage mod profiles, download game builds, back up saves, and keep the tool itself up to date.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Apply preset defaults for flags not explicitly set by the user.
		if presetName != "" {
			p, err := preset.Load(presetName)
			if err != nil {
				return err
			}
			if p.RootDir != nil && !cmd.Flags().Changed("root") {
				rootDir = *p.RootDir
			}
			if p.Verbose != nil && !cmd.Flags().Changed("verbose") {
				verbose = *p.Verbose
			}
			if p.LogFile != nil && !cmd.Flags().Changed("log-file") {
				logFile = *p.LogFile
			}
			if p.Experimental != nil && !cmd.Flags().Changed("experimental") {
				experimental = *p.Experimental
			}
		}

		logging.SetVerbose(verbose)
		path := logFile
		if path == "" {
			path = filepath.Join(rootDir, logging.DefaultLogFile)
		}
		if err := logging.SetOutputFile(path); err != nil {
			return fmt.Errorf("opening log file %q: %w", path, err)
		}
		return nil
	},
}

func Execute() {
	err := rootCmd.Execute()
	closeErr := logging.Close()
	if closeErr != nil {
		fmt.Fprintf(os.Stderr, "Error closing log file: %v\n", closeErr)
		if err == nil {
			os.Exit(1)
		}
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if isUsageError(err) {
			if cmd, _, findErr := rootCmd.Find(os.Args[1:]); findErr == nil && cmd != nil {
				_ = cmd.Usage()
			} else {
				_ = rootCmd.Usage()
			}
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return wrapUsageError(err)
	})

	rootCmd.PersistentFlags().StringVarP(&rootDir, "root", "d", ".", "Installation root directory")
	rootCmd.PersistentFlags().StringVar(&presetName, "preset", "", "Load a saved option preset by name")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Debug log location (default: mod_debug.log in the root directory)")
	rootCmd.PersistentFlags().BoolVar(&experimental, "experimental", false, "Include experimental (prerelease) builds")
}

type usageError struct {
	err error
}

func (e *usageError) Error() string {
	return e.err.Error()
}

func (e *usageError) Unwrap() error {
	return e.err
}

func wrapUsageError(err error) error {
	if err == nil {
		return nil
	}
	return &usageError{err: err}
}

func usageArgs(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if validate == nil {
			return nil
		}
		if err := validate(cmd, args); err != nil {
			return wrapUsageError(err)
		}
		return nil
	}
}

func isUsageError(err error) bool {
	var ue *usageError
	if errors.As(err, &ue) {
		return true
	}

	msg := err.Error()
	return strings.HasPrefix(msg, "unknown command ")
}
