package cmd

import (
	"os"
	"path/filepath"

	"github.com/shmakota/cata-git-mod-manager/internal/config"
	"github.com/shmakota/cata-git-mod-manager/internal/logging"
	"github.com/shmakota/cata-git-mod-manager/internal/profile"
	"github.com/shmakota/cata-git-mod-manager/internal/version"
	"github.com/spf13/cobra"
)

var initUpdateURL string

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Set up a new installation root",
	Long: `Create the cfg/ directory with a default configuration, a default mod
profile, and a version record. Existing files are left alone, so init is
safe to re-run.`,
	Args: usageArgs(cobra.NoArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := os.MkdirAll(rootDir, 0o755); err != nil {
			return err
		}

		cfgPath := filepath.Join(rootDir, filepath.FromSlash(config.File))
		if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
			cfg := config.Default()
			cfg.UpdateURL = initUpdateURL
			if err := cfg.Save(rootDir); err != nil {
				return err
			}
			logging.Infof("Wrote %s\n", config.File)
		} else {
			logging.Infof("%s already exists, keeping it.\n", config.File)
		}

		storePath := filepath.Join(rootDir, filepath.FromSlash(profile.File))
		if _, err := os.Stat(storePath); os.IsNotExist(err) {
			store, err := profile.Load(rootDir)
			if err != nil {
				return err
			}
			if err := store.Save(rootDir); err != nil {
				return err
			}
			logging.Infof("Wrote %s with profile %q\n", profile.File, store.Current)
		} else {
			logging.Infof("%s already exists, keeping it.\n", profile.File)
		}

		recPath := filepath.Join(rootDir, version.RecordFile)
		if _, err := os.Stat(recPath); os.IsNotExist(err) {
			rec, err := version.LoadRecord(rootDir)
			if err != nil {
				return err
			}
			if err := rec.Save(rootDir); err != nil {
				return err
			}
			logging.Infof("Wrote %s (version %s)\n", version.RecordFile, rec.ProgramVersion)
		}

		successln("Installation root ready at %s", rootDir)
		return nil
	},
}

func init() {
	initCmd.Flags().StringVar(&initUpdateURL, "update-url", "", "Release endpoint for self-updates (e.g. https://api.github.com/repos/owner/repo/releases/latest)")
	rootCmd.AddCommand(initCmd)
}
