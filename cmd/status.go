package cmd

import (
	"context"

	"github.com/shmakota/cata-git-mod-manager/internal/config"
	"github.com/shmakota/cata-git-mod-manager/internal/logging"
	"github.com/shmakota/cata-git-mod-manager/internal/profile"
	"github.com/shmakota/cata-git-mod-manager/internal/selfupdate"
	"github.com/shmakota/cata-git-mod-manager/internal/version"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show versions, the current profile, and update availability",
	Args:  usageArgs(cobra.NoArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		rec, err := version.LoadRecord(rootDir)
		if err != nil {
			return err
		}
		logging.Infof("Tool version: %s\n", rec.ProgramVersion)
		if rec.GameVersion != "" {
			logging.Infof("Game version: %s\n", rec.GameVersion)
		}

		store, err := profile.Load(rootDir)
		if err != nil {
			return err
		}
		p := store.CurrentProfile()
		logging.Infof("Current profile: %s (%d mods, installing to %s)\n",
			store.Current, len(p.Mods), p.InstallDir(rootDir))

		cfg, err := config.Load(rootDir)
		if err != nil {
			return err
		}
		avail, err := selfupdate.Check(context.Background(), cfg.UpdateURL, rec.ProgramVersion)
		if err != nil {
			logging.Warnf("update check failed: %v\n", err)
			return nil
		}
		switch {
		case !avail.Configured:
			logging.Infoln("Self-update: no update URL configured.")
		case avail.Available:
			successln("Self-update: %s is available (current %s).", avail.LatestVersion, avail.CurrentVersion)
		default:
			logging.Infof("Self-update: up to date (%s).\n", avail.CurrentVersion)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
