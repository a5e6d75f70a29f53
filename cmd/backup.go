package cmd

import (
	"path/filepath"
	"strings"

	"github.com/shmakota/cata-git-mod-manager/internal/backup"
	"github.com/shmakota/cata-git-mod-manager/internal/config"
	"github.com/shmakota/cata-git-mod-manager/internal/logging"
	"github.com/spf13/cobra"
)

var (
	backupDescription string
	backupRestoreTo   string
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Back up and restore game saves",
}

var backupCreateCmd = &cobra.Command{
	Use:   "create <save-dir> [label]",
	Short: "Zip a save directory into the backup directory",
	Args:  usageArgs(cobra.RangeArgs(1, 2)),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(rootDir)
		if err != nil {
			return err
		}
		backupDir := config.ResolveDir(rootDir, cfg.BackupDir)

		label := ""
		if len(args) == 2 {
			label = args[1]
		}
		name, err := backup.Create(args[0], backupDir, label, backupDescription)
		if err != nil {
			return err
		}
		successln("Backup %s created in %s", name, backupDir)
		return nil
	},
}

var backupListCmd = &cobra.Command{
	Use:   "list",
	Short: "List backups",
	Args:  usageArgs(cobra.NoArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(rootDir)
		if err != nil {
			return err
		}
		entries, err := backup.List(config.ResolveDir(rootDir, cfg.BackupDir))
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			logging.Infoln("No backups found.")
			return nil
		}
		for _, e := range entries {
			logging.Infof("%s", e.Name)
			if e.Meta != nil {
				if e.Meta.Description != "" {
					logging.Infof(" — %s", e.Meta.Description)
				}
				if e.Meta.ModCount > 0 {
					logging.Infof(" (%d mods: %s)", e.Meta.ModCount, strings.Join(e.Meta.Mods, ", "))
				}
			}
			logging.Infoln()
		}
		return nil
	},
}

var backupRestoreCmd = &cobra.Command{
	Use:   "restore <name>",
	Short: "Extract a backup next to the originals",
	Args:  usageArgs(cobra.ExactArgs(1)),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(rootDir)
		if err != nil {
			return err
		}
		target := backupRestoreTo
		if target == "" {
			target = filepath.Join(config.ResolveDir(rootDir, cfg.BackupDir), "restored")
		}
		dest, err := backup.Restore(config.ResolveDir(rootDir, cfg.BackupDir), args[0], target)
		if err != nil {
			return err
		}
		successln("Backup restored to %s", dest)
		return nil
	},
}

var backupDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a backup",
	Args:  usageArgs(cobra.ExactArgs(1)),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(rootDir)
		if err != nil {
			return err
		}
		if err := backup.Delete(config.ResolveDir(rootDir, cfg.BackupDir), args[0]); err != nil {
			return err
		}
		logging.Infof("Backup %q deleted.\n", args[0])
		return nil
	},
}

func init() {
	backupCreateCmd.Flags().StringVar(&backupDescription, "description", "", "Free-form note stored with the backup")
	backupRestoreCmd.Flags().StringVar(&backupRestoreTo, "to", "", "Directory to restore into (default: <backup-dir>/restored)")

	backupCmd.AddCommand(backupCreateCmd, backupListCmd, backupRestoreCmd, backupDeleteCmd)
	rootCmd.AddCommand(backupCmd)
}
