package cmd

import (
	"context"
	"fmt"

	"github.com/shmakota/cata-git-mod-manager/internal/installer"
	"github.com/shmakota/cata-git-mod-manager/internal/logging"
	"github.com/shmakota/cata-git-mod-manager/internal/profile"
	"github.com/spf13/cobra"
)

var updateAll bool

var updateCmd = &cobra.Command{
	Use:   "update [profile...]",
	Short: "Download and install the mods of one or more profiles",
	Long: `Re-download every mod in the current profile (or the named profiles) and
install them into the profile's mod directory. Installs are idempotent:
existing mod folders are overwritten in place.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := profile.Load(rootDir)
		if err != nil {
			return err
		}

		names := args
		switch {
		case updateAll:
			if len(args) > 0 {
				return wrapUsageError(fmt.Errorf("--all cannot be combined with profile names"))
			}
			names = store.Names()
		case len(names) == 0:
			names = []string{store.Current}
		}

		ctx := context.Background()
		failures := 0
		for _, name := range names {
			p, ok := store.Profiles[name]
			if !ok {
				return fmt.Errorf("%w: %s", profile.ErrNotFound, name)
			}
			if len(p.Mods) == 0 {
				logging.Infof("Profile %q has no mods, skipping.\n", name)
				continue
			}

			logging.Infof("Updating profile %q (%d mods)\n", name, len(p.Mods))
			results := installer.InstallAll(ctx, p.Mods, rootDir, p.InstallDir(rootDir),
				func(i, total int, m profile.Mod) {
					logging.Infof("[%d/%d] %s\n", i+1, total, m.URL)
				},
				downloadBar("downloading"),
			)

			for _, r := range installer.Failed(results) {
				failln("  failed: %s: %v", r.Mod.URL, r.Err)
			}
			failures += len(installer.Failed(results))
		}

		if failures > 0 {
			return fmt.Errorf("%d mod(s) failed to install", failures)
		}
		successln("All mods installed.")
		return nil
	},
}

func init() {
	updateCmd.Flags().BoolVar(&updateAll, "all", false, "Update every profile instead of just the current one")
	rootCmd.AddCommand(updateCmd)
}
