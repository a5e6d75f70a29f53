package cmd

import (
	"fmt"
	"strconv"

	"github.com/shmakota/cata-git-mod-manager/internal/logging"
	"github.com/shmakota/cata-git-mod-manager/internal/profile"
	"github.com/spf13/cobra"
)

var (
	modSubdir        string
	modInstallDir    string
	modKeepStructure bool
)

var modCmd = &cobra.Command{
	Use:   "mod",
	Short: "Manage mods in the current profile",
}

var modAddCmd = &cobra.Command{
	Use:   "add <url>",
	Short: "Add a mod source to the current profile",
	Long: `Add a mod source URL to the current profile. A bare GitHub repository
URL is expanded to its master branch archive. Use --subdir when the mod
lives in a subdirectory of the repository.`,
	Args: usageArgs(cobra.ExactArgs(1)),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := profile.Load(rootDir)
		if err != nil {
			return err
		}

		url := profile.NormalizeSourceURL(args[0])
		p := store.CurrentProfile()
		p.Mods = append(p.Mods, profile.Mod{
			URL:           url,
			Subdir:        modSubdir,
			InstallDir:    modInstallDir,
			KeepStructure: modKeepStructure,
		})
		if err := store.Save(rootDir); err != nil {
			return err
		}
		logging.Infof("Added %s to profile %q\n", url, store.Current)
		return nil
	},
}

var modEditCmd = &cobra.Command{
	Use:   "edit <index> <url>",
	Short: "Replace a mod entry by its list index",
	Args:  usageArgs(cobra.ExactArgs(2)),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := profile.Load(rootDir)
		if err != nil {
			return err
		}
		p := store.CurrentProfile()

		i, err := modIndex(args[0], len(p.Mods))
		if err != nil {
			return err
		}

		m := &p.Mods[i]
		m.URL = profile.NormalizeSourceURL(args[1])
		if cmd.Flags().Changed("subdir") {
			m.Subdir = modSubdir
		}
		if cmd.Flags().Changed("install-dir") {
			m.InstallDir = modInstallDir
		}
		if cmd.Flags().Changed("keep-structure") {
			m.KeepStructure = modKeepStructure
		}
		if err := store.Save(rootDir); err != nil {
			return err
		}
		logging.Infof("Updated mod %d in profile %q\n", i+1, store.Current)
		return nil
	},
}

var modRemoveCmd = &cobra.Command{
	Use:   "remove <index>",
	Short: "Remove a mod entry by its list index",
	Args:  usageArgs(cobra.ExactArgs(1)),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := profile.Load(rootDir)
		if err != nil {
			return err
		}
		p := store.CurrentProfile()

		i, err := modIndex(args[0], len(p.Mods))
		if err != nil {
			return err
		}

		removed := p.Mods[i]
		p.Mods = append(p.Mods[:i], p.Mods[i+1:]...)
		if err := store.Save(rootDir); err != nil {
			return err
		}
		logging.Infof("Removed %s from profile %q\n", removed.URL, store.Current)
		return nil
	},
}

var modListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the current profile's mods",
	Args:  usageArgs(cobra.NoArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := profile.Load(rootDir)
		if err != nil {
			return err
		}
		p := store.CurrentProfile()

		if len(p.Mods) == 0 {
			logging.Infof("Profile %q has no mods.\n", store.Current)
			return nil
		}
		logging.Infof("Mods in profile %q:\n", store.Current)
		for i, m := range p.Mods {
			logging.Infof("  %d. %s", i+1, m.URL)
			if m.Subdir != "" {
				logging.Infof(" (subdir: %s)", m.Subdir)
			}
			if m.InstallDir != "" {
				logging.Infof(" (install dir: %s)", m.InstallDir)
			}
			if m.KeepStructure {
				logging.Infof(" (keeps archive layout)")
			}
			logging.Infoln()
		}
		return nil
	},
}

// modIndex parses a 1-based list index as shown by "mod list".
func modIndex(arg string, count int) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil {
		return 0, wrapUsageError(fmt.Errorf("invalid mod index %q", arg))
	}
	if n < 1 || n > count {
		return 0, fmt.Errorf("mod index %d out of range (profile has %d mods)", n, count)
	}
	return n - 1, nil
}

func init() {
	for _, c := range []*cobra.Command{modAddCmd, modEditCmd} {
		c.Flags().StringVar(&modSubdir, "subdir", "", "Subdirectory inside the archive to install from")
		c.Flags().StringVar(&modInstallDir, "install-dir", "", "Install into this directory instead of the profile's mod directory")
		c.Flags().BoolVar(&modKeepStructure, "keep-structure", false, "Extract the archive layout as-is, skipping mod folder detection")
	}

	modCmd.AddCommand(modAddCmd, modEditCmd, modRemoveCmd, modListCmd)
	rootCmd.AddCommand(modCmd)
}
