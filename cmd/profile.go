package cmd

import (
	"github.com/shmakota/cata-git-mod-manager/internal/logging"
	"github.com/shmakota/cata-git-mod-manager/internal/profile"
	"github.com/spf13/cobra"
)

var profileImportOverwrite bool

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage mod profiles",
	Long:  "Profiles are named mod lists with their own install directory. Exactly one profile is current at a time; mod and update commands act on it.",
}

var profileCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a profile and switch to it",
	Args:  usageArgs(cobra.ExactArgs(1)),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := profile.Load(rootDir)
		if err != nil {
			return err
		}
		if err := store.Create(args[0]); err != nil {
			return err
		}
		if err := store.Save(rootDir); err != nil {
			return err
		}
		logging.Infof("Created profile %q and switched to it.\n", args[0])
		return nil
	},
}

var profileRenameCmd = &cobra.Command{
	Use:   "rename <old> <new>",
	Short: "Rename a profile",
	Args:  usageArgs(cobra.ExactArgs(2)),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := profile.Load(rootDir)
		if err != nil {
			return err
		}
		if err := store.Rename(args[0], args[1]); err != nil {
			return err
		}
		if err := store.Save(rootDir); err != nil {
			return err
		}
		logging.Infof("Renamed profile %q to %q.\n", args[0], args[1])
		return nil
	},
}

var profileDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a profile",
	Args:  usageArgs(cobra.ExactArgs(1)),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := profile.Load(rootDir)
		if err != nil {
			return err
		}
		if err := store.Delete(args[0]); err != nil {
			return err
		}
		if err := store.Save(rootDir); err != nil {
			return err
		}
		logging.Infof("Deleted profile %q. Current profile is %q.\n", args[0], store.Current)
		return nil
	},
}

var profileSwitchCmd = &cobra.Command{
	Use:   "switch <name>",
	Short: "Make a profile current",
	Args:  usageArgs(cobra.ExactArgs(1)),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := profile.Load(rootDir)
		if err != nil {
			return err
		}
		if err := store.Switch(args[0]); err != nil {
			return err
		}
		if err := store.Save(rootDir); err != nil {
			return err
		}
		logging.Infof("Switched to profile %q.\n", args[0])
		return nil
	},
}

var profileListCmd = &cobra.Command{
	Use:   "list",
	Short: "List profiles",
	Args:  usageArgs(cobra.NoArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := profile.Load(rootDir)
		if err != nil {
			return err
		}
		for _, name := range store.Names() {
			marker := "  "
			if name == store.Current {
				marker = "* "
			}
			logging.Infof("%s%s (%d mods)\n", marker, name, len(store.Profiles[name].Mods))
		}
		return nil
	},
}

var profileExportCmd = &cobra.Command{
	Use:   "export <name> <file>",
	Short: "Export a profile to a shareable JSON file",
	Args:  usageArgs(cobra.ExactArgs(2)),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := profile.Load(rootDir)
		if err != nil {
			return err
		}
		if err := store.Export(args[0], args[1]); err != nil {
			return err
		}
		logging.Infof("Exported profile %q to %s\n", args[0], args[1])
		return nil
	},
}

var profileImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import profiles from an exported JSON file",
	Args:  usageArgs(cobra.ExactArgs(1)),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := profile.Load(rootDir)
		if err != nil {
			return err
		}
		imported, skipped, err := store.Import(args[0], profileImportOverwrite)
		if err != nil {
			return err
		}
		if err := store.Save(rootDir); err != nil {
			return err
		}
		for _, name := range imported {
			logging.Infof("Imported profile %q\n", name)
		}
		for _, name := range skipped {
			logging.Infof("Skipped existing profile %q (use --overwrite to replace)\n", name)
		}
		return nil
	},
}

func init() {
	profileImportCmd.Flags().BoolVar(&profileImportOverwrite, "overwrite", false, "Replace existing profiles with the same name")

	profileCmd.AddCommand(profileCreateCmd, profileRenameCmd, profileDeleteCmd,
		profileSwitchCmd, profileListCmd, profileExportCmd, profileImportCmd)
	rootCmd.AddCommand(profileCmd)
}
