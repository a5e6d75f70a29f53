package cmd

import (
	"bytes"

	"github.com/BurntSushi/toml"
	"github.com/shmakota/cata-git-mod-manager/internal/logging"
	"github.com/shmakota/cata-git-mod-manager/internal/preset"
	"github.com/spf13/cobra"
)

var presetCmd = &cobra.Command{
	Use:   "preset",
	Short: "Manage saved option presets",
	Long:  "Presets save CLI flags under a name, so users juggling several installation roots can load them with --preset instead of retyping.",
}

// Flags for preset save
var (
	presRootDir      *string
	presVerbose      *bool
	presExperimental *bool
)

var presetSaveCmd = &cobra.Command{
	Use:   "save <name>",
	Short: "Save a new preset",
	Args:  usageArgs(cobra.ExactArgs(1)),
	RunE: func(cmd *cobra.Command, args []string) error {
		p := &preset.Preset{}

		if cmd.Flags().Changed("root") {
			p.RootDir = presRootDir
		}
		if cmd.Flags().Changed("verbose") {
			p.Verbose = presVerbose
		}
		if cmd.Flags().Changed("experimental") {
			p.Experimental = presExperimental
		}
		if cmd.Flags().Changed("log-file") {
			p.LogFile = &logFile
		}

		if err := preset.Save(args[0], p); err != nil {
			return err
		}
		logging.Infof("Preset %q saved to %s\n", args[0], preset.Dir())
		return nil
	},
}

var presetListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved presets",
	Args:  usageArgs(cobra.NoArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		names, err := preset.List()
		if err != nil {
			return err
		}
		if len(names) == 0 {
			logging.Infoln("No presets saved.")
			return nil
		}
		for _, n := range names {
			logging.Infoln(n)
		}
		return nil
	},
}

var presetShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show a preset's contents",
	Args:  usageArgs(cobra.ExactArgs(1)),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := preset.Load(args[0])
		if err != nil {
			return err
		}
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(p); err != nil {
			return err
		}
		logging.Infof("%s", buf.String())
		return nil
	},
}

var presetDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a saved preset",
	Args:  usageArgs(cobra.ExactArgs(1)),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := preset.Delete(args[0]); err != nil {
			return err
		}
		logging.Infof("Preset %q deleted.\n", args[0])
		return nil
	},
}

func init() {
	// Local variables keep these flags from colliding with the root flags.
	presRootDir = presetSaveCmd.Flags().String("root", "", "Installation root directory")
	presVerbose = presetSaveCmd.Flags().Bool("verbose", false, "Enable verbose logging")
	presExperimental = presetSaveCmd.Flags().Bool("experimental", false, "Include experimental builds")

	presetCmd.AddCommand(presetSaveCmd, presetListCmd, presetShowCmd, presetDeleteCmd)
	rootCmd.AddCommand(presetCmd)
}
