package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shmakota/cata-git-mod-manager/internal/config"
	"github.com/shmakota/cata-git-mod-manager/internal/logging"
	"github.com/shmakota/cata-git-mod-manager/internal/selfupdate"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and change tool settings",
}

// configKeys maps setting names to their accessors.
var configKeys = map[string]struct {
	get func(*config.Config) string
	set func(*config.Config, string)
}{
	"mod_install_dir": {
		get: func(c *config.Config) string { return c.ModInstallDir },
		set: func(c *config.Config, v string) { c.ModInstallDir = v },
	},
	"game_install_dir": {
		get: func(c *config.Config) string { return c.GameInstallDir },
		set: func(c *config.Config, v string) { c.GameInstallDir = v },
	},
	"backup_dir": {
		get: func(c *config.Config) string { return c.BackupDir },
		set: func(c *config.Config, v string) { c.BackupDir = v },
	},
	"update_url": {
		get: func(c *config.Config) string { return c.UpdateURL },
		set: func(c *config.Config, v string) { c.UpdateURL = v },
	},
}

func sortedConfigKeys() []string {
	keys := make([]string, 0, len(configKeys))
	for k := range configKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

var configGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Show one setting, or all of them",
	Args:  usageArgs(cobra.MaximumNArgs(1)),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(rootDir)
		if err != nil {
			return err
		}

		if len(args) == 1 {
			key, ok := configKeys[args[0]]
			if !ok {
				return wrapUsageError(fmt.Errorf("unknown setting %q (known: %s)", args[0], strings.Join(sortedConfigKeys(), ", ")))
			}
			logging.Infoln(key.get(cfg))
			return nil
		}

		for _, k := range sortedConfigKeys() {
			logging.Infof("%s = %q\n", k, configKeys[k].get(cfg))
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change a setting",
	Args:  usageArgs(cobra.ExactArgs(2)),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, ok := configKeys[args[0]]
		if !ok {
			return wrapUsageError(fmt.Errorf("unknown setting %q (known: %s)", args[0], strings.Join(sortedConfigKeys(), ", ")))
		}

		cfg, err := config.Load(rootDir)
		if err != nil {
			return err
		}
		key.set(cfg, args[1])
		if err := cfg.Save(rootDir); err != nil {
			return err
		}
		logging.Infof("%s = %q\n", args[0], args[1])
		return nil
	},
}

var configPreservedCmd = &cobra.Command{
	Use:   "preserved",
	Short: "Show what a self-update would keep",
	Long:  "List the top-level entries of the installation root that survive a self-update untouched.",
	Args:  usageArgs(cobra.NoArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(rootDir)
		if err != nil {
			return err
		}
		for _, name := range selfupdate.PreservationSet(rootDir, cfg) {
			logging.Infoln(name)
		}
		return nil
	},
}

func init() {
	configCmd.AddCommand(configGetCmd, configSetCmd, configPreservedCmd)
	rootCmd.AddCommand(configCmd)
}
