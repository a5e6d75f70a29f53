package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/shmakota/cata-git-mod-manager/internal/logging"
	"github.com/shmakota/cata-git-mod-manager/internal/profile"
	"github.com/spf13/cobra"
)

var installedCmd = &cobra.Command{
	Use:   "installed",
	Short: "Inspect mods on disk in the current profile's mod directory",
}

var installedListCmd = &cobra.Command{
	Use:   "list",
	Short: "List installed mod folders",
	Args:  usageArgs(cobra.NoArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := profile.Load(rootDir)
		if err != nil {
			return err
		}
		dir := store.CurrentProfile().InstallDir(rootDir)

		entries, err := os.ReadDir(dir)
		if os.IsNotExist(err) {
			logging.Infof("Mod directory %s does not exist yet.\n", dir)
			return nil
		}
		if err != nil {
			return err
		}

		found := 0
		for _, e := range entries {
			if !e.IsDir() {
				continue
			}
			found++
			logging.Infof("  %s", e.Name())
			if name := modDisplayName(filepath.Join(dir, e.Name())); name != "" {
				logging.Infof(" (%s)", name)
			}
			logging.Infoln()
		}
		if found == 0 {
			logging.Infof("No mods installed in %s.\n", dir)
		}
		return nil
	},
}

var installedDeleteCmd = &cobra.Command{
	Use:   "delete <folder>",
	Short: "Delete an installed mod folder",
	Args:  usageArgs(cobra.ExactArgs(1)),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := profile.Load(rootDir)
		if err != nil {
			return err
		}
		dir := store.CurrentProfile().InstallDir(rootDir)

		name := filepath.Base(args[0])
		target := filepath.Join(dir, name)
		if info, err := os.Stat(target); err != nil || !info.IsDir() {
			return fmt.Errorf("no installed mod folder %q in %s", name, dir)
		}
		if err := os.RemoveAll(target); err != nil {
			return err
		}
		logging.Infof("Deleted %s\n", target)
		return nil
	},
}

// modDisplayName reads the human-readable name from a mod folder's
// modinfo.json. The file holds a list of objects; the MOD_INFO entry
// carries the name.
func modDisplayName(modDir string) string {
	data, err := os.ReadFile(filepath.Join(modDir, "modinfo.json"))
	if err != nil {
		return ""
	}
	var entries []struct {
		Type string `json:"type"`
		Name string `json:"name"`
	}
	if json.Unmarshal(data, &entries) != nil {
		return ""
	}
	for _, e := range entries {
		if e.Type == "MOD_INFO" {
			return e.Name
		}
	}
	return ""
}

func init() {
	installedCmd.AddCommand(installedListCmd, installedDeleteCmd)
	rootCmd.AddCommand(installedCmd)
}
