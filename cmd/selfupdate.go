package cmd

import (
	"bufio"
	"context"
	"os"
	"strings"

	"github.com/shmakota/cata-git-mod-manager/internal/config"
	"github.com/shmakota/cata-git-mod-manager/internal/logging"
	"github.com/shmakota/cata-git-mod-manager/internal/selfupdate"
	"github.com/shmakota/cata-git-mod-manager/internal/version"
	"github.com/spf13/cobra"
)

var (
	selfupdateYes       bool
	selfupdateCheckOnly bool
)

var selfupdateCmd = &cobra.Command{
	Use:   "selfupdate",
	Short: "Update the tool itself from its release feed",
	Long: `Check the configured update URL for a newer release and, after
confirmation, replace the installation with it. Configuration, installed
mods and the debug log are preserved across the update.`,
	Args: usageArgs(cobra.NoArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		rec, err := version.LoadRecord(rootDir)
		if err != nil {
			return err
		}
		cfg, err := config.Load(rootDir)
		if err != nil {
			return err
		}

		ctx := context.Background()
		avail, err := selfupdate.Check(ctx, cfg.UpdateURL, rec.ProgramVersion)
		if err != nil {
			return err
		}
		if !avail.Configured {
			logging.Infoln("No update URL configured; set one with: config set update_url <url>")
			return nil
		}
		if !avail.Available {
			logging.Infof("Already up to date (%s).\n", avail.CurrentVersion)
			return nil
		}

		logging.Infof("Update available: %s -> %s\n", avail.CurrentVersion, avail.LatestVersion)
		if avail.Experimental {
			logging.Warnf("this is a prerelease build\n")
		}
		if avail.ReleaseNotes != "" {
			logging.Infof("\n%s\n\n", strings.TrimSpace(avail.ReleaseNotes))
		}
		if selfupdateCheckOnly {
			return nil
		}

		if avail.Experimental && !experimental && !selfupdateYes {
			logging.Infoln("Refusing to install a prerelease without --experimental or --yes.")
			return nil
		}
		if !selfupdateYes && !confirm("Install this update?") {
			logging.Infoln("Update cancelled.")
			return nil
		}

		orch := selfupdate.New()
		orch.OnStep = func(s selfupdate.Step) {
			logging.Infof("  %s...\n", s)
		}
		orch.OnProgress = downloadBar("downloading update")

		preserve := selfupdate.PreservationSet(rootDir, cfg)
		if err := orch.Replace(ctx, avail.DownloadURL, avail.LatestVersion, preserve, rootDir); err != nil {
			return err
		}
		successln("Updated to %s.", avail.LatestVersion)
		return nil
	},
}

func confirm(prompt string) bool {
	logging.Infof("%s [y/N] ", prompt)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

func init() {
	selfupdateCmd.Flags().BoolVarP(&selfupdateYes, "yes", "y", false, "Install without asking for confirmation")
	selfupdateCmd.Flags().BoolVar(&selfupdateCheckOnly, "check", false, "Only report whether an update is available")
	rootCmd.AddCommand(selfupdateCmd)
}
