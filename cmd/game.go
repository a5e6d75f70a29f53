package cmd

import (
	"context"
	"fmt"

	"github.com/shmakota/cata-git-mod-manager/internal/config"
	"github.com/shmakota/cata-git-mod-manager/internal/gameinstall"
	"github.com/shmakota/cata-git-mod-manager/internal/logging"
	"github.com/spf13/cobra"
)

var gameReleasesURL string

var gameCmd = &cobra.Command{
	Use:   "game",
	Short: "Download and install game builds",
}

var gameListCmd = &cobra.Command{
	Use:   "list",
	Short: "List downloadable game builds for this platform",
	Args:  usageArgs(cobra.NoArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		builds, err := gameinstall.ListBuilds(context.Background(), gameReleasesURL, experimental)
		if err != nil {
			return err
		}
		for i, b := range builds {
			tag := ""
			if b.Experimental {
				tag = " (experimental)"
			}
			logging.Infof("%d. %s%s — %s\n", i+1, b.Version, tag, b.AssetName)
		}
		return nil
	},
}

var gameInstallCmd = &cobra.Command{
	Use:   "install [version]",
	Short: "Install a game build into the game directory",
	Long: `Download a game build and unpack it into the configured game directory.
With no argument the newest build is installed; pass a version from
"game list" to pick one.`,
	Args: usageArgs(cobra.MaximumNArgs(1)),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		builds, err := gameinstall.ListBuilds(ctx, gameReleasesURL, experimental)
		if err != nil {
			return err
		}

		b := builds[0]
		if len(args) == 1 {
			found := false
			for _, candidate := range builds {
				if candidate.Version == args[0] {
					b = candidate
					found = true
					break
				}
			}
			if !found {
				return fmt.Errorf("no build with version %q, see \"game list\"", args[0])
			}
		}

		cfg, err := config.Load(rootDir)
		if err != nil {
			return err
		}
		gameDir := config.ResolveDir(rootDir, cfg.GameInstallDir)

		logging.Infof("Installing game %s into %s\n", b.Version, gameDir)
		if err := gameinstall.Install(ctx, b, rootDir, gameDir, downloadBar(b.AssetName)); err != nil {
			return err
		}
		successln("Game %s installed.", b.Version)
		return nil
	},
}

func init() {
	gameCmd.PersistentFlags().StringVar(&gameReleasesURL, "releases-url", gameinstall.DefaultReleasesURL, "Release feed to fetch game builds from")

	gameCmd.AddCommand(gameListCmd, gameInstallCmd)
	rootCmd.AddCommand(gameCmd)
}
