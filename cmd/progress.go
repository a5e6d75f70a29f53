package cmd

import (
	"github.com/mitchellh/colorstring"
	"github.com/schollz/progressbar/v3"
	"github.com/shmakota/cata-git-mod-manager/internal/downloader"
	"github.com/shmakota/cata-git-mod-manager/internal/logging"
)

// downloadBar returns a progress callback that renders a byte-count bar
// for one download. The bar is created lazily once the total size is
// known; servers that omit Content-Length get a spinner instead.
func downloadBar(description string) func(downloader.Progress) {
	var bar *progressbar.ProgressBar
	return func(p downloader.Progress) {
		if bar == nil {
			bar = progressbar.NewOptions64(p.Total,
				progressbar.OptionSetDescription(description),
				progressbar.OptionShowBytes(true),
				progressbar.OptionSetWidth(30),
				progressbar.OptionClearOnFinish(),
			)
		}
		_ = bar.Set64(p.Complete)
	}
}

// successln and failln print colored one-line outcomes.
func successln(format string, args ...any) {
	logging.Infof(colorstring.Color("[green]"+format+"[reset]\n"), args...)
}

func failln(format string, args ...any) {
	logging.Infof(colorstring.Color("[red]"+format+"[reset]\n"), args...)
}
