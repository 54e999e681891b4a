package cmd

import (
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/AlecAivazis/survey/v2"
	"github.com/dustin/go-humanize"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/sonora-player/sonora/config"
	"github.com/sonora-player/sonora/filesystem"
	"github.com/sonora-player/sonora/icon"
	"github.com/sonora-player/sonora/internal/cache"
	"github.com/sonora-player/sonora/util"
	"github.com/sonora-player/sonora/where"
	"github.com/spf13/cobra"
)

// clearTarget defines a filesystem resource eligible for cleanup.
type clearTarget struct {
	name     string
	argLong  string
	argShort mo.Option[string]
	location func() []string
}

// cacheDirs lists the directories of one cache kind, one per catalog server.
func cacheDirs(kind cache.Kind) func() []string {
	return func() []string {
		servers, err := filesystem.API().ReadDir(config.CacheRoot())
		if err != nil {
			return nil
		}

		return lo.FilterMap(servers, func(server fs.FileInfo, _ int) (string, bool) {
			return filepath.Join(config.CacheRoot(), server.Name(), string(kind)), server.IsDir()
		})
	}
}

// clearTargets registry of all application artifacts that can be selectively cleared.
var clearTargets = []clearTarget{
	{"song cache", "songs", mo.Some("s"), cacheDirs(cache.KindSongs)},
	{"thumbnail cache", "thumbs", mo.Some("t"), cacheDirs(cache.KindThumbs)},
	{"preferences", "preferences", mo.Some("p"), func() []string { return []string{where.Preferences()} }},
	{"logs", "logs", mo.Some("l"), func() []string { return []string{where.Logs()} }},
}

func init() {
	rootCmd.AddCommand(clearCmd)

	for _, target := range clearTargets {
		help := fmt.Sprintf("clear %s", target.name)
		if target.argShort.IsPresent() {
			clearCmd.Flags().BoolP(target.argLong, target.argShort.MustGet(), false, help)
		} else {
			clearCmd.Flags().Bool(target.argLong, false, help)
		}
	}

	clearCmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")
}

// targetSize sums the bytes held by the target's paths.
func targetSize(paths []string) int64 {
	return lo.SumBy(paths, func(path string) int64 {
		size, err := util.DirSize(path)
		if err != nil {
			return 0
		}
		return size
	})
}

// clearCmd removes cached songs, thumbnails and other local artifacts.
var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove cached songs, thumbnails and other local artifacts",
	Run: func(cmd *cobra.Command, args []string) {
		selected := lo.Filter(clearTargets, func(target clearTarget, _ int) bool {
			return lo.Must(cmd.Flags().GetBool(target.argLong))
		})

		if len(selected) == 0 {
			handleErr(cmd.Help())
			return
		}

		for _, target := range selected {
			paths := target.location()
			size := humanize.Bytes(uint64(targetSize(paths)))

			if !lo.Must(cmd.Flags().GetBool("yes")) {
				var confirmed bool
				handleErr(survey.AskOne(&survey.Confirm{
					Message: fmt.Sprintf("Clear %s (%s)?", target.name, size),
					Default: false,
				}, &confirmed))

				if !confirmed {
					continue
				}
			}

			e := util.PrintErasable(fmt.Sprintf("%s Clearing %s...", icon.Get(icon.Download), target.name))
			for _, path := range paths {
				_ = util.Delete(path)
			}
			e()
			fmt.Printf("%s %s cleared, %s freed\n", icon.Get(icon.Success), util.Capitalize(target.name), size)
		}
	},
}
