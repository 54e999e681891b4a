package cmd

import (
	"os"

	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/sonora-player/sonora/color"
	"github.com/sonora-player/sonora/config"
	"github.com/sonora-player/sonora/style"
	"github.com/sonora-player/sonora/where"
	"github.com/spf13/cobra"
)

type whereTarget struct {
	name   string
	path   func() string
	flag   string
	short  mo.Option[string]
	hidden bool
}

var wherePaths = []*whereTarget{
	{name: "Config", path: where.Config, flag: "config", short: mo.Some("c")},
	{name: "Cache", path: config.CacheRoot, flag: "cache", short: mo.Some("C")},
	{name: "Logs", path: where.Logs, flag: "logs", short: mo.Some("l")},
	{name: "Preferences", path: where.Preferences, flag: "preferences", hidden: true},
	{name: "Temp", path: where.Temp, flag: "temp", hidden: true},
}

func init() {
	rootCmd.AddCommand(whereCmd)

	for _, n := range wherePaths {
		if n.short.IsPresent() {
			whereCmd.Flags().BoolP(n.flag, n.short.MustGet(), false, n.name+" path")
		} else {
			whereCmd.Flags().Bool(n.flag, false, n.name+" path")
		}

		if n.hidden {
			lo.Must0(whereCmd.Flags().MarkHidden(n.flag))
		}
	}

	whereCmd.MarkFlagsMutuallyExclusive(lo.Map(wherePaths, func(t *whereTarget, _ int) string {
		return t.flag
	})...)

	whereCmd.SetOut(os.Stdout)
}

var whereCmd = &cobra.Command{
	Use:   "where",
	Short: "Display the filesystem paths used by sonora",
	Run: func(cmd *cobra.Command, args []string) {
		headerStyle := style.New().Bold(true).Foreground(color.HiPurple).Render

		for _, n := range wherePaths {
			if lo.Must(cmd.Flags().GetBool(n.flag)) {
				cmd.Println(n.path())
				return
			}
		}

		visible := lo.Filter(wherePaths, func(t *whereTarget, _ int) bool {
			return !t.hidden
		})

		for i, n := range visible {
			cmd.Printf("%s %s\n", headerStyle(n.name+"?"), style.Fg(color.Yellow)("--"+n.flag))
			cmd.Println(n.path())

			if i < len(visible)-1 {
				cmd.Println()
			}
		}
	},
}
