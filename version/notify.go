package version

import (
	"fmt"

	"github.com/sonora-player/sonora/color"
	"github.com/sonora-player/sonora/constant"
	"github.com/sonora-player/sonora/icon"
	"github.com/sonora-player/sonora/key"
	"github.com/sonora-player/sonora/style"
	"github.com/sonora-player/sonora/util"
	"github.com/spf13/viper"
)

// Notify prints a notice when a newer release than the running one exists.
func Notify() {
	if !viper.GetBool(key.CliVersionCheck) {
		return
	}

	erase := util.PrintErasable(fmt.Sprintf("%s Checking if new version is available...", icon.Get(icon.Download)))
	latest, err := Latest()
	erase()
	if err != nil {
		return
	}

	if comp, err := Compare(latest, constant.Version); err != nil || comp <= 0 {
		return
	}

	fmt.Printf(`
%s New version is available %s %s
%s

`,
		style.Fg(color.Green)("▇▇▇"),
		style.Bold(latest),
		style.Faint(fmt.Sprintf("(You're on %s)", constant.Version)),
		style.Faint("https://github.com/sonora-player/sonora/releases/tag/v"+latest),
	)
}
