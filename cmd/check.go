package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"

	"github.com/charmbracelet/lipgloss"
	"github.com/sonora-player/sonora/constant"
	"github.com/sonora-player/sonora/icon"
	"github.com/sonora-player/sonora/key"
	"github.com/sonora-player/sonora/style"
	"github.com/spf13/viper"
)

// CheckDependencies verifies that the configured mpv executable can be found.
func CheckDependencies() {
	mpv := viper.GetString(key.PlayerMPVPath)
	if _, err := exec.LookPath(mpv); err != nil {
		printMissingDependencyError(mpv)
		os.Exit(1)
	}
}

func installCommand(goos string) string {
	switch goos {
	case constant.Darwin:
		return "brew install mpv"
	case constant.Linux:
		return "sudo apt install mpv"
	case constant.Windows:
		return "scoop install mpv"
	case constant.Android:
		return "pkg install mpv"
	default:
		return ""
	}
}

func printMissingDependencyError(dep string) {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(style.HiRed).
		Padding(1, 2).
		Margin(1, 0)

	title := style.New().Bold(true).Foreground(style.HiRed).Render(fmt.Sprintf("%s Error: Missing Dependency", icon.Get(icon.Fail)))
	body := style.New().Foreground(style.Text).Render(fmt.Sprintf("The media pipeline '%s' was not found in your PATH.", dep))

	suggestion := ""
	if installCmd := installCommand(runtime.GOOS); installCmd != "" {
		suggestion = fmt.Sprintf("\n\nTo install it, try running:\n  %s", style.New().Foreground(style.AccentColor).Bold(true).Render(installCmd))
	}

	fmt.Println(box.Render(
		lipgloss.JoinVertical(lipgloss.Left,
			title,
			"\n",
			body,
			suggestion,
		),
	))
}
