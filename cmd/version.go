package cmd

import (
	"encoding/json"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"text/template"

	"github.com/samber/lo"
	"github.com/sonora-player/sonora/color"
	"github.com/sonora-player/sonora/constant"
	"github.com/sonora-player/sonora/key"
	"github.com/sonora-player/sonora/style"
	"github.com/sonora-player/sonora/version"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.SetOut(os.Stdout)
	versionCmd.Flags().BoolP("short", "s", false, "print only the version")
	versionCmd.Flags().BoolP("json", "j", false, "print build information as JSON")
	versionCmd.MarkFlagsMutuallyExclusive("short", "json")
}

type buildInfo struct {
	App      string `json:"app"`
	Version  string `json:"version"`
	Revision string `json:"revision"`
	BuiltAt  string `json:"built_at"`
	BuiltBy  string `json:"built_by"`
	Platform string `json:"platform"`
	Go       string `json:"go"`
	MPV      string `json:"mpv"`
}

func currentBuild() buildInfo {
	mpv := viper.GetString(key.PlayerMPVPath)
	if path, err := exec.LookPath(mpv); err == nil {
		mpv = path
	} else {
		mpv += " (not found)"
	}

	return buildInfo{
		App:      constant.Sonora,
		Version:  constant.Version,
		Revision: constant.Revision,
		BuiltAt:  strings.TrimSpace(constant.BuiltAt),
		BuiltBy:  constant.BuiltBy,
		Platform: runtime.GOOS + "/" + runtime.GOARCH,
		Go:       runtime.Version(),
		MPV:      mpv,
	}
}

var versionTemplate = template.Must(template.New("version").Funcs(template.FuncMap{
	"faint":   style.Faint,
	"bold":    style.Bold,
	"magenta": style.Fg(color.Purple),
}).Parse(`{{ magenta "▇▇▇" }} {{ magenta .App }}

  {{ faint "Version" }}     {{ bold .Version }}
  {{ faint "Revision" }}    {{ bold .Revision }}
  {{ faint "Built" }}       {{ bold .BuiltAt }} {{ faint "by" }} {{ bold .BuiltBy }}
  {{ faint "Platform" }}    {{ bold .Platform }}
  {{ faint "Go" }}          {{ bold .Go }}
  {{ faint "Player" }}      {{ bold .MPV }}
`))

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version and build information",
	Run: func(cmd *cobra.Command, args []string) {
		if lo.Must(cmd.Flags().GetBool("short")) {
			cmd.Println(constant.Version)
			return
		}

		info := currentBuild()
		if lo.Must(cmd.Flags().GetBool("json")) {
			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			handleErr(encoder.Encode(info))
			return
		}

		defer version.Notify()
		handleErr(versionTemplate.Execute(cmd.OutOrStdout(), info))
	},
}
