// Package config provides centralized management for application settings, defaults, and the Viper-based configuration engine.
package config

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"text/template"

	"github.com/samber/lo"
	"github.com/sonora-player/sonora/color"
	"github.com/sonora-player/sonora/constant"
	"github.com/sonora-player/sonora/key"
	"github.com/sonora-player/sonora/style"
	"github.com/spf13/viper"
)

// Field represents a configuration field definition.
type Field struct {
	Key         string
	Value       any
	Description string
}

// Pretty returns a colored description of the field with its current and default values.
func (f *Field) Pretty() string {
	var b strings.Builder
	lo.Must0(prettyTemplate.Execute(&b, f))
	return b.String()
}

// MarshalJSON includes the current value next to the default.
func (f Field) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Key         string `json:"key"`
		Value       any    `json:"value"`
		Default     any    `json:"default"`
		Description string `json:"description"`
		Env         string `json:"env"`
	}{
		Key:         f.Key,
		Value:       viper.Get(f.Key),
		Default:     f.Value,
		Description: f.Description,
		Env:         f.Env(),
	})
}

// Env returns the environment variable name for this field.
func (f *Field) Env() string {
	env := strings.ToUpper(EnvKeyReplacer.Replace(f.Key))
	prefix := strings.ToUpper(constant.Sonora + "_")
	if strings.HasPrefix(env, prefix) {
		return env
	}
	return prefix + env
}

// Default holds the map of all configuration fields.
var Default = make(map[string]Field)

// EnvExposed holds keys that are bound to environment variables.
var EnvExposed []string

func init() {
	register := func(k string, v any, desc string) {
		if _, exists := Default[k]; exists {
			panic("Duplicate config key: " + k)
		}
		Default[k] = Field{Key: k, Value: v, Description: desc}
		EnvExposed = append(EnvExposed, k)
	}

	register(key.LogsWrite, false, "Write logs")
	register(key.LogsLevel, "info", "Available options are: (from less to most verbose)\npanic, fatal, error, warn, info, debug, trace")
	register(key.LogsJson, false, "Use json format for logs")
	register(key.PlayerMPVPath, "mpv", "Path to the mpv executable used as the decoding pipeline")
	register(key.PlayerPollInterval, 100, "Position polling period while playing, in milliseconds")
	register(key.PlayerQuitTimeout, 2000, "How long to wait for the pipeline loop to stop on quit, in milliseconds")
	register(key.CacheDir, "", "Root of the song and thumbnail cache.\nEmpty means the platform cache directory")
	register(key.CacheSongsConcurrency, 2, "Maximum simultaneous song downloads")
	register(key.CacheThumbsConcurrency, 2, "Maximum simultaneous thumbnail downloads")
	register(key.CacheThumbsExt, "jpg", "File extension used for cached thumbnails")
	register(key.QueueRestartThreshold, 4000, "Elapsed milliseconds after which \"previous\" restarts the current track")
	register(key.PlaybackSkipOnFetchError, true, "Skip to the next queue item when a track cannot be downloaded")
	register(key.ServerID, "default", "Identifier of the catalog server, used to partition the cache")
	register(key.CliColored, true, "Enable colored CLI output")
	register(key.CliVersionCheck, true, "Check for a newer release after printing help and version")
	register(key.IconsVariant, "plain", "Icons variant.\nAvailable options are: emoji, nerd, plain, squares")
	register(key.TUISeekStep, 10, "Seconds skipped by the seek keys")
	register(key.TUIVolumeStep, 5, "Volume change of the volume keys, in percent")
	register(key.TUIShowQueue, false, "Open the queue instead of the now playing view")
	register(key.TUIImageViewer, "", "Application used to open cover art.\nEmpty means the system default")
}

var prettyTemplate = lo.Must(template.New("pretty").Funcs(template.FuncMap{
	"faint":    style.Faint,
	"blue":     style.Fg(color.Blue),
	"purple":   style.Fg(color.Purple),
	"value":    func(k string) any { return viper.Get(k) },
	"typename": func(v any) string { return reflect.TypeOf(v).String() },
	"hl": func(v any) string {
		switch value := v.(type) {
		case bool:
			b := strconv.FormatBool(value)
			if value {
				return style.Fg(color.Green)(b)
			}
			return style.Fg(color.Red)(b)
		case string:
			return style.Fg(color.Yellow)(value)
		default:
			return fmt.Sprint(value)
		}
	},
}).Parse(`{{ faint .Description }}
{{ blue "Key:" }}     {{ purple .Key }}
{{ blue "Env:" }}     {{ .Env }}
{{ blue "Value:" }}   {{ hl (value .Key) }}
{{ blue "Default:" }} {{ hl .Value }}
{{ blue "Type:" }}    {{ typename .Value }}`))
