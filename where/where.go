// Package where implements a cross-platform resolver for application-specific filesystem paths.
package where

import (
	"os"
	"path/filepath"

	"github.com/samber/lo"
	"github.com/sonora-player/sonora/constant"
	"github.com/sonora-player/sonora/filesystem"
)

// EnvConfigPath is the environment variable identifier used to override the default configuration directory.
const EnvConfigPath = "SONORA_CONFIG_PATH"

func ensureDir(path string) string {
	lo.Must0(filesystem.API().MkdirAll(path, os.ModePerm))
	return path
}

// Config resolves the absolute path to the primary application configuration directory.
// The path can be overridden via the SONORA_CONFIG_PATH environment variable.
func Config() string {
	if custom, ok := os.LookupEnv(EnvConfigPath); ok {
		return ensureDir(custom)
	}

	base := lo.Must(os.UserConfigDir())
	return ensureDir(filepath.Join(base, constant.Sonora))
}

// Cache resolves the root of the song and thumbnail caches.
func Cache() string {
	base, err := os.UserCacheDir()
	if err != nil {
		base = filepath.Join(".", "cache")
	}
	return ensureDir(filepath.Join(base, constant.Sonora))
}

// Logs resolves the directory used for application diagnostic logs.
func Logs() string {
	return ensureDir(filepath.Join(Config(), "logs"))
}

// Preferences resolves the file holding persisted playback preferences such as volume.
func Preferences() string {
	return filepath.Join(Config(), "preferences.json")
}

// Temp resolves a volatile directory for transient artifacts like the mpv IPC socket.
func Temp() string {
	return ensureDir(filepath.Join(os.TempDir(), constant.Sonora))
}
