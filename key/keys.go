// Package key defines the canonical set of configuration identifiers used for centralized settings management.
package key

// Logging Infrastructure - these keys manage the application's internal diagnostics.
const (
	LogsWrite = "logs.write"
	LogsLevel = "logs.level"
	LogsJson  = "logs.json"
)

// Media Pipeline - these keys configure the external mpv process and the controller driving it.
const (
	PlayerMPVPath      = "player.mpv_path"
	PlayerPollInterval = "player.poll_interval"
	PlayerQuitTimeout  = "player.quit_timeout"
)

// Disk Cache - these keys tune the song and thumbnail caches.
const (
	CacheDir               = "cache.dir"
	CacheSongsConcurrency  = "cache.songs_concurrency"
	CacheThumbsConcurrency = "cache.thumbs_concurrency"
	CacheThumbsExt         = "cache.thumbs_ext"
)

// Queue Navigation - these keys tune previous/next behavior.
const (
	QueueRestartThreshold = "queue.restart_threshold"
)

// Playback Orchestration.
const (
	PlaybackSkipOnFetchError = "playback.skip_on_fetch_error"
)

// Catalog Server.
const (
	ServerID = "server.id"
)

// CLI Execution Environment.
const (
	CliColored      = "cli.colored"
	CliVersionCheck = "cli.version_check"
)

// Terminal Interface - these keys customize the now-playing view.
const (
	IconsVariant   = "icons.variant"
	TUISeekStep    = "tui.seek_step"
	TUIVolumeStep  = "tui.volume_step"
	TUIShowQueue   = "tui.show_queue"
	TUIImageViewer = "tui.image_viewer"
)
