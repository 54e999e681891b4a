package cmd

import (
	"context"
	"os"
	"os/signal"
	"time"

	"github.com/samber/lo"
	"github.com/sonora-player/sonora/config"
	"github.com/sonora-player/sonora/inline"
	"github.com/sonora-player/sonora/internal/cache"
	"github.com/sonora-player/sonora/key"
	"github.com/sonora-player/sonora/log"
	"github.com/sonora-player/sonora/pipeline"
	"github.com/sonora-player/sonora/playback"
	"github.com/sonora-player/sonora/player"
	"github.com/sonora-player/sonora/track"
	"github.com/sonora-player/sonora/tui"
	"github.com/sonora-player/sonora/where"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(playCmd)

	playCmd.Flags().StringP("server", "s", "", "Catalog server id used to partition the cache")
	lo.Must0(viper.BindPFlag(key.ServerID, playCmd.Flags().Lookup("server")))

	playCmd.Flags().BoolP("queue", "Q", false, "Open the queue instead of the now playing view")
	lo.Must0(viper.BindPFlag(key.TUIShowQueue, playCmd.Flags().Lookup("queue")))

	playCmd.Flags().StringP("start", "n", "first", "Track to start at: first, last, a position counting from 1 or @title@")
	playCmd.Flags().Bool("no-skip", false, "Stop on a track that cannot be downloaded instead of skipping it")

	playCmd.Flags().Bool("inline", false, "Play without the terminal interface and print every transition")
	playCmd.Flags().BoolP("json", "j", false, "Print inline transitions as JSON lines")
	playCmd.MarkFlagsMutuallyExclusive("inline", "queue")
}

// playCmd replaces the queue with its arguments and opens the player.
var playCmd = &cobra.Command{
	Use:   "play [url or file...]",
	Short: "Play stream URLs and local files as a new queue",
	Long: `Play stream URLs and local files as a new queue.

Remote tracks are downloaded into the song cache before playback, local files are played in place.`,
	Example: "  sonora play 'https://music.example.com/rest/stream?id=42' ~/Music/song.flac",
	Args:    cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		CheckDependencies()

		serverID := viper.GetString(key.ServerID)
		tracks := lo.Map(args, func(arg string, _ int) track.Track {
			return track.FromArg(serverID, arg)
		})

		start, err := inline.ParseStart(lo.Must(cmd.Flags().GetString("start")), tracks)
		handleErr(err)

		skip := viper.GetBool(key.PlaybackSkipOnFetchError) && !lo.Must(cmd.Flags().GetBool("no-skip"))
		orchestrator, err := newOrchestrator(skip)
		handleErr(err)

		if err := orchestrator.PlayQueue(tracks, start); err != nil {
			_ = orchestrator.Close()
			handleErr(err)
		}

		if lo.Must(cmd.Flags().GetBool("inline")) {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			err = inline.Run(ctx, orchestrator, &inline.Options{
				Json: lo.Must(cmd.Flags().GetBool("json")),
			})
			stop()
		} else {
			err = tui.Run(orchestrator, &tui.Options{
				ShowQueue:   viper.GetBool(key.TUIShowQueue),
				SeekStep:    time.Duration(viper.GetInt(key.TUISeekStep)) * time.Second,
				VolumeStep:  float64(viper.GetInt(key.TUIVolumeStep)) / 100,
				ImageViewer: viper.GetString(key.TUIImageViewer),
			})
		}

		if closeErr := orchestrator.Close(); closeErr != nil {
			log.Warnf("closing player: %s", closeErr)
		}
		handleErr(err)
	},
}

// newOrchestrator spawns mpv and wires it to the caches as configured.
func newOrchestrator(skipOnFetchError bool) (*playback.Orchestrator, error) {
	pipe := pipeline.NewMPV(pipeline.Options{
		Path:      viper.GetString(key.PlayerMPVPath),
		SocketDir: where.Temp(),
	})
	if err := pipe.Start(); err != nil {
		return nil, err
	}

	controller := player.New(pipe, player.Options{
		PollInterval: config.Millis(key.PlayerPollInterval),
		QuitTimeout:  config.Millis(key.PlayerQuitTimeout),
	})

	root := config.CacheRoot()
	songs := cache.NewSongCache(cache.Options{
		Root:        root,
		Concurrency: viper.GetInt64(key.CacheSongsConcurrency),
	})
	thumbnails := cache.NewThumbnailCache(cache.Options{
		Root:        root,
		Concurrency: viper.GetInt64(key.CacheThumbsConcurrency),
	}, viper.GetString(key.CacheThumbsExt))

	return playback.New(controller, songs, playback.Options{
		Thumbnails:       thumbnails,
		Preferences:      playback.NewPreferenceStore(where.Preferences()),
		SkipOnFetchError: skipOnFetchError,
		RestartThreshold: config.Millis(key.QueueRestartThreshold),
	}), nil
}
