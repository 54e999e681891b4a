package config

import (
	"encoding/json"
	"testing"

	"github.com/sonora-player/sonora/filesystem"
	"github.com/sonora-player/sonora/key"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestSetup(t *testing.T) {
	Convey("Config Setup", t, func() {
		Convey("Should initialize without error", func() {
			err := Setup()
			So(err, ShouldBeNil)
		})

		Convey("Should have default values populated", func() {
			_ = Setup()
			for name := range Default {
				So(viper.Get(name), ShouldNotBeNil)
			}
			So(viper.GetInt(key.CacheThumbsConcurrency), ShouldEqual, 2)
			So(viper.GetInt(key.QueueRestartThreshold), ShouldEqual, 4000)
		})

		Convey("EnvKeyReplacer should convert dots to underscores", func() {
			result := EnvKeyReplacer.Replace("cache.songs_concurrency")
			So(result, ShouldEqual, "cache_songs_concurrency")
		})

		Convey("Env should carry the application prefix", func() {
			f := Default[key.CacheDir]
			So(f.Env(), ShouldEqual, "SONORA_CACHE_DIR")
		})
	})
}

func TestField(t *testing.T) {
	Convey("Given a registered field", t, func() {
		_ = Setup()
		f := Default[key.TUISeekStep]

		Convey("Pretty lists key, env and default", func() {
			pretty := f.Pretty()
			So(pretty, ShouldContainSubstring, "tui.seek_step")
			So(pretty, ShouldContainSubstring, "SONORA_TUI_SEEK_STEP")
			So(pretty, ShouldContainSubstring, "int")
		})

		Convey("JSON carries the current value next to the default", func() {
			viper.Set(key.TUISeekStep, 30)
			defer viper.Set(key.TUISeekStep, 10)

			raw, err := json.Marshal(f)
			So(err, ShouldBeNil)
			So(string(raw), ShouldContainSubstring, `"value":30`)
			So(string(raw), ShouldContainSubstring, `"default":10`)
		})
	})
}
