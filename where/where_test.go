package where

import (
	"path/filepath"
	"testing"

	"github.com/samber/lo"
	"github.com/sonora-player/sonora/filesystem"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestPaths(t *testing.T) {
	Convey("Path functions", t, func() {
		Convey("Config()", func() {
			path := Config()
			So(path, ShouldNotBeEmpty)
			So(lo.Must(filesystem.API().IsDir(path)), ShouldBeTrue)
		})

		Convey("Cache()", func() {
			path := Cache()
			So(path, ShouldNotBeEmpty)
			So(lo.Must(filesystem.API().IsDir(path)), ShouldBeTrue)
		})

		Convey("Logs()", func() {
			path := Logs()
			So(path, ShouldNotBeEmpty)
			So(lo.Must(filesystem.API().IsDir(path)), ShouldBeTrue)
		})

		Convey("Preferences() lives in the config directory", func() {
			So(filepath.Dir(Preferences()), ShouldEqual, Config())
		})

		Convey("SONORA_CONFIG_PATH overrides the config directory", func() {
			t.Setenv(EnvConfigPath, "/custom/sonora")
			So(Config(), ShouldEqual, "/custom/sonora")
			So(lo.Must(filesystem.API().IsDir("/custom/sonora")), ShouldBeTrue)
		})
	})
}
