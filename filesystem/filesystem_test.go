package filesystem

import (
	"os"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/afero"
)

func TestBackend(t *testing.T) {
	Convey("Given the shared backend", t, func() {
		Reset(SetOsFs)

		Convey("It defaults to the OS filesystem", func() {
			SetOsFs()
			So(API().Name(), ShouldEqual, "OsFs")
		})

		Convey("It can be swapped for memory and restored", func() {
			memory := afero.NewMemMapFs()
			restore := Set(memory)
			So(API().Name(), ShouldEqual, "MemMapFS")

			restore()
			So(API().Name(), ShouldEqual, "OsFs")
		})

		Convey("Gache files go through the active backend", func() {
			SetMemMapFs()
			So(GacheFs{}.MkdirAll("/prefs", os.ModePerm), ShouldBeNil)

			f, err := GacheFs{}.OpenFile("/prefs/state.json", os.O_CREATE|os.O_WRONLY, 0o644)
			So(err, ShouldBeNil)
			_, err = f.Write([]byte("{}"))
			So(err, ShouldBeNil)
			So(f.Close(), ShouldBeNil)

			data, err := API().ReadFile("/prefs/state.json")
			So(err, ShouldBeNil)
			So(string(data), ShouldEqual, "{}")
		})
	})
}
