package open

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/sonora-player/sonora/constant"
)

func TestCommand(t *testing.T) {
	Convey("Given a cover art path", t, func() {
		path := "/cache/default/thumbs/6b/86/b2/1.jpg"

		Convey("The default handler is used without an app", func() {
			cmd, ok := command(constant.Linux, path, "")
			So(ok, ShouldBeTrue)
			So(cmd.Args, ShouldResemble, []string{"xdg-open", path})

			cmd, ok = command(constant.Darwin, path, "")
			So(ok, ShouldBeTrue)
			So(cmd.Args, ShouldResemble, []string{"open", path})
		})

		Convey("A configured app takes precedence", func() {
			cmd, ok := command(constant.Linux, path, "feh")
			So(ok, ShouldBeTrue)
			So(cmd.Args, ShouldResemble, []string{"feh", path})

			cmd, ok = command(constant.Darwin, path, "Preview")
			So(ok, ShouldBeTrue)
			So(cmd.Args, ShouldResemble, []string{"open", "-a", "Preview", path})
		})

		Convey("Ampersands are escaped for start on windows", func() {
			cmd, ok := command(constant.Windows, `C:\a&b.jpg`, "mspaint")
			So(ok, ShouldBeTrue)
			So(cmd.Args[len(cmd.Args)-1], ShouldEqual, `C:\a^&b.jpg`)
		})

		Convey("Unknown platforms are reported", func() {
			_, ok := command("plan9", path, "")
			So(ok, ShouldBeFalse)
		})
	})
}
