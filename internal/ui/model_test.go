package ui

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestModel(t *testing.T) {
	Convey("Given a notifier", t, func() {
		m := &Model{}

		Convey("It leaves the content alone without a notification", func() {
			So(m.View("a\nb"), ShouldEqual, "a\nb")
		})

		Convey("A notification is appended to the last line", func() {
			So(m.Update(NotificationMsg("added to queue")), ShouldNotBeNil)
			So(m.Current(), ShouldEqual, "added to queue")
			So(m.View("a\nb"), ShouldEqual, "a\nb  \033[90madded to queue\033[0m")

			Convey("and cleared by its own timer only", func() {
				first := m.notifiedAt
				m.Update(NotificationMsg("newer"))
				m.Update(ClearNotificationMsg{at: first.Add(-1)})
				So(m.Current(), ShouldEqual, "newer")

				m.Update(ClearNotificationMsg{at: m.notifiedAt})
				So(m.Current(), ShouldBeEmpty)
			})
		})
	})
}
