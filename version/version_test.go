package version

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestCompare(t *testing.T) {
	Convey("Compare orders semantic versions", t, func() {
		cases := []struct {
			a, b string
			want int
		}{
			{"0.3.0", "0.3.0", 0},
			{"v1.0.0", "0.9.9", 1},
			{"0.2.10", "0.10.2", -1},
			{"1.2.3-rc.1", "1.2.3", 0},
		}

		for _, c := range cases {
			got, err := Compare(c.a, c.b)
			So(err, ShouldBeNil)
			So(got, ShouldEqual, c.want)
		}
	})

	Convey("Compare rejects garbage", t, func() {
		_, err := Compare("latest", "0.1.0")
		So(err, ShouldNotBeNil)
	})
}

func TestFetchLatest(t *testing.T) {
	Convey("Given a release endpoint", t, func() {
		status := http.StatusOK
		body := `{"tag_name":"v1.4.2"}`
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(body))
		}))
		defer server.Close()

		Convey("It strips the v prefix", func() {
			v, err := fetchLatest(context.Background(), server.Client(), server.URL)
			So(err, ShouldBeNil)
			So(v, ShouldEqual, "1.4.2")
		})

		Convey("It fails on an empty tag", func() {
			body = `{}`
			_, err := fetchLatest(context.Background(), server.Client(), server.URL)
			So(err, ShouldNotBeNil)
		})

		Convey("It fails on a bad status", func() {
			status = http.StatusForbidden
			_, err := fetchLatest(context.Background(), server.Client(), server.URL)
			So(err, ShouldNotBeNil)
		})
	})
}
