package debugview

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"embedml/fuzzy"

	"github.com/gorilla/websocket"
	. "github.com/smartystreets/goconvey/convey"
)

func TestServeIndex(t *testing.T) {
	Convey("Given a server wrapping a fresh engine", t, func() {
		e := fuzzy.NewEngine()
		s := NewServer(":0", e, 10*time.Millisecond, false)
		ts := httptest.NewServer(s.Handler())
		defer ts.Close()

		Convey("GET / serves the viewer page", func() {
			resp, err := ts.Client().Get(ts.URL + "/")
			So(err, ShouldBeNil)
			defer resp.Body.Close()
			So(resp.StatusCode, ShouldEqual, 200)
		})

		Convey("GET /missing 404s", func() {
			resp, err := ts.Client().Get(ts.URL + "/missing")
			So(err, ShouldBeNil)
			defer resp.Body.Close()
			So(resp.StatusCode, ShouldEqual, 404)
		})
	})
}

func TestServeWebsocket(t *testing.T) {
	Convey("Given a server wrapping an engine with one input and one output", t, func() {
		e := fuzzy.NewEngine()
		e.NewInput("x", 0, 1)
		e.NewOutput("y", 0, 1)
		s := NewServer(":0", e, 5*time.Millisecond, false)
		ts := httptest.NewServer(s.Handler())
		defer ts.Close()

		wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"

		Convey("a connected client receives a snapshot", func() {
			conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
			So(err, ShouldBeNil)
			defer conn.Close()

			var snap fuzzy.Snapshot
			conn.SetReadDeadline(time.Now().Add(2 * time.Second))
			err = conn.ReadJSON(&snap)
			So(err, ShouldBeNil)
			So(snap.InputCount, ShouldEqual, 1)
			So(snap.OutputCount, ShouldEqual, 1)
			So(snap.Rules, ShouldBeNil)
		})
	})

	Convey("Given a server configured to push full snapshots", t, func() {
		e := fuzzy.NewEngine()
		e.NewInput("x", 0, 1)
		e.NewOutput("y", 0, 1)
		s := NewServer(":0", e, 5*time.Millisecond, true)
		ts := httptest.NewServer(s.Handler())
		defer ts.Close()

		wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"

		Convey("the pushed snapshot's rule list matches an empty, untrained engine", func() {
			conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
			So(err, ShouldBeNil)
			defer conn.Close()

			var snap fuzzy.Snapshot
			conn.SetReadDeadline(time.Now().Add(2 * time.Second))
			err = conn.ReadJSON(&snap)
			So(err, ShouldBeNil)
			So(len(snap.Rules), ShouldEqual, 0)
		})
	})
}
