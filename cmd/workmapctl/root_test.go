package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/workmap/internal/adapters/http/api"
	service "github.com/okian/workmap/internal/app"
	"github.com/okian/workmap/internal/domain/types"
	"github.com/okian/workmap/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

var fixtures = map[string]string{
	"2025-W14.json": `[
  {"name": "ana", "project": "atlas", "module": "core", "feature": "search", "progress_percent": 40,
   "next_week_tasks": ["ship ranking service"],
   "collaborators": [{"name": "ben", "relation": "pair"}]},
  {"name": "ben", "project": "atlas", "module": "core", "feature": "search", "progress_percent": 60,
   "collaborators": [{"name": "cy", "relation": "pre"}]}
]`,
	"2025-W15.yaml": `week: 2025-W15
items:
  - name: ana
    project: atlas
    module: core
    feature: search
    progress_percent: 70
    past_week_tasks: ["ship ranking service"]
`,
}

func fixtureDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range fixtures {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func execute(args ...string) (string, error) {
	var out bytes.Buffer
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(&out)
	root.SetErr(io.Discard)
	err := root.Execute()
	return out.String(), err
}

func TestCompute(t *testing.T) {
	convey.Convey("Given a directory of snapshot files", t, func() {
		dir := fixtureDir(t)

		convey.Convey("When computing the work map", func() {
			out, err := execute("compute", "workmap", "--dir", dir, "--week", "2025-W14")
			convey.So(err, convey.ShouldBeNil)

			var view types.WorkMapView
			convey.So(json.Unmarshal([]byte(out), &view), convey.ShouldBeNil)

			convey.Convey("Then the tree rolls up the week", func() {
				convey.So(view.Week, convey.ShouldEqual, "2025-W14")
				convey.So(view.ItemCount, convey.ShouldEqual, 2)
				convey.So(view.Projects, convey.ShouldHaveLength, 1)
				convey.So(view.Projects[0].Name, convey.ShouldEqual, "atlas")
				convey.So(view.Projects[0].Metrics.Progress, convey.ShouldEqual, 50)
			})
		})

		convey.Convey("When computing the network with a pin", func() {
			out, err := execute("compute", "network", "--dir", dir, "--week", "2025-W14", "--pin", "ana@10,20")
			convey.So(err, convey.ShouldBeNil)

			var view types.NetworkView
			convey.So(json.Unmarshal([]byte(out), &view), convey.ShouldBeNil)

			convey.Convey("Then every collaborator is laid out and the pin is honoured", func() {
				convey.So(view.Nodes, convey.ShouldHaveLength, 3)
				convey.So(view.Edges, convey.ShouldHaveLength, 2)
				for _, n := range view.Nodes {
					if n.ID == "ana" {
						convey.So(n.Pinned, convey.ShouldBeTrue)
						convey.So(n.X, convey.ShouldEqual, 10.0)
						convey.So(n.Y, convey.ShouldEqual, 20.0)
					}
				}
			})
		})

		convey.Convey("When a pin is malformed", func() {
			_, err := execute("compute", "network", "--dir", dir, "--week", "2025-W14", "--pin", "ana")

			convey.Convey("Then the command fails", func() {
				convey.So(err, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When computing continuity", func() {
			out, err := execute("compute", "continuity", "--dir", dir, "--week", "2025-W14")
			convey.So(err, convey.ShouldBeNil)

			var view types.ContinuityView
			convey.So(json.Unmarshal([]byte(out), &view), convey.ShouldBeNil)

			convey.Convey("Then the next week is linked", func() {
				convey.So(view.PrevWeek, convey.ShouldBeEmpty)
				convey.So(view.NextWeek, convey.ShouldEqual, "2025-W15")
				convey.So(view.Results, convey.ShouldHaveLength, 2)
				convey.So(view.Summary["connected"], convey.ShouldEqual, 1)
			})
		})

		convey.Convey("When the week is unknown", func() {
			_, err := execute("compute", "workmap", "--dir", dir, "--week", "2030-W01")

			convey.Convey("Then the command reports it", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "2030-W01")
			})
		})

		convey.Convey("When --week is missing", func() {
			_, err := execute("compute", "workmap", "--dir", dir)

			convey.Convey("Then cobra rejects the call", func() {
				convey.So(err, convey.ShouldNotBeNil)
			})
		})
	})
}

func TestValidate(t *testing.T) {
	convey.Convey("Given a directory of snapshot files", t, func() {
		dir := fixtureDir(t)

		convey.Convey("When validating it", func() {
			out, err := execute("validate", "--dir", dir)

			convey.Convey("Then every week is listed", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(out, convey.ShouldContainSubstring, "2025-W14")
				convey.So(out, convey.ShouldContainSubstring, "2025-W15")
			})
		})

		convey.Convey("When a file is broken", func() {
			convey.So(os.WriteFile(filepath.Join(dir, "2025-W16.json"), []byte(`{"items": [{"name": ""}]}`), 0o600), convey.ShouldBeNil)
			_, err := execute("validate", "--dir", dir)

			convey.Convey("Then validation fails", func() {
				convey.So(err, convey.ShouldNotBeNil)
			})
		})
	})
}

func TestIngest(t *testing.T) {
	convey.Convey("Given a running service", t, func() {
		convey.So(logger.InitWith(io.Discard, "text"), convey.ShouldBeNil)
		ctx := context.Background()

		svc := service.New(service.WithWorkerCount(1))
		convey.So(svc.Start(ctx), convey.ShouldBeNil)
		defer svc.Stop()

		mux := http.NewServeMux()
		api.NewServer(svc, svc).Register(ctx, mux)
		srv := httptest.NewServer(mux)
		defer srv.Close()

		convey.Convey("When ingesting the fixtures", func() {
			out, err := execute("ingest", "--dir", fixtureDir(t), "--url", srv.URL, "--wait", "5s")
			convey.So(err, convey.ShouldBeNil)

			var summary map[string]any
			convey.So(json.Unmarshal([]byte(out), &summary), convey.ShouldBeNil)

			convey.Convey("Then both weeks are applied", func() {
				convey.So(summary["accepted"], convey.ShouldEqual, 2.0)
				convey.So(summary["weeks_verified"], convey.ShouldEqual, 2.0)

				weeks, err := svc.Weeks(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(weeks, convey.ShouldResemble, []string{"2025-W14", "2025-W15"})
			})
		})
	})
}
