package loader_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/okian/workmap/internal/adapters/loader"
	"github.com/okian/workmap/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

const jsonWeek = `{
  "week": "2025-W14",
  "items": [
    {"name": "ana", "domain": "eng", "project": "X", "module": "Core", "feature": "Login",
     "progress_percent": 80, "risk_level": 2, "next_week_tasks": ["finish oauth flow"],
     "collaborators": [{"name": "bo", "relation": "pre"}]},
    {"name": "bo", "domain": "eng", "project": "X", "feature": "Search",
     "progress_percent": 40, "risk_level": null}
  ]
}`

const yamlWeek = `
- name: ana
  domain: eng
  project: X
  feature: Login
  progress_percent: 30
  risk_level: ~
  plan_percent: 50
`

const tomlWeek = `
week = "2025-W16"

[[items]]
name = "ana"
domain = "eng"
project = "X"
feature = "Login"
progress_percent = 100
risk_level = 1

[[items.collaborators]]
name = "cy"
relation = "pair"
`

func write(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDecodeFile(t *testing.T) {
	Convey("Given snapshot files in each format", t, func() {
		dir := t.TempDir()

		Convey("When decoding JSON", func() {
			wf, err := loader.DecodeFile(write(t, dir, "any-name.json", jsonWeek))

			Convey("Then the declared week and items are read", func() {
				So(err, ShouldBeNil)
				So(wf.Week, ShouldEqual, "2025-W14")
				So(wf.Items, ShouldHaveLength, 2)
				So(wf.Items[0].RiskLevel, ShouldResemble, model.Risk(2))
				So(wf.Items[0].Collaborators[0].Relation, ShouldEqual, model.RelationPre)
				So(wf.Items[1].RiskLevel.Valid, ShouldBeFalse)
				So(wf.Items[1].ModuleName(), ShouldEqual, model.UnspecifiedModule)
			})
		})

		Convey("When decoding a bare YAML list", func() {
			wf, err := loader.DecodeFile(write(t, dir, "2025-W15.yml", yamlWeek))

			Convey("Then the week comes from the file name", func() {
				So(err, ShouldBeNil)
				So(wf.Week, ShouldEqual, "2025-W15")
				So(wf.Items, ShouldHaveLength, 1)
				So(wf.Items[0].RiskLevel.Valid, ShouldBeFalse)
				So(*wf.Items[0].PlanPercent, ShouldEqual, 50)
			})
		})

		Convey("When decoding TOML", func() {
			wf, err := loader.DecodeFile(write(t, dir, "w16.toml", tomlWeek))

			Convey("Then tables and nested arrays are read", func() {
				So(err, ShouldBeNil)
				So(wf.Week, ShouldEqual, "2025-W16")
				So(wf.Items[0].ProgressPercent, ShouldEqual, 100)
				So(wf.Items[0].RiskLevel, ShouldResemble, model.Risk(1))
				So(wf.Items[0].Collaborators, ShouldResemble, []model.Collaborator{{Name: "cy", Relation: model.RelationPair}})
			})
		})

		Convey("When the extension is unknown", func() {
			_, err := loader.DecodeFile(write(t, dir, "notes.txt", "hello"))
			So(errors.Is(err, loader.ErrUnsupportedFormat), ShouldBeTrue)
		})

		Convey("When the content is malformed", func() {
			_, err := loader.DecodeFile(write(t, dir, "2025-W14.json", "{"))
			So(errors.Is(err, loader.ErrDecode), ShouldBeTrue)
		})

		Convey("When an item is invalid", func() {
			_, err := loader.DecodeFile(write(t, dir, "2025-W14.json", `[{"name": "ana", "project": "X", "feature": "F", "progress_percent": 120}]`))
			So(errors.Is(err, model.ErrInvalidItem), ShouldBeTrue)
		})
	})

	Convey("Given a decoded file", t, func() {
		wf := loader.WeekFile{Week: "2025-W14", Items: []model.SnapshotItem{{Name: "ana"}}}

		Convey("Then every batch gets its own submission id", func() {
			a, b := wf.Batch("file"), wf.Batch("file")
			So(a.SubmissionID, ShouldNotBeEmpty)
			So(a.SubmissionID, ShouldNotEqual, b.SubmissionID)
			So(a.Week, ShouldEqual, "2025-W14")
			So(a.Source, ShouldEqual, "file")
		})
	})
}

func TestLoadDir(t *testing.T) {
	Convey("Given a directory of snapshot files", t, func() {
		dir := t.TempDir()
		write(t, dir, "b.toml", tomlWeek)
		write(t, dir, "2025-W15.yaml", yamlWeek)
		write(t, dir, "a.json", jsonWeek)
		write(t, dir, "README.md", "# ignored")
		write(t, dir, ".2025-W17.json.swp", "ignored")
		So(os.Mkdir(filepath.Join(dir, "archive"), 0o755), ShouldBeNil)

		Convey("When loading it", func() {
			files, err := loader.LoadDir(dir)

			Convey("Then files are sorted by week", func() {
				So(err, ShouldBeNil)
				weeks := make([]string, len(files))
				for i, f := range files {
					weeks[i] = f.Week
				}
				So(weeks, ShouldResemble, []string{"2025-W14", "2025-W15", "2025-W16"})
			})
		})

		Convey("When two files declare the same week", func() {
			write(t, dir, "2025-W14.yaml", "week: 2025-W14\nitems: []\n")
			_, err := loader.LoadDir(dir)
			So(errors.Is(err, loader.ErrDuplicateWeek), ShouldBeTrue)
		})
	})

	Convey("Given a missing directory", t, func() {
		_, err := loader.LoadDir(filepath.Join(t.TempDir(), "missing"))
		So(err, ShouldNotBeNil)
	})
}

func TestWatcher(t *testing.T) {
	Convey("Given a watched directory", t, func() {
		dir := t.TempDir()
		w, err := loader.NewWatcher(dir, 20*time.Millisecond)
		So(err, ShouldBeNil)
		So(w.Start(), ShouldBeNil)
		defer func() { _ = w.Stop() }()

		Convey("When a snapshot file is written", func() {
			write(t, dir, "2025-W14.json", jsonWeek)
			write(t, dir, "ignored.txt", "x")

			Convey("Then one debounced change carries the decoded week", func() {
				ch := next(w)
				So(ch, ShouldNotBeNil)
				So(ch.Kind, ShouldEqual, loader.ChangeModified)
				So(ch.Week.Week, ShouldEqual, "2025-W14")
				So(strings.HasSuffix(ch.File, "2025-W14.json"), ShouldBeTrue)
			})
		})

		Convey("When a broken file is written", func() {
			write(t, dir, "2025-W14.json", "{")

			Convey("Then the change is reported invalid", func() {
				ch := next(w)
				So(ch, ShouldNotBeNil)
				So(ch.Kind, ShouldEqual, loader.ChangeInvalid)
				So(ch.Err, ShouldNotBeNil)
			})
		})
	})
}

func next(w *loader.Watcher) *loader.Change {
	select {
	case ch := <-w.Changes:
		return &ch
	case <-time.After(3 * time.Second):
		return nil
	}
}
