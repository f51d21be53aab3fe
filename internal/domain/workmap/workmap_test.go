package workmap_test

import (
	"math/rand"
	"testing"

	"github.com/okian/workmap/internal/domain/model"
	"github.com/okian/workmap/internal/domain/workmap"
	. "github.com/smartystreets/goconvey/convey"
)

func sampleItems() []model.SnapshotItem {
	return []model.SnapshotItem{
		{Name: "carol", Project: "Y", Module: "Api", Feature: "Search", ProgressPercent: 10},
		{Name: "alice", Project: "X", Module: "Core", Feature: "Login", ProgressPercent: 80, RiskLevel: model.Risk(2)},
		{Name: "bob", Project: "X", Module: "Core", Feature: "Logout", ProgressPercent: 40},
		{Name: "dave", Project: "X", Feature: "Docs", ProgressPercent: 55, RiskLevel: model.Risk(0)},
		{Name: "erin", Project: "X", Module: "Core", Feature: "Login", ProgressPercent: 60, RiskLevel: model.Risk(1)},
	}
}

func shape(projects []workmap.ProjectNode) []string {
	var out []string
	for _, p := range projects {
		out = append(out, "P:"+p.Name)
		for _, m := range p.Modules {
			out = append(out, "M:"+m.Name)
			for _, f := range m.Features {
				out = append(out, "F:"+f.Name)
			}
		}
	}
	return out
}

func TestBuild(t *testing.T) {
	Convey("Given a flat list of snapshot items", t, func() {
		items := sampleItems()

		Convey("When building the hierarchy", func() {
			projects := workmap.Build(items)

			Convey("Then projects, modules and features are sorted by name", func() {
				So(shape(projects), ShouldResemble, []string{
					"P:X", "M:(unspecified)", "F:Docs", "M:Core", "F:Login", "F:Logout",
					"P:Y", "M:Api", "F:Search",
				})
			})

			Convey("Then every level holds exactly the items of its subtree", func() {
				total := 0
				for _, p := range projects {
					moduleSum := 0
					for _, m := range p.Modules {
						featureSum := 0
						for _, f := range m.Features {
							featureSum += len(f.Items)
						}
						So(featureSum, ShouldEqual, len(m.Items))
						moduleSum += len(m.Items)
					}
					So(moduleSum, ShouldEqual, len(p.Items))
					total += len(p.Items)
				}
				So(total, ShouldEqual, len(items))
				So(workmap.ItemCount(projects), ShouldEqual, len(items))
			})

			Convey("Then items keep encounter order", func() {
				login := projects[0].Modules[1].Features[0]
				So(login.Items[0].Name, ShouldEqual, "alice")
				So(login.Items[1].Name, ShouldEqual, "erin")
			})
		})

		Convey("When the input is permuted", func() {
			rng := rand.New(rand.NewSource(7))
			shuffled := append([]model.SnapshotItem(nil), items...)
			rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

			Convey("Then the tree shape is identical", func() {
				So(shape(workmap.Build(shuffled)), ShouldResemble, shape(workmap.Build(items)))
			})
		})

		Convey("When the input is empty", func() {
			projects := workmap.Build(nil)

			Convey("Then the forest is empty", func() {
				So(projects, ShouldNotBeNil)
				So(projects, ShouldBeEmpty)
			})
		})
	})
}

func TestMetrics(t *testing.T) {
	Convey("Given a module with two features", t, func() {
		items := []model.SnapshotItem{
			{Project: "X", Module: "Core", Feature: "Login", ProgressPercent: 80, RiskLevel: model.Risk(2)},
			{Project: "X", Module: "Core", Feature: "Logout", ProgressPercent: 40},
		}
		core := workmap.Build(items)[0].Modules[0]

		Convey("Then module progress is the mean of feature progress", func() {
			m := workmap.ModuleMetrics(core)
			So(m.Progress, ShouldEqual, 60)
			So(m.RiskLevel, ShouldResemble, model.Risk(2))
		})
	})

	Convey("Given features of different sizes", t, func() {
		items := []model.SnapshotItem{
			{Project: "X", Module: "M", Feature: "A", ProgressPercent: 100},
			{Project: "X", Module: "M", Feature: "A", ProgressPercent: 100},
			{Project: "X", Module: "M", Feature: "A", ProgressPercent: 100},
			{Project: "X", Module: "M", Feature: "B", ProgressPercent: 0},
		}
		project := workmap.Build(items)[0]

		Convey("Then the rollup is not weighted by item count", func() {
			So(workmap.ModuleMetrics(project.Modules[0]).Progress, ShouldEqual, 50)
			So(workmap.ProjectMetrics(project).Progress, ShouldEqual, 50)
		})
	})

	Convey("Given items without any risk assessment", t, func() {
		f := workmap.FeatureNode{Name: "F", Items: []model.SnapshotItem{
			{ProgressPercent: 33},
			{ProgressPercent: 34},
		}}

		Convey("Then the feature risk is null rather than zero", func() {
			m := workmap.FeatureMetrics(f)
			So(m.RiskLevel.Valid, ShouldBeFalse)
			So(m.Progress, ShouldEqual, 34)
		})

		Convey("And a module of such features also has no risk", func() {
			m := workmap.ModuleMetrics(workmap.ModuleNode{Features: []workmap.FeatureNode{f}})
			So(m.RiskLevel.Valid, ShouldBeFalse)
		})
	})

	Convey("Given a zero risk next to a null one", t, func() {
		f := workmap.FeatureNode{Items: []model.SnapshotItem{{RiskLevel: model.Risk(0)}, {}}}

		Convey("Then zero is kept as recorded data", func() {
			So(workmap.FeatureMetrics(f).RiskLevel, ShouldResemble, model.Risk(0))
		})
	})

	Convey("Given past-week tasks", t, func() {
		f := workmap.FeatureNode{Items: []model.SnapshotItem{
			{PastWeekTasks: []string{"ship login 100%", "write docs 50%"}},
			{PastWeekTasks: []string{"migrate db (100%)"}},
		}}

		Convey("Then tasks containing 100% count as completed", func() {
			m := workmap.FeatureMetrics(f)
			So(m.TaskCount, ShouldEqual, 3)
			So(m.CompletedTaskCount, ShouldEqual, 2)
		})
	})

	Convey("Given empty nodes", t, func() {
		Convey("Then metrics are zero valued", func() {
			So(workmap.FeatureMetrics(workmap.FeatureNode{}), ShouldResemble, workmap.Metrics{})
			So(workmap.ModuleMetrics(workmap.ModuleNode{}), ShouldResemble, workmap.Metrics{})
			So(workmap.ProjectMetrics(workmap.ProjectNode{}), ShouldResemble, workmap.Metrics{})
		})
	})
}

func TestSummarize(t *testing.T) {
	Convey("Given a built forest", t, func() {
		projects := workmap.Build(sampleItems())

		Convey("When summarizing", func() {
			summary := workmap.Summarize(projects)

			Convey("Then every level carries its metrics", func() {
				So(len(summary), ShouldEqual, 2)
				x := summary[0]
				So(x.Name, ShouldEqual, "X")
				So(x.Modules[1].Name, ShouldEqual, "Core")
				So(x.Modules[1].Features[0].Metrics.Progress, ShouldEqual, 70)
				So(x.Modules[1].Metrics.Progress, ShouldEqual, 55)
				So(x.Modules[1].Metrics.RiskLevel, ShouldResemble, model.Risk(2))
				So(x.Metrics.Progress, ShouldEqual, 55)
			})
		})
	})
}
