package model_test

import (
	"errors"
	"strings"
	"testing"

	model "github.com/okian/workmap/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestBatch(t *testing.T) {
	convey.Convey("Given week labels", t, func() {
		convey.So(model.ValidateWeek("2025-W14"), convey.ShouldBeNil)
		convey.So(model.ValidateWeek("sprint-7"), convey.ShouldBeNil)

		for _, bad := range []string{"", "2025 W14", "../etc", `a\b`, strings.Repeat("w", 65)} {
			err := model.ValidateWeek(bad)
			convey.So(errors.Is(err, model.ErrInvalidWeek), convey.ShouldBeTrue)
		}
	})

	convey.Convey("Given a batch", t, func() {
		b := model.Batch{
			SubmissionID: "sub-1",
			Week:         "2025-W14",
			Items: []model.SnapshotItem{
				{Name: "ana", Project: "X", Feature: "Login", ProgressPercent: 40},
			},
		}

		convey.Convey("Then a well formed batch validates", func() {
			convey.So(b.Validate(), convey.ShouldBeNil)
		})

		convey.Convey("Then an empty batch validates", func() {
			b.Items = nil
			convey.So(b.Validate(), convey.ShouldBeNil)
		})

		convey.Convey("Then an invalid item names its position", func() {
			b.Items = append(b.Items, model.SnapshotItem{Name: "bo", Project: "X"})
			err := b.Validate()
			convey.So(errors.Is(err, model.ErrInvalidItem), convey.ShouldBeTrue)
			convey.So(err.Error(), convey.ShouldStartWith, "item 1:")
		})

		convey.Convey("Then an invalid week is rejected first", func() {
			b.Week = ""
			convey.So(errors.Is(b.Validate(), model.ErrInvalidWeek), convey.ShouldBeTrue)
		})
	})
}
