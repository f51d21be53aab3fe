package continuity

import (
	"cmp"
	"slices"

	"github.com/okian/workmap/internal/domain/model"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Result links one person's item in the current week with the same person's item
// for the same feature in the previous and next weeks.
type Result struct {
	Key           model.Key           `json:"key"`
	Person        string              `json:"person"`
	PrevWeek      *model.SnapshotItem `json:"prev_week,omitempty"`
	CurrentWeek   model.SnapshotItem  `json:"current_week"`
	NextWeek      *model.SnapshotItem `json:"next_week,omitempty"`
	PrevToCurrent Status              `json:"prev_to_current"`
	CurrentToNext Status              `json:"current_to_next"`
}

// Score is the combined ordering score of both comparisons; lower needs more attention.
func (r Result) Score() int {
	return r.PrevToCurrent.Score() + r.CurrentToNext.Score()
}

type identity struct {
	person string
	key    model.Key
}

func index(items []model.SnapshotItem) map[identity]model.SnapshotItem {
	m := make(map[identity]model.SnapshotItem, len(items))
	for _, it := range items {
		m[identity{person: it.Name, key: it.Key()}] = it
	}
	return m
}

// Analyze compares every item of the current week with the neighbouring weeks.
// prev and next may be nil when those weeks are missing. Items are matched
// across weeks by person and Key, so two people on the same feature are tracked
// as separate results. Results are sorted by Score, then by person name using
// locale-aware collation, then by key.
func Analyze(prev, current, next []model.SnapshotItem) []Result {
	prevIdx, curIdx, nextIdx := index(prev), index(current), index(next)

	results := make([]Result, 0, len(curIdx))
	for id, cur := range curIdx {
		r := Result{
			Key:           id.key,
			Person:        id.person,
			CurrentWeek:   cur,
			PrevToCurrent: StatusUnknown,
			CurrentToNext: StatusUnknown,
		}
		if p, ok := prevIdx[id]; ok {
			r.PrevWeek = &p
			r.PrevToCurrent = Classify(p.NextWeekTasks, cur.PastWeekTasks)
		}
		if n, ok := nextIdx[id]; ok {
			r.NextWeek = &n
			r.CurrentToNext = Classify(cur.NextWeekTasks, n.PastWeekTasks)
		}
		results = append(results, r)
	}

	col := collate.New(language.Und)
	slices.SortFunc(results, func(a, b Result) int {
		if c := cmp.Compare(a.Score(), b.Score()); c != 0 {
			return c
		}
		if c := col.CompareString(a.Person, b.Person); c != 0 {
			return c
		}
		return cmp.Compare(a.Key.String(), b.Key.String())
	})
	return results
}

// Summary counts the statuses of a result set, both directions together.
func Summary(results []Result) map[Status]int {
	out := map[Status]int{
		StatusConnected: 0,
		StatusPartial:   0,
		StatusBroken:    0,
		StatusUnknown:   0,
	}
	for _, r := range results {
		out[r.PrevToCurrent]++
		out[r.CurrentToNext]++
	}
	return out
}
