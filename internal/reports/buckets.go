package reports

import (
	"sort"
	"time"
)

// Bucket is one time slot of a report series. Buckets with no activity
// are kept and serialize with zeroed sums.
type Bucket struct {
	Label  string
	Start  time.Time
	Totals *Totals
}

const (
	hourLabelLayout = "03:04:PM"
	dayLabelLayout  = "2006-01-02"
)

// TimeBuckets groups facts into a zero-filled series. A window covering
// a single calendar day produces 24 hourly buckets; anything longer
// produces one bucket per calendar day, ascending.
func TimeBuckets(facts []LineFact, filters Filters) []Bucket {
	if filters.SingleDay() {
		return hourlyBuckets(facts, filters.After)
	}
	return dailyBuckets(facts, filters.After, filters.Before)
}

func hourlyBuckets(facts []LineFact, day time.Time) []Bucket {
	day = time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	buckets := make([]Bucket, 24)
	for h := 0; h < 24; h++ {
		start := day.Add(time.Duration(h) * time.Hour)
		buckets[h] = Bucket{Label: start.Format(hourLabelLayout), Start: start, Totals: NewTotals()}
	}
	for _, f := range facts {
		ts := f.Timestamp.In(day.Location())
		if ts.Before(day) || !ts.Before(day.AddDate(0, 0, 1)) {
			continue
		}
		buckets[ts.Hour()].Totals.Add(f)
	}
	return buckets
}

func dailyBuckets(facts []LineFact, after, before time.Time) []Bucket {
	if after.IsZero() || before.IsZero() || !after.Before(before) {
		return nil
	}
	start := time.Date(after.Year(), after.Month(), after.Day(), 0, 0, 0, 0, after.Location())
	end := time.Date(before.Year(), before.Month(), before.Day(), 0, 0, 0, 0, before.Location())

	var buckets []Bucket
	index := make(map[string]int)
	for day := start; day.Before(end); day = day.AddDate(0, 0, 1) {
		label := day.Format(dayLabelLayout)
		index[label] = len(buckets)
		buckets = append(buckets, Bucket{Label: label, Start: day, Totals: NewTotals()})
	}
	for _, f := range facts {
		label := f.Timestamp.In(after.Location()).Format(dayLabelLayout)
		if i, ok := index[label]; ok {
			buckets[i].Totals.Add(f)
		}
	}
	return buckets
}

// Group is one categorical slice of a report, keyed by a dimension
// value. Zero-activity groups never appear; callers omit rather than
// zero-fill categorical breakdowns.
type Group struct {
	Key    int64
	Label  string
	Totals *Totals

	order int
}

// groupSet accumulates facts by dimension key, remembering first-seen
// order for stable tie-breaks.
type groupSet struct {
	groups map[int64]*Group
}

func newGroupSet() *groupSet {
	return &groupSet{groups: make(map[int64]*Group)}
}

func (s *groupSet) add(key int64, label string, f LineFact) {
	g, ok := s.groups[key]
	if !ok {
		g = &Group{Key: key, Label: label, Totals: NewTotals(), order: len(s.groups)}
		s.groups[key] = g
	}
	if g.Label == "" && label != "" {
		g.Label = label
	}
	g.Totals.Add(f)
}

// sorted returns groups ordered descending by net sales, ties broken by
// first-seen order.
func (s *groupSet) sorted() []Group {
	out := make([]Group, 0, len(s.groups))
	for _, g := range s.groups {
		out = append(out, *g)
	}
	sort.SliceStable(out, func(i, j int) bool {
		cmp := out[i].Totals.NetSales().Cmp(out[j].Totals.NetSales())
		if cmp != 0 {
			return cmp > 0
		}
		return out[i].order < out[j].order
	})
	return out
}

// GroupBy folds facts into categorical groups using the supplied key
// and label extractors. Facts mapping to a zero key are skipped.
func GroupBy(facts []LineFact, key func(LineFact) int64, label func(LineFact) string) []Group {
	set := newGroupSet()
	for _, f := range facts {
		k := key(f)
		if k == 0 {
			continue
		}
		set.add(k, label(f), f)
	}
	return set.sorted()
}
