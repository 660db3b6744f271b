package mrp

import (
	"sort"
	"time"
)

// timeAxis returns the sorted, deduplicated union of event dates from
// demands and supplies: the per-item (or global) time axis the
// kernel never synthesizes daily buckets for — only event-bearing
// dates become buckets.
func timeAxis(demands []Demand, supplies []Supply) []time.Time {
	seen := make(map[time.Time]struct{}, len(demands)+len(supplies))
	for _, d := range demands {
		seen[d.RequiredDate] = struct{}{}
	}
	for _, s := range supplies {
		seen[s.AvailableDate] = struct{}{}
	}
	return sortedDates(seen)
}

// mergeAxes merges any number of date sets into one sorted,
// deduplicated axis.
func mergeAxes(axes ...[]time.Time) []time.Time {
	seen := make(map[time.Time]struct{})
	for _, axis := range axes {
		for _, d := range axis {
			seen[d] = struct{}{}
		}
	}
	return sortedDates(seen)
}

func sortedDates(seen map[time.Time]struct{}) []time.Time {
	out := make([]time.Time, 0, len(seen))
	for d := range seen {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

// BucketingStrategy selects a fixed-period bucketing scheme for the
// utility below. Not used by the kernel's default event-driven path.
type BucketingStrategy int

const (
	Daily BucketingStrategy = iota
	Weekly
	Monthly
)

// BucketsByStrategy returns a fixed-period sequence of bucket dates
// between start and end (inclusive), stepping by the given strategy.
// This is a utility for callers that want fixed-period reporting; the
// kernel itself buckets only on event dates (see timeAxis).
func BucketsByStrategy(start, end time.Time, strategy BucketingStrategy) []time.Time {
	if end.Before(start) {
		return nil
	}
	var out []time.Time
	cur := start
	for !cur.After(end) {
		out = append(out, cur)
		switch strategy {
		case Weekly:
			cur = cur.AddDate(0, 0, 7)
		case Monthly:
			cur = cur.AddDate(0, 1, 0)
		default:
			cur = cur.AddDate(0, 0, 1)
		}
	}
	return out
}
