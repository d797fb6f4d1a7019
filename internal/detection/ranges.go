package detection

import (
	"fmt"
	"sort"
	"time"
)

// DateRange is an inclusive span of calendar days, held as UTC midnights.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// String formats the range as "2006-01-02..2006-01-02"
func (r DateRange) String() string {
	return fmt.Sprintf("%s..%s", r.Start.Format("2006-01-02"), r.End.Format("2006-01-02"))
}

// Days returns the number of calendar days the range covers
func (r DateRange) Days() int {
	return int(r.End.Sub(r.Start).Hours()/24) + 1
}

// DateOf truncates an instant to its UTC calendar day
func DateOf(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// AllocateDateRanges computes the ordered, non-overlapping spans of the full
// range not yet covered by any excluded range. Excluded ranges come from
// existing trips regardless of status; re-running the allocator after trips
// were persisted is what keeps retried detection runs from producing
// duplicates. Overlapping exclusions are tolerated, the sweep cursor never
// moves backward. An empty result means there is nothing left to scan.
func AllocateDateRanges(full DateRange, excluded []DateRange) []DateRange {
	sorted := make([]DateRange, len(excluded))
	copy(sorted, excluded)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Start.Before(sorted[j].Start)
	})

	var out []DateRange
	cursor := full.Start

	for _, ex := range sorted {
		if cursor.After(full.End) {
			break
		}
		if ex.End.Before(cursor) {
			continue
		}
		if ex.Start.After(cursor) {
			gapEnd := ex.Start.AddDate(0, 0, -1)
			if gapEnd.After(full.End) {
				gapEnd = full.End
			}
			if !gapEnd.Before(cursor) {
				out = append(out, DateRange{Start: cursor, End: gapEnd})
			}
		}
		next := ex.End.AddDate(0, 0, 1)
		if next.After(cursor) {
			cursor = next
		}
	}

	if !cursor.After(full.End) {
		out = append(out, DateRange{Start: cursor, End: full.End})
	}

	return out
}
