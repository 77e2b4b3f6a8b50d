// Package tally turns unordered match record streams into deterministic,
// sorted, bucketed statistics: occurrence tallies grouped by event name
// and date (or date+time), and duration statistics for start/end event
// pairs.
package tally

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/good-yellow-bee/snapdiag/internal/models"
)

// Indices designates which capture groups of a match record carry the
// fields the aggregator needs.
type Indices struct {
	Date int
	Time int
	Name int
}

// DefaultIndices matches the conventional expression layout: group 1 is
// the date, group 2 the time of day, group 3 the event/exception name.
func DefaultIndices() Indices {
	return Indices{Date: 0, Time: 1, Name: 2}
}

// timePrefix extracts HH:MM from the start of a longer time-of-day
// string; anything after the pair is ignored.
var timePrefix = regexp.MustCompile(`^(\d+:\d+)`)

// Aggregate groups records by event name and buckets occurrences by date
// or date+HH:MM depending on granularity. Bucket keys within each event
// are unique and sorted ascending. Returns nil when no records were
// supplied so callers can tell "no data" from "zero occurrences".
//
// A time capture group that does not start with HH:MM is a defect in the
// search definition and panics rather than being silently swallowed.
func Aggregate(records []models.MatchRecord, granularity models.Granularity, idx Indices) models.TallyTable {
	if len(records) == 0 {
		return nil
	}

	table := make(models.TallyTable)
	for _, rec := range records {
		// Exception names are sometimes logged quoted.
		name := strings.Trim(rec.Group(idx.Name), "'")

		key := rec.Group(idx.Date)
		if granularity == models.GranularityTime {
			m := timePrefix.FindStringSubmatch(rec.Group(idx.Time))
			if m == nil {
				panic(fmt.Sprintf("tally: record for tag %q has unparseable time group %q",
					rec.Tag, rec.Group(idx.Time)))
			}
			key = key + "_" + m[1]
		}

		buckets, ok := table[name]
		if !ok {
			buckets = &models.BucketCounts{}
			table[name] = buckets
		}
		buckets.Add(key)
	}
	return table
}

// AggregateByEntity buckets records by date and then by an entity capture
// group (e.g. failovers per load balancer per day). Returns nil when no
// records were supplied. Rendering sorts both levels of keys.
func AggregateByEntity(records []models.MatchRecord, dateIdx, entityIdx int) map[string]map[string]int {
	if len(records) == 0 {
		return nil
	}

	out := make(map[string]map[string]int)
	for _, rec := range records {
		date := rec.Group(dateIdx)
		entity := rec.Group(entityIdx)
		if out[date] == nil {
			out[date] = make(map[string]int)
		}
		out[date][entity]++
	}
	return out
}
