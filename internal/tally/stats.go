package tally

import (
	"math"
	"sort"
	"time"

	"github.com/good-yellow-bee/snapdiag/internal/models"
)

// Timestamp layouts for event start/end capture groups.
var sampleLayouts = []string{
	"2006-01-02 15:04:05.000000",
	"2006-01-02 15:04:05",
}

// ComputeStats returns the top-N longest samples (descending by duration,
// ties broken by entity id ascending) and summary statistics computed
// over the entire sample population, independent of the truncation.
// Both are absent when the sample set is empty: no events means nothing
// to report, not a zero-valued finding.
func ComputeStats(samples []models.EventSample, topN int) ([]models.TopEvent, *models.StatsSummary) {
	if len(samples) == 0 {
		return nil, nil
	}

	durations := make([]float64, len(samples))
	for i, s := range samples {
		durations[i] = s.Duration()
	}

	summary := &models.StatsSummary{
		Samples: len(samples),
		Min:     durations[0],
		Max:     durations[0],
	}
	var sum float64
	for _, d := range durations {
		sum += d
		if d < summary.Min {
			summary.Min = d
		}
		if d > summary.Max {
			summary.Max = d
		}
	}
	avg := sum / float64(len(durations))
	summary.Avg = models.Round2(avg)
	summary.Stdev = models.Round2(stdev(durations, avg))

	order := make([]int, len(samples))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		da, db := durations[order[a]], durations[order[b]]
		if da != db {
			return da > db
		}
		return samples[order[a]].ID < samples[order[b]].ID
	})
	if topN < len(order) {
		order = order[:topN]
	}

	top := make([]models.TopEvent, 0, len(order))
	for _, i := range order {
		s := samples[i]
		ev := models.TopEvent{
			ID:       s.ID,
			Duration: durations[i],
			Start:    s.Start.Format(sampleLayouts[0]),
			End:      s.End.Format(sampleLayouts[0]),
		}
		if s.MetadataKey != "" {
			ev.Metadata = map[string]string{s.MetadataKey: s.MetadataValue}
		}
		top = append(top, ev)
	}
	return top, summary
}

// stdev is the sample standard deviation; zero for fewer than two
// samples.
func stdev(durations []float64, avg float64) float64 {
	if len(durations) < 2 {
		return 0
	}
	var ss float64
	for _, d := range durations {
		ss += (d - avg) * (d - avg)
	}
	return math.Sqrt(ss / float64(len(durations)-1))
}

// PairIndices designates the capture groups used to pair start/end
// records into event samples.
type PairIndices struct {
	Date int
	Time int
	ID   int

	// Metadata, when >= 0, selects a capture group whose value is
	// attached to the sample under MetadataKey as a pass-through
	// annotation.
	Metadata    int
	MetadataKey string
}

// DefaultPairIndices matches the conventional event expression layout:
// date, time, then entity id, with no metadata annotation.
func DefaultPairIndices() PairIndices {
	return PairIndices{Date: 0, Time: 1, ID: 2, Metadata: -1}
}

// PairSamples joins start and end match records on their entity id
// capture group. An end without a preceding start, or a start that never
// completes, is discarded. Record timestamps that fail to parse are a
// defect in the search definition and the record is dropped.
func PairSamples(starts, ends []models.MatchRecord, idx PairIndices) []models.EventSample {
	open := make(map[string]models.EventSample)
	for _, rec := range starts {
		id := rec.Group(idx.ID)
		ts, ok := parseSampleTime(rec.Group(idx.Date), rec.Group(idx.Time))
		if !ok {
			continue
		}
		if _, exists := open[id]; exists {
			// Keep the earliest start for an id; repeated starts mean
			// the earlier attempt never logged completion.
			continue
		}
		s := models.EventSample{ID: id, Start: ts}
		if idx.Metadata >= 0 {
			s.MetadataKey = idx.MetadataKey
			s.MetadataValue = rec.Group(idx.Metadata)
		}
		open[id] = s
	}

	var samples []models.EventSample
	for _, rec := range ends {
		id := rec.Group(idx.ID)
		s, ok := open[id]
		if !ok {
			continue
		}
		ts, ok := parseSampleTime(rec.Group(idx.Date), rec.Group(idx.Time))
		if !ok || ts.Before(s.Start) {
			continue
		}
		s.End = ts
		samples = append(samples, s)
		delete(open, id)
	}

	sort.Slice(samples, func(a, b int) bool {
		return samples[a].ID < samples[b].ID
	})
	return samples
}

func parseSampleTime(date, tod string) (time.Time, bool) {
	for _, layout := range sampleLayouts {
		ts, err := time.Parse(layout, date+" "+tod)
		if err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}
