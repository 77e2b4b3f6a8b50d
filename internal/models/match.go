// Package models contains the core data structures for snapdiag.
package models

import (
	"encoding/json"
	"sort"
)

// Granularity selects how tallied occurrences are bucketed.
type Granularity string

const (
	// GranularityDate buckets occurrences by date (YYYY-MM-DD).
	GranularityDate Granularity = "date"
	// GranularityTime buckets occurrences by date plus HH:MM.
	GranularityTime Granularity = "time"
)

// ParseGranularity converts a string to Granularity.
func ParseGranularity(s string) Granularity {
	switch s {
	case "time", "TIME":
		return GranularityTime
	default:
		return GranularityDate
	}
}

// MatchRecord is a single hit returned by the file search engine.
type MatchRecord struct {
	// Tag identifies which search definition produced the match.
	Tag string `json:"tag"`

	// Groups holds the captured groups in expression order. Group 0 is
	// the first capture group, not the whole match.
	Groups []string `json:"groups"`

	// SourceID identifies the file the match came from. Resolve it to a
	// path with Results.ResolveSourceID.
	SourceID int `json:"source_id"`
}

// Group returns the capture group at idx, or "" if out of range.
func (r MatchRecord) Group(idx int) string {
	if idx < 0 || idx >= len(r.Groups) {
		return ""
	}
	return r.Groups[idx]
}

// TallyTable holds aggregated counts for one logical check: event name to
// an ordered bucket-key to count mapping.
type TallyTable map[string]*BucketCounts

// BucketCounts is an ordered mapping from bucket key (date or date_HH:MM)
// to occurrence count. Keys are unique and sorted lexicographically
// ascending, which for ISO-style date strings is chronological.
type BucketCounts struct {
	Keys   []string
	Counts map[string]int
}

// Add increments the count for key, inserting it in sorted position on
// first use.
func (b *BucketCounts) Add(key string) {
	if b.Counts == nil {
		b.Counts = make(map[string]int)
	}
	if _, ok := b.Counts[key]; !ok {
		i := sort.SearchStrings(b.Keys, key)
		b.Keys = append(b.Keys, "")
		copy(b.Keys[i+1:], b.Keys[i:])
		b.Keys[i] = key
	}
	b.Counts[key]++
}

// Total returns the sum of all bucket counts.
func (b *BucketCounts) Total() int {
	n := 0
	for _, c := range b.Counts {
		n += c
	}
	return n
}

// MarshalYAML renders buckets as a plain key-to-count mapping. yaml.v3
// sorts string map keys, which preserves the bucket order.
func (b *BucketCounts) MarshalYAML() (interface{}, error) {
	return b.Counts, nil
}

// MarshalJSON renders buckets as a plain key-to-count mapping; like
// yaml.v3, encoding/json emits string map keys sorted.
func (b *BucketCounts) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.Counts)
}

// UnmarshalJSON rebuilds the sorted key slice from the flat mapping.
func (b *BucketCounts) UnmarshalJSON(data []byte) error {
	if err := json.Unmarshal(data, &b.Counts); err != nil {
		return err
	}
	b.Keys = b.Keys[:0]
	for k := range b.Counts {
		b.Keys = append(b.Keys, k)
	}
	sort.Strings(b.Keys)
	return nil
}
