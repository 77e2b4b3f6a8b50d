package models

import (
	"math"
	"time"
)

// EventSample is one duration-bearing occurrence derived from a matched
// start/end record pair.
type EventSample struct {
	// ID identifies the entity the event belongs to (e.g. a request or
	// router id).
	ID string `json:"id"`

	// Start and End are the event boundary timestamps.
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`

	// MetadataKey/MetadataValue carry an optional pass-through annotation
	// (e.g. the parent router of an update event). They do not affect
	// duration computation.
	MetadataKey   string `json:"metadata_key,omitempty"`
	MetadataValue string `json:"metadata_value,omitempty"`
}

// Duration returns end minus start in seconds, rounded to two decimals.
func (s EventSample) Duration() float64 {
	return Round2(s.End.Sub(s.Start).Seconds())
}

// TopEvent is one entry of a top-N longest-events listing.
type TopEvent struct {
	ID       string  `json:"id" yaml:"id"`
	Duration float64 `json:"duration" yaml:"duration"`
	Start    string  `json:"start" yaml:"start"`
	End      string  `json:"end" yaml:"end"`

	// Metadata mirrors the sample's pass-through annotation, keyed by the
	// sample's metadata key.
	Metadata map[string]string `json:"metadata,omitempty" yaml:",inline,omitempty"`
}

// StatsSummary holds population statistics for a full set of event
// samples, independent of any top-N truncation.
type StatsSummary struct {
	Samples int     `json:"samples" yaml:"samples"`
	Min     float64 `json:"min" yaml:"min"`
	Max     float64 `json:"max" yaml:"max"`
	Avg     float64 `json:"avg" yaml:"avg"`
	Stdev   float64 `json:"stdev" yaml:"stdev"`
}

// Round2 rounds v to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
