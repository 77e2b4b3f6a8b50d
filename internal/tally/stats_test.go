package tally

import (
	"reflect"
	"testing"
	"time"

	"github.com/good-yellow-bee/snapdiag/internal/models"
)

func sample(id, start, end string) models.EventSample {
	st, err := time.Parse(sampleLayouts[0], start)
	if err != nil {
		panic(err)
	}
	en, err := time.Parse(sampleLayouts[0], end)
	if err != nil {
		panic(err)
	}
	return models.EventSample{ID: id, Start: st, End: en}
}

func TestComputeStats(t *testing.T) {
	samples := []models.EventSample{
		sample("r-1", "2022-02-10 16:09:22.679000", "2022-02-10 16:09:22.693000"),
		sample("r-2", "2022-02-10 16:09:22.736000", "2022-02-10 16:09:22.746000"),
		sample("r-3", "2022-02-10 16:09:22.780000", "2022-02-10 16:09:22.796000"),
		sample("r-4", "2022-02-10 16:09:22.830000", "2022-02-10 16:09:22.852000"),
		sample("r-5", "2022-02-10 16:09:22.903000", "2022-02-10 16:09:22.919000"),
	}

	top, stats := ComputeStats(samples, 5)
	if stats == nil {
		t.Fatalf("ComputeStats() stats = nil")
	}
	if stats.Samples != 5 {
		t.Errorf("Samples = %d, want 5", stats.Samples)
	}
	if stats.Min != 0.01 {
		t.Errorf("Min = %v, want 0.01", stats.Min)
	}
	if stats.Max != 0.02 {
		t.Errorf("Max = %v, want 0.02", stats.Max)
	}
	if stats.Avg != 0.02 {
		t.Errorf("Avg = %v, want 0.02", stats.Avg)
	}
	if stats.Stdev != 0.01 {
		t.Errorf("Stdev = %v, want 0.01", stats.Stdev)
	}

	if len(top) != 5 {
		t.Fatalf("len(top) = %d, want 5", len(top))
	}
	// Longest first; r-3, r-4 and r-5 all round to 0.02 so the tie
	// falls back to id ascending.
	if top[0].ID != "r-3" {
		t.Errorf("top[0].ID = %q, want r-3", top[0].ID)
	}
	for i := 1; i < len(top); i++ {
		if top[i].Duration > top[i-1].Duration {
			t.Errorf("top not sorted descending at %d: %v > %v", i, top[i].Duration, top[i-1].Duration)
		}
	}
	if top[0].Start != "2022-02-10 16:09:22.780000" {
		t.Errorf("top[0].Start = %q", top[0].Start)
	}
}

func TestComputeStatsTruncation(t *testing.T) {
	samples := []models.EventSample{
		sample("a", "2022-02-10 10:00:00.000000", "2022-02-10 10:00:01.000000"),
		sample("b", "2022-02-10 10:00:00.000000", "2022-02-10 10:00:03.000000"),
		sample("c", "2022-02-10 10:00:00.000000", "2022-02-10 10:00:02.000000"),
	}

	top, stats := ComputeStats(samples, 2)
	if len(top) != 2 {
		t.Fatalf("len(top) = %d, want 2", len(top))
	}
	if top[0].ID != "b" || top[1].ID != "c" {
		t.Errorf("top ids = %q, %q, want b, c", top[0].ID, top[1].ID)
	}
	// Stats cover the full population even when top-N truncates.
	if stats.Samples != 3 {
		t.Errorf("Samples = %d, want 3", stats.Samples)
	}
	if stats.Min != 1 {
		t.Errorf("Min = %v, want 1", stats.Min)
	}

	// Population smaller than N: all samples listed.
	top, _ = ComputeStats(samples, 5)
	if len(top) != 3 {
		t.Errorf("len(top) = %d, want 3", len(top))
	}
}

func TestComputeStatsEmpty(t *testing.T) {
	top, stats := ComputeStats(nil, 5)
	if top != nil || stats != nil {
		t.Errorf("ComputeStats(nil) = %v, %v, want nil, nil", top, stats)
	}
}

func TestComputeStatsMetadata(t *testing.T) {
	s := sample("p-1", "2022-02-10 10:00:00.000000", "2022-02-10 10:00:01.000000")
	s.MetadataKey = "router"
	s.MetadataValue = "r-9"

	top, _ := ComputeStats([]models.EventSample{s}, 5)
	want := map[string]string{"router": "r-9"}
	if !reflect.DeepEqual(top[0].Metadata, want) {
		t.Errorf("Metadata = %v, want %v", top[0].Metadata, want)
	}
}

func TestPairSamples(t *testing.T) {
	starts := []models.MatchRecord{
		rec("s", "2022-02-10", "16:09:22.679000", "r-1"),
		rec("s", "2022-02-10", "16:09:25.000000", "r-1"),
		rec("s", "2022-02-10", "16:09:22.736000", "r-2"),
		rec("s", "2022-02-10", "16:09:30.000000", "r-orphan"),
	}
	ends := []models.MatchRecord{
		rec("e", "2022-02-10", "16:09:22.693000", "r-1"),
		rec("e", "2022-02-10", "16:09:22.746000", "r-2"),
		rec("e", "2022-02-10", "16:09:22.000000", "r-unstarted"),
	}

	samples := PairSamples(starts, ends, DefaultPairIndices())
	if len(samples) != 2 {
		t.Fatalf("len(samples) = %d, want 2: %v", len(samples), samples)
	}
	if samples[0].ID != "r-1" || samples[1].ID != "r-2" {
		t.Errorf("sample ids = %q, %q, want r-1, r-2", samples[0].ID, samples[1].ID)
	}
	// Repeated start keeps the earliest occurrence.
	if got := samples[0].Duration(); got != 0.01 {
		t.Errorf("r-1 duration = %v, want 0.01", got)
	}
}

func TestPairSamplesReversed(t *testing.T) {
	starts := []models.MatchRecord{
		rec("s", "2022-02-10", "16:09:25.000000", "r-1"),
	}
	ends := []models.MatchRecord{
		rec("e", "2022-02-10", "16:09:22.000000", "r-1"),
	}
	if samples := PairSamples(starts, ends, DefaultPairIndices()); len(samples) != 0 {
		t.Errorf("PairSamples() kept reversed pair: %v", samples)
	}
}

func TestPairSamplesMetadata(t *testing.T) {
	idx := DefaultPairIndices()
	idx.Metadata = 3
	idx.MetadataKey = "router"

	starts := []models.MatchRecord{
		rec("s", "2022-02-10", "16:09:22.679000", "p-1", "r-9"),
	}
	ends := []models.MatchRecord{
		rec("e", "2022-02-10", "16:09:22.693000", "p-1"),
	}

	samples := PairSamples(starts, ends, idx)
	if len(samples) != 1 {
		t.Fatalf("len(samples) = %d, want 1", len(samples))
	}
	if samples[0].MetadataKey != "router" || samples[0].MetadataValue != "r-9" {
		t.Errorf("metadata = %q=%q, want router=r-9", samples[0].MetadataKey, samples[0].MetadataValue)
	}
}
