package search

import (
	"github.com/good-yellow-bee/snapdiag/internal/models"
)

// Results is the unordered collection of match records produced by one
// searcher run, retrievable by tag.
type Results struct {
	byTag   map[string][]models.MatchRecord
	sources []string
}

func newResults(sources []string) *Results {
	return &Results{
		byTag:   make(map[string][]models.MatchRecord),
		sources: sources,
	}
}

func (r *Results) add(rec models.MatchRecord) {
	r.byTag[rec.Tag] = append(r.byTag[rec.Tag], rec)
}

// FindByTag returns all match records for tag, nil when the tag produced
// no hits.
func (r *Results) FindByTag(tag string) []models.MatchRecord {
	return r.byTag[tag]
}

// Matches returns the number of match records for tag.
func (r *Results) Matches(tag string) int {
	return len(r.byTag[tag])
}

// Tags returns the tags that produced at least one match.
func (r *Results) Tags() []string {
	tags := make([]string, 0, len(r.byTag))
	for tag := range r.byTag {
		tags = append(tags, tag)
	}
	return tags
}

// Len returns the total number of match records.
func (r *Results) Len() int {
	n := 0
	for _, recs := range r.byTag {
		n += len(recs)
	}
	return n
}

// ResolveSourceID maps a match record's source id back to the file path
// it was found in.
func (r *Results) ResolveSourceID(id int) string {
	if id < 0 || id >= len(r.sources) {
		return ""
	}
	return r.sources[id]
}
