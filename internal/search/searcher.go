package search

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"runtime"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/good-yellow-bee/snapdiag/internal/models"
)

// maxLineSize bounds the scanner buffer. Log lines carrying YAML or JSON
// payloads can be long but a line beyond this is cruft.
const maxLineSize = 1024 * 1024

// FileSearcher registers search definitions against files and executes
// them all in a single parallel pass.
type FileSearcher struct {
	workers    int
	constraint *SinceConstraint

	// defs per absolute file path, in registration order.
	defs map[string][]Def
}

// NewFileSearcher creates a searcher. A nil constraint disables
// time-window filtering; workers <= 0 selects NumCPU.
func NewFileSearcher(constraint *SinceConstraint, workers int) *FileSearcher {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &FileSearcher{
		workers:    workers,
		constraint: constraint,
		defs:       make(map[string][]Def),
	}
}

// Add compiles def and registers it against the given file paths.
func (s *FileSearcher) Add(def Def, paths ...string) error {
	if err := def.Compile(); err != nil {
		return err
	}
	for _, p := range paths {
		s.defs[p] = append(s.defs[p], def)
	}
	return nil
}

// Run executes all registered searches and returns the collected match
// records. Files that cannot be opened are skipped; a snapshot is allowed
// to be partial.
func (s *FileSearcher) Run(ctx context.Context) (*Results, error) {
	paths := make([]string, 0, len(s.defs))
	for p := range s.defs {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	results := newResults(paths)
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for i, path := range paths {
		sourceID, path := i, path
		g.Go(func() error {
			recs, err := s.searchFile(ctx, path, sourceID)
			if err != nil {
				return err
			}
			mu.Lock()
			for _, rec := range recs {
				results.add(rec)
			}
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (s *FileSearcher) searchFile(ctx context.Context, path string, sourceID int) ([]models.MatchRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		// Missing or unreadable files degrade to no matches.
		return nil, nil
	}
	defer f.Close()

	defs := s.defs[path]
	var recs []models.MatchRecord

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	var lines int64
	for scanner.Scan() {
		lines++
		if lines%10000 == 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			default:
			}
		}

		line := scanner.Text()
		// The constraint verdict is per-line, so evaluate it at most once
		// no matter how many defs target this file.
		allowed, allowedKnown := true, false
		for _, def := range defs {
			if def.hint != nil && !def.hint.MatchString(line) {
				continue
			}
			if def.AllowConstraint && s.constraint != nil {
				if !allowedKnown {
					allowed = s.constraint.Allows(line)
					allowedKnown = true
				}
				if !allowed {
					continue
				}
			}
			m := def.compiled.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			recs = append(recs, models.MatchRecord{
				Tag:      def.Tag,
				Groups:   m[1:],
				SourceID: sourceID,
			})
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan %s: %w", path, err)
	}
	return recs, nil
}
