package checks

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/good-yellow-bee/snapdiag/internal/cache"
	"github.com/good-yellow-bee/snapdiag/internal/models"
	"github.com/good-yellow-bee/snapdiag/internal/search"
	"github.com/good-yellow-bee/snapdiag/internal/snapshot"
	"github.com/good-yellow-bee/snapdiag/internal/tally"
)

// Options configures one engine run.
type Options struct {
	// Granularity selects date or date+time tally bucketing.
	Granularity models.Granularity

	// AllLogs widens log globs to include rotated files.
	AllLogs bool

	// Workers bounds parallel per-file searching (0 = auto).
	Workers int

	// Since optionally constrains searches to recent log lines.
	Since *search.SinceConstraint

	// ScratchDir is the run-scoped scratch location; it keys the cache
	// fingerprints.
	ScratchDir string
}

// Sections maps report section -> check name -> aggregation payload.
type Sections map[string]map[string]any

// Engine runs loaded check definitions against a snapshot.
type Engine struct {
	root  *snapshot.Root
	defs  []*Def
	store cache.Store
	opts  Options
}

// NewEngine creates an engine. store may be nil to disable memoization.
func NewEngine(root *snapshot.Root, defs []*Def, store cache.Store, opts Options) *Engine {
	return &Engine{root: root, defs: defs, store: store, opts: opts}
}

// Run registers all searches, executes them in one pass and aggregates
// per check. Checks whose logs are absent from the snapshot simply
// produce nothing. The returned results allow scenario predicates to
// consult raw hit counts.
func (e *Engine) Run(ctx context.Context) (Sections, *search.Results, error) {
	searcher := search.NewFileSearcher(e.opts.Since, e.opts.Workers)
	for _, def := range e.defs {
		if err := e.register(searcher, def); err != nil {
			return nil, nil, err
		}
	}

	results, err := searcher.Run(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("run searches: %w", err)
	}

	sections := make(Sections)
	for _, def := range e.defs {
		payload, err := e.checkResult(def, results)
		if err != nil {
			return nil, nil, err
		}
		if payload == nil {
			continue
		}
		section := def.Section
		if section == "" {
			section = def.origin
		}
		if sections[section] == nil {
			sections[section] = make(map[string]any)
		}
		sections[section][def.Name] = payload
	}
	return sections, results, nil
}

// tag returns the unique search tag for a check.
func (e *Engine) tag(def *Def) string {
	if def.Type == TypeExceptionTally {
		return search.ExceptionSearch{
			Component: def.Component,
			Agent:     def.Agent,
			Severity:  def.Severity,
		}.Tag()
	}
	return def.origin + "." + def.Name
}

func (e *Engine) register(searcher *search.FileSearcher, def *Def) error {
	add := func(sd search.Def, logs string) error {
		paths, err := e.root.LogPaths(logs, e.opts.AllLogs)
		if err != nil {
			return err
		}
		if len(paths) == 0 {
			return nil
		}
		return searcher.Add(sd, paths...)
	}

	switch def.Type {
	case TypeExceptionTally:
		sd, err := search.ExceptionSearch{
			Component: def.Component,
			Agent:     def.Agent,
			Severity:  def.Severity,
			Patterns:  def.Exceptions,
			Prefix:    def.Prefix,
			Hint:      def.Hint,
		}.Def()
		if err != nil {
			return err
		}
		return add(sd, def.Logs)
	case TypeEventStats:
		base := e.tag(def)
		startDef := search.NewDef(base+".start", def.Start.Expr, def.Start.Hint)
		startDef.AllowConstraint = def.Start.allowConstraint()
		if err := add(startDef, def.Start.Logs); err != nil {
			return err
		}
		endDef := search.NewDef(base+".end", def.End.Expr, def.End.Hint)
		endDef.AllowConstraint = def.End.allowConstraint()
		return add(endDef, def.End.Logs)
	default:
		sd := search.NewDef(e.tag(def), def.Search.Expr, def.Search.Hint)
		sd.AllowConstraint = def.Search.allowConstraint()
		return add(sd, def.Search.Logs)
	}
}

// checkResult aggregates one check, consulting the run cache first so
// repeated invocations within a run reuse the first computation.
func (e *Engine) checkResult(def *Def, results *search.Results) (any, error) {
	key := cache.Key(def.Name, def.origin, e.opts.ScratchDir)
	if e.store != nil {
		data, ok, err := e.store.Get(key)
		if err != nil {
			return nil, err
		}
		if ok {
			var payload any
			if err := json.Unmarshal(data, &payload); err != nil {
				return nil, fmt.Errorf("decode cached result for %s: %w", def.Name, err)
			}
			return payload, nil
		}
	}

	payload := e.aggregate(def, results)

	if e.store != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode result for %s: %w", def.Name, err)
		}
		if err := e.store.Set(key, data); err != nil {
			// Memoization is best effort; the result itself stands.
			log.Printf("warning: cache write for %s failed: %v", def.Name, err)
		}
	}
	return payload, nil
}

// group converts a 1-based capture group number from a defs file to a
// record group index, falling back to def when unset.
func group(n, def int) int {
	if n > 0 {
		return n - 1
	}
	return def
}

func (e *Engine) aggregate(def *Def, results *search.Results) any {
	switch def.Type {
	case TypeTally, TypeExceptionTally:
		recs := results.FindByTag(e.tag(def))
		idx := tally.Indices{
			Date: group(def.DateGroup, 0),
			Time: group(def.TimeGroup, 1),
			Name: group(def.NameGroup, 2),
		}
		table := tally.Aggregate(recs, e.opts.Granularity, idx)
		if table == nil {
			return nil
		}
		return table
	case TypeEntityTally:
		recs := results.FindByTag(e.tag(def))
		out := tally.AggregateByEntity(recs, group(def.DateGroup, 0), group(def.EntityGroup, 1))
		if out == nil {
			return nil
		}
		return out
	case TypeEventStats:
		base := e.tag(def)
		idx := tally.PairIndices{
			Date:     group(def.DateGroup, 0),
			Time:     group(def.TimeGroup, 1),
			ID:       group(def.IDGroup, 2),
			Metadata: -1,
		}
		if def.MetadataGroup > 0 {
			idx.Metadata = def.MetadataGroup - 1
			idx.MetadataKey = def.MetadataKey
		}
		samples := tally.PairSamples(
			results.FindByTag(base+".start"),
			results.FindByTag(base+".end"),
			idx,
		)
		top, stats := tally.ComputeStats(samples, def.Top)
		if stats == nil {
			return nil
		}
		topByID := make(map[string]models.TopEvent, len(top))
		for _, ev := range top {
			topByID[ev.ID] = ev
		}
		return map[string]any{"top": topByID, "stats": stats}
	}
	return nil
}
