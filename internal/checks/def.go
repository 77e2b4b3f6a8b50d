// Package checks loads declarative event/exception check definitions
// and runs them against a snapshot: registering searches, aggregating
// the match stream into tallies or duration statistics, and memoizing
// results in the run cache.
package checks

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// CheckType selects how a check's match records are aggregated.
type CheckType string

const (
	// TypeTally counts occurrences per event name per date/time bucket.
	TypeTally CheckType = "tally"
	// TypeExceptionTally is a tally whose search is composed from a
	// list of exception patterns for one agent.
	TypeExceptionTally CheckType = "exception-tally"
	// TypeEntityTally counts occurrences per date per entity id.
	TypeEntityTally CheckType = "entity-tally"
	// TypeEventStats pairs start/end records into duration samples and
	// reports top-N plus population statistics.
	TypeEventStats CheckType = "event-stats"
)

// SearchSpec is one search registration within a check definition.
// Group indices elsewhere in the definition refer to this expression's
// capture groups, 1-based as in the expression itself.
type SearchSpec struct {
	Expr string `yaml:"expr"`
	Hint string `yaml:"hint,omitempty"`
	Logs string `yaml:"logs"`

	// AllowConstraint opts the search out of the run-wide time window
	// when set to false. Defaults to true.
	AllowConstraint *bool `yaml:"allow-constraint,omitempty"`
}

func (s *SearchSpec) validate(ctx string) error {
	if s.Expr == "" {
		return fmt.Errorf("%s requires an expr", ctx)
	}
	if s.Logs == "" {
		return fmt.Errorf("%s requires a logs path", ctx)
	}
	return nil
}

func (s *SearchSpec) allowConstraint() bool {
	return s.AllowConstraint == nil || *s.AllowConstraint
}

// Def is one declarative check definition.
type Def struct {
	// Name identifies the check; it doubles as the cache identity
	// together with the defs origin.
	Name string `yaml:"name"`

	// Section groups the check's output in the report, e.g.
	// "neutron-l3-agent".
	Section string `yaml:"section,omitempty"`

	// Type selects the aggregation. Defaults to "tally".
	Type CheckType `yaml:"type,omitempty"`

	// Search drives tally and entity-tally checks.
	Search *SearchSpec `yaml:"search,omitempty"`

	// Component/Agent/Severity/Exceptions/Prefix/Hint/Logs drive
	// exception-tally checks; the expression is composed, not written
	// by hand.
	Component  string   `yaml:"component,omitempty"`
	Agent      string   `yaml:"agent,omitempty"`
	Severity   string   `yaml:"severity,omitempty"`
	Exceptions []string `yaml:"exceptions,omitempty"`
	Prefix     string   `yaml:"prefix,omitempty"`
	Hint       string   `yaml:"hint,omitempty"`
	Logs       string   `yaml:"logs,omitempty"`

	// Start/End drive event-stats checks.
	Start *SearchSpec `yaml:"start,omitempty"`
	End   *SearchSpec `yaml:"end,omitempty"`

	// Top bounds the longest-events listing. Defaults to 5.
	Top int `yaml:"top,omitempty"`

	// Capture group numbers (1-based, 0 means the conventional
	// default): date/time/name for tallies, id for event pairing,
	// entity for entity tallies, metadata for pass-through annotation.
	DateGroup     int    `yaml:"date-group,omitempty"`
	TimeGroup     int    `yaml:"time-group,omitempty"`
	NameGroup     int    `yaml:"name-group,omitempty"`
	IDGroup       int    `yaml:"id-group,omitempty"`
	EntityGroup   int    `yaml:"entity-group,omitempty"`
	MetadataGroup int    `yaml:"metadata-group,omitempty"`
	MetadataKey   string `yaml:"metadata-key,omitempty"`

	// origin identifies the defs file the check was loaded from.
	origin string
}

// Origin returns the identifier of the defs file this check came from.
func (d *Def) Origin() string {
	return d.origin
}

// Validate checks the definition for the selected type.
func (d *Def) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("check name is required")
	}
	if d.Type == "" {
		d.Type = TypeTally
	}
	if d.Top == 0 {
		d.Top = 5
	}

	switch d.Type {
	case TypeTally, TypeEntityTally:
		if d.Search == nil {
			return fmt.Errorf("check %q requires a search", d.Name)
		}
		return d.Search.validate(fmt.Sprintf("check %q search", d.Name))
	case TypeExceptionTally:
		if d.Component == "" || d.Agent == "" {
			return fmt.Errorf("check %q requires component and agent", d.Name)
		}
		if len(d.Exceptions) == 0 {
			return fmt.Errorf("check %q requires exception patterns", d.Name)
		}
		if d.Logs == "" {
			return fmt.Errorf("check %q requires a logs path", d.Name)
		}
		if d.Severity == "" {
			d.Severity = "error"
		}
		return nil
	case TypeEventStats:
		if d.Start == nil || d.End == nil {
			return fmt.Errorf("check %q requires start and end searches", d.Name)
		}
		if err := d.Start.validate(fmt.Sprintf("check %q start", d.Name)); err != nil {
			return err
		}
		return d.End.validate(fmt.Sprintf("check %q end", d.Name))
	default:
		return fmt.Errorf("check %q has unknown type %q", d.Name, d.Type)
	}
}

// defsFile is the top-level YAML layout of one checks defs file.
type defsFile struct {
	Checks []*Def `yaml:"checks"`
}

// LoadDir loads every *.yaml defs file under dir, skipping malformed
// files or definitions with a logged warning. Returned defs are sorted
// by origin and name.
func LoadDir(dir string) ([]*Def, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read check defs dir: %w", err)
	}

	var defs []*Def
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || (!strings.HasSuffix(name, ".yaml") && !strings.HasSuffix(name, ".yml")) {
			continue
		}
		origin := strings.TrimSuffix(strings.TrimSuffix(name, ".yml"), ".yaml")
		f, err := os.Open(filepath.Join(dir, name))
		if err != nil {
			log.Printf("warning: skipping check defs %s: %v", name, err)
			continue
		}
		loaded, err := Load(f, origin)
		f.Close()
		if err != nil {
			log.Printf("warning: skipping check defs %s: %v", name, err)
			continue
		}
		defs = append(defs, loaded...)
	}

	sort.Slice(defs, func(a, b int) bool {
		if defs[a].origin != defs[b].origin {
			return defs[a].origin < defs[b].origin
		}
		return defs[a].Name < defs[b].Name
	})
	return defs, nil
}

// Load reads check definitions from one defs document.
func Load(r io.Reader, origin string) ([]*Def, error) {
	var file defsFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil {
		return nil, fmt.Errorf("parse check defs: %w", err)
	}

	defs := make([]*Def, 0, len(file.Checks))
	for i, def := range file.Checks {
		if def == nil {
			continue
		}
		def.origin = origin
		if err := def.Validate(); err != nil {
			log.Printf("warning: skipping invalid check at index %d in %s: %v", i, origin, err)
			continue
		}
		defs = append(defs, def)
	}
	return defs, nil
}
