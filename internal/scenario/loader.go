package scenario

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

// defsFile is the top-level YAML layout of one scenario defs file.
type defsFile struct {
	Scenarios []*Def `yaml:"scenarios"`
}

// LoadDir loads every *.yaml defs file under dir. A malformed file or
// definition is skipped with a logged warning and never aborts loading
// of the others. Returned defs are sorted by origin and id for
// reproducible evaluation order.
func LoadDir(dir string) ([]*Def, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read scenario defs dir: %w", err)
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
			log.Printf("warning: skipping scenario defs %s: %v", name, err)
			continue
		}
		loaded, err := Load(f, origin)
		f.Close()
		if err != nil {
			log.Printf("warning: skipping scenario defs %s: %v", name, err)
			continue
		}
		defs = append(defs, loaded...)
	}

	sort.Slice(defs, func(a, b int) bool {
		if defs[a].origin != defs[b].origin {
			return defs[a].origin < defs[b].origin
		}
		return defs[a].ID < defs[b].ID
	})
	return defs, nil
}

// Load reads scenario definitions from one defs document. Individual
// definitions that fail validation are skipped with a logged warning;
// the rest of the document still loads.
func Load(r io.Reader, origin string) ([]*Def, error) {
	var file defsFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil {
		return nil, fmt.Errorf("parse scenario defs: %w", err)
	}

	defs := make([]*Def, 0, len(file.Scenarios))
	for i, def := range file.Scenarios {
		if def == nil {
			continue
		}
		def.origin = origin
		if err := def.Validate(); err != nil {
			log.Printf("warning: skipping invalid scenario at index %d in %s: %v", i, origin, err)
			continue
		}
		defs = append(defs, def)
	}
	return defs, nil
}
