// Package config holds the runtime configuration of one analysis run.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/good-yellow-bee/snapdiag/internal/models"
)

// Run is the configuration of a single analysis run.
type Run struct {
	// DataRoot is the snapshot directory to analyze.
	DataRoot string `yaml:"data_root"`

	// DefsDir is the directory holding check and scenario definitions
	// (checks/*.yaml and scenarios/*.yaml).
	DefsDir string `yaml:"defs_dir"`

	// Granularity selects date or date+time tally bucketing.
	Granularity models.Granularity `yaml:"granularity"`

	// AllLogs includes rotated log files in searches.
	AllLogs bool `yaml:"all_logs"`

	// Since constrains searches to lines at or after this date
	// (YYYY-MM-DD); empty disables the constraint.
	Since string `yaml:"since"`

	// Workers bounds parallel per-file searching (0 = auto).
	Workers int `yaml:"workers"`

	// ScratchDir is the run-scoped scratch location shared by all
	// cooperating check processes of this run. Auto-generated when
	// empty.
	ScratchDir string `yaml:"scratch_dir"`

	// RunID identifies the run; auto-generated when empty.
	RunID string `yaml:"run_id"`
}

// SetDefaults fills in derived and generated fields.
func (r *Run) SetDefaults() {
	if r.Granularity == "" {
		r.Granularity = models.GranularityDate
	}
	if r.RunID == "" {
		r.RunID = uuid.New().String()
	}
	if r.ScratchDir == "" {
		r.ScratchDir = filepath.Join(os.TempDir(), "snapdiag-"+r.RunID)
	}
}

// Validate checks the configuration and creates the scratch dir.
func (r *Run) Validate() error {
	if r.DataRoot == "" {
		return fmt.Errorf("data root is required")
	}
	if r.Granularity != models.GranularityDate && r.Granularity != models.GranularityTime {
		return fmt.Errorf("invalid granularity %q", r.Granularity)
	}
	if err := os.MkdirAll(r.ScratchDir, 0o755); err != nil {
		return fmt.Errorf("create scratch dir: %w", err)
	}
	return nil
}

// ChecksDir returns the check defs directory under DefsDir.
func (r *Run) ChecksDir() string {
	return filepath.Join(r.DefsDir, "checks")
}

// ScenariosDir returns the scenario defs directory under DefsDir.
func (r *Run) ScenariosDir() string {
	return filepath.Join(r.DefsDir, "scenarios")
}
