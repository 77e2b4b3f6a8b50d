// Package report assembles per-check aggregation output and detected
// issues into the final analysis document and renders it as YAML or
// JSON. Absent results are omitted entirely, never rendered as empty
// sections.
package report

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/good-yellow-bee/snapdiag/internal/models"
)

// Format selects the rendering format.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// ParseFormat converts a string to Format, ok=false for unknown values.
func ParseFormat(s string) (Format, bool) {
	switch s {
	case "yaml", "yml", "":
		return FormatYAML, true
	case "json":
		return FormatJSON, true
	}
	return "", false
}

// Report is the document produced by one analysis run.
type Report struct {
	// Snapshot is the analyzed snapshot root directory.
	Snapshot string `yaml:"snapshot" json:"snapshot"`

	// Checks maps section -> check name -> aggregation payload.
	Checks map[string]map[string]any `yaml:"checks,omitempty" json:"checks,omitempty"`

	// Issues lists the findings raised by firing scenarios.
	Issues []models.Issue `yaml:"issues-detected,omitempty" json:"issues-detected,omitempty"`
}

// New assembles a report, dropping empty sections.
func New(snapshotDir string, sections map[string]map[string]any, issues []models.Issue) *Report {
	r := &Report{Snapshot: snapshotDir, Issues: issues}
	if len(sections) > 0 {
		r.Checks = sections
	}
	return r
}

// Render writes the report to w in the given format.
func (r *Report) Render(w io.Writer, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("render json report: %w", err)
		}
		return nil
	default:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("render yaml report: %w", err)
		}
		return nil
	}
}
