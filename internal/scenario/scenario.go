// Package scenario implements the declarative rule engine that decides
// whether a snapshot exhibits known issues. Each scenario is a condition
// tree over facts (package inventory, config options, search hits)
// paired with conclusions; a scenario that fires raises exactly one
// issue through the injected sink.
package scenario

import (
	"fmt"

	"github.com/good-yellow-bee/snapdiag/internal/models"
)

// Def is one declarative rule, loaded from YAML and immutable
// afterwards.
type Def struct {
	// ID uniquely identifies the scenario within its defs file.
	ID string `yaml:"id"`

	// Description documents what the scenario detects.
	Description string `yaml:"description,omitempty"`

	// Condition is the tree deciding whether the scenario fires.
	Condition *Condition `yaml:"condition"`

	// Conclusions are candidate findings; the first whose guard (if
	// any) passes supplies the raised issue. A ScenarioDef may carry
	// several, e.g. different messages for different config states.
	Conclusions []*Conclusion `yaml:"conclusions"`

	// origin identifies the defs file the scenario was loaded from.
	origin string
}

// Conclusion maps a firing scenario to an issue.
type Conclusion struct {
	// Type classifies the issue, e.g. "known-bug".
	Type string `yaml:"type"`

	// Message is the finding text.
	Message string `yaml:"message"`

	// Guard optionally restricts this conclusion to a sub-condition,
	// allowing one scenario to report differently per config state.
	Guard *Condition `yaml:"guard,omitempty"`
}

// Validate checks and compiles the definition.
func (d *Def) Validate() error {
	if d.ID == "" {
		return fmt.Errorf("scenario id is required")
	}
	if d.Condition == nil {
		return fmt.Errorf("scenario %q has no condition", d.ID)
	}
	if err := d.Condition.compile(); err != nil {
		return fmt.Errorf("scenario %q: %w", d.ID, err)
	}
	if len(d.Conclusions) == 0 {
		return fmt.Errorf("scenario %q has no conclusions", d.ID)
	}
	for i, c := range d.Conclusions {
		if c.Message == "" {
			return fmt.Errorf("scenario %q conclusion %d has no message", d.ID, i)
		}
		if c.Guard != nil {
			if err := c.Guard.compile(); err != nil {
				return fmt.Errorf("scenario %q conclusion %d: %w", d.ID, i, err)
			}
		}
	}
	return nil
}

// Origin returns the identifier of the defs file this scenario came
// from.
func (d *Def) Origin() string {
	return d.origin
}

// issue builds the issue for the first conclusion whose guard passes.
// ok is false when every conclusion is guarded and none passes.
func (d *Def) issue(env *Env) (models.Issue, bool) {
	for _, c := range d.Conclusions {
		if c.Guard != nil && !c.Guard.Evaluate(env) {
			continue
		}
		return models.Issue{
			Type:    models.ParseIssueType(c.Type),
			Message: c.Message,
			Origin:  d.origin,
		}, true
	}
	return models.Issue{}, false
}
