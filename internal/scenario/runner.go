package scenario

import (
	"log"
)

// Runner drives each loaded scenario exactly once per run, which is what
// structurally prevents duplicate firings no matter how often the
// underlying facts are re-queried.
type Runner struct {
	defs []*Def
	env  *Env
	sink IssueSink
}

// NewRunner creates a runner over defs (already in deterministic order
// from the loader).
func NewRunner(defs []*Def, env *Env, sink IssueSink) *Runner {
	return &Runner{defs: defs, env: env, sink: sink}
}

// Run evaluates every scenario and raises at most one issue per firing
// scenario. Returns the number of scenarios that fired.
func (r *Runner) Run() int {
	fired := 0
	for _, def := range r.defs {
		if !def.Condition.Evaluate(r.env) {
			continue
		}
		issue, ok := def.issue(r.env)
		if !ok {
			log.Printf("warning: scenario %s.%s fired but no conclusion applied", def.origin, def.ID)
			continue
		}
		r.sink.Raise(issue)
		fired++
	}
	return fired
}
