// Package search implements tagged regular-expression searches over
// snapshot files. Checks register SearchDefs against target files and run
// all searches in one pass; the aggregation engine only ever consumes the
// resulting match records.
package search

import (
	"fmt"
	"regexp"
)

// Def is one pattern to look for in one or more files.
type Def struct {
	// Tag identifies the definition in results, by convention
	// "{component}.{subcomponent}.{severity}".
	Tag string

	// Expr is the regular expression. Its capture groups become the
	// match record's groups.
	Expr string

	// Hint is an optional cheap substring pre-filter. Lines not matched
	// by the hint are skipped without running the full expression.
	Hint string

	// AllowConstraint controls whether a searcher-wide time constraint
	// applies to this definition. Defaults to true via NewDef.
	AllowConstraint bool

	compiled *regexp.Regexp
	hint     *regexp.Regexp
}

// NewDef creates a Def with constraints allowed.
func NewDef(tag, expr, hint string) Def {
	return Def{Tag: tag, Expr: expr, Hint: hint, AllowConstraint: true}
}

// Compile validates and compiles the definition's expressions.
func (d *Def) Compile() error {
	if d.Tag == "" {
		return fmt.Errorf("search def requires a tag")
	}
	re, err := regexp.Compile(d.Expr)
	if err != nil {
		return fmt.Errorf("invalid expression for tag %q: %w", d.Tag, err)
	}
	d.compiled = re
	if d.Hint != "" {
		hint, err := regexp.Compile(d.Hint)
		if err != nil {
			return fmt.Errorf("invalid hint for tag %q: %w", d.Tag, err)
		}
		d.hint = hint
	}
	return nil
}
