package scenario

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// Condition is one node of a scenario's condition tree: either exactly
// one combinator (and/or/not) or exactly one leaf predicate. Evaluation
// short-circuits, so cheap predicates should be listed before expensive
// ones (e.g. searches) within a branch.
type Condition struct {
	And []*Condition `yaml:"and,omitempty"`
	Or  []*Condition `yaml:"or,omitempty"`
	Not *Condition   `yaml:"not,omitempty"`

	Package    *PackagePredicate `yaml:"package,omitempty"`
	Config     *ConfigPredicate  `yaml:"config,omitempty"`
	File       *FilePredicate    `yaml:"file,omitempty"`
	Search     *SearchPredicate  `yaml:"search,omitempty"`
	Fact       *FactPredicate    `yaml:"fact,omitempty"`
	Expression string            `yaml:"expression,omitempty"`

	program *vm.Program
}

// compile validates the node shape and compiles any expression leaves,
// recursively.
func (c *Condition) compile() error {
	variants := 0
	if len(c.And) > 0 {
		variants++
	}
	if len(c.Or) > 0 {
		variants++
	}
	if c.Not != nil {
		variants++
	}
	for _, set := range []bool{
		c.Package != nil, c.Config != nil, c.File != nil,
		c.Search != nil, c.Fact != nil, c.Expression != "",
	} {
		if set {
			variants++
		}
	}
	if variants != 1 {
		return fmt.Errorf("condition must have exactly one of and/or/not or a predicate, got %d", variants)
	}

	for _, sub := range c.And {
		if err := sub.compile(); err != nil {
			return err
		}
	}
	for _, sub := range c.Or {
		if err := sub.compile(); err != nil {
			return err
		}
	}
	if c.Not != nil {
		if err := c.Not.compile(); err != nil {
			return err
		}
	}

	if c.Package != nil {
		if err := c.Package.validate(); err != nil {
			return err
		}
	}
	if c.File != nil && c.File.Path == "" {
		return fmt.Errorf("file predicate requires a path")
	}
	if c.Search != nil && c.Search.Tag == "" {
		return fmt.Errorf("search predicate requires a tag")
	}
	if c.Config != nil && (c.Config.File == "" || c.Config.Key == "") {
		return fmt.Errorf("config predicate requires a file and a key")
	}
	if c.Fact != nil && c.Fact.Name == "" {
		return fmt.Errorf("fact predicate requires a name")
	}

	if c.Expression != "" {
		program, err := expr.Compile(c.Expression,
			expr.Env(exprEnvTypes()),
			expr.AsBool(),
		)
		if err != nil {
			return fmt.Errorf("compile expression %q: %w", c.Expression, err)
		}
		c.program = program
	}
	return nil
}

// Evaluate walks the tree with standard short-circuit semantics. A
// predicate whose backing fact is unavailable evaluates to false rather
// than failing the run.
func (c *Condition) Evaluate(env *Env) bool {
	switch {
	case len(c.And) > 0:
		for _, sub := range c.And {
			if !sub.Evaluate(env) {
				return false
			}
		}
		return true
	case len(c.Or) > 0:
		for _, sub := range c.Or {
			if sub.Evaluate(env) {
				return true
			}
		}
		return false
	case c.Not != nil:
		return !c.Not.Evaluate(env)
	case c.Package != nil:
		return c.Package.evaluate(env)
	case c.Config != nil:
		return c.Config.evaluate(env)
	case c.File != nil:
		return c.File.evaluate(env)
	case c.Search != nil:
		return c.Search.evaluate(env)
	case c.Fact != nil:
		return c.Fact.evaluate(env)
	case c.program != nil:
		return evalExpression(c.program, env)
	}
	return false
}
