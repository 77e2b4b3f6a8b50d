package scenario

import (
	"fmt"
	"log"
	"strings"

	"github.com/expr-lang/expr/vm"

	"github.com/good-yellow-bee/snapdiag/internal/facts"
)

// PackageFacts is the slice of the package inventory the engine needs.
type PackageFacts interface {
	Installed(name string) bool
	Version(name string) (string, bool)
}

// SearchFacts reports how many match records a search tag produced.
type SearchFacts interface {
	Matches(tag string) int
}

// FileFacts probes snapshot file presence.
type FileFacts interface {
	Exists(rel string) bool
}

// ConfigFacts reads options from snapshot config files.
type ConfigFacts interface {
	Get(file, section, key string) (string, bool)
}

// Env is the fact environment a condition tree is evaluated against.
// All collaborators are optional; predicates whose collaborator is
// absent evaluate to false.
type Env struct {
	Facts    *facts.Registry
	Packages PackageFacts
	Search   SearchFacts
	Files    FileFacts
	Config   ConfigFacts
}

// PackagePredicate tests the installed state or version of a package.
// Version bounds use dpkg comparison semantics; any combination of
// bounds may be given and all must hold.
type PackagePredicate struct {
	Name      string  `yaml:"name"`
	Installed *bool   `yaml:"installed,omitempty"`
	LT        *string `yaml:"lt,omitempty"`
	LE        *string `yaml:"le,omitempty"`
	GT        *string `yaml:"gt,omitempty"`
	GE        *string `yaml:"ge,omitempty"`
	EQ        *string `yaml:"eq,omitempty"`
}

func (p *PackagePredicate) validate() error {
	if p.Name == "" {
		return fmt.Errorf("package predicate requires a name")
	}
	return nil
}

func (p *PackagePredicate) evaluate(env *Env) bool {
	if env.Packages == nil {
		return false
	}
	installed := env.Packages.Installed(p.Name)
	if p.Installed != nil && installed != *p.Installed {
		return false
	}

	hasBound := p.LT != nil || p.LE != nil || p.GT != nil || p.GE != nil || p.EQ != nil
	if !hasBound {
		// No version bound: with no explicit installed requirement the
		// predicate asserts presence.
		return p.Installed != nil || installed
	}
	if !installed {
		return false
	}

	ver, _ := env.Packages.Version(p.Name)
	for _, bound := range []struct {
		ref *string
		ok  func(cmp int) bool
	}{
		{p.LT, func(cmp int) bool { return cmp < 0 }},
		{p.LE, func(cmp int) bool { return cmp <= 0 }},
		{p.GT, func(cmp int) bool { return cmp > 0 }},
		{p.GE, func(cmp int) bool { return cmp >= 0 }},
		{p.EQ, func(cmp int) bool { return cmp == 0 }},
	} {
		if bound.ref == nil {
			continue
		}
		cmp, err := facts.CompareVersions(ver, *bound.ref)
		if err != nil {
			log.Printf("warning: package predicate for %q: %v", p.Name, err)
			return false
		}
		if !bound.ok(cmp) {
			return false
		}
	}
	return true
}

// ConfigPredicate tests an option in a snapshot config file. Section
// defaults to "DEFAULT". With neither equals nor exists it asserts the
// option is present.
type ConfigPredicate struct {
	File    string  `yaml:"file"`
	Section string  `yaml:"section,omitempty"`
	Key     string  `yaml:"key"`
	Equals  *string `yaml:"equals,omitempty"`
	Exists  *bool   `yaml:"exists,omitempty"`
}

func (p *ConfigPredicate) evaluate(env *Env) bool {
	if env.Config == nil {
		return false
	}
	section := p.Section
	if section == "" {
		section = "DEFAULT"
	}
	v, ok := env.Config.Get(p.File, section, p.Key)
	if p.Exists != nil {
		if ok != *p.Exists {
			return false
		}
		if !ok {
			return true
		}
	}
	if !ok {
		return false
	}
	if p.Equals != nil {
		return strings.EqualFold(v, *p.Equals)
	}
	return true
}

// FilePredicate tests snapshot file presence.
type FilePredicate struct {
	Path   string `yaml:"path"`
	Exists *bool  `yaml:"exists,omitempty"`
}

func (p *FilePredicate) evaluate(env *Env) bool {
	if env.Files == nil {
		return false
	}
	want := true
	if p.Exists != nil {
		want = *p.Exists
	}
	return env.Files.Exists(p.Path) == want
}

// SearchPredicate tests whether a search tag produced at least MinHits
// match records (default 1).
type SearchPredicate struct {
	Tag     string `yaml:"tag"`
	MinHits int    `yaml:"min-hits,omitempty"`
}

func (p *SearchPredicate) evaluate(env *Env) bool {
	if env.Search == nil {
		return false
	}
	min := p.MinHits
	if min <= 0 {
		min = 1
	}
	return env.Search.Matches(p.Tag) >= min
}

// FactPredicate tests an arbitrary registry fact by name. With only a
// name it asserts the fact resolves.
type FactPredicate struct {
	Name   string `yaml:"name"`
	Equals any    `yaml:"equals,omitempty"`
	Exists *bool  `yaml:"exists,omitempty"`
}

func (p *FactPredicate) evaluate(env *Env) bool {
	if env.Facts == nil {
		return false
	}
	v, ok := env.Facts.Fact(p.Name)
	if p.Exists != nil {
		return ok == *p.Exists
	}
	if !ok {
		return false
	}
	if p.Equals != nil {
		return fmt.Sprintf("%v", v) == fmt.Sprintf("%v", p.Equals)
	}
	return true
}

// exprEnvTypes is the compile-time environment for expression leaves.
func exprEnvTypes() map[string]any {
	return map[string]any{
		"fact":    func(name string) any { return nil },
		"matches": func(tag string) int { return 0 },
		"exists":  func(path string) bool { return false },
	}
}

// evalExpression runs a compiled expression leaf against env. Runtime
// errors degrade to false with a logged warning.
func evalExpression(program *vm.Program, env *Env) bool {
	runtimeEnv := map[string]any{
		"fact": func(name string) any {
			if env.Facts == nil {
				return nil
			}
			v, ok := env.Facts.Fact(name)
			if !ok {
				return nil
			}
			return v
		},
		"matches": func(tag string) int {
			if env.Search == nil {
				return 0
			}
			return env.Search.Matches(tag)
		},
		"exists": func(path string) bool {
			return env.Files != nil && env.Files.Exists(path)
		},
	}
	result, err := vm.Run(program, runtimeEnv)
	if err != nil {
		log.Printf("warning: scenario expression failed: %v", err)
		return false
	}
	b, ok := result.(bool)
	return ok && b
}
