package search

import (
	"fmt"
	"strings"
)

// ExceptionSearch describes a per-agent exception/warning search to be
// composed into a single tagged definition. Composing the patterns into
// one alternation keeps one expression per agent log instead of one per
// exception name, and the tag convention keeps results collision-free
// across components.
type ExceptionSearch struct {
	// Component and Agent name the originating service, e.g. "neutron"
	// and "dhcp-agent".
	Component string
	Agent     string

	// Severity is the log level the patterns are expected at, by
	// convention "error" or "warning".
	Severity string

	// Patterns are exception class names or regex fragments to look
	// for; they are OR-composed into the line expression.
	Patterns []string

	// Prefix optionally matches cruft before the timestamp (e.g.
	// mod_wsgi prefixes); it is non-capturing and does not count
	// towards the result groups.
	Prefix string

	// Hint pre-filters lines cheaply before the full expression runs.
	Hint string
}

// Tag returns the search tag, "{component}.{agent}.{severity}".
func (s ExceptionSearch) Tag() string {
	return fmt.Sprintf("%s.%s.%s", s.Component, s.Agent, s.Severity)
}

// Def builds the tagged search definition. The expression captures, in
// order: the date, the time of day, and the exception name. Exceptions
// are matched with or without a leading import path (MyExc or
// somemod.MyExc).
func (s ExceptionSearch) Def() (Def, error) {
	if len(s.Patterns) == 0 {
		return Def{}, fmt.Errorf("exception search %s has no patterns", s.Tag())
	}
	prefix := ""
	if s.Prefix != "" {
		prefix = fmt.Sprintf("(?:%s)?", s.Prefix)
	}
	names := strings.Join(s.Patterns, "|")
	expr := fmt.Sprintf(`^%s([0-9-]+) (\S+) .+\S+\s((?:\S+\.)?(?:%s))[\s:.]`, prefix, names)
	return NewDef(s.Tag(), expr, s.Hint), nil
}
