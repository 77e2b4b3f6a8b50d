package search

import (
	"regexp"
	"time"
)

// Timestamp layouts tried against the string captured by a constraint
// expression.
var constraintLayouts = []string{
	"2006-01-02 15:04:05.000000",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// SinceConstraint skips lines whose leading timestamp is older than a
// cutoff. Lines without a parseable timestamp pass through, so wrapped
// tracebacks and continuation lines are never lost.
type SinceConstraint struct {
	since time.Time
	exprs []*regexp.Regexp
}

// NewSinceConstraint creates a constraint from a cutoff time and one or
// more timestamp-prefix expressions, each with a single capture group
// holding the timestamp.
func NewSinceConstraint(since time.Time, exprs ...string) (*SinceConstraint, error) {
	c := &SinceConstraint{since: since}
	for _, e := range exprs {
		re, err := regexp.Compile(e)
		if err != nil {
			return nil, err
		}
		c.exprs = append(c.exprs, re)
	}
	return c, nil
}

// Allows reports whether line passes the constraint.
func (c *SinceConstraint) Allows(line string) bool {
	for _, re := range c.exprs {
		m := re.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		for _, layout := range constraintLayouts {
			ts, err := time.Parse(layout, m[1])
			if err != nil {
				continue
			}
			return !ts.Before(c.since)
		}
	}
	return true
}
