package search

import (
	"regexp"
	"testing"
)

func TestExceptionSearchTag(t *testing.T) {
	s := ExceptionSearch{Component: "neutron", Agent: "l3-agent", Severity: "error"}
	if got := s.Tag(); got != "neutron.l3-agent.error" {
		t.Errorf("Tag() = %q", got)
	}
}

func TestExceptionSearchDef(t *testing.T) {
	s := ExceptionSearch{
		Component: "neutron",
		Agent:     "l3-agent",
		Severity:  "error",
		Patterns:  []string{"MessagingTimeout", "DBConnectionError"},
	}
	def, err := s.Def()
	if err != nil {
		t.Fatalf("Def() error = %v", err)
	}
	re, err := regexp.Compile(def.Expr)
	if err != nil {
		t.Fatalf("expression does not compile: %v", err)
	}

	tests := []struct {
		name string
		line string
		want []string
	}{
		{
			"bare exception",
			"2022-02-04 14:20:26.301 1243 ERROR neutron.agent MessagingTimeout: timed out",
			[]string{"2022-02-04", "14:20:26.301", "MessagingTimeout"},
		},
		{
			"dotted module path",
			"2022-02-04 14:20:26.301 1243 ERROR neutron.agent oslo.messaging.MessagingTimeout: timed out",
			[]string{"2022-02-04", "14:20:26.301", "oslo.messaging.MessagingTimeout"},
		},
		{
			"second pattern",
			"2022-02-09 09:00:00.000 77 ERROR x DBConnectionError: gone",
			[]string{"2022-02-09", "09:00:00.000", "DBConnectionError"},
		},
		{
			"no exception",
			"2022-02-04 14:20:26.301 1243 INFO neutron.agent all fine",
			nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := re.FindStringSubmatch(tt.line)
			if tt.want == nil {
				if m != nil {
					t.Errorf("matched %v, want no match", m)
				}
				return
			}
			if m == nil {
				t.Fatalf("no match for %q", tt.line)
			}
			for i, want := range tt.want {
				if m[i+1] != want {
					t.Errorf("group %d = %q, want %q", i, m[i+1], want)
				}
			}
		})
	}
}

func TestExceptionSearchDefPrefix(t *testing.T) {
	s := ExceptionSearch{
		Component: "octavia",
		Agent:     "apache",
		Severity:  "error",
		Patterns:  []string{"ValueError"},
		Prefix:    `\[[^\]]+\] `,
	}
	def, err := s.Def()
	if err != nil {
		t.Fatalf("Def() error = %v", err)
	}
	re := regexp.MustCompile(def.Expr)

	line := "[mod_wsgi pid 12] 2022-02-04 14:20:26.301 1243 ERROR octavia ValueError: bad"
	m := re.FindStringSubmatch(line)
	if m == nil {
		t.Fatalf("no match for prefixed line")
	}
	if m[1] != "2022-02-04" || m[3] != "ValueError" {
		t.Errorf("groups = %v", m[1:])
	}
}

func TestExceptionSearchDefNoPatterns(t *testing.T) {
	s := ExceptionSearch{Component: "x", Agent: "y", Severity: "error"}
	if _, err := s.Def(); err == nil {
		t.Errorf("Def() error = nil, want error")
	}
}
