package models

// IssueType classifies a finding raised by the scenario engine.
type IssueType string

const (
	IssueTypeCriticalBug    IssueType = "critical-bug"
	IssueTypeKnownBug       IssueType = "known-bug"
	IssueTypePotentialIssue IssueType = "potential-issue"
	IssueTypeWarning        IssueType = "warning"
)

// ParseIssueType converts a string to IssueType.
func ParseIssueType(s string) IssueType {
	switch s {
	case "critical-bug", "critical_bug", "critical":
		return IssueTypeCriticalBug
	case "known-bug", "known_bug", "bug":
		return IssueTypeKnownBug
	case "warning":
		return IssueTypeWarning
	default:
		return IssueTypePotentialIssue
	}
}

// Issue is a user-visible finding produced by a firing scenario.
type Issue struct {
	// Type is the issue classification.
	Type IssueType `json:"type" yaml:"type"`

	// Message describes what was detected.
	Message string `json:"message" yaml:"message"`

	// Origin identifies the scenario (and defs file) that raised the
	// issue, e.g. "openstack.neutron-l3-agent".
	Origin string `json:"origin" yaml:"origin"`
}
