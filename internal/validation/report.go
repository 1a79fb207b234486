// Package validation checks proposed deal parameters against a country rule
// set. Findings are returned as data in a Report, never as errors.
package validation

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Severity ranks an issue. Only Error and Critical invalidate a report.
type Severity int

const (
	Info Severity = iota
	Warning
	Error
	Critical
)

var severityNames = [...]string{"info", "warning", "error", "critical"}

// Severities lists every severity in ascending order.
var Severities = []Severity{Info, Warning, Error, Critical}

func (s Severity) String() string {
	if s < Info || s > Critical {
		return fmt.Sprintf("severity(%d)", int(s))
	}
	return severityNames[s]
}

// ParseSeverity reverses String.
func ParseSeverity(name string) (Severity, error) {
	for i, n := range severityNames {
		if strings.EqualFold(n, strings.TrimSpace(name)) {
			return Severity(i), nil
		}
	}
	return 0, fmt.Errorf("unknown severity %q", name)
}

// MarshalText implements encoding.TextMarshaler.
func (s Severity) MarshalText() ([]byte, error) {
	if s < Info || s > Critical {
		return nil, fmt.Errorf("invalid severity %d", int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Severity) UnmarshalText(text []byte) error {
	parsed, err := ParseSeverity(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Blocking reports whether the severity invalidates a report.
func (s Severity) Blocking() bool {
	return s >= Error
}

// Categories of issues.
const (
	CategoryZoning    = "zoning"
	CategoryParking   = "parking"
	CategoryMixedUse  = "mixed_use"
	CategoryPermits   = "permits"
	CategoryFinancing = "financing"
	CategoryInput     = "input"
)

// Issue is one finding.
type Issue struct {
	Severity   Severity `json:"severity"`
	Category   string   `json:"category"`
	Code       string   `json:"code"`
	Message    string   `json:"message"`
	Field      string   `json:"field,omitempty"`
	Value      any      `json:"value,omitempty"`
	Suggestion string   `json:"suggestion,omitempty"`
}

// Report collects issues. The zero value is not ready; use NewReport.
type Report struct {
	issues []Issue
	valid  bool
}

// NewReport returns an empty, valid report.
func NewReport() *Report {
	return &Report{valid: true}
}

// Add appends an issue; an Error or Critical issue invalidates the report.
func (r *Report) Add(issue Issue) {
	r.issues = append(r.issues, issue)
	if issue.Severity.Blocking() {
		r.valid = false
	}
}

// Merge appends every issue of other in order.
func (r *Report) Merge(other *Report) {
	if other == nil {
		return
	}
	for _, issue := range other.issues {
		r.Add(issue)
	}
}

// Valid reports whether no Error or Critical issue has been added.
func (r *Report) Valid() bool {
	return r.valid
}

// Issues returns all issues in insertion order.
func (r *Report) Issues() []Issue {
	return append([]Issue(nil), r.issues...)
}

// Warnings returns the Warning issues.
func (r *Report) Warnings() []Issue {
	return r.filter(func(s Severity) bool { return s == Warning })
}

// Errors returns the Error and Critical issues.
func (r *Report) Errors() []Issue {
	return r.filter(Severity.Blocking)
}

// Critical returns only the Critical issues: the deal cannot proceed.
func (r *Report) Critical() []Issue {
	return r.filter(func(s Severity) bool { return s == Critical })
}

// Codes returns the issue codes in insertion order.
func (r *Report) Codes() []string {
	codes := make([]string, len(r.issues))
	for i, issue := range r.issues {
		codes[i] = issue.Code
	}
	return codes
}

// Summary counts issues by severity name, including zero counts.
func (r *Report) Summary() map[string]int {
	counts := make(map[string]int, len(Severities))
	for _, s := range Severities {
		counts[s.String()] = 0
	}
	for _, issue := range r.issues {
		counts[issue.Severity.String()]++
	}
	return counts
}

func (r *Report) filter(keep func(Severity) bool) []Issue {
	var out []Issue
	for _, issue := range r.issues {
		if keep(issue.Severity) {
			out = append(out, issue)
		}
	}
	return out
}

type reportJSON struct {
	Valid   bool           `json:"is_valid"`
	Issues  []Issue        `json:"issues"`
	Summary map[string]int `json:"summary"`
}

// MarshalJSON renders the report with its validity and severity summary.
func (r *Report) MarshalJSON() ([]byte, error) {
	issues := r.issues
	if issues == nil {
		issues = []Issue{}
	}
	return json.Marshal(reportJSON{Valid: r.valid, Issues: issues, Summary: r.Summary()})
}
