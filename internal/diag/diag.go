package diag

import (
	"encoding/json"
	"sort"
)

type Severity int

const (
	SeverityHidden Severity = iota
	SeverityInfo
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityHidden:
		return "Hidden"
	case SeverityInfo:
		return "Info"
	case SeverityWarning:
		return "Warning"
	case SeverityError:
		return "Error"
	}
	return "Unknown"
}

// Diagnostic is a single compiler or analyzer finding. Line and Column are
// 1-based positions in the original (pre-preprocessing) source.
type Diagnostic struct {
	Severity Severity `json:"-"`
	Code     string   `json:"code"`
	Message  string   `json:"message"`
	Line     int      `json:"line"`
	Column   int      `json:"column"`
}

func (d Diagnostic) MarshalJSON() ([]byte, error) {
	type alias Diagnostic
	return json.Marshal(struct {
		Severity string `json:"severity"`
		alias
	}{
		Severity: d.Severity.String(),
		alias:    alias(d),
	})
}

// Suppressed codes are permanent false positives of validating one file
// against a reduced reference set: assembly-version-assumption notices
// (CS1701/CS1702), missing XML doc comments (CS1591) and unused extern
// aliases (CS8020).
var suppressedCodes = map[string]bool{
	"CS1701": true,
	"CS1702": true,
	"CS1591": true,
	"CS8020": true,
}

func IsSuppressed(code string) bool {
	return suppressedCodes[code]
}

// Filter drops Hidden/Info diagnostics and suppressed codes. The decision is
// a pure function of severity and code.
func Filter(diags []Diagnostic) []Diagnostic {
	out := []Diagnostic{}
	for _, d := range diags {
		if d.Severity < SeverityWarning {
			continue
		}
		if suppressedCodes[d.Code] {
			continue
		}
		out = append(out, d)
	}
	return out
}

// Sort orders diagnostics by line, column, then code so repeated runs over
// identical inputs serialize byte-identically.
func Sort(diags []Diagnostic) {
	sort.SliceStable(diags, func(i, j int) bool {
		if diags[i].Line != diags[j].Line {
			return diags[i].Line < diags[j].Line
		}
		if diags[i].Column != diags[j].Column {
			return diags[i].Column < diags[j].Column
		}
		return diags[i].Code < diags[j].Code
	})
}

func HasErrors(diags []Diagnostic) bool {
	for _, d := range diags {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

// MarshalLine renders the filtered diagnostic list as the single-line JSON
// array the validate command prints to stdout.
func MarshalLine(diags []Diagnostic) ([]byte, error) {
	if diags == nil {
		diags = []Diagnostic{}
	}
	return json.Marshal(diags)
}
