// Package portcheck finds Visual Scripting port-accessor mistakes the
// compiler cannot: they are semantically valid C# that binds to the wrong
// port at graph-build time. The analysis is intentionally textual; the
// patterns involved (unit construction plus accessor use) are local enough
// that full binding adds nothing.
package portcheck

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/uvs-community/uvs-dev-tools/internal/diag"
	"github.com/uvs-community/uvs-dev-tools/internal/units"
)

const (
	CodeComparisonAccessor = "VS-PORT-001"
	CodeVoidResult         = "VS-PORT-002"
	CodeMultiInputAccessor = "VS-PORT-003"
)

// Checker runs the VS-specific accessor checks against one source file.
type Checker struct {
	registry *units.Registry
}

func NewChecker(registry *units.Registry) *Checker {
	return &Checker{registry: registry}
}

// Check returns all port-accessor issues found in source.
func (c *Checker) Check(source string) []diag.Diagnostic {
	var issues []diag.Diagnostic
	issues = append(issues, c.checkComparisonAccessors(source)...)
	issues = append(issues, c.checkVoidResult(source)...)
	issues = append(issues, c.checkMultiInputAccessors(source)...)
	diag.Sort(issues)
	return issues
}

// checkComparisonAccessors flags `x.equal` / `x.notEqual` on variables
// constructed from comparison units; the C# accessor is the single
// collapsed one (`.comparison`).
func (c *Checker) checkComparisonAccessors(source string) []diag.Diagnostic {
	var names []string
	accessors := make(map[string]bool)
	for _, n := range c.registry.Names() {
		if c.registry.IsComparison(n) {
			names = append(names, n)
			accessors[lowerFirst(n)] = true
		}
	}
	if len(names) == 0 {
		return nil
	}

	vars := findConstructedVars(source, names)
	if len(vars) == 0 {
		return nil
	}

	var issues []diag.Diagnostic
	accessorRe := regexp.MustCompile(`\b(\w+)\.(\w+)\b`)
	for _, m := range accessorRe.FindAllStringSubmatchIndex(source, -1) {
		varName := source[m[2]:m[3]]
		accessor := source[m[4]:m[5]]
		unitName, declared := vars[varName]
		if !declared || !accessors[accessor] {
			continue
		}
		u, _ := c.registry.Unit(unitName)
		line, col := lineCol(source, m[0])
		issues = append(issues, diag.Diagnostic{
			Severity: diag.SeverityError,
			Code:     CodeComparisonAccessor,
			Message: fmt.Sprintf("'%s.%s' is wrong. BinaryComparisonUnit C# accessor is '.%s'. Use '%s.%s' instead.",
				varName, accessor, u.Accessor, varName, u.Accessor),
			Line:   line,
			Column: col,
		})
	}
	return issues
}

var invokeMemberRe = regexp.MustCompile(
	`(?:var|InvokeMember)\s+(\w+)\s*=\s*new\s+InvokeMember\s*\(\s*` +
		`new\s+Member\s*\(\s*typeof\s*\(\s*(\w+)\s*\)\s*,\s*` +
		`(?:nameof\s*\(\s*\w+\.(\w+)\s*\)|"(\w+)")`)

var resultAccessRe = regexp.MustCompile(`\b(\w+)\.result\b`)

// checkVoidResult flags `.result` on InvokeMember units whose target method
// returns void: the unit has no result port.
func (c *Checker) checkVoidResult(source string) []diag.Diagnostic {
	type target struct {
		typeName string
		method   string
	}
	invokes := make(map[string]target)
	for _, m := range invokeMemberRe.FindAllStringSubmatch(source, -1) {
		method := m[3]
		if method == "" {
			method = m[4]
		}
		invokes[m[1]] = target{typeName: m[2], method: method}
	}
	if len(invokes) == 0 {
		return nil
	}

	var issues []diag.Diagnostic
	for _, m := range resultAccessRe.FindAllStringSubmatchIndex(source, -1) {
		varName := source[m[2]:m[3]]
		tgt, ok := invokes[varName]
		if !ok || !c.registry.IsVoidMethod(tgt.typeName, tgt.method) {
			continue
		}
		line, col := lineCol(source, m[0])
		issues = append(issues, diag.Diagnostic{
			Severity: diag.SeverityError,
			Code:     CodeVoidResult,
			Message: fmt.Sprintf("'%s.result' is invalid: %s.%s() is void and has no result port. Remove this connection.",
				varName, tgt.typeName, tgt.method),
			Line:   line,
			Column: col,
		})
	}
	return issues
}

var abAccessRe = regexp.MustCompile(`\b(\w+)\.(a|b)\b`)

// checkMultiInputAccessors flags `.a`/`.b` on multi-input units, which
// index their inputs as multiInputs[n].
func (c *Checker) checkMultiInputAccessors(source string) []diag.Diagnostic {
	var names []string
	for _, n := range c.registry.Names() {
		if c.registry.IsMultiInput(n) {
			names = append(names, n)
		}
	}
	if len(names) == 0 {
		return nil
	}

	vars := findConstructedVars(source, names)
	if len(vars) == 0 {
		return nil
	}

	var issues []diag.Diagnostic
	for _, m := range abAccessRe.FindAllStringSubmatchIndex(source, -1) {
		varName := source[m[2]:m[3]]
		accessor := source[m[4]:m[5]]
		unitName, declared := vars[varName]
		if !declared {
			continue
		}
		idx := 0
		if accessor == "b" {
			idx = 1
		}
		line, col := lineCol(source, m[0])
		issues = append(issues, diag.Diagnostic{
			Severity: diag.SeverityError,
			Code:     CodeMultiInputAccessor,
			Message: fmt.Sprintf("'%s.%s' is wrong. %s is a MultiInputUnit and uses '.multiInputs[%d]' (C#) or '\"%d\"' (JSON key), not '.%s'. Use '%s.multiInputs[%d]' instead.",
				varName, accessor, unitName, idx, idx, accessor, varName, idx),
			Line:   line,
			Column: col,
		})
	}
	return issues
}

// findConstructedVars maps variable names to the unit type they were
// constructed from, for declarations of the form
// `var x = new UnitType(` or `UnitType x = new UnitType(`.
func findConstructedVars(source string, unitNames []string) map[string]string {
	alt := strings.Join(unitNames, "|")
	re := regexp.MustCompile(`(?:var|` + alt + `)\s+(\w+)\s*=\s*new\s+(` + alt + `)\s*\(`)

	vars := make(map[string]string)
	for _, m := range re.FindAllStringSubmatch(source, -1) {
		vars[m[1]] = m[2]
	}
	return vars
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

func lineCol(source string, offset int) (int, int) {
	line := strings.Count(source[:offset], "\n") + 1
	col := offset - strings.LastIndex(source[:offset], "\n")
	return line, col
}
