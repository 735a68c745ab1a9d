package validator

import (
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/uvs-community/uvs-dev-tools/internal/csharp"
	"github.com/uvs-community/uvs-dev-tools/internal/diag"
	"github.com/uvs-community/uvs-dev-tools/internal/refset"
)

// binder resolves the type and namespace references of one file against the
// reference set. It deliberately does not distinguish "your code is wrong"
// from "you didn't supply the right references": both surface as CS0246.
type binder struct {
	file *csharp.File
	set  *refset.Set

	declared map[string]bool // type names declared in this file
	usings   []string        // imported namespaces, in order
	usingUse map[string]bool // namespace -> was needed at least once

	diags []diag.Diagnostic
}

func newBinder(file *csharp.File, set *refset.Set) *binder {
	return &binder{
		file:     file,
		set:      set,
		declared: make(map[string]bool),
		usingUse: make(map[string]bool),
	}
}

func (b *binder) bind() []diag.Diagnostic {
	b.collectDeclarations()
	b.collectUsings()
	b.checkTypeUsages()
	b.checkMemberAccess()
	b.reportUnusedUsings()
	return b.diags
}

func (b *binder) report(sev diag.Severity, code, msg string, n *sitter.Node) {
	line, col := csharp.Position(n)
	b.diags = append(b.diags, diag.Diagnostic{
		Severity: sev,
		Code:     code,
		Message:  msg,
		Line:     line,
		Column:   col,
	})
}

var declarationNodes = map[string]bool{
	"class_declaration":     true,
	"struct_declaration":    true,
	"interface_declaration": true,
	"enum_declaration":      true,
	"delegate_declaration":  true,
	"record_declaration":    true,
}

func (b *binder) collectDeclarations() {
	b.file.Walk(func(n *sitter.Node) bool {
		if declarationNodes[n.Type()] || n.Type() == "type_parameter" {
			if name := b.declarationName(n); name != "" {
				b.declared[name] = true
			}
		}
		return true
	})
}

func (b *binder) declarationName(n *sitter.Node) string {
	if name := n.ChildByFieldName("name"); name != nil {
		return b.file.Text(name)
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		if c.Type() == "identifier" {
			return b.file.Text(c)
		}
	}
	return ""
}

func (b *binder) collectUsings() {
	seen := make(map[string]bool)
	b.file.Walk(func(n *sitter.Node) bool {
		if n.Type() != "using_directive" {
			return n.Type() == "compilation_unit" || n.Type() == "namespace_declaration" ||
				n.Type() == "declaration_list" || n.Type() == "using_directive"
		}

		nameNode := usingName(n)
		if nameNode == nil {
			return false
		}
		name := b.file.Text(nameNode)

		if seen[name] {
			b.report(diag.SeverityWarning, "CS0105",
				fmt.Sprintf("The using directive for '%s' appeared previously in this namespace", name), n)
			return false
		}
		seen[name] = true

		if b.set.HasNamespace(name) {
			b.usings = append(b.usings, name)
			return false
		}
		if _, ok := b.set.Type(name); ok {
			// using static over a known type
			return false
		}

		first := name
		if idx := strings.Index(name, "."); idx != -1 {
			first = name[:idx]
		}
		if b.set.HasNamespace(first) {
			b.report(diag.SeverityError, "CS0234",
				fmt.Sprintf("The type or namespace name '%s' does not exist in the namespace '%s' (are you missing an assembly reference?)",
					name[strings.LastIndex(name, ".")+1:], name[:strings.LastIndex(name, ".")]), n)
		} else {
			b.report(diag.SeverityError, "CS0246",
				fmt.Sprintf("The type or namespace name '%s' could not be found (are you missing a using directive or an assembly reference?)", first), n)
		}
		return false
	})
}

// usingName picks the imported name of a using directive, skipping the
// alias part of `using X = Y;`.
func usingName(n *sitter.Node) *sitter.Node {
	var last *sitter.Node
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		switch c.Type() {
		case "identifier", "qualified_name":
			last = c
		}
	}
	return last
}

// checkTypeUsages resolves type references in contexts where a compiler
// must bind them: declarations, creations, typeof, base lists, parameters
// and attributes. Expression positions are left alone, keeping false
// positives out at the cost of missing some unresolved names.
func (b *binder) checkTypeUsages() {
	b.file.Walk(func(n *sitter.Node) bool {
		switch n.Type() {
		case "variable_declaration", "object_creation_expression", "typeof_expression":
			if t := typeOperand(n); t != nil {
				b.resolveTypeNode(t, false)
			}
		case "base_list":
			for i := 0; i < int(n.NamedChildCount()); i++ {
				b.resolveTypeNode(n.NamedChild(i), false)
			}
		case "parameter":
			// A single named child is a lambda parameter without a type.
			if n.NamedChildCount() >= 2 {
				b.resolveTypeNode(n.NamedChild(0), false)
			}
		case "attribute":
			if name := n.ChildByFieldName("name"); name != nil {
				b.resolveTypeNode(name, true)
			}
		}
		return true
	})
}

// typeOperand finds the type node of a declaration or creation expression.
func typeOperand(n *sitter.Node) *sitter.Node {
	if t := n.ChildByFieldName("type"); t != nil {
		return t
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		if isTypeNode(c.Type()) {
			return c
		}
	}
	return nil
}

func isTypeNode(kind string) bool {
	switch kind {
	case "identifier", "qualified_name", "generic_name", "predefined_type",
		"array_type", "nullable_type", "implicit_type":
		return true
	}
	return false
}

// resolveTypeNode checks one type reference, recursing through array,
// nullable and generic wrappers. asAttribute also tries the conventional
// Attribute-suffixed name.
func (b *binder) resolveTypeNode(n *sitter.Node, asAttribute bool) {
	switch n.Type() {
	case "predefined_type", "implicit_type":
		return
	case "array_type", "nullable_type", "pointer_type":
		if inner := typeOperand(n); inner != nil {
			b.resolveTypeNode(inner, false)
		}
		return
	case "generic_name":
		base := ""
		arity := 0
		for i := 0; i < int(n.NamedChildCount()); i++ {
			c := n.NamedChild(i)
			switch c.Type() {
			case "identifier":
				base = b.file.Text(c)
			case "type_argument_list":
				for j := 0; j < int(c.NamedChildCount()); j++ {
					arity++
					b.resolveTypeNode(c.NamedChild(j), false)
				}
			}
		}
		if base != "" {
			b.resolveSimpleName(fmt.Sprintf("%s`%d", base, arity), base, n, false)
		}
		return
	case "identifier":
		name := b.file.Text(n)
		if name == "var" || name == "dynamic" || name == "nameof" {
			return
		}
		b.resolveSimpleName(name, name, n, asAttribute)
		return
	case "qualified_name":
		b.resolveQualifiedName(n)
		return
	}
}

func (b *binder) resolveSimpleName(metaName, displayName string, n *sitter.Node, asAttribute bool) {
	if b.declared[displayName] {
		return
	}
	if t, ok := b.set.ResolveName(metaName, b.usings); ok {
		b.markNamespaceUsed(t.FullName)
		return
	}
	if asAttribute {
		if t, ok := b.set.ResolveName(metaName+"Attribute", b.usings); ok {
			b.markNamespaceUsed(t.FullName)
			return
		}
	}
	b.report(diag.SeverityError, "CS0246",
		fmt.Sprintf("The type or namespace name '%s' could not be found (are you missing a using directive or an assembly reference?)", displayName), n)
}

func (b *binder) resolveQualifiedName(n *sitter.Node) {
	// A generic tail needs the metadata spelling (Ns.List`1, not Ns.List<T>).
	if tail := n.ChildByFieldName("name"); tail != nil && tail.Type() == "generic_name" {
		qualifier := n.ChildByFieldName("qualifier")
		if qualifier == nil {
			return
		}
		base := ""
		arity := 0
		for i := 0; i < int(tail.NamedChildCount()); i++ {
			c := tail.NamedChild(i)
			switch c.Type() {
			case "identifier":
				base = b.file.Text(c)
			case "type_argument_list":
				for j := 0; j < int(c.NamedChildCount()); j++ {
					arity++
					b.resolveTypeNode(c.NamedChild(j), false)
				}
			}
		}
		meta := fmt.Sprintf("%s.%s`%d", b.file.Text(qualifier), base, arity)
		if _, ok := b.set.ResolveName(meta, b.usings); !ok {
			b.report(diag.SeverityError, "CS0246",
				fmt.Sprintf("The type or namespace name '%s' could not be found (are you missing a using directive or an assembly reference?)", b.file.Text(n)), n)
		}
		return
	}

	full := b.file.Text(n)
	if _, ok := b.set.ResolveName(full, b.usings); ok {
		return
	}

	first := full
	if idx := strings.Index(full, "."); idx != -1 {
		first = full[:idx]
	}
	if b.declared[first] {
		// Nested type of a locally declared one; out of binding scope.
		return
	}

	if b.set.HasNamespace(full[:strings.LastIndex(full, ".")]) {
		b.report(diag.SeverityError, "CS0234",
			fmt.Sprintf("The type or namespace name '%s' does not exist in the namespace '%s' (are you missing an assembly reference?)",
				full[strings.LastIndex(full, ".")+1:], full[:strings.LastIndex(full, ".")]), n)
		return
	}
	if !b.set.HasNamespace(first) {
		b.report(diag.SeverityError, "CS0246",
			fmt.Sprintf("The type or namespace name '%s' could not be found (are you missing a using directive or an assembly reference?)", first), n)
	}
}

func (b *binder) markNamespaceUsed(fullName string) {
	idx := strings.LastIndex(fullName, ".")
	if idx == -1 {
		return
	}
	b.usingUse[fullName[:idx]] = true
}

// checkMemberAccess flags members missing from catalog-complete types, for
// locals whose type is pinned by an object creation initializer.
func (b *binder) checkMemberAccess() {
	locals := make(map[string]*refset.TypeDef)

	b.file.Walk(func(n *sitter.Node) bool {
		if n.Type() != "variable_declarator" {
			return true
		}
		var name string
		if id := n.ChildByFieldName("name"); id != nil {
			name = b.file.Text(id)
		} else if c := n.NamedChild(0); c != nil && c.Type() == "identifier" {
			name = b.file.Text(c)
		}
		creation := findDescendant(n, "object_creation_expression")
		if name == "" || creation == nil {
			return true
		}
		t := typeOperand(creation)
		if t == nil {
			return true
		}
		if def := b.lookupTypeNode(t); def != nil && def.Complete {
			locals[name] = def
		}
		return true
	})

	b.file.Walk(func(n *sitter.Node) bool {
		if n.Type() != "member_access_expression" {
			return true
		}
		expr := n.ChildByFieldName("expression")
		nameNode := n.ChildByFieldName("name")
		if expr == nil || nameNode == nil || expr.Type() != "identifier" {
			return true
		}
		def, ok := locals[b.file.Text(expr)]
		if !ok {
			return true
		}
		member := b.file.Text(nameNode)
		if !def.HasMember(member) {
			b.report(diag.SeverityError, "CS1061",
				fmt.Sprintf("'%s' does not contain a definition for '%s' and no accessible extension method '%s' could be found (are you missing a using directive or an assembly reference?)",
					def.FullName, member, member), nameNode)
		}
		return true
	})
}

// findDescendant returns the first node of the given kind below n, in
// document order.
func findDescendant(n *sitter.Node, kind string) *sitter.Node {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		if c.Type() == kind {
			return c
		}
		if found := findDescendant(c, kind); found != nil {
			return found
		}
	}
	return nil
}

// lookupTypeNode resolves a type node to its catalog definition without
// reporting; unresolved types are handled by checkTypeUsages.
func (b *binder) lookupTypeNode(n *sitter.Node) *refset.TypeDef {
	switch n.Type() {
	case "identifier":
		if t, ok := b.set.ResolveName(b.file.Text(n), b.usings); ok {
			return t
		}
	case "qualified_name":
		if t, ok := b.set.ResolveName(b.file.Text(n), b.usings); ok {
			return t
		}
	}
	return nil
}

// reportUnusedUsings emits the hidden-severity unnecessary-using finding the
// compiler produces; the severity filter drops it from tool output.
func (b *binder) reportUnusedUsings() {
	b.file.Walk(func(n *sitter.Node) bool {
		if n.Type() != "using_directive" {
			return true
		}
		nameNode := usingName(n)
		if nameNode == nil {
			return false
		}
		name := b.file.Text(nameNode)
		if b.set.HasNamespace(name) && !b.usingUse[name] {
			b.report(diag.SeverityHidden, "CS8019", "Unnecessary using directive.", n)
		}
		return false
	})
}
