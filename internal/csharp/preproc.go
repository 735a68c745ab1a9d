package csharp

import (
	"strings"
	"unicode"
)

// Preprocess evaluates #if/#elif/#else/#endif directives against the given
// symbol set and blanks every inactive region. Blanked characters become
// spaces and newlines are kept, so line/column positions reported on the
// result are valid for the original source.
func Preprocess(src string, symbols []string) string {
	defined := make(map[string]bool)
	for _, s := range symbols {
		defined[s] = true
	}

	type frame struct {
		parentActive bool
		taken        bool // a branch of this #if chain already matched
		active       bool // current branch is emitting
	}

	var stack []frame
	active := func() bool {
		for _, f := range stack {
			if !f.active {
				return false
			}
		}
		return true
	}

	var out strings.Builder
	out.Grow(len(src))

	lines := strings.SplitAfter(src, "\n")
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		directive, arg := splitDirective(trimmed)

		switch directive {
		case "#if":
			parent := active()
			cond := parent && evalCondition(arg, defined)
			stack = append(stack, frame{parentActive: parent, taken: cond, active: cond})
			blankLine(&out, line)
			continue
		case "#elif":
			if n := len(stack); n > 0 {
				f := &stack[n-1]
				cond := f.parentActive && !f.taken && evalCondition(arg, defined)
				f.active = cond
				if cond {
					f.taken = true
				}
			}
			blankLine(&out, line)
			continue
		case "#else":
			if n := len(stack); n > 0 {
				f := &stack[n-1]
				f.active = f.parentActive && !f.taken
				f.taken = true
			}
			blankLine(&out, line)
			continue
		case "#endif":
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
			blankLine(&out, line)
			continue
		case "#define":
			if active() && arg != "" {
				defined[arg] = true
			}
			blankLine(&out, line)
			continue
		case "#undef":
			if active() && arg != "" {
				delete(defined, arg)
			}
			blankLine(&out, line)
			continue
		}

		if active() {
			out.WriteString(line)
		} else {
			blankLine(&out, line)
		}
	}

	return out.String()
}

func splitDirective(trimmed string) (string, string) {
	if !strings.HasPrefix(trimmed, "#") {
		return "", ""
	}
	name := trimmed
	arg := ""
	if idx := strings.IndexFunc(trimmed, unicode.IsSpace); idx != -1 {
		name = trimmed[:idx]
		arg = strings.TrimSpace(trimmed[idx+1:])
	}
	switch name {
	case "#if", "#elif", "#else", "#endif", "#define", "#undef":
		return name, arg
	}
	return "", ""
}

func blankLine(out *strings.Builder, line string) {
	for _, r := range line {
		if r == '\n' {
			out.WriteByte('\n')
		} else {
			out.WriteByte(' ')
		}
	}
}

// Condition grammar: ident, true, false, !, &&, ||, ==, != and parentheses.
// This is the full grammar C# allows in #if expressions.

type condParser struct {
	toks []string
	pos  int
}

func evalCondition(expr string, defined map[string]bool) bool {
	p := &condParser{toks: tokenizeCondition(expr)}
	v := p.parseOr(defined)
	return v
}

func tokenizeCondition(expr string) []string {
	var toks []string
	i := 0
	for i < len(expr) {
		c := expr[i]
		switch {
		case c == ' ' || c == '\t':
			i++
		case c == '(' || c == ')':
			toks = append(toks, string(c))
			i++
		case c == '!' && i+1 < len(expr) && expr[i+1] == '=':
			toks = append(toks, "!=")
			i += 2
		case c == '!':
			toks = append(toks, "!")
			i++
		case c == '&' && i+1 < len(expr) && expr[i+1] == '&':
			toks = append(toks, "&&")
			i += 2
		case c == '|' && i+1 < len(expr) && expr[i+1] == '|':
			toks = append(toks, "||")
			i += 2
		case c == '=' && i+1 < len(expr) && expr[i+1] == '=':
			toks = append(toks, "==")
			i += 2
		default:
			j := i
			for j < len(expr) && (isIdentChar(expr[j])) {
				j++
			}
			if j == i {
				// Unknown character, skip it
				i++
				continue
			}
			toks = append(toks, expr[i:j])
			i = j
		}
	}
	return toks
}

func isIdentChar(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func (p *condParser) peek() string {
	if p.pos < len(p.toks) {
		return p.toks[p.pos]
	}
	return ""
}

func (p *condParser) next() string {
	t := p.peek()
	if t != "" {
		p.pos++
	}
	return t
}

func (p *condParser) parseOr(defined map[string]bool) bool {
	v := p.parseAnd(defined)
	for p.peek() == "||" {
		p.next()
		r := p.parseAnd(defined)
		v = v || r
	}
	return v
}

func (p *condParser) parseAnd(defined map[string]bool) bool {
	v := p.parseEquality(defined)
	for p.peek() == "&&" {
		p.next()
		r := p.parseEquality(defined)
		v = v && r
	}
	return v
}

func (p *condParser) parseEquality(defined map[string]bool) bool {
	v := p.parseUnary(defined)
	for {
		switch p.peek() {
		case "==":
			p.next()
			v = v == p.parseUnary(defined)
		case "!=":
			p.next()
			v = v != p.parseUnary(defined)
		default:
			return v
		}
	}
}

func (p *condParser) parseUnary(defined map[string]bool) bool {
	switch p.peek() {
	case "!":
		p.next()
		return !p.parseUnary(defined)
	case "(":
		p.next()
		v := p.parseOr(defined)
		if p.peek() == ")" {
			p.next()
		}
		return v
	}
	tok := p.next()
	switch tok {
	case "true":
		return true
	case "false", "":
		return false
	}
	return defined[tok]
}
