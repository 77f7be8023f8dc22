// Package loader reads policy source into the in-memory model built by
// policy.Builder. The loader is an opaque producer of that model (spec
// §1): parsing grammar internals are not part of the core's contract,
// only the shape of what comes out.
package loader

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/avkit/avpolicy/policy"
)

// ParseError reports a line-anchored problem in a textual policy
// source file, in the teacher's ParseError shape (compiler/parser.go).
type ParseError struct {
	File    string
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d: %s", e.File, e.Line, e.Message)
}

// TextLoader reads the textual declaration+rule grammar (spec §6): a
// line-oriented language of `keyword arg... ;` statements, one
// statement possibly spanning several physical lines until the
// terminating semicolon.
type TextLoader struct {
	file string
}

// NewTextLoader creates a loader for the named source (used only for
// ParseError.File; the actual bytes come from Load's reader).
func NewTextLoader(file string) *TextLoader {
	return &TextLoader{file: file}
}

// Load reads r and builds a *policy.Policy. Declarations must appear
// before any rule referencing them, matching the grammar's own
// forward-declaration requirement (spec §6 "LALR-parsable grammar").
func (l *TextLoader) Load(r io.Reader) (*policy.Policy, error) {
	b := policy.NewBuilder("", "")
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var stmt strings.Builder
	lineNum := 0
	stmtStart := 0

	flush := func() error {
		text := strings.TrimSpace(stmt.String())
		stmt.Reset()
		if text == "" {
			return nil
		}
		return l.applyStatement(b, text, stmtStart)
	}

	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		if idx := strings.IndexByte(line, '#'); idx >= 0 {
			line = line[:idx]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if stmt.Len() == 0 {
			stmtStart = lineNum
		}
		stmt.WriteString(line)
		stmt.WriteByte(' ')
		if strings.HasSuffix(line, ";") {
			if err := flush(); err != nil {
				return nil, err
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%s: error reading policy source: %w", l.file, err)
	}
	if err := flush(); err != nil {
		return nil, err
	}

	b.SetCapabilities(policy.Capabilities{
		AttributeNames: true,
		SyntacticRules: true,
		LineNumbers:    true,
		Conditionals:   true,
		SourceForm:     true,
	})
	return b.Build(), nil
}

func (l *TextLoader) applyStatement(b *policy.Builder, text string, line int) error {
	text = strings.TrimSuffix(strings.TrimSpace(text), ";")
	fields := tokenize(text)
	if len(fields) == 0 {
		return nil
	}
	kw := fields[0]

	switch kw {
	case "type":
		if len(fields) < 2 {
			return l.errf(line, "type statement expects a name: %s", text)
		}
		b.AddType(fields[1])
	case "attribute":
		if len(fields) < 2 {
			return l.errf(line, "attribute statement expects a name: %s", text)
		}
		b.AddAttribute(fields[1])
	case "typealias":
		if len(fields) < 3 || fields[2] != "alias" {
			return l.errf(line, "malformed typealias: %s", text)
		}
		primary, ok := b.LookupType(fields[1])
		if !ok {
			return l.errf(line, "typealias references unknown type %q", fields[1])
		}
		for _, name := range fields[3:] {
			b.AddAlias(name, primary)
		}
	case "typeattribute":
		if len(fields) < 3 {
			return l.errf(line, "malformed typeattribute: %s", text)
		}
		member, ok := b.LookupType(fields[1])
		if !ok {
			return l.errf(line, "typeattribute references unknown type %q", fields[1])
		}
		for _, name := range fields[2:] {
			attr, ok := b.LookupType(name)
			if !ok {
				return l.errf(line, "typeattribute references unknown attribute %q", name)
			}
			b.AddTypeAttribute(member, attr)
		}
	case "role":
		if len(fields) < 2 {
			return l.errf(line, "malformed role: %s", text)
		}
		b.AddRole(fields[1])
	case "class":
		if len(fields) < 2 {
			return l.errf(line, "malformed class: %s", text)
		}
		b.AddClass(fields[1], nil, "")
	case "allow", "neverallow", "auditallow", "dontaudit",
		"type_transition", "type_change", "type_member":
		return l.applyRule(b, kw, fields[1:], text, line)
	case "role_transition":
		return l.applyRoleTransition(b, fields[1:], text, line)
	case "bool":
		if len(fields) < 3 {
			return l.errf(line, "malformed bool: %s", text)
		}
		def, err := strconv.ParseBool(fields[2])
		if err != nil {
			return l.errf(line, "malformed bool default %q", fields[2])
		}
		b.AddBoolean(fields[1], def)
	default:
		return l.errf(line, "unknown statement keyword %q", kw)
	}
	return nil
}

func (l *TextLoader) applyRule(b *policy.Builder, kw string, fields []string, text string, line int) error {
	src, tgt, class, rest, err := splitRuleHead(fields)
	if err != nil {
		return l.errf(line, "%v: %s", err, text)
	}
	srcSet, err := l.symbolSet(b, src, line)
	if err != nil {
		return err
	}
	tgtSet, err := l.symbolSet(b, tgt, line)
	if err != nil {
		return err
	}
	classID, ok := b.LookupClass(class)
	if !ok {
		classID = b.AddClass(class, nil, "")
	}

	switch kw {
	case "allow", "neverallow", "auditallow", "dontaudit":
		var avKind policy.AVKind
		switch kw {
		case "allow":
			avKind = policy.AVAllow
		case "neverallow":
			avKind = policy.AVNeverallow
		case "auditallow":
			avKind = policy.AVAuditallow
		case "dontaudit":
			avKind = policy.AVDontaudit
		}
		ruleID := b.AddAVRule(policy.AVRule{
			RuleKind:    avKind,
			Source:      policy.NewTypeSet(srcSet...),
			Target:      policy.NewTypeSet(tgtSet...),
			Classes:     policy.NewClassSet(classID),
			Permissions: policy.NewPermSet(rest...),
		})
		b.AddAVRuleSyntax(ruleID, text+";", line)
	default:
		var teKind policy.TEKind
		switch kw {
		case "type_transition":
			teKind = policy.TETransition
		case "type_change":
			teKind = policy.TEChange
		case "type_member":
			teKind = policy.TEMember
		}
		if len(rest) != 1 {
			return l.errf(line, "%s expects exactly one default type: %s", kw, text)
		}
		def, ok := b.LookupType(rest[0])
		if !ok {
			return l.errf(line, "%s references unknown default type %q", kw, rest[0])
		}
		b.AddTERule(policy.TERule{
			RuleKind: teKind,
			Source:   policy.NewTypeSet(srcSet...),
			Target:   policy.NewTypeSet(tgtSet...),
			Classes:  policy.NewClassSet(classID),
			Default:  def,
		})
	}
	return nil
}

func (l *TextLoader) applyRoleTransition(b *policy.Builder, fields []string, text string, line int) error {
	if len(fields) < 3 {
		return l.errf(line, "malformed role_transition: %s", text)
	}
	srcRole, ok := b.LookupRole(fields[0])
	if !ok {
		return l.errf(line, "role_transition references unknown role %q", fields[0])
	}
	tgt, ok := b.LookupType(fields[1])
	if !ok {
		return l.errf(line, "role_transition references unknown type %q", fields[1])
	}
	defRole, ok := b.LookupRole(fields[2])
	if !ok {
		return l.errf(line, "role_transition references unknown default role %q", fields[2])
	}
	b.AddRoleTransition(policy.RoleTransition{
		Source:      policy.NewRoleSet(srcRole),
		Target:      policy.NewTypeSet(tgt),
		DefaultRole: defRole,
	})
	return nil
}

// symbolSet resolves a brace-or-bare name list to type ids, declaring
// nothing new: every referenced name must already be known.
func (l *TextLoader) symbolSet(b *policy.Builder, names []string, line int) ([]policy.TypeID, error) {
	out := make([]policy.TypeID, 0, len(names))
	for _, n := range names {
		if n == "self" {
			continue
		}
		id, ok := b.LookupType(n)
		if !ok {
			return nil, l.errf(line, "rule references unknown type %q", n)
		}
		out = append(out, id)
	}
	return out, nil
}

func (l *TextLoader) errf(line int, format string, a ...interface{}) error {
	return &ParseError{File: l.file, Line: line, Message: fmt.Sprintf(format, a...)}
}

// splitRuleHead splits `src tgt : class perm perm ...` (each of src/tgt
// possibly brace-wrapped) into its source list, target list, class
// name, and trailing word list (permissions or a single default type).
func splitRuleHead(fields []string) (src, tgt []string, class string, rest []string, err error) {
	i := 0
	src, i, err = readNameList(fields, i)
	if err != nil {
		return nil, nil, "", nil, err
	}
	tgt, i, err = readNameList(fields, i)
	if err != nil {
		return nil, nil, "", nil, err
	}
	if i >= len(fields) || fields[i] != ":" {
		return nil, nil, "", nil, fmt.Errorf("expected ':' before object class")
	}
	i++
	if i >= len(fields) {
		return nil, nil, "", nil, fmt.Errorf("missing object class")
	}
	class = fields[i]
	i++
	rest, i, err = readNameList(fields, i)
	if err != nil {
		return nil, nil, "", nil, err
	}
	return src, tgt, class, rest, nil
}

// readNameList reads either a single bare token or a `{ a b c }` group
// starting at fields[i], returning the names and the index just past it.
func readNameList(fields []string, i int) ([]string, int, error) {
	if i >= len(fields) {
		return nil, i, fmt.Errorf("unexpected end of rule")
	}
	if fields[i] != "{" {
		return []string{fields[i]}, i + 1, nil
	}
	i++
	var names []string
	for i < len(fields) && fields[i] != "}" {
		names = append(names, fields[i])
		i++
	}
	if i >= len(fields) {
		return nil, i, fmt.Errorf("unterminated '{' group")
	}
	return names, i + 1, nil
}

// tokenize splits a statement into words, treating "{", "}", and ":" as
// standalone tokens even when not surrounded by spaces.
func tokenize(s string) []string {
	var out []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			out = append(out, cur.String())
			cur.Reset()
		}
	}
	for _, r := range s {
		switch r {
		case '{', '}', ':':
			flush()
			out = append(out, string(r))
		case ' ', '\t':
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return out
}
