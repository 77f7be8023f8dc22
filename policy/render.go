package policy

import (
	"fmt"
	"sort"
	"strings"
)

// renderNameList wraps a name list in braces when it holds more than one
// element, matching the declarative syntax's convention that singleton
// sets are written bare (spec §4.5 "Rule rendering").
func renderNameList(names []string) string {
	sort.Strings(names)
	if len(names) == 1 {
		return names[0]
	}
	return "{ " + strings.Join(names, " ") + " }"
}

func (p *Policy) typeSetNames(ts TypeSet) []string {
	names := make([]string, 0, len(ts.IDs)+1)
	if ts.Self {
		names = append(names, "self")
	}
	for id := range ts.IDs {
		names = append(names, p.types.Get(id).Name)
	}
	return names
}

func (p *Policy) classSetNames(cs ClassSet) []string {
	names := make([]string, 0, len(cs))
	for id := range cs {
		names = append(names, p.classes.Get(id).Name)
	}
	return names
}

func (p *Policy) roleSetNames(rs RoleSet) []string {
	names := make([]string, 0, len(rs))
	for id := range rs {
		names = append(names, p.roles.Get(id).Name)
	}
	return names
}

// RenderAV returns the canonical declarative form of an AV rule, e.g.
// "allow src tgt : file { read write };" (spec §4.5).
func (p *Policy) RenderAV(r AVRule) string {
	perms := r.Permissions.Sorted()
	permStr := "{ }"
	if len(perms) > 0 {
		permStr = renderNameList(perms)
	}
	return fmt.Sprintf("%s %s %s : %s %s;",
		r.RuleKind.String(),
		renderNameList(p.typeSetNames(r.Source)),
		renderNameList(p.typeSetNames(r.Target)),
		renderNameList(p.classSetNames(r.Classes)),
		permStr,
	)
}

// RenderTE returns the canonical declarative form of a TE rule, e.g.
// "type_transition src tgt : class new_type;" (spec §4.5).
func (p *Policy) RenderTE(r TERule) string {
	return fmt.Sprintf("%s %s %s : %s %s;",
		r.RuleKind.String(),
		renderNameList(p.typeSetNames(r.Source)),
		renderNameList(p.typeSetNames(r.Target)),
		renderNameList(p.classSetNames(r.Classes)),
		p.types.Get(r.Default).Name,
	)
}

// RenderRoleAllow returns "allow src tgt;" in role-allow form.
func (p *Policy) RenderRoleAllow(r RoleAllow) string {
	return fmt.Sprintf("allow %s %s;",
		renderNameList(p.roleSetNames(r.Source)),
		renderNameList(p.roleSetNames(r.Target)),
	)
}

// RenderRoleTransition returns "role_transition src tgt role;" (spec §4.5).
func (p *Policy) RenderRoleTransition(r RoleTransition) string {
	return fmt.Sprintf("role_transition %s %s %s;",
		renderNameList(p.roleSetNames(r.Source)),
		renderNameList(p.typeSetNames(r.Target)),
		p.roles.Get(r.DefaultRole).Name,
	)
}

// RenderRangeTransition returns "range_transition src tgt : class range;"
// (spec §4.5).
func (p *Policy) RenderRangeTransition(r RangeTransition) string {
	return fmt.Sprintf("range_transition %s %s : %s %s;",
		renderNameList(p.typeSetNames(r.Source)),
		renderNameList(p.typeSetNames(r.Target)),
		renderNameList(p.classSetNames(r.Classes)),
		p.RangeString(r.TargetRange),
	)
}
