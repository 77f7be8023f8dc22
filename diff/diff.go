package diff

import (
	"sort"
	"strings"

	"github.com/avkit/avpolicy/policy"
)

// Report is the result of comparing two policies across a set of kinds.
type Report struct {
	Deltas []Delta
}

// Run compares p1 (original) and p2 (modified) across kinds and
// returns every delta (spec §4.6). With no kinds given, every kind is
// compared.
func Run(p1, p2 *policy.Policy, kinds ...Kind) *Report {
	if len(kinds) == 0 {
		kinds = AllKinds()
	}
	r := &Report{}
	for _, k := range kinds {
		switch k {
		case KindClass:
			r.Deltas = append(r.Deltas, diffClasses(p1, p2)...)
		case KindCommon:
			r.Deltas = append(r.Deltas, diffCommons(p1, p2)...)
		case KindType:
			r.Deltas = append(r.Deltas, diffTypeNames(p1, p2, KindType, func(p *policy.Policy) []policy.Type { return p.ConcreteTypes() })...)
		case KindAttribute:
			r.Deltas = append(r.Deltas, diffTypeNames(p1, p2, KindAttribute, func(p *policy.Policy) []policy.Type { return p.Attributes() })...)
		case KindRole:
			r.Deltas = append(r.Deltas, diffRoles(p1, p2)...)
		case KindUser:
			r.Deltas = append(r.Deltas, diffUsers(p1, p2)...)
		case KindBoolean:
			r.Deltas = append(r.Deltas, diffBooleans(p1, p2)...)
		case KindAVRule:
			r.Deltas = append(r.Deltas, diffAVRules(p1, p2)...)
		case KindTERule:
			r.Deltas = append(r.Deltas, diffTERules(p1, p2)...)
		case KindRoleAllow:
			r.Deltas = append(r.Deltas, diffRoleAllows(p1, p2)...)
		case KindRoleTransition:
			r.Deltas = append(r.Deltas, diffRoleTransitions(p1, p2)...)
		case KindConditional:
			r.Deltas = append(r.Deltas, diffConditionals(p1, p2)...)
		}
	}
	return r
}

// --- named-symbol kinds (spec §4.6 steps 1-2) ---

func diffTypeNames(p1, p2 *policy.Policy, kind Kind, list func(*policy.Policy) []policy.Type) []Delta {
	names1 := make(map[string]struct{})
	for _, t := range list(p1) {
		names1[t.Name] = struct{}{}
	}
	names2 := make(map[string]struct{})
	for _, t := range list(p2) {
		names2[t.Name] = struct{}{}
	}
	var out []Delta
	for _, name := range sortedUnion(names1, names2) {
		_, in1 := names1[name]
		_, in2 := names2[name]
		switch {
		case in2 && !in1:
			out = append(out, Delta{Kind: kind, Form: FormAdded, Name: name})
		case in1 && !in2:
			out = append(out, Delta{Kind: kind, Form: FormRemoved, Name: name})
		}
	}
	return out
}

func diffClasses(p1, p2 *policy.Policy) []Delta {
	byName1 := make(map[string]policy.ObjectClass)
	for _, c := range p1.Classes() {
		byName1[c.Name] = c
	}
	byName2 := make(map[string]policy.ObjectClass)
	for _, c := range p2.Classes() {
		byName2[c.Name] = c
	}
	var out []Delta
	for _, name := range sortedUnionClass(byName1, byName2) {
		c1, in1 := byName1[name]
		c2, in2 := byName2[name]
		switch {
		case in2 && !in1:
			out = append(out, Delta{Kind: KindClass, Form: FormAdded, Name: name})
		case in1 && !in2:
			out = append(out, Delta{Kind: KindClass, Form: FormRemoved, Name: name})
		default:
			perms1 := permNames(p1.EffectivePermissions(c1.ID))
			perms2 := permNames(p2.EffectivePermissions(c2.ID))
			if !equalStringSlices(perms1, perms2) || c1.CommonName != c2.CommonName {
				out = append(out, Delta{
					Kind: KindClass, Form: FormModified, Name: name,
					Before: map[string]any{"permissions": perms1, "common": c1.CommonName},
					After:  map[string]any{"permissions": perms2, "common": c2.CommonName},
				})
			}
		}
	}
	return out
}

func diffCommons(p1, p2 *policy.Policy) []Delta {
	byName1 := make(map[string]policy.Common)
	for _, c := range p1.Commons() {
		byName1[c.Name] = c
	}
	byName2 := make(map[string]policy.Common)
	for _, c := range p2.Commons() {
		byName2[c.Name] = c
	}
	var out []Delta
	for _, name := range sortedUnionCommon(byName1, byName2) {
		c1, in1 := byName1[name]
		c2, in2 := byName2[name]
		switch {
		case in2 && !in1:
			out = append(out, Delta{Kind: KindCommon, Form: FormAdded, Name: name})
		case in1 && !in2:
			out = append(out, Delta{Kind: KindCommon, Form: FormRemoved, Name: name})
		default:
			perms1 := permNames(c1.Permissions)
			perms2 := permNames(c2.Permissions)
			if !equalStringSlices(perms1, perms2) {
				out = append(out, Delta{
					Kind: KindCommon, Form: FormModified, Name: name,
					Before: map[string]any{"permissions": perms1},
					After:  map[string]any{"permissions": perms2},
				})
			}
		}
	}
	return out
}

func diffRoles(p1, p2 *policy.Policy) []Delta {
	byName1 := make(map[string]policy.Role)
	for _, r := range p1.Roles() {
		byName1[r.Name] = r
	}
	byName2 := make(map[string]policy.Role)
	for _, r := range p2.Roles() {
		byName2[r.Name] = r
	}
	var out []Delta
	for _, name := range sortedUnionRole(byName1, byName2) {
		r1, in1 := byName1[name]
		r2, in2 := byName2[name]
		switch {
		case in2 && !in1:
			out = append(out, Delta{Kind: KindRole, Form: FormAdded, Name: name})
		case in1 && !in2:
			out = append(out, Delta{Kind: KindRole, Form: FormRemoved, Name: name})
		default:
			types1 := typeNameSet(p1, r1.Types)
			types2 := typeNameSet(p2, r2.Types)
			if !equalStringSlices(types1, types2) {
				out = append(out, Delta{
					Kind: KindRole, Form: FormModified, Name: name,
					Before: map[string]any{"types": types1},
					After:  map[string]any{"types": types2},
				})
			}
		}
	}
	return out
}

func diffUsers(p1, p2 *policy.Policy) []Delta {
	byName1 := make(map[string]policy.User)
	for _, u := range p1.Users() {
		byName1[u.Name] = u
	}
	byName2 := make(map[string]policy.User)
	for _, u := range p2.Users() {
		byName2[u.Name] = u
	}
	var out []Delta
	for _, name := range sortedUnionUser(byName1, byName2) {
		u1, in1 := byName1[name]
		u2, in2 := byName2[name]
		switch {
		case in2 && !in1:
			out = append(out, Delta{Kind: KindUser, Form: FormAdded, Name: name})
		case in1 && !in2:
			out = append(out, Delta{Kind: KindUser, Form: FormRemoved, Name: name})
		default:
			roles1 := roleNameSet(p1, u1.Roles)
			roles2 := roleNameSet(p2, u2.Roles)
			level1, range1 := "", ""
			level2, range2 := "", ""
			if u1.HasMLS {
				level1, range1 = p1.LevelString(u1.DefaultLevel), p1.RangeString(u1.Range)
			}
			if u2.HasMLS {
				level2, range2 = p2.LevelString(u2.DefaultLevel), p2.RangeString(u2.Range)
			}
			if !equalStringSlices(roles1, roles2) || level1 != level2 || range1 != range2 {
				out = append(out, Delta{
					Kind: KindUser, Form: FormModified, Name: name,
					Before: map[string]any{"roles": roles1, "default_level": level1, "range": range1},
					After:  map[string]any{"roles": roles2, "default_level": level2, "range": range2},
				})
			}
		}
	}
	return out
}

func diffBooleans(p1, p2 *policy.Policy) []Delta {
	byName1 := make(map[string]policy.Boolean)
	for _, b := range p1.Booleans() {
		byName1[b.Name] = b
	}
	byName2 := make(map[string]policy.Boolean)
	for _, b := range p2.Booleans() {
		byName2[b.Name] = b
	}
	var out []Delta
	for _, name := range sortedUnionBoolean(byName1, byName2) {
		b1, in1 := byName1[name]
		b2, in2 := byName2[name]
		switch {
		case in2 && !in1:
			out = append(out, Delta{Kind: KindBoolean, Form: FormAdded, Name: name})
		case in1 && !in2:
			out = append(out, Delta{Kind: KindBoolean, Form: FormRemoved, Name: name})
		default:
			if b1.Default != b2.Default {
				out = append(out, Delta{
					Kind: KindBoolean, Form: FormModified, Name: name,
					Before: map[string]any{"default": b1.Default},
					After:  map[string]any{"default": b2.Default},
				})
			}
		}
	}
	return out
}

// --- rule kinds, keyed by canonical quadruple (spec §4.6 step 3) ---

func diffAVRules(p1, p2 *policy.Policy) []Delta {
	keyed1 := keyAVRules(p1)
	keyed2 := keyAVRules(p2)
	var out []Delta
	for _, key := range sortedRuleKeys(keyed1, keyed2) {
		r1, in1 := keyed1[key]
		r2, in2 := keyed2[key]
		switch {
		case in2 && !in1:
			out = append(out, ruleDelta(p1, p2, key, KindAVRule, FormAdded, in1, in2))
		case in1 && !in2:
			out = append(out, ruleDelta(p1, p2, key, KindAVRule, FormRemoved, in1, in2))
		default:
			perms1 := r1.Permissions.Sorted()
			perms2 := r2.Permissions.Sorted()
			if !equalStringSlices(perms1, perms2) {
				d := ruleDelta(p1, p2, key, KindAVRule, FormModified, in1, in2)
				d.Before["permissions"] = perms1
				d.After["permissions"] = perms2
				out = append(out, d)
			}
		}
	}
	return out
}

func keyAVRules(p *policy.Policy) map[RuleKey]policy.AVRule {
	out := make(map[RuleKey]policy.AVRule)
	for _, r := range p.AVRules() {
		for _, key := range ruleKeys(p, KindAVRule, r.RuleKind.String(), r.Source, r.Target, r.Classes) {
			out[key] = r
		}
	}
	return out
}

func diffTERules(p1, p2 *policy.Policy) []Delta {
	keyed1 := keyTERules(p1)
	keyed2 := keyTERules(p2)
	var out []Delta
	for _, key := range sortedRuleKeys(keyed1, keyed2) {
		r1, in1 := keyed1[key]
		r2, in2 := keyed2[key]
		switch {
		case in2 && !in1:
			out = append(out, ruleDelta(p1, p2, key, KindTERule, FormAdded, in1, in2))
		case in1 && !in2:
			out = append(out, ruleDelta(p1, p2, key, KindTERule, FormRemoved, in1, in2))
		default:
			def1, def2 := p1.Type(r1.Default).Name, p2.Type(r2.Default).Name
			if def1 != def2 {
				d := ruleDelta(p1, p2, key, KindTERule, FormModified, in1, in2)
				d.Before["default"] = def1
				d.After["default"] = def2
				out = append(out, d)
			}
		}
	}
	return out
}

func keyTERules(p *policy.Policy) map[RuleKey]policy.TERule {
	out := make(map[RuleKey]policy.TERule)
	for _, r := range p.TERules() {
		for _, key := range ruleKeys(p, KindTERule, r.RuleKind.String(), r.Source, r.Target, r.Classes) {
			out[key] = r
		}
	}
	return out
}

// ruleKeys expands a rule's source/target/class sets into every ground
// (kind, source-name, target-name, class-name) quadruple it denotes,
// so a rule written via an attribute is compared the same way whether
// the other policy wrote the equivalent concrete-type rule directly.
func ruleKeys(p *policy.Policy, kind Kind, ruleKindName string, src, tgt policy.TypeSet, classes policy.ClassSet) []RuleKey {
	var out []RuleKey
	for s := range p.ExpandTypeSet(src, policy.TypeID(-1)) {
		for t := range p.ExpandTypeSet(tgt, s) {
			for c := range classes {
				out = append(out, RuleKey{
					Kind:   kind,
					Source: ruleKindName + ":" + p.Type(s).Name,
					Target: p.Type(t).Name,
					Class:  p.Class(c).Name,
				})
			}
		}
	}
	return out
}

func diffRoleAllows(p1, p2 *policy.Policy) []Delta {
	byKey1 := make(map[string]policy.RoleAllow)
	for _, r := range p1.RoleAllows() {
		byKey1[roleAllowKey(p1, r)] = r
	}
	byKey2 := make(map[string]policy.RoleAllow)
	for _, r := range p2.RoleAllows() {
		byKey2[roleAllowKey(p2, r)] = r
	}
	var out []Delta
	for _, key := range sortedStringKeys(byKey1, byKey2) {
		_, in1 := byKey1[key]
		_, in2 := byKey2[key]
		switch {
		case in2 && !in1:
			out = append(out, Delta{Kind: KindRoleAllow, Form: FormAdded, Name: key})
		case in1 && !in2:
			out = append(out, Delta{Kind: KindRoleAllow, Form: FormRemoved, Name: key})
		}
	}
	return out
}

func roleAllowKey(p *policy.Policy, r policy.RoleAllow) string {
	return roleSetNames(p, r.Source) + " -> " + roleSetNames(p, r.Target)
}

func diffRoleTransitions(p1, p2 *policy.Policy) []Delta {
	byKey1 := make(map[string]policy.RoleTransition)
	for _, r := range p1.RoleTransitions() {
		byKey1[roleTransitionKey(p1, r)] = r
	}
	byKey2 := make(map[string]policy.RoleTransition)
	for _, r := range p2.RoleTransitions() {
		byKey2[roleTransitionKey(p2, r)] = r
	}
	var out []Delta
	for _, key := range sortedStringKeys(byKey1, byKey2) {
		r1, in1 := byKey1[key]
		r2, in2 := byKey2[key]
		switch {
		case in2 && !in1:
			out = append(out, Delta{Kind: KindRoleTransition, Form: FormAdded, Name: key})
		case in1 && !in2:
			out = append(out, Delta{Kind: KindRoleTransition, Form: FormRemoved, Name: key})
		default:
			def1, def2 := p1.Role(r1.DefaultRole).Name, p2.Role(r2.DefaultRole).Name
			if def1 != def2 {
				out = append(out, Delta{
					Kind: KindRoleTransition, Form: FormModified, Name: key,
					Before: map[string]any{"default_role": def1},
					After:  map[string]any{"default_role": def2},
				})
			}
		}
	}
	return out
}

func roleTransitionKey(p *policy.Policy, r policy.RoleTransition) string {
	return roleSetNames(p, r.Source) + " -> " + typeSetNames(p, r.Target)
}

func diffConditionals(p1, p2 *policy.Policy) []Delta {
	byKey1 := make(map[string]policy.ConditionalExpr)
	for _, c := range p1.Conditionals() {
		byKey1[conditionalKey(p1, c)] = c
	}
	byKey2 := make(map[string]policy.ConditionalExpr)
	for _, c := range p2.Conditionals() {
		byKey2[conditionalKey(p2, c)] = c
	}
	var out []Delta
	for _, key := range sortedStringKeys(byKey1, byKey2) {
		_, in1 := byKey1[key]
		_, in2 := byKey2[key]
		switch {
		case in2 && !in1:
			out = append(out, Delta{Kind: KindConditional, Form: FormAdded, Name: key})
		case in1 && !in2:
			out = append(out, Delta{Kind: KindConditional, Form: FormRemoved, Name: key})
		}
	}
	return out
}

// conditionalKey names a conditional by its sorted set of referenced
// Boolean names: conditionals have no identifier of their own, and the
// expression tree itself can differ syntactically while meaning the
// same thing, so the Boolean set is the closest stable key available.
func conditionalKey(p *policy.Policy, c policy.ConditionalExpr) string {
	names := make([]string, 0, 1)
	for id := range c.ReferencedBooleans() {
		names = append(names, p.Boolean(id).Name)
	}
	sort.Strings(names)
	return strings.Join(names, ",")
}

// ruleDelta builds a rule Delta, tagging FormAdded/FormRemoved as
// FormAddedType/FormRemovedType when the rule's source or target type
// exists in only one of the two policies (spec §4.6 step 3).
func ruleDelta(p1, p2 *policy.Policy, key RuleKey, kind Kind, form Form, in1, in2 bool) Delta {
	if form == FormAdded && typeOnlyInOne(p1, p2, key.Source, key.Target) {
		form = FormAddedType
	}
	if form == FormRemoved && typeOnlyInOne(p1, p2, key.Source, key.Target) {
		form = FormRemovedType
	}
	return Delta{Kind: kind, Form: form, RuleKey: key, Before: map[string]any{}, After: map[string]any{}}
}

func typeOnlyInOne(p1, p2 *policy.Policy, sourceKeyName, targetName string) bool {
	src := sourceKeyName
	if idx := strings.IndexByte(sourceKeyName, ':'); idx >= 0 {
		src = sourceKeyName[idx+1:]
	}
	_, srcIn1 := p1.LookupType(src)
	_, srcIn2 := p2.LookupType(src)
	if srcIn1 != srcIn2 {
		return true
	}
	_, tgtIn1 := p1.LookupType(targetName)
	_, tgtIn2 := p2.LookupType(targetName)
	return tgtIn1 != tgtIn2
}

// --- small helpers ---

func permNames(perms []policy.Permission) []string {
	out := make([]string, len(perms))
	for i, p := range perms {
		out[i] = p.Name
	}
	sort.Strings(out)
	return out
}

func typeNameSet(p *policy.Policy, ids map[policy.TypeID]struct{}) []string {
	out := make([]string, 0, len(ids))
	for id := range ids {
		out = append(out, p.Type(id).Name)
	}
	sort.Strings(out)
	return out
}

func roleNameSet(p *policy.Policy, ids map[policy.RoleID]struct{}) []string {
	out := make([]string, 0, len(ids))
	for id := range ids {
		out = append(out, p.Role(id).Name)
	}
	sort.Strings(out)
	return out
}

func typeSetNames(p *policy.Policy, ts policy.TypeSet) string {
	var names []string
	for id := range ts.IDs {
		names = append(names, p.Type(id).Name)
	}
	sort.Strings(names)
	return strings.Join(names, ",")
}

func roleSetNames(p *policy.Policy, rs policy.RoleSet) string {
	var names []string
	for id := range rs {
		names = append(names, p.Role(id).Name)
	}
	sort.Strings(names)
	return strings.Join(names, ",")
}

func equalStringSlices(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func sortedUnion(a, b map[string]struct{}) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for n := range a {
		if _, ok := seen[n]; !ok {
			seen[n] = struct{}{}
			out = append(out, n)
		}
	}
	for n := range b {
		if _, ok := seen[n]; !ok {
			seen[n] = struct{}{}
			out = append(out, n)
		}
	}
	sort.Strings(out)
	return out
}

func sortedUnionClass(a, b map[string]policy.ObjectClass) []string {
	sa := make(map[string]struct{}, len(a))
	for n := range a {
		sa[n] = struct{}{}
	}
	sb := make(map[string]struct{}, len(b))
	for n := range b {
		sb[n] = struct{}{}
	}
	return sortedUnion(sa, sb)
}

func sortedUnionCommon(a, b map[string]policy.Common) []string {
	sa := make(map[string]struct{}, len(a))
	for n := range a {
		sa[n] = struct{}{}
	}
	sb := make(map[string]struct{}, len(b))
	for n := range b {
		sb[n] = struct{}{}
	}
	return sortedUnion(sa, sb)
}

func sortedUnionRole(a, b map[string]policy.Role) []string {
	sa := make(map[string]struct{}, len(a))
	for n := range a {
		sa[n] = struct{}{}
	}
	sb := make(map[string]struct{}, len(b))
	for n := range b {
		sb[n] = struct{}{}
	}
	return sortedUnion(sa, sb)
}

func sortedUnionUser(a, b map[string]policy.User) []string {
	sa := make(map[string]struct{}, len(a))
	for n := range a {
		sa[n] = struct{}{}
	}
	sb := make(map[string]struct{}, len(b))
	for n := range b {
		sb[n] = struct{}{}
	}
	return sortedUnion(sa, sb)
}

func sortedUnionBoolean(a, b map[string]policy.Boolean) []string {
	sa := make(map[string]struct{}, len(a))
	for n := range a {
		sa[n] = struct{}{}
	}
	sb := make(map[string]struct{}, len(b))
	for n := range b {
		sb[n] = struct{}{}
	}
	return sortedUnion(sa, sb)
}

func sortedRuleKeys[T any](a, b map[RuleKey]T) []RuleKey {
	seen := make(map[RuleKey]struct{}, len(a)+len(b))
	out := make([]RuleKey, 0, len(a)+len(b))
	for k := range a {
		if _, ok := seen[k]; !ok {
			seen[k] = struct{}{}
			out = append(out, k)
		}
	}
	for k := range b {
		if _, ok := seen[k]; !ok {
			seen[k] = struct{}{}
			out = append(out, k)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Source != out[j].Source {
			return out[i].Source < out[j].Source
		}
		if out[i].Target != out[j].Target {
			return out[i].Target < out[j].Target
		}
		return out[i].Class < out[j].Class
	})
	return out
}

func sortedStringKeys[T any](a, b map[string]T) []string {
	sa := make(map[string]struct{}, len(a))
	for n := range a {
		sa[n] = struct{}{}
	}
	sb := make(map[string]struct{}, len(b))
	for n := range b {
		sb[n] = struct{}{}
	}
	return sortedUnion(sa, sb)
}
