package policy

import "sync"

// Capabilities reports what a loaded policy retains, per spec §6's
// capability query.
type Capabilities struct {
	AttributeNames    bool
	SyntacticRules    bool
	LineNumbers       bool
	Conditionals      bool
	MLS               bool
	PolicyCapabilities bool
	SourceForm        bool
	IsModule          bool
	PolicyVersion     int
}

// SyntacticRule is the pre-expansion source form of a rule: the literal
// names as written, plus the line it came from. Several analyses want
// this for a readable Proof.Text (SPEC_FULL §4.1.a); it is optional —
// binary policies that stripped syntactic rules simply carry none.
type SyntacticRule struct {
	Text string
	Line int
}

// Policy is the complete, immutable, in-memory model of a compiled
// policy (spec §3). It is built once by Builder.Build and then shared by
// read-only reference with every consumer; the rule hash index is built
// eagerly as part of Build so concurrent readers never race on it
// (spec §5 option (a)).
type Policy struct {
	ModuleName string
	Version    string
	Caps       Capabilities

	types  *typeStore
	classes *classStore
	roles  *roleStore
	users  *userStore
	bools  *boolStore
	mls    *mlsStore

	avRules       []AVRule
	teRules       []TERule
	roleAllows    []RoleAllow
	roleTrans     []RoleTransition
	rangeTrans    []RangeTransition
	constraints   []Constraint
	conditionals  []ConditionalExpr
	initialSIDs   []InitialSID
	syntacticAV   map[RuleID]SyntacticRule

	index     *RuleIndex
	indexOnce sync.Once
}

// buildIndex performs the one-shot eager build described in spec §4.2 and
// §5. It is guarded by sync.Once (spec §9: "make it a lazily-initialized
// field of the policy object, guarded by a one-shot initializer, so no
// caller can forget") even though Builder.Build calls it eagerly, so that
// a future re-index after a Boolean flip (which does not require a full
// reload) cannot run the expensive build twice concurrently.
func (p *Policy) buildIndex() {
	p.indexOnce.Do(func() {
		idx := newRuleIndex()
		for _, r := range p.avRules {
			for src := range r.Source.Expand(invalidTypeIDForSelf, p.types) {
				for tgt := range r.Target.Expand(src, p.types) {
					for class := range r.Classes {
						idx.append(RuleIndexKey{src, tgt, class, r.RuleKind.Kind()}, r.ID, r.Permissions)
					}
				}
			}
		}
		for _, r := range p.teRules {
			for src := range r.Source.Expand(invalidTypeIDForSelf, p.types) {
				for tgt := range r.Target.Expand(src, p.types) {
					for class := range r.Classes {
						idx.append(RuleIndexKey{src, tgt, class, r.RuleKind.Kind()}, r.ID, nil)
					}
				}
			}
		}
		p.index = idx
	})
}

// invalidTypeIDForSelf is used when expanding a rule's own Source set:
// "self" cannot legally appear in a source set (only in a target set, or
// occasionally role/range rules), so expansion with no ground source yet
// degrades to "no match" rather than panicking.
const invalidTypeIDForSelf = TypeID(invalidID)

// Index returns the policy's rule hash index, building it on first use if
// Builder.Build had not already done so.
func (p *Policy) Index() *RuleIndex {
	p.buildIndex()
	return p.index
}

// LookupType resolves a type or alias name to its TypeID.
func (p *Policy) LookupType(name string) (TypeID, bool) { return p.types.Lookup(name) }

// Type returns the Type record for id.
func (p *Policy) Type(id TypeID) Type { return p.types.Get(id) }

// Types returns every primary (concrete or attribute) type, insertion order.
func (p *Policy) Types() []Type { return p.types.Primaries() }

// ConcreteTypes returns only concrete types.
func (p *Policy) ConcreteTypes() []Type { return p.types.Concretes() }

// Attributes returns only attribute types.
func (p *Policy) Attributes() []Type { return p.types.Attributes() }

// ExpandType returns the concrete type ids id denotes (spec §4.1).
func (p *Policy) ExpandType(id TypeID) map[TypeID]struct{} { return p.types.Expand(id) }

// ExpandTypeSet returns the concrete type ids a rule's TypeSet denotes,
// resolving "self" against ruleSource (spec §4.1, §4.2). Used against a
// *ground* type set to enumerate the concrete members it stands for —
// the rule hash index build, diff's rule-key quadruples, and analyses
// that walk concrete domains. Not a substitute for TypeSetMatches when
// testing a query candidate against a rule's literal set: expanding an
// attribute to its members before intersecting erases the
// attribute-vs-member distinction spec §4.1 requires.
func (p *Policy) ExpandTypeSet(ts TypeSet, ruleSource TypeID) map[TypeID]struct{} {
	return ts.Expand(ruleSource, p.types)
}

// AttributesOfType returns the attribute ids concrete type id belongs to.
func (p *Policy) AttributesOfType(id TypeID) map[TypeID]struct{} { return p.types.AttributesOf(id) }

// MembersOfAttribute returns the concrete member set of attribute id.
func (p *Policy) MembersOfAttribute(id TypeID) map[TypeID]struct{} { return p.types.Members(id) }

// TypeSetMatches reports whether concrete type t is denoted by ts,
// per spec §4.1: direct id, an attribute of t listed in ts, or (when
// ts is "self") t equaling ruleSource.
func (p *Policy) TypeSetMatches(ts TypeSet, t TypeID, ruleSource TypeID) bool {
	return ts.Matches(t, ruleSource, p.types)
}

// LookupClass resolves a class name to its ClassID.
func (p *Policy) LookupClass(name string) (ClassID, bool) { return p.classes.Lookup(name) }

// Class returns the ObjectClass record for id.
func (p *Policy) Class(id ClassID) ObjectClass { return p.classes.Get(id) }

// Classes returns every declared object class.
func (p *Policy) Classes() []ObjectClass { return p.classes.All() }

// Commons returns every declared common permission set.
func (p *Policy) Commons() []Common { return p.classes.AllCommons() }

// EffectivePermissions returns a class's own permissions unioned with its
// common parent's (spec §3).
func (p *Policy) EffectivePermissions(id ClassID) []Permission { return p.classes.EffectivePermissions(id) }

// LookupRole resolves a role name to its RoleID.
func (p *Policy) LookupRole(name string) (RoleID, bool) { return p.roles.Lookup(name) }

// Role returns the Role record for id.
func (p *Policy) Role(id RoleID) Role { return p.roles.Get(id) }

// Roles returns every declared role.
func (p *Policy) Roles() []Role { return p.roles.All() }

// LookupUser resolves a user name to its UserID.
func (p *Policy) LookupUser(name string) (UserID, bool) { return p.users.Lookup(name) }

// User returns the User record for id.
func (p *Policy) User(id UserID) User { return p.users.Get(id) }

// Users returns every declared user.
func (p *Policy) Users() []User { return p.users.All() }

// LookupBoolean resolves a Boolean name to its BoolID.
func (p *Policy) LookupBoolean(name string) (BoolID, bool) { return p.bools.Lookup(name) }

// Boolean returns the Boolean record for id.
func (p *Policy) Boolean(id BoolID) Boolean { return p.bools.Get(id) }

// Booleans returns every declared Boolean.
func (p *Policy) Booleans() []Boolean { return p.bools.All() }

// SetBoolean flips a Boolean's current value in place, changing which
// conditional rules are "enabled" for subsequent queries.
func (p *Policy) SetBoolean(id BoolID, value bool) { p.bools.set(id, value) }

// LookupSensitivity resolves a sensitivity (or alias) name to its SensID.
func (p *Policy) LookupSensitivity(name string) (SensID, bool) { return p.mls.LookupSens(name) }

// LookupCategory resolves a category (or alias) name to its CategoryID.
func (p *Policy) LookupCategory(name string) (CategoryID, bool) { return p.mls.LookupCat(name) }

// Sensitivities returns every sensitivity, ordered by its numeric order.
func (p *Policy) Sensitivities() []Sensitivity { return p.mls.SensByOrder() }

// Sensitivity returns the Sensitivity record for id.
func (p *Policy) Sensitivity(id SensID) Sensitivity { return p.mls.GetSens(id) }

// Category returns the Category record for id.
func (p *Policy) Category(id CategoryID) Category { return p.mls.GetCat(id) }

// CompareLevels implements spec §4.3's compare(a,b).
func (p *Policy) CompareLevels(a, b Level) Dominance { return p.mls.CompareLevels(a, b) }

// RangeContains implements spec §4.3's range.contains(level).
func (p *Policy) RangeContains(r Range, l Level) bool { return p.mls.Contains(r, l) }

// RangeContainsRange implements spec §4.3's range.contains_range(sub).
func (p *Policy) RangeContainsRange(r, sub Range) bool { return p.mls.ContainsRange(r, sub) }

// RangeCompare implements spec §4.3's four-mode range comparison.
func (p *Policy) RangeCompare(a, b Range, mode RangeCompareMode) bool {
	return p.mls.RangeCompare(a, b, mode)
}

// EnumerateLevels implements spec §4.3's range.enumerate_levels.
func (p *Policy) EnumerateLevels(r Range) []Level { return p.mls.EnumerateLevels(r) }

// LevelString renders a level canonically.
func (p *Policy) LevelString(l Level) string { return p.mls.LevelString(l) }

// RangeString renders a range canonically.
func (p *Policy) RangeString(r Range) string { return p.mls.RangeString(r) }

// AVRules returns every access-vector rule, in rule-table (declaration)
// order.
func (p *Policy) AVRules() []AVRule { return p.avRules }

// AVRule returns the AVRule with the given id.
func (p *Policy) AVRule(id RuleID) AVRule { return p.avRules[id] }

// TERules returns every type-enforcement rule, in rule-table order.
func (p *Policy) TERules() []TERule { return p.teRules }

// TERule returns the TERule with the given id.
func (p *Policy) TERule(id RuleID) TERule { return p.teRules[id] }

// RoleAllows returns every role-allow rule.
func (p *Policy) RoleAllows() []RoleAllow { return p.roleAllows }

// RoleTransitions returns every role-transition rule.
func (p *Policy) RoleTransitions() []RoleTransition { return p.roleTrans }

// RangeTransitions returns every range-transition rule.
func (p *Policy) RangeTransitions() []RangeTransition { return p.rangeTrans }

// Constraints returns every constraint.
func (p *Policy) Constraints() []Constraint { return p.constraints }

// Conditional returns the ConditionalExpr with the given id.
func (p *Policy) Conditional(id int) *ConditionalExpr { return &p.conditionals[id] }

// Conditionals returns every conditional expression.
func (p *Policy) Conditionals() []ConditionalExpr { return p.conditionals }

// InitialSIDs returns every fixed initial SID.
func (p *Policy) InitialSIDs() []InitialSID { return p.initialSIDs }

// SyntacticAV returns the syntactic (pre-expansion) source form of an AV
// rule, when the policy retained it (spec §4.1.a supplement).
func (p *Policy) SyntacticAV(id RuleID) (SyntacticRule, bool) {
	sr, ok := p.syntacticAV[id]
	return sr, ok
}

// RuleEnabled reports whether a rule bound to cond, on its recorded
// branch, is enabled under the policy's current Boolean valuation. A rule
// with no conditional binding is always enabled (spec §3 AV rule row).
func (p *Policy) RuleEnabled(cond CondRef) bool {
	if !cond.Bound {
		return true
	}
	return p.conditionals[cond.CondID].Enabled(p.bools, cond.Branch)
}
