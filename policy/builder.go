package policy

// Builder accumulates declarations and rules produced by an external
// loader (spec §1: the textual/binary readers are out of core scope and
// treated as opaque producers of this data model) and assembles them into
// an immutable Policy. A Builder is single-owner and not safe for
// concurrent use; once Build returns, the resulting Policy is read-only
// and safe for concurrent readers.
type Builder struct {
	p *Policy

	nextAVID    int
	nextTEID    int
	nextRAID    int
	nextRTID    int
	nextRgTID   int
	nextCondID  int
}

// NewBuilder creates an empty Builder for a policy module.
func NewBuilder(moduleName, version string) *Builder {
	return &Builder{
		p: &Policy{
			ModuleName:  moduleName,
			Version:     version,
			types:       newTypeStore(),
			classes:     newClassStore(),
			roles:       newRoleStore(),
			users:       newUserStore(),
			bools:       newBoolStore(),
			mls:         newMLSStore(),
			syntacticAV: make(map[RuleID]SyntacticRule),
		},
	}
}

// SetCapabilities records the capability query result for this policy
// (spec §6).
func (b *Builder) SetCapabilities(c Capabilities) { b.p.Caps = c }

// AddType declares a concrete type.
func (b *Builder) AddType(name string) TypeID { return b.p.types.add(name, TypeConcrete) }

// AddAttribute declares an attribute.
func (b *Builder) AddAttribute(name string) TypeID { return b.p.types.add(name, TypeAttribute) }

// AddAlias declares name as an alias resolving to primary.
func (b *Builder) AddAlias(name string, primary TypeID) TypeID {
	return b.p.types.addAlias(name, primary)
}

// LookupType resolves a declared type, attribute, or alias name.
func (b *Builder) LookupType(name string) (TypeID, bool) { return b.p.types.Lookup(name) }

// LookupClass resolves a declared object class name.
func (b *Builder) LookupClass(name string) (ClassID, bool) { return b.p.classes.Lookup(name) }

// LookupRole resolves a declared role name.
func (b *Builder) LookupRole(name string) (RoleID, bool) { return b.p.roles.Lookup(name) }

// AddTypeAttribute records that concrete type member belongs to attribute.
func (b *Builder) AddTypeAttribute(member, attr TypeID) { b.p.types.addMember(attr, member) }

// AddCommon declares a common permission set under name.
func (b *Builder) AddCommon(name string, perms []Permission) { b.p.classes.addCommon(name, perms) }

// AddClass declares an object class, optionally inheriting from a common.
func (b *Builder) AddClass(name string, perms []Permission, common string) ClassID {
	return b.p.classes.add(name, perms, common)
}

// AddRole declares a role.
func (b *Builder) AddRole(name string) RoleID { return b.p.roles.add(name) }

// AddRoleType records that role may label type t.
func (b *Builder) AddRoleType(role RoleID, t TypeID) { b.p.roles.addType(role, t) }

// AddUser declares a user.
func (b *Builder) AddUser(u User) UserID { return b.p.users.add(u) }

// AddUserRole records that user may assume role.
func (b *Builder) AddUserRole(user UserID, role RoleID) {
	b.p.users.byID[user].Roles[role] = struct{}{}
}

// AddBoolean declares a conditional Boolean with the given default value.
func (b *Builder) AddBoolean(name string, def bool) BoolID { return b.p.bools.add(name, def) }

// AddSensitivity declares a sensitivity at the given total-order position.
func (b *Builder) AddSensitivity(name string, order int, aliases ...string) SensID {
	return b.p.mls.addSens(name, order, aliases...)
}

// AddCategory declares a category.
func (b *Builder) AddCategory(name string, aliases ...string) CategoryID {
	return b.p.mls.addCat(name, aliases...)
}

// AllowCategory records that sensitivity sens may legally carry category
// cat (used by Range.EnumerateLevels, spec §4.3).
func (b *Builder) AllowCategory(sens SensID, cat CategoryID) { b.p.mls.allowCategory(sens, cat) }

// SetMLS marks whether MLS is in effect for this policy.
func (b *Builder) SetMLS(enabled bool) { b.p.mls.mlsEnabled = enabled; b.p.Caps.MLS = enabled }

// AddConditional registers a conditional expression and returns its id,
// for use in CondRef bindings.
func (b *Builder) AddConditional(tokens []CondToken) int {
	id := b.nextCondID
	b.nextCondID++
	b.p.conditionals = append(b.p.conditionals, ConditionalExpr{ID: id, Tokens: tokens})
	return id
}

// AddAVRule appends an access-vector rule and returns its id.
func (b *Builder) AddAVRule(r AVRule) RuleID {
	r.ID = RuleID(b.nextAVID)
	b.nextAVID++
	b.p.avRules = append(b.p.avRules, r)
	return r.ID
}

// AddAVRuleSyntax attaches the pre-expansion syntactic form of an AV rule
// (SPEC_FULL §4.1.a).
func (b *Builder) AddAVRuleSyntax(id RuleID, text string, line int) {
	b.p.syntacticAV[id] = SyntacticRule{Text: text, Line: line}
}

// AddTERule appends a type-enforcement rule and returns its id.
func (b *Builder) AddTERule(r TERule) RuleID {
	r.ID = RuleID(b.nextTEID)
	b.nextTEID++
	b.p.teRules = append(b.p.teRules, r)
	return r.ID
}

// AddRoleAllow appends a role-allow rule and returns its id.
func (b *Builder) AddRoleAllow(r RoleAllow) RuleID {
	r.ID = RuleID(b.nextRAID)
	b.nextRAID++
	b.p.roleAllows = append(b.p.roleAllows, r)
	return r.ID
}

// AddRoleTransition appends a role-transition rule and returns its id.
func (b *Builder) AddRoleTransition(r RoleTransition) RuleID {
	r.ID = RuleID(b.nextRTID)
	b.nextRTID++
	b.p.roleTrans = append(b.p.roleTrans, r)
	return r.ID
}

// AddRangeTransition appends a range-transition rule and returns its id.
func (b *Builder) AddRangeTransition(r RangeTransition) RuleID {
	r.ID = RuleID(b.nextRgTID)
	b.nextRgTID++
	b.p.rangeTrans = append(b.p.rangeTrans, r)
	return r.ID
}

// AddConstraint appends a constraint.
func (b *Builder) AddConstraint(c Constraint) { b.p.constraints = append(b.p.constraints, c) }

// AddInitialSID appends a fixed initial SID binding.
func (b *Builder) AddInitialSID(sid InitialSID) { b.p.initialSIDs = append(b.p.initialSIDs, sid) }

// Build finalizes the Policy: it eagerly constructs the rule hash index
// (spec §5 option (a)) so every subsequent reader — including concurrent
// ones — sees a fully-built index with no synchronization on the query
// hot path, then returns the immutable Policy.
func (b *Builder) Build() *Policy {
	b.p.buildIndex()
	return b.p
}
