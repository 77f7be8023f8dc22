package analysis

import "github.com/avkit/avpolicy/policy"

// The modules in this file implement spec §4.7's "Attributes/roles/
// types/users without *" family, plus the extra sechecker-derived
// hygiene checks SPEC_FULL §4.7.a folds in alongside them. Each takes
// an explicit name so the same check can be registered twice under the
// original sechecker module's alternate name (empty_role/empty_attribute,
// roles_not_in_allow, types_not_in_allow) without duplicating logic.

// AttribsWoTypesModule flags attributes with no concrete member type.
type AttribsWoTypesModule struct{ name string }

func NewAttribsWoTypesModule(name string) *AttribsWoTypesModule {
	return &AttribsWoTypesModule{name: name}
}
func (m *AttribsWoTypesModule) Name() string          { return m.name }
func (m *AttribsWoTypesModule) Requirements() []string { return []string{"attribute_names"} }
func (m *AttribsWoTypesModule) Dependencies() []string { return nil }
func (m *AttribsWoTypesModule) Init(p *policy.Policy, options map[string]string) error { return nil }

func (m *AttribsWoTypesModule) Run(p *policy.Policy, deps map[string]*Result) (*Result, error) {
	r := &Result{TestName: m.name, ItemKind: "attribute"}
	for _, a := range p.Attributes() {
		if len(p.MembersOfAttribute(a.ID)) == 0 {
			r.Add(a.Name, Proof{Kind: "membership", Severity: SeverityMid, Text: "no type carries this attribute"})
		}
	}
	return r, nil
}

// AttribsWoRulesModule flags attributes never named directly in a
// rule's source or target TypeSet (as opposed to reached only via
// expansion of some other attribute or concrete type).
type AttribsWoRulesModule struct{ name string }

func NewAttribsWoRulesModule(name string) *AttribsWoRulesModule {
	return &AttribsWoRulesModule{name: name}
}
func (m *AttribsWoRulesModule) Name() string          { return m.name }
func (m *AttribsWoRulesModule) Requirements() []string { return []string{"attribute_names"} }
func (m *AttribsWoRulesModule) Dependencies() []string { return nil }
func (m *AttribsWoRulesModule) Init(p *policy.Policy, options map[string]string) error { return nil }

func (m *AttribsWoRulesModule) Run(p *policy.Policy, deps map[string]*Result) (*Result, error) {
	referenced := make(map[policy.TypeID]struct{})
	mark := func(ts policy.TypeSet) {
		for id := range ts.IDs {
			referenced[id] = struct{}{}
		}
	}
	for _, rule := range p.AVRules() {
		mark(rule.Source)
		mark(rule.Target)
	}
	for _, rule := range p.TERules() {
		mark(rule.Source)
		mark(rule.Target)
	}

	r := &Result{TestName: m.name, ItemKind: "attribute"}
	for _, a := range p.Attributes() {
		if _, ok := referenced[a.ID]; !ok {
			r.Add(a.Name, Proof{Kind: "rule_reference", Severity: SeverityLow, Text: "never named directly in a rule's type set"})
		}
	}
	return r, nil
}

// RolesWoAllowModule flags roles never appearing as the source or
// target of any role_allow rule.
type RolesWoAllowModule struct{ name string }

func NewRolesWoAllowModule(name string) *RolesWoAllowModule {
	return &RolesWoAllowModule{name: name}
}
func (m *RolesWoAllowModule) Name() string          { return m.name }
func (m *RolesWoAllowModule) Requirements() []string { return nil }
func (m *RolesWoAllowModule) Dependencies() []string { return nil }
func (m *RolesWoAllowModule) Init(p *policy.Policy, options map[string]string) error { return nil }

func (m *RolesWoAllowModule) Run(p *policy.Policy, deps map[string]*Result) (*Result, error) {
	referenced := make(map[policy.RoleID]struct{})
	for _, ra := range p.RoleAllows() {
		for id := range ra.Source {
			referenced[id] = struct{}{}
		}
		for id := range ra.Target {
			referenced[id] = struct{}{}
		}
	}

	r := &Result{TestName: m.name, ItemKind: "role"}
	for _, role := range p.Roles() {
		if role.Name == policy.ObjectRoleName {
			continue
		}
		if _, ok := referenced[role.ID]; !ok {
			r.Add(role.Name, Proof{Kind: "role_allow", Severity: SeverityMid, Text: "never appears in any role_allow rule"})
		}
	}
	return r, nil
}

// RolesWoTypesModule flags roles that may label no type at all.
type RolesWoTypesModule struct{ name string }

func NewRolesWoTypesModule(name string) *RolesWoTypesModule {
	return &RolesWoTypesModule{name: name}
}
func (m *RolesWoTypesModule) Name() string          { return m.name }
func (m *RolesWoTypesModule) Requirements() []string { return nil }
func (m *RolesWoTypesModule) Dependencies() []string { return nil }
func (m *RolesWoTypesModule) Init(p *policy.Policy, options map[string]string) error { return nil }

func (m *RolesWoTypesModule) Run(p *policy.Policy, deps map[string]*Result) (*Result, error) {
	r := &Result{TestName: m.name, ItemKind: "role"}
	for _, role := range p.Roles() {
		if role.Name == policy.ObjectRoleName {
			continue
		}
		if len(role.Types) == 0 {
			r.Add(role.Name, Proof{Kind: "types", Severity: SeverityMid, Text: "labels no type"})
		}
	}
	return r, nil
}

// RolesWoUsersModule flags roles no declared user may assume.
type RolesWoUsersModule struct{}

func NewRolesWoUsersModule() *RolesWoUsersModule { return &RolesWoUsersModule{} }
func (m *RolesWoUsersModule) Name() string          { return "roles_wo_users" }
func (m *RolesWoUsersModule) Requirements() []string { return nil }
func (m *RolesWoUsersModule) Dependencies() []string { return nil }
func (m *RolesWoUsersModule) Init(p *policy.Policy, options map[string]string) error { return nil }

func (m *RolesWoUsersModule) Run(p *policy.Policy, deps map[string]*Result) (*Result, error) {
	granted := make(map[policy.RoleID]struct{})
	for _, u := range p.Users() {
		for id := range u.Roles {
			granted[id] = struct{}{}
		}
	}

	r := &Result{TestName: "roles_wo_users", ItemKind: "role"}
	for _, role := range p.Roles() {
		if role.Name == policy.ObjectRoleName {
			continue
		}
		if _, ok := granted[role.ID]; !ok {
			r.Add(role.Name, Proof{Kind: "user_grant", Severity: SeverityMid, Text: "no user may assume this role"})
		}
	}
	return r, nil
}

// TypesWoAllowModule flags concrete types never the source or target
// of any AV rule.
type TypesWoAllowModule struct{ name string }

func NewTypesWoAllowModule(name string) *TypesWoAllowModule {
	return &TypesWoAllowModule{name: name}
}
func (m *TypesWoAllowModule) Name() string          { return m.name }
func (m *TypesWoAllowModule) Requirements() []string { return nil }
func (m *TypesWoAllowModule) Dependencies() []string { return nil }
func (m *TypesWoAllowModule) Init(p *policy.Policy, options map[string]string) error { return nil }

func (m *TypesWoAllowModule) Run(p *policy.Policy, deps map[string]*Result) (*Result, error) {
	referenced := make(map[policy.TypeID]struct{})
	for _, rule := range p.AVRules() {
		for id := range p.ExpandTypeSet(rule.Source, policy.TypeID(-1)) {
			referenced[id] = struct{}{}
		}
		for src := range p.ExpandTypeSet(rule.Source, policy.TypeID(-1)) {
			for id := range p.ExpandTypeSet(rule.Target, src) {
				referenced[id] = struct{}{}
			}
		}
	}

	r := &Result{TestName: m.name, ItemKind: "type"}
	for _, t := range p.ConcreteTypes() {
		if _, ok := referenced[t.ID]; !ok {
			r.Add(t.Name, Proof{Kind: "av_rule", Severity: SeverityMid, Text: "never a source or target of any AV rule"})
		}
	}
	return r, nil
}

// UsersWoRolesModule flags users with an empty role set.
type UsersWoRolesModule struct{}

func NewUsersWoRolesModule() *UsersWoRolesModule { return &UsersWoRolesModule{} }
func (m *UsersWoRolesModule) Name() string          { return "users_wo_roles" }
func (m *UsersWoRolesModule) Requirements() []string { return nil }
func (m *UsersWoRolesModule) Dependencies() []string { return nil }
func (m *UsersWoRolesModule) Init(p *policy.Policy, options map[string]string) error { return nil }

func (m *UsersWoRolesModule) Run(p *policy.Policy, deps map[string]*Result) (*Result, error) {
	r := &Result{TestName: "users_wo_roles", ItemKind: "user"}
	for _, u := range p.Users() {
		if len(u.Roles) == 0 {
			r.Add(u.Name, Proof{Kind: "roles", Severity: SeverityMid, Text: "has no assigned role"})
		}
	}
	return r, nil
}
