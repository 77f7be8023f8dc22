package policy

// RoleSet is a rule's declared role set.
type RoleSet map[RoleID]struct{}

// NewRoleSet builds a RoleSet from explicit ids.
func NewRoleSet(ids ...RoleID) RoleSet {
	set := make(RoleSet, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func (rs RoleSet) Has(id RoleID) bool {
	_, ok := rs[id]
	return ok
}

// RoleAllow is purely RBAC, no MLS (spec §3).
type RoleAllow struct {
	ID     RuleID
	Source RoleSet
	Target RoleSet
}

// RoleTransition binds a source role and target type set to a default role.
type RoleTransition struct {
	ID          RuleID
	Source      RoleSet
	Target      TypeSet
	DefaultRole RoleID
}
