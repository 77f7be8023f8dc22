// Package policy implements the immutable in-memory model of a compiled
// MAC security policy: symbol store, rule store, MLS model and
// conditional model (spec §3, §4.1-§4.4).
package policy

// TypeID is a dense, store-stable identifier for a type, attribute, or
// alias. It is only valid within the Policy that produced it.
type TypeID int

// ClassID identifies an object class.
type ClassID int

// PermissionID identifies a permission within a class.
type PermissionID int

// RoleID identifies a role.
type RoleID int

// UserID identifies a user.
type UserID int

// BoolID identifies a conditional Boolean.
type BoolID int

// SensID identifies an MLS sensitivity.
type SensID int

// CategoryID identifies an MLS category.
type CategoryID int

// RuleID identifies a single rule within one of the rule tables. RuleIDs
// are dense per rule-kind and only meaningful together with that kind;
// RuleRef (see index.go) pairs the two.
type RuleID int

const invalidID = -1

// Kind enumerates every rule table the model carries.
type Kind int

const (
	KindAVAllow Kind = iota
	KindAVNeverallow
	KindAVAuditallow
	KindAVDontaudit
	KindTETransition
	KindTEChange
	KindTEMember
	KindRoleAllow
	KindRoleTransition
	KindRangeTransition
)

func (k Kind) String() string {
	switch k {
	case KindAVAllow:
		return "allow"
	case KindAVNeverallow:
		return "neverallow"
	case KindAVAuditallow:
		return "auditallow"
	case KindAVDontaudit:
		return "dontaudit"
	case KindTETransition:
		return "type_transition"
	case KindTEChange:
		return "type_change"
	case KindTEMember:
		return "type_member"
	case KindRoleAllow:
		return "role_allow"
	case KindRoleTransition:
		return "role_transition"
	case KindRangeTransition:
		return "range_transition"
	default:
		return "unknown"
	}
}

// IsAV reports whether the kind belongs to the access-vector rule table.
func (k Kind) IsAV() bool {
	return k == KindAVAllow || k == KindAVNeverallow || k == KindAVAuditallow || k == KindAVDontaudit
}

// IsTE reports whether the kind belongs to the type-enforcement rule table.
func (k Kind) IsTE() bool {
	return k == KindTETransition || k == KindTEChange || k == KindTEMember
}
