// Package diff implements the semantic diff engine over two loaded
// policies (spec §4.6): a sorted-union-by-name comparison for named
// symbols, and a canonical-quadruple comparison for rules.
package diff

// Kind enumerates the ~12 element kinds the engine compares (spec
// §4.6: "classes, commons, types, attributes, roles, users, booleans,
// AV rules, TE rules, role-allow, role-transition, conditionals").
type Kind int

const (
	KindClass Kind = iota
	KindCommon
	KindType
	KindAttribute
	KindRole
	KindUser
	KindBoolean
	KindAVRule
	KindTERule
	KindRoleAllow
	KindRoleTransition
	KindConditional
)

func (k Kind) String() string {
	switch k {
	case KindClass:
		return "class"
	case KindCommon:
		return "common"
	case KindType:
		return "type"
	case KindAttribute:
		return "attribute"
	case KindRole:
		return "role"
	case KindUser:
		return "user"
	case KindBoolean:
		return "boolean"
	case KindAVRule:
		return "av_rule"
	case KindTERule:
		return "te_rule"
	case KindRoleAllow:
		return "role_allow"
	case KindRoleTransition:
		return "role_transition"
	case KindConditional:
		return "conditional"
	default:
		return "unknown"
	}
}

// AllKinds is the full kind set, used when a caller requests every
// dimension (spec §6 "a bitmask of kinds").
func AllKinds() []Kind {
	return []Kind{
		KindClass, KindCommon, KindType, KindAttribute, KindRole, KindUser,
		KindBoolean, KindAVRule, KindTERule, KindRoleAllow, KindRoleTransition,
		KindConditional,
	}
}

// Form classifies how an element differs between the two policies
// (spec §4.6).
type Form int

const (
	FormAdded Form = iota
	FormRemoved
	FormModified
	FormAddedType
	FormRemovedType
)

func (f Form) String() string {
	switch f {
	case FormAdded:
		return "added"
	case FormRemoved:
		return "removed"
	case FormModified:
		return "modified"
	case FormAddedType:
		return "added_type"
	case FormRemovedType:
		return "removed_type"
	default:
		return "unknown"
	}
}

// RuleKey is the canonical quadruple identifying a rule across two
// policies when the rule itself has no name (spec §4.6 step 3):
// "(kind, source-name, target-name, class-name)".
type RuleKey struct {
	Kind   Kind
	Source string
	Target string
	Class  string
}

// Delta is one reported difference. Name is populated for named-symbol
// kinds; RuleKey is populated for rule kinds. Before/After carry the
// two projections of every differing sub-field for FormModified,
// generalizing the original's per-field getter-pair accessors
// (SPEC_FULL §4.6.a) into one generic map rather than one Go method
// per differing field.
type Delta struct {
	Kind    Kind
	Form    Form
	Name    string
	RuleKey RuleKey
	Before  map[string]any
	After   map[string]any
}
