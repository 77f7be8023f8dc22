package policy

import "strings"

// ConstraintAttr names one of the context attributes a constraint
// expression can reference: the source/target user, role, type, and
// low/high MLS level (spec §3, §4.7 "Constraint inspection").
type ConstraintAttr int

const (
	AttrUser1 ConstraintAttr = iota
	AttrUser2
	AttrRole1
	AttrRole2
	AttrType1
	AttrType2
	AttrL1
	AttrL2
	AttrH1
	AttrH2
)

func (a ConstraintAttr) String() string {
	switch a {
	case AttrUser1:
		return "u1"
	case AttrUser2:
		return "u2"
	case AttrRole1:
		return "r1"
	case AttrRole2:
		return "r2"
	case AttrType1:
		return "t1"
	case AttrType2:
		return "t2"
	case AttrL1:
		return "l1"
	case AttrL2:
		return "l2"
	case AttrH1:
		return "h1"
	case AttrH2:
		return "h2"
	}
	return "?"
}

// Operator is one of the constraint/conditional operators (spec §3
// Constraint row, §4.4, §6 "conditional-operator strings").
type Operator int

const (
	OpEq Operator = iota
	OpNeq
	OpDom
	OpDomby
	OpIncomp
	OpAnd
	OpOr
	OpNot
	OpXor
)

// OperatorFromString round-trips the conditional-operator strings
// !/&&/||/^/==/!= plus the constraint-only dom/domby/incomp keywords
// (spec §6).
func OperatorFromString(s string) (Operator, bool) {
	switch s {
	case "==", "eq":
		return OpEq, true
	case "!=", "neq":
		return OpNeq, true
	case "dom":
		return OpDom, true
	case "domby":
		return OpDomby, true
	case "incomp":
		return OpIncomp, true
	case "&&", "and":
		return OpAnd, true
	case "||", "or":
		return OpOr, true
	case "!", "not":
		return OpNot, true
	case "^", "xor":
		return OpXor, true
	}
	return 0, false
}

func (o Operator) String() string {
	switch o {
	case OpEq:
		return "=="
	case OpNeq:
		return "!="
	case OpDom:
		return "dom"
	case OpDomby:
		return "domby"
	case OpIncomp:
		return "incomp"
	case OpAnd:
		return "&&"
	case OpOr:
		return "||"
	case OpNot:
		return "!"
	case OpXor:
		return "^"
	}
	return "?"
}

// NodeKind is the discriminant of the ExprNode sum type (spec §9 design
// note: "model expression nodes as a sum type with explicit variants").
type NodeKind int

const (
	NodeAttrOpAttr NodeKind = iota // e.g. u1 == u2
	NodeAttrOpNames                // e.g. r1 == { sysadm_r staff_r }
	NodeAnd
	NodeOr
	NodeNot
	NodeXor
)

// ExprNode is one node of a constraint expression tree, built by folding
// its RPN token stream.
type ExprNode struct {
	Kind  NodeKind
	Op    Operator
	Attr  ConstraintAttr
	Attr2 ConstraintAttr // NodeAttrOpAttr only
	Names []string       // NodeAttrOpNames only: user/role/type names

	Left  *ExprNode // NodeAnd/NodeOr/NodeXor
	Right *ExprNode
	Child *ExprNode // NodeNot
}

// Render produces a human-readable infix form of the node, used by
// constraint-inspection proofs.
func (n *ExprNode) Render() string {
	if n == nil {
		return ""
	}
	switch n.Kind {
	case NodeAttrOpAttr:
		return n.Attr.String() + " " + n.Op.String() + " " + n.Attr2.String()
	case NodeAttrOpNames:
		return n.Attr.String() + " " + n.Op.String() + " { " + strings.Join(n.Names, " ") + " }"
	case NodeNot:
		return "not (" + n.Child.Render() + ")"
	case NodeAnd:
		return "(" + n.Left.Render() + ") and (" + n.Right.Render() + ")"
	case NodeOr:
		return "(" + n.Left.Render() + ") or (" + n.Right.Render() + ")"
	case NodeXor:
		return "(" + n.Left.Render() + ") xor (" + n.Right.Render() + ")"
	}
	return ""
}

// Constraint is a predicate over context attributes restricting a
// permission grant (spec §3). The core never evaluates it against a live
// access attempt; it is inspected structurally (§4.7).
type Constraint struct {
	Class       ClassID
	Permissions PermSet
	Expr        *ExprNode
	IsValidate  bool // mlsvalidatetrans-style constraint rather than a per-access constrain
}
