package policy

// CondToken is one element of a ConditionalExpr's reverse-Polish stream:
// either a Boolean reference or one of the not/and/or/xor/eq/neq
// operators (spec §3, §4.4).
type CondToken struct {
	IsBool bool
	Bool   BoolID
	Op     Operator
}

// BoolToken builds a Boolean-reference token.
func BoolToken(b BoolID) CondToken { return CondToken{IsBool: true, Bool: b} }

// OpToken builds an operator token.
func OpToken(op Operator) CondToken { return CondToken{Op: op} }

// ConditionalExpr is a pure function of the Booleans it names, evaluated
// by a stack machine over its RPN token stream (spec §4.4).
type ConditionalExpr struct {
	ID     int
	Tokens []CondToken
}

// Eval runs the stack machine using each named Boolean's current value.
func (e *ConditionalExpr) Eval(booleans *boolStore) bool {
	var stack []bool
	pop := func() bool {
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		return v
	}
	for _, tok := range e.Tokens {
		if tok.IsBool {
			stack = append(stack, booleans.Get(tok.Bool).Current)
			continue
		}
		switch tok.Op {
		case OpNot:
			stack = append(stack, !pop())
		case OpAnd:
			b, a := pop(), pop()
			stack = append(stack, a && b)
		case OpOr:
			b, a := pop(), pop()
			stack = append(stack, a || b)
		case OpXor:
			b, a := pop(), pop()
			stack = append(stack, a != b)
		case OpEq:
			b, a := pop(), pop()
			stack = append(stack, a == b)
		case OpNeq:
			b, a := pop(), pop()
			stack = append(stack, a != b)
		}
	}
	if len(stack) == 0 {
		return false
	}
	return stack[len(stack)-1]
}

// ReferencedBooleans structurally walks the token stream and collects
// every Boolean id it names — used by queries that filter rules by
// Boolean name (spec §4.4).
func (e *ConditionalExpr) ReferencedBooleans() map[BoolID]struct{} {
	out := make(map[BoolID]struct{})
	for _, tok := range e.Tokens {
		if tok.IsBool {
			out[tok.Bool] = struct{}{}
		}
	}
	return out
}

// Enabled reports whether a rule bound to this conditional, on the
// recorded branch side, is currently enabled: the branch is enabled when
// evaluation yields true on the true-branch and false on the
// false-branch, or vice versa (spec §4.4).
func (e *ConditionalExpr) Enabled(booleans *boolStore, branch bool) bool {
	return e.Eval(booleans) == branch
}
