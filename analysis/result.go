// Package analysis implements the structural-analysis registry (spec
// §4.7): independent modules sharing the query layer and a common
// result/proof structure, dispatched in dependency order.
package analysis

// Severity classifies how strongly a Proof supports its Item's
// inclusion in a Result (spec §4.7).
type Severity int

const (
	SeverityNone Severity = iota
	SeverityLow
	SeverityMid
	SeverityHigh
)

func (s Severity) String() string {
	switch s {
	case SeverityNone:
		return "none"
	case SeverityLow:
		return "low"
	case SeverityMid:
		return "mid"
	case SeverityHigh:
		return "high"
	default:
		return "unknown"
	}
}

// Proof is one auditable justification for an Item's presence in a
// Result: what kind of evidence it is, its rendered text, and how
// strongly it counts.
type Proof struct {
	Kind     string
	Text     string
	Severity Severity
}

// Item is one object a module flagged, together with every Proof that
// justifies it.
type Item struct {
	Name   string
	Proofs []Proof
}

// Result is a module's complete output: the test that produced it, the
// kind of object its items name, and the flagged items themselves.
type Result struct {
	TestName string
	ItemKind string
	Items    []Item
}

// Add appends an item built from name and proofs, in one call.
func (r *Result) Add(name string, proofs ...Proof) {
	r.Items = append(r.Items, Item{Name: name, Proofs: proofs})
}
