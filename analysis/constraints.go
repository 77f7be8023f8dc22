package analysis

import (
	"fmt"
	"strings"

	"github.com/avkit/avpolicy/policy"
)

// ConstraintInspectionModule walks every constraint, joining it with
// its class's permission list and decoding its expression tree (spec
// §4.7 "Constraint inspection"). Unlike the other modules this one is
// purely informational: every constraint becomes an item, regardless
// of whether anything looks wrong with it.
type ConstraintInspectionModule struct{}

func NewConstraintInspectionModule() *ConstraintInspectionModule {
	return &ConstraintInspectionModule{}
}
func (m *ConstraintInspectionModule) Name() string          { return "constraint_inspection" }
func (m *ConstraintInspectionModule) Requirements() []string { return nil }
func (m *ConstraintInspectionModule) Dependencies() []string { return nil }
func (m *ConstraintInspectionModule) Init(p *policy.Policy, options map[string]string) error {
	return nil
}

func (m *ConstraintInspectionModule) Run(p *policy.Policy, deps map[string]*Result) (*Result, error) {
	r := &Result{TestName: "constraint_inspection", ItemKind: "constraint"}
	for _, c := range p.Constraints() {
		class := p.Class(c.Class)
		perms := c.Permissions.Sorted()
		name := fmt.Sprintf("%s : { %s }", class.Name, strings.Join(perms, " "))

		kind := "constrain"
		if c.IsValidate {
			kind = "mlsvalidatetrans"
		}
		r.Add(name, Proof{
			Kind: kind, Severity: SeverityNone,
			Text: c.Expr.Render(),
		})
	}
	return r, nil
}
