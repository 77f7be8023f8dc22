package analysis

import "github.com/avkit/avpolicy/policy"

// AssocTypesModule finds association types (spec §4.7 "Find
// association types"): the type labeling the unlabeled initial SID.
type AssocTypesModule struct{}

func NewAssocTypesModule() *AssocTypesModule { return &AssocTypesModule{} }

func (m *AssocTypesModule) Name() string          { return "find_association_types" }
func (m *AssocTypesModule) Requirements() []string { return nil }
func (m *AssocTypesModule) Dependencies() []string { return nil }
func (m *AssocTypesModule) Init(p *policy.Policy, options map[string]string) error { return nil }

func (m *AssocTypesModule) Run(p *policy.Policy, deps map[string]*Result) (*Result, error) {
	r := &Result{TestName: "find_association_types", ItemKind: "type"}
	for _, sid := range p.InitialSIDs() {
		if sid.Name != policy.SIDUnlabeled {
			continue
		}
		t := p.Type(sid.Context.Type)
		r.Add(t.Name, Proof{
			Kind: "initial_sid", Severity: SeverityHigh,
			Text: "labels the unlabeled initial SID",
		})
	}
	return r, nil
}
