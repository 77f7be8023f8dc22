package analysis

import (
	"fmt"
	"strings"

	"github.com/avkit/avpolicy/policy"
)

// DomainsModule finds domain types (spec §4.7 "Find domains"): a type
// carrying a configured domain attribute, sourcing a non-filesystem AV
// rule, defaulting a type_transition to class process, or assigned to
// any role besides object_r.
type DomainsModule struct {
	domainAttrs []string
}

// NewDomainsModule returns a module with the default domain-attribute
// set {"domain"}, overridable via the "domain_attribute" option
// (comma-separated), per SPEC_FULL §4.7.a's confirmation that the
// attribute set is configurable, not hardcoded.
func NewDomainsModule() *DomainsModule {
	return &DomainsModule{domainAttrs: []string{"domain"}}
}

func (m *DomainsModule) Name() string             { return "find_domains" }
func (m *DomainsModule) Requirements() []string    { return nil }
func (m *DomainsModule) Dependencies() []string    { return nil }

func (m *DomainsModule) Init(p *policy.Policy, options map[string]string) error {
	if v := options["domain_attribute"]; v != "" {
		m.domainAttrs = strings.Split(v, ",")
	}
	return nil
}

func (m *DomainsModule) Run(p *policy.Policy, deps map[string]*Result) (*Result, error) {
	domainAttrIDs := make(map[policy.TypeID]struct{}, len(m.domainAttrs))
	for _, name := range m.domainAttrs {
		if id, ok := p.LookupType(name); ok {
			domainAttrIDs[id] = struct{}{}
		}
	}
	fsClassID, hasFS := p.LookupClass("filesystem")
	processClassID, hasProcess := p.LookupClass("process")

	r := &Result{TestName: "find_domains", ItemKind: "type"}
	for _, t := range p.ConcreteTypes() {
		var proofs []Proof

		for attr := range p.AttributesOfType(t.ID) {
			if _, ok := domainAttrIDs[attr]; ok {
				proofs = append(proofs, Proof{
					Kind: "attribute", Severity: SeverityHigh,
					Text: fmt.Sprintf("has domain attribute %s", p.Type(attr).Name),
				})
				break
			}
		}

		for _, av := range p.AVRules() {
			if av.RuleKind != policy.AVAllow {
				continue
			}
			if _, ok := p.ExpandTypeSet(av.Source, t.ID)[t.ID]; !ok {
				continue
			}
			nonFS := false
			for c := range av.Classes {
				if !hasFS || c != fsClassID {
					nonFS = true
					break
				}
			}
			if nonFS {
				proofs = append(proofs, Proof{
					Kind: "av_rule", Severity: SeverityMid,
					Text: "source of a non-filesystem AV rule",
				})
				break
			}
		}

		if hasProcess {
			for _, te := range p.TERules() {
				if te.RuleKind != policy.TETransition || te.Default != t.ID {
					continue
				}
				if _, ok := te.Classes[processClassID]; ok {
					proofs = append(proofs, Proof{
						Kind: "te_rule", Severity: SeverityMid,
						Text: "default type of a type_transition to class process",
					})
					break
				}
			}
		}

		for _, role := range p.Roles() {
			if role.Name == policy.ObjectRoleName {
				continue
			}
			if _, ok := role.Types[t.ID]; ok {
				proofs = append(proofs, Proof{
					Kind: "role", Severity: SeverityLow,
					Text: fmt.Sprintf("assigned to role %s", role.Name),
				})
				break
			}
		}

		if len(proofs) > 0 {
			r.Add(t.Name, proofs...)
		}
	}
	return r, nil
}
