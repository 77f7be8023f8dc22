package analysis

import (
	"fmt"

	"github.com/avkit/avpolicy/policy"
)

// ImpossibleRangeTransitionModule finds range transitions that can
// never fire (spec §4.7 "Impossible range transition"): missing any of
// (i) an allowing "file execute" AV rule, (ii) a role bound to the
// source type, or (iii) a user holding such a role with an MLS range
// containing the transition's range makes the transition impossible.
type ImpossibleRangeTransitionModule struct{}

func NewImpossibleRangeTransitionModule() *ImpossibleRangeTransitionModule {
	return &ImpossibleRangeTransitionModule{}
}
func (m *ImpossibleRangeTransitionModule) Name() string          { return "impossible_range_transition" }
func (m *ImpossibleRangeTransitionModule) Requirements() []string { return []string{"mls"} }
func (m *ImpossibleRangeTransitionModule) Dependencies() []string { return nil }
func (m *ImpossibleRangeTransitionModule) Init(p *policy.Policy, options map[string]string) error {
	return nil
}

func (m *ImpossibleRangeTransitionModule) Run(p *policy.Policy, deps map[string]*Result) (*Result, error) {
	fileClassID, hasFile := p.LookupClass("file")

	r := &Result{TestName: "impossible_range_transition", ItemKind: "range_transition"}
	for _, rt := range p.RangeTransitions() {
		var proofs []Proof
		srcSet := p.ExpandTypeSet(rt.Source, policy.TypeID(-1))
		tgtForSrc := func(src policy.TypeID) map[policy.TypeID]struct{} {
			return p.ExpandTypeSet(rt.Target, src)
		}

		hasExecRule := false
		if hasFile {
			for _, av := range p.AVRules() {
				if av.RuleKind != policy.AVAllow || !av.Permissions.Has("execute") {
					continue
				}
				if _, ok := av.Classes[fileClassID]; !ok {
					continue
				}
				avSrc := p.ExpandTypeSet(av.Source, policy.TypeID(-1))
				for s := range avSrc {
					if _, ok := srcSet[s]; !ok {
						continue
					}
					if setsIntersectRT(p.ExpandTypeSet(av.Target, s), tgtForSrc(s)) {
						hasExecRule = true
					}
				}
			}
		}
		if !hasExecRule {
			proofs = append(proofs, Proof{
				Kind: "missing_av_rule", Severity: SeverityHigh,
				Text: fmt.Sprintf("Missing: allow %s %s : file execute;", rangeSourceName(p, rt), rangeTargetName(p, rt)),
			})
		}

		boundRoles := make(map[policy.RoleID]struct{})
		for _, role := range p.Roles() {
			for s := range srcSet {
				if _, ok := role.Types[s]; ok {
					boundRoles[role.ID] = struct{}{}
					break
				}
			}
		}
		if len(boundRoles) == 0 {
			proofs = append(proofs, Proof{
				Kind: "no_role", Severity: SeverityHigh,
				Text: fmt.Sprintf("no role is bound to %s", rangeSourceName(p, rt)),
			})
		}

		haveQualifyingUser := false
		for _, u := range p.Users() {
			if !u.HasMLS {
				continue
			}
			holdsRole := false
			for roleID := range boundRoles {
				if _, ok := u.Roles[roleID]; ok {
					holdsRole = true
					break
				}
			}
			if !holdsRole {
				continue
			}
			if p.RangeContainsRange(u.Range, rt.TargetRange) {
				haveQualifyingUser = true
				break
			}
		}
		if !haveQualifyingUser {
			proofs = append(proofs, Proof{
				Kind: "no_user", Severity: SeverityHigh,
				Text: "no user holding a bound role has an MLS range containing the transition's range",
			})
		}

		if len(proofs) > 0 {
			r.Add(p.RenderRangeTransition(rt), proofs...)
		}
	}
	return r, nil
}

func rangeSourceName(p *policy.Policy, rt policy.RangeTransition) string {
	for id := range rt.Source.IDs {
		return p.Type(id).Name
	}
	return "self"
}

func rangeTargetName(p *policy.Policy, rt policy.RangeTransition) string {
	for id := range rt.Target.IDs {
		return p.Type(id).Name
	}
	return "self"
}

func setsIntersectRT(a, b map[policy.TypeID]struct{}) bool {
	small, big := a, b
	if len(b) < len(a) {
		small, big = b, a
	}
	for k := range small {
		if _, ok := big[k]; ok {
			return true
		}
	}
	return false
}
