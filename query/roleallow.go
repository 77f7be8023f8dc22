package query

import "github.com/avkit/avpolicy/policy"

// RoleAllowQuery builds a conjunctive query over the role-allow table
// (spec §4.5); RBAC rules have no class/permission dimension and no
// conditional binding, so this is a plain linear scan rather than a
// hash-index lookup (policy/index.go only indexes AV and TE rules).
type RoleAllowQuery struct {
	source string
	target string
	regex  bool
}

func NewRoleAllowQuery() *RoleAllowQuery { return &RoleAllowQuery{} }

func (q *RoleAllowQuery) SetSource(name string) *RoleAllowQuery { q.source = name; return q }
func (q *RoleAllowQuery) SetTarget(name string) *RoleAllowQuery { q.target = name; return q }
func (q *RoleAllowQuery) SetRegex(v bool) *RoleAllowQuery       { q.regex = v; return q }

func (q *RoleAllowQuery) Run(p *policy.Policy) ([]policy.RuleID, error) {
	cache := newRegexCache()
	srcIDs, srcSet, err := roleCandidates(p, q.source, q.regex, cache)
	if err != nil {
		return nil, err
	}
	if srcSet && len(srcIDs) == 0 {
		return nil, nil
	}
	tgtIDs, tgtSet, err := roleCandidates(p, q.target, q.regex, cache)
	if err != nil {
		return nil, err
	}
	if tgtSet && len(tgtIDs) == 0 {
		return nil, nil
	}

	var out []policy.RuleID
	for _, r := range p.RoleAllows() {
		if srcSet && !roleSetIntersects(r.Source, srcIDs) {
			continue
		}
		if tgtSet && !roleSetIntersects(r.Target, tgtIDs) {
			continue
		}
		out = append(out, r.ID)
	}
	return out, nil
}

func roleCandidates(p *policy.Policy, name string, regex bool, cache *regexCache) (map[policy.RoleID]struct{}, bool, error) {
	if name == "" {
		return nil, false, nil
	}
	out := make(map[policy.RoleID]struct{})
	if regex {
		re, err := cache.compile(name)
		if err != nil {
			return nil, true, err
		}
		for _, r := range p.Roles() {
			if re.MatchString(r.Name) {
				out[r.ID] = struct{}{}
			}
		}
		return out, true, nil
	}
	if id, ok := p.LookupRole(name); ok {
		out[id] = struct{}{}
	}
	return out, true, nil
}

func roleSetIntersects(have policy.RoleSet, want map[policy.RoleID]struct{}) bool {
	for r := range want {
		if have.Has(r) {
			return true
		}
	}
	return false
}
