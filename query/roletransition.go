package query

import "github.com/avkit/avpolicy/policy"

// RoleTransitionQuery builds a conjunctive query over the
// role_transition table (spec §4.5).
type RoleTransitionQuery struct {
	source      string
	target      string
	defaultRole string
	regex       bool
	indirect    bool
}

func NewRoleTransitionQuery() *RoleTransitionQuery { return &RoleTransitionQuery{} }

func (q *RoleTransitionQuery) SetSource(name string) *RoleTransitionQuery      { q.source = name; return q }
func (q *RoleTransitionQuery) SetTarget(name string, indirect bool) *RoleTransitionQuery {
	q.target = name
	q.indirect = indirect
	return q
}
func (q *RoleTransitionQuery) SetDefaultRole(name string) *RoleTransitionQuery { q.defaultRole = name; return q }
func (q *RoleTransitionQuery) SetRegex(v bool) *RoleTransitionQuery            { q.regex = v; return q }

func (q *RoleTransitionQuery) Run(p *policy.Policy) ([]policy.RuleID, error) {
	cache := newRegexCache()
	srcIDs, srcSet, err := roleCandidates(p, q.source, q.regex, cache)
	if err != nil {
		return nil, err
	}
	if srcSet && len(srcIDs) == 0 {
		return nil, nil
	}
	tgtFilter := symbolFilter{}
	if q.target != "" {
		tgtFilter = symbolFilter{set: true, pattern: q.target, regex: q.regex, indirect: q.indirect}
	}
	tgtCandidates, tgtSet, err := candidateTypes(p, tgtFilter, cache)
	if err != nil {
		return nil, err
	}
	if tgtSet && len(tgtCandidates) == 0 {
		return nil, nil
	}
	var defID policy.RoleID
	defSet := q.defaultRole != ""
	if defSet {
		id, ok := p.LookupRole(q.defaultRole)
		if !ok {
			return nil, nil
		}
		defID = id
	}

	var out []policy.RuleID
	for _, r := range p.RoleTransitions() {
		if srcSet && !roleSetIntersects(r.Source, srcIDs) {
			continue
		}
		// RoleTransition has no type source to resolve "self" against;
		// invalidSource is safe here since Target can never be self in
		// practice (the text loader never produces one for this rule kind).
		if tgtSet && !setMatches(p, r.Target, invalidSource, tgtCandidates) {
			continue
		}
		if defSet && r.DefaultRole != defID {
			continue
		}
		out = append(out, r.ID)
	}
	return out, nil
}
