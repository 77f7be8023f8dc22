package query

import "github.com/avkit/avpolicy/policy"

// TEQuery builds a conjunctive query over the type-enforcement rule
// table (type_transition/type_change/type_member), per spec §4.5.
type TEQuery struct {
	source symbolFilter
	target symbolFilter

	sourceAsAny bool
	onlyEnabled bool

	classes     []string
	defaultType string

	kinds map[policy.TEKind]struct{}
}

// NewTEQuery returns an empty query matching every TE rule.
func NewTEQuery() *TEQuery { return &TEQuery{} }

func (q *TEQuery) SetSource(name string, regex, indirect bool) *TEQuery {
	if name == "" {
		q.source = symbolFilter{}
		return q
	}
	q.source = symbolFilter{set: true, pattern: name, regex: regex, indirect: indirect}
	return q
}

func (q *TEQuery) SetTarget(name string, regex, indirect bool) *TEQuery {
	if name == "" {
		q.target = symbolFilter{}
		return q
	}
	q.target = symbolFilter{set: true, pattern: name, regex: regex, indirect: indirect}
	return q
}

func (q *TEQuery) SetSourceAsAny(v bool) *TEQuery { q.sourceAsAny = v; return q }
func (q *TEQuery) SetOnlyEnabled(v bool) *TEQuery { q.onlyEnabled = v; return q }
func (q *TEQuery) SetClasses(names ...string) *TEQuery { q.classes = names; return q }
func (q *TEQuery) SetDefaultType(name string) *TEQuery { q.defaultType = name; return q }

func (q *TEQuery) SetKinds(kinds ...policy.TEKind) *TEQuery {
	q.kinds = make(map[policy.TEKind]struct{}, len(kinds))
	for _, k := range kinds {
		q.kinds[k] = struct{}{}
	}
	return q
}

// Run executes the query and returns matching rule ids in rule-table order.
func (q *TEQuery) Run(p *policy.Policy) ([]policy.RuleID, error) {
	cache := newRegexCache()

	srcCandidates, srcSet, err := candidateTypes(p, q.source, cache)
	if err != nil {
		return nil, err
	}
	if srcSet && len(srcCandidates) == 0 {
		return nil, nil
	}
	tgtCandidates, tgtSet, err := candidateTypes(p, q.target, cache)
	if err != nil {
		return nil, err
	}
	if tgtSet && len(tgtCandidates) == 0 {
		return nil, nil
	}
	classSet, classesSet := classCandidates(p, q.classes)
	if classesSet && len(classSet) == 0 {
		return nil, nil
	}
	var defID policy.TypeID
	defSet := q.defaultType != ""
	if defSet {
		id, ok := p.LookupType(q.defaultType)
		if !ok {
			return nil, nil
		}
		defID = id
	}

	var out []policy.RuleID
	for _, r := range p.TERules() {
		if len(q.kinds) > 0 {
			if _, ok := q.kinds[r.RuleKind]; !ok {
				continue
			}
		}
		if q.onlyEnabled && r.Cond.Bound && !p.RuleEnabled(r.Cond) {
			continue
		}
		if classesSet && !classSetIntersects(r.Classes, classSet) {
			continue
		}
		if defSet && r.Default != defID {
			continue
		}

		ruleSources := p.ExpandTypeSet(r.Source, invalidSource)
		matchedSrc := !srcSet || setMatches(p, r.Source, invalidSource, srcCandidates)

		if q.sourceAsAny && srcSet {
			if matchedSrc || anyTargetMatches(p, ruleSources, r.Target, true, srcCandidates) {
				out = append(out, r.ID)
			}
			continue
		}
		if srcSet && !matchedSrc {
			continue
		}
		if tgtSet && !anyTargetMatches(p, ruleSources, r.Target, tgtSet, tgtCandidates) {
			continue
		}
		out = append(out, r.ID)
	}
	return out, nil
}
