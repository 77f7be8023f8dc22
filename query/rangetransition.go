package query

import "github.com/avkit/avpolicy/policy"

// RangeTransitionQuery builds a conjunctive query over the
// range_transition table, including the MLS range-compare dimension
// (spec §4.3, §4.5).
type RangeTransitionQuery struct {
	source string
	target string
	regex  bool

	classes []string

	rangeSet  bool
	rng       policy.Range
	rangeMode policy.RangeCompareMode
}

func NewRangeTransitionQuery() *RangeTransitionQuery { return &RangeTransitionQuery{} }

func (q *RangeTransitionQuery) SetSource(name string) *RangeTransitionQuery { q.source = name; return q }
func (q *RangeTransitionQuery) SetTarget(name string) *RangeTransitionQuery { q.target = name; return q }
func (q *RangeTransitionQuery) SetRegex(v bool) *RangeTransitionQuery       { q.regex = v; return q }
func (q *RangeTransitionQuery) SetClasses(names ...string) *RangeTransitionQuery {
	q.classes = names
	return q
}

// SetRange sets the MLS range filter (spec §4.5 step 3.g).
func (q *RangeTransitionQuery) SetRange(r policy.Range, mode policy.RangeCompareMode) *RangeTransitionQuery {
	q.rangeSet = true
	q.rng = r
	q.rangeMode = mode
	return q
}

func (q *RangeTransitionQuery) Run(p *policy.Policy) ([]policy.RuleID, error) {
	cache := newRegexCache()
	srcFilter := symbolFilter{}
	if q.source != "" {
		srcFilter = symbolFilter{set: true, pattern: q.source, regex: q.regex}
	}
	srcCandidates, srcSet, err := candidateTypes(p, srcFilter, cache)
	if err != nil {
		return nil, err
	}
	if srcSet && len(srcCandidates) == 0 {
		return nil, nil
	}
	tgtFilter := symbolFilter{}
	if q.target != "" {
		tgtFilter = symbolFilter{set: true, pattern: q.target, regex: q.regex}
	}
	tgtCandidates, tgtSet, err := candidateTypes(p, tgtFilter, cache)
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

	var out []policy.RuleID
	for _, r := range p.RangeTransitions() {
		if srcSet && !setMatches(p, r.Source, invalidSource, srcCandidates) {
			continue
		}
		ruleSources := p.ExpandTypeSet(r.Source, invalidSource)
		if tgtSet && !anyTargetMatches(p, ruleSources, r.Target, tgtSet, tgtCandidates) {
			continue
		}
		if classesSet && !classSetIntersects(r.Classes, classSet) {
			continue
		}
		if q.rangeSet && !p.RangeCompare(r.TargetRange, q.rng, q.rangeMode) {
			continue
		}
		out = append(out, r.ID)
	}
	return out, nil
}
