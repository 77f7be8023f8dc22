package query

import "github.com/avkit/avpolicy/policy"

// invalidSource stands in for "no ground source yet" when expanding a
// rule's own Source set, mirroring policy.invalidTypeIDForSelf: "self"
// cannot appear in a source set, so this never collides with a real
// type id match.
const invalidSource = policy.TypeID(-1)

// AVQuery builds a conjunctive query over the access-vector rule table
// (allow/neverallow/auditallow/dontaudit), per spec §4.5.
type AVQuery struct {
	source symbolFilter
	target symbolFilter

	sourceAsAny bool
	onlyEnabled bool

	classes     []string
	permissions []string

	boolName    string
	boolRegex   bool

	kinds map[policy.AVKind]struct{} // empty = all kinds
}

// NewAVQuery returns an empty query matching every AV rule.
func NewAVQuery() *AVQuery { return &AVQuery{} }

// SetSource sets (or, given "", clears) the source-type filter.
func (q *AVQuery) SetSource(name string, regex, indirect bool) *AVQuery {
	if name == "" {
		q.source = symbolFilter{}
		return q
	}
	q.source = symbolFilter{set: true, pattern: name, regex: regex, indirect: indirect}
	return q
}

// SetTarget sets (or clears) the target-type filter.
func (q *AVQuery) SetTarget(name string, regex, indirect bool) *AVQuery {
	if name == "" {
		q.target = symbolFilter{}
		return q
	}
	q.target = symbolFilter{set: true, pattern: name, regex: regex, indirect: indirect}
	return q
}

// SetSourceAsAny toggles spec §4.5 step 2's source-as-any semantics.
func (q *AVQuery) SetSourceAsAny(v bool) *AVQuery { q.sourceAsAny = v; return q }

// SetOnlyEnabled restricts results to rules enabled under the policy's
// current Boolean valuation (spec §4.5 step 3.a).
func (q *AVQuery) SetOnlyEnabled(v bool) *AVQuery { q.onlyEnabled = v; return q }

// SetClasses restricts results to the named object classes.
func (q *AVQuery) SetClasses(names ...string) *AVQuery { q.classes = names; return q }

// SetPermissions restricts results to rules carrying at least one of
// the named permissions.
func (q *AVQuery) SetPermissions(names ...string) *AVQuery { q.permissions = names; return q }

// SetBooleanName restricts results to conditional rules whose
// expression references a Boolean matching name.
func (q *AVQuery) SetBooleanName(name string, regex bool) *AVQuery {
	q.boolName = name
	q.boolRegex = regex
	return q
}

// SetKinds restricts results to the given AV rule kinds; with none
// set, every kind matches.
func (q *AVQuery) SetKinds(kinds ...policy.AVKind) *AVQuery {
	q.kinds = make(map[policy.AVKind]struct{}, len(kinds))
	for _, k := range kinds {
		q.kinds[k] = struct{}{}
	}
	return q
}

// Run executes the query against p and returns matching rule ids in
// rule-table order (spec §4.5 step 4).
func (q *AVQuery) Run(p *policy.Policy) ([]policy.RuleID, error) {
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

	var out []policy.RuleID
	for _, r := range p.AVRules() {
		if len(q.kinds) > 0 {
			if _, ok := q.kinds[r.RuleKind]; !ok {
				continue
			}
		}
		if q.onlyEnabled && r.Cond.Bound && !p.RuleEnabled(r.Cond) {
			continue
		}
		if q.boolName != "" {
			matched, err := boolNameMatch(p, r.Cond, q.boolName, q.boolRegex, cache)
			if err != nil {
				return nil, err
			}
			if !matched {
				continue
			}
		}
		if classesSet && !classSetIntersects(r.Classes, classSet) {
			continue
		}
		if !permissionMatch(r.Permissions, q.permissions) {
			continue
		}

		// ruleSources grounds the rule's source set to concrete types
		// (legitimate: needed only to resolve "self" in the target set
		// below, per ExpandTypeSet's doc comment). Matching the query's
		// own source/target candidates, below, uses the literal
		// TypeSet.IDs instead — see setMatches.
		ruleSources := p.ExpandTypeSet(r.Source, invalidSource)

		matchedSrc := !srcSet || setMatches(p, r.Source, invalidSource, srcCandidates)

		if q.sourceAsAny && srcSet {
			if matchedSrc {
				out = append(out, r.ID)
				continue
			}
			// Source did not match: delay rejection until the target is
			// checked against the *same* candidate list (spec §4.5 step 2:
			// "treat source-list and target-list as the same list").
			if anyTargetMatches(p, ruleSources, r.Target, true, srcCandidates) {
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

func classSetIntersects(have policy.ClassSet, want map[policy.ClassID]struct{}) bool {
	for c := range have {
		if _, ok := want[c]; ok {
			return true
		}
	}
	return false
}
