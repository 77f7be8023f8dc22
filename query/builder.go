// Package query implements the conjunctive query layer over a loaded
// policy (spec §4.5): one builder per rule/symbol kind, each sharing
// the same candidate-expansion and source-as-any semantics.
package query

import (
	"regexp"

	"github.com/avkit/avpolicy/policy"
)

// symbolFilter is the shared shape of a source/target/default filter
// dimension: a literal name or a regex pattern, optionally expanded
// through attribute membership ("indirect").
type symbolFilter struct {
	set      bool
	pattern  string
	regex    bool
	indirect bool
}

func (f symbolFilter) isSet() bool { return f.set }

// regexCache compiles each distinct pattern once per Run call, per
// spec §5 ("Regex compilation results are cached on the builder for
// the duration of one run").
type regexCache struct {
	compiled map[string]*regexp.Regexp
}

func newRegexCache() *regexCache {
	return &regexCache{compiled: make(map[string]*regexp.Regexp)}
}

func (c *regexCache) compile(pattern string) (*regexp.Regexp, error) {
	if re, ok := c.compiled[pattern]; ok {
		return re, nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, policy.WrapError(policy.ErrRegexCompileFailure, pattern, err)
	}
	c.compiled[pattern] = re
	return re, nil
}

// candidateTypes resolves a symbolFilter against the type store,
// returning (candidates, matched). matched is false only when the
// filter is unset ("match everything"); an empty, non-nil candidate
// set with matched true means "filter set but nothing matched", which
// callers must treat as an immediate empty result (spec §4.5 step 1).
func candidateTypes(p *policy.Policy, f symbolFilter, cache *regexCache) (map[policy.TypeID]struct{}, bool, error) {
	if !f.set {
		return nil, false, nil
	}
	out := make(map[policy.TypeID]struct{})
	if f.regex {
		re, err := cache.compile(f.pattern)
		if err != nil {
			return nil, true, err
		}
		for _, t := range p.Types() {
			if re.MatchString(t.Name) {
				addWithIndirect(p, t.ID, f.indirect, out)
			}
		}
		return out, true, nil
	}
	id, ok := p.LookupType(f.pattern)
	if !ok {
		return out, true, nil
	}
	addWithIndirect(p, id, f.indirect, out)
	return out, true, nil
}

// addWithIndirect adds id to out, and when indirect is set also adds
// an attribute's member types or a concrete type's attributes (spec
// §4.5 step 1: "union in attributes' members... or types' attributes").
func addWithIndirect(p *policy.Policy, id policy.TypeID, indirect bool, out map[policy.TypeID]struct{}) {
	out[id] = struct{}{}
	if !indirect {
		return
	}
	for m := range p.MembersOfAttribute(id) {
		out[m] = struct{}{}
	}
	for a := range p.AttributesOfType(id) {
		out[a] = struct{}{}
	}
}

// classCandidates resolves a class-name list filter to a set, or
// reports unset when the list is empty.
func classCandidates(p *policy.Policy, names []string) (map[policy.ClassID]struct{}, bool) {
	if len(names) == 0 {
		return nil, false
	}
	out := make(map[policy.ClassID]struct{}, len(names))
	for _, n := range names {
		if id, ok := p.LookupClass(n); ok {
			out[id] = struct{}{}
		}
	}
	return out, true
}

// permissionMatch reports whether any of wanted appears in have, per
// spec §4.5 step 3.f ("at least one listed permission must appear").
func permissionMatch(have policy.PermSet, wanted []string) bool {
	if len(wanted) == 0 {
		return true
	}
	for _, w := range wanted {
		if have.Has(w) {
			return true
		}
	}
	return false
}

// boolNameMatch reports whether cond references at least one Boolean
// whose name matches pattern (spec §4.5 step 3.b).
func boolNameMatch(p *policy.Policy, cond policy.CondRef, pattern string, regex bool, cache *regexCache) (bool, error) {
	if !cond.Bound {
		return false, nil
	}
	ce := p.Conditional(cond.CondID)
	if regex {
		re, err := cache.compile(pattern)
		if err != nil {
			return false, err
		}
		for id := range ce.ReferencedBooleans() {
			if re.MatchString(p.Boolean(id).Name) {
				return true, nil
			}
		}
		return false, nil
	}
	for id := range ce.ReferencedBooleans() {
		if p.Boolean(id).Name == pattern {
			return true, nil
		}
	}
	return false, nil
}
