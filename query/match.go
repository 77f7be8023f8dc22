package query

import "github.com/avkit/avpolicy/policy"

// setMatches reports whether any candidate is a literal member of ts,
// per spec §4.1: a type matches a set by direct id, or — only for a
// target set — by "self" resolving to src. Matching happens against
// the rule's own literal TypeSet.IDs; attribute membership is never
// expanded on the rule side here, since indirect expansion already
// happened on the query-candidate side (candidateTypes/addWithIndirect).
// Expanding the rule's side too would erase the attribute-vs-member
// distinction spec §4.1 and Scenario B turn on.
//
// src is the concrete type playing the rule's source role, used only
// to resolve "self"; pass invalidSource when ts can never be self
// (e.g. a rule's Source set) or when no ground source is available.
func setMatches(p *policy.Policy, ts policy.TypeSet, src policy.TypeID, candidates map[policy.TypeID]struct{}) bool {
	for c := range candidates {
		if _, ok := ts.IDs[c]; ok {
			return true
		}
		if ts.Self && p.TypeSetMatches(policy.SelfTypeSet(), c, src) {
			return true
		}
	}
	return false
}

// anyTargetMatches reports whether, for at least one ground source the
// rule expands to, target matches tgtCandidates (or tgtSet is unset,
// meaning "no target filter").
func anyTargetMatches(p *policy.Policy, ruleSources map[policy.TypeID]struct{}, target policy.TypeSet, tgtSet bool, tgtCandidates map[policy.TypeID]struct{}) bool {
	if !tgtSet {
		return true
	}
	if len(ruleSources) == 0 {
		// Rule has no ground source (e.g. an unresolved "self"); fall
		// back to matching with no self substitution available.
		return setMatches(p, target, invalidSource, tgtCandidates)
	}
	for src := range ruleSources {
		if setMatches(p, target, src, tgtCandidates) {
			return true
		}
	}
	return false
}
