package policy

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// RuleIndexKey is (source-type-id, target-type-id, class-id, kind): the
// key of the rule hash index (spec §3 RuleIndexKey row, §4.2).
type RuleIndexKey struct {
	Source TypeID
	Target TypeID
	Class  ClassID
	Kind   Kind
}

func (k RuleIndexKey) hash() uint64 {
	var buf [20]byte
	binary.LittleEndian.PutUint32(buf[0:4], uint32(k.Source))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(k.Target))
	binary.LittleEndian.PutUint32(buf[8:12], uint32(k.Class))
	binary.LittleEndian.PutUint32(buf[12:16], uint32(k.Kind))
	return xxhash.Sum64(buf[:16])
}

// indexEntry is one hash-table bucket slot: every rule id that matched
// Key's ground triple, plus the union of their permission bitsets (AV
// rules only — TE/role/range entries carry an empty Perms).
type indexEntry struct {
	Key     RuleIndexKey
	RuleIDs []RuleID
	Perms   PermSet
}

// RuleRef pairs a RuleID with the table (Kind) it belongs to: RuleIDs
// are only dense within one rule table, so a bare RuleID is ambiguous
// across AV and TE rules and must always travel with its Kind.
type RuleRef struct {
	Kind Kind
	ID   RuleID
}

// RuleIndex is the rule-wide hash / secondary index described in spec
// §4.2: a chained hash table over (src, tgt, class, kind), built once
// by Builder.Build and reused for the lifetime of the Policy that owns it.
type RuleIndex struct {
	buckets    []map[RuleIndexKey]*indexEntry
	bySource   map[TypeID]map[RuleRef]struct{}
	byTarget   map[TypeID]map[RuleRef]struct{}
	bucketMask uint64
}

const indexTableSize = 1024 // power of two; chains absorb excess load

func newRuleIndex() *RuleIndex {
	buckets := make([]map[RuleIndexKey]*indexEntry, indexTableSize)
	for i := range buckets {
		buckets[i] = make(map[RuleIndexKey]*indexEntry)
	}
	return &RuleIndex{
		buckets:    buckets,
		bySource:   make(map[TypeID]map[RuleRef]struct{}),
		byTarget:   make(map[TypeID]map[RuleRef]struct{}),
		bucketMask: indexTableSize - 1,
	}
}

func (idx *RuleIndex) bucketFor(key RuleIndexKey) map[RuleIndexKey]*indexEntry {
	return idx.buckets[key.hash()&idx.bucketMask]
}

// append adds ruleID under key, unioning perms into any existing entry —
// "duplicate bucket entries are collapsed and their permission bitsets
// unioned" (spec §4.2).
func (idx *RuleIndex) append(key RuleIndexKey, ruleID RuleID, perms PermSet) {
	bucket := idx.bucketFor(key)
	e, ok := bucket[key]
	if !ok {
		e = &indexEntry{Key: key, Perms: PermSet{}}
		bucket[key] = e
	}
	e.RuleIDs = append(e.RuleIDs, ruleID)
	if perms != nil {
		e.Perms = e.Perms.Union(perms)
	}

	ref := RuleRef{Kind: key.Kind, ID: ruleID}
	if idx.bySource[key.Source] == nil {
		idx.bySource[key.Source] = make(map[RuleRef]struct{})
	}
	idx.bySource[key.Source][ref] = struct{}{}
	if idx.byTarget[key.Target] == nil {
		idx.byTarget[key.Target] = make(map[RuleRef]struct{})
	}
	idx.byTarget[key.Target][ref] = struct{}{}
}

// ByTriple returns the rule ids matching a fully-specified (src, tgt,
// class, kind) ground triple, in stable (lowest rule id first) order.
func (idx *RuleIndex) ByTriple(src, tgt TypeID, class ClassID, kind Kind) []RuleID {
	bucket := idx.bucketFor(RuleIndexKey{src, tgt, class, kind})
	e, ok := bucket[RuleIndexKey{src, tgt, class, kind}]
	if !ok {
		return nil
	}
	return sortedRuleIDs(e.RuleIDs)
}

// BySource returns every (kind, rule id) whose expanded source set
// contains src.
func (idx *RuleIndex) BySource(src TypeID) []RuleRef {
	return sortedRuleRefsFromSet(idx.bySource[src])
}

// ByTarget returns every (kind, rule id) whose expanded target set
// contains tgt.
func (idx *RuleIndex) ByTarget(tgt TypeID) []RuleRef {
	return sortedRuleRefsFromSet(idx.byTarget[tgt])
}

func sortedRuleIDs(ids []RuleID) []RuleID {
	out := make([]RuleID, len(ids))
	copy(out, ids)
	insertionSortRuleIDs(out)
	return out
}

func sortedRuleRefsFromSet(set map[RuleRef]struct{}) []RuleRef {
	out := make([]RuleRef, 0, len(set))
	for ref := range set {
		out = append(out, ref)
	}
	insertionSortRuleRefs(out)
	return out
}

func insertionSortRuleRefs(refs []RuleRef) {
	less := func(a, b RuleRef) bool {
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		return a.ID < b.ID
	}
	for i := 1; i < len(refs); i++ {
		v := refs[i]
		j := i - 1
		for j >= 0 && less(v, refs[j]) {
			refs[j+1] = refs[j]
			j--
		}
		refs[j+1] = v
	}
}

// insertionSortRuleIDs sorts ascending. Rule counts per bucket are small
// in practice, so a tight insertion sort avoids pulling in sort.Slice's
// interface-dispatch overhead on the hot path.
func insertionSortRuleIDs(ids []RuleID) {
	for i := 1; i < len(ids); i++ {
		v := ids[i]
		j := i - 1
		for j >= 0 && ids[j] > v {
			ids[j+1] = ids[j]
			j--
		}
		ids[j+1] = v
	}
}
