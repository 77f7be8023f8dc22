package policy

import (
	"reflect"
	"testing"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// Invariant 1 (spec §8): attribute expansion is idempotent and commutes
// with alias resolution.
func TestExpandIdempotentAndAliasCommutes(t *testing.T) {
	b := NewBuilder("m", "1.0")
	concrete := b.AddType("httpd_t")
	attr := b.AddAttribute("domain")
	b.AddTypeAttribute(concrete, attr)
	alias := b.AddAlias("httpd_exec_t_alias", concrete)
	p := b.Build()

	expanded := p.ExpandType(concrete)
	expandedAgain := p.ExpandType(concrete)
	if !reflect.DeepEqual(expanded, expandedAgain) {
		t.Fatalf("expand not idempotent: %v vs %v", expanded, expandedAgain)
	}

	expandedAlias := p.ExpandType(alias)
	if !reflect.DeepEqual(expanded, expandedAlias) {
		t.Fatalf("expand(alias) != expand(concrete): %v vs %v", expandedAlias, expanded)
	}
}

// Scenario A (spec §8): typeattribute membership lets an attribute-keyed
// rule match the concrete type.
func TestScenarioA(t *testing.T) {
	b := NewBuilder("m", "1.0")
	file := b.AddClass("file", []Permission{{Name: "read"}, {Name: "write"}}, "")
	ta := b.AddType("t_a")
	tb := b.AddType("t_b")
	a := b.AddAttribute("a")
	b.AddTypeAttribute(ta, a)
	ruleID := b.AddAVRule(AVRule{
		RuleKind:    AVAllow,
		Source:      NewTypeSet(a),
		Target:      NewTypeSet(tb),
		Classes:     NewClassSet(file),
		Permissions: NewPermSet("read", "write"),
	})
	p := b.Build()

	ids := p.Index().ByTriple(ta, tb, file, KindAVAllow)
	if len(ids) != 1 || ids[0] != ruleID {
		t.Fatalf("expected rule %d via attribute indirection, got %v", ruleID, ids)
	}
	rule := p.AVRule(ids[0])
	if !rule.Permissions.Has("read") || !rule.Permissions.Has("write") {
		t.Fatalf("expected read+write, got %v", rule.Permissions.Sorted())
	}
}

// Invariant 2 (spec §8): every ground (src,tgt,class) the rule's sets
// expand to indexes the rule, and no other triple does.
func TestIndexNoSpuriousMatches(t *testing.T) {
	b := NewBuilder("m", "1.0")
	file := b.AddClass("file", []Permission{{Name: "read"}}, "")
	dir := b.AddClass("dir", []Permission{{Name: "read"}}, "")
	t1 := b.AddType("t1")
	t2 := b.AddType("t2")
	t3 := b.AddType("t3")
	ruleID := b.AddAVRule(AVRule{
		RuleKind:    AVAllow,
		Source:      NewTypeSet(t1),
		Target:      NewTypeSet(t2),
		Classes:     NewClassSet(file),
		Permissions: NewPermSet("read"),
	})
	p := b.Build()

	if ids := p.Index().ByTriple(t1, t2, file, KindAVAllow); len(ids) != 1 || ids[0] != ruleID {
		t.Fatalf("expected ground triple to match, got %v", ids)
	}
	if ids := p.Index().ByTriple(t1, t3, file, KindAVAllow); len(ids) != 0 {
		t.Fatalf("expected no match for unrelated target, got %v", ids)
	}
	if ids := p.Index().ByTriple(t1, t2, dir, KindAVAllow); len(ids) != 0 {
		t.Fatalf("expected no match for unrelated class, got %v", ids)
	}
}

// Invariant 7 (spec §8): EXACT/SUB/SUPER/INTERSECT range compare modes.
func TestRangeCompareModes(t *testing.T) {
	b := NewBuilder("m", "1.0")
	s0 := b.AddSensitivity("s0", 0)
	s1 := b.AddSensitivity("s1", 1)
	c0 := b.AddCategory("c0")
	c1 := b.AddCategory("c1")
	p := b.Build()

	low := NewLevel(s0, c0)
	high := NewLevel(s1, c0, c1)
	a := Range{Low: low, High: high}
	bEqual := Range{Low: low, High: high}
	bSub := Range{Low: NewLevel(s0, c0), High: NewLevel(s0, c0)}
	bSuper := Range{Low: NewLevel(s0), High: NewLevel(s1, c0, c1)}
	// bDisjoint sits at s1:c1 alone, which a's low (s0:c0) neither
	// dominates nor is dominated by, and which does not contain a's
	// high (s1:c0,c1) either way — so no mode should report a relation.
	bDisjoint := Range{Low: NewLevel(s1, c1), High: NewLevel(s1, c1)}

	if !p.RangeCompare(a, bEqual, RangeExact) {
		t.Error("expected EXACT true for identical ranges")
	}
	if !p.RangeCompare(a, bSub, RangeSub) {
		t.Error("expected SUB true: a contains bSub")
	}
	if p.RangeCompare(a, bSuper, RangeSub) {
		t.Error("expected SUB false: a does not contain bSuper")
	}
	if !p.RangeCompare(a, bSuper, RangeSuper) {
		t.Error("expected SUPER true: bSuper contains a")
	}
	if p.RangeCompare(a, bDisjoint, RangeIntersect) {
		t.Error("expected INTERSECT false for incomparable ranges")
	}
}

// Invariant 8 (spec §8): mls_range.contains_level.
func TestRangeContainsLevel(t *testing.T) {
	b := NewBuilder("m", "1.0")
	s0 := b.AddSensitivity("s0", 0)
	s1 := b.AddSensitivity("s1", 1)
	c0 := b.AddCategory("c0")
	c1 := b.AddCategory("c1")
	p := b.Build()

	r := Range{Low: NewLevel(s0), High: NewLevel(s1, c0)}
	if !p.RangeContains(r, NewLevel(s0)) {
		t.Error("expected range to contain its own low")
	}
	if !p.RangeContains(r, NewLevel(s1, c0)) {
		t.Error("expected range to contain its own high")
	}
	if p.RangeContains(r, NewLevel(s1, c1)) {
		t.Error("s1:c1 is incomparable to s1:c0, should not be contained")
	}
}

// Scenario C (spec §8): flipping a Boolean's default changes which
// branch is enabled.
func TestConditionalBranchSelection(t *testing.T) {
	b := NewBuilder("m", "1.0")
	bl := b.AddBoolean("b", false)
	cond := b.AddConditional([]CondToken{BoolToken(bl)})
	p := b.Build()

	ce := p.Conditional(cond)
	if ce.Enabled(p.bools, true) {
		t.Error("true-branch should be disabled when b defaults false")
	}
	if !ce.Enabled(p.bools, false) {
		t.Error("false-branch should be enabled when b defaults false")
	}

	boolID, _ := p.LookupBoolean("b")
	p.SetBoolean(boolID, true)
	if !ce.Enabled(p.bools, true) {
		t.Error("true-branch should be enabled after flipping b to true")
	}
}

func TestEnumerateLevels(t *testing.T) {
	b := NewBuilder("m", "1.0")
	s0 := b.AddSensitivity("s0", 0)
	s1 := b.AddSensitivity("s1", 1)
	s2 := b.AddSensitivity("s2", 2)
	c0 := b.AddCategory("c0")
	b.AllowCategory(s0, c0)
	b.AllowCategory(s1, c0)
	p := b.Build()

	levels := p.EnumerateLevels(Range{Low: NewLevel(s0), High: NewLevel(s2, c0)})
	if len(levels) != 3 {
		t.Fatalf("expected 3 levels (s0,s1,s2), got %d", len(levels))
	}
	// s2 does not legally carry c0, so its emitted level drops it.
	if len(levels[2].Cats) != 0 {
		t.Errorf("expected s2's emitted level to have no categories, got %v", levels[2].Cats)
	}
	if len(levels[1].Cats) != 1 {
		t.Errorf("expected s1's emitted level to retain c0, got %v", levels[1].Cats)
	}
}
