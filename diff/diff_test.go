package diff

import (
	"testing"

	"github.com/avkit/avpolicy/internal/fixtures"
	"github.com/avkit/avpolicy/policy"
)

func TestDiffSelfIsEmpty(t *testing.T) {
	p := fixtures.ScenarioA()
	r := Run(p, p)
	if !r.IsEmpty() {
		t.Fatalf("diff(P,P) should be empty, got %d deltas: %+v", len(r.Deltas), r.Deltas)
	}
	if r.TotalDifferences() != 0 {
		t.Fatalf("TotalDifferences() = %d, want 0", r.TotalDifferences())
	}
}

func TestDiffScenarioDDetectsAddedPermission(t *testing.T) {
	p1, p2 := fixtures.ScenarioD()

	fwd := Run(p1, p2)
	if fwd.IsEmpty() {
		t.Fatal("expected differences between p1 and p2")
	}

	classStats := fwd.GetStats(KindClass)
	if classStats.Modified != 1 {
		t.Fatalf("class stats = %+v, want 1 modified (file gained append)", classStats)
	}

	avStats := fwd.GetStats(KindAVRule)
	if avStats.Modified != 1 {
		t.Fatalf("av_rule stats = %+v, want 1 modified", avStats)
	}

	var found bool
	for _, d := range fwd.Deltas {
		if d.Kind != KindAVRule || d.Form != FormModified {
			continue
		}
		found = true
		before := d.Before["permissions"].([]string)
		after := d.After["permissions"].([]string)
		if len(after) != len(before)+1 {
			t.Fatalf("permissions before=%v after=%v, want exactly one added", before, after)
		}
	}
	if !found {
		t.Fatal("no modified av_rule delta found")
	}
}

func TestDiffSwapsAddedAndRemoved(t *testing.T) {
	p1, p2 := fixtures.ScenarioD()
	fwd := Run(p1, p2)
	rev := Run(p2, p1)

	fwdClass := fwd.GetStats(KindClass)
	revClass := rev.GetStats(KindClass)
	if fwdClass.Modified != revClass.Modified {
		t.Fatalf("modified count should be symmetric: fwd=%d rev=%d", fwdClass.Modified, revClass.Modified)
	}
	if fwd.TotalDifferences() != rev.TotalDifferences() {
		t.Fatalf("total differences should be symmetric: fwd=%d rev=%d", fwd.TotalDifferences(), rev.TotalDifferences())
	}
	for _, k := range AllKinds() {
		f, r := fwd.GetStats(k), rev.GetStats(k)
		if f.Added != r.Removed || f.Removed != r.Added {
			t.Errorf("%s: added/removed should swap: fwd=%+v rev=%+v", k, f, r)
		}
		if f.AddedType != r.RemovedType || f.RemovedType != r.AddedType {
			t.Errorf("%s: added_type/removed_type should swap: fwd=%+v rev=%+v", k, f, r)
		}
	}
}

func TestDiffAddedTypeTagsRule(t *testing.T) {
	build := func(withExtraType bool) *policy.Policy {
		b := policy.NewBuilder("added_type", "1.0")
		file := b.AddClass("file", []policy.Permission{{Name: "read"}}, "")
		t1 := b.AddType("t1")
		t2 := b.AddType("t2")
		b.AddAVRule(policy.AVRule{
			RuleKind:    policy.AVAllow,
			Source:      policy.NewTypeSet(t1),
			Target:      policy.NewTypeSet(t2),
			Classes:     policy.NewClassSet(file),
			Permissions: policy.NewPermSet("read"),
		})
		if withExtraType {
			tNew := b.AddType("t_new")
			b.AddAVRule(policy.AVRule{
				RuleKind:    policy.AVAllow,
				Source:      policy.NewTypeSet(tNew),
				Target:      policy.NewTypeSet(t2),
				Classes:     policy.NewClassSet(file),
				Permissions: policy.NewPermSet("read"),
			})
		}
		return b.Build()
	}
	p1 := build(false)
	p2 := build(true)

	r := Run(p1, p2, KindAVRule, KindType)
	typeStats := r.GetStats(KindType)
	if typeStats.Added != 1 {
		t.Fatalf("type stats = %+v, want 1 added (t_new)", typeStats)
	}

	var tagged bool
	for _, d := range r.Deltas {
		if d.Kind == KindAVRule && d.Form == FormAddedType {
			tagged = true
		}
	}
	if !tagged {
		t.Fatal("expected the new rule referencing t_new to be tagged added_type")
	}
}

func TestDiffConditionalKeyedByReferencedBooleans(t *testing.T) {
	p := fixtures.ScenarioC(false)
	r := Run(p, p, KindConditional)
	if !r.IsEmpty() {
		t.Fatalf("diff(P,P) over conditionals should be empty, got %+v", r.Deltas)
	}
}
