package query_test

import (
	"testing"

	"github.com/avkit/avpolicy/internal/fixtures"
	"github.com/avkit/avpolicy/query"
)

// Scenario A (spec §8): the rule's literal source is attribute a, not
// concrete member t_a. Querying by the concrete member only reaches it
// through indirect expansion (t_a's own attributes include a); querying
// the attribute directly with indirect expansion enabled must return
// the same rule.
func TestAVQueryScenarioA(t *testing.T) {
	p := fixtures.ScenarioA()

	byType, err := query.NewAVQuery().SetSource("t_a", false, true).Run(p)
	if err != nil {
		t.Fatal(err)
	}
	if len(byType) != 1 {
		t.Fatalf("expected 1 rule querying by concrete source with indirect expansion, got %d", len(byType))
	}

	byAttr, err := query.NewAVQuery().SetSource("a", false, true).Run(p)
	if err != nil {
		t.Fatal(err)
	}
	if len(byAttr) != 1 || byAttr[0] != byType[0] {
		t.Fatalf("expected indirect attribute query to return the same rule, got %v vs %v", byAttr, byType)
	}
}

// Scenario B (spec §8, reusing Scenario A's policy): the rule's literal
// source is the attribute "a", not the concrete type t_a. Querying the
// attribute exactly (indirect off) must hit it; querying the concrete
// member exactly (indirect off) must not, since the rule never names
// t_a directly (spec §4.1's attribute-vs-member exact match).
func TestAVQueryScenarioB(t *testing.T) {
	p := fixtures.ScenarioA()

	byAttr, err := query.NewAVQuery().SetSource("a", false, false).Run(p)
	if err != nil {
		t.Fatal(err)
	}
	if len(byAttr) != 1 {
		t.Fatalf("expected exact attribute match for source=a, got %d", len(byAttr))
	}

	byMember, err := query.NewAVQuery().SetSource("t_a", false, false).Run(p)
	if err != nil {
		t.Fatal(err)
	}
	if len(byMember) != 0 {
		t.Fatalf("expected no match for source=t_a: the rule names attribute a, not t_a, got %v", byMember)
	}
}

func TestAVQueryPermissionFilter(t *testing.T) {
	p := fixtures.ScenarioA()

	matches, err := query.NewAVQuery().SetPermissions("write").Run(p)
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 1 {
		t.Fatalf("expected the rule to match on 'write', got %d", len(matches))
	}

	matches, err = query.NewAVQuery().SetPermissions("execute").Run(p)
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 0 {
		t.Fatalf("expected no match on 'execute' (not granted), got %d", len(matches))
	}
}

// Scenario C (spec §8): only_enabled must track the Boolean's current value.
func TestAVQueryOnlyEnabled(t *testing.T) {
	p := fixtures.ScenarioC(true)

	enabled, err := query.NewAVQuery().SetOnlyEnabled(true).Run(p)
	if err != nil {
		t.Fatal(err)
	}
	if len(enabled) != 1 {
		t.Fatalf("expected exactly 1 enabled rule when b=true, got %d", len(enabled))
	}
	rule := p.AVRule(enabled[0])
	if !rule.Permissions.Has("read") {
		t.Fatalf("expected the true-branch (read) rule to be enabled, got permissions %v", rule.Permissions.Sorted())
	}

	boolID, _ := p.LookupBoolean("b")
	p.SetBoolean(boolID, false)
	enabled, err = query.NewAVQuery().SetOnlyEnabled(true).Run(p)
	if err != nil {
		t.Fatal(err)
	}
	if len(enabled) != 1 {
		t.Fatalf("expected exactly 1 enabled rule after flipping b to false, got %d", len(enabled))
	}
	rule = p.AVRule(enabled[0])
	if !rule.Permissions.Has("write") {
		t.Fatalf("expected the false-branch (write) rule to be enabled, got permissions %v", rule.Permissions.Sorted())
	}
}

func TestAVQuerySourceAsAny(t *testing.T) {
	p := fixtures.ScenarioA()

	// t_b is never a source in this fixture, only a target; source-as-any
	// should still accept the rule because t_b matches the target side.
	matches, err := query.NewAVQuery().SetSource("t_b", false, false).SetSourceAsAny(true).Run(p)
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 1 {
		t.Fatalf("expected source-as-any to accept via target match, got %d", len(matches))
	}
}

func TestRoleAllowQueryEmptyMatchesNothing(t *testing.T) {
	p := fixtures.ScenarioF()
	matches, err := query.NewRoleAllowQuery().SetSource("r_orphan").Run(p)
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 0 {
		t.Fatalf("expected r_orphan to have no role_allow rules, got %d", len(matches))
	}
}
