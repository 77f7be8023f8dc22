package analysis

import (
	"context"
	"testing"

	"github.com/avkit/avpolicy/internal/fixtures"
)

func TestImpossibleRangeTransitionScenarioE(t *testing.T) {
	p := fixtures.ScenarioE()
	m := NewImpossibleRangeTransitionModule()
	if err := m.Init(p, nil); err != nil {
		t.Fatalf("Init: %v", err)
	}
	result, err := m.Run(p, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(result.Items) != 1 {
		t.Fatalf("expected exactly one impossible transition, got %d", len(result.Items))
	}
	var sawMissingRule bool
	for _, proof := range result.Items[0].Proofs {
		if proof.Text == "Missing: allow sysadm_t passwd_exec_t : file execute;" {
			sawMissingRule = true
		}
	}
	if !sawMissingRule {
		t.Fatalf("expected a Missing: allow ... execute proof, got %+v", result.Items[0].Proofs)
	}
}

func TestRolesWoAllowScenarioF(t *testing.T) {
	p := fixtures.ScenarioF()
	m := NewRolesWoAllowModule("roles_wo_allow")
	result, err := m.Run(p, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(result.Items) != 1 || result.Items[0].Name != "r_orphan" {
		t.Fatalf("expected exactly [r_orphan], got %+v", result.Items)
	}
}

func TestRegistryRunsSelectedModules(t *testing.T) {
	p := fixtures.ScenarioF()
	reg := NewRegistry()
	reg.Register(NewRolesWoAllowModule("roles_wo_allow"))
	reg.Register(NewRolesWoUsersModule())

	results, diags, err := reg.RunSelected(context.Background(), p, []string{"roles_wo_allow", "roles_wo_users"}, nil)
	if err != nil {
		t.Fatalf("RunSelected: %v", err)
	}
	if len(diags) != 0 {
		t.Fatalf("expected no diagnostics, got %+v", diags)
	}
	if _, ok := results["roles_wo_allow"]; !ok {
		t.Fatal("missing roles_wo_allow result")
	}
	if _, ok := results["roles_wo_users"]; !ok {
		t.Fatal("missing roles_wo_users result")
	}
}

func TestRegistryUnknownModuleErrors(t *testing.T) {
	p := fixtures.ScenarioF()
	reg := NewRegistry()
	_, _, err := reg.RunSelected(context.Background(), p, []string{"not_registered"}, nil)
	if err == nil {
		t.Fatal("expected an error for an unregistered module name")
	}
}

func TestDomainsFindsAttributeIndirectedSource(t *testing.T) {
	p := fixtures.ScenarioA()
	m := NewDomainsModule()
	if err := m.Init(p, nil); err != nil {
		t.Fatalf("Init: %v", err)
	}
	result, err := m.Run(p, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	var sawTA bool
	for _, item := range result.Items {
		if item.Name == "t_a" {
			sawTA = true
		}
	}
	if !sawTA {
		t.Fatalf("expected t_a (source of the allow rule) to be flagged as a domain, got %+v", result.Items)
	}
}
