// Package fixtures builds small, hand-rolled policies reproducing the
// spec's end-to-end scenarios (spec §8 "Scenario A"–"Scenario F") for
// reuse across the policy, query, diff, and analysis test suites.
package fixtures

import "github.com/avkit/avpolicy/policy"

// ScenarioA builds: type t_a; type t_b; attribute a; typeattribute t_a a;
// allow a t_b : file { read write };
func ScenarioA() *policy.Policy {
	b := policy.NewBuilder("scenario_a", "1.0")
	file := b.AddClass("file", []policy.Permission{{Name: "read"}, {Name: "write"}, {Name: "execute"}}, "")
	ta := b.AddType("t_a")
	tb := b.AddType("t_b")
	a := b.AddAttribute("a")
	b.AddTypeAttribute(ta, a)

	b.AddAVRule(policy.AVRule{
		RuleKind:    policy.AVAllow,
		Source:      policy.NewTypeSet(a),
		Target:      policy.NewTypeSet(tb),
		Classes:     policy.NewClassSet(file),
		Permissions: policy.NewPermSet("read", "write"),
	})
	return b.Build()
}

// ScenarioC builds: bool b false; if (b) { allow t1 t2 : file read; } else
// { allow t1 t2 : file write; }
func ScenarioC(boolDefault bool) *policy.Policy {
	b := policy.NewBuilder("scenario_c", "1.0")
	file := b.AddClass("file", []policy.Permission{{Name: "read"}, {Name: "write"}}, "")
	t1 := b.AddType("t1")
	t2 := b.AddType("t2")
	bl := b.AddBoolean("b", boolDefault)
	cond := b.AddConditional([]policy.CondToken{policy.BoolToken(bl)})

	b.AddAVRule(policy.AVRule{
		RuleKind:    policy.AVAllow,
		Source:      policy.NewTypeSet(t1),
		Target:      policy.NewTypeSet(t2),
		Classes:     policy.NewClassSet(file),
		Permissions: policy.NewPermSet("read"),
		Cond:        policy.CondRef{Bound: true, CondID: cond, Branch: true},
	})
	b.AddAVRule(policy.AVRule{
		RuleKind:    policy.AVAllow,
		Source:      policy.NewTypeSet(t1),
		Target:      policy.NewTypeSet(t2),
		Classes:     policy.NewClassSet(file),
		Permissions: policy.NewPermSet("write"),
		Cond:        policy.CondRef{Bound: true, CondID: cond, Branch: false},
	})
	return b.Build()
}

// ScenarioD builds a (P1, P2) pair where P2 adds "allow t1 t2 : file
// append;" relative to P1.
func ScenarioD() (p1, p2 *policy.Policy) {
	build := func(withAppend bool) *policy.Policy {
		b := policy.NewBuilder("scenario_d", "1.0")
		perms := []policy.Permission{{Name: "read"}, {Name: "write"}}
		if withAppend {
			perms = append(perms, policy.Permission{Name: "append"})
		}
		file := b.AddClass("file", perms, "")
		t1 := b.AddType("t1")
		t2 := b.AddType("t2")
		permNames := []string{"read", "write"}
		if withAppend {
			permNames = append(permNames, "append")
		}
		b.AddAVRule(policy.AVRule{
			RuleKind:    policy.AVAllow,
			Source:      policy.NewTypeSet(t1),
			Target:      policy.NewTypeSet(t2),
			Classes:     policy.NewClassSet(file),
			Permissions: policy.NewPermSet(permNames...),
		})
		return b.Build()
	}
	return build(false), build(true)
}

// ScenarioE builds a range_transition with no AV rule allowing the
// execute permission the transition requires, so the impossible-range-
// transition analysis must flag it.
func ScenarioE() *policy.Policy {
	b := policy.NewBuilder("scenario_e", "1.0")
	file := b.AddClass("file", []policy.Permission{{Name: "read"}, {Name: "execute"}}, "")
	sysadmT := b.AddType("sysadm_t")
	passwdExecT := b.AddType("passwd_exec_t")

	s0 := b.AddSensitivity("s0", 0)
	c0 := b.AddCategory("c0")
	c255 := b.AddCategory("c255")
	for i := 0; i <= 255; i++ {
		if i == 0 {
			b.AllowCategory(s0, c0)
		} else if i == 255 {
			b.AllowCategory(s0, c255)
		}
	}
	b.SetMLS(true)

	low := policy.NewLevel(s0, c0)
	high := policy.NewLevel(s0, c0, c255)
	b.AddRangeTransition(policy.RangeTransition{
		Source:      policy.NewTypeSet(sysadmT),
		Target:      policy.NewTypeSet(passwdExecT),
		Classes:     policy.NewClassSet(file),
		TargetRange: policy.Range{Low: low, High: high},
	})
	// No role bound to sysadm_t, no user, and no "allow sysadm_t
	// passwd_exec_t : file execute;" — all three preconditions missing.
	return b.Build()
}

// ScenarioF declares role r_orphan but never references it in any allow
// rule.
func ScenarioF() *policy.Policy {
	b := policy.NewBuilder("scenario_f", "1.0")
	b.AddRole("r_orphan")
	return b.Build()
}
