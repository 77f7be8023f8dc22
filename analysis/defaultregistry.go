package analysis

// DefaultRegistry builds the registry the CLI runs against: every
// module in this package, plus the sechecker-derived aliases that
// register the same check under its original module's second name
// (SPEC_FULL §4.7.a): `empty_attribute` runs attribs_wo_types,
// `roles_not_in_allow` runs roles_wo_allow, `empty_role` runs
// roles_wo_types, and `types_not_in_allow` runs types_wo_allow.
func DefaultRegistry() *Registry {
	reg := NewRegistry()

	reg.Register(NewDomainsModule())
	reg.Register(NewFileTypesModule())
	reg.Register(NewNetTypesModule())
	reg.Register(NewAssocTypesModule())
	reg.Register(NewImpossibleRangeTransitionModule())
	reg.Register(NewConstraintInspectionModule())

	reg.Register(NewAttribsWoTypesModule("attribs_wo_types"))
	reg.Register(NewAttribsWoTypesModule("empty_attribute"))
	reg.Register(NewAttribsWoRulesModule("attribs_wo_rules"))
	reg.Register(NewRolesWoAllowModule("roles_wo_allow"))
	reg.Register(NewRolesWoAllowModule("roles_not_in_allow"))
	reg.Register(NewRolesWoTypesModule("roles_wo_types"))
	reg.Register(NewRolesWoTypesModule("empty_role"))
	reg.Register(NewRolesWoUsersModule())
	reg.Register(NewTypesWoAllowModule("types_wo_allow"))
	reg.Register(NewTypesWoAllowModule("types_not_in_allow"))
	reg.Register(NewUsersWoRolesModule())

	return reg
}

// DefaultModuleNames lists every module name DefaultRegistry registers,
// in registration order, for a CLI `--list-modules` mode.
func DefaultModuleNames() []string {
	return []string{
		"find_domains", "find_file_types", "find_net_types",
		"find_association_types", "impossible_range_transition",
		"constraint_inspection",
		"attribs_wo_types", "empty_attribute", "attribs_wo_rules",
		"roles_wo_allow", "roles_not_in_allow", "roles_wo_types",
		"empty_role", "roles_wo_users", "types_wo_allow",
		"types_not_in_allow", "users_wo_roles",
	}
}
