package policy

// Context is a complete security context: (user, role, type, optional
// MLS range). Non-MLS policies leave HasRange false.
type Context struct {
	User     UserID
	Role     RoleID
	Type     TypeID
	HasRange bool
	Range    Range
}

// InitialSIDName enumerates the fixed initial SID names (spec §3).
type InitialSIDName string

const (
	SIDKernel    InitialSIDName = "kernel"
	SIDSecurity  InitialSIDName = "security"
	SIDUnlabeled InitialSIDName = "unlabeled"
	SIDFile      InitialSIDName = "file"
	SIDPort      InitialSIDName = "port"
	SIDNetif     InitialSIDName = "netif"
	SIDNode      InitialSIDName = "node"
)

// InitialSID binds a fixed enumeration name to a Context.
type InitialSID struct {
	Name    InitialSIDName
	Context Context
}
