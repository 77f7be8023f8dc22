package loader

import (
	"net"

	"github.com/avkit/avpolicy/policy"
)

// IPAddress is a fixed-length 128-bit value; an IPv4 address occupies
// the low 32 bits, high bits zero (spec §6).
type IPAddress [16]byte

// ParseIPAddress parses a textual IPv4 or IPv6 address into the
// fixed-length 128-bit form.
func ParseIPAddress(s string) (IPAddress, error) {
	ip := net.ParseIP(s)
	if ip == nil {
		return IPAddress{}, policy.NewError(policy.ErrInvalidArgument, "not a valid IP address: "+s)
	}
	var out IPAddress
	if v4 := ip.To4(); v4 != nil {
		copy(out[12:], v4)
		return out, nil
	}
	copy(out[:], ip.To16())
	return out, nil
}

// ProtocolFromString maps tcp/udp to their IANA protocol numbers (spec
// §6).
func ProtocolFromString(s string) (int, bool) {
	switch s {
	case "tcp":
		return 6, true
	case "udp":
		return 17, true
	}
	return 0, false
}

// ProtocolString is the inverse of ProtocolFromString.
func ProtocolString(proto int) (string, bool) {
	switch proto {
	case 6:
		return "tcp", true
	case 17:
		return "udp", true
	}
	return "", false
}

// FileObjectClass is the fixed file-type enumeration object classes
// round-trip to and from (spec §6: "{block, char, dir, fifo, file,
// link, sock, any}").
type FileObjectClass int

const (
	FileObjectBlock FileObjectClass = iota
	FileObjectChar
	FileObjectDir
	FileObjectFIFO
	FileObjectFile
	FileObjectLink
	FileObjectSock
	FileObjectAny
)

func (k FileObjectClass) String() string {
	switch k {
	case FileObjectBlock:
		return "block"
	case FileObjectChar:
		return "char"
	case FileObjectDir:
		return "dir"
	case FileObjectFIFO:
		return "fifo"
	case FileObjectFile:
		return "file"
	case FileObjectLink:
		return "link"
	case FileObjectSock:
		return "sock"
	case FileObjectAny:
		return "any"
	default:
		return "unknown"
	}
}

// FileObjectClassFromString is the inverse of FileObjectClass.String().
func FileObjectClassFromString(s string) (FileObjectClass, bool) {
	switch s {
	case "block":
		return FileObjectBlock, true
	case "char":
		return FileObjectChar, true
	case "dir":
		return FileObjectDir, true
	case "fifo":
		return FileObjectFIFO, true
	case "file":
		return FileObjectFile, true
	case "link":
		return FileObjectLink, true
	case "sock":
		return FileObjectSock, true
	case "any":
		return FileObjectAny, true
	}
	return 0, false
}

// ruleKindStrings lists every rule-kind spelling spec §6 requires to
// round-trip, independent of which rule table (AV or TE) it belongs
// to.
var ruleKindStrings = map[string]policy.Kind{
	"allow":           policy.KindAVAllow,
	"neverallow":      policy.KindAVNeverallow,
	"auditallow":      policy.KindAVAuditallow,
	"dontaudit":       policy.KindAVDontaudit,
	"type_transition": policy.KindTETransition,
	"type_change":     policy.KindTEChange,
	"type_member":     policy.KindTEMember,
}

// RuleKindFromString is the inverse of policy.Kind.String() restricted
// to the seven rule-kind spellings spec §6 names.
func RuleKindFromString(s string) (policy.Kind, bool) {
	k, ok := ruleKindStrings[s]
	return k, ok
}
