package loader

import (
	"encoding/binary"
	"io"

	"github.com/avkit/avpolicy/policy"
)

// binaryMagic is the four-byte magic every binary policy image begins
// with (spec §6). Only the magic and the policyvers integer that
// follows it are decoded here; the remainder of the binary body is
// explicitly out of scope (SPEC_FULL §6: "explicitly refuses to
// further decode the binary body").
const binaryMagic uint32 = 0xf97cff8c

// moduleConfigString marks a loadable-module image rather than a base/kernel
// policy image; both share the same leading magic, distinguished by a
// config-string header the base image lacks.
const moduleConfigString = "SE Linux Module"

// BinaryLoader sniffs a binary policy's header and reports its
// capabilities without attempting to decode rules (spec §6).
type BinaryLoader struct{}

// NewBinaryLoader returns a loader that only reads the binary header.
func NewBinaryLoader() *BinaryLoader { return &BinaryLoader{} }

// Sniff reads the leading magic and policy version from r. It returns
// policy.ErrMalformedPolicy if the stream does not begin with the
// binary magic — per spec §6, "the binary reader must detect the
// magic and refuse files that are not binary policies".
func (l *BinaryLoader) Sniff(r io.Reader) (policy.Capabilities, error) {
	var header [8]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return policy.Capabilities{}, policy.WrapError(policy.ErrMalformedPolicy, "reading binary header", err)
	}
	magic := binary.LittleEndian.Uint32(header[0:4])
	if magic != binaryMagic {
		return policy.Capabilities{}, policy.NewError(policy.ErrMalformedPolicy, "not a binary policy image: bad magic")
	}
	version := int(binary.LittleEndian.Uint32(header[4:8]))

	caps := policy.Capabilities{
		SourceForm:    false,
		LineNumbers:   false,
		PolicyVersion: version,
	}
	// Versions >= 16 carry conditional policy support in the kernel
	// format; versions >= 19 carry Boolean-based syntactic rule
	// retention. Treated here as capability hints only, consistent
	// with the capability query's job (report, not enforce).
	caps.Conditionals = version >= 16
	caps.SyntacticRules = version >= 19
	caps.AttributeNames = version >= 19
	caps.MLS = version >= 19
	caps.PolicyCapabilities = version >= 22

	rest := make([]byte, len(moduleConfigString))
	n, _ := io.ReadFull(r, rest)
	caps.IsModule = n == len(rest) && string(rest[:n]) == moduleConfigString
	return caps, nil
}
