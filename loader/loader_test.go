package loader

import (
	"bytes"
	"encoding/binary"
	"strings"
	"testing"

	"github.com/avkit/avpolicy/policy"
)

func TestTextLoaderBuildsPolicy(t *testing.T) {
	src := `
type t_a;
type t_b;
attribute a;
typeattribute t_a a;
class file { read write execute };
bool b_net true;
allow a t_b : file { read write };
`
	p, err := NewTextLoader("test.te").Load(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, ok := p.LookupType("t_a"); !ok {
		t.Fatal("expected t_a to be declared")
	}
	if len(p.AVRules()) != 1 {
		t.Fatalf("expected one AV rule, got %d", len(p.AVRules()))
	}
	rule := p.AVRules()[0]
	if rule.Permissions.Sorted()[0] != "read" {
		t.Fatalf("expected read permission, got %+v", rule.Permissions.Sorted())
	}
}

func TestTextLoaderRejectsUnknownType(t *testing.T) {
	src := `allow t_missing t_missing : file read;`
	_, err := NewTextLoader("test.te").Load(strings.NewReader(src))
	if err == nil {
		t.Fatal("expected an error for a rule referencing an undeclared type")
	}
	var perr *ParseError
	if !asParseError(err, &perr) {
		t.Fatalf("expected a *ParseError, got %T: %v", err, err)
	}
	if perr.Line != 1 {
		t.Fatalf("expected line 1, got %d", perr.Line)
	}
}

func asParseError(err error, target **ParseError) bool {
	if pe, ok := err.(*ParseError); ok {
		*target = pe
		return true
	}
	return false
}

func TestTextLoaderMultiLineStatement(t *testing.T) {
	src := "type t1;\ntype t2;\nclass file { read };\nallow t1\n  t2 : file\n  read;\n"
	p, err := NewTextLoader("multi.te").Load(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(p.AVRules()) != 1 {
		t.Fatalf("expected a statement split across lines to still parse as one rule, got %d", len(p.AVRules()))
	}
}

func TestBinaryLoaderSniffsVersion(t *testing.T) {
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, binaryMagic)
	binary.Write(&buf, binary.LittleEndian, uint32(19))

	caps, err := NewBinaryLoader().Sniff(&buf)
	if err != nil {
		t.Fatalf("Sniff: %v", err)
	}
	if caps.PolicyVersion != 19 {
		t.Fatalf("expected version 19, got %d", caps.PolicyVersion)
	}
	if !caps.AttributeNames || !caps.MLS {
		t.Fatalf("expected version 19 to imply attribute names and MLS, got %+v", caps)
	}
	if caps.PolicyCapabilities {
		t.Fatalf("version 19 should not imply policy capabilities, got %+v", caps)
	}
	if caps.SourceForm {
		t.Fatal("binary policies never carry source form")
	}
}

func TestBinaryLoaderRejectsBadMagic(t *testing.T) {
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, uint32(0xdeadbeef))
	binary.Write(&buf, binary.LittleEndian, uint32(19))

	_, err := NewBinaryLoader().Sniff(&buf)
	if !policy.IsKind(err, policy.ErrMalformedPolicy) {
		t.Fatalf("expected ErrMalformedPolicy, got %v", err)
	}
}

func TestBinaryLoaderDetectsModule(t *testing.T) {
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, binaryMagic)
	binary.Write(&buf, binary.LittleEndian, uint32(19))
	buf.WriteString(moduleConfigString)

	caps, err := NewBinaryLoader().Sniff(&buf)
	if err != nil {
		t.Fatalf("Sniff: %v", err)
	}
	if !caps.IsModule {
		t.Fatal("expected the config-string header to mark this as a module image")
	}
}

func TestFileContextLoaderParsesEntries(t *testing.T) {
	src := "# comment\n/etc/passwd --  system_u:object_r:passwd_exec_t:s0\n/var/log(/.*)?  system_u:object_r:var_log_t:s0\n"
	entries, err := NewFileContextLoader().Load(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Path != "/etc/passwd" || entries[0].FileType != FileTypeRegular {
		t.Fatalf("unexpected first entry: %+v", entries[0])
	}
	if entries[1].Path != "/var/log(/.*)?" || entries[1].FileType != FileTypeAny {
		t.Fatalf("unexpected second entry: %+v", entries[1])
	}
}

func TestFileContextLoaderRejectsBadFileType(t *testing.T) {
	_, err := NewFileContextLoader().Load(strings.NewReader("/foo -z system_u:object_r:foo_t:s0\n"))
	if err == nil {
		t.Fatal("expected an error for an unrecognized filetype letter")
	}
}

func TestParseIPAddress(t *testing.T) {
	v4, err := ParseIPAddress("10.0.0.1")
	if err != nil {
		t.Fatalf("ParseIPAddress(v4): %v", err)
	}
	for i := 0; i < 12; i++ {
		if v4[i] != 0 {
			t.Fatalf("expected high bytes zero for an IPv4 address, got %v", v4)
		}
	}
	if v4[12] != 10 || v4[13] != 0 || v4[14] != 0 || v4[15] != 1 {
		t.Fatalf("unexpected low bytes for 10.0.0.1: %v", v4[12:])
	}

	if _, err := ParseIPAddress("not-an-ip"); err == nil {
		t.Fatal("expected an error for a malformed address")
	}
}

func TestProtocolRoundTrip(t *testing.T) {
	proto, ok := ProtocolFromString("tcp")
	if !ok || proto != 6 {
		t.Fatalf("expected tcp=6, got %d, %v", proto, ok)
	}
	name, ok := ProtocolString(proto)
	if !ok || name != "tcp" {
		t.Fatalf("expected round trip back to tcp, got %q, %v", name, ok)
	}
}

func TestFileObjectClassRoundTrip(t *testing.T) {
	for _, name := range []string{"block", "char", "dir", "fifo", "file", "link", "sock", "any"} {
		k, ok := FileObjectClassFromString(name)
		if !ok {
			t.Fatalf("expected %q to parse", name)
		}
		if k.String() != name {
			t.Fatalf("expected round trip for %q, got %q", name, k.String())
		}
	}
}

func TestRuleKindFromString(t *testing.T) {
	k, ok := RuleKindFromString("neverallow")
	if !ok || k != policy.KindAVNeverallow {
		t.Fatalf("expected neverallow to map to KindAVNeverallow, got %v, %v", k, ok)
	}
	if _, ok := RuleKindFromString("bogus"); ok {
		t.Fatal("expected an unknown rule keyword to fail")
	}
}
