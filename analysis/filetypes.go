package analysis

import (
	"strings"

	"github.com/avkit/avpolicy/policy"
)

// FileTypesModule finds file types (spec §4.7 "Find file types"):
// symmetric rules over filesystem-related classes and the "associate"
// permission, plus any type the file-context collaborator names.
type FileTypesModule struct {
	fileClasses      []string
	contextTypeNames []string // from the file_contexts external collaborator (spec §6)
}

// NewFileTypesModule returns a module with the default filesystem
// object-class set.
func NewFileTypesModule() *FileTypesModule {
	return &FileTypesModule{
		fileClasses: []string{"file", "dir", "fifo_file", "lnk_file", "sock_file", "chr_file", "blk_file", "filesystem"},
	}
}

func (m *FileTypesModule) Name() string          { return "find_file_types" }
func (m *FileTypesModule) Requirements() []string { return nil }
func (m *FileTypesModule) Dependencies() []string { return nil }

func (m *FileTypesModule) Init(p *policy.Policy, options map[string]string) error {
	if v := options["file_classes"]; v != "" {
		m.fileClasses = strings.Split(v, ",")
	}
	if v := options["file_context_types"]; v != "" {
		m.contextTypeNames = strings.Split(v, ",")
	}
	return nil
}

func (m *FileTypesModule) Run(p *policy.Policy, deps map[string]*Result) (*Result, error) {
	fileClassIDs := make(map[policy.ClassID]struct{}, len(m.fileClasses))
	for _, name := range m.fileClasses {
		if id, ok := p.LookupClass(name); ok {
			fileClassIDs[id] = struct{}{}
		}
	}

	flagged := make(map[policy.TypeID][]Proof)
	flag := func(id policy.TypeID, proof Proof) {
		for _, existing := range flagged[id] {
			if existing.Kind == proof.Kind && existing.Text == proof.Text {
				return
			}
		}
		flagged[id] = append(flagged[id], proof)
	}

	for _, av := range p.AVRules() {
		isFileClass := false
		hasAssociate := av.Permissions.Has("associate")
		for c := range av.Classes {
			if _, ok := fileClassIDs[c]; ok {
				isFileClass = true
				break
			}
		}
		if !isFileClass && !hasAssociate {
			continue
		}
		reason := "source or target of a filesystem-class AV rule"
		if hasAssociate {
			reason = "source or target of an AV rule carrying the associate permission"
		}
		for src := range p.ExpandTypeSet(av.Source, policy.TypeID(-1)) {
			flag(src, Proof{Kind: "av_rule", Severity: SeverityMid, Text: reason})
			for tgt := range p.ExpandTypeSet(av.Target, src) {
				flag(tgt, Proof{Kind: "av_rule", Severity: SeverityMid, Text: reason})
			}
		}
	}

	for _, name := range m.contextTypeNames {
		id, ok := p.LookupType(name)
		if !ok {
			continue
		}
		flag(id, Proof{Kind: "file_context", Severity: SeverityHigh, Text: "named in a file_contexts entry"})
	}

	r := &Result{TestName: "find_file_types", ItemKind: "type"}
	for _, t := range p.ConcreteTypes() {
		if proofs, ok := flagged[t.ID]; ok {
			r.Add(t.Name, proofs...)
		}
	}
	return r, nil
}
