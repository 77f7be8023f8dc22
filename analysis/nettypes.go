package analysis

import (
	"strings"

	"github.com/avkit/avpolicy/policy"
)

// NetTypesModule finds network types (spec §4.7 "Find net/node/port
// types"): a type named in a portcon/nodecon/netifcon entry, or the
// source of an AV rule on a network-related class.
type NetTypesModule struct {
	netClasses []string
	entryTypes []string // from the portcon/nodecon/netifcon external collaborator
}

// NewNetTypesModule returns a module with the default network
// object-class set.
func NewNetTypesModule() *NetTypesModule {
	return &NetTypesModule{
		netClasses: []string{"netif", "tcp_socket", "udp_socket", "node", "association"},
	}
}

func (m *NetTypesModule) Name() string          { return "find_net_types" }
func (m *NetTypesModule) Requirements() []string { return nil }
func (m *NetTypesModule) Dependencies() []string { return nil }

func (m *NetTypesModule) Init(p *policy.Policy, options map[string]string) error {
	if v := options["net_classes"]; v != "" {
		m.netClasses = strings.Split(v, ",")
	}
	if v := options["net_context_types"]; v != "" {
		m.entryTypes = strings.Split(v, ",")
	}
	return nil
}

func (m *NetTypesModule) Run(p *policy.Policy, deps map[string]*Result) (*Result, error) {
	netClassIDs := make(map[policy.ClassID]struct{}, len(m.netClasses))
	for _, name := range m.netClasses {
		if id, ok := p.LookupClass(name); ok {
			netClassIDs[id] = struct{}{}
		}
	}

	flagged := make(map[policy.TypeID][]Proof)
	flag := func(id policy.TypeID, proof Proof) {
		flagged[id] = append(flagged[id], proof)
	}

	for _, av := range p.AVRules() {
		inNetClass := false
		for c := range av.Classes {
			if _, ok := netClassIDs[c]; ok {
				inNetClass = true
				break
			}
		}
		if !inNetClass {
			continue
		}
		for src := range p.ExpandTypeSet(av.Source, policy.TypeID(-1)) {
			flag(src, Proof{Kind: "av_rule", Severity: SeverityMid, Text: "source of an AV rule on a network class"})
		}
	}

	for _, name := range m.entryTypes {
		id, ok := p.LookupType(name)
		if !ok {
			continue
		}
		flag(id, Proof{Kind: "context_entry", Severity: SeverityHigh, Text: "named in a portcon/nodecon/netifcon entry"})
	}

	r := &Result{TestName: "find_net_types", ItemKind: "type"}
	for _, t := range p.ConcreteTypes() {
		if proofs, ok := flagged[t.ID]; ok {
			r.Add(t.Name, proofs...)
		}
	}
	return r, nil
}
