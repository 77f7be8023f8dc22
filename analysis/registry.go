package analysis

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/avkit/avpolicy/policy"
)

// Module is the uniform analysis interface (spec §4.7): "register,
// init(policy, options), run(policy)". Dependencies names other
// modules whose Results this one consumes; Requirements names policy
// capabilities (snake_case keys such as "source_form" or
// "attribute_names", resolved by hasCapability) the module needs
// before it can run at all.
type Module interface {
	Name() string
	Requirements() []string
	Dependencies() []string
	Init(p *policy.Policy, options map[string]string) error
	Run(p *policy.Policy, deps map[string]*Result) (*Result, error)
}

// Diagnostic records a module the dispatcher skipped, and why (spec
// §4.7: "unsatisfied requirements cause the module to skip with a
// diagnostic").
type Diagnostic struct {
	Module string
	Reason string
}

// Registry holds every known module, keyed by name.
type Registry struct {
	modules map[string]Module
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{modules: make(map[string]Module)}
}

// Register adds m under m.Name(), replacing any module already
// registered under that name — this is how the sechecker-derived
// aliases (SPEC_FULL §4.7.a: empty_role/empty_attribute) share one
// underlying implementation registered under two names.
func (reg *Registry) Register(m Module) {
	reg.modules[m.Name()] = m
}

// hasCapability reports whether p satisfies a named requirement
// string, per spec §4.7's examples ("policy must be source",
// "attribute names must be available").
func hasCapability(p *policy.Policy, req string) bool {
	switch req {
	case "source_form":
		return p.Caps.SourceForm
	case "attribute_names":
		return p.Caps.AttributeNames
	case "syntactic_rules":
		return p.Caps.SyntacticRules
	case "line_numbers":
		return p.Caps.LineNumbers
	case "conditionals":
		return p.Caps.Conditionals
	case "mls":
		return p.Caps.MLS
	case "policy_capabilities":
		return p.Caps.PolicyCapabilities
	default:
		return true
	}
}

// RunSelected dispatches the named modules in dependency order (spec
// §4.7: "a registry dispatcher runs dependencies before dependents").
// Modules at the same dependency depth run concurrently via errgroup,
// matching the eager-index, read-only-policy concurrency model of
// spec §5. options is keyed by module name.
func (reg *Registry) RunSelected(ctx context.Context, p *policy.Policy, names []string, options map[string]map[string]string) (map[string]*Result, []Diagnostic, error) {
	order, err := reg.topoSort(names)
	if err != nil {
		return nil, nil, err
	}

	results := make(map[string]*Result)
	var diags []Diagnostic

	for _, level := range order {
		g, gctx := errgroup.WithContext(ctx)
		levelResults := make([]*Result, len(level))
		levelSkipped := make([]bool, len(level))

		for i, name := range level {
			i, name := i, name
			m := reg.modules[name]

			var missing string
			for _, req := range m.Requirements() {
				if !hasCapability(p, req) {
					missing = req
					break
				}
			}
			if missing != "" {
				diags = append(diags, Diagnostic{Module: name, Reason: fmt.Sprintf("missing capability %q", missing)})
				levelSkipped[i] = true
				continue
			}

			deps := make(map[string]*Result, len(m.Dependencies()))
			for _, dep := range m.Dependencies() {
				deps[dep] = results[dep]
			}

			g.Go(func() error {
				select {
				case <-gctx.Done():
					return gctx.Err()
				default:
				}
				if err := m.Init(p, options[name]); err != nil {
					return fmt.Errorf("analysis %s: init: %w", name, err)
				}
				r, err := m.Run(p, deps)
				if err != nil {
					return fmt.Errorf("analysis %s: run: %w", name, err)
				}
				levelResults[i] = r
				return nil
			})
		}

		if err := g.Wait(); err != nil {
			return nil, nil, err
		}
		for i, name := range level {
			if !levelSkipped[i] {
				results[name] = levelResults[i]
			}
		}
	}
	return results, diags, nil
}

// topoSort arranges the requested modules (plus their transitive
// dependencies) into levels, each level depending only on modules in
// earlier levels, so RunSelected can fan levels out concurrently and
// still honor "dependencies before dependents".
func (reg *Registry) topoSort(names []string) ([][]string, error) {
	visited := make(map[string]bool)
	var include []string
	var visit func(name string) error
	visit = func(name string) error {
		if visited[name] {
			return nil
		}
		m, ok := reg.modules[name]
		if !ok {
			return policy.NewError(policy.ErrInvalidArgument, "unknown analysis module "+name)
		}
		visited[name] = true
		for _, dep := range m.Dependencies() {
			if err := visit(dep); err != nil {
				return err
			}
		}
		include = append(include, name)
		return nil
	}
	for _, name := range names {
		if err := visit(name); err != nil {
			return nil, err
		}
	}

	depth := make(map[string]int, len(include))
	var depthOf func(name string) int
	depthOf = func(name string) int {
		if d, ok := depth[name]; ok {
			return d
		}
		m := reg.modules[name]
		d := 0
		for _, dep := range m.Dependencies() {
			if dd := depthOf(dep) + 1; dd > d {
				d = dd
			}
		}
		depth[name] = d
		return d
	}
	maxDepth := 0
	for _, name := range include {
		if d := depthOf(name); d > maxDepth {
			maxDepth = d
		}
	}

	levels := make([][]string, maxDepth+1)
	for _, name := range include {
		d := depth[name]
		levels[d] = append(levels[d], name)
	}
	for _, level := range levels {
		sort.Strings(level)
	}
	return levels, nil
}
