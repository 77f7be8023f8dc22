package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/avkit/avpolicy/analysis"
)

func newAnalyzeCmd() *cobra.Command {
	var policyPath string
	var moduleNames []string
	var optionArgs []string
	var listModules bool

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Run structural analysis modules against a policy",
		Long: `analyze loads one policy and runs the selected modules in dependency
order. Its exit code is nonzero iff any module reported items.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := defaultRegistry()
			if listModules {
				for _, name := range analysis.DefaultModuleNames() {
					fmt.Println(name)
				}
				return nil
			}

			e, err := setupEnv()
			if err != nil {
				return err
			}
			p, err := loadTextPolicy(policyPath)
			if err != nil {
				return err
			}

			names := moduleNames
			if len(names) == 0 {
				names = e.cfg.Modules
			}
			if len(names) == 0 {
				names = analysis.DefaultModuleNames()
			}
			options, err := parseModuleOptions(optionArgs, e.cfg.ModuleOptions)
			if err != nil {
				return err
			}

			results, diags, err := reg.RunSelected(context.Background(), p, names, options)
			if err != nil {
				return fmt.Errorf("run analysis: %w", err)
			}

			for _, d := range diags {
				e.metrics.AnalysisSkipsTotal.WithLabelValues(d.Module, d.Reason).Inc()
				e.logger.Warn("module skipped", "module", d.Module, "reason", d.Reason)
			}

			anyItems := false
			for _, name := range names {
				res, ok := results[name]
				if !ok {
					continue
				}
				outcome := "ok"
				e.metrics.AnalysisRunsTotal.WithLabelValues(name, outcome).Inc()
				e.metrics.AnalysisItemsTotal.WithLabelValues(name).Add(float64(len(res.Items)))
				if len(res.Items) == 0 {
					continue
				}
				anyItems = true
				fmt.Printf("%s (%s):\n", res.TestName, res.ItemKind)
				for _, item := range res.Items {
					fmt.Printf("  %s\n", item.Name)
					for _, proof := range item.Proofs {
						fmt.Printf("    [%s/%s] %s\n", proof.Kind, proof.Severity, proof.Text)
					}
				}
			}

			if anyItems {
				os.Exit(1)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&policyPath, "policy", "p", "", "Path to a declarative-form policy file")
	cmd.Flags().StringSliceVar(&moduleNames, "modules", nil, "Modules to run (default: the config file's modules, else every registered module)")
	cmd.Flags().StringArrayVar(&optionArgs, "option", nil, "Per-module option, as module:key=value (repeatable)")
	cmd.Flags().BoolVar(&listModules, "list-modules", false, "List every registered module name and exit")
	return cmd
}

// parseModuleOptions merges config-file options with --option overrides,
// each given as "module:key=value".
func parseModuleOptions(args []string, base map[string]map[string]string) (map[string]map[string]string, error) {
	out := make(map[string]map[string]string, len(base))
	for module, opts := range base {
		m := make(map[string]string, len(opts))
		for k, v := range opts {
			m[k] = v
		}
		out[module] = m
	}
	for _, arg := range args {
		module, rest, ok := strings.Cut(arg, ":")
		if !ok {
			return nil, fmt.Errorf("malformed --option %q: want module:key=value", arg)
		}
		key, value, ok := strings.Cut(rest, "=")
		if !ok {
			return nil, fmt.Errorf("malformed --option %q: want module:key=value", arg)
		}
		if out[module] == nil {
			out[module] = make(map[string]string)
		}
		out[module][key] = value
	}
	return out, nil
}
