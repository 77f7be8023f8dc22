package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/avkit/avpolicy/loader"
	"github.com/avkit/avpolicy/policy"
)

func newInfoCmd() *cobra.Command {
	var policyPath string
	var binary bool

	cmd := &cobra.Command{
		Use:   "info",
		Short: "Report the capabilities a policy file was built with",
		Long: `info detects what a policy file can express without fully loading it:
for binary form it sniffs the header, for declarative form it parses
the file and reports the capabilities the parse discovered.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(policyPath)
			if err != nil {
				return fmt.Errorf("open %s: %w", policyPath, err)
			}
			defer f.Close()

			var caps policy.Capabilities
			if binary {
				caps, err = loader.NewBinaryLoader().Sniff(f)
				if err != nil {
					return fmt.Errorf("sniff %s: %w", policyPath, err)
				}
			} else {
				p, err := loader.NewTextLoader(policyPath).Load(f)
				if err != nil {
					return fmt.Errorf("load %s: %w", policyPath, err)
				}
				caps = p.Caps
			}

			printCapabilities(caps)
			return nil
		},
	}

	cmd.Flags().StringVarP(&policyPath, "policy", "p", "", "Path to the policy file (required)")
	cmd.Flags().BoolVar(&binary, "binary", false, "Treat the file as binary-form policy and only sniff its header")
	cmd.MarkFlagRequired("policy")
	return cmd
}

func printCapabilities(c policy.Capabilities) {
	fmt.Printf("policy_version: %d\n", c.PolicyVersion)
	fmt.Printf("is_module: %t\n", c.IsModule)
	fmt.Printf("attribute_names: %t\n", c.AttributeNames)
	fmt.Printf("syntactic_rules: %t\n", c.SyntacticRules)
	fmt.Printf("line_numbers: %t\n", c.LineNumbers)
	fmt.Printf("conditionals: %t\n", c.Conditionals)
	fmt.Printf("mls: %t\n", c.MLS)
	fmt.Printf("policy_capabilities: %t\n", c.PolicyCapabilities)
	fmt.Printf("source_form: %t\n", c.SourceForm)
}
