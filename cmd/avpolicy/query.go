package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/avkit/avpolicy/policy"
	"github.com/avkit/avpolicy/query"
)

func newQueryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Run a conjunctive query over a policy's rule tables",
	}
	cmd.AddCommand(newQueryAVCmd())
	cmd.AddCommand(newQueryTECmd())
	return cmd
}

type queryFlags struct {
	policyPath    string
	source        string
	sourceRegex   bool
	sourceIndirect bool
	target        string
	targetRegex   bool
	targetIndirect bool
	sourceAsAny   bool
	onlyEnabled   bool
	classes       []string
}

func bindQueryFlags(cmd *cobra.Command, f *queryFlags) {
	cmd.Flags().StringVarP(&f.policyPath, "policy", "p", "", "Path to a declarative-form policy file (required)")
	cmd.Flags().StringVar(&f.source, "source", "", "Source type/attribute name or pattern")
	cmd.Flags().BoolVar(&f.sourceRegex, "source-regex", false, "Treat --source as a regular expression")
	cmd.Flags().BoolVar(&f.sourceIndirect, "source-indirect", false, "Expand --source through attribute membership")
	cmd.Flags().StringVar(&f.target, "target", "", "Target type/attribute name or pattern")
	cmd.Flags().BoolVar(&f.targetRegex, "target-regex", false, "Treat --target as a regular expression")
	cmd.Flags().BoolVar(&f.targetIndirect, "target-indirect", false, "Expand --target through attribute membership")
	cmd.Flags().BoolVar(&f.sourceAsAny, "source-as-any", false, "Match --source against source or target (spec source-as-any semantics)")
	cmd.Flags().BoolVar(&f.onlyEnabled, "only-enabled", false, "Restrict to rules enabled under the current boolean valuation")
	cmd.Flags().StringSliceVar(&f.classes, "classes", nil, "Restrict to these object classes")
	cmd.MarkFlagRequired("policy")
}

func newQueryAVCmd() *cobra.Command {
	var f queryFlags
	var permissions []string
	var boolName string
	var boolRegex bool
	var kinds []string

	cmd := &cobra.Command{
		Use:   "av",
		Short: "Query the access-vector rule table (allow/neverallow/auditallow/dontaudit)",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setupEnv()
			if err != nil {
				return err
			}
			p, err := loadTextPolicy(f.policyPath)
			if err != nil {
				return err
			}

			q := query.NewAVQuery().
				SetSource(f.source, f.sourceRegex, f.sourceIndirect).
				SetTarget(f.target, f.targetRegex, f.targetIndirect).
				SetSourceAsAny(f.sourceAsAny).
				SetOnlyEnabled(f.onlyEnabled).
				SetClasses(f.classes...).
				SetPermissions(permissions...)
			if boolName != "" {
				q.SetBooleanName(boolName, boolRegex)
			}
			avKinds, err := parseAVKinds(kinds)
			if err != nil {
				return err
			}
			if len(avKinds) > 0 {
				q.SetKinds(avKinds...)
			}

			ids, err := q.Run(p)
			if err != nil {
				return fmt.Errorf("run query: %w", err)
			}
			e.metrics.QueriesTotal.WithLabelValues("av").Inc()
			e.metrics.QueryMatchesTotal.WithLabelValues("av").Observe(float64(len(ids)))

			for _, id := range ids {
				fmt.Println(p.RenderAV(p.AVRule(id)))
			}
			e.logger.Info("av query complete", "matches", len(ids))
			return nil
		},
	}
	bindQueryFlags(cmd, &f)
	cmd.Flags().StringSliceVar(&permissions, "permissions", nil, "Restrict to rules carrying at least one of these permissions")
	cmd.Flags().StringVar(&boolName, "bool-name", "", "Restrict to conditional rules referencing a matching boolean")
	cmd.Flags().BoolVar(&boolRegex, "bool-regex", false, "Treat --bool-name as a regular expression")
	cmd.Flags().StringSliceVar(&kinds, "kinds", nil, "Restrict to these rule kinds: allow, neverallow, auditallow, dontaudit")
	return cmd
}

func newQueryTECmd() *cobra.Command {
	var f queryFlags
	var defaultType string
	var kinds []string

	cmd := &cobra.Command{
		Use:   "te",
		Short: "Query the type-enforcement rule table (type_transition/type_change/type_member)",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setupEnv()
			if err != nil {
				return err
			}
			p, err := loadTextPolicy(f.policyPath)
			if err != nil {
				return err
			}

			q := query.NewTEQuery().
				SetSource(f.source, f.sourceRegex, f.sourceIndirect).
				SetTarget(f.target, f.targetRegex, f.targetIndirect).
				SetSourceAsAny(f.sourceAsAny).
				SetOnlyEnabled(f.onlyEnabled).
				SetClasses(f.classes...).
				SetDefaultType(defaultType)
			teKinds, err := parseTEKinds(kinds)
			if err != nil {
				return err
			}
			if len(teKinds) > 0 {
				q.SetKinds(teKinds...)
			}

			ids, err := q.Run(p)
			if err != nil {
				return fmt.Errorf("run query: %w", err)
			}
			e.metrics.QueriesTotal.WithLabelValues("te").Inc()
			e.metrics.QueryMatchesTotal.WithLabelValues("te").Observe(float64(len(ids)))

			for _, id := range ids {
				fmt.Println(p.RenderTE(p.TERule(id)))
			}
			e.logger.Info("te query complete", "matches", len(ids))
			return nil
		},
	}
	bindQueryFlags(cmd, &f)
	cmd.Flags().StringVar(&defaultType, "default-type", "", "Restrict to rules whose default type matches exactly")
	cmd.Flags().StringSliceVar(&kinds, "kinds", nil, "Restrict to these rule kinds: type_transition, type_change, type_member")
	return cmd
}

func parseAVKinds(names []string) ([]policy.AVKind, error) {
	out := make([]policy.AVKind, 0, len(names))
	for _, n := range names {
		switch strings.ToLower(strings.TrimSpace(n)) {
		case "allow":
			out = append(out, policy.AVAllow)
		case "neverallow":
			out = append(out, policy.AVNeverallow)
		case "auditallow":
			out = append(out, policy.AVAuditallow)
		case "dontaudit":
			out = append(out, policy.AVDontaudit)
		default:
			return nil, fmt.Errorf("unknown av rule kind %q", n)
		}
	}
	return out, nil
}

func parseTEKinds(names []string) ([]policy.TEKind, error) {
	out := make([]policy.TEKind, 0, len(names))
	for _, n := range names {
		switch strings.ToLower(strings.TrimSpace(n)) {
		case "type_transition":
			out = append(out, policy.TETransition)
		case "type_change":
			out = append(out, policy.TEChange)
		case "type_member":
			out = append(out, policy.TEMember)
		default:
			return nil, fmt.Errorf("unknown te rule kind %q", n)
		}
	}
	return out, nil
}
