package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "avpolicy",
		Short: "Query, diff, and analyze SELinux-style MAC policies",
		Long: `avpolicy loads a declarative or binary MAC policy and runs conjunctive
queries, semantic diffs, and structural analyses against it.`,
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to a config file (default: search standard locations)")
	rootCmd.PersistentFlags().StringVar(&metricsAddr, "metrics-addr", "", "Address to serve Prometheus metrics on (empty disables)")

	rootCmd.AddCommand(newQueryCmd())
	rootCmd.AddCommand(newDiffCmd())
	rootCmd.AddCommand(newAnalyzeCmd())
	rootCmd.AddCommand(newInfoCmd())
	rootCmd.AddCommand(newVersionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "✗ %v\n", err)
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("avpolicy version 0.1.0")
		},
	}
}
