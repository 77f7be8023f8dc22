// Package config loads the analysis registry's per-module options and
// default search paths (spec §6 "Analysis CLI / report"), replacing the
// original's global parser/search-path state (spec §9) with one
// explicit value the CLI reads before calling
// analysis.Registry.RunSelected.
package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Config is the top-level configuration for the avpolicy CLI.
type Config struct {
	// PolicySearchPaths lists directories for locating a policy file by
	// bare name. SetDefaults fills it in; the CLI does not search it and
	// opens the --policy argument as the path given.
	PolicySearchPaths []string `mapstructure:"policy_search_paths"`

	// FileContextsPath optionally names a file_contexts database (the
	// external collaborator of spec §6). No package reads it:
	// analysis/filetypes.go and analysis/nettypes.go take their context
	// type names from the file_context_types and net_context_types
	// module options instead.
	FileContextsPath string `mapstructure:"file_contexts_path"`

	// LogLevel sets the minimum slog level. Valid values: "debug",
	// "info", "warn", "error". Defaults to "info".
	LogLevel string `mapstructure:"log_level" validate:"omitempty,oneof=debug info warn error"`

	// Modules lists which analysis modules a bare `avpolicy analyze`
	// invocation runs when the caller passes no --modules flag.
	Modules []string `mapstructure:"modules"`

	// ModuleOptions carries each module's name=value option set
	// (spec §4.7's `init(policy, options)`), keyed by module name.
	ModuleOptions map[string]map[string]string `mapstructure:"module_options"`
}

// SetDefaults fills in the values the CLI needs to run with no config
// file present at all.
func (c *Config) SetDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.PolicySearchPaths == nil {
		c.PolicySearchPaths = []string{".", "/etc/selinux"}
	}
	if c.ModuleOptions == nil {
		c.ModuleOptions = make(map[string]map[string]string)
	}
}

// Validate runs struct-tag validation over c.
func (c *Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

// OptionsFor returns the name=value options configured for module,
// or an empty (non-nil) map when none were configured.
func (c *Config) OptionsFor(module string) map[string]string {
	if opts, ok := c.ModuleOptions[module]; ok {
		return opts
	}
	return map[string]string{}
}
