package config

import "testing"

func TestSetDefaults(t *testing.T) {
	var c Config
	c.SetDefaults()
	if c.LogLevel != "info" {
		t.Fatalf("expected default log level info, got %q", c.LogLevel)
	}
	if len(c.PolicySearchPaths) == 0 {
		t.Fatal("expected a non-empty default search path list")
	}
	if c.ModuleOptions == nil {
		t.Fatal("expected ModuleOptions to be initialized")
	}
}

func TestValidateRejectsBadLogLevel(t *testing.T) {
	c := Config{LogLevel: "verbose"}
	if err := c.Validate(); err == nil {
		t.Fatal("expected an error for an unrecognized log level")
	}
}

func TestOptionsForReturnsEmptyMapWhenUnconfigured(t *testing.T) {
	c := Config{}
	c.SetDefaults()
	opts := c.OptionsFor("find_domains")
	if opts == nil || len(opts) != 0 {
		t.Fatalf("expected an empty map, got %v", opts)
	}
}

func TestOptionsForReturnsConfiguredValues(t *testing.T) {
	c := Config{
		ModuleOptions: map[string]map[string]string{
			"find_domains": {"domain_attribute": "domain,corestarted"},
		},
	}
	c.SetDefaults()
	opts := c.OptionsFor("find_domains")
	if opts["domain_attribute"] != "domain,corestarted" {
		t.Fatalf("unexpected options: %v", opts)
	}
}
