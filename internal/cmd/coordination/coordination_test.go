package coordination

import (
	"flag"
	"testing"
)

func TestParseConfigDefaults(t *testing.T) {
	fs := flag.NewFlagSet("coordination", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.HTTPPort != 8080 {
		t.Fatalf("expected default HTTP port 8080, got %d", cfg.HTTPPort)
	}
	if cfg.GRPCPort != 8090 {
		t.Fatalf("expected default gRPC port 8090, got %d", cfg.GRPCPort)
	}
}

func TestParseConfigOverrides(t *testing.T) {
	t.Setenv("DEALDESK_HTTP_PORT", "9080")

	fs := flag.NewFlagSet("coordination", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, []string{"-http-port", "9081"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.HTTPPort != 9081 {
		t.Fatalf("expected HTTP port override 9081, got %d", cfg.HTTPPort)
	}
}
