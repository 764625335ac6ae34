package server

import (
	"flag"
	"reflect"
	"testing"
)

func TestParseConfigDefaults(t *testing.T) {
	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Addr != "localhost:8765" {
		t.Fatalf("expected default addr, got %q", cfg.Addr)
	}
	if cfg.DBPath != "" {
		t.Fatalf("expected empty db path, got %q", cfg.DBPath)
	}
}

func TestParseConfigOverrides(t *testing.T) {
	t.Setenv("SCENEFORGE_ADDR", "env:9000")
	t.Setenv("SCENEFORGE_DB_PATH", "/tmp/audit.db")

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, []string{"-addr", "flag:9001"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Addr != "flag:9001" {
		t.Fatalf("expected flag to override env, got %q", cfg.Addr)
	}
	if cfg.DBPath != "/tmp/audit.db" {
		t.Fatalf("expected env db path, got %q", cfg.DBPath)
	}
}

func TestSplitList(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"", nil},
		{" ", nil},
		{"10.0.0.1", []string{"10.0.0.1"}},
		{"10.0.0.1, 192.168.0.0/16 ,", []string{"10.0.0.1", "192.168.0.0/16"}},
	}
	for _, tt := range tests {
		if got := splitList(tt.input); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("splitList(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}
