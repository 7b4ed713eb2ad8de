package cmd

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRunUse_ActivatesInstalledVersion(t *testing.T) {
	c := newCLI(t)
	c.publish("16.1.0", "")
	c.publish("18.0.0", "")
	c.install("16.1.0", "18.0.0")

	if err := runUse("^16"); err != nil {
		t.Fatalf("runUse(^16) error = %v", err)
	}
	if v, ok := c.active(); !ok || v != "16.1.0" {
		t.Errorf("active = %q (%v), want 16.1.0", v, ok)
	}

	target, err := os.Readlink(filepath.Join(c.linkDir, "node"))
	if err != nil {
		t.Fatalf("node not linked: %v", err)
	}
	if want := filepath.Join(c.versionDir("16.1.0"), "bin", "node"); target != want {
		t.Errorf("node link = %q, want %q", target, want)
	}

	if err := runUse("18.0.0"); err != nil {
		t.Fatalf("runUse(18.0.0) error = %v", err)
	}
	if v, _ := c.active(); v != "18.0.0" {
		t.Errorf("active = %q, want 18.0.0", v)
	}
	target, _ = os.Readlink(filepath.Join(c.linkDir, "node"))
	if want := filepath.Join(c.versionDir("18.0.0"), "bin", "node"); target != want {
		t.Errorf("node link = %q after switching, want %q", target, want)
	}
}

func TestRunUse_AlreadyActive(t *testing.T) {
	c := newCLI(t)
	c.publish("18.0.0", "")
	c.install("18.0.0")

	for i := 0; i < 2; i++ {
		if err := runUse("18.0.0"); err != nil {
			t.Fatalf("runUse() pass %d error = %v", i, err)
		}
	}
	if v, ok := c.active(); !ok || v != "18.0.0" {
		t.Errorf("active = %q (%v), want 18.0.0", v, ok)
	}
}

func TestRunUse_Errors(t *testing.T) {
	c := newCLI(t)

	if err := runUse("18.0.0"); err == nil {
		t.Error("expected error when nothing is installed")
	}

	c.publish("16.0.0", "")
	c.install("16.0.0")

	tests := []struct {
		name string
		spec string
	}{
		{"exact not installed", "18.0.0"},
		{"range not installed", "^20"},
		{"malformed", "not-a-version"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := runUse(tt.spec); err == nil {
				t.Errorf("runUse(%q) expected error", tt.spec)
			}
			if _, ok := c.active(); ok {
				t.Error("a failed use must not activate anything")
			}
		})
	}
}
