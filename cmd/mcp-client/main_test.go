package main

import (
	"os/exec"
	"testing"
)

func TestBinaryBuilds(t *testing.T) {
	cmd := exec.Command("go", "build", "-o", "/dev/null", ".")
	cmd.Dir = "."
	if err := cmd.Run(); err != nil {
		t.Fatalf("Binary failed to build: %v", err)
	}
}

func TestResolveServerID(t *testing.T) {
	if id, err := resolveServerID("explicit", []string{"a", "b"}); err != nil || id != "explicit" {
		t.Fatalf("resolveServerID(explicit) = (%q, %v)", id, err)
	}
	if id, err := resolveServerID("", []string{"only"}); err != nil || id != "only" {
		t.Fatalf("resolveServerID(sole) = (%q, %v)", id, err)
	}
	if _, err := resolveServerID("", []string{"a", "b"}); err == nil {
		t.Fatal("resolveServerID() with multiple servers and no --server, want error")
	}
}
