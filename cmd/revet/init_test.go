package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func runInitCmd(t *testing.T, args ...string) error {
	t.Helper()
	cmd := initCmd()
	cmd.SetArgs(args)
	return cmd.Execute()
}

func TestInitCreatesConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "revet.yaml")

	if err := runInitCmd(t, "--config", path); err != nil {
		t.Fatalf("init returned error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("config file not written: %v", err)
	}
	content := string(data)
	if !strings.Contains(content, "min_severity") {
		t.Error("generated config should document min_severity")
	}
	if !strings.Contains(content, "fail_on") {
		t.Error("generated config should document fail_on")
	}
}

func TestInitMinimal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "revet.yaml")

	if err := runInitCmd(t, "--config", path, "--minimal"); err != nil {
		t.Fatalf("init --minimal returned error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("config file not written: %v", err)
	}
	full := runInitFull(t)
	if len(data) >= len(full) {
		t.Error("minimal template should be smaller than the full one")
	}
}

func runInitFull(t *testing.T) []byte {
	t.Helper()
	path := filepath.Join(t.TempDir(), "revet.yaml")
	if err := runInitCmd(t, "--config", path); err != nil {
		t.Fatalf("init returned error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("config file not written: %v", err)
	}
	return data
}

func TestInitRefusesToOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "revet.yaml")
	if err := os.WriteFile(path, []byte("existing\n"), 0644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	err := runInitCmd(t, "--config", path)
	if err == nil {
		t.Fatal("expected error for existing file")
	}
	if !strings.Contains(err.Error(), "already exists") {
		t.Errorf("unexpected error: %v", err)
	}

	// --force overwrites
	if err := runInitCmd(t, "--config", path, "--force"); err != nil {
		t.Fatalf("init --force returned error: %v", err)
	}
	data, _ := os.ReadFile(path)
	if string(data) == "existing\n" {
		t.Error("--force should have replaced the file")
	}
}

func TestInitMissingParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "no-such-dir", "revet.yaml")
	err := runInitCmd(t, "--config", path)
	if err == nil {
		t.Fatal("expected error for missing parent directory")
	}
	if !strings.Contains(err.Error(), "directory does not exist") {
		t.Errorf("unexpected error: %v", err)
	}
}
