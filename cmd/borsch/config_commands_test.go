package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"borsch/internal/config"
)

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, env, "", "config", "validate")
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")
	requireContains(t, out, env.server.BaseURL())

	target := filepath.Join(t.TempDir(), "config.toml")
	out, _, err = runCLI(t, env, "", "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, _, err := runCLI(t, env, "", "config", "init", "--path", target); err == nil {
		t.Fatal("expected init to refuse overwriting")
	}
	if _, _, err := runCLI(t, env, "", "config", "init", "--path", target, "--overwrite"); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}
}

func TestConfigShowReflectsFlags(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, env, "", "config", "show", "--api-url", "https://play.example.com/api/v1/", "--log-level", "DEBUG")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	var shown config.Config
	if err := toml.Unmarshal([]byte(out), &shown); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if shown.API.BaseURL != "https://play.example.com/api/v1" {
		t.Fatalf("expected flag base url without trailing slash, got %q", shown.API.BaseURL)
	}
	if shown.Logging.Level != "debug" {
		t.Fatalf("expected debug level, got %q", shown.Logging.Level)
	}
}

func TestInvalidAPIURLFlagFails(t *testing.T) {
	env := setupCLITestEnv(t)

	if _, _, err := runCLI(t, env, "", "config", "show", "--api-url", "ftp://example.com"); err == nil {
		t.Fatal("expected invalid api url to fail validation")
	}
}
