package main

import (
	"encoding/json"
	"net/http"
	"testing"

	"borsch/internal/testsupport"
)

func TestVersionsTable(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithLanguageVersion("0.2.0"))
	env.server.OnVersions(testsupport.JSON(http.StatusOK, `["0.3.0","0.2.0"]`))

	out, _, err := runCLI(t, env, "", "versions")
	if err != nil {
		t.Fatalf("versions: %v", err)
	}
	requireContains(t, out, "Version")
	requireContains(t, out, "0.3.0")
	requireContains(t, out, "0.2.0")
	requireContains(t, out, "Configured")
}

func TestVersionsJSON(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithLanguageVersion("0.2.0"))
	env.server.OnVersions(testsupport.JSON(http.StatusOK, `["0.3.0","0.2.0"]`))

	out, _, err := runCLI(t, env, "", "versions", "--json")
	if err != nil {
		t.Fatalf("versions --json: %v", err)
	}
	var views []versionView
	if err := json.Unmarshal([]byte(out), &views); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if len(views) != 2 {
		t.Fatalf("expected 2 versions, got %d", len(views))
	}
	if !views[0].Latest || views[0].Default {
		t.Fatalf("unexpected first entry %+v", views[0])
	}
	if views[1].Latest || !views[1].Default {
		t.Fatalf("unexpected second entry %+v", views[1])
	}
}

func TestVersionsServerError(t *testing.T) {
	env := setupCLITestEnv(t)
	env.server.OnVersions(testsupport.JSON(http.StatusInternalServerError, `{"message":"versions unavailable"}`))

	_, _, err := runCLI(t, env, "", "versions")
	if err == nil {
		t.Fatal("expected error")
	}
	requireContains(t, err.Error(), "versions unavailable")
}
