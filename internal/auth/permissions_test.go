package auth

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadPermissions(t *testing.T) {
	content := `roles:
  ADMIN:
    - patient:create
    - patient:view
    - invoice:void
  RECEPTION:
    - patient:create
    - appointment:book
  NURSE:
    - mar:record
`
	path := filepath.Join(t.TempDir(), "permissions.yml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write permissions file: %v", err)
	}

	perms, err := LoadPermissions(path)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(perms["ADMIN"]) != 3 {
		t.Errorf("Expected 3 ADMIN permissions, got %d", len(perms["ADMIN"]))
	}
	if perms["NURSE"][0] != "mar:record" {
		t.Errorf("Expected 'mar:record', got '%s'", perms["NURSE"][0])
	}
}

func TestLoadPermissions_MissingFile(t *testing.T) {
	if _, err := LoadPermissions("/nonexistent/permissions.yml"); err == nil {
		t.Error("Expected error for missing file, got nil")
	}
}

func TestHasPermission(t *testing.T) {
	perms := Permissions{
		"PHARMACIST": {"prescription:dispense", "medication:view"},
		"RECEPTION":  {"appointment:book"},
	}

	pr := &Principal{UserID: "u1", Roles: []string{"PHARMACIST"}}
	if !HasPermission(pr, "prescription:dispense", perms) {
		t.Error("Expected pharmacist to have prescription:dispense")
	}
	if HasPermission(pr, "appointment:book", perms) {
		t.Error("Did not expect pharmacist to have appointment:book")
	}
}

func TestHasPermission_CaseInsensitiveRole(t *testing.T) {
	perms := Permissions{
		"NURSE": {"mar:record"},
	}

	// Keycloak realm roles are often lowercase
	pr := &Principal{UserID: "u1", Roles: []string{"nurse"}}
	if !HasPermission(pr, "mar:record", perms) {
		t.Error("Expected lowercase role to match uppercase permissions entry")
	}
}

func TestHasPermission_NoRoles(t *testing.T) {
	perms := Permissions{"ADMIN": {"patient:create"}}
	pr := &Principal{UserID: "u1"}
	if HasPermission(pr, "patient:create", perms) {
		t.Error("Expected no permission for principal without roles")
	}
}
