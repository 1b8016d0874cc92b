package tenants

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_Bundled(t *testing.T) {
	got, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 3 || got[0].ID != "fintree" || got[0].PrimaryColor != "#0f766e" {
		t.Fatalf("unexpected bundled tenants %+v", got)
	}
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tenants.yaml")
	data := []byte(`
- id: acme
  name: Acme Credit
  logo: /assets/acme.png
- name: missing id
`)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 1 || got[0].Name != "Acme Credit" || got[0].Logo != "/assets/acme.png" {
		t.Fatalf("unexpected tenants %+v", got)
	}
}

func TestLoad_Errors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
	if _, err := Parse([]byte("id: [")); err == nil {
		t.Fatalf("expected decode error")
	}
}
