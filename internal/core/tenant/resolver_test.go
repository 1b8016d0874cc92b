package tenant

import (
	"errors"
	"testing"

	"github.com/fintree/backoffice/internal/core/domain"
)

func TestResolver(t *testing.T) {
	r, err := NewResolver([]domain.Tenant{
		{ID: "fintree", Name: "Fintree Finance"},
		{ID: "credwise", Name: "CredWise Lending"},
		{ID: "credwise", Name: "Shadowed"},
	})
	if err != nil {
		t.Fatalf("new resolver: %v", err)
	}

	if got := r.Resolve("credwise"); got.Name != "CredWise Lending" {
		t.Fatalf("first entry for a slug should win, got %q", got.Name)
	}
	if got := r.Resolve(" credwise "); got.ID != "credwise" {
		t.Fatalf("slug should be trimmed, got %q", got.ID)
	}
	if got := r.Resolve("unknown"); got.ID != "fintree" {
		t.Fatalf("unknown slug should fall back to default, got %q", got.ID)
	}
	if r.Known("unknown") || !r.Known("fintree") {
		t.Fatalf("unexpected Known results")
	}
	if r.Default().ID != "fintree" || len(r.All()) != 3 {
		t.Fatalf("unexpected default or list")
	}
}

func TestResolver_RequiresTenants(t *testing.T) {
	if _, err := NewResolver(nil); !errors.Is(err, ErrNoTenants) {
		t.Fatalf("expected ErrNoTenants, got %v", err)
	}
}
