package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/fintree/backoffice/internal/core/department"
	"github.com/fintree/backoffice/internal/core/domain"
	"github.com/fintree/backoffice/internal/core/table"
	"github.com/fintree/backoffice/internal/infrastructure/config"
)

func TestWorkspaceConfig(t *testing.T) {
	wcfg, err := workspaceConfig(config.DashboardConfig{
		PageSize:         10,
		DepartmentDelete: "block",
		DepartmentUpdate: "off",
		WorkspaceIdleTTL: 5 * time.Minute,
		ReviewTabs:       []string{"bureau", " approval ", "final"},
	})
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if wcfg.DepartmentDelete != department.DeleteBlock || wcfg.DepartmentUpdate != table.ModeUnsupported {
		t.Fatalf("unexpected department settings %+v", wcfg)
	}
	want := []domain.ReviewTab{domain.TabBureau, domain.TabApproval, domain.TabFinal}
	if len(wcfg.ReviewTabs) != len(want) {
		t.Fatalf("want tabs %v, got %v", want, wcfg.ReviewTabs)
	}
	for i := range want {
		if wcfg.ReviewTabs[i] != want[i] {
			t.Fatalf("want tabs %v, got %v", want, wcfg.ReviewTabs)
		}
	}
	if wcfg.PageSize != 10 || wcfg.IdleTTL != 5*time.Minute {
		t.Fatalf("unexpected sizes %+v", wcfg)
	}
}

func TestWorkspaceConfig_Invalid(t *testing.T) {
	cases := map[string]config.DashboardConfig{
		"delete policy": {DepartmentDelete: "cascade", DepartmentUpdate: "off"},
		"update mode":   {DepartmentDelete: "orphan", DepartmentUpdate: "sometimes"},
		"review tab":    {DepartmentDelete: "orphan", DepartmentUpdate: "off", ReviewTabs: []string{"scoring"}},
	}
	for name, d := range cases {
		if _, err := workspaceConfig(d); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestTenantsCommand_ListsBundledTenants(t *testing.T) {
	t.Setenv("TENANTS_FILE", "")
	tenantsFile = ""

	var out bytes.Buffer
	tenantsCmd.SetOut(&out)
	t.Cleanup(func() { tenantsCmd.SetOut(nil) })

	if err := tenantsCmd.RunE(tenantsCmd, nil); err != nil {
		t.Fatalf("unexpected error %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("want header and 3 tenants, got %q", out.String())
	}
	if !strings.HasPrefix(lines[0], "ID") || !strings.HasPrefix(lines[1], "fintree") || !strings.HasSuffix(lines[1], "yes") {
		t.Fatalf("unexpected listing %q", out.String())
	}
}
