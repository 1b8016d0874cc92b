package middleware

import (
	"fmt"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/fintree/backoffice/internal/core/domain"
)

const dashboardRoot = "/dashboard"

// RolePermissions lists the dashboard paths each role may open. "*" opens
// everything.
var RolePermissions = map[string][]string{
	"admin":          {"*"},
	"fi":             {"/dashboard", "/dashboard/field_investigation", "/dashboard/audit", "/dashboard/department&role/department"},
	"credit":         {"/dashboard", "/dashboard/credit", "/dashboard/audit"},
	"verification":   {"/dashboard", "/dashboard/applicationid", "/dashboard/audit"},
	"risk_ssessment": {"/dashboard", "/dashboard/riskassessment", "/dashboard/audit"},
}

// Allowed reports whether role may open path. An entry also opens every path
// nested under it, except the bare dashboard root.
func Allowed(perms map[string][]string, role, path string) bool {
	for _, entry := range perms[role] {
		switch {
		case entry == "*":
			return true
		case path == entry:
			return true
		case entry != dashboardRoot && strings.HasPrefix(path, entry+"/"):
			return true
		}
	}
	return false
}

// Allowlist rejects requests whose path is not opened for the session's
// role. It must run after SessionGuard. With enforce false it only passes
// requests through.
func Allowlist(perms map[string][]string, enforce bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !enforce {
				return next(c)
			}
			role, _ := c.Get(ctxRole).(string)
			path := c.Request().URL.Path
			if !Allowed(perms, role, path) {
				return fmt.Errorf("role %q on %s: %w", role, path, domain.ErrForbidden)
			}
			return next(c)
		}
	}
}
