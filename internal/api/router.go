package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	_ "github.com/fintree/backoffice/docs"
	"github.com/fintree/backoffice/internal/api/handler"
	"github.com/fintree/backoffice/internal/api/middleware"
	"github.com/fintree/backoffice/internal/core/domain"
	"github.com/fintree/backoffice/internal/core/service"
	"github.com/fintree/backoffice/internal/core/tenant"
)

// Table bases of the dashboard.
const (
	CompanyBase    = "/company"
	DepartmentBase = "/department&role/department"
	RoleBase       = "/department&role/roles"
	UserBase       = "/department&role/users"
	PageBase       = "/pages"
	ReviewBase     = "/applicationid"
)

// Deps are the services the HTTP surface is built on.
type Deps struct {
	Sessions   *service.SessionService
	Workspaces *service.WorkspaceService
	Tenants    *tenant.Resolver
	Cookies    *middleware.Cookies
	Probes     map[string]handler.Probe
	Log        zerolog.Logger

	// Permissions defaults to middleware.RolePermissions.
	Permissions      map[string][]string
	EnforceAllowlist bool
	Tracing          bool

	// Registry defaults to the global Prometheus registry.
	Registry *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log, d.Sessions, d.Cookies)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	if d.Tracing {
		e.Use(echo.WrapMiddleware(otelhttp.NewMiddleware("backoffice")))
	}
	promCfg := echoprometheus.MiddlewareConfig{Namespace: "backoffice", Subsystem: "http"}
	promHandler := echoprometheus.NewHandler()
	if d.Registry != nil {
		promCfg.Registerer = d.Registry
		promHandler = echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: d.Registry})
	}
	e.Use(echoprometheus.NewMiddlewareWithConfig(promCfg))
	e.Use(middleware.RequestLogger(d.Log))

	// --- Ops ---
	health := handler.NewHealthHandler(d.Probes)
	e.GET("/health", health.Liveness)
	e.GET("/health/ready", health.Readiness)
	e.GET("/metrics", promHandler)
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Login ---
	auth := handler.NewAuthHandler(d.Sessions, d.Tenants, d.Cookies, d.Log)
	e.GET(middleware.LoginPath, auth.Entry)
	e.GET(middleware.LoginPath+"/:tenant", auth.Branding)
	e.POST(middleware.LoginPath+"/:tenant", auth.Login)
	e.POST("/logout", auth.Logout)

	// --- Dashboard (session required) ---
	perms := d.Permissions
	if perms == nil {
		perms = middleware.RolePermissions
	}
	dash := e.Group("/dashboard",
		middleware.SessionGuard(d.Cookies, d.Sessions),
		middleware.Allowlist(perms, d.EnforceAllowlist),
	)
	dash.GET("", auth.Home)

	handler.NewTableHandler("company", d.Workspaces, func(w *service.Workspace) handler.Table[domain.CompanyDraft] {
		return w.Companies
	}).Register(dash, CompanyBase)
	handler.NewDepartmentHandler(d.Workspaces).Register(dash, DepartmentBase)
	handler.NewTableHandler("role", d.Workspaces, func(w *service.Workspace) handler.Table[domain.RoleDraft] {
		return w.Roles
	}).Register(dash, RoleBase)
	handler.NewUserHandler(d.Workspaces).Register(dash, UserBase)
	handler.NewTableHandler("page", d.Workspaces, func(w *service.Workspace) handler.Table[domain.PageDraft] {
		return w.Pages
	}).Register(dash, PageBase)
	handler.NewReviewHandler(d.Workspaces).Register(dash, ReviewBase)

	return e
}
