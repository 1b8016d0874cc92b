package handler

import (
	"context"
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/fintree/backoffice/internal/api/middleware"
	"github.com/fintree/backoffice/internal/core/domain"
	"github.com/fintree/backoffice/internal/core/service"
)

const landingPath = "/dashboard/company"

// Sessions is the session lifecycle the login pages drive.
type Sessions interface {
	Login(ctx context.Context, in service.LoginInput) (domain.Session, error)
	Logout(ctx context.Context, id string) error
}

// Tenants resolves a login slug to its branding.
type Tenants interface {
	Resolve(slug string) domain.Tenant
	Known(slug string) bool
	Default() domain.Tenant
}

type AuthHandler struct {
	sessions Sessions
	tenants  Tenants
	cookies  *middleware.Cookies
	log      zerolog.Logger
}

func NewAuthHandler(sessions Sessions, tenants Tenants, cookies *middleware.Cookies, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{sessions: sessions, tenants: tenants, cookies: cookies, log: log}
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Alert    domain.Alert `json:"alert"`
	Redirect string       `json:"redirect"`
}

type brandingResponse struct {
	Tenant domain.Tenant `json:"tenant"`
}

type homeResponse struct {
	CompanyID string        `json:"companyId"`
	Role      string        `json:"role"`
	Tenant    domain.Tenant `json:"tenant"`
}

// Entry sends the visitor to the login page of the tenant they used last,
// or of the default tenant.
//
// @Summary      Login entry
// @Tags         auth
// @Success      302
// @Router       /login [get]
func (h *AuthHandler) Entry(c echo.Context) error {
	code := h.cookies.Theme(c)
	if code == "" {
		code = h.tenants.Default().ID
	}
	return c.Redirect(http.StatusFound, middleware.LoginPath+"/"+url.PathEscape(code))
}

// Branding resolves the tenant slug and remembers it for later visits.
// Unknown slugs get the default tenant.
//
// @Summary      Tenant branding
// @Tags         auth
// @Produce      json
// @Param        tenant  path      string  true  "Tenant slug"
// @Success      200     {object}  brandingResponse
// @Router       /login/{tenant} [get]
func (h *AuthHandler) Branding(c echo.Context) error {
	slug := c.Param("tenant")
	t := h.tenants.Resolve(slug)
	if !h.tenants.Known(slug) {
		h.log.Debug().Str("slug", slug).Str("tenant", t.ID).Msg("unknown tenant, using default")
	}
	h.cookies.SetTheme(c, t.ID)
	return c.JSON(http.StatusOK, brandingResponse{Tenant: t})
}

// Login signs in against the lending API and starts a session.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        tenant  path      string        true  "Tenant slug"
// @Param        body    body      loginRequest  true  "Login credentials"
// @Success      200     {object}  loginResponse
// @Failure      401     {object}  errorDoc
// @Failure      422     {object}  errorDoc
// @Router       /login/{tenant} [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	t := h.tenants.Resolve(c.Param("tenant"))
	sess, err := h.sessions.Login(c.Request().Context(), service.LoginInput{
		Email:     req.Email,
		Password:  req.Password,
		ThemeCode: t.ID,
	})
	if err != nil {
		return err
	}

	if err := h.cookies.IssueSession(c, sess.ID); err != nil {
		return err
	}
	h.cookies.SetTheme(c, t.ID)

	return c.JSON(http.StatusOK, loginResponse{
		Alert:    domain.SuccessAlert("Welcome", "Signed in to "+t.Name),
		Redirect: landingPath,
	})
}

// Logout ends the session and clears its cookie.
//
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Success      200  {object}  loginResponse
// @Router       /logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	if sid, err := h.cookies.SessionID(c); err == nil {
		if err := h.sessions.Logout(c.Request().Context(), sid); err != nil {
			h.log.Warn().Err(err).Str("session_id", sid).Msg("logout left the session behind")
		}
	}
	h.cookies.ClearSession(c)
	return c.JSON(http.StatusOK, loginResponse{
		Alert:    domain.SuccessAlert("Signed out", "You have been signed out."),
		Redirect: middleware.LoginPath,
	})
}

// Home describes the signed-in session for the dashboard shell.
//
// @Summary      Dashboard home
// @Tags         auth
// @Produce      json
// @Success      200  {object}  homeResponse
// @Router       /dashboard [get]
func (h *AuthHandler) Home(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, homeResponse{
		CompanyID: sess.CompanyID,
		Role:      sess.Role,
		Tenant:    h.tenants.Resolve(sess.ThemeCode),
	})
}
