package restapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	"github.com/tidwall/gjson"

	"github.com/fintree/backoffice/internal/core/domain"
)

const loginPath = "/auth/login"

// The login response shape is not fixed; these paths are tried in order.
var (
	tokenPaths   = []string{"access_token", "accessToken", "token", "data.access_token", "data.token"}
	companyPaths = []string{"company_id", "companyId", "data.company_id", "user.company_id", "data.user.company_id"}
	rolePaths    = []string{"role", "data.role", "user.role", "data.user.role"}
)

type loginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Authenticator implements ports.Authenticator against POST /auth/login.
type Authenticator struct {
	client *Client
}

func NewAuthenticator(c *Client) *Authenticator {
	return &Authenticator{client: c}
}

func (a *Authenticator) Login(ctx context.Context, email, password string) (domain.Credentials, error) {
	raw, err := a.client.send(ctx, http.MethodPost, loginPath, loginPath, "", loginPayload{Email: email, Password: password}, nil)
	if err != nil {
		var re *domain.RequestError
		switch {
		case errors.Is(err, domain.ErrUnauthorized):
			return domain.Credentials{}, domain.ErrInvalidCredentials
		case errors.As(err, &re) && (re.Status == http.StatusBadRequest || re.Status == http.StatusForbidden || re.Status == http.StatusNotFound):
			return domain.Credentials{}, domain.ErrInvalidCredentials
		}
		return domain.Credentials{}, &domain.OperationError{Action: "sign in", Err: err}
	}

	doc := gjson.ParseBytes(raw)
	creds := domain.Credentials{
		AccessToken: first(doc, tokenPaths),
		CompanyID:   first(doc, companyPaths),
		Role:        first(doc, rolePaths),
	}
	if creds.AccessToken == "" {
		return domain.Credentials{}, &domain.OperationError{Action: "sign in", Err: domain.ErrNoAccessToken}
	}
	if creds.Role == "" {
		creds.Role = claim(creds.AccessToken, "role")
	}
	if creds.CompanyID == "" {
		creds.CompanyID = claim(creds.AccessToken, "company_id")
	}
	return creds, nil
}

func first(doc gjson.Result, paths []string) string {
	for _, p := range paths {
		if v := doc.Get(p); v.Exists() && v.String() != "" {
			return v.String()
		}
	}
	return ""
}

// claim reads a claim from the API token without verifying it; the token is
// the API's to verify, the dashboard only needs the role for its route list.
func claim(token, name string) string {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return ""
	}
	switch v := claims[name].(type) {
	case string:
		return v
	case float64:
		return fmt.Sprintf("%.0f", v)
	default:
		return ""
	}
}
