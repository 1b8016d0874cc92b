package handler

import (
	"github.com/fintree/backoffice/internal/core/table"
)

// echoValidator lets Echo's c.Validate report the same per-field messages as
// the table dialogs.
type echoValidator struct {
	v *table.Validator
}

// NewValidator returns an echoValidator ready to be assigned to echo.Echo.Validator.
func NewValidator() *echoValidator {
	return &echoValidator{v: table.NewValidator()}
}

// Validate satisfies the echo.Validator interface.
func (ev *echoValidator) Validate(i any) error {
	return ev.v.Check(i)
}
