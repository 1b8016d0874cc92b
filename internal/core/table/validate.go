package table

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/fintree/backoffice/internal/core/domain"
)

// messenger is implemented by drafts that word their own field errors.
// Keys are "<json field>.<validate tag>".
type messenger interface {
	ValidationMessages() map[string]string
}

// Validator checks drafts against their `validate` struct tags and reports
// one message per failing field, keyed by the json field name.
type Validator struct {
	v *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		switch name {
		case "-":
			return ""
		case "":
			return f.Name
		}
		return name
	})
	return &Validator{v: v}
}

// Check returns a *domain.ValidationError when draft is invalid.
func (v *Validator) Check(draft any) error {
	err := v.v.Struct(draft)
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}

	var msgs map[string]string
	if m, ok := draft.(messenger); ok {
		msgs = m.ValidationMessages()
	}

	fields := make(map[string]string, len(ve))
	for _, fe := range ve {
		key := fe.Field()
		if _, seen := fields[key]; seen {
			continue
		}
		if msg, ok := msgs[key+"."+fe.Tag()]; ok {
			fields[key] = msg
			continue
		}
		fields[key] = fieldError(fe)
	}
	return &domain.ValidationError{Fields: fields}
}

// fieldError is the fallback wording for tags a draft does not describe.
func fieldError(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email"
	case "url":
		return field + " must be a valid URL"
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed validation (%s)", field, fe.Tag())
	}
}
