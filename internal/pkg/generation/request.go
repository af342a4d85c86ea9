package generation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Request is the body of POST /api/generate-tests plus the authenticated
// caller.
type Request struct {
	UserID    string `json:"-" validate:"notblank"`
	Code      string `json:"code" validate:"notblank"`
	Framework string `json:"framework" validate:"notblank,max=50"`
	Model     string `json:"model" validate:"notblank,max=100"`
}

func (r Request) normalized() Request {
	r.UserID = strings.TrimSpace(r.UserID)
	r.Framework = strings.ToLower(strings.TrimSpace(r.Framework))
	r.Model = strings.TrimSpace(r.Model)
	return r
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return "user"
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

func validateRequest(req Request) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "notblank":
			msgs = append(msgs, fe.Field()+" is required")
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param()))
		default:
			msgs = append(msgs, fe.Field()+" is invalid")
		}
	}
	return fmt.Errorf("%w: %s", ErrInvalidRequest, strings.Join(msgs, ", "))
}
