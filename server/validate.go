package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// requestValidator adapts validator to echo.Validator
type requestValidator struct {
	v *validator.Validate
}

func newValidator() *requestValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	// notblank rejects strings that are empty after trimming
	if err := v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	}); err != nil {
		panic(fmt.Sprintf("register notblank validation: %v", err))
	}
	return &requestValidator{v: v}
}

func (rv *requestValidator) Validate(i interface{}) error {
	return rv.v.Struct(i)
}

type msgResponse struct {
	Msg string `json:"msg"`
}

func msg(m string) msgResponse {
	return msgResponse{Msg: m}
}

func badRequest(c echo.Context, m string) error {
	return c.JSON(http.StatusBadRequest, msg(m))
}

// bindAndValidate decodes the body into req and validates it. Validation
// failures are answered with the message mapped to the first failing field.
func bindAndValidate(c echo.Context, req interface{}, messages map[string]string) (bool, error) {
	if err := c.Bind(req); err != nil {
		return false, badRequest(c, "Invalid request body")
	}

	err := c.Validate(req)
	if err == nil {
		return true, nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		if m, ok := messages[verrs[0].StructField()]; ok {
			return false, badRequest(c, m)
		}
	}
	return false, badRequest(c, "Invalid request body")
}
