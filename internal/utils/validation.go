package utils

import (
	"errors"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report fields by their JSON names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// ProcessValidationErrors turns validator errors into a field -> failed tag
// map.
func ProcessValidationErrors(err error) map[string]string {
	errorResponse := make(map[string]string)

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return errorResponse
	}
	for _, ve := range validationErrors {
		errorResponse[ve.Field()] = ve.Tag()
	}
	return errorResponse
}

// ValidateStruct runs the validate tags of v.
func ValidateStruct(v any) error {
	if err := validate.Struct(v); err != nil {
		return &APIError{
			Status:  fiber.StatusBadRequest,
			Code:    CodeValidation,
			Message: "invalid request",
			Fields:  ProcessValidationErrors(err),
		}
	}
	return nil
}

// BindJSON parses the request body into out and validates it.
func BindJSON(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return NewAPIError(fiber.StatusBadRequest, CodeBadRequest, "invalid request body")
	}
	return ValidateStruct(out)
}

// ParamUint reads a positive integer route parameter.
func ParamUint(c *fiber.Ctx, name string) (uint, error) {
	v, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil || v == 0 {
		return 0, NewAPIError(fiber.StatusBadRequest, CodeBadRequest, "invalid "+name)
	}
	return uint(v), nil
}

// ParsePage reads the page and pageSize query parameters. Absent values
// come back as 0 for the caller to default.
func ParsePage(c *fiber.Ctx) (number, size int, err error) {
	if number, err = queryInt(c, "page"); err != nil {
		return 0, 0, err
	}
	if size, err = queryInt(c, "pageSize"); err != nil {
		return 0, 0, err
	}
	return number, size, nil
}

func queryInt(c *fiber.Ctx, key string) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return 0, &APIError{
			Status:  fiber.StatusBadRequest,
			Code:    CodeValidation,
			Message: "invalid " + key,
			Fields:  map[string]string{key: "min"},
		}
	}
	return v, nil
}
