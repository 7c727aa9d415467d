package utils

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

const (
	CodeBadRequest          = "bad_request"
	CodeValidation          = "validation_error"
	CodeInsufficientStock   = "insufficient_stock"
	CodeIdempotencyMismatch = "idempotency_key_mismatch"
	CodeUnauthorized        = "unauthorized"
	CodeForbidden           = "forbidden"
	CodeNotFound            = "not_found"
	CodeConflict            = "conflict"
	CodeInternal            = "internal_error"
)

// APIError is rendered by ErrorHandler as
// {"error": Message, "code": Code, "fields": Fields, ...Details}.
type APIError struct {
	Status  int
	Code    string
	Message string
	Fields  map[string]string
	Details fiber.Map
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d %s: %s", e.Status, e.Code, e.Message)
}

func NewAPIError(status int, code, message string) *APIError {
	return &APIError{Status: status, Code: code, Message: message}
}

func codeForStatus(status int) string {
	switch status {
	case fiber.StatusBadRequest:
		return CodeBadRequest
	case fiber.StatusUnauthorized:
		return CodeUnauthorized
	case fiber.StatusForbidden:
		return CodeForbidden
	case fiber.StatusNotFound:
		return CodeNotFound
	case fiber.StatusConflict:
		return CodeConflict
	case fiber.StatusUnprocessableEntity:
		return CodeValidation
	}
	if status >= 500 {
		return CodeInternal
	}
	return CodeBadRequest
}

// ErrorHandler renders handler errors as JSON. Anything that is neither an
// *APIError nor a *fiber.Error is logged and reported as a 500.
func ErrorHandler(logger *logrus.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			body := fiber.Map{"error": apiErr.Message, "code": apiErr.Code}
			if len(apiErr.Fields) > 0 {
				body["fields"] = apiErr.Fields
			}
			for k, v := range apiErr.Details {
				body[k] = v
			}
			return c.Status(apiErr.Status).JSON(body)
		}

		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(fiber.Map{
				"error": fe.Message,
				"code":  codeForStatus(fe.Code),
			})
		}

		logger.WithFields(logrus.Fields{
			"method": c.Method(),
			"path":   c.Path(),
		}).WithError(err).Error("unexpected error")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "unexpected server error",
			"code":  CodeInternal,
		})
	}
}
