package inventory

import (
	"errors"

	"github.com/Farm-Orbit/farmorb-web-sub000/internal/config"
	"github.com/Farm-Orbit/farmorb-web-sub000/internal/ledger"
	"github.com/Farm-Orbit/farmorb-web-sub000/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

const moduleName = "inventory"

// LedgerError maps ledger errors onto HTTP errors. Unknown errors are
// logged and passed through, which the error handler reports as 500.
func LedgerError(logger *logrus.Logger, funcName string, err error) error {
	var (
		insufficient *ledger.InsufficientStockError
		invalid      *ledger.ValidationError
		notFound     *ledger.NotFoundError
		conflict     *ledger.ConflictError
	)
	switch {
	case errors.As(err, &insufficient):
		return &utils.APIError{
			Status:  fiber.StatusUnprocessableEntity,
			Code:    utils.CodeInsufficientStock,
			Message: "insufficient stock",
			Details: fiber.Map{
				"available": insufficient.Available,
				"unit":      insufficient.Unit,
			},
		}
	case errors.As(err, &invalid):
		apiErr := &utils.APIError{
			Status:  fiber.StatusBadRequest,
			Code:    utils.CodeValidation,
			Message: invalid.Error(),
		}
		if invalid.Field != "" {
			apiErr.Fields = map[string]string{invalid.Field: invalid.Message}
		}
		return apiErr
	case errors.As(err, &notFound):
		return utils.NewAPIError(fiber.StatusNotFound, utils.CodeNotFound, notFound.Error())
	case errors.As(err, &conflict):
		return utils.NewAPIError(fiber.StatusConflict, utils.CodeConflict, conflict.Error())
	}

	var apiErr *utils.APIError
	var fe *fiber.Error
	if errors.As(err, &apiErr) || errors.As(err, &fe) {
		return err
	}
	config.LogError(logger, moduleName, funcName, "ledger call failed", nil, err)
	return err
}
