package handler

import (
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/rgpv-tpo/placement-api/internal/middleware"
	"github.com/rgpv-tpo/placement-api/internal/service"
	"github.com/rgpv-tpo/placement-api/internal/utils"
)

func parseQueryInt(c *fiber.Ctx, key string) (int, error) {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return 0, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	return parsed, nil
}

func parseQueryFloat(c *fiber.Ctx, key string) (*float64, error) {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return nil, nil
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

func parseUintParam(c *fiber.Ctx, key string) (uint, error) {
	value := strings.TrimSpace(c.Params(key))
	parsed, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(parsed), nil
}

func userIDFromContext(c *fiber.Ctx) uint {
	if v := c.Locals("user_id"); v != nil {
		if id, ok := v.(uint); ok {
			return id
		}
		if id, ok := v.(int); ok {
			if id < 0 {
				return 0
			}
			return uint(id)
		}
	}
	return 0
}

func requestLogger(base zerolog.Logger, c *fiber.Ctx) *zerolog.Logger {
	logger := base
	if c != nil {
		if correlation := middleware.GetCorrelationID(c); correlation != "" {
			logger = base.With().Str("correlation_id", correlation).Logger()
		}
	}
	return &logger
}

func isValidationError(err error) bool {
	var validationErrors validator.ValidationErrors
	return errors.As(err, &validationErrors)
}

// validationDetails flattens validator errors into field-level messages so
// the frontend can highlight individual form inputs.
func validationDetails(err error) map[string]string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return nil
	}
	details := make(map[string]string, len(validationErrors))
	for _, fieldError := range validationErrors {
		details[strings.ToLower(fieldError.Field())] = fieldError.Tag()
	}
	return details
}

// sendWorkflowError maps the CAF workflow error taxonomy to HTTP statuses.
// The CAF and notification handlers share the same resolution paths, so the
// mapping lives here rather than in each handler.
func sendWorkflowError(c *fiber.Ctx, logger *zerolog.Logger, err error, action string) error {
	var invalidTransition *service.InvalidTransitionError
	var notEditable *service.FieldNotEditableError
	var badValue *service.EditValueError

	switch {
	case errors.Is(err, service.ErrCafNotFound), errors.Is(err, service.ErrStudentNotFound):
		return utils.SendError(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrCafConflict):
		return utils.SendError(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, service.ErrEnrollmentMismatch):
		return utils.SendError(c, fiber.StatusUnprocessableEntity, err.Error())
	case errors.As(err, &invalidTransition):
		return utils.SendError(c, fiber.StatusConflict, invalidTransition.Error())
	case errors.As(err, &notEditable):
		return utils.SendErrorDetails(c, fiber.StatusUnprocessableEntity, "fields are not editable", map[string]interface{}{"fields": notEditable.Fields})
	case errors.As(err, &badValue):
		return utils.SendErrorDetails(c, fiber.StatusUnprocessableEntity, badValue.Error(), map[string]string{badValue.Field: badValue.Reason})
	case isValidationError(err):
		return utils.SendErrorDetails(c, fiber.StatusUnprocessableEntity, "validation failed", validationDetails(err))
	default:
		logger.Error().Err(err).Msgf("failed to %s", action)
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to "+action)
	}
}
