package controllers

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/ManuelReschke/SongPitch/internal/pkg/apperrors"
	"github.com/ManuelReschke/SongPitch/internal/pkg/constants"
	"github.com/ManuelReschke/SongPitch/internal/pkg/logger"
	"github.com/ManuelReschke/SongPitch/internal/pkg/payment"
)

const (
	requestTimeout = 15 * time.Second

	// payment failures send the visitor back to the form
	paymentErrorRedirect = constants.SubmitRoute
)

// parseID reads a positive numeric route or form value.
func parseID(raw, field string) (uint, error) {
	id, err := strconv.ParseUint(strings.TrimSpace(raw), 10, strconv.IntSize)
	if err != nil || id == 0 {
		return 0, apperrors.Invalid(field, "must be a positive integer")
	}
	return uint(id), nil
}

// errorStatus maps service errors onto HTTP status codes.
func errorStatus(err error) int {
	var verr *apperrors.ValidationError
	switch {
	case errors.As(err, &verr),
		errors.Is(err, payment.ErrMalformedReference),
		errors.Is(err, payment.ErrMissingVerificationParams):
		return fiber.StatusBadRequest
	case errors.Is(err, apperrors.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, payment.ErrVerificationRejected):
		return fiber.StatusPaymentRequired
	case errors.Is(err, payment.ErrVerificationNetwork):
		return fiber.StatusBadGateway
	case errors.Is(err, payment.ErrNoActivePackage):
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

// errorMessage hides internal details of unexpected errors.
func errorMessage(err error) string {
	for _, sentinel := range []error{
		payment.ErrMalformedReference,
		payment.ErrMissingVerificationParams,
		payment.ErrVerificationRejected,
		payment.ErrVerificationNetwork,
		payment.ErrNoActivePackage,
		payment.ErrInitiationFailed,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	if errorStatus(err) == fiber.StatusInternalServerError {
		return "An unexpected error occurred. Please try again."
	}
	return err.Error()
}

func errorBody(c *fiber.Ctx, err error) (int, fiber.Map) {
	status := errorStatus(err)
	if status >= fiber.StatusInternalServerError {
		logger.FromContext(c.UserContext()).Error("request_failed", zap.String("path", c.Path()), zap.Error(err))
	}

	body := fiber.Map{
		"success": false,
		"message": errorMessage(err),
	}
	var verr *apperrors.ValidationError
	if errors.As(err, &verr) {
		body["errors"] = verr.Fields
	}
	return status, body
}

// respondError writes the JSON error envelope.
func respondError(c *fiber.Ctx, err error) error {
	status, body := errorBody(c, err)
	return c.Status(status).JSON(body)
}

// respondPaymentError writes the error envelope used by the payment flow.
func respondPaymentError(c *fiber.Ctx, err error) error {
	status, body := errorBody(c, err)
	body["redirect_url"] = paymentErrorRedirect
	return c.Status(status).JSON(body)
}

func csrfToken(c *fiber.Ctx) string {
	token, _ := c.Locals("csrf").(string)
	return token
}

// isChecked interprets an HTML checkbox value.
func isChecked(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "on", "true", "1", "yes":
		return true
	}
	return false
}
