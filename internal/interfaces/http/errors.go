package http

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/Howzley/EEIRS-14-SP2025/internal/application/dto"
	"github.com/Howzley/EEIRS-14-SP2025/internal/domain"
)

// Static messages shown for failures whose cause is never disclosed.
const (
	msgLoginFailed  = "Failed to log in. Please check your email and password."
	msgSignUpFailed = "Failed to sign up. Please try again."
	msgStoreFailed  = "Something went wrong. Please try again."
)

// writeError maps a use case error to the HTTP error body.
func writeError(c *fiber.Ctx, err error) error {
	status, body := errorResponse(err)
	return c.Status(status).JSON(body)
}

func errorResponse(err error) (int, dto.ErrorResponse) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return fiber.StatusBadRequest, dto.ErrorResponse{Code: "VALIDATION", Message: validationMessage(err)}
	case errors.Is(err, domain.ErrUnauthorized):
		return fiber.StatusUnauthorized, dto.ErrorResponse{Code: "UNAUTHORIZED", Message: msgLoginFailed}
	case errors.Is(err, domain.ErrForbidden):
		return fiber.StatusForbidden, dto.ErrorResponse{Code: "ACCESS_DENIED", Message: "Your account has no access to expense records."}
	case errors.Is(err, domain.ErrEmailAlreadyExists):
		return fiber.StatusConflict, dto.ErrorResponse{Code: "EMAIL_EXISTS", Message: "email already registered"}
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound, dto.ErrorResponse{Code: "NOT_FOUND", Message: "record not found"}
	case errors.Is(err, domain.ErrScanFailed):
		return fiber.StatusBadGateway, dto.ErrorResponse{Code: "SCAN_FAILED", Message: "The receipt could not be scanned. Enter the expense manually."}
	default:
		return fiber.StatusInternalServerError, dto.ErrorResponse{Code: "INTERNAL", Message: msgStoreFailed}
	}
}

func validationMessage(err error) string {
	return strings.TrimPrefix(err.Error(), domain.ErrInvalidInput.Error()+": ")
}
