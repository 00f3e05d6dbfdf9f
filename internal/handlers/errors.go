package handlers

import (
	"errors"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/billsplit/internal/apperrors"
	"github.com/ahmetcoskunkizilkaya/billsplit/internal/dto"
	"github.com/ahmetcoskunkizilkaya/billsplit/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/billsplit/internal/validation"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/gofiber/fiber/v2"
)

// ErrorHandler renders every error as the failure envelope. Server errors are
// logged with their cause and reported to Sentry; client errors expose only
// their message.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var verr *validation.Error
	if errors.As(err, &verr) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Failure(fiber.StatusBadRequest, verr.Messages()...))
	}

	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(dto.Failure(fe.Code, fe.Message))
	}

	var appErr *apperrors.Error
	if !errors.As(err, &appErr) {
		appErr = apperrors.System("", err)
	}
	status := appErr.Kind.Status()

	attrs := []any{
		"request_id", c.GetRespHeader(fiber.HeaderXRequestID),
		"method", c.Method(),
		"path", c.Path(),
		"kind", appErr.Kind.String(),
		"status", status,
	}
	if user := middleware.GetCurrentUser(c); user != nil {
		attrs = append(attrs, "user_id", user.UserID)
	}
	if bn := c.Params("bill_number"); bn != "" {
		attrs = append(attrs, "bill_number", bn)
	}
	if appErr.Err != nil {
		attrs = append(attrs, "error", appErr.Err.Error())
	}

	switch {
	case status >= fiber.StatusInternalServerError:
		slog.Error("request failed", attrs...)
		if hub := sentryfiber.GetHubFromContext(c); hub != nil {
			hub.CaptureException(err)
		}
	case appErr.Err != nil:
		slog.Warn("request rejected", attrs...)
	}

	return c.Status(status).JSON(dto.Failure(status, appErr.Message))
}

func ok(c *fiber.Ctx, data interface{}) error {
	return c.JSON(dto.Success(data))
}

func parseBody(c *fiber.Ctx, out interface{}) error {
	if err := c.BodyParser(out); err != nil {
		return apperrors.New(apperrors.KindBadRequest, "Invalid request body", err)
	}
	return validation.Struct(out)
}

func parseQuery(c *fiber.Ctx, out interface{}) error {
	if err := c.QueryParser(out); err != nil {
		return apperrors.New(apperrors.KindBadRequest, "Invalid query parameters", err)
	}
	return validation.Struct(out)
}
