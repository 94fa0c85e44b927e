package serverutils

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

const InternalErrorPrefix = "Internal error in OmniAI pipeline: "

// ErrorHandlerMiddleware turns handler errors into {"detail": ...} responses.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}
		return WriteError(ctx, err)
	}
}

// FiberErrorHandler is installed as fiber.Config.ErrorHandler for errors raised outside the middleware chain.
func FiberErrorHandler(ctx *fiber.Ctx, err error) error {
	return WriteError(ctx, err)
}

func WriteError(ctx *fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return ctx.Status(fiberErr.Code).JSON(ErrorDetail{Detail: fiberErr.Message})
	}

	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return ctx.Status(fiber.StatusBadRequest).JSON(ErrorDetail{Detail: validationErr.Error()})
	}

	return ctx.Status(fiber.StatusInternalServerError).JSON(ErrorDetail{Detail: InternalErrorPrefix + err.Error()})
}
