package controller

import (
	"errors"

	"omni-backend/internal/dto"
	"omni-backend/internal/pkg/serverutils"
	"omni-backend/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	Chat(ctx *fiber.Ctx) error
}

type chatController struct {
	service service.IChatService
}

func NewChatController(service service.IChatService) IChatController {
	return &chatController{service: service}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	r.Post("/chat", c.Chat)
}

func (c *chatController) Chat(ctx *fiber.Ctx) error {
	var req dto.ChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusUnprocessableEntity, "Invalid request body: "+err.Error())
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Chat(ctx.UserContext(), &req)
	if errors.Is(err, service.ErrEmptyMessage) {
		return fiber.NewError(fiber.StatusBadRequest, "Message must not be empty.")
	}
	if err != nil {
		return err
	}

	return ctx.JSON(res)
}
