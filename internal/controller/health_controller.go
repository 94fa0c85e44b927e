package controller

import (
	"omni-backend/internal/dto"
	"omni-backend/internal/pkg/serverutils"

	"github.com/gofiber/fiber/v2"
)

const (
	AppTitle   = "OmniAI Backend"
	AppVersion = "0.1.0"
)

type IHealthController interface {
	RegisterRoutes(r fiber.Router)
	Health(ctx *fiber.Ctx) error
	Info(ctx *fiber.Ctx) error
}

type healthController struct {
	env   string
	debug bool
}

func NewHealthController(env string, debug bool) IHealthController {
	return &healthController{env: env, debug: debug}
}

func (c *healthController) RegisterRoutes(r fiber.Router) {
	r.Get("/", c.Info)
	r.Get("/health", c.Health)
}

// Health never touches the model or the vector store.
func (c *healthController) Health(ctx *fiber.Ctx) error {
	return ctx.JSON(dto.HealthResponse{
		Status: "ok",
		Env:    c.env,
		Debug:  c.debug,
	})
}

func (c *healthController) Info(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse(AppTitle, fiber.Map{
		"name":    AppTitle,
		"version": AppVersion,
	}))
}
