package demo

import (
	"github.com/gofiber/fiber/v2"
)

type Handler struct {
	runner *Runner
}

func NewHandler(r *Runner) *Handler {
	return &Handler{runner: r}
}

func (h *Handler) RegisterPublicRoutes(app *fiber.App) {
	app.Get("/run_python", h.runPython)
}

func (h *Handler) runPython(c *fiber.Ctx) error {
	out, err := h.runner.Run(c.UserContext())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(out)
}
