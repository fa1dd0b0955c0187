package recommended

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/psrec/psrec/internal/recommender"
	"github.com/psrec/psrec/internal/user"
)

type Handler struct {
	service *Service
}

type tagRequest struct {
	Tag string `json:"tag" form:"tag"`
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterPublicRoutes(app *fiber.App) {
	app.Get("/getRecommendation", h.getRecommendation)
	app.Post("/getRecommendationByTag", h.getRecommendationByTag)
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Get("/getUserStats", h.getUserStats)
	app.Post("/admin/retrain", h.retrain)
}

func (h *Handler) getRecommendation(c *fiber.Ctx) error {
	handle, _ := user.HandleFromCtx(c)
	items, err := h.service.ForHandle(c.UserContext(), handle)
	if err != nil {
		return recommendError(c, err)
	}
	return c.JSON(fiber.Map{"items": items})
}

func (h *Handler) getRecommendationByTag(c *fiber.Ctx) error {
	payload := new(tagRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	handle, _ := user.HandleFromCtx(c)
	items, err := h.service.ForHandleByTag(c.UserContext(), handle, payload.Tag)
	if err != nil {
		return recommendError(c, err)
	}
	return c.JSON(fiber.Map{"items": items})
}

func (h *Handler) getUserStats(c *fiber.Ctx) error {
	handle, ok := user.HandleFromCtx(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	stats, ok := h.service.Stats(handle)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "no solve data for " + handle})
	}
	return c.JSON(stats)
}

func (h *Handler) retrain(c *fiber.Ctx) error {
	users, solves, err := h.service.Retrain(c.UserContext())
	if err != nil {
		if errors.Is(err, recommender.ErrNoData) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(fiber.Map{"users": users, "solves": solves})
}

func recommendError(c *fiber.Ctx, err error) error {
	if errors.Is(err, recommender.ErrNotTrained) {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"message": err.Error()})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
}
