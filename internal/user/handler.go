package user

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

const invalidLoginHTML = "<h1>Invalid email or password</h1>"

type Handler struct {
	service *Service
	tokens  *Tokens
}

type loginRequest struct {
	ID       string `json:"id" form:"id"`
	Password string `json:"password" form:"password"`
	Next     string `json:"next" form:"next"`
}

type registerRequest struct {
	ID       string `json:"id" form:"id"`
	Password string `json:"password" form:"password"`
	Handle   string `json:"handle" form:"handle"`
}

type handleRequest struct {
	Handle string `json:"handle" form:"handle"`
}

func NewHandler(service *Service, tokens *Tokens) *Handler {
	return &Handler{service: service, tokens: tokens}
}

func (h *Handler) RegisterPublicRoutes(app *fiber.App) {
	app.Get("/getLogin", h.getLogin)
	app.Post("/login", h.login)
	app.Post("/register", h.register)
	app.Get("/logout", h.logout)
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Get("/api/profile", h.getProfile)
	app.Put("/api/profile/handle", h.updateHandle)
}

func (h *Handler) getLogin(c *fiber.Ctx) error {
	handle, ok := HandleFromCtx(c)
	return c.JSON(fiber.Map{"items": []any{ok, handle}})
}

func (h *Handler) login(c *fiber.Ctx) error {
	payload := new(loginRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	user, err := h.service.Authenticate(payload.ID, payload.Password)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).Type("html").SendString(invalidLoginHTML)
	}

	if err := h.setSession(c, user); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "failed to generate token"})
	}

	return c.Redirect(SafeNext(payload.Next), fiber.StatusFound)
}

func (h *Handler) register(c *fiber.Ctx) error {
	payload := new(registerRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	if payload.ID == "" || payload.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Missing required fields"})
	}

	created, err := h.service.Register(User{
		ID:       strings.TrimSpace(payload.ID),
		Password: payload.Password,
		Handle:   strings.TrimSpace(payload.Handle),
	})
	if err != nil {
		if errors.Is(err, ErrIDExists) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": "ID already exists"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}

	return c.Status(fiber.StatusCreated).JSON(sanitizeUser(created))
}

func (h *Handler) logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     h.tokens.CookieName(),
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return c.Redirect("/", fiber.StatusFound)
}

func (h *Handler) getProfile(c *fiber.Ctx) error {
	userID, err := GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	user, err := h.service.GetByID(userID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "user not found"})
	}

	return c.JSON(sanitizeUser(user))
}

// updateHandle changes the solved.ac handle and reissues the session so
// the new handle applies to the next request.
func (h *Handler) updateHandle(c *fiber.Ctx) error {
	userID, err := GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	payload := new(handleRequest)
	if err := c.BodyParser(payload); err != nil || strings.TrimSpace(payload.Handle) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "handle is required"})
	}

	updated, err := h.service.UpdateHandle(userID, strings.TrimSpace(payload.Handle))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "user not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}

	if err := h.setSession(c, updated); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "failed to generate token"})
	}
	return c.JSON(sanitizeUser(updated))
}

func (h *Handler) setSession(c *fiber.Ctx, user User) error {
	signed, expires, err := h.tokens.Issue(user)
	if err != nil {
		return err
	}
	c.Cookie(&fiber.Cookie{
		Name:     h.tokens.CookieName(),
		Value:    signed,
		Path:     "/",
		Expires:  expires,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return nil
}

// SafeNext keeps redirects on this site: only absolute local paths are
// honoured, anything else falls back to the index page.
func SafeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	return next
}

func sanitizeUser(user User) User {
	user.Password = ""
	return user
}
