package server

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/psrec/psrec/internal/config"
	"github.com/psrec/psrec/internal/demo"
	"github.com/psrec/psrec/internal/logger"
	"github.com/psrec/psrec/internal/recommended"
	"github.com/psrec/psrec/internal/tag"
	"github.com/psrec/psrec/internal/user"
	"github.com/psrec/psrec/internal/web"
	"go.uber.org/zap"
)

// Deps are the services the HTTP layer is built from.
type Deps struct {
	Config          *config.Config
	Log             *zap.Logger
	Users           *user.Service
	Tags            *tag.Service
	Recommendations *recommended.Service
	Demo            *demo.Runner
}

// New builds the fiber app. Public routes come first, then the JWT guard,
// then the routes that need a session.
func New(d Deps) *fiber.App {
	cfg := d.Config
	app := fiber.New(fiber.Config{
		AppName:               "psrec",
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: "GET,POST,HEAD,PUT,DELETE,PATCH",
		AllowHeaders: "Origin, Content-Type, Accept",
	}))
	app.Use(logger.Middleware(d.Log))

	tokens := user.NewTokens(cfg.JWTSecret, cfg.CookieName)
	app.Use(tokens.Optional())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "trained": d.Recommendations.Ready()})
	})

	userHandler := user.NewHandler(d.Users, tokens)
	recommendedHandler := recommended.NewHandler(d.Recommendations)

	userHandler.RegisterPublicRoutes(app)
	tag.NewHandler(d.Tags).RegisterPublicRoutes(app)
	recommendedHandler.RegisterPublicRoutes(app)
	demo.NewHandler(d.Demo).RegisterPublicRoutes(app)

	pages := web.Options{BaseURL: cfg.APIBaseURL}
	if cfg.APIBaseURL == "" {
		pages.Transport = web.NewAppTransport(app)
	}
	web.NewHandler(d.Log, pages).RegisterPublicRoutes(app)

	app.Use(tokens.Required())

	userHandler.RegisterProtectedRoutes(app)
	recommendedHandler.RegisterProtectedRoutes(app)

	return app
}
