package router

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/ManuelReschke/SongPitch/app/controllers"
	"github.com/ManuelReschke/SongPitch/internal/pkg/env"
)

type ApiRouter struct {
	deps *Dependencies
}

func NewApiRouter(deps *Dependencies) *ApiRouter {
	return &ApiRouter{deps: deps}
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	// metadata lookups hit Spotify and YouTube, keep them throttled per client
	api := app.Group("/api", cors.New(), limiter.New(limiter.Config{
		Max:        env.GetEnvInt("API_RATE_LIMIT", 20),
		Expiration: 1 * time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"success": false,
				"message": "too many requests, slow down",
			})
		},
	}))
	api.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "Hello from api",
		})
	})

	submissions := controllers.NewSubmissionController(h.deps.Intake, h.deps.Lookup)

	v1 := api.Group("/v1")
	v1.Post("/song-details", submissions.HandleSongDetails)
}
