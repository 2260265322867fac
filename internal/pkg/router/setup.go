package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/SongPitch/internal/pkg/catalog"
	"github.com/ManuelReschke/SongPitch/internal/pkg/intake"
	"github.com/ManuelReschke/SongPitch/internal/pkg/jobqueue"
	"github.com/ManuelReschke/SongPitch/internal/pkg/middleware"
	"github.com/ManuelReschke/SongPitch/internal/pkg/moderation"
	"github.com/ManuelReschke/SongPitch/internal/pkg/payment"
	"github.com/ManuelReschke/SongPitch/internal/pkg/statistics"
)

type Router interface {
	InstallRouter(app *fiber.App)
}

// Dependencies are the services the routes are wired to.
type Dependencies struct {
	Intake     *intake.Service
	Lookup     intake.Lookup
	Payments   *payment.Service
	Moderation *moderation.Service
	Catalog    *catalog.Service
	Statistics *statistics.Service
	Queue      *jobqueue.Queue
	Staff      middleware.StaffConfig
}

func InstallRouter(app *fiber.App, deps *Dependencies) {
	setup(app, NewHttpRouter(deps), NewApiRouter(deps))
}

func setup(app *fiber.App, router ...Router) {
	for _, r := range router {
		r.InstallRouter(app)
	}
}
