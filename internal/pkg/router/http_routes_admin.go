package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/SongPitch/app/controllers"
	"github.com/ManuelReschke/SongPitch/internal/pkg/middleware"
)

func (h HttpRouter) registerAdminRoutes(app *fiber.App, csrfProtection fiber.Handler) {
	dashboard := controllers.NewAdminController(h.deps.Statistics)
	songs := controllers.NewAdminSongsController(h.deps.Moderation)
	payments := controllers.NewAdminPaymentsController(h.deps.Payments)
	packages := controllers.NewAdminPackagesController(h.deps.Catalog)

	var queueStats controllers.QueueStats
	if h.deps.Queue != nil {
		queueStats = h.deps.Queue
	}
	queue := controllers.NewAdminQueueController(queueStats)

	adminGroup := app.Group("/admin", middleware.RequireStaff(h.deps.Staff), csrfProtection)
	adminGroup.Get("/", dashboard.HandleAdminDashboard)
	adminGroup.Get("/analytics", dashboard.HandleAdminAnalytics)

	// Song review
	adminGroup.Get("/songs", songs.HandleAdminSongs)
	adminGroup.Get("/songs/:id", songs.HandleAdminSongDetail)
	adminGroup.Post("/songs/:id", songs.HandleAdminSongUpdate)
	adminGroup.Post("/songs/:id/approve", songs.HandleAdminSongApprove)
	adminGroup.Post("/songs/:id/reject", songs.HandleAdminSongReject)

	// Payment ledger
	adminGroup.Get("/payments", payments.HandleAdminPayments)
	adminGroup.Get("/payments/:id", payments.HandleAdminPaymentDetail)

	// Package catalog
	adminGroup.Get("/packages", packages.HandleAdminPackages)
	adminGroup.Post("/packages", packages.HandleAdminPackageStore)
	adminGroup.Post("/packages/:id/edit", packages.HandleAdminPackageUpdate)
	adminGroup.Post("/packages/:id/delete", packages.HandleAdminPackageDelete)

	// Notification queue
	adminGroup.Get("/queue", queue.HandleAdminQueue)
}
