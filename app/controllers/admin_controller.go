package controllers

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/sujit-baniya/flash"

	"github.com/ManuelReschke/SongPitch/internal/pkg/statistics"
)

// ============================================================================
// ADMIN DASHBOARD CONTROLLER
// ============================================================================

// AdminController serves the staff dashboard and analytics figures
type AdminController struct {
	stats *statistics.Service
}

// NewAdminController creates a new admin dashboard controller
func NewAdminController(stats *statistics.Service) *AdminController {
	return &AdminController{stats: stats}
}

// HandleAdminDashboard returns counts, revenue and the latest submissions
func (ac *AdminController) HandleAdminDashboard(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), requestTimeout)
	defer cancel()

	dash, err := ac.stats.Dashboard(ctx)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"success":   true,
		"dashboard": dash,
		"flash":     flash.Get(c),
		"csrf":      csrfToken(c),
	})
}

// HandleAdminAnalytics returns the 30 day charts and the approval rates
func (ac *AdminController) HandleAdminAnalytics(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), requestTimeout)
	defer cancel()

	analytics, err := ac.stats.Analytics(ctx)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"success":   true,
		"analytics": analytics,
	})
}
