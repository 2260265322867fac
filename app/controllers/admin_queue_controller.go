package controllers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/SongPitch/internal/pkg/jobqueue"
)

// ============================================================================
// ADMIN QUEUE CONTROLLER
// ============================================================================

// QueueStats reports the notification queue counters
type QueueStats interface {
	GetStats(ctx context.Context) (*jobqueue.Stats, error)
}

// AdminQueueController shows the state of the notification queue
type AdminQueueController struct {
	queue QueueStats
}

// NewAdminQueueController creates a new admin queue controller. queue may be nil
// when notifications are disabled.
func NewAdminQueueController(queue QueueStats) *AdminQueueController {
	return &AdminQueueController{queue: queue}
}

// HandleAdminQueue returns pending and processing counts plus the status totals
func (aqc *AdminQueueController) HandleAdminQueue(c *fiber.Ctx) error {
	if aqc.queue == nil {
		return c.JSON(fiber.Map{
			"success": true,
			"enabled": false,
		})
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), requestTimeout)
	defer cancel()

	stats, err := aqc.queue.GetStats(ctx)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"enabled": true,
		"queue":   stats,
	})
}
