package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/SongPitch/internal/pkg/constants"
)

// HandleStart answers the landing route with a health payload.
func HandleStart(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"success": true,
		"service": "songpitch",
		"links": fiber.Map{
			"submit":  constants.SubmitRoute,
			"api":     "/api/v1/song-details",
			"docs":    "/docs/api/v1",
			"payment": "/payment/process",
		},
	})
}
