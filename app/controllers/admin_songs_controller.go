package controllers

import (
	"context"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/sujit-baniya/flash"

	"github.com/ManuelReschke/SongPitch/app/models"
	"github.com/ManuelReschke/SongPitch/app/repository"
	"github.com/ManuelReschke/SongPitch/internal/pkg/constants"
	"github.com/ManuelReschke/SongPitch/internal/pkg/moderation"
)

// ============================================================================
// ADMIN SONGS CONTROLLER
// ============================================================================

// AdminSongsController handles staff review of song submissions
type AdminSongsController struct {
	moderation *moderation.Service
}

// NewAdminSongsController creates a new admin songs controller
func NewAdminSongsController(moderationService *moderation.Service) *AdminSongsController {
	return &AdminSongsController{moderation: moderationService}
}

// handleError flashes the error and returns to the song list
func (asc *AdminSongsController) handleError(c *fiber.Ctx, message string, err error) error {
	fm := fiber.Map{
		"type":    "error",
		"message": message + ": " + errorMessage(err),
	}
	return flash.WithError(c, fm).Redirect(constants.AdminSongsRoute)
}

// HandleAdminSongs lists submissions newest first with optional filters
func (asc *AdminSongsController) HandleAdminSongs(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), requestTimeout)
	defer cancel()

	filter := repository.SubmissionFilter{
		Status: c.Query("status"),
		Genre:  c.Query("genre"),
		Search: c.Query("search"),
	}
	songs, err := asc.moderation.List(ctx, filter)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"songs":   songs,
		"filters": fiber.Map{
			"status": filter.Status,
			"genre":  filter.Genre,
			"search": filter.Search,
			"genres": models.GenreChoices,
		},
		"flash": flash.Get(c),
		"csrf":  csrfToken(c),
	})
}

// HandleAdminSongDetail shows one submission
func (asc *AdminSongsController) HandleAdminSongDetail(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), requestTimeout)
	defer cancel()

	id, err := parseID(c.Params("id"), "id")
	if err != nil {
		return respondError(c, err)
	}
	song, err := asc.moderation.Get(ctx, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"success":       true,
		"song":          song,
		"genre_label":   models.ChoiceLabel(models.GenreChoices, song.Genre),
		"payment_label": models.ChoiceLabel(models.PaymentStatusChoices, song.PaymentStatus),
		"flash":         flash.Get(c),
		"csrf":          csrfToken(c),
	})
}

// HandleAdminSongUpdate replaces the staff notes
func (asc *AdminSongsController) HandleAdminSongUpdate(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), requestTimeout)
	defer cancel()

	id, err := parseID(c.Params("id"), "id")
	if err != nil {
		return asc.handleError(c, "Invalid song", err)
	}
	if _, err := asc.moderation.UpdateNotes(ctx, id, c.FormValue("notes")); err != nil {
		return asc.handleError(c, "Could not update notes", err)
	}

	fm := fiber.Map{
		"type":    "success",
		"message": "Notes updated",
	}
	return flash.WithSuccess(c, fm).Redirect(songPath(id))
}

// HandleAdminSongApprove marks a submission approved
func (asc *AdminSongsController) HandleAdminSongApprove(c *fiber.Ctx) error {
	return asc.moderate(c, asc.moderation.Approve)
}

// HandleAdminSongReject clears the approval flag
func (asc *AdminSongsController) HandleAdminSongReject(c *fiber.Ctx) error {
	return asc.moderate(c, asc.moderation.Reject)
}

func (asc *AdminSongsController) moderate(c *fiber.Ctx, action func(context.Context, uint) (string, error)) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), requestTimeout)
	defer cancel()

	id, err := parseID(c.Params("id"), "id")
	if err != nil {
		return asc.handleError(c, "Invalid song", err)
	}
	notice, err := action(ctx, id)
	if err != nil {
		return asc.handleError(c, "Could not update song", err)
	}

	fm := fiber.Map{
		"type":    "success",
		"message": notice,
	}
	return flash.WithSuccess(c, fm).Redirect(songPath(id))
}

func songPath(id uint) string {
	return constants.AdminSongsRoute + "/" + strconv.FormatUint(uint64(id), 10)
}
