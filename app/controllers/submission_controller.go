package controllers

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/ManuelReschke/SongPitch/app/models"
	"github.com/ManuelReschke/SongPitch/internal/pkg/apperrors"
	"github.com/ManuelReschke/SongPitch/internal/pkg/constants"
	"github.com/ManuelReschke/SongPitch/internal/pkg/intake"
	"github.com/ManuelReschke/SongPitch/internal/pkg/logger"
	"github.com/ManuelReschke/SongPitch/internal/pkg/session"
)

// SubmissionController serves the public submission form and the metadata API.
type SubmissionController struct {
	intake *intake.Service
	lookup intake.Lookup
}

func NewSubmissionController(intakeService *intake.Service, lookup intake.Lookup) *SubmissionController {
	return &SubmissionController{
		intake: intakeService,
		lookup: lookup,
	}
}

// HandleSubmitForm lists the options needed to render the submission form.
func (sc *SubmissionController) HandleSubmitForm(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), requestTimeout)
	defer cancel()

	opts, err := sc.intake.FormOptions(ctx)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"success":          true,
		"packages":         opts.Packages,
		"genres":           opts.Genres,
		"link_types":       opts.LinkTypes,
		"hcaptcha_sitekey": opts.SiteKey,
		"csrf":             csrfToken(c),
	})
}

// HandleSubmitSong stores a new submission and remembers it for checkout.
func (sc *SubmissionController) HandleSubmitSong(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), requestTimeout)
	defer cancel()

	var in intake.Input
	if err := c.BodyParser(&in); err != nil {
		return respondError(c, apperrors.Invalid("form", "could not read the submission"))
	}
	if !in.Terms {
		in.Terms = isChecked(c.FormValue("terms"))
	}

	sub, err := sc.intake.Submit(ctx, in)
	if err != nil {
		if errorStatus(err) == fiber.StatusBadRequest {
			status, body := errorBody(c, err)
			body["message"] = "Please correct the errors below."
			return c.Status(status).JSON(body)
		}
		return respondError(c, err)
	}

	if err := session.SetLastSubmission(c, sub.ID); err != nil {
		logger.FromContext(ctx).Warn("session_write_failed", zap.Error(err))
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Your song has been submitted successfully! Redirecting to payment...",
		"song_id": sub.ID,
	})
}

// HandleSubmitted confirms the submission made in this session.
func (sc *SubmissionController) HandleSubmitted(c *fiber.Ctx) error {
	id := session.LastSubmission(c)
	if id == 0 {
		return c.Redirect(constants.SubmitRoute, fiber.StatusSeeOther)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"song_id": id,
		"message": "Thank you! Your song has been submitted for review.",
	})
}

type songDetailsRequest struct {
	Link     string `json:"link" form:"link"`
	LinkType string `json:"link_type" form:"link_type"`
}

// HandleSongDetails looks up track metadata for a streaming link.
func (sc *SubmissionController) HandleSongDetails(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), requestTimeout)
	defer cancel()

	var req songDetailsRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, apperrors.Invalid("body", "could not read the request"))
	}
	req.Link = strings.TrimSpace(req.Link)
	if req.LinkType == "" {
		req.LinkType = models.LinkTypeSpotify
	}
	if req.Link == "" {
		return respondError(c, apperrors.Invalid("link", "this field is required"))
	}

	details := sc.lookup.Fetch(ctx, req.LinkType, req.Link)
	if details == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Could not fetch song details. Please check the link.",
		})
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    details,
	})
}
