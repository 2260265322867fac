package controllers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/SongPitch/internal/pkg/apperrors"
	"github.com/ManuelReschke/SongPitch/internal/pkg/payment"
	"github.com/ManuelReschke/SongPitch/internal/pkg/session"
)

// PaymentController starts checkout and receives the gateway redirect.
type PaymentController struct {
	payments *payment.Service
}

func NewPaymentController(payments *payment.Service) *PaymentController {
	return &PaymentController{payments: payments}
}

// HandleProcess builds the checkout payload for a submission. Without a song_id
// the submission made earlier in this session is used.
func (pc *PaymentController) HandleProcess(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), requestTimeout)
	defer cancel()

	var songID uint
	if raw := c.FormValue("song_id"); raw != "" {
		id, err := parseID(raw, "song_id")
		if err != nil {
			return respondPaymentError(c, err)
		}
		songID = id
	} else {
		songID = session.LastSubmission(c)
	}
	if songID == 0 {
		return respondPaymentError(c, apperrors.Invalid("song_id", "Song ID is required"))
	}

	checkout, err := pc.payments.Initiate(ctx, songID)
	if err != nil {
		return respondPaymentError(c, err)
	}
	return c.JSON(fiber.Map{
		"success":      true,
		"payment_data": checkout,
	})
}

// HandleVerify is the gateway callback target.
func (pc *PaymentController) HandleVerify(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), requestTimeout)
	defer cancel()

	var cb payment.Callback
	if err := c.QueryParser(&cb); err != nil {
		return respondPaymentError(c, payment.ErrMissingVerificationParams)
	}

	outcome, err := pc.payments.Verify(ctx, cb)
	if err != nil {
		return respondPaymentError(c, err)
	}
	return c.JSON(fiber.Map{
		"success":    true,
		"message":    "Payment verified successfully",
		"submission": outcome.Submission,
		"package":    outcome.Package,
	})
}
