package controllers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/SongPitch/app/models"
	"github.com/ManuelReschke/SongPitch/app/repository"
	"github.com/ManuelReschke/SongPitch/internal/pkg/payment"
)

// AdminPaymentsController is the read-only payment ledger
type AdminPaymentsController struct {
	payments *payment.Service
}

func NewAdminPaymentsController(payments *payment.Service) *AdminPaymentsController {
	return &AdminPaymentsController{payments: payments}
}

func (apc *AdminPaymentsController) HandleAdminPayments(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), requestTimeout)
	defer cancel()

	filter := repository.PaymentFilter{
		Status: c.Query("status"),
		Search: c.Query("search"),
	}
	payments, err := apc.payments.ListPayments(ctx, filter)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"success":  true,
		"payments": payments,
		"filters": fiber.Map{
			"status":   filter.Status,
			"search":   filter.Search,
			"statuses": models.PaymentStatusChoices,
		},
	})
}

func (apc *AdminPaymentsController) HandleAdminPaymentDetail(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), requestTimeout)
	defer cancel()

	id, err := parseID(c.Params("id"), "id")
	if err != nil {
		return respondError(c, err)
	}
	sub, err := apc.payments.GetPayment(ctx, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"payment": sub,
		"package": sub.Package,
	})
}
