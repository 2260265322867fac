package controllers

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sujit-baniya/flash"

	"github.com/ManuelReschke/SongPitch/internal/pkg/apperrors"
	"github.com/ManuelReschke/SongPitch/internal/pkg/catalog"
	"github.com/ManuelReschke/SongPitch/internal/pkg/constants"
)

// ============================================================================
// ADMIN PACKAGES CONTROLLER
// ============================================================================

// AdminPackagesController handles the package catalog
type AdminPackagesController struct {
	catalog *catalog.Service
}

// NewAdminPackagesController creates a new admin packages controller
func NewAdminPackagesController(catalogService *catalog.Service) *AdminPackagesController {
	return &AdminPackagesController{catalog: catalogService}
}

func (apc *AdminPackagesController) handleError(c *fiber.Ctx, message string, err error) error {
	fm := fiber.Map{
		"type":    "error",
		"message": message + ": " + errorMessage(err),
	}
	return flash.WithError(c, fm).Redirect(constants.AdminPackagesRoute)
}

// HandleAdminPackages lists every package by ascending price
func (apc *AdminPackagesController) HandleAdminPackages(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), requestTimeout)
	defer cancel()

	pkgs, err := apc.catalog.List(ctx)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"success":  true,
		"packages": pkgs,
		"flash":    flash.Get(c),
		"csrf":     csrfToken(c),
	})
}

// HandleAdminPackageStore creates a package from the form
func (apc *AdminPackagesController) HandleAdminPackageStore(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), requestTimeout)
	defer cancel()

	in, err := packageForm(c)
	if err != nil {
		return apc.handleError(c, "Could not create package", err)
	}
	pkg, err := apc.catalog.Create(ctx, in)
	if err != nil {
		return apc.handleError(c, "Could not create package", err)
	}

	fm := fiber.Map{
		"type":    "success",
		"message": fmt.Sprintf("Package \"%s\" has been created", pkg.Name),
	}
	return flash.WithSuccess(c, fm).Redirect(constants.AdminPackagesRoute)
}

// HandleAdminPackageUpdate saves changes to a package
func (apc *AdminPackagesController) HandleAdminPackageUpdate(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), requestTimeout)
	defer cancel()

	id, err := parseID(c.Params("id"), "id")
	if err != nil {
		return apc.handleError(c, "Invalid package", err)
	}
	in, err := packageForm(c)
	if err != nil {
		return apc.handleError(c, "Could not update package", err)
	}
	pkg, err := apc.catalog.Update(ctx, id, in)
	if err != nil {
		return apc.handleError(c, "Could not update package", err)
	}

	fm := fiber.Map{
		"type":    "success",
		"message": fmt.Sprintf("Package \"%s\" has been updated", pkg.Name),
	}
	return flash.WithSuccess(c, fm).Redirect(constants.AdminPackagesRoute)
}

// HandleAdminPackageDelete removes a package
func (apc *AdminPackagesController) HandleAdminPackageDelete(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), requestTimeout)
	defer cancel()

	id, err := parseID(c.Params("id"), "id")
	if err != nil {
		return apc.handleError(c, "Invalid package", err)
	}
	pkg, err := apc.catalog.Delete(ctx, id)
	if err != nil {
		return apc.handleError(c, "Could not delete package", err)
	}

	fm := fiber.Map{
		"type":    "success",
		"message": fmt.Sprintf("Package \"%s\" has been deleted", pkg.Name),
	}
	return flash.WithSuccess(c, fm).Redirect(constants.AdminPackagesRoute)
}

func packageForm(c *fiber.Ctx) (catalog.Input, error) {
	in := catalog.Input{
		Name:        c.FormValue("name"),
		Description: c.FormValue("description"),
		IsActive:    isChecked(c.FormValue("is_active")),
	}
	rawPrice := strings.TrimSpace(c.FormValue("price"))
	if rawPrice == "" {
		return in, apperrors.Invalid("price", "this field is required")
	}
	price, err := strconv.ParseFloat(rawPrice, 64)
	if err != nil {
		return in, apperrors.Invalid("price", "enter a number")
	}
	in.Price = price
	return in, nil
}
