package router

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"

	"github.com/ManuelReschke/SongPitch/app/controllers"
	"github.com/ManuelReschke/SongPitch/internal/pkg/constants"
	"github.com/ManuelReschke/SongPitch/internal/pkg/env"
)

type HttpRouter struct {
	deps *Dependencies
}

func NewHttpRouter(deps *Dependencies) *HttpRouter {
	return &HttpRouter{deps: deps}
}

func (h HttpRouter) InstallRouter(app *fiber.App) {
	csrfProtection := newCSRF()

	h.registerPublicRoutes(app, csrfProtection)
	h.registerAdminRoutes(app, csrfProtection)
}

func newCSRF() fiber.Handler {
	return csrf.New(csrf.Config{
		Extractor:      csrfExtractor,
		ContextKey:     "csrf",
		CookieName:     "csrf_",
		CookieSameSite: "Lax",
		Expiration:     1 * time.Hour,
		CookieSecure:   !env.IsDev(),
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"success": false,
				"message": "invalid or missing CSRF token",
			})
		},
	})
}

func (h HttpRouter) registerPublicRoutes(app *fiber.App, csrfProtection fiber.Handler) {
	submissions := controllers.NewSubmissionController(h.deps.Intake, h.deps.Lookup)
	payments := controllers.NewPaymentController(h.deps.Payments)

	app.Get(constants.PublicRoute, controllers.HandleStart)

	// Forms carry a CSRF token handed out by the GET routes
	app.Get(constants.SubmitRoute, csrfProtection, submissions.HandleSubmitForm)
	app.Post(constants.SubmitRoute, csrfProtection, submissions.HandleSubmitSong)
	app.Get(constants.SubmittedRoute, submissions.HandleSubmitted)
	app.Post(constants.PaymentProcessRoute, csrfProtection, payments.HandleProcess)

	// Gateway redirect
	app.Get(constants.PaymentVerifyRoute, payments.HandleVerify)
}

// csrfExtractor accepts the token from the X-CSRF-Token header (JSON clients)
// or the _csrf form field.
func csrfExtractor(c *fiber.Ctx) (string, error) {
	if token, err := csrf.CsrfFromHeader("X-CSRF-Token")(c); err == nil {
		return token, nil
	}
	return csrf.CsrfFromForm("_csrf")(c)
}
