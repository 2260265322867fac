package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/ManuelReschke/SongPitch/internal/pkg/env"
	"github.com/ManuelReschke/SongPitch/internal/pkg/logger"
)

// LocalsStaffUser holds the authenticated staff username.
const LocalsStaffUser = "staff_user"

// StaffConfig holds the single staff account. The password is stored as a bcrypt hash.
type StaffConfig struct {
	User         string
	PasswordHash string
}

func StaffConfigFromEnv() StaffConfig {
	return StaffConfig{
		User:         strings.TrimSpace(env.GetEnv("STAFF_USER", "staff")),
		PasswordHash: strings.TrimSpace(env.GetEnv("STAFF_PASSWORD_HASH", "")),
	}
}

// RequireStaff guards the staff dashboard with HTTP basic auth. Without a
// configured hash every request is refused.
func RequireStaff(cfg StaffConfig) fiber.Handler {
	return basicauth.New(basicauth.Config{
		Realm:           "SongPitch Staff",
		ContextUsername: LocalsStaffUser,
		Authorizer: func(user, pass string) bool {
			if cfg.PasswordHash == "" {
				return false
			}
			if subtle.ConstantTimeCompare([]byte(user), []byte(cfg.User)) != 1 {
				return false
			}
			return bcrypt.CompareHashAndPassword([]byte(cfg.PasswordHash), []byte(pass)) == nil
		},
		Unauthorized: func(c *fiber.Ctx) error {
			logger.FromContext(c.UserContext()).Info("staff_auth_failed",
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
			)
			c.Set(fiber.HeaderWWWAuthenticate, `basic realm="SongPitch Staff"`)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error":   "unauthorized",
				"message": "staff login required",
			})
		},
	})
}

// MetricsAuth protects the monitor endpoint with a plain basic-auth account.
func MetricsAuth() fiber.Handler {
	return basicauth.New(basicauth.Config{
		Users: map[string]string{
			env.GetEnv("METRICS_USER", "admin"): env.GetEnv("METRICS_PASSWORD", "change-me"),
		},
	})
}
