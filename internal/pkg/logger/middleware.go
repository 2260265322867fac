package logger

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// RequestIDLocalsKey matches the Locals key written by Fiber's requestid middleware.
const RequestIDLocalsKey = "requestid"

// FiberMiddleware copies the request id into the user context and logs one
// structured line per request. Install it after requestid.New().
func FiberMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		requestID, _ := c.Locals(RequestIDLocalsKey).(string)
		if requestID != "" {
			c.SetUserContext(WithRequestID(c.UserContext(), requestID))
		}

		chainErr := c.Next()
		if chainErr != nil {
			// let the app error handler write the status before it is logged
			if err := c.App().ErrorHandler(c, chainErr); err != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		status := c.Response().StatusCode()
		route := "unknown"
		if r := c.Route(); r != nil && strings.TrimSpace(r.Path) != "" {
			route = r.Path
		}

		fields := []zap.Field{
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.String("route", route),
			zap.Int("status", status),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
			zap.Int("bytes_out", len(c.Response().Body())),
		}
		if chainErr != nil {
			fields = append(fields, zap.Error(chainErr))
		}

		log := FromContext(c.UserContext())
		switch {
		case route == "/metrics":
			log.Debug("http_request", fields...)
		case status >= fiber.StatusInternalServerError:
			log.Error("http_request", fields...)
		default:
			log.Info("http_request", fields...)
		}
		return nil
	}
}
