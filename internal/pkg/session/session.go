package session

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/gofiber/storage/redis"

	"github.com/ManuelReschke/SongPitch/internal/pkg/cache"
	"github.com/ManuelReschke/SongPitch/internal/pkg/env"
)

// KeyLastSubmission remembers the visitor's most recent submission between intake and checkout.
const KeyLastSubmission = "last_submission_id"

var sessionStore *session.Store

// NewSessionStore creates the Redis-backed session store and installs it.
func NewSessionStore() *session.Store {
	// Get Redis client configuration from existing cache setup
	cacheClient := cache.GetClient()
	host := env.GetEnv("CACHE_HOST", "localhost")
	port := env.GetEnvInt("CACHE_PORT", 6379)
	password := env.GetEnv("CACHE_PASSWORD", "")
	if cacheClient != nil {
		addr := cacheClient.Options().Addr
		if h, p, err := net.SplitHostPort(addr); err == nil {
			host = h
			if v, err := strconv.Atoi(p); err == nil {
				port = v
			}
		}
		if p := cacheClient.Options().Password; p != "" {
			password = p
		}
	}

	// Sessions live in their own Redis database, the cache uses DB 0
	storage := redis.New(redis.Config{
		Host:     host,
		Port:     port,
		Password: password,
		Database: env.GetEnvInt("SESSION_DB", 1),
		Reset:    false,
	})

	return Use(session.New(session.Config{
		Storage:        storage,
		CookieHTTPOnly: true,
		CookieSecure:   !env.IsDev(),
		CookieSameSite: "Lax",
		Expiration:     24 * time.Hour,
		KeyLookup:      "cookie:session_id",
	}))
}

// Use installs store as the process-wide session store. Tests pass an in-memory store.
func Use(store *session.Store) *session.Store {
	sessionStore = store
	return sessionStore
}

func GetSessionStore() *session.Store {
	return sessionStore
}

// SetSessionValue stores a key-value pair in the user's individual session
func SetSessionValue(c *fiber.Ctx, key string, value string) error {
	if sessionStore == nil {
		return fmt.Errorf("session store not initialized")
	}

	sess, err := sessionStore.Get(c)
	if err != nil {
		return fmt.Errorf("failed to get session: %w", err)
	}

	sess.Set(key, value)
	return sess.Save()
}

// GetSessionValue retrieves a value by key from the user's individual session
func GetSessionValue(c *fiber.Ctx, key string) string {
	if sessionStore == nil {
		return ""
	}

	sess, err := sessionStore.Get(c)
	if err != nil {
		return ""
	}

	if value, ok := sess.Get(key).(string); ok {
		return value
	}
	return ""
}

func SetLastSubmission(c *fiber.Ctx, id uint) error {
	return SetSessionValue(c, KeyLastSubmission, strconv.FormatUint(uint64(id), 10))
}

// LastSubmission returns 0 when the visitor has not submitted anything in this session.
func LastSubmission(c *fiber.Ctx) uint {
	raw := GetSessionValue(c, KeyLastSubmission)
	if raw == "" {
		return 0
	}
	id, err := strconv.ParseUint(raw, 10, strconv.IntSize)
	if err != nil {
		return 0
	}
	return uint(id)
}
