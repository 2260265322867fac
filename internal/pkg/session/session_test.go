package session

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLastSubmissionRoundTrip(t *testing.T) {
	Use(session.New())
	t.Cleanup(func() { Use(nil) })

	app := fiber.New()
	app.Post("/remember/:id", func(c *fiber.Ctx) error {
		id, _ := strconv.Atoi(c.Params("id"))
		if err := SetLastSubmission(c, uint(id)); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
	app.Get("/last", func(c *fiber.Ctx) error {
		return c.SendString(strconv.FormatUint(uint64(LastSubmission(c)), 10))
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/remember/42", nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	var cookie *http.Cookie
	for _, ck := range resp.Cookies() {
		if ck.Name == "session_id" {
			cookie = ck
		}
	}
	require.NotNil(t, cookie)

	req := httptest.NewRequest(http.MethodGet, "/last", nil)
	req.AddCookie(cookie)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	body := make([]byte, 8)
	n, _ := resp.Body.Read(body)
	assert.Equal(t, "42", string(body[:n]))

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/last", nil), -1)
	require.NoError(t, err)
	n, _ = resp.Body.Read(body)
	assert.Equal(t, "0", string(body[:n]))
}

func TestWithoutStore(t *testing.T) {
	Use(nil)
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		assert.Error(t, SetLastSubmission(c, 1))
		assert.Zero(t, LastSubmission(c))
		return nil
	})
	_, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
	require.NoError(t, err)
}
