package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func TestWriteRateLimitPerAccount(t *testing.T) {
	cache := newTestCache(t)
	app := fiber.New()
	app.Post("/withdraw", WriteRateLimit(cache, scopeHeader, 2), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusCreated)
	})

	send := func(account string) int {
		req := httptest.NewRequest(fiber.MethodPost, "/withdraw", nil)
		req.Header.Set(scopeHeader, account)
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("app.Test: %v", err)
		}
		resp.Body.Close()
		return resp.StatusCode
	}

	for i := 0; i < 2; i++ {
		if status := send("A"); status != fiber.StatusCreated {
			t.Fatalf("request %d: expected %d got %d", i, fiber.StatusCreated, status)
		}
	}
	if status := send("A"); status != fiber.StatusTooManyRequests {
		t.Fatalf("expected %d got %d", fiber.StatusTooManyRequests, status)
	}
	if status := send("B"); status != fiber.StatusCreated {
		t.Fatalf("other account should not be limited, got %d", status)
	}
}

func TestWriteRateLimitWithoutCache(t *testing.T) {
	app := fiber.New()
	app.Post("/deposit", WriteRateLimit(nil, scopeHeader, 1), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusCreated)
	})
	for i := 0; i < 3; i++ {
		resp, err := app.Test(httptest.NewRequest(fiber.MethodPost, "/deposit", nil))
		if err != nil {
			t.Fatalf("app.Test: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != fiber.StatusCreated {
			t.Fatalf("expected pass-through, got %d", resp.StatusCode)
		}
	}
}
