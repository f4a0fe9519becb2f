package middleware_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	"photocritic/interfaces/api/middleware"
	"photocritic/pkg/config"
)

func analysisApp(cfg *config.RateLimitConfig) *fiber.App {
	app := fiber.New()
	app.Post("/analyses", middleware.Optional(secret), middleware.AnalysisRateLimiter(cfg), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	return app
}

func post(t *testing.T, app *fiber.App, tok string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/analyses", nil)
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func TestAnalysisRateLimiterBucketsPerCaller(t *testing.T) {
	app := analysisApp(&config.RateLimitConfig{Enabled: true, AnalysisMaxRequests: 2, AnalysisWindowSeconds: 60})
	alice, _ := token(t, "")
	bob, _ := token(t, "")

	for i := 0; i < 2; i++ {
		resp := post(t, app, alice)
		resp.Body.Close()
		if resp.StatusCode != fiber.StatusOK {
			t.Fatalf("request %d: %d", i+1, resp.StatusCode)
		}
	}

	resp := post(t, app, alice)
	defer resp.Body.Close()
	if resp.StatusCode != fiber.StatusTooManyRequests {
		t.Fatalf("over limit: %d", resp.StatusCode)
	}
	var body struct {
		Success bool            `json:"success"`
		Message string          `json:"message"`
		Error   json.RawMessage `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Success || body.Message == "" || body.Error != nil {
		t.Errorf("envelope = %+v", body)
	}

	for name, tok := range map[string]string{"other user": bob, "anonymous": ""} {
		resp := post(t, app, tok)
		resp.Body.Close()
		if resp.StatusCode != fiber.StatusOK {
			t.Errorf("%s shares alice's bucket: %d", name, resp.StatusCode)
		}
	}
}

func TestRateLimiterDisabled(t *testing.T) {
	cfg := &config.RateLimitConfig{Enabled: false, MaxRequests: 1, WindowSeconds: 60, AnalysisMaxRequests: 1, AnalysisWindowSeconds: 60}
	app := analysisApp(cfg)
	app.Get("/any", middleware.RateLimiter(cfg), func(c *fiber.Ctx) error { return c.SendString("ok") })

	for i := 0; i < 3; i++ {
		if got := status(t, app, httptest.NewRequest(http.MethodGet, "/any", nil)); got != fiber.StatusOK {
			t.Fatalf("general request %d: %d", i+1, got)
		}
		resp := post(t, app, "")
		resp.Body.Close()
		if resp.StatusCode != fiber.StatusOK {
			t.Fatalf("analysis request %d: %d", i+1, resp.StatusCode)
		}
	}
}
