package utils

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorResponseEnvelope(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", []string{"title is required"}, "")
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, false, out["success"])
	assert.Equal(t, "Validation failed", out["message"])
	assert.Len(t, out["errors"], 1)
	_, hasError := out["error"]
	assert.False(t, hasError)
}

func TestSuccessResponseEnvelope(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return SuccessResponse(c, CreatedItemStruct{ItemID: "abc"}, fiber.StatusCreated)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var out struct {
		Success bool              `json:"success"`
		Data    CreatedItemStruct `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.True(t, out.Success)
	assert.Equal(t, "abc", out.Data.ItemID)
}

func TestPingService(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	ctx := context.Background()
	assert.NoError(t, PingAuthorizer(ctx, "http://"+ln.Addr().String()))
	assert.Error(t, PingService(ctx, "http://", 0))
	assert.Error(t, PingService(ctx, "://bad", 0))

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	assert.Error(t, PingService(cancelled, "redis://"+ln.Addr().String(), PingTimeout))
}

func TestServiceAddress(t *testing.T) {
	cases := map[string]string{
		"https://api.openai.com/v1": "api.openai.com:443",
		"http://authorizer":         "authorizer:80",
		"redis://cache:6380/0":      "cache:6380",
		"rediss://cache":            "cache:6379",
	}
	for in, want := range cases {
		got, err := ServiceAddress(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	_, err := ServiceAddress("ftp://files")
	assert.Error(t, err)
}
