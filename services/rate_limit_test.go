package services

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/lac-hong-legacy/footage_api/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplySurfaceOverrides(t *testing.T) {
	env := map[string]string{
		"RATE_LIMIT_DOWNLOAD_MAX":    "5",
		"RATE_LIMIT_DOWNLOAD_WINDOW": "30s",
		"RATE_LIMIT_AUTH_MAX":        "4",
	}

	configs, err := applySurfaceOverrides(defaultSurfaceConfigs(), func(k string) string { return env[k] })
	require.NoError(t, err)

	assert.Equal(t, 5, configs[SurfaceDownload].MaxRequests)
	assert.Equal(t, 30*time.Second, configs[SurfaceDownload].WindowSize)
	assert.Equal(t, 4, configs[SurfaceAuth].MaxRequests)
	assert.Equal(t, 15*time.Minute, configs[SurfaceAuth].WindowSize)
	assert.Equal(t, 300, configs[SurfaceGeneral].MaxRequests)
}

func TestApplySurfaceOverridesRejectsBadValues(t *testing.T) {
	for name, env := range map[string]map[string]string{
		"non numeric max": {"RATE_LIMIT_API_MAX": "lots"},
		"zero max":        {"RATE_LIMIT_API_MAX": "0"},
		"bad window":      {"RATE_LIMIT_UPLOAD_WINDOW": "soon"},
		"negative window": {"RATE_LIMIT_UPLOAD_WINDOW": "-1m"},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := applySurfaceOverrides(defaultSurfaceConfigs(), func(k string) string { return env[k] })
			assert.Error(t, err)
		})
	}
}

func TestDefaultSurfacesAreStricterForWrites(t *testing.T) {
	configs := defaultSurfaceConfigs()

	assert.True(t, configs[SurfaceUpload].FailClosed)
	assert.True(t, configs[SurfaceAuth].FailClosed)
	assert.True(t, configs[SurfaceAuth].SkipSuccessfulRequests)
	assert.False(t, configs[SurfaceGeneral].FailClosed)
	assert.Less(t, configs[SurfaceDownload].MaxRequests, configs[SurfaceAPI].MaxRequests)
	assert.Less(t, configs[SurfaceAPI].MaxRequests, configs[SurfaceGeneral].MaxRequests)
}

func identifierApp(trusted []string) *fiber.App {
	svc := &HttpService{proxyHeader: fiber.HeaderXForwardedFor, trustedProxies: trusted}
	app := fiber.New(svc.fiberConfig())
	app.Get("/anon", func(c *fiber.Ctx) error {
		return c.SendString(ClientIdentifier(c) + "|" + FingerprintIdentifier(c))
	})
	app.Get("/user", func(c *fiber.Ctx) error {
		c.Locals(shared.UserID, "u-42")
		return c.SendString(ClientIdentifier(c))
	})
	return app
}

func readIdentifier(t *testing.T, app *fiber.App, path, forwarded, agent string) string {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if forwarded != "" {
		req.Header.Set(fiber.HeaderXForwardedFor, forwarded)
	}
	req.Header.Set(fiber.HeaderUserAgent, agent)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

func TestClientIdentifiers(t *testing.T) {
	t.Run("untrusted peer", func(t *testing.T) {
		app := identifierApp(nil)

		anon := readIdentifier(t, app, "/anon", "198.51.100.4, 10.0.0.1", "curl/8.0")
		assert.True(t, strings.HasPrefix(anon, "ip:0.0.0.0|fp_"), anon)

		rotated := readIdentifier(t, app, "/anon", "198.51.100.99", "curl/8.0")
		assert.Equal(t, anon, rotated)

		otherAgent := readIdentifier(t, app, "/anon", "198.51.100.4", "Mozilla/5.0")
		assert.NotEqual(t, anon, otherAgent)

		for _, header := range []string{"X-Real-IP", "CF-Connecting-IP"} {
			req := httptest.NewRequest(http.MethodGet, "/anon", nil)
			req.Header.Set(header, "198.51.100.7")
			req.Header.Set(fiber.HeaderUserAgent, "curl/8.0")
			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			body, err := io.ReadAll(resp.Body)
			resp.Body.Close()
			require.NoError(t, err)
			assert.Equal(t, anon, string(body), header)
		}
	})

	t.Run("trusted proxy", func(t *testing.T) {
		app := identifierApp([]string{"0.0.0.0"})

		anon := readIdentifier(t, app, "/anon", "198.51.100.4, 10.0.0.1", "curl/8.0")
		assert.True(t, strings.HasPrefix(anon, "ip:198.51.100.4|fp_"), anon)

		other := readIdentifier(t, app, "/anon", "198.51.100.5", "curl/8.0")
		assert.NotEqual(t, anon, other)

		garbage := readIdentifier(t, app, "/anon", "not-an-ip", "curl/8.0")
		assert.True(t, strings.HasPrefix(garbage, "ip:0.0.0.0|fp_"), garbage)
	})

	t.Run("authenticated", func(t *testing.T) {
		app := identifierApp(nil)
		assert.Equal(t, "user:u-42", readIdentifier(t, app, "/user", "198.51.100.4", "curl/8.0"))
	})
}

func TestParseTrustedProxies(t *testing.T) {
	assert.Nil(t, parseTrustedProxies(""))
	assert.Equal(t, []string{"10.0.0.1", "192.168.0.0/16"}, parseTrustedProxies(" 10.0.0.1, ,192.168.0.0/16 "))
}
