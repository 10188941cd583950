package server_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"recipebox/internal/logging"
	"recipebox/internal/server"
	"recipebox/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHealthAndMetrics(t *testing.T) {
	log := logging.Discard()
	auth, err := services.NewAuthService(nil, services.AuthConfig{JWTSecret: "secret", BcryptCost: bcrypt.MinCost}, log)
	require.NoError(t, err)

	app := server.New(server.Services{
		Auth:    auth,
		Recipes: services.NewRecipeService(nil, nil, nil, log),
		Caption: services.NewCaptionService(nil, log),
	}, server.Options{BodyLimit: 1024 * 1024}, log)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var health map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	resp.Body.Close()
	assert.Equal(t, "healthy", health["status"])
	_, err = time.Parse(time.RFC3339, health["time"])
	assert.NoError(t, err)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil), -1)
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `recipebox_http_requests_total{method="GET",path="/health",status="200"}`)
}

func TestCORSPreflight(t *testing.T) {
	log := logging.Discard()
	auth, err := services.NewAuthService(nil, services.AuthConfig{JWTSecret: "secret", BcryptCost: bcrypt.MinCost}, log)
	require.NoError(t, err)

	app := server.New(server.Services{
		Auth:    auth,
		Recipes: services.NewRecipeService(nil, nil, nil, log),
		Caption: services.NewCaptionService(nil, log),
	}, server.Options{CORSOrigins: "https://app.example.com"}, log)

	req := httptest.NewRequest(http.MethodOptions, "/login/", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "https://app.example.com", resp.Header.Get("Access-Control-Allow-Origin"))
}
