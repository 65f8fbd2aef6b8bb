package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"stlprime/internal/handlers"
	"stlprime/internal/middleware"
	"stlprime/internal/models"
	"stlprime/internal/repositories"
	"stlprime/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var dbCounter int64

// setupApp sets up a Fiber app for testing with a fresh in-memory SQLite
// database and all handlers/services wired like in main.
func setupApp() (*fiber.App, *services.AuthService, error) {
	viper.SetDefault("JWT_SECRET", "test_jwt_secret")
	viper.AutomaticEnv()
	jwtSecret := viper.GetString("JWT_SECRET")

	// A unique DSN per test keeps auto-increment IDs predictable.
	dsn := fmt.Sprintf("file:handlers_test_%d?mode=memory&cache=shared", atomic.AddInt64(&dbCounter, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to in-memory database: %w", err)
	}

	err = db.AutoMigrate(&models.User{}, &models.STLModel{}, &models.MaterialProperty{})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to auto-migrate database: %w", err)
	}

	// Initialize Repositories
	userRepo := repositories.NewGORMUserRepository(db)
	modelRepo := repositories.NewGORMModelRepository(db)

	// Initialize Services (MinCost keeps bcrypt fast in tests; nil RabbitMQ client)
	authService := services.NewAuthService(userRepo, jwtSecret, time.Hour, bcrypt.MinCost)
	catalogService := services.NewCatalogService(modelRepo, userRepo, nil)

	// Initialize Handlers
	authHandler := handlers.NewAuthHandler(authService)
	catalogHandler := handlers.NewCatalogHandler(catalogService)

	app := fiber.New()

	// Authentication routes (public)
	authHandler.RegisterRoutes(app)

	// Catalog routes (require JWT authentication)
	protectedRoutes := app.Group("", middleware.AuthRequired(authService))
	catalogHandler.RegisterRoutes(protectedRoutes)

	return app, authService, nil
}

// TestMain runs setup and teardown for all tests.
func TestMain(m *testing.M) {
	log.SetOutput(io.Discard)
	code := m.Run()
	os.Exit(code)
}

func registerJSON(t *testing.T, app *fiber.App, body map[string]interface{}) *http.Response {
	t.Helper()
	jsonBody, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, "/auth/register", bytes.NewReader(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	assert.NoError(t, err)
	return resp
}

func loginForm(t *testing.T, app *fiber.App, username, password string) *http.Response {
	t.Helper()
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := app.Test(req, -1)
	assert.NoError(t, err)
	return resp
}

func TestAuthRegisterAndLogin(t *testing.T) {
	app, authService, err := setupApp()
	assert.NoError(t, err)

	// Register
	resp := registerJSON(t, app, map[string]interface{}{
		"email":     "u@x.com",
		"password":  "p1",
		"full_name": "U",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var raw map[string]interface{}
	err = json.NewDecoder(resp.Body).Decode(&raw)
	assert.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, float64(1), raw["id"])
	assert.Equal(t, "u@x.com", raw["email"])
	assert.Equal(t, "U", raw["full_name"])
	assert.Equal(t, false, raw["is_merchant"])
	assert.Equal(t, true, raw["is_active"])
	// The password hash must never leave the server.
	assert.NotContains(t, raw, "password")

	// Duplicate registration
	resp = registerJSON(t, app, map[string]interface{}{
		"email":    "u@x.com",
		"password": "different",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	var dupResp map[string]string
	err = json.NewDecoder(resp.Body).Decode(&dupResp)
	assert.NoError(t, err)
	assert.Equal(t, "email already registered", dupResp["message"])
	resp.Body.Close()

	// Login with the right password
	resp = loginForm(t, app, "u@x.com", "p1")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var tokenResp handlers.TokenResponse
	err = json.NewDecoder(resp.Body).Decode(&tokenResp)
	assert.NoError(t, err)
	assert.NotEmpty(t, tokenResp.AccessToken)
	assert.Equal(t, "bearer", tokenResp.TokenType)
	resp.Body.Close()

	claims, err := authService.ValidateToken(tokenResp.AccessToken)
	assert.NoError(t, err)
	assert.Equal(t, "u@x.com", claims["sub"])

	// Wrong password and unknown user are indistinguishable to the caller.
	wrongResp := loginForm(t, app, "u@x.com", "wrong")
	assert.Equal(t, http.StatusUnauthorized, wrongResp.StatusCode)
	assert.Equal(t, "Bearer", wrongResp.Header.Get("WWW-Authenticate"))
	wrongBody, _ := io.ReadAll(wrongResp.Body)
	wrongResp.Body.Close()

	missingResp := loginForm(t, app, "nonexistent@b.com", "x")
	assert.Equal(t, http.StatusUnauthorized, missingResp.StatusCode)
	assert.Equal(t, "Bearer", missingResp.Header.Get("WWW-Authenticate"))
	missingBody, _ := io.ReadAll(missingResp.Body)
	missingResp.Body.Close()

	assert.Equal(t, string(wrongBody), string(missingBody))
	assert.Contains(t, string(wrongBody), "invalid credentials")
}

func TestRegisterValidation(t *testing.T) {
	app, _, err := setupApp()
	assert.NoError(t, err)

	// Malformed email is rejected before reaching the store.
	resp := registerJSON(t, app, map[string]interface{}{
		"email":    "not-an-email",
		"password": "p1",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	// Missing password
	resp = registerJSON(t, app, map[string]interface{}{
		"email": "ok@x.com",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

// registerAndLogin creates a merchant account and returns its bearer token.
func registerAndLogin(t *testing.T, app *fiber.App) string {
	t.Helper()
	resp := registerJSON(t, app, map[string]interface{}{
		"email":       "maker@x.com",
		"password":    "secret",
		"full_name":   "Maker",
		"is_merchant": true,
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = loginForm(t, app, "maker@x.com", "secret")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var tokenResp handlers.TokenResponse
	err := json.NewDecoder(resp.Body).Decode(&tokenResp)
	assert.NoError(t, err)
	resp.Body.Close()
	assert.NotEmpty(t, tokenResp.AccessToken)
	return tokenResp.AccessToken
}

func TestCatalogEndpoints(t *testing.T) {
	app, _, err := setupApp()
	assert.NoError(t, err)

	token := registerAndLogin(t, app)

	// --- Create a listing ---
	newModel := map[string]interface{}{
		"title":       "Benchy",
		"description": "The jolly 3D printing torture-test",
		"file_url":    "/files/benchy.stl",
		"image_url":   "/images/benchy.png",
		"price":       0.0,
		"is_free":     true,
	}
	jsonBody, _ := json.Marshal(newModel)
	req := httptest.NewRequest(http.MethodPost, "/models", bytes.NewReader(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	var created models.STLModel
	err = json.NewDecoder(resp.Body).Decode(&created)
	assert.NoError(t, err)
	assert.Equal(t, uint(1), created.ID)
	assert.Equal(t, uint(1), created.OwnerID)
	assert.True(t, created.IsFree)
	resp.Body.Close()

	// --- List listings ---
	req = httptest.NewRequest(http.MethodGet, "/models", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var listings []models.STLModel
	err = json.NewDecoder(resp.Body).Decode(&listings)
	assert.NoError(t, err)
	assert.Len(t, listings, 1)
	resp.Body.Close()

	// --- Attach a material property ---
	prop := map[string]interface{}{
		"filament_type":           "PLA",
		"estimated_weight":        13.2,
		"print_time":              74,
		"recommended_temperature": 210,
	}
	jsonBody, _ = json.Marshal(prop)
	req = httptest.NewRequest(http.MethodPost, "/models/1/materials", bytes.NewReader(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	// Attaching to a missing model fails the referential check.
	req = httptest.NewRequest(http.MethodPost, "/models/99/materials", bytes.NewReader(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	// --- Fetch the listing with its material properties ---
	req = httptest.NewRequest(http.MethodGet, "/models/1", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var fetched models.STLModel
	err = json.NewDecoder(resp.Body).Decode(&fetched)
	assert.NoError(t, err)
	assert.Len(t, fetched.MaterialProperties, 1)
	assert.Equal(t, "PLA", fetched.MaterialProperties[0].FilamentType)
	resp.Body.Close()

	// --- Delete the listing; its material properties go with it ---
	req = httptest.NewRequest(http.MethodDelete, "/models/1", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	req = httptest.NewRequest(http.MethodGet, "/models/1", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestCatalogEndpointsWithoutAuth(t *testing.T) {
	app, _, err := setupApp()
	assert.NoError(t, err)

	// No token
	req := httptest.NewRequest(http.MethodGet, "/models", nil)
	resp, err := app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Bearer", resp.Header.Get("WWW-Authenticate"))
	resp.Body.Close()

	// Garbage token
	req = httptest.NewRequest(http.MethodGet, "/models", nil)
	req.Header.Set("Authorization", "Bearer not.a.token")
	resp, err = app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}
