package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"sync"

	"github.com/labstack/echo/v4"
)

type contextKey string

const UserIDKey contextKey = "user_id"

var (
	apiKeyOnce    sync.Once
	apiKeyRuntime string
	apiKeyErr     error
)

func apiKeyFromEnv() (string, error) {
	apiKeyOnce.Do(func() {
		key := strings.TrimSpace(os.Getenv("API_KEY"))
		if key != "" {
			apiKeyRuntime = key
			return
		}

		buf := make([]byte, 32)
		if _, err := rand.Read(buf); err != nil {
			apiKeyErr = fmt.Errorf("failed to generate API key fallback: %w", err)
			return
		}

		apiKeyRuntime = base64.RawURLEncoding.EncodeToString(buf)
		log.Print("API_KEY is not set; using ephemeral in-memory fallback key")
	})

	if apiKeyErr != nil {
		return "", apiKeyErr
	}
	if apiKeyRuntime == "" {
		return "", errors.New("API key unavailable")
	}

	return apiKeyRuntime, nil
}

// RequireAPIKey gates the mobile-app endpoints behind the shared X-API-Key
// header.
func RequireAPIKey(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		key, err := apiKeyFromEnv()
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "Server auth configuration error")
		}

		provided := c.Request().Header.Get("X-API-Key")
		if provided == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(key)) != 1 {
			return echo.NewHTTPError(http.StatusForbidden, "Invalid API Key")
		}
		return next(c)
	}
}

// OptionalUser extracts the user ID from a Bearer session token when one is
// present. Visits stay anonymous when the header is missing or invalid.
func OptionalUser(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			return next(c)
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return next(c)
		}

		userID, err := ParseToken(parts[1])
		if err != nil {
			return next(c)
		}

		c.Set(string(UserIDKey), userID)
		return next(c)
	}
}

// GetUserIDFromContext returns the user ID set by OptionalUser, if any.
func GetUserIDFromContext(c echo.Context) (int, bool) {
	val := c.Get(string(UserIDKey))
	id, ok := val.(int)
	return id, ok
}
