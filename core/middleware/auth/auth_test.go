package auth

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

type roles map[string]string

func (r roles) Role(ctx context.Context, userID string) (string, error) {
	if userID == "broken" {
		return "", errors.New("catalog unavailable")
	}
	if role, ok := r[userID]; ok {
		return role, nil
	}
	return "USER", nil
}

func sign(t *testing.T, method jwt.SigningMethod, key any, claims jwt.Claims) string {
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return s
}

func token(t *testing.T, sub string) string {
	return sign(t, jwt.SigningMethodHS256, []byte(secret), jwt.RegisteredClaims{
		Subject:   sub,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
}

func setupApp(hits *int) *fiber.App {
	app := fiber.New()
	app.Use(New(Config{
		Secret:    secret,
		AdminRole: "ADMIN",
		Roles:     roles{"root": "ADMIN", "guest": "USER"},
	}))
	app.Get("/admin", func(c *fiber.Ctx) error {
		*hits++
		return c.SendString(c.Locals(LocalUserID).(string))
	})
	return app
}

func TestMiddleware(t *testing.T) {
	expired := sign(t, jwt.SigningMethodHS256, []byte(secret), jwt.RegisteredClaims{
		Subject:   "root",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
	})
	wrongKey := sign(t, jwt.SigningMethodHS256, []byte("other"), jwt.RegisteredClaims{Subject: "root"})
	noSubject := sign(t, jwt.SigningMethodHS256, []byte(secret), jwt.RegisteredClaims{})
	wrongAlg := sign(t, jwt.SigningMethodHS512, []byte(secret), jwt.RegisteredClaims{Subject: "root"})

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"Admin", "Bearer " + token(t, "root"), fiber.StatusOK},
		{"LowercaseScheme", "bearer " + token(t, "root"), fiber.StatusOK},
		{"NoHeader", "", fiber.StatusForbidden},
		{"NotBearer", "Basic abc", fiber.StatusForbidden},
		{"Garbage", "Bearer not-a-jwt", fiber.StatusForbidden},
		{"NonAdmin", "Bearer " + token(t, "guest"), fiber.StatusForbidden},
		{"UnknownUserDefaultsToUser", "Bearer " + token(t, "stranger"), fiber.StatusForbidden},
		{"RoleLookupFails", "Bearer " + token(t, "broken"), fiber.StatusForbidden},
		{"Expired", "Bearer " + expired, fiber.StatusForbidden},
		{"WrongKey", "Bearer " + wrongKey, fiber.StatusForbidden},
		{"NoSubject", "Bearer " + noSubject, fiber.StatusForbidden},
		{"WrongAlgorithm", "Bearer " + wrongAlg, fiber.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hits := 0
			app := setupApp(&hits)

			req := httptest.NewRequest("GET", "/admin", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)

			body, _ := io.ReadAll(resp.Body)
			if tt.status == fiber.StatusForbidden {
				assert.JSONEq(t, `{"error":"forbidden"}`, string(body))
				assert.Zero(t, hits, "handler must not run")
			} else {
				assert.Equal(t, "root", string(body))
				assert.Equal(t, 1, hits)
			}
		})
	}
}

func TestAuthenticateWithoutSecret(t *testing.T) {
	_, err := Config{AdminRole: "ADMIN", Roles: roles{}}.Authenticate(context.Background(), "Bearer x")
	assert.ErrorIs(t, err, ErrAccessDenied)
}
