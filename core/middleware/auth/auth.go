// Package auth restricts routes to administrators.
//
// A request must carry "Authorization: Bearer <token>" where the token is an
// HS256 JWT signed with the configured secret. The subject claim names the
// user, whose catalog role must equal the admin role. Any failure answers
// 403 before the route handler runs.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// ErrAccessDenied is returned for a missing or invalid credential or a
// non-admin role.
var ErrAccessDenied = errors.New("access denied")

// LocalUserID is the fiber.Ctx local holding the authenticated user id.
const LocalUserID = "user_id"

// RoleResolver looks up the role of a user.
type RoleResolver interface {
	Role(ctx context.Context, userID string) (string, error)
}

// Config holds the auth middleware settings.
type Config struct {
	// Secret verifies token signatures.
	Secret string
	// AdminRole is the role required to pass.
	AdminRole string
	// Roles resolves the caller's role.
	Roles RoleResolver
	// Logger records denials.
	Logger *zap.Logger
}

// Authenticate resolves a bearer header to an admin user id.
func (cfg Config) Authenticate(ctx context.Context, header string) (string, error) {
	if cfg.Secret == "" {
		return "", fmt.Errorf("%w: no signing secret configured", ErrAccessDenied)
	}

	const prefix = "bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", fmt.Errorf("%w: missing bearer token", ErrAccessDenied)
	}
	raw := strings.TrimSpace(header[len(prefix):])

	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return []byte(cfg.Secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAccessDenied, err)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("%w: token has no subject", ErrAccessDenied)
	}

	role, err := cfg.Roles.Role(ctx, claims.Subject)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAccessDenied, err)
	}
	if role != cfg.AdminRole {
		return "", fmt.Errorf("%w: role %q is not %q", ErrAccessDenied, role, cfg.AdminRole)
	}
	return claims.Subject, nil
}

// New returns the admin-only middleware.
func New(cfg Config) fiber.Handler {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return func(c *fiber.Ctx) error {
		userID, err := cfg.Authenticate(c.UserContext(), c.Get(fiber.HeaderAuthorization))
		if err != nil {
			cfg.Logger.Warn("Request denied",
				zap.String("path", c.Path()),
				zap.Any("ray_id", c.Locals("ray_id")),
				zap.Error(err))
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "forbidden"})
		}
		c.Locals(LocalUserID, userID)
		return c.Next()
	}
}
