package middlewares

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"
	"github.com/hotspotcentral/hotspot-core/internal/app/errors"
	"github.com/hotspotcentral/hotspot-core/internal/app/pkg"
	"github.com/hotspotcentral/hotspot-core/internal/infrastructures"
)

// AdminKeyMiddleware guards the operator endpoints (voucher upload, IPN
// registration) behind a shared API key.
type AdminKeyMiddleware struct {
	config *infrastructures.AppConfig
}

func NewAdminKeyMiddleware() *AdminKeyMiddleware {
	return &AdminKeyMiddleware{
		config: infrastructures.Config,
	}
}

func (m *AdminKeyMiddleware) RequireAdminKey(c *fiber.Ctx) error {
	if m.config.ADMIN_API_KEY == "" {
		return pkg.ErrorResponse(c, errors.NewForbiddenError("Admin API is not configured"))
	}

	key := c.Get("X-Admin-Key")
	if subtle.ConstantTimeCompare([]byte(key), []byte(m.config.ADMIN_API_KEY)) != 1 {
		return pkg.ErrorResponse(c, errors.NewUnauthorizedError("Invalid admin key"))
	}

	return c.Next()
}
