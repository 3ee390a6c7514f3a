package deliveries

import (
	"github.com/gofiber/fiber/v2"
	"github.com/hotspotcentral/hotspot-core/internal/app/errors"
	"github.com/hotspotcentral/hotspot-core/internal/app/middlewares"
	"github.com/hotspotcentral/hotspot-core/internal/app/models"
	"github.com/hotspotcentral/hotspot-core/internal/app/pkg"
	"github.com/hotspotcentral/hotspot-core/internal/app/services"
)

type NetworkHandler struct {
	network  *services.NetworkService
	adminKey *middlewares.AdminKeyMiddleware
}

func NewNetworkHandler(network *services.NetworkService, adminKey *middlewares.AdminKeyMiddleware) *NetworkHandler {
	return &NetworkHandler{
		network:  network,
		adminKey: adminKey,
	}
}

func (h *NetworkHandler) RegisterRoutes(router fiber.Router) {
	networkGroup := router.Group("/api/network", h.adminKey.RequireAdminKey)

	networkGroup.Post("/users", h.CreateHotspotUser)
}

func (h *NetworkHandler) CreateHotspotUser(c *fiber.Ctx) error {
	var req models.HotspotUserRequest
	if err := c.BodyParser(&req); err != nil {
		return pkg.ErrorResponse(c, errors.NewBadRequestError("Invalid data format"))
	}

	response, err := h.network.CreateHotspotUser(c.Context(), &req)
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, response)
}
