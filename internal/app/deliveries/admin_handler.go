package deliveries

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/hotspotcentral/hotspot-core/internal/app/errors"
	"github.com/hotspotcentral/hotspot-core/internal/app/middlewares"
	"github.com/hotspotcentral/hotspot-core/internal/app/models"
	"github.com/hotspotcentral/hotspot-core/internal/app/pkg"
	"github.com/hotspotcentral/hotspot-core/internal/app/services"
	"github.com/hotspotcentral/hotspot-core/internal/infrastructures"
)

type AdminHandler struct {
	inventory *services.InventoryService
	pesapal   *services.PesapalService
	validator *infrastructures.Validator
	adminKey  *middlewares.AdminKeyMiddleware
}

func NewAdminHandler(
	inventory *services.InventoryService,
	pesapal *services.PesapalService,
	validator *infrastructures.Validator,
	adminKey *middlewares.AdminKeyMiddleware,
) *AdminHandler {
	return &AdminHandler{
		inventory: inventory,
		pesapal:   pesapal,
		validator: validator,
		adminKey:  adminKey,
	}
}

func (h *AdminHandler) RegisterRoutes(router fiber.Router) {
	adminGroup := router.Group("/api/admin", h.adminKey.RequireAdminKey)

	adminGroup.Post("/vouchers", h.UploadVouchers)
	adminGroup.Post("/ipn", h.RegisterIPN)
}

// UploadVouchers bulk-loads voucher codes into the unused pool. Duplicate
// codes are skipped and reported, not failed.
func (h *AdminHandler) UploadVouchers(c *fiber.Ctx) error {
	var req models.VoucherUploadRequest
	if err := c.BodyParser(&req); err != nil {
		return pkg.ErrorResponse(c, errors.NewBadRequestError("Invalid data format"))
	}
	if err := h.validator.Validate(&req); err != nil {
		return pkg.ErrorResponse(c, err)
	}

	inserted, err := h.inventory.BulkInsertVouchers(c.Context(), req.Codes, req.PackageType)
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, models.VoucherUploadResponse{
		Inserted:          inserted,
		DuplicatesIgnored: len(req.Codes) - inserted,
		PackageType:       req.PackageType,
	})
}

type registerIPNRequest struct {
	URL string `json:"url"`
}

// RegisterIPN registers the notification callback URL with Pesapal. Gated by
// ALLOW_IPN_REGISTER so a stray call cannot re-point production notifications.
func (h *AdminHandler) RegisterIPN(c *fiber.Ctx) error {
	if infrastructures.Config.ALLOW_IPN_REGISTER != "true" {
		return pkg.ErrorResponse(c, errors.NewForbiddenError("IPN registration is disabled in production"))
	}

	var req registerIPNRequest
	_ = c.BodyParser(&req)

	ipnURL := req.URL
	if ipnURL == "" {
		ipnURL = fmt.Sprintf("%s/api/payments/ipn", infrastructures.Config.CALLBACK_BASE_URL)
	}

	response, err := h.pesapal.RegisterIPN(c.Context(), ipnURL)
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, response)
}
