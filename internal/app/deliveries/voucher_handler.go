package deliveries

import (
	"github.com/gofiber/fiber/v2"
	"github.com/hotspotcentral/hotspot-core/internal/app/errors"
	"github.com/hotspotcentral/hotspot-core/internal/app/middlewares"
	"github.com/hotspotcentral/hotspot-core/internal/app/models"
	"github.com/hotspotcentral/hotspot-core/internal/app/pkg"
	"github.com/hotspotcentral/hotspot-core/internal/app/services"
	"github.com/hotspotcentral/hotspot-core/internal/infrastructures"
)

type VoucherHandler struct {
	inventory *services.InventoryService
	validator *infrastructures.Validator
	rateLimit *middlewares.RateLimitMiddleware
}

func NewVoucherHandler(
	inventory *services.InventoryService,
	validator *infrastructures.Validator,
	rateLimit *middlewares.RateLimitMiddleware,
) *VoucherHandler {
	return &VoucherHandler{
		inventory: inventory,
		validator: validator,
		rateLimit: rateLimit,
	}
}

func (h *VoucherHandler) RegisterRoutes(router fiber.Router) {
	voucherGroup := router.Group("/api/vouchers")

	voucherGroup.Get("/", h.rateLimit.LimitByIP(middlewares.PublicAPILimit), h.PollVoucher)
	voucherGroup.Post("/redeem", h.rateLimit.LimitByIP(middlewares.PublicAPILimit), h.RedeemVoucher)
	voucherGroup.Post("/free-trial", h.rateLimit.LimitByIP(middlewares.FreeTrialLimit), h.ClaimFreeTrial)
}

// PollVoucher is the front-end polling endpoint used while waiting for
// reconciliation to assign a voucher after payment.
func (h *VoucherHandler) PollVoucher(c *fiber.Ctx) error {
	trackingID := c.Query("tracking_id")
	if trackingID == "" {
		trackingID = c.Query("id")
	}
	if trackingID == "" {
		return pkg.ErrorResponse(c, errors.NewBadRequestError("Missing tracking ID"))
	}

	status, err := h.inventory.GetStatus(c.Context(), trackingID)
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	if status.Status != models.TransactionStatusCompleted || status.VoucherCode == nil {
		return pkg.SuccessResponse(c, models.VoucherPollResponse{
			Status:     "PENDING",
			TrackingID: trackingID,
			Message:    "Payment is being processed. Please wait...",
			RetryAfter: 3,
		})
	}

	return pkg.SuccessResponse(c, models.VoucherPollResponse{
		Status:      "SUCCESS",
		VoucherCode: status.VoucherCode,
		Package:     status.PackageType,
		TrackingID:  trackingID,
	})
}

// RedeemVoucher marks a voucher used at network-login time and returns the
// session parameters for its package. A lost redemption race is a 409.
func (h *VoucherHandler) RedeemVoucher(c *fiber.Ctx) error {
	var req models.VoucherRedeemRequest
	if err := c.BodyParser(&req); err != nil {
		return pkg.ErrorResponse(c, errors.NewBadRequestError("Invalid request body"))
	}
	if err := h.validator.Validate(&req); err != nil {
		return pkg.ErrorResponse(c, err)
	}

	voucher, err := h.inventory.MarkRedeemed(c.Context(), req.Code)
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, models.VoucherRedeemResponse{
		Code:        voucher.Code,
		PackageType: voucher.PackageType,
		Session:     models.SessionForPackage(voucher.PackageType),
	})
}

// ClaimFreeTrial hands out one free-trial voucher per device per 24 hours.
// The device id falls back to the client IP when the portal cannot supply one.
func (h *VoucherHandler) ClaimFreeTrial(c *fiber.Ctx) error {
	var req models.FreeTrialRequest
	// An empty or malformed body is fine; the IP fallback still applies.
	_ = c.BodyParser(&req)

	deviceID := req.DeviceID
	if deviceID == "" {
		deviceID = c.IP()
	}
	if deviceID == "" {
		return pkg.ErrorResponse(c, errors.NewBadRequestError("Unable to identify client"))
	}

	voucher, err := h.inventory.RegisterFreeTrial(c.Context(), deviceID)
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, models.FreeTrialResponse{
		Code: voucher.Code,
	})
}
