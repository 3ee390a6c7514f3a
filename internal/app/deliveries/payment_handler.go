package deliveries

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/hotspotcentral/hotspot-core/internal/app/errors"
	"github.com/hotspotcentral/hotspot-core/internal/app/middlewares"
	"github.com/hotspotcentral/hotspot-core/internal/app/models"
	"github.com/hotspotcentral/hotspot-core/internal/app/pkg"
	"github.com/hotspotcentral/hotspot-core/internal/app/services"
	"github.com/sirupsen/logrus"
)

type PaymentHandler struct {
	checkoutService *services.CheckoutService
	reconciler      *services.ReconciliationService
	inventory       *services.InventoryService
	rateLimit       *middlewares.RateLimitMiddleware
}

func NewPaymentHandler(
	checkoutService *services.CheckoutService,
	reconciler *services.ReconciliationService,
	inventory *services.InventoryService,
	rateLimit *middlewares.RateLimitMiddleware,
) *PaymentHandler {
	return &PaymentHandler{
		checkoutService: checkoutService,
		reconciler:      reconciler,
		inventory:       inventory,
		rateLimit:       rateLimit,
	}
}

func (h *PaymentHandler) RegisterRoutes(router fiber.Router) {
	paymentGroup := router.Group("/api/payments")

	paymentGroup.Post("/checkout", h.rateLimit.LimitByIP(middlewares.CheckoutLimit), h.Checkout)
	paymentGroup.Get("/status", h.rateLimit.LimitByIP(middlewares.PublicAPILimit), h.GetStatus)

	// The IPN endpoint is never rate limited; dropped notifications would
	// only come back later as more retries.
	paymentGroup.Post("/ipn", h.HandleIPN)
}

func (h *PaymentHandler) Checkout(c *fiber.Ctx) error {
	var req models.CheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return pkg.ErrorResponse(c, errors.NewBadRequestError("Invalid request body"))
	}

	response, err := h.checkoutService.Checkout(c.Context(), &req)
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, response)
}

func (h *PaymentHandler) GetStatus(c *fiber.Ctx) error {
	trackingID := c.Query("tracking_id")
	if trackingID == "" {
		trackingID = c.Query("id")
	}
	if trackingID == "" {
		return pkg.ErrorResponse(c, errors.NewBadRequestError("Missing tracking_id"))
	}

	status, err := h.inventory.GetStatus(c.Context(), trackingID)
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, status)
}

// HandleIPN receives Pesapal's asynchronous payment notification. It always
// acknowledges with HTTP 200: the gateway retries on anything else, and a
// business-level outcome like "not yet paid" must not trigger a retry storm.
// Idempotent reconciliation makes the spurious retries that do happen safe.
func (h *PaymentHandler) HandleIPN(c *fiber.Ctx) error {
	notification := h.parseIPN(c)

	// The gateway's notification channel has no cancellation semantics, so
	// reconciliation runs on its own context rather than the request's.
	outcome, err := h.reconciler.Reconcile(context.Background(), notification)
	if err != nil {
		logrus.Errorf("IPN reconciliation error for %s: %v", notification.OrderTrackingID, err)
	}

	return c.Status(fiber.StatusOK).JSON(models.IPNAck{
		Status:                 fiber.StatusOK,
		OrderTrackingID:        outcome.OrderTrackingID,
		OrderMerchantReference: outcome.OrderMerchantReference,
		NotificationType:       outcome.NotificationType,
		PaymentStatus:          string(outcome.PaymentStatus),
		VoucherAssigned:        outcome.VoucherAssigned,
	})
}

// parseIPN extracts the correlation fields from wherever Pesapal put them:
// query string first, then JSON or form body, accepting the key-casing
// variants the gateway is known to send.
func (h *PaymentHandler) parseIPN(c *fiber.Ctx) models.IPNotification {
	var notification models.IPNotification
	notification.MergeIPNPairs(c.Queries())

	if notification.Complete() {
		return notification
	}

	body := c.Body()
	if len(body) == 0 {
		return notification
	}

	contentType := string(c.Request().Header.ContentType())
	if strings.Contains(contentType, "application/json") {
		var fields map[string]interface{}
		if err := json.Unmarshal(body, &fields); err != nil {
			logrus.Warnf("IPN JSON body unparseable: %v", err)
			return notification
		}
		pairs := make(map[string]string, len(fields))
		for key, value := range fields {
			if value == nil {
				continue
			}
			pairs[key] = fmt.Sprintf("%v", value)
		}
		notification.MergeIPNPairs(pairs)
		return notification
	}

	values, err := url.ParseQuery(string(body))
	if err != nil {
		logrus.Warnf("IPN form body unparseable: %v", err)
		return notification
	}
	pairs := make(map[string]string, len(values))
	for key := range values {
		pairs[key] = values.Get(key)
	}
	notification.MergeIPNPairs(pairs)
	return notification
}
