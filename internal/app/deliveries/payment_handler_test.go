package deliveries

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/hotspotcentral/hotspot-core/internal/app/errors"
	"github.com/hotspotcentral/hotspot-core/internal/app/models"
	"github.com/hotspotcentral/hotspot-core/internal/app/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unknownTransactionInventory answers every lookup as "never seen", which
// drives reconciliation down its acknowledge-and-ignore path. The IPN contract
// under test is the transport one: HTTP 200 no matter what.
type unknownTransactionInventory struct{}

func (unknownTransactionInventory) FindCompletedByGatewayRef(ctx context.Context, gatewayRef string) (*models.Transaction, error) {
	return nil, nil
}

func (unknownTransactionInventory) FindTransactionByTrackingID(ctx context.Context, trackingID string) (*models.Transaction, error) {
	return nil, errors.NewNotFoundError("Transaction not found")
}

func (unknownTransactionInventory) ClaimVoucherAndComplete(ctx context.Context, merchantRef, gatewayRef, packageType string) (*models.Voucher, error) {
	return nil, services.ErrNoVoucherAvailable
}

type staticGateway struct{ status models.PaymentStatus }

func (g staticGateway) GetPaymentStatus(ctx context.Context, trackingRef string) (models.PaymentStatus, error) {
	return g.status, nil
}

type nopAlerts struct{}

func (nopAlerts) VoucherDepleted(ctx context.Context, packageType, merchantRef string) {}

type nopNotifier struct{}

func (nopNotifier) SendVoucher(ctx context.Context, email *string, phone, code, packageType string) error {
	return nil
}

func newIPNTestApp() *fiber.App {
	reconciler := services.NewReconciliationService(
		unknownTransactionInventory{},
		staticGateway{status: models.PaymentStatusSuccess},
		nopAlerts{},
		nopNotifier{},
	)
	handler := &PaymentHandler{reconciler: reconciler}

	app := fiber.New()
	app.Post("/api/payments/ipn", handler.HandleIPN)
	return app
}

func decodeAck(t *testing.T, resp *http.Response) models.IPNAck {
	t.Helper()
	var ack models.IPNAck
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&ack))
	return ack
}

func TestHandleIPNAcknowledgesQueryParameters(t *testing.T) {
	app := newIPNTestApp()

	req := httptest.NewRequest(http.MethodPost,
		"/api/payments/ipn?OrderTrackingId=pesapal-tx-1&OrderMerchantReference=TRK-ABC1&OrderNotificationType=IPNCHANGE", nil)

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	ack := decodeAck(t, resp)
	assert.Equal(t, http.StatusOK, ack.Status)
	assert.Equal(t, "pesapal-tx-1", ack.OrderTrackingID)
	assert.Equal(t, "TRK-ABC1", ack.OrderMerchantReference)
	assert.Equal(t, "IPNCHANGE", ack.NotificationType)
}

func TestHandleIPNAcknowledgesJSONBody(t *testing.T) {
	app := newIPNTestApp()

	body := `{"orderTrackingId":"pesapal-tx-1","order_merchant_reference":"TRK-ABC1"}`
	req := httptest.NewRequest(http.MethodPost, "/api/payments/ipn", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	ack := decodeAck(t, resp)
	assert.Equal(t, "pesapal-tx-1", ack.OrderTrackingID)
	assert.Equal(t, "TRK-ABC1", ack.OrderMerchantReference)
}

func TestHandleIPNAcknowledgesFormBody(t *testing.T) {
	app := newIPNTestApp()

	body := "OrderTrackingId=pesapal-tx-1&OrderMerchantReference=TRK-ABC1"
	req := httptest.NewRequest(http.MethodPost, "/api/payments/ipn", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	ack := decodeAck(t, resp)
	assert.Equal(t, "pesapal-tx-1", ack.OrderTrackingID)
	assert.Equal(t, "TRK-ABC1", ack.OrderMerchantReference)
}

func TestHandleIPNQueryParametersWinOverBody(t *testing.T) {
	app := newIPNTestApp()

	body := `{"orderTrackingId":"from-body"}`
	req := httptest.NewRequest(http.MethodPost,
		"/api/payments/ipn?orderTrackingId=from-query&orderMerchantReference=TRK-ABC1", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)

	ack := decodeAck(t, resp)
	assert.Equal(t, "from-query", ack.OrderTrackingID)
}

func TestHandleIPNAcknowledgesUnparseableDelivery(t *testing.T) {
	app := newIPNTestApp()

	req := httptest.NewRequest(http.MethodPost, "/api/payments/ipn", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	ack := decodeAck(t, resp)
	assert.Equal(t, "", ack.OrderTrackingID)
	assert.False(t, ack.VoucherAssigned)
}
