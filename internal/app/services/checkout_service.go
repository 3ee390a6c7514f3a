package services

import (
	"context"
	"fmt"

	"github.com/hotspotcentral/hotspot-core/internal/app/errors"
	"github.com/hotspotcentral/hotspot-core/internal/app/models"
	"github.com/hotspotcentral/hotspot-core/internal/app/pkg"
	"github.com/hotspotcentral/hotspot-core/internal/infrastructures"
	"github.com/sirupsen/logrus"
)

// CheckoutService creates the PENDING transaction and hands the customer to
// the hosted payment page. Reconciliation picks up from the notification the
// gateway sends afterwards.
type CheckoutService struct {
	inventory *InventoryService
	pesapal   *PesapalService
	validator *infrastructures.Validator
}

func NewCheckoutService(inventory *InventoryService, pesapal *PesapalService, validator *infrastructures.Validator) *CheckoutService {
	return &CheckoutService{
		inventory: inventory,
		pesapal:   pesapal,
		validator: validator,
	}
}

func (s *CheckoutService) Checkout(ctx context.Context, req *models.CheckoutRequest) (*models.CheckoutResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	selected, ok := models.FindPackage(req.PackageID)
	if !ok {
		return nil, errors.NewBadRequestError(fmt.Sprintf("Invalid package (%s) selected. Please refresh and try again.", req.PackageID))
	}

	// Refuse checkout up front when the pool is dry; taking money for a
	// voucher that cannot be assigned just creates stuck PENDING rows.
	stock, err := s.inventory.CountUnused(ctx, selected.Code)
	if err != nil {
		return nil, err
	}
	if stock == 0 {
		return nil, errors.NewBadRequestError("Sorry, vouchers for this package are currently out of stock. Try another package or contact support.")
	}

	phone := pkg.NormalizePhone(req.Phone)
	if !pkg.IsValidUgandanPhone(phone) {
		return nil, errors.NewBadRequestError("Please enter a valid Ugandan phone number (e.g., 0771999302).")
	}

	trackingID := pkg.NewTrackingID()

	transaction := &models.Transaction{
		TrackingID:  trackingID,
		PackageType: selected.Code,
		Amount:      selected.PriceUGX,
		PhoneNumber: phone,
		Status:      models.TransactionStatusPending,
	}
	if req.Email != "" {
		email := req.Email
		transaction.Email = &email
	}
	if err := s.inventory.CreateTransaction(ctx, transaction); err != nil {
		return nil, err
	}

	email := req.Email
	if email == "" {
		email = fmt.Sprintf("customer-%s@hotspotcentral.com", trackingID)
	}

	order := models.PesapalOrderRequest{
		ID:             trackingID,
		Currency:       "UGX",
		Amount:         selected.PriceUGX.InexactFloat64(),
		Description:    fmt.Sprintf("HotSpotCentral - %s", selected.Code),
		CallbackURL:    fmt.Sprintf("%s/payment-success.html?tracking_id=%s", s.pesapal.client.Config.CallbackBaseURL, trackingID),
		NotificationID: s.pesapal.client.Config.IPNID,
		BillingAddress: models.PesapalBillingAddress{
			PhoneNumber:  phone,
			EmailAddress: email,
		},
	}

	orderResp, err := s.pesapal.SubmitOrder(ctx, order)
	if err != nil {
		return nil, err
	}

	logrus.Infof("Checkout %s submitted for package %s", trackingID, selected.Code)

	return &models.CheckoutResponse{
		TrackingID:  trackingID,
		RedirectURL: orderResp.RedirectURL,
		Message:     "Redirecting to payment gateway...",
	}, nil
}
