package services

import (
	"context"
	stderrors "errors"
	"time"

	appErrors "github.com/hotspotcentral/hotspot-core/internal/app/errors"
	"github.com/hotspotcentral/hotspot-core/internal/app/models"
	"github.com/hotspotcentral/hotspot-core/pkg/retry"
	"github.com/sirupsen/logrus"
)

const (
	claimAttempts   = 6
	claimRetryDelay = 3 * time.Second
)

// Inventory is the slice of the store the reconciliation engine mutates
// through. Implemented by InventoryService.
type Inventory interface {
	FindCompletedByGatewayRef(ctx context.Context, gatewayRef string) (*models.Transaction, error)
	FindTransactionByTrackingID(ctx context.Context, trackingID string) (*models.Transaction, error)
	ClaimVoucherAndComplete(ctx context.Context, merchantRef, gatewayRef, packageType string) (*models.Voucher, error)
}

// StatusFetcher confirms payment state against the gateway, the source of
// truth. Implemented by PesapalService.
type StatusFetcher interface {
	GetPaymentStatus(ctx context.Context, trackingRef string) (models.PaymentStatus, error)
}

// AlertSink delivers operational alerts. Best effort: implementations log and
// swallow their own failures.
type AlertSink interface {
	VoucherDepleted(ctx context.Context, packageType, merchantRef string)
}

// CustomerNotifier delivers the voucher code to the customer. Failures never
// affect the assignment.
type CustomerNotifier interface {
	SendVoucher(ctx context.Context, email *string, phone, code, packageType string) error
}

// ReconcileOutcome is always returned to the notification handler, even when
// reconciliation went nowhere, because the HTTP acknowledgment is what stops
// the gateway's redelivery loop.
type ReconcileOutcome struct {
	OrderTrackingID        string
	OrderMerchantReference string
	NotificationType       string
	PaymentStatus          models.PaymentStatus
	VoucherAssigned        bool
	AlreadyProcessed       bool
}

// ReconciliationService turns asynchronous payment notifications into voucher
// assignments. It tolerates duplicate and concurrent deliveries: the
// idempotency pre-check catches redeliveries cheaply, and the store's atomic
// claim guarantees at most one winner when the check races.
type ReconciliationService struct {
	inventory  Inventory
	gateway    StatusFetcher
	alerts     AlertSink
	notifier   CustomerNotifier
	claimRetry retry.Policy
}

func NewReconciliationService(inventory Inventory, gateway StatusFetcher, alerts AlertSink, notifier CustomerNotifier) *ReconciliationService {
	return &ReconciliationService{
		inventory:  inventory,
		gateway:    gateway,
		alerts:     alerts,
		notifier:   notifier,
		claimRetry: retry.Fixed(claimAttempts, claimRetryDelay),
	}
}

// Reconcile processes one notification delivery. The returned outcome is
// valid even when err is non-nil; callers acknowledge regardless and rely on
// the idempotency check to keep redeliveries safe.
func (s *ReconciliationService) Reconcile(ctx context.Context, notification models.IPNotification) (*ReconcileOutcome, error) {
	outcome := &ReconcileOutcome{
		OrderTrackingID:        notification.OrderTrackingID,
		OrderMerchantReference: notification.OrderMerchantReference,
		NotificationType:       notification.OrderNotificationType,
		PaymentStatus:          models.PaymentStatusPending,
	}

	if !notification.Complete() {
		logrus.Warnf("IPN missing required fields, acknowledging without processing: trackingId=%q merchantRef=%q",
			notification.OrderTrackingID, notification.OrderMerchantReference)
		return outcome, nil
	}

	// Idempotency: a redelivered notification for an already-completed
	// payment is a no-op before we even talk to the gateway.
	existing, err := s.inventory.FindCompletedByGatewayRef(ctx, notification.OrderTrackingID)
	if err != nil {
		return outcome, err
	}
	if existing != nil {
		logrus.Infof("IPN already processed for Pesapal transaction %s", notification.OrderTrackingID)
		outcome.AlreadyProcessed = true
		outcome.PaymentStatus = models.PaymentStatusSuccess
		return outcome, nil
	}

	// Re-verify against the gateway; client-supplied status claims are never
	// trusted. A fetch failure counts as PENDING and waits for redelivery.
	status, err := s.gateway.GetPaymentStatus(ctx, notification.OrderTrackingID)
	if err != nil {
		logrus.Warnf("Payment status confirmation failed for %s, awaiting redelivery: %v", notification.OrderTrackingID, err)
		return outcome, nil
	}
	outcome.PaymentStatus = status
	if status != models.PaymentStatusSuccess {
		logrus.Infof("Payment not completed for %s: %s (notification type %s)",
			notification.OrderMerchantReference, status, notification.OrderNotificationType)
		return outcome, nil
	}

	transaction, err := s.inventory.FindTransactionByTrackingID(ctx, notification.OrderMerchantReference)
	if err != nil {
		var appErr *appErrors.AppError
		if stderrors.As(err, &appErr) && appErr.StatusCode == 404 {
			logrus.Warnf("IPN for unknown transaction %s", notification.OrderMerchantReference)
			return outcome, nil
		}
		return outcome, err
	}
	if transaction.Status == models.TransactionStatusCompleted {
		logrus.Infof("Transaction already completed: %s", notification.OrderMerchantReference)
		outcome.AlreadyProcessed = true
		return outcome, nil
	}

	voucher, err := s.claimWithRetry(ctx, notification, transaction.PackageType)
	if err != nil {
		if stderrors.Is(err, ErrTransactionNotPending) {
			// A concurrent reconciliation finalized it first.
			outcome.AlreadyProcessed = true
			return outcome, nil
		}
		if stderrors.Is(err, ErrNoVoucherAvailable) {
			logrus.Errorf("No unused vouchers after %d retries for package %s (transaction %s)",
				claimAttempts, transaction.PackageType, notification.OrderMerchantReference)
			s.alerts.VoucherDepleted(ctx, transaction.PackageType, notification.OrderMerchantReference)
			return outcome, nil
		}
		return outcome, err
	}

	outcome.VoucherAssigned = true
	logrus.Infof("Voucher %s assigned to transaction %s", voucher.Code, notification.OrderMerchantReference)

	// Fire and forget: the voucher is already issued and retrievable through
	// status polling whether or not delivery succeeds. The notification
	// channel offers no cancellation, hence the fresh context.
	go func(email *string, phone, code, packageType string) {
		if err := s.notifier.SendVoucher(context.Background(), email, phone, code, packageType); err != nil {
			logrus.Errorf("Customer notification failed for voucher %s: %v", code, err)
		}
	}(transaction.Email, transaction.PhoneNumber, voucher.Code, transaction.PackageType)

	return outcome, nil
}

// claimWithRetry tolerates a momentarily empty pool: a bounded number of
// real-delay attempts gives a concurrently-committing replenishment a chance
// to land before the transaction is left PENDING for a later redelivery.
func (s *ReconciliationService) claimWithRetry(ctx context.Context, notification models.IPNotification, packageType string) (*models.Voucher, error) {
	var voucher *models.Voucher
	err := s.claimRetry.Run(ctx, func(ctx context.Context) error {
		claimed, err := s.inventory.ClaimVoucherAndComplete(ctx,
			notification.OrderMerchantReference, notification.OrderTrackingID, packageType)
		if err != nil {
			if stderrors.Is(err, ErrTransactionNotPending) {
				// Terminal, no point waiting out the remaining attempts.
				return retry.Abort(err)
			}
			return err
		}
		voucher = claimed
		return nil
	})
	if err != nil {
		return nil, err
	}
	return voucher, nil
}
