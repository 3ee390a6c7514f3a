package services

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	"github.com/hotspotcentral/hotspot-core/internal/app/errors"
	"github.com/hotspotcentral/hotspot-core/internal/app/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Sentinel outcomes of the atomic claim. They are distinct from AppError
// because the reconciliation path absorbs them instead of surfacing HTTP
// failures.
var (
	// ErrNoVoucherAvailable means the pool had no unused voucher for the
	// package, or a concurrent claim won the race.
	ErrNoVoucherAvailable = stderrors.New("no unused voucher available")
	// ErrTransactionNotPending means another reconciliation finalized the
	// transaction first; the voucher claim has been rolled back.
	ErrTransactionNotPending = stderrors.New("transaction is not pending")
)

const freeTrialWindow = 24 * time.Hour

// InventoryService is the only place voucher and transaction state changes.
// Every mutation is a single conditional update (or one DB transaction around
// two of them) so concurrent claims can never both win.
type InventoryService struct {
	db *gorm.DB
}

func NewInventoryService(db *gorm.DB) *InventoryService {
	return &InventoryService{
		db: db,
	}
}

func (s *InventoryService) CreateTransaction(ctx context.Context, transaction *models.Transaction) error {
	if err := s.db.WithContext(ctx).Create(transaction).Error; err != nil {
		return errors.NewInternalServerError(err, "Failed to create transaction")
	}
	return nil
}

func (s *InventoryService) FindTransactionByTrackingID(ctx context.Context, trackingID string) (*models.Transaction, error) {
	var transaction models.Transaction
	err := s.db.WithContext(ctx).Where("tracking_id = ?", trackingID).First(&transaction).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.NewNotFoundError("Transaction not found")
		}
		return nil, errors.NewInternalServerError(err, "Failed to get transaction")
	}

	return &transaction, nil
}

// FindCompletedByGatewayRef is the idempotency pre-check for redelivered
// notifications. Returns (nil, nil) when no completed transaction carries the
// gateway reference.
func (s *InventoryService) FindCompletedByGatewayRef(ctx context.Context, gatewayRef string) (*models.Transaction, error) {
	var transaction models.Transaction
	err := s.db.WithContext(ctx).
		Where("pesapal_transaction_id = ? AND status = ?", gatewayRef, models.TransactionStatusCompleted).
		First(&transaction).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, errors.NewInternalServerError(err, "Failed to check transaction")
	}

	return &transaction, nil
}

func (s *InventoryService) CountUnused(ctx context.Context, packageType string) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Voucher{}).
		Where("package_type = ? AND status = ?", packageType, models.VoucherStatusUnused).
		Count(&count).Error
	if err != nil {
		return 0, errors.NewInternalServerError(err, "Failed to count vouchers")
	}
	return count, nil
}

// ClaimVoucherAndComplete assigns one unused voucher of the package to the
// merchant reference and finalizes the transaction, in one DB transaction.
// The `status = 'unused'` predicate inside the voucher update is what keeps
// two concurrent claims from taking the same row; the `status = 'PENDING'`
// predicate on the transaction update makes a lost finalize race roll the
// claim back instead of completing twice.
func (s *InventoryService) ClaimVoucherAndComplete(ctx context.Context, merchantRef, gatewayRef, packageType string) (*models.Voucher, error) {
	var claimed models.Voucher

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		oldest := tx.Model(&models.Voucher{}).
			Select("id").
			Where("package_type = ? AND status = ?", packageType, models.VoucherStatusUnused).
			Order("created_at").
			Limit(1)

		var vouchers []models.Voucher
		result := tx.Model(&vouchers).
			Clauses(clause.Returning{}).
			Where("id = (?)", oldest).
			Where("status = ?", models.VoucherStatusUnused).
			Updates(map[string]interface{}{
				"status":         models.VoucherStatusAssigned,
				"transaction_id": merchantRef,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNoVoucherAvailable
		}
		claimed = vouchers[0]

		now := time.Now()
		finalize := tx.Model(&models.Transaction{}).
			Where("tracking_id = ? AND status = ?", merchantRef, models.TransactionStatusPending).
			Updates(map[string]interface{}{
				"status":                 models.TransactionStatusCompleted,
				"voucher_id":             claimed.ID,
				"pesapal_transaction_id": gatewayRef,
				"completed_at":           now,
			})
		if finalize.Error != nil {
			return finalize.Error
		}
		if finalize.RowsAffected == 0 {
			return ErrTransactionNotPending
		}

		return nil
	})

	if err != nil {
		if stderrors.Is(err, ErrNoVoucherAvailable) || stderrors.Is(err, ErrTransactionNotPending) {
			return nil, err
		}
		return nil, errors.NewInternalServerError(err, "Failed to claim voucher")
	}

	return &claimed, nil
}

// MarkRedeemed transitions a voucher to used at network-login time. The
// conditional update is the serialization point: of two concurrent
// redemptions exactly one sees a non-used row.
func (s *InventoryService) MarkRedeemed(ctx context.Context, code string) (*models.Voucher, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	now := time.Now()

	var vouchers []models.Voucher
	result := s.db.WithContext(ctx).Model(&vouchers).
		Clauses(clause.Returning{}).
		Where("code = ?", code).
		Where("status IN ?", []models.VoucherStatus{models.VoucherStatusUnused, models.VoucherStatusAssigned}).
		Updates(map[string]interface{}{
			"status":  models.VoucherStatusUsed,
			"used_at": now,
		})
	if result.Error != nil {
		return nil, errors.NewInternalServerError(result.Error, "Failed to redeem voucher")
	}
	if result.RowsAffected == 0 {
		var existing models.Voucher
		err := s.db.WithContext(ctx).Where("code = ?", code).First(&existing).Error
		if err == gorm.ErrRecordNotFound {
			return nil, errors.NewNotFoundError("Voucher not found")
		}
		if err != nil {
			return nil, errors.NewInternalServerError(err, "Failed to redeem voucher")
		}
		return nil, errors.NewConflictError("Voucher has already been used")
	}

	return &vouchers[0], nil
}

// RegisterFreeTrial claims from the reserved free-trial pool. The NOT EXISTS
// predicate enforces the 24-hour-per-device window inside the same conditional
// update as the claim, so two rapid requests from one device cannot both win.
func (s *InventoryService) RegisterFreeTrial(ctx context.Context, deviceID string) (*models.Voucher, error) {
	if deviceID == "" {
		return nil, errors.NewBadRequestError("Unable to identify client")
	}

	now := time.Now()
	cutoff := now.Add(-freeTrialWindow)

	oldest := s.db.Model(&models.Voucher{}).
		Select("id").
		Where("package_type = ? AND status = ?", models.FreeTrialPackage, models.VoucherStatusUnused).
		Order("created_at").
		Limit(1)

	var vouchers []models.Voucher
	result := s.db.WithContext(ctx).Model(&vouchers).
		Clauses(clause.Returning{}).
		Where("id = (?)", oldest).
		Where("status = ?", models.VoucherStatusUnused).
		Where("NOT EXISTS (SELECT 1 FROM vouchers recent WHERE recent.device_id = ? AND recent.package_type = ? AND recent.created_at > ?)",
			deviceID, models.FreeTrialPackage, cutoff).
		Updates(map[string]interface{}{
			"status":    models.VoucherStatusAssigned,
			"device_id": deviceID,
			// The 24-hour lockout counts from this claim.
			"created_at": now,
		})
	if result.Error != nil {
		return nil, errors.NewInternalServerError(result.Error, "Failed to claim free trial voucher")
	}
	if result.RowsAffected > 0 {
		return &vouchers[0], nil
	}

	// Zero rows: either the device is inside its window or the pool is dry.
	// This lookup only picks the error message; the claim above already
	// decided atomically.
	var recent int64
	err := s.db.WithContext(ctx).Model(&models.Voucher{}).
		Where("device_id = ? AND package_type = ? AND created_at > ?", deviceID, models.FreeTrialPackage, cutoff).
		Count(&recent).Error
	if err != nil {
		return nil, errors.NewInternalServerError(err, "Failed to claim free trial voucher")
	}
	if recent > 0 {
		return nil, errors.NewForbiddenError("Free trial already claimed today. Try again in 24 hours.")
	}
	return nil, errors.NewNotFoundError("Free trial vouchers are out of stock. Please try later or purchase a bundle.")
}

// GetStatus is the polling read path. A COMPLETED transaction without a
// voucher violates the core invariant; it is flagged for operators but the
// request still succeeds.
func (s *InventoryService) GetStatus(ctx context.Context, trackingID string) (*models.TransactionStatusResponse, error) {
	var transaction models.Transaction
	err := s.db.WithContext(ctx).
		Where("tracking_id = ? OR pesapal_transaction_id = ?", trackingID, trackingID).
		First(&transaction).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.NewNotFoundError("Transaction not found")
		}
		return nil, errors.NewInternalServerError(err, "Failed to get transaction status")
	}

	response := &models.TransactionStatusResponse{
		TrackingID:  transaction.TrackingID,
		Status:      transaction.Status,
		PackageType: transaction.PackageType,
		Amount:      transaction.Amount,
	}

	if transaction.VoucherID != nil {
		var voucher models.Voucher
		if err := s.db.WithContext(ctx).Where("id = ?", *transaction.VoucherID).First(&voucher).Error; err == nil {
			response.VoucherCode = &voucher.Code
		}
	}

	if transaction.Status == models.TransactionStatusCompleted && response.VoucherCode == nil {
		logrus.Errorf("Transaction %s is COMPLETED but has no voucher assigned", transaction.TrackingID)
		response.Issue = "Transaction completed but voucher missing"
	}

	return response, nil
}

// BulkInsertVouchers loads a batch of codes into the unused pool. Codes are
// trimmed and uppercased; duplicates are skipped, not errors.
func (s *InventoryService) BulkInsertVouchers(ctx context.Context, codes []string, packageType string) (int, error) {
	packageType = strings.ToLower(strings.TrimSpace(packageType))

	vouchers := make([]models.Voucher, 0, len(codes))
	for _, code := range codes {
		code = strings.ToUpper(strings.TrimSpace(code))
		if code == "" {
			continue
		}
		vouchers = append(vouchers, models.Voucher{
			Code:        code,
			PackageType: packageType,
			Status:      models.VoucherStatusUnused,
		})
	}
	if len(vouchers) == 0 {
		return 0, errors.NewBadRequestError("No valid voucher codes provided")
	}

	result := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "code"}}, DoNothing: true}).
		Create(&vouchers)
	if result.Error != nil {
		return 0, errors.NewInternalServerError(result.Error, "Failed to upload vouchers")
	}

	return int(result.RowsAffected), nil
}
