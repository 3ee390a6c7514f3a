package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "PENDING"
	TransactionStatusCompleted TransactionStatus = "COMPLETED"
	TransactionStatusFailed    TransactionStatus = "FAILED"
)

// Transaction is a purchase attempt correlated by a merchant-chosen tracking
// id. COMPLETED and FAILED are terminal; a COMPLETED row always references
// exactly one assigned voucher and is never mutated again.
type Transaction struct {
	ID                   uuid.UUID         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	TrackingID           string            `gorm:"uniqueIndex" json:"tracking_id"`
	PesapalTransactionID *string           `json:"pesapal_transaction_id,omitempty"`
	PackageType          string            `json:"package_type"`
	Amount               decimal.Decimal   `gorm:"type:decimal(18,2)" json:"amount"`
	PhoneNumber          string            `json:"phone_number"`
	Email                *string           `json:"email,omitempty"`
	Status               TransactionStatus `json:"status"`
	VoucherID            *uuid.UUID        `json:"voucher_id,omitempty"`
	CreatedAt            time.Time         `gorm:"autoCreateTime" json:"created_at"`
	CompletedAt          *time.Time        `json:"completed_at,omitempty"`
}

type CheckoutRequest struct {
	PackageID string `json:"package_id" validate:"required"`
	Phone     string `json:"phone" validate:"required"`
	Email     string `json:"email" validate:"omitempty,email"`
}

type CheckoutResponse struct {
	TrackingID  string `json:"tracking_id"`
	RedirectURL string `json:"redirect_url"`
	Message     string `json:"message"`
}

// TransactionStatusResponse is the polling read for clients awaiting voucher
// delivery. Issue is only set when the row is COMPLETED but carries no
// voucher, which should never happen and needs operator attention.
type TransactionStatusResponse struct {
	TrackingID  string            `json:"tracking_id"`
	Status      TransactionStatus `json:"status"`
	VoucherCode *string           `json:"voucherCode"`
	PackageType string            `json:"package_type"`
	Amount      decimal.Decimal   `json:"amount"`
	Issue       string            `json:"issue,omitempty"`
}

type VoucherPollResponse struct {
	Status      string  `json:"status"`
	VoucherCode *string `json:"voucherCode,omitempty"`
	Package     string  `json:"package,omitempty"`
	TrackingID  string  `json:"trackingId"`
	Message     string  `json:"message,omitempty"`
	RetryAfter  int     `json:"retry_after,omitempty"`
}
