package models

import (
	"time"

	"github.com/google/uuid"
)

type VoucherStatus string

const (
	VoucherStatusUnused   VoucherStatus = "unused"
	VoucherStatusAssigned VoucherStatus = "assigned"
	VoucherStatusUsed     VoucherStatus = "used"
)

// Voucher is a single-use access credential tied to a package tier. It moves
// forward only: unused -> assigned -> used. An assigned or used voucher always
// carries the owning transaction tracking id (purchases) or device id (free
// trials).
type Voucher struct {
	ID            uuid.UUID     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Code          string        `gorm:"uniqueIndex" json:"code"`
	PackageType   string        `json:"package_type"`
	Status        VoucherStatus `json:"status"`
	TransactionID *string       `json:"transaction_id,omitempty"`
	DeviceID      *string       `json:"device_id,omitempty"`
	UsedAt        *time.Time    `json:"used_at,omitempty"`
	CreatedAt     time.Time     `gorm:"autoCreateTime" json:"created_at"`
}

type VoucherUploadRequest struct {
	Codes       []string `json:"codes" validate:"required,min=1,dive,min=1"`
	PackageType string   `json:"package_type" validate:"required,max=50"`
}

type VoucherUploadResponse struct {
	Inserted          int    `json:"inserted"`
	DuplicatesIgnored int    `json:"duplicates_ignored"`
	PackageType       string `json:"package_type"`
}

type VoucherRedeemRequest struct {
	Code string `json:"code" validate:"required,max=50"`
}

type VoucherRedeemResponse struct {
	Code        string  `json:"code"`
	PackageType string  `json:"package_type"`
	Session     Session `json:"session"`
}

type FreeTrialRequest struct {
	DeviceID string `json:"device_id"`
}

type FreeTrialResponse struct {
	Code string `json:"code"`
}
