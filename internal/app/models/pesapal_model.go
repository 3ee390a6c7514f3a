package models

import (
	"strings"
)

// PaymentStatus is the normalized view of Pesapal's free-text
// payment_status_description. Anything the gateway reports that is not in the
// configured success set and not a known failure collapses to PENDING; an
// unknown status must never be treated as paid.
type PaymentStatus string

const (
	PaymentStatusSuccess PaymentStatus = "SUCCESS"
	PaymentStatusPending PaymentStatus = "PENDING"
	PaymentStatusFailed  PaymentStatus = "FAILED"
)

type PesapalAuthRequest struct {
	ConsumerKey    string `json:"consumer_key"`
	ConsumerSecret string `json:"consumer_secret"`
}

type PesapalAuthResponse struct {
	Token      string `json:"token"`
	ExpiryDate string `json:"expiryDate"`
	Status     string `json:"status"`
	Message    string `json:"message"`
}

type PesapalBillingAddress struct {
	PhoneNumber  string `json:"phone_number"`
	EmailAddress string `json:"email_address"`
}

type PesapalOrderRequest struct {
	ID             string                `json:"id"`
	Currency       string                `json:"currency"`
	Amount         float64               `json:"amount"`
	Description    string                `json:"description"`
	CallbackURL    string                `json:"callback_url"`
	NotificationID string                `json:"notification_id"`
	BillingAddress PesapalBillingAddress `json:"billing_address"`
}

type PesapalOrderResponse struct {
	OrderTrackingID string `json:"order_tracking_id"`
	RedirectURL     string `json:"redirect_url"`
	Status          string `json:"status"`
	Message         string `json:"message"`
}

type PesapalStatusResponse struct {
	PaymentStatusDescription string `json:"payment_status_description"`
	PaymentMethod            string `json:"payment_method"`
	Amount                   any    `json:"amount"`
	MerchantReference        string `json:"merchant_reference"`
}

type PesapalIPNRegisterRequest struct {
	URL                 string `json:"url"`
	IPNNotificationType string `json:"ipn_notification_type"`
}

type PesapalIPNRegisterResponse struct {
	URL       string `json:"url"`
	IPNID     string `json:"ipn_id"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_date"`
}

// IPNotification is the normalized asynchronous payment notification.
// OrderMerchantReference equals our internal tracking id.
type IPNotification struct {
	OrderTrackingID        string `json:"orderTrackingId"`
	OrderMerchantReference string `json:"orderMerchantReference"`
	OrderNotificationType  string `json:"notificationType,omitempty"`
}

func (n IPNotification) Complete() bool {
	return n.OrderTrackingID != "" && n.OrderMerchantReference != ""
}

// canonicalIPNKey folds the field-name variants Pesapal has been observed to
// send (OrderTrackingId, orderTrackingId, order_tracking_id, ...) onto one
// comparable form.
func canonicalIPNKey(key string) string {
	key = strings.ToLower(key)
	key = strings.ReplaceAll(key, "_", "")
	key = strings.ReplaceAll(key, "-", "")
	return key
}

// MergeIPNPairs fills any still-empty notification fields from a set of
// key/value pairs, matching keys case- and underscore-insensitively. Callers
// layer query parameters first, then the request body.
func (n *IPNotification) MergeIPNPairs(pairs map[string]string) {
	for key, value := range pairs {
		if value == "" {
			continue
		}
		switch canonicalIPNKey(key) {
		case "ordertrackingid":
			if n.OrderTrackingID == "" {
				n.OrderTrackingID = value
			}
		case "ordermerchantreference":
			if n.OrderMerchantReference == "" {
				n.OrderMerchantReference = value
			}
		case "ordernotificationtype":
			if n.OrderNotificationType == "" {
				n.OrderNotificationType = value
			}
		}
	}
}

// IPNAck is echoed back for every parseable notification so the gateway stops
// redelivering, regardless of the business outcome.
type IPNAck struct {
	Status                 int    `json:"status"`
	OrderTrackingID        string `json:"orderTrackingId"`
	OrderMerchantReference string `json:"orderMerchantReference"`
	NotificationType       string `json:"notificationType,omitempty"`
	PaymentStatus          string `json:"paymentStatus,omitempty"`
	VoucherAssigned        bool   `json:"voucherAssigned"`
}
