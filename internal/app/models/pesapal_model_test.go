package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMergeIPNPairsAcceptsFieldNameVariants(t *testing.T) {
	tests := []struct {
		name  string
		pairs map[string]string
	}{
		{"camel case", map[string]string{
			"orderTrackingId":        "pesapal-tx-1",
			"orderMerchantReference": "TRK-ABC1",
			"orderNotificationType":  "IPNCHANGE",
		}},
		{"pascal case", map[string]string{
			"OrderTrackingId":        "pesapal-tx-1",
			"OrderMerchantReference": "TRK-ABC1",
			"OrderNotificationType":  "IPNCHANGE",
		}},
		{"snake case", map[string]string{
			"order_tracking_id":        "pesapal-tx-1",
			"order_merchant_reference": "TRK-ABC1",
			"order_notification_type":  "IPNCHANGE",
		}},
		{"upper snake", map[string]string{
			"ORDER_TRACKING_ID":        "pesapal-tx-1",
			"ORDER_MERCHANT_REFERENCE": "TRK-ABC1",
			"ORDER_NOTIFICATION_TYPE":  "IPNCHANGE",
		}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var n IPNotification
			n.MergeIPNPairs(tc.pairs)

			assert.Equal(t, "pesapal-tx-1", n.OrderTrackingID)
			assert.Equal(t, "TRK-ABC1", n.OrderMerchantReference)
			assert.Equal(t, "IPNCHANGE", n.OrderNotificationType)
			assert.True(t, n.Complete())
		})
	}
}

func TestMergeIPNPairsDoesNotOverwriteExistingFields(t *testing.T) {
	n := IPNotification{OrderTrackingID: "from-query"}

	n.MergeIPNPairs(map[string]string{
		"orderTrackingId":        "from-body",
		"orderMerchantReference": "TRK-ABC1",
	})

	assert.Equal(t, "from-query", n.OrderTrackingID)
	assert.Equal(t, "TRK-ABC1", n.OrderMerchantReference)
}

func TestMergeIPNPairsSkipsEmptyValuesAndUnknownKeys(t *testing.T) {
	var n IPNotification

	n.MergeIPNPairs(map[string]string{
		"orderTrackingId": "",
		"someOtherField":  "ignored",
	})

	assert.Equal(t, "", n.OrderTrackingID)
	assert.False(t, n.Complete())
}

func TestIPNotificationComplete(t *testing.T) {
	assert.False(t, IPNotification{}.Complete())
	assert.False(t, IPNotification{OrderTrackingID: "pesapal-tx-1"}.Complete())
	assert.False(t, IPNotification{OrderMerchantReference: "TRK-ABC1"}.Complete())
	assert.True(t, IPNotification{
		OrderTrackingID:        "pesapal-tx-1",
		OrderMerchantReference: "TRK-ABC1",
	}.Complete())
}
