package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hotspotcentral/hotspot-core/internal/app/models"
	"github.com/hotspotcentral/hotspot-core/internal/infrastructures"
	"github.com/hotspotcentral/hotspot-core/pkg/retry"
	"github.com/hotspotcentral/hotspot-core/pkg/tokencache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPesapalService(server *httptest.Server) *PesapalService {
	client := &infrastructures.PesapalClient{
		HTTPClient: server.Client(),
		Config: &infrastructures.PesapalConfig{
			ConsumerKey:    "test-key",
			ConsumerSecret: "test-secret",
			BaseURL:        server.URL,
			SuccessStatuses: map[string]bool{
				"COMPLETED": true,
				"SUCCESS":   true,
				"COMPLETE":  true,
			},
		},
	}
	service := NewPesapalService(client, tokencache.NewMemoryCache(nil))
	service.statusRetry = retry.None(statusAttempts)
	return service
}

func writeJSON(w http.ResponseWriter, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payload)
}

func TestGetTokenFetchesOnceThenServesFromCache(t *testing.T) {
	var authCalls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/Auth/RequestToken", r.URL.Path)
		atomic.AddInt32(&authCalls, 1)
		writeJSON(w, models.PesapalAuthResponse{Token: "bearer-1"})
	}))
	defer server.Close()

	service := newTestPesapalService(server)

	for i := 0; i < 3; i++ {
		token, err := service.GetToken(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "bearer-1", token)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&authCalls))
}

func TestGetTokenRefetchesAfterExpiry(t *testing.T) {
	var authCalls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&authCalls, 1)
		writeJSON(w, models.PesapalAuthResponse{Token: "bearer-1"})
	}))
	defer server.Close()

	now := time.Now()
	clock := func() time.Time { return now }
	client := &infrastructures.PesapalClient{
		HTTPClient: server.Client(),
		Config:     &infrastructures.PesapalConfig{BaseURL: server.URL, SuccessStatuses: map[string]bool{"COMPLETED": true}},
	}
	service := NewPesapalService(client, tokencache.NewMemoryCache(clock))

	_, err := service.GetToken(context.Background())
	require.NoError(t, err)

	// Still inside the 50 minute cache window.
	now = now.Add(49 * time.Minute)
	_, err = service.GetToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&authCalls))

	now = now.Add(2 * time.Minute)
	_, err = service.GetToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&authCalls))
}

func TestGetTokenMissingTokenIsAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, models.PesapalAuthResponse{Status: "500", Message: "invalid credentials"})
	}))
	defer server.Close()

	service := newTestPesapalService(server)

	_, err := service.GetToken(context.Background())
	assert.Error(t, err)
}

func TestGetPaymentStatusNormalization(t *testing.T) {
	tests := []struct {
		raw  string
		want models.PaymentStatus
	}{
		{"Completed", models.PaymentStatusSuccess},
		{"COMPLETED", models.PaymentStatusSuccess},
		{"success", models.PaymentStatusSuccess},
		{"Failed", models.PaymentStatusFailed},
		{"INVALID", models.PaymentStatusFailed},
		{"Reversed", models.PaymentStatusFailed},
		{"Pending", models.PaymentStatusPending},
		{"", models.PaymentStatusPending},
		{"SOMETHING_NEW", models.PaymentStatusPending},
	}

	for _, tc := range tests {
		t.Run("status "+tc.raw, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				switch r.URL.Path {
				case "/Auth/RequestToken":
					writeJSON(w, models.PesapalAuthResponse{Token: "bearer-1"})
				case "/Transactions/GetTransactionStatus":
					assert.Equal(t, "Bearer bearer-1", r.Header.Get("Authorization"))
					writeJSON(w, models.PesapalStatusResponse{PaymentStatusDescription: tc.raw})
				default:
					t.Errorf("unexpected path %s", r.URL.Path)
				}
			}))
			defer server.Close()

			service := newTestPesapalService(server)

			status, err := service.GetPaymentStatus(context.Background(), "pesapal-tx-1")
			require.NoError(t, err)
			assert.Equal(t, tc.want, status)
		})
	}
}

func TestGetPaymentStatusExhaustedRetriesDefaultToPending(t *testing.T) {
	var statusCalls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/Auth/RequestToken" {
			writeJSON(w, models.PesapalAuthResponse{Token: "bearer-1"})
			return
		}
		atomic.AddInt32(&statusCalls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	service := newTestPesapalService(server)

	status, err := service.GetPaymentStatus(context.Background(), "pesapal-tx-1")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPending, status)
	assert.Equal(t, int32(statusAttempts), atomic.LoadInt32(&statusCalls))
}

func TestGetPaymentStatusRecoversOnALaterAttempt(t *testing.T) {
	var statusCalls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/Auth/RequestToken" {
			writeJSON(w, models.PesapalAuthResponse{Token: "bearer-1"})
			return
		}
		if atomic.AddInt32(&statusCalls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		writeJSON(w, models.PesapalStatusResponse{PaymentStatusDescription: "Completed"})
	}))
	defer server.Close()

	service := newTestPesapalService(server)

	status, err := service.GetPaymentStatus(context.Background(), "pesapal-tx-1")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusSuccess, status)
	assert.Equal(t, int32(3), atomic.LoadInt32(&statusCalls))
}

func TestSubmitOrderReturnsRedirectURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/Auth/RequestToken":
			writeJSON(w, models.PesapalAuthResponse{Token: "bearer-1"})
		case "/Transactions/SubmitOrderRequest":
			var order models.PesapalOrderRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&order))
			assert.Equal(t, "TRK-ABC1", order.ID)
			assert.Equal(t, "UGX", order.Currency)
			writeJSON(w, models.PesapalOrderResponse{
				OrderTrackingID: "pesapal-tx-1",
				RedirectURL:     "https://pay.pesapal.com/iframe/abc",
			})
		}
	}))
	defer server.Close()

	service := newTestPesapalService(server)

	response, err := service.SubmitOrder(context.Background(), models.PesapalOrderRequest{
		ID:       "TRK-ABC1",
		Currency: "UGX",
		Amount:   500,
	})
	require.NoError(t, err)
	assert.Equal(t, "https://pay.pesapal.com/iframe/abc", response.RedirectURL)
	assert.Equal(t, "pesapal-tx-1", response.OrderTrackingID)
}

func TestSubmitOrderMissingRedirectURLIsAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/Auth/RequestToken" {
			writeJSON(w, models.PesapalAuthResponse{Token: "bearer-1"})
			return
		}
		writeJSON(w, models.PesapalOrderResponse{Message: "order rejected"})
	}))
	defer server.Close()

	service := newTestPesapalService(server)

	_, err := service.SubmitOrder(context.Background(), models.PesapalOrderRequest{ID: "TRK-ABC1"})
	assert.Error(t, err)
}

func TestRegisterIPN(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/Auth/RequestToken":
			writeJSON(w, models.PesapalAuthResponse{Token: "bearer-1"})
		case "/URLSetup/RegisterIPN":
			var registerReq models.PesapalIPNRegisterRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&registerReq))
			assert.Equal(t, "POST", registerReq.IPNNotificationType)
			writeJSON(w, models.PesapalIPNRegisterResponse{
				URL:   registerReq.URL,
				IPNID: "ipn-1",
			})
		}
	}))
	defer server.Close()

	service := newTestPesapalService(server)

	response, err := service.RegisterIPN(context.Background(), "https://wifi.example.com/api/payments/ipn")
	require.NoError(t, err)
	assert.Equal(t, "ipn-1", response.IPNID)
	assert.Equal(t, "https://wifi.example.com/api/payments/ipn", response.URL)
}
