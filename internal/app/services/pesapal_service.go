package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hotspotcentral/hotspot-core/internal/app/errors"
	"github.com/hotspotcentral/hotspot-core/internal/app/models"
	"github.com/hotspotcentral/hotspot-core/internal/infrastructures"
	"github.com/hotspotcentral/hotspot-core/pkg/retry"
	"github.com/hotspotcentral/hotspot-core/pkg/tokencache"
	"github.com/sirupsen/logrus"
)

const (
	// Pesapal tokens live 60 minutes; caching for 50 keeps a token from
	// expiring mid-use.
	tokenCacheTTL = 50 * time.Minute

	statusAttempts       = 3
	statusBackoffStep    = 500 * time.Millisecond
	statusAttemptTimeout = 5 * time.Second
)

// failureStatuses are the gateway strings that mean the payment definitively
// did not happen. Everything else outside the success set stays PENDING.
var failureStatuses = map[string]bool{
	"FAILED":   true,
	"INVALID":  true,
	"REVERSED": true,
}

// PesapalService authenticates to Pesapal and queries payment status. The
// bearer token is shared through an injectable cache; concurrent refreshes
// overwrite each other harmlessly.
type PesapalService struct {
	client      *infrastructures.PesapalClient
	tokens      tokencache.Cache
	statusRetry retry.Policy
}

func NewPesapalService(client *infrastructures.PesapalClient, tokens tokencache.Cache) *PesapalService {
	return &PesapalService{
		client:      client,
		tokens:      tokens,
		statusRetry: retry.Linear(statusAttempts, statusBackoffStep),
	}
}

// GetToken returns the cached bearer token or fetches a fresh one from the
// authentication endpoint.
func (s *PesapalService) GetToken(ctx context.Context) (string, error) {
	if token, ok := s.tokens.Get(ctx); ok {
		return token, nil
	}

	logrus.Info("Fetching new Pesapal token")

	authReq := models.PesapalAuthRequest{
		ConsumerKey:    s.client.Config.ConsumerKey,
		ConsumerSecret: s.client.Config.ConsumerSecret,
	}

	var authResp models.PesapalAuthResponse
	if err := s.postJSON(ctx, "/Auth/RequestToken", "", authReq, &authResp); err != nil {
		return "", errors.NewInternalServerError(err, "Failed to authenticate with payment gateway")
	}
	if authResp.Token == "" {
		err := fmt.Errorf("pesapal auth response missing token: %s", authResp.Message)
		return "", errors.NewInternalServerError(err, "Failed to authenticate with payment gateway")
	}

	if err := s.tokens.Put(ctx, authResp.Token, tokenCacheTTL); err != nil {
		logrus.Warnf("Failed to cache Pesapal token: %v", err)
	}

	return authResp.Token, nil
}

// GetPaymentStatus queries the transaction status by the gateway tracking
// reference and normalizes it. Exhausted retries yield PENDING, not an
// error: an unknown status means "not yet confirmed", and the notification
// will be redelivered or re-polled.
func (s *PesapalService) GetPaymentStatus(ctx context.Context, trackingRef string) (models.PaymentStatus, error) {
	token, err := s.GetToken(ctx)
	if err != nil {
		return models.PaymentStatusPending, err
	}

	endpoint := fmt.Sprintf("/Transactions/GetTransactionStatus?orderTrackingId=%s", url.QueryEscape(trackingRef))

	var status models.PaymentStatus
	err = s.statusRetry.Run(ctx, func(ctx context.Context) error {
		attemptCtx, cancel := context.WithTimeout(ctx, statusAttemptTimeout)
		defer cancel()

		var statusResp models.PesapalStatusResponse
		if err := s.getJSON(attemptCtx, endpoint, token, &statusResp); err != nil {
			return err
		}
		status = s.normalizeStatus(statusResp.PaymentStatusDescription)
		return nil
	})
	if err != nil {
		logrus.Warnf("Pesapal status fetch failed for %s after %d attempts, defaulting to PENDING: %v", trackingRef, statusAttempts, err)
		return models.PaymentStatusPending, nil
	}

	return status, nil
}

func (s *PesapalService) normalizeStatus(raw string) models.PaymentStatus {
	raw = strings.ToUpper(strings.TrimSpace(raw))
	switch {
	case raw == "":
		return models.PaymentStatusPending
	case s.client.Config.SuccessStatuses[raw]:
		return models.PaymentStatusSuccess
	case failureStatuses[raw]:
		return models.PaymentStatusFailed
	default:
		return models.PaymentStatusPending
	}
}

// SubmitOrder registers a checkout order and returns the hosted-payment
// redirect URL.
func (s *PesapalService) SubmitOrder(ctx context.Context, order models.PesapalOrderRequest) (*models.PesapalOrderResponse, error) {
	token, err := s.GetToken(ctx)
	if err != nil {
		return nil, err
	}

	var orderResp models.PesapalOrderResponse
	if err := s.postJSON(ctx, "/Transactions/SubmitOrderRequest", token, order, &orderResp); err != nil {
		return nil, errors.NewInternalServerError(err, "Payment gateway did not respond correctly")
	}
	if orderResp.RedirectURL == "" {
		err := fmt.Errorf("pesapal order response missing redirect_url: %s", orderResp.Message)
		return nil, errors.NewInternalServerError(err, "Payment gateway did not respond correctly")
	}

	return &orderResp, nil
}

// RegisterIPN registers the notification callback URL with Pesapal. Only used
// by the env-gated admin endpoint.
func (s *PesapalService) RegisterIPN(ctx context.Context, ipnURL string) (*models.PesapalIPNRegisterResponse, error) {
	token, err := s.GetToken(ctx)
	if err != nil {
		return nil, err
	}

	registerReq := models.PesapalIPNRegisterRequest{
		URL:                 ipnURL,
		IPNNotificationType: "POST",
	}

	var registerResp models.PesapalIPNRegisterResponse
	if err := s.postJSON(ctx, "/URLSetup/RegisterIPN", token, registerReq, &registerResp); err != nil {
		return nil, errors.NewInternalServerError(err, "Failed to register IPN URL")
	}

	return &registerResp, nil
}

func (s *PesapalService) postJSON(ctx context.Context, endpoint, token string, payload, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.client.GetFullURL(endpoint), bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return s.doJSON(req, out)
}

func (s *PesapalService) getJSON(ctx context.Context, endpoint, token string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.client.GetFullURL(endpoint), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	return s.doJSON(req, out)
}

func (s *PesapalService) doJSON(req *http.Request, out interface{}) error {
	resp, err := s.client.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("pesapal API error: status %d, body: %s", resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	return nil
}
