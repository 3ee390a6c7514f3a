package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/hotspotcentral/hotspot-core/internal/infrastructures"
	"github.com/sirupsen/logrus"
)

// AlertService pushes operational alerts to Slack and email. Strictly best
// effort: a failed alert is logged and dropped, never propagated into the
// payment path.
type AlertService struct {
	httpClient *http.Client
	config     *infrastructures.AppConfig
}

func NewAlertService() *AlertService {
	return &AlertService{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		config: infrastructures.Config,
	}
}

func (s *AlertService) VoucherDepleted(ctx context.Context, packageType, merchantRef string) {
	timestamp := time.Now().UTC().Format(time.RFC3339)
	logrus.Errorf("ALERT VOUCHER_DEPLETED package=%s transaction=%s", packageType, merchantRef)

	if s.config.SLACK_WEBHOOK_URL != "" {
		if err := s.postSlack(ctx, packageType, merchantRef, timestamp); err != nil {
			logrus.Errorf("Slack alert failed: %v", err)
		}
	}

	if s.config.ALERT_EMAIL != "" && s.config.RESEND_API_KEY != "" {
		if err := s.postEmail(ctx, packageType, merchantRef, timestamp); err != nil {
			logrus.Errorf("Alert email failed: %v", err)
		}
	}
}

func (s *AlertService) postSlack(ctx context.Context, packageType, merchantRef, timestamp string) error {
	payload := map[string]interface{}{
		"text": "🚨 *VOUCHER_DEPLETED*",
		"blocks": []map[string]interface{}{
			{
				"type": "section",
				"text": map[string]string{
					"type": "mrkdwn",
					"text": fmt.Sprintf("*Alert Type:* VOUCHER_DEPLETED\n*Package:* %s\n*Transaction:* %s\n*Time:* %s",
						packageType, merchantRef, timestamp),
				},
			},
		},
	}
	return s.post(ctx, s.config.SLACK_WEBHOOK_URL, payload, "")
}

func (s *AlertService) postEmail(ctx context.Context, packageType, merchantRef, timestamp string) error {
	payload := map[string]interface{}{
		"from":    s.config.EMAIL_FROM,
		"to":      s.config.ALERT_EMAIL,
		"subject": "ALERT: VOUCHER_DEPLETED",
		"text": fmt.Sprintf("Voucher pool depleted.\nPackage: %s\nTransaction: %s\nTime: %s",
			packageType, merchantRef, timestamp),
	}
	return s.post(ctx, "https://api.resend.com/emails", payload, s.config.RESEND_API_KEY)
}

func (s *AlertService) post(ctx context.Context, endpoint string, payload interface{}, bearer string) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal alert payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to create alert request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("alert endpoint returned %d", resp.StatusCode)
	}
	return nil
}
