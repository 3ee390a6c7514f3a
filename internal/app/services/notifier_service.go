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

	"github.com/hotspotcentral/hotspot-core/internal/infrastructures"
	"github.com/sirupsen/logrus"
)

// NotifierService delivers voucher codes over email (Resend) and SMS
// (Africa's Talking). Callers treat delivery as best effort; the voucher
// stays retrievable through status polling either way.
type NotifierService struct {
	httpClient *http.Client
	config     *infrastructures.AppConfig
}

func NewNotifierService() *NotifierService {
	return &NotifierService{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		config: infrastructures.Config,
	}
}

func (s *NotifierService) SendVoucher(ctx context.Context, email *string, phone, code, packageType string) error {
	if (email == nil || *email == "") && phone == "" {
		logrus.Warnf("No contact info for voucher %s, skipping customer notification", code)
		return nil
	}

	var firstErr error

	if email != nil && *email != "" && s.config.RESEND_API_KEY != "" {
		if err := s.sendEmail(ctx, *email, code, packageType); err != nil {
			logrus.Errorf("Voucher email to %s failed: %v", *email, err)
			firstErr = err
		}
	}

	if phone != "" && s.config.SMS_API_KEY != "" {
		if err := s.sendSMS(ctx, phone, code, packageType); err != nil {
			logrus.Errorf("Voucher SMS to %s failed: %v", phone, err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	return firstErr
}

func (s *NotifierService) sendEmail(ctx context.Context, to, code, packageType string) error {
	payload := map[string]interface{}{
		"from":    s.config.EMAIL_FROM,
		"to":      to,
		"subject": "Your Hotspot Voucher Code",
		"html": fmt.Sprintf(
			"<h2>Payment Successful!</h2>"+
				"<p>Thank you for your purchase. Here is your hotspot voucher code:</p>"+
				"<h3 style=\"background: #f4f4f4; padding: 10px; font-family: monospace;\">%s</h3>"+
				"<p><strong>Package:</strong> %s</p>"+
				"<p>Connect to the hotspot and enter this code to activate your internet access.</p>",
			code, packageType),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal email payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, "https://api.resend.com/emails", bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to create email request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.config.RESEND_API_KEY)
	req.Header.Set("Content-Type", "application/json")

	return s.send(req)
}

func (s *NotifierService) sendSMS(ctx context.Context, phone, code, packageType string) error {
	form := url.Values{}
	form.Set("username", s.config.SMS_USERNAME)
	form.Set("to", phone)
	form.Set("message", fmt.Sprintf("Your hotspot voucher code: %s. Package: %s. Enter this code to connect.", code, packageType))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.SMS_API_URL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create SMS request: %w", err)
	}
	req.Header.Set("apiKey", s.config.SMS_API_KEY)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	return s.send(req)
}

func (s *NotifierService) send(req *http.Request) error {
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("notification provider returned %d: %s", resp.StatusCode, string(body))
	}
	return nil
}
