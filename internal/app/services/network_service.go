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
	"github.com/sirupsen/logrus"
)

// NetworkService provisions hotspot users on the MikroTik router over its
// REST API. The router profile names mirror the package codes.
type NetworkService struct {
	httpClient *http.Client
	config     *infrastructures.AppConfig
	validator  *infrastructures.Validator
}

func NewNetworkService(validator *infrastructures.Validator) *NetworkService {
	return &NetworkService{
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		config:    infrastructures.Config,
		validator: validator,
	}
}

func (s *NetworkService) CreateHotspotUser(ctx context.Context, req *models.HotspotUserRequest) (*models.HotspotUserResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if s.config.MIKROTIK_ADDRESS == "" || s.config.MIKROTIK_API_PASSWORD == "" {
		missing := fmt.Errorf("mikrotik credentials not configured")
		return nil, errors.NewInternalServerError(missing, "Router API not configured")
	}

	profile := models.SessionForPackage(strings.ToLower(req.PackageType)).Profile

	exists, err := s.userExists(ctx, req.Username)
	if err != nil {
		return nil, errors.NewInternalServerError(err, "Failed to query router")
	}
	if exists {
		logrus.Infof("Hotspot user %s already exists on router", req.Username)
		return &models.HotspotUserResponse{Username: req.Username, Profile: profile, Created: false}, nil
	}

	payload := map[string]string{
		"name":     req.Username,
		"password": req.Password,
		"profile":  profile,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.NewInternalServerError(err, "Failed to build router request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPut, s.endpoint("/rest/ip/hotspot/user"), bytes.NewBuffer(body))
	if err != nil {
		return nil, errors.NewInternalServerError(err, "Failed to build router request")
	}
	httpReq.SetBasicAuth(s.config.MIKROTIK_API_USER, s.config.MIKROTIK_API_PASSWORD)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		return nil, errors.NewInternalServerError(err, "Failed to reach router")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		apiErr := fmt.Errorf("router returned %d: %s", resp.StatusCode, string(respBody))
		return nil, errors.NewInternalServerError(apiErr, "Router rejected the user")
	}

	logrus.Infof("Hotspot user %s created with profile %s", req.Username, profile)
	return &models.HotspotUserResponse{Username: req.Username, Profile: profile, Created: true}, nil
}

func (s *NetworkService) userExists(ctx context.Context, username string) (bool, error) {
	endpoint := fmt.Sprintf("%s?name=%s", s.endpoint("/rest/ip/hotspot/user"), url.QueryEscape(username))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false, err
	}
	req.SetBasicAuth(s.config.MIKROTIK_API_USER, s.config.MIKROTIK_API_PASSWORD)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, err
	}
	if resp.StatusCode >= 300 {
		return false, fmt.Errorf("router returned %d: %s", resp.StatusCode, string(body))
	}

	var users []map[string]interface{}
	if err := json.Unmarshal(body, &users); err != nil {
		return false, fmt.Errorf("failed to parse router response: %w", err)
	}
	return len(users) > 0, nil
}

func (s *NetworkService) endpoint(path string) string {
	return fmt.Sprintf("http://%s%s", s.config.MIKROTIK_ADDRESS, path)
}
