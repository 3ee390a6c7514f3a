package infrastructures

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

type PesapalConfig struct {
	ConsumerKey     string
	ConsumerSecret  string
	BaseURL         string
	IPNID           string
	CallbackBaseURL string
	// SuccessStatuses are the gateway status strings treated as paid.
	SuccessStatuses map[string]bool
}

// PesapalClient is the narrow HTTP client for the Pesapal v3 API. Business
// logic lives in services.PesapalService; this only carries connection
// configuration.
type PesapalClient struct {
	HTTPClient *http.Client
	Config     *PesapalConfig
}

// NewPesapalClient creates the Pesapal HTTP client from app configuration
func NewPesapalClient() *PesapalClient {
	successStatuses := map[string]bool{}
	for _, status := range strings.Split(Config.PESAPAL_SUCCESS_STATUSES, ",") {
		status = strings.ToUpper(strings.TrimSpace(status))
		if status != "" {
			successStatuses[status] = true
		}
	}

	config := &PesapalConfig{
		ConsumerKey:     Config.PESAPAL_CONSUMER_KEY,
		ConsumerSecret:  Config.PESAPAL_CONSUMER_SECRET,
		BaseURL:         Config.PESAPAL_BASE_URL,
		IPNID:           Config.PESAPAL_IPN_ID,
		CallbackBaseURL: Config.CALLBACK_BASE_URL,
		SuccessStatuses: successStatuses,
	}

	return &PesapalClient{
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		Config: config,
	}
}

// GetFullURL constructs the full URL for an endpoint
func (c *PesapalClient) GetFullURL(endpoint string) string {
	return fmt.Sprintf("%s%s", c.Config.BaseURL, endpoint)
}
