// Package serviceapi is a client for the business service API, the external
// collaborator that converts node responses into raw reward values.
package serviceapi

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog/log"

	"github.com/taoillium/bittensor-subnet-taoillium/internal/config"
)

// ServiceAPIInterface is the surface the validator uses.
type ServiceAPIInterface interface {
	ValidateNodes(req ValidateRequest) (ValidateResult, error)
}

// ServiceAPI is a retrying HTTP client for the service endpoints.
type ServiceAPI struct {
	client *retryablehttp.Client
	cfg    *config.ServiceAPIEnvConfig
}

// NewServiceAPI constructs the client. Transient failures are retried with
// backoff; the validator itself never retries on top of this.
func NewServiceAPI(cfg *config.ServiceAPIEnvConfig) (*ServiceAPI, error) {
	if cfg == nil {
		return nil, fmt.Errorf("service api env configuration cannot be nil")
	}

	client := retryablehttp.NewClient()
	client.RetryMax = cfg.ServiceAPIRetries
	client.HTTPClient.Timeout = cfg.ClientTimeout
	client.RetryWaitMin = 500 * time.Millisecond
	client.RetryWaitMax = 20 * time.Second
	client.Logger = nil

	return &ServiceAPI{
		client: client,
		cfg:    cfg,
	}, nil
}

// ValidateNodes posts the cycle's node responses and returns the per-UID
// reward values computed by the service.
func (s *ServiceAPI) ValidateNodes(req ValidateRequest) (ValidateResult, error) {
	body, err := s.doRequest(http.MethodPost, "/sapi/node/task/validate", req)
	if err != nil {
		return ValidateResult{}, err
	}

	var result ValidateResult
	if err := sonic.Unmarshal(body, &result); err != nil {
		return ValidateResult{}, fmt.Errorf("unmarshal validate response: %w", err)
	}
	if result.Error != "" {
		return result, fmt.Errorf("service api error: %s", result.Error)
	}
	return result, nil
}

func (s *ServiceAPI) doRequest(method, endpoint string, body interface{}) ([]byte, error) {
	url := s.cfg.ServiceAPIUrl + endpoint

	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := sonic.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewBuffer(jsonBody)
	}

	req, err := retryablehttp.NewRequest(method, url, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if s.cfg.ServiceAPIKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.cfg.ServiceAPIKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		log.Error().Err(err).Str("method", method).Str("url", url).Msg("service api request failed")
		return nil, fmt.Errorf("service api request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Error().Int("status", resp.StatusCode).Str("url", url).Str("body", string(respBody)).Msg("service api non-2xx")
		return nil, fmt.Errorf("service api returned status %d: %s", resp.StatusCode, string(respBody))
	}
	return respBody, nil
}
