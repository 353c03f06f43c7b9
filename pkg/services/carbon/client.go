package carbon

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/rs/zerolog"

	"github.com/cloudcostchefs/GreenOps/pkg/models/api"
	"github.com/cloudcostchefs/GreenOps/pkg/services/config"
	"github.com/cloudcostchefs/GreenOps/pkg/services/credentials"
)

const (
	reportPath             = "/providers/Microsoft.Carbon/carbonEmissionReports"
	registrationAPIVersion = "2021-04-01"
)

// APIError is a non-2xx answer from the carbon endpoint. The raw body is kept
// verbatim; upstream denial reasons only appear there.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("carbon API request failed with status %d: %s", e.StatusCode, e.Body)
}

// Client issues management-plane requests against the Carbon Optimization
// API. There is no ARM SDK for Microsoft.Carbon, so requests go over plain
// HTTP with a bearer token from the resolved credential.
type Client struct {
	httpClient *http.Client
	cred       azcore.TokenCredential
	baseURL    string
	apiVersion string
}

// NewClient builds a carbon API client from the resolved credential and
// settings.
func NewClient(cred azcore.TokenCredential, settings config.Settings) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 120 * time.Second},
		cred:       cred,
		baseURL:    settings.BaseURL,
		apiVersion: settings.APIVersion,
	}
}

// APIVersion returns the report API version this client queries.
func (c *Client) APIVersion() string { return c.apiVersion }

// QueryReport POSTs one report query and decodes the response envelope.
func (c *Client) QueryReport(ctx context.Context, query api.ReportQuery) (*api.ReportResponse, error) {
	body, err := json.Marshal(query)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal report query: %w", err)
	}

	url := fmt.Sprintf("%s%s?api-version=%s", c.baseURL, reportPath, c.apiVersion)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create report request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	raw, err := c.do(ctx, req)
	if err != nil {
		return nil, err
	}

	var response api.ReportResponse
	if err := json.Unmarshal(raw, &response); err != nil {
		return nil, fmt.Errorf("failed to decode report response: %w", err)
	}
	return &response, nil
}

// ProviderRegistration checks whether the Microsoft.Carbon resource provider
// is registered for a subscription.
func (c *Client) ProviderRegistration(ctx context.Context, subscriptionID string) (*api.ProviderRegistration, error) {
	url := fmt.Sprintf("%s/subscriptions/%s/providers/Microsoft.Carbon?api-version=%s",
		c.baseURL, subscriptionID, registrationAPIVersion)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create registration request: %w", err)
	}

	raw, err := c.do(ctx, req)
	if err != nil {
		return nil, err
	}

	var registration api.ProviderRegistration
	if err := json.Unmarshal(raw, &registration); err != nil {
		return nil, fmt.Errorf("failed to decode registration response: %w", err)
	}
	return &registration, nil
}

func (c *Client) do(ctx context.Context, req *http.Request) ([]byte, error) {
	logger := zerolog.Ctx(ctx)

	token, err := credentials.BearerToken(ctx, c.cred)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("carbon API request failed: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Warn().Err(err).Msg("failed to close response body")
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read carbon API response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}
