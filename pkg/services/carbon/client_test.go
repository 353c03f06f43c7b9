package carbon

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudcostchefs/GreenOps/pkg/models/api"
	"github.com/cloudcostchefs/GreenOps/pkg/models/domain"
	"github.com/cloudcostchefs/GreenOps/pkg/services/config"
)

type staticCredential struct {
	token string
}

func (c staticCredential) GetToken(context.Context, policy.TokenRequestOptions) (azcore.AccessToken, error) {
	return azcore.AccessToken{Token: c.token, ExpiresOn: time.Now().Add(time.Hour)}, nil
}

func newTestClient(serverURL string) *Client {
	return NewClient(staticCredential{token: "test-token"}, config.Settings{
		BaseURL:    serverURL,
		APIVersion: "2025-04-01",
	})
}

func TestQueryReport(t *testing.T) {
	var gotRequest *http.Request
	var gotBody []byte

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotRequest = r
		gotBody, _ = io.ReadAll(r.Body)
		_, _ = w.Write([]byte(`{"value":[{"dataType":"OverallSummaryData"}],"skipToken":"next"}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	query := api.BuildReportQuery(domain.ReportOverallSummary, []string{"sub-a"},
		domain.DateRange{Start: "2025-03-01", End: "2025-04-01"}, false)

	response, err := client.QueryReport(context.Background(), query)
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, gotRequest.Method)
	assert.Equal(t, "/providers/Microsoft.Carbon/carbonEmissionReports", gotRequest.URL.Path)
	assert.Equal(t, "2025-04-01", gotRequest.URL.Query().Get("api-version"))
	assert.Equal(t, "Bearer test-token", gotRequest.Header.Get("Authorization"))
	assert.Equal(t, "application/json", gotRequest.Header.Get("Content-Type"))

	var payload map[string]any
	require.NoError(t, json.Unmarshal(gotBody, &payload))
	assert.Equal(t, "OverallSummaryReport", payload["reportType"])

	assert.Len(t, response.Value, 1)
	assert.Equal(t, "next", response.SkipToken)
}

func TestQueryReport_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"code":"AuthorizationFailed"}}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	query := api.BuildReportQuery(domain.ReportOverallSummary, []string{"sub-a"},
		domain.DateRange{Start: "2025-03-01", End: "2025-03-01"}, false)

	_, err := client.QueryReport(context.Background(), query)
	require.Error(t, err)

	apiErr, ok := err.(*APIError)
	require.True(t, ok)
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	assert.Contains(t, apiErr.Body, "AuthorizationFailed", "the raw body must survive for classification")
}

func TestProviderRegistration(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/subscriptions/sub-a/providers/Microsoft.Carbon", r.URL.Path)
		assert.Equal(t, "2021-04-01", r.URL.Query().Get("api-version"))
		_, _ = w.Write([]byte(`{"namespace":"Microsoft.Carbon","registrationState":"Registered"}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	registration, err := client.ProviderRegistration(context.Background(), "sub-a")
	require.NoError(t, err)
	assert.Equal(t, "Registered", registration.RegistrationState)
}
