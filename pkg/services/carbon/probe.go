package carbon

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/cloudcostchefs/GreenOps/pkg/models/api"
	"github.com/cloudcostchefs/GreenOps/pkg/models/domain"
)

const decisionAllowed = "Allowed"

// ReportAPI is the slice of the carbon client the probe and fetcher consume.
type ReportAPI interface {
	QueryReport(ctx context.Context, query api.ReportQuery) (*api.ReportResponse, error)
}

// ProbeResult partitions the candidate accounts by carbon API accessibility.
type ProbeResult struct {
	Accessible []domain.Account
	Denied     []domain.Account
	Decisions  []domain.AccessDecision
}

// Probe classifies each candidate account as carbon-API-accessible or denied
// by issuing one minimal overall-summary query per account. Calls are paced
// by the injected limiter; the upstream rate limit is undocumented but real.
type Probe struct {
	client  ReportAPI
	limiter *rate.Limiter
}

// NewProbe creates a capability probe. A nil limiter disables pacing.
func NewProbe(client ReportAPI, limiter *rate.Limiter) *Probe {
	return &Probe{client: client, limiter: limiter}
}

// Probe checks every account with a single attempt each; probe failures are
// classifications, not errors. Only context cancellation aborts the sweep.
func (p *Probe) Probe(ctx context.Context, accounts []domain.Account, dr domain.DateRange) (*ProbeResult, error) {
	logger := zerolog.Ctx(ctx)
	result := &ProbeResult{}

	for _, account := range accounts {
		if p.limiter != nil {
			if err := p.limiter.Wait(ctx); err != nil {
				return nil, fmt.Errorf("probe cancelled: %w", err)
			}
		}

		decision := p.probeOne(ctx, account, dr)
		result.Decisions = append(result.Decisions, decision)
		if decision.Allowed {
			result.Accessible = append(result.Accessible, account)
			logger.Debug().Str("subscription", account.ID).Msg("carbon API accessible")
		} else {
			result.Denied = append(result.Denied, account)
			logger.Warn().
				Str("subscription", account.ID).
				Str("reason", decision.Reason).
				Msg("carbon API access denied")
		}
	}

	if len(result.Denied) > 0 {
		logger.Warn().
			Int("denied", len(result.Denied)).
			Msg("some subscriptions were denied; verify the Carbon Optimization Reader role is assigned, " +
				"the Microsoft.Carbon provider is registered (new tenants can take up to a month to appear), " +
				"and the date range is within published months (data is republished monthly, weeks in arrears)")
	}

	return result, nil
}

func (p *Probe) probeOne(ctx context.Context, account domain.Account, dr domain.DateRange) domain.AccessDecision {
	query := api.BuildReportQuery(domain.ReportOverallSummary, []string{account.ID}, dr, false)

	response, err := p.client.QueryReport(ctx, query)
	if err != nil {
		return domain.AccessDecision{AccountID: account.ID, Allowed: false, Reason: classify(err)}
	}

	for _, upstream := range response.AccessDecisions {
		if upstream.SubscriptionID != account.ID {
			continue
		}
		if upstream.Decision == decisionAllowed {
			return domain.AccessDecision{AccountID: account.ID, Allowed: true, Reason: upstream.Decision}
		}
		reason := upstream.Decision
		if upstream.DenialReason != "" {
			reason = fmt.Sprintf("%s: %s", upstream.Decision, upstream.DenialReason)
		}
		return domain.AccessDecision{AccountID: account.ID, Allowed: false, Reason: reason}
	}

	// No explicit decision list: absence of denial is treated as permission.
	// Deliberate permissiveness; see the reconciliation note in DESIGN.md.
	return domain.AccessDecision{AccountID: account.ID, Allowed: true, Reason: "no access decision returned"}
}

func classify(err error) string {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return fmt.Sprintf("probe failed: %v", err)
	}

	switch apiErr.StatusCode {
	case http.StatusBadRequest:
		return "carbon service not enabled or no usage in the requested range"
	case http.StatusForbidden:
		return "missing role assignment (Carbon Optimization Reader)"
	case http.StatusNotFound:
		return "carbon service not available for this tenant"
	default:
		return fmt.Sprintf("denied with status %d: %s", apiErr.StatusCode, apiErr.Body)
	}
}
