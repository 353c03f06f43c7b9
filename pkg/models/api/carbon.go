package api

import (
	"encoding/json"

	"github.com/cloudcostchefs/GreenOps/pkg/models/domain"
)

// CarbonScopes is the fixed greenhouse-gas scope set every query requests.
var CarbonScopes = []string{"Scope1", "Scope2", "Scope3"}

const (
	categoryResource = "Resource"
	orderByLatest    = "LatestMonthEmissions"
	sortDescending   = "Desc"

	fullPageSize    = 5000
	defaultPageSize = 100
	topItemsCount   = 10
)

// QueryDateRange is the wire form of a report date range.
type QueryDateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// ReportQuery is the sum type over the five report request shapes. Each
// variant carries only the fields its report type accepts; the skip token is
// the single mutable part, updated per pagination step.
type ReportQuery interface {
	SetSkipToken(token string)
}

type baseQuery struct {
	ReportType       string         `json:"reportType"`
	SubscriptionList []string       `json:"subscriptionList"`
	CarbonScopeList  []string       `json:"carbonScopeList"`
	DateRange        QueryDateRange `json:"dateRange"`
	SkipToken        string         `json:"skipToken,omitempty"`
}

func (q *baseQuery) SetSkipToken(token string) { q.SkipToken = token }

// ItemDetailsQuery requests the per-resource detail report. The API defines
// this report over a single month, so End is always collapsed to Start.
type ItemDetailsQuery struct {
	baseQuery
	CategoryType  string `json:"categoryType"`
	OrderBy       string `json:"orderBy"`
	SortDirection string `json:"sortDirection"`
	PageSize      int    `json:"pageSize"`
}

// TopItemsQuery requests the top-N variants. TopItems is fixed at 10; the
// API has no "more top items" concept.
type TopItemsQuery struct {
	baseQuery
	CategoryType string `json:"categoryType"`
	TopItems     int    `json:"topItems"`
}

// SummaryQuery requests the monthly or overall summary shapes, which take no
// extra parameters beyond the base payload.
type SummaryQuery struct {
	baseQuery
}

// BuildReportQuery maps {reportType, accounts, dateRange, fullDataset}
// deterministically to one request variant.
func BuildReportQuery(rt domain.ReportType, accountIDs []string, dr domain.DateRange, fullDataset bool) ReportQuery {
	base := baseQuery{
		ReportType:       string(rt),
		SubscriptionList: accountIDs,
		CarbonScopeList:  CarbonScopes,
		DateRange:        QueryDateRange{Start: dr.Start, End: dr.End},
	}

	switch rt {
	case domain.ReportItemDetails:
		base.DateRange.End = base.DateRange.Start
		pageSize := defaultPageSize
		if fullDataset {
			pageSize = fullPageSize
		}
		return &ItemDetailsQuery{
			baseQuery:     base,
			CategoryType:  categoryResource,
			OrderBy:       orderByLatest,
			SortDirection: sortDescending,
			PageSize:      pageSize,
		}
	case domain.ReportTopItemsMonthlySummary, domain.ReportTopItemsSummary:
		return &TopItemsQuery{
			baseQuery:    base,
			CategoryType: categoryResource,
			TopItems:     topItemsCount,
		}
	default:
		return &SummaryQuery{baseQuery: base}
	}
}

// SubscriptionAccessDecision is the upstream per-subscription authorization
// verdict attached to report responses.
type SubscriptionAccessDecision struct {
	SubscriptionID string `json:"subscriptionId"`
	Decision       string `json:"decision"`
	DenialReason   string `json:"denialReason,omitempty"`
}

// ReportResponse is the carbon report envelope. Items are kept raw; their
// schema differs per report type and is decoded by the normalizer.
type ReportResponse struct {
	Value           []json.RawMessage            `json:"value"`
	SkipToken       string                       `json:"skipToken,omitempty"`
	AccessDecisions []SubscriptionAccessDecision `json:"subscriptionAccessDecisionList,omitempty"`
}

// ProviderRegistration is the resource-provider registration check response.
type ProviderRegistration struct {
	Namespace         string `json:"namespace"`
	RegistrationState string `json:"registrationState"`
}
