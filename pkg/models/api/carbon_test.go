package api

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudcostchefs/GreenOps/pkg/models/domain"
)

func TestBuildReportQuery_ItemDetails(t *testing.T) {
	dr := domain.DateRange{Start: "2025-03-01", End: "2025-06-01"}

	t.Run("end date collapses to start", func(t *testing.T) {
		query := BuildReportQuery(domain.ReportItemDetails, []string{"sub-a"}, dr, false)

		details, ok := query.(*ItemDetailsQuery)
		require.True(t, ok)
		assert.Equal(t, "2025-03-01", details.DateRange.Start)
		assert.Equal(t, "2025-03-01", details.DateRange.End)
	})

	t.Run("page size follows the full-dataset flag", func(t *testing.T) {
		small := BuildReportQuery(domain.ReportItemDetails, []string{"sub-a"}, dr, false).(*ItemDetailsQuery)
		full := BuildReportQuery(domain.ReportItemDetails, []string{"sub-a"}, dr, true).(*ItemDetailsQuery)

		assert.Equal(t, 100, small.PageSize)
		assert.Equal(t, 5000, full.PageSize)
	})

	t.Run("sorted by latest month emissions descending", func(t *testing.T) {
		details := BuildReportQuery(domain.ReportItemDetails, []string{"sub-a"}, dr, false).(*ItemDetailsQuery)

		assert.Equal(t, "Resource", details.CategoryType)
		assert.Equal(t, "LatestMonthEmissions", details.OrderBy)
		assert.Equal(t, "Desc", details.SortDirection)
	})
}

func TestBuildReportQuery_TopItems(t *testing.T) {
	dr := domain.DateRange{Start: "2025-03-01", End: "2025-06-01"}

	for _, rt := range []domain.ReportType{domain.ReportTopItemsMonthlySummary, domain.ReportTopItemsSummary} {
		t.Run(string(rt), func(t *testing.T) {
			// topN is fixed regardless of the full-dataset flag.
			for _, full := range []bool{false, true} {
				query := BuildReportQuery(rt, []string{"sub-a"}, dr, full)
				top, ok := query.(*TopItemsQuery)
				require.True(t, ok)
				assert.Equal(t, 10, top.TopItems)
				assert.Equal(t, "Resource", top.CategoryType)
				assert.Equal(t, dr.End, top.DateRange.End)
			}
		})
	}
}

func TestBuildReportQuery_Summaries(t *testing.T) {
	dr := domain.DateRange{Start: "2025-03-01", End: "2025-06-01"}

	for _, rt := range []domain.ReportType{domain.ReportMonthlySummary, domain.ReportOverallSummary} {
		query := BuildReportQuery(rt, []string{"sub-a", "sub-b"}, dr, true)

		summary, ok := query.(*SummaryQuery)
		require.True(t, ok, "expected summary variant for %s", rt)
		assert.Equal(t, string(rt), summary.ReportType)
		assert.Equal(t, []string{"sub-a", "sub-b"}, summary.SubscriptionList)
		assert.Equal(t, CarbonScopes, summary.CarbonScopeList)
	}
}

func TestReportQuery_SkipTokenRoundTrip(t *testing.T) {
	dr := domain.DateRange{Start: "2025-03-01", End: "2025-04-01"}
	query := BuildReportQuery(domain.ReportItemDetails, []string{"sub-a"}, dr, true)

	payload, err := json.Marshal(query)
	require.NoError(t, err)
	assert.NotContains(t, string(payload), "skipToken", "token must be omitted until set")

	query.SetSkipToken("page-2-token")
	payload, err = json.Marshal(query)
	require.NoError(t, err)
	assert.Contains(t, string(payload), `"skipToken":"page-2-token"`)
}

func TestReportQuery_WireFormat(t *testing.T) {
	dr := domain.DateRange{Start: "2025-03-01", End: "2025-04-01"}
	query := BuildReportQuery(domain.ReportMonthlySummary, []string{"sub-a"}, dr, false)

	payload, err := json.Marshal(query)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(payload, &decoded))
	assert.Equal(t, "MonthlySummaryReport", decoded["reportType"])
	assert.NotContains(t, decoded, "topItems")
	assert.NotContains(t, decoded, "pageSize")
}
