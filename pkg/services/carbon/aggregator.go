package carbon

import (
	"time"

	"github.com/cloudcostchefs/GreenOps/pkg/models/domain"
)

// Aggregator folds a normalized record set into summary statistics.
type Aggregator struct {
	apiVersion string
	now        func() time.Time
}

// NewAggregator creates an aggregator stamping summaries with the report API
// version in use.
func NewAggregator(apiVersion string) *Aggregator {
	return &Aggregator{apiVersion: apiVersion, now: time.Now}
}

// Summarize computes the run totals. An empty record set is not an error and
// yields a zeroed summary. The kilogram total is derived from the tonnes
// total (2-decimal rounding), not summed from per-record kg values; the small
// last-digit divergence versus per-record summation is intentional.
func (a *Aggregator) Summarize(records []domain.CarbonRecord, rt domain.ReportType) domain.SummaryStats {
	stats := domain.SummaryStats{
		TotalRecords: len(records),
		GeneratedAt:  a.now().UTC(),
		APIVersion:   a.apiVersion,
		ReportType:   rt,
	}

	for _, record := range records {
		stats.TotalCarbonTonnes += record.CarbonEmissionsTonnes
		stats.TotalCost += record.Cost

		// ISO dates order lexicographically.
		if stats.DateRangeStart == "" || record.Date < stats.DateRangeStart {
			stats.DateRangeStart = record.Date
		}
		if stats.DateRangeEnd == "" || record.Date > stats.DateRangeEnd {
			stats.DateRangeEnd = record.Date
		}
	}

	stats.TotalCarbonKg = round(stats.TotalCarbonTonnes*1000, 2)
	return stats
}
