package domain

import (
	"fmt"
	"time"
)

// ReportType enumerates the five query shapes the Carbon Optimization API
// supports. Each returns a different result schema.
type ReportType string

const (
	ReportItemDetails            ReportType = "ItemDetailsReport"
	ReportMonthlySummary         ReportType = "MonthlySummaryReport"
	ReportOverallSummary         ReportType = "OverallSummaryReport"
	ReportTopItemsMonthlySummary ReportType = "TopItemsMonthlySummaryReport"
	ReportTopItemsSummary        ReportType = "TopItemsSummaryReport"
)

// ReportTypes lists every supported report type, in the order the upstream
// API documents them.
func ReportTypes() []ReportType {
	return []ReportType{
		ReportItemDetails,
		ReportMonthlySummary,
		ReportOverallSummary,
		ReportTopItemsMonthlySummary,
		ReportTopItemsSummary,
	}
}

// ParseReportType validates a user-supplied report type name.
func ParseReportType(s string) (ReportType, error) {
	for _, rt := range ReportTypes() {
		if string(rt) == s {
			return rt, nil
		}
	}
	return "", fmt.Errorf("unknown report type %q, expected one of %v", s, ReportTypes())
}

// DateRange is an inclusive ISO-date (YYYY-MM-DD) range.
type DateRange struct {
	Start string
	End   string
}

// CarbonRecord is the canonical flat record every report shape is normalized
// into. Kilograms are a pure unit-scaled projection of tonnes:
// CarbonEmissionsKg == round(CarbonEmissionsTonnes*1000, 4) always holds.
// Cost is always 0; the emissions API never supplies cost, the column exists
// only for downstream joins.
type CarbonRecord struct {
	Provider                  string
	Date                      string
	Service                   string
	ResourceName              string
	ResourceGroup             string
	Region                    string
	AccountID                 string
	AccountName               string
	ResourceID                string
	CategoryType              string
	CarbonEmissionsKg         float64
	CarbonEmissionsTonnes     float64
	PreviousMonthEmissions    float64
	MonthOverMonthChangeRatio float64
	MonthlyChangeValue        float64
	Cost                      float64
	Currency                  string
	ReportType                ReportType
	DataType                  string
}

// SummaryStats is derived once, read-only, from the full record collection.
type SummaryStats struct {
	TotalRecords      int
	TotalCarbonTonnes float64
	TotalCarbonKg     float64
	TotalCost         float64
	DateRangeStart    string
	DateRangeEnd      string
	GeneratedAt       time.Time
	APIVersion        string
	ReportType        ReportType
}
