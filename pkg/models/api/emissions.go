package api

import (
	"time"

	"github.com/cloudcostchefs/GreenOps/pkg/models/domain"
)

// CarbonRecord is the JSON form of one canonical emissions record.
type CarbonRecord struct {
	Provider                  string  `json:"provider"`
	Date                      string  `json:"date"`
	Service                   string  `json:"service"`
	ResourceName              string  `json:"resource_name"`
	ResourceGroup             string  `json:"resource_group"`
	Region                    string  `json:"region"`
	SubscriptionID            string  `json:"subscription_id"`
	SubscriptionName          string  `json:"subscription_name"`
	ResourceID                string  `json:"resource_id"`
	CategoryType              string  `json:"category_type"`
	CarbonEmissionsKg         float64 `json:"carbon_emissions_kg"`
	CarbonEmissionsTonnes     float64 `json:"carbon_emissions_tonnes"`
	PreviousMonthEmissions    float64 `json:"previous_month_emissions"`
	MonthOverMonthChangeRatio float64 `json:"month_over_month_change_ratio"`
	MonthlyChangeValue        float64 `json:"monthly_change_value"`
	Cost                      float64 `json:"cost"`
	Currency                  string  `json:"currency"`
	ReportType                string  `json:"report_type"`
	DataType                  string  `json:"data_type"`
}

// Summary is the JSON form of the aggregated run statistics.
type Summary struct {
	TotalRecords      int     `json:"total_records"`
	TotalCarbonTonnes float64 `json:"total_carbon_tonnes"`
	TotalCarbonKg     float64 `json:"total_carbon_kg"`
	TotalCost         float64 `json:"total_cost"`
	DateRangeStart    string  `json:"date_range_start"`
	DateRangeEnd      string  `json:"date_range_end"`
	GeneratedAt       string  `json:"generated_at"`
	APIVersion        string  `json:"api_version"`
	ReportType        string  `json:"report_type"`
}

// AccountStatus is the JSON form of one account's outcome.
type AccountStatus struct {
	SubscriptionID   string `json:"subscription_id"`
	SubscriptionName string `json:"subscription_name"`
	State            string `json:"state,omitempty"`
	Status           string `json:"status"`
	Records          int    `json:"records"`
	Reason           string `json:"reason,omitempty"`
}

// FromCarbonRecord converts a domain record to its JSON form.
func FromCarbonRecord(r domain.CarbonRecord) CarbonRecord {
	return CarbonRecord{
		Provider:                  r.Provider,
		Date:                      r.Date,
		Service:                   r.Service,
		ResourceName:              r.ResourceName,
		ResourceGroup:             r.ResourceGroup,
		Region:                    r.Region,
		SubscriptionID:            r.AccountID,
		SubscriptionName:          r.AccountName,
		ResourceID:                r.ResourceID,
		CategoryType:              r.CategoryType,
		CarbonEmissionsKg:         r.CarbonEmissionsKg,
		CarbonEmissionsTonnes:     r.CarbonEmissionsTonnes,
		PreviousMonthEmissions:    r.PreviousMonthEmissions,
		MonthOverMonthChangeRatio: r.MonthOverMonthChangeRatio,
		MonthlyChangeValue:        r.MonthlyChangeValue,
		Cost:                      r.Cost,
		Currency:                  r.Currency,
		ReportType:                string(r.ReportType),
		DataType:                  r.DataType,
	}
}

// FromSummaryStats converts domain summary statistics to their JSON form.
func FromSummaryStats(s domain.SummaryStats) Summary {
	return Summary{
		TotalRecords:      s.TotalRecords,
		TotalCarbonTonnes: s.TotalCarbonTonnes,
		TotalCarbonKg:     s.TotalCarbonKg,
		TotalCost:         s.TotalCost,
		DateRangeStart:    s.DateRangeStart,
		DateRangeEnd:      s.DateRangeEnd,
		GeneratedAt:       s.GeneratedAt.Format(time.RFC3339),
		APIVersion:        s.APIVersion,
		ReportType:        string(s.ReportType),
	}
}

// FromAccountResult converts a per-account outcome to its JSON form.
func FromAccountResult(r domain.AccountResult) AccountStatus {
	return AccountStatus{
		SubscriptionID:   r.Account.ID,
		SubscriptionName: r.Account.DisplayName,
		State:            string(r.Account.State),
		Status:           string(r.Status),
		Records:          r.Records,
		Reason:           r.Reason,
	}
}
