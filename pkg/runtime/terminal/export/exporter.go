package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/cloudcostchefs/GreenOps/pkg/models/api"
	"github.com/cloudcostchefs/GreenOps/pkg/models/domain"
	"github.com/cloudcostchefs/GreenOps/pkg/services/pipeline"
)

var csvHeader = []string{
	"provider", "date", "service", "resource_name", "resource_group", "region",
	"subscription_id", "subscription_name", "resource_id", "category_type",
	"carbon_emissions_kg", "carbon_emissions_tonnes", "previous_month_emissions",
	"month_over_month_change_ratio", "monthly_change_value",
	"cost", "currency", "report_type", "data_type",
}

// Files lists what one export run wrote.
type Files struct {
	RecordsCSV  string
	SummaryJSON string
}

type summaryDocument struct {
	Summary  api.Summary         `json:"summary"`
	Accounts []api.AccountStatus `json:"accounts"`
}

// Exporter writes the flat record table (CSV) and the summary (JSON) into an
// output directory, naming files by report type and timestamp. It is the only
// component that touches the filesystem.
type Exporter struct {
	dir string
	now func() time.Time
}

// NewExporter creates an exporter rooted at dir.
func NewExporter(dir string) *Exporter {
	return &Exporter{dir: dir, now: time.Now}
}

// Export writes both files. An empty record set still produces them, so a run
// with zero records leaves per-account statuses behind for troubleshooting.
func (e *Exporter) Export(result *pipeline.Result) (Files, error) {
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return Files{}, fmt.Errorf("failed to create output directory: %w", err)
	}

	stamp := e.now().Format("20060102_150405")
	base := fmt.Sprintf("azure_carbon_emissions_%s_%s", strings.ToLower(string(result.Stats.ReportType)), stamp)

	files := Files{
		RecordsCSV:  filepath.Join(e.dir, base+".csv"),
		SummaryJSON: filepath.Join(e.dir, base+"_summary.json"),
	}

	if err := e.writeCSV(files.RecordsCSV, result.Records); err != nil {
		return Files{}, err
	}
	if err := e.writeSummary(files.SummaryJSON, result); err != nil {
		return Files{}, err
	}
	return files, nil
}

func (e *Exporter) writeCSV(path string, records []domain.CarbonRecord) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, record := range records {
		row := []string{
			record.Provider,
			record.Date,
			record.Service,
			record.ResourceName,
			record.ResourceGroup,
			record.Region,
			record.AccountID,
			record.AccountName,
			record.ResourceID,
			record.CategoryType,
			formatFloat(record.CarbonEmissionsKg),
			formatFloat(record.CarbonEmissionsTonnes),
			formatFloat(record.PreviousMonthEmissions),
			formatFloat(record.MonthOverMonthChangeRatio),
			formatFloat(record.MonthlyChangeValue),
			formatFloat(record.Cost),
			record.Currency,
			string(record.ReportType),
			record.DataType,
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

func (e *Exporter) writeSummary(path string, result *pipeline.Result) error {
	document := summaryDocument{Summary: api.FromSummaryStats(result.Stats)}
	for _, account := range result.Accounts {
		document.Accounts = append(document.Accounts, api.FromAccountResult(account))
	}

	payload, err := json.MarshalIndent(document, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return fmt.Errorf("failed to write summary file: %w", err)
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
