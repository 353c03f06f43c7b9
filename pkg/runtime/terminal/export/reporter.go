package export

import (
	"fmt"
	"io"
	"os"
	"sort"
	"text/template"

	"github.com/cloudcostchefs/GreenOps/pkg/models/domain"
	"github.com/cloudcostchefs/GreenOps/pkg/services/pipeline"
)

// Reporter prints the run summary to the console, with a per-service
// emissions breakdown sorted by contribution.
type Reporter struct {
	writer io.Writer
}

// NewReporter creates a console reporter.
func NewReporter(writer io.Writer) *Reporter {
	if writer == nil {
		writer = os.Stdout
	}
	return &Reporter{writer: writer}
}

type serviceShare struct {
	Service string
	Tonnes  float64
	Percent float64
}

type reportView struct {
	Stats    domain.SummaryStats
	Services []serviceShare
	Accounts []domain.AccountResult
}

func (r *Reporter) Handle(result *pipeline.Result) error {
	tmpl := `
CARBON EMISSIONS SUMMARY ({{.Stats.ReportType}})
Period:  {{if .Stats.DateRangeStart}}{{.Stats.DateRangeStart}} to {{.Stats.DateRangeEnd}}{{else}}no data{{end}}
Records: {{.Stats.TotalRecords}}
Total:   {{printf "%.6f" .Stats.TotalCarbonTonnes}} tCO2e ({{printf "%.2f" .Stats.TotalCarbonKg}} kg)
{{if .Services}}
Emissions by service:
{{range .Services}}  {{printf "%-30s %12.6f tCO2e (%5.1f%%)" .Service .Tonnes .Percent}}
{{end}}{{end}}
Subscriptions:
{{range .Accounts}}  {{printf "%-38s %-10s %6d records" .Account.ID .Status .Records}}{{if .Reason}}  ({{.Reason}}){{end}}
{{end}}`

	t, err := template.New("summary").Parse(tmpl)
	if err != nil {
		return fmt.Errorf("failed to parse summary template: %w", err)
	}

	return t.Execute(r.writer, reportView{
		Stats:    result.Stats,
		Services: servicesByEmissions(result),
		Accounts: result.Accounts,
	})
}

func servicesByEmissions(result *pipeline.Result) []serviceShare {
	totals := make(map[string]float64)
	for _, record := range result.Records {
		totals[record.Service] += record.CarbonEmissionsTonnes
	}

	shares := make([]serviceShare, 0, len(totals))
	for service, tonnes := range totals {
		share := serviceShare{Service: service, Tonnes: tonnes}
		if result.Stats.TotalCarbonTonnes > 0 {
			share.Percent = tonnes / result.Stats.TotalCarbonTonnes * 100
		}
		shares = append(shares, share)
	}

	sort.Slice(shares, func(i, j int) bool { return shares[i].Tonnes > shares[j].Tonnes })
	return shares
}
