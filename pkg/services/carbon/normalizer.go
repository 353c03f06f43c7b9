package carbon

import (
	"encoding/json"
	"math"

	"github.com/tidwall/gjson"

	"github.com/cloudcostchefs/GreenOps/pkg/models/domain"
)

const (
	providerName    = "Azure"
	currencyUSD     = "USD"
	tonnesPrecision = 6
	kgPrecision     = 4
)

// expectedDataType maps each report type to the data-kind tag its items must
// carry. Items with a different tag are skipped; the API has been observed
// returning mixed shapes.
var expectedDataType = map[domain.ReportType]string{
	domain.ReportItemDetails:            "ResourceItemDetailsData",
	domain.ReportMonthlySummary:         "MonthlySummaryData",
	domain.ReportOverallSummary:         "OverallSummaryData",
	domain.ReportTopItemsMonthlySummary: "TopItemsMonthlySummaryData",
	domain.ReportTopItemsSummary:        "TopItemsSummaryData",
}

// column is one canonical text column: an ordered source-path cascade and the
// default used when every path is absent or empty.
type column struct {
	paths []string
	def   string
}

// shape is the declarative decode table for one report payload family. The
// defaulting policy lives here as data, not in scattered conditionals.
type shape struct {
	service       column
	resourceName  column
	resourceGroup column
	region        column
	account       column
	resourceID    column
	category      column
	date          column
	emissions     []string
	previous      []string
	changeRatio   []string
	changeValue   []string
}

var itemDetailsShape = shape{
	service:       column{paths: []string{"resourceType"}, def: "Unknown"},
	resourceName:  column{paths: []string{"itemName"}, def: "Unknown"},
	resourceGroup: column{paths: []string{"resourceGroup"}, def: "Unknown"},
	region:        column{paths: []string{"location"}, def: "Unknown"},
	account:       column{paths: []string{"subscriptionId"}},
	resourceID:    column{paths: []string{"resourceId"}, def: "N/A"},
	category:      column{paths: []string{"categoryType"}, def: "Resource"},
	date:          column{paths: []string{"date"}},
	emissions:     []string{"latestMonthEmissions"},
	previous:      []string{"previousMonthEmissions"},
	changeRatio:   []string{"monthOverMonthEmissionsChangeRatio"},
	changeValue:   []string{"monthlyEmissionsChangeValue"},
}

var summaryShape = shape{
	service:       column{def: "All Services"},
	resourceName:  column{def: "N/A"},
	resourceGroup: column{def: "N/A"},
	region:        column{def: "N/A"},
	account:       column{paths: []string{"subscriptionId"}},
	resourceID:    column{def: "N/A"},
	category:      column{paths: []string{"categoryType"}, def: "N/A"},
	date:          column{paths: []string{"date"}},
	emissions:     []string{"latestMonthEmissions"},
	previous:      []string{"previousMonthEmissions"},
	changeRatio:   []string{"monthOverMonthEmissionsChangeRatio"},
	changeValue:   []string{"monthlyEmissionsChangeValue"},
}

var topItemsShape = shape{
	service:       column{paths: []string{"resourceType"}, def: "Unknown"},
	resourceName:  column{paths: []string{"itemName"}, def: "Unknown"},
	resourceGroup: column{paths: []string{"resourceGroup"}, def: "Unknown"},
	region:        column{paths: []string{"location"}, def: "Unknown"},
	account:       column{paths: []string{"subscriptionId"}},
	resourceID:    column{paths: []string{"resourceId"}, def: "N/A"},
	category:      column{paths: []string{"categoryType"}, def: "Resource"},
	date:          column{paths: []string{"date"}},
	emissions:     []string{"latestMonthEmissions"},
	previous:      []string{"previousMonthEmissions"},
	changeRatio:   []string{"monthOverMonthEmissionsChangeRatio"},
	changeValue:   []string{"monthlyEmissionsChangeValue"},
}

// genericShape covers report types outside the three modeled families with a
// broader set of alternate field names.
var genericShape = shape{
	service:       column{paths: []string{"service", "serviceName", "resourceType"}, def: "Unknown"},
	resourceName:  column{paths: []string{"itemName", "resourceName", "name"}, def: "Unknown"},
	resourceGroup: column{paths: []string{"resourceGroup", "resourceGroupName"}, def: "Unknown"},
	region:        column{paths: []string{"location", "region"}, def: "Unknown"},
	account:       column{paths: []string{"subscriptionId", "accountId"}},
	resourceID:    column{paths: []string{"resourceId", "id"}, def: "N/A"},
	category:      column{paths: []string{"categoryType", "category"}, def: "N/A"},
	date:          column{paths: []string{"date", "month"}},
	emissions:     []string{"latestMonthEmissions", "totalCarbonEmission", "carbonEmission", "emissions"},
	previous:      []string{"previousMonthEmissions", "previousEmissions"},
	changeRatio:   []string{"monthOverMonthEmissionsChangeRatio", "changeRatioForLastMonth"},
	changeValue:   []string{"monthlyEmissionsChangeValue", "changeValueMonthOverMonth"},
}

func shapeFor(rt domain.ReportType) shape {
	switch rt {
	case domain.ReportItemDetails:
		return itemDetailsShape
	case domain.ReportMonthlySummary, domain.ReportOverallSummary:
		return summaryShape
	case domain.ReportTopItemsMonthlySummary, domain.ReportTopItemsSummary:
		return topItemsShape
	default:
		return genericShape
	}
}

// Normalize maps raw report items into canonical records. Items whose
// data-kind tag does not match the requested report type are skipped.
// periodDate fills Date for shapes that omit it.
func Normalize(items []json.RawMessage, rt domain.ReportType, periodDate string) []domain.CarbonRecord {
	table := shapeFor(rt)
	expected, tagged := expectedDataType[rt]

	var records []domain.CarbonRecord
	for _, raw := range items {
		item := gjson.ParseBytes(raw)

		dataType := item.Get("dataType").String()
		if tagged && dataType != expected {
			continue
		}

		records = append(records, normalizeOne(item, table, rt, dataType, periodDate))
	}
	return records
}

func normalizeOne(item gjson.Result, table shape, rt domain.ReportType, dataType, periodDate string) domain.CarbonRecord {
	date := strColumn(item, table.date)
	if date == "" {
		date = periodDate
	}

	// The source field is tonnes. Kilograms are derived by scaling the
	// 6-decimal tonnes value and rounding after the scale, so the pair stays
	// an exact unit projection of each other.
	tonnes := round(numColumn(item, table.emissions), tonnesPrecision)
	kg := round(tonnes*1000, kgPrecision)

	return domain.CarbonRecord{
		Provider:                  providerName,
		Date:                      date,
		Service:                   strColumn(item, table.service),
		ResourceName:              strColumn(item, table.resourceName),
		ResourceGroup:             strColumn(item, table.resourceGroup),
		Region:                    strColumn(item, table.region),
		AccountID:                 strColumn(item, table.account),
		ResourceID:                strColumn(item, table.resourceID),
		CategoryType:              strColumn(item, table.category),
		CarbonEmissionsKg:         kg,
		CarbonEmissionsTonnes:     tonnes,
		PreviousMonthEmissions:    numColumn(item, table.previous),
		MonthOverMonthChangeRatio: numColumn(item, table.changeRatio),
		MonthlyChangeValue:        numColumn(item, table.changeValue),
		Cost:                      0,
		Currency:                  currencyUSD,
		ReportType:                rt,
		DataType:                  dataType,
	}
}

func strColumn(item gjson.Result, col column) string {
	for _, path := range col.paths {
		if value := item.Get(path); value.Exists() && value.String() != "" {
			return value.String()
		}
	}
	return col.def
}

func numColumn(item gjson.Result, paths []string) float64 {
	for _, path := range paths {
		if value := item.Get(path); value.Exists() {
			return value.Float()
		}
	}
	return 0
}

func round(v float64, places int) float64 {
	factor := math.Pow10(places)
	return math.Round(v*factor) / factor
}
