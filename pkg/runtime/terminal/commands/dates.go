package commands

import (
	"fmt"
	"time"

	"github.com/cloudcostchefs/GreenOps/pkg/models/domain"
)

const isoDate = "2006-01-02"

// resolveDateRange validates an explicit start/end pair or derives one of the
// convenience ranges, before anything touches the network. A future end date
// is clamped to today; carbon data is published weeks in arrears anyway.
func resolveDateRange(start, end string, lastMonth, last3Months bool, now time.Time) (domain.DateRange, error) {
	if lastMonth || last3Months {
		months := 1
		if last3Months {
			months = 3
		}
		return firstOfMonthRange(now, months), nil
	}

	if start == "" || end == "" {
		return domain.DateRange{}, fmt.Errorf("both --start-date and --end-date are required (format %s)", isoDate)
	}

	startDate, err := time.Parse(isoDate, start)
	if err != nil {
		return domain.DateRange{}, fmt.Errorf("invalid start date %q: %w", start, err)
	}
	endDate, err := time.Parse(isoDate, end)
	if err != nil {
		return domain.DateRange{}, fmt.Errorf("invalid end date %q: %w", end, err)
	}

	if !endDate.After(startDate) {
		return domain.DateRange{}, fmt.Errorf("end date %s must be after start date %s", end, start)
	}

	today := now.UTC().Truncate(24 * time.Hour)
	if endDate.After(today) {
		endDate = today
	}

	return domain.DateRange{
		Start: startDate.Format(isoDate),
		End:   endDate.Format(isoDate),
	}, nil
}

// firstOfMonthRange returns [first day of the month N months back, first day
// of the current month]; the upstream API wants month boundaries.
func firstOfMonthRange(now time.Time, months int) domain.DateRange {
	currentMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	start := currentMonth.AddDate(0, -months, 0)
	return domain.DateRange{
		Start: start.Format(isoDate),
		End:   currentMonth.Format(isoDate),
	}
}
