package carbon

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/cloudcostchefs/GreenOps/pkg/models/api"
	"github.com/cloudcostchefs/GreenOps/pkg/models/domain"
)

// maxPages bounds the pagination loop against a misbehaving or
// infinite-token API.
const maxPages = 100

// Fetcher drives the paginated retrieval of one account's report items.
// pageRate is the pacing policy between pages; each Fetch call gets its own
// limiter so concurrent per-account fetches do not pace each other.
type Fetcher struct {
	client   ReportAPI
	pageRate rate.Limit
}

// NewFetcher creates a report fetcher. rate.Inf disables pacing.
func NewFetcher(client ReportAPI, pageRate rate.Limit) *Fetcher {
	return &Fetcher{client: client, pageRate: pageRate}
}

// Fetch retrieves all pages (or a capped first page when fullDataset is off)
// of one account's report. Items are returned in API response order, pages
// concatenated in fetch order. Any page failure aborts the whole fetch; there
// is no partial-page retry and no resuming from the last token.
func (f *Fetcher) Fetch(
	ctx context.Context,
	accountID string,
	dr domain.DateRange,
	rt domain.ReportType,
	fullDataset bool,
) ([]json.RawMessage, error) {
	logger := zerolog.Ctx(ctx)

	query := api.BuildReportQuery(rt, []string{accountID}, dr, fullDataset)
	limiter := rate.NewLimiter(f.pageRate, 1)

	var items []json.RawMessage
	for page := 1; page <= maxPages; page++ {
		// The limiter starts full, so page 1 goes out immediately and each
		// continuation waits out the pacing interval.
		if err := limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("fetch cancelled: %w", err)
		}

		response, err := f.client.QueryReport(ctx, query)
		if err != nil {
			return nil, fmt.Errorf("page %d for subscription %s: %w", page, accountID, err)
		}

		items = append(items, response.Value...)
		logger.Debug().
			Str("subscription", accountID).
			Int("page", page).
			Int("items", len(response.Value)).
			Msg("fetched report page")

		if response.SkipToken == "" || !fullDataset {
			return items, nil
		}
		query.SetSkipToken(response.SkipToken)
	}

	logger.Warn().
		Str("subscription", accountID).
		Int("pages", maxPages).
		Msg("page safety cap reached, stopping pagination")
	return items, nil
}
