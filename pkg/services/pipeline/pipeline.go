package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/cloudcostchefs/GreenOps/pkg/models/domain"
	"github.com/cloudcostchefs/GreenOps/pkg/services/carbon"
	"github.com/cloudcostchefs/GreenOps/pkg/services/directory"
)

// maxWorkers bounds the fetch fan-out regardless of the caller's hint.
const maxWorkers = 5

var (
	// ErrNoAccounts means no target account set could be established.
	ErrNoAccounts = errors.New("no target subscriptions: pass a subscription id, a list, or --all-subscriptions")
	// ErrNoneAccessible means probing denied every candidate account.
	ErrNoneAccessible = errors.New("no subscription has carbon API access; see the probe diagnostics above")
)

// Prober classifies candidate accounts by carbon API accessibility.
type Prober interface {
	Probe(ctx context.Context, accounts []domain.Account, dr domain.DateRange) (*carbon.ProbeResult, error)
}

// Fetcher retrieves one account's raw report items.
type Fetcher interface {
	Fetch(ctx context.Context, accountID string, dr domain.DateRange, rt domain.ReportType, fullDataset bool) ([]json.RawMessage, error)
}

// Options selects what one pipeline run retrieves.
type Options struct {
	AccountIDs      []string
	AllAccounts     bool
	IncludeDisabled bool
	DateRange       domain.DateRange
	ReportType      domain.ReportType
	FullDataset     bool
	MaxConcurrency  int
}

// Result is what the pipeline hands to the exporter: the accumulated record
// set, the derived summary, and per-account outcomes for troubleshooting.
type Result struct {
	Records   []domain.CarbonRecord
	Stats     domain.SummaryStats
	Accounts  []domain.AccountResult
	Decisions []domain.AccessDecision
}

// Pipeline wires directory discovery, the capability probe, per-account
// fetching and normalization, and aggregation.
type Pipeline struct {
	directory  directory.Explorer
	probe      Prober
	fetcher    Fetcher
	aggregator *carbon.Aggregator
}

func New(dir directory.Explorer, probe Prober, fetcher Fetcher, aggregator *carbon.Aggregator) *Pipeline {
	return &Pipeline{
		directory:  dir,
		probe:      probe,
		fetcher:    fetcher,
		aggregator: aggregator,
	}
}

// Run executes the full pipeline. Errors scoped to one account never abort
// the others; only setup failures (no accounts, none accessible) are fatal.
func (p *Pipeline) Run(ctx context.Context, opts Options) (*Result, error) {
	logger := zerolog.Ctx(ctx)

	accounts, err := p.resolveAccounts(ctx, opts)
	if err != nil {
		return nil, err
	}
	logger.Info().Int("candidates", len(accounts)).Msg("probing carbon API access")

	probed, err := p.probe.Probe(ctx, accounts, opts.DateRange)
	if err != nil {
		return nil, err
	}
	if len(probed.Accessible) == 0 {
		return nil, ErrNoneAccessible
	}

	result := &Result{Decisions: probed.Decisions}
	denialReasons := make(map[string]string, len(probed.Decisions))
	for _, decision := range probed.Decisions {
		denialReasons[decision.AccountID] = decision.Reason
	}
	for _, account := range probed.Denied {
		result.Accounts = append(result.Accounts, domain.AccountResult{
			Account: account,
			Status:  domain.AccountDenied,
			Reason:  denialReasons[account.ID],
		})
	}

	for batch := range p.fetchAll(ctx, probed.Accessible, opts) {
		result.Accounts = append(result.Accounts, batch.status)
		result.Records = append(result.Records, batch.records...)
	}

	result.Stats = p.aggregator.Summarize(result.Records, opts.ReportType)
	logger.Info().
		Int("records", result.Stats.TotalRecords).
		Float64("total_tonnes", result.Stats.TotalCarbonTonnes).
		Msg("pipeline complete")
	return result, nil
}

func (p *Pipeline) resolveAccounts(ctx context.Context, opts Options) ([]domain.Account, error) {
	if len(opts.AccountIDs) > 0 {
		return p.directory.Enrich(ctx, opts.AccountIDs), nil
	}

	if !opts.AllAccounts {
		return nil, ErrNoAccounts
	}

	accounts, err := p.directory.List(ctx, opts.IncludeDisabled)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoAccounts, err)
	}
	if len(accounts) == 0 {
		return nil, ErrNoAccounts
	}
	return accounts, nil
}

type accountBatch struct {
	status  domain.AccountResult
	records []domain.CarbonRecord
}

// fetchAll fans fetch+normalize out over a bounded worker pool. Batches are
// funneled through a single channel so accumulation stays append-only in one
// goroutine.
func (p *Pipeline) fetchAll(ctx context.Context, accounts []domain.Account, opts Options) <-chan accountBatch {
	workers := opts.MaxConcurrency
	if workers < 1 {
		workers = 1
	}
	if workers > maxWorkers {
		workers = maxWorkers
	}

	jobs := make(chan domain.Account)
	batches := make(chan accountBatch)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for account := range jobs {
				batches <- p.fetchOne(ctx, account, opts)
			}
		}()
	}

	go func() {
		for _, account := range accounts {
			jobs <- account
		}
		close(jobs)
		wg.Wait()
		close(batches)
	}()

	return batches
}

func (p *Pipeline) fetchOne(ctx context.Context, account domain.Account, opts Options) accountBatch {
	logger := zerolog.Ctx(ctx)

	items, err := p.fetcher.Fetch(ctx, account.ID, opts.DateRange, opts.ReportType, opts.FullDataset)
	if err != nil {
		logger.Error().
			Err(err).
			Str("subscription", account.ID).
			Msg("fetch failed, continuing with remaining subscriptions")
		return accountBatch{status: domain.AccountResult{
			Account: account,
			Status:  domain.AccountFailed,
			Reason:  err.Error(),
		}}
	}

	records := carbon.Normalize(items, opts.ReportType, opts.DateRange.Start)
	for i := range records {
		// Summary shapes often omit the subscription; fill from the account
		// that produced the batch.
		if records[i].AccountID == "" {
			records[i].AccountID = account.ID
		}
		if records[i].AccountName == "" {
			records[i].AccountName = account.DisplayName
		}
	}

	return accountBatch{
		status: domain.AccountResult{
			Account: account,
			Status:  domain.AccountSucceeded,
			Records: len(records),
		},
		records: records,
	}
}
