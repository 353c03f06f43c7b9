package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/cloudcostchefs/GreenOps/pkg/models/domain"
	"github.com/cloudcostchefs/GreenOps/pkg/runtime/terminal/export"
	"github.com/cloudcostchefs/GreenOps/pkg/services/carbon"
	"github.com/cloudcostchefs/GreenOps/pkg/services/config"
	"github.com/cloudcostchefs/GreenOps/pkg/services/credentials"
	"github.com/cloudcostchefs/GreenOps/pkg/services/directory"
	"github.com/cloudcostchefs/GreenOps/pkg/services/pipeline"
)

const (
	probeInterval = 500 * time.Millisecond
	pageInterval  = time.Second
	runTimeout    = 45 * time.Minute
)

type EmissionsCmd struct {
	subscription     string
	subscriptions    []string
	allSubscriptions bool
	startDate        string
	endDate          string
	lastMonth        bool
	last3Months      bool
	reportType       string
	outputDir        string
	maxConcurrency   int
	fullDataset      bool
	includeDisabled  bool
	reporter         *export.Reporter
}

func NewEmissionsCmd(reporter *export.Reporter) *cobra.Command {
	ec := &EmissionsCmd{reporter: reporter}
	cmd := &cobra.Command{
		Use:   "emissions",
		Short: "Retrieve and export Azure carbon emissions data",
		RunE:  ec.run,
	}

	cmd.Flags().StringVar(&ec.subscription, "subscription", "", "Single subscription ID to query")
	cmd.Flags().StringSliceVar(&ec.subscriptions, "subscriptions", nil, "Comma-separated subscription IDs to query")
	cmd.Flags().BoolVar(&ec.allSubscriptions, "all-subscriptions", false, "Query every subscription reachable by the credential")
	cmd.Flags().StringVar(&ec.startDate, "start-date", "", "Start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&ec.endDate, "end-date", "", "End date (YYYY-MM-DD), must be after the start date")
	cmd.Flags().BoolVar(&ec.lastMonth, "last-month", false, "Use the previous calendar month")
	cmd.Flags().BoolVar(&ec.last3Months, "last-3-months", false, "Use the previous three calendar months")
	cmd.Flags().StringVar(&ec.reportType, "report-type", string(domain.ReportItemDetails),
		fmt.Sprintf("Report type, one of %v", domain.ReportTypes()))
	cmd.Flags().StringVar(&ec.outputDir, "output-dir", "output", "Directory for the CSV/JSON export")
	cmd.Flags().IntVar(&ec.maxConcurrency, "max-concurrency", 1, "Concurrent subscription fetches (capped at 5)")
	cmd.Flags().BoolVar(&ec.fullDataset, "full-dataset", false, "Follow pagination to retrieve the complete dataset")
	cmd.Flags().BoolVar(&ec.includeDisabled, "include-disabled", false, "Include disabled subscriptions")

	cmd.MarkFlagsMutuallyExclusive("subscription", "subscriptions", "all-subscriptions")
	cmd.MarkFlagsMutuallyExclusive("start-date", "last-month", "last-3-months")

	return cmd
}

func (ec *EmissionsCmd) run(cmd *cobra.Command, _ []string) error {
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()
	ctx, cancel := context.WithTimeout(logger.WithContext(cmd.Context()), runTimeout)
	defer cancel()

	opts, err := ec.buildOptions()
	if err != nil {
		return err
	}

	rt, err := domain.ParseReportType(ec.reportType)
	if err != nil {
		return err
	}
	opts.ReportType = rt

	settings, err := config.Load("")
	if err != nil {
		return err
	}

	cred, err := credentials.Resolve(ctx, settings)
	if err != nil {
		return err
	}

	dir, err := directory.NewExplorer(cred)
	if err != nil {
		return err
	}

	client := carbon.NewClient(cred, settings)
	pl := pipeline.New(
		dir,
		carbon.NewProbe(client, rate.NewLimiter(rate.Every(probeInterval), 1)),
		carbon.NewFetcher(client, rate.Every(pageInterval)),
		carbon.NewAggregator(settings.APIVersion),
	)

	result, err := pl.Run(ctx, *opts)
	if err != nil {
		return err
	}

	files, err := export.NewExporter(ec.outputDir).Export(result)
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}
	logger.Info().
		Str("records", files.RecordsCSV).
		Str("summary", files.SummaryJSON).
		Msg("export written")

	return ec.reporter.Handle(result)
}

func (ec *EmissionsCmd) buildOptions() (*pipeline.Options, error) {
	var ids []string
	switch {
	case ec.subscription != "":
		ids = []string{ec.subscription}
	case len(ec.subscriptions) > 0:
		ids = ec.subscriptions
	case ec.allSubscriptions:
		// resolved from the directory
	default:
		return nil, pipeline.ErrNoAccounts
	}

	dr, err := resolveDateRange(ec.startDate, ec.endDate, ec.lastMonth, ec.last3Months, time.Now())
	if err != nil {
		return nil, err
	}

	return &pipeline.Options{
		AccountIDs:      ids,
		AllAccounts:     ec.allSubscriptions,
		IncludeDisabled: ec.includeDisabled,
		DateRange:       dr,
		FullDataset:     ec.fullDataset,
		MaxConcurrency:  ec.maxConcurrency,
	}, nil
}
