package commands

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/cloudcostchefs/GreenOps/pkg/server"
	"github.com/cloudcostchefs/GreenOps/pkg/services/carbon"
	"github.com/cloudcostchefs/GreenOps/pkg/services/config"
	"github.com/cloudcostchefs/GreenOps/pkg/services/credentials"
	"github.com/cloudcostchefs/GreenOps/pkg/services/directory"
	"github.com/cloudcostchefs/GreenOps/pkg/services/pipeline"
)

type ServeCmd struct {
	addr string
}

// NewServeCmd starts the read-only HTTP API over the same pipeline the
// emissions command drives.
func NewServeCmd() *cobra.Command {
	sc := &ServeCmd{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve emissions data over a read-only HTTP API",
		RunE:  sc.run,
	}

	cmd.Flags().StringVar(&sc.addr, "addr", ":8080", "Listen address")

	return cmd
}

func (sc *ServeCmd) run(cmd *cobra.Command, _ []string) error {
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()
	ctx := logger.WithContext(cmd.Context())

	if err := godotenv.Load(); err != nil {
		logger.Debug().Err(err).Msg("no .env file loaded")
	}

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

	api := server.NewWebAPI(logger, server.Config{
		Addr:            sc.addr,
		ShutdownTimeout: 10 * time.Second,
		Dependencies: server.Dependencies{
			Runner:    pl,
			Directory: dir,
		},
	})

	return api.Start()
}
