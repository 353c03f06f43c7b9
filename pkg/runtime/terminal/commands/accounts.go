package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/cloudcostchefs/GreenOps/pkg/services/carbon"
	"github.com/cloudcostchefs/GreenOps/pkg/services/config"
	"github.com/cloudcostchefs/GreenOps/pkg/services/credentials"
	"github.com/cloudcostchefs/GreenOps/pkg/services/directory"
)

type AccountsCmd struct {
	includeDisabled   bool
	checkRegistration bool
	output            io.Writer
}

// NewAccountsCmd lists the subscriptions reachable by the resolved
// credential, optionally with each one's Microsoft.Carbon registration state.
func NewAccountsCmd(output io.Writer) *cobra.Command {
	ac := &AccountsCmd{output: output}
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "List subscriptions reachable by the resolved credential",
		RunE:  ac.run,
	}

	cmd.Flags().BoolVar(&ac.includeDisabled, "include-disabled", false, "Include disabled subscriptions")
	cmd.Flags().BoolVar(&ac.checkRegistration, "check-registration", false,
		"Check the Microsoft.Carbon provider registration per subscription")

	return cmd
}

func (ac *AccountsCmd) run(cmd *cobra.Command, _ []string) error {
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()
	ctx, cancel := context.WithTimeout(logger.WithContext(cmd.Context()), 5*time.Minute)
	defer cancel()

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

	accounts, err := dir.List(ctx, ac.includeDisabled)
	if err != nil {
		return err
	}

	client := carbon.NewClient(cred, settings)
	fmt.Fprintf(ac.output, "%-38s %-30s %-10s\n", "SUBSCRIPTION", "NAME", "STATE")
	for _, account := range accounts {
		fmt.Fprintf(ac.output, "%-38s %-30s %-10s", account.ID, account.DisplayName, account.State)
		if ac.checkRegistration {
			registration, err := client.ProviderRegistration(ctx, account.ID)
			if err != nil {
				fmt.Fprintf(ac.output, " carbon: unknown (%v)", err)
			} else {
				fmt.Fprintf(ac.output, " carbon: %s", registration.RegistrationState)
			}
		}
		fmt.Fprintln(ac.output)
	}
	fmt.Fprintf(ac.output, "\nTotal subscriptions: %d\n", len(accounts))

	return nil
}
