package terminal

import (
	"errors"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/cloudcostchefs/GreenOps/pkg/runtime/terminal/commands"
	"github.com/cloudcostchefs/GreenOps/pkg/runtime/terminal/export"
	"github.com/cloudcostchefs/GreenOps/pkg/services/credentials"
	"github.com/cloudcostchefs/GreenOps/pkg/services/pipeline"
)

// CLI represents the command-line interface
type CLI struct {
	reporter *export.Reporter
	rootCmd  *cobra.Command
}

// Options contain configuration for the CLI
type Options struct {
	Output io.Writer
}

// NewCLI creates a new CLI instance
func NewCLI(opts Options) *CLI {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	cli := &CLI{
		reporter: export.NewReporter(opts.Output),
	}

	cli.rootCmd = cli.newRootCmd(opts.Output)
	return cli
}

func (cli *CLI) Execute() error {
	return cli.rootCmd.Execute()
}

func (cli *CLI) newRootCmd(output io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "greenops",
		Short: "Azure carbon emissions retrieval tool",
	}

	cmd.AddCommand(commands.NewEmissionsCmd(cli.reporter))
	cmd.AddCommand(commands.NewAccountsCmd(output))
	cmd.AddCommand(commands.NewServeCmd())

	return cmd
}

// ExitCode maps a run failure to the process exit status: 2 auth, 3 no
// target accounts, 4 none accessible, 1 anything else.
func ExitCode(err error) int {
	var authErr *credentials.AuthError
	switch {
	case err == nil:
		return 0
	case errors.As(err, &authErr):
		return 2
	case errors.Is(err, pipeline.ErrNoAccounts):
		return 3
	case errors.Is(err, pipeline.ErrNoneAccessible):
		return 4
	default:
		return 1
	}
}
