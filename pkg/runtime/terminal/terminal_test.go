package terminal

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cloudcostchefs/GreenOps/pkg/services/credentials"
	"github.com/cloudcostchefs/GreenOps/pkg/services/pipeline"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"success", nil, 0},
		{"generic failure", errors.New("boom"), 1},
		{"auth failure", &credentials.AuthError{Err: errors.New("rejected")}, 2},
		{"wrapped auth failure", fmt.Errorf("setup: %w", &credentials.AuthError{Err: errors.New("rejected")}), 2},
		{"no accounts", pipeline.ErrNoAccounts, 3},
		{"wrapped no accounts", fmt.Errorf("%w: directory empty", pipeline.ErrNoAccounts), 3},
		{"none accessible", pipeline.ErrNoneAccessible, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}

func TestNewCLI_RegistersCommands(t *testing.T) {
	cli := NewCLI(Options{})

	var names []string
	for _, cmd := range cli.rootCmd.Commands() {
		names = append(names, cmd.Name())
	}
	assert.Contains(t, names, "emissions")
	assert.Contains(t, names, "accounts")
	assert.Contains(t, names, "serve")
}
