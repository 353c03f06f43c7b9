package directory

import (
	"context"
	"errors"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/resources/armsubscriptions"
	"github.com/rs/zerolog"

	"github.com/cloudcostchefs/GreenOps/pkg/models/domain"
)

// Error means the subscription directory could not be listed, typically for
// lack of directory-level permission.
type Error struct {
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	return fmt.Sprintf("failed to list subscriptions (status %d): %v", e.StatusCode, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Explorer lists the subscriptions reachable by the resolved credential and
// enriches caller-supplied subscription IDs best-effort.
type Explorer interface {
	List(ctx context.Context, includeDisabled bool) ([]domain.Account, error)
	Enrich(ctx context.Context, ids []string) []domain.Account
}

type explorer struct {
	client *armsubscriptions.Client
}

// NewExplorer creates a directory explorer backed by the ARM subscriptions
// API.
func NewExplorer(cred azcore.TokenCredential) (Explorer, error) {
	client, err := armsubscriptions.NewClient(cred, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create subscriptions client: %w", err)
	}
	return &explorer{client: client}, nil
}

func (e *explorer) List(ctx context.Context, includeDisabled bool) ([]domain.Account, error) {
	var accounts []domain.Account

	pager := e.client.NewListPager(nil)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, &Error{StatusCode: statusCode(err), Err: err}
		}
		for _, sub := range page.Value {
			account := toAccount(sub)
			if account.State != domain.AccountStateEnabled && !includeDisabled {
				continue
			}
			accounts = append(accounts, account)
		}
	}

	return accounts, nil
}

// Enrich fills display name, state and tenant for the given subscription IDs
// from the directory. Lookup failures degrade to bare IDs with Unknown state;
// an explicit account list must keep working without directory permission.
func (e *explorer) Enrich(ctx context.Context, ids []string) []domain.Account {
	logger := zerolog.Ctx(ctx)

	known := make(map[string]domain.Account)
	listed, err := e.List(ctx, true)
	if err != nil {
		logger.Warn().Err(err).Msg("directory lookup failed, proceeding with bare subscription IDs")
	}
	for _, account := range listed {
		known[account.ID] = account
	}

	accounts := make([]domain.Account, 0, len(ids))
	for _, id := range ids {
		if account, ok := known[id]; ok {
			accounts = append(accounts, account)
			continue
		}
		accounts = append(accounts, domain.Account{
			ID:          id,
			DisplayName: id,
			State:       domain.AccountStateUnknown,
		})
	}
	return accounts
}

func toAccount(sub *armsubscriptions.Subscription) domain.Account {
	account := domain.Account{State: domain.AccountStateUnknown}
	if sub == nil {
		return account
	}
	if sub.SubscriptionID != nil {
		account.ID = *sub.SubscriptionID
	}
	account.DisplayName = account.ID
	if sub.DisplayName != nil {
		account.DisplayName = *sub.DisplayName
	}
	if sub.TenantID != nil {
		account.ParentTenantID = *sub.TenantID
	}
	if sub.State != nil {
		switch *sub.State {
		case armsubscriptions.SubscriptionStateEnabled:
			account.State = domain.AccountStateEnabled
		case armsubscriptions.SubscriptionStateDisabled:
			account.State = domain.AccountStateDisabled
		}
	}
	return account
}

func statusCode(err error) int {
	var respErr *azcore.ResponseError
	if errors.As(err, &respErr) {
		return respErr.StatusCode
	}
	return 0
}
