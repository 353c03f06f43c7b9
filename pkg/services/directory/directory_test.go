package directory

import (
	"errors"
	"net/http"
	"testing"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/resources/armsubscriptions"
	"github.com/stretchr/testify/assert"

	"github.com/cloudcostchefs/GreenOps/pkg/models/domain"
)

func TestToAccount(t *testing.T) {
	sub := &armsubscriptions.Subscription{
		SubscriptionID: to.Ptr("sub-a"),
		DisplayName:    to.Ptr("Production"),
		TenantID:       to.Ptr("tenant-1"),
		State:          to.Ptr(armsubscriptions.SubscriptionStateEnabled),
	}

	account := toAccount(sub)
	assert.Equal(t, domain.Account{
		ID:             "sub-a",
		DisplayName:    "Production",
		State:          domain.AccountStateEnabled,
		ParentTenantID: "tenant-1",
	}, account)
}

func TestToAccount_PartialPayloads(t *testing.T) {
	t.Run("nil subscription", func(t *testing.T) {
		account := toAccount(nil)
		assert.Equal(t, domain.AccountStateUnknown, account.State)
		assert.Empty(t, account.ID)
	})

	t.Run("missing display name falls back to the id", func(t *testing.T) {
		account := toAccount(&armsubscriptions.Subscription{SubscriptionID: to.Ptr("sub-a")})
		assert.Equal(t, "sub-a", account.DisplayName)
		assert.Equal(t, domain.AccountStateUnknown, account.State)
	})

	t.Run("disabled state", func(t *testing.T) {
		account := toAccount(&armsubscriptions.Subscription{
			SubscriptionID: to.Ptr("sub-a"),
			State:          to.Ptr(armsubscriptions.SubscriptionStateDisabled),
		})
		assert.Equal(t, domain.AccountStateDisabled, account.State)
	})
}

func TestStatusCode(t *testing.T) {
	respErr := &azcore.ResponseError{StatusCode: http.StatusForbidden}
	assert.Equal(t, http.StatusForbidden, statusCode(respErr))
	assert.Equal(t, 0, statusCode(errors.New("network down")))
}
