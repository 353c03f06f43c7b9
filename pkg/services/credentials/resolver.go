package credentials

import (
	"context"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/rs/zerolog"

	"github.com/cloudcostchefs/GreenOps/pkg/services/config"
)

// TokenScope is the management-plane default scope every acquired token is
// validated against.
const TokenScope = "https://management.azure.com/.default"

// AuthError means no credential strategy produced a usable token. Auth
// failures are not transient, so there are no retries.
type AuthError struct {
	Err error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("no Azure credential strategy succeeded: %v. "+
		"Provide explicit credentials (AZURE_TENANT_ID, AZURE_CLIENT_ID, AZURE_CLIENT_SECRET), "+
		"or sign in with the Azure CLI (az login), "+
		"or make an Azure SDK session available (managed identity, environment, workload identity)", e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// Resolve walks the ordered strategy chain and returns the first credential
// that yields a management-scope token:
//
//  1. client-credentials grant, when tenant/client/secret are all present
//  2. the locally logged-in Azure CLI session
//  3. the Azure SDK default chain
func Resolve(ctx context.Context, settings config.Settings) (azcore.TokenCredential, error) {
	logger := zerolog.Ctx(ctx)

	if settings.HasClientCredentials() {
		cred, err := azidentity.NewClientSecretCredential(
			settings.TenantID, settings.ClientID, settings.ClientSecret, nil)
		if err == nil {
			if err = verify(ctx, cred); err == nil {
				logger.Debug().Msg("authenticated with client-secret credential")
				return cred, nil
			}
		}
		// Explicit credentials were supplied but do not work; report that
		// rather than silently falling through to a different identity.
		return nil, &AuthError{Err: fmt.Errorf("client-secret credential rejected: %w", err)}
	}

	cliCred, cliErr := azidentity.NewAzureCLICredential(&azidentity.AzureCLICredentialOptions{
		TenantID: settings.TenantID,
	})
	if cliErr == nil {
		if cliErr = verify(ctx, cliCred); cliErr == nil {
			logger.Debug().Msg("authenticated with Azure CLI credential")
			return cliCred, nil
		}
	}

	defaultCred, defErr := azidentity.NewDefaultAzureCredential(nil)
	if defErr == nil {
		if defErr = verify(ctx, defaultCred); defErr == nil {
			logger.Debug().Msg("authenticated with default Azure credential chain")
			return defaultCred, nil
		}
	}

	return nil, &AuthError{Err: fmt.Errorf("cli: %v; sdk: %v", cliErr, defErr)}
}

func verify(ctx context.Context, cred azcore.TokenCredential) error {
	_, err := cred.GetToken(ctx, policy.TokenRequestOptions{Scopes: []string{TokenScope}})
	return err
}

// BearerToken acquires a management-scope bearer token from the resolved
// credential.
func BearerToken(ctx context.Context, cred azcore.TokenCredential) (string, error) {
	token, err := cred.GetToken(ctx, policy.TokenRequestOptions{Scopes: []string{TokenScope}})
	if err != nil {
		return "", fmt.Errorf("failed to acquire management token: %w", err)
	}
	return token.Token, nil
}
