package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/ini.v1"
)

const (
	DefaultProfile    = "default"
	DefaultAPIVersion = "2025-04-01"
	DefaultBaseURL    = "https://management.azure.com"
)

// Settings carries everything the carbon pipeline needs from the environment.
// It is built once at startup and passed down explicitly; there is no
// process-wide configuration state.
type Settings struct {
	TenantID     string
	ClientID     string
	ClientSecret string
	APIVersion   string
	BaseURL      string
}

// HasClientCredentials reports whether an explicit client-credentials grant
// can be attempted.
func (s Settings) HasClientCredentials() bool {
	return s.TenantID != "" && s.ClientID != "" && s.ClientSecret != ""
}

// Load resolves settings from the environment (AZURE_TENANT_ID,
// AZURE_CLIENT_ID, AZURE_CLIENT_SECRET, GREENOPS_API_VERSION,
// GREENOPS_BASE_URL), falling back to the tenant recorded in the Azure CLI's
// ~/.azure/config profile when no tenant is set explicitly.
func Load(profile string) (Settings, error) {
	if profile == "" {
		profile = DefaultProfile
	}

	v := viper.New()
	_ = v.BindEnv("tenant_id", "AZURE_TENANT_ID")
	_ = v.BindEnv("client_id", "AZURE_CLIENT_ID")
	_ = v.BindEnv("client_secret", "AZURE_CLIENT_SECRET")
	_ = v.BindEnv("api_version", "GREENOPS_API_VERSION")
	_ = v.BindEnv("base_url", "GREENOPS_BASE_URL")
	v.SetDefault("api_version", DefaultAPIVersion)
	v.SetDefault("base_url", DefaultBaseURL)

	settings := Settings{
		TenantID:     v.GetString("tenant_id"),
		ClientID:     v.GetString("client_id"),
		ClientSecret: v.GetString("client_secret"),
		APIVersion:   v.GetString("api_version"),
		BaseURL:      v.GetString("base_url"),
	}

	if settings.TenantID == "" {
		tenant, err := tenantFromAzureProfile(profile)
		if err == nil {
			settings.TenantID = tenant
		}
	}

	return settings, nil
}

func tenantFromAzureProfile(profile string) (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("unable to get home directory: %w", err)
	}

	configPath := filepath.Join(homeDir, ".azure", "config")
	cfg, err := ini.Load(configPath)
	if err != nil {
		return "", fmt.Errorf("unable to load Azure config file: %w", err)
	}

	section, err := cfg.GetSection(profile)
	if err != nil {
		return "", fmt.Errorf("profile %s not found in Azure config: %w", profile, err)
	}

	return section.Key("tenant").String(), nil
}
