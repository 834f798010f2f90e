package headbranches

import (
	"strings"

	"github.com/brewtools/brewdev/internal/githubauth"
)

const (
	configurationTokenSourceKeyConstant    = "token_source"
	configurationAPIBaseURLKeyConstant     = "api_base_url"
	configurationSupportedHostKeyConstant  = "supported_host"
	configurationExcludedOwnersKeyConstant = "excluded_owners"
	configurationTapsKeyConstant           = "taps"
	configurationFixKeyConstant            = "fix"
	configurationKeySeparatorConstant      = "."

	// DefaultSupportedHost is the only code host whose repositories are queried.
	DefaultSupportedHost = "github.com"
	// DefaultTap is scanned when no taps are configured.
	DefaultTap = "homebrew/core"
	// DefaultExcludedOwner names an organisation whose public repositories
	// reject requests made with SSO-restricted tokens.
	DefaultExcludedOwner = "github"
)

// Configuration captures settings for find-invalid-head-branches.
type Configuration struct {
	TokenSource    string   `mapstructure:"token_source"`
	APIBaseURL     string   `mapstructure:"api_base_url"`
	SupportedHost  string   `mapstructure:"supported_host"`
	ExcludedOwners []string `mapstructure:"excluded_owners"`
	Taps           []string `mapstructure:"taps"`
	Fix            bool     `mapstructure:"fix"`
}

// DefaultConfiguration returns baseline settings.
func DefaultConfiguration() Configuration {
	return Configuration{
		TokenSource:    githubauth.DefaultTokenSource,
		APIBaseURL:     "",
		SupportedHost:  DefaultSupportedHost,
		ExcludedOwners: []string{DefaultExcludedOwner},
		Taps:           []string{DefaultTap},
		Fix:            false,
	}
}

// DefaultConfigurationValues produces Viper defaults rooted at rootKey.
func DefaultConfigurationValues(rootKey string) map[string]any {
	defaults := DefaultConfiguration()
	return map[string]any{
		rootKey + configurationKeySeparatorConstant + configurationTokenSourceKeyConstant:    defaults.TokenSource,
		rootKey + configurationKeySeparatorConstant + configurationAPIBaseURLKeyConstant:     defaults.APIBaseURL,
		rootKey + configurationKeySeparatorConstant + configurationSupportedHostKeyConstant:  defaults.SupportedHost,
		rootKey + configurationKeySeparatorConstant + configurationExcludedOwnersKeyConstant: defaults.ExcludedOwners,
		rootKey + configurationKeySeparatorConstant + configurationTapsKeyConstant:           defaults.Taps,
		rootKey + configurationKeySeparatorConstant + configurationFixKeyConstant:            defaults.Fix,
	}
}

// sanitize trims values and restores defaults for empty required settings.
func (configuration Configuration) sanitize() Configuration {
	defaults := DefaultConfiguration()
	sanitized := configuration

	sanitized.TokenSource = strings.TrimSpace(configuration.TokenSource)
	if len(sanitized.TokenSource) == 0 {
		sanitized.TokenSource = defaults.TokenSource
	}

	sanitized.APIBaseURL = strings.TrimSpace(configuration.APIBaseURL)

	sanitized.SupportedHost = strings.ToLower(strings.TrimSpace(configuration.SupportedHost))
	if len(sanitized.SupportedHost) == 0 {
		sanitized.SupportedHost = defaults.SupportedHost
	}

	sanitized.ExcludedOwners = trimValues(configuration.ExcludedOwners)

	sanitized.Taps = trimValues(configuration.Taps)
	if len(sanitized.Taps) == 0 {
		sanitized.Taps = defaults.Taps
	}

	return sanitized
}

func trimValues(rawValues []string) []string {
	trimmedValues := make([]string, 0, len(rawValues))
	for _, rawValue := range rawValues {
		trimmedValue := strings.TrimSpace(rawValue)
		if len(trimmedValue) == 0 {
			continue
		}
		trimmedValues = append(trimmedValues, trimmedValue)
	}
	return trimmedValues
}
