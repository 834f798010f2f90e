package contributions

import (
	"strings"

	"github.com/brewtools/brewdev/internal/homebrew"
)

const configurationRepositoryKeyConstant = "repository"

// Configuration captures settings for the contributions command.
type Configuration struct {
	Repository string `mapstructure:"repository"`
}

// DefaultConfiguration returns baseline settings.
func DefaultConfiguration() Configuration {
	return Configuration{Repository: homebrew.RepositoryBrew}
}

// DefaultConfigurationValues produces Viper defaults rooted at rootKey.
func DefaultConfigurationValues(rootKey string) map[string]any {
	return map[string]any{
		rootKey + "." + configurationRepositoryKeyConstant: DefaultConfiguration().Repository,
	}
}

func (configuration Configuration) sanitize() Configuration {
	sanitized := configuration
	sanitized.Repository = strings.ToLower(strings.TrimSpace(configuration.Repository))
	if len(sanitized.Repository) == 0 {
		sanitized.Repository = DefaultConfiguration().Repository
	}
	return sanitized
}
