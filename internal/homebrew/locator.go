package homebrew

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/brewtools/brewdev/internal/execshell"
	pathutils "github.com/brewtools/brewdev/internal/utils/path"
)

const (
	brewRepositoryFlagConstant          = "--repository"
	repositoryNotFoundMessageConstant   = "unable to locate the Homebrew repository"
	brewLookupFailedTemplateConstant    = "%w: set homebrew.repository or HOMEBREW_REPOSITORY (brew --repository failed: %v)"
	repositoryResolvedMessageConstant   = "resolved Homebrew repository"
	logFieldRepositoryPathConstant      = "repository_path"
	logFieldRepositorySourceConstant    = "source"
	repositorySourceConfiguredConstant  = "configuration"
	repositorySourceBrewCommandConstant = "brew"
)

// ErrRepositoryNotFound indicates no Homebrew repository could be determined.
var ErrRepositoryNotFound = errors.New(repositoryNotFoundMessageConstant)

// BrewExecutor runs the brew executable.
type BrewExecutor interface {
	ExecuteBrew(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// Locator determines the Homebrew repository root.
type Locator struct {
	ConfiguredRepository string
	Executor             BrewExecutor
	HomeExpander         *pathutils.HomeExpander
	Logger               *zap.Logger
}

// Layout resolves the repository root and returns a Layout for it. An
// explicitly configured path wins; otherwise `brew --repository` is asked.
func (locator Locator) Layout(executionContext context.Context) (Layout, error) {
	logger := locator.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	configuredRepository := strings.TrimSpace(locator.ConfiguredRepository)
	if len(configuredRepository) > 0 {
		expander := locator.HomeExpander
		if expander == nil {
			expander = pathutils.NewHomeExpander()
		}
		repositoryPath := expander.Expand(configuredRepository)
		logger.Debug(repositoryResolvedMessageConstant, zap.String(logFieldRepositoryPathConstant, repositoryPath), zap.String(logFieldRepositorySourceConstant, repositorySourceConfiguredConstant))
		return Layout{RepositoryPath: repositoryPath}, nil
	}

	if locator.Executor == nil {
		return Layout{}, ErrRepositoryNotFound
	}

	executionResult, executionError := locator.Executor.ExecuteBrew(executionContext, execshell.CommandDetails{
		Arguments: []string{brewRepositoryFlagConstant},
	})
	if executionError != nil {
		return Layout{}, fmt.Errorf(brewLookupFailedTemplateConstant, ErrRepositoryNotFound, executionError)
	}

	repositoryPath := strings.TrimSpace(executionResult.StandardOutput)
	if len(repositoryPath) == 0 {
		return Layout{}, ErrRepositoryNotFound
	}

	logger.Debug(repositoryResolvedMessageConstant, zap.String(logFieldRepositoryPathConstant, repositoryPath), zap.String(logFieldRepositorySourceConstant, repositorySourceBrewCommandConstant))
	return Layout{RepositoryPath: repositoryPath}, nil
}
