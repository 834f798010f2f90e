package headbranches

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/brewtools/brewdev/internal/execshell"
	"github.com/brewtools/brewdev/internal/formula"
	"github.com/brewtools/brewdev/internal/githubapi"
	"github.com/brewtools/brewdev/internal/githubauth"
	"github.com/brewtools/brewdev/internal/homebrew"
	"github.com/brewtools/brewdev/internal/ui"
	pathutils "github.com/brewtools/brewdev/internal/utils/path"
)

const (
	commandUseConstant                    = "find-invalid-head-branches"
	commandShortDescriptionConstant       = "Find formulae whose HEAD branch no longer exists upstream"
	commandLongDescriptionConstant        = "find-invalid-head-branches reports formulae whose head branch is neither the default branch nor present on the GitHub repository, optionally rewriting them to use the default branch."
	unexpectedArgumentsMessageConstant    = "find-invalid-head-branches does not accept positional arguments"
	tokenSourceParseErrorTemplateConstant = "invalid token source: %w"
	githubClientErrorTemplateConstant     = "unable to create GitHub client: %w"
	formulaLoadErrorTemplateConstant      = "unable to load formulae: %w"
	flagFixNameConstant                   = "fix"
	flagFixDescriptionConstant            = "Rewrite the head branch in each mismatched formula to the remote default branch"
	flagTokenSourceNameConstant           = "token-source"
	flagTokenSourceDescriptionConstant    = "Token source (env:NAME or file:/path)"
	flagTapNameConstant                   = "tap"
	flagTapDescriptionConstant            = "Tap to scan, as user/repository or a path (repeatable)"
	logFieldTapsConstant                  = "taps"
	logFieldHeadFormulaCountConstant      = "head_formulae"
	formulaeLoadedMessageConstant         = "head formulae loaded"
)

var errUnexpectedArguments = errors.New(unexpectedArgumentsMessageConstant)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider returns the current command configuration.
type ConfigurationProvider func() Configuration

// HomebrewRepositoryProvider returns the configured Homebrew repository path.
type HomebrewRepositoryProvider func() string

// InspectorFactory creates the RepositoryInspector used for remote queries.
type InspectorFactory func(token string, baseURL string) (RepositoryInspector, error)

// ReporterFactory creates the warning sink for a command run.
type ReporterFactory func(writer io.Writer) Reporter

// CommandBuilder assembles the find-invalid-head-branches command.
type CommandBuilder struct {
	LoggerProvider             LoggerProvider
	ConfigurationProvider      ConfigurationProvider
	HomebrewRepositoryProvider HomebrewRepositoryProvider
	TokenResolver              *githubauth.TokenResolver
	InspectorFactory           InspectorFactory
	ReporterFactory            ReporterFactory
	BrewExecutor               homebrew.BrewExecutor
	FileSystem                 afero.Fs
	HTTPClient                 *http.Client
}

// Build constructs the find-invalid-head-branches command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		RunE:  builder.run,
	}

	command.Flags().Bool(flagFixNameConstant, false, flagFixDescriptionConstant)
	command.Flags().String(flagTokenSourceNameConstant, "", flagTokenSourceDescriptionConstant)
	command.Flags().StringSlice(flagTapNameConstant, nil, flagTapDescriptionConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	if len(arguments) > 0 {
		return errUnexpectedArguments
	}

	configuration, configurationError := builder.resolveConfiguration(command)
	if configurationError != nil {
		return configurationError
	}

	tokenSource, tokenSourceError := githubauth.ParseTokenSource(configuration.TokenSource)
	if tokenSourceError != nil {
		return fmt.Errorf(tokenSourceParseErrorTemplateConstant, tokenSourceError)
	}

	tokenResolver := builder.TokenResolver
	if tokenResolver == nil {
		tokenResolver = githubauth.NewTokenResolver(nil, nil)
	}
	token, tokenError := tokenResolver.ResolveFirst([]githubauth.TokenSource{tokenSource})
	if tokenError != nil {
		return tokenError
	}

	logger := builder.resolveLogger()

	inspector, inspectorError := builder.resolveInspector(token, configuration.APIBaseURL)
	if inspectorError != nil {
		return fmt.Errorf(githubClientErrorTemplateConstant, inspectorError)
	}

	fileSystem := builder.FileSystem
	if fileSystem == nil {
		fileSystem = afero.NewOsFs()
	}

	validator, validatorError := NewValidator(ValidatorDependencies{
		Token:          token,
		Inspector:      inspector,
		FileSystem:     fileSystem,
		Reporter:       builder.resolveReporter(command.ErrOrStderr()),
		Logger:         logger,
		SupportedHost:  configuration.SupportedHost,
		ExcludedOwners: configuration.ExcludedOwners,
	})
	if validatorError != nil {
		return validatorError
	}

	tapPaths, tapError := builder.resolveTapPaths(command, logger, configuration.Taps)
	if tapError != nil {
		return tapError
	}

	definitions, loadError := formula.NewLoader(fileSystem, logger).Load(tapPaths)
	if loadError != nil {
		return fmt.Errorf(formulaLoadErrorTemplateConstant, loadError)
	}
	headDefinitions := formula.HeadDefinitions(definitions)
	logger.Debug(formulaeLoadedMessageConstant, zap.Strings(logFieldTapsConstant, tapPaths), zap.Int(logFieldHeadFormulaCountConstant, len(headDefinitions)))

	validator.Validate(command.Context(), headDefinitions, Options{Fix: configuration.Fix})
	return nil
}

func (builder *CommandBuilder) resolveConfiguration(command *cobra.Command) (Configuration, error) {
	configuration := DefaultConfiguration()
	if builder.ConfigurationProvider != nil {
		configuration = builder.ConfigurationProvider()
	}

	if command.Flags().Changed(flagFixNameConstant) {
		fixValue, fixFlagError := command.Flags().GetBool(flagFixNameConstant)
		if fixFlagError != nil {
			return Configuration{}, fixFlagError
		}
		configuration.Fix = fixValue
	}

	if command.Flags().Changed(flagTokenSourceNameConstant) {
		tokenSourceValue, tokenSourceFlagError := command.Flags().GetString(flagTokenSourceNameConstant)
		if tokenSourceFlagError != nil {
			return Configuration{}, tokenSourceFlagError
		}
		configuration.TokenSource = tokenSourceValue
	}

	if command.Flags().Changed(flagTapNameConstant) {
		tapValues, tapFlagError := command.Flags().GetStringSlice(flagTapNameConstant)
		if tapFlagError != nil {
			return Configuration{}, tapFlagError
		}
		configuration.Taps = tapValues
	}

	return configuration.sanitize(), nil
}

func (builder *CommandBuilder) resolveTapPaths(command *cobra.Command, logger *zap.Logger, tapNames []string) ([]string, error) {
	expandedTapNames := pathutils.NewHomeExpander().ExpandAll(tapNames)

	requiresRepository := false
	for _, tapName := range expandedTapNames {
		if !homebrew.IsTapPath(tapName) {
			requiresRepository = true
			break
		}
	}

	layout := homebrew.Layout{}
	if requiresRepository {
		configuredRepository := ""
		if builder.HomebrewRepositoryProvider != nil {
			configuredRepository = builder.HomebrewRepositoryProvider()
		}

		brewExecutor, executorError := builder.resolveBrewExecutor(logger)
		if executorError != nil {
			return nil, executorError
		}

		locator := homebrew.Locator{
			ConfiguredRepository: configuredRepository,
			Executor:             brewExecutor,
			Logger:               logger,
		}
		resolvedLayout, layoutError := locator.Layout(command.Context())
		if layoutError != nil {
			return nil, layoutError
		}
		layout = resolvedLayout
	}

	return layout.TapPaths(expandedTapNames)
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}

	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}

	return logger
}

func (builder *CommandBuilder) resolveInspector(token string, baseURL string) (RepositoryInspector, error) {
	if builder.InspectorFactory != nil {
		return builder.InspectorFactory(token, baseURL)
	}
	return githubapi.NewClient(githubapi.Configuration{Token: token, BaseURL: baseURL, HTTPClient: builder.HTTPClient})
}

func (builder *CommandBuilder) resolveReporter(writer io.Writer) Reporter {
	if builder.ReporterFactory != nil {
		return builder.ReporterFactory(writer)
	}
	return ui.NewConsole(writer)
}

func (builder *CommandBuilder) resolveBrewExecutor(logger *zap.Logger) (homebrew.BrewExecutor, error) {
	if builder.BrewExecutor != nil {
		return builder.BrewExecutor, nil
	}
	return execshell.NewShellExecutor(logger, execshell.NewOSCommandRunner())
}
