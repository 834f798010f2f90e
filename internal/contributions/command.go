package contributions

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/brewtools/brewdev/internal/execshell"
	"github.com/brewtools/brewdev/internal/gitrepo"
	"github.com/brewtools/brewdev/internal/homebrew"
	"github.com/brewtools/brewdev/internal/ui"
)

const (
	commandUseConstant                 = "contributions"
	commandShortDescriptionConstant    = "Count a person's contributions to Homebrew repositories"
	commandLongDescriptionConstant     = "contributions counts the commits a person directly authored and the commits they co-authored in Homebrew's git repositories."
	unexpectedArgumentsMessageConstant = "contributions does not accept positional arguments"
	unknownRepositoryTemplateConstant  = "Couldn't find location for %s. Is there a typo? We only support brew, core, cask, and bundle repos so far."
	repositorySkippedTemplateConstant  = "%s: skipped, %v"
	flagUsernameNameConstant           = "username"
	flagUsernameDescriptionConstant    = "The GitHub username of the user whose contributions you want to find"
	flagEmailNameConstant              = "email"
	flagEmailDescriptionConstant       = "A user's email address that they commit with (useful if not public on GitHub)"
	flagRepositoryNameConstant         = "repo"
	flagRepositoryDescriptionConstant  = "The Homebrew repository to search: brew, core, cask, bundle or all"
	flagBeforeNameConstant             = "before"
	flagBeforeDescriptionConstant      = "Date (ISO-8601 format) to search contributions prior to"
	flagAfterNameConstant              = "after"
	flagAfterDescriptionConstant       = "Date (ISO-8601 format) to search contributions after"

	// RepositoryAll aggregates every supported repository.
	RepositoryAll = "all"
)

var errUnexpectedArguments = errors.New(unexpectedArgumentsMessageConstant)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider returns the current command configuration.
type ConfigurationProvider func() Configuration

// HomebrewRepositoryProvider returns the configured Homebrew repository path.
type HomebrewRepositoryProvider func() string

// ShellExecutor runs both git and brew.
type ShellExecutor interface {
	GitExecutor
	homebrew.BrewExecutor
}

// CommandBuilder assembles the contributions command.
type CommandBuilder struct {
	LoggerProvider             LoggerProvider
	ConfigurationProvider      ConfigurationProvider
	HomebrewRepositoryProvider HomebrewRepositoryProvider
	Executor                   ShellExecutor
	RepositoryInspector        RepositoryInspector
	ConsoleFactory             func(writer io.Writer) *ui.Console
}

type commandOptions struct {
	Person         string
	RepositoryName string
	Range          DateRange
}

// Build constructs the contributions command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		RunE:  builder.run,
	}

	command.Flags().String(flagUsernameNameConstant, "", flagUsernameDescriptionConstant)
	command.Flags().String(flagEmailNameConstant, "", flagEmailDescriptionConstant)
	command.Flags().String(flagRepositoryNameConstant, "", flagRepositoryDescriptionConstant)
	command.Flags().String(flagBeforeNameConstant, "", flagBeforeDescriptionConstant)
	command.Flags().String(flagAfterNameConstant, "", flagAfterDescriptionConstant)
	command.MarkFlagsMutuallyExclusive(flagUsernameNameConstant, flagEmailNameConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	if len(arguments) > 0 {
		return errUnexpectedArguments
	}

	options, optionsError := builder.parseOptions(command)
	if optionsError != nil {
		return optionsError
	}

	repositoryNames, repositoryError := selectRepositories(options.RepositoryName)
	if repositoryError != nil {
		return repositoryError
	}

	logger := builder.resolveLogger()
	executor, executorError := builder.resolveExecutor(logger)
	if executorError != nil {
		return executorError
	}

	inspector := builder.RepositoryInspector
	if inspector == nil {
		inspector = gitrepo.NewRepositoryInspector()
	}

	service, serviceError := NewService(logger, executor, inspector)
	if serviceError != nil {
		return serviceError
	}

	configuredRepository := ""
	if builder.HomebrewRepositoryProvider != nil {
		configuredRepository = builder.HomebrewRepositoryProvider()
	}
	layout, layoutError := homebrew.Locator{ConfiguredRepository: configuredRepository, Executor: executor, Logger: logger}.Layout(command.Context())
	if layoutError != nil {
		return layoutError
	}

	query := Query{Person: options.Person, Range: options.Range}
	aggregate := options.RepositoryName == RepositoryAll
	console := builder.resolveConsole(command.ErrOrStderr())

	total := Counts{}
	for _, repositoryName := range repositoryNames {
		repositoryPath, _ := layout.RepositoryLocation(repositoryName)
		counts, countError := service.CountRepository(command.Context(), repositoryPath, query)
		if countError != nil {
			var notFoundError gitrepo.RepositoryNotFoundError
			if aggregate && errors.As(countError, &notFoundError) {
				console.Warn(fmt.Sprintf(repositorySkippedTemplateConstant, repositoryName, countError))
				continue
			}
			return countError
		}
		total = total.Add(counts)
	}

	fmt.Fprintln(command.OutOrStdout(), FormatSummary(options.Person, options.RepositoryName, total, options.Range))
	return nil
}

func (builder *CommandBuilder) parseOptions(command *cobra.Command) (commandOptions, error) {
	usernameValue, usernameError := command.Flags().GetString(flagUsernameNameConstant)
	if usernameError != nil {
		return commandOptions{}, usernameError
	}
	emailValue, emailError := command.Flags().GetString(flagEmailNameConstant)
	if emailError != nil {
		return commandOptions{}, emailError
	}
	person := strings.TrimSpace(usernameValue)
	if len(person) == 0 {
		person = strings.TrimSpace(emailValue)
	}
	if len(person) == 0 {
		return commandOptions{}, ErrPersonMissing
	}

	configuration := DefaultConfiguration()
	if builder.ConfigurationProvider != nil {
		configuration = builder.ConfigurationProvider()
	}
	configuration = configuration.sanitize()

	repositoryName := configuration.Repository
	if command.Flags().Changed(flagRepositoryNameConstant) {
		repositoryFlagValue, repositoryFlagError := command.Flags().GetString(flagRepositoryNameConstant)
		if repositoryFlagError != nil {
			return commandOptions{}, repositoryFlagError
		}
		repositoryName = strings.TrimSpace(repositoryFlagValue)
	}

	beforeValue, beforeError := command.Flags().GetString(flagBeforeNameConstant)
	if beforeError != nil {
		return commandOptions{}, beforeError
	}
	afterValue, afterError := command.Flags().GetString(flagAfterNameConstant)
	if afterError != nil {
		return commandOptions{}, afterError
	}
	dateRange := DateRange{After: strings.TrimSpace(afterValue), Before: strings.TrimSpace(beforeValue)}
	if rangeError := dateRange.Validate(); rangeError != nil {
		return commandOptions{}, rangeError
	}

	return commandOptions{Person: person, RepositoryName: repositoryName, Range: dateRange}, nil
}

func selectRepositories(repositoryName string) ([]string, error) {
	if repositoryName == RepositoryAll {
		return homebrew.SupportedRepositoryNames(), nil
	}
	if _, supported := (homebrew.Layout{}).RepositoryLocation(repositoryName); !supported {
		return nil, fmt.Errorf(unknownRepositoryTemplateConstant, repositoryName)
	}
	return []string{repositoryName}, nil
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

func (builder *CommandBuilder) resolveExecutor(logger *zap.Logger) (ShellExecutor, error) {
	if builder.Executor != nil {
		return builder.Executor, nil
	}
	return execshell.NewShellExecutor(logger, execshell.NewOSCommandRunner())
}

func (builder *CommandBuilder) resolveConsole(writer io.Writer) *ui.Console {
	if builder.ConsoleFactory != nil {
		return builder.ConsoleFactory(writer)
	}
	return ui.NewConsole(writer)
}
