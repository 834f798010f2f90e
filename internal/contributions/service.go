package contributions

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/brewtools/brewdev/internal/execshell"
	"github.com/brewtools/brewdev/internal/gitrepo"
)

const (
	gitLogSubcommandConstant            = "log"
	gitAuthoredFormatConstant           = "--format=%H"
	gitCoAuthorTrailerFormatConstant    = "--format=%(trailers:key=Co-authored-by:)"
	gitAuthorFlagPrefixConstant         = "--author="
	gitBeforeFlagPrefixConstant         = "--before="
	gitAfterFlagPrefixConstant          = "--after="
	dateOnlyLayoutConstant              = "2006-01-02"
	outputLineSeparatorConstant         = "\n"
	executorMissingMessageConstant      = "git executor not configured"
	inspectorMissingMessageConstant     = "repository inspector not configured"
	personMissingMessageConstant        = "either --username or --email must be provided"
	invalidDateTemplateConstant         = "invalid %s date %q: expected YYYY-MM-DD or RFC 3339"
	authoredCountFailedTemplateConstant = "unable to count commits in %s: %w"
	coAuthoredFailedTemplateConstant    = "unable to count co-authorships in %s: %w"
	countingMessageConstant             = "counting contributions"
	countedMessageConstant              = "contributions counted"
	logFieldRepositoryPathConstant      = "repository_path"
	logFieldHeadBranchConstant          = "head_branch"
	logFieldHeadHashConstant            = "head_hash"
	logFieldAuthoredConstant            = "authored"
	logFieldCoAuthoredConstant          = "co_authored"
	beforeBoundNameConstant             = "before"
	afterBoundNameConstant              = "after"
)

var (
	// ErrGitExecutorMissing indicates NewService received no GitExecutor.
	ErrGitExecutorMissing = errors.New(executorMissingMessageConstant)
	// ErrInspectorMissing indicates NewService received no RepositoryInspector.
	ErrInspectorMissing = errors.New(inspectorMissingMessageConstant)
	// ErrPersonMissing indicates neither a username nor an email was given.
	ErrPersonMissing = errors.New(personMissingMessageConstant)
)

// GitExecutor runs git commands.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// RepositoryInspector confirms a directory holds a git repository.
type RepositoryInspector interface {
	Inspect(repositoryPath string) (gitrepo.RepositoryState, error)
}

// DateRange bounds the commits considered. Empty bounds are open.
type DateRange struct {
	After  string
	Before string
}

// Validate checks that each bound is an ISO-8601 date.
func (dateRange DateRange) Validate() error {
	if validationError := validateDate(afterBoundNameConstant, dateRange.After); validationError != nil {
		return validationError
	}
	return validateDate(beforeBoundNameConstant, dateRange.Before)
}

func (dateRange DateRange) gitArguments() []string {
	var arguments []string
	if len(dateRange.Before) > 0 {
		arguments = append(arguments, gitBeforeFlagPrefixConstant+dateRange.Before)
	}
	if len(dateRange.After) > 0 {
		arguments = append(arguments, gitAfterFlagPrefixConstant+dateRange.After)
	}
	return arguments
}

// Counts holds the two tallies for a person.
type Counts struct {
	Authored   int
	CoAuthored int
}

// Add sums two Counts.
func (counts Counts) Add(other Counts) Counts {
	return Counts{Authored: counts.Authored + other.Authored, CoAuthored: counts.CoAuthored + other.CoAuthored}
}

// Query selects whose contributions are counted and when.
type Query struct {
	Person string
	Range  DateRange
}

// Service counts contributions in local repositories.
type Service struct {
	logger    *zap.Logger
	executor  GitExecutor
	inspector RepositoryInspector
}

// NewService validates collaborators and constructs a Service.
func NewService(logger *zap.Logger, executor GitExecutor, inspector RepositoryInspector) (*Service, error) {
	if executor == nil {
		return nil, ErrGitExecutorMissing
	}
	if inspector == nil {
		return nil, ErrInspectorMissing
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{logger: logger, executor: executor, inspector: inspector}, nil
}

// CountRepository tallies authored commits and co-authorships of the
// query's person in the repository at repositoryPath.
func (service *Service) CountRepository(executionContext context.Context, repositoryPath string, query Query) (Counts, error) {
	person := strings.TrimSpace(query.Person)
	if len(person) == 0 {
		return Counts{}, ErrPersonMissing
	}
	if rangeError := query.Range.Validate(); rangeError != nil {
		return Counts{}, rangeError
	}

	repositoryState, inspectError := service.inspector.Inspect(repositoryPath)
	if inspectError != nil {
		return Counts{}, inspectError
	}
	service.logger.Debug(
		countingMessageConstant,
		zap.String(logFieldRepositoryPathConstant, repositoryState.Path),
		zap.String(logFieldHeadBranchConstant, repositoryState.HeadBranch),
		zap.String(logFieldHeadHashConstant, repositoryState.HeadHash),
	)

	authoredArguments := []string{gitLogSubcommandConstant, gitAuthoredFormatConstant, gitAuthorFlagPrefixConstant + person}
	authoredResult, authoredError := service.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        append(authoredArguments, query.Range.gitArguments()...),
		WorkingDirectory: repositoryPath,
	})
	if authoredError != nil {
		return Counts{}, fmt.Errorf(authoredCountFailedTemplateConstant, repositoryPath, authoredError)
	}

	coAuthorArguments := []string{gitLogSubcommandConstant, gitCoAuthorTrailerFormatConstant}
	coAuthorResult, coAuthorError := service.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        append(coAuthorArguments, query.Range.gitArguments()...),
		WorkingDirectory: repositoryPath,
	})
	if coAuthorError != nil {
		return Counts{}, fmt.Errorf(coAuthoredFailedTemplateConstant, repositoryPath, coAuthorError)
	}

	counts := Counts{
		Authored:   countMatchingLines(authoredResult.StandardOutput, ""),
		CoAuthored: countMatchingLines(coAuthorResult.StandardOutput, person),
	}
	service.logger.Debug(
		countedMessageConstant,
		zap.String(logFieldRepositoryPathConstant, repositoryPath),
		zap.Int(logFieldAuthoredConstant, counts.Authored),
		zap.Int(logFieldCoAuthoredConstant, counts.CoAuthored),
	)
	return counts, nil
}

// countMatchingLines counts non-blank lines of output containing needle.
func countMatchingLines(output string, needle string) int {
	count := 0
	for _, line := range strings.Split(output, outputLineSeparatorConstant) {
		if len(strings.TrimSpace(line)) == 0 {
			continue
		}
		if strings.Contains(line, needle) {
			count++
		}
	}
	return count
}

func validateDate(boundName string, value string) error {
	if len(value) == 0 {
		return nil
	}
	if _, parseError := time.Parse(dateOnlyLayoutConstant, value); parseError == nil {
		return nil
	}
	if _, parseError := time.Parse(time.RFC3339, value); parseError == nil {
		return nil
	}
	return fmt.Errorf(invalidDateTemplateConstant, boundName, value)
}
