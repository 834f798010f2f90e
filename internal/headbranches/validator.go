package headbranches

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/brewtools/brewdev/internal/formula"
	"github.com/brewtools/brewdev/internal/githubauth"
	"github.com/brewtools/brewdev/internal/gitrepo"
)

const (
	inspectorMissingMessageConstant     = "repository inspector not configured"
	mismatchWarningTemplateConstant     = "%s: %s => %s"
	fixingWarningTemplateConstant       = "Fixing %s..."
	defaultBranchFailedTemplateConstant = "%s: unable to determine the default branch of %s: %v"
	branchExistsFailedTemplateConstant  = "%s: unable to check branch %s on %s: %v"
	fixFailedTemplateConstant           = "%s: unable to rewrite %s: %v"
	scanningMessageTemplateConstant     = "Scanning %s..."
	formulaSkippedMessageConstant       = "formula skipped"
	fixNotAppliedMessageConstant        = "branch declaration not found; formula left unchanged"
	validationCompletedMessageConstant  = "head branch validation completed"
	logFieldFormulaConstant             = "formula"
	logFieldReasonConstant              = "reason"
	logFieldHeadURLConstant             = "head_url"
	logFieldPathConstant                = "path"
	logFieldExaminedCountConstant       = "examined"
	logFieldMismatchCountConstant       = "mismatches"
	logFieldFixedCountConstant          = "fixed"
	repositorySlugSeparatorConstant     = "/"
)

// ErrInspectorMissing indicates NewValidator received no RepositoryInspector.
var ErrInspectorMissing = errors.New(inspectorMissingMessageConstant)

// RepositoryInspector answers questions about a remote repository.
type RepositoryInspector interface {
	DefaultBranch(executionContext context.Context, owner string, repository string) (string, error)
	BranchExists(executionContext context.Context, owner string, repository string, branch string) (bool, error)
}

// Reporter receives user-facing warnings.
type Reporter interface {
	Warn(message string)
}

// Outcome describes how a head formula left the validation pass.
type Outcome string

// Outcomes recorded in a Report.
const (
	OutcomeSkipped          Outcome = "skipped"
	OutcomeNoMismatch       Outcome = "no_mismatch"
	OutcomeMismatchReported Outcome = "mismatch_reported"
	OutcomeMismatchFixed    Outcome = "mismatch_fixed"
)

// SkipReason explains why a formula was not fully evaluated.
type SkipReason string

// Skip reasons.
const (
	SkipReasonUnparseableURL      SkipReason = "unparseable_url"
	SkipReasonUnsupportedHost     SkipReason = "unsupported_host"
	SkipReasonExcludedOwner       SkipReason = "excluded_owner"
	SkipReasonNoExplicitBranch    SkipReason = "no_explicit_branch"
	SkipReasonDefaultBranchFailed SkipReason = "default_branch_failed"
	SkipReasonBranchLookupFailed  SkipReason = "branch_lookup_failed"
)

// BranchMismatch records a declared branch that is neither the default nor
// present on the remote.
type BranchMismatch struct {
	FormulaName    string
	DeclaredBranch string
	DefaultBranch  string
}

// Result captures the outcome for one formula.
type Result struct {
	FormulaName string
	Outcome     Outcome
	SkipReason  SkipReason
	Mismatch    *BranchMismatch
}

// Report summarises a validation pass.
type Report struct {
	Results []Result
}

// Count returns the number of results with the given outcome.
func (report Report) Count(outcome Outcome) int {
	count := 0
	for _, result := range report.Results {
		if result.Outcome == outcome {
			count++
		}
	}
	return count
}

// Mismatches returns every mismatch found, fixed or not.
func (report Report) Mismatches() []BranchMismatch {
	var mismatches []BranchMismatch
	for _, result := range report.Results {
		if result.Mismatch != nil {
			mismatches = append(mismatches, *result.Mismatch)
		}
	}
	return mismatches
}

// Options tune a validation pass.
type Options struct {
	Fix bool
}

// ValidatorDependencies bundles the collaborators of a Validator.
type ValidatorDependencies struct {
	Token          string
	Inspector      RepositoryInspector
	FileSystem     afero.Fs
	Reporter       Reporter
	Logger         *zap.Logger
	SupportedHost  string
	ExcludedOwners []string
}

// Validator compares declared head branches with the remote state.
type Validator struct {
	inspector      RepositoryInspector
	fileSystem     afero.Fs
	reporter       Reporter
	logger         *zap.Logger
	supportedHost  string
	excludedOwners map[string]struct{}
}

// NewValidator checks the credential before anything else and returns
// githubauth.ErrCredentialMissing when it is empty.
func NewValidator(dependencies ValidatorDependencies) (*Validator, error) {
	if len(strings.TrimSpace(dependencies.Token)) == 0 {
		return nil, githubauth.ErrCredentialMissing
	}
	if dependencies.Inspector == nil {
		return nil, ErrInspectorMissing
	}

	fileSystem := dependencies.FileSystem
	if fileSystem == nil {
		fileSystem = afero.NewOsFs()
	}
	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	reporter := dependencies.Reporter
	if reporter == nil {
		reporter = discardReporter{}
	}
	supportedHost := strings.ToLower(strings.TrimSpace(dependencies.SupportedHost))
	if len(supportedHost) == 0 {
		supportedHost = DefaultSupportedHost
	}

	excludedOwners := make(map[string]struct{}, len(dependencies.ExcludedOwners))
	for _, owner := range dependencies.ExcludedOwners {
		trimmedOwner := strings.ToLower(strings.TrimSpace(owner))
		if len(trimmedOwner) > 0 {
			excludedOwners[trimmedOwner] = struct{}{}
		}
	}

	return &Validator{
		inspector:      dependencies.Inspector,
		fileSystem:     fileSystem,
		reporter:       reporter,
		logger:         logger,
		supportedHost:  supportedHost,
		excludedOwners: excludedOwners,
	}, nil
}

// Validate examines each definition in order and always runs to completion.
// Per-formula failures are reported and skipped.
func (validator *Validator) Validate(executionContext context.Context, definitions []formula.Definition, options Options) Report {
	report := Report{}
	for _, definition := range definitions {
		if definition.Head == nil {
			continue
		}
		report.Results = append(report.Results, validator.validateDefinition(executionContext, definition, options))
	}

	validator.logger.Info(
		validationCompletedMessageConstant,
		zap.Int(logFieldExaminedCountConstant, len(report.Results)),
		zap.Int(logFieldMismatchCountConstant, len(report.Mismatches())),
		zap.Int(logFieldFixedCountConstant, report.Count(OutcomeMismatchFixed)),
	)
	return report
}

func (validator *Validator) validateDefinition(executionContext context.Context, definition formula.Definition, options Options) Result {
	remoteURL, parseError := gitrepo.ParseRemoteURL(definition.Head.URL)
	if parseError != nil {
		return validator.skip(definition, SkipReasonUnparseableURL)
	}
	if remoteURL.Host != validator.supportedHost {
		return validator.skip(definition, SkipReasonUnsupportedHost)
	}
	if _, excluded := validator.excludedOwners[strings.ToLower(remoteURL.Owner)]; excluded {
		return validator.skip(definition, SkipReasonExcludedOwner)
	}
	if !definition.Head.HasExplicitBranch() {
		return validator.skip(definition, SkipReasonNoExplicitBranch)
	}

	declaredBranch := definition.Head.Branch
	repositorySlug := remoteURL.Owner + repositorySlugSeparatorConstant + remoteURL.Repository
	validator.logger.Debug(fmt.Sprintf(scanningMessageTemplateConstant, definition.Name))

	defaultBranch, defaultBranchError := validator.inspector.DefaultBranch(executionContext, remoteURL.Owner, remoteURL.Repository)
	if defaultBranchError != nil {
		validator.reporter.Warn(fmt.Sprintf(defaultBranchFailedTemplateConstant, definition.Name, repositorySlug, defaultBranchError))
		return validator.skip(definition, SkipReasonDefaultBranchFailed)
	}
	if declaredBranch == defaultBranch {
		return Result{FormulaName: definition.Name, Outcome: OutcomeNoMismatch}
	}

	branchExists, branchExistsError := validator.inspector.BranchExists(executionContext, remoteURL.Owner, remoteURL.Repository, declaredBranch)
	if branchExistsError != nil {
		validator.reporter.Warn(fmt.Sprintf(branchExistsFailedTemplateConstant, definition.Name, declaredBranch, repositorySlug, branchExistsError))
		return validator.skip(definition, SkipReasonBranchLookupFailed)
	}
	if branchExists {
		return Result{FormulaName: definition.Name, Outcome: OutcomeNoMismatch}
	}

	mismatch := &BranchMismatch{FormulaName: definition.Name, DeclaredBranch: declaredBranch, DefaultBranch: defaultBranch}
	validator.reporter.Warn(fmt.Sprintf(mismatchWarningTemplateConstant, definition.Name, declaredBranch, defaultBranch))
	result := Result{FormulaName: definition.Name, Outcome: OutcomeMismatchReported, Mismatch: mismatch}
	if !options.Fix {
		return result
	}

	validator.reporter.Warn(fmt.Sprintf(fixingWarningTemplateConstant, definition.Name))
	changed, rewriteError := formula.ReplaceHeadBranch(validator.fileSystem, definition.Path, declaredBranch, defaultBranch)
	if rewriteError != nil {
		validator.reporter.Warn(fmt.Sprintf(fixFailedTemplateConstant, definition.Name, definition.Path, rewriteError))
		return result
	}
	if !changed {
		validator.logger.Debug(fixNotAppliedMessageConstant, zap.String(logFieldFormulaConstant, definition.Name), zap.String(logFieldPathConstant, definition.Path))
		return result
	}

	result.Outcome = OutcomeMismatchFixed
	return result
}

func (validator *Validator) skip(definition formula.Definition, reason SkipReason) Result {
	validator.logger.Debug(
		formulaSkippedMessageConstant,
		zap.String(logFieldFormulaConstant, definition.Name),
		zap.String(logFieldHeadURLConstant, definition.Head.URL),
		zap.String(logFieldReasonConstant, string(reason)),
	)
	return Result{FormulaName: definition.Name, Outcome: OutcomeSkipped, SkipReason: reason}
}

type discardReporter struct{}

func (discardReporter) Warn(string) {}
