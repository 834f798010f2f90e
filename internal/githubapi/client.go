package githubapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	gh "github.com/google/go-github/v66/github"
)

const (
	pathSeparatorConstant              = "/"
	ownerFieldNameConstant             = "owner"
	repositoryFieldNameConstant        = "repository"
	branchFieldNameConstant            = "branch"
	requiredValueMessageConstant       = "value required"
	tokenNotConfiguredMessageConstant  = "github api token not configured"
	invalidBaseURLTemplateConstant     = "invalid github api base url %q: %w"
	operationErrorTemplateConstant     = "%s %s failed: %s"
	invalidInputErrorTemplateConstant  = "%s: %s"
	emptyDefaultBranchMessageConstant  = "repository reports no default branch"
	unexpectedStatusTemplateConstant   = "unexpected status %d"
	defaultBranchOperationNameConstant = OperationName("DefaultBranch")
	branchExistsOperationNameConstant  = OperationName("BranchExists")
	noRedirectsConstant                = 0
)

// DefaultBaseURL is the public GitHub REST API endpoint.
const DefaultBaseURL = "https://api.github.com/"

// OperationName identifies a GitHub API call made by the client.
type OperationName string

// ErrTokenNotConfigured indicates the client was constructed without a credential.
var ErrTokenNotConfigured = errors.New(tokenNotConfiguredMessageConstant)

// InvalidInputError surfaces validation issues for operation inputs.
type InvalidInputError struct {
	FieldName string
	Message   string
}

// Error describes the invalid input.
func (inputError InvalidInputError) Error() string {
	return fmt.Sprintf(invalidInputErrorTemplateConstant, inputError.FieldName, inputError.Message)
}

// OperationError wraps failures returned by the GitHub API.
type OperationError struct {
	Operation  OperationName
	Repository string
	Cause      error
}

// Error describes the operation failure.
func (operationError OperationError) Error() string {
	return fmt.Sprintf(operationErrorTemplateConstant, operationError.Operation, operationError.Repository, operationError.Cause)
}

// Unwrap exposes the underlying cause.
func (operationError OperationError) Unwrap() error {
	return operationError.Cause
}

// Configuration controls how the client reaches the API.
type Configuration struct {
	Token      string
	BaseURL    string
	HTTPClient *http.Client
}

// Client answers default-branch and branch-existence questions.
type Client struct {
	client *gh.Client
}

// NewClient builds an authenticated client.
func NewClient(configuration Configuration) (*Client, error) {
	token := strings.TrimSpace(configuration.Token)
	if len(token) == 0 {
		return nil, ErrTokenNotConfigured
	}

	githubClient := gh.NewClient(configuration.HTTPClient).WithAuthToken(token)

	baseURL := strings.TrimSpace(configuration.BaseURL)
	if len(baseURL) > 0 {
		if !strings.HasSuffix(baseURL, pathSeparatorConstant) {
			baseURL += pathSeparatorConstant
		}
		parsedBaseURL, parseError := url.Parse(baseURL)
		if parseError != nil {
			return nil, fmt.Errorf(invalidBaseURLTemplateConstant, baseURL, parseError)
		}
		githubClient.BaseURL = parsedBaseURL
	}

	return &Client{client: githubClient}, nil
}

// DefaultBranch returns the repository's default branch name.
func (client *Client) DefaultBranch(executionContext context.Context, owner string, repository string) (string, error) {
	if validationError := validateRepository(owner, repository); validationError != nil {
		return "", validationError
	}

	repositoryDetails, _, requestError := client.client.Repositories.Get(executionContext, owner, repository)
	if requestError != nil {
		return "", OperationError{Operation: defaultBranchOperationNameConstant, Repository: owner + pathSeparatorConstant + repository, Cause: requestError}
	}

	defaultBranch := repositoryDetails.GetDefaultBranch()
	if len(defaultBranch) == 0 {
		return "", OperationError{Operation: defaultBranchOperationNameConstant, Repository: owner + pathSeparatorConstant + repository, Cause: errors.New(emptyDefaultBranchMessageConstant)}
	}
	return defaultBranch, nil
}

// BranchExists reports whether branch is present on the repository.
// Renamed branches answer with a redirect and count as absent.
func (client *Client) BranchExists(executionContext context.Context, owner string, repository string, branch string) (bool, error) {
	if validationError := validateRepository(owner, repository); validationError != nil {
		return false, validationError
	}
	if len(strings.TrimSpace(branch)) == 0 {
		return false, InvalidInputError{FieldName: branchFieldNameConstant, Message: requiredValueMessageConstant}
	}

	branchDetails, response, requestError := client.client.Repositories.GetBranch(executionContext, owner, repository, branch, noRedirectsConstant)
	statusCode := responseStatusCode(response, requestError)
	if statusCode != 0 {
		switch statusCode {
		case http.StatusNotFound, http.StatusMovedPermanently:
			return false, nil
		case http.StatusOK:
		default:
			if requestError == nil {
				requestError = fmt.Errorf(unexpectedStatusTemplateConstant, statusCode)
			}
		}
	}
	if requestError != nil {
		return false, OperationError{Operation: branchExistsOperationNameConstant, Repository: owner + pathSeparatorConstant + repository, Cause: requestError}
	}

	return branchDetails != nil, nil
}

func validateRepository(owner string, repository string) error {
	if len(strings.TrimSpace(owner)) == 0 {
		return InvalidInputError{FieldName: ownerFieldNameConstant, Message: requiredValueMessageConstant}
	}
	if len(strings.TrimSpace(repository)) == 0 {
		return InvalidInputError{FieldName: repositoryFieldNameConstant, Message: requiredValueMessageConstant}
	}
	return nil
}

func responseStatusCode(response *gh.Response, requestError error) int {
	if response != nil && response.Response != nil {
		return response.StatusCode
	}
	var errorResponse *gh.ErrorResponse
	if errors.As(requestError, &errorResponse) && errorResponse.Response != nil {
		return errorResponse.Response.StatusCode
	}
	return 0
}
