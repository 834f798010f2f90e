package githubauth

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

const (
	tokenSourceSeparatorConstant               = ":"
	environmentTokenSourceTypeValueConstant    = "env"
	fileTokenSourceTypeValueConstant           = "file"
	tokenSourceMissingErrorMessageConstant     = "token source must be provided"
	environmentNameMissingErrorMessageConstant = "environment variable name must be provided"
	filePathMissingErrorMessageConstant        = "token file path must be provided"
	unsupportedTokenSourceTemplateConstant     = "unsupported token source type %q"
	environmentTokenMissingTemplateConstant    = "environment variable %s is not set"
	fileReadErrorTemplateConstant              = "unable to read token file %s: %w"
	fileTokenEmptyTemplateConstant             = "token file %s is empty"
	credentialMissingMessageConstant           = "GitHub API credential not available"
	credentialMissingTemplateConstant          = "%w: set %s"
	credentialSourcesSeparatorConstant         = " or "
)

// Environment variable consulted by default for the API credential.
const EnvHomebrewGitHubAPIToken = "HOMEBREW_GITHUB_API_TOKEN"

// DefaultTokenSource is the token source used when none is configured.
const DefaultTokenSource = environmentTokenSourceTypeValueConstant + tokenSourceSeparatorConstant + EnvHomebrewGitHubAPIToken

// ErrCredentialMissing reports that no configured token source yielded a value.
var ErrCredentialMissing = errors.New(credentialMissingMessageConstant)

// TokenSourceType enumerates the supported token retrieval mechanisms.
type TokenSourceType string

// Token source type enumerations.
const (
	TokenSourceTypeEnvironment TokenSourceType = TokenSourceType(environmentTokenSourceTypeValueConstant)
	TokenSourceTypeFile        TokenSourceType = TokenSourceType(fileTokenSourceTypeValueConstant)
)

// TokenSource specifies where a credential lives.
type TokenSource struct {
	Type      TokenSourceType
	Reference string
}

// String renders the source in its textual "type:reference" form.
func (source TokenSource) String() string {
	return string(source.Type) + tokenSourceSeparatorConstant + source.Reference
}

// ParseTokenSource interprets "env:NAME", "file:/path", or a bare environment variable name.
func ParseTokenSource(sourceValue string) (TokenSource, error) {
	trimmedValue := strings.TrimSpace(sourceValue)
	if len(trimmedValue) == 0 {
		return TokenSource{}, errors.New(tokenSourceMissingErrorMessageConstant)
	}

	components := strings.SplitN(trimmedValue, tokenSourceSeparatorConstant, 2)
	if len(components) == 1 {
		return TokenSource{Type: TokenSourceTypeEnvironment, Reference: trimmedValue}, nil
	}

	sourceType := TokenSourceType(strings.ToLower(strings.TrimSpace(components[0])))
	reference := strings.TrimSpace(components[1])

	switch sourceType {
	case TokenSourceTypeEnvironment:
		if len(reference) == 0 {
			return TokenSource{}, errors.New(environmentNameMissingErrorMessageConstant)
		}
	case TokenSourceTypeFile:
		if len(reference) == 0 {
			return TokenSource{}, errors.New(filePathMissingErrorMessageConstant)
		}
	default:
		return TokenSource{}, fmt.Errorf(unsupportedTokenSourceTemplateConstant, sourceType)
	}

	return TokenSource{Type: sourceType, Reference: reference}, nil
}

// EnvironmentLookup obtains an environment variable value.
type EnvironmentLookup func(key string) (string, bool)

// FileReader reads the contents of a file path.
type FileReader func(path string) ([]byte, error)

// TokenResolver retrieves credentials from token sources.
type TokenResolver struct {
	environmentLookup EnvironmentLookup
	fileReader        FileReader
}

// NewTokenResolver creates a resolver; nil collaborators fall back to the process environment and filesystem.
func NewTokenResolver(environmentLookup EnvironmentLookup, fileReader FileReader) *TokenResolver {
	if environmentLookup == nil {
		environmentLookup = os.LookupEnv
	}
	if fileReader == nil {
		fileReader = os.ReadFile
	}
	return &TokenResolver{environmentLookup: environmentLookup, fileReader: fileReader}
}

// ResolveToken reads a single token source.
func (resolver *TokenResolver) ResolveToken(source TokenSource) (string, error) {
	switch source.Type {
	case TokenSourceTypeEnvironment:
		value, found := resolver.environmentLookup(source.Reference)
		trimmedValue := strings.TrimSpace(value)
		if !found || len(trimmedValue) == 0 {
			return "", fmt.Errorf(environmentTokenMissingTemplateConstant, source.Reference)
		}
		return trimmedValue, nil
	case TokenSourceTypeFile:
		contents, readError := resolver.fileReader(source.Reference)
		if readError != nil {
			return "", fmt.Errorf(fileReadErrorTemplateConstant, source.Reference, readError)
		}
		trimmedValue := strings.TrimSpace(string(contents))
		if len(trimmedValue) == 0 {
			return "", fmt.Errorf(fileTokenEmptyTemplateConstant, source.Reference)
		}
		return trimmedValue, nil
	default:
		return "", fmt.Errorf(unsupportedTokenSourceTemplateConstant, source.Type)
	}
}

// ResolveFirst returns the first token found among sources in order.
// ErrCredentialMissing is returned when every source comes up empty.
func (resolver *TokenResolver) ResolveFirst(sources []TokenSource) (string, error) {
	sourceLabels := make([]string, 0, len(sources))
	for _, source := range sources {
		token, resolveError := resolver.ResolveToken(source)
		if resolveError == nil {
			return token, nil
		}
		sourceLabels = append(sourceLabels, describeSource(source))
	}
	if len(sourceLabels) == 0 {
		sourceLabels = append(sourceLabels, EnvHomebrewGitHubAPIToken)
	}
	return "", fmt.Errorf(credentialMissingTemplateConstant, ErrCredentialMissing, strings.Join(sourceLabels, credentialSourcesSeparatorConstant))
}

func describeSource(source TokenSource) string {
	if source.Type == TokenSourceTypeEnvironment {
		return "the " + source.Reference + " environment variable"
	}
	return source.String()
}
