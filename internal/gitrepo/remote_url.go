package gitrepo

import (
	"fmt"
	"strings"
)

const (
	sshProtocolPrefixConstant           = "ssh://"
	httpsProtocolPrefixConstant         = "https://"
	httpProtocolPrefixConstant          = "http://"
	gitProtocolPrefixConstant           = "git://"
	sshUserDelimiterConstant            = "@"
	sshPathDelimiterConstant            = ":"
	pathSeparatorConstant               = "/"
	gitSuffixConstant                   = ".git"
	remoteURLParseErrorTemplateConstant = "%s: %s"
	requiredValueMessageConstant        = "value required"
	invalidRemoteURLMessageConstant     = "invalid remote url"
	missingOwnerMessageConstant         = "remote url does not name an owner and repository"
)

// RemoteProtocol enumerates supported git remote protocols.
type RemoteProtocol string

// Supported remote protocols.
const (
	RemoteProtocolSSH   RemoteProtocol = RemoteProtocol("ssh")
	RemoteProtocolHTTPS RemoteProtocol = RemoteProtocol("https")
	RemoteProtocolHTTP  RemoteProtocol = RemoteProtocol("http")
	RemoteProtocolGit   RemoteProtocol = RemoteProtocol("git")
)

// RemoteURL is a remote location broken into its host, owner, and repository.
type RemoteURL struct {
	Protocol   RemoteProtocol
	Host       string
	Owner      string
	Repository string
}

// RemoteURLParseError indicates a remote string could not be parsed.
type RemoteURLParseError struct {
	Input   string
	Message string
}

// Error describes the parse failure.
func (parseError RemoteURLParseError) Error() string {
	return fmt.Sprintf(remoteURLParseErrorTemplateConstant, parseError.Input, parseError.Message)
}

// ParseRemoteURL converts a textual remote URL into a structured representation.
// Only the first two path segments are significant; anything after the
// repository name (for example "/tree/main") is ignored.
func ParseRemoteURL(remote string) (RemoteURL, error) {
	trimmedRemote := strings.TrimSpace(remote)
	if len(trimmedRemote) == 0 {
		return RemoteURL{}, RemoteURLParseError{Input: remote, Message: requiredValueMessageConstant}
	}

	switch {
	case strings.HasPrefix(trimmedRemote, httpsProtocolPrefixConstant):
		return parseHostPath(remote, RemoteProtocolHTTPS, strings.TrimPrefix(trimmedRemote, httpsProtocolPrefixConstant))
	case strings.HasPrefix(trimmedRemote, httpProtocolPrefixConstant):
		return parseHostPath(remote, RemoteProtocolHTTP, strings.TrimPrefix(trimmedRemote, httpProtocolPrefixConstant))
	case strings.HasPrefix(trimmedRemote, gitProtocolPrefixConstant):
		return parseHostPath(remote, RemoteProtocolGit, strings.TrimPrefix(trimmedRemote, gitProtocolPrefixConstant))
	case strings.HasPrefix(trimmedRemote, sshProtocolPrefixConstant):
		return parseHostPath(remote, RemoteProtocolSSH, strings.TrimPrefix(trimmedRemote, sshProtocolPrefixConstant))
	case strings.Contains(trimmedRemote, sshUserDelimiterConstant) && strings.Contains(trimmedRemote, sshPathDelimiterConstant):
		return parseSCPLikeRemote(remote, stripUser(trimmedRemote))
	default:
		return RemoteURL{}, RemoteURLParseError{Input: remote, Message: invalidRemoteURLMessageConstant}
	}
}

// Slug renders the owner/repository pair.
func (remoteURL RemoteURL) Slug() string {
	return remoteURL.Owner + pathSeparatorConstant + remoteURL.Repository
}

func stripUser(remote string) string {
	userSplitIndex := strings.Index(remote, sshUserDelimiterConstant)
	if userSplitIndex == -1 {
		return remote
	}
	return remote[userSplitIndex+1:]
}

func parseSCPLikeRemote(original string, hostAndPath string) (RemoteURL, error) {
	pathSplitIndex := strings.Index(hostAndPath, sshPathDelimiterConstant)
	if pathSplitIndex <= 0 {
		return RemoteURL{}, RemoteURLParseError{Input: original, Message: invalidRemoteURLMessageConstant}
	}
	host := strings.ToLower(hostAndPath[:pathSplitIndex])
	owner, repository, splitError := splitOwnerAndRepository(original, hostAndPath[pathSplitIndex+1:])
	if splitError != nil {
		return RemoteURL{}, splitError
	}
	return RemoteURL{Protocol: RemoteProtocolSSH, Host: host, Owner: owner, Repository: repository}, nil
}

func parseHostPath(original string, protocol RemoteProtocol, hostAndPath string) (RemoteURL, error) {
	slashIndex := strings.Index(hostAndPath, pathSeparatorConstant)
	if slashIndex <= 0 {
		return RemoteURL{}, RemoteURLParseError{Input: original, Message: invalidRemoteURLMessageConstant}
	}
	host := strings.ToLower(stripUser(hostAndPath[:slashIndex]))
	owner, repository, splitError := splitOwnerAndRepository(original, hostAndPath[slashIndex+1:])
	if splitError != nil {
		return RemoteURL{}, splitError
	}
	return RemoteURL{Protocol: protocol, Host: host, Owner: owner, Repository: repository}, nil
}

func splitOwnerAndRepository(original string, path string) (string, string, error) {
	segments := strings.Split(strings.Trim(path, pathSeparatorConstant), pathSeparatorConstant)
	if len(segments) < 2 {
		return "", "", RemoteURLParseError{Input: original, Message: missingOwnerMessageConstant}
	}
	owner := segments[0]
	repository := strings.TrimSuffix(segments[1], gitSuffixConstant)
	if len(owner) == 0 || len(repository) == 0 {
		return "", "", RemoteURLParseError{Input: original, Message: missingOwnerMessageConstant}
	}
	return owner, repository, nil
}
