package homebrew

import (
	"fmt"
	"path/filepath"
	"strings"
)

const (
	// RepositoryBrew names the Homebrew/brew repository itself.
	RepositoryBrew = "brew"
	// RepositoryCore names the homebrew/core tap.
	RepositoryCore = "core"
	// RepositoryCask names the homebrew/cask tap.
	RepositoryCask = "cask"
	// RepositoryBundle names the homebrew/bundle tap.
	RepositoryBundle = "bundle"

	libraryDirectoryConstant       = "Library"
	tapsDirectoryConstant          = "Taps"
	officialTapUserConstant        = "homebrew"
	tapRepositoryPrefixConstant    = "homebrew-"
	tapNameSeparatorConstant       = "/"
	invalidTapNameTemplateConstant = "invalid tap name %q: expected user/repository or a path"
)

var supportedRepositoryNames = []string{RepositoryBrew, RepositoryCore, RepositoryCask, RepositoryBundle}

// SupportedRepositoryNames lists the repositories RepositoryLocation understands.
func SupportedRepositoryNames() []string {
	return append([]string(nil), supportedRepositoryNames...)
}

// Layout resolves paths relative to a Homebrew repository root.
type Layout struct {
	RepositoryPath string
}

// RepositoryLocation maps a repository short name onto its checkout.
func (layout Layout) RepositoryLocation(repositoryName string) (string, bool) {
	switch repositoryName {
	case RepositoryBrew:
		return layout.RepositoryPath, true
	case RepositoryCore, RepositoryCask, RepositoryBundle:
		return layout.tapDirectory(officialTapUserConstant, repositoryName), true
	default:
		return "", false
	}
}

// TapPath resolves a tap given as user/repository (homebrew/core) or as a
// filesystem path.
func (layout Layout) TapPath(tapName string) (string, error) {
	trimmedName := strings.TrimSpace(tapName)
	if IsTapPath(trimmedName) {
		return filepath.Clean(trimmedName), nil
	}

	nameParts := strings.Split(trimmedName, tapNameSeparatorConstant)
	if len(nameParts) != 2 || len(nameParts[0]) == 0 || len(nameParts[1]) == 0 {
		return "", fmt.Errorf(invalidTapNameTemplateConstant, tapName)
	}

	tapUser := strings.ToLower(nameParts[0])
	tapRepository := strings.TrimPrefix(strings.ToLower(nameParts[1]), tapRepositoryPrefixConstant)
	return layout.tapDirectory(tapUser, tapRepository), nil
}

// IsTapPath reports whether tapName is a filesystem path rather than a
// user/repository tap name.
func IsTapPath(tapName string) bool {
	trimmedName := strings.TrimSpace(tapName)
	return filepath.IsAbs(trimmedName) || strings.HasPrefix(trimmedName, ".")
}

// TapPaths resolves every tap name in order.
func (layout Layout) TapPaths(tapNames []string) ([]string, error) {
	tapPaths := make([]string, 0, len(tapNames))
	for _, tapName := range tapNames {
		tapPath, resolveError := layout.TapPath(tapName)
		if resolveError != nil {
			return nil, resolveError
		}
		tapPaths = append(tapPaths, tapPath)
	}
	return tapPaths, nil
}

func (layout Layout) tapDirectory(tapUser string, tapRepository string) string {
	return filepath.Join(layout.RepositoryPath, libraryDirectoryConstant, tapsDirectoryConstant, tapUser, tapRepositoryPrefixConstant+tapRepository)
}
