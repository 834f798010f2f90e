package gitrepo

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

const (
	repositoryNotFoundTemplateConstant = "%s is not a git repository"
	repositoryOpenTemplateConstant     = "unable to open repository %s: %w"
	repositoryHeadTemplateConstant     = "unable to resolve HEAD in %s: %w"
)

// RepositoryNotFoundError indicates the path does not hold a git repository.
type RepositoryNotFoundError struct {
	Path string
}

// Error describes the missing repository.
func (notFoundError RepositoryNotFoundError) Error() string {
	return fmt.Sprintf(repositoryNotFoundTemplateConstant, notFoundError.Path)
}

// RepositoryState summarises a local clone.
type RepositoryState struct {
	Path       string
	HeadBranch string
	HeadHash   string
}

// RepositoryInspector reads local repositories through go-git.
type RepositoryInspector struct{}

// NewRepositoryInspector constructs a RepositoryInspector.
func NewRepositoryInspector() RepositoryInspector {
	return RepositoryInspector{}
}

// Inspect opens the repository at repositoryPath and reports its HEAD.
// A repository without commits yields an empty HeadHash.
func (RepositoryInspector) Inspect(repositoryPath string) (RepositoryState, error) {
	trimmedPath := strings.TrimSpace(repositoryPath)
	if len(trimmedPath) == 0 {
		return RepositoryState{}, RepositoryNotFoundError{Path: repositoryPath}
	}

	repository, openError := git.PlainOpen(trimmedPath)
	if openError != nil {
		if errors.Is(openError, git.ErrRepositoryNotExists) {
			return RepositoryState{}, RepositoryNotFoundError{Path: trimmedPath}
		}
		return RepositoryState{}, fmt.Errorf(repositoryOpenTemplateConstant, trimmedPath, openError)
	}

	state := RepositoryState{Path: trimmedPath}
	headReference, headError := repository.Head()
	if headError != nil {
		if errors.Is(headError, plumbing.ErrReferenceNotFound) {
			return state, nil
		}
		return RepositoryState{}, fmt.Errorf(repositoryHeadTemplateConstant, trimmedPath, headError)
	}

	if headReference.Name().IsBranch() {
		state.HeadBranch = headReference.Name().Short()
	}
	state.HeadHash = headReference.Hash().String()
	return state, nil
}
