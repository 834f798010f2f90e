package formula

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/afero"
)

const (
	branchDeclarationTemplateConstant = `branch: "%s"`
	emptyBranchMessageConstant        = "branch names must not be empty"
	rewriteReadTemplateConstant       = "unable to read %s: %w"
	rewriteStatTemplateConstant       = "unable to stat %s: %w"
	rewriteWriteTemplateConstant      = "unable to write %s: %w"
)

// ErrEmptyBranch indicates ReplaceHeadBranch received an empty branch name.
var ErrEmptyBranch = errors.New(emptyBranchMessageConstant)

// BranchDeclaration renders the literal used to declare branch in formula source.
func BranchDeclaration(branch string) string {
	return fmt.Sprintf(branchDeclarationTemplateConstant, branch)
}

// ReplaceHeadBranch rewrites every `branch: "<oldBranch>"` literal in the file
// at path to declare newBranch. All other bytes are preserved. When the
// literal is absent the file is left untouched and false is returned.
func ReplaceHeadBranch(fileSystem afero.Fs, path string, oldBranch string, newBranch string) (bool, error) {
	if len(oldBranch) == 0 || len(newBranch) == 0 {
		return false, ErrEmptyBranch
	}
	if oldBranch == newBranch {
		return false, nil
	}

	fileInfo, statError := fileSystem.Stat(path)
	if statError != nil {
		return false, fmt.Errorf(rewriteStatTemplateConstant, path, statError)
	}

	contents, readError := afero.ReadFile(fileSystem, path)
	if readError != nil {
		return false, fmt.Errorf(rewriteReadTemplateConstant, path, readError)
	}

	oldDeclaration := BranchDeclaration(oldBranch)
	source := string(contents)
	if !strings.Contains(source, oldDeclaration) {
		return false, nil
	}

	rewritten := strings.ReplaceAll(source, oldDeclaration, BranchDeclaration(newBranch))
	if writeError := afero.WriteFile(fileSystem, path, []byte(rewritten), fileInfo.Mode().Perm()); writeError != nil {
		return false, fmt.Errorf(rewriteWriteTemplateConstant, path, writeError)
	}
	return true, nil
}
