package formula_test

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/brewtools/brewdev/internal/formula"
)

const (
	testFormulaPathConstant   = "/taps/homebrew-core/Formula/f/foo.rb"
	testFormulaSourceConstant = `class Foo < Formula
  desc "Tool that uses the master branch"
  url "https://example.com/foo-1.0.tar.gz"
  head "https://github.com/acme/foo.git", branch: "master"

  resource "helper" do
    url "https://github.com/acme/helper.git", branch: "masterful"
  end
end
`
	testFormulaFixedSourceConstant = `class Foo < Formula
  desc "Tool that uses the master branch"
  url "https://example.com/foo-1.0.tar.gz"
  head "https://github.com/acme/foo.git", branch: "main"

  resource "helper" do
    url "https://github.com/acme/helper.git", branch: "masterful"
  end
end
`
)

func TestReplaceHeadBranchRewritesOnlyTheDeclaration(t *testing.T) {
	fileSystem := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fileSystem, testFormulaPathConstant, []byte(testFormulaSourceConstant), 0o644))

	changed, replaceError := formula.ReplaceHeadBranch(fileSystem, testFormulaPathConstant, "master", "main")
	require.NoError(t, replaceError)
	require.True(t, changed)

	rewritten, readError := afero.ReadFile(fileSystem, testFormulaPathConstant)
	require.NoError(t, readError)
	require.Equal(t, testFormulaFixedSourceConstant, string(rewritten))

	fileInfo, statError := fileSystem.Stat(testFormulaPathConstant)
	require.NoError(t, statError)
	require.Equal(t, "-rw-r--r--", fileInfo.Mode().Perm().String())
}

func TestReplaceHeadBranchIsIdempotent(t *testing.T) {
	fileSystem := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fileSystem, testFormulaPathConstant, []byte(testFormulaSourceConstant), 0o644))

	firstChanged, firstError := formula.ReplaceHeadBranch(fileSystem, testFormulaPathConstant, "master", "main")
	require.NoError(t, firstError)
	require.True(t, firstChanged)
	afterFirst, _ := afero.ReadFile(fileSystem, testFormulaPathConstant)

	secondChanged, secondError := formula.ReplaceHeadBranch(fileSystem, testFormulaPathConstant, "master", "main")
	require.NoError(t, secondError)
	require.False(t, secondChanged)
	afterSecond, _ := afero.ReadFile(fileSystem, testFormulaPathConstant)

	require.Equal(t, string(afterFirst), string(afterSecond))
}

func TestReplaceHeadBranchNoMatchLeavesFileUntouched(t *testing.T) {
	testCases := []struct {
		name      string
		oldBranch string
		newBranch string
	}{
		{name: "branch_not_declared", oldBranch: "develop", newBranch: "main"},
		{name: "bare_substring_only", oldBranch: "mast", newBranch: "main"},
		{name: "same_branch", oldBranch: "master", newBranch: "master"},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			fileSystem := afero.NewMemMapFs()
			require.NoError(t, afero.WriteFile(fileSystem, testFormulaPathConstant, []byte(testFormulaSourceConstant), 0o644))

			changed, replaceError := formula.ReplaceHeadBranch(fileSystem, testFormulaPathConstant, testCase.oldBranch, testCase.newBranch)
			require.NoError(t, replaceError)
			require.False(t, changed)

			contents, readError := afero.ReadFile(fileSystem, testFormulaPathConstant)
			require.NoError(t, readError)
			require.Equal(t, testFormulaSourceConstant, string(contents))
		})
	}
}

func TestReplaceHeadBranchErrors(t *testing.T) {
	fileSystem := afero.NewMemMapFs()

	_, emptyError := formula.ReplaceHeadBranch(fileSystem, testFormulaPathConstant, "", "main")
	require.ErrorIs(t, emptyError, formula.ErrEmptyBranch)

	_, missingError := formula.ReplaceHeadBranch(fileSystem, "/missing.rb", "master", "main")
	require.Error(t, missingError)
}
