package contributions_test

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/brewtools/brewdev/internal/contributions"
	"github.com/brewtools/brewdev/internal/ui"
)

var (
	testCorePathConstant   = filepath.Join(testRepositoryPathConstant, "Library", "Taps", "homebrew", "homebrew-core")
	testCaskPathConstant   = filepath.Join(testRepositoryPathConstant, "Library", "Taps", "homebrew", "homebrew-cask")
	testBundlePathConstant = filepath.Join(testRepositoryPathConstant, "Library", "Taps", "homebrew", "homebrew-bundle")
)

func newCommandExecutor() *recordingGitExecutor {
	return &recordingGitExecutor{
		brewOutput: testRepositoryPathConstant + "\n",
		outputs: map[string]string{
			authoredKey(testRepositoryPathConstant): testAuthoredOutputConstant,
			trailerKey(testRepositoryPathConstant):  testTrailerOutputConstant,
			authoredKey(testCorePathConstant):       "a1\nb2\n",
			trailerKey(testCorePathConstant):        "Co-authored-by: octocat <o@example.com>\n",
			authoredKey(testBundlePathConstant):     "c3\n",
			trailerKey(testBundlePathConstant):      "",
		},
	}
}

func runContributions(testInstance *testing.T, builder *contributions.CommandBuilder, arguments ...string) (string, string, error) {
	testInstance.Helper()
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)

	outputBuffer := &bytes.Buffer{}
	errorBuffer := &bytes.Buffer{}
	command.SetOut(outputBuffer)
	command.SetErr(errorBuffer)
	command.SilenceUsage = true
	command.SilenceErrors = true
	command.SetArgs(arguments)

	executionError := command.ExecuteContext(context.Background())
	return outputBuffer.String(), errorBuffer.String(), executionError
}

func TestContributionsCommand(testInstance *testing.T) {
	testCases := []struct {
		name           string
		arguments      []string
		configured     contributions.Configuration
		missing        map[string]bool
		expectedOutput string
		expectedStderr string
	}{
		{
			name:           "default_repository",
			arguments:      []string{"--username", "octocat"},
			configured:     contributions.DefaultConfiguration(),
			expectedOutput: "Person octocat directly authored 3 commits and co-authored 2 commits to brew in all time.\n",
		},
		{
			name:           "core_between_dates",
			arguments:      []string{"--username", "octocat", "--repo", "core", "--after", "2023-01-01", "--before", "2024-01-01"},
			configured:     contributions.DefaultConfiguration(),
			expectedOutput: "Person octocat directly authored 2 commits and co-authored 1 commits to core between 2023-01-01 and 2024-01-01.\n",
		},
		{
			name:           "configured_repository",
			arguments:      []string{"--email", "octocat@example.com"},
			configured:     contributions.Configuration{Repository: "bundle"},
			expectedOutput: "Person octocat@example.com directly authored 1 commits and co-authored 0 commits to bundle in all time.\n",
		},
		{
			name:           "all_repositories_skip_untapped",
			arguments:      []string{"--username", "octocat", "--repo", "all"},
			configured:     contributions.DefaultConfiguration(),
			missing:        map[string]bool{testCaskPathConstant: true},
			expectedOutput: "Person octocat directly authored 6 commits and co-authored 3 commits to all in all time.\n",
			expectedStderr: "Warning: cask: skipped, " + testCaskPathConstant + " is not a git repository\n",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subTest *testing.T) {
			configuration := testCase.configured
			builder := &contributions.CommandBuilder{
				ConfigurationProvider: func() contributions.Configuration { return configuration },
				Executor:              newCommandExecutor(),
				RepositoryInspector:   &stubRepositoryInspector{missing: testCase.missing},
				ConsoleFactory:        func(writer io.Writer) *ui.Console { return ui.NewPlainConsole(writer) },
			}

			output, stderr, executionError := runContributions(subTest, builder, testCase.arguments...)
			require.NoError(subTest, executionError)
			require.Equal(subTest, testCase.expectedOutput, output)
			require.Equal(subTest, testCase.expectedStderr, stderr)
		})
	}
}

func TestContributionsCommandErrors(testInstance *testing.T) {
	testCases := []struct {
		name          string
		arguments     []string
		missing       map[string]bool
		expectedError string
	}{
		{
			name:          "unknown_repository",
			arguments:     []string{"--username", "octocat", "--repo", "services"},
			expectedError: "Couldn't find location for services. Is there a typo? We only support brew, core, cask, and bundle repos so far.",
		},
		{
			name:          "missing_person",
			arguments:     []string{"--repo", "core"},
			expectedError: "either --username or --email must be provided",
		},
		{
			name:          "conflicting_person_flags",
			arguments:     []string{"--username", "octocat", "--email", "octocat@example.com"},
			expectedError: "none of the others can be",
		},
		{
			name:          "invalid_date",
			arguments:     []string{"--username", "octocat", "--after", "yesterday"},
			expectedError: `invalid after date "yesterday"`,
		},
		{
			name:          "positional_arguments",
			arguments:     []string{"octocat"},
			expectedError: "contributions does not accept positional arguments",
		},
		{
			name:          "untapped_single_repository",
			arguments:     []string{"--username", "octocat", "--repo", "cask"},
			missing:       map[string]bool{testCaskPathConstant: true},
			expectedError: "is not a git repository",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subTest *testing.T) {
			executor := newCommandExecutor()
			builder := &contributions.CommandBuilder{
				HomebrewRepositoryProvider: func() string { return testRepositoryPathConstant },
				Executor:                   executor,
				RepositoryInspector:        &stubRepositoryInspector{missing: testCase.missing},
			}

			output, _, executionError := runContributions(subTest, builder, testCase.arguments...)
			require.Error(subTest, executionError)
			require.Contains(subTest, executionError.Error(), testCase.expectedError)
			require.Empty(subTest, output)
			require.Empty(subTest, executor.invocations)
		})
	}
}
