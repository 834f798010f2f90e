package headbranches_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/brewtools/brewdev/internal/execshell"
	"github.com/brewtools/brewdev/internal/githubauth"
	"github.com/brewtools/brewdev/internal/headbranches"
	"github.com/brewtools/brewdev/internal/ui"
)

const (
	testTapPathConstant          = "/taps/homebrew-core"
	testTokenEnvironmentConstant = "TEST_HEAD_BRANCHES_TOKEN"
	testCommandTokenConstant     = "ghp_command_token"
	testBarSourceConstant        = "class Bar < Formula\n  head \"https://github.com/acme/bar.git\", branch: \"main\"\nend\n"
	testGitlabSourceConstant     = "class Baz < Formula\n  head \"https://gitlab.com/acme/baz.git\", branch: \"master\"\nend\n"
)

type countingInspectorFactory struct {
	inspector   headbranches.RepositoryInspector
	invocations int
}

func (factory *countingInspectorFactory) create(string, string) (headbranches.RepositoryInspector, error) {
	factory.invocations++
	return factory.inspector, nil
}

type countingBrewExecutor struct {
	repositoryPath string
	invocations    int
}

func (executor *countingBrewExecutor) ExecuteBrew(context.Context, execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.invocations++
	return execshell.ExecutionResult{StandardOutput: executor.repositoryPath + "\n"}, nil
}

func plainReporterFactory(writer io.Writer) headbranches.Reporter {
	return ui.NewPlainConsole(writer)
}

func tokenResolver(available bool) *githubauth.TokenResolver {
	return githubauth.NewTokenResolver(func(key string) (string, bool) {
		if available && key == testTokenEnvironmentConstant {
			return testCommandTokenConstant, true
		}
		return "", false
	}, nil)
}

func executeCommand(testInstance *testing.T, builder *headbranches.CommandBuilder, arguments ...string) (string, error) {
	testInstance.Helper()
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)

	errorBuffer := &bytes.Buffer{}
	command.SetOut(io.Discard)
	command.SetErr(errorBuffer)
	command.SilenceUsage = true
	command.SilenceErrors = true
	command.SetArgs(arguments)

	executionError := command.ExecuteContext(context.Background())
	return errorBuffer.String(), executionError
}

func writeTapFormula(testInstance *testing.T, fileSystem afero.Fs, tapPath string, name string, source string) string {
	testInstance.Helper()
	formulaPath := filepath.Join(tapPath, "Formula", name+".rb")
	require.NoError(testInstance, fileSystem.MkdirAll(filepath.Dir(formulaPath), 0o755))
	require.NoError(testInstance, afero.WriteFile(fileSystem, formulaPath, []byte(source), 0o644))
	return formulaPath
}

func TestCommandFailsFastWithoutCredential(testInstance *testing.T) {
	inspectorFactory := &countingInspectorFactory{inspector: &stubInspector{}}
	brewExecutor := &countingBrewExecutor{repositoryPath: "/brew"}

	builder := &headbranches.CommandBuilder{
		ConfigurationProvider: func() headbranches.Configuration {
			configuration := headbranches.DefaultConfiguration()
			configuration.TokenSource = "env:" + testTokenEnvironmentConstant
			return configuration
		},
		TokenResolver:    tokenResolver(false),
		InspectorFactory: inspectorFactory.create,
		BrewExecutor:     brewExecutor,
		FileSystem:       afero.NewMemMapFs(),
	}

	_, executionError := executeCommand(testInstance, builder)
	require.ErrorIs(testInstance, executionError, githubauth.ErrCredentialMissing)
	require.Contains(testInstance, executionError.Error(), testTokenEnvironmentConstant)
	require.Zero(testInstance, inspectorFactory.invocations)
	require.Zero(testInstance, brewExecutor.invocations)
}

func TestCommandRejectsPositionalArguments(testInstance *testing.T) {
	inspectorFactory := &countingInspectorFactory{inspector: &stubInspector{}}
	builder := &headbranches.CommandBuilder{
		TokenResolver:    tokenResolver(true),
		InspectorFactory: inspectorFactory.create,
	}

	_, executionError := executeCommand(testInstance, builder, "foo")
	require.Error(testInstance, executionError)
	require.Zero(testInstance, inspectorFactory.invocations)
}

func TestCommandRejectsInvalidTokenSource(testInstance *testing.T) {
	builder := &headbranches.CommandBuilder{TokenResolver: tokenResolver(true)}

	_, executionError := executeCommand(testInstance, builder, "--token-source", "vault:secret")
	require.Error(testInstance, executionError)
}

func TestCommandValidatesAndFixesAgainstGitHub(testInstance *testing.T) {
	var authorizationHeaders []string
	mux := http.NewServeMux()
	writeJSON := func(responseWriter http.ResponseWriter, status int, payload any) {
		responseWriter.Header().Set("Content-Type", "application/json")
		responseWriter.WriteHeader(status)
		require.NoError(testInstance, json.NewEncoder(responseWriter).Encode(payload))
	}
	mux.HandleFunc("/repos/acme/foo", func(responseWriter http.ResponseWriter, request *http.Request) {
		authorizationHeaders = append(authorizationHeaders, request.Header.Get("Authorization"))
		writeJSON(responseWriter, http.StatusOK, map[string]any{"name": "foo", "default_branch": "main"})
	})
	mux.HandleFunc("/repos/acme/foo/branches/master", func(responseWriter http.ResponseWriter, request *http.Request) {
		writeJSON(responseWriter, http.StatusNotFound, map[string]any{"message": "Branch not found"})
	})
	mux.HandleFunc("/repos/acme/bar", func(responseWriter http.ResponseWriter, request *http.Request) {
		writeJSON(responseWriter, http.StatusOK, map[string]any{"name": "bar", "default_branch": "main"})
	})
	server := httptest.NewServer(mux)
	testInstance.Cleanup(server.Close)

	fileSystem := afero.NewMemMapFs()
	fooPath := writeTapFormula(testInstance, fileSystem, testTapPathConstant, "foo", testFooSourceConstant)
	barPath := writeTapFormula(testInstance, fileSystem, testTapPathConstant, "bar", testBarSourceConstant)
	writeTapFormula(testInstance, fileSystem, testTapPathConstant, "baz", testGitlabSourceConstant)

	builder := &headbranches.CommandBuilder{
		ConfigurationProvider: func() headbranches.Configuration {
			configuration := headbranches.DefaultConfiguration()
			configuration.TokenSource = "env:" + testTokenEnvironmentConstant
			configuration.APIBaseURL = server.URL
			configuration.Taps = []string{testTapPathConstant}
			return configuration
		},
		TokenResolver:   tokenResolver(true),
		ReporterFactory: plainReporterFactory,
		FileSystem:      fileSystem,
	}

	reportOutput, executionError := executeCommand(testInstance, builder, "--fix")
	require.NoError(testInstance, executionError)
	require.Equal(testInstance, "Warning: foo: master => main\nWarning: Fixing foo...\n", reportOutput)
	require.Equal(testInstance, []string{"Bearer " + testCommandTokenConstant}, authorizationHeaders)

	fixedSource, readError := afero.ReadFile(fileSystem, fooPath)
	require.NoError(testInstance, readError)
	require.Equal(testInstance, testFooFixedConstant, string(fixedSource))

	untouchedSource, untouchedReadError := afero.ReadFile(fileSystem, barPath)
	require.NoError(testInstance, untouchedReadError)
	require.Equal(testInstance, testBarSourceConstant, string(untouchedSource))
}

func TestCommandReportsWithoutFixByDefault(testInstance *testing.T) {
	fileSystem := afero.NewMemMapFs()
	fooPath := writeTapFormula(testInstance, fileSystem, testTapPathConstant, "foo", testFooSourceConstant)

	inspectorFactory := &countingInspectorFactory{inspector: &stubInspector{defaultBranches: map[string]string{"acme/foo": "main"}}}
	builder := &headbranches.CommandBuilder{
		ConfigurationProvider: func() headbranches.Configuration {
			configuration := headbranches.DefaultConfiguration()
			configuration.TokenSource = "env:" + testTokenEnvironmentConstant
			configuration.Taps = []string{testTapPathConstant}
			return configuration
		},
		TokenResolver:    tokenResolver(true),
		InspectorFactory: inspectorFactory.create,
		ReporterFactory:  plainReporterFactory,
		FileSystem:       fileSystem,
	}

	reportOutput, executionError := executeCommand(testInstance, builder)
	require.NoError(testInstance, executionError)
	require.Equal(testInstance, "Warning: foo: master => main\n", reportOutput)

	source, readError := afero.ReadFile(fileSystem, fooPath)
	require.NoError(testInstance, readError)
	require.Equal(testInstance, testFooSourceConstant, string(source))
}

func TestCommandResolvesTapNames(testInstance *testing.T) {
	testCases := []struct {
		name                    string
		configuredRepository    string
		arguments               []string
		expectedBrewInvocations int
	}{
		{name: "configured_repository", configuredRepository: "/brew", expectedBrewInvocations: 0},
		{name: "brew_repository_lookup", expectedBrewInvocations: 1},
		{name: "tap_flag_override", configuredRepository: "/brew", arguments: []string{"--tap", "acme/tools"}, expectedBrewInvocations: 0},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subTest *testing.T) {
			fileSystem := afero.NewMemMapFs()
			writeTapFormula(subTest, fileSystem, "/brew/Library/Taps/homebrew/homebrew-core", "foo", testFooSourceConstant)
			writeTapFormula(subTest, fileSystem, "/brew/Library/Taps/acme/homebrew-tools", "foo", testFooSourceConstant)

			inspector := &stubInspector{defaultBranches: map[string]string{"acme/foo": "master"}}
			brewExecutor := &countingBrewExecutor{repositoryPath: "/brew"}
			builder := &headbranches.CommandBuilder{
				ConfigurationProvider: func() headbranches.Configuration {
					configuration := headbranches.DefaultConfiguration()
					configuration.TokenSource = "env:" + testTokenEnvironmentConstant
					return configuration
				},
				HomebrewRepositoryProvider: func() string { return testCase.configuredRepository },
				TokenResolver:              tokenResolver(true),
				InspectorFactory:           (&countingInspectorFactory{inspector: inspector}).create,
				ReporterFactory:            plainReporterFactory,
				BrewExecutor:               brewExecutor,
				FileSystem:                 fileSystem,
			}

			reportOutput, executionError := executeCommand(subTest, builder, testCase.arguments...)
			require.NoError(subTest, executionError)
			require.Empty(subTest, reportOutput)
			require.Equal(subTest, []string{"acme/foo"}, inspector.defaultBranchQueries)
			require.Equal(subTest, testCase.expectedBrewInvocations, brewExecutor.invocations)
		})
	}
}

func TestCommandFailsForMissingTap(testInstance *testing.T) {
	inspectorFactory := &countingInspectorFactory{inspector: &stubInspector{}}
	builder := &headbranches.CommandBuilder{
		ConfigurationProvider: func() headbranches.Configuration {
			configuration := headbranches.DefaultConfiguration()
			configuration.TokenSource = "env:" + testTokenEnvironmentConstant
			configuration.Taps = []string{"/absent"}
			return configuration
		},
		TokenResolver:    tokenResolver(true),
		InspectorFactory: inspectorFactory.create,
		FileSystem:       afero.NewMemMapFs(),
	}

	_, executionError := executeCommand(testInstance, builder)
	require.Error(testInstance, executionError)
	require.Contains(testInstance, executionError.Error(), "unable to load formulae")
}
