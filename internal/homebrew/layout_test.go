package homebrew_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/brewtools/brewdev/internal/homebrew"
)

const testRepositoryRootConstant = "/opt/homebrew"

func TestLayoutRepositoryLocation(testInstance *testing.T) {
	layout := homebrew.Layout{RepositoryPath: testRepositoryRootConstant}

	testCases := []struct {
		name             string
		repositoryName   string
		expectedLocation string
		expectedFound    bool
	}{
		{name: "brew", repositoryName: "brew", expectedLocation: testRepositoryRootConstant, expectedFound: true},
		{name: "core", repositoryName: "core", expectedLocation: filepath.Join(testRepositoryRootConstant, "Library", "Taps", "homebrew", "homebrew-core"), expectedFound: true},
		{name: "cask", repositoryName: "cask", expectedLocation: filepath.Join(testRepositoryRootConstant, "Library", "Taps", "homebrew", "homebrew-cask"), expectedFound: true},
		{name: "bundle", repositoryName: "bundle", expectedLocation: filepath.Join(testRepositoryRootConstant, "Library", "Taps", "homebrew", "homebrew-bundle"), expectedFound: true},
		{name: "unknown", repositoryName: "services", expectedFound: false},
		{name: "empty", repositoryName: "", expectedFound: false},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subTest *testing.T) {
			location, found := layout.RepositoryLocation(testCase.repositoryName)
			require.Equal(subTest, testCase.expectedFound, found)
			require.Equal(subTest, testCase.expectedLocation, location)
		})
	}
}

func TestLayoutTapPath(testInstance *testing.T) {
	layout := homebrew.Layout{RepositoryPath: testRepositoryRootConstant}

	testCases := []struct {
		name          string
		tapName       string
		expectedPath  string
		expectedError bool
	}{
		{name: "official_tap", tapName: "homebrew/core", expectedPath: filepath.Join(testRepositoryRootConstant, "Library", "Taps", "homebrew", "homebrew-core")},
		{name: "prefixed_repository", tapName: "Acme/homebrew-tools", expectedPath: filepath.Join(testRepositoryRootConstant, "Library", "Taps", "acme", "homebrew-tools")},
		{name: "absolute_path", tapName: "/src/homebrew-core/", expectedPath: "/src/homebrew-core"},
		{name: "missing_repository", tapName: "homebrew", expectedError: true},
		{name: "too_many_segments", tapName: "a/b/c", expectedError: true},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subTest *testing.T) {
			tapPath, resolveError := layout.TapPath(testCase.tapName)
			if testCase.expectedError {
				require.Error(subTest, resolveError)
				return
			}
			require.NoError(subTest, resolveError)
			require.Equal(subTest, testCase.expectedPath, tapPath)
		})
	}
}

func TestLayoutTapPathsStopsOnInvalidName(testInstance *testing.T) {
	layout := homebrew.Layout{RepositoryPath: testRepositoryRootConstant}

	tapPaths, resolveError := layout.TapPaths([]string{"homebrew/core", "homebrew/cask"})
	require.NoError(testInstance, resolveError)
	require.Len(testInstance, tapPaths, 2)

	_, invalidError := layout.TapPaths([]string{"homebrew/core", "invalid"})
	require.Error(testInstance, invalidError)
}

func TestSupportedRepositoryNames(testInstance *testing.T) {
	require.Equal(testInstance, []string{"brew", "core", "cask", "bundle"}, homebrew.SupportedRepositoryNames())
}

func TestIsTapPath(testInstance *testing.T) {
	require.True(testInstance, homebrew.IsTapPath("/src/homebrew-core"))
	require.True(testInstance, homebrew.IsTapPath("./homebrew-core"))
	require.False(testInstance, homebrew.IsTapPath("homebrew/core"))
}
