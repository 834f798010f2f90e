package formula_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/brewtools/brewdev/internal/formula"
)

func TestParseHead(t *testing.T) {
	testCases := []struct {
		name     string
		source   string
		expected *formula.HeadSpecification
	}{
		{
			name: "no_head",
			source: `class Foo < Formula
  url "https://example.com/foo-1.0.tar.gz"
end
`,
			expected: nil,
		},
		{
			name: "single_line_with_branch",
			source: `class Foo < Formula
  url "https://example.com/foo-1.0.tar.gz"
  head "https://github.com/acme/foo.git", branch: "master"
end
`,
			expected: &formula.HeadSpecification{URL: "https://github.com/acme/foo.git", Branch: "master"},
		},
		{
			name: "single_line_without_branch",
			source: `class Foo < Formula
  head "https://github.com/acme/foo.git"
end
`,
			expected: &formula.HeadSpecification{URL: "https://github.com/acme/foo.git"},
		},
		{
			name: "single_line_with_using_before_branch",
			source: `class Foo < Formula
  head "https://github.com/acme/foo.git", using: :git, branch: "develop"
end
`,
			expected: &formula.HeadSpecification{URL: "https://github.com/acme/foo.git", Branch: "develop"},
		},
		{
			name: "continued_options",
			source: `class Foo < Formula
  head "https://github.com/acme/foo.git",
       branch: "trunk"
end
`,
			expected: &formula.HeadSpecification{URL: "https://github.com/acme/foo.git", Branch: "trunk"},
		},
		{
			name: "head_block",
			source: `class Foo < Formula
  head do
    url "https://github.com/acme/foo.git", branch: "main"

    depends_on "autoconf" => :build
  end

  resource "bar" do
    url "https://example.com/bar.tar.gz"
  end
end
`,
			expected: &formula.HeadSpecification{URL: "https://github.com/acme/foo.git", Branch: "main"},
		},
		{
			name: "head_block_nested_end",
			source: `class Foo < Formula
  head do
    on_macos do
      depends_on "gettext"
    end
    url "https://gitlab.com/acme/foo.git"
  end
end
`,
			expected: &formula.HeadSpecification{URL: "https://gitlab.com/acme/foo.git"},
		},
		{
			name: "commented_branch_ignored",
			source: `class Foo < Formula
  head "https://github.com/acme/foo.git" # branch: "old"
end
`,
			expected: &formula.HeadSpecification{URL: "https://github.com/acme/foo.git"},
		},
		{
			name: "commented_head_ignored",
			source: `class Foo < Formula
  # head "https://github.com/acme/foo.git", branch: "master"
end
`,
			expected: nil,
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			require.Equal(t, testCase.expected, formula.ParseHead(testCase.source))
		})
	}
}

func TestHeadSpecificationHasExplicitBranch(t *testing.T) {
	require.True(t, formula.HeadSpecification{Branch: "main"}.HasExplicitBranch())
	require.False(t, formula.HeadSpecification{}.HasExplicitBranch())
}
