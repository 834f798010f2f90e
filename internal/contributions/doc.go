// Package contributions counts a person's commits across Homebrew repositories.
//
// Directly authored commits are matched with git log --author while
// co-authorships are read from Co-authored-by trailers.
package contributions
