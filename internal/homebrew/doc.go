// Package homebrew locates the Homebrew repository and the tap checkouts
// that live beneath it.
package homebrew
