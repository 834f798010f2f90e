// Package formula loads Homebrew formula definitions from tap checkouts and
// performs scoped rewrites of their head branch declarations.
//
// Only the attributes needed by maintenance commands are extracted: the
// formula name, its file path, and the optional head source with its URL and
// branch. Files are accessed through afero so callers and tests can supply an
// in-memory filesystem.
package formula
