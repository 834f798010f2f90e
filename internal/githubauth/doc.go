// Package githubauth locates the GitHub API credential used by commands that
// talk to the GitHub REST API.
//
// Credentials are declared as token sources ("env:NAME" or "file:/path") and
// resolved once at startup so a missing credential is reported before any
// remote work begins.
package githubauth
