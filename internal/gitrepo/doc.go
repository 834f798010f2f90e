// Package gitrepo contains helpers for interpreting Git remotes and local
// repositories.
//
// ParseRemoteURL turns a formula's head URL into a host/owner/repository
// triple. RepositoryInspector opens local clones with go-git so commands can
// confirm a Homebrew repository exists before querying it.
package gitrepo
