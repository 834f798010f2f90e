// Package githubapi queries repository and branch state from the GitHub REST API.
package githubapi
