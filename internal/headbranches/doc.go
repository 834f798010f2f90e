// Package headbranches finds formulae whose head branch no longer exists on
// the upstream GitHub repository.
//
// Validator walks head formulae sequentially, compares the declared branch
// with the remote default branch, reports every mismatch and optionally
// rewrites the formula source. CommandBuilder wires the validator into the
// find-invalid-head-branches Cobra command.
package headbranches
