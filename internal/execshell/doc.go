// Package execshell provides structured helpers for invoking external tools.
//
// ShellExecutor wraps a CommandRunner with zap logging and typed failures,
// while OSCommandRunner performs the actual os/exec invocation. The git and
// brew wrappers are consumed by the contributions command and the Homebrew
// layout resolver.
package execshell
