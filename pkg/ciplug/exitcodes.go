// Package ciplug provides public constants for tools that run ciplug as a
// build step.
package ciplug

// Exit codes returned by the ciplug CLI.
const (
	// ExitSuccess indicates every PHPUnit run passed.
	ExitSuccess = 0

	// ExitFailure indicates failing tests or an unmet coverage requirement.
	ExitFailure = 1

	// ExitConfigError indicates an invalid configuration, no test target, a
	// missing or unreadable report, or an unknown test status.
	ExitConfigError = 2

	// ExitEnvError indicates a missing PHPUnit executable or an unwritable
	// artifact location.
	ExitEnvError = 3
)
