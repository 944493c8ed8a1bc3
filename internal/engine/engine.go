// Package engine drives one baldr invocation: delete, configure, build,
// symlink sync and the optional run or debug of the built target.
package engine

// The implementation is split across files:
// - orchestrator.go: the phase progression
// - phase.go: phase enumeration
// - errors.go: typed failures
// - factory.go: default dependency wiring
