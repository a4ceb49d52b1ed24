// Package ui renders shell command lifecycle events in human-readable form.
//
// It implements execshell.CommandEventObserver on top of a console-encoded zap
// logger so that operators running depbump interactively see each git, gh, and
// package manager invocation as it happens.
package ui
