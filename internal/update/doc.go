// Package update implements the dependency update workflow and its fleet orchestration.
//
// Service drives one repository through branch, edit, install, commit, push,
// and pull request stages, restoring the original branch whatever the outcome.
// Orchestrator runs the workflow across a fleet with per-repository failure
// isolation and an explicit continuation decision between repositories.
package update
