// Package gitrepo contains helpers for interrogating and manipulating Git repositories.
//
// It exposes RepositoryManager for branch, staging, commit, and push operations,
// along with remote URL parsing utilities consumed by the update workflow and
// fleet commands that need structured Git operations.
package gitrepo
