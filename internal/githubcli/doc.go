// Package githubcli drives the gh binary through execshell. It covers the
// operations the update workflow needs from GitHub: an authentication
// preflight and pull request creation with recovery when a pull request for
// the branch already exists.
package githubcli
