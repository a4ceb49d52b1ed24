// Package packagemanager identifies JavaScript package managers and runs their installs.
//
// Manager detection prefers lockfile evidence over configuration so the tool
// follows whatever a repository actually uses.
package packagemanager
