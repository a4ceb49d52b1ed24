// Package fleet persists the registry of repositories managed by depbump.
//
// Store reads and writes the YAML fleet configuration, seeding sensible
// defaults the first time it runs so commands work without prior setup.
package fleet
