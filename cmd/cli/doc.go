// Package cli assembles the depbump root command: persistent configuration
// and logging flags, the viper-backed configuration file, and the update,
// fleet, and report subcommand groups.
package cli
