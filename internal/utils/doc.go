// Package utils carries the configuration and logging plumbing shared by the
// CLI: a viper-backed ConfigurationLoader and a zap LoggerFactory.
package utils
