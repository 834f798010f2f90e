// Package utils exposes reusable helpers consumed by multiple commands.
//
// ConfigurationLoader layers embedded defaults, an optional configuration
// file, and environment variables through Viper. LoggerFactory builds zap
// loggers in structured or console encodings.
package utils
