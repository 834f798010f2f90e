// Package ui prints user-facing console messages.
//
// Warnings and errors carry a colored prefix when the destination supports
// it, while diagnostic telemetry continues to flow through zap loggers.
package ui
