// Package cli constructs the brewdev command-line interface, wiring the Cobra
// command hierarchy, the Viper configuration loader, and zap logging. Execute
// runs the default command set.
package cli
