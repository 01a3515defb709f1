// Package cli defines the Cobra command tree for the kernel CLI. Each file
// registers one top-level command (boot, module, profile, config, version)
// with the root command. Commands delegate to internal packages and only
// handle flags, output formatting and exit codes.
package cli
