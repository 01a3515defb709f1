// Package config manages kernel settings stored at ~/.kernel/config.yaml.
// Every key can be overridden through a KERNEL_-prefixed environment
// variable; Settings returns the typed view used by the registry and the
// boot orchestrator (module roots, storage and publishing paths, the active
// profile, log level and migration database).
package config
