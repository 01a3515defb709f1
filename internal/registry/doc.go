// Package registry discovers modules, orders them and keeps the persisted
// module registry in sync with what is on disk.
//
// A rebuild scans the framework subsystems, plugins and private modules,
// reads each module's manifest, resolves a load order (topological order
// per type tier, then a stable priority pass), reconciles the result with
// the previously saved registry so user state such as the enabled flag
// survives, and saves the merged set atomically. Newly introduced and kept
// modules are then handed to a Migrator for per-module setup.
package registry
