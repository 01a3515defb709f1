// Package kernel boots an application out of its registered modules.
//
// A boot run loads the persisted module registry, filters it through the
// active profile, lets each surviving module's bootstrapper hook the
// lifecycle phases, and then fires the six phases in their fixed order:
// PreRegister, RegisterServices, Configure, Reconfigure, Run, Shutdown.
// The first two phases receive the service container so handlers can
// register services; the rest receive a Resolver to look them up.
package kernel
