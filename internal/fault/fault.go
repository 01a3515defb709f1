// Package fault defines the error taxonomy shared by the registry and the
// kernel.
//
// Configuration errors are fatal: they abort a registry rebuild or a boot run
// and always name the offending module(s). Setup errors are reported per
// module and never stop sibling modules from being processed. Every typed
// error matches its sentinel through errors.Is.
package fault

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrConfig is the sentinel matched by every configuration error.
	ErrConfig = errors.New("configuration error")
	// ErrSetup is the sentinel matched by every per-module setup error.
	ErrSetup = errors.New("setup error")
)

type (
	// UnknownDependencyError is returned when a module requires a name that is
	// not part of the scanned module set.
	UnknownDependencyError struct {
		Module     string
		Dependency string
	}

	// DuplicateModuleError is returned when two scanned modules share a name.
	DuplicateModuleError struct {
		Name string
	}

	// CycleError is returned when the dependency graph of a tier is cyclic.
	// Modules lists every module left with pending dependents after the
	// elimination pass.
	CycleError struct {
		Modules []string
	}

	// HookError is returned when a module's bootstrapper cannot be resolved
	// or does not satisfy the start-up contract.
	HookError struct {
		Module string
		Hook   string
		Reason string
	}

	// ManifestError is returned when a module manifest fails validation.
	ManifestError struct {
		Module string
		Path   string
		Issues []string
	}

	// SetupError wraps a failure of a single module's post-install step.
	SetupError struct {
		Module string
		Err    error
	}
)

func (e *UnknownDependencyError) Error() string {
	return fmt.Sprintf("invalid dependency: module %q requires unknown module %q", e.Module, e.Dependency)
}

// Is makes UnknownDependencyError match ErrConfig.
func (e *UnknownDependencyError) Is(target error) bool { return target == ErrConfig }

func (e *DuplicateModuleError) Error() string {
	return fmt.Sprintf("duplicate module name %q", e.Name)
}

// Is makes DuplicateModuleError match ErrConfig.
func (e *DuplicateModuleError) Is(target error) bool { return target == ErrConfig }

func (e *CycleError) Error() string {
	return fmt.Sprintf(`cyclic dependency between modules: "%s"`, strings.Join(e.Modules, `" <-> "`))
}

// Is makes CycleError match ErrConfig.
func (e *CycleError) Is(target error) bool { return target == ErrConfig }

func (e *HookError) Error() string {
	return fmt.Sprintf("bootstrapper %q of module %q: %s", e.Hook, e.Module, e.Reason)
}

// Is makes HookError match ErrConfig.
func (e *HookError) Is(target error) bool { return target == ErrConfig }

func (e *ManifestError) Error() string {
	return fmt.Sprintf("invalid manifest %s for module %q: %s", e.Path, e.Module, strings.Join(e.Issues, "; "))
}

// Is makes ManifestError match ErrConfig.
func (e *ManifestError) Is(target error) bool { return target == ErrConfig }

func (e *SetupError) Error() string {
	return fmt.Sprintf("setting up module %q: %v", e.Module, e.Err)
}

// Unwrap returns the underlying failure.
func (e *SetupError) Unwrap() error { return e.Err }

// Is makes SetupError match ErrSetup.
func (e *SetupError) Is(target error) bool { return target == ErrSetup }
