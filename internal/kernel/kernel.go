package kernel

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/tiagomgelias/kernel/internal/config"
	"github.com/tiagomgelias/kernel/internal/logging"
	"github.com/tiagomgelias/kernel/internal/profile"
	"github.com/tiagomgelias/kernel/internal/registry"
)

// State is the progress of a boot run.
type State int

const (
	Idle State = iota
	ScanningModules
	StartingModules
	PreRegistering
	RegisteringServices
	Configuring
	Reconfiguring
	Running
	ShuttingDown
	Done
	Failed
)

var stateNames = [...]string{
	"idle", "scanning-modules", "starting-modules",
	"pre-register", "register-services", "configure", "reconfigure", "run", "shutdown",
	"done", "failed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("state(%d)", int(s))
	}
	return stateNames[s]
}

// Terminal reports whether no further transition can happen.
func (s State) Terminal() bool { return s == Done || s == Failed }

func phaseState(p Phase) State { return PreRegistering + State(p) }

// ErrAlreadyBooted is returned by Boot on a kernel that already ran.
var ErrAlreadyBooted = errors.New("kernel already booted")

// Kernel runs one boot sequence.
type Kernel struct {
	runID     string
	store     registry.Store
	hooks     *Hooks
	profile   *profile.Profile
	settings  config.Settings
	logger    *log.Logger
	startUp   func(*Kernel) error
	bus       *Bus
	container *Container
	state     State
	exitCode  int
	started   []string
}

// Option configures a Kernel.
type Option func(*Kernel)

// WithStore sets where the module registry is loaded from.
func WithStore(s registry.Store) Option { return func(k *Kernel) { k.store = s } }

// WithHooks sets the bootstrapper registry.
func WithHooks(h *Hooks) Option { return func(k *Kernel) { k.hooks = h } }

// WithProfile sets the active profile.
func WithProfile(p *profile.Profile) Option { return func(k *Kernel) { k.profile = p } }

// WithSettings sets the settings exposed to modules.
func WithSettings(s config.Settings) Option { return func(k *Kernel) { k.settings = s } }

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option { return func(k *Kernel) { k.logger = l } }

// WithStartUp sets a host hook run before any module starts. It can
// register phase handlers like a module bootstrapper.
func WithStartUp(fn func(*Kernel) error) Option { return func(k *Kernel) { k.startUp = fn } }

// New returns an idle kernel. Without options it boots an empty registry
// under the built-in web profile.
func New(opts ...Option) *Kernel {
	k := &Kernel{
		runID:     uuid.NewString(),
		bus:       NewBus(),
		container: NewContainer(),
		settings:  config.Defaults(),
	}
	for _, opt := range opts {
		opt(k)
	}
	if k.store == nil {
		k.store = registry.NewMemoryStore()
	}
	if k.hooks == nil {
		k.hooks = NewHooks()
	}
	if k.profile == nil {
		k.profile, _ = profile.Builtin(k.settings.Profile)
	}
	if k.profile == nil {
		k.profile, _ = profile.Builtin("web")
	}
	if k.logger == nil {
		k.logger = logging.Discard()
	}
	k.logger = k.logger.With("run", k.runID)
	return k
}

// RunID identifies this boot run in logs.
func (k *Kernel) RunID() string { return k.runID }

// State returns the current boot state.
func (k *Kernel) State() State { return k.state }

// ExitCode returns the exit status recorded so far.
func (k *Kernel) ExitCode() int { return k.exitCode }

// SetExitCode records the exit status reported to the operating system.
func (k *Kernel) SetExitCode(code int) { k.exitCode = code }

// Profile returns the active profile.
func (k *Kernel) Profile() *profile.Profile { return k.profile }

// Settings returns the kernel settings.
func (k *Kernel) Settings() config.Settings { return k.settings }

// DevEnv reports whether the kernel runs in development mode.
func (k *Kernel) DevEnv() bool { return k.settings.DevEnv }

// Logger returns the run logger.
func (k *Kernel) Logger() *log.Logger { return k.logger }

// Started returns the names of the modules whose bootstrapper ran.
func (k *Kernel) Started() []string {
	out := make([]string, len(k.started))
	copy(out, k.started)
	return out
}

// OnPreRegister adds a PreRegister handler.
func (k *Kernel) OnPreRegister(h ContainerHandler) { k.bus.OnPreRegister(h) }

// OnRegisterServices adds a RegisterServices handler.
func (k *Kernel) OnRegisterServices(h ContainerHandler) { k.bus.OnRegisterServices(h) }

// OnConfigure adds a Configure handler.
func (k *Kernel) OnConfigure(h Handler) { k.bus.OnConfigure(h) }

// OnReconfigure adds a Reconfigure handler.
func (k *Kernel) OnReconfigure(h Handler) { k.bus.OnReconfigure(h) }

// OnRun adds a Run handler.
func (k *Kernel) OnRun(h Handler) { k.bus.OnRun(h) }

// OnShutdown adds a Shutdown handler.
func (k *Kernel) OnShutdown(h Handler) { k.bus.OnShutdown(h) }

func (k *Kernel) setState(s State) {
	k.logger.Debug("state", "from", k.state, "to", s)
	k.state = s
}

// Boot runs the boot sequence to completion. On failure the kernel ends in
// the Failed state and, unless a handler set one, exit code 1.
func (k *Kernel) Boot() (err error) {
	if k.state != Idle {
		return ErrAlreadyBooted
	}
	defer func() {
		if err == nil {
			return
		}
		k.setState(Failed)
		if k.exitCode == 0 {
			k.exitCode = 1
		}
		k.logger.Error("boot failed", "err", err, "exit", k.exitCode)
	}()

	k.setState(ScanningModules)
	reg, err := k.store.Load()
	if err != nil {
		return fmt.Errorf("loading module registry: %w", err)
	}
	mods := reg.OnlyBootable().OnlyEnabled().Modules()

	k.setState(StartingModules)
	k.provideAmbient()
	if k.startUp != nil {
		if err := k.startUp(k); err != nil {
			return fmt.Errorf("host start-up: %w", err)
		}
	}
	for _, m := range mods {
		if err := k.startModule(m); err != nil {
			return err
		}
	}
	k.logger.Info("modules started", "profile", k.profile.Name, "count", len(k.started))

	for _, p := range Phases {
		k.setState(phaseState(p))
		if err := k.bus.Emit(p, k.container); err != nil {
			return err
		}
	}
	k.setState(Done)
	k.logger.Info("boot complete", "exit", k.exitCode)
	return nil
}

// startModule applies the profile filter to m and runs its bootstrapper.
func (k *Kernel) startModule(m *registry.Descriptor) error {
	lg := k.logger.With("module", m.Name)
	if k.profile.Excludes(m.Name) {
		lg.Debug("skipped: excluded by profile")
		return nil
	}
	included := k.profile.Includes(m.Name)
	if !included && !k.profile.Accepts(m.Type) {
		lg.Debug("skipped: type not accepted by profile", "type", m.Type)
		return nil
	}

	boot, err := k.hooks.Lookup(m.Name, m.Bootstrapper)
	if err != nil {
		return err
	}
	if pa, ok := boot.(ProfileAware); ok && !included && !k.profile.CompatibleWith(pa.CompatibleProfiles()) {
		lg.Debug("skipped: incompatible with profile", "compatible", pa.CompatibleProfiles())
		return nil
	}

	if err := boot.StartUp(k, m); err != nil {
		return fmt.Errorf("starting module %s: %w", m.Name, err)
	}
	k.started = append(k.started, m.Name)
	lg.Debug("started")
	return nil
}

// provideAmbient makes the kernel's own collaborators resolvable by phase
// handlers.
func (k *Kernel) provideAmbient() {
	Register(k.container, k)
	Register(k.container, k.logger)
	Register(k.container, k.profile)
	Register(k.container, k.settings)
}
