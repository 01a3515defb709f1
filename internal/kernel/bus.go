package kernel

import "fmt"

// ContainerHandler handles the PreRegister and RegisterServices phases.
type ContainerHandler func(c *Container) error

// Handler handles the Configure, Reconfigure, Run and Shutdown phases.
type Handler func(r Resolver) error

// Bus keeps the handlers of each phase in registration order.
type Bus struct {
	handlers [len(phaseNames)][]func(*Container) error
}

// NewBus returns a bus with no handlers.
func NewBus() *Bus {
	return &Bus{}
}

func (b *Bus) add(p Phase, fn func(*Container) error) {
	b.handlers[p] = append(b.handlers[p], fn)
}

func (b *Bus) onContainer(p Phase, h ContainerHandler) {
	b.add(p, func(c *Container) error { return h(c) })
}

func (b *Bus) onResolver(p Phase, h Handler) {
	b.add(p, func(c *Container) error { return h(c) })
}

// OnPreRegister adds a PreRegister handler.
func (b *Bus) OnPreRegister(h ContainerHandler) { b.onContainer(PreRegister, h) }

// OnRegisterServices adds a RegisterServices handler.
func (b *Bus) OnRegisterServices(h ContainerHandler) { b.onContainer(RegisterServices, h) }

// OnConfigure adds a Configure handler.
func (b *Bus) OnConfigure(h Handler) { b.onResolver(Configure, h) }

// OnReconfigure adds a Reconfigure handler.
func (b *Bus) OnReconfigure(h Handler) { b.onResolver(Reconfigure, h) }

// OnRun adds a Run handler.
func (b *Bus) OnRun(h Handler) { b.onResolver(Run, h) }

// OnShutdown adds a Shutdown handler.
func (b *Bus) OnShutdown(h Handler) { b.onResolver(Shutdown, h) }

// Len returns the number of handlers registered for p.
func (b *Bus) Len(p Phase) int { return len(b.handlers[p]) }

// Emit runs the handlers of p in registration order. Handlers added to p
// while it runs are run as well. The first failing handler stops the phase.
func (b *Bus) Emit(p Phase, c *Container) error {
	for i := 0; i < len(b.handlers[p]); i++ {
		if err := b.handlers[p][i](c); err != nil {
			return fmt.Errorf("%s phase: %w", p, err)
		}
	}
	return nil
}
