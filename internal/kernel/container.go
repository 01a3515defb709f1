package kernel

import (
	"errors"
	"fmt"
	"reflect"
)

// ErrNoCapability is returned when a Resolver holds no service of the
// requested type.
var ErrNoCapability = errors.New("no service provides capability")

// Resolver looks up services by type. It is what Configure, Reconfigure,
// Run and Shutdown handlers receive.
type Resolver interface {
	// Resolve stores the service matching target's element type into
	// target, which must be a non-nil pointer.
	Resolve(target any) error
	// Capabilities lists the registered service types in registration
	// order.
	Capabilities() []reflect.Type
}

// Container holds the services registered during the PreRegister and
// RegisterServices phases.
type Container struct {
	services map[reflect.Type]reflect.Value
	order    []reflect.Type
}

// NewContainer returns an empty container.
func NewContainer() *Container {
	return &Container{services: make(map[reflect.Type]reflect.Value)}
}

// Provide registers v under its dynamic type. A later registration for the
// same type replaces the earlier one.
func (c *Container) Provide(v any) error {
	if v == nil {
		return errors.New("cannot provide a nil service")
	}
	c.put(reflect.TypeOf(v), reflect.ValueOf(v))
	return nil
}

// Register registers v under the static type T, which may be an interface.
func Register[T any](c *Container, v T) {
	t := reflect.TypeFor[T]()
	c.put(t, reflect.ValueOf(&v).Elem())
}

func (c *Container) put(t reflect.Type, v reflect.Value) {
	if _, ok := c.services[t]; !ok {
		c.order = append(c.order, t)
	}
	c.services[t] = v
}

// Resolve implements Resolver. An exact type match wins; for an interface
// target the first registered service implementing it is used.
func (c *Container) Resolve(target any) error {
	ptr := reflect.ValueOf(target)
	if ptr.Kind() != reflect.Pointer || ptr.IsNil() {
		return fmt.Errorf("resolve target must be a non-nil pointer, got %T", target)
	}
	want := ptr.Type().Elem()

	if v, ok := c.services[want]; ok {
		ptr.Elem().Set(v)
		return nil
	}
	if want.Kind() == reflect.Interface {
		for _, t := range c.order {
			if t.Implements(want) {
				ptr.Elem().Set(c.services[t])
				return nil
			}
		}
	}
	return fmt.Errorf("%w %s", ErrNoCapability, want)
}

// Capabilities implements Resolver.
func (c *Container) Capabilities() []reflect.Type {
	out := make([]reflect.Type, len(c.order))
	copy(out, c.order)
	return out
}

// Get resolves a service of type T.
func Get[T any](r Resolver) (T, error) {
	var v T
	err := r.Resolve(&v)
	return v, err
}
