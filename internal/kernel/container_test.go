package kernel

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type greeter interface{ Greet() string }

type english struct{ name string }

func (e *english) Greet() string { return "hello " + e.name }

type clock struct{ now int }

func TestContainerResolveExactType(t *testing.T) {
	c := NewContainer()
	require.NoError(t, c.Provide(&clock{now: 7}))

	got, err := Get[*clock](c)
	require.NoError(t, err)
	assert.Equal(t, 7, got.now)
}

func TestContainerResolveInterface(t *testing.T) {
	c := NewContainer()
	require.NoError(t, c.Provide(&english{name: "kernel"}))

	g, err := Get[greeter](c)
	require.NoError(t, err)
	assert.Equal(t, "hello kernel", g.Greet())
}

func TestContainerRegisterUnderInterface(t *testing.T) {
	c := NewContainer()
	Register[greeter](c, &english{name: "a"})
	Register[greeter](c, &english{name: "b"})

	g, err := Get[greeter](c)
	require.NoError(t, err)
	assert.Equal(t, "hello b", g.Greet(), "later registration replaces earlier")
	assert.Equal(t, []reflect.Type{reflect.TypeFor[greeter]()}, c.Capabilities())
}

func TestContainerMissingCapability(t *testing.T) {
	c := NewContainer()
	_, err := Get[*clock](c)
	assert.ErrorIs(t, err, ErrNoCapability)

	assert.Error(t, c.Resolve(nil))
	assert.Error(t, c.Resolve(clock{}))
	assert.Error(t, c.Provide(nil))
}

func TestContainerCapabilitiesOrder(t *testing.T) {
	c := NewContainer()
	require.NoError(t, c.Provide(&clock{}))
	require.NoError(t, c.Provide("name"))
	assert.Equal(t, []reflect.Type{reflect.TypeFor[*clock](), reflect.TypeFor[string]()}, c.Capabilities())
}
