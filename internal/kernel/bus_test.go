package kernel

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBusEmitsInRegistrationOrder(t *testing.T) {
	b := NewBus()
	var calls []string
	b.OnRun(func(Resolver) error { calls = append(calls, "first"); return nil })
	b.OnRun(func(Resolver) error { calls = append(calls, "second"); return nil })
	b.OnConfigure(func(Resolver) error { calls = append(calls, "configure"); return nil })

	require.NoError(t, b.Emit(Run, NewContainer()))
	assert.Equal(t, []string{"first", "second"}, calls)
	assert.Equal(t, 2, b.Len(Run))
	assert.Equal(t, 1, b.Len(Configure))
	assert.Equal(t, 0, b.Len(Shutdown))
}

func TestBusStopsAtFirstError(t *testing.T) {
	b := NewBus()
	boom := errors.New("boom")
	ran := false
	b.OnPreRegister(func(*Container) error { return boom })
	b.OnPreRegister(func(*Container) error { ran = true; return nil })

	err := b.Emit(PreRegister, NewContainer())
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "pre-register phase")
	assert.False(t, ran)
}

func TestBusRunsHandlersAddedDuringPhase(t *testing.T) {
	b := NewBus()
	late := false
	b.OnShutdown(func(Resolver) error {
		b.OnShutdown(func(Resolver) error { late = true; return nil })
		return nil
	})
	require.NoError(t, b.Emit(Shutdown, NewContainer()))
	assert.True(t, late)
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "register-services", RegisterServices.String())
	assert.Equal(t, "phase(9)", Phase(9).String())
	assert.Len(t, Phases, 6)
	assert.True(t, PreRegister.receivesContainer())
	assert.False(t, Configure.receivesContainer())
}
