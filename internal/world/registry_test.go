package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistrySweep(t *testing.T) {
	f := NewFactory(DefaultBounds(), "")
	a := mustCreate(t, f, "Orc", "A", 0, 0)
	b := mustCreate(t, f, "Bear", "B", 1, 1)
	c := mustCreate(t, f, "Squirrel", "C", 2, 2)
	reg := NewRegistry(a, b, c)

	b.Kill()
	assert.Equal(t, 2, reg.AliveCount())
	assert.Len(t, reg.Records(), 3)

	assert.Equal(t, 1, reg.Sweep())
	assert.Equal(t, 0, reg.Sweep())

	names := []string{}
	for _, e := range reg.Snapshot() {
		names = append(names, e.Name())
	}
	assert.Equal(t, []string{"A", "C"}, names)
}

func TestRegistryPassSweepsOnPanic(t *testing.T) {
	f := NewFactory(DefaultBounds(), "")
	a := mustCreate(t, f, "Orc", "A", 0, 0)
	reg := NewRegistry(a)

	assert.Panics(t, func() {
		reg.Pass(func(entities []*Entity) {
			entities[0].Kill()
			panic("sink blew up")
		})
	})

	// The lock was released and the dead entity is gone
	assert.Equal(t, 0, reg.Len())
}

func TestRegistrySurvivorsAndReplace(t *testing.T) {
	f := NewFactory(DefaultBounds(), "")
	a := mustCreate(t, f, "Orc", "A", 0, 0)
	b := mustCreate(t, f, "Orc", "B", 0, 0)
	reg := NewRegistry(a, b)
	a.Kill()

	survivors := reg.Survivors()
	require.Len(t, survivors, 1)
	assert.Equal(t, "B", survivors[0].Name)

	reg.Replace(nil)
	assert.Zero(t, reg.Len())

	reg.Add(a, b)
	assert.Equal(t, 2, reg.Len())
}
