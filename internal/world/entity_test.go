package world

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntityMoveStaysInBounds(t *testing.T) {
	f := NewFactory(Bounds{Width: 3, Height: 3}, "")
	e := mustCreate(t, f, "Orc", "A", 0, 0)

	e.Move(-1, 0)
	x, y := e.Position()
	assert.Equal(t, 0, x)
	assert.Equal(t, 0, y)

	e.Move(1, 1)
	e.Move(1, 1)
	e.Move(1, 1)
	x, y = e.Position()
	assert.Equal(t, 2, x)
	assert.Equal(t, 2, y)
}

func TestEntityMoveRandom(t *testing.T) {
	f := NewFactory(DefaultBounds(), "")
	e := mustCreate(t, f, "Bear", "B", 50, 50)

	// Intn(3)-1: 2 -> +1, 0 -> -1
	e.MoveRandom(&riggedRand{values: []int{2, 0}})
	x, y := e.Position()
	assert.Equal(t, 51, x)
	assert.Equal(t, 49, y)
}

func TestEntityDeadDoesNotMove(t *testing.T) {
	f := NewFactory(DefaultBounds(), "")
	e := mustCreate(t, f, "Orc", "A", 10, 10)
	e.Kill()

	rng := &riggedRand{values: []int{2, 2}}
	e.MoveRandom(rng)
	e.Move(1, 1)

	x, y := e.Position()
	assert.Equal(t, 10, x)
	assert.Equal(t, 10, y)
	assert.Zero(t, rng.calls)
}

func TestEntityKillIsIdempotent(t *testing.T) {
	f := NewFactory(DefaultBounds(), "")
	e := mustCreate(t, f, "Orc", "A", 0, 0)

	assert.True(t, e.Kill())
	assert.False(t, e.Kill())
	assert.False(t, e.IsAlive())
}

func TestEntityConcurrentKillReportsOnce(t *testing.T) {
	f := NewFactory(DefaultBounds(), "")
	e := mustCreate(t, f, "Orc", "A", 0, 0)

	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if e.Kill() {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
}

func TestEntitySymbolAndRecord(t *testing.T) {
	f := NewFactory(DefaultBounds(), "")
	e := mustCreate(t, f, "Squirrel", "Nutty", 4, 7)

	assert.Equal(t, byte('S'), e.Symbol())

	rec := e.Record()
	assert.Equal(t, "Squirrel", rec.Kind)
	assert.Equal(t, "Nutty", rec.Name)
	assert.Equal(t, 4, rec.X)
	assert.Equal(t, 7, rec.Y)
	assert.True(t, rec.Alive)
	assert.Equal(t, e.ID().String(), rec.ID)

	e.Kill()
	assert.Equal(t, byte(' '), e.Symbol())
	assert.False(t, e.Record().Alive)
}

func TestEntityDistance(t *testing.T) {
	f := NewFactory(DefaultBounds(), "")
	a := mustCreate(t, f, "Orc", "A", 0, 0)
	b := mustCreate(t, f, "Orc", "B", 3, 4)

	assert.InDelta(t, 5.0, a.DistanceToEntity(b), 1e-9)
	assert.InDelta(t, 5.0, b.DistanceTo(0, 0), 1e-9)
}

func TestKindTables(t *testing.T) {
	cases := []struct {
		kind   Kind
		name   string
		symbol byte
		kill   int
		move   int
	}{
		{KindOrc, "Orc", 'O', 10, 20},
		{KindBear, "Bear", 'B', 10, 5},
		{KindSquirrel, "Squirrel", 'S', 5, 5},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.name, c.kind.String())
			assert.Equal(t, c.symbol, c.kind.Symbol())
			assert.Equal(t, c.kill, c.kind.KillDistance())
			assert.Equal(t, c.move, c.kind.MoveDistance())

			parsed, ok := ParseKind(c.name)
			require.True(t, ok)
			assert.Equal(t, c.kind, parsed)
		})
	}

	_, ok := ParseKind("orc")
	assert.False(t, ok)
}

func TestCanAttack(t *testing.T) {
	legal := map[[2]Kind]bool{
		{KindOrc, KindOrc}:  true,
		{KindOrc, KindBear}: true,
		{KindBear, KindOrc}: true,
	}

	for _, a := range Kinds {
		for _, d := range Kinds {
			assert.Equal(t, legal[[2]Kind{a, d}], CanAttack(a, d), "%s vs %s", a, d)
		}
	}
}
