package world

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// riggedRand replays Intn results in order and returns 0 once drained.
type riggedRand struct {
	values []int
	calls  int
}

// dice queues die faces; each face f comes back from RollDie as f.
func dice(faces ...int) *riggedRand {
	r := &riggedRand{}
	for _, f := range faces {
		r.values = append(r.values, f-1)
	}
	return r
}

func (r *riggedRand) Intn(n int) int {
	r.calls++
	if len(r.values) == 0 {
		return 0
	}

	v := r.values[0]
	r.values = r.values[1:]
	return v % n
}

type killLog struct {
	mu    sync.Mutex
	pairs [][2]string
}

func (k *killLog) OnKill(killer, victim string) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.pairs = append(k.pairs, [2]string{killer, victim})
}

func (k *killLog) Pairs() [][2]string {
	k.mu.Lock()
	defer k.mu.Unlock()
	return append([][2]string(nil), k.pairs...)
}

func mustCreate(t *testing.T, f *Factory, kind, name string, x, y int) *Entity {
	t.Helper()
	e, err := f.Create(kind, name, x, y)
	require.NoError(t, err)
	return e
}
