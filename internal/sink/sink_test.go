package sink

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestFileAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultBattleLog)
	require.NoError(t, os.WriteFile(path, []byte("Old killed Older\n"), 0644))

	f, err := OpenFile(path, zaptest.NewLogger(t))
	require.NoError(t, err)
	f.OnKill("A", "B")
	f.OnKill("B", "C")
	require.NoError(t, f.Close())

	// Closed sinks drop events
	f.OnKill("X", "Y")
	require.NoError(t, f.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Old killed Older\nA killed B\nB killed C\n", string(data))
}

func TestOpenFileFails(t *testing.T) {
	_, err := OpenFile(filepath.Join(t.TempDir(), "missing", "log.txt"), zaptest.NewLogger(t))
	assert.Error(t, err)
}

func TestLedger(t *testing.T) {
	l, err := OpenLedger(filepath.Join(t.TempDir(), "kills.db"), zaptest.NewLogger(t))
	require.NoError(t, err)
	defer l.Close()

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	tick := 0
	l.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}

	l.OnKill("A", "B")
	l.OnKill("C", "D")
	l.OnKill("E", "F")

	n, err := l.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	recent, err := l.Recent(2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "E", recent[0].Killer)
	assert.Equal(t, "F", recent[0].Victim)
	assert.Equal(t, "C", recent[1].Killer)
	assert.True(t, recent[0].RecordedAt.Equal(base.Add(3*time.Second)))
}

func TestLedgerClosed(t *testing.T) {
	l, err := OpenLedger(filepath.Join(t.TempDir(), "kills.db"), zaptest.NewLogger(t))
	require.NoError(t, err)
	require.NoError(t, l.Close())

	l.OnKill("A", "B")
	_, err = l.Recent(10)
	assert.Error(t, err)
	_, err = l.Count()
	assert.Error(t, err)
}
