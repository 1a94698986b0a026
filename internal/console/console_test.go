package console

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Scrimzay/npcbattle/internal/world"
)

func TestKillSink(t *testing.T) {
	var buf bytes.Buffer
	sink := NewKillSink(NewOutput(&buf, false))

	sink.OnKill("A", "B")
	sink.OnKill("B", "C")

	assert.Equal(t, "[BATTLE] A killed B\n[BATTLE] B killed C\n", buf.String())
}

func TestMapDisplay(t *testing.T) {
	var buf bytes.Buffer
	display := NewMapDisplay(NewOutput(&buf, false))

	display.ShowFrame(world.Frame{Width: 3, Height: 2, Cells: []byte("O....B"), Alive: 2})

	out := buf.String()
	assert.Contains(t, out, "=== MAP ===\nO..\n..B\n============\n")
	assert.True(t, strings.HasSuffix(out, "Alive NPCs: 2\n"))
}

func TestSurvivors(t *testing.T) {
	var buf bytes.Buffer
	out := NewOutput(&buf, false)

	out.Survivors([]world.Record{
		{Kind: "Orc", Name: "Grok", X: 1, Y: 2, Alive: true},
		{Kind: "Bear", Name: "Gone", X: 3, Y: 4, Alive: false},
		{Kind: "Squirrel", Name: "Nutty", X: 5, Y: 6, Alive: true},
	})

	text := buf.String()
	assert.Contains(t, text, "=== SURVIVORS ===")
	assert.Contains(t, text, "Total survived: 2\n")
	assert.Contains(t, text, "Orc Grok (1,2)\n")
	assert.Contains(t, text, "Squirrel Nutty (5,6)\n")
	assert.NotContains(t, text, "Gone")
}

func TestRosterAndBanner(t *testing.T) {
	var buf bytes.Buffer
	out := NewOutput(&buf, false)

	out.Banner(30*time.Second, world.DefaultBounds(), 1500)
	out.Roster([]world.Record{
		{Kind: "Orc", Name: "A", X: 0, Y: 0, Alive: true},
		{Kind: "Bear", Name: "B", X: 9, Y: 9, Alive: false},
	})

	text := buf.String()
	assert.Contains(t, text, "Duration: 30s\n")
	assert.Contains(t, text, "Map size: 100x100\n")
	assert.Contains(t, text, "NPCs: 1,500\n")
	assert.Contains(t, text, "Orc A (0,0) alive\n")
	assert.Contains(t, text, "Bear B (9,9) dead\n")
}

func TestColorOutput(t *testing.T) {
	var buf bytes.Buffer
	NewKillSink(NewOutput(&buf, true)).OnKill("A", "B")

	assert.Contains(t, buf.String(), "\x1b[")
	assert.Contains(t, buf.String(), "A killed B")
}
