package world

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderEmptyWorld(t *testing.T) {
	f := NewFactory(DefaultBounds(), "")
	dead := mustCreate(t, f, "Orc", "A", 3, 3)
	dead.Kill()
	reg := NewRegistry(dead)

	frame := reg.Render(DefaultBounds())

	assert.Zero(t, frame.Alive)
	require.Len(t, frame.Cells, DefaultWidth*DefaultHeight)
	for _, c := range frame.Cells {
		require.Equal(t, byte(Background), c)
	}
}

func TestRenderPlacesGlyphs(t *testing.T) {
	bounds := Bounds{Width: 4, Height: 3}
	f := NewFactory(bounds, "")
	reg := NewRegistry(
		mustCreate(t, f, "Orc", "A", 0, 0),
		mustCreate(t, f, "Bear", "B", 3, 2),
		mustCreate(t, f, "Squirrel", "C", 1, 1),
	)

	frame := reg.Render(bounds)

	assert.Equal(t, 3, frame.Alive)
	assert.Equal(t, byte('O'), frame.At(0, 0))
	assert.Equal(t, byte('B'), frame.At(3, 2))
	assert.Equal(t, byte('S'), frame.At(1, 1))
	assert.Equal(t, []string{"O...", ".S..", "...B"}, frame.Rows())
	assert.Equal(t, "O...\n.S..\n...B\n", frame.String())
}

func TestRenderSharedCellLastWins(t *testing.T) {
	bounds := Bounds{Width: 2, Height: 1}
	f := NewFactory(bounds, "")
	reg := NewRegistry(
		mustCreate(t, f, "Orc", "A", 1, 0),
		mustCreate(t, f, "Squirrel", "B", 1, 0),
	)

	frame := reg.Render(bounds)

	assert.Equal(t, 2, frame.Alive)
	assert.Equal(t, ".S", strings.TrimSpace(frame.String()))
}
