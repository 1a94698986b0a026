package tui

import (
	"context"
	"fmt"
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/Scrimzay/npcbattle/internal/world"
)

// Renderer shows every frame it receives. Cells that do not fit the
// terminal are clipped; the status line goes below the map.
type Renderer struct {
	mu     sync.Mutex
	screen *Screen
}

func NewRenderer(screen *Screen) *Renderer {
	return &Renderer{screen: screen}
}

func (r *Renderer) ShowFrame(f world.Frame) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.screen.Clear()
	w, h := r.screen.Size()

	for y := 0; y < f.Height && y < h-1; y++ {
		for x := 0; x < f.Width && x < w; x++ {
			c := f.At(x, y)
			r.screen.SetContent(x, y, rune(c), cellStyle(c))
		}
	}

	status := fmt.Sprintf("Tick %d  Alive NPCs: %d  (q to quit)", f.Tick, f.Alive)
	r.drawText(0, min(f.Height, h-1), status, tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true))

	r.screen.Show()
}

func (r *Renderer) drawText(x, y int, msg string, style tcell.Style) {
	for i, ch := range msg {
		r.screen.SetContent(x+i, y, ch, style)
	}
}

func cellStyle(c byte) tcell.Style {
	switch c {
	case world.KindOrc.Symbol():
		return tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)

	case world.KindBear.Symbol():
		return tcell.StyleDefault.Foreground(tcell.ColorOlive).Bold(true)

	case world.KindSquirrel.Symbol():
		return tcell.StyleDefault.Foreground(tcell.ColorGreen)

	default:
		return tcell.StyleDefault.Foreground(tcell.ColorDarkGray)
	}
}

// WaitQuit polls input until q, Esc or Ctrl-C, then calls cancel. It also
// returns once ctx ends or the screen is closed.
func (r *Renderer) WaitQuit(ctx context.Context, cancel context.CancelFunc) {
	for {
		if ctx.Err() != nil {
			return
		}

		ev := r.screen.PollEvent()
		if ev == nil {
			return
		}

		switch ev := ev.(type) {
		case *tcell.EventKey:
			if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC || ev.Rune() == 'q' {
				cancel()
				return
			}

		case *tcell.EventResize:
			r.mu.Lock()
			r.screen.screen.Sync()
			r.mu.Unlock()
		}
	}
}

var _ world.Display = (*Renderer)(nil)
