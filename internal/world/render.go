package world

import "strings"

const Background = '.'

// Frame is one rendered map, row-major: Cells[y*Width+x].
type Frame struct {
	Tick   uint64 `json:"tick"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Cells  []byte `json:"-"`
	Alive  int    `json:"alive"`
}

// Display receives every frame produced by the render loop.
type Display interface {
	ShowFrame(f Frame)
}

// Render builds a frame under the registry lock. Entities sharing a cell
// overwrite each other in iteration order.
func (r *Registry) Render(bounds Bounds) Frame {
	r.mu.Lock()
	defer r.mu.Unlock()

	f := Frame{
		Width:  bounds.Width,
		Height: bounds.Height,
		Cells:  make([]byte, bounds.Width*bounds.Height),
	}
	for i := range f.Cells {
		f.Cells[i] = Background
	}

	for _, e := range r.entities {
		if !e.IsAlive() {
			continue
		}

		x, y := e.Position()
		if !bounds.Contains(x, y) {
			continue
		}

		f.Alive++
		f.Cells[y*bounds.Width+x] = e.Symbol()
	}

	return f
}

func (f Frame) At(x, y int) byte {
	return f.Cells[y*f.Width+x]
}

func (f Frame) Rows() []string {
	rows := make([]string, f.Height)
	for y := 0; y < f.Height; y++ {
		rows[y] = string(f.Cells[y*f.Width : (y+1)*f.Width])
	}

	return rows
}

func (f Frame) String() string {
	var b strings.Builder
	b.Grow((f.Width + 1) * f.Height)
	for _, row := range f.Rows() {
		b.WriteString(row)
		b.WriteByte('\n')
	}

	return b.String()
}
