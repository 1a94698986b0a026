package console

import (
	"fmt"
	"io"

	"github.com/logrusorgru/aurora"

	"github.com/Scrimzay/npcbattle/internal/world"
)

// KillSink prints one line per kill.
type KillSink struct {
	out *Output
}

func NewKillSink(out *Output) *KillSink {
	return &KillSink{out: out}
}

func (s *KillSink) OnKill(killer, victim string) {
	s.out.Block(func(w io.Writer, au aurora.Aurora) {
		fmt.Fprintf(w, "%s %s killed %s\n", au.Red("[BATTLE]"), killer, victim)
	})
}

// MapDisplay prints every frame as text followed by the alive count.
type MapDisplay struct {
	out *Output
}

func NewMapDisplay(out *Output) *MapDisplay {
	return &MapDisplay{out: out}
}

func (d *MapDisplay) ShowFrame(f world.Frame) {
	d.out.Block(func(w io.Writer, au aurora.Aurora) {
		fmt.Fprintln(w)
		fmt.Fprintln(w, au.Bold("=== MAP ==="))
		io.WriteString(w, f.String())
		fmt.Fprintln(w, "============")
		fmt.Fprintf(w, "Alive NPCs: %s\n", au.Cyan(d.out.printer.Sprintf("%d", f.Alive)))
	})
}

var (
	_ world.Observer = (*KillSink)(nil)
	_ world.Display  = (*MapDisplay)(nil)
)
