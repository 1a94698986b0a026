// Package console is the single serialization point for everything the
// process writes to the terminal: kill lines, map frames and reports.
package console

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/logrusorgru/aurora"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/Scrimzay/npcbattle/internal/world"
)

// Output serializes writers with one lock. Build one per process and hand
// the same instance to every component that prints.
type Output struct {
	mu      sync.Mutex
	w       io.Writer
	au      aurora.Aurora
	printer *message.Printer
}

func NewOutput(w io.Writer, color bool) *Output {
	return &Output{
		w:       w,
		au:      aurora.NewAurora(color),
		printer: message.NewPrinter(language.English),
	}
}

// Block holds the lock for a multi-line write.
func (o *Output) Block(fn func(w io.Writer, au aurora.Aurora)) {
	o.mu.Lock()
	defer o.mu.Unlock()
	fn(o.w, o.au)
}

// Banner announces a timed run.
func (o *Output) Banner(d time.Duration, bounds world.Bounds, npcs int) {
	o.Block(func(w io.Writer, au aurora.Aurora) {
		fmt.Fprintln(w, au.Bold("Starting simulation..."))
		fmt.Fprintf(w, "Duration: %s\n", d)
		fmt.Fprintf(w, "Map size: %dx%d\n", bounds.Width, bounds.Height)
		fmt.Fprintf(w, "NPCs: %s\n", o.printer.Sprintf("%d", npcs))
	})
}

// Survivors prints the final report of every alive entity.
func (o *Output) Survivors(records []world.Record) {
	alive := 0
	for _, rec := range records {
		if rec.Alive {
			alive++
		}
	}

	o.Block(func(w io.Writer, au aurora.Aurora) {
		fmt.Fprintln(w)
		fmt.Fprintln(w, au.Bold("=== SURVIVORS ==="))
		fmt.Fprintf(w, "Total survived: %s\n", au.Green(o.printer.Sprintf("%d", alive)))
		for _, rec := range records {
			if !rec.Alive {
				continue
			}
			fmt.Fprintf(w, "%s %s (%d,%d)\n", rec.Kind, rec.Name, rec.X, rec.Y)
		}
		fmt.Fprintln(w, "=================")
		fmt.Fprintln(w)
	})
}

// Roster prints every entity with its state, dead ones included.
func (o *Output) Roster(records []world.Record) {
	o.Block(func(w io.Writer, au aurora.Aurora) {
		fmt.Fprintln(w, au.Bold("=== NPC LIST ==="))
		for _, rec := range records {
			state := au.Green("alive")
			if !rec.Alive {
				state = au.Red("dead")
			}
			fmt.Fprintf(w, "%s %s (%d,%d) %s\n", rec.Kind, rec.Name, rec.X, rec.Y, state)
		}
	})
}
