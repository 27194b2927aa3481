// Package term draws simulation snapshots in a terminal.
package term

import (
	"context"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/olivierh59500/particle-rules/internal/palette"
)

// Dot is the rune used for a cell holding at least one particle.
const Dot = '●'

// Step advances the simulation one tick and returns the new snapshot grid
// (grid[y][x] = type ID, 0 for empty).
type Step func(ctx context.Context) ([][]int, error)

// View renders snapshot grids on a tcell screen, scaling the world down to
// the screen size.
type View struct {
	screen tcell.Screen
	pal    *palette.Palette
	styles map[int]tcell.Style
	cells  []int
}

// New creates a view. The screen must already be initialized.
func New(screen tcell.Screen, pal *palette.Palette) *View {
	return &View{screen: screen, pal: pal, styles: make(map[int]tcell.Style)}
}

// Draw paints grid on the screen. When several particles fall in the same
// terminal cell the last one scanned wins, as in the grid itself.
func (v *View) Draw(grid [][]int) {
	sw, sh := v.screen.Size()
	v.screen.Clear()
	if sw <= 0 || sh <= 0 || len(grid) == 0 || len(grid[0]) == 0 {
		v.screen.Show()
		return
	}

	if cap(v.cells) < sw*sh {
		v.cells = make([]int, sw*sh)
	}
	cells := v.cells[:sw*sh]
	clear(cells)

	gh, gw := len(grid), len(grid[0])
	for y, row := range grid {
		cy := y * sh / gh
		for x, id := range row {
			if id != 0 {
				cells[cy*sw+x*sw/gw] = id
			}
		}
	}

	for i, id := range cells {
		if id != 0 {
			v.screen.SetContent(i%sw, i/sw, Dot, nil, v.style(id))
		}
	}
	v.screen.Show()
}

func (v *View) style(id int) tcell.Style {
	if s, ok := v.styles[id]; ok {
		return s
	}
	c := v.pal.Color(id)
	s := tcell.StyleDefault.
		Foreground(tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))).
		Background(tcell.ColorBlack)
	v.styles[id] = s
	return s
}

// Run steps and draws at fps frames per second until ctx is done, the user
// presses Esc, q or Ctrl-C, or step fails. A frame whose step overruns the
// frame budget delays the next one rather than queueing.
func (v *View) Run(ctx context.Context, step Step, fps int) error {
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	done := make(chan struct{})
	defer close(done)
	events := make(chan tcell.Event, 16)
	go func() {
		defer close(events)
		for {
			ev := v.screen.PollEvent()
			if ev == nil { // screen finalized
				return
			}
			select {
			case events <- ev:
			case <-done:
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-events:
			if !ok || quit(ev) {
				return nil
			}
			if _, resized := ev.(*tcell.EventResize); resized {
				v.screen.Sync()
			}

		case <-ticker.C:
			grid, err := step(ctx)
			if err != nil {
				return err
			}
			v.Draw(grid)
		}
	}
}

func quit(ev tcell.Event) bool {
	key, ok := ev.(*tcell.EventKey)
	if !ok {
		return false
	}
	switch key.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyRune:
		return key.Rune() == 'q'
	}
	return false
}
