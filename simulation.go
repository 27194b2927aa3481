package main

import (
	"context"
	"fmt"
	"image/color"
	"log/slog"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/olivierh59500/particle-rules/internal/palette"
	"github.com/olivierh59500/particle-rules/internal/sim"
)

// View constants
const (
	MinZoom          = 0.1 // Limit zoom out to prevent excessive tiling
	NudgeStep        = 0.05
	DefaultStrengths = "strengths.json"
)

// dot is an occupied snapshot cell
type dot struct {
	x, y float64
	col  color.RGBA
}

// Simulation is the ebiten window around a sim.Sim.
type Simulation struct {
	sim  *sim.Sim
	pal  *palette.Palette
	log  *slog.Logger
	dots []dot

	Paused         bool
	Zoom           float64
	CamX, CamY     float64 // Camera pan
	PrevMX, PrevMY float64 // Previous mouse position for drag
	StrengthsPath  string
	radius         float64
}

// NewSimulation wraps s for display.
func NewSimulation(s *sim.Sim, pal *palette.Palette, log *slog.Logger) *Simulation {
	g := &Simulation{
		sim:           s,
		pal:           pal,
		log:           log,
		Zoom:          1.0,
		StrengthsPath: DefaultStrengths,
		radius:        s.Config().ParticleDiameter / 2,
	}
	g.setGrid(s.World().Snapshot())
	return g
}

// Update is called each tick by Ebitengine
func (g *Simulation) Update() error {
	g.handleInput()

	if g.Paused {
		return nil
	}

	grid, err := g.sim.Step(context.Background())
	if err != nil {
		return err
	}
	g.setGrid(grid)
	return nil
}

// setGrid keeps the occupied cells of grid for drawing.
func (g *Simulation) setGrid(grid [][]int) {
	g.dots = g.dots[:0]
	for y, row := range grid {
		for x, id := range row {
			if id != 0 {
				g.dots = append(g.dots, dot{float64(x), float64(y), g.pal.Color(id)})
			}
		}
	}
}

// Draw is called each frame by Ebitengine
func (g *Simulation) Draw(screen *ebiten.Image) {
	w := g.sim.World()
	width, height := float64(w.Width), float64(w.Height)
	screenWidth := float64(screen.Bounds().Dx())
	screenHeight := float64(screen.Bounds().Dy())

	// Calculate visible world range
	visibleMinX := g.CamX
	visibleMaxX := g.CamX + screenWidth/g.Zoom
	visibleMinY := g.CamY
	visibleMaxY := g.CamY + screenHeight/g.Zoom

	// The world is a torus: draw one copy per visible tile
	dxFrom := math.Floor(visibleMinX / width)
	dxTo := math.Ceil(visibleMaxX / width)
	dyFrom := math.Floor(visibleMinY / height)
	dyTo := math.Ceil(visibleMaxY / height)

	r := g.radius * g.Zoom
	for tx := dxFrom; tx < dxTo; tx++ {
		for ty := dyFrom; ty < dyTo; ty++ {
			offsetX := tx * width
			offsetY := ty * height
			for _, d := range g.dots {
				sx := g.worldToScreenX(d.x + offsetX)
				sy := g.worldToScreenY(d.y + offsetY)
				if sx >= -r && sx <= screenWidth+r && sy >= -r && sy <= screenHeight+r {
					vector.DrawFilledCircle(screen, float32(sx), float32(sy), float32(r), d.col, true)
				}
			}
		}
	}

	ebitenutil.DebugPrint(screen, g.hud())
}

func (g *Simulation) hud() string {
	status := "running"
	if g.Paused {
		status = "paused"
	}
	s := fmt.Sprintf("tick %d  particles %d  %s  evolution %v\n",
		g.sim.Ticks(), g.sim.World().Len(), status, g.sim.Evolution)
	if rc, _, ok := g.sim.Selected(); ok {
		s += fmt.Sprintf("rule %d->%d  g=%+.2f  (tab: next, up/down: tune)", rc.Affected, rc.Source, rc.Strength)
	}
	return s
}

// Layout returns the screen size
func (g *Simulation) Layout(outsideWidth, outsideHeight int) (int, int) {
	w := g.sim.World()
	return w.Width, w.Height
}

// handleInput processes keyboard and mouse input
func (g *Simulation) handleInput() {
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.Paused = !g.Paused
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.sim.Randomize()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyE) {
		g.sim.Evolution = !g.sim.Evolution
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyS) {
		if err := g.sim.SaveStrengths(g.StrengthsPath); err != nil {
			g.log.Error("save strengths", "path", g.StrengthsPath, "err", err)
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyL) {
		if err := g.sim.LoadStrengths(g.StrengthsPath); err != nil {
			g.log.Error("load strengths", "path", g.StrengthsPath, "err", err)
		}
	}

	// Live tuning of the selected rule
	if inpututil.IsKeyJustPressed(ebiten.KeyTab) {
		if ebiten.IsKeyPressed(ebiten.KeyShift) {
			g.sim.Select(-1)
		} else {
			g.sim.Select(1)
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowUp) {
		g.sim.Nudge(NudgeStep)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowDown) {
		g.sim.Nudge(-NudgeStep)
	}

	// Zoom
	_, wheelY := ebiten.Wheel()
	g.Zoom += wheelY * 0.1
	if g.Zoom < MinZoom {
		g.Zoom = MinZoom
	}

	// Pan (drag)
	mx, my := ebiten.CursorPosition()
	if ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		g.CamX -= (float64(mx) - g.PrevMX) / g.Zoom
		g.CamY -= (float64(my) - g.PrevMY) / g.Zoom
	}
	g.PrevMX = float64(mx)
	g.PrevMY = float64(my)
}

// worldToScreenX/Y for camera
func (g *Simulation) worldToScreenX(wx float64) float64 {
	return (wx - g.CamX) * g.Zoom
}
func (g *Simulation) worldToScreenY(wy float64) float64 {
	return (wy - g.CamY) * g.Zoom
}
