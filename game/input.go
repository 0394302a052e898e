package game

import (
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// handleInput processes keyboard, mouse, and dropped files.
func (g *Game) handleInput() {
	switch {
	case rl.IsKeyPressed(rl.KeySpace):
		g.TogglePause()
	case rl.IsKeyPressed(rl.KeyTab):
		g.panel.visible = !g.panel.visible
	case rl.IsKeyPressed(rl.KeyS):
		g.panel.showSensors = !g.panel.showSensors
	case rl.IsKeyPressed(rl.KeyEqual), rl.IsKeyPressed(rl.KeyKpAdd):
		g.SetSpeed(g.speed * 2)
	case rl.IsKeyPressed(rl.KeyMinus), rl.IsKeyPressed(rl.KeyKpSubtract):
		g.SetSpeed(g.speed / 2)
	case rl.IsKeyPressed(rl.KeyC):
		g.centerOnBest()
	}

	// Pan with the right mouse button, zoom with the wheel.
	if rl.IsMouseButtonDown(rl.MouseButtonRight) {
		d := rl.GetMouseDelta()
		g.cam.Pan(float64(-d.X), float64(-d.Y))
	}
	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		factor := 1.0 + float64(wheel)*0.1
		g.cam.ZoomBy(factor)
	}

	// Dropped DNA files reseed the population.
	if rl.IsFileDropped() {
		for _, path := range rl.LoadDroppedFiles() {
			if err := g.ImportAndReseed(path); err != nil {
				slog.Error("dropped file rejected", "path", path, "err", err)
				continue
			}
			break // one population, one file
		}
		rl.UnloadDroppedFiles()
	}
}

// centerOnBest points the camera at the fittest living creature.
func (g *Game) centerOnBest() {
	bestFit := -1.0
	for _, c := range g.arena.Creatures() {
		if c.IsAlive() && c.Fitness() > bestFit {
			bestFit = c.Fitness()
			p := c.Centroid()
			g.cam.CenterOn(p.X, p.Y)
		}
	}
}
