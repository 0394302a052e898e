package game

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/menagerie/config"
	"github.com/pthm-cable/menagerie/renderer"
)

// Update advances one graphical frame: input first, then simulation.
func (g *Game) Update() {
	g.handleInput()
	g.Advance(float64(rl.GetFrameTime()))
}

// Draw renders the whole frame.
func (g *Game) Draw() {
	cfg := config.Cfg()

	rl.BeginDrawing()
	renderer.Clear()

	renderer.DrawArena(g.cam,
		cfg.Arena.Width, cfg.Arena.Height, cfg.Arena.WallThickness,
		g.arena.Obstacles(), g.arena.Powerups(),
	)

	showSensors := g.panel.showSensors
	for _, c := range g.arena.Creatures() {
		renderer.DrawCreature(g.cam, c, showSensors)
	}

	g.drawHUD()
	g.panel.draw(g)

	rl.EndDrawing()
}

func (g *Game) drawHUD() {
	line := fmt.Sprintf("gen %d  alive %d/%d  t %.0fs  x%.1f",
		g.evo.Generation,
		g.arena.Alive(),
		len(g.arena.Creatures()),
		g.arena.SimTime(),
		g.speed,
	)
	if g.paused {
		line += "  [paused]"
	}
	rl.DrawText(line, 10, 10, 18, rl.RayWhite)
	rl.DrawFPS(int32(config.Cfg().Screen.Width)-90, 10)
}
