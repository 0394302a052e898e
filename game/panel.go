package game

import (
	"fmt"
	"log/slog"
	"math"
	"time"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/menagerie/config"
)

func populationBounds() (int, int) {
	cfg := config.Cfg()
	return cfg.Evolution.MinPopulation, cfg.Evolution.MaxPopulation
}

// controlPanel is the raygui side panel with runtime controls.
type controlPanel struct {
	visible     bool
	showSensors bool
}

func newControlPanel() *controlPanel {
	return &controlPanel{visible: true, showSensors: true}
}

// draw renders the panel and applies any control changes to the game.
func (p *controlPanel) draw(g *Game) {
	if !p.visible {
		return
	}

	x := float32(10)
	y := float32(40)
	w := float32(220)

	rl.DrawRectangle(int32(x)-6, int32(y)-6, int32(w)+12, 170, rl.Fade(rl.Black, 0.55))

	label := "Pause"
	if g.paused {
		label = "Resume"
	}
	if gui.Button(rl.Rectangle{X: x, Y: y, Width: 68, Height: 24}, label) {
		g.TogglePause()
	}
	if gui.Button(rl.Rectangle{X: x + 76, Y: y, Width: 68, Height: 24}, "Reset") {
		g.Reset()
	}
	if gui.Button(rl.Rectangle{X: x + 152, Y: y, Width: 68, Height: 24}, "Export") {
		path := fmt.Sprintf("dna_%s.json", time.Now().Format("20060102_150405"))
		if err := g.ExportBest(path); err != nil {
			slog.Error("export failed", "err", err)
		}
	}
	y += 34

	// Speed on a log scale so the slider is usable across 0.5..1000.
	rl.DrawText(fmt.Sprintf("speed x%.1f", g.speed), int32(x), int32(y), 12, rl.LightGray)
	y += 16
	exp := gui.SliderBar(
		rl.Rectangle{X: x, Y: y, Width: w, Height: 18},
		"", "",
		float32(math.Log10(g.speed)),
		float32(math.Log10(MinSpeed)),
		float32(math.Log10(MaxSpeed)),
	)
	g.SetSpeed(math.Pow(10, float64(exp)))
	y += 28

	rl.DrawText(fmt.Sprintf("population %d", g.evo.TargetSize()), int32(x), int32(y), 12, rl.LightGray)
	y += 16
	cfgMin, cfgMax := populationBounds()
	pop := gui.SliderBar(
		rl.Rectangle{X: x, Y: y, Width: w, Height: 18},
		"", "",
		float32(g.evo.TargetSize()),
		float32(cfgMin),
		float32(cfgMax),
	)
	g.evo.SetTargetSize(int(pop + 0.5))
	y += 28

	p.showSensors = gui.CheckBox(
		rl.Rectangle{X: x, Y: y, Width: 18, Height: 18},
		"sensors", p.showSensors,
	)
}
