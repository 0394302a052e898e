// Package renderer draws the arena and its creatures with raylib.
// All world-to-screen mapping goes through the camera; the renderer
// never mutates simulation state.
package renderer

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/menagerie/arena"
	"github.com/pthm-cable/menagerie/camera"
	"github.com/pthm-cable/menagerie/creature"
	"github.com/pthm-cable/menagerie/genome"
)

var (
	backgroundColor = rl.Color{R: 18, G: 22, B: 30, A: 255}
	wallColor       = rl.Color{R: 70, G: 78, B: 92, A: 255}
	obstacleColor   = rl.Color{R: 52, G: 58, B: 70, A: 255}
	powerupColor    = rl.Color{R: 90, G: 220, B: 140, A: 255}
	sensorEyeColor  = rl.Color{R: 120, G: 180, B: 255, A: 90}
	sensorFeelColor = rl.Color{R: 255, G: 200, B: 120, A: 90}
	healthBackColor = rl.Color{R: 40, G: 40, B: 40, A: 200}
	healthFillColor = rl.Color{R: 220, G: 70, B: 70, A: 230}
	foodFillColor   = rl.Color{R: 240, G: 190, B: 80, A: 230}
)

// Clear paints the background.
func Clear() {
	rl.ClearBackground(backgroundColor)
}

// DrawArena renders the walls, obstacles, and power-ups.
func DrawArena(cam *camera.Camera, worldW, worldH, wallThickness float64, obstacles []arena.Obstacle, powerups []arena.PowerupView) {
	// Walls as a frame around the field.
	x0, y0 := cam.WorldToScreen(0, 0)
	x1, y1 := cam.WorldToScreen(worldW, worldH)
	t := float32(wallThickness * cam.Zoom)
	rl.DrawRectangleLinesEx(rl.Rectangle{
		X:      float32(x0) - t,
		Y:      float32(y0) - t,
		Width:  float32(x1-x0) + 2*t,
		Height: float32(y1-y0) + 2*t,
	}, t, wallColor)

	for _, o := range obstacles {
		if !cam.IsVisible(o.Pos.X, o.Pos.Y, o.Radius) {
			continue
		}
		sx, sy := cam.WorldToScreen(o.Pos.X, o.Pos.Y)
		rl.DrawCircleV(vec(sx, sy), float32(o.Radius*cam.Zoom), obstacleColor)
	}

	for _, p := range powerups {
		if !p.Active || !cam.IsVisible(p.Pos.X, p.Pos.Y, p.Radius) {
			continue
		}
		sx, sy := cam.WorldToScreen(p.Pos.X, p.Pos.Y)
		r := float32(p.Radius * cam.Zoom)
		rl.DrawCircleV(vec(sx, sy), r, powerupColor)
		rl.DrawCircleLines(int32(sx), int32(sy), r+2, rl.Fade(powerupColor, 0.4))
	}
}

// DrawCreature renders one creature: sensor cones first, then body
// segments, then status bars. Dead creatures fade with FadeAlpha.
func DrawCreature(cam *camera.Camera, c *creature.Creature, showSensors bool) {
	center := c.Centroid()
	if !cam.IsVisible(center.X, center.Y, 120) {
		return
	}
	alpha := float32(c.FadeAlpha)
	if alpha <= 0 {
		return
	}

	if showSensors && c.IsAlive() {
		drawSensors(cam, c, alpha)
	}

	beauty := c.Genome.Beauty
	for _, seg := range c.Segments() {
		drawSegment(cam, seg, alpha, beauty)
	}

	if c.IsAlive() {
		drawBars(cam, c)
	}
}

func drawSegment(cam *camera.Camera, seg creature.SegmentView, alpha float32, beauty float64) {
	sx, sy := cam.WorldToScreen(seg.Pos.X, seg.Pos.Y)
	col := rl.Color{R: seg.Color.R, G: seg.Color.G, B: seg.Color.B, A: 255}
	col = rl.Fade(col, float32(alpha))

	switch seg.Shape {
	case genome.ShapeCircle:
		r := float32(seg.Radius * cam.Zoom)
		rl.DrawCircleV(vec(sx, sy), r, col)
		if beauty > 0.05 {
			glow := rl.Fade(col, float32(beauty)*0.5*alpha)
			rl.DrawCircleLines(int32(sx), int32(sy), r+3, glow)
		}
	case genome.ShapeRect:
		w := float32(seg.Length * cam.Zoom)
		h := float32(seg.Width * cam.Zoom)
		rl.DrawRectanglePro(
			rl.Rectangle{X: float32(sx), Y: float32(sy), Width: w, Height: h},
			rl.Vector2{X: w / 2, Y: h / 2},
			float32(seg.Angle*180/math.Pi),
			col,
		)
	}

	// Role markers: heart pulses darker, mouth gets a pale tip.
	if seg.Heart {
		rl.DrawCircleV(vec(sx, sy), float32(3*cam.Zoom), rl.Fade(rl.Red, 0.7*alpha))
	}
	if seg.Mouth {
		rl.DrawCircleV(vec(sx, sy), float32(2*cam.Zoom), rl.Fade(rl.RayWhite, 0.8*alpha))
	}
}

func drawSensors(cam *camera.Camera, c *creature.Creature, alpha float32) {
	for _, s := range c.Sensors() {
		sx, sy := cam.WorldToScreen(s.Pos.X, s.Pos.Y)
		col := sensorFeelColor
		if s.Type == genome.SensorEye {
			col = sensorEyeColor
		}
		col = rl.Fade(col, (0.25+0.75*float32(s.Activation))*alpha)

		if s.Type == genome.SensorEye {
			// Two FOV boundary rays plus the center line.
			for _, a := range []float64{s.Angle - s.FOV/2, s.Angle, s.Angle + s.FOV/2} {
				ex := s.Pos.X + math.Cos(a)*s.Range
				ey := s.Pos.Y + math.Sin(a)*s.Range
				tx, ty := cam.WorldToScreen(ex, ey)
				rl.DrawLineV(vec(sx, sy), vec(tx, ty), col)
			}
		} else {
			rl.DrawCircleLines(int32(sx), int32(sy), float32(s.Range*cam.Zoom), col)
		}
	}
}

func drawBars(cam *camera.Camera, c *creature.Creature) {
	center := c.Centroid()
	sx, sy := cam.WorldToScreen(center.X, center.Y-40)
	w := float32(40 * cam.Zoom)
	h := float32(4 * cam.Zoom)
	if h < 2 {
		h = 2
	}
	x := float32(sx) - w/2
	y := float32(sy)

	rl.DrawRectangleRec(rl.Rectangle{X: x, Y: y, Width: w, Height: h}, healthBackColor)
	rl.DrawRectangleRec(rl.Rectangle{
		X: x, Y: y,
		Width:  w * float32(c.Health/creature.MaxHealth),
		Height: h,
	}, healthFillColor)

	rl.DrawRectangleRec(rl.Rectangle{X: x, Y: y + h + 1, Width: w, Height: h}, healthBackColor)
	rl.DrawRectangleRec(rl.Rectangle{
		X: x, Y: y + h + 1,
		Width:  w * float32(c.Food/creature.MaxFood),
		Height: h,
	}, foodFillColor)
}

func vec(x, y float64) rl.Vector2 {
	return rl.Vector2{X: float32(x), Y: float32(y)}
}
