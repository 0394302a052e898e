package arena

import (
	"github.com/jakecoffman/cp"
	"github.com/mlange-42/ark/ecs"
	"github.com/ojrac/opensimplex-go"

	"github.com/pthm-cable/menagerie/config"
)

// PowerupCollisionType tags power-up sensor shapes.
const PowerupCollisionType cp.CollisionType = 2

// offField is where collected power-up bodies park until respawn.
var offField = cp.Vector{X: -1e5, Y: -1e5}

// Powerup is the ECS component for one restorative pickup.
type Powerup struct {
	Active  bool
	Respawn float64 // seconds until reactivation; meaningful when inactive
	Pos     cp.Vector
}

// PhysRef links an ECS entity to its physics objects.
type PhysRef struct {
	Body  *cp.Body
	Shape *cp.Shape
}

// Obstacle is a static circular blocker.
type Obstacle struct {
	Pos    cp.Vector
	Radius float64
}

// spawnPowerups creates the configured number of power-up entities,
// each a sensor circle the solver never pushes creatures off of. The
// bodies are kinematic, not static, so relocating one on collection or
// respawn needs no spatial reindexing.
func (a *Arena) spawnPowerups() {
	cfg := config.Cfg()
	for i := 0; i < cfg.Powerups.Count; i++ {
		pos := a.RandomSpawnPos()

		body := a.space.AddBody(cp.NewKinematicBody())
		body.SetPosition(pos)
		shape := a.space.AddShape(cp.NewCircle(body, cfg.Powerups.Radius, cp.Vector{}))
		shape.SetSensor(true)
		shape.SetCollisionType(PowerupCollisionType)

		pu := Powerup{Active: true, Pos: pos}
		ref := PhysRef{Body: body, Shape: shape}
		entity := a.powerupMapper.NewEntity(&pu, &ref)
		shape.UserData = entity
	}
}

// respawnPowerups counts down inactive power-ups and reactivates them
// at a fresh position once their delay expires.
func (a *Arena) respawnPowerups(dt float64) {
	query := a.powerupFilter.Query()
	for query.Next() {
		pu, ref := query.Get()
		if pu.Active {
			continue
		}
		pu.Respawn -= dt
		if pu.Respawn > 0 {
			continue
		}
		pu.Active = true
		pu.Pos = a.RandomSpawnPos()
		ref.Body.SetPosition(pu.Pos)
	}
}

// collectPowerup deactivates a power-up and parks its body off-field so
// no further begin events fire until respawn.
func (a *Arena) collectPowerup(entity ecs.Entity) bool {
	if !a.puMap.HasAll(entity) {
		return false
	}
	pu := a.puMap.Get(entity)
	ref := a.refMap.Get(entity)
	if !pu.Active {
		return false
	}
	pu.Active = false
	pu.Respawn = config.Cfg().Powerups.RespawnSec
	ref.Body.SetPosition(offField)
	return true
}

// ResetPowerups reactivates every power-up at a fresh position. Used
// at generation turnover so each generation starts on a level field.
func (a *Arena) ResetPowerups() {
	query := a.powerupFilter.Query()
	for query.Next() {
		pu, ref := query.Get()
		pu.Active = true
		pu.Respawn = 0
		pu.Pos = a.RandomSpawnPos()
		ref.Body.SetPosition(pu.Pos)
	}
}

// ResetObstacles tears down the obstacle field and scatters a new one
// from the next noise seed. Used at generation turnover.
func (a *Arena) ResetObstacles() {
	for _, s := range a.obstacleShapes {
		a.space.RemoveShape(s)
	}
	a.obstacleShapes = a.obstacleShapes[:0]
	a.obstacles = a.obstacles[:0]
	a.noiseSeed++
	a.placeObstacles(a.noiseSeed)
}

// ResetField refreshes power-ups and obstacles for a new generation.
func (a *Arena) ResetField() {
	a.ResetPowerups()
	a.ResetObstacles()
}

// PowerupView is per-power-up render state.
type PowerupView struct {
	Pos    cp.Vector
	Radius float64
	Active bool
}

// Powerups returns the current state of every power-up.
func (a *Arena) Powerups() []PowerupView {
	r := config.Cfg().Powerups.Radius
	var out []PowerupView
	query := a.powerupFilter.Query()
	for query.Next() {
		pu, _ := query.Get()
		out = append(out, PowerupView{Pos: pu.Pos, Radius: r, Active: pu.Active})
	}
	return out
}

// placeObstacles scatters static circles where a smooth noise field
// exceeds the configured threshold, so obstacles cluster into loose
// regions instead of uniform confetti.
func (a *Arena) placeObstacles(seed int64) {
	cfg := config.Cfg()
	noise := opensimplex.New(seed)

	margin := cfg.Arena.WallThickness + cfg.Obstacles.MaxRadius + 20
	placed := 0
	for try := 0; try < 400 && placed < cfg.Obstacles.Count; try++ {
		pos := cp.Vector{
			X: margin + a.rng.Float64()*(cfg.Arena.Width-2*margin),
			Y: margin + a.rng.Float64()*(cfg.Arena.Height-2*margin),
		}
		if noise.Eval2(pos.X*cfg.Obstacles.NoiseFreq, pos.Y*cfg.Obstacles.NoiseFreq) < cfg.Obstacles.Threshold {
			continue
		}
		r := cfg.Obstacles.MinRadius + a.rng.Float64()*(cfg.Obstacles.MaxRadius-cfg.Obstacles.MinRadius)
		if a.insideObstacle(pos, r*2) {
			continue
		}

		shape := a.space.AddShape(cp.NewCircle(a.space.StaticBody, r, pos))
		shape.SetElasticity(0.3)
		shape.SetFriction(0.9)

		a.obstacles = append(a.obstacles, Obstacle{Pos: pos, Radius: r})
		a.obstacleShapes = append(a.obstacleShapes, shape)
		placed++
	}
}

// insideObstacle reports whether pos is within pad of any obstacle edge.
func (a *Arena) insideObstacle(pos cp.Vector, pad float64) bool {
	for _, o := range a.obstacles {
		if pos.Distance(o.Pos) < o.Radius+pad {
			return true
		}
	}
	return false
}

// Obstacles returns the static obstacle list.
func (a *Arena) Obstacles() []Obstacle { return a.obstacles }
