package kinematic

import (
	"fmt"
	"math"

	"github.com/milk9111/kinema/common"
)

// State is the locomotion state of a body.
type State int

const (
	// Airborne means free motion under gravity.
	Airborne State = iota
	// Grounded means resting on a sufficiently flat surface.
	Grounded
)

func (s State) String() string {
	switch s {
	case Airborne:
		return "airborne"
	case Grounded:
		return "grounded"
	default:
		return "unknown"
	}
}

// Config holds the body tunables. Set once at construction; never mutated
// during a tick.
type Config struct {
	// Gravity is the world gravity vector. It doesn't have to point down
	// the Y axis; tilted gravity works.
	Gravity common.Vec2
	// GravityFactor scales Gravity for this body.
	GravityFactor float64
	// MaxSpeed clamps the velocity magnitude on every write.
	MaxSpeed float64
	// MinMoveDistance skips motion below this displacement per tick to
	// avoid jitter from no-op moves.
	MinMoveDistance float64
	// SafeDistance is the margin kept between the body and any surface so
	// floating-point error can't wedge it inside geometry.
	SafeDistance float64
	// SlopeLimitDegrees is the steepest surface incline still considered
	// ground, measured between the surface normal and up-gravity.
	SlopeLimitDegrees float64
	// CastCapacity sizes the reusable hit buffer.
	CastCapacity int
}

const (
	defaultMaxSpeed     = 1000.0
	defaultSlopeDegrees = 45.0
	defaultCastCapacity = 16

	// verticalEpsilon is the tolerance under which the velocity component
	// along gravity counts as zero for grounding purposes.
	verticalEpsilon = 1e-6
)

func (c Config) withDefaults() Config {
	if c.MaxSpeed <= 0 {
		c.MaxSpeed = defaultMaxSpeed
	}
	if c.SlopeLimitDegrees <= 0 {
		c.SlopeLimitDegrees = defaultSlopeDegrees
	}
	if c.CastCapacity <= 0 {
		c.CastCapacity = defaultCastCapacity
	}
	if c.GravityFactor == 0 {
		c.GravityFactor = 1
	}
	return c
}

// TransitionFunc observes a state change. It runs synchronously on the tick
// that flips the state.
type TransitionFunc func(prev, next State)

// Body is a fixed-timestep 2D kinematic mover. It tracks a grounded/airborne
// state, integrates gravity, and resolves motion against an injected
// Collider, clipping velocity along hit normals. It never uses a physics
// engine's own integration; positions go straight to the Actuator.
//
// A Body is not safe for concurrent use; the host drives Tick from a single
// fixed-rate loop.
type Body struct {
	cfg      Config
	collider Collider
	actuator Actuator

	pos          common.Vec2
	vel          common.Vec2
	state        State
	groundNormal common.Vec2

	// derived from cfg, cached so the tick never recomputes roots
	gravityDir      common.Vec2
	gravityMag      float64
	up              common.Vec2
	minGroundNormal float64
	sqrMaxSpeed     float64
	sqrMinMove      float64

	hits []Hit
	subs []TransitionFunc
}

// NewBody creates a body at pos. The collider is required; a nil actuator is
// allowed when the caller only reads Position after ticking.
func NewBody(cfg Config, collider Collider, actuator Actuator, pos common.Vec2) *Body {
	cfg = cfg.withDefaults()
	b := &Body{
		cfg:      cfg,
		collider: collider,
		actuator: actuator,
		pos:      pos,
		state:    Airborne,

		gravityDir:      cfg.Gravity.Normalize(),
		gravityMag:      cfg.Gravity.Len(),
		minGroundNormal: math.Cos(cfg.SlopeLimitDegrees * math.Pi / 180),
		sqrMaxSpeed:     cfg.MaxSpeed * cfg.MaxSpeed,
		sqrMinMove:      cfg.MinMoveDistance * cfg.MinMoveDistance,
		hits:            make([]Hit, cfg.CastCapacity),
	}
	b.up = b.gravityDir.Neg()
	return b
}

// Config returns the body tunables.
func (b *Body) Config() Config {
	return b.cfg
}

// Position returns the resolved position after the last tick.
func (b *Body) Position() common.Vec2 {
	return b.pos
}

// SetPosition teleports the body without collision resolution. Meant for
// spawning and respawns, not for per-tick motion.
func (b *Body) SetPosition(pos common.Vec2) {
	b.pos = pos
	if b.actuator != nil {
		b.actuator.SetPosition(pos)
	}
}

// Velocity returns the current velocity. While Grounded it is the
// along-surface velocity; while Airborne it is the full 2D velocity.
func (b *Body) Velocity() common.Vec2 {
	return b.vel
}

// SetVelocity writes the velocity, clamped to MaxSpeed.
func (b *Body) SetVelocity(v common.Vec2) {
	if v.SqrLen() > b.sqrMaxSpeed {
		v = v.Normalize().Scale(b.cfg.MaxSpeed)
	}
	b.vel = v
}

// State returns the current locomotion state.
func (b *Body) State() State {
	return b.state
}

// GroundNormal returns the normal of the surface the body stands on. It is
// non-zero exactly while the body is Grounded.
func (b *Body) GroundNormal() common.Vec2 {
	return b.groundNormal
}

// Up returns the unit vector opposing gravity.
func (b *Body) Up() common.Vec2 {
	return b.up
}

// GravityMag returns |Gravity|.
func (b *Body) GravityMag() float64 {
	return b.gravityMag
}

// OnStateChange subscribes fn to grounded/airborne transitions.
func (b *Body) OnStateChange(fn TransitionFunc) {
	if fn == nil {
		return
	}
	b.subs = append(b.subs, fn)
}

// ForceAirborne flips the body to Airborne regardless of what it stands on.
// Jump impulses use this so the next grounding check doesn't snap the body
// straight back onto the surface it just left.
func (b *Body) ForceAirborne() {
	b.groundNormal = common.Vec2{}
	b.transition(Airborne)
}

// Tick advances the body one fixed timestep: grounding check, gravity
// integration while airborne, then collision-clipped displacement. Each tick
// is a self-contained recomputation from current state; a skipped tick has
// no lasting consequence beyond one frame of stale state.
func (b *Body) Tick(dt float64) {
	if b == nil || b.collider == nil || dt <= 0 {
		return
	}

	b.updateGrounding(dt)

	if b.state == Airborne {
		b.SetVelocity(b.vel.Add(b.cfg.Gravity.Scale(b.cfg.GravityFactor * dt)))
	}

	b.move(dt)
}

// updateGrounding re-evaluates the grounded/airborne state. An airborne body
// is a grounding candidate only when its speed along gravity is approximately
// zero; casting is skipped entirely for bodies still moving vertically. A
// grounded body measures against its surface normal instead, so tangent
// motion along a slope keeps it grounded.
func (b *Body) updateGrounding(dt float64) {
	ref := b.gravityDir
	if b.state == Grounded && !b.groundNormal.IsZero() {
		ref = b.groundNormal
	}
	if math.Abs(b.vel.Dot(ref)) > verticalEpsilon {
		b.groundNormal = common.Vec2{}
		b.transition(Airborne)
		return
	}

	// Cast as far as gravity would pull the body this tick, plus the safe
	// margin, so standing on a surface one margin away still counts.
	castDist := b.cfg.GravityFactor*dt*b.gravityMag + b.cfg.SafeDistance
	if hit, ok := b.nearestHit(b.gravityDir, castDist); ok && hit.Normal.Dot(b.up) >= b.minGroundNormal {
		b.groundNormal = hit.Normal
		b.transition(Grounded)
		return
	}

	b.groundNormal = common.Vec2{}
	b.transition(Airborne)
}

// move resolves the tick's displacement against the collider and applies the
// result through the actuator.
func (b *Body) move(dt float64) {
	disp := b.vel.Scale(dt)
	if disp.SqrLen() < b.sqrMinMove {
		return
	}

	dist := disp.Len()
	if dist == 0 {
		return
	}
	dir := disp.Scale(1 / dist)

	if hit, ok := b.nearestHit(dir, dist+b.cfg.SafeDistance); ok {
		allowed := hit.Distance - b.cfg.SafeDistance
		if allowed < 0 {
			allowed = 0
		}
		if allowed < dist {
			dist = allowed
		}
		// Cancel the velocity component into the surface; motion along it
		// survives.
		b.SetVelocity(b.vel.Sub(hit.Normal.Scale(b.vel.Dot(hit.Normal))))
	}

	b.pos = b.pos.Add(dir.Scale(dist))
	if b.actuator != nil {
		b.actuator.SetPosition(b.pos)
	}
}

// nearestHit casts from the body's position and returns the hit with the
// strictly smallest distance. Ties keep the earlier buffer entry.
func (b *Body) nearestHit(dir common.Vec2, maxDist float64) (Hit, bool) {
	n := b.collider.Cast(b.pos, dir, maxDist, b.hits)
	if n < 0 || n > len(b.hits) {
		panic(fmt.Sprintf("kinematic: collider reported %d hits for buffer capacity %d", n, len(b.hits)))
	}
	if n == 0 {
		return Hit{}, false
	}

	best := 0
	for i := 1; i < n; i++ {
		if b.hits[i].Distance < b.hits[best].Distance {
			best = i
		}
	}
	return b.hits[best], true
}

func (b *Body) transition(next State) {
	if b.state == next {
		return
	}
	prev := b.state
	b.state = next
	for _, fn := range b.subs {
		fn(prev, next)
	}
}
