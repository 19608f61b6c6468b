package kinematic

import "github.com/milk9111/kinema/common"

// Hit describes one surface struck by a collision cast.
type Hit struct {
	// Normal is the surface normal at the hit point. A collider must never
	// report a zero normal.
	Normal common.Vec2
	// Distance is how far along the cast the surface was struck.
	Distance float64
	// Fraction is Distance divided by the cast length.
	Fraction float64
}

// Collider sweeps the mover's shape through the world. Cast fills hits with
// every surface struck within maxDist when sweeping from the given position
// along dir (a unit vector), and returns how many entries it wrote. A count
// outside [0, len(hits)] is a contract violation and makes the body panic.
//
// Casting is a pure read against the world; it must not move anything.
type Collider interface {
	Cast(from, dir common.Vec2, maxDist float64, hits []Hit) int
}

// Actuator applies a resolved position to whatever the body represents on
// screen or in the host world. It must not perform collision resolution of
// its own; the body owns that.
type Actuator interface {
	SetPosition(pos common.Vec2)
}
