package kinematic

import (
	"math"
	"testing"

	"github.com/milk9111/kinema/common"
)

// stubCollider answers every cast with the same scripted hits, truncated to
// the caller's buffer and maxDist.
type stubCollider struct {
	hits  []Hit
	casts int
}

func (c *stubCollider) Cast(from, dir common.Vec2, maxDist float64, hits []Hit) int {
	c.casts++
	n := 0
	for _, h := range c.hits {
		if h.Distance > maxDist {
			continue
		}
		hits[n] = h
		n++
	}
	return n
}

// planeCollider models an infinite ground plane at y=0 with math-up
// coordinates (gravity points toward negative Y).
type planeCollider struct {
	enabled bool
}

func (c *planeCollider) Cast(from, dir common.Vec2, maxDist float64, hits []Hit) int {
	if !c.enabled || dir.Y >= 0 {
		return 0
	}
	dist := from.Y / -dir.Y
	if dist < 0 || dist > maxDist {
		return 0
	}
	hits[0] = Hit{Normal: common.Vec2{X: 0, Y: 1}, Distance: dist, Fraction: dist / maxDist}
	return 1
}

// recordingActuator logs every applied position.
type recordingActuator struct {
	positions []common.Vec2
}

func (a *recordingActuator) SetPosition(pos common.Vec2) {
	a.positions = append(a.positions, pos)
}

func testConfig() Config {
	return Config{
		Gravity:           common.Vec2{X: 0, Y: -10},
		GravityFactor:     1,
		MaxSpeed:          100,
		MinMoveDistance:   0.001,
		SafeDistance:      0.01,
		SlopeLimitDegrees: 45,
		CastCapacity:      8,
	}
}

func TestSetVelocityClampsToMaxSpeed(t *testing.T) {
	cases := []struct {
		name string
		in   common.Vec2
	}{
		{"under", common.Vec2{X: 3, Y: 4}},
		{"at_limit", common.Vec2{X: 100, Y: 0}},
		{"over", common.Vec2{X: 300, Y: -400}},
		{"diagonal_over", common.Vec2{X: 99, Y: 99}},
	}

	b := NewBody(testConfig(), &stubCollider{}, nil, common.Vec2{})
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			b.SetVelocity(c.in)
			if got := b.Velocity().Len(); got > b.Config().MaxSpeed+1e-9 {
				t.Fatalf("velocity magnitude %v exceeds max speed %v", got, b.Config().MaxSpeed)
			}
		})
	}
}

func TestNearestHitWins(t *testing.T) {
	// Three hits at 5, 2, and 8; the clamped displacement must stop at the
	// nearest one.
	col := &stubCollider{hits: []Hit{
		{Normal: common.Vec2{X: 0, Y: 1}, Distance: 5},
		{Normal: common.Vec2{X: 0, Y: 1}, Distance: 2},
		{Normal: common.Vec2{X: 0, Y: 1}, Distance: 8},
	}}
	cfg := testConfig()
	cfg.SafeDistance = 0
	b := NewBody(cfg, col, nil, common.Vec2{})

	b.SetVelocity(common.Vec2{X: 0, Y: -100})
	b.Tick(0.1)

	if got := b.Position().Y; math.Abs(got-(-2)) > 1e-9 {
		t.Fatalf("expected to stop at the distance-2 hit, moved to y=%v", got)
	}
}

func TestCollisionClipsVelocityAlongNormal(t *testing.T) {
	normal := common.Vec2{X: 0.6, Y: 0.8}
	col := &stubCollider{hits: []Hit{{Normal: normal, Distance: 0.02}}}
	b := NewBody(testConfig(), col, nil, common.Vec2{})

	b.SetVelocity(common.Vec2{X: -4, Y: -3})
	b.Tick(0.02)

	if got := b.Velocity().Dot(normal); math.Abs(got) > 1e-9 {
		t.Fatalf("expected zero velocity along hit normal, got %v", got)
	}
}

func TestSubThresholdDisplacementSkipsActuator(t *testing.T) {
	act := &recordingActuator{}
	cfg := testConfig()
	cfg.MinMoveDistance = 0.5
	col := &stubCollider{hits: []Hit{{Normal: common.Vec2{X: 0, Y: 1}, Distance: 0.005}}}
	b := NewBody(cfg, col, act, common.Vec2{X: 1, Y: 2})

	// grounded, then crawling below the threshold
	b.Tick(0.02)
	b.SetVelocity(common.Vec2{X: 0.1, Y: 0})
	start := b.Position()
	b.Tick(0.02)

	if b.Position() != start {
		t.Fatalf("position changed from %v to %v", start, b.Position())
	}
	if len(act.positions) != 0 {
		t.Fatalf("expected no actuator calls, got %d", len(act.positions))
	}
}

func TestGroundingIsIdempotent(t *testing.T) {
	col := &stubCollider{hits: []Hit{{Normal: common.Vec2{X: 0, Y: 1}, Distance: 0.005}}}
	b := NewBody(testConfig(), col, nil, common.Vec2{})

	transitions := 0
	b.OnStateChange(func(prev, next State) { transitions++ })

	for i := 0; i < 10; i++ {
		b.Tick(0.02)
		if b.State() != Grounded {
			t.Fatalf("tick %d: expected grounded, got %v", i, b.State())
		}
		if b.GroundNormal().IsZero() {
			t.Fatalf("tick %d: grounded body must have a ground normal", i)
		}
	}

	if transitions != 1 {
		t.Fatalf("expected a single airborne->grounded transition, got %d", transitions)
	}
}

func TestSteepSlopeIsNotGround(t *testing.T) {
	// 60 degree surface against a 45 degree slope limit.
	steep := common.Vec2{X: math.Sin(60 * math.Pi / 180), Y: math.Cos(60 * math.Pi / 180)}
	col := &stubCollider{hits: []Hit{{Normal: steep, Distance: 0.005}}}
	b := NewBody(testConfig(), col, nil, common.Vec2{})

	b.Tick(0.02)

	if b.State() != Airborne {
		t.Fatalf("expected airborne on a too-steep surface, got %v", b.State())
	}
	if !b.GroundNormal().IsZero() {
		t.Fatalf("airborne body must have a zero ground normal, got %v", b.GroundNormal())
	}
}

func TestLandingEndToEnd(t *testing.T) {
	// Falling body meets flat ground 0.05 below with a 0.01 safe margin:
	// it advances 0.04, loses its vertical velocity, and grounds on the
	// following tick.
	col := &stubCollider{hits: []Hit{{Normal: common.Vec2{X: 0, Y: 1}, Distance: 0.05}}}
	act := &recordingActuator{}
	b := NewBody(testConfig(), col, act, common.Vec2{})

	b.SetVelocity(common.Vec2{X: 0, Y: -2.8})
	start := b.Position()

	b.Tick(0.02)
	if got := start.Y - b.Position().Y; math.Abs(got-0.04) > 1e-9 {
		t.Fatalf("expected to fall 0.04, fell %v", got)
	}
	if got := b.Velocity().Y; math.Abs(got) > 1e-9 {
		t.Fatalf("expected vertical velocity cancelled, got %v", got)
	}
	if len(act.positions) != 1 {
		t.Fatalf("expected one actuator call, got %d", len(act.positions))
	}

	b.Tick(0.02)
	if b.State() != Grounded {
		t.Fatalf("expected grounded after landing tick, got %v", b.State())
	}
}

func TestZeroHitsIsNoHit(t *testing.T) {
	b := NewBody(testConfig(), &stubCollider{}, nil, common.Vec2{X: 0, Y: 10})

	b.SetVelocity(common.Vec2{X: 0, Y: -1})
	b.Tick(0.02)

	if got := b.Position().Y; math.Abs(got-9.976) > 1e-9 {
		t.Fatalf("expected unobstructed fall to y=9.976, got %v", got)
	}
}

type brokenCollider struct{}

func (brokenCollider) Cast(from, dir common.Vec2, maxDist float64, hits []Hit) int {
	return len(hits) + 1
}

func TestInvalidHitCountPanics(t *testing.T) {
	b := NewBody(testConfig(), brokenCollider{}, nil, common.Vec2{})
	b.SetVelocity(common.Vec2{X: 0, Y: -1})

	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic on hit count past buffer capacity")
		}
	}()
	b.Tick(0.02)
}

func TestStateChangeNotification(t *testing.T) {
	plane := &planeCollider{enabled: true}
	b := NewBody(testConfig(), plane, nil, common.Vec2{X: 0, Y: 0.005})

	type change struct{ prev, next State }
	var seen []change
	b.OnStateChange(func(prev, next State) { seen = append(seen, change{prev, next}) })

	b.Tick(0.02) // lands
	plane.enabled = false
	b.Tick(0.02) // ground vanished

	want := []change{{Airborne, Grounded}, {Grounded, Airborne}}
	if len(seen) != len(want) {
		t.Fatalf("expected %d transitions, got %d", len(want), len(seen))
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("transition %d: expected %v->%v, got %v->%v", i, want[i].prev, want[i].next, seen[i].prev, seen[i].next)
		}
	}
}
