package kinematic

import (
	"math"
	"testing"

	"github.com/milk9111/kinema/common"
)

func testControllerConfig() ControllerConfig {
	return ControllerConfig{
		MoveSpeed:      5,
		JumpHeight:     2,
		StopJumpFactor: 2,
		JumpBufferTime: 0.2,
		CoyoteTime:     0.1,
	}
}

const tickDt = 0.02

// step runs one fixed step in the contract order: controller phase first,
// then the body.
func step(c *Controller, b *Body) {
	c.Tick(tickDt)
	b.Tick(tickDt)
}

func groundedRig(t *testing.T) (*Controller, *Body, *planeCollider) {
	t.Helper()
	plane := &planeCollider{enabled: true}
	b := NewBody(testConfig(), plane, nil, common.Vec2{X: 0, Y: 0.005})
	c := NewController(b, testControllerConfig())

	step(c, b)
	if b.State() != Grounded {
		t.Fatalf("rig setup: expected grounded, got %v", b.State())
	}
	return c, b, plane
}

func TestJumpImpulseMagnitude(t *testing.T) {
	c, b, _ := groundedRig(t)

	c.PressJump()

	want := math.Sqrt(2 * b.GravityMag() * b.Config().GravityFactor * 2)
	if got := b.Velocity().Dot(b.Up()); math.Abs(got-want) > 1e-9 {
		t.Fatalf("expected upward speed %v, got %v", want, got)
	}
	if b.State() != Airborne {
		t.Fatalf("jump must force airborne, got %v", b.State())
	}
}

func TestJumpBuffering(t *testing.T) {
	cases := []struct {
		name       string
		bufferTime float64
		wantJump   bool
	}{
		{"within_window", 0.25, true},
		{"expired_window", 0.04, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			plane := &planeCollider{enabled: true}
			b := NewBody(testConfig(), plane, nil, common.Vec2{X: 0, Y: 0.3})
			cfg := testControllerConfig()
			cfg.JumpBufferTime = tc.bufferTime
			c := NewController(b, cfg)

			liftoffs := 0
			b.OnStateChange(func(prev, next State) {
				if prev == Grounded && next == Airborne {
					liftoffs++
				}
			})

			// Fall for a few ticks, then request the jump mid-air.
			for i := 0; i < 3; i++ {
				step(c, b)
			}
			if b.State() != Airborne {
				t.Fatalf("expected to still be falling")
			}
			c.PressJump()
			if b.Velocity().Dot(b.Up()) > 0 {
				t.Fatalf("airborne jump request must not fire immediately")
			}

			// Land and give the controller a phase to consume the buffer.
			for i := 0; i < 20; i++ {
				step(c, b)
			}

			if tc.wantJump {
				if liftoffs != 1 {
					t.Fatalf("expected exactly one buffered jump, got %d liftoffs", liftoffs)
				}
			} else {
				if liftoffs != 0 {
					t.Fatalf("expected no jump from an expired buffer, got %d liftoffs", liftoffs)
				}
				if b.State() != Grounded {
					t.Fatalf("expected to stay grounded, got %v", b.State())
				}
			}
		})
	}
}

func TestCoyoteTime(t *testing.T) {
	cases := []struct {
		name      string
		waitTicks int
		wantJump  bool
	}{
		{"within_window", 2, true},
		{"after_window", 8, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, b, plane := groundedRig(t)

			// Walk off the ledge: the ground disappears under the body.
			plane.enabled = false
			for i := 0; i < tc.waitTicks; i++ {
				step(c, b)
			}
			c.PressJump()

			ascending := b.Velocity().Dot(b.Up()) > 0
			if ascending != tc.wantJump {
				t.Fatalf("expected jump=%v %d ticks after leaving ground, ascending=%v", tc.wantJump, tc.waitTicks, ascending)
			}
		})
	}
}

func TestJumpDoesNotGrantCoyote(t *testing.T) {
	c, b, _ := groundedRig(t)

	c.PressJump()
	step(c, b)
	first := b.Velocity().Dot(b.Up())

	// A second press right after liftoff must buffer, not double-jump off
	// the coyote window.
	c.PressJump()
	if got := b.Velocity().Dot(b.Up()); got > first {
		t.Fatalf("second press mid-jump added upward speed: %v -> %v", first, got)
	}
}

func TestReleaseJumpCutsAscent(t *testing.T) {
	c, b, _ := groundedRig(t)

	c.PressJump()
	before := b.Velocity().Dot(b.Up())
	c.ReleaseJump()

	want := before / 2
	if got := b.Velocity().Dot(b.Up()); math.Abs(got-want) > 1e-9 {
		t.Fatalf("expected upward speed halved to %v, got %v", want, got)
	}

	// Releasing while already descending changes nothing.
	b.SetVelocity(common.Vec2{X: 0, Y: -3})
	c.ReleaseJump()
	if got := b.Velocity().Y; got != -3 {
		t.Fatalf("descending release must be a no-op, got vy=%v", got)
	}
}

func TestGroundedLocomotionFollowsSlope(t *testing.T) {
	normal := common.Vec2{X: math.Sin(30 * math.Pi / 180), Y: math.Cos(30 * math.Pi / 180)}
	col := &stubCollider{hits: []Hit{{Normal: normal, Distance: 0.005}}}
	b := NewBody(testConfig(), col, nil, common.Vec2{})
	c := NewController(b, testControllerConfig())

	b.Tick(tickDt)
	if b.State() != Grounded {
		t.Fatalf("expected grounded on a 30 degree slope")
	}

	c.SetMoveAxis(1)
	c.Tick(tickDt)

	v := b.Velocity()
	if got := v.Dot(normal); math.Abs(got) > 1e-9 {
		t.Fatalf("grounded locomotion must stay on the surface, got %v along normal", got)
	}
	if got := v.Len(); math.Abs(got-5) > 1e-9 {
		t.Fatalf("expected slope speed %v, got %v", 5.0, got)
	}
}

func TestLandingFramePressRetiresBufferedJump(t *testing.T) {
	c, b, _ := groundedRig(t)

	liftoffs := 0
	b.OnStateChange(func(prev, next State) {
		if prev == Grounded && next == Airborne {
			liftoffs++
		}
	})

	c.PressJump()

	// Buffer a second request shortly before touchdown.
	buffered := false
	for i := 0; i < 200 && b.State() == Airborne; i++ {
		if !buffered && b.Velocity().Dot(b.Up()) < 0 && b.Position().Y < 0.3 {
			c.PressJump()
			buffered = true
		}
		step(c, b)
	}
	if !buffered || b.State() != Grounded {
		t.Fatalf("setup: buffered=%v, state=%v", buffered, b.State())
	}

	// A fresh press on the landing frame jumps immediately and must retire
	// the buffered request instead of leaving it armed for a later landing.
	c.PressJump()
	if liftoffs != 2 {
		t.Fatalf("expected the landing-frame press to lift off, got %d liftoffs", liftoffs)
	}

	for i := 0; i < 300; i++ {
		step(c, b)
	}
	if liftoffs != 2 {
		t.Fatalf("stale buffered jump fired on a later landing: %d liftoffs", liftoffs)
	}
}

func TestSlopeWalkStaysGrounded(t *testing.T) {
	normal := common.Vec2{X: math.Sin(30 * math.Pi / 180), Y: math.Cos(30 * math.Pi / 180)}
	// Far enough that displacement casts miss it, near enough that the
	// grounding cast still sees it.
	col := &stubCollider{hits: []Hit{{Normal: normal, Distance: 0.15}}}
	b := NewBody(testConfig(), col, nil, common.Vec2{})
	c := NewController(b, testControllerConfig())

	step(c, b)
	if b.State() != Grounded {
		t.Fatalf("expected grounded on a 30 degree slope, got %v", b.State())
	}

	transitions := 0
	b.OnStateChange(func(prev, next State) { transitions++ })

	c.SetMoveAxis(1)
	for i := 0; i < 10; i++ {
		step(c, b)
		if b.State() != Grounded {
			t.Fatalf("tick %d: walking the slope de-grounded the body", i)
		}
		v := b.Velocity()
		if got := v.Dot(normal); math.Abs(got) > 1e-9 {
			t.Fatalf("tick %d: velocity left the surface, %v along normal", i, got)
		}
		if got := v.Len(); math.Abs(got-5) > 1e-9 {
			t.Fatalf("tick %d: expected slope speed 5, got %v", i, got)
		}
	}
	if transitions != 0 {
		t.Fatalf("expected no transitions while walking the slope, got %d", transitions)
	}
}

func TestMoveAxisIsClamped(t *testing.T) {
	c, b, _ := groundedRig(t)

	c.SetMoveAxis(4)
	c.Tick(tickDt)

	if got := b.Velocity().Len(); got > c.cfg.MoveSpeed+1e-9 {
		t.Fatalf("over-deflected axis exceeded move speed: %v", got)
	}
}
