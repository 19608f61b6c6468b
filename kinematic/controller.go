package kinematic

import (
	"math"

	"github.com/milk9111/kinema/common"
)

// ControllerConfig holds the locomotion and jump tunables.
type ControllerConfig struct {
	// MoveSpeed is the horizontal locomotion speed at full axis deflection.
	MoveSpeed float64
	// JumpHeight is the apex height a full jump reaches under this body's
	// gravity.
	JumpHeight float64
	// StopJumpFactor divides the upward speed when jump is released while
	// still ascending, for variable jump height. Values <= 1 disable it.
	StopJumpFactor float64
	// JumpBufferTime remembers a jump pressed shortly before landing and
	// fires it on touchdown.
	JumpBufferTime float64
	// CoyoteTime still honors a jump pressed shortly after walking off a
	// ledge.
	CoyoteTime float64
}

// Controller drives a Body's horizontal locomotion and jumps. It subscribes
// to the body's state transitions for the landing and ledge forgiveness
// windows. Tick must run before the body's own Tick each fixed step.
type Controller struct {
	body *Body
	cfg  ControllerConfig

	moveX       float64
	jumpHeld    bool
	jumping     bool
	pendingJump bool
	jumpBuffer  float64
	coyote      float64
}

// NewController wires a controller to a body.
func NewController(body *Body, cfg ControllerConfig) *Controller {
	c := &Controller{body: body, cfg: cfg}
	if body != nil {
		body.OnStateChange(c.onBodyState)
	}
	return c
}

// SetMoveAxis sets the horizontal input in [-1, 1]. Positive moves along
// Up().Perp(), which is screen-right in y-down coordinates.
func (c *Controller) SetMoveAxis(x float64) {
	c.moveX = common.Clamp(x, -1, 1)
}

// PressJump handles the discrete jump-started input. Grounded bodies (and
// bodies inside the coyote window) jump immediately; airborne presses are
// buffered for JumpBufferTime.
func (c *Controller) PressJump() {
	c.jumpHeld = true
	if c.body == nil {
		return
	}
	if c.body.State() == Grounded || c.coyote > 0 {
		c.jump()
		return
	}
	c.jumpBuffer = c.cfg.JumpBufferTime
}

// ReleaseJump handles the jump-canceled input. Releasing while still
// ascending divides the upward speed by StopJumpFactor.
func (c *Controller) ReleaseJump() {
	c.jumpHeld = false
	if c.body == nil || c.cfg.StopJumpFactor <= 1 {
		return
	}
	up := c.body.Up()
	v := c.body.Velocity()
	upSpeed := v.Dot(up)
	if upSpeed <= 0 {
		return
	}
	v = v.Sub(up.Scale(upSpeed - upSpeed/c.cfg.StopJumpFactor))
	c.body.SetVelocity(v)
}

// JumpHeld reports whether the jump input is currently held.
func (c *Controller) JumpHeld() bool {
	return c.jumpHeld
}

// Tick runs the controller's pre-physics phase: forgiveness timers, any jump
// buffered before the last landing, then locomotion velocity.
func (c *Controller) Tick(dt float64) {
	if c == nil || c.body == nil || dt <= 0 {
		return
	}

	if c.coyote > 0 {
		c.coyote = math.Max(0, c.coyote-dt)
	}
	if c.jumpBuffer > 0 {
		c.jumpBuffer = math.Max(0, c.jumpBuffer-dt)
	}

	if c.pendingJump && c.body.State() == Grounded {
		c.pendingJump = false
		c.jump()
	}

	c.applyLocomotion()
}

func (c *Controller) applyLocomotion() {
	b := c.body
	up := b.Up()
	right := up.Perp()
	v := b.Velocity()

	if b.State() == Grounded {
		// Walk along the surface: project the horizontal axis onto the
		// ground plane so slopes don't slow the body into the surface.
		n := b.GroundNormal()
		tangent := right.Sub(n.Scale(right.Dot(n))).Normalize()
		b.SetVelocity(tangent.Scale(c.moveX * c.cfg.MoveSpeed))
		return
	}

	// Airborne: keep vertical momentum, steer horizontal.
	vertical := up.Scale(v.Dot(up))
	b.SetVelocity(vertical.Add(right.Scale(c.moveX * c.cfg.MoveSpeed)))
}

// jump replaces the vertical velocity with the impulse that reaches
// JumpHeight under the body's gravity.
func (c *Controller) jump() {
	b := c.body
	speed := math.Sqrt(2 * b.GravityMag() * b.Config().GravityFactor * c.cfg.JumpHeight)

	up := b.Up()
	v := b.Velocity()
	v = v.Add(up.Scale(speed - v.Dot(up)))

	c.coyote = 0
	c.jumpBuffer = 0
	c.pendingJump = false
	c.jumping = true
	b.ForceAirborne()
	b.SetVelocity(v)
}

func (c *Controller) onBodyState(prev, next State) {
	if next == Grounded {
		c.jumping = false
		if c.jumpBuffer > 0 {
			// Fire exactly one buffered jump, on the controller's next
			// pre-physics phase.
			c.jumpBuffer = 0
			c.pendingJump = true
		}
		return
	}
	if prev == Grounded && !c.jumping {
		// Walked off a ledge; keep a jump grace window.
		c.coyote = c.cfg.CoyoteTime
	}
}
