// Package anim maps kinematic body state to presentation parameters. It is
// read-only toward the body: the bridge polls velocity and state once per
// rendered frame and keeps the animator in sync.
package anim

import (
	"github.com/milk9111/kinema/common"
	"github.com/milk9111/kinema/kinematic"
)

// Clip names the bridge selects between.
const (
	ClipIdle = "idle"
	ClipRun  = "run"
	ClipJump = "jump"
	ClipFall = "fall"
)

// runEpsilon is the speed below which a grounded body still counts as idle.
const runEpsilon = 0.5

// BodySource is the slice of the kinematic body the bridge reads.
// *kinematic.Body satisfies it.
type BodySource interface {
	Velocity() common.Vec2
	State() kinematic.State
	Up() common.Vec2
}

// Animator is the presentation consumer driven by the bridge.
type Animator interface {
	Play(clip string)
	SetFacing(left bool)
}

// Bridge drives an Animator from a body's velocity and state. It caches the
// active clip and facing so the animator only hears actual changes.
type Bridge struct {
	body     BodySource
	animator Animator

	clip       string
	facingLeft bool
	started    bool
}

// NewBridge wires a bridge between a body and an animator.
func NewBridge(body BodySource, animator Animator) *Bridge {
	return &Bridge{body: body, animator: animator}
}

// Clip returns the active clip name.
func (b *Bridge) Clip() string {
	return b.clip
}

// FacingLeft returns the current facing.
func (b *Bridge) FacingLeft() bool {
	return b.facingLeft
}

// Update polls the body and pushes any clip or facing change to the
// animator. Call once per rendered frame.
func (b *Bridge) Update() {
	if b == nil || b.body == nil {
		return
	}

	v := b.body.Velocity()
	up := b.body.Up()

	var clip string
	if b.body.State() == kinematic.Grounded {
		if v.Len() > runEpsilon {
			clip = ClipRun
		} else {
			clip = ClipIdle
		}
	} else {
		if v.Dot(up) > 0 {
			clip = ClipJump
		} else {
			clip = ClipFall
		}
	}

	if clip != b.clip || !b.started {
		b.clip = clip
		b.started = true
		if b.animator != nil {
			b.animator.Play(clip)
		}
	}

	// facing follows horizontal motion and holds on standstill
	horizontal := v.Dot(up.Perp())
	if horizontal > runEpsilon && b.facingLeft {
		b.facingLeft = false
		if b.animator != nil {
			b.animator.SetFacing(false)
		}
	} else if horizontal < -runEpsilon && !b.facingLeft {
		b.facingLeft = true
		if b.animator != nil {
			b.animator.SetFacing(true)
		}
	}
}
