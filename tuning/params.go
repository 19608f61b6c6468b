// Package tuning loads character tunables from YAML files and converts them
// into kinematic configs. Parameters replace what an engine would expose as
// inspector fields; they are read at startup (or on hot reload between
// ticks), never mutated during a tick.
package tuning

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/milk9111/kinema/common"
	"github.com/milk9111/kinema/kinematic"
)

// Params is the full set of body and controller tunables.
type Params struct {
	GravityX      float64 `yaml:"gravity_x"`
	GravityY      float64 `yaml:"gravity_y"`
	GravityFactor float64 `yaml:"gravity_factor"`

	MaxSpeed          float64 `yaml:"max_speed"`
	MinMoveDistance   float64 `yaml:"min_move_distance"`
	SafeDistance      float64 `yaml:"safe_distance"`
	SlopeLimitDegrees float64 `yaml:"slope_limit_degrees"`
	CastCapacity      int     `yaml:"cast_capacity"`

	MoveSpeed      float64 `yaml:"move_speed"`
	JumpHeight     float64 `yaml:"jump_height"`
	StopJumpFactor float64 `yaml:"stop_jump_factor"`
	JumpBufferTime float64 `yaml:"jump_buffer_time"`
	CoyoteTime     float64 `yaml:"coyote_time"`
}

// Default returns tunables suited to a 32px-tile, screen-down demo world.
func Default() Params {
	return Params{
		GravityX:      0,
		GravityY:      1500,
		GravityFactor: 1,

		MaxSpeed:          1200,
		MinMoveDistance:   0.01,
		SafeDistance:      1,
		SlopeLimitDegrees: 50,
		CastCapacity:      16,

		MoveSpeed:      260,
		JumpHeight:     120,
		StopJumpFactor: 2,
		JumpBufferTime: 0.15,
		CoyoteTime:     0.1,
	}
}

// Load reads params from a YAML file. Fields absent from the file keep their
// defaults.
func Load(path string) (Params, error) {
	p := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("tuning: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("tuning: unmarshal %s: %w", path, err)
	}
	if err := p.Validate(); err != nil {
		return p, fmt.Errorf("tuning: %s: %w", path, err)
	}
	return p, nil
}

// Validate rejects values the kinematic core can't run with.
func (p Params) Validate() error {
	if p.GravityX == 0 && p.GravityY == 0 {
		return fmt.Errorf("gravity must be non-zero")
	}
	if p.MaxSpeed <= 0 {
		return fmt.Errorf("max_speed must be positive, got %v", p.MaxSpeed)
	}
	if p.SafeDistance < 0 || p.MinMoveDistance < 0 {
		return fmt.Errorf("distances must be non-negative")
	}
	if p.SlopeLimitDegrees <= 0 || p.SlopeLimitDegrees >= 90 {
		return fmt.Errorf("slope_limit_degrees must be in (0, 90), got %v", p.SlopeLimitDegrees)
	}
	if p.CastCapacity <= 0 {
		return fmt.Errorf("cast_capacity must be positive, got %d", p.CastCapacity)
	}
	return nil
}

// BodyConfig converts the params into a kinematic body config.
func (p Params) BodyConfig() kinematic.Config {
	return kinematic.Config{
		Gravity:           common.Vec2{X: p.GravityX, Y: p.GravityY},
		GravityFactor:     p.GravityFactor,
		MaxSpeed:          p.MaxSpeed,
		MinMoveDistance:   p.MinMoveDistance,
		SafeDistance:      p.SafeDistance,
		SlopeLimitDegrees: p.SlopeLimitDegrees,
		CastCapacity:      p.CastCapacity,
	}
}

// ControllerConfig converts the params into a controller config.
func (p Params) ControllerConfig() kinematic.ControllerConfig {
	return kinematic.ControllerConfig{
		MoveSpeed:      p.MoveSpeed,
		JumpHeight:     p.JumpHeight,
		StopJumpFactor: p.StopJumpFactor,
		JumpBufferTime: p.JumpBufferTime,
		CoyoteTime:     p.CoyoteTime,
	}
}
