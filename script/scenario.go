// Package script runs tengo input scenarios: small scripts that feed the
// character controller a deterministic input stream, one frame per fixed
// tick. Useful for replays, demo attract modes, and reproducing movement
// bugs without a keyboard.
package script

import (
	"fmt"
	"os"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
)

// Frame is the input a scenario produced for one fixed tick.
type Frame struct {
	MoveX        float64
	JumpPressed  bool
	JumpReleased bool
	Done         bool
}

// A scenario script defines `update := func(input, state, frame) { ... }`.
// input exposes set_move(x), press_jump(), release_jump() and finish();
// state is a script-owned map that survives between frames; frame counts
// from zero.
const scenarioDispatchScript = `
update(__input, __state, __frame)
`

// Scenario is a compiled input script, re-run once per fixed tick.
type Scenario struct {
	compiled *tengo.Compiled
	state    *tengo.Map
	frame    int
}

// Load reads and compiles a scenario from a file.
func Load(path string) (*Scenario, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("script: read %s: %w", path, err)
	}
	s, err := New(src)
	if err != nil {
		return nil, fmt.Errorf("script: %s: %w", path, err)
	}
	return s, nil
}

// New compiles a scenario from source.
func New(src []byte) (*Scenario, error) {
	full := string(src) + "\n" + scenarioDispatchScript
	sc := tengo.NewScript([]byte(full))
	_ = sc.Add("__input", &tengo.ImmutableMap{Value: map[string]tengo.Object{}})
	_ = sc.Add("__state", &tengo.Map{Value: map[string]tengo.Object{}})
	_ = sc.Add("__frame", 0)
	sc.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))

	compiled, err := sc.Compile()
	if err != nil {
		return nil, fmt.Errorf("script: compile: %w", err)
	}

	return &Scenario{
		compiled: compiled,
		state:    &tengo.Map{Value: map[string]tengo.Object{}},
	}, nil
}

// Step runs the scenario for the next frame and returns the input it
// produced.
func (s *Scenario) Step() (Frame, error) {
	if s == nil || s.compiled == nil {
		return Frame{Done: true}, nil
	}

	var f Frame
	input := &tengo.ImmutableMap{Value: map[string]tengo.Object{
		"set_move": &tengo.UserFunction{Name: "set_move", Value: func(args ...tengo.Object) (tengo.Object, error) {
			if len(args) < 1 {
				return tengo.FalseValue, nil
			}
			v, ok := tengo.ToFloat64(args[0])
			if !ok {
				return tengo.FalseValue, nil
			}
			f.MoveX = v
			return tengo.TrueValue, nil
		}},
		"press_jump": &tengo.UserFunction{Name: "press_jump", Value: func(args ...tengo.Object) (tengo.Object, error) {
			f.JumpPressed = true
			return tengo.TrueValue, nil
		}},
		"release_jump": &tengo.UserFunction{Name: "release_jump", Value: func(args ...tengo.Object) (tengo.Object, error) {
			f.JumpReleased = true
			return tengo.TrueValue, nil
		}},
		"finish": &tengo.UserFunction{Name: "finish", Value: func(args ...tengo.Object) (tengo.Object, error) {
			f.Done = true
			return tengo.TrueValue, nil
		}},
	}}

	if err := s.compiled.Set("__input", input); err != nil {
		return f, err
	}
	if err := s.compiled.Set("__state", s.state); err != nil {
		return f, err
	}
	if err := s.compiled.Set("__frame", s.frame); err != nil {
		return f, err
	}
	if err := s.compiled.Run(); err != nil {
		return f, fmt.Errorf("script: frame %d: %w", s.frame, err)
	}

	s.frame++
	return f, nil
}
