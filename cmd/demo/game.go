package main

import (
	"fmt"
	"log"
	"path/filepath"

	"github.com/ebitenui/ebitenui"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/milk9111/kinema/anim"
	"github.com/milk9111/kinema/chipmunk"
	"github.com/milk9111/kinema/kinematic"
	"github.com/milk9111/kinema/script"
	"github.com/milk9111/kinema/tuning"
)

const (
	baseWidth  = 1280
	baseHeight = 720
)

// physics runs on a fixed step decoupled from the render rate
const fixedDt = 1.0 / 120.0

type Game struct {
	frames int

	input  *Input
	level  *Level
	player *Player

	params     tuning.Params
	paramsPath string
	watcher    *tuning.Watcher

	body   *kinematic.Body
	ctrl   *kinematic.Controller
	bridge *anim.Bridge

	scenario *script.Scenario

	acc    float64
	paused bool
	ui     *ebitenui.UI
}

func NewGame(levelPath, paramsPath, scenarioPath string) *Game {
	lvl := DefaultLevel()
	if levelPath != "" {
		l, err := LoadLevel(levelPath)
		if err != nil {
			log.Printf("failed to load level %s: %v", levelPath, err)
		} else {
			lvl = l
		}
	}

	params := tuning.Default()
	if paramsPath != "" {
		p, err := tuning.Load(paramsPath)
		if err != nil {
			log.Printf("failed to load params %s: %v", paramsPath, err)
		} else {
			params = p
		}
	}

	var scenario *script.Scenario
	if scenarioPath != "" {
		s, err := script.Load(scenarioPath)
		if err != nil {
			log.Printf("failed to load scenario %s: %v", scenarioPath, err)
		} else {
			scenario = s
		}
	}

	g := &Game{
		input:      &Input{},
		level:      lvl,
		params:     params,
		paramsPath: paramsPath,
		scenario:   scenario,
	}
	g.buildMover()
	g.ui = NewPauseUI(g)

	if paramsPath != "" {
		w, err := tuning.NewWatcher(filepath.Dir(paramsPath))
		if err != nil {
			log.Printf("params watcher disabled: %v", err)
		} else {
			g.watcher = w
		}
	}

	return g
}

// buildMover wires the character stack against the current level and params.
// Position and velocity carry over across rebuilds so live tuning doesn't
// teleport the player.
func (g *Game) buildMover() {
	spawn := g.level.SpawnPosition()
	if g.body != nil {
		spawn = g.body.Position()
	}

	world := chipmunk.NewWorld(g.level.Grid(), playerWidth, playerHeight)
	if g.player == nil {
		g.player = NewPlayer(spawn)
	}

	body := kinematic.NewBody(g.params.BodyConfig(), world, g.player, spawn)
	if g.body != nil {
		body.SetVelocity(g.body.Velocity())
	}

	g.body = body
	g.ctrl = kinematic.NewController(body, g.params.ControllerConfig())
	g.bridge = anim.NewBridge(body, g.player)
}

func (g *Game) reloadParams() {
	if g.paramsPath == "" {
		return
	}
	p, err := tuning.Load(g.paramsPath)
	if err != nil {
		log.Printf("params reload rejected: %v", err)
		return
	}
	g.params = p
	g.buildMover()
	log.Printf("params reloaded from %s", g.paramsPath)
}

func (g *Game) pollWatcher() {
	if g.watcher == nil {
		return
	}
	for {
		select {
		case name, ok := <-g.watcher.Events:
			if !ok {
				g.watcher = nil
				return
			}
			log.Printf("params file changed: %s", name)
			g.reloadParams()
		case err, ok := <-g.watcher.Errors:
			if !ok {
				g.watcher = nil
				return
			}
			log.Printf("params watcher: %v", err)
		default:
			return
		}
	}
}

func (g *Game) Update() error {
	g.frames++

	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		g.paused = !g.paused
	}
	if g.paused {
		g.ui.Update()
		return nil
	}

	g.pollWatcher()
	g.input.Update()

	scripted := g.applyScenarioFrame()
	if !scripted {
		g.ctrl.SetMoveAxis(g.input.MoveX)
		if g.input.JumpPressed {
			g.ctrl.PressJump()
		}
		if g.input.JumpReleased {
			g.ctrl.ReleaseJump()
		}
	}

	g.acc += 1.0 / float64(ebiten.TPS())
	for g.acc >= fixedDt {
		g.ctrl.Tick(fixedDt)
		g.body.Tick(fixedDt)
		g.acc -= fixedDt
	}

	g.bridge.Update()
	return nil
}

// applyScenarioFrame advances the scripted input, if any, and feeds it to the
// controller. Returns false once the script is finished or broken so keyboard
// input takes over.
func (g *Game) applyScenarioFrame() bool {
	if g.scenario == nil {
		return false
	}
	frame, err := g.scenario.Step()
	if err != nil {
		log.Printf("scenario stopped: %v", err)
		g.scenario = nil
		return false
	}
	if frame.Done {
		log.Printf("scenario finished")
		g.scenario = nil
		return false
	}

	g.ctrl.SetMoveAxis(frame.MoveX)
	if frame.JumpPressed {
		g.ctrl.PressJump()
	}
	if frame.JumpReleased {
		g.ctrl.ReleaseJump()
	}
	return true
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.level.Draw(screen)
	g.player.Draw(screen)

	vel := g.body.Velocity()
	ebitenutil.DebugPrint(screen, fmt.Sprintf(
		"FPS: %.1f    state: %s    vel: (%.0f, %.0f)",
		ebiten.ActualFPS(), g.body.State(), vel.X, vel.Y,
	))

	if g.paused {
		g.ui.Draw(screen)
	}
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return baseWidth, baseHeight
}
