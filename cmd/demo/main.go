package main

import (
	"flag"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
)

func main() {
	levelPath := flag.String("level", "", "path to a level JSON file (built-in arena when empty)")
	paramsPath := flag.String("params", "", "path to a tuning params YAML file, watched for changes")
	scenarioPath := flag.String("scenario", "", "path to a tengo input scenario to drive the character")
	baseMonitor := flag.Bool("m", false, "use base monitor instead of primary (for multi-monitor setups)")
	flag.Parse()

	if *baseMonitor {
		ebiten.SetMonitor(ebiten.AppendMonitors(nil)[0])
	}

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(baseWidth, baseHeight)
	ebiten.SetWindowTitle("kinema demo")

	game := NewGame(*levelPath, *paramsPath, *scenarioPath)

	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}
}
