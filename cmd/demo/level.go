package main

import (
	"encoding/json"
	"fmt"
	"image/color"
	"os"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/milk9111/kinema/chipmunk"
	"github.com/milk9111/kinema/common"
)

const tileSize = 32

// Level is a simple tile map stored as JSON: a flat row-major array where
// any non-zero value is solid.
type Level struct {
	Width  int   `json:"width"`
	Height int   `json:"height"`
	Tiles  []int `json:"tiles"`

	// player spawn in tile coordinates
	SpawnX int `json:"spawn_x,omitempty"`
	SpawnY int `json:"spawn_y,omitempty"`

	tileImg *ebiten.Image
}

// LoadLevel loads a level from a JSON file at path.
func LoadLevel(path string) (*Level, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var lvl Level
	if err := json.Unmarshal(b, &lvl); err != nil {
		return nil, err
	}
	if lvl.Width <= 0 || lvl.Height <= 0 {
		return nil, fmt.Errorf("invalid level dimensions: %dx%d", lvl.Width, lvl.Height)
	}
	if len(lvl.Tiles) != lvl.Width*lvl.Height {
		return nil, fmt.Errorf("level tile count %d does not match %dx%d", len(lvl.Tiles), lvl.Width, lvl.Height)
	}

	lvl.buildImages()
	return &lvl, nil
}

// DefaultLevel builds a small built-in arena: a floor, two platforms, and a
// pit, enough to feel out the jump tuning.
func DefaultLevel() *Level {
	const w, h = 40, 22
	lvl := &Level{Width: w, Height: h, Tiles: make([]int, w*h), SpawnX: 4, SpawnY: 17}

	for x := 0; x < w; x++ {
		if x >= 14 && x <= 16 { // pit
			continue
		}
		lvl.Tiles[(h-2)*w+x] = 1
		lvl.Tiles[(h-1)*w+x] = 1
	}
	for x := 8; x < 13; x++ {
		lvl.Tiles[15*w+x] = 1
	}
	for x := 19; x < 25; x++ {
		lvl.Tiles[12*w+x] = 1
	}
	for y := 8; y < 20; y++ { // wall on the right
		lvl.Tiles[y*w+33] = 1
	}

	lvl.buildImages()
	return lvl
}

func (l *Level) buildImages() {
	l.tileImg = ebiten.NewImage(tileSize, tileSize)
	l.tileImg.Fill(color.RGBA{R: 0x3c, G: 0x78, B: 0xff, A: 0xff})
}

// Grid converts the level into the collision world's tile grid.
func (l *Level) Grid() chipmunk.TileGrid {
	grid := chipmunk.TileGrid{
		Width:    l.Width,
		Height:   l.Height,
		TileSize: tileSize,
		Solid:    make([]bool, len(l.Tiles)),
	}
	for i, v := range l.Tiles {
		grid.Solid[i] = v != 0
	}
	return grid
}

// SpawnPosition returns the center of the spawn tile in world pixels.
func (l *Level) SpawnPosition() common.Vec2 {
	return common.Vec2{
		X: float64(l.SpawnX)*tileSize + tileSize/2,
		Y: float64(l.SpawnY)*tileSize + tileSize/2,
	}
}

// Draw renders the solid tiles.
func (l *Level) Draw(screen *ebiten.Image) {
	if l == nil || l.tileImg == nil {
		return
	}
	for y := 0; y < l.Height; y++ {
		for x := 0; x < l.Width; x++ {
			if l.Tiles[y*l.Width+x] == 0 {
				continue
			}
			op := &ebiten.DrawImageOptions{}
			op.GeoM.Translate(float64(x*tileSize), float64(y*tileSize))
			screen.DrawImage(l.tileImg, op)
		}
	}
}
