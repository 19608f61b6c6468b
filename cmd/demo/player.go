package main

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"golang.org/x/image/colornames"

	"github.com/milk9111/kinema/anim"
	"github.com/milk9111/kinema/common"
)

const (
	playerWidth  = 24
	playerHeight = 44
)

var clipColors = map[string]color.RGBA{
	anim.ClipIdle: colornames.Whitesmoke,
	anim.ClipRun:  colornames.Limegreen,
	anim.ClipJump: colornames.Gold,
	anim.ClipFall: colornames.Orangered,
}

// Player renders the character as a colored box and receives position
// updates and animation cues from the controller side.
type Player struct {
	pos        common.Vec2
	clip       string
	facingLeft bool

	img *ebiten.Image
	eye *ebiten.Image
}

func NewPlayer(pos common.Vec2) *Player {
	p := &Player{pos: pos, clip: anim.ClipIdle}
	p.img = ebiten.NewImage(playerWidth, playerHeight)
	p.eye = ebiten.NewImage(4, 4)
	p.eye.Fill(colornames.Black)
	return p
}

// SetPosition moves the player. pos is the center of the collision box.
func (p *Player) SetPosition(pos common.Vec2) {
	p.pos = pos
}

// Play switches the current animation clip.
func (p *Player) Play(clip string) {
	p.clip = clip
}

// SetFacing flips the sprite horizontally.
func (p *Player) SetFacing(left bool) {
	p.facingLeft = left
}

func (p *Player) Draw(screen *ebiten.Image) {
	c, ok := clipColors[p.clip]
	if !ok {
		c = colornames.Magenta
	}
	p.img.Fill(c)

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(p.pos.X-playerWidth/2, p.pos.Y-playerHeight/2)
	screen.DrawImage(p.img, op)

	// an eye so the facing flip is visible
	eyeX := p.pos.X + playerWidth/2 - 8
	if p.facingLeft {
		eyeX = p.pos.X - playerWidth/2 + 4
	}
	eyeOp := &ebiten.DrawImageOptions{}
	eyeOp.GeoM.Translate(eyeX, p.pos.Y-playerHeight/2+8)
	screen.DrawImage(p.eye, eyeOp)
}
