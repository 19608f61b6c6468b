// Package chipmunk provides a Chipmunk2D-backed collision world that the
// kinematic core can cast against. The space is query-only; it is never
// stepped, so the kinematic body stays the single owner of motion.
package chipmunk

import (
	"github.com/jakecoffman/cp"

	"github.com/milk9111/kinema/common"
	"github.com/milk9111/kinema/kinematic"
)

const categorySolid uint = 1 << 0

// TileGrid describes static level geometry as a row-major grid of solid
// flags, screen-down coordinates (row 0 at the top).
type TileGrid struct {
	Width    int
	Height   int
	TileSize float64
	Solid    []bool
}

func (g TileGrid) at(x, y int) bool {
	return g.Solid[y*g.Width+x]
}

// World owns a chipmunk space holding merged static boxes for the grid and
// implements kinematic.Collider by sweeping an axis-aligned box through it
// with segment queries from points on the box perimeter. Surfaces narrower
// than half the box extent can slip between sample rays; tile geometry never
// is.
type World struct {
	space  *cp.Space
	filter cp.ShapeFilter

	halfW float64
	halfH float64
}

// NewWorld builds the static collision space for grid, swept by a box of the
// given size centered on the cast position.
func NewWorld(grid TileGrid, boxW, boxH float64) *World {
	w := &World{
		space:  cp.NewSpace(),
		filter: cp.NewShapeFilter(cp.NO_GROUP, cp.ALL_CATEGORIES, categorySolid),
		halfW:  boxW / 2,
		halfH:  boxH / 2,
	}
	w.buildStaticShapes(grid)
	return w
}

// Space returns the underlying chipmunk space.
func (w *World) Space() *cp.Space {
	if w == nil {
		return nil
	}
	return w.space
}

// buildStaticShapes greedily merges contiguous solid tiles into larger boxes
// so the space holds a few continuous static shapes instead of one per tile.
func (w *World) buildStaticShapes(grid TileGrid) {
	if grid.Width <= 0 || grid.Height <= 0 || len(grid.Solid) != grid.Width*grid.Height {
		return
	}

	solidFilter := cp.NewShapeFilter(cp.NO_GROUP, categorySolid, cp.ALL_CATEGORIES)

	processed := make([]bool, grid.Width*grid.Height)
	for y := 0; y < grid.Height; y++ {
		for x := 0; x < grid.Width; x++ {
			idx := y*grid.Width + x
			if processed[idx] {
				continue
			}
			if !grid.at(x, y) {
				processed[idx] = true
				continue
			}

			// Expand a rectangle over as many contiguous solid tiles as
			// possible, width first, then height.
			rw := 1
			for x+rw < grid.Width {
				idx2 := y*grid.Width + (x + rw)
				if processed[idx2] || !grid.Solid[idx2] {
					break
				}
				rw++
			}

			rh := 1
		heightLoop:
			for y+rh < grid.Height {
				for xi := x; xi < x+rw; xi++ {
					idx2 := (y+rh)*grid.Width + xi
					if processed[idx2] || !grid.Solid[idx2] {
						break heightLoop
					}
				}
				rh++
			}

			x0 := float64(x) * grid.TileSize
			y0 := float64(y) * grid.TileSize
			bb := cp.BB{
				L: x0,
				B: y0,
				R: x0 + float64(rw)*grid.TileSize,
				T: y0 + float64(rh)*grid.TileSize,
			}
			shape := cp.NewBox2(w.space.StaticBody, bb, 0)
			shape.SetFilter(solidFilter)
			w.space.AddShape(shape)

			for yy := y; yy < y+rh; yy++ {
				for xx := x; xx < x+rw; xx++ {
					processed[yy*grid.Width+xx] = true
				}
			}
		}
	}

	// World bounds matching the grid size keep the mover inside the level.
	worldW := float64(grid.Width) * grid.TileSize
	worldH := float64(grid.Height) * grid.TileSize
	segments := []struct {
		a cp.Vector
		b cp.Vector
	}{
		{a: cp.Vector{X: 0, Y: 0}, b: cp.Vector{X: worldW, Y: 0}},           // top
		{a: cp.Vector{X: 0, Y: worldH}, b: cp.Vector{X: worldW, Y: worldH}}, // bottom
		{a: cp.Vector{X: 0, Y: 0}, b: cp.Vector{X: 0, Y: worldH}},           // left
		{a: cp.Vector{X: worldW, Y: 0}, b: cp.Vector{X: worldW, Y: worldH}}, // right
	}
	for _, seg := range segments {
		shape := cp.NewSegment(w.space.StaticBody, seg.a, seg.b, 1.0)
		shape.SetFilter(solidFilter)
		w.space.AddShape(shape)
	}
}

// Cast implements kinematic.Collider: it sweeps the configured box from the
// given center along dir, reporting the first surface each sample ray
// strikes.
func (w *World) Cast(from, dir common.Vec2, maxDist float64, hits []kinematic.Hit) int {
	if w == nil || w.space == nil || len(hits) == 0 || maxDist <= 0 {
		return 0
	}

	n := 0
	for _, p := range w.samplePoints(from) {
		if n >= len(hits) {
			break
		}
		start := cp.Vector{X: p.X, Y: p.Y}
		end := cp.Vector{X: p.X + dir.X*maxDist, Y: p.Y + dir.Y*maxDist}
		info := w.space.SegmentQueryFirst(start, end, 0, w.filter)
		if info.Shape == nil {
			continue
		}
		hits[n] = kinematic.Hit{
			Normal:   common.Vec2{X: info.Normal.X, Y: info.Normal.Y},
			Distance: info.Alpha * maxDist,
			Fraction: info.Alpha,
		}
		n++
	}
	return n
}

// samplePoints returns the box corners, edge midpoints, and center for a box
// centered at from.
func (w *World) samplePoints(from common.Vec2) [9]common.Vec2 {
	hw, hh := w.halfW, w.halfH
	return [9]common.Vec2{
		{X: from.X - hw, Y: from.Y - hh},
		{X: from.X, Y: from.Y - hh},
		{X: from.X + hw, Y: from.Y - hh},
		{X: from.X - hw, Y: from.Y},
		from,
		{X: from.X + hw, Y: from.Y},
		{X: from.X - hw, Y: from.Y + hh},
		{X: from.X, Y: from.Y + hh},
		{X: from.X + hw, Y: from.Y + hh},
	}
}
