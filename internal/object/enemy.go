package object

import (
	"github.com/tomz197/danmaku/internal/physics"
)

// Enemy is a descending target.
type Enemy struct {
	X, Y  float64 // Position (center)
	W, H  float64 // Size
	Speed float64 // Downward distance per tick
}

// NewEnemyAtTop creates an enemy just above the top edge at a random x that
// keeps its box inside the playfield horizontally.
func NewEnemyAtTop(ctx UpdateContext) Enemy {
	field := ctx.Field
	size := field.Width * ctx.Params.EnemySize

	lo := size / 2
	hi := field.Width - size/2
	x := field.CenterX()
	if hi > lo {
		x = lo + ctx.Rand.Float64()*(hi-lo)
	}

	speed := field.Height * ctx.Params.EnemySpeed
	if ctx.Params.EnemyJitter > 0 {
		speed += ctx.Rand.Float64() * field.Height * ctx.Params.EnemyJitter
	}

	return Enemy{
		X:     x,
		Y:     -size / 2,
		W:     size,
		H:     size,
		Speed: speed,
	}
}

// Rect returns the enemy's bounding box.
func (e *Enemy) Rect() physics.Rect {
	return physics.RectFromCenter(e.X, e.Y, e.W, e.H)
}

// Update moves the enemy down. Returns true once it is fully below the bottom edge.
func (e *Enemy) Update(ctx UpdateContext) bool {
	e.Y += e.Speed
	return e.Rect().Top() >= ctx.Field.Height
}

// Draw renders the enemy as an outlined diamond.
func (e *Enemy) Draw(ctx DrawContext) error {
	points := ctx.Canvas.BorrowPoints(4)
	points[0].X, points[0].Y = e.X, e.Y-e.H/2
	points[1].X, points[1].Y = e.X+e.W/2, e.Y
	points[2].X, points[2].Y = e.X, e.Y+e.H/2
	points[3].X, points[3].Y = e.X-e.W/2, e.Y
	ctx.Canvas.DrawPolygon(points, false)
	return nil
}
