package object

import (
	"github.com/tomz197/danmaku/internal/physics"
)

// Boss is the single large target that appears after the score threshold.
type Boss struct {
	X, Y      float64 // Position (center)
	W, H      float64 // Size
	Speed     float64 // Horizontal distance per tick
	Direction float64 // -1 or +1
	HP        int
	MaxHP     int
}

// NewBoss creates a boss centred horizontally, moving right.
func NewBoss(ctx UpdateContext) *Boss {
	field := ctx.Field
	size := field.Width * ctx.Params.BossSize
	return &Boss{
		X:         field.CenterX(),
		Y:         field.Height * ctx.Params.BossY,
		W:         size,
		H:         size,
		Speed:     field.Width * ctx.Params.BossSpeed,
		Direction: 1,
		HP:        ctx.Params.BossMaxHP,
		MaxHP:     ctx.Params.BossMaxHP,
	}
}

// Rect returns the boss's bounding box.
func (b *Boss) Rect() physics.Rect {
	return physics.RectFromCenter(b.X, b.Y, b.W, b.H)
}

// Update moves the boss horizontally and reverses direction when its box
// crosses either edge.
func (b *Boss) Update(ctx UpdateContext) {
	b.X += b.Speed * b.Direction
	r := b.Rect()
	if r.Right() > ctx.Field.Width || r.Left() < 0 {
		b.Direction = -b.Direction
	}
}

// Hit applies damage. HP never drops below zero. Returns true when defeated.
func (b *Boss) Hit(damage int) bool {
	b.HP -= damage
	if b.HP < 0 {
		b.HP = 0
	}
	return b.HP == 0
}

// Health returns the remaining HP fraction in [0, 1].
func (b *Boss) Health() float64 {
	if b.MaxHP <= 0 {
		return 0
	}
	return float64(b.HP) / float64(b.MaxHP)
}

// Draw renders the boss as a rectangle outline with an HP bar above it.
func (b *Boss) Draw(ctx DrawContext) error {
	r := b.Rect()
	ctx.Canvas.StrokeRect(r.X, r.Y, r.W, r.H)

	barH := 1.0
	barY := r.Y - barH*3
	ctx.Canvas.StrokeRect(r.X, barY, r.W, barH)
	ctx.Canvas.FillRect(r.X, barY, r.W*b.Health(), barH)
	return nil
}
