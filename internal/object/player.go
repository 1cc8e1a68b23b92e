package object

import (
	"github.com/tomz197/danmaku/internal/draw"
	"github.com/tomz197/danmaku/internal/physics"
)

// Player is the auto-firing ship at the bottom of the playfield.
type Player struct {
	X, Y float64 // Position (center of ship)
	W, H float64 // Size

	FireInterval int // Ticks between shots
	fireTimer    int // Ticks since the last shot
}

// NewPlayer creates the ship centred at the bottom of the playfield.
func NewPlayer(ctx UpdateContext) *Player {
	p := &Player{FireInterval: ctx.Params.FireInterval}
	p.Rescale(ctx)
	return p
}

// Rescale recomputes the ship size and position for the current playfield.
// The ship is re-centred horizontally.
func (p *Player) Rescale(ctx UpdateContext) {
	size := ctx.Field.Width * ctx.Params.PlayerSize
	p.W = size
	p.H = size
	p.X = ctx.Field.CenterX()
	p.Y = ctx.Field.Height - size*ctx.Params.PlayerOffset
}

// SetX moves the ship horizontally, clamped to [w/2, W-w/2].
func (p *Player) SetX(x float64, field Playfield) {
	p.X = field.ClampX(x, p.W)
}

// Rect returns the ship's bounding box.
func (p *Player) Rect() physics.Rect {
	return physics.RectFromCenter(p.X, p.Y, p.W, p.H)
}

// Update advances the fire cooldown. When it reaches the fire interval a new
// bullet is returned, positioned just above the ship.
func (p *Player) Update(ctx UpdateContext) (Bullet, bool) {
	p.fireTimer++
	if p.fireTimer < p.FireInterval {
		return Bullet{}, false
	}
	p.fireTimer = 0

	if !ctx.Field.Valid() || p.W <= 0 {
		return Bullet{}, false
	}
	return NewBullet(ctx, p.X, p.Rect().Top()), true
}

// Draw renders the ship as a filled triangle pointing up.
func (p *Player) Draw(ctx DrawContext) error {
	triangle := ctx.Canvas.BorrowPoints(3)
	triangle[0] = draw.Point{X: p.X, Y: p.Y - p.H/2}
	triangle[1] = draw.Point{X: p.X - p.W/2, Y: p.Y + p.H/2}
	triangle[2] = draw.Point{X: p.X + p.W/2, Y: p.Y + p.H/2}
	ctx.Canvas.DrawPolygon(triangle, true)
	return nil
}
