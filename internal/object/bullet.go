package object

import (
	"github.com/tomz197/danmaku/internal/physics"
)

// Bullet is a projectile fired upward by the player.
type Bullet struct {
	X, Y  float64 // Position (center)
	W, H  float64 // Size
	Speed float64 // Upward distance per tick
}

// NewBullet creates a bullet whose bottom edge sits at y, centred on x.
func NewBullet(ctx UpdateContext, x, bottom float64) Bullet {
	h := ctx.Field.Height * ctx.Params.BulletHeight
	return Bullet{
		X:     x,
		Y:     bottom - h/2,
		W:     ctx.Field.Width * ctx.Params.BulletWidth,
		H:     h,
		Speed: ctx.Field.Height * ctx.Params.BulletSpeed,
	}
}

// Rect returns the bullet's bounding box.
func (b *Bullet) Rect() physics.Rect {
	return physics.RectFromCenter(b.X, b.Y, b.W, b.H)
}

// Update moves the bullet up. Returns true once it is fully above the top edge.
func (b *Bullet) Update(_ UpdateContext) bool {
	b.Y -= b.Speed
	return b.Rect().Bottom() <= 0
}

// Draw renders the bullet as a filled rectangle.
func (b *Bullet) Draw(ctx DrawContext) error {
	r := b.Rect()
	ctx.Canvas.FillRect(r.X, r.Y, r.W, r.H)
	return nil
}
