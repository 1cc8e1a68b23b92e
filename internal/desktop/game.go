// Package desktop runs the game in a window with mouse and touch input.
package desktop

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/tomz197/danmaku/internal/desktop/control"
	"github.com/tomz197/danmaku/internal/loop"
)

var (
	colorBackground = color.RGBA{0x0b, 0x0b, 0x14, 0xff}
	colorPlayer     = color.RGBA{0x5f, 0xff, 0xd7, 0xff}
	colorBullet     = color.RGBA{0xff, 0xff, 0x87, 0xff}
	colorEnemy      = color.RGBA{0xff, 0x5f, 0x87, 0xff}
	colorBoss       = color.RGBA{0xaf, 0x5f, 0xff, 0xff}
	colorHPBack     = color.RGBA{0x3a, 0x3a, 0x4a, 0xff}
	colorHP         = color.RGBA{0xff, 0x5f, 0x5f, 0xff}
	colorParticle   = color.RGBA{0xff, 0xd7, 0x00, 0xff}
	colorShade      = color.RGBA{0x00, 0x00, 0x00, 0xa0}
)

// Game adapts a Controller to ebiten.Game.
type Game struct {
	ctrl *control.Controller

	width, height int
	cursorX       int
	touchIDs      []ebiten.TouchID
	touch         ebiten.TouchID
	touching      bool
}

var _ ebiten.Game = (*Game)(nil)

// NewGame wraps ctrl.
func NewGame(ctrl *control.Controller) *Game {
	return &Game{ctrl: ctrl}
}

// Update samples input and advances one tick.
func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyQ) {
		g.ctrl.Close()
		return ebiten.Termination
	}
	g.ctrl.Step(g.readFrame())
	return nil
}

// readFrame converts ebiten input state to a control frame.
func (g *Game) readFrame() control.Frame {
	f := control.Frame{
		Start: inpututil.IsKeyJustPressed(ebiten.KeySpace) ||
			inpututil.IsKeyJustPressed(ebiten.KeyEnter) ||
			inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft),
		Escape: inpututil.IsKeyJustPressed(ebiten.KeyEscape),
		Left:   ebiten.IsKeyPressed(ebiten.KeyA) || ebiten.IsKeyPressed(ebiten.KeyArrowLeft),
		Right:  ebiten.IsKeyPressed(ebiten.KeyD) || ebiten.IsKeyPressed(ebiten.KeyArrowRight),
	}

	x, _ := ebiten.CursorPosition()
	if x != g.cursorX {
		g.cursorX = x
		f.PointerX = float64(x)
		f.PointerMoved = true
	}

	g.touchIDs = inpututil.AppendJustPressedTouchIDs(g.touchIDs[:0])
	switch {
	case !g.touching && len(g.touchIDs) > 0:
		g.touch = g.touchIDs[0]
		g.touching = true
		tx, _ := ebiten.TouchPosition(g.touch)
		f.Start = true
		f.DragBegin = true
		f.DragX = float64(tx)
	case g.touching && inpututil.IsTouchJustReleased(g.touch):
		g.touching = false
		f.DragEnd = true
	case g.touching:
		tx, _ := ebiten.TouchPosition(g.touch)
		f.DragMove = true
		f.DragX = float64(tx)
	}
	if g.touching {
		// Touch screens report a synthetic cursor; the drag owns the ship.
		f.PointerMoved = false
	}
	return f
}

// Draw renders the session, particles and overlays.
func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(colorBackground)

	session := g.ctrl.Session()
	snap := session.Snapshot()

	if snap.Phase != loop.PhaseIdle {
		for _, b := range snap.Bullets {
			r := b.Rect()
			vector.DrawFilledRect(screen, float32(r.X), float32(r.Y), float32(r.W), float32(r.H), colorBullet, false)
		}
		for _, e := range snap.Enemies {
			r := e.Rect()
			vector.DrawFilledRect(screen, float32(r.X), float32(r.Y), float32(r.W), float32(r.H), colorEnemy, false)
		}
		if snap.Boss != nil {
			r := snap.Boss.Rect()
			vector.DrawFilledRect(screen, float32(r.X), float32(r.Y), float32(r.W), float32(r.H), colorBoss, false)
		}
		drawPlayer(screen, snap.Player.X, snap.Player.Y, snap.Player.W, snap.Player.H)
	}

	for _, p := range g.ctrl.Particles() {
		vector.DrawFilledCircle(screen, float32(p.X), float32(p.Y), 2, colorParticle, true)
	}

	switch {
	case snap.Phase == loop.PhaseRunning:
		g.drawHUD(screen, snap)
	case snap.Phase.Terminal():
		g.drawResult(screen)
	default:
		g.drawHome(screen, snap.HighScore)
	}
}

// drawPlayer draws the ship as a stepped triangle pointing up.
func drawPlayer(screen *ebiten.Image, x, y, w, h float64) {
	const steps = 4
	for i := 0; i < steps; i++ {
		sw := w * float64(i+1) / steps
		sy := y - h/2 + h*float64(i)/steps
		vector.DrawFilledRect(screen, float32(x-sw/2), float32(sy), float32(sw), float32(h/steps), colorPlayer, false)
	}
}

func (g *Game) drawHUD(screen *ebiten.Image, snap loop.Snapshot) {
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("SCORE %06d", snap.Score), 8, 8)
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("HI %06d", snap.HighScore), g.width/2-36, 8)
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("TIME %5.2f", snap.Seconds()), g.width-80, 8)

	if snap.Boss != nil {
		barW := float32(g.width) / 3
		barX := (float32(g.width) - barW) / 2
		vector.DrawFilledRect(screen, barX, 28, barW, 6, colorHPBack, false)
		vector.DrawFilledRect(screen, barX, 28, barW*float32(snap.Boss.Health()), 6, colorHP, false)
	}
}

func (g *Game) drawHome(screen *ebiten.Image, highScore int) {
	cx, cy := g.width/2, g.height/2
	ebitenutil.DebugPrintAt(screen, "DANMAKU!", cx-24, cy-40)
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("HIGH SCORE %06d", highScore), cx-51, cy-16)
	ebitenutil.DebugPrintAt(screen, "Click, tap or press SPACE to start", cx-102, cy+8)
	ebitenutil.DebugPrintAt(screen, "Mouse / drag / A D to move, ESC to give up, Q to quit", cx-159, cy+24)
}

func (g *Game) drawResult(screen *ebiten.Image) {
	res := g.ctrl.Result()
	if res == nil {
		return
	}
	cx, cy := g.width/2, g.height/2
	vector.DrawFilledRect(screen, float32(cx-130), float32(cy-56), 260, 112, colorShade, false)

	title := "FAILED"
	if res.Outcome == loop.PhaseCleared {
		title = "CLEAR"
	}
	ebitenutil.DebugPrintAt(screen, title, cx-len(title)*3, cy-44)
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("SCORE      %06d", res.Score), cx-51, cy-20)
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("HIGH SCORE %06d", res.HighScore), cx-51, cy-4)
	if res.NewHighScore {
		ebitenutil.DebugPrintAt(screen, "NEW HIGH SCORE!", cx-45, cy+14)
	}
	if g.ctrl.AcceptsInput() {
		ebitenutil.DebugPrintAt(screen, "SPACE / tap to retry, ESC for title", cx-105, cy+34)
	}
}

// Layout follows the window size one to one; the playfield is the window.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != g.width || outsideHeight != g.height {
		g.width, g.height = outsideWidth, outsideHeight
		g.ctrl.Resize(float64(outsideWidth), float64(outsideHeight))
	}
	return outsideWidth, outsideHeight
}
