package client

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/tomz197/danmaku/internal/loop"
	"github.com/tomz197/danmaku/internal/loop/config"
	"github.com/tomz197/danmaku/internal/object"
)

// styles are the lipgloss styles for text overlays.
type styles struct {
	title  lipgloss.Style
	accent lipgloss.Style
	dim    lipgloss.Style
	warn   lipgloss.Style
	good   lipgloss.Style
	box    lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		title:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("212")),
		accent: r.NewStyle().Foreground(lipgloss.Color("86")),
		dim:    r.NewStyle().Foreground(lipgloss.Color("245")),
		warn:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
		good:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("220")),
		box: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(1, 4).
			Align(lipgloss.Center),
	}
}

// drawFrame draws the current frame.
func (c *Client) drawFrame() error {
	screen := c.screen()

	// On screen or inactivity transitions, do a full terminal clear
	// so UI elements from the previous screen don't persist.
	if screen != c.state.prevScreen || c.state.isInactive != c.state.wasInactive || c.state.forceClear {
		c.chunkWriter.WriteString("\033[H\033[2J")
		c.canvas.ForceRedraw()
		c.state.prevScreen = screen
		c.state.wasInactive = c.state.isInactive
		c.state.forceClear = false
	}

	c.canvas.Clear()

	ctx := object.DrawContext{Canvas: c.canvas}
	if screen == ScreenPlaying {
		if err := c.session.Draw(ctx); err != nil {
			return err
		}
	}
	for _, p := range c.particles {
		if err := p.Draw(ctx); err != nil {
			return err
		}
	}

	// Render canvas to terminal
	c.canvas.Render(c.chunkWriter)

	// Draw border when terminal exceeds max render resolution
	c.canvas.RenderBorder(c.chunkWriter)

	c.drawUI(screen)

	return c.chunkWriter.Flush()
}

// drawUI draws the text overlay for the current screen.
func (c *Client) drawUI(screen Screen) {
	termWidth := c.canvas.TerminalWidth()
	termHeight := c.canvas.TerminalHeight()
	centerX := termWidth / 2
	centerY := termHeight / 2

	if screen == ScreenShutdown {
		c.drawShutdownScreen(centerX, centerY)
		return
	}

	if c.state.isInactive {
		c.drawInactivityScreen(centerX, centerY)
		return
	}

	switch screen {
	case ScreenPlaying:
		c.drawPlayingHUD(termWidth)
	case ScreenHome:
		c.drawHomeScreen(centerX, centerY)
	case ScreenResult:
		c.drawResultScreen(centerX, centerY)
	}

	if c.state.notice != "" {
		c.writeCentered(centerX, termHeight, c.styles.accent, c.state.notice)
	}
}

// writeCentered writes styled text centred on column centerX and marks the
// cells dirty so the canvas repaints them once the text goes away.
func (c *Client) writeCentered(centerX, row int, style lipgloss.Style, text string) {
	width := lipgloss.Width(text)
	col := centerX - width/2
	if col < 1 {
		col = 1
	}
	c.writeAt(col, row, style, text)
}

// writeAt writes styled text at a 1-based canvas position.
func (c *Client) writeAt(col, row int, style lipgloss.Style, text string) {
	if row < 1 || row > c.canvas.TerminalHeight() {
		return
	}
	c.chunkWriter.WriteAt(col, row, style.Render(text))
	c.canvas.MarkTextDirty(col, row, lipgloss.Width(text))
}

// promptVisible drives the blinking prompts.
func promptVisible() bool {
	period := time.Duration(float64(time.Second) / config.PromptBlinkFrequency)
	return time.Now().UnixNano()/int64(period)%2 == 0
}

// drawInactivityScreen draws the inactivity warning screen.
func (c *Client) drawInactivityScreen(centerX, centerY int) {
	c.writeCentered(centerX, centerY-2, c.styles.warn, "INACTIVITY WARNING")

	msg := fmt.Sprintf(
		"You have been inactive for too long. You will be disconnected in %d seconds.",
		int(config.InactivityDisconnectUser-time.Since(c.lastInput).Seconds()),
	)
	c.writeCentered(centerX, centerY, c.styles.dim, msg)
	c.writeCentered(centerX, centerY+2, c.styles.dim, "Press any key to continue")
}

// titleArt is the figlet "small" font banner.
var titleArt = []string{
	`  ___   _   _  _ __  __   _   _  _____ _   _ `,
	` |   \ /_\ | \| |  \/  | /_\ | |/ / | | | | |`,
	` | |) / _ \| .' | |\/| |/ _ \| ' <| |_| |_| |`,
	` |___/_/ \_\_|\_|_|  |_/_/ \_\_|\_\\___/(_)  `,
}

// drawHomeScreen draws the title screen with the record and the leaderboard.
func (c *Client) drawHomeScreen(centerX, centerY int) {
	startY := centerY - 9
	for i, line := range titleArt {
		c.writeCentered(centerX, startY+i, c.styles.title, line)
	}
	row := startY + len(titleArt) + 1

	c.writeCentered(centerX, row, c.styles.dim, "~ Shoot down the swarm before the clock runs out ~")
	row += 2

	c.writeCentered(centerX, row, c.styles.good, fmt.Sprintf("HIGH SCORE %06d", c.session.HighScore()))
	row += 2

	c.writeCentered(centerX, row, c.styles.accent, "Controls")
	controlLines := []string{
		"Mouse  . . . . . .  Move",
		"A D / < >  . . . .  Move",
		"Drag  . . .  Nudge ship",
		"ESC  . . . . . Give up",
		"Q  . . . . . . . . Quit",
	}
	for i, line := range controlLines {
		c.writeCentered(centerX, row+1+i, c.styles.dim, line)
	}
	row += len(controlLines) + 2

	if promptVisible() {
		c.writeCentered(centerX, row, c.styles.title, ">>  Press SPACE or click to Start  <<")
	} else {
		c.writeCentered(centerX, row, c.styles.dim, strings.Repeat(" ", 37))
	}
	row += 2

	top := c.server.TopScores()
	if len(top) == 0 {
		return
	}
	c.writeCentered(centerX, row, c.styles.accent, "Top runs")
	for i, entry := range top {
		line := fmt.Sprintf("%d. %-12.12s %6d", i+1, displayName(entry.Username), entry.Score)
		c.writeCentered(centerX, row+1+i, c.styles.dim, line)
	}
}

// drawPlayingHUD draws score, countdown and boss health.
// Text fields use fixed-width formatting so shrinking values don't leave
// residual characters on screen.
func (c *Client) drawPlayingHUD(termWidth int) {
	scoreText := fmt.Sprintf("SCORE %06d", c.session.Score())
	c.writeAt(2, 1, c.styles.accent, scoreText)

	seconds := float64(c.session.TimerTicks()) / float64(c.session.Params().TickRate)
	timeText := fmt.Sprintf("TIME %5.2f", seconds)
	timeStyle := c.styles.accent
	if seconds < 5 {
		timeStyle = c.styles.warn
	}
	c.writeAt(termWidth-len(timeText)-1, 1, timeStyle, timeText)

	hiText := fmt.Sprintf("HI %06d", c.session.HighScore())
	c.writeCentered(termWidth/2, 1, c.styles.dim, hiText)

	if hp, maxHP, ok := c.session.Boss(); ok {
		c.writeCentered(termWidth/2, 2, c.styles.warn, bossBar(hp, maxHP, termWidth/3))
	}
}

// bossBar renders boss health as a fixed-width bar.
func bossBar(hp, maxHP, width int) string {
	if width < 4 {
		width = 4
	}
	filled := 0
	if maxHP > 0 {
		filled = hp * width / maxHP
	}
	return "BOSS [" + strings.Repeat("█", filled) + strings.Repeat("·", width-filled) + "]"
}

// drawResultScreen draws the cleared or failed screen.
func (c *Client) drawResultScreen(centerX, centerY int) {
	result := c.state.result
	if result == nil {
		result = &runResult{outcome: c.session.Phase(), score: c.session.Score(), highScore: c.session.HighScore()}
	}

	heading := c.styles.warn.Render("FAILED")
	if result.outcome == loop.PhaseCleared {
		heading = c.styles.good.Render("CLEAR")
	}
	lines := []string{
		heading,
		"",
		fmt.Sprintf("Score       %06d", result.score),
		fmt.Sprintf("High score  %06d", result.highScore),
	}
	if result.newHighScore {
		lines = append(lines, "", c.styles.good.Render("NEW HIGH SCORE!"))
	}

	box := c.styles.box.Render(strings.Join(lines, "\n"))
	boxLines := strings.Split(box, "\n")
	boxWidth := lipgloss.Width(box)
	col := centerX - boxWidth/2
	if col < 1 {
		col = 1
	}
	startY := centerY - len(boxLines)/2 - 1
	for i, line := range boxLines {
		row := startY + i
		if row < 1 || row > c.canvas.TerminalHeight() {
			continue
		}
		c.chunkWriter.WriteAt(col, row, line)
		c.canvas.MarkTextDirty(col, row, boxWidth)
	}

	promptY := startY + len(boxLines) + 1
	if c.state.resultDelay > 0 {
		c.writeCentered(centerX, promptY, c.styles.dim, strings.Repeat(" ", 40))
		return
	}
	if promptVisible() {
		c.writeCentered(centerX, promptY, c.styles.title, ">>  SPACE to retry, ESC for title  <<")
	} else {
		c.writeCentered(centerX, promptY, c.styles.dim, strings.Repeat(" ", 40))
	}
}

// drawShutdownScreen draws the server shutdown notification screen.
func (c *Client) drawShutdownScreen(centerX, centerY int) {
	c.writeCentered(centerX, centerY-3, c.styles.warn, "SERVER SHUTTING DOWN")
	c.writeCentered(centerX, centerY-1, c.styles.dim, "The server is restarting for maintenance.")
	c.writeCentered(centerX, centerY, c.styles.dim, "Please reconnect in a moment.")

	remaining := int(c.state.shutdownTimer) + 1
	c.writeCentered(centerX, centerY+2, c.styles.accent, fmt.Sprintf("Disconnecting in %2d seconds...", remaining))
	c.writeCentered(centerX, centerY+4, c.styles.dim, "Press Q to disconnect now")
}
