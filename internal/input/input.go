package input

import (
	"bufio"
	"time"
)

// keyHoldDuration is how long a key is considered "held" after its last press.
const keyHoldDuration = 30 * time.Millisecond

// Mouse is the pointer state reported by xterm SGR mouse tracking.
// Coordinates are 0-based terminal cells.
type Mouse struct {
	X, Y     int
	Moved    bool // At least one report arrived this frame
	Down     bool // Left button held
	Pressed  bool // Left button went down this frame
	Released bool // Left button went up this frame
}

// Input represents the current frame's input state.
type Input struct {
	Quit    bool
	Left    bool
	Right   bool
	Space   bool
	Enter   bool
	Escape  bool
	Mouse   Mouse
	Pressed []byte
}

// Start reports whether the frame carries a start/confirm request.
func (in Input) Start() bool {
	return in.Space || in.Enter || in.Mouse.Pressed
}

// keyState tracks the last time each key was pressed.
type keyState struct {
	quit   time.Time
	left   time.Time
	right  time.Time
	space  time.Time
	enter  time.Time
	escape time.Time

	mouseX, mouseY int
	mouseDown      bool
}

// maxPendingSeq bounds an unfinished escape sequence carried between frames.
const maxPendingSeq = 32

// Stream delivers input bytes via a channel and tracks key state for combinations.
type Stream struct {
	ch    chan byte
	state keyState

	// pending holds an escape sequence split across drains. A lone ESC
	// stays here until the next drain shows nothing follows it.
	pending []byte
}

// StartStream spawns a goroutine that reads from r and sends bytes to the stream.
func StartStream(r *bufio.Reader) *Stream {
	s := &Stream{
		ch: make(chan byte, 256),
	}
	go func() {
		for {
			b, err := r.ReadByte()
			if err != nil {
				close(s.ch)
				return
			}
			s.ch <- b
		}
	}()
	return s
}

// ResetKeyInput forgets held keys so a key that started a run does not also
// count as input inside it.
func ResetKeyInput(s *Stream) {
	if s == nil {
		return
	}
	x, y, down := s.state.mouseX, s.state.mouseY, s.state.mouseDown
	s.state = keyState{mouseX: x, mouseY: y, mouseDown: down}
}

// ReadInput drains all available bytes from the stream (non-blocking).
// Handles escape sequences for arrow keys and SGR mouse reports.
func ReadInput(s *Stream) Input {
	return parse(s, drain(s), time.Now())
}

// drain collects every byte currently buffered in the stream.
func drain(s *Stream) []byte {
	var buf []byte
	for {
		select {
		case b, ok := <-s.ch:
			if !ok {
				return buf
			}
			buf = append(buf, b)
		default:
			return buf
		}
	}
}

// parse applies buf to the stream's key state and builds the frame input.
// An escape sequence cut off at the end of buf is kept and completed by the
// next call.
func parse(s *Stream, buf []byte, now time.Time) Input {
	var mouse Mouse

	data := buf
	if len(s.pending) > 0 {
		data = append(s.pending, buf...)
		s.pending = nil
	}

	for i := 0; i < len(data); i++ {
		b := data[i]
		if b != '\x1b' {
			applyByteToState(&s.state, b, now)
			continue
		}

		rest := data[i+1:]
		switch {
		case len(rest) == 0 && len(buf) > 0:
			// Lone ESC at the end of this drain; decide next frame.
			s.holdPending(data[i:])
			i = len(data)
			continue
		case len(rest) == 0 || rest[0] != '[':
			applyByteToState(&s.state, b, now)
			continue
		}

		n, status := scanCSI(rest[1:])
		switch status {
		case csiIncomplete:
			s.holdPending(data[i:])
			i = len(data)
		case csiMalformed:
			// Drop ESC [ and reparse what follows as plain bytes.
			i++
		case csiComplete:
			applyCSI(&s.state, &mouse, rest[1:1+n], now)
			i += 1 + n
		}
	}

	mouse.X = s.state.mouseX
	mouse.Y = s.state.mouseY
	mouse.Down = s.state.mouseDown

	return Input{
		Quit:    now.Sub(s.state.quit) < keyHoldDuration,
		Left:    now.Sub(s.state.left) < keyHoldDuration,
		Right:   now.Sub(s.state.right) < keyHoldDuration,
		Space:   now.Sub(s.state.space) < keyHoldDuration,
		Enter:   now.Sub(s.state.enter) < keyHoldDuration,
		Escape:  now.Sub(s.state.escape) < keyHoldDuration,
		Mouse:   mouse,
		Pressed: buf,
	}
}

// holdPending keeps seq for the next drain, dropping it if it grew too long.
func (s *Stream) holdPending(seq []byte) {
	if len(seq) > maxPendingSeq {
		return
	}
	s.pending = append([]byte(nil), seq...)
}

type csiStatus int

const (
	csiComplete csiStatus = iota
	csiIncomplete
	csiMalformed
)

// scanCSI finds the end of a control sequence body following "ESC [":
// parameter and intermediate bytes, then one final byte. Returns the body
// length including the final byte.
func scanCSI(seq []byte) (int, csiStatus) {
	for n, b := range seq {
		switch {
		case b >= 0x20 && b <= 0x3f:
		case b >= 0x40 && b <= 0x7e:
			return n + 1, csiComplete
		default:
			return 0, csiMalformed
		}
	}
	return 0, csiIncomplete
}

// applyCSI handles arrow keys and SGR mouse reports; other sequences are ignored.
func applyCSI(state *keyState, mouse *Mouse, body []byte, now time.Time) {
	if len(body) > 1 && body[0] == '<' {
		// SGR mouse: ESC [ < btn ; col ; row (M|m)
		parseSGRMouse(state, mouse, body[1:])
		return
	}
	if len(body) != 1 {
		return
	}
	switch body[0] {
	case 'C': // Right arrow
		state.right = now
	case 'D': // Left arrow
		state.left = now
	}
}

// parseSGRMouse parses "btn;col;row" followed by 'M' (press/motion) or 'm'
// (release) from seq. Returns the number of bytes consumed.
func parseSGRMouse(state *keyState, mouse *Mouse, seq []byte) (int, bool) {
	var fields [3]int
	field := 0
	digits := false

	for n, b := range seq {
		switch {
		case b >= '0' && b <= '9':
			fields[field] = fields[field]*10 + int(b-'0')
			digits = true
		case b == ';':
			if field == 2 || !digits {
				return 0, false
			}
			field++
			digits = false
		case b == 'M' || b == 'm':
			if field != 2 || !digits {
				return 0, false
			}
			applyMouse(state, mouse, fields[0], fields[1]-1, fields[2]-1, b == 'm')
			return n + 1, true
		default:
			return 0, false
		}
	}
	return 0, false
}

// applyMouse updates the pointer state from one SGR report.
func applyMouse(state *keyState, mouse *Mouse, btn, col, row int, release bool) {
	state.mouseX = col
	state.mouseY = row
	mouse.Moved = true

	// Low two bits are the button; 32 flags motion, 64 flags wheel.
	if btn&64 != 0 || btn&3 != 0 {
		return
	}
	motion := btn&32 != 0
	switch {
	case release:
		if state.mouseDown {
			mouse.Released = true
		}
		state.mouseDown = false
	case !motion:
		state.mouseDown = true
		mouse.Pressed = true
	}
}

// applyByteToState updates the key state timestamps based on the pressed byte.
func applyByteToState(state *keyState, b byte, now time.Time) {
	switch b {
	case 'q', 'Q':
		state.quit = now
	case 'a', 'A', 'h', 'H':
		state.left = now
	case 'd', 'D', 'l', 'L':
		state.right = now
	case ' ':
		state.space = now
	case '\n', '\r':
		state.enter = now
	case '\x1b':
		state.escape = now
	}
}
