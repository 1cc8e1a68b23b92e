package input

import (
	"bufio"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStream() *Stream {
	return &Stream{ch: make(chan byte, 256)}
}

func TestParseKeys(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name string
		in   string
		want func(Input) bool
	}{
		{"quit", "q", func(in Input) bool { return in.Quit }},
		{"left letter", "a", func(in Input) bool { return in.Left }},
		{"right letter", "d", func(in Input) bool { return in.Right }},
		{"left arrow", "\x1b[D", func(in Input) bool { return in.Left && !in.Escape }},
		{"right arrow", "\x1b[C", func(in Input) bool { return in.Right && !in.Escape }},
		{"space", " ", func(in Input) bool { return in.Space && in.Start() }},
		{"enter", "\r", func(in Input) bool { return in.Enter && in.Start() }},
		{"escape then key", "\x1ba", func(in Input) bool { return in.Escape && in.Left }},
		{"unknown csi", "\x1b[1;5H", func(in Input) bool { return !in.Escape && !in.Left && !in.Right }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := parse(newTestStream(), []byte(tt.in), now)
			assert.True(t, tt.want(in))
		})
	}
}

func TestKeyHoldExpires(t *testing.T) {
	s := newTestStream()
	now := time.Now()

	in := parse(s, []byte("d"), now)
	require.True(t, in.Right)

	in = parse(s, nil, now.Add(keyHoldDuration/2))
	assert.True(t, in.Right)

	in = parse(s, nil, now.Add(keyHoldDuration))
	assert.False(t, in.Right)
}

func TestBareEscapeResolvesNextDrain(t *testing.T) {
	s := newTestStream()
	now := time.Now()

	in := parse(s, []byte("\x1b"), now)
	assert.False(t, in.Escape)

	in = parse(s, nil, now)
	assert.True(t, in.Escape)
}

func TestParseSplitSequences(t *testing.T) {
	tests := []struct {
		name   string
		chunks []string
		check  func(*testing.T, Input)
	}{
		{
			name:   "mouse report split in parameters",
			chunks: []string{"\x1b[<35;12", ";4M"},
			check: func(t *testing.T, in Input) {
				assert.True(t, in.Mouse.Moved)
				assert.Equal(t, 11, in.Mouse.X)
			},
		},
		{
			name:   "mouse report missing terminator",
			chunks: []string{"\x1b[<35;12;4", "M"},
			check: func(t *testing.T, in Input) {
				assert.True(t, in.Mouse.Moved)
				assert.Equal(t, 3, in.Mouse.Y)
			},
		},
		{
			name:   "split after escape",
			chunks: []string{"d\x1b", "[<0;9;2M"},
			check: func(t *testing.T, in Input) {
				assert.True(t, in.Mouse.Pressed)
				assert.Equal(t, 8, in.Mouse.X)
			},
		},
		{
			name:   "split arrow key",
			chunks: []string{"\x1b[", "D"},
			check: func(t *testing.T, in Input) {
				assert.True(t, in.Left)
			},
		},
		{
			name:   "complete report then a split one",
			chunks: []string{"\x1b[<35;3;3M\x1b[<3", "5;4;3M", "\x1b[<35;5;3M"},
			check: func(t *testing.T, in Input) {
				assert.Equal(t, 4, in.Mouse.X)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStream()
			now := time.Now()

			var last Input
			for _, chunk := range tt.chunks {
				last = parse(s, []byte(chunk), now)
				require.False(t, last.Escape, "chunk %q", chunk)
			}
			tt.check(t, last)
			assert.False(t, parse(s, nil, now).Escape)
		})
	}
}

func TestPendingSequenceIsBounded(t *testing.T) {
	s := newTestStream()
	long := "\x1b[<" + strings.Repeat("1", maxPendingSeq)

	in := parse(s, []byte(long), time.Now())
	assert.False(t, in.Escape)
	assert.Empty(t, s.pending)
}

func TestParseSGRMouse(t *testing.T) {
	s := newTestStream()
	now := time.Now()

	in := parse(s, []byte("\x1b[<35;12;4M"), now)
	assert.True(t, in.Mouse.Moved)
	assert.False(t, in.Mouse.Down)
	assert.Equal(t, 11, in.Mouse.X)
	assert.Equal(t, 3, in.Mouse.Y)
	assert.False(t, in.Escape)

	in = parse(s, []byte("\x1b[<0;20;5M"), now)
	assert.True(t, in.Mouse.Pressed)
	assert.True(t, in.Mouse.Down)
	assert.True(t, in.Start())
	assert.Equal(t, 19, in.Mouse.X)

	in = parse(s, []byte("\x1b[<32;25;5M"), now)
	assert.False(t, in.Mouse.Pressed)
	assert.True(t, in.Mouse.Down)
	assert.Equal(t, 24, in.Mouse.X)

	in = parse(s, []byte("\x1b[<0;25;5m"), now)
	assert.True(t, in.Mouse.Released)
	assert.False(t, in.Mouse.Down)

	in = parse(s, nil, now)
	assert.False(t, in.Mouse.Moved)
	assert.Equal(t, 24, in.Mouse.X)
}

func TestParseSGRMouseIgnoresOtherButtons(t *testing.T) {
	s := newTestStream()
	in := parse(s, []byte("\x1b[<2;5;5M\x1b[<64;6;5M"), time.Now())
	assert.True(t, in.Mouse.Moved)
	assert.False(t, in.Mouse.Pressed)
	assert.False(t, in.Mouse.Down)
	assert.Equal(t, 5, in.Mouse.X)
}

func TestParseMouseMixedWithKeys(t *testing.T) {
	s := newTestStream()
	in := parse(s, []byte("a\x1b[<35;3;3Md"), time.Now())
	assert.True(t, in.Left)
	assert.True(t, in.Right)
	assert.Equal(t, 2, in.Mouse.X)
}

func TestResetKeyInput(t *testing.T) {
	s := newTestStream()
	now := time.Now()

	parse(s, []byte(" \x1b[<0;8;2M"), now)
	ResetKeyInput(s)

	in := parse(s, nil, now)
	assert.False(t, in.Space)
	assert.True(t, in.Mouse.Down)
	assert.Equal(t, 7, in.Mouse.X)
}

func TestStreamReadsFromReader(t *testing.T) {
	s := StartStream(bufio.NewReader(strings.NewReader("q")))

	var in Input
	require.Eventually(t, func() bool {
		in = ReadInput(s)
		return in.Quit
	}, time.Second, time.Millisecond)
	assert.Equal(t, []byte("q"), in.Pressed)
}

func TestDrag(t *testing.T) {
	var d Drag

	_, ok := d.Move(10)
	assert.False(t, ok)

	d.Begin(100, 40)
	assert.True(t, d.Active())

	x, ok := d.Move(130)
	require.True(t, ok)
	assert.InDelta(t, 70.0, x, 1e-9)

	x, _ = d.Move(90)
	assert.InDelta(t, 30.0, x, 1e-9)

	d.End()
	assert.False(t, d.Active())
	_, ok = d.Move(200)
	assert.False(t, ok)
}
