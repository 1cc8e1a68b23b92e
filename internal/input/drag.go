package input

// Drag converts pointer motion into relative player movement. The player
// keeps its offset from the pointer as recorded when the drag began, so
// touching anywhere on the screen does not teleport the ship.
type Drag struct {
	active       bool
	startPointer float64
	startPlayer  float64
}

// Begin anchors a drag at the given pointer and player positions.
func (d *Drag) Begin(pointerX, playerX float64) {
	d.active = true
	d.startPointer = pointerX
	d.startPlayer = playerX
}

// Move returns the player position for the current pointer, or false when
// no drag is in progress.
func (d *Drag) Move(pointerX float64) (float64, bool) {
	if !d.active {
		return 0, false
	}
	return d.startPlayer + (pointerX - d.startPointer), true
}

// End stops tracking.
func (d *Drag) End() {
	d.active = false
}

// Active reports whether a drag is in progress.
func (d *Drag) Active() bool {
	return d.active
}
