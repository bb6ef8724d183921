package beacon

// InputMethod identifies which input channel most recently changed focus.
// It selects tooltip prompt copy and suppresses cross-channel flicker.
type InputMethod uint8

const (
	InputPointer  InputMethod = iota // mouse / trackpad
	InputTouch                       // touch screen
	InputKeyboard                    // arrow-key cycling or programmatic selection
)

// String returns the wire name used in event payloads.
func (m InputMethod) String() string {
	switch m {
	case InputTouch:
		return "touch"
	case InputKeyboard:
		return "keyboard"
	default:
		return "pointer"
	}
}

// Key identifies a navigation key delivered to [Manager.KeyPressed].
// Hosts map their own key events (DOM keydown, ebiten keys) onto these.
type Key uint8

const (
	KeyArrowUp Key = iota
	KeyArrowDown
	KeyArrowLeft
	KeyArrowRight
	KeyEnter
	KeySpace
	KeyEscape
)

// Rect is an axis-aligned rectangle in world X/Z, used as a POI's projected
// collider for movement and analytics collaborators.
type Rect struct {
	X, Z, Width, Depth float64
}

// Contains reports whether the point (x, z) lies inside the rectangle.
// Points on the edge are considered inside.
func (r Rect) Contains(x, z float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		z >= r.Z && z <= r.Z+r.Depth
}

// Intersects reports whether r and other overlap.
// Adjacent rectangles (sharing only an edge) are considered intersecting.
func (r Rect) Intersects(other Rect) bool {
	return r.X <= other.X+other.Width &&
		r.X+r.Width >= other.X &&
		r.Z <= other.Z+other.Depth &&
		r.Z+r.Depth >= other.Z
}

// SurfaceBounds is the client rectangle of the render surface. Client pixel
// coordinates are mapped through it into normalized device coordinates.
type SurfaceBounds struct {
	X, Y, Width, Height float64
}

// Normalize maps client pixel coordinates to normalized device coordinates
// (x right, y up, both in [-1, 1]). ok is false when the surface has zero
// width or height — the element isn't laid out, so the frame is skipped.
func (b SurfaceBounds) Normalize(cx, cy float64) (nx, ny float64, ok bool) {
	if b.Width == 0 || b.Height == 0 {
		return 0, 0, false
	}
	nx = ((cx-b.X)/b.Width)*2 - 1
	ny = -(((cy-b.Y)/b.Height)*2 - 1)
	return nx, ny, true
}
