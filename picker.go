package beacon

// Picker casts rays from screen coordinates against the registered POI hit
// volumes and returns the nearest hit. The POI list is append-only:
// registration order doubles as the tie-break order for equal distances and
// as the keyboard cycling order.
type Picker struct {
	bounds SurfaceBounds
	pois   []*Poi
}

// NewPicker creates a Picker for the given render surface bounds.
func NewPicker(bounds SurfaceBounds) *Picker {
	return &Picker{bounds: bounds}
}

// Add registers a POI. POIs cannot be removed; build a new Picker when the
// scene's exhibit set changes.
func (pk *Picker) Add(p *Poi) {
	pk.pois = append(pk.pois, p)
}

// Pois returns the registered POIs in registration order. The slice is
// shared — callers must not mutate it.
func (pk *Picker) Pois() []*Poi {
	return pk.pois
}

// Bounds returns the current surface bounds.
func (pk *Picker) Bounds() SurfaceBounds {
	return pk.bounds
}

// SetBounds updates the surface bounds, typically on element resize.
func (pk *Picker) SetBounds(b SurfaceBounds) {
	pk.bounds = b
}

// PickClient maps client pixel coordinates through the surface bounds and
// picks. Returns nil without error when the surface has zero size — the
// element isn't laid out this frame.
func (pk *Picker) PickClient(cam *Camera, cx, cy float64) *Poi {
	nx, ny, ok := pk.bounds.Normalize(cx, cy)
	if !ok {
		return nil
	}
	return pk.Pick(cam, nx, ny)
}

// Pick casts a ray through the normalized device coordinates and returns
// the POI with the nearest intersection, or nil if nothing is hit. World
// anchors are refreshed immediately before the cast so same-frame movement
// never leaves a stale transform.
func (pk *Picker) Pick(cam *Camera, nx, ny float64) *Poi {
	for _, p := range pk.pois {
		p.refreshWorld()
	}

	origin, dir := cam.ScreenToWorldRay(nx, ny)

	var best *Poi
	bestT := 0.0
	for _, p := range pk.pois {
		if p.Volume == nil {
			continue
		}
		t, ok := p.Volume.IntersectRay(p.WorldPosition(), origin, dir)
		if !ok {
			continue
		}
		// Strict less keeps the first-registered POI on exact ties.
		if best == nil || t < bestT {
			best = p
			bestT = t
		}
	}
	return best
}

// ByID returns the registered POI with the given identifier, or nil.
func (pk *Picker) ByID(id string) *Poi {
	for _, p := range pk.pois {
		if p.ID == id {
			return p
		}
	}
	return nil
}
