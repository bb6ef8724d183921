package beacon

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Metric is one label/value row displayed on a tooltip card.
type Metric struct {
	Label string
	Value string
}

// Link is a titled external reference attached to an exhibit.
type Link struct {
	Label string
	URL   string
}

// Info is the descriptive metadata for a POI, consumed only for display and
// event payloads. A zero Info (empty Title) means the exhibit no longer
// reports metadata; presenters treat it as absent and fade out.
type Info struct {
	Title    string
	Summary  string
	Category string
	Metrics  []Metric
	Links    []Link
	Status   string
}

// IsZero reports whether the metadata is absent.
func (i Info) IsZero() bool {
	return i.Title == ""
}

// HitVolume is an invisible 3D shape used only for ray intersection,
// decoupled from the visible mesh. Shapes are positioned relative to the
// POI's world anchor, which is passed in at cast time so moving POIs stay
// pickable without per-frame volume rebuilds.
type HitVolume interface {
	// IntersectRay returns the distance along the ray to the nearest
	// intersection, or ok=false when the ray misses. dir must be unit length.
	IntersectRay(anchor, origin, dir mgl64.Vec3) (t float64, ok bool)
}

// HitSphere is a sphere offset from the POI anchor.
type HitSphere struct {
	Offset mgl64.Vec3
	Radius float64
}

// IntersectRay solves the standard ray/sphere quadratic and returns the
// nearest non-negative root.
func (s HitSphere) IntersectRay(anchor, origin, dir mgl64.Vec3) (float64, bool) {
	center := anchor.Add(s.Offset)
	oc := origin.Sub(center)

	b := oc.Dot(dir)
	c := oc.Dot(oc) - s.Radius*s.Radius
	disc := b*b - c
	if disc < 0 {
		return 0, false
	}

	sq := math.Sqrt(disc)
	t := -b - sq
	if t < 0 {
		t = -b + sq
	}
	if t < 0 {
		return 0, false
	}
	return t, true
}

// HitBox is an axis-aligned box with Min/Max extents relative to the anchor.
type HitBox struct {
	Min, Max mgl64.Vec3
}

// IntersectRay runs the slab test against the anchor-translated box.
func (b HitBox) IntersectRay(anchor, origin, dir mgl64.Vec3) (float64, bool) {
	tMin := math.Inf(-1)
	tMax := math.Inf(1)

	for axis := 0; axis < 3; axis++ {
		lo := anchor[axis] + b.Min[axis]
		hi := anchor[axis] + b.Max[axis]

		if dir[axis] == 0 {
			if origin[axis] < lo || origin[axis] > hi {
				return 0, false
			}
			continue
		}

		t0 := (lo - origin[axis]) / dir[axis]
		t1 := (hi - origin[axis]) / dir[axis]
		if t0 > t1 {
			t0, t1 = t1, t0
		}
		tMin = math.Max(tMin, t0)
		tMax = math.Min(tMax, t1)
		if tMin > tMax {
			return 0, false
		}
	}

	if tMax < 0 {
		return 0, false
	}
	if tMin < 0 {
		return tMax, true
	}
	return tMin, true
}

// Poi is one interactive exhibit marker. Identity is immutable for the
// session; the animated fields (Focus, Activation) are advanced by the
// host's render loop, while the interaction manager writes only FocusTarget.
type Poi struct {
	// ID is the stable identifier used in events and cache invalidation.
	ID string

	Info Info

	// Volume is the invisible shape rays are cast against.
	Volume HitVolume

	// Collider is the XZ footprint consumed by movement/analytics
	// collaborators. Beacon itself never reads it.
	Collider Rect

	// Anchor reports the marker's current world position. Queried before
	// every cast and every tooltip frame, since exhibits may move.
	Anchor func() mgl64.Vec3

	// FocusTarget is the instantaneous highlight goal (0 or 1), written by
	// the interaction manager.
	FocusTarget float64

	// Focus is the smoothed highlight value, eased toward FocusTarget by
	// the render loop (or AdvanceFocus).
	Focus float64

	// Activation is a slow pulse phase output, driven while focused.
	Activation float64

	pulse      float64
	worldPos   mgl64.Vec3 // refreshed by the picker before each cast
	worldValid bool
}

// focusRate controls how quickly Focus converges on FocusTarget, and
// pulseRate the Activation oscillation, both per second.
const (
	focusRate = 8.0
	pulseRate = 2.4
)

// AdvanceFocus eases Focus toward FocusTarget and advances the Activation
// pulse, frame-rate independently. Hosts with their own interpolation can
// ignore this and read FocusTarget directly.
func (p *Poi) AdvanceFocus(dt float64) {
	if dt <= 0 {
		return
	}

	step := 1 - math.Exp(-focusRate*dt)
	p.Focus += (p.FocusTarget - p.Focus) * step
	if math.Abs(p.FocusTarget-p.Focus) < 1e-3 {
		p.Focus = p.FocusTarget
	}

	p.pulse += dt * pulseRate * p.Focus
	p.Activation = p.Focus * (0.5 + 0.5*math.Sin(p.pulse))
}

// WorldPosition returns the anchor position recorded by the last refresh,
// or queries the anchor directly when no refresh has happened yet.
func (p *Poi) WorldPosition() mgl64.Vec3 {
	if p.worldValid {
		return p.worldPos
	}
	if p.Anchor != nil {
		return p.Anchor()
	}
	return mgl64.Vec3{}
}

func (p *Poi) refreshWorld() {
	if p.Anchor != nil {
		p.worldPos = p.Anchor()
		p.worldValid = true
	}
}
