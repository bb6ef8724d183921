// Package beacon is a points-of-interest interaction layer for 3D scenes.
//
// Beacon owns the hard part of an interactive exhibit layer: picking POI
// markers from screen coordinates, arbitrating hover and selection across
// mouse, touch, and keyboard input, and presenting a world-anchored tooltip
// that tracks its target and faces the camera. It does not build scene
// geometry, play audio, or render HUD chrome — those stay with the host.
//
// # Quick start
//
// Build POIs, register them on a [Picker], and feed input to a [Manager]:
//
//	poi := &beacon.Poi{
//		ID:     "greenhouse",
//		Info:   beacon.Info{Title: "Greenhouse", Summary: "Procedural glass dome"},
//		Volume: beacon.HitSphere{Radius: 1.2},
//		Anchor: func() mgl64.Vec3 { return mgl64.Vec3{0, 1, 0} },
//	}
//
//	picker := beacon.NewPicker(beacon.SurfaceBounds{Width: 1280, Height: 720})
//	picker.Add(poi)
//
//	mgr, err := beacon.NewManager(beacon.Config{Picker: picker, Camera: cam})
//
// Hosts deliver input through the typed methods ([Manager.PointerMoved],
// [Manager.Clicked], [Manager.TouchStarted], [Manager.KeyPressed], ...), or
// let a [Driver] poll Ebitengine input each frame.
//
// # Focus arbitration
//
// The manager owns the hovered/selected references and projects them onto
// each POI's FocusTarget. Selection is sticky: hovering elsewhere never
// unfocuses a selected marker, and clearing hover restores the selection's
// focus. Listeners register via [Manager.OnHover], [Manager.OnSelection],
// and [Manager.OnSelectionState]; analytics edges go through the optional
// [Analytics] callback slots.
//
// # Tooltips
//
// A [Tooltip] resolves its mode each frame (selected outranks hovered
// outranks recommended), fades opacity with gween tweens, re-anchors to the
// active POI's reported world position, and billboards toward the camera.
// Content rasterization sits behind the narrow [Rasterizer] interface;
// [NewEbitenRasterizer] provides a default card renderer.
package beacon
