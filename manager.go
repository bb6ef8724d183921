package beacon

import (
	"fmt"
	"time"
)

// defaultTouchSuppression absorbs the synthetic click browsers dispatch
// after a touch sequence. Empirically calibrated; override via Config.
const defaultTouchSuppression = 500 * time.Millisecond

// noTouch marks the absence of a primary touch for the current gesture.
const noTouch int64 = -1

// Config configures a Manager. Picker and Camera are required; everything
// else has a usable zero value.
type Config struct {
	Picker *Picker
	Camera *Camera

	// Bus receives poi:selected / poi:hovered events. Optional.
	Bus EventBus

	// Analytics slots fire on transition edges. All-optional.
	Analytics Analytics

	// TouchSuppression is the window after a touch-driven selection during
	// which click events are discarded. Zero means the 500 ms default.
	TouchSuppression time.Duration

	// DisableKeyboard opts out of keyboard navigation entirely.
	DisableKeyboard bool

	// Clock supplies the current time for the suppression check. Defaults
	// to time.Now; tests inject a fake for deterministic windows.
	Clock func() time.Time
}

// Manager arbitrates mouse, touch, and keyboard input into a single
// hover/selection state and dispatches the resulting transitions. All
// methods must be called from one goroutine — the host's update loop.
type Manager struct {
	cfg    Config
	picker *Picker
	camera *Camera

	state  InteractionState
	method InputMethod

	handlers handlerRegistry

	suppressUntil time.Time
	primaryTouch  int64

	disposed bool
}

// NewManager validates the configuration and returns a ready Manager.
func NewManager(cfg Config) (*Manager, error) {
	if cfg.Picker == nil {
		return nil, fmt.Errorf("beacon: Config.Picker is required")
	}
	if cfg.Camera == nil {
		return nil, fmt.Errorf("beacon: Config.Camera is required")
	}
	if cfg.TouchSuppression == 0 {
		cfg.TouchSuppression = defaultTouchSuppression
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	return &Manager{
		cfg:          cfg,
		picker:       cfg.Picker,
		camera:       cfg.Camera,
		state:        InteractionState{KeyboardIndex: -1},
		primaryTouch: noTouch,
	}, nil
}

// State returns the current interaction snapshot.
func (m *Manager) State() InteractionState {
	return m.state
}

// Hovered returns the currently hovered POI, or nil.
func (m *Manager) Hovered() *Poi {
	return m.state.Hovered
}

// Selected returns the currently selected POI, or nil.
func (m *Manager) Selected() *Poi {
	return m.state.Selected
}

// LastInput returns the channel that most recently changed focus.
func (m *Manager) LastInput() InputMethod {
	return m.method
}

// --- Pointer channel ---

// PointerMoved handles a mouse move at client pixel coordinates.
func (m *Manager) PointerMoved(cx, cy float64) {
	if m.disposed {
		return
	}
	p := m.picker.PickClient(m.camera, cx, cy)
	m.updateHover(p, InputPointer)
}

// PointerLeft handles the pointer leaving the render surface. Hover clears;
// an active selection keeps its marker focused through the selection itself.
func (m *Manager) PointerLeft() {
	if m.disposed {
		return
	}
	m.updateHover(nil, InputPointer)
}

// Clicked handles a click at client pixel coordinates. Clicks inside the
// touch-suppression window are discarded unconditionally — they are the
// platform's synthetic echo of a finished touch gesture.
func (m *Manager) Clicked(cx, cy float64) {
	if m.disposed {
		return
	}
	if m.cfg.Clock().Before(m.suppressUntil) {
		return
	}
	if p := m.picker.PickClient(m.camera, cx, cy); p != nil {
		m.selectPoi(p, InputPointer)
	}
}

// --- Touch channel ---

// TouchStarted handles a touch-start for the given platform touch
// identifier. The first identifier of a gesture becomes primary; others are
// ignored for hover purposes until the gesture ends.
func (m *Manager) TouchStarted(id int64, cx, cy float64) {
	if m.disposed {
		return
	}
	if m.primaryTouch != noTouch && id != m.primaryTouch {
		return
	}
	m.primaryTouch = id
	p := m.picker.PickClient(m.camera, cx, cy)
	m.updateHover(p, InputTouch)
}

// TouchMoved handles movement of an active touch. Non-primary identifiers
// are ignored.
func (m *Manager) TouchMoved(id int64, cx, cy float64) {
	if m.disposed {
		return
	}
	if id != m.primaryTouch {
		return
	}
	p := m.picker.PickClient(m.camera, cx, cy)
	m.updateHover(p, InputTouch)
}

// TouchEnded handles the primary touch lifting at client coordinates. A POI
// under the touch-end point becomes the selection, and the suppression
// window opens to absorb the synthetic click that follows.
func (m *Manager) TouchEnded(id int64, cx, cy float64) {
	if m.disposed {
		return
	}
	if id != m.primaryTouch {
		return
	}
	m.primaryTouch = noTouch

	if p := m.picker.PickClient(m.camera, cx, cy); p != nil {
		m.selectPoi(p, InputTouch)
		m.suppressUntil = m.cfg.Clock().Add(m.cfg.TouchSuppression)
	}
}

// TouchCancelled handles a cancelled touch: hover clears, nothing selects.
func (m *Manager) TouchCancelled(id int64) {
	if m.disposed {
		return
	}
	if id != m.primaryTouch {
		return
	}
	m.primaryTouch = noTouch
	m.updateHover(nil, InputTouch)
}

// --- Keyboard channel ---

// KeyPressed handles keyboard navigation: arrows cycle hover through the
// registered POIs with wrap-around, Enter/Space promote hover to selection,
// Escape clears the selection only. Ignored when Config.DisableKeyboard.
func (m *Manager) KeyPressed(k Key) {
	if m.disposed || m.cfg.DisableKeyboard {
		return
	}

	pois := m.picker.Pois()
	n := len(pois)

	switch k {
	case KeyArrowRight, KeyArrowDown:
		if n == 0 {
			return
		}
		idx := (m.state.KeyboardIndex + 1) % n
		m.updateHover(pois[idx], InputKeyboard)
		m.state.KeyboardIndex = idx

	case KeyArrowLeft, KeyArrowUp:
		if n == 0 {
			return
		}
		idx := m.state.KeyboardIndex
		if idx < 0 {
			idx = n - 1
		} else {
			idx = (idx - 1 + n) % n
		}
		m.updateHover(pois[idx], InputKeyboard)
		m.state.KeyboardIndex = idx

	case KeyEnter, KeySpace:
		if m.state.Hovered != nil {
			m.selectPoi(m.state.Hovered, InputKeyboard)
		}

	case KeyEscape:
		m.ClearSelection()
	}
}

// --- Programmatic API ---

// SelectByID selects the POI with the given identifier, behaving exactly
// like an interactive selection attributed to the keyboard channel (it has
// no pointer or touch origin). Returns false when no such POI exists.
func (m *Manager) SelectByID(id string) bool {
	if m.disposed {
		return false
	}
	p := m.picker.ByID(id)
	if p == nil {
		return false
	}
	m.selectPoi(p, InputKeyboard)
	return true
}

// ClearSelection clears the selection if one is active. Hover is untouched.
func (m *Manager) ClearSelection() {
	if m.disposed || m.state.Selected == nil {
		return
	}
	prev := m.state.Selected

	next, writes := setSelection(m.state, nil)
	m.state = next
	applyFocusWrites(writes)

	m.fireSelectionState(nil, SelectionContext{InputMethod: m.method})
	m.analyticsSelectionCleared(&prev.Info)
}

// Dispose clears hover and selection (firing the corresponding analytics
// edges exactly once), drops all registered listeners, and makes every
// further input call a no-op. Safe to call repeatedly.
func (m *Manager) Dispose() {
	if m.disposed {
		return
	}

	if hov := m.state.Hovered; hov != nil {
		next, writes := setHover(m.state, nil)
		m.state = next
		applyFocusWrites(writes)
		m.analyticsHoverEnded(&hov.Info)
	}
	if sel := m.state.Selected; sel != nil {
		next, writes := setSelection(m.state, nil)
		m.state = next
		applyFocusWrites(writes)
		m.analyticsSelectionCleared(&sel.Info)
	}

	m.handlers = handlerRegistry{}
	m.disposed = true
}

// --- Transitions ---

// updateHover applies a hover change from the given channel. Idempotent when
// the target is unchanged, so redundant moves never produce notifications.
func (m *Manager) updateHover(p *Poi, method InputMethod) {
	if m.state.Hovered == p {
		return
	}
	prev := m.state.Hovered

	next, writes := setHover(m.state, p)
	m.state = next
	applyFocusWrites(writes)

	m.method = method
	if method != InputKeyboard {
		m.state.KeyboardIndex = -1
	}

	m.fireHover(infoOf(p))
	if prev != nil {
		m.analyticsHoverEnded(&prev.Info)
	}
	if p != nil {
		m.analyticsHoverStarted(&p.Info)
	}
}

// selectPoi applies a selection change. Reselecting the current POI is a
// no-op.
func (m *Manager) selectPoi(p *Poi, method InputMethod) {
	if m.state.Selected == p {
		return
	}

	next, writes := setSelection(m.state, p)
	m.state = next
	applyFocusWrites(writes)

	m.method = method
	if method != InputKeyboard {
		m.state.KeyboardIndex = -1
	}

	ctx := SelectionContext{InputMethod: method}
	m.fireSelection(&p.Info, ctx)
	m.fireSelectionState(&p.Info, ctx)
	m.analyticsSelected(&p.Info)
}

func infoOf(p *Poi) *Info {
	if p == nil {
		return nil
	}
	return &p.Info
}
