package beacon

import (
	"github.com/hajimehoshi/ebiten/v2"
)

// keyBindings maps the ebiten keys the driver watches onto beacon keys.
var keyBindings = [...]struct {
	ebiten ebiten.Key
	beacon Key
}{
	{ebiten.KeyArrowUp, KeyArrowUp},
	{ebiten.KeyArrowDown, KeyArrowDown},
	{ebiten.KeyArrowLeft, KeyArrowLeft},
	{ebiten.KeyArrowRight, KeyArrowRight},
	{ebiten.KeyEnter, KeyEnter},
	{ebiten.KeySpace, KeySpace},
	{ebiten.KeyEscape, KeyEscape},
}

// syntheticEvent is a single injected input event, consumed one per frame.
type syntheticKind uint8

const (
	synthMove syntheticKind = iota
	synthClick
	synthTouchTap
	synthKey
)

type syntheticEvent struct {
	kind syntheticKind
	x, y float64
	key  Key
}

// Driver polls Ebitengine input each frame and feeds it to a Manager as
// typed events: cursor moves, click edges, primary-touch gestures, and
// navigation key presses. Hosts outside ebiten call the Manager directly.
type Driver struct {
	mgr *Manager

	lastX, lastY float64
	inside       bool
	mouseDown    bool

	primary     ebiten.TouchID
	touchActive bool
	touchX      float64
	touchY      float64
	touchIDs    []ebiten.TouchID

	prevKeys [len(keyBindings)]bool

	queue []syntheticEvent
}

// NewDriver creates a Driver for the given manager.
func NewDriver(mgr *Manager) *Driver {
	return &Driver{mgr: mgr, lastX: -1, lastY: -1}
}

// Update polls input and dispatches edges. Call once per frame from the
// host's ebiten Update. When the synthetic queue is non-empty, one queued
// event is consumed instead of real input for that frame.
func (d *Driver) Update() {
	if d.processSynthetic() {
		return
	}
	d.pollMouse()
	d.pollTouch()
	d.pollKeys()
}

// --- Synthetic input (scripted runs and tests) ---

// InjectMove queues a pointer move at client coordinates.
func (d *Driver) InjectMove(x, y float64) {
	d.queue = append(d.queue, syntheticEvent{kind: synthMove, x: x, y: y})
}

// InjectClick queues a click at client coordinates.
func (d *Driver) InjectClick(x, y float64) {
	d.queue = append(d.queue, syntheticEvent{kind: synthClick, x: x, y: y})
}

// InjectTouchTap queues a full touch tap (start + end) at client coordinates.
func (d *Driver) InjectTouchTap(x, y float64) {
	d.queue = append(d.queue, syntheticEvent{kind: synthTouchTap, x: x, y: y})
}

// InjectKey queues a key press.
func (d *Driver) InjectKey(k Key) {
	d.queue = append(d.queue, syntheticEvent{kind: synthKey, key: k})
}

func (d *Driver) processSynthetic() bool {
	if len(d.queue) == 0 {
		return false
	}
	evt := d.queue[0]
	copy(d.queue, d.queue[1:])
	d.queue = d.queue[:len(d.queue)-1]

	switch evt.kind {
	case synthMove:
		d.mgr.PointerMoved(evt.x, evt.y)
	case synthClick:
		d.mgr.Clicked(evt.x, evt.y)
	case synthTouchTap:
		d.mgr.TouchStarted(0, evt.x, evt.y)
		d.mgr.TouchEnded(0, evt.x, evt.y)
	case synthKey:
		d.mgr.KeyPressed(evt.key)
	}
	return true
}

// --- Polling ---

func (d *Driver) pollMouse() {
	mx, my := ebiten.CursorPosition()
	x, y := float64(mx), float64(my)

	bounds := d.mgr.picker.Bounds()
	inside := x >= bounds.X && x <= bounds.X+bounds.Width &&
		y >= bounds.Y && y <= bounds.Y+bounds.Height

	if inside != d.inside {
		d.inside = inside
		if !inside {
			d.mgr.PointerLeft()
		}
	}

	if inside && (x != d.lastX || y != d.lastY) {
		d.mgr.PointerMoved(x, y)
		d.lastX = x
		d.lastY = y
	}

	pressed := ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)
	if d.mouseDown && !pressed && inside {
		d.mgr.Clicked(x, y)
	}
	d.mouseDown = pressed
}

func (d *Driver) pollTouch() {
	d.touchIDs = ebiten.AppendTouchIDs(d.touchIDs[:0])

	if !d.touchActive {
		if len(d.touchIDs) == 0 {
			return
		}
		d.primary = d.touchIDs[0]
		tx, ty := ebiten.TouchPosition(d.primary)
		d.touchX, d.touchY = float64(tx), float64(ty)
		d.touchActive = true
		d.mgr.TouchStarted(int64(d.primary), d.touchX, d.touchY)
		return
	}

	for _, tid := range d.touchIDs {
		if tid != d.primary {
			continue
		}
		tx, ty := ebiten.TouchPosition(tid)
		x, y := float64(tx), float64(ty)
		if x != d.touchX || y != d.touchY {
			d.touchX, d.touchY = x, y
			d.mgr.TouchMoved(int64(tid), x, y)
		}
		return
	}

	// Primary touch lifted: end the gesture at its last known position.
	d.touchActive = false
	d.mgr.TouchEnded(int64(d.primary), d.touchX, d.touchY)
}

func (d *Driver) pollKeys() {
	for i, kb := range keyBindings {
		pressed := ebiten.IsKeyPressed(kb.ebiten)
		if pressed && !d.prevKeys[i] {
			d.mgr.KeyPressed(kb.beacon)
		}
		d.prevKeys[i] = pressed
	}
}
