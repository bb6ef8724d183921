package beacon

import (
	"fmt"
	"os"
)

// Event bus topics published alongside the typed listener registries.
const (
	TopicSelected = "poi:selected"
	TopicHovered  = "poi:hovered"
)

// Event is the payload published on the EventBus. Poi is nil on hover-clear.
type Event struct {
	Poi         *Info
	InputMethod InputMethod
}

// EventBus is an optional side channel for decoupled consumers outside the
// manager's direct registries — the custom-event analog. A browser host can
// adapt it to DOM dispatch; the typed registries remain the source of truth.
type EventBus interface {
	Publish(topic string, evt Event)
}

// SelectionContext carries the input channel that produced a selection change.
type SelectionContext struct {
	InputMethod InputMethod
}

// Analytics is a set of optional callback slots invoked exactly once per
// transition edge. Nil slots are skipped — implementers provide only the
// hooks they use.
type Analytics struct {
	HoverStarted     func(*Info)
	HoverEnded       func(*Info)
	Selected         func(*Info)
	SelectionCleared func(*Info)
}

// --- Handler registry ---

type hoverHandler struct {
	id uint32
	fn func(*Info)
}

type selectionHandler struct {
	id uint32
	fn func(*Info, SelectionContext)
}

type listenerKind uint8

const (
	kindHover listenerKind = iota
	kindSelection
	kindSelectionState
)

type handlerRegistry struct {
	hover          []hoverHandler
	selection      []selectionHandler
	selectionState []selectionHandler
	nextID         uint32
}

// CallbackHandle allows removing a registered listener.
type CallbackHandle struct {
	id   uint32
	reg  *handlerRegistry
	kind listenerKind
}

// Remove unregisters this listener so it no longer fires.
// The entry is removed from the slice to avoid nil iteration waste.
func (h CallbackHandle) Remove() {
	if h.reg == nil {
		return
	}
	switch h.kind {
	case kindHover:
		h.reg.hover = removeHoverHandler(h.reg.hover, h.id)
	case kindSelection:
		h.reg.selection = removeSelectionHandler(h.reg.selection, h.id)
	case kindSelectionState:
		h.reg.selectionState = removeSelectionHandler(h.reg.selectionState, h.id)
	}
}

func removeHoverHandler(s []hoverHandler, id uint32) []hoverHandler {
	for i := range s {
		if s[i].id == id {
			copy(s[i:], s[i+1:])
			s[len(s)-1] = hoverHandler{}
			return s[:len(s)-1]
		}
	}
	return s
}

func removeSelectionHandler(s []selectionHandler, id uint32) []selectionHandler {
	for i := range s {
		if s[i].id == id {
			copy(s[i:], s[i+1:])
			s[len(s)-1] = selectionHandler{}
			return s[:len(s)-1]
		}
	}
	return s
}

// --- Listener registration ---

// OnHover registers a listener fired whenever the hovered POI changes.
// The argument is nil when hover clears.
func (m *Manager) OnHover(fn func(*Info)) CallbackHandle {
	m.handlers.nextID++
	id := m.handlers.nextID
	m.handlers.hover = append(m.handlers.hover, hoverHandler{id: id, fn: fn})
	return CallbackHandle{id: id, reg: &m.handlers, kind: kindHover}
}

// OnSelection registers a listener fired on each new selection. It does not
// fire when a selection is cleared; use OnSelectionState for both edges.
func (m *Manager) OnSelection(fn func(*Info, SelectionContext)) CallbackHandle {
	m.handlers.nextID++
	id := m.handlers.nextID
	m.handlers.selection = append(m.handlers.selection, selectionHandler{id: id, fn: fn})
	return CallbackHandle{id: id, reg: &m.handlers, kind: kindSelection}
}

// OnSelectionState registers a listener fired on both select and deselect.
// The Info argument is nil on deselect.
func (m *Manager) OnSelectionState(fn func(*Info, SelectionContext)) CallbackHandle {
	m.handlers.nextID++
	id := m.handlers.nextID
	m.handlers.selectionState = append(m.handlers.selectionState, selectionHandler{id: id, fn: fn})
	return CallbackHandle{id: id, reg: &m.handlers, kind: kindSelectionState}
}

// --- Dispatch ---

// warnf logs a non-fatal problem to stderr. Beacon never lets listener
// failures escape into the host's input handlers.
func warnf(format string, args ...any) {
	_, _ = fmt.Fprintf(os.Stderr, "[beacon] warning: "+format+"\n", args...)
}

// safely invokes fn, converting a panic into a warning so the remaining
// listeners and the bus publish still run.
func safely(what string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			warnf("%s listener panicked: %v", what, r)
		}
	}()
	fn()
}

// fireHover notifies hover listeners, then publishes poi:hovered.
// Listeners run synchronously in registration order.
func (m *Manager) fireHover(info *Info) {
	for _, h := range m.handlers.hover {
		fn := h.fn
		safely("hover", func() { fn(info) })
	}
	m.publish(TopicHovered, info)
}

// fireSelection notifies new-selection listeners, then publishes poi:selected.
func (m *Manager) fireSelection(info *Info, ctx SelectionContext) {
	for _, h := range m.handlers.selection {
		fn := h.fn
		safely("selection", func() { fn(info, ctx) })
	}
	m.publish(TopicSelected, info)
}

// fireSelectionState notifies selection-state listeners on both edges.
func (m *Manager) fireSelectionState(info *Info, ctx SelectionContext) {
	for _, h := range m.handlers.selectionState {
		fn := h.fn
		safely("selection-state", func() { fn(info, ctx) })
	}
}

func (m *Manager) publish(topic string, info *Info) {
	if m.cfg.Bus == nil {
		return
	}
	evt := Event{Poi: info, InputMethod: m.method}
	safely("bus", func() { m.cfg.Bus.Publish(topic, evt) })
}

// Analytics edges share the same isolation policy as listeners.

func (m *Manager) analyticsHoverStarted(info *Info) {
	if fn := m.cfg.Analytics.HoverStarted; fn != nil {
		safely("analytics hoverStarted", func() { fn(info) })
	}
}

func (m *Manager) analyticsHoverEnded(info *Info) {
	if fn := m.cfg.Analytics.HoverEnded; fn != nil {
		safely("analytics hoverEnded", func() { fn(info) })
	}
}

func (m *Manager) analyticsSelected(info *Info) {
	if fn := m.cfg.Analytics.Selected; fn != nil {
		safely("analytics selected", func() { fn(info) })
	}
}

func (m *Manager) analyticsSelectionCleared(info *Info) {
	if fn := m.cfg.Analytics.SelectionCleared; fn != nil {
		safely("analytics selectionCleared", func() { fn(info) })
	}
}
