package beacon

import (
	"fmt"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// TooltipMode is the presenter's resolved display mode for a frame.
// Selected always outranks hovered; hovered always outranks recommended.
type TooltipMode uint8

const (
	ModeNone TooltipMode = iota
	ModeRecommended
	ModeHovered
	ModeSelected
)

// String returns the mode name used in state snapshots and cache keys.
func (m TooltipMode) String() string {
	switch m {
	case ModeRecommended:
		return "recommended"
	case ModeHovered:
		return "hovered"
	case ModeSelected:
		return "selected"
	default:
		return "none"
	}
}

// Card is the content handed to a Rasterizer: the POI metadata plus the
// mode and input channel that decide the prompt copy.
type Card struct {
	Info        Info
	Mode        TooltipMode
	InputMethod InputMethod
}

// Texture is an opaque handle to a rasterized tooltip surface.
type Texture interface {
	Size() (w, h float64)
	Dispose()
}

// Rasterizer renders a tooltip card to a texture. The presenter's state
// logic depends on nothing beyond this interface, so hosts can substitute
// any rendering backend.
type Rasterizer interface {
	Render(card Card) (Texture, error)
}

// TourPreference is the external capability gating recommended mode.
// Subscribe returns a cancel function; the callback fires on toggles.
type TourPreference interface {
	Enabled() bool
	Subscribe(fn func(enabled bool)) (cancel func())
}

// Tooltip presentation defaults. All are tunable via TooltipConfig.
const (
	defaultAnchorOffset = 1.6
	defaultFadeIn       = 220 * time.Millisecond
	defaultFadeOut      = 180 * time.Millisecond

	opacitySelected    = 1.0
	opacityHovered     = 0.85
	opacityRecommended = 0.72
)

// TooltipConfig configures a Tooltip. Rasterizer and Camera are required.
type TooltipConfig struct {
	Rasterizer Rasterizer
	Camera     *Camera

	// Preference gates recommended mode. Nil means recommendations never
	// render.
	Preference TourPreference

	// AnchorOffset is the vertical distance above the POI anchor, in world
	// units. Zero means the default.
	AnchorOffset float64

	// FadeIn/FadeOut are the opacity easing windows. Zero means defaults.
	FadeIn  time.Duration
	FadeOut time.Duration
}

// TooltipState is a snapshot of the presenter for assertions and HUD sync.
type TooltipState struct {
	Mode    TooltipMode
	PoiID   string
	Opacity float64
	Visible bool
}

// Tooltip presents one world-anchored, camera-facing card driven by the
// interaction state. Feed it every frame via Update.
type Tooltip struct {
	cfg    TooltipConfig
	camera *Camera

	mode    TooltipMode
	active  *Poi
	tracked string // identifier of the POI the card is tracking

	opacity  float64
	fadeGoal float64
	fade     *gween.Tween

	texture     Texture
	renderedKey string
	dirty       map[string]bool

	position    mgl64.Vec3
	orientation mgl64.Quat

	idle        bool
	recommended *Poi
	prefEnabled bool
	cancelPref  func()

	disposed bool
}

// NewTooltip validates the configuration, subscribes to the tour
// preference, and returns a presenter with opacity zero. A missing
// rasterizer is a setup failure the caller should fail fast on.
func NewTooltip(cfg TooltipConfig) (*Tooltip, error) {
	if cfg.Rasterizer == nil {
		return nil, fmt.Errorf("beacon: TooltipConfig.Rasterizer is required")
	}
	if cfg.Camera == nil {
		return nil, fmt.Errorf("beacon: TooltipConfig.Camera is required")
	}
	if cfg.AnchorOffset == 0 {
		cfg.AnchorOffset = defaultAnchorOffset
	}
	if cfg.FadeIn == 0 {
		cfg.FadeIn = defaultFadeIn
	}
	if cfg.FadeOut == 0 {
		cfg.FadeOut = defaultFadeOut
	}

	t := &Tooltip{
		cfg:         cfg,
		camera:      cfg.Camera,
		dirty:       make(map[string]bool),
		orientation: mgl64.QuatIdent(),
	}
	if cfg.Preference != nil {
		t.prefEnabled = cfg.Preference.Enabled()
		t.cancelPref = cfg.Preference.Subscribe(func(enabled bool) {
			t.prefEnabled = enabled
		})
	}
	return t, nil
}

// SetIdle tells the presenter whether the scene is idle. Recommended mode
// only renders while idle.
func (t *Tooltip) SetIdle(idle bool) {
	t.idle = idle
}

// SetRecommended supplies the ambient recommendation target, or nil.
func (t *Tooltip) SetRecommended(p *Poi) {
	t.recommended = p
}

// NotifyPoiUpdated invalidates the cached render for the given POI so live
// metric changes re-rasterize without a target swap.
func (t *Tooltip) NotifyPoiUpdated(id string) {
	t.dirty[id] = true
}

// State returns the presenter snapshot for the current frame.
func (t *Tooltip) State() TooltipState {
	return TooltipState{
		Mode:    t.mode,
		PoiID:   t.tracked,
		Opacity: t.opacity,
		Visible: t.Visible(),
	}
}

// Visible reports whether the tooltip has any on-screen presence.
func (t *Tooltip) Visible() bool {
	return !t.disposed && t.opacity > 0
}

// Position returns the world position of the card root: the active POI's
// anchor plus the vertical offset.
func (t *Tooltip) Position() mgl64.Vec3 {
	return t.position
}

// Orientation returns the billboard rotation facing the camera.
func (t *Tooltip) Orientation() mgl64.Quat {
	return t.orientation
}

// Texture returns the current rasterized card, or nil before the first
// render.
func (t *Tooltip) Texture() Texture {
	return t.texture
}

// Update resolves the display mode from the interaction state, re-renders
// content when it changed, advances the opacity fade, and re-anchors and
// re-orients the card. dt is the elapsed time in seconds.
func (t *Tooltip) Update(dt float64, hovered, selected *Poi, method InputMethod) {
	if t.disposed {
		return
	}

	mode, target := t.resolve(hovered, selected)

	if mode != t.mode {
		t.mode = mode
		t.retarget(modeOpacity(mode))
	}
	// A resolved nil target leaves the previous one in place: the card keeps
	// following its exhibit through the fade-out.
	if target != nil {
		t.active = target
		t.tracked = target.ID
		t.ensureContent(target, mode, method)
	}

	if t.fade != nil {
		v, done := t.fade.Update(float32(dt))
		t.opacity = float64(v)
		if done {
			t.fade = nil
		}
	}

	if t.mode == ModeNone && t.opacity == 0 {
		t.tracked = ""
		t.active = nil
	}

	// Anchor tracking and billboarding run every frame regardless of fade
	// state, so a card fading out still follows its moving exhibit.
	if t.active != nil && t.active.Anchor != nil {
		anchor := t.active.Anchor()
		t.position = anchor.Add(mgl64.Vec3{0, t.cfg.AnchorOffset, 0})
	}
	t.orientation = t.camera.FaceCamera(t.position)
}

// Dispose releases the rendered texture and cancels the preference
// subscription. Repeated disposal is a no-op.
func (t *Tooltip) Dispose() {
	if t.disposed {
		return
	}
	t.disposed = true

	if t.cancelPref != nil {
		t.cancelPref()
		t.cancelPref = nil
	}
	if t.texture != nil {
		t.texture.Dispose()
		t.texture = nil
	}
	t.active = nil
	t.tracked = ""
	t.opacity = 0
	t.fade = nil
	t.mode = ModeNone
}

// resolve applies the precedence order: selected, hovered, then recommended
// gated by the idle flag and the tour preference. Targets that no longer
// report metadata are treated as absent.
func (t *Tooltip) resolve(hovered, selected *Poi) (TooltipMode, *Poi) {
	if selected != nil && !selected.Info.IsZero() {
		return ModeSelected, selected
	}
	if hovered != nil && !hovered.Info.IsZero() {
		return ModeHovered, hovered
	}
	if t.recommended != nil && !t.recommended.Info.IsZero() && t.idle && t.prefEnabled {
		return ModeRecommended, t.recommended
	}
	return ModeNone, nil
}

func modeOpacity(m TooltipMode) float64 {
	switch m {
	case ModeSelected:
		return opacitySelected
	case ModeHovered:
		return opacityHovered
	case ModeRecommended:
		return opacityRecommended
	default:
		return 0
	}
}

// retarget starts a fresh fade from the current opacity toward goal.
func (t *Tooltip) retarget(goal float64) {
	if goal == t.fadeGoal && t.fade == nil && t.opacity == goal {
		return
	}
	dur := t.cfg.FadeIn
	if goal < t.opacity {
		dur = t.cfg.FadeOut
	}
	t.fadeGoal = goal
	t.fade = gween.New(float32(t.opacity), float32(goal), float32(dur.Seconds()), ease.Linear)
}

// ensureContent re-rasterizes the card only when the cached content
// actually differs: a new POI, a different mode/input prompt, or an
// explicit invalidation via NotifyPoiUpdated.
func (t *Tooltip) ensureContent(target *Poi, mode TooltipMode, method InputMethod) {
	key := target.ID + "|" + mode.String() + "|" + method.String()
	if key == t.renderedKey && !t.dirty[target.ID] {
		return
	}

	tex, err := t.cfg.Rasterizer.Render(Card{
		Info:        target.Info,
		Mode:        mode,
		InputMethod: method,
	})
	if err != nil {
		warnf("tooltip render for %q failed: %v", target.ID, err)
		return
	}

	if t.texture != nil {
		t.texture.Dispose()
	}
	t.texture = tex
	t.renderedKey = key
	delete(t.dirty, target.ID)
}
