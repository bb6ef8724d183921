package beacon

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

// --- Stubs ---

type stubTexture struct {
	disposed bool
}

func (s *stubTexture) Size() (float64, float64) { return 120, 64 }
func (s *stubTexture) Dispose()                 { s.disposed = true }

type stubRasterizer struct {
	cards []Card
	fail  bool
	last  *stubTexture
}

func (r *stubRasterizer) Render(card Card) (Texture, error) {
	if r.fail {
		return nil, errors.New("raster backend unavailable")
	}
	r.cards = append(r.cards, card)
	r.last = &stubTexture{}
	return r.last, nil
}

type stubPreference struct {
	enabled   bool
	subs      []func(bool)
	cancelled bool
}

func (p *stubPreference) Enabled() bool { return p.enabled }

func (p *stubPreference) Subscribe(fn func(bool)) func() {
	p.subs = append(p.subs, fn)
	return func() { p.cancelled = true }
}

func (p *stubPreference) set(v bool) {
	p.enabled = v
	for _, fn := range p.subs {
		fn(v)
	}
}

func newTestTooltip(t *testing.T, mutate func(*TooltipConfig)) (*Tooltip, *stubRasterizer) {
	t.Helper()
	ras := &stubRasterizer{}
	cfg := TooltipConfig{
		Rasterizer: ras,
		Camera:     pickTestCamera(),
	}
	if mutate != nil {
		mutate(&cfg)
	}
	tip, err := NewTooltip(cfg)
	if err != nil {
		t.Fatalf("NewTooltip: %v", err)
	}
	return tip, ras
}

func tooltipPoi(id string, x float64) *Poi {
	return &Poi{
		ID:     id,
		Info:   Info{Title: id, Summary: "exhibit " + id},
		Anchor: anchorAt(x, 0, 0),
	}
}

// --- Construction ---

func TestNewTooltipValidation(t *testing.T) {
	if _, err := NewTooltip(TooltipConfig{Camera: NewCamera()}); err == nil {
		t.Error("NewTooltip without Rasterizer succeeded, want error")
	}
	if _, err := NewTooltip(TooltipConfig{Rasterizer: &stubRasterizer{}}); err == nil {
		t.Error("NewTooltip without Camera succeeded, want error")
	}
}

// --- Mode resolution ---

func TestTooltipModePrecedence(t *testing.T) {
	a := tooltipPoi("a", 0)
	b := tooltipPoi("b", 3)
	rec := tooltipPoi("rec", -3)

	tests := []struct {
		name     string
		hovered  *Poi
		selected *Poi
		want     TooltipMode
		wantPoi  string
	}{
		{"selected outranks hovered", b, a, ModeSelected, "a"},
		{"hovered without selection", b, nil, ModeHovered, "b"},
		{"recommended when idle", nil, nil, ModeRecommended, "rec"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tip, _ := newTestTooltip(t, func(cfg *TooltipConfig) {
				cfg.Preference = &stubPreference{enabled: true}
			})
			tip.SetIdle(true)
			tip.SetRecommended(rec)

			tip.Update(1.0, tc.hovered, tc.selected, InputPointer)

			st := tip.State()
			if st.Mode != tc.want {
				t.Fatalf("Mode = %v, want %v", st.Mode, tc.want)
			}
			if st.PoiID != tc.wantPoi {
				t.Errorf("PoiID = %q, want %q", st.PoiID, tc.wantPoi)
			}
		})
	}
}

func TestRecommendedRequiresIdleAndPreference(t *testing.T) {
	rec := tooltipPoi("rec", 0)

	tests := []struct {
		name    string
		idle    bool
		enabled bool
		want    TooltipMode
	}{
		{"idle and enabled", true, true, ModeRecommended},
		{"busy scene", false, true, ModeNone},
		{"preference off", true, false, ModeNone},
		{"neither", false, false, ModeNone},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tip, _ := newTestTooltip(t, func(cfg *TooltipConfig) {
				cfg.Preference = &stubPreference{enabled: tc.enabled}
			})
			tip.SetIdle(tc.idle)
			tip.SetRecommended(rec)

			tip.Update(1.0, nil, nil, InputPointer)
			if got := tip.State().Mode; got != tc.want {
				t.Errorf("Mode = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestNilPreferenceNeverRecommends(t *testing.T) {
	tip, _ := newTestTooltip(t, nil)
	tip.SetIdle(true)
	tip.SetRecommended(tooltipPoi("rec", 0))

	tip.Update(1.0, nil, nil, InputPointer)
	if got := tip.State().Mode; got != ModeNone {
		t.Errorf("Mode = %v without a preference source, want none", got)
	}
}

func TestPreferenceToggleWhileIdle(t *testing.T) {
	pref := &stubPreference{}
	tip, _ := newTestTooltip(t, func(cfg *TooltipConfig) { cfg.Preference = pref })
	tip.SetIdle(true)
	tip.SetRecommended(tooltipPoi("rec", 0))

	tip.Update(1.0, nil, nil, InputPointer)
	if tip.Visible() {
		t.Fatal("tooltip visible with the tour preference disabled")
	}

	// Toggling the preference appears on the next frame, not mid-frame.
	pref.set(true)
	tip.Update(1.0, nil, nil, InputPointer)
	if got := tip.State().Mode; got != ModeRecommended {
		t.Fatalf("Mode = %v after enabling preference, want recommended", got)
	}

	pref.set(false)
	tip.Update(1.0, nil, nil, InputPointer)
	if tip.Visible() {
		t.Error("tooltip still visible after disabling preference")
	}
}

func TestZeroInfoTargetIgnored(t *testing.T) {
	bare := &Poi{ID: "bare", Anchor: anchorAt(0, 0, 0)} // no Info at all

	tip, ras := newTestTooltip(t, nil)
	tip.Update(1.0, bare, nil, InputPointer)

	if got := tip.State().Mode; got != ModeNone {
		t.Errorf("Mode = %v for a metadata-less POI, want none", got)
	}
	if len(ras.cards) != 0 {
		t.Errorf("rasterizer called %d times for a metadata-less POI, want 0", len(ras.cards))
	}
}

// --- Opacity fading ---

func TestFadeReachesModeOpacity(t *testing.T) {
	tests := []struct {
		name     string
		hovered  bool
		selected bool
		want     float64
	}{
		{"selected", false, true, 1.0},
		{"hovered", true, false, 0.85},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			a := tooltipPoi("a", 0)
			tip, _ := newTestTooltip(t, nil)

			var hov, sel *Poi
			if tc.hovered {
				hov = a
			}
			if tc.selected {
				sel = a
			}

			// One long frame carries the fade to completion.
			tip.Update(1.0, hov, sel, InputPointer)
			if got := tip.State().Opacity; !approxEqual(got, tc.want, 1e-6) {
				t.Errorf("Opacity = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestFadeIsGradual(t *testing.T) {
	a := tooltipPoi("a", 0)
	tip, _ := newTestTooltip(t, nil)

	// Half the default 220 ms fade-in: opacity should be strictly between
	// zero and the hovered target.
	tip.Update(0.11, a, nil, InputPointer)
	got := tip.State().Opacity
	if got <= 0 || got >= 0.85 {
		t.Errorf("Opacity = %v mid-fade, want within (0, 0.85)", got)
	}
}

func TestFadeOutClearsTracking(t *testing.T) {
	a := tooltipPoi("a", 0)
	tip, _ := newTestTooltip(t, nil)

	tip.Update(1.0, a, nil, InputPointer)
	if !tip.Visible() {
		t.Fatal("tooltip not visible after hover fade-in")
	}

	tip.Update(1.0, nil, nil, InputPointer)
	st := tip.State()
	if st.Opacity != 0 || st.Visible {
		t.Fatalf("state after fade-out = %+v, want opacity 0 and not visible", st)
	}
	if st.PoiID != "" {
		t.Errorf("PoiID = %q after full fade-out, want empty", st.PoiID)
	}
}

func TestFadeOutFollowsMovingAnchor(t *testing.T) {
	pos := mgl64.Vec3{0, 0, 0}
	a := &Poi{
		ID:     "a",
		Info:   Info{Title: "a"},
		Anchor: func() mgl64.Vec3 { return pos },
	}
	tip, _ := newTestTooltip(t, nil)
	tip.Update(1.0, a, nil, InputPointer)

	// The exhibit moves while the card fades out: the still-visible card
	// must keep tracking it, not freeze at the old anchor.
	pos = mgl64.Vec3{5, 0, 0}
	tip.Update(0.09, nil, nil, InputPointer) // half the 180 ms fade-out

	if !tip.Visible() {
		t.Fatal("tooltip not visible mid fade-out")
	}
	want := mgl64.Vec3{5, defaultAnchorOffset, 0}
	if got := tip.Position(); !approxVec3(got, want, 1e-9) {
		t.Errorf("Position = %v mid fade-out, want %v", got, want)
	}
}

func TestReHoverAfterFadeOutRestoresTracking(t *testing.T) {
	a := tooltipPoi("a", 0)
	tip, ras := newTestTooltip(t, nil)

	tip.Update(1.0, a, nil, InputPointer)
	tip.Update(1.0, nil, nil, InputPointer) // full fade-out clears tracking
	if got := tip.State().PoiID; got != "" {
		t.Fatalf("PoiID = %q after full fade-out, want empty", got)
	}

	tip.Update(1.0, a, nil, InputPointer)
	st := tip.State()
	if st.PoiID != "a" {
		t.Errorf("PoiID = %q on re-hover, want a", st.PoiID)
	}
	if st.Mode != ModeHovered || !st.Visible {
		t.Errorf("state = %+v on re-hover, want visible hovered", st)
	}
	// The cached render is reused; only the tracking id is restored.
	if len(ras.cards) != 1 {
		t.Errorf("rasterizer called %d times, want 1 (cache hit)", len(ras.cards))
	}
}

func TestModeSwitchRetunesOpacity(t *testing.T) {
	a := tooltipPoi("a", 0)
	tip, _ := newTestTooltip(t, nil)

	tip.Update(1.0, a, nil, InputPointer) // hovered, 0.85
	tip.Update(1.0, a, a, InputPointer)   // promoted to selected, 1.0

	if got := tip.State().Opacity; !approxEqual(got, 1.0, 1e-6) {
		t.Errorf("Opacity = %v after promotion to selected, want 1.0", got)
	}
}

// --- Content caching ---

func TestContentRenderedOncePerKey(t *testing.T) {
	a := tooltipPoi("a", 0)
	tip, ras := newTestTooltip(t, nil)

	for i := 0; i < 5; i++ {
		tip.Update(0.016, a, nil, InputPointer)
	}
	if len(ras.cards) != 1 {
		t.Fatalf("rasterizer called %d times for a sustained hover, want 1", len(ras.cards))
	}
	if ras.cards[0].Mode != ModeHovered || ras.cards[0].Info.Title != "a" {
		t.Errorf("card = %+v, want hovered a", ras.cards[0])
	}
}

func TestContentReRendersOnModeChange(t *testing.T) {
	a := tooltipPoi("a", 0)
	tip, ras := newTestTooltip(t, nil)

	tip.Update(0.016, a, nil, InputPointer)
	tip.Update(0.016, a, a, InputPointer) // same POI, new mode

	if len(ras.cards) != 2 {
		t.Fatalf("rasterizer called %d times across a mode change, want 2", len(ras.cards))
	}
	if ras.cards[1].Mode != ModeSelected {
		t.Errorf("second card mode = %v, want selected", ras.cards[1].Mode)
	}
}

func TestContentReRendersOnInputMethodChange(t *testing.T) {
	a := tooltipPoi("a", 0)
	tip, ras := newTestTooltip(t, nil)

	tip.Update(0.016, a, nil, InputPointer)
	tip.Update(0.016, a, nil, InputTouch) // prompt copy differs per channel

	if len(ras.cards) != 2 {
		t.Errorf("rasterizer called %d times across an input-method change, want 2", len(ras.cards))
	}
}

func TestNotifyPoiUpdatedInvalidatesCache(t *testing.T) {
	a := tooltipPoi("a", 0)
	tip, ras := newTestTooltip(t, nil)

	tip.Update(0.016, a, nil, InputPointer)
	old := ras.last

	a.Info.Summary = "now with live metrics"
	tip.NotifyPoiUpdated("a")
	tip.Update(0.016, a, nil, InputPointer)

	if len(ras.cards) != 2 {
		t.Fatalf("rasterizer called %d times after invalidation, want 2", len(ras.cards))
	}
	if ras.cards[1].Info.Summary != "now with live metrics" {
		t.Errorf("re-rendered card carries stale info: %+v", ras.cards[1].Info)
	}
	if !old.disposed {
		t.Error("previous texture not disposed after re-render")
	}
}

func TestNotifyOtherPoiDoesNotInvalidate(t *testing.T) {
	a := tooltipPoi("a", 0)
	tip, ras := newTestTooltip(t, nil)

	tip.Update(0.016, a, nil, InputPointer)
	tip.NotifyPoiUpdated("b")
	tip.Update(0.016, a, nil, InputPointer)

	if len(ras.cards) != 1 {
		t.Errorf("rasterizer called %d times after an unrelated invalidation, want 1", len(ras.cards))
	}
}

func TestRenderFailureKeepsPreviousTexture(t *testing.T) {
	a := tooltipPoi("a", 0)
	tip, ras := newTestTooltip(t, nil)

	tip.Update(0.016, a, nil, InputPointer)
	old := ras.last

	ras.fail = true
	tip.NotifyPoiUpdated("a")
	tip.Update(0.016, a, nil, InputPointer)

	if tip.Texture() != old {
		t.Error("texture replaced despite render failure")
	}
	if old.disposed {
		t.Error("previous texture disposed despite render failure")
	}
}

// --- Anchoring and billboarding ---

func TestTooltipTracksMovingAnchor(t *testing.T) {
	pos := mgl64.Vec3{0, 0, 0}
	a := &Poi{
		ID:     "a",
		Info:   Info{Title: "a"},
		Anchor: func() mgl64.Vec3 { return pos },
	}

	tip, _ := newTestTooltip(t, nil)
	tip.Update(0.016, a, nil, InputPointer)

	pos = mgl64.Vec3{2, 1, -3}
	tip.Update(0.016, a, nil, InputPointer)

	want := mgl64.Vec3{2, 1 + defaultAnchorOffset, -3}
	if got := tip.Position(); !approxVec3(got, want, 1e-9) {
		t.Errorf("Position = %v, want %v", got, want)
	}
}

func TestTooltipFacesCamera(t *testing.T) {
	a := tooltipPoi("a", 4)
	tip, _ := newTestTooltip(t, nil)
	tip.Update(0.016, a, nil, InputPointer)

	toCam := tip.camera.Position.Sub(tip.Position()).Normalize()
	forward := tip.Orientation().Rotate(mgl64.Vec3{0, 0, -1})
	if dot := forward.Dot(toCam); !approxEqual(dot, 1, 1e-6) {
		t.Errorf("billboard forward %v does not point at the camera (%v)", forward, toCam)
	}
}

func TestAnchorOffsetConfigurable(t *testing.T) {
	a := tooltipPoi("a", 0)
	tip, _ := newTestTooltip(t, func(cfg *TooltipConfig) { cfg.AnchorOffset = 3 })

	tip.Update(0.016, a, nil, InputPointer)
	if got := tip.Position(); !approxVec3(got, mgl64.Vec3{0, 3, 0}, 1e-9) {
		t.Errorf("Position = %v with offset 3, want {0 3 0}", got)
	}
}

// --- Disposal ---

func TestTooltipDisposeIdempotent(t *testing.T) {
	pref := &stubPreference{enabled: true}
	a := tooltipPoi("a", 0)
	tip, ras := newTestTooltip(t, func(cfg *TooltipConfig) { cfg.Preference = pref })

	tip.Update(1.0, a, nil, InputPointer)
	tex := ras.last

	tip.Dispose()
	if !tex.disposed {
		t.Error("texture not disposed")
	}
	if !pref.cancelled {
		t.Error("preference subscription not cancelled")
	}
	if tip.Visible() {
		t.Error("disposed tooltip reports visible")
	}

	tip.Dispose() // must not panic or double-dispose

	// Updates after disposal are inert.
	tip.Update(1.0, a, nil, InputPointer)
	if tip.Visible() || len(ras.cards) != 1 {
		t.Error("disposed tooltip processed an update")
	}
}
