package beacon

import (
	"bytes"
	"fmt"
	"image/color"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/gofont/goregular"
)

// Card layout constants, in pixels on the rasterized surface.
const (
	cardPadding  = 12.0
	cardMaxWidth = 300.0
	cardGap      = 6.0

	titleSize = 18.0
	bodySize  = 13.0
	smallSize = 11.0
)

var (
	cardBackground = color.RGBA{18, 24, 32, 235}
	cardBorder     = color.RGBA{86, 180, 144, 255}
	titleColor     = color.RGBA{240, 246, 250, 255}
	bodyColor      = color.RGBA{196, 208, 218, 255}
	accentColor    = color.RGBA{140, 220, 180, 255}
	promptColor    = color.RGBA{150, 160, 172, 255}
)

// EbitenRasterizer is the default card renderer: it rasterizes tooltip
// content onto an offscreen ebiten image using the embedded Go Regular
// typeface. Hosts with their own text pipeline implement Rasterizer instead.
type EbitenRasterizer struct {
	title *text.GoTextFace
	body  *text.GoTextFace
	small *text.GoTextFace
}

// NewEbitenRasterizer parses the embedded typeface and returns a ready
// rasterizer. A parse failure indicates an unsupported environment and is
// returned rather than degraded around.
func NewEbitenRasterizer() (*EbitenRasterizer, error) {
	source, err := text.NewGoTextFaceSource(bytes.NewReader(goregular.TTF))
	if err != nil {
		return nil, fmt.Errorf("beacon: failed to parse embedded typeface: %w", err)
	}
	return &EbitenRasterizer{
		title: &text.GoTextFace{Source: source, Size: titleSize},
		body:  &text.GoTextFace{Source: source, Size: bodySize},
		small: &text.GoTextFace{Source: source, Size: smallSize},
	}, nil
}

// cardLine is one laid-out row of the card.
type cardLine struct {
	text  string
	face  *text.GoTextFace
	color color.RGBA
}

// Render lays out and rasterizes the card. The returned texture is owned by
// the caller.
func (r *EbitenRasterizer) Render(card Card) (Texture, error) {
	lines := r.layout(card)
	if len(lines) == 0 {
		return nil, fmt.Errorf("beacon: card has no content")
	}

	contentW := 0.0
	contentH := 0.0
	for _, ln := range lines {
		w, h := text.Measure(ln.text, ln.face, ln.face.Size*1.3)
		if w > contentW {
			contentW = w
		}
		contentH += h + cardGap
	}
	contentH -= cardGap

	w := int(contentW + cardPadding*2)
	h := int(contentH + cardPadding*2)
	img := ebiten.NewImage(w, h)

	vector.DrawFilledRect(img, 0, 0, float32(w), float32(h), cardBackground, false)
	vector.StrokeRect(img, 0.5, 0.5, float32(w)-1, float32(h)-1, 1, cardBorder, false)

	y := cardPadding
	for _, ln := range lines {
		op := &text.DrawOptions{}
		op.GeoM.Translate(cardPadding, y)
		op.ColorScale.ScaleWithColor(ln.color)
		text.Draw(img, ln.text, ln.face, op)

		_, lh := text.Measure(ln.text, ln.face, ln.face.Size*1.3)
		y += lh + cardGap
	}

	return &ebitenTexture{img: img}, nil
}

// layout turns card content into styled rows: title, category, wrapped
// summary, metric rows, status, and the input-appropriate prompt.
func (r *EbitenRasterizer) layout(card Card) []cardLine {
	var lines []cardLine
	info := card.Info

	if info.Title != "" {
		lines = append(lines, cardLine{info.Title, r.title, titleColor})
	}
	if info.Category != "" {
		lines = append(lines, cardLine{strings.ToUpper(info.Category), r.small, accentColor})
	}
	for _, s := range r.wrap(info.Summary, r.body, cardMaxWidth) {
		lines = append(lines, cardLine{s, r.body, bodyColor})
	}
	for _, m := range info.Metrics {
		lines = append(lines, cardLine{m.Label + "  " + m.Value, r.body, accentColor})
	}
	if info.Status != "" {
		lines = append(lines, cardLine{info.Status, r.small, accentColor})
	}
	if prompt := promptFor(card); prompt != "" {
		lines = append(lines, cardLine{prompt, r.small, promptColor})
	}
	return lines
}

// promptFor picks the action hint for the card's mode and input channel.
func promptFor(card Card) string {
	if card.Mode == ModeSelected {
		return "Esc to close"
	}
	switch card.InputMethod {
	case InputTouch:
		return "Tap to open"
	case InputKeyboard:
		return "Enter to open"
	default:
		return "Click to open"
	}
}

// wrap greedily breaks s into lines no wider than maxWidth.
func (r *EbitenRasterizer) wrap(s string, face *text.GoTextFace, maxWidth float64) []string {
	if s == "" {
		return nil
	}

	words := strings.Fields(s)
	var out []string
	line := ""
	for _, word := range words {
		candidate := word
		if line != "" {
			candidate = line + " " + word
		}
		if w, _ := text.Measure(candidate, face, face.Size*1.3); w > maxWidth && line != "" {
			out = append(out, line)
			line = word
			continue
		}
		line = candidate
	}
	if line != "" {
		out = append(out, line)
	}
	return out
}

// --- Texture handle ---

type ebitenTexture struct {
	img *ebiten.Image
}

// Image returns the underlying ebiten image for host-side drawing.
func (t *ebitenTexture) Image() *ebiten.Image {
	return t.img
}

// Size returns the texture dimensions in pixels.
func (t *ebitenTexture) Size() (w, h float64) {
	b := t.img.Bounds()
	return float64(b.Dx()), float64(b.Dy())
}

// Dispose returns the image's backing memory to ebiten.
func (t *ebitenTexture) Dispose() {
	t.img.Deallocate()
}
