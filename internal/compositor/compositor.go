// Package compositor renders finished memes server-side: a template image
// with every overlay element drawn onto it in the classic meme look —
// uppercased text, heavy fill over a dark outline.
//
// Rendering is deterministic: the same frame and elements always produce
// byte-identical PNG output.
package compositor

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"
	"net/http"
	"strings"
	"sync"
	"time"

	_ "image/gif"
	_ "image/jpeg"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/f64"
	"golang.org/x/image/math/fixed"

	"github.com/sakif/memeforge/internal/apperror"
	"github.com/sakif/memeforge/internal/model"
)

// Frame is a decoded template image ready for rendering.
type Frame struct {
	img    image.Image
	Width  int
	Height int
}

var (
	fontOnce    sync.Once
	regularFont *opentype.Font
	boldFont    *opentype.Font
	fontErr     error
)

// loadFonts parses the embedded Go fonts once. Impact isn't embeddable, so
// Go Bold stands in for the meme fill and Go Regular for light weights.
func loadFonts() error {
	fontOnce.Do(func() {
		regular, err := opentype.Parse(goregular.TTF)
		if err != nil {
			fontErr = fmt.Errorf("parse regular font: %w", err)
			return
		}
		bold, err := opentype.Parse(gobold.TTF)
		if err != nil {
			fontErr = fmt.Errorf("parse bold font: %w", err)
			return
		}
		regularFont = regular
		boldFont = bold
	})
	return fontErr
}

// Decode fetches and decodes a template image. PNG, JPEG and GIF are
// accepted.
func Decode(ctx context.Context, url string) (*Frame, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(fetchCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, apperror.Unavailable("template image", err)
	}

	client := &http.Client{Timeout: 15 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, apperror.Unavailable("template image", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperror.Unavailable("template image",
			fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
	if err != nil {
		return nil, apperror.Unavailable("template image", err)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, apperror.ParseFailed("template image", err.Error())
	}

	bounds := img.Bounds()
	return &Frame{img: img, Width: bounds.Dx(), Height: bounds.Dy()}, nil
}

// FromImage wraps an already-decoded image in a Frame.
func FromImage(img image.Image) *Frame {
	bounds := img.Bounds()
	return &Frame{img: img, Width: bounds.Dx(), Height: bounds.Dy()}
}

// Render draws the elements onto the frame and returns the encoded PNG.
// A nil frame renders nothing: there is no image to draw on, so the result
// is empty rather than an error. Elements with empty text are skipped.
func Render(frame *Frame, elements []model.OverlayElement) ([]byte, error) {
	if frame == nil {
		return nil, nil
	}
	if err := loadFonts(); err != nil {
		return nil, err
	}

	bounds := frame.img.Bounds()
	canvas := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(canvas, canvas.Bounds(), frame.img, bounds.Min, draw.Src)

	for _, el := range elements {
		if strings.TrimSpace(el.Text) == "" {
			continue
		}
		if err := drawElement(canvas, el); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, canvas); err != nil {
		return nil, fmt.Errorf("encode render: %w", err)
	}
	return buf.Bytes(), nil
}

// drawElement rasterizes one element into its own layer, applies opacity,
// and composites it at the element's anchor with its rotation.
func drawElement(canvas *image.RGBA, el model.OverlayElement) error {
	text := strings.ToUpper(el.Text)

	size := el.FontSize
	if size <= 0 {
		size = model.DefaultFontSize
	}

	face, err := newFace(el.FontWeight, size)
	if err != nil {
		return err
	}
	if closer, ok := face.(interface{ Close() error }); ok {
		defer closer.Close()
	}

	metrics := face.Metrics()
	measure := font.Drawer{Face: face}
	textWidth := measure.MeasureString(text).Ceil()
	if textWidth <= 0 {
		return nil
	}

	strokeWidth := int(math.Round(el.StrokeWidth))
	if strokeWidth < 0 {
		strokeWidth = 0
	}
	pad := strokeWidth + 2

	ascent := metrics.Ascent.Ceil()
	descent := metrics.Descent.Ceil()
	layerW := textWidth + 2*pad
	layerH := ascent + descent + 2*pad

	fillMask := image.NewAlpha(image.Rect(0, 0, layerW, layerH))
	drawText(fillMask, face, text, pad, pad+ascent)

	layer := image.NewRGBA(fillMask.Bounds())

	// The outline comes from re-drawing the glyphs at every integer offset
	// within the stroke radius, the raster equivalent of strokeText before
	// fillText.
	if strokeWidth > 0 {
		strokeMask := image.NewAlpha(fillMask.Bounds())
		for dy := -strokeWidth; dy <= strokeWidth; dy++ {
			for dx := -strokeWidth; dx <= strokeWidth; dx++ {
				if dx*dx+dy*dy > strokeWidth*strokeWidth {
					continue
				}
				drawText(strokeMask, face, text, pad+dx, pad+ascent+dy)
			}
		}
		draw.DrawMask(layer, layer.Bounds(),
			image.NewUniform(parseColor(el.StrokeColor, color.Black)), image.Point{},
			strokeMask, image.Point{}, draw.Over)
	}

	draw.DrawMask(layer, layer.Bounds(),
		image.NewUniform(parseColor(el.Color, color.White)), image.Point{},
		fillMask, image.Point{}, draw.Over)

	if el.Opacity < 1 {
		applyOpacity(layer, el.Opacity)
	}

	// Anchor in canvas space; origin is the matching point in layer space.
	anchorX := el.X / 100 * float64(canvas.Bounds().Dx())
	anchorY := el.Y / 100 * float64(canvas.Bounds().Dy())

	var originX float64
	switch el.TextAlign {
	case "left":
		originX = float64(pad)
	case "right":
		originX = float64(pad + textWidth)
	default:
		originX = float64(pad) + float64(textWidth)/2
	}
	originY := float64(pad+ascent) - float64(ascent)/2

	if el.Rotation == 0 {
		offset := image.Pt(int(math.Round(anchorX-originX)), int(math.Round(anchorY-originY)))
		draw.Draw(canvas, layer.Bounds().Add(offset), layer, image.Point{}, draw.Over)
		return nil
	}

	theta := el.Rotation * math.Pi / 180
	sin, cos := math.Sin(theta), math.Cos(theta)

	// dst = anchor + R*(src - origin), row-major src-to-dst matrix.
	m := f64.Aff3{
		cos, -sin, anchorX - cos*originX + sin*originY,
		sin, cos, anchorY - sin*originX - cos*originY,
	}
	xdraw.BiLinear.Transform(canvas, m, layer, layer.Bounds(), xdraw.Over, nil)
	return nil
}

func drawText(dst draw.Image, face font.Face, text string, x, y int) {
	drawer := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(color.Opaque),
		Face: face,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	drawer.DrawString(text)
}

func newFace(weight string, size float64) (font.Face, error) {
	src := boldFont
	if weight == "normal" || weight == "light" {
		src = regularFont
	}
	face, err := opentype.NewFace(src, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("create font face: %w", err)
	}
	return face, nil
}

// applyOpacity scales every premultiplied channel; values outside (0,1)
// were already handled by the caller.
func applyOpacity(img *image.RGBA, opacity float64) {
	if opacity < 0 {
		opacity = 0
	}
	for i := range img.Pix {
		img.Pix[i] = uint8(math.Round(float64(img.Pix[i]) * opacity))
	}
}

// parseColor understands #RGB and #RRGGBB; anything else falls back.
func parseColor(s string, fallback color.Color) color.Color {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "#") {
		return fallback
	}
	hex := s[1:]
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return fallback
	}
	var r, g, b uint8
	if _, err := fmt.Sscanf(hex, "%02x%02x%02x", &r, &g, &b); err != nil {
		return fallback
	}
	return color.RGBA{R: r, G: g, B: b, A: 0xff}
}
