package model

// Default styling for a fresh overlay element. These match the classic
// white-Impact-with-black-stroke meme convention.
const (
	DefaultFontSize    = 32
	DefaultFontWeight  = "bold"
	DefaultFontFamily  = "Impact, Arial Black, sans-serif"
	DefaultColor       = "#FFFFFF"
	DefaultStrokeColor = "#000000"
	DefaultStrokeWidth = 2
	DefaultTextAlign   = "center"
)

// OverlayElement is one positioned, styled text field drawn atop a template.
//
// X and Y are percentages (0–100) of the rendered image's width and height,
// NOT pixels. Storing normalized positions keeps an element valid across
// display and export resolutions — the compositor multiplies by the canvas
// dimensions at draw time.
//
// Elements are owned by the in-progress editing session: created when a
// template is selected, mutated by user input or caption generation, and
// discarded when the session resets or the meme is saved.
type OverlayElement struct {
	ID          int     `json:"id"`
	Text        string  `json:"text"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	FontSize    float64 `json:"fontSize"`
	FontWeight  string  `json:"fontWeight"`
	FontFamily  string  `json:"fontFamily"`
	Color       string  `json:"color"`
	StrokeColor string  `json:"strokeColor"`
	StrokeWidth float64 `json:"strokeWidth"`
	TextAlign   string  `json:"textAlign"`
	Rotation    float64 `json:"rotation"` // degrees, clockwise about the anchor
	Opacity     float64 `json:"opacity"`  // 0–1
}
