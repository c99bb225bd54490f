// Package overlay manages the text elements of an in-progress meme.
//
// Positions are percentages of the image dimensions (0–100), so the layout
// survives any display or export resolution. The default layout is computed,
// not hardcoded per slot count: templates carry anywhere from 1 to 4 text
// boxes and the interior slots have to spread out evenly.
package overlay

import (
	"strconv"

	"github.com/sakif/memeforge/internal/apperror"
	"github.com/sakif/memeforge/internal/model"
)

// Vertical anchors for the default layout. Slot 0 sits near the top of the
// image, the last slot near the bottom, and interior slots are distributed
// strictly between interiorTop and interiorBottom.
const (
	topAnchorY     = 10.0
	bottomAnchorY  = 90.0
	interiorTop    = 20.0
	interiorBottom = 80.0
	centerX        = 50.0
)

// newElement returns a default-styled element at the given position.
func newElement(id int, x, y float64) model.OverlayElement {
	return model.OverlayElement{
		ID:          id,
		X:           x,
		Y:           y,
		FontSize:    model.DefaultFontSize,
		FontWeight:  model.DefaultFontWeight,
		FontFamily:  model.DefaultFontFamily,
		Color:       model.DefaultColor,
		StrokeColor: model.DefaultStrokeColor,
		StrokeWidth: model.DefaultStrokeWidth,
		TextAlign:   model.DefaultTextAlign,
		Rotation:    0,
		Opacity:     1,
	}
}

// InitSlots builds the default element layout for a template with the given
// slot count.
//
// Layout policy:
//   - slot 0 is anchored near top-center (y = 10)
//   - the last slot is anchored near bottom-center (y = 90)
//   - interior slots are evenly distributed between y = 20 and y = 80,
//     strictly increasing with index
//   - a single slot gets the top anchor only
//
// Counts below 1 are clamped to 1.
func InitSlots(slotCount int) []model.OverlayElement {
	if slotCount < 1 {
		slotCount = 1
	}

	elements := make([]model.OverlayElement, 0, slotCount)
	elements = append(elements, newElement(1, centerX, topAnchorY))
	if slotCount == 1 {
		return elements
	}

	// Interior slots: k of them, spread over (interiorTop, interiorBottom)
	// at fractions j/(k+1) so they never touch the band edges.
	interior := slotCount - 2
	for j := 1; j <= interior; j++ {
		y := interiorTop + (interiorBottom-interiorTop)*float64(j)/float64(interior+1)
		elements = append(elements, newElement(j+1, centerX, y))
	}

	elements = append(elements, newElement(slotCount, centerX, bottomAnchorY))
	return elements
}

// FromLegacyPair converts the legacy top/bottom caption shape into the
// canonical element array. Stored records predating multi-element overlays
// carry only two strings; they get the standard two-slot layout.
func FromLegacyPair(topText, bottomText string) []model.OverlayElement {
	elements := InitSlots(2)
	elements[0].Text = topText
	elements[1].Text = bottomText
	return elements
}

// ElementPatch is a partial update to one element. Nil fields are left
// unchanged; last write wins.
type ElementPatch struct {
	Text        *string  `json:"text,omitempty"`
	X           *float64 `json:"x,omitempty"`
	Y           *float64 `json:"y,omitempty"`
	FontSize    *float64 `json:"fontSize,omitempty"`
	FontWeight  *string  `json:"fontWeight,omitempty"`
	FontFamily  *string  `json:"fontFamily,omitempty"`
	Color       *string  `json:"color,omitempty"`
	StrokeColor *string  `json:"strokeColor,omitempty"`
	StrokeWidth *float64 `json:"strokeWidth,omitempty"`
	TextAlign   *string  `json:"textAlign,omitempty"`
	Rotation    *float64 `json:"rotation,omitempty"`
	Opacity     *float64 `json:"opacity,omitempty"`
}

// Session is the editing state for one meme: the element list plus the
// currently-selected element. Sessions are single-writer (one browser tab);
// there is no locking here on purpose.
type Session struct {
	elements   []model.OverlayElement
	selectedID int // 0 = nothing selected
	nextID     int
}

// NewSession starts an editing session with the default layout for the
// template's slot count.
func NewSession(slotCount int) *Session {
	elements := InitSlots(slotCount)
	return &Session{
		elements: elements,
		nextID:   len(elements) + 1,
	}
}

// Elements returns a copy of the current element list.
func (s *Session) Elements() []model.OverlayElement {
	out := make([]model.OverlayElement, len(s.elements))
	copy(out, s.elements)
	return out
}

// Select marks an element as the active one for the editor UI.
func (s *Session) Select(id int) error {
	for _, el := range s.elements {
		if el.ID == id {
			s.selectedID = id
			return nil
		}
	}
	return apperror.NotFound("overlay element", strconv.Itoa(id))
}

// Selected returns the active element id, or 0 if none is selected.
func (s *Session) Selected() int {
	return s.selectedID
}

// UpdateSlot applies a patch to the element with the given id and returns
// the updated list.
func (s *Session) UpdateSlot(id int, patch ElementPatch) ([]model.OverlayElement, error) {
	for i := range s.elements {
		if s.elements[i].ID != id {
			continue
		}
		applyPatch(&s.elements[i], patch)
		return s.Elements(), nil
	}
	return nil, apperror.NotFound("overlay element", strconv.Itoa(id))
}

// AddSlot appends a new default element at image center and returns it.
func (s *Session) AddSlot() model.OverlayElement {
	el := newElement(s.nextID, centerX, 50)
	s.nextID++
	s.elements = append(s.elements, el)
	return el
}

// RemoveSlot deletes the element with the given id. If it was the selected
// element, the selection is cleared — a dangling selected id would point at
// nothing.
func (s *Session) RemoveSlot(id int) error {
	for i := range s.elements {
		if s.elements[i].ID != id {
			continue
		}
		s.elements = append(s.elements[:i], s.elements[i+1:]...)
		if s.selectedID == id {
			s.selectedID = 0
		}
		return nil
	}
	return apperror.NotFound("overlay element", strconv.Itoa(id))
}

func applyPatch(el *model.OverlayElement, p ElementPatch) {
	if p.Text != nil {
		el.Text = *p.Text
	}
	if p.X != nil {
		el.X = *p.X
	}
	if p.Y != nil {
		el.Y = *p.Y
	}
	if p.FontSize != nil {
		el.FontSize = *p.FontSize
	}
	if p.FontWeight != nil {
		el.FontWeight = *p.FontWeight
	}
	if p.FontFamily != nil {
		el.FontFamily = *p.FontFamily
	}
	if p.Color != nil {
		el.Color = *p.Color
	}
	if p.StrokeColor != nil {
		el.StrokeColor = *p.StrokeColor
	}
	if p.StrokeWidth != nil {
		el.StrokeWidth = *p.StrokeWidth
	}
	if p.TextAlign != nil {
		el.TextAlign = *p.TextAlign
	}
	if p.Rotation != nil {
		el.Rotation = *p.Rotation
	}
	if p.Opacity != nil {
		el.Opacity = *p.Opacity
	}
}

