package overlay

import (
	"errors"
	"testing"

	"github.com/sakif/memeforge/internal/apperror"
	"github.com/sakif/memeforge/internal/model"
)

// =========================================================================
// DEFAULT LAYOUT TESTS
// =========================================================================

func TestInitSlots_SingleSlotIsTopAnchored(t *testing.T) {
	elements := InitSlots(1)

	if len(elements) != 1 {
		t.Fatalf("InitSlots(1) returned %d elements, want 1", len(elements))
	}
	if elements[0].Y != topAnchorY {
		t.Errorf("single slot y = %v, want %v", elements[0].Y, topAnchorY)
	}
	if elements[0].X != centerX {
		t.Errorf("single slot x = %v, want %v", elements[0].X, centerX)
	}
}

func TestInitSlots_TwoSlotsAnchorTopAndBottom(t *testing.T) {
	elements := InitSlots(2)

	if len(elements) != 2 {
		t.Fatalf("InitSlots(2) returned %d elements, want 2", len(elements))
	}
	if elements[0].Y != topAnchorY {
		t.Errorf("slot 0 y = %v, want %v", elements[0].Y, topAnchorY)
	}
	if elements[1].Y != bottomAnchorY {
		t.Errorf("slot 1 y = %v, want %v", elements[1].Y, bottomAnchorY)
	}
}

func TestInitSlots_InteriorSlotsBetweenAnchorsAndIncreasing(t *testing.T) {
	elements := InitSlots(4)

	if len(elements) != 4 {
		t.Fatalf("InitSlots(4) returned %d elements, want 4", len(elements))
	}

	// The two interior slots must sit strictly between the anchors and be
	// strictly increasing with index.
	for i := 1; i <= 2; i++ {
		y := elements[i].Y
		if y <= topAnchorY || y >= bottomAnchorY {
			t.Errorf("interior slot %d y = %v, want strictly between %v and %v",
				i, y, topAnchorY, bottomAnchorY)
		}
	}
	if elements[1].Y >= elements[2].Y {
		t.Errorf("interior slots not strictly increasing: y1=%v y2=%v",
			elements[1].Y, elements[2].Y)
	}
}

func TestInitSlots_ComputedForAnyCount(t *testing.T) {
	// Slot counts vary by template (1–4 observed), but the formula should
	// hold for any count: monotonic y, anchors fixed, x centered.
	for _, count := range []int{1, 2, 3, 4, 7} {
		elements := InitSlots(count)
		if len(elements) != count {
			t.Fatalf("InitSlots(%d) returned %d elements", count, len(elements))
		}
		for i := 1; i < count; i++ {
			if elements[i].Y <= elements[i-1].Y {
				t.Errorf("InitSlots(%d): y not strictly increasing at index %d", count, i)
			}
			if elements[i].X != centerX {
				t.Errorf("InitSlots(%d): slot %d x = %v, want centered", count, i, elements[i].X)
			}
		}
		if count > 1 && elements[count-1].Y != bottomAnchorY {
			t.Errorf("InitSlots(%d): last slot y = %v, want %v", count, elements[count-1].Y, bottomAnchorY)
		}
	}
}

func TestInitSlots_ClampsZeroAndNegative(t *testing.T) {
	for _, count := range []int{0, -3} {
		elements := InitSlots(count)
		if len(elements) != 1 {
			t.Errorf("InitSlots(%d) returned %d elements, want 1", count, len(elements))
		}
	}
}

func TestInitSlots_DefaultStyling(t *testing.T) {
	el := InitSlots(1)[0]

	if el.FontSize != model.DefaultFontSize {
		t.Errorf("FontSize = %v, want %v", el.FontSize, model.DefaultFontSize)
	}
	if el.Color != model.DefaultColor {
		t.Errorf("Color = %q, want %q", el.Color, model.DefaultColor)
	}
	if el.StrokeWidth != model.DefaultStrokeWidth {
		t.Errorf("StrokeWidth = %v, want %v", el.StrokeWidth, model.DefaultStrokeWidth)
	}
	if el.Opacity != 1 {
		t.Errorf("Opacity = %v, want 1", el.Opacity)
	}
	if el.Rotation != 0 {
		t.Errorf("Rotation = %v, want 0", el.Rotation)
	}
}

func TestFromLegacyPair(t *testing.T) {
	elements := FromLegacyPair("top caption", "bottom caption")

	if len(elements) != 2 {
		t.Fatalf("FromLegacyPair returned %d elements, want 2", len(elements))
	}
	if elements[0].Text != "top caption" || elements[0].Y != topAnchorY {
		t.Errorf("top element = %+v", elements[0])
	}
	if elements[1].Text != "bottom caption" || elements[1].Y != bottomAnchorY {
		t.Errorf("bottom element = %+v", elements[1])
	}
}

// =========================================================================
// SESSION TESTS
// =========================================================================

func strPtr(s string) *string   { return &s }
func f64Ptr(f float64) *float64 { return &f }

func TestSession_UpdateSlot(t *testing.T) {
	s := NewSession(2)

	updated, err := s.UpdateSlot(1, ElementPatch{
		Text:     strPtr("hello"),
		FontSize: f64Ptr(48),
	})
	if err != nil {
		t.Fatalf("UpdateSlot() error = %v", err)
	}

	if updated[0].Text != "hello" {
		t.Errorf("text = %q, want %q", updated[0].Text, "hello")
	}
	if updated[0].FontSize != 48 {
		t.Errorf("fontSize = %v, want 48", updated[0].FontSize)
	}
	// Untouched fields keep their values
	if updated[0].Color != model.DefaultColor {
		t.Errorf("color changed unexpectedly: %q", updated[0].Color)
	}
	// The other slot is untouched entirely
	if updated[1].Text != "" {
		t.Errorf("slot 2 text changed unexpectedly: %q", updated[1].Text)
	}
}

func TestSession_UpdateSlot_UnknownID(t *testing.T) {
	s := NewSession(2)

	_, err := s.UpdateSlot(99, ElementPatch{Text: strPtr("x")})
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("UpdateSlot(99) error = %v, want ErrNotFound", err)
	}
}

func TestSession_AddSlot(t *testing.T) {
	s := NewSession(2)

	el := s.AddSlot()
	if el.ID != 3 {
		t.Errorf("new slot id = %d, want 3", el.ID)
	}
	if el.X != centerX || el.Y != 50 {
		t.Errorf("new slot position = (%v, %v), want centered", el.X, el.Y)
	}
	if got := len(s.Elements()); got != 3 {
		t.Errorf("element count = %d, want 3", got)
	}
}

func TestSession_AddSlot_IDsNeverReused(t *testing.T) {
	s := NewSession(1)

	a := s.AddSlot() // id 2
	if err := s.RemoveSlot(a.ID); err != nil {
		t.Fatalf("RemoveSlot() error = %v", err)
	}
	b := s.AddSlot()
	if b.ID == a.ID {
		t.Errorf("slot id %d was reused after removal", a.ID)
	}
}

func TestSession_RemoveSlot_ClearsSelection(t *testing.T) {
	s := NewSession(3)

	if err := s.Select(2); err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if err := s.RemoveSlot(2); err != nil {
		t.Fatalf("RemoveSlot() error = %v", err)
	}

	// Deleting the selected slot must not leave a dangling selection.
	if got := s.Selected(); got != 0 {
		t.Errorf("Selected() = %d after removing selected slot, want 0", got)
	}
}

func TestSession_RemoveSlot_KeepsOtherSelection(t *testing.T) {
	s := NewSession(3)

	if err := s.Select(1); err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if err := s.RemoveSlot(3); err != nil {
		t.Fatalf("RemoveSlot() error = %v", err)
	}

	if got := s.Selected(); got != 1 {
		t.Errorf("Selected() = %d, want 1 (unrelated removal)", got)
	}
}

func TestSession_RemoveSlot_UnknownID(t *testing.T) {
	s := NewSession(1)

	if err := s.RemoveSlot(42); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("RemoveSlot(42) error = %v, want ErrNotFound", err)
	}
}

func TestSession_ElementsReturnsCopy(t *testing.T) {
	s := NewSession(1)

	elements := s.Elements()
	elements[0].Text = "mutated"

	if s.Elements()[0].Text == "mutated" {
		t.Error("Elements() exposed internal state — callers can corrupt the session")
	}
}
