package caption

import (
	"strings"
	"testing"
)

func TestFallbackPair_RuleTable(t *testing.T) {
	tests := []struct {
		name       string
		concept    string
		wantTop    string
		wantBottom string
	}{
		{
			name:       "when rule capitalizes the concept",
			concept:    "when the wifi drops mid-meeting",
			wantTop:    "When the wifi drops mid-meeting",
			wantBottom: whenBottom,
		},
		{
			name:       "when rule matches mid-string too",
			concept:    "that face when the build breaks",
			wantTop:    "That face when the build breaks",
			wantBottom: whenBottom,
		},
		{
			name:       "trying-to rule prefixes Me",
			concept:    "trying to read my own code",
			wantTop:    "Me trying to read my own code",
			wantBottom: tryingBottom,
		},
		{
			name:       "choose rule",
			concept:    "choose a variable name",
			wantTop:    chooseTop,
			wantBottom: "choose a variable name",
		},
		{
			name:       "decision keyword hits the choose rule",
			concept:    "a big decision",
			wantTop:    chooseTop,
			wantBottom: "a big decision",
		},
		{
			name:       "explain rule",
			concept:    "explain recursion to a 5 year old",
			wantTop:    explainTop,
			wantBottom: "explain recursion to a 5 year old",
		},
		{
			name:       "understand keyword hits the explain rule",
			concept:    "nobody can understand regex",
			wantTop:    explainTop,
			wantBottom: "nobody can understand regex",
		},
		{
			name:       "vs rule",
			concept:    "tabs vs spaces",
			wantTop:    versusTop,
			wantBottom: "tabs vs spaces",
		},
		{
			name:       "between keyword hits the vs rule",
			concept:    "stuck between two frameworks",
			wantTop:    versusTop,
			wantBottom: "stuck between two frameworks",
		},
		{
			name:       "short default",
			concept:    "mondays",
			wantTop:    defaultTop,
			wantBottom: "mondays",
		},
		{
			name:       "input is lowercased before matching and output",
			concept:    "  MONDAYS  ",
			wantTop:    defaultTop,
			wantBottom: "mondays",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FallbackPair(tt.concept)
			if got.TopText != tt.wantTop {
				t.Errorf("TopText = %q, want %q", got.TopText, tt.wantTop)
			}
			if got.BottomText != tt.wantBottom {
				t.Errorf("BottomText = %q, want %q", got.BottomText, tt.wantBottom)
			}
		})
	}
}

func TestFallbackPair_IsPure(t *testing.T) {
	// Same concept in, same pair out — every time. The random suggestion
	// feature elsewhere is explicitly randomized; this path never is.
	concepts := []string{
		"when the tests pass first try",
		"trying to nap",
		"a very long concept that has to be split across both caption slots",
		"mondays",
		"",
	}
	for _, concept := range concepts {
		first := FallbackPair(concept)
		for i := 0; i < 20; i++ {
			if got := FallbackPair(concept); got != first {
				t.Fatalf("FallbackPair(%q) not pure: %+v then %+v", concept, first, got)
			}
		}
	}
}

func TestFallbackPair_RulePriority(t *testing.T) {
	// A concept matching multiple rules resolves via the earliest-listed
	// matching rule.
	got := FallbackPair("when trying to choose")
	if got.BottomText != whenBottom {
		t.Errorf("multi-match concept resolved via a later rule: %+v", got)
	}
	if got.TopText != "When trying to choose" {
		t.Errorf("TopText = %q, want the capitalized concept", got.TopText)
	}
}

func TestFallbackPair_KeywordRulesBeatLengthSplit(t *testing.T) {
	// 33 chars and contains "vs": the vs rule is checked before the
	// length-split rule, so it wins.
	concept := "pizza vs tacos for dinner tonight forever"
	got := FallbackPair(concept)
	if got.TopText != versusTop {
		t.Errorf("TopText = %q, want %q", got.TopText, versusTop)
	}
	if got.BottomText != strings.ToLower(concept) {
		t.Errorf("BottomText = %q, want the concept verbatim", got.BottomText)
	}
}

func TestFallbackPair_LongConceptSplitsAtWordMidpoint(t *testing.T) {
	concept := "my code works and i have no idea why it does that"
	if len(concept) <= longConceptAt {
		t.Fatalf("test concept too short to exercise the split rule")
	}

	got := FallbackPair(concept)

	// Reassembling the halves gives back the full concept.
	rejoined := got.TopText + " " + got.BottomText
	if rejoined != concept {
		t.Errorf("split lost words: %q + %q", got.TopText, got.BottomText)
	}

	// The split lands at the word-list midpoint.
	words := strings.Fields(concept)
	wantTop := strings.Join(words[:len(words)/2], " ")
	if got.TopText != wantTop {
		t.Errorf("TopText = %q, want %q", got.TopText, wantTop)
	}
}

func TestFallbackPair_EmptyConcept(t *testing.T) {
	got := FallbackPair("")
	if got.TopText != defaultTop || got.BottomText != "" {
		t.Errorf("FallbackPair(\"\") = %+v", got)
	}
}

func TestFallbackSuggestions_AlwaysThree(t *testing.T) {
	for _, name := range []string{"Two Buttons", "Distracted Boyfriend", "Unknown Template"} {
		if got := fallbackSuggestions(name); len(got) != 3 {
			t.Errorf("fallbackSuggestions(%q) returned %d suggestions, want 3", name, len(got))
		}
	}
}
