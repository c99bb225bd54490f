package caption

import (
	"context"
	"strings"
)

// Fixed phrases used by the deterministic rules. These are part of the
// observable contract — tests pin them.
const (
	whenBottom    = "Life hits different"
	tryingBottom  = "Why is everything so hard?"
	chooseTop     = "Having to choose"
	explainTop    = "Me trying to explain"
	versusTop     = "The eternal struggle:"
	defaultTop    = "Me:"
	longConceptAt = 30
)

// fallbackProvider is the deterministic tail of the provider chain. It never
// fails, so a chain ending in it always produces a pair.
type fallbackProvider struct{}

func (fallbackProvider) Name() string { return "fallback" }

func (fallbackProvider) Generate(_ context.Context, _ string, concept string) (Pair, error) {
	return FallbackPair(concept), nil
}

// FallbackPair maps a concept to a caption pair with an ordered list of
// substring rules — first match wins. This is a pure function: the same
// concept always yields the same pair. Matching happens on the lowercased,
// trimmed concept, and the outputs are built from that normalized form too.
//
// Rule order is the contract: "when trying to choose" resolves via the
// "when" rule, never the "trying to" or "choose" rules.
func FallbackPair(concept string) Pair {
	c := strings.ToLower(strings.TrimSpace(concept))

	switch {
	case strings.HasPrefix(c, "when ") || strings.Contains(c, "when "):
		return Pair{TopText: capitalize(c), BottomText: whenBottom}

	case strings.Contains(c, "trying to") || strings.Contains(c, "try to"):
		return Pair{TopText: "Me " + c, BottomText: tryingBottom}

	case strings.Contains(c, "choose") || strings.Contains(c, "decision"):
		return Pair{TopText: chooseTop, BottomText: c}

	case strings.Contains(c, "explain") || strings.Contains(c, "understand"):
		return Pair{TopText: explainTop, BottomText: c}

	case strings.Contains(c, "vs") || strings.Contains(c, "between"):
		return Pair{TopText: versusTop, BottomText: c}
	}

	// Long concepts read better split across the two slots.
	if len(c) > longConceptAt {
		words := strings.Fields(c)
		mid := len(words) / 2
		return Pair{
			TopText:    strings.Join(words[:mid], " "),
			BottomText: strings.Join(words[mid:], " "),
		}
	}

	return Pair{TopText: defaultTop, BottomText: c}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// fallbackSuggestions is the fixed suggestion table used when no AI backend
// answers. Unknown templates get the most versatile set.
func fallbackSuggestions(templateName string) []Suggestion {
	switch templateName {
	case "Distracted Boyfriend":
		return []Suggestion{
			{Top: "Me", Bottom: "Literally any distraction"},
			{Top: "My responsibilities", Bottom: "A brand new hobby"},
			{Top: "The task at hand", Bottom: "Anything else at all"},
		}
	case "Two Buttons":
		return []Suggestion{
			{Top: "Sleep early", Bottom: "One more episode"},
			{Top: "Save money", Bottom: "Treat yourself"},
			{Top: "Fix the bug", Bottom: "Ship it anyway"},
		}
	default:
		return []Suggestion{
			{Top: "Using old memes", Bottom: "Making your own memes"},
			{Top: "When you", Bottom: "But actually"},
			{Top: "Me trying", Bottom: "Also me"},
		}
	}
}
