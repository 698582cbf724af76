package mood

import (
	"strings"
	"unicode"
)

type keyword struct {
	word string
	mood Mood
}

// labelKeywords is evaluated top to bottom; the first hit wins.
var labelKeywords = []keyword{
	{"happy", Happy},
	{"joy", Happy},
	{"calm", Calm},
	{"relaxed", Calm},
	{"peace", Calm},
	{"sad", Sad},
	{"down", Sad},
	{"angry", Angry},
	{"mad", Angry},
	{"rage", Angry},
}

// FromLabel maps a free-form classifier label to a mood.
//
// Whole-word matches are tried first in table order, then substring matches
// in table order ("joyful" still maps to Happy). Anything else is Neutral.
func FromLabel(label string) Mood {
	key := strings.ToLower(strings.TrimSpace(label))
	if key == "" {
		return Neutral
	}

	tokens := strings.FieldsFunc(key, func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	for _, kw := range labelKeywords {
		for _, tok := range tokens {
			if tok == kw.word {
				return kw.mood
			}
		}
	}

	for _, kw := range labelKeywords {
		if strings.Contains(key, kw.word) {
			return kw.mood
		}
	}
	return Neutral
}
