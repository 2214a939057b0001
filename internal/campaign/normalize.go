package campaign

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Capitalize upper-cases the first rune of a trimmed name and lower-cases the
// rest, so "défenseur" and "DÉFENSEUR" both become "Défenseur".
func Capitalize(s string) string {
	s = strings.TrimSpace(s)
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return s
	}
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}

// Normalized returns a copy of the battle with its faction fields
// capitalized. The planet name is kept as typed.
func (b Battle) Normalized() Battle {
	b.Winner = Capitalize(b.Winner)
	b.Choice = Capitalize(b.Choice)
	if b.Participants != nil {
		participants := make([]string, len(b.Participants))
		for i, p := range b.Participants {
			participants[i] = Capitalize(p)
		}
		b.Participants = participants
	}
	return b
}
