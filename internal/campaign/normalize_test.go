package campaign

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCapitalize(t *testing.T) {
	tests := map[string]string{
		"red":        "Red",
		"BLUE":       "Blue",
		"défenseur":  "Défenseur",
		"DÉFENSEUR":  "Défenseur",
		"egalite":    "Egalite",
		"  pirate  ": "Pirate",
		"":           "",
		"   ":        "",
	}
	for in, want := range tests {
		assert.Equal(t, want, Capitalize(in), "input %q", in)
	}
}

func TestBattleNormalized(t *testing.T) {
	b := battle("Station Ivius", "egalite", "pirate", "envahisseur", "PIRATE")
	n := b.Normalized()

	assert.Equal(t, battle("Station Ivius", TieMarker, "Pirate", "Envahisseur", "Pirate"), n)
	assert.Equal(t, []string{"envahisseur", "PIRATE"}, b.Participants, "the original battle is left untouched")
}
