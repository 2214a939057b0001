package campaign

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

const testSeedYAML = `
factions: [Red, Blue, Green]
active:
  sector: Alpha
  sub_sector: North
sectors:
  - name: Alpha
    sub_sectors:
      - name: North
        systems:
          - name: Hub
            rule:
              pv_thresholds: [2, 4]
              bonus_threshold: 5
            planets:
              - Core
              - name: Ring
                weight: 2
          - name: Edge
            planets: [Rim]
      - name: South
        systems:
          - name: Deep
            planets: [Abyss, Trench]
  - name: Beta
    sub_sectors:
      - name: East
        systems:
          - name: Dawn
            planets: [Sunrise]
honor_keywords: [Duel, Siege]
`

func testSeed(t *testing.T) *Seed {
	t.Helper()
	seed, err := ParseSeed([]byte(testSeedYAML))
	require.NoError(t, err)
	return seed
}

func testCampaign(t *testing.T) *Campaign {
	t.Helper()
	return testSeed(t).Campaign()
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func battle(planet, winner, choice string, participants ...string) Battle {
	return Battle{Planet: planet, Winner: winner, Choice: choice, Participants: participants}
}

func statsOf(t *testing.T, c *Campaign, planet string, f Faction) PlanetStats {
	t.Helper()
	loc, err := c.Resolve(planet)
	require.NoError(t, err)
	return *loc.Planet.StatsFor(f)
}
