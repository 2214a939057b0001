package campaign

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsTotalWar(t *testing.T) {
	for n, want := range map[int]bool{1: false, 2: false, 3: true, 4: false, 6: true, 9: true} {
		assert.Equal(t, want, IsTotalWar(n), "phase %d", n)
	}
}

func TestClosePhase(t *testing.T) {
	c := testCampaign(t)
	assert.Equal(t, Phase{Number: 1, Sector: "Alpha", SubSector: "North"}, c.Phase)

	_, err := c.RecordBattle(battle("Core", "Red", "Blue", "Red", "Blue"))
	require.NoError(t, err)
	_, err = c.RecordBattle(battle("Rim", TieMarker, "Green", "Blue", "Green"))
	require.NoError(t, err)

	tr, err := c.ClosePhase("")
	require.NoError(t, err)

	assert.Equal(t, PhaseRef{SubSector: "North", Number: 1}, tr.Closed)
	assert.False(t, tr.Rotated)
	assert.False(t, tr.TotalWar)
	assert.Equal(t, Phase{Number: 2, Sector: "Alpha", SubSector: "North"}, tr.Current)
	assert.Equal(t, map[Faction]int{"Red": 1, "Blue": 2, "Green": 1}, tr.Record.TotalBattles)
	assert.Equal(t, map[Faction]int{"Red": 0, "Blue": 1, "Green": 1}, tr.Record.PlanetChoices)

	t.Run("counters reset, points survive", func(t *testing.T) {
		assert.Equal(t, map[Faction]int{"Red": 0, "Blue": 0, "Green": 0}, c.TotalBattles)
		assert.Equal(t, PlanetStats{Points: 3}, statsOf(t, c, "Core", "Red"))
		assert.Equal(t, PlanetStats{Points: 1}, statsOf(t, c, "Core", "Blue"))
		assert.Equal(t, PlanetStats{Points: 2}, statsOf(t, c, "Rim", "Green"))
	})

	t.Run("archived record is a copy", func(t *testing.T) {
		tr.Record.TotalBattles["Red"] = 99
		rec, err := c.PhaseRecord("North", 1)
		require.NoError(t, err)
		assert.Equal(t, 1, rec.TotalBattles["Red"])
	})

	_, err = c.ClosePhase("")
	require.NoError(t, err)
	assert.Equal(t, 3, c.Phase.Number)
	assert.Equal(t, 3, c.LocalPhase())

	t.Run("total war requires a rotation", func(t *testing.T) {
		_, err := c.ClosePhase("")
		require.ErrorIs(t, err, ErrRotationRequired)
	})

	t.Run("rotation stays within the sector", func(t *testing.T) {
		_, err := c.ClosePhase("East")
		require.ErrorIs(t, err, ErrUnknownSubSectorTarget)
		_, err = c.ClosePhase("Nowhere")
		require.ErrorIs(t, err, ErrUnknownSubSectorTarget)
		assert.Equal(t, 3, c.Phase.Number, "a rejected close must not archive anything")
		assert.Equal(t, 2, c.History.MaxPhase("North"))
	})

	tr, err = c.ClosePhase("South")
	require.NoError(t, err)
	assert.True(t, tr.Rotated)
	assert.True(t, tr.TotalWar)
	assert.Equal(t, PhaseRef{SubSector: "North", Number: 3}, tr.Closed)
	assert.Equal(t, Phase{Number: 1, Sector: "Alpha", SubSector: "South"}, c.Phase)

	t.Run("rotation swaps active systems", func(t *testing.T) {
		for loc := range c.Systems() {
			want := loc.SubSector.Name == "South"
			assert.Equal(t, want, loc.System.Active, loc.System.Name)
		}
	})

	t.Run("rotation is refused outside total war", func(t *testing.T) {
		_, err := c.ClosePhase("North")
		require.ErrorIs(t, err, ErrRotationNotAllowed)
	})

	t.Run("returning resumes the local numbering", func(t *testing.T) {
		_, err := c.ClosePhase("")
		require.NoError(t, err)
		_, err = c.ClosePhase("")
		require.NoError(t, err)
		tr, err := c.ClosePhase("North")
		require.NoError(t, err)
		assert.Equal(t, Phase{Number: 4, Sector: "Alpha", SubSector: "North"}, tr.Current)
		assert.Equal(t, []int{1, 2, 3}, c.History.Phases("South"))
	})
}

func TestClosePhaseWithInvalidPointer(t *testing.T) {
	c := testCampaign(t)
	c.Phase.SubSector = "Gone"
	_, err := c.ClosePhase("")
	require.ErrorIs(t, err, ErrUnknownSubSector)
}

func TestPhaseRecordUnknown(t *testing.T) {
	c := testCampaign(t)
	_, err := c.PhaseRecord("", 1)
	require.ErrorIs(t, err, ErrUnknownPhase)
}
