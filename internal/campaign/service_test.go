package campaign

import (
	"context"
	"fmt"
	"math/rand/v2"
	"testing"
	"time"

	"campaign-server/internal/honor"
	"campaign-server/internal/shared/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	admin  = Actor{ID: "1", Name: "marshal", Admin: true}
	player = Actor{ID: "2", Name: "trooper"}
)

func newTestService(t *testing.T) (*Service, *memoryRepository) {
	t.Helper()
	repo := &memoryRepository{}
	store := Open(context.Background(), repo, testSeed(t), discardLogger())
	drawer := honor.NewDrawer(honor.MatchSubset, 1, rand.NewPCG(1, 2), discardLogger())

	s := NewService(store, drawer, discardLogger())
	s.newID = func() string { return "audit-id" }
	s.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	return s, repo
}

func TestServiceRecordBattle(t *testing.T) {
	s, repo := newTestService(t)
	ctx := context.Background()

	m, err := s.RecordBattle(ctx, player, battle("Core", "Red", "Red", "Red", "Blue"))
	require.NoError(t, err)
	assert.True(t, m.Persisted)
	assert.Equal(t, "Hub", m.Result.System)
	assert.Equal(t, 2, repo.saves)

	_, err = s.RecordBattle(ctx, player, battle("Core", "Red", "Red", "Red"))
	require.ErrorIs(t, err, ErrInvalidParticipants)
	assert.Equal(t, errors.ErrorTypeValidation, errors.GetType(err))
}

func TestServiceAdminOperations(t *testing.T) {
	ctx := context.Background()

	t.Run("refused to players", func(t *testing.T) {
		s, repo := newTestService(t)
		calls := map[string]func() error{
			"backdated": func() error {
				_, err := s.RecordBackdatedBattle(ctx, player, battle("Core", "Red", "Red", "Red", "Blue"), PhaseRef{Number: 1})
				return err
			},
			"close": func() error { _, err := s.ClosePhase(ctx, player, ""); return err },
			"stats": func() error {
				_, err := s.ModifyStats(ctx, player, StatsOverride{Planet: "Core", Faction: "Red"})
				return err
			},
			"add system": func() error { _, err := s.AddSystem(ctx, player, "New", "Fresh", ""); return err },
			"add planet": func() error { _, err := s.AddPlanet(ctx, player, "Hub", "Fresh"); return err },
			"active":     func() error { _, err := s.SetSystemActive(ctx, player, "Hub", false); return err },
			"rule":       func() error { _, err := s.SetSystemRule(ctx, player, RuleUpdate{System: "Hub"}); return err },
			"keywords":   func() error { _, err := s.RefreshHonorKeywords(ctx, player, []string{"Duel"}); return err },
			"reload":     func() error { return s.Reload(ctx, player) },
		}
		for name, call := range calls {
			err := call()
			require.Error(t, err, name)
			assert.Equal(t, errors.ErrorTypeForbidden, errors.GetType(err), name)
		}
		assert.Equal(t, 1, repo.saves, "refused commands must not save")
	})

	t.Run("back-dated battle carries an audit entry", func(t *testing.T) {
		s, _ := newTestService(t)
		_, err := s.ClosePhase(ctx, admin, "")
		require.NoError(t, err)

		m, err := s.RecordBackdatedBattle(ctx, admin, battle("Core", "Red", "Red", "Red", "Blue"), PhaseRef{SubSector: "North", Number: 1})
		require.NoError(t, err)
		assert.True(t, m.Result.Backdated)
		assert.Equal(t, "audit-id", m.Result.AuditID)

		require.NoError(t, s.store.View(func(c *Campaign) error {
			require.Len(t, c.Backdated, 1)
			assert.Equal(t, "marshal", c.Backdated[0].Actor)
			assert.Equal(t, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC), c.Backdated[0].RecordedAt)
			return nil
		}))
	})

	t.Run("close phase", func(t *testing.T) {
		s, _ := newTestService(t)
		m, err := s.ClosePhase(ctx, admin, " ")
		require.NoError(t, err)
		assert.Equal(t, 2, m.Result.Current.Number)

		status, err := s.CurrentPhase()
		require.NoError(t, err)
		assert.Equal(t, 2, status.Phase.Number)
		assert.False(t, status.TotalWar)
		assert.Equal(t, []string{"South"}, status.RotationTargets)

		_, err = s.ClosePhase(ctx, admin, "")
		require.NoError(t, err)
		status, err = s.CurrentPhase()
		require.NoError(t, err)
		assert.True(t, status.TotalWar)

		phases, err := s.ArchivedPhases("")
		require.NoError(t, err)
		assert.Equal(t, []int{1, 2}, phases)

		phases, err = s.ArchivedPhases("South")
		require.NoError(t, err)
		assert.Empty(t, phases)

		_, err = s.ArchivedPhases("Nowhere")
		require.ErrorIs(t, err, ErrUnknownSubSector)

		rec, err := s.PhaseHistory("North", 2)
		require.NoError(t, err)
		assert.Equal(t, 0, rec.TotalBattles["Red"])
	})

	t.Run("keywords", func(t *testing.T) {
		s, _ := newTestService(t)
		m, err := s.RefreshHonorKeywords(ctx, admin, []string{"Siege", "Ambush"}, []string{" Ambush ", "Raid"})
		require.NoError(t, err)
		assert.Equal(t, []string{"Ambush", "Raid", "Siege"}, m.Result)

		_, err = s.RefreshHonorKeywords(ctx, admin, []string{" "})
		require.ErrorIs(t, err, ErrInvalidValue)
	})
}

func TestServiceSuggestions(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	names, err := s.PlanetNames("R")
	require.NoError(t, err)
	assert.Equal(t, []string{"Core", "Ring", "Rim", "Trench", "Sunrise"}, names)

	names, err = s.SystemNames("")
	require.NoError(t, err)
	assert.Equal(t, []string{"Hub", "Edge", "Deep", "Dawn"}, names)

	keywords, err := s.HonorKeywords("si")
	require.NoError(t, err)
	assert.Equal(t, []string{"Siege"}, keywords)

	factions, err := s.Factions()
	require.NoError(t, err)
	assert.Equal(t, []Faction{"Red", "Blue", "Green"}, factions)

	t.Run("capped", func(t *testing.T) {
		for i := range SuggestionLimit + 5 {
			_, err := s.AddPlanet(ctx, admin, "Dawn", fmt.Sprintf("Moon %02d", i))
			require.NoError(t, err)
		}
		names, err := s.PlanetNames("moon")
		require.NoError(t, err)
		assert.Len(t, names, SuggestionLimit)
		assert.Equal(t, "Moon 00", names[0])
	})
}

func TestServiceDrawHonor(t *testing.T) {
	s, _ := newTestService(t)
	threads := []honor.Thread{
		{ID: "1", Title: "Last stand", Tags: []string{"Siege"}},
		{ID: "2", Title: "Hunt", Tags: []string{"Raid", "Duel"}},
	}

	res, err := s.DrawHonor([]string{"siege"}, threads)
	require.NoError(t, err)
	assert.Equal(t, "1", res.Thread.ID)
	assert.Equal(t, 1, res.PoolSize)

	_, err = s.DrawHonor([]string{"Ambush"}, threads)
	require.ErrorIs(t, err, honor.ErrNotEnoughHonors)
}
