package campaign

import (
	"context"
	"iter"
	"log/slog"
	"slices"
	"strings"
	"time"

	"campaign-server/internal/honor"
	"campaign-server/internal/shared/errors"

	"github.com/google/uuid"
)

// SuggestionLimit caps the names returned by the lookup endpoints.
const SuggestionLimit = 25

// Actor is the caller of a command.
type Actor struct {
	ID    string
	Name  string
	Admin bool
}

// Mutation is the payload of a state-changing command. Persisted is false
// when the change applied in memory but could not be saved.
type Mutation[T any] struct {
	Result    T    `json:"result"`
	Persisted bool `json:"persisted"`
}

type PhaseStatus struct {
	Phase           Phase           `json:"current"`
	TotalWar        bool            `json:"total_war"`
	TotalBattles    map[Faction]int `json:"total_parties"`
	RotationTargets []string        `json:"rotation_targets"`
}

type Service struct {
	store  *Store
	drawer *honor.Drawer
	now    func() time.Time
	newID  func() string
	logger *slog.Logger
}

func NewService(store *Store, drawer *honor.Drawer, logger *slog.Logger) *Service {
	logger.Debug("Initializing campaign service")
	return &Service{
		store:  store,
		drawer: drawer,
		now:    func() time.Time { return time.Now().UTC() },
		newID:  uuid.NewString,
		logger: logger,
	}
}

func mutate[T any](ctx context.Context, s *Service, op string, fn func(c *Campaign) (T, error)) (*Mutation[T], error) {
	var result T
	persisted, err := s.store.Mutate(ctx, op, func(c *Campaign) error {
		r, err := fn(c)
		if err != nil {
			return err
		}
		result = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &Mutation[T]{Result: result, Persisted: persisted}, nil
}

func view[T any](s *Service, fn func(c *Campaign) (T, error)) (T, error) {
	var result T
	err := s.store.View(func(c *Campaign) error {
		r, err := fn(c)
		if err != nil {
			return err
		}
		result = r
		return nil
	})
	return result, err
}

func (s *Service) requireAdmin(actor Actor, logger *slog.Logger) error {
	if actor.Admin {
		return nil
	}
	logger.Warn("Admin operation refused", "actor", actor.Name)
	return errors.Forbidden("admin role required")
}

func (s *Service) RecordBattle(ctx context.Context, actor Actor, b Battle) (*Mutation[*BattleResult], error) {
	logger := s.logger.With("component", "campaign_service", "operation", "record_battle",
		"planet", b.Planet, "actor", actor.Name)

	m, err := mutate(ctx, s, "record_battle", func(c *Campaign) (*BattleResult, error) {
		return c.RecordBattle(b)
	})
	if err != nil {
		logger.Debug("Battle rejected", "reason", errors.GetCode(err), "error", err)
		return nil, err
	}

	logger.Info("Battle recorded",
		"winner", m.Result.Winner,
		"sub_sector", m.Result.Phase.SubSector,
		"phase", m.Result.Phase.Number,
		"persisted", m.Persisted)
	return m, nil
}

// RecordBackdatedBattle writes a battle into a closed phase. It is an admin
// operation and leaves an audit entry.
func (s *Service) RecordBackdatedBattle(ctx context.Context, actor Actor, b Battle, target PhaseRef) (*Mutation[*BattleResult], error) {
	logger := s.logger.With("component", "campaign_service", "operation", "record_backdated_battle",
		"planet", b.Planet, "actor", actor.Name, "target_sub_sector", target.SubSector, "target_phase", target.Number)

	if err := s.requireAdmin(actor, logger); err != nil {
		return nil, err
	}

	audit := Audit{ID: s.newID(), Actor: actor.Name, At: s.now()}
	m, err := mutate(ctx, s, "record_backdated_battle", func(c *Campaign) (*BattleResult, error) {
		return c.RecordBackdatedBattle(b, target, audit)
	})
	if err != nil {
		logger.Debug("Back-dated battle rejected", "reason", errors.GetCode(err), "error", err)
		return nil, err
	}

	if m.Result.Backdated {
		logger.Warn("Battle written into archived phase",
			"audit_id", m.Result.AuditID,
			"persisted", m.Persisted)
	} else {
		logger.Info("Back-dated battle targeted the open phase", "persisted", m.Persisted)
	}
	return m, nil
}

func (s *Service) ClosePhase(ctx context.Context, actor Actor, newSubSector string) (*Mutation[*PhaseTransition], error) {
	logger := s.logger.With("component", "campaign_service", "operation", "close_phase",
		"actor", actor.Name, "new_sub_sector", newSubSector)

	if err := s.requireAdmin(actor, logger); err != nil {
		return nil, err
	}

	m, err := mutate(ctx, s, "close_phase", func(c *Campaign) (*PhaseTransition, error) {
		return c.ClosePhase(strings.TrimSpace(newSubSector))
	})
	if err != nil {
		logger.Debug("Phase close rejected", "reason", errors.GetCode(err), "error", err)
		return nil, err
	}

	logger.Info("Phase closed",
		"closed_sub_sector", m.Result.Closed.SubSector,
		"closed_phase", m.Result.Closed.Number,
		"rotated", m.Result.Rotated,
		"current_sub_sector", m.Result.Current.SubSector,
		"current_phase", m.Result.Current.Number,
		"persisted", m.Persisted)
	return m, nil
}

func (s *Service) CurrentPhase() (*PhaseStatus, error) {
	return view(s, func(c *Campaign) (*PhaseStatus, error) {
		status := &PhaseStatus{
			Phase:           c.Phase,
			TotalWar:        IsTotalWar(c.LocalPhase()),
			TotalBattles:    make(map[Faction]int, len(c.Factions)),
			RotationTargets: []string{},
		}
		for _, f := range c.Factions {
			status.TotalBattles[f] = c.TotalBattles[f]
		}
		if sector, ok := c.Sectors.Get(c.Phase.Sector); ok {
			for _, name := range sector.SubSectors.Keys() {
				if name != c.Phase.SubSector {
					status.RotationTargets = append(status.RotationTargets, name)
				}
			}
		}
		return status, nil
	})
}

// PhaseHistory returns an archived phase; an empty sub-sector means the
// current one.
func (s *Service) PhaseHistory(subSector string, number int) (*PhaseRecord, error) {
	return view(s, func(c *Campaign) (*PhaseRecord, error) {
		return c.PhaseRecord(subSector, number)
	})
}

// ArchivedPhases lists the closed phase numbers of a sub-sector.
func (s *Service) ArchivedPhases(subSector string) ([]int, error) {
	return view(s, func(c *Campaign) ([]int, error) {
		if subSector == "" {
			subSector = c.Phase.SubSector
		}
		if _, _, err := c.ResolveSubSector(subSector); err != nil {
			return nil, err
		}
		phases := c.History.Phases(subSector)
		if phases == nil {
			phases = []int{}
		}
		return phases, nil
	})
}

func (s *Service) PlanetReport(name string) (*PlanetReport, error) {
	return view(s, func(c *Campaign) (*PlanetReport, error) {
		return c.PlanetReport(name)
	})
}

func (s *Service) SystemReport(name string) (*SystemReport, error) {
	return view(s, func(c *Campaign) (*SystemReport, error) {
		return c.SystemReport(name)
	})
}

func (s *Service) ActiveSystemsReport() ([]SystemReport, error) {
	return view(s, func(c *Campaign) ([]SystemReport, error) {
		return c.ActiveSystemsReport(), nil
	})
}

func (s *Service) FactionReport(name string) ([]FactionReport, error) {
	return view(s, func(c *Campaign) ([]FactionReport, error) {
		return c.FactionReport(name)
	})
}

func (s *Service) ModifyStats(ctx context.Context, actor Actor, o StatsOverride) (*Mutation[*StatsOverrideResult], error) {
	logger := s.logger.With("component", "campaign_service", "operation", "modify_stats",
		"actor", actor.Name, "planet", o.Planet, "faction", o.Faction)

	if err := s.requireAdmin(actor, logger); err != nil {
		return nil, err
	}

	m, err := mutate(ctx, s, "modify_stats", func(c *Campaign) (*StatsOverrideResult, error) {
		return c.ModifyStats(o)
	})
	if err != nil {
		logger.Debug("Stats override rejected", "reason", errors.GetCode(err), "error", err)
		return nil, err
	}

	logger.Info("Planet stats overridden",
		"points_before", m.Result.Before.Points,
		"points_after", m.Result.After.Points,
		"battles_before", m.Result.Before.Battles,
		"battles_after", m.Result.After.Battles,
		"persisted", m.Persisted)
	return m, nil
}

func (s *Service) AddSystem(ctx context.Context, actor Actor, name, firstPlanet, subSector string) (*Mutation[*SystemReport], error) {
	logger := s.logger.With("component", "campaign_service", "operation", "add_system",
		"actor", actor.Name, "system", name, "planet", firstPlanet)

	if err := s.requireAdmin(actor, logger); err != nil {
		return nil, err
	}

	m, err := mutate(ctx, s, "add_system", func(c *Campaign) (*SystemReport, error) {
		return c.AddSystem(name, firstPlanet, subSector)
	})
	if err != nil {
		logger.Debug("System creation rejected", "reason", errors.GetCode(err), "error", err)
		return nil, err
	}

	logger.Info("System added", "sub_sector", m.Result.SubSector, "active", m.Result.Active, "persisted", m.Persisted)
	return m, nil
}

func (s *Service) AddPlanet(ctx context.Context, actor Actor, system, name string) (*Mutation[*PlanetReport], error) {
	logger := s.logger.With("component", "campaign_service", "operation", "add_planet",
		"actor", actor.Name, "system", system, "planet", name)

	if err := s.requireAdmin(actor, logger); err != nil {
		return nil, err
	}

	m, err := mutate(ctx, s, "add_planet", func(c *Campaign) (*PlanetReport, error) {
		return c.AddPlanet(system, name)
	})
	if err != nil {
		logger.Debug("Planet creation rejected", "reason", errors.GetCode(err), "error", err)
		return nil, err
	}

	logger.Info("Planet added", "persisted", m.Persisted)
	return m, nil
}

func (s *Service) SetSystemActive(ctx context.Context, actor Actor, name string, active bool) (*Mutation[*SystemReport], error) {
	logger := s.logger.With("component", "campaign_service", "operation", "toggle_system_active",
		"actor", actor.Name, "system", name, "active", active)

	if err := s.requireAdmin(actor, logger); err != nil {
		return nil, err
	}

	m, err := mutate(ctx, s, "toggle_system_active", func(c *Campaign) (*SystemReport, error) {
		return c.SetSystemActive(name, active)
	})
	if err != nil {
		logger.Debug("System toggle rejected", "reason", errors.GetCode(err), "error", err)
		return nil, err
	}

	logger.Info("System activation changed", "persisted", m.Persisted)
	return m, nil
}

func (s *Service) SetSystemRule(ctx context.Context, actor Actor, u RuleUpdate) (*Mutation[*SystemReport], error) {
	logger := s.logger.With("component", "campaign_service", "operation", "set_system_rule",
		"actor", actor.Name, "system", u.System)

	if err := s.requireAdmin(actor, logger); err != nil {
		return nil, err
	}

	m, err := mutate(ctx, s, "set_system_rule", func(c *Campaign) (*SystemReport, error) {
		return c.SetSystemRule(u)
	})
	if err != nil {
		logger.Debug("System rule rejected", "reason", errors.GetCode(err), "error", err)
		return nil, err
	}

	logger.Info("System rule updated",
		"pv_thresholds", u.PVThresholds,
		"bonus_threshold", u.BonusThreshold,
		"persisted", m.Persisted)
	return m, nil
}

// suggest filters names by a case-insensitive substring, keeping order.
func suggest(names iter.Seq[string], query string) []string {
	query = strings.ToLower(strings.TrimSpace(query))
	matches := []string{}
	for name := range names {
		if strings.Contains(strings.ToLower(name), query) {
			matches = append(matches, name)
			if len(matches) == SuggestionLimit {
				break
			}
		}
	}
	return matches
}

func (s *Service) PlanetNames(query string) ([]string, error) {
	return view(s, func(c *Campaign) ([]string, error) {
		return suggest(c.AllPlanetNames(), query), nil
	})
}

func (s *Service) SystemNames(query string) ([]string, error) {
	return view(s, func(c *Campaign) ([]string, error) {
		return suggest(c.AllSystemNames(), query), nil
	})
}

func (s *Service) Factions() ([]Faction, error) {
	return view(s, func(c *Campaign) ([]Faction, error) {
		return slices.Clone(c.Factions), nil
	})
}

func (s *Service) HonorKeywords(query string) ([]string, error) {
	return view(s, func(c *Campaign) ([]string, error) {
		return suggest(slices.Values(c.HonorKeywords), query), nil
	})
}

// RefreshHonorKeywords replaces the keyword catalogue with the tags
// currently available on the honor boards.
func (s *Service) RefreshHonorKeywords(ctx context.Context, actor Actor, tagSets ...[]string) (*Mutation[[]string], error) {
	logger := s.logger.With("component", "campaign_service", "operation", "refresh_honor_keywords", "actor", actor.Name)

	if err := s.requireAdmin(actor, logger); err != nil {
		return nil, err
	}

	tags := honor.CollectTags(tagSets...)
	if len(tags) == 0 {
		return nil, reject(ErrInvalidValue, "no tags found on the honor boards")
	}

	m, err := mutate(ctx, s, "refresh_honor_keywords", func(c *Campaign) ([]string, error) {
		return c.SetHonorKeywords(tags), nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Honor keywords refreshed", "count", len(m.Result), "persisted", m.Persisted)
	return m, nil
}

// DrawHonor picks a random thread among those matching the keywords.
func (s *Service) DrawHonor(keywords []string, threads []honor.Thread) (*honor.Result, error) {
	return s.drawer.Draw(keywords, threads)
}

// Reload replaces the in-memory campaign with the persisted document.
func (s *Service) Reload(ctx context.Context, actor Actor) error {
	logger := s.logger.With("component", "campaign_service", "operation", "reload", "actor", actor.Name)

	if err := s.requireAdmin(actor, logger); err != nil {
		return err
	}
	return s.store.Reload(ctx)
}

func (s *Service) Backend() string {
	return s.store.Backend()
}
