package campaign

import (
	"slices"
	"time"
)

// Faction is one of the fixed competing sides of the campaign.
type Faction string

// TieMarker is the winner value reporting a drawn battle.
const TieMarker = "Egalite"

type PlanetStats struct {
	Points  int `json:"points"`
	Battles int `json:"battles"`
	Choices int `json:"choices"`
}

type Planet struct {
	Name  string
	Stats map[Faction]*PlanetStats
}

func newPlanet(name string, factions []Faction) *Planet {
	p := &Planet{Name: name, Stats: make(map[Faction]*PlanetStats, len(factions))}
	for _, f := range factions {
		p.Stats[f] = &PlanetStats{}
	}
	return p
}

// StatsFor returns the stats of a faction, creating an empty record for a
// faction added to the roster after the planet was created.
func (p *Planet) StatsFor(f Faction) *PlanetStats {
	s, ok := p.Stats[f]
	if !ok {
		s = &PlanetStats{}
		p.Stats[f] = s
	}
	return s
}

// SystemRule configures how planet control turns into victory points.
type SystemRule struct {
	PVThresholds   []int
	BonusThreshold int
	// Weights holds per-planet weights; unlisted planets weigh DefaultPlanetWeight.
	Weights *OrderedMap[int]
}

const DefaultPlanetWeight = 1

// DefaultRule is the rule applied to systems with no configured rule.
func DefaultRule() SystemRule {
	return SystemRule{
		PVThresholds:   []int{5},
		BonusThreshold: 3,
		Weights:        NewOrderedMap[int](),
	}
}

func (r SystemRule) WeightOf(planet string) int {
	if r.Weights != nil {
		if w, ok := r.Weights.Get(planet); ok {
			return w
		}
	}
	return DefaultPlanetWeight
}

type System struct {
	Name    string
	Active  bool
	Planets *OrderedMap[*Planet]
	// rule is nil when the system relies on DefaultRule.
	rule *SystemRule
}

func newSystem(name string) *System {
	return &System{Name: name, Planets: NewOrderedMap[*Planet]()}
}

// Rule resolves the system's rule, falling back to DefaultRule.
func (s *System) Rule() SystemRule {
	if s.rule == nil {
		return DefaultRule()
	}
	return *s.rule
}

func (s *System) HasRule() bool {
	return s.rule != nil
}

func (s *System) SetRule(rule SystemRule) {
	if rule.Weights == nil {
		rule.Weights = NewOrderedMap[int]()
	}
	s.rule = &rule
}

type SubSector struct {
	Name    string
	Systems *OrderedMap[*System]
}

func newSubSector(name string) *SubSector {
	return &SubSector{Name: name, Systems: NewOrderedMap[*System]()}
}

type Sector struct {
	Name       string
	SubSectors *OrderedMap[*SubSector]
}

func newSector(name string) *Sector {
	return &Sector{Name: name, SubSectors: NewOrderedMap[*SubSector]()}
}

// Phase points at the locally active sub-sector and its local phase number.
type Phase struct {
	Number    int    `json:"phase"`
	Sector    string `json:"secteur"`
	SubSector string `json:"sous_secteur"`
}

// PhaseRecord is the snapshot archived when a phase closes.
type PhaseRecord struct {
	TotalBattles  map[Faction]int `json:"total_parties"`
	PlanetChoices map[Faction]int `json:"choix_planete"`
}

func newPhaseRecord(factions []Faction) *PhaseRecord {
	r := &PhaseRecord{
		TotalBattles:  make(map[Faction]int, len(factions)),
		PlanetChoices: make(map[Faction]int, len(factions)),
	}
	for _, f := range factions {
		r.TotalBattles[f] = 0
		r.PlanetChoices[f] = 0
	}
	return r
}

func (r *PhaseRecord) clone() *PhaseRecord {
	c := &PhaseRecord{
		TotalBattles:  make(map[Faction]int, len(r.TotalBattles)),
		PlanetChoices: make(map[Faction]int, len(r.PlanetChoices)),
	}
	for f, n := range r.TotalBattles {
		c.TotalBattles[f] = n
	}
	for f, n := range r.PlanetChoices {
		c.PlanetChoices[f] = n
	}
	return c
}

// BackdatedBattle is the audit entry left by a battle recorded into an
// already archived phase.
type BackdatedBattle struct {
	ID           string    `json:"id"`
	RecordedAt   time.Time `json:"recorded_at"`
	Actor        string    `json:"actor,omitempty"`
	SubSector    string    `json:"sous_secteur"`
	Phase        int       `json:"phase"`
	Planet       string    `json:"planet"`
	Winner       string    `json:"winner"`
	Choice       Faction   `json:"choice"`
	Participants []Faction `json:"participants"`
}

// Campaign is the whole tracked game state.
type Campaign struct {
	Factions      []Faction
	Sectors       *OrderedMap[*Sector]
	Phase         Phase
	TotalBattles  map[Faction]int
	History       *PhaseHistory
	HonorKeywords []string
	Backdated     []BackdatedBattle
}

func NewCampaign(factions []Faction) *Campaign {
	c := &Campaign{
		Factions:     slices.Clone(factions),
		Sectors:      NewOrderedMap[*Sector](),
		TotalBattles: make(map[Faction]int, len(factions)),
		History:      NewPhaseHistory(),
	}
	for _, f := range factions {
		c.TotalBattles[f] = 0
	}
	return c
}

func (c *Campaign) IsFaction(name string) bool {
	return slices.Contains(c.Factions, Faction(name))
}
