package campaign

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed seed/default.yaml
var defaultSeed []byte

// Seed describes the hierarchy a campaign starts from when nothing has been
// persisted yet.
type Seed struct {
	Factions      []string     `yaml:"factions"`
	Active        SeedActive   `yaml:"active"`
	Sectors       []SeedSector `yaml:"sectors"`
	HonorKeywords []string     `yaml:"honor_keywords"`
}

type SeedActive struct {
	Sector    string `yaml:"sector"`
	SubSector string `yaml:"sub_sector"`
}

type SeedSector struct {
	Name       string          `yaml:"name"`
	SubSectors []SeedSubSector `yaml:"sub_sectors"`
}

type SeedSubSector struct {
	Name    string       `yaml:"name"`
	Systems []SeedSystem `yaml:"systems"`
}

type SeedSystem struct {
	Name    string       `yaml:"name"`
	Rule    *SeedRule    `yaml:"rule,omitempty"`
	Planets []SeedPlanet `yaml:"planets"`
}

type SeedRule struct {
	PVThresholds   []int `yaml:"pv_thresholds"`
	BonusThreshold int   `yaml:"bonus_threshold"`
}

// SeedPlanet is either a bare planet name or a {name, weight} mapping.
type SeedPlanet struct {
	Name   string `yaml:"name"`
	Weight *int   `yaml:"weight,omitempty"`
}

func (p *SeedPlanet) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		p.Name = value.Value
		return nil
	}
	type plain SeedPlanet
	return value.Decode((*plain)(p))
}

// DefaultSeed returns the embedded campaign layout.
func DefaultSeed() (*Seed, error) {
	return ParseSeed(defaultSeed)
}

// LoadSeed reads a seed file; an empty path selects the embedded layout.
func LoadSeed(path string) (*Seed, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultSeed()
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed %s: %w", path, err)
	}
	seed, err := ParseSeed(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return seed, nil
}

func ParseSeed(b []byte) (*Seed, error) {
	var seed Seed
	if err := yaml.Unmarshal(b, &seed); err != nil {
		return nil, fmt.Errorf("parse seed: %w", err)
	}
	if err := seed.Validate(); err != nil {
		return nil, err
	}
	return &seed, nil
}

// Roster is the seed's faction list.
func (s *Seed) Roster() []Faction {
	roster := make([]Faction, 0, len(s.Factions))
	for _, f := range s.Factions {
		roster = append(roster, Faction(f))
	}
	return roster
}

// Validate checks that names are unique and the active sub-sector exists.
func (s *Seed) Validate() error {
	if len(s.Factions) == 0 {
		return fmt.Errorf("seed: at least one faction is required")
	}
	seen := make(map[string]bool)
	for _, f := range s.Factions {
		if f == "" || f == TieMarker || seen[f] {
			return fmt.Errorf("seed: invalid or duplicate faction %q", f)
		}
		seen[f] = true
	}
	if len(s.Sectors) == 0 {
		return fmt.Errorf("seed: at least one sector is required")
	}

	systems := make(map[string]bool)
	planets := make(map[string]bool)
	activeFound := s.Active.Sector == "" && s.Active.SubSector == ""
	for _, sector := range s.Sectors {
		if sector.Name == "" || len(sector.SubSectors) == 0 {
			return fmt.Errorf("seed: sector %q needs a name and sub-sectors", sector.Name)
		}
		for _, sub := range sector.SubSectors {
			if sub.Name == "" {
				return fmt.Errorf("seed: sector %s has an unnamed sub-sector", sector.Name)
			}
			if sector.Name == s.Active.Sector && sub.Name == s.Active.SubSector {
				activeFound = true
			}
			for _, system := range sub.Systems {
				if system.Name == "" || systems[system.Name] {
					return fmt.Errorf("seed: invalid or duplicate system %q", system.Name)
				}
				systems[system.Name] = true
				for _, planet := range system.Planets {
					if planet.Name == "" || planets[planet.Name] {
						return fmt.Errorf("seed: invalid or duplicate planet %q", planet.Name)
					}
					if planet.Weight != nil && *planet.Weight < 0 {
						return fmt.Errorf("seed: planet %s has a negative weight", planet.Name)
					}
					planets[planet.Name] = true
				}
			}
		}
	}
	if !activeFound {
		return fmt.Errorf("seed: active sub-sector %s/%s does not exist", s.Active.Sector, s.Active.SubSector)
	}
	return nil
}

// Campaign builds a fresh campaign at phase 1 of the active sub-sector, whose
// systems start active.
func (s *Seed) Campaign() *Campaign {
	c := NewCampaign(s.Roster())
	c.HonorKeywords = append([]string(nil), s.HonorKeywords...)

	active := s.Active
	if active.Sector == "" {
		active.Sector = s.Sectors[0].Name
		active.SubSector = s.Sectors[0].SubSectors[0].Name
	}

	for _, seedSector := range s.Sectors {
		sector := newSector(seedSector.Name)
		for _, seedSub := range seedSector.SubSectors {
			sub := newSubSector(seedSub.Name)
			isActive := seedSector.Name == active.Sector && seedSub.Name == active.SubSector
			for _, seedSystem := range seedSub.Systems {
				sub.Systems.Set(seedSystem.Name, seedSystem.build(c.Factions, isActive))
			}
			sector.SubSectors.Set(sub.Name, sub)
		}
		c.Sectors.Set(sector.Name, sector)
	}

	c.Phase = Phase{Number: 1, Sector: active.Sector, SubSector: active.SubSector}
	return c
}

func (s SeedSystem) build(factions []Faction, active bool) *System {
	system := newSystem(s.Name)
	system.Active = active

	weights := NewOrderedMap[int]()
	for _, p := range s.Planets {
		system.Planets.Set(p.Name, newPlanet(p.Name, factions))
		if p.Weight != nil {
			weights.Set(p.Name, *p.Weight)
		}
	}

	switch {
	case s.Rule != nil:
		system.SetRule(SystemRule{
			PVThresholds:   append([]int{}, s.Rule.PVThresholds...),
			BonusThreshold: s.Rule.BonusThreshold,
			Weights:        weights,
		})
	case weights.Len() > 0:
		rule := DefaultRule()
		rule.Weights = weights
		system.SetRule(rule)
	}
	return system
}
