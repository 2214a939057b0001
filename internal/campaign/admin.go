package campaign

import (
	"slices"
	"strings"
)

// StatsOverride sets planet counters directly; nil fields are left alone.
type StatsOverride struct {
	Planet  string `json:"planet"`
	Faction string `json:"faction"`
	Points  *int   `json:"points,omitempty"`
	Battles *int   `json:"battles,omitempty"`
}

type StatsOverrideResult struct {
	Sector    string      `json:"sector"`
	SubSector string      `json:"sub_sector"`
	System    string      `json:"system"`
	Planet    string      `json:"planet"`
	Faction   Faction     `json:"faction"`
	Before    PlanetStats `json:"before"`
	After     PlanetStats `json:"after"`
}

// ModifyStats overrides a faction's points and battles on a planet. Changing
// battles shifts the open phase's battle counter by the same delta.
func (c *Campaign) ModifyStats(o StatsOverride) (*StatsOverrideResult, error) {
	loc, err := c.Resolve(o.Planet)
	if err != nil {
		return nil, err
	}
	if !c.IsFaction(o.Faction) {
		return nil, reject(ErrUnknownFaction, "unknown faction: %s", o.Faction)
	}
	if o.Points != nil && *o.Points < 0 {
		return nil, reject(ErrInvalidValue, "points cannot be negative: %d", *o.Points)
	}
	if o.Battles != nil && *o.Battles < 0 {
		return nil, reject(ErrInvalidValue, "battles cannot be negative: %d", *o.Battles)
	}

	f := Faction(o.Faction)
	stats := loc.Planet.StatsFor(f)
	res := &StatsOverrideResult{
		Sector:    loc.Sector.Name,
		SubSector: loc.SubSector.Name,
		System:    loc.System.Name,
		Planet:    loc.Planet.Name,
		Faction:   f,
		Before:    *stats,
	}

	if o.Points != nil {
		stats.Points = *o.Points
	}
	if o.Battles != nil {
		c.TotalBattles[f] += *o.Battles - stats.Battles
		stats.Battles = *o.Battles
	}

	res.After = *stats
	return res, nil
}

func (c *Campaign) planetExists(name string) bool {
	_, err := c.Resolve(name)
	return err == nil
}

// AddSystem creates a system holding one planet. An empty sub-sector means
// the one currently in play; the new system is active when that sub-sector is.
func (c *Campaign) AddSystem(name, firstPlanet, subSector string) (*SystemReport, error) {
	name, firstPlanet = strings.TrimSpace(name), strings.TrimSpace(firstPlanet)
	if name == "" || firstPlanet == "" {
		return nil, reject(ErrInvalidValue, "system and planet names are required")
	}
	if _, err := c.ResolveSystem(name); err == nil {
		return nil, reject(ErrSystemExists, "system %s already exists", name)
	}
	if c.planetExists(firstPlanet) {
		return nil, reject(ErrPlanetExists, "planet %s already exists", firstPlanet)
	}

	if subSector == "" {
		subSector = c.Phase.SubSector
	}
	sector, sub, err := c.ResolveSubSector(subSector)
	if err != nil {
		return nil, err
	}

	system := newSystem(name)
	system.Active = sector.Name == c.Phase.Sector && sub.Name == c.Phase.SubSector
	system.Planets.Set(firstPlanet, newPlanet(firstPlanet, c.Factions))
	sub.Systems.Set(name, system)

	report := c.systemReport(SystemLocation{Sector: sector, SubSector: sub, System: system})
	return &report, nil
}

// AddPlanet appends a planet to a system. Planet names stay unique across the
// whole hierarchy so that lookups by name are unambiguous.
func (c *Campaign) AddPlanet(system, name string) (*PlanetReport, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, reject(ErrInvalidValue, "planet name is required")
	}
	loc, err := c.ResolveSystem(system)
	if err != nil {
		return nil, err
	}
	if c.planetExists(name) {
		return nil, reject(ErrPlanetExists, "planet %s already exists", name)
	}

	planet := newPlanet(name, c.Factions)
	loc.System.Planets.Set(name, planet)

	report := c.planetReport(Location{Sector: loc.Sector, SubSector: loc.SubSector, System: loc.System, Planet: planet})
	return &report, nil
}

// SetSystemActive flips the activation flag used by the active systems report.
func (c *Campaign) SetSystemActive(name string, active bool) (*SystemReport, error) {
	loc, err := c.ResolveSystem(name)
	if err != nil {
		return nil, err
	}
	loc.System.Active = active
	report := c.systemReport(loc)
	return &report, nil
}

// RuleUpdate replaces a system's rule.
type RuleUpdate struct {
	System         string         `json:"system"`
	PVThresholds   []int          `json:"pv_thresholds"`
	BonusThreshold int            `json:"bonus_threshold"`
	Planets        map[string]int `json:"planets"`
}

func (c *Campaign) SetSystemRule(u RuleUpdate) (*SystemReport, error) {
	loc, err := c.ResolveSystem(u.System)
	if err != nil {
		return nil, err
	}
	if u.BonusThreshold < 0 {
		return nil, reject(ErrInvalidValue, "bonus threshold cannot be negative: %d", u.BonusThreshold)
	}
	for _, t := range u.PVThresholds {
		if t < 0 {
			return nil, reject(ErrInvalidValue, "victory point threshold cannot be negative: %d", t)
		}
	}
	for planet, w := range u.Planets {
		if w < 0 {
			return nil, reject(ErrInvalidValue, "weight of %s cannot be negative: %d", planet, w)
		}
	}

	weights := NewOrderedMap[int]()
	// Keep weights in planet order, then any extra names sorted.
	for planet := range loc.System.Planets.Values() {
		if w, ok := u.Planets[planet.Name]; ok {
			weights.Set(planet.Name, w)
		}
	}
	extra := make([]string, 0)
	for name := range u.Planets {
		if !weights.Has(name) {
			extra = append(extra, name)
		}
	}
	slices.Sort(extra)
	for _, name := range extra {
		weights.Set(name, u.Planets[name])
	}
	loc.System.SetRule(SystemRule{
		PVThresholds:   append([]int(nil), u.PVThresholds...),
		BonusThreshold: u.BonusThreshold,
		Weights:        weights,
	})
	report := c.systemReport(loc)
	return &report, nil
}

// SetHonorKeywords replaces the honor keyword catalogue with the sorted,
// de-duplicated tag names.
func (c *Campaign) SetHonorKeywords(tags []string) []string {
	keywords := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			keywords = append(keywords, t)
		}
	}
	slices.Sort(keywords)
	c.HonorKeywords = slices.Compact(keywords)
	return slices.Clone(c.HonorKeywords)
}
