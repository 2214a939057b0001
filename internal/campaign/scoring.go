package campaign

// Leaders returns the factions holding the strict maximum of points on a
// planet, in roster order. All-zero planets have no leader and ties keep
// every tied faction.
func (c *Campaign) Leaders(p *Planet) []Faction {
	best := 0
	for _, f := range c.Factions {
		if s, ok := p.Stats[f]; ok && s.Points > best {
			best = s.Points
		}
	}
	if best == 0 {
		return nil
	}
	var leaders []Faction
	for _, f := range c.Factions {
		if s, ok := p.Stats[f]; ok && s.Points == best {
			leaders = append(leaders, f)
		}
	}
	return leaders
}

// SoleLeader returns the planet's leader when exactly one faction leads.
func (c *Campaign) SoleLeader(p *Planet) (Faction, bool) {
	leaders := c.Leaders(p)
	if len(leaders) != 1 {
		return "", false
	}
	return leaders[0], true
}

type FactionProgress struct {
	Faction          Faction `json:"faction"`
	Points           int     `json:"points"`
	ControlledWeight int     `json:"controlled_weight"`
	VictoryPoints    int     `json:"victory_points"`
}

type SystemProgress struct {
	Factions   []FactionProgress `json:"factions"`
	BonusOwner Faction           `json:"bonus_owner,omitempty"`
}

// VictoryPoints counts the thresholds a weight reaches; each threshold is an
// independent gate.
func VictoryPoints(weight int, thresholds []int) int {
	n := 0
	for _, t := range thresholds {
		if weight >= t {
			n++
		}
	}
	return n
}

// Progress computes victory point progress and bonus ownership of a system.
func (c *Campaign) Progress(s *System) SystemProgress {
	rule := s.Rule()
	points := make(map[Faction]int, len(c.Factions))
	weights := make(map[Faction]int, len(c.Factions))

	for planet := range s.Planets.Values() {
		for f, stats := range planet.Stats {
			points[f] += stats.Points
		}
		if leader, ok := c.SoleLeader(planet); ok {
			weights[leader] += rule.WeightOf(planet.Name)
		}
	}

	progress := SystemProgress{Factions: make([]FactionProgress, 0, len(c.Factions))}
	for _, f := range c.Factions {
		progress.Factions = append(progress.Factions, FactionProgress{
			Faction:          f,
			Points:           points[f],
			ControlledWeight: weights[f],
			VictoryPoints:    VictoryPoints(weights[f], rule.PVThresholds),
		})
	}
	progress.BonusOwner = c.bonusOwner(points, rule.BonusThreshold)
	return progress
}

// bonusOwner is the strict points leader of a system once at or above the
// threshold; a tie at the top yields no owner.
func (c *Campaign) bonusOwner(points map[Faction]int, threshold int) Faction {
	var owner Faction
	best, tied := 0, false
	for _, f := range c.Factions {
		switch p := points[f]; {
		case owner == "" || p > best:
			owner, best, tied = f, p, false
		case p == best:
			tied = true
		}
	}
	if owner == "" || tied || best < threshold {
		return ""
	}
	return owner
}

type FactionStats struct {
	Faction Faction `json:"faction"`
	PlanetStats
}

type PlanetReport struct {
	Sector    string         `json:"sector"`
	SubSector string         `json:"sub_sector"`
	System    string         `json:"system"`
	Planet    string         `json:"planet"`
	Weight    int            `json:"weight"`
	Stats     []FactionStats `json:"stats"`
	Leaders   []Faction      `json:"leaders"`
}

type RuleView struct {
	PVThresholds   []int          `json:"pv_thresholds"`
	BonusThreshold int            `json:"bonus_threshold"`
	Planets        map[string]int `json:"planets"`
	Default        bool           `json:"default"`
}

type SystemReport struct {
	Sector    string         `json:"sector"`
	SubSector string         `json:"sub_sector"`
	System    string         `json:"system"`
	Active    bool           `json:"active"`
	Rule      RuleView       `json:"rule"`
	Planets   []PlanetReport `json:"planets"`
	Progress  SystemProgress `json:"progress"`
}

func (c *Campaign) planetReport(loc Location) PlanetReport {
	report := PlanetReport{
		Sector:    loc.Sector.Name,
		SubSector: loc.SubSector.Name,
		System:    loc.System.Name,
		Planet:    loc.Planet.Name,
		Weight:    loc.System.Rule().WeightOf(loc.Planet.Name),
		Stats:     make([]FactionStats, 0, len(c.Factions)),
		Leaders:   c.Leaders(loc.Planet),
	}
	for _, f := range c.Factions {
		stats := PlanetStats{}
		if s, ok := loc.Planet.Stats[f]; ok {
			stats = *s
		}
		report.Stats = append(report.Stats, FactionStats{Faction: f, PlanetStats: stats})
	}
	return report
}

func (c *Campaign) PlanetReport(name string) (*PlanetReport, error) {
	loc, err := c.Resolve(name)
	if err != nil {
		return nil, err
	}
	report := c.planetReport(loc)
	return &report, nil
}

func (c *Campaign) systemReport(loc SystemLocation) SystemReport {
	rule := loc.System.Rule()
	view := RuleView{
		PVThresholds:   append([]int(nil), rule.PVThresholds...),
		BonusThreshold: rule.BonusThreshold,
		Planets:        make(map[string]int, rule.Weights.Len()),
		Default:        !loc.System.HasRule(),
	}
	for planet, w := range rule.Weights.All() {
		view.Planets[planet] = w
	}

	report := SystemReport{
		Sector:    loc.Sector.Name,
		SubSector: loc.SubSector.Name,
		System:    loc.System.Name,
		Active:    loc.System.Active,
		Rule:      view,
		Planets:   make([]PlanetReport, 0, loc.System.Planets.Len()),
		Progress:  c.Progress(loc.System),
	}
	for planet := range loc.System.Planets.Values() {
		report.Planets = append(report.Planets, c.planetReport(Location{
			Sector:    loc.Sector,
			SubSector: loc.SubSector,
			System:    loc.System,
			Planet:    planet,
		}))
	}
	return report
}

func (c *Campaign) SystemReport(name string) (*SystemReport, error) {
	loc, err := c.ResolveSystem(name)
	if err != nil {
		return nil, err
	}
	report := c.systemReport(loc)
	return &report, nil
}

// ActiveSystemsReport reports every system flagged active, in hierarchy order.
func (c *Campaign) ActiveSystemsReport() []SystemReport {
	reports := []SystemReport{}
	for loc := range c.Systems() {
		if loc.System.Active {
			reports = append(reports, c.systemReport(loc))
		}
	}
	return reports
}

type FactionReport struct {
	Faction          Faction  `json:"faction"`
	LifetimeBattles  int      `json:"lifetime_battles"`
	PhaseBattles     int      `json:"phase_battles"`
	PhaseChoices     int      `json:"phase_choices"`
	LedPlanets       int      `json:"led_planets"`
	InfluenceSystems []string `json:"influence_systems"`
}

// FactionReport aggregates per-faction activity. An empty name reports every
// faction of the roster.
func (c *Campaign) FactionReport(name string) ([]FactionReport, error) {
	factions := c.Factions
	if name != "" {
		if !c.IsFaction(name) {
			return nil, reject(ErrUnknownFaction, "unknown faction: %s", name)
		}
		factions = []Faction{Faction(name)}
	}

	reports := make([]FactionReport, 0, len(factions))
	for _, f := range factions {
		report := FactionReport{
			Faction:          f,
			LifetimeBattles:  c.History.TotalBattles(f) + c.TotalBattles[f],
			PhaseBattles:     c.TotalBattles[f],
			InfluenceSystems: []string{},
		}
		for loc := range c.Systems() {
			led := 0
			for planet := range loc.System.Planets.Values() {
				if s, ok := planet.Stats[f]; ok {
					report.PhaseChoices += s.Choices
				}
				if leader, ok := c.SoleLeader(planet); ok && leader == f {
					led++
				}
			}
			if led > 0 {
				report.LedPlanets += led
				report.InfluenceSystems = append(report.InfluenceSystems, loc.System.Name)
			}
		}
		reports = append(reports, report)
	}
	return reports, nil
}
