package campaign

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"

	"github.com/tidwall/gjson"
)

// Top-level keys of the persisted campaign document.
const (
	keyFactions      = "factions"
	keySectors       = "sectors"
	keySystemRules   = "system_rules"
	keyActiveSystems = "active_systems"
	keyPhase         = "phase_courante"
	keyTotalBattles  = "total_parties"
	keyHistory       = "phases_history"
	keyHonorKeywords = "HonneurKeyWords"
	keyBackdated     = "backdated_battles"
)

// object is a JSON object that keeps its members in order.
type object []member

type member struct {
	key   string
	value any
}

func (o object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, m := range o {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(m.key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(m.value)
		if err != nil {
			return nil, fmt.Errorf("encode %q: %w", m.key, err)
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// counters encodes a per-faction counter map in roster order, followed by any
// faction no longer on the roster.
func (c *Campaign) counters(m map[Faction]int) object {
	o := make(object, 0, len(m))
	for _, f := range c.Factions {
		o = append(o, member{string(f), m[f]})
	}
	var extra []string
	for f := range m {
		if !c.IsFaction(string(f)) {
			extra = append(extra, string(f))
		}
	}
	slices.Sort(extra)
	for _, f := range extra {
		o = append(o, member{f, m[Faction(f)]})
	}
	return o
}

// planetStats encodes a planet's stats in roster order, followed by any
// faction no longer on the roster.
func (c *Campaign) planetStats(p *Planet) object {
	o := make(object, 0, len(c.Factions))
	for _, f := range c.Factions {
		s := PlanetStats{}
		if ps, ok := p.Stats[f]; ok {
			s = *ps
		}
		o = append(o, member{string(f), s})
	}
	var extra []string
	for f := range p.Stats {
		if !c.IsFaction(string(f)) {
			extra = append(extra, string(f))
		}
	}
	slices.Sort(extra)
	for _, f := range extra {
		o = append(o, member{f, *p.Stats[Faction(f)]})
	}
	return o
}

// Encode serializes the campaign to its persisted document.
func Encode(c *Campaign) ([]byte, error) {
	sectors := object{}
	rules := object{}
	active := object{}

	for sector := range c.Sectors.Values() {
		sectorDoc, rulesDoc, activeDoc := object{}, object{}, object{}
		for sub := range sector.SubSectors.Values() {
			subDoc, subRules, subActive := object{}, object{}, object{}
			for system := range sub.Systems.Values() {
				systemDoc := object{}
				for planet := range system.Planets.Values() {
					systemDoc = append(systemDoc, member{planet.Name, c.planetStats(planet)})
				}
				subDoc = append(subDoc, member{system.Name, systemDoc})
				subActive = append(subActive, member{system.Name, system.Active})

				if system.HasRule() {
					rule := system.Rule()
					weights := object{}
					for name, w := range rule.Weights.All() {
						weights = append(weights, member{name, w})
					}
					thresholds := rule.PVThresholds
					if thresholds == nil {
						thresholds = []int{}
					}
					subRules = append(subRules, member{system.Name, object{
						{"pv_thresholds", thresholds},
						{"bonus_threshold", rule.BonusThreshold},
						{"planets", weights},
					}})
				}
			}
			sectorDoc = append(sectorDoc, member{sub.Name, subDoc})
			rulesDoc = append(rulesDoc, member{sub.Name, subRules})
			activeDoc = append(activeDoc, member{sub.Name, subActive})
		}
		sectors = append(sectors, member{sector.Name, sectorDoc})
		rules = append(rules, member{sector.Name, rulesDoc})
		active = append(active, member{sector.Name, activeDoc})
	}

	history := object{}
	for _, sub := range c.History.SubSectors() {
		phases := object{}
		for _, n := range c.History.Phases(sub) {
			rec, _ := c.History.Get(sub, n)
			phases = append(phases, member{strconv.Itoa(n), object{
				{keyTotalBattles, c.counters(rec.TotalBattles)},
				{"choix_planete", c.counters(rec.PlanetChoices)},
			}})
		}
		history = append(history, member{sub, phases})
	}

	factions := make([]string, 0, len(c.Factions))
	for _, f := range c.Factions {
		factions = append(factions, string(f))
	}
	keywords := c.HonorKeywords
	if keywords == nil {
		keywords = []string{}
	}
	backdated := c.Backdated
	if backdated == nil {
		backdated = []BackdatedBattle{}
	}

	doc := object{
		{keyFactions, factions},
		{keySectors, sectors},
		{keySystemRules, rules},
		{keyActiveSystems, active},
		{keyPhase, c.Phase},
		{keyTotalBattles, c.counters(c.TotalBattles)},
		{keyHistory, history},
		{keyHonorKeywords, keywords},
		{keyBackdated, backdated},
	}
	return json.MarshalIndent(doc, "", "    ")
}

// Decode parses a persisted document. Object key order is preserved at every
// level of the hierarchy. Documents without a faction list use the given
// roster.
func Decode(data []byte, roster []Faction) (*Campaign, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("campaign document is not valid JSON")
	}
	root := gjson.ParseBytes(data)

	factions := roster
	if list := root.Get(keyFactions); list.IsArray() {
		factions = nil
		for _, f := range list.Array() {
			factions = append(factions, Faction(f.String()))
		}
	}
	if len(factions) == 0 {
		return nil, fmt.Errorf("campaign document defines no factions")
	}

	c := NewCampaign(factions)

	var decodeErr error
	root.Get(keySectors).ForEach(func(sectorName, sectorDoc gjson.Result) bool {
		sector := newSector(sectorName.String())
		sectorDoc.ForEach(func(subName, subDoc gjson.Result) bool {
			sub := newSubSector(subName.String())
			subDoc.ForEach(func(systemName, systemDoc gjson.Result) bool {
				system := newSystem(systemName.String())
				systemDoc.ForEach(func(planetName, planetDoc gjson.Result) bool {
					planet := newPlanet(planetName.String(), factions)
					planetDoc.ForEach(func(f, s gjson.Result) bool {
						*planet.StatsFor(Faction(f.String())) = decodeStats(s)
						return true
					})
					system.Planets.Set(planet.Name, planet)
					return true
				})
				sub.Systems.Set(system.Name, system)
				return true
			})
			sector.SubSectors.Set(sub.Name, sub)
			return true
		})
		c.Sectors.Set(sector.Name, sector)
		return true
	})

	forEachSystem(root.Get(keySystemRules), func(sector, sub, system string, v gjson.Result) {
		if s := c.lookupSystem(sector, sub, system); s != nil {
			s.SetRule(decodeRule(v))
		}
	})
	forEachSystem(root.Get(keyActiveSystems), func(sector, sub, system string, v gjson.Result) {
		if s := c.lookupSystem(sector, sub, system); s != nil {
			s.Active = v.Bool()
		}
	})

	root.Get(keyTotalBattles).ForEach(func(f, n gjson.Result) bool {
		c.TotalBattles[Faction(f.String())] = int(n.Int())
		return true
	})

	root.Get(keyHistory).ForEach(func(subName, phases gjson.Result) bool {
		phases.ForEach(func(number, recDoc gjson.Result) bool {
			n, err := strconv.Atoi(number.String())
			if err != nil || n < 1 {
				decodeErr = fmt.Errorf("phase history of %s has invalid phase number %q", subName.String(), number.String())
				return false
			}
			rec := newPhaseRecord(factions)
			recDoc.Get(keyTotalBattles).ForEach(func(f, v gjson.Result) bool {
				rec.TotalBattles[Faction(f.String())] = int(v.Int())
				return true
			})
			recDoc.Get("choix_planete").ForEach(func(f, v gjson.Result) bool {
				rec.PlanetChoices[Faction(f.String())] = int(v.Int())
				return true
			})
			c.History.Put(subName.String(), n, rec)
			return true
		})
		return decodeErr == nil
	})
	if decodeErr != nil {
		return nil, decodeErr
	}

	for _, kw := range root.Get(keyHonorKeywords).Array() {
		c.HonorKeywords = append(c.HonorKeywords, kw.String())
	}

	if raw := root.Get(keyBackdated); raw.IsArray() {
		if err := json.Unmarshal([]byte(raw.Raw), &c.Backdated); err != nil {
			return nil, fmt.Errorf("decode %s: %w", keyBackdated, err)
		}
	}

	if err := c.decodePhase(root.Get(keyPhase)); err != nil {
		return nil, err
	}
	return c, nil
}

// decodeStats reads planet stats, accepting the French counter names of
// older documents.
func decodeStats(s gjson.Result) PlanetStats {
	battles := s.Get("battles")
	if !battles.Exists() {
		battles = s.Get("batailles")
	}
	choices := s.Get("choices")
	if !choices.Exists() {
		choices = s.Get("choix")
	}
	return PlanetStats{
		Points:  int(s.Get("points").Int()),
		Battles: int(battles.Int()),
		Choices: int(choices.Int()),
	}
}

func decodeRule(v gjson.Result) SystemRule {
	rule := SystemRule{
		PVThresholds:   []int{},
		BonusThreshold: int(v.Get("bonus_threshold").Int()),
		Weights:        NewOrderedMap[int](),
	}
	for _, t := range v.Get("pv_thresholds").Array() {
		rule.PVThresholds = append(rule.PVThresholds, int(t.Int()))
	}
	v.Get("planets").ForEach(func(name, w gjson.Result) bool {
		rule.Weights.Set(name.String(), int(w.Int()))
		return true
	})
	return rule
}

func forEachSystem(doc gjson.Result, fn func(sector, sub, system string, v gjson.Result)) {
	doc.ForEach(func(sector, subs gjson.Result) bool {
		subs.ForEach(func(sub, systems gjson.Result) bool {
			systems.ForEach(func(system, v gjson.Result) bool {
				fn(sector.String(), sub.String(), system.String(), v)
				return true
			})
			return true
		})
		return true
	})
}

func (c *Campaign) lookupSystem(sectorName, subName, systemName string) *System {
	sector, ok := c.Sectors.Get(sectorName)
	if !ok {
		return nil
	}
	sub, ok := sector.SubSectors.Get(subName)
	if !ok {
		return nil
	}
	system, _ := sub.Systems.Get(systemName)
	return system
}

// decodePhase restores the phase pointer. A missing pointer designates the
// first sub-sector of the first sector.
func (c *Campaign) decodePhase(v gjson.Result) error {
	if v.Exists() {
		c.Phase = Phase{
			Number:    int(v.Get("phase").Int()),
			Sector:    v.Get("secteur").String(),
			SubSector: v.Get("sous_secteur").String(),
		}
	}

	if c.Phase.Sector == "" {
		for sector := range c.Sectors.Values() {
			c.Phase.Sector = sector.Name
			break
		}
	}
	if c.Phase.SubSector == "" {
		if sector, ok := c.Sectors.Get(c.Phase.Sector); ok {
			for sub := range sector.SubSectors.Values() {
				c.Phase.SubSector = sub.Name
				break
			}
		}
	}
	if c.Phase.Number < 1 {
		c.Phase.Number = c.LocalPhase()
	}

	if c.Sectors.Len() == 0 {
		return nil
	}
	if _, _, err := c.currentSubSector(); err != nil {
		return fmt.Errorf("phase pointer is invalid: %w", err)
	}
	return nil
}
