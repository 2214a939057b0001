package campaign

// TotalWarInterval is the cadence of total war phases; closing one of them
// rotates the campaign to another sub-sector.
const TotalWarInterval = 3

// PhaseTransition describes a successful phase close.
type PhaseTransition struct {
	Closed   PhaseRef     `json:"closed"`
	Record   *PhaseRecord `json:"record"`
	Current  Phase        `json:"current"`
	Rotated  bool         `json:"rotated"`
	TotalWar bool         `json:"total_war"`
}

// IsTotalWar reports whether closing local phase n requires a rotation.
func IsTotalWar(n int) bool {
	return n%TotalWarInterval == 0
}

// LocalPhase is the number the next close of the current sub-sector archives.
func (c *Campaign) LocalPhase() int {
	return c.History.MaxPhase(c.Phase.SubSector) + 1
}

// ClosePhase archives the open phase of the current sub-sector and opens the
// next one. newSubSector must be given exactly when the closing phase is a
// total war phase and must name a sub-sector of the current sector.
func (c *Campaign) ClosePhase(newSubSector string) (*PhaseTransition, error) {
	sector, current, err := c.currentSubSector()
	if err != nil {
		return nil, err
	}

	local := c.LocalPhase()
	totalWar := IsTotalWar(local)

	var next *SubSector
	switch {
	case totalWar && newSubSector == "":
		return nil, reject(ErrRotationRequired, "phase %d of %s is a total war phase, a new sub-sector is required", local, current.Name)
	case !totalWar && newSubSector != "":
		return nil, reject(ErrRotationNotAllowed, "phase %d of %s is not a total war phase, the sub-sector cannot change", local, current.Name)
	case totalWar:
		sub, ok := sector.SubSectors.Get(newSubSector)
		if !ok {
			return nil, reject(ErrUnknownSubSectorTarget, "sub-sector %s is not part of sector %s", newSubSector, sector.Name)
		}
		next = sub
	}

	rec := newPhaseRecord(c.Factions)
	for _, f := range c.Factions {
		rec.TotalBattles[f] = c.TotalBattles[f]
	}
	for planet := range subSectorPlanets(current) {
		for f, stats := range planet.Stats {
			rec.PlanetChoices[f] += stats.Choices
		}
	}
	c.History.Put(current.Name, local, rec)

	for _, f := range c.Factions {
		c.TotalBattles[f] = 0
	}
	for planet := range subSectorPlanets(current) {
		for _, stats := range planet.Stats {
			stats.Battles = 0
			stats.Choices = 0
		}
	}

	t := &PhaseTransition{
		Closed:   PhaseRef{SubSector: current.Name, Number: local},
		Record:   rec.clone(),
		TotalWar: totalWar,
	}

	if next != nil {
		for system := range current.Systems.Values() {
			system.Active = false
		}
		for system := range next.Systems.Values() {
			system.Active = true
		}
		c.Phase = Phase{
			Sector:    sector.Name,
			SubSector: next.Name,
			Number:    c.History.MaxPhase(next.Name) + 1,
		}
		t.Rotated = true
	} else {
		c.Phase.Number = local + 1
	}

	t.Current = c.Phase
	return t, nil
}

// PhaseRecord returns the archived snapshot of a closed phase.
func (c *Campaign) PhaseRecord(subSector string, number int) (*PhaseRecord, error) {
	if subSector == "" {
		subSector = c.Phase.SubSector
	}
	rec, ok := c.History.Get(subSector, number)
	if !ok {
		return nil, reject(ErrUnknownPhase, "phase %d of %s is not archived", number, subSector)
	}
	return rec.clone(), nil
}
