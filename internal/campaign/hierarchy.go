package campaign

import "iter"

// Location is the full path of a planet in the hierarchy.
type Location struct {
	Sector    *Sector
	SubSector *SubSector
	System    *System
	Planet    *Planet
}

// SystemLocation is the full path of a system in the hierarchy.
type SystemLocation struct {
	Sector    *Sector
	SubSector *SubSector
	System    *System
}

// Planets walks every planet of the campaign in hierarchy order.
func (c *Campaign) Planets() iter.Seq[Location] {
	return func(yield func(Location) bool) {
		for sector := range c.Sectors.Values() {
			for sub := range sector.SubSectors.Values() {
				for system := range sub.Systems.Values() {
					for planet := range system.Planets.Values() {
						if !yield(Location{Sector: sector, SubSector: sub, System: system, Planet: planet}) {
							return
						}
					}
				}
			}
		}
	}
}

// Systems walks every system of the campaign in hierarchy order.
func (c *Campaign) Systems() iter.Seq[SystemLocation] {
	return func(yield func(SystemLocation) bool) {
		for sector := range c.Sectors.Values() {
			for sub := range sector.SubSectors.Values() {
				for system := range sub.Systems.Values() {
					if !yield(SystemLocation{Sector: sector, SubSector: sub, System: system}) {
						return
					}
				}
			}
		}
	}
}

// Resolve finds a planet by exact name. The first match in hierarchy order wins.
func (c *Campaign) Resolve(planet string) (Location, error) {
	for loc := range c.Planets() {
		if loc.Planet.Name == planet {
			return loc, nil
		}
	}
	return Location{}, reject(ErrUnknownPlanet, "unknown planet: %s", planet)
}

func (c *Campaign) ResolveSystem(system string) (SystemLocation, error) {
	for loc := range c.Systems() {
		if loc.System.Name == system {
			return loc, nil
		}
	}
	return SystemLocation{}, reject(ErrUnknownSystem, "unknown system: %s", system)
}

// ResolveSubSector finds a sub-sector by name across every sector.
func (c *Campaign) ResolveSubSector(name string) (*Sector, *SubSector, error) {
	for sector := range c.Sectors.Values() {
		if sub, ok := sector.SubSectors.Get(name); ok {
			return sector, sub, nil
		}
	}
	return nil, nil, reject(ErrUnknownSubSector, "unknown sub-sector: %s", name)
}

// AllPlanetNames lists planet names fresh from the current hierarchy.
func (c *Campaign) AllPlanetNames() iter.Seq[string] {
	return func(yield func(string) bool) {
		for loc := range c.Planets() {
			if !yield(loc.Planet.Name) {
				return
			}
		}
	}
}

// AllSystemNames lists system names fresh from the current hierarchy.
func (c *Campaign) AllSystemNames() iter.Seq[string] {
	return func(yield func(string) bool) {
		for loc := range c.Systems() {
			if !yield(loc.System.Name) {
				return
			}
		}
	}
}

// subSectorPlanets walks the planets of a single sub-sector.
func subSectorPlanets(sub *SubSector) iter.Seq[*Planet] {
	return func(yield func(*Planet) bool) {
		for system := range sub.Systems.Values() {
			for planet := range system.Planets.Values() {
				if !yield(planet) {
					return
				}
			}
		}
	}
}

// currentSubSector resolves the sub-sector the phase pointer designates.
func (c *Campaign) currentSubSector() (*Sector, *SubSector, error) {
	sector, ok := c.Sectors.Get(c.Phase.Sector)
	if !ok {
		return nil, nil, reject(ErrUnknownSector, "unknown sector: %s", c.Phase.Sector)
	}
	sub, ok := sector.SubSectors.Get(c.Phase.SubSector)
	if !ok {
		return nil, nil, reject(ErrUnknownSubSector, "unknown sub-sector: %s", c.Phase.SubSector)
	}
	return sector, sub, nil
}
