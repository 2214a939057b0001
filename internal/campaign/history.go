package campaign

import (
	"maps"
	"slices"
)

// PhaseHistory archives closed phases by sub-sector, then local phase number.
type PhaseHistory struct {
	subSectors *OrderedMap[map[int]*PhaseRecord]
}

func NewPhaseHistory() *PhaseHistory {
	return &PhaseHistory{subSectors: NewOrderedMap[map[int]*PhaseRecord]()}
}

func (h *PhaseHistory) Get(subSector string, number int) (*PhaseRecord, bool) {
	phases, ok := h.subSectors.Get(subSector)
	if !ok {
		return nil, false
	}
	rec, ok := phases[number]
	return rec, ok
}

func (h *PhaseHistory) Put(subSector string, number int, rec *PhaseRecord) {
	phases, ok := h.subSectors.Get(subSector)
	if !ok {
		phases = make(map[int]*PhaseRecord)
		h.subSectors.Set(subSector, phases)
	}
	phases[number] = rec
}

// MaxPhase is the highest archived phase of a sub-sector, 0 when none.
func (h *PhaseHistory) MaxPhase(subSector string) int {
	phases, ok := h.subSectors.Get(subSector)
	if !ok {
		return 0
	}
	highest := 0
	for n := range phases {
		highest = max(highest, n)
	}
	return highest
}

func (h *PhaseHistory) SubSectors() []string {
	return h.subSectors.Keys()
}

// Phases lists the archived phase numbers of a sub-sector in ascending order.
func (h *PhaseHistory) Phases(subSector string) []int {
	phases, ok := h.subSectors.Get(subSector)
	if !ok {
		return nil
	}
	return slices.Sorted(maps.Keys(phases))
}

// TotalBattles sums archived battle counts of a faction over every sub-sector.
func (h *PhaseHistory) TotalBattles(f Faction) int {
	total := 0
	for phases := range h.subSectors.Values() {
		for _, rec := range phases {
			total += rec.TotalBattles[f]
		}
	}
	return total
}
