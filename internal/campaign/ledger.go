package campaign

import (
	"slices"
	"time"
)

const (
	PointsWin  = 3
	PointsTie  = 2
	PointsLoss = 1

	MinParticipants = 2
	MaxParticipants = 3
)

// Battle is a single battle outcome as submitted by a player.
type Battle struct {
	Planet       string   `json:"planet"`
	Winner       string   `json:"winner"`
	Choice       string   `json:"choice"`
	Participants []string `json:"participants"`
}

// PhaseRef addresses a phase of a sub-sector.
type PhaseRef struct {
	SubSector string `json:"sous_secteur"`
	Number    int    `json:"phase"`
}

// Audit identifies a back-dated write into archived history.
type Audit struct {
	ID    string
	Actor string
	At    time.Time
}

type BattleResult struct {
	Sector       string          `json:"sector"`
	SubSector    string          `json:"sub_sector"`
	System       string          `json:"system"`
	Planet       string          `json:"planet"`
	Winner       string          `json:"winner"`
	Choice       Faction         `json:"choice"`
	Participants []Faction       `json:"participants"`
	Phase        PhaseRef        `json:"phase"`
	Backdated    bool            `json:"backdated"`
	AuditID      string          `json:"audit_id,omitempty"`
	PointsDelta  map[Faction]int `json:"points_delta"`
}

type validBattle struct {
	loc          Location
	winner       string
	choice       Faction
	participants []Faction
}

// validateBattle runs every precondition before anything is touched; the
// first failing check is reported.
func (c *Campaign) validateBattle(b Battle) (*validBattle, error) {
	loc, err := c.Resolve(b.Planet)
	if err != nil {
		return nil, err
	}

	participants := make([]Faction, 0, len(b.Participants))
	for _, p := range b.Participants {
		if !c.IsFaction(p) {
			return nil, reject(ErrUnknownFaction, "unknown faction: %s", p)
		}
		participants = append(participants, Faction(p))
	}

	if len(participants) < MinParticipants || len(participants) > MaxParticipants {
		return nil, reject(ErrInvalidParticipants, "a battle takes %d to %d participants, got %d", MinParticipants, MaxParticipants, len(participants))
	}
	for i, p := range participants {
		if slices.Contains(participants[:i], p) {
			return nil, reject(ErrInvalidParticipants, "faction %s is listed twice", p)
		}
	}

	if b.Winner != TieMarker && !slices.Contains(participants, Faction(b.Winner)) {
		return nil, reject(ErrInvalidWinner, "winner %s must be a participant or %s", b.Winner, TieMarker)
	}

	if !slices.Contains(participants, Faction(b.Choice)) {
		return nil, reject(ErrInvalidChoice, "planet choice %s must be a participant", b.Choice)
	}

	return &validBattle{
		loc:          loc,
		winner:       b.Winner,
		choice:       Faction(b.Choice),
		participants: participants,
	}, nil
}

// PointsFor is the planet points a participant earns from a battle.
func PointsFor(f Faction, winner string) int {
	switch {
	case winner == string(f):
		return PointsWin
	case winner == TieMarker:
		return PointsTie
	default:
		return PointsLoss
	}
}

func (vb *validBattle) result(phase PhaseRef) *BattleResult {
	return &BattleResult{
		Sector:       vb.loc.Sector.Name,
		SubSector:    vb.loc.SubSector.Name,
		System:       vb.loc.System.Name,
		Planet:       vb.loc.Planet.Name,
		Winner:       vb.winner,
		Choice:       vb.choice,
		Participants: vb.participants,
		Phase:        phase,
		PointsDelta:  make(map[Faction]int, len(vb.participants)),
	}
}

// RecordBattle applies a battle to the open phase. Points are cumulative,
// battle and choice counters are phase scoped.
func (c *Campaign) RecordBattle(b Battle) (*BattleResult, error) {
	vb, err := c.validateBattle(b)
	if err != nil {
		return nil, err
	}

	res := vb.result(PhaseRef{SubSector: c.Phase.SubSector, Number: c.Phase.Number})
	for _, f := range vb.participants {
		stats := vb.loc.Planet.StatsFor(f)
		delta := PointsFor(f, vb.winner)
		stats.Points += delta
		stats.Battles++
		if f == vb.choice {
			stats.Choices++
		}
		c.TotalBattles[f]++
		res.PointsDelta[f] = delta
	}
	return res, nil
}

// IsOpenPhase reports whether target designates the phase currently being played.
// An empty sub-sector means the current one, and phase 0 means the current
// phase of the current sub-sector only.
func (c *Campaign) IsOpenPhase(target PhaseRef) bool {
	sub := target.SubSector
	if sub == "" {
		sub = c.Phase.SubSector
	}
	if sub != c.Phase.SubSector {
		return false
	}
	return target.Number == 0 || target.Number == c.Phase.Number
}

// RecordBackdatedBattle writes a battle into an already closed phase. Points
// still land on the planet; the phase counters are added to the archived
// record and an audit entry is appended. Targeting the open phase falls back
// to RecordBattle.
func (c *Campaign) RecordBackdatedBattle(b Battle, target PhaseRef, audit Audit) (*BattleResult, error) {
	if c.IsOpenPhase(target) {
		return c.RecordBattle(b)
	}

	vb, err := c.validateBattle(b)
	if err != nil {
		return nil, err
	}

	if target.SubSector == "" {
		target.SubSector = c.Phase.SubSector
	}
	if _, _, err := c.ResolveSubSector(target.SubSector); err != nil {
		return nil, err
	}
	if !c.isClosedPhase(target) {
		return nil, reject(ErrUnknownPhase, "phase %d of %s is not closed", target.Number, target.SubSector)
	}

	rec, ok := c.History.Get(target.SubSector, target.Number)
	if !ok {
		rec = newPhaseRecord(c.Factions)
		c.History.Put(target.SubSector, target.Number, rec)
	}

	res := vb.result(target)
	res.Backdated = true
	res.AuditID = audit.ID
	for _, f := range vb.participants {
		delta := PointsFor(f, vb.winner)
		vb.loc.Planet.StatsFor(f).Points += delta
		rec.TotalBattles[f]++
		if f == vb.choice {
			rec.PlanetChoices[f]++
		}
		res.PointsDelta[f] = delta
	}

	c.Backdated = append(c.Backdated, BackdatedBattle{
		ID:           audit.ID,
		RecordedAt:   audit.At,
		Actor:        audit.Actor,
		SubSector:    target.SubSector,
		Phase:        target.Number,
		Planet:       vb.loc.Planet.Name,
		Winner:       vb.winner,
		Choice:       vb.choice,
		Participants: vb.participants,
	})
	return res, nil
}

// isClosedPhase reports whether target is a phase that has already ended.
func (c *Campaign) isClosedPhase(target PhaseRef) bool {
	if target.Number < 1 {
		return false
	}
	if target.SubSector == c.Phase.SubSector {
		return target.Number < c.Phase.Number
	}
	return target.Number <= c.History.MaxPhase(target.SubSector)
}
