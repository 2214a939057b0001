package campaign

import (
	"campaign-server/internal/shared/errors"
)

const (
	CodeUnknownPlanet          errors.Code = "unknown_planet"
	CodeUnknownSystem          errors.Code = "unknown_system"
	CodeUnknownSector          errors.Code = "unknown_sector"
	CodeUnknownSubSector       errors.Code = "unknown_sub_sector"
	CodeUnknownFaction         errors.Code = "unknown_faction"
	CodeInvalidWinner          errors.Code = "invalid_winner"
	CodeInvalidChoice          errors.Code = "invalid_choice"
	CodeInvalidParticipants    errors.Code = "invalid_participants"
	CodeRotationRequired       errors.Code = "sub_sector_rotation_required"
	CodeRotationNotAllowed     errors.Code = "sub_sector_rotation_not_allowed"
	CodeUnknownSubSectorTarget errors.Code = "unknown_sub_sector_target"
	CodeUnknownPhase           errors.Code = "unknown_phase"
	CodeInvalidValue           errors.Code = "invalid_value"
	CodeSystemExists           errors.Code = "system_exists"
	CodePlanetExists           errors.Code = "planet_exists"
	CodePersistenceWriteFailed errors.Code = "persistence_write_failed"
	CodePersistenceReadFailed  errors.Code = "persistence_read_failed"
)

// Sentinels for errors.Is; the messages returned to callers name the
// offending value.
var (
	ErrUnknownPlanet          = errors.New(errors.ErrorTypeNotFound, CodeUnknownPlanet, "unknown planet")
	ErrUnknownSystem          = errors.New(errors.ErrorTypeNotFound, CodeUnknownSystem, "unknown system")
	ErrUnknownSector          = errors.New(errors.ErrorTypeNotFound, CodeUnknownSector, "unknown sector")
	ErrUnknownSubSector       = errors.New(errors.ErrorTypeNotFound, CodeUnknownSubSector, "unknown sub-sector")
	ErrUnknownFaction         = errors.New(errors.ErrorTypeValidation, CodeUnknownFaction, "unknown faction")
	ErrInvalidWinner          = errors.New(errors.ErrorTypeValidation, CodeInvalidWinner, "winner must be a participant or the tie marker")
	ErrInvalidChoice          = errors.New(errors.ErrorTypeValidation, CodeInvalidChoice, "planet choice must be a participant")
	ErrInvalidParticipants    = errors.New(errors.ErrorTypeValidation, CodeInvalidParticipants, "a battle takes two or three distinct participants")
	ErrRotationRequired       = errors.New(errors.ErrorTypeValidation, CodeRotationRequired, "a new sub-sector is required to close this phase")
	ErrRotationNotAllowed     = errors.New(errors.ErrorTypeValidation, CodeRotationNotAllowed, "the sub-sector can only change on a total war phase")
	ErrUnknownSubSectorTarget = errors.New(errors.ErrorTypeValidation, CodeUnknownSubSectorTarget, "target sub-sector is not part of the current sector")
	ErrUnknownPhase           = errors.New(errors.ErrorTypeNotFound, CodeUnknownPhase, "unknown phase")
	ErrInvalidValue           = errors.New(errors.ErrorTypeValidation, CodeInvalidValue, "invalid value")
	ErrSystemExists           = errors.New(errors.ErrorTypeConflict, CodeSystemExists, "system already exists")
	ErrPlanetExists           = errors.New(errors.ErrorTypeConflict, CodePlanetExists, "planet already exists")
	ErrPersistenceWriteFailed = errors.New(errors.ErrorTypeInternal, CodePersistenceWriteFailed, "failed to persist campaign state")
	ErrPersistenceReadFailed  = errors.New(errors.ErrorTypeInternal, CodePersistenceReadFailed, "failed to read campaign state")
)

func reject(sentinel *errors.AppError, format string, args ...interface{}) error {
	return errors.Newf(sentinel.Type, sentinel.Code, format, args...)
}
