package round

import "errors"

// RoundError is a custom error type for round-related errors
type RoundError string

// Error implements the error interface
func (e RoundError) Error() string {
	return string(e)
}

// Constructor errors
const (
	ErrNilConfig        RoundError = "config cannot be nil"
	ErrNilRepository    RoundError = "round repository cannot be nil"
	ErrNilCatalog       RoundError = "location catalog cannot be nil"
	ErrNilRandomizer    RoundError = "randomizer cannot be nil"
	ErrNilClock         RoundError = "clock cannot be nil"
	ErrNilUUIDGenerator RoundError = "UUID generator cannot be nil"
	ErrInvalidConfig    RoundError = "invalid engine config"
)

// Configuration errors are returned by Start before any randomness is consumed
const (
	ErrTooFewPlayers    RoundError = "not enough players"
	ErrTooManyPlayers   RoundError = "too many players"
	ErrInvalidSpyCount  RoundError = "spies must number at least one and fewer than players"
	ErrInvalidTimer     RoundError = "invalid timer length"
	ErrCategoryNotFound RoundError = "category not found"
	ErrEmptyCategory    RoundError = "category has no locations"
)

// Transition errors leave the round untouched
const (
	ErrRoundInProgress   RoundError = "a round is already live at this table"
	ErrInvalidTransition RoundError = "action is not valid in the current phase"
	ErrNoPendingPlayer   RoundError = "no player is waiting to be added"
	ErrCardNotShown      RoundError = "the new player has not seen their card"
	ErrRoundFull         RoundError = "round is at maximum capacity"
)

var configurationErrors = []error{
	ErrTooFewPlayers,
	ErrTooManyPlayers,
	ErrInvalidSpyCount,
	ErrInvalidTimer,
	ErrCategoryNotFound,
	ErrEmptyCategory,
}

// IsConfigurationError reports whether err rejects the settings passed to Start
func IsConfigurationError(err error) bool {
	for _, target := range configurationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
