package round

import (
	"github.com/KirkDiggler/spyround/internal/catalog"
	"github.com/KirkDiggler/spyround/internal/common/clock"
	"github.com/KirkDiggler/spyround/internal/common/uuid"
	"github.com/KirkDiggler/spyround/internal/models"
	"github.com/KirkDiggler/spyround/internal/random"
	roundRepo "github.com/KirkDiggler/spyround/internal/repositories/round"
)

const (
	// DefaultMinPlayers is the smallest table the game works with
	DefaultMinPlayers = 3

	// DefaultMaxPlayers caps both Start and AddPlayer
	DefaultMaxPlayers = 30

	// DefaultMaxTimerMinutes is the longest allowed countdown
	DefaultMaxTimerMinutes = 60

	// DefaultAddPlayerSpyChance is the chance a late arrival is a spy.
	// It is independent of the round's spy ratio.
	DefaultAddPlayerSpyChance = 0.25
)

// Config holds configuration for the round service
type Config struct {
	// Minimum number of players per round
	MinPlayers int

	// Maximum number of players per round, including late arrivals
	MaxPlayers int

	// Maximum countdown length in minutes
	MaxTimerMinutes int

	// Chance in [0, 1] that an added player is a spy. Nil selects the default;
	// zero means late arrivals are always civilians.
	AddPlayerSpyChance *float64

	// TableID identifies the slot this engine owns. Empty generates one.
	TableID string

	// Repository dependencies
	Repository roundRepo.Repository

	// Service dependencies
	Catalog       catalog.Catalog
	Randomizer    random.Randomizer
	Clock         clock.Clock
	UUIDGenerator uuid.UUID
}

// StartInput contains the settings for a new round
type StartInput struct {
	NumberOfPlayers int
	NumberOfSpies   int
	TimerMinutes    int

	// Category is a catalog category name, or the aggregate name
	Category string
}

// StartOutput contains the dealt round
type StartOutput struct {
	Snapshot *models.Snapshot
}

// AdvanceRevealInput contains parameters for advancing the reveal
type AdvanceRevealInput struct{}

// AdvanceRevealOutput contains the state after the reveal step
type AdvanceRevealOutput struct {
	Snapshot *models.Snapshot

	// RevealComplete is true when this step started the countdown
	RevealComplete bool
}

// TickInput contains parameters for a clock tick
type TickInput struct{}

// TickOutput contains the state after the tick
type TickOutput struct {
	Snapshot *models.Snapshot

	// Expired is true when this tick ended the round
	Expired bool
}

// EndRoundInput contains parameters for ending the round
type EndRoundInput struct{}

// EndRoundOutput contains the ended round
type EndRoundOutput struct {
	Snapshot *models.Snapshot
}

// AddPlayerInput contains parameters for adding a player
type AddPlayerInput struct{}

// AddPlayerOutput contains the round with its pending player
type AddPlayerOutput struct {
	Snapshot *models.Snapshot
}

// ConfirmAddPlayerInput contains parameters for seating the pending player
type ConfirmAddPlayerInput struct{}

// ConfirmAddPlayerOutput contains the round with the new player seated
type ConfirmAddPlayerOutput struct {
	Snapshot *models.Snapshot

	// Player is the player that was seated
	Player *models.Player
}

// RestartInput contains parameters for restarting
type RestartInput struct{}

// RestartOutput contains the unconfigured table
type RestartOutput struct {
	Snapshot *models.Snapshot
}

// GetSnapshotInput contains parameters for reading the table
type GetSnapshotInput struct{}

// GetSnapshotOutput contains the table's state
type GetSnapshotOutput struct {
	Snapshot *models.Snapshot
}

// ListCategoriesInput contains parameters for listing categories
type ListCategoriesInput struct{}

// ListCategoriesOutput contains the catalog's categories, aggregate first
type ListCategoriesOutput struct {
	Categories []models.Category
}
