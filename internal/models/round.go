package models

import (
	"time"
)

// Phase represents where a round is in its lifecycle
type Phase string

const (
	// PhaseUnconfigured indicates no round has been started
	PhaseUnconfigured Phase = "unconfigured"

	// PhaseRevealing indicates players are viewing their cards one at a time
	PhaseRevealing Phase = "revealing"

	// PhaseInProgress indicates the countdown is running and roles are hidden
	PhaseInProgress Phase = "in_progress"

	// PhaseEnded indicates the round is over and every role is visible
	PhaseEnded Phase = "ended"
)

// IsUnconfigured returns true if no round is live
func (p Phase) IsUnconfigured() bool {
	return p == PhaseUnconfigured || p == ""
}

// IsRevealing returns true if cards are being revealed
func (p Phase) IsRevealing() bool {
	return p == PhaseRevealing
}

// IsInProgress returns true if the countdown is running
func (p Phase) IsInProgress() bool {
	return p == PhaseInProgress
}

// IsEnded returns true if the round is over
func (p Phase) IsEnded() bool {
	return p == PhaseEnded
}

// EndReason records how a round reached PhaseEnded
type EndReason string

const (
	// EndReasonExpired indicates the countdown reached zero
	EndReasonExpired EndReason = "expired"

	// EndReasonCalled indicates the round was ended manually
	EndReasonCalled EndReason = "called"
)

// NoCursor is the reveal cursor value when no card is being revealed
const NoCursor = -1

// Settings holds the configuration a round was started with
type Settings struct {
	// NumberOfPlayers is how many players the round was started with
	NumberOfPlayers int

	// NumberOfSpies is how many of those players are spies
	NumberOfSpies int

	// TimerSeconds is the length of the discussion countdown
	TimerSeconds int

	// Category is the name of the catalog category the location was drawn from
	Category string
}

// Round is the single live play session at a table
type Round struct {
	// ID is the unique identifier for the round
	ID string

	// TableID identifies the slot (terminal, channel) the round lives in
	TableID string

	Settings Settings

	// Players are ordered by ID
	Players []*Player

	// Location is the secret location shared by every civilian
	Location string

	Phase Phase

	// RevealCursor is the index of the player whose card is up, or NoCursor
	RevealCursor int

	// CardVisible indicates the card at the cursor (or the pending card) is face up
	CardVisible bool

	// PendingPlayer is the player being revealed during the add-player flow
	PendingPlayer *Player

	// PendingSeen indicates the pending card has been shown at least once
	PendingSeen bool

	// RemainingSeconds is the countdown value
	RemainingSeconds int

	Ended     bool
	EndReason EndReason

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsAddingPlayer returns true if the round is in the add-player reveal flow
func (r *Round) IsAddingPlayer() bool {
	return r.Phase.IsRevealing() && r.PendingPlayer != nil
}

// NextPlayerID returns the ID a newly created player should receive
func (r *Round) NextPlayerID() int {
	maxID := 0
	for _, p := range r.Players {
		if p.ID > maxID {
			maxID = p.ID
		}
	}
	return maxID + 1
}

// SpyCount returns the number of spies currently in the round
func (r *Round) SpyCount() int {
	count := 0
	for _, p := range r.Players {
		if p.IsSpy {
			count++
		}
	}
	return count
}

// Clone returns a deep copy of the round
func (r *Round) Clone() *Round {
	if r == nil {
		return nil
	}

	clone := *r
	clone.Players = make([]*Player, 0, len(r.Players))
	for _, p := range r.Players {
		clone.Players = append(clone.Players, p.Clone())
	}
	clone.PendingPlayer = r.PendingPlayer.Clone()

	return &clone
}
