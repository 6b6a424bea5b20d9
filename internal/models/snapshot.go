package models

// Snapshot is a point-in-time copy of a table's round for rendering.
// It is not redacted: callers decide what to show.
type Snapshot struct {
	RoundID string
	TableID string
	Phase   Phase

	// Settings is nil when no round is live
	Settings *Settings

	Players          []*Player
	Location         string
	RevealCursor     int
	CardVisible      bool
	PendingPlayer    *Player
	PendingSeen      bool
	RemainingSeconds int
	Ended            bool
	EndReason        EndReason
}

// NewSnapshot copies a round into a snapshot. A nil round yields an
// unconfigured snapshot for the table.
func NewSnapshot(tableID string, r *Round) *Snapshot {
	if r == nil {
		return &Snapshot{
			TableID:      tableID,
			Phase:        PhaseUnconfigured,
			Players:      []*Player{},
			RevealCursor: NoCursor,
		}
	}

	r = r.Clone()
	settings := r.Settings

	return &Snapshot{
		RoundID:          r.ID,
		TableID:          r.TableID,
		Phase:            r.Phase,
		Settings:         &settings,
		Players:          r.Players,
		Location:         r.Location,
		RevealCursor:     r.RevealCursor,
		CardVisible:      r.CardVisible,
		PendingPlayer:    r.PendingPlayer,
		PendingSeen:      r.PendingSeen,
		RemainingSeconds: r.RemainingSeconds,
		Ended:            r.Ended,
		EndReason:        r.EndReason,
	}
}

// IsAddingPlayer returns true if the pending-player card flow is active
func (s *Snapshot) IsAddingPlayer() bool {
	return s.Phase.IsRevealing() && s.PendingPlayer != nil
}

// CurrentCard returns the player whose card is up during a reveal, or nil
func (s *Snapshot) CurrentCard() *Player {
	if !s.Phase.IsRevealing() {
		return nil
	}
	if s.PendingPlayer != nil {
		return s.PendingPlayer
	}
	if s.RevealCursor < 0 || s.RevealCursor >= len(s.Players) {
		return nil
	}
	return s.Players[s.RevealCursor]
}

// Spies returns the spies in the round
func (s *Snapshot) Spies() []*Player {
	spies := make([]*Player, 0)
	for _, p := range s.Players {
		if p.IsSpy {
			spies = append(spies, p)
		}
	}
	return spies
}
