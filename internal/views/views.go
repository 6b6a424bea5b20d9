// Package views projects round snapshots into what a screen may show.
// Roles stay hidden on the public board until the round has ended.
package views

import (
	"fmt"

	"github.com/KirkDiggler/spyround/internal/models"
)

// HiddenRole is shown in place of a role that is not yet public
const HiddenRole = "?"

// Card is a player's private role card
type Card struct {
	PlayerID int         `json:"player_id"`
	Title    string      `json:"title"`
	Role     models.Role `json:"role"`
	Location string      `json:"location"`
	IsSpy    bool        `json:"is_spy"`
}

// NewCard builds the private card for a player
func NewCard(player *models.Player) *Card {
	if player == nil {
		return nil
	}

	card := &Card{
		PlayerID: player.ID,
		Title:    fmt.Sprintf("Player %d", player.ID),
		Role:     player.Role(),
		Location: player.Location,
		IsSpy:    player.IsSpy,
	}
	if player.IsSpy {
		card.Location = models.UnknownLocation
	}

	return card
}

// Tile is one player's seat on the public board
type Tile struct {
	PlayerID int    `json:"player_id"`
	Role     string `json:"role"`
	Location string `json:"location,omitempty"`

	// Current marks the seat whose card is up
	Current bool `json:"current"`

	// Revealed marks seats that have already seen their card
	Revealed bool `json:"revealed"`
}

// Board is the public view of a table
type Board struct {
	TableID      string       `json:"table_id"`
	Phase        models.Phase `json:"phase"`
	Category     string       `json:"category,omitempty"`
	Clock        string       `json:"clock"`
	Remaining    int          `json:"remaining_seconds"`
	Progress     string       `json:"progress,omitempty"`
	SpyCount     int          `json:"spy_count"`
	AddingPlayer int          `json:"adding_player,omitempty"`
	Tiles        []*Tile      `json:"tiles"`

	// Location and EndReason are only filled in once the round has ended
	Location  string           `json:"location,omitempty"`
	Ended     bool             `json:"ended"`
	EndReason models.EndReason `json:"end_reason,omitempty"`
}

// NewBoard builds the public board for a snapshot
func NewBoard(snapshot *models.Snapshot) *Board {
	board := &Board{
		Tiles: []*Tile{},
		Clock: FormatClock(0),
		Phase: models.PhaseUnconfigured,
	}
	if snapshot == nil {
		return board
	}

	board.TableID = snapshot.TableID
	board.Phase = snapshot.Phase
	board.Remaining = snapshot.RemainingSeconds
	board.Clock = FormatClock(snapshot.RemainingSeconds)
	board.Ended = snapshot.Ended

	if snapshot.Settings != nil {
		board.Category = snapshot.Settings.Category
		board.SpyCount = snapshot.Settings.NumberOfSpies
	}

	if snapshot.Phase.IsRevealing() && snapshot.PendingPlayer == nil {
		board.Progress = fmt.Sprintf("%d/%d", snapshot.RevealCursor+1, len(snapshot.Players))
	}
	if snapshot.PendingPlayer != nil {
		board.AddingPlayer = snapshot.PendingPlayer.ID
	}

	for i, player := range snapshot.Players {
		tile := &Tile{
			PlayerID: player.ID,
			Role:     HiddenRole,
		}

		if snapshot.Phase.IsRevealing() && snapshot.PendingPlayer == nil {
			tile.Current = i == snapshot.RevealCursor
			tile.Revealed = i < snapshot.RevealCursor || (tile.Current && snapshot.CardVisible)
		} else {
			tile.Revealed = true
		}

		if snapshot.Ended {
			tile.Role = string(player.Role())
			tile.Location = player.Location
		}

		board.Tiles = append(board.Tiles, tile)
	}

	if snapshot.Ended {
		board.Location = snapshot.Location
		board.EndReason = snapshot.EndReason
		// The spy count grows when late arrivals draw spy
		board.SpyCount = len(snapshot.Spies())
	}

	return board
}

// FormatClock renders seconds as m:ss
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
