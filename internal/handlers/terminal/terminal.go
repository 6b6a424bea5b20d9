// Package terminal plays a round on one shared screen: the device is passed
// from player to player during the reveal.
package terminal

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/KirkDiggler/spyround/internal/models"
	"github.com/KirkDiggler/spyround/internal/services/messaging"
	"github.com/KirkDiggler/spyround/internal/services/round"
	"github.com/KirkDiggler/spyround/internal/views"
)

const clearScreen = "\033[H\033[2J"

// Resyncer restarts a countdown interval
type Resyncer interface {
	Resync()
}

// Config holds configuration for the terminal handler
type Config struct {
	Engine    round.Service
	Messaging messaging.Service

	// Countdown is resynced whenever the clock starts or resumes (optional)
	Countdown Resyncer

	In  io.Reader
	Out io.Writer

	// Settings are used for the first round and for "s"
	Settings round.StartInput

	// ClearScreen wipes the screen between views so cards do not linger
	ClearScreen bool

	// Observer is told about every change (optional)
	Observer func(snapshot *models.Snapshot)
}

// Handler reads single-key commands and renders the table
type Handler struct {
	engine    round.Service
	messaging messaging.Service
	countdown Resyncer
	in        io.Reader
	settings  round.StartInput
	clear     bool
	observer  func(snapshot *models.Snapshot)

	// mu guards out; ticks render from the countdown goroutine
	mu  sync.Mutex
	out io.Writer
}

// New creates a terminal handler
func New(cfg *Config) (*Handler, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	if cfg.Engine == nil {
		return nil, errors.New("round engine cannot be nil")
	}

	if cfg.Messaging == nil {
		return nil, errors.New("messaging service cannot be nil")
	}

	if cfg.In == nil || cfg.Out == nil {
		return nil, errors.New("input and output cannot be nil")
	}

	return &Handler{
		engine:    cfg.Engine,
		messaging: cfg.Messaging,
		countdown: cfg.Countdown,
		in:        cfg.In,
		out:       cfg.Out,
		settings:  cfg.Settings,
		clear:     cfg.ClearScreen,
		observer:  cfg.Observer,
	}, nil
}

// Run deals the first round and processes commands until q, end of input or ctx is done
func (h *Handler) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	current, err := h.engine.GetSnapshot(ctx, &round.GetSnapshotInput{})
	if err != nil {
		return err
	}

	snapshot := current.Snapshot
	if snapshot.Phase.IsUnconfigured() {
		started, err := h.engine.Start(ctx, &h.settings)
		if err != nil {
			return err
		}
		snapshot = started.Snapshot
	}
	h.show(ctx, snapshot, "")

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(h.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}

			command := strings.ToLower(strings.TrimSpace(line))
			if command == "q" {
				return nil
			}

			notice := ""
			if command == "h" || command == "?" {
				notice = helpText
			}

			snapshot, err := h.handle(ctx, command)
			if err != nil {
				h.showError(ctx, err)
				continue
			}
			h.show(ctx, snapshot, notice)
		}
	}
}

// handle turns one command into an intent
func (h *Handler) handle(ctx context.Context, command string) (*models.Snapshot, error) {
	switch command {
	case "":
		output, err := h.engine.AdvanceReveal(ctx, &round.AdvanceRevealInput{})
		if err != nil {
			return nil, err
		}
		if output.RevealComplete {
			h.resync()
		}
		return output.Snapshot, nil
	case "a":
		output, err := h.engine.AddPlayer(ctx, &round.AddPlayerInput{})
		if err != nil {
			return nil, err
		}
		return output.Snapshot, nil
	case "c":
		output, err := h.engine.ConfirmAddPlayer(ctx, &round.ConfirmAddPlayerInput{})
		if err != nil {
			return nil, err
		}
		h.resync()
		return output.Snapshot, nil
	case "e":
		output, err := h.engine.EndRound(ctx, &round.EndRoundInput{})
		if err != nil {
			return nil, err
		}
		return output.Snapshot, nil
	case "r":
		output, err := h.engine.Restart(ctx, &round.RestartInput{})
		if err != nil {
			return nil, err
		}
		return output.Snapshot, nil
	case "s":
		if _, err := h.engine.Restart(ctx, &round.RestartInput{}); err != nil {
			return nil, err
		}
		output, err := h.engine.Start(ctx, &h.settings)
		if err != nil {
			return nil, err
		}
		return output.Snapshot, nil
	case "h", "?":
		output, err := h.engine.GetSnapshot(ctx, &round.GetSnapshotInput{})
		if err != nil {
			return nil, err
		}
		return output.Snapshot, nil
	default:
		return nil, fmt.Errorf("%w: unknown command %q", round.ErrInvalidTransition, command)
	}
}

// HandleTick redraws the table after a countdown tick
func (h *Handler) HandleTick(snapshot *models.Snapshot) {
	h.show(context.Background(), snapshot, "")
}

func (h *Handler) resync() {
	if h.countdown != nil {
		h.countdown.Resync()
	}
}

func (h *Handler) show(ctx context.Context, snapshot *models.Snapshot, notice string) {
	text := h.render(ctx, snapshot)
	if notice != "" {
		text += notice
	}

	if h.clear {
		text = clearScreen + text
	}
	h.write(text)

	if h.observer != nil {
		h.observer(snapshot)
	}
}

func (h *Handler) showError(ctx context.Context, err error) {
	output, msgErr := h.messaging.GetErrorMessage(ctx, &messaging.GetErrorMessageInput{Err: err})
	if msgErr != nil {
		h.write(fmt.Sprintf("! %v\n", err))
		return
	}
	h.write(fmt.Sprintf("! %s: %s\n", output.Title, output.Message))
}

func (h *Handler) write(text string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	io.WriteString(h.out, text)
}

// render draws the screen for a snapshot. Cards are only drawn while face up.
func (h *Handler) render(ctx context.Context, snapshot *models.Snapshot) string {
	var sb strings.Builder
	board := views.NewBoard(snapshot)

	switch {
	case snapshot.Phase.IsUnconfigured():
		sb.WriteString("No round is dealt.\n")
		sb.WriteString("[s] start  [q] quit\n")
	case snapshot.IsAddingPlayer():
		player := snapshot.PendingPlayer
		if snapshot.CardVisible {
			h.renderCard(ctx, &sb, player)
			sb.WriteString("[enter] hide card\n")
		} else {
			sb.WriteString(fmt.Sprintf("Player %d is joining. Clock paused at %s.\n", player.ID, board.Clock))
			if snapshot.PendingSeen {
				sb.WriteString("[enter] show card again  [c] join the round\n")
			} else {
				sb.WriteString(fmt.Sprintf("Hand the device to player %d. [enter] reveal card\n", player.ID))
			}
		}
	case snapshot.Phase.IsRevealing():
		player := snapshot.CurrentCard()
		if snapshot.CardVisible {
			h.renderCard(ctx, &sb, player)
			sb.WriteString("[enter] hide card and pass on\n")
		} else {
			sb.WriteString(fmt.Sprintf("Card %s. Hand the device to player %d.\n", board.Progress, player.ID))
			sb.WriteString("[enter] reveal card\n")
		}
	case snapshot.Phase.IsInProgress():
		phase, err := h.messaging.GetPhaseMessage(ctx, &messaging.GetPhaseMessageInput{Snapshot: snapshot})
		if err == nil {
			sb.WriteString(phase.Message + "\n")
		}
		sb.WriteString(fmt.Sprintf("Time left: %s   Players: %d   Spies: %d   Category: %s\n",
			board.Clock, len(board.Tiles), board.SpyCount, board.Category))
		sb.WriteString("[a] add player  [e] end round  [r] restart\n")
	case snapshot.Phase.IsEnded():
		end, err := h.messaging.GetEndMessage(ctx, &messaging.GetEndMessageInput{Snapshot: snapshot})
		if err == nil {
			sb.WriteString(fmt.Sprintf("%s %s\n", end.Title, end.Message))
		}
		for _, tile := range board.Tiles {
			sb.WriteString(fmt.Sprintf("  Player %d: %s (%s)\n", tile.PlayerID, tile.Role, tile.Location))
		}
		sb.WriteString("[s] play again  [r] restart  [q] quit\n")
	}

	return sb.String()
}

func (h *Handler) renderCard(ctx context.Context, sb *strings.Builder, player *models.Player) {
	card := views.NewCard(player)

	sb.WriteString(fmt.Sprintf("=== %s ===\n", card.Title))
	sb.WriteString(fmt.Sprintf("Role:     %s\n", card.Role))
	sb.WriteString(fmt.Sprintf("Location: %s\n", card.Location))

	reveal, err := h.messaging.GetRevealMessage(ctx, &messaging.GetRevealMessageInput{Player: player})
	if err == nil {
		sb.WriteString(reveal.Message + "\n")
	}
}

const helpText = `Commands:
  [enter] reveal / hide the current card
  [a]     add a player mid-round
  [c]     seat the added player
  [e]     end the round
  [s]     deal a new round with the same settings
  [r]     restart
  [q]     quit
`
