package discord

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/KirkDiggler/spyround/internal/common/clock"
	"github.com/KirkDiggler/spyround/internal/models"
	"github.com/KirkDiggler/spyround/internal/services/countdown"
	"github.com/KirkDiggler/spyround/internal/services/round"
)

// EngineFactory builds the round engine for a channel
type EngineFactory func(tableID string) (round.Service, error)

// table is one channel's engine, its countdown and its board message
type table struct {
	engine    round.Service
	driver    *countdown.Driver
	cancel    context.CancelFunc
	messageID string

	// mu serializes button clicks at the table so a state check and the
	// intent it guards see the same round
	mu sync.Mutex
}

// exclusive runs fn while no other intent at the table is in flight
func (t *table) exclusive(fn func() error) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	return fn()
}

// showCard turns the current reveal card face up for one viewer. It reports
// false, with the current snapshot, when a card is already face up or a new
// player is joining.
func (t *table) showCard(ctx context.Context) (*models.Snapshot, bool, error) {
	var snapshot *models.Snapshot
	shown := false

	err := t.exclusive(func() error {
		current, err := t.engine.GetSnapshot(ctx, &round.GetSnapshotInput{})
		if err != nil {
			return err
		}
		snapshot = current.Snapshot

		if snapshot.IsAddingPlayer() || snapshot.CardVisible {
			return nil
		}

		output, err := t.engine.AdvanceReveal(ctx, &round.AdvanceRevealInput{})
		if err != nil {
			return err
		}
		snapshot, shown = output.Snapshot, true

		return nil
	})

	return snapshot, shown, err
}

// hideCard puts the face-up reveal card away and moves the reveal on. The
// output is nil when there was no face-up card to hide.
func (t *table) hideCard(ctx context.Context) (*round.AdvanceRevealOutput, error) {
	var output *round.AdvanceRevealOutput

	err := t.exclusive(func() error {
		current, err := t.engine.GetSnapshot(ctx, &round.GetSnapshotInput{})
		if err != nil {
			return err
		}

		snapshot := current.Snapshot
		if !snapshot.Phase.IsRevealing() || snapshot.IsAddingPlayer() || !snapshot.CardVisible {
			return nil
		}

		output, err = t.engine.AdvanceReveal(ctx, &round.AdvanceRevealInput{})
		return err
	})

	return output, err
}

// addPlayer deals a late arrival and turns their card face up for the clicker
func (t *table) addPlayer(ctx context.Context) (*models.Snapshot, error) {
	var snapshot *models.Snapshot

	err := t.exclusive(func() error {
		if _, err := t.engine.AddPlayer(ctx, &round.AddPlayerInput{}); err != nil {
			return err
		}

		output, err := t.engine.AdvanceReveal(ctx, &round.AdvanceRevealInput{})
		if err != nil {
			return err
		}
		snapshot = output.Snapshot

		return nil
	})

	return snapshot, err
}

// replay deals a fresh round with the last round's settings. It reports
// false when there is no round to copy the settings from.
func (t *table) replay(ctx context.Context) (*models.Snapshot, bool, error) {
	var snapshot *models.Snapshot
	replayed := false

	err := t.exclusive(func() error {
		current, err := t.engine.GetSnapshot(ctx, &round.GetSnapshotInput{})
		if err != nil {
			return err
		}

		input, ok := startInputFor(current.Snapshot)
		if !ok {
			return nil
		}

		if _, err := t.engine.Restart(ctx, &round.RestartInput{}); err != nil {
			return err
		}

		output, err := t.engine.Start(ctx, input)
		if err != nil {
			return err
		}
		snapshot, replayed = output.Snapshot, true

		return nil
	})

	return snapshot, replayed, err
}

// tableRegistry hands out one table per channel and runs its countdown
type tableRegistry struct {
	mu        sync.Mutex
	ctx       context.Context
	tables    map[string]*table
	newEngine EngineFactory
	clock     clock.Clock
	onTick    func(channelID string, snapshot *models.Snapshot)
}

func newTableRegistry(ctx context.Context, newEngine EngineFactory, clk clock.Clock, onTick func(channelID string, snapshot *models.Snapshot)) *tableRegistry {
	return &tableRegistry{
		ctx:       ctx,
		tables:    make(map[string]*table),
		newEngine: newEngine,
		clock:     clk,
		onTick:    onTick,
	}
}

// get returns the channel's table, creating it and starting its countdown on first use
func (r *tableRegistry) get(channelID string) (*table, error) {
	if channelID == "" {
		return nil, errors.New("channel ID cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if t, ok := r.tables[channelID]; ok {
		return t, nil
	}

	engine, err := r.newEngine(channelID)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine for channel %s: %w", channelID, err)
	}

	driver, err := countdown.New(&countdown.Config{
		Engine: engine,
		Clock:  r.clock,
		OnTick: func(snapshot *models.Snapshot) {
			if r.onTick != nil {
				r.onTick(channelID, snapshot)
			}
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create countdown for channel %s: %w", channelID, err)
	}

	ctx, cancel := context.WithCancel(r.ctx)
	t := &table{
		engine: engine,
		driver: driver,
		cancel: cancel,
	}
	r.tables[channelID] = t

	go func() {
		if err := driver.Run(ctx); err != nil {
			log.Printf("[discord] countdown for channel %s stopped: %v", channelID, err)
		}
	}()

	return t, nil
}

// setMessage records the channel's board message
func (r *tableRegistry) setMessage(channelID, messageID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if t, ok := r.tables[channelID]; ok {
		t.messageID = messageID
	}
}

// message returns the channel's board message ID, or empty
func (r *tableRegistry) message(channelID string) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	if t, ok := r.tables[channelID]; ok {
		return t.messageID
	}
	return ""
}

// close stops every countdown
func (r *tableRegistry) close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for channelID, t := range r.tables {
		t.cancel()
		delete(r.tables, channelID)
	}
}
