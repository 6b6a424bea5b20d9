package countdown

import (
	"context"
	"log"
	"time"

	"github.com/KirkDiggler/spyround/internal/common/clock"
	"github.com/KirkDiggler/spyround/internal/models"
	"github.com/KirkDiggler/spyround/internal/services/round"
)

// DefaultInterval is one second of game clock
const DefaultInterval = time.Second

// CountdownError is a custom error type for countdown errors
type CountdownError string

// Error implements the error interface
func (e CountdownError) Error() string {
	return string(e)
}

const (
	ErrNilConfig CountdownError = "config cannot be nil"
	ErrNilEngine CountdownError = "round engine cannot be nil"
	ErrNilClock  CountdownError = "clock cannot be nil"
)

// Config holds configuration for the countdown driver
type Config struct {
	// Engine receives one Tick per interval
	Engine round.Service

	Clock clock.Clock

	// Interval between ticks, defaults to DefaultInterval
	Interval time.Duration

	// OnTick receives the snapshot after every tick that counted down or ended the round
	OnTick func(snapshot *models.Snapshot)
}

// Driver feeds the engine its clock ticks
type Driver struct {
	engine   round.Service
	clock    clock.Clock
	interval time.Duration
	onTick   func(snapshot *models.Snapshot)
	resync   chan struct{}
}

// New creates a countdown driver
func New(cfg *Config) (*Driver, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}

	if cfg.Engine == nil {
		return nil, ErrNilEngine
	}

	if cfg.Clock == nil {
		return nil, ErrNilClock
	}

	interval := cfg.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}

	return &Driver{
		engine:   cfg.Engine,
		clock:    cfg.Clock,
		interval: interval,
		onTick:   cfg.OnTick,
		resync:   make(chan struct{}, 1),
	}, nil
}

// Resync restarts the interval so the next tick lands one full interval from now.
// Call it whenever the clock starts or resumes.
func (d *Driver) Resync() {
	select {
	case d.resync <- struct{}{}:
	default:
		// a resync is already queued
	}
}

// Run ticks the engine until ctx is cancelled
func (d *Driver) Run(ctx context.Context) error {
	ticker := d.clock.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-d.resync:
			d.restart(ticker)
		case <-ticker.C():
			// A resync queued behind this fire means the interval started over
			select {
			case <-d.resync:
				d.restart(ticker)
				continue
			default:
			}
			d.tick(ctx)
		}
	}
}

// restart begins a fresh interval and drops any fire left from the old one
func (d *Driver) restart(ticker clock.Ticker) {
	ticker.Reset(d.interval)

	select {
	case <-ticker.C():
	default:
	}
}

func (d *Driver) tick(ctx context.Context) {
	output, err := d.engine.Tick(ctx, &round.TickInput{})
	if err != nil {
		log.Printf("[countdown] tick failed: %v", err)
		return
	}

	if d.onTick == nil {
		return
	}

	// Ticks outside the discussion phase change nothing
	if output.Snapshot.Phase.IsInProgress() || output.Expired {
		d.onTick(output.Snapshot)
	}
}
