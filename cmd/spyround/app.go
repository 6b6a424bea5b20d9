package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/KirkDiggler/spyround/internal/catalog"
	"github.com/KirkDiggler/spyround/internal/common/clock"
	"github.com/KirkDiggler/spyround/internal/common/uuid"
	"github.com/KirkDiggler/spyround/internal/handlers/board"
	"github.com/KirkDiggler/spyround/internal/handlers/discord"
	"github.com/KirkDiggler/spyround/internal/handlers/terminal"
	"github.com/KirkDiggler/spyround/internal/models"
	"github.com/KirkDiggler/spyround/internal/random"
	roundRepo "github.com/KirkDiggler/spyround/internal/repositories/round"
	"github.com/KirkDiggler/spyround/internal/services/countdown"
	"github.com/KirkDiggler/spyround/internal/services/messaging"
	"github.com/KirkDiggler/spyround/internal/services/round"
	"github.com/redis/go-redis/v9"
)

// terminalTableID names the single table a terminal session plays at
const terminalTableID = "terminal"

// deps are shared by every table in the process
type deps struct {
	catalog    catalog.Catalog
	repository roundRepo.Repository
	roller     *random.Roller
	clock      clock.Clock
	uuid       uuid.UUID
	messaging  messaging.Service
	close      func()
}

func loadCatalog(cfg *Config) (catalog.Catalog, error) {
	if cfg.locations == "" {
		return catalog.Default(), nil
	}

	cat, err := catalog.Load(cfg.locations)
	if err != nil {
		return nil, fmt.Errorf("failed to load locations: %w", err)
	}
	return cat, nil
}

func newDeps(cfg *Config) (*deps, error) {
	cat, err := loadCatalog(cfg)
	if err != nil {
		return nil, err
	}

	roller := random.New(&random.Config{Seed: cfg.seed})

	msgSvc, err := messaging.New(&messaging.Config{
		Randomizer: roller,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create messaging service: %w", err)
	}

	uuidGen := uuid.New()

	d := &deps{
		catalog:   cat,
		roller:    roller,
		clock:     clock.New(),
		uuid:      uuidGen,
		messaging: msgSvc,
		close:     func() {},
	}

	if cfg.redisAddr == "" {
		d.repository = roundRepo.NewMemory()
		return d, nil
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.redisAddr,
		Password: cfg.redisPassword,
		DB:       cfg.redisDB,
	})

	// Each process gets its own namespace so restarts never resume a stale round
	repo, err := roundRepo.NewRedis(&roundRepo.Config{
		RedisClient: redisClient,
		Namespace:   uuidGen.NewUUID(),
		TTL:         cfg.redisTTL,
	})
	if err != nil {
		_ = redisClient.Close()
		return nil, fmt.Errorf("failed to create round repository: %w", err)
	}

	if cfg.verbose {
		log.Printf("[spyround] storing rounds in redis at %s", cfg.redisAddr)
	}

	d.repository = repo
	d.close = func() {
		if err := redisClient.Close(); err != nil {
			log.Printf("[spyround] failed to close redis client: %v", err)
		}
	}

	return d, nil
}

// newEngine builds the round engine for one table
func (d *deps) newEngine(cfg *Config, tableID string) (round.Service, error) {
	chance := cfg.addSpyChance

	engine, err := round.New(&round.Config{
		MinPlayers:         cfg.minPlayers,
		MaxPlayers:         cfg.maxPlayers,
		MaxTimerMinutes:    cfg.maxTimer,
		AddPlayerSpyChance: &chance,
		TableID:            tableID,
		Repository:         d.repository,
		Catalog:            d.catalog,
		Randomizer:         d.roller,
		Clock:              d.clock,
		UUIDGenerator:      d.uuid,
	})
	if err != nil {
		return nil, err
	}
	return engine, nil
}

func runPlay(ctx context.Context, cfg *Config, in io.Reader, out io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	d, err := newDeps(cfg)
	if err != nil {
		return err
	}
	defer d.close()

	engine, err := d.newEngine(cfg, terminalTableID)
	if err != nil {
		return fmt.Errorf("failed to create round engine: %w", err)
	}

	var observer func(snapshot *models.Snapshot)
	if cfg.board {
		boardSrv, err := board.New(&board.Config{
			Bind:      cfg.bind,
			Port:      cfg.port,
			Prefix:    cfg.prefix,
			PublicURL: cfg.publicURL,
			Verbose:   cfg.verbose,
		})
		if err != nil {
			return fmt.Errorf("failed to create board: %w", err)
		}
		observer = boardSrv.Publish

		go func() {
			if err := boardSrv.Run(ctx); err != nil {
				log.Printf("[board] stopped: %v", err)
			}
		}()
	}

	var term *terminal.Handler

	driver, err := countdown.New(&countdown.Config{
		Engine: engine,
		Clock:  d.clock,
		OnTick: func(snapshot *models.Snapshot) {
			term.HandleTick(snapshot)
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create countdown: %w", err)
	}

	term, err = terminal.New(&terminal.Config{
		Engine:      engine,
		Messaging:   d.messaging,
		Countdown:   driver,
		In:          in,
		Out:         out,
		Settings:    cfg.settings(),
		ClearScreen: !cfg.noClear,
		Observer:    observer,
	})
	if err != nil {
		return fmt.Errorf("failed to create terminal: %w", err)
	}

	go func() {
		if err := driver.Run(ctx); err != nil {
			log.Printf("[countdown] stopped: %v", err)
		}
	}()

	return term.Run(ctx)
}

func runBot(ctx context.Context, cfg *Config) error {
	d, err := newDeps(cfg)
	if err != nil {
		return err
	}
	defer d.close()

	// One engine per channel, all sharing the repository
	factory := func(tableID string) (round.Service, error) {
		return d.newEngine(cfg, tableID)
	}

	bot, err := discord.New(&discord.Config{
		Token:               cfg.token,
		ApplicationID:       cfg.applicationID,
		GuildID:             cfg.guildID,
		NewEngine:           factory,
		Messaging:           d.messaging,
		Clock:               d.clock,
		Categories:          d.catalog.GetCategories(),
		DefaultSettings:     cfg.settings(),
		BoardRefreshSeconds: cfg.refresh,
	})
	if err != nil {
		return fmt.Errorf("failed to create Discord bot: %w", err)
	}

	if err := bot.Start(); err != nil {
		return fmt.Errorf("failed to start Discord bot: %w", err)
	}

	<-ctx.Done()

	if err := bot.Stop(); err != nil {
		log.Printf("Error stopping bot: %v", err)
	}

	log.Println("Bot has been shut down")
	return nil
}

func runCategories(cfg *Config, out io.Writer) error {
	cat, err := loadCatalog(cfg)
	if err != nil {
		return err
	}

	for _, category := range cat.GetCategories() {
		if category.Aggregate {
			_, _ = fmt.Fprintf(out, "%s (%d locations, every category)\n", category.Name, len(category.Locations))
			continue
		}

		names := make([]string, 0, len(category.Locations))
		for _, location := range category.Locations {
			names = append(names, location.Name)
		}
		_, _ = fmt.Fprintf(out, "%s (%d): %s\n", category.Name, len(category.Locations), strings.Join(names, ", "))
	}

	return nil
}
