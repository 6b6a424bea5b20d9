package round

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/KirkDiggler/spyround/internal/catalog"
	"github.com/KirkDiggler/spyround/internal/common/clock"
	"github.com/KirkDiggler/spyround/internal/common/uuid"
	"github.com/KirkDiggler/spyround/internal/models"
	"github.com/KirkDiggler/spyround/internal/random"
	roundRepo "github.com/KirkDiggler/spyround/internal/repositories/round"
)

// service implements the Service interface
type service struct {
	// mu serializes intents so each one is a single read-modify-write
	mu sync.Mutex

	tableID            string
	minPlayers         int
	maxPlayers         int
	maxTimerMinutes    int
	addPlayerSpyChance float64

	repo          roundRepo.Repository
	catalog       catalog.Catalog
	randomizer    random.Randomizer
	clock         clock.Clock
	uuidGenerator uuid.UUID
}

// New creates a new round service
func New(cfg *Config) (*service, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}

	if cfg.Repository == nil {
		return nil, ErrNilRepository
	}

	if cfg.Catalog == nil {
		return nil, ErrNilCatalog
	}

	if cfg.Randomizer == nil {
		return nil, ErrNilRandomizer
	}

	if cfg.Clock == nil {
		return nil, ErrNilClock
	}

	if cfg.UUIDGenerator == nil {
		return nil, ErrNilUUIDGenerator
	}

	svc := &service{
		tableID:            cfg.TableID,
		minPlayers:         cfg.MinPlayers,
		maxPlayers:         cfg.MaxPlayers,
		maxTimerMinutes:    cfg.MaxTimerMinutes,
		addPlayerSpyChance: DefaultAddPlayerSpyChance,
		repo:               cfg.Repository,
		catalog:            cfg.Catalog,
		randomizer:         cfg.Randomizer,
		clock:              cfg.Clock,
		uuidGenerator:      cfg.UUIDGenerator,
	}

	// Set default values if not provided
	if svc.minPlayers == 0 {
		svc.minPlayers = DefaultMinPlayers
	}
	if svc.maxPlayers == 0 {
		svc.maxPlayers = DefaultMaxPlayers
	}
	if svc.maxTimerMinutes == 0 {
		svc.maxTimerMinutes = DefaultMaxTimerMinutes
	}
	if cfg.AddPlayerSpyChance != nil {
		svc.addPlayerSpyChance = *cfg.AddPlayerSpyChance
	}
	if svc.tableID == "" {
		svc.tableID = svc.uuidGenerator.NewUUID()
	}

	if svc.minPlayers < 2 || svc.maxPlayers < svc.minPlayers {
		return nil, fmt.Errorf("%w: players must be between %d and %d", ErrInvalidConfig, svc.minPlayers, svc.maxPlayers)
	}
	if svc.maxTimerMinutes < 1 {
		return nil, fmt.Errorf("%w: max timer of %d minutes", ErrInvalidConfig, svc.maxTimerMinutes)
	}
	if svc.addPlayerSpyChance < 0 || svc.addPlayerSpyChance > 1 {
		return nil, fmt.Errorf("%w: add-player spy chance %.2f", ErrInvalidConfig, svc.addPlayerSpyChance)
	}

	return svc, nil
}

// TableID returns the slot this engine owns
func (s *service) TableID() string {
	return s.tableID
}

// Start deals a new round from the given settings
func (s *service) Start(ctx context.Context, input *StartInput) (*StartOutput, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	round, err := s.loadRound(ctx)
	if err != nil {
		return nil, err
	}
	if round != nil {
		if round.Phase.IsEnded() {
			return nil, s.invalidTransition("start", round)
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidTransition, ErrRoundInProgress)
	}

	category, err := s.validateSettings(input)
	if err != nil {
		return nil, err
	}

	// Draw the location, then the spies
	location := category.Locations[s.randomizer.Intn(len(category.Locations))].Name

	spies := make(map[int]bool, input.NumberOfSpies)
	for _, idx := range random.Sample(s.randomizer, input.NumberOfPlayers, input.NumberOfSpies) {
		spies[idx] = true
	}

	players := make([]*models.Player, 0, input.NumberOfPlayers)
	for i := 0; i < input.NumberOfPlayers; i++ {
		players = append(players, newPlayer(i+1, spies[i], location))
	}

	now := s.clock.Now()
	round = &models.Round{
		ID:      s.uuidGenerator.NewUUID(),
		TableID: s.tableID,
		Settings: models.Settings{
			NumberOfPlayers: input.NumberOfPlayers,
			NumberOfSpies:   input.NumberOfSpies,
			TimerSeconds:    input.TimerMinutes * 60,
			Category:        category.Name,
		},
		Players:      players,
		Location:     location,
		Phase:        models.PhaseRevealing,
		RevealCursor: 0,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.saveRound(ctx, round); err != nil {
		return nil, err
	}

	return &StartOutput{
		Snapshot: models.NewSnapshot(s.tableID, round),
	}, nil
}

// validateSettings checks the settings and resolves the category
func (s *service) validateSettings(input *StartInput) (models.Category, error) {
	if input.NumberOfPlayers < s.minPlayers {
		return models.Category{}, fmt.Errorf("%w: %d players, need at least %d", ErrTooFewPlayers, input.NumberOfPlayers, s.minPlayers)
	}

	if input.NumberOfPlayers > s.maxPlayers {
		return models.Category{}, fmt.Errorf("%w: %d players, limit is %d", ErrTooManyPlayers, input.NumberOfPlayers, s.maxPlayers)
	}

	if input.NumberOfSpies < 1 || input.NumberOfSpies >= input.NumberOfPlayers {
		return models.Category{}, fmt.Errorf("%w: %d spies for %d players", ErrInvalidSpyCount, input.NumberOfSpies, input.NumberOfPlayers)
	}

	if input.TimerMinutes < 1 || input.TimerMinutes > s.maxTimerMinutes {
		return models.Category{}, fmt.Errorf("%w: %d minutes, must be between 1 and %d", ErrInvalidTimer, input.TimerMinutes, s.maxTimerMinutes)
	}

	category, err := s.catalog.GetCategory(input.Category)
	if err != nil {
		if errors.Is(err, catalog.ErrCategoryNotFound) {
			return models.Category{}, fmt.Errorf("%w: %q", ErrCategoryNotFound, input.Category)
		}
		return models.Category{}, err
	}

	if len(category.Locations) == 0 {
		return models.Category{}, fmt.Errorf("%w: %s", ErrEmptyCategory, category.Name)
	}

	return category, nil
}

// AdvanceReveal performs one half of the two-step card reveal
func (s *service) AdvanceReveal(ctx context.Context, input *AdvanceRevealInput) (*AdvanceRevealOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	round, err := s.loadRound(ctx)
	if err != nil {
		return nil, err
	}
	if round == nil || !round.Phase.IsRevealing() {
		return nil, s.invalidTransition("advance reveal", round)
	}

	complete := false
	switch {
	case round.PendingPlayer != nil:
		// The late arrival's card flips until they are seated
		round.CardVisible = !round.CardVisible
		if round.CardVisible {
			round.PendingSeen = true
		}
	case !round.CardVisible:
		round.CardVisible = true
	case round.RevealCursor < len(round.Players)-1:
		round.RevealCursor++
		round.CardVisible = false
	default:
		round.Phase = models.PhaseInProgress
		round.RevealCursor = models.NoCursor
		round.CardVisible = false
		round.RemainingSeconds = round.Settings.TimerSeconds
		complete = true
	}

	if err := s.saveRound(ctx, round); err != nil {
		return nil, err
	}

	return &AdvanceRevealOutput{
		Snapshot:       models.NewSnapshot(s.tableID, round),
		RevealComplete: complete,
	}, nil
}

// Tick counts the clock down by one second. Outside the discussion phase it does nothing.
func (s *service) Tick(ctx context.Context, input *TickInput) (*TickOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	round, err := s.loadRound(ctx)
	if err != nil {
		return nil, err
	}
	if round == nil || !round.Phase.IsInProgress() {
		return &TickOutput{
			Snapshot: models.NewSnapshot(s.tableID, round),
		}, nil
	}

	expired := false
	if round.RemainingSeconds > 0 {
		round.RemainingSeconds--
	}
	if round.RemainingSeconds == 0 {
		s.endRound(round, models.EndReasonExpired)
		expired = true
	}

	if err := s.saveRound(ctx, round); err != nil {
		return nil, err
	}

	return &TickOutput{
		Snapshot: models.NewSnapshot(s.tableID, round),
		Expired:  expired,
	}, nil
}

// EndRound ends the round before the clock runs out. Ending an ended round does nothing.
func (s *service) EndRound(ctx context.Context, input *EndRoundInput) (*EndRoundOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	round, err := s.loadRound(ctx)
	if err != nil {
		return nil, err
	}
	if round != nil && round.Phase.IsEnded() {
		return &EndRoundOutput{
			Snapshot: models.NewSnapshot(s.tableID, round),
		}, nil
	}
	if round == nil || !round.Phase.IsInProgress() {
		return nil, s.invalidTransition("end round", round)
	}

	s.endRound(round, models.EndReasonCalled)

	if err := s.saveRound(ctx, round); err != nil {
		return nil, err
	}

	return &EndRoundOutput{
		Snapshot: models.NewSnapshot(s.tableID, round),
	}, nil
}

// AddPlayer deals a card to a late arrival and pauses the clock while they look at it
func (s *service) AddPlayer(ctx context.Context, input *AddPlayerInput) (*AddPlayerOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	round, err := s.loadRound(ctx)
	if err != nil {
		return nil, err
	}
	if round == nil || !round.Phase.IsInProgress() {
		return nil, s.invalidTransition("add player", round)
	}

	if len(round.Players) >= s.maxPlayers {
		return nil, fmt.Errorf("%w: %w: %d players", ErrInvalidTransition, ErrRoundFull, len(round.Players))
	}

	isSpy := s.randomizer.Float64() < s.addPlayerSpyChance

	round.PendingPlayer = newPlayer(round.NextPlayerID(), isSpy, civilianLocation(round))
	round.PendingSeen = false
	round.CardVisible = false
	round.RevealCursor = models.NoCursor
	round.Phase = models.PhaseRevealing

	if err := s.saveRound(ctx, round); err != nil {
		return nil, err
	}

	return &AddPlayerOutput{
		Snapshot: models.NewSnapshot(s.tableID, round),
	}, nil
}

// ConfirmAddPlayer seats the late arrival and resumes the clock
func (s *service) ConfirmAddPlayer(ctx context.Context, input *ConfirmAddPlayerInput) (*ConfirmAddPlayerOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	round, err := s.loadRound(ctx)
	if err != nil {
		return nil, err
	}
	if round == nil || round.PendingPlayer == nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTransition, ErrNoPendingPlayer)
	}
	if !round.PendingSeen {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTransition, ErrCardNotShown)
	}

	player := round.PendingPlayer
	round.Players = append(round.Players, player)
	round.PendingPlayer = nil
	round.PendingSeen = false
	round.CardVisible = false
	round.Phase = models.PhaseInProgress

	if err := s.saveRound(ctx, round); err != nil {
		return nil, err
	}

	return &ConfirmAddPlayerOutput{
		Snapshot: models.NewSnapshot(s.tableID, round),
		Player:   player.Clone(),
	}, nil
}

// Restart discards the round
func (s *service) Restart(ctx context.Context, input *RestartInput) (*RestartOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.repo.DeleteRound(ctx, &roundRepo.DeleteRoundInput{
		TableID: s.tableID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to discard round: %w", err)
	}

	return &RestartOutput{
		Snapshot: models.NewSnapshot(s.tableID, nil),
	}, nil
}

// GetSnapshot returns the table's current state
func (s *service) GetSnapshot(ctx context.Context, input *GetSnapshotInput) (*GetSnapshotOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	round, err := s.loadRound(ctx)
	if err != nil {
		return nil, err
	}

	return &GetSnapshotOutput{
		Snapshot: models.NewSnapshot(s.tableID, round),
	}, nil
}

// ListCategories returns the categories a round can be started with
func (s *service) ListCategories(ctx context.Context, input *ListCategoriesInput) (*ListCategoriesOutput, error) {
	return &ListCategoriesOutput{
		Categories: s.catalog.GetCategories(),
	}, nil
}

// loadRound returns the table's round, or nil when the table is unconfigured
func (s *service) loadRound(ctx context.Context) (*models.Round, error) {
	round, err := s.repo.GetRound(ctx, &roundRepo.GetRoundInput{
		TableID: s.tableID,
	})
	if err != nil {
		if errors.Is(err, roundRepo.ErrRoundNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load round: %w", err)
	}

	return round, nil
}

func (s *service) saveRound(ctx context.Context, round *models.Round) error {
	round.UpdatedAt = s.clock.Now()

	err := s.repo.SaveRound(ctx, &roundRepo.SaveRoundInput{
		Round: round,
	})
	if err != nil {
		return fmt.Errorf("failed to save round: %w", err)
	}

	return nil
}

func (s *service) endRound(round *models.Round, reason models.EndReason) {
	round.Phase = models.PhaseEnded
	round.Ended = true
	round.EndReason = reason
	round.RevealCursor = models.NoCursor
	round.CardVisible = false
}

func (s *service) invalidTransition(intent string, round *models.Round) error {
	phase := models.PhaseUnconfigured
	if round != nil {
		phase = round.Phase
	}
	return fmt.Errorf("%w: cannot %s while %s", ErrInvalidTransition, intent, phase)
}

func newPlayer(id int, isSpy bool, location string) *models.Player {
	if isSpy {
		location = models.UnknownLocation
	}
	return &models.Player{
		ID:       id,
		IsSpy:    isSpy,
		Location: location,
	}
}

// civilianLocation reads the shared location off a seated civilian
func civilianLocation(round *models.Round) string {
	for _, p := range round.Players {
		if !p.IsSpy {
			return p.Location
		}
	}
	return round.Location
}
