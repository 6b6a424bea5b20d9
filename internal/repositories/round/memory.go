package round

import (
	"context"
	"sync"

	"github.com/KirkDiggler/spyround/internal/models"
)

// memoryRepository keeps rounds in process memory
type memoryRepository struct {
	mu     sync.RWMutex
	rounds map[string]*models.Round
}

// NewMemory creates an in-memory round repository
func NewMemory() *memoryRepository {
	return &memoryRepository{
		rounds: make(map[string]*models.Round),
	}
}

// SaveRound stores a copy of the round
func (r *memoryRepository) SaveRound(ctx context.Context, input *SaveRoundInput) error {
	if input == nil || input.Round == nil {
		return errNilRound
	}
	if input.Round.TableID == "" {
		return errBlankTableID
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.rounds[input.Round.TableID] = input.Round.Clone()

	return nil
}

// GetRound returns a copy of the table's round
func (r *memoryRepository) GetRound(ctx context.Context, input *GetRoundInput) (*models.Round, error) {
	if input == nil || input.TableID == "" {
		return nil, errBlankTableID
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	round, ok := r.rounds[input.TableID]
	if !ok {
		return nil, ErrRoundNotFound
	}

	return round.Clone(), nil
}

// DeleteRound removes the table's round. Deleting an empty table is not an error.
func (r *memoryRepository) DeleteRound(ctx context.Context, input *DeleteRoundInput) error {
	if input == nil || input.TableID == "" {
		return errBlankTableID
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rounds, input.TableID)

	return nil
}
