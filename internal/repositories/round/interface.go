package round

//go:generate mockgen -package=mocks -destination=mocks/mock_repository.go github.com/KirkDiggler/spyround/internal/repositories/round Repository

import (
	"context"

	"github.com/KirkDiggler/spyround/internal/models"
)

// Repository stores the single live round of each table
type Repository interface {
	// SaveRound persists a round, replacing whatever the table held
	SaveRound(ctx context.Context, input *SaveRoundInput) error

	// GetRound retrieves the live round of a table
	GetRound(ctx context.Context, input *GetRoundInput) (*models.Round, error)

	// DeleteRound discards the live round of a table
	DeleteRound(ctx context.Context, input *DeleteRoundInput) error
}
