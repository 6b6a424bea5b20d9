package round

import "context"

//go:generate mockgen -package=mocks -destination=mocks/mock_service.go github.com/KirkDiggler/spyround/internal/services/round Service

// Service defines the intents a table can send to its round
type Service interface {
	// Start deals a new round from the given settings
	Start(ctx context.Context, input *StartInput) (*StartOutput, error)

	// AdvanceReveal performs one half of the two-step card reveal
	AdvanceReveal(ctx context.Context, input *AdvanceRevealInput) (*AdvanceRevealOutput, error)

	// Tick counts the clock down by one second
	Tick(ctx context.Context, input *TickInput) (*TickOutput, error)

	// EndRound ends the round before the clock runs out
	EndRound(ctx context.Context, input *EndRoundInput) (*EndRoundOutput, error)

	// AddPlayer deals a card to a late arrival
	AddPlayer(ctx context.Context, input *AddPlayerInput) (*AddPlayerOutput, error)

	// ConfirmAddPlayer seats the late arrival once they have seen their card
	ConfirmAddPlayer(ctx context.Context, input *ConfirmAddPlayerInput) (*ConfirmAddPlayerOutput, error)

	// Restart discards the round
	Restart(ctx context.Context, input *RestartInput) (*RestartOutput, error)

	// GetSnapshot returns the table's current state
	GetSnapshot(ctx context.Context, input *GetSnapshotInput) (*GetSnapshotOutput, error)

	// ListCategories returns the categories a round can be started with
	ListCategories(ctx context.Context, input *ListCategoriesInput) (*ListCategoriesOutput, error)
}
