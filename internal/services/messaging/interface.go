package messaging

import "context"

//go:generate mockgen -package=mocks -destination=mocks/mock_service.go github.com/KirkDiggler/spyround/internal/services/messaging Service

// Service is the interface for the messaging service
type Service interface {
	// GetRevealMessage returns the flavor text for a player's private card
	GetRevealMessage(ctx context.Context, input *GetRevealMessageInput) (*GetRevealMessageOutput, error)

	// GetPhaseMessage returns a line announcing where the round stands
	GetPhaseMessage(ctx context.Context, input *GetPhaseMessageInput) (*GetPhaseMessageOutput, error)

	// GetEndMessage returns the headline for the end-of-round reveal
	GetEndMessage(ctx context.Context, input *GetEndMessageInput) (*GetEndMessageOutput, error)

	// GetErrorMessage returns a user-friendly explanation of an engine error
	GetErrorMessage(ctx context.Context, input *GetErrorMessageInput) (*GetErrorMessageOutput, error)
}
