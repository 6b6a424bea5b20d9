package messaging

import (
	"github.com/KirkDiggler/spyround/internal/models"
	"github.com/KirkDiggler/spyround/internal/random"
)

// MessageTone represents the tone of a message
type MessageTone string

const (
	// ToneNeutral is a plain tone
	ToneNeutral MessageTone = "neutral"

	// ToneFunny is a humorous tone
	ToneFunny MessageTone = "funny"

	// ToneSarcastic is a sarcastic tone
	ToneSarcastic MessageTone = "sarcastic"
)

// Config contains configuration for the messaging service
type Config struct {
	// Randomizer picks among candidate lines
	Randomizer random.Randomizer

	// DefaultTone is used when an input does not ask for one. Defaults to ToneFunny.
	DefaultTone MessageTone
}

// GetRevealMessageInput contains parameters for a private card line
type GetRevealMessageInput struct {
	Player *models.Player

	// PreferredTone is the preferred tone for the message (optional)
	PreferredTone MessageTone
}

// GetRevealMessageOutput contains the card's title and flavor line
type GetRevealMessageOutput struct {
	Title   string
	Message string
	Tone    MessageTone
}

// GetPhaseMessageInput contains parameters for a phase announcement
type GetPhaseMessageInput struct {
	Snapshot *models.Snapshot

	// PreferredTone is the preferred tone for the message (optional)
	PreferredTone MessageTone
}

// GetPhaseMessageOutput contains the phase announcement
type GetPhaseMessageOutput struct {
	Message string
	Tone    MessageTone
}

// GetEndMessageInput contains parameters for the end-of-round headline
type GetEndMessageInput struct {
	Snapshot *models.Snapshot
}

// GetEndMessageOutput contains the end-of-round headline
type GetEndMessageOutput struct {
	Title   string
	Message string
}

// GetErrorMessageInput contains parameters for getting an error message
type GetErrorMessageInput struct {
	Err error

	// PreferredTone is the preferred tone for the message (optional)
	PreferredTone MessageTone
}

// GetErrorMessageOutput contains the result of getting an error message
type GetErrorMessageOutput struct {
	Title   string
	Message string
	Tone    MessageTone
}
