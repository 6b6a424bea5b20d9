package messaging

import (
	"context"
	"errors"
	"fmt"

	"github.com/KirkDiggler/spyround/internal/models"
	"github.com/KirkDiggler/spyround/internal/random"
	"github.com/KirkDiggler/spyround/internal/services/round"
)

// service implements the Service interface
type service struct {
	// Random number generator for selecting random messages
	random      random.Randomizer
	defaultTone MessageTone
}

// New creates a new messaging service
func New(cfg *Config) (*service, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	randomizer := cfg.Randomizer
	if randomizer == nil {
		randomizer = random.New(nil)
	}

	tone := cfg.DefaultTone
	if tone == "" {
		tone = ToneFunny
	}

	return &service{
		random:      randomizer,
		defaultTone: tone,
	}, nil
}

func (s *service) tone(preferred MessageTone) MessageTone {
	if preferred == "" {
		return s.defaultTone
	}
	return preferred
}

func (s *service) pick(messages []string) string {
	return messages[s.random.Intn(len(messages))]
}

// GetRevealMessage returns the flavor text for a player's private card
func (s *service) GetRevealMessage(ctx context.Context, input *GetRevealMessageInput) (*GetRevealMessageOutput, error) {
	if input == nil || input.Player == nil {
		return nil, errors.New("input and player cannot be nil")
	}

	tone := s.tone(input.PreferredTone)

	var messages []string
	if input.Player.IsSpy {
		switch tone {
		case ToneNeutral:
			messages = []string{
				"You are the spy. Work out the location without giving yourself away.",
			}
		case ToneSarcastic:
			messages = []string{
				"Congratulations, you know nothing. Act natural.",
				"You're the spy. Try not to ask where the bathroom is.",
				"No location for you. Everyone else is totally not suspicious of you already.",
			}
		default:
			messages = []string{
				"You're the spy! Nod along like you know exactly where you are.",
				"Shh... you're the spy. Listen closely and bluff like a pro.",
				"Spy life! Everyone knows the place except you. Good luck!",
				"You have no idea where you are. That's the job.",
			}
		}

		return &GetRevealMessageOutput{
			Title:   fmt.Sprintf("Player %d: you are the SPY", input.Player.ID),
			Message: s.pick(messages),
			Tone:    tone,
		}, nil
	}

	switch tone {
	case ToneNeutral:
		messages = []string{
			"You are a civilian. Find the spy without naming the location.",
		}
	case ToneSarcastic:
		messages = []string{
			"You know where you are. Try not to shout it.",
			"Civilian. Thrilling. Now find the liar.",
			"You have the location. One of your friends is lying to you.",
		}
	default:
		messages = []string{
			"You're a civilian! Ask sneaky questions and sniff out the spy.",
			"You know the spot. Someone at this table doesn't.",
			"Keep it vague enough to fool the spy, clear enough to prove you belong.",
			"Trust no one. Well, trust yourself.",
		}
	}

	return &GetRevealMessageOutput{
		Title:   fmt.Sprintf("Player %d: %s", input.Player.ID, input.Player.Location),
		Message: s.pick(messages),
		Tone:    tone,
	}, nil
}

// GetPhaseMessage returns a line announcing where the round stands
func (s *service) GetPhaseMessage(ctx context.Context, input *GetPhaseMessageInput) (*GetPhaseMessageOutput, error) {
	if input == nil || input.Snapshot == nil {
		return nil, errors.New("input and snapshot cannot be nil")
	}

	tone := s.tone(input.PreferredTone)
	snapshot := input.Snapshot

	var messages []string
	switch {
	case snapshot.Phase.IsUnconfigured():
		messages = []string{
			"No round yet. Pick a category and deal the cards.",
			"The table is empty. Start a round when everyone's ready.",
		}
	case snapshot.IsAddingPlayer():
		messages = []string{
			fmt.Sprintf("Player %d is joining. Clock's paused while they look at their card.", snapshot.PendingPlayer.ID),
			fmt.Sprintf("Late arrival! Player %d, take a peek and pass it back.", snapshot.PendingPlayer.ID),
		}
	case snapshot.Phase.IsRevealing():
		messages = []string{
			fmt.Sprintf("Pass the device to player %d. No peeking, everyone else.", snapshot.RevealCursor+1),
			fmt.Sprintf("Player %d, your card awaits. Eyes off, the rest of you.", snapshot.RevealCursor+1),
		}
	case snapshot.Phase.IsInProgress():
		messages = []string{
			"The clock is running. Start asking questions!",
			"Discussion time. Somebody here is bluffing.",
			"Questions, answers and shifty eyes. Go!",
		}
		if tone == ToneSarcastic {
			messages = []string{
				"Go on then, interrogate your friends.",
				"Clock's ticking. Accuse someone already.",
			}
		}
	case snapshot.Phase.IsEnded():
		messages = []string{
			"Round over. Time to see who was lying.",
			"Cards on the table!",
		}
	default:
		return &GetPhaseMessageOutput{
			Message: "Spy round in progress.",
			Tone:    tone,
		}, nil
	}

	return &GetPhaseMessageOutput{
		Message: s.pick(messages),
		Tone:    tone,
	}, nil
}

// GetEndMessage returns the headline for the end-of-round reveal
func (s *service) GetEndMessage(ctx context.Context, input *GetEndMessageInput) (*GetEndMessageOutput, error) {
	if input == nil || input.Snapshot == nil {
		return nil, errors.New("input and snapshot cannot be nil")
	}

	snapshot := input.Snapshot
	spies := snapshot.Spies()

	ids := ""
	for i, spy := range spies {
		if i > 0 {
			ids += ", "
		}
		ids += fmt.Sprintf("%d", spy.ID)
	}

	noun := "spy was"
	if len(spies) != 1 {
		noun = "spies were"
	}

	var title string
	var messages []string
	switch snapshot.EndReason {
	case models.EndReasonExpired:
		title = "Time's up!"
		messages = []string{
			fmt.Sprintf("The clock ran out. The %s player %s.", noun, ids),
			fmt.Sprintf("Out of time! Did you catch them? The %s player %s.", noun, ids),
		}
	default:
		title = "Round ended"
		messages = []string{
			fmt.Sprintf("Someone called it! The %s player %s.", noun, ids),
			fmt.Sprintf("Accusations are in. The %s player %s.", noun, ids),
		}
	}

	return &GetEndMessageOutput{
		Title:   title,
		Message: fmt.Sprintf("%s The location was %s.", s.pick(messages), snapshot.Location),
	}, nil
}

// GetErrorMessage returns a user-friendly explanation of an engine error
func (s *service) GetErrorMessage(ctx context.Context, input *GetErrorMessageInput) (*GetErrorMessageOutput, error) {
	if input == nil || input.Err == nil {
		return nil, errors.New("input and error cannot be nil")
	}

	tone := s.tone(input.PreferredTone)
	err := input.Err

	var title string
	var messages []string
	switch {
	case errors.Is(err, round.ErrTooFewPlayers):
		title = "Not enough players"
		messages = []string{
			"You need at least three players. Round up some friends!",
			"A spy game with that few people is just a staring contest.",
		}
	case errors.Is(err, round.ErrTooManyPlayers):
		title = "Too many players"
		messages = []string{
			"That's a crowd, not a table. Try fewer players.",
		}
	case errors.Is(err, round.ErrInvalidSpyCount):
		title = "Check the spy count"
		messages = []string{
			"You need at least one spy and at least one civilian.",
			"If everyone's a spy, who are they spying on?",
		}
	case errors.Is(err, round.ErrInvalidTimer):
		title = "Check the timer"
		messages = []string{
			"Pick a timer of at least one minute.",
		}
	case errors.Is(err, round.ErrCategoryNotFound):
		title = "Unknown category"
		messages = []string{
			"That category isn't in the catalog. List the categories and try again.",
		}
	case errors.Is(err, round.ErrEmptyCategory):
		title = "Empty category"
		messages = []string{
			"That category has no locations to draw from.",
		}
	case errors.Is(err, round.ErrRoundInProgress):
		title = "Round in progress"
		messages = []string{
			"A round is already running here. Finish it or restart first.",
			"Patience! There's already a round going.",
		}
	case errors.Is(err, round.ErrRoundFull):
		title = "Table is full"
		messages = []string{
			"No more seats at this table.",
		}
	case errors.Is(err, round.ErrCardNotShown):
		title = "Card not seen yet"
		messages = []string{
			"The new player has to look at their card before they sit down.",
		}
	case errors.Is(err, round.ErrNoPendingPlayer):
		title = "Nobody to add"
		messages = []string{
			"There's no new player waiting to join.",
		}
	case errors.Is(err, round.ErrInvalidTransition):
		title = "Not right now"
		messages = []string{
			"That doesn't work at this point in the round.",
			"Nice try, but the round isn't there yet.",
		}
		if tone == ToneSarcastic {
			messages = []string{
				"Bold move. Wrong moment.",
			}
		}
	default:
		title = "Something went wrong"
		messages = []string{
			"The spy agency is having technical difficulties. Try again.",
			"Something broke. Even the spy doesn't know what.",
		}
	}

	return &GetErrorMessageOutput{
		Title:   title,
		Message: s.pick(messages),
		Tone:    tone,
	}, nil
}
