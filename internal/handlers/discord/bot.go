package discord

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/KirkDiggler/spyround/internal/common/clock"
	"github.com/KirkDiggler/spyround/internal/models"
	"github.com/KirkDiggler/spyround/internal/services/messaging"
	"github.com/KirkDiggler/spyround/internal/services/round"
	"github.com/KirkDiggler/spyround/internal/views"
	"github.com/bwmarrin/discordgo"
)

// DefaultBoardRefreshSeconds is how often a running clock is pushed to the board
const DefaultBoardRefreshSeconds = 15

// Button IDs
const (
	ButtonReveal    = "spy_reveal"
	ButtonHide      = "spy_hide"
	ButtonAddPlayer = "spy_add_player"
	ButtonConfirm   = "spy_confirm"
	ButtonEndRound  = "spy_end_round"
	ButtonRestart   = "spy_restart"
	ButtonPlayAgain = "spy_play_again"
)

// Bot represents the Discord bot instance
type Bot struct {
	session    *discordgo.Session
	commands   map[string]CommandHandler
	commandIDs map[string]string // Maps command name to command ID
	tables     *tableRegistry
	messaging  messaging.Service
	config     *Config
	cancel     context.CancelFunc
}

// Config holds the configuration for the bot
type Config struct {
	// Discord bot token
	Token string

	// Application ID for the bot
	ApplicationID string

	// Optional guild ID for development (server-specific commands)
	GuildID string

	// NewEngine builds the round engine for a channel
	NewEngine EngineFactory

	// Messaging service
	Messaging messaging.Service

	// Clock drives every channel's countdown
	Clock clock.Clock

	// Categories offered as choices on /spy start
	Categories []models.Category

	// DefaultSettings fill in options left off /spy start
	DefaultSettings round.StartInput

	// BoardRefreshSeconds is how often a running clock is pushed to the board
	BoardRefreshSeconds int
}

// New creates a new Discord bot
func New(cfg *Config) (*Bot, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	if cfg.Token == "" {
		return nil, errors.New("token cannot be empty")
	}

	if cfg.NewEngine == nil {
		return nil, errors.New("engine factory cannot be nil")
	}

	if cfg.Messaging == nil {
		return nil, errors.New("messaging service cannot be nil")
	}

	if cfg.Clock == nil {
		cfg.Clock = clock.New()
	}

	if cfg.BoardRefreshSeconds <= 0 {
		cfg.BoardRefreshSeconds = DefaultBoardRefreshSeconds
	}

	// Create a new Discord session
	session, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create Discord session: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	bot := &Bot{
		session:    session,
		commands:   make(map[string]CommandHandler),
		commandIDs: make(map[string]string),
		messaging:  cfg.Messaging,
		config:     cfg,
		cancel:     cancel,
	}
	bot.tables = newTableRegistry(ctx, cfg.NewEngine, cfg.Clock, bot.onTick)

	// Register the interaction handler
	session.AddHandler(bot.handleInteraction)

	return bot, nil
}

// Start initializes the Discord connection and registers commands
func (b *Bot) Start() error {
	// Open the websocket connection to Discord
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open Discord connection: %w", err)
	}

	// Register the spy command
	if err := b.RegisterCommand(NewSpyCommand(b)); err != nil {
		return fmt.Errorf("failed to register spy command: %w", err)
	}

	log.Println("[discord] bot is now running. Press CTRL-C to exit.")
	return nil
}

// Stop stops every countdown, removes the commands and closes the connection
func (b *Bot) Stop() error {
	b.cancel()
	b.tables.close()

	appID := b.appID()
	for cmdName, cmdID := range b.commandIDs {
		if err := b.session.ApplicationCommandDelete(appID, b.config.GuildID, cmdID); err != nil {
			log.Printf("[discord] failed to delete command %s (ID: %s): %v", cmdName, cmdID, err)
		} else {
			log.Printf("[discord] deleted command %s (ID: %s)", cmdName, cmdID)
		}
	}

	return b.session.Close()
}

func (b *Bot) appID() string {
	if b.config.ApplicationID != "" {
		return b.config.ApplicationID
	}
	// Fall back to session user ID if application ID is not provided
	return b.session.State.User.ID
}

// RegisterCommand registers a command with Discord
func (b *Bot) RegisterCommand(cmd CommandHandler) error {
	// If guild ID is provided, register command for that specific guild
	// Otherwise, register it globally
	if b.config.GuildID != "" {
		log.Printf("[discord] registering command %s for guild %s", cmd.GetName(), b.config.GuildID)
	} else {
		log.Printf("[discord] registering command %s globally", cmd.GetName())
	}

	createdCmd, err := b.session.ApplicationCommandCreate(b.appID(), b.config.GuildID, cmd.GetCommand())
	if err != nil {
		return fmt.Errorf("failed to create command %s: %w", cmd.GetName(), err)
	}

	// Store the command handler and its ID
	b.commands[cmd.GetName()] = cmd
	b.commandIDs[cmd.GetName()] = createdCmd.ID
	log.Printf("[discord] registered command: %s with ID: %s", cmd.GetName(), createdCmd.ID)

	return nil
}

// handleInteraction handles Discord interactions
func (b *Bot) handleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		if h, ok := b.commands[i.ApplicationCommandData().Name]; ok {
			if err := h.Handle(s, i); err != nil {
				log.Printf("[discord] error handling command %s: %v", i.ApplicationCommandData().Name, err)
			}
		}
	case discordgo.InteractionMessageComponent:
		if err := b.handleComponentInteraction(s, i); err != nil {
			log.Printf("[discord] error handling component interaction: %v", err)
		}
	}
}

// handleComponentInteraction handles button clicks
func (b *Bot) handleComponentInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	customID := i.MessageComponentData().CustomID
	channelID := i.ChannelID

	t, err := b.tables.get(channelID)
	if err != nil {
		return b.respondWithError(s, i, err)
	}

	switch customID {
	case ButtonReveal:
		return b.handleRevealButton(s, i, channelID, t)
	case ButtonHide:
		return b.handleHideButton(s, i, channelID, t)
	case ButtonAddPlayer:
		return b.handleAddPlayerButton(s, i, channelID, t)
	case ButtonConfirm:
		return b.handleConfirmButton(s, i, channelID, t)
	case ButtonEndRound:
		return b.handleEndRoundButton(s, i, t)
	case ButtonRestart:
		return b.handleRestartButton(s, i, t)
	case ButtonPlayAgain:
		return b.handlePlayAgainButton(s, i, t)
	default:
		return RespondWithError(s, i, "Unknown button", customID)
	}
}

// handleRevealButton shows the current card to whoever clicked
func (b *Bot) handleRevealButton(s *discordgo.Session, i *discordgo.InteractionCreate, channelID string, t *table) error {
	ctx := context.Background()

	snapshot, shown, err := t.showCard(ctx)
	if err != nil {
		return b.respondWithError(s, i, err)
	}
	if !shown {
		if snapshot.IsAddingPlayer() {
			return RespondWithEphemeralMessage(s, i, fmt.Sprintf("Player %d is joining the round.", snapshot.PendingPlayer.ID))
		}
		if card := snapshot.CurrentCard(); card != nil {
			return RespondWithEphemeralMessage(s, i, fmt.Sprintf("Player %d is still looking at their card.", card.ID))
		}
		return RespondWithEphemeralMessage(s, i, "Someone is still looking at their card.")
	}

	b.updateBoard(s, channelID, snapshot)

	return b.respondWithCard(ctx, s, i, snapshot.CurrentCard(), ButtonHide, "Got it, hide my card")
}

// handleHideButton hides the clicker's card and moves the reveal on
func (b *Bot) handleHideButton(s *discordgo.Session, i *discordgo.InteractionCreate, channelID string, t *table) error {
	ctx := context.Background()

	output, err := t.hideCard(ctx)
	if err != nil {
		return b.respondWithError(s, i, err)
	}
	if output == nil {
		return RespondWithUpdate(s, i, hiddenCardResponse("This card is already hidden."))
	}

	message := "Card hidden. Next player, press **Reveal my card**."
	if output.RevealComplete {
		t.driver.Resync()
		message = "Card hidden. Everyone has seen their card, the clock is running!"
	}

	b.updateBoard(s, channelID, output.Snapshot)

	return RespondWithUpdate(s, i, hiddenCardResponse(message))
}

// handleAddPlayerButton deals a card to the clicker and pauses the clock
func (b *Bot) handleAddPlayerButton(s *discordgo.Session, i *discordgo.InteractionCreate, channelID string, t *table) error {
	ctx := context.Background()

	// The clicker sees their card straight away
	snapshot, err := t.addPlayer(ctx)
	if err != nil {
		return b.respondWithError(s, i, err)
	}

	b.updateBoard(s, channelID, snapshot)

	return b.respondWithCard(ctx, s, i, snapshot.PendingPlayer, ButtonConfirm, "Join the round")
}

// handleConfirmButton seats the new player and resumes the clock
func (b *Bot) handleConfirmButton(s *discordgo.Session, i *discordgo.InteractionCreate, channelID string, t *table) error {
	ctx := context.Background()

	var output *round.ConfirmAddPlayerOutput
	err := t.exclusive(func() error {
		var err error
		output, err = t.engine.ConfirmAddPlayer(ctx, &round.ConfirmAddPlayerInput{})
		return err
	})
	if err != nil {
		return b.respondWithError(s, i, err)
	}
	t.driver.Resync()

	b.updateBoard(s, channelID, output.Snapshot)

	return RespondWithUpdate(s, i, hiddenCardResponse(fmt.Sprintf("You're player %d. The clock is running again!", output.Player.ID)))
}

// handleEndRoundButton ends the round and reveals every role on the board
func (b *Bot) handleEndRoundButton(s *discordgo.Session, i *discordgo.InteractionCreate, t *table) error {
	ctx := context.Background()

	var output *round.EndRoundOutput
	err := t.exclusive(func() error {
		var err error
		output, err = t.engine.EndRound(ctx, &round.EndRoundInput{})
		return err
	})
	if err != nil {
		return b.respondWithError(s, i, err)
	}

	return b.respondWithBoard(ctx, s, i, output.Snapshot)
}

// handleRestartButton clears the table
func (b *Bot) handleRestartButton(s *discordgo.Session, i *discordgo.InteractionCreate, t *table) error {
	ctx := context.Background()

	var output *round.RestartOutput
	err := t.exclusive(func() error {
		var err error
		output, err = t.engine.Restart(ctx, &round.RestartInput{})
		return err
	})
	if err != nil {
		return b.respondWithError(s, i, err)
	}

	return b.respondWithBoard(ctx, s, i, output.Snapshot)
}

// handlePlayAgainButton deals a fresh round with the same settings
func (b *Bot) handlePlayAgainButton(s *discordgo.Session, i *discordgo.InteractionCreate, t *table) error {
	ctx := context.Background()

	snapshot, replayed, err := t.replay(ctx)
	if err != nil {
		return b.respondWithError(s, i, err)
	}
	if !replayed {
		return RespondWithEphemeralMessage(s, i, "There is no round to replay. Use `/spy start`.")
	}

	return b.respondWithBoard(ctx, s, i, snapshot)
}

// onTick pushes the running clock to the board every few seconds and when it runs out
func (b *Bot) onTick(channelID string, snapshot *models.Snapshot) {
	if snapshot.Ended || snapshot.RemainingSeconds%b.config.BoardRefreshSeconds == 0 {
		b.updateBoard(b.session, channelID, snapshot)
	}
}

// updateBoard edits the channel's board message in place
func (b *Bot) updateBoard(s *discordgo.Session, channelID string, snapshot *models.Snapshot) {
	messageID := b.tables.message(channelID)
	if messageID == "" {
		return
	}

	board := b.renderBoardFor(context.Background(), snapshot)

	_, err := s.ChannelMessageEditComplex(&discordgo.MessageEdit{
		Channel:    channelID,
		ID:         messageID,
		Embeds:     &board.Embeds,
		Components: &board.Components,
	})
	if err != nil {
		log.Printf("[discord] error updating board in channel %s: %v", channelID, err)
	}
}

// renderBoardFor picks the board's headline and renders it
func (b *Bot) renderBoardFor(ctx context.Context, snapshot *models.Snapshot) *boardMessage {
	if snapshot.Ended {
		end, err := b.messaging.GetEndMessage(ctx, &messaging.GetEndMessageInput{Snapshot: snapshot})
		if err == nil {
			return renderBoard(snapshot, end.Title, end.Message)
		}
		log.Printf("[discord] error getting end message: %v", err)
	}

	phase, err := b.messaging.GetPhaseMessage(ctx, &messaging.GetPhaseMessageInput{Snapshot: snapshot})
	if err != nil {
		log.Printf("[discord] error getting phase message: %v", err)
		return renderBoard(snapshot, string(snapshot.Phase), "")
	}

	return renderBoard(snapshot, phase.Message, "")
}

func (b *Bot) respondWithBoard(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, snapshot *models.Snapshot) error {
	board := b.renderBoardFor(ctx, snapshot)

	return RespondWithUpdate(s, i, &discordgo.InteractionResponseData{
		Embeds:     board.Embeds,
		Components: board.Components,
	})
}

func (b *Bot) respondWithCard(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, player *models.Player, buttonID, buttonLabel string) error {
	if player == nil {
		return RespondWithEphemeralMessage(s, i, "There is no card to show right now.")
	}

	reveal, err := b.messaging.GetRevealMessage(ctx, &messaging.GetRevealMessageInput{Player: player})
	if err != nil {
		return b.respondWithError(s, i, err)
	}

	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: renderCard(views.NewCard(player), reveal.Title, reveal.Message, buttonID, buttonLabel),
	})
}

// respondWithError explains an engine error to the clicker only
func (b *Bot) respondWithError(s *discordgo.Session, i *discordgo.InteractionCreate, err error) error {
	if !round.IsConfigurationError(err) && !errors.Is(err, round.ErrInvalidTransition) {
		log.Printf("[discord] error in channel %s: %v", i.ChannelID, err)
	}

	output, msgErr := b.messaging.GetErrorMessage(context.Background(), &messaging.GetErrorMessageInput{Err: err})
	if msgErr != nil {
		return RespondWithError(s, i, "Error", err.Error())
	}

	return RespondWithError(s, i, output.Title, output.Message)
}

// hiddenCardResponse replaces a private card once it has been put away
func hiddenCardResponse(message string) *discordgo.InteractionResponseData {
	return &discordgo.InteractionResponseData{
		Embeds: []*discordgo.MessageEmbed{
			{
				Title:       "Card hidden",
				Description: message,
				Color:       colorPaused,
			},
		},
		Components: []discordgo.MessageComponent{},
	}
}
