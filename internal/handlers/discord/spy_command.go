package discord

import (
	"context"
	"errors"
	"log"

	"github.com/KirkDiggler/spyround/internal/models"
	"github.com/KirkDiggler/spyround/internal/services/round"
	"github.com/bwmarrin/discordgo"
)

// maxChoices is Discord's limit on choices for one option
const maxChoices = 25

// SpyCommand handles the /spy command
type SpyCommand struct {
	BaseCommand
	bot *Bot
}

// NewSpyCommand creates a new spy command handler
func NewSpyCommand(bot *Bot) *SpyCommand {
	categoryOption := &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "category",
		Description: "Where the location is drawn from",
	}
	for _, category := range bot.config.Categories {
		if len(categoryOption.Choices) == maxChoices {
			break
		}
		categoryOption.Choices = append(categoryOption.Choices, &discordgo.ApplicationCommandOptionChoice{
			Name:  category.Name,
			Value: category.Name,
		})
	}

	return &SpyCommand{
		BaseCommand: BaseCommand{
			Name:        "spy",
			Description: "Find the spy who doesn't know where you are",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "start",
					Description: "Deal a new round in this channel",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionInteger,
							Name:        "players",
							Description: "Number of players",
						},
						{
							Type:        discordgo.ApplicationCommandOptionInteger,
							Name:        "spies",
							Description: "Number of spies",
						},
						{
							Type:        discordgo.ApplicationCommandOptionInteger,
							Name:        "minutes",
							Description: "Discussion timer in minutes",
						},
						categoryOption,
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "categories",
					Description: "List the location categories",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "restart",
					Description: "Discard the round in this channel",
				},
			},
		},
		bot: bot,
	}
}

// Handle processes a Discord interaction for the spy command
func (c *SpyCommand) Handle(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	if i.Type != discordgo.InteractionApplicationCommand {
		return nil
	}

	data := i.ApplicationCommandData()
	if data.Name != c.Name || len(data.Options) == 0 {
		return nil
	}

	channelID := i.ChannelID

	// Handle the appropriate subcommand
	var err error
	switch data.Options[0].Name {
	case "start":
		err = c.handleStart(s, i, channelID, parseStartOptions(data.Options[0].Options, c.bot.config.DefaultSettings))
	case "categories":
		err = c.handleCategories(s, i)
	case "restart":
		err = c.handleRestart(s, i, channelID)
	default:
		err = errors.New("unknown subcommand")
	}

	return err
}

// handleStart handles the start subcommand
func (c *SpyCommand) handleStart(s *discordgo.Session, i *discordgo.InteractionCreate, channelID string, input *round.StartInput) error {
	ctx := context.Background()

	t, err := c.bot.tables.get(channelID)
	if err != nil {
		return c.bot.respondWithError(s, i, err)
	}

	var output *round.StartOutput
	err = t.exclusive(func() error {
		output, err = t.engine.Start(ctx, input)
		return err
	})
	if err != nil {
		return c.bot.respondWithError(s, i, err)
	}

	board := c.bot.renderBoardFor(ctx, output.Snapshot)

	// Send the board to the channel
	msg, err := s.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Embeds:     board.Embeds,
		Components: board.Components,
	})
	if err != nil {
		log.Printf("[discord] error sending board: %v", err)
		return RespondWithEphemeralMessage(s, i, "The round is dealt but the board could not be posted.")
	}
	c.bot.tables.setMessage(channelID, msg.ID)

	return RespondWithEphemeralMessage(s, i, "Cards are dealt! Take turns pressing **Reveal my card**.")
}

// handleCategories handles the categories subcommand
func (c *SpyCommand) handleCategories(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	return RespondWithEphemeralEmbed(s, i, "Categories", renderCategories(c.bot.config.Categories))
}

// handleRestart handles the restart subcommand
func (c *SpyCommand) handleRestart(s *discordgo.Session, i *discordgo.InteractionCreate, channelID string) error {
	ctx := context.Background()

	t, err := c.bot.tables.get(channelID)
	if err != nil {
		return c.bot.respondWithError(s, i, err)
	}

	var output *round.RestartOutput
	err = t.exclusive(func() error {
		output, err = t.engine.Restart(ctx, &round.RestartInput{})
		return err
	})
	if err != nil {
		return c.bot.respondWithError(s, i, err)
	}

	c.bot.updateBoard(s, channelID, output.Snapshot)

	return RespondWithEphemeralMessage(s, i, "Table cleared. Use `/spy start` to deal a new round.")
}

// parseStartOptions fills unset options from the defaults
func parseStartOptions(options []*discordgo.ApplicationCommandInteractionDataOption, defaults round.StartInput) *round.StartInput {
	input := defaults

	for _, opt := range options {
		switch opt.Name {
		case "players":
			input.NumberOfPlayers = int(opt.IntValue())
		case "spies":
			input.NumberOfSpies = int(opt.IntValue())
		case "minutes":
			input.TimerMinutes = int(opt.IntValue())
		case "category":
			input.Category = opt.StringValue()
		}
	}

	return &input
}

// startInputFor rebuilds the settings a snapshot's round was dealt with
func startInputFor(snapshot *models.Snapshot) (*round.StartInput, bool) {
	if snapshot == nil || snapshot.Settings == nil {
		return nil, false
	}

	return &round.StartInput{
		NumberOfPlayers: snapshot.Settings.NumberOfPlayers,
		NumberOfSpies:   snapshot.Settings.NumberOfSpies,
		TimerMinutes:    snapshot.Settings.TimerSeconds / 60,
		Category:        snapshot.Settings.Category,
	}, true
}
