package discord

import (
	"fmt"
	"strings"

	"github.com/KirkDiggler/spyround/internal/models"
	"github.com/KirkDiggler/spyround/internal/views"
	"github.com/bwmarrin/discordgo"
)

const (
	colorActive = 0x00ff00 // Green
	colorPaused = 0xffcc00 // Amber
	colorEnded  = 0xff0000 // Red
)

// boardMessage is the rendered public board for a channel
type boardMessage struct {
	Embeds     []*discordgo.MessageEmbed
	Components []discordgo.MessageComponent
}

// renderBoard renders the public board. Roles stay hidden until the round ends.
func renderBoard(snapshot *models.Snapshot, headline, detail string) *boardMessage {
	board := views.NewBoard(snapshot)

	color := colorActive
	title := "Spy"
	if board.Category != "" {
		title = fmt.Sprintf("Spy: %s", board.Category)
	}

	var fields []*discordgo.MessageEmbedField
	var buttons []discordgo.MessageComponent

	switch {
	case board.Phase.IsUnconfigured():
		color = colorEnded
	case board.AddingPlayer != 0:
		color = colorPaused
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:   "Clock (paused)",
			Value:  board.Clock,
			Inline: true,
		}, &discordgo.MessageEmbedField{
			Name:   "Joining",
			Value:  fmt.Sprintf("Player %d", board.AddingPlayer),
			Inline: true,
		})
	case board.Phase.IsRevealing():
		color = colorPaused
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:   "Reveal",
			Value:  board.Progress,
			Inline: true,
		})
		buttons = append(buttons, discordgo.Button{
			Label:    "Reveal my card",
			Style:    discordgo.PrimaryButton,
			CustomID: ButtonReveal,
		})
	case board.Phase.IsInProgress():
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:   "Clock",
			Value:  board.Clock,
			Inline: true,
		})
		buttons = append(buttons, discordgo.Button{
			Label:    "I just arrived",
			Style:    discordgo.SecondaryButton,
			CustomID: ButtonAddPlayer,
		}, discordgo.Button{
			Label:    "End round",
			Style:    discordgo.DangerButton,
			CustomID: ButtonEndRound,
		})
	case board.Phase.IsEnded():
		color = colorEnded
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:   "Location",
			Value:  board.Location,
			Inline: true,
		})
		buttons = append(buttons, discordgo.Button{
			Label:    "Play again",
			Style:    discordgo.SuccessButton,
			CustomID: ButtonPlayAgain,
		})
	}

	if len(board.Tiles) > 0 {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:   fmt.Sprintf("Players (%d spies)", board.SpyCount),
			Value:  renderTiles(board),
			Inline: false,
		})
	}

	if !board.Phase.IsUnconfigured() {
		buttons = append(buttons, discordgo.Button{
			Label:    "Restart",
			Style:    discordgo.SecondaryButton,
			CustomID: ButtonRestart,
		})
	}

	description := headline
	if detail != "" {
		description = fmt.Sprintf("**%s**\n%s", headline, detail)
	}

	message := &boardMessage{
		Embeds: []*discordgo.MessageEmbed{
			{
				Title:       title,
				Description: description,
				Color:       color,
				Fields:      fields,
			},
		},
		Components: []discordgo.MessageComponent{},
	}

	if len(buttons) > 0 {
		message.Components = append(message.Components, discordgo.ActionsRow{
			Components: buttons,
		})
	}

	return message
}

func renderTiles(board *views.Board) string {
	lines := make([]string, 0, len(board.Tiles))
	for _, tile := range board.Tiles {
		marker := "⬜"
		switch {
		case tile.Current:
			marker = "👀"
		case tile.Revealed:
			marker = "✅"
		}

		line := fmt.Sprintf("%s Player %d", marker, tile.PlayerID)
		if board.Ended {
			line = fmt.Sprintf("Player %d: **%s** (%s)", tile.PlayerID, tile.Role, tile.Location)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// renderCard renders a private card with a single follow-up button
func renderCard(card *views.Card, title, flavor, buttonID, buttonLabel string) *discordgo.InteractionResponseData {
	color := colorActive
	if card.IsSpy {
		color = colorEnded
	}

	return &discordgo.InteractionResponseData{
		Embeds: []*discordgo.MessageEmbed{
			{
				Title:       title,
				Description: flavor,
				Color:       color,
				Fields: []*discordgo.MessageEmbedField{
					{Name: "Role", Value: string(card.Role), Inline: true},
					{Name: "Location", Value: card.Location, Inline: true},
				},
			},
		},
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					discordgo.Button{
						Label:    buttonLabel,
						Style:    discordgo.PrimaryButton,
						CustomID: buttonID,
					},
				},
			},
		},
		Flags: discordgo.MessageFlagsEphemeral,
	}
}

// renderCategories lists the categories a round can be started with
func renderCategories(categories []models.Category) string {
	var sb strings.Builder
	for _, category := range categories {
		sb.WriteString(fmt.Sprintf("**%s** (%d locations)\n", category.Name, len(category.Locations)))
	}
	return sb.String()
}
