package discord

import (
	"testing"

	"github.com/KirkDiggler/spyround/internal/models"
	"github.com/KirkDiggler/spyround/internal/views"
	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/suite"
)

type RenderTestSuite struct {
	suite.Suite
	snapshot *models.Snapshot
}

func (s *RenderTestSuite) SetupTest() {
	s.snapshot = &models.Snapshot{
		TableID: "test-channel-id",
		Phase:   models.PhaseRevealing,
		Settings: &models.Settings{
			NumberOfPlayers: 3,
			NumberOfSpies:   1,
			TimerSeconds:    300,
			Category:        "Sports",
		},
		Players: []*models.Player{
			{ID: 1, Location: "Stadium"},
			{ID: 2, IsSpy: true, Location: models.UnknownLocation},
			{ID: 3, Location: "Stadium"},
		},
		Location:     "Stadium",
		RevealCursor: 0,
	}
}

func TestRenderSuite(t *testing.T) {
	suite.Run(t, new(RenderTestSuite))
}

func (s *RenderTestSuite) buttonIDs(board *boardMessage) []string {
	ids := []string{}
	for _, component := range board.Components {
		row, ok := component.(discordgo.ActionsRow)
		s.Require().True(ok)
		for _, c := range row.Components {
			button, ok := c.(discordgo.Button)
			s.Require().True(ok)
			ids = append(ids, button.CustomID)
		}
	}
	return ids
}

func (s *RenderTestSuite) TestBoardDuringReveal() {
	board := renderBoard(s.snapshot, "Pass the device to player 1.", "")

	s.Require().Len(board.Embeds, 1)
	s.Equal("Spy: Sports", board.Embeds[0].Title)
	s.Equal("Pass the device to player 1.", board.Embeds[0].Description)
	s.Equal([]string{ButtonReveal, ButtonRestart}, s.buttonIDs(board))

	for _, field := range board.Embeds[0].Fields {
		s.NotContains(field.Value, "Stadium")
		s.NotContains(field.Value, "Spy")
	}
}

func (s *RenderTestSuite) TestBoardDuringDiscussion() {
	s.snapshot.Phase = models.PhaseInProgress
	s.snapshot.RevealCursor = models.NoCursor
	s.snapshot.RemainingSeconds = 299

	board := renderBoard(s.snapshot, "Go!", "")

	s.Equal([]string{ButtonAddPlayer, ButtonEndRound, ButtonRestart}, s.buttonIDs(board))
	s.Equal("Clock", board.Embeds[0].Fields[0].Name)
	s.Equal("4:59", board.Embeds[0].Fields[0].Value)
}

func (s *RenderTestSuite) TestBoardWhilePlayerJoins() {
	s.snapshot.RevealCursor = models.NoCursor
	s.snapshot.PendingPlayer = &models.Player{ID: 4, Location: "Stadium"}

	board := renderBoard(s.snapshot, "Late arrival!", "")

	s.Equal([]string{ButtonRestart}, s.buttonIDs(board))
	s.Equal("Joining", board.Embeds[0].Fields[1].Name)
	s.Equal("Player 4", board.Embeds[0].Fields[1].Value)
}

func (s *RenderTestSuite) TestBoardAtTheEnd() {
	s.snapshot.Phase = models.PhaseEnded
	s.snapshot.Ended = true
	s.snapshot.EndReason = models.EndReasonExpired
	s.snapshot.RevealCursor = models.NoCursor

	board := renderBoard(s.snapshot, "Time's up!", "The spy was player 2.")

	s.Equal([]string{ButtonPlayAgain, ButtonRestart}, s.buttonIDs(board))
	s.Equal("**Time's up!**\nThe spy was player 2.", board.Embeds[0].Description)
	s.Equal("Stadium", board.Embeds[0].Fields[0].Value)
	s.Contains(board.Embeds[0].Fields[1].Value, "Player 2: **Spy** (Unknown)")
}

func (s *RenderTestSuite) TestBoardWithoutRound() {
	board := renderBoard(models.NewSnapshot("test-channel-id", nil), "No round yet.", "")

	s.Equal("Spy", board.Embeds[0].Title)
	s.Empty(board.Components)
	s.Empty(board.Embeds[0].Fields)
}

func (s *RenderTestSuite) TestCard() {
	data := renderCard(views.NewCard(s.snapshot.Players[1]), "Player 2: you are the SPY", "Bluff.", ButtonHide, "Hide")

	s.Equal(discordgo.MessageFlagsEphemeral, data.Flags)
	s.Equal("Spy", data.Embeds[0].Fields[0].Value)
	s.Equal(models.UnknownLocation, data.Embeds[0].Fields[1].Value)

	row := data.Components[0].(discordgo.ActionsRow)
	s.Equal(ButtonHide, row.Components[0].(discordgo.Button).CustomID)
}

func (s *RenderTestSuite) TestCategories() {
	text := renderCategories([]models.Category{
		{Name: "Roulette", Locations: make([]models.Location, 3), Aggregate: true},
		{Name: "Sports", Locations: make([]models.Location, 3)},
	})

	s.Equal("**Roulette** (3 locations)\n**Sports** (3 locations)\n", text)
}
