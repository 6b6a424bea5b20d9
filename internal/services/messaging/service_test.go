package messaging

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/KirkDiggler/spyround/internal/models"
	randomMocks "github.com/KirkDiggler/spyround/internal/random/mocks"
	"github.com/KirkDiggler/spyround/internal/services/round"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type MessagingServiceTestSuite struct {
	suite.Suite
	mockCtrl       *gomock.Controller
	mockRandomizer *randomMocks.MockRandomizer
	messagingSvc   *service
	ctx            context.Context

	civilian *models.Player
	spy      *models.Player
}

func (s *MessagingServiceTestSuite) SetupTest() {
	s.mockCtrl = gomock.NewController(s.T())
	s.mockRandomizer = randomMocks.NewMockRandomizer(s.mockCtrl)
	s.ctx = context.Background()

	// Always pick the first candidate line
	s.mockRandomizer.EXPECT().Intn(gomock.Any()).Return(0).AnyTimes()

	svc, err := New(&Config{Randomizer: s.mockRandomizer})
	s.Require().NoError(err)
	s.messagingSvc = svc

	s.civilian = &models.Player{ID: 2, Location: "Library"}
	s.spy = &models.Player{ID: 3, IsSpy: true, Location: models.UnknownLocation}
}

func TestMessagingServiceSuite(t *testing.T) {
	suite.Run(t, new(MessagingServiceTestSuite))
}

func (s *MessagingServiceTestSuite) TestNew() {
	_, err := New(nil)
	s.Error(err)

	svc, err := New(&Config{})
	s.Require().NoError(err)
	s.Equal(ToneFunny, svc.defaultTone)
	s.NotNil(svc.random)
}

func (s *MessagingServiceTestSuite) TestRevealMessageForCivilian() {
	output, err := s.messagingSvc.GetRevealMessage(s.ctx, &GetRevealMessageInput{Player: s.civilian})
	s.Require().NoError(err)
	s.Equal("Player 2: Library", output.Title)
	s.Equal(ToneFunny, output.Tone)
	s.NotEmpty(output.Message)
}

func (s *MessagingServiceTestSuite) TestRevealMessageForSpy() {
	output, err := s.messagingSvc.GetRevealMessage(s.ctx, &GetRevealMessageInput{
		Player:        s.spy,
		PreferredTone: ToneNeutral,
	})
	s.Require().NoError(err)
	s.Equal("Player 3: you are the SPY", output.Title)
	s.Equal(ToneNeutral, output.Tone)
	s.NotContains(output.Message, "Library")
}

func (s *MessagingServiceTestSuite) TestRevealMessageRequiresPlayer() {
	_, err := s.messagingSvc.GetRevealMessage(s.ctx, &GetRevealMessageInput{})
	s.Error(err)
}

func (s *MessagingServiceTestSuite) TestPhaseMessage() {
	testCases := []struct {
		name     string
		snapshot *models.Snapshot
		contains string
	}{
		{
			name:     "unconfigured",
			snapshot: &models.Snapshot{Phase: models.PhaseUnconfigured},
			contains: "No round",
		},
		{
			name:     "revealing",
			snapshot: &models.Snapshot{Phase: models.PhaseRevealing, RevealCursor: 2},
			contains: "player 3",
		},
		{
			name:     "adding player",
			snapshot: &models.Snapshot{Phase: models.PhaseRevealing, RevealCursor: models.NoCursor, PendingPlayer: &models.Player{ID: 6}},
			contains: "Player 6",
		},
		{
			name:     "in progress",
			snapshot: &models.Snapshot{Phase: models.PhaseInProgress},
			contains: "clock",
		},
		{
			name:     "ended",
			snapshot: &models.Snapshot{Phase: models.PhaseEnded},
			contains: "Round over",
		},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			output, err := s.messagingSvc.GetPhaseMessage(s.ctx, &GetPhaseMessageInput{Snapshot: tc.snapshot})
			s.Require().NoError(err)
			s.Contains(output.Message, tc.contains)
		})
	}
}

func (s *MessagingServiceTestSuite) TestEndMessage() {
	snapshot := &models.Snapshot{
		Phase:     models.PhaseEnded,
		Ended:     true,
		EndReason: models.EndReasonExpired,
		Location:  "Library",
		Players:   []*models.Player{s.civilian, s.spy},
	}

	output, err := s.messagingSvc.GetEndMessage(s.ctx, &GetEndMessageInput{Snapshot: snapshot})
	s.Require().NoError(err)
	s.Equal("Time's up!", output.Title)
	s.Equal("The clock ran out. The spy was player 3. The location was Library.", output.Message)

	snapshot.EndReason = models.EndReasonCalled
	snapshot.Players = append(snapshot.Players, &models.Player{ID: 5, IsSpy: true, Location: models.UnknownLocation})

	output, err = s.messagingSvc.GetEndMessage(s.ctx, &GetEndMessageInput{Snapshot: snapshot})
	s.Require().NoError(err)
	s.Equal("Round ended", output.Title)
	s.Contains(output.Message, "spies were player 3, 5")
}

func (s *MessagingServiceTestSuite) TestErrorMessage() {
	testCases := []struct {
		err   error
		title string
	}{
		{err: fmt.Errorf("%w: 2 players", round.ErrTooFewPlayers), title: "Not enough players"},
		{err: round.ErrTooManyPlayers, title: "Too many players"},
		{err: round.ErrInvalidSpyCount, title: "Check the spy count"},
		{err: round.ErrInvalidTimer, title: "Check the timer"},
		{err: round.ErrCategoryNotFound, title: "Unknown category"},
		{err: round.ErrEmptyCategory, title: "Empty category"},
		{err: fmt.Errorf("%w: %w", round.ErrInvalidTransition, round.ErrRoundInProgress), title: "Round in progress"},
		{err: fmt.Errorf("%w: %w", round.ErrInvalidTransition, round.ErrRoundFull), title: "Table is full"},
		{err: fmt.Errorf("%w: %w", round.ErrInvalidTransition, round.ErrCardNotShown), title: "Card not seen yet"},
		{err: fmt.Errorf("%w: %w", round.ErrInvalidTransition, round.ErrNoPendingPlayer), title: "Nobody to add"},
		{err: round.ErrInvalidTransition, title: "Not right now"},
		{err: errors.New("connection reset"), title: "Something went wrong"},
	}

	for _, tc := range testCases {
		s.Run(tc.title, func() {
			output, err := s.messagingSvc.GetErrorMessage(s.ctx, &GetErrorMessageInput{Err: tc.err})
			s.Require().NoError(err)
			s.Equal(tc.title, output.Title)
			s.NotEmpty(output.Message)
		})
	}
}
