package discord

import (
	"context"
	"errors"
	"testing"
	"time"

	clockMocks "github.com/KirkDiggler/spyround/internal/common/clock/mocks"
	"github.com/KirkDiggler/spyround/internal/models"
	"github.com/KirkDiggler/spyround/internal/services/round"
	roundMocks "github.com/KirkDiggler/spyround/internal/services/round/mocks"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type TableRegistryTestSuite struct {
	suite.Suite
	mockCtrl   *gomock.Controller
	mockClock  *clockMocks.MockClock
	mockTicker *clockMocks.MockTicker
	tickCh     chan time.Time
	stopped    chan struct{}

	engines  map[string]*roundMocks.MockService
	ticks    chan string
	registry *tableRegistry
}

func (s *TableRegistryTestSuite) SetupTest() {
	s.mockCtrl = gomock.NewController(s.T())
	s.mockClock = clockMocks.NewMockClock(s.mockCtrl)
	s.mockTicker = clockMocks.NewMockTicker(s.mockCtrl)
	s.tickCh = make(chan time.Time)
	s.stopped = make(chan struct{}, 10)
	s.engines = make(map[string]*roundMocks.MockService)
	s.ticks = make(chan string, 10)

	s.mockClock.EXPECT().NewTicker(time.Second).Return(s.mockTicker).AnyTimes()
	s.mockTicker.EXPECT().C().Return((<-chan time.Time)(s.tickCh)).AnyTimes()
	s.mockTicker.EXPECT().Stop().Do(func() {
		s.stopped <- struct{}{}
	}).AnyTimes()

	factory := func(tableID string) (round.Service, error) {
		if tableID == "broken-channel" {
			return nil, errors.New("no engine")
		}
		engine := roundMocks.NewMockService(s.mockCtrl)
		s.engines[tableID] = engine
		return engine, nil
	}

	s.registry = newTableRegistry(context.Background(), factory, s.mockClock, func(channelID string, snapshot *models.Snapshot) {
		s.ticks <- channelID
	})
}

func (s *TableRegistryTestSuite) TearDownTest() {
	s.registry.close()
}

func TestTableRegistrySuite(t *testing.T) {
	suite.Run(t, new(TableRegistryTestSuite))
}

func (s *TableRegistryTestSuite) TestOneTablePerChannel() {
	first, err := s.registry.get("channel-a")
	s.Require().NoError(err)

	again, err := s.registry.get("channel-a")
	s.Require().NoError(err)
	s.Same(first, again)

	other, err := s.registry.get("channel-b")
	s.Require().NoError(err)
	s.NotSame(first, other)
	s.Len(s.engines, 2)
}

func (s *TableRegistryTestSuite) TestFactoryFailure() {
	_, err := s.registry.get("broken-channel")
	s.Error(err)

	_, err = s.registry.get("")
	s.Error(err)
}

func (s *TableRegistryTestSuite) TestBoardMessage() {
	s.Empty(s.registry.message("channel-a"))

	_, err := s.registry.get("channel-a")
	s.Require().NoError(err)

	s.registry.setMessage("channel-a", "message-id")
	s.Equal("message-id", s.registry.message("channel-a"))

	// Unknown channels are ignored
	s.registry.setMessage("channel-z", "other")
	s.Empty(s.registry.message("channel-z"))
}

func (s *TableRegistryTestSuite) TestCountdownTicksReachCallback() {
	_, err := s.registry.get("channel-a")
	s.Require().NoError(err)

	s.engines["channel-a"].EXPECT().
		Tick(gomock.Any(), gomock.Any()).
		Return(&round.TickOutput{Snapshot: &models.Snapshot{Phase: models.PhaseInProgress, RemainingSeconds: 30}}, nil)

	s.tickCh <- time.Now()

	select {
	case channelID := <-s.ticks:
		s.Equal("channel-a", channelID)
	case <-time.After(time.Second):
		s.Fail("tick did not reach the callback")
	}
}

func (s *TableRegistryTestSuite) TestCloseStopsCountdowns() {
	_, err := s.registry.get("channel-a")
	s.Require().NoError(err)

	s.registry.close()

	select {
	case <-s.stopped:
	case <-time.After(time.Second):
		s.Fail("countdown was not stopped")
	}
	s.Empty(s.registry.message("channel-a"))
}
