package countdown

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

type CountdownTestSuite struct {
	suite.Suite
	mockCtrl   *gomock.Controller
	mockClock  *clockMocks.MockClock
	mockTicker *clockMocks.MockTicker
	mockEngine *roundMocks.MockService

	tickCh  chan time.Time
	ticks   chan *models.Snapshot
	driver  *Driver
	cancel  context.CancelFunc
	stopped chan struct{}
}

func (s *CountdownTestSuite) SetupTest() {
	s.mockCtrl = gomock.NewController(s.T())
	s.mockClock = clockMocks.NewMockClock(s.mockCtrl)
	s.mockTicker = clockMocks.NewMockTicker(s.mockCtrl)
	s.mockEngine = roundMocks.NewMockService(s.mockCtrl)

	s.tickCh = make(chan time.Time)
	s.ticks = make(chan *models.Snapshot, 10)

	s.mockClock.EXPECT().NewTicker(time.Second).Return(s.mockTicker).AnyTimes()
	s.mockTicker.EXPECT().C().Return((<-chan time.Time)(s.tickCh)).AnyTimes()

	driver, err := New(&Config{
		Engine: s.mockEngine,
		Clock:  s.mockClock,
		OnTick: func(snapshot *models.Snapshot) {
			s.ticks <- snapshot
		},
	})
	s.Require().NoError(err)
	s.driver = driver
}

func TestCountdownSuite(t *testing.T) {
	suite.Run(t, new(CountdownTestSuite))
}

func (s *CountdownTestSuite) start() {
	s.mockTicker.EXPECT().Stop()

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.stopped = make(chan struct{})

	go func() {
		defer close(s.stopped)
		s.NoError(s.driver.Run(ctx))
	}()
}

func (s *CountdownTestSuite) stop() {
	s.cancel()
	select {
	case <-s.stopped:
	case <-time.After(time.Second):
		s.Fail("driver did not stop")
	}
}

func (s *CountdownTestSuite) TestNew() {
	_, err := New(nil)
	s.ErrorIs(err, ErrNilConfig)

	_, err = New(&Config{Clock: s.mockClock})
	s.ErrorIs(err, ErrNilEngine)

	_, err = New(&Config{Engine: s.mockEngine})
	s.ErrorIs(err, ErrNilClock)

	driver, err := New(&Config{Engine: s.mockEngine, Clock: s.mockClock})
	s.Require().NoError(err)
	s.Equal(DefaultInterval, driver.interval)
}

func (s *CountdownTestSuite) TestTickForwardsSnapshots() {
	running := &models.Snapshot{Phase: models.PhaseInProgress, RemainingSeconds: 41}
	s.mockEngine.EXPECT().
		Tick(gomock.Any(), &round.TickInput{}).
		Return(&round.TickOutput{Snapshot: running}, nil)

	s.start()
	s.tickCh <- time.Now()

	select {
	case snapshot := <-s.ticks:
		s.Equal(41, snapshot.RemainingSeconds)
	case <-time.After(time.Second):
		s.Fail("no tick delivered")
	}

	s.stop()
}

func (s *CountdownTestSuite) TestExpiryIsForwarded() {
	ended := &models.Snapshot{Phase: models.PhaseEnded, Ended: true, EndReason: models.EndReasonExpired}
	s.mockEngine.EXPECT().
		Tick(gomock.Any(), gomock.Any()).
		Return(&round.TickOutput{Snapshot: ended, Expired: true}, nil)

	s.start()
	s.tickCh <- time.Now()

	select {
	case snapshot := <-s.ticks:
		s.True(snapshot.Ended)
	case <-time.After(time.Second):
		s.Fail("no tick delivered")
	}

	s.stop()
}

func (s *CountdownTestSuite) TestIdleTicksAreNotForwarded() {
	revealing := &models.Snapshot{Phase: models.PhaseRevealing}
	s.mockEngine.EXPECT().
		Tick(gomock.Any(), gomock.Any()).
		Return(&round.TickOutput{Snapshot: revealing}, nil).
		Times(2)

	s.start()
	s.tickCh <- time.Now()
	s.tickCh <- time.Now()
	s.stop()

	s.Empty(s.ticks)
}

func (s *CountdownTestSuite) TestTickErrorsKeepRunning() {
	gomock.InOrder(
		s.mockEngine.EXPECT().
			Tick(gomock.Any(), gomock.Any()).
			Return(nil, errors.New("redis down")),
		s.mockEngine.EXPECT().
			Tick(gomock.Any(), gomock.Any()).
			Return(&round.TickOutput{Snapshot: &models.Snapshot{Phase: models.PhaseInProgress, RemainingSeconds: 9}}, nil),
	)

	s.start()
	s.tickCh <- time.Now()
	s.tickCh <- time.Now()

	select {
	case snapshot := <-s.ticks:
		s.Equal(9, snapshot.RemainingSeconds)
	case <-time.After(time.Second):
		s.Fail("no tick delivered")
	}

	s.stop()
}

func (s *CountdownTestSuite) TestResyncResetsTicker() {
	reset := make(chan time.Duration, 1)
	s.mockTicker.EXPECT().Reset(time.Second).Do(func(d time.Duration) {
		reset <- d
	})

	s.start()
	s.driver.Resync()

	select {
	case d := <-reset:
		s.Equal(time.Second, d)
	case <-time.After(time.Second):
		s.Fail("ticker was not reset")
	}

	s.stop()
}

func (s *CountdownTestSuite) TestResyncDoesNotBlock() {
	// Nothing is draining the queue; repeated calls must still return
	s.driver.Resync()
	s.driver.Resync()
	s.driver.Resync()
	s.Len(s.driver.resync, 1)
}

func (s *CountdownTestSuite) TestResyncDropsFireFromOldInterval() {
	clk := clockMocks.NewMockClock(s.mockCtrl)
	ticker := clockMocks.NewMockTicker(s.mockCtrl)

	// A fire from the old interval is already waiting when the resync lands
	fires := make(chan time.Time, 1)
	fires <- time.Now()

	reads := make(chan struct{}, 10)
	clk.EXPECT().NewTicker(time.Second).Return(ticker)
	ticker.EXPECT().C().DoAndReturn(func() <-chan time.Time {
		reads <- struct{}{}
		return fires
	}).AnyTimes()
	ticker.EXPECT().Reset(time.Second)
	ticker.EXPECT().Stop()

	driver, err := New(&Config{
		Engine: s.mockEngine,
		Clock:  clk,
		OnTick: func(snapshot *models.Snapshot) {
			s.ticks <- snapshot
		},
	})
	s.Require().NoError(err)
	driver.Resync()

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		s.NoError(driver.Run(ctx))
	}()

	// Either branch wins the select: one read to wait, one to drain, one to wait again
	for i := 0; i < 3; i++ {
		select {
		case <-reads:
		case <-time.After(time.Second):
			s.FailNow("driver did not settle")
		}
	}
	s.Empty(s.ticks)
	s.Empty(fires)

	s.mockEngine.EXPECT().
		Tick(gomock.Any(), gomock.Any()).
		Return(&round.TickOutput{Snapshot: &models.Snapshot{Phase: models.PhaseInProgress, RemainingSeconds: 59}}, nil)
	fires <- time.Now()

	select {
	case snapshot := <-s.ticks:
		s.Equal(59, snapshot.RemainingSeconds)
	case <-time.After(time.Second):
		s.Fail("no tick delivered")
	}

	cancel()
	<-stopped
}
