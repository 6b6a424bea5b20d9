package discord

import (
	"context"
	"sync"
	"testing"

	"github.com/KirkDiggler/spyround/internal/catalog"
	"github.com/KirkDiggler/spyround/internal/common/clock"
	"github.com/KirkDiggler/spyround/internal/common/uuid"
	"github.com/KirkDiggler/spyround/internal/models"
	"github.com/KirkDiggler/spyround/internal/random"
	roundRepo "github.com/KirkDiggler/spyround/internal/repositories/round"
	"github.com/KirkDiggler/spyround/internal/services/round"
	"github.com/stretchr/testify/suite"
)

type TableTestSuite struct {
	suite.Suite
	ctx   context.Context
	table *table
}

func (s *TableTestSuite) SetupTest() {
	s.ctx = context.Background()

	engine, err := round.New(&round.Config{
		MinPlayers:      round.DefaultMinPlayers,
		MaxPlayers:      round.DefaultMaxPlayers,
		MaxTimerMinutes: round.DefaultMaxTimerMinutes,
		TableID:         "channel-a",
		Repository:      roundRepo.NewMemory(),
		Catalog:         catalog.Default(),
		Randomizer:      random.New(&random.Config{Seed: 7}),
		Clock:           clock.New(),
		UUIDGenerator:   uuid.New(),
	})
	s.Require().NoError(err)

	_, err = engine.Start(s.ctx, &round.StartInput{
		NumberOfPlayers: 4,
		NumberOfSpies:   1,
		TimerMinutes:    8,
		Category:        catalog.AggregateName,
	})
	s.Require().NoError(err)

	s.table = &table{engine: engine}
}

func TestTableSuite(t *testing.T) {
	suite.Run(t, new(TableTestSuite))
}

func (s *TableTestSuite) snapshot() *models.Snapshot {
	output, err := s.table.engine.GetSnapshot(s.ctx, &round.GetSnapshotInput{})
	s.Require().NoError(err)
	return output.Snapshot
}

// clickTogether runs the same click from several players at once
func (s *TableTestSuite) clickTogether(clicks int, click func() bool) int {
	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		acted int
		start = make(chan struct{})
	)

	for n := 0; n < clicks; n++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			if click() {
				mu.Lock()
				acted++
				mu.Unlock()
			}
		}()
	}

	close(start)
	wg.Wait()

	return acted
}

func (s *TableTestSuite) TestDoubleRevealShowsOneCard() {
	shown := s.clickTogether(2, func() bool {
		_, ok, err := s.table.showCard(s.ctx)
		s.NoError(err)
		return ok
	})
	s.Equal(1, shown)

	current := s.snapshot()
	s.Equal(0, current.RevealCursor)
	s.True(current.CardVisible)

	snapshot, ok, err := s.table.showCard(s.ctx)
	s.Require().NoError(err)
	s.False(ok)
	s.Equal(1, snapshot.CurrentCard().ID)
}

func (s *TableTestSuite) TestManyRevealClicksNeverSkipAPlayer() {
	shown := s.clickTogether(8, func() bool {
		_, ok, err := s.table.showCard(s.ctx)
		s.NoError(err)
		return ok
	})
	s.Equal(1, shown)
	s.Equal(0, s.snapshot().RevealCursor)
}

func (s *TableTestSuite) TestDoubleHideMovesOnOnce() {
	_, ok, err := s.table.showCard(s.ctx)
	s.Require().NoError(err)
	s.Require().True(ok)

	hidden := s.clickTogether(2, func() bool {
		output, err := s.table.hideCard(s.ctx)
		s.NoError(err)
		return output != nil
	})
	s.Equal(1, hidden)

	current := s.snapshot()
	s.Equal(1, current.RevealCursor)
	s.False(current.CardVisible)
}

func (s *TableTestSuite) TestHideWithNoCardShowingDoesNothing() {
	output, err := s.table.hideCard(s.ctx)
	s.Require().NoError(err)
	s.Nil(output)

	current := s.snapshot()
	s.Equal(0, current.RevealCursor)
	s.False(current.CardVisible)
}

func (s *TableTestSuite) TestRevealLeavesJoiningPlayerAlone() {
	for n := 0; n < 4; n++ {
		_, ok, err := s.table.showCard(s.ctx)
		s.Require().NoError(err)
		s.Require().True(ok)

		_, err = s.table.hideCard(s.ctx)
		s.Require().NoError(err)
	}
	s.Require().Equal(models.PhaseInProgress, s.snapshot().Phase)

	joined, err := s.table.addPlayer(s.ctx)
	s.Require().NoError(err)
	s.Require().NotNil(joined.PendingPlayer)
	s.True(joined.CardVisible)

	snapshot, ok, err := s.table.showCard(s.ctx)
	s.Require().NoError(err)
	s.False(ok)
	s.True(snapshot.IsAddingPlayer())
	s.True(s.snapshot().CardVisible)
}

func (s *TableTestSuite) TestDoubleAddPlayerDealsOneCard() {
	for n := 0; n < 4; n++ {
		_, _, err := s.table.showCard(s.ctx)
		s.Require().NoError(err)
		_, err = s.table.hideCard(s.ctx)
		s.Require().NoError(err)
	}

	added := s.clickTogether(2, func() bool {
		_, err := s.table.addPlayer(s.ctx)
		return err == nil
	})
	s.Equal(1, added)

	current := s.snapshot()
	s.Require().NotNil(current.PendingPlayer)
	s.Equal(5, current.PendingPlayer.ID)
	s.True(current.CardVisible)
	s.Len(current.Players, 4)
}

func (s *TableTestSuite) TestReplayDealsWithSameSettings() {
	before := s.snapshot()

	snapshot, ok, err := s.table.replay(s.ctx)
	s.Require().NoError(err)
	s.Require().True(ok)
	s.Equal(models.PhaseRevealing, snapshot.Phase)
	s.Len(snapshot.Players, 4)
	s.NotEqual(before.RoundID, snapshot.RoundID)
}
