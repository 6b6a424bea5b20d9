package round

import (
	"context"
	"testing"
	"time"

	"github.com/KirkDiggler/spyround/internal/models"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"
)

type RedisRepositoryTestSuite struct {
	suite.Suite
	mr      *miniredis.Miniredis
	client  *redis.Client
	repo    Repository
	testNow time.Time
}

func (s *RedisRepositoryTestSuite) SetupTest() {
	// Create a new miniredis server for each test
	mr, err := miniredis.Run()
	s.Require().NoError(err)
	s.mr = mr

	s.client = redis.NewClient(&redis.Options{
		Addr: s.mr.Addr(),
	})

	repo, err := NewRedis(&Config{
		RedisClient: s.client,
		Namespace:   "test-namespace",
		TTL:         time.Hour,
	})
	s.Require().NoError(err)
	s.repo = repo

	s.testNow = time.Date(2025, 4, 5, 10, 0, 0, 0, time.UTC)
}

func (s *RedisRepositoryTestSuite) TearDownTest() {
	s.client.Close()
	s.mr.Close()
}

func TestRedisRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(RedisRepositoryTestSuite))
}

func (s *RedisRepositoryTestSuite) TestSaveAndGetRound() {
	round := newTestRound("test-table-id", s.testNow)

	err := s.repo.SaveRound(context.Background(), &SaveRoundInput{Round: round})
	s.Require().NoError(err)

	retrieved, err := s.repo.GetRound(context.Background(), &GetRoundInput{TableID: "test-table-id"})
	s.Require().NoError(err)
	s.Require().NotNil(retrieved)

	s.Equal("test-round-id", retrieved.ID)
	s.Equal("test-table-id", retrieved.TableID)
	s.Equal(round.Settings, retrieved.Settings)
	s.Equal(models.PhaseRevealing, retrieved.Phase)
	s.Equal("High School", retrieved.Location)
	s.Require().Len(retrieved.Players, 3)
	s.True(retrieved.Players[0].IsSpy)
	s.Equal(models.UnknownLocation, retrieved.Players[0].Location)
	s.Nil(retrieved.PendingPlayer)
	s.Equal(s.testNow.Unix(), retrieved.CreatedAt.Unix())
}

func (s *RedisRepositoryTestSuite) TestKeysAreNamespaced() {
	s.Require().NoError(s.repo.SaveRound(context.Background(), &SaveRoundInput{
		Round: newTestRound("test-table-id", s.testNow),
	}))

	s.True(s.mr.Exists("spyround:test-namespace:table:test-table-id"))
	s.True(s.mr.Exists("spyround:test-namespace:round:test-round-id"))

	other, err := NewRedis(&Config{
		RedisClient: s.client,
		Namespace:   "other-namespace",
	})
	s.Require().NoError(err)

	_, err = other.GetRound(context.Background(), &GetRoundInput{TableID: "test-table-id"})
	s.ErrorIs(err, ErrRoundNotFound)
}

func (s *RedisRepositoryTestSuite) TestRoundsExpire() {
	s.Require().NoError(s.repo.SaveRound(context.Background(), &SaveRoundInput{
		Round: newTestRound("test-table-id", s.testNow),
	}))

	s.mr.FastForward(2 * time.Hour)

	_, err := s.repo.GetRound(context.Background(), &GetRoundInput{TableID: "test-table-id"})
	s.ErrorIs(err, ErrRoundNotFound)
}

func (s *RedisRepositoryTestSuite) TestSaveReplacesRound() {
	round := newTestRound("test-table-id", s.testNow)
	s.Require().NoError(s.repo.SaveRound(context.Background(), &SaveRoundInput{Round: round}))

	round.Phase = models.PhaseInProgress
	round.RevealCursor = models.NoCursor
	round.RemainingSeconds = 480
	s.Require().NoError(s.repo.SaveRound(context.Background(), &SaveRoundInput{Round: round}))

	retrieved, err := s.repo.GetRound(context.Background(), &GetRoundInput{TableID: "test-table-id"})
	s.Require().NoError(err)
	s.Equal(models.PhaseInProgress, retrieved.Phase)
	s.Equal(models.NoCursor, retrieved.RevealCursor)
	s.Equal(480, retrieved.RemainingSeconds)
}

func (s *RedisRepositoryTestSuite) TestPendingPlayerRoundTrips() {
	round := newTestRound("test-table-id", s.testNow)
	round.PendingPlayer = &models.Player{ID: 4, Location: "High School"}
	round.PendingSeen = true
	s.Require().NoError(s.repo.SaveRound(context.Background(), &SaveRoundInput{Round: round}))

	retrieved, err := s.repo.GetRound(context.Background(), &GetRoundInput{TableID: "test-table-id"})
	s.Require().NoError(err)
	s.Require().NotNil(retrieved.PendingPlayer)
	s.Equal(4, retrieved.PendingPlayer.ID)
	s.True(retrieved.PendingSeen)
}

func (s *RedisRepositoryTestSuite) TestDeleteRound() {
	s.Require().NoError(s.repo.SaveRound(context.Background(), &SaveRoundInput{
		Round: newTestRound("test-table-id", s.testNow),
	}))

	s.Require().NoError(s.repo.DeleteRound(context.Background(), &DeleteRoundInput{TableID: "test-table-id"}))

	_, err := s.repo.GetRound(context.Background(), &GetRoundInput{TableID: "test-table-id"})
	s.ErrorIs(err, ErrRoundNotFound)
	s.False(s.mr.Exists("spyround:test-namespace:round:test-round-id"))

	s.NoError(s.repo.DeleteRound(context.Background(), &DeleteRoundInput{TableID: "test-table-id"}))
}

func (s *RedisRepositoryTestSuite) TestCorruptRound() {
	s.Require().NoError(s.mr.Set("spyround:test-namespace:table:broken", "{not json"))

	_, err := s.repo.GetRound(context.Background(), &GetRoundInput{TableID: "broken"})
	s.Error(err)
	s.NotErrorIs(err, ErrRoundNotFound)
}

func (s *RedisRepositoryTestSuite) TestNewRedisValidation() {
	_, err := NewRedis(nil)
	s.Error(err)

	_, err = NewRedis(&Config{})
	s.Error(err)

	_, err = NewRedis(&Config{RedisClient: s.client})
	s.Error(err)

	_, err = NewRedis(&Config{RedisClient: s.client, Namespace: "ns", TTL: -time.Second})
	s.Error(err)
}
