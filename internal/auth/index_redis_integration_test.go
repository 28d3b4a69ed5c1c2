//go:build integration

package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"carelink/internal/auth"
	id "carelink/pkg/domain"
	"carelink/pkg/testutil/containers"
)

type RedisIndexSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	index *auth.RedisIndex
	ctx   context.Context
}

func TestRedisIndexSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisIndexSuite))
}

func (s *RedisIndexSuite) SetupSuite() {
	s.ctx = context.Background()
	s.redis = containers.NewRedisContainer(s.T())
	s.index = auth.NewRedisIndex(s.redis.Client, time.Hour)
}

func (s *RedisIndexSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(s.ctx))
}

func (s *RedisIndexSuite) TestAddContainsRemove() {
	accountID := id.NewAccountID().String()

	ok, err := s.index.Contains(s.ctx, accountID, "digest-a")
	s.Require().NoError(err)
	s.False(ok)

	s.Require().NoError(s.index.Add(s.ctx, accountID, "digest-a"))

	ok, err = s.index.Contains(s.ctx, accountID, "digest-a")
	s.Require().NoError(err)
	s.True(ok)

	// Membership is per account.
	ok, err = s.index.Contains(s.ctx, id.NewAccountID().String(), "digest-a")
	s.Require().NoError(err)
	s.False(ok)

	s.Require().NoError(s.index.Remove(s.ctx, accountID, "digest-a"))
	ok, err = s.index.Contains(s.ctx, accountID, "digest-a")
	s.Require().NoError(err)
	s.False(ok)
}

func (s *RedisIndexSuite) TestKeyCarriesTTL() {
	accountID := id.NewAccountID().String()
	s.Require().NoError(s.index.Add(s.ctx, accountID, "digest-a"))

	ttl, err := s.redis.Client.TTL(s.ctx, "remembered:account:"+accountID).Result()
	s.Require().NoError(err)
	s.Greater(ttl, time.Duration(0))
	s.LessOrEqual(ttl, time.Hour)
}
