//go:build integration

package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"

	"github.com/example/permitdesk/internal/config"
)

type InvalidatorIntegrationSuite struct {
	suite.Suite
	container *tcredis.RedisContainer
	client    *Client
}

func TestInvalidatorIntegrationSuite(t *testing.T) {
	suite.Run(t, new(InvalidatorIntegrationSuite))
}

func (s *InvalidatorIntegrationSuite) SetupSuite() {
	ctx := context.Background()

	container, err := tcredis.Run(ctx, "redis:7-alpine")
	s.Require().NoError(err, "failed to start redis container")
	s.container = container

	url, err := container.ConnectionString(ctx)
	s.Require().NoError(err)

	client, err := New(ctx, config.RedisConfig{URL: url, PoolSize: 2, DialTimeout: config.Duration{Duration: 5 * time.Second}})
	s.Require().NoError(err)
	s.client = client
}

func (s *InvalidatorIntegrationSuite) TearDownSuite() {
	if s.client != nil {
		_ = s.client.Close()
	}
	if err := testcontainers.TerminateContainer(s.container); err != nil {
		s.T().Logf("failed to terminate redis container: %v", err)
	}
}

func (s *InvalidatorIntegrationSuite) TestSubscriberReceivesKeys() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	t := s.T()

	sub := s.client.Subscribe(ctx, "permitdesk:test")
	defer sub.Close()
	_, err := sub.Receive(ctx) // subscription confirmation
	require.NoError(t, err)

	inv := NewInvalidator(s.client, "permitdesk:test")
	require.NoError(t, inv.Invalidate(ctx, "permit:p1", "ticket:WRK-2026-0001"))

	var got []string
	ch := sub.Channel()
	for len(got) < 2 {
		select {
		case msg := <-ch:
			got = append(got, msg.Payload)
		case <-ctx.Done():
			t.Fatalf("timed out waiting for invalidations, got %v", got)
		}
	}
	assert.Equal(t, []string{"permit:p1", "ticket:WRK-2026-0001"}, got)
}

func (s *InvalidatorIntegrationSuite) TestPing() {
	s.NoError(s.client.Ping(context.Background()).Err())
}
