package redisstore

import (
	"context"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/garyjia/asset-console/internal/application/port"
)

func TestStore_Key(t *testing.T) {
	s := NewWithClient(redis.NewClient(&redis.Options{Addr: "localhost:0"}), "")
	defer s.Close()
	assert.Equal(t, "asset-console:snapshot:vehicleData", s.Key("vehicleData"))

	s2 := NewWithClient(redis.NewClient(&redis.Options{Addr: "localhost:0"}), "jakarta")
	defer s2.Close()
	assert.Equal(t, "jakarta:snapshot:masterApprovalData", s2.Key("masterApprovalData"))
}

func TestStore_Redis(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping redis container test in short mode")
	}
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	addr, err := container.Endpoint(ctx, "")
	require.NoError(t, err)

	s, err := New(ctx, Config{Addr: addr, Namespace: "test"})
	require.NoError(t, err)
	defer s.Close()

	_, err = s.Load(ctx, "salesData")
	assert.ErrorIs(t, err, port.ErrKeyNotFound)

	require.NoError(t, s.Save(ctx, "salesData", []byte(`[{"id":"s-1"}]`)))
	got, err := s.Load(ctx, "salesData")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"s-1"}]`, string(got))
	assert.NoError(t, s.Ping(ctx))
}
