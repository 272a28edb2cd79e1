// Package dockertest starts throwaway backing services for repository tests.
package dockertest

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/ory/dockertest/v3"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func getEnv(key, fallback string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		value = fallback
	}
	return value
}

func GetDockerHost() string {
	return getEnv("DOCKERTEST_HOST", "localhost")
}

// StartupMongo runs a disposable MongoDB container and returns a fresh database on it.
// The test is skipped in -short mode or when no docker daemon is reachable.
func StartupMongo(t *testing.T) *mongo.Database {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping docker test in short mode")
	}

	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Skipf("docker unavailable: %v", err)
	}
	if err := pool.Client.Ping(); err != nil {
		t.Skipf("docker unavailable: %v", err)
	}

	require := require.New(t)
	resource, err := pool.Run("mongo", "7", nil)
	require.NoError(err, "start mongo")
	t.Cleanup(func() {
		require.NoError(pool.Purge(resource), "purge resource %s", resource.Container.Name)
	})

	uri := fmt.Sprintf("mongodb://%s:%s", GetDockerHost(), resource.GetPort("27017/tcp"))
	var client *mongo.Client
	pool.MaxWait = 60 * time.Second
	// exponential backoff-retry, mongod needs a moment before it accepts connections
	err = pool.Retry(func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		client, err = mongo.Connect(ctx, options.Client().ApplyURI(uri))
		if err != nil {
			return err
		}
		return client.Ping(ctx, nil)
	})
	require.NoError(err, "wait for mongo connection")
	t.Cleanup(func() {
		_ = client.Disconnect(context.Background())
	})

	return client.Database("career_connect_test")
}
