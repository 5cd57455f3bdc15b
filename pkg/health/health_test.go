package health

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type stubChecker struct {
	name string
	err  error
}

func (c *stubChecker) Name() string                  { return c.name }
func (c *stubChecker) Check(_ context.Context) error { return c.err }

func TestRegistryAllHealthy(t *testing.T) {
	registry := NewCheckerRegistry()
	registry.Register(&stubChecker{name: "elasticsearch"})
	registry.Register(&stubChecker{name: "redis"})

	result := registry.Check(context.Background())

	assert.Equal(t, StatusHealthy, result.Status)
	assert.Len(t, result.Checks, 2)
	assert.Equal(t, StatusHealthy, result.Checks["redis"].Status)
}

func TestRegistryOneUnhealthy(t *testing.T) {
	registry := NewCheckerRegistry()
	registry.Register(&stubChecker{name: "elasticsearch"})
	registry.Register(&stubChecker{name: "mongodb", err: errors.New("connection refused")})

	result := registry.Check(context.Background())

	assert.Equal(t, StatusUnhealthy, result.Status)
	assert.Equal(t, StatusHealthy, result.Checks["elasticsearch"].Status)
	assert.Equal(t, StatusUnhealthy, result.Checks["mongodb"].Status)
	assert.Contains(t, result.Checks["mongodb"].Message, "connection refused")
}

func TestHTTPChecker(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	checker := NewHTTPChecker("elasticsearch", srv.URL)
	assert.Equal(t, "elasticsearch", checker.Name())
	assert.NoError(t, checker.Check(context.Background()))
}

func TestHTTPCheckerServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	checker := NewHTTPChecker("elasticsearch", srv.URL)
	err := checker.Check(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}

func TestMongoDBCheckerUnreachable(t *testing.T) {
	// The driver connects lazily, so Connect succeeds and the ping fails.
	uri := "mongodb://127.0.0.1:1/?serverSelectionTimeoutMS=200&connectTimeoutMS=200"
	client, err := mongo.Connect(context.Background(), options.Client().ApplyURI(uri))
	require.NoError(t, err)
	defer client.Disconnect(context.Background())

	checker := NewMongoDBChecker(client)
	assert.Equal(t, "mongodb", checker.Name())
	assert.Error(t, checker.Check(context.Background()))
}
