//go:build container

// Package testhelpers starts the Postgres, Redis and RabbitMQ containers used by
// the container tagged tests. Docker must be reachable.
package testhelpers

import (
	"context"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// start runs req and returns host:port of its single exposed port.
func start(t *testing.T, req testcontainers.ContainerRequest) string {
	t.Helper()
	ctx := context.Background()

	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("Failed to start %s: %v", req.Image, err)
	}
	t.Cleanup(func() {
		if err := c.Terminate(context.Background()); err != nil {
			t.Logf("Warning: failed to terminate %s: %v", req.Image, err)
		}
	})

	endpoint, err := c.Endpoint(ctx, "")
	if err != nil {
		t.Fatalf("Failed to get endpoint of %s: %v", req.Image, err)
	}
	return endpoint
}

// Postgres returns the DSN of a fresh database.
func Postgres(t *testing.T) string {
	endpoint := start(t, testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "postgres",
			"POSTGRES_PASSWORD": "postgres",
			"POSTGRES_DB":       "microservice_db",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	})
	host, port, err := net.SplitHostPort(endpoint)
	if err != nil {
		t.Fatalf("Failed to split endpoint %s: %v", endpoint, err)
	}
	return fmt.Sprintf("host=%s user=postgres password=postgres dbname=microservice_db port=%s sslmode=disable", host, port)
}

// Redis returns the host:port of a fresh server.
func Redis(t *testing.T) string {
	return start(t, testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections"),
	})
}

// RabbitMQ returns the AMQP URL of a fresh broker.
func RabbitMQ(t *testing.T) string {
	endpoint := start(t, testcontainers.ContainerRequest{
		Image:        "rabbitmq:3.13-alpine",
		ExposedPorts: []string{"5672/tcp"},
		WaitingFor:   wait.ForListeningPort("5672/tcp").WithStartupTimeout(90 * time.Second),
	})
	return fmt.Sprintf("amqp://guest:guest@%s/", endpoint)
}
