//go:build container

package rabbitmq_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"tokoadmin/internal/testhelpers"
	"tokoadmin/pkg/rabbitmq"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishConsumeRoundTrip(t *testing.T) {
	url := testhelpers.RabbitMQ(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client, err := rabbitmq.NewClient(rabbitmq.Config{URL: url})
	require.NoError(t, err)
	defer client.Close()

	got := make(chan []byte, 1)
	require.NoError(t, client.Consume(ctx, "test.product-deleted", "product.deleted", func(_ context.Context, body []byte) error {
		got <- body
		return nil
	}))

	require.NoError(t, client.Publish(ctx, "shipping.created", []byte(`{"ignored":true}`)))
	require.NoError(t, client.Publish(ctx, "product.deleted", []byte(`{"id":"1"}`)))

	select {
	case body := <-got:
		assert.JSONEq(t, `{"id":"1"}`, string(body))
	case <-time.After(10 * time.Second):
		t.Fatal("no delivery")
	}
}

func TestFailingMessageIsRedeliveredOnce(t *testing.T) {
	url := testhelpers.RabbitMQ(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client, err := rabbitmq.NewClient(rabbitmq.Config{URL: url})
	require.NoError(t, err)
	defer client.Close()

	var attempts int32
	require.NoError(t, client.Consume(ctx, "test.failing", "product.deleted", func(context.Context, []byte) error {
		atomic.AddInt32(&attempts, 1)
		return errors.New("boom")
	}))
	require.NoError(t, client.Publish(ctx, "product.deleted", []byte(`{}`)))

	assert.Eventually(t, func() bool { return atomic.LoadInt32(&attempts) == 2 }, 10*time.Second, 50*time.Millisecond)
	time.Sleep(500 * time.Millisecond)
	assert.Equal(t, int32(2), atomic.LoadInt32(&attempts))
}
