package adapters

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ QueueAdapter = (*InMemoryQueueAdapter)(nil)
var _ QueueAdapter = (*KafkaQueueAdapter)(nil)
var _ QueueAdapter = (*SQSQueueAdapter)(nil)

type collector struct {
	mu   sync.Mutex
	msgs []string
}

func (c *collector) handle(ctx context.Context, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.msgs = append(c.msgs, string(data))
	return nil
}

func (c *collector) snapshot() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.msgs...)
}

func TestInMemoryQueueAdapter_PublishConsume(t *testing.T) {
	q := NewInMemoryQueueAdapter(zerolog.Nop())
	defer q.Close()

	c := &collector{}
	require.NoError(t, q.StartConsuming(context.Background(), "audit_events", c.handle))

	for _, m := range []string{"a", "b", "c"} {
		require.NoError(t, q.Publish(context.Background(), "audit_events", []byte(m)))
	}

	assert.Eventually(t, func() bool { return len(c.snapshot()) == 3 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{"a", "b", "c"}, c.snapshot())
}

func TestInMemoryQueueAdapter_SecondConsumerRejected(t *testing.T) {
	q := NewInMemoryQueueAdapter(zerolog.Nop())
	defer q.Close()

	c := &collector{}
	require.NoError(t, q.StartConsuming(context.Background(), "q", c.handle))
	assert.Error(t, q.StartConsuming(context.Background(), "q", c.handle))

	require.NoError(t, q.StopConsuming(context.Background(), "q"))
	assert.Eventually(t, func() bool {
		return q.StartConsuming(context.Background(), "q", c.handle) == nil
	}, time.Second, 10*time.Millisecond)
}

func TestInMemoryQueueAdapter_CloseDrainsBufferedMessages(t *testing.T) {
	q := NewInMemoryQueueAdapter(zerolog.Nop())

	// Publish before a consumer exists; the buffer holds the messages.
	for _, m := range []string{"1", "2"} {
		require.NoError(t, q.Publish(context.Background(), "q", []byte(m)))
	}
	c := &collector{}
	require.NoError(t, q.StartConsuming(context.Background(), "q", c.handle))
	require.NoError(t, q.Close())

	assert.Equal(t, []string{"1", "2"}, c.snapshot())
	assert.ErrorIs(t, q.Publish(context.Background(), "q", []byte("3")), ErrQueueClosed)
}

func TestInMemoryQueueAdapter_PublishHonoursContext(t *testing.T) {
	q := NewInMemoryQueueAdapter(zerolog.Nop())
	defer q.Close()

	for i := 0; i < inMemoryQueueBuffer; i++ {
		require.NoError(t, q.Publish(context.Background(), "full", []byte("x")))
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, q.Publish(ctx, "full", []byte("overflow")), context.Canceled)
}

func TestInMemoryQueueAdapter_ConsumerOutlivesStartContext(t *testing.T) {
	q := NewInMemoryQueueAdapter(zerolog.Nop())
	defer q.Close()

	ctx, cancel := context.WithCancel(context.Background())
	c := &collector{}
	require.NoError(t, q.StartConsuming(ctx, "audit_events", c.handle))
	cancel()

	for _, m := range []string{"a", "b", "c"} {
		require.NoError(t, q.Publish(context.Background(), "audit_events", []byte(m)))
	}
	require.NoError(t, q.StopConsuming(context.Background(), "audit_events"))

	assert.Equal(t, []string{"a", "b", "c"}, c.snapshot())
}

func TestInMemoryQueueAdapter_StopConsumingWaitsForDrain(t *testing.T) {
	q := NewInMemoryQueueAdapter(zerolog.Nop())
	defer q.Close()

	release := make(chan struct{})
	c := &collector{}
	slow := func(ctx context.Context, data []byte) error {
		<-release
		return c.handle(ctx, data)
	}
	require.NoError(t, q.StartConsuming(context.Background(), "q", slow))
	for _, m := range []string{"1", "2", "3"} {
		require.NoError(t, q.Publish(context.Background(), "q", []byte(m)))
	}

	// a stop bounded by an expired context returns before the drain ends
	expired, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, q.StopConsuming(expired, "q"), context.Canceled)

	close(release)
	require.NoError(t, q.Close())
	assert.Equal(t, []string{"1", "2", "3"}, c.snapshot())
}
