package adapters

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// JobHandler processes one message taken from a queue.
type JobHandler func(ctx context.Context, data []byte) error

// QueueAdapter is the transport used to ship audit events out of the engine.
type QueueAdapter interface {
	// Publish sends data to the named queue.
	Publish(ctx context.Context, queueName string, data []byte) error
	// StartConsuming runs handler for every message of the queue in the
	// background until StopConsuming or Close. Cancelling ctx does not stop
	// the consumer; messages published until StopConsuming are handled.
	StartConsuming(ctx context.Context, queueName string, handler JobHandler) error
	StopConsuming(ctx context.Context, queueName string) error
	// Close stops every consumer and waits for them to exit.
	Close() error
}

var ErrQueueClosed = errors.New("queue adapter closed")

const (
	inMemoryQueueBuffer   = 100
	inMemoryPublishTimout = 2 * time.Second
)

type memoryConsumer struct {
	stop chan struct{}
	done chan struct{}
}

// InMemoryQueueAdapter implements QueueAdapter with buffered Go channels.
type InMemoryQueueAdapter struct {
	mu          sync.Mutex
	queues      map[string]chan []byte
	consumers   map[string]memoryConsumer
	logger      zerolog.Logger
	wg          sync.WaitGroup
	consumerCtx context.Context
	cancel      context.CancelFunc
	closed      bool
}

func NewInMemoryQueueAdapter(logger zerolog.Logger) *InMemoryQueueAdapter {
	ctx, cancel := context.WithCancel(context.Background())
	return &InMemoryQueueAdapter{
		queues:      make(map[string]chan []byte),
		consumers:   make(map[string]memoryConsumer),
		logger:      logger.With().Str("component", "memory-queue").Logger(),
		consumerCtx: ctx,
		cancel:      cancel,
	}
}

func (q *InMemoryQueueAdapter) getOrCreateQueue(queueName string) (chan []byte, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return nil, ErrQueueClosed
	}
	queue, ok := q.queues[queueName]
	if !ok {
		queue = make(chan []byte, inMemoryQueueBuffer)
		q.queues[queueName] = queue
		q.logger.Debug().Str("queue", queueName).Msg("in-memory queue created")
	}
	return queue, nil
}

func (q *InMemoryQueueAdapter) Publish(ctx context.Context, queueName string, data []byte) error {
	queue, err := q.getOrCreateQueue(queueName)
	if err != nil {
		return err
	}
	timer := time.NewTimer(inMemoryPublishTimout)
	defer timer.Stop()

	select {
	case queue <- data:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return fmt.Errorf("timeout publishing to queue %s", queueName)
	}
}

func (q *InMemoryQueueAdapter) StartConsuming(ctx context.Context, queueName string, handler JobHandler) error {
	queue, err := q.getOrCreateQueue(queueName)
	if err != nil {
		return err
	}

	q.mu.Lock()
	if _, running := q.consumers[queueName]; running {
		q.mu.Unlock()
		return fmt.Errorf("queue %s already has a consumer", queueName)
	}
	consumer := memoryConsumer{stop: make(chan struct{}), done: make(chan struct{})}
	q.consumers[queueName] = consumer
	q.mu.Unlock()

	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		defer close(consumer.done)
		q.logger.Debug().Str("queue", queueName).Msg("consumer started")
		for {
			select {
			case data := <-queue:
				if err := handler(q.consumerCtx, data); err != nil {
					q.logger.Error().Err(err).Str("queue", queueName).Msg("handler failed")
				}
			case <-consumer.stop:
				q.drain(queueName, queue, handler)
				return
			case <-q.consumerCtx.Done():
				q.drain(queueName, queue, handler)
				return
			}
		}
	}()
	return nil
}

// drain hands buffered messages to handler before the consumer exits.
func (q *InMemoryQueueAdapter) drain(queueName string, queue chan []byte, handler JobHandler) {
	for {
		select {
		case data := <-queue:
			if err := handler(context.Background(), data); err != nil {
				q.logger.Error().Err(err).Str("queue", queueName).Msg("handler failed during drain")
			}
		default:
			q.logger.Debug().Str("queue", queueName).Msg("consumer stopped")
			return
		}
	}
}

// StopConsuming stops the queue's consumer and waits until it has handled
// every buffered message, or until ctx is done.
func (q *InMemoryQueueAdapter) StopConsuming(ctx context.Context, queueName string) error {
	q.mu.Lock()
	consumer, ok := q.consumers[queueName]
	if ok {
		close(consumer.stop)
		delete(q.consumers, queueName)
	}
	q.mu.Unlock()
	if !ok {
		return nil
	}

	select {
	case <-consumer.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *InMemoryQueueAdapter) Close() error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	q.mu.Unlock()

	q.cancel()
	q.wg.Wait()
	return nil
}
