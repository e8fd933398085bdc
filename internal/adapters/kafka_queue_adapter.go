package adapters

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

// KafkaQueueAdapter maps queue names onto Kafka topics.
type KafkaQueueAdapter struct {
	brokers []string
	groupID string
	logger  zerolog.Logger

	mu      sync.Mutex
	writers map[string]*kafka.Writer
	readers map[string]*kafka.Reader
	cancels map[string]context.CancelFunc
	wg      sync.WaitGroup
}

func NewKafkaQueueAdapter(brokers []string, groupID string, logger zerolog.Logger) *KafkaQueueAdapter {
	return &KafkaQueueAdapter{
		brokers: brokers,
		groupID: groupID,
		logger:  logger.With().Str("component", "kafka-queue").Logger(),
		writers: make(map[string]*kafka.Writer),
		readers: make(map[string]*kafka.Reader),
		cancels: make(map[string]context.CancelFunc),
	}
}

func (k *KafkaQueueAdapter) writer(topic string) *kafka.Writer {
	k.mu.Lock()
	defer k.mu.Unlock()
	w, ok := k.writers[topic]
	if !ok {
		w = &kafka.Writer{
			Addr:         kafka.TCP(k.brokers...),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			RequiredAcks: kafka.RequireAll,
		}
		k.writers[topic] = w
	}
	return w
}

func (k *KafkaQueueAdapter) Publish(ctx context.Context, queueName string, data []byte) error {
	if err := k.writer(queueName).WriteMessages(ctx, kafka.Message{Value: data}); err != nil {
		return fmt.Errorf("publish to kafka topic %s: %w", queueName, err)
	}
	return nil
}

func (k *KafkaQueueAdapter) StartConsuming(ctx context.Context, queueName string, handler JobHandler) error {
	k.mu.Lock()
	if _, running := k.readers[queueName]; running {
		k.mu.Unlock()
		return fmt.Errorf("topic %s already has a consumer", queueName)
	}
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  k.brokers,
		Topic:    queueName,
		GroupID:  k.groupID,
		MinBytes: 1,
		MaxBytes: 10e6, // 10MB
	})
	consumeCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	k.readers[queueName] = reader
	k.cancels[queueName] = cancel
	k.mu.Unlock()

	k.wg.Add(1)
	go func() {
		defer k.wg.Done()
		for {
			msg, err := reader.ReadMessage(consumeCtx)
			if err != nil {
				if !errors.Is(err, context.Canceled) {
					k.logger.Error().Err(err).Str("topic", queueName).Msg("read failed, consumer exiting")
				}
				return
			}
			if err := handler(consumeCtx, msg.Value); err != nil {
				k.logger.Error().Err(err).Str("topic", queueName).Int64("offset", msg.Offset).Msg("handler failed")
			}
		}
	}()
	return nil
}

func (k *KafkaQueueAdapter) StopConsuming(ctx context.Context, queueName string) error {
	k.mu.Lock()
	cancel, ok := k.cancels[queueName]
	reader := k.readers[queueName]
	delete(k.cancels, queueName)
	delete(k.readers, queueName)
	k.mu.Unlock()
	if !ok {
		return nil
	}
	cancel()
	return reader.Close()
}

func (k *KafkaQueueAdapter) Close() error {
	k.mu.Lock()
	names := make([]string, 0, len(k.readers))
	for name := range k.readers {
		names = append(names, name)
	}
	k.mu.Unlock()

	var errs []error
	for _, name := range names {
		errs = append(errs, k.StopConsuming(context.Background(), name))
	}
	k.wg.Wait()

	k.mu.Lock()
	defer k.mu.Unlock()
	for _, w := range k.writers {
		errs = append(errs, w.Close())
	}
	return errors.Join(errs...)
}
