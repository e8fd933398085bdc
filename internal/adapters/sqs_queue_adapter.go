package adapters

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
)

// SQSAPI is the part of the SQS client the adapter uses.
type SQSAPI interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

// SQSQueueAdapter sends every queue name to a single SQS queue URL; the queue
// name travels as a message attribute so consumers only see their own messages.
type SQSQueueAdapter struct {
	client   SQSAPI
	queueURL string
	logger   zerolog.Logger

	mu      sync.Mutex
	cancels map[string]context.CancelFunc
	wg      sync.WaitGroup
}

const sqsQueueNameAttribute = "queue"

// NewSQSClient builds a client from the default AWS configuration. A
// BaseEndpoint from the environment points it at a local stack.
func NewSQSClient(ctx context.Context) (*sqs.Client, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	return sqs.NewFromConfig(cfg), nil
}

func NewSQSQueueAdapter(client SQSAPI, queueURL string, logger zerolog.Logger) *SQSQueueAdapter {
	return &SQSQueueAdapter{
		client:   client,
		queueURL: queueURL,
		logger:   logger.With().Str("component", "sqs-queue").Logger(),
		cancels:  make(map[string]context.CancelFunc),
	}
}

func (s *SQSQueueAdapter) Publish(ctx context.Context, queueName string, data []byte) error {
	_, err := s.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(s.queueURL),
		MessageBody: aws.String(string(data)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			sqsQueueNameAttribute: {DataType: aws.String("String"), StringValue: aws.String(queueName)},
		},
	})
	if err != nil {
		return fmt.Errorf("publish to sqs queue %s: %w", queueName, err)
	}
	return nil
}

func (s *SQSQueueAdapter) StartConsuming(ctx context.Context, queueName string, handler JobHandler) error {
	s.mu.Lock()
	if _, running := s.cancels[queueName]; running {
		s.mu.Unlock()
		return fmt.Errorf("sqs queue %s already has a consumer", queueName)
	}
	pollCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancels[queueName] = cancel
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for pollCtx.Err() == nil {
			if err := s.poll(pollCtx, queueName, handler); err != nil && !errors.Is(err, context.Canceled) {
				s.logger.Error().Err(err).Str("queue", queueName).Msg("poll failed")
				select {
				case <-time.After(time.Second):
				case <-pollCtx.Done():
				}
			}
		}
	}()
	return nil
}

type sqsDelivery struct {
	queueName     string
	body          []byte
	receiptHandle *string
}

func (s *SQSQueueAdapter) poll(ctx context.Context, queueName string, handler JobHandler) error {
	resp, err := s.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:              aws.String(s.queueURL),
		MaxNumberOfMessages:   10,
		WaitTimeSeconds:       1,
		MessageAttributeNames: []string{sqsQueueNameAttribute},
	})
	if err != nil {
		return err
	}

	deliveries := lo.Map(resp.Messages, func(msg types.Message, _ int) sqsDelivery {
		d := sqsDelivery{receiptHandle: msg.ReceiptHandle}
		if msg.Body != nil {
			d.body = []byte(*msg.Body)
		}
		if attr, ok := msg.MessageAttributes[sqsQueueNameAttribute]; ok && attr.StringValue != nil {
			d.queueName = *attr.StringValue
		}
		return d
	})
	for _, d := range deliveries {
		if d.queueName != queueName {
			continue
		}
		if err := handler(ctx, d.body); err != nil {
			// Left on the queue; SQS redelivers after the visibility timeout.
			s.logger.Error().Err(err).Str("queue", queueName).Msg("handler failed")
			continue
		}
		if _, err := s.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
			QueueUrl:      aws.String(s.queueURL),
			ReceiptHandle: d.receiptHandle,
		}); err != nil {
			s.logger.Error().Err(err).Str("queue", queueName).Msg("delete failed")
		}
	}
	return nil
}

func (s *SQSQueueAdapter) StopConsuming(ctx context.Context, queueName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cancel, ok := s.cancels[queueName]; ok {
		cancel()
		delete(s.cancels, queueName)
	}
	return nil
}

func (s *SQSQueueAdapter) Close() error {
	s.mu.Lock()
	for name, cancel := range s.cancels {
		cancel()
		delete(s.cancels, name)
	}
	s.mu.Unlock()
	s.wg.Wait()
	return nil
}
