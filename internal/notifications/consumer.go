package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/IBM/sarama"
)

// Consumer drains the notification topic and delivers messages
type Consumer interface {
	Start(ctx context.Context) error
	Stop() error
}

type ConsumerConfig struct {
	Brokers        []string
	GroupID        string
	Topics         []string
	SessionTimeout time.Duration
	MaxRetries     int
	RetryBackoff   time.Duration
}

func DefaultConsumerConfig() *ConsumerConfig {
	return &ConsumerConfig{
		Brokers:        []string{"localhost:9092"},
		GroupID:        "gatherly-notifications",
		Topics:         []string{"booking-notifications"},
		SessionTimeout: 30 * time.Second,
		MaxRetries:     3,
		RetryBackoff:   time.Second,
	}
}

// Deliverer is the terminal delivery step for a consumed notification.
// The default implementation just logs; a real mail sender slots in here.
type Deliverer interface {
	Deliver(ctx context.Context, notification *Notification) error
}

// LogDeliverer writes notifications to the process log
type LogDeliverer struct{}

func (LogDeliverer) Deliver(ctx context.Context, notification *Notification) error {
	log.Printf("📧 Delivering %s notification to %s: %s",
		notification.Type, notification.RecipientEmail, notification.Subject)
	return nil
}

type kafkaConsumer struct {
	consumerGroup sarama.ConsumerGroup
	config        *ConsumerConfig
	deliverer     Deliverer
	cancel        context.CancelFunc
}

func NewKafkaConsumer(config *ConsumerConfig, deliverer Deliverer) (Consumer, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Consumer.Group.Session.Timeout = config.SessionTimeout
	saramaConfig.Consumer.Return.Errors = true
	saramaConfig.Consumer.Offsets.Initial = sarama.OffsetNewest
	saramaConfig.Consumer.Offsets.AutoCommit.Enable = true
	saramaConfig.Consumer.Offsets.AutoCommit.Interval = 1 * time.Second

	consumerGroup, err := sarama.NewConsumerGroup(config.Brokers, config.GroupID, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer group: %w", err)
	}

	return &kafkaConsumer{
		consumerGroup: consumerGroup,
		config:        config,
		deliverer:     deliverer,
	}, nil
}

func (kc *kafkaConsumer) Start(ctx context.Context) error {
	ctx, kc.cancel = context.WithCancel(ctx)

	go func() {
		for err := range kc.consumerGroup.Errors() {
			log.Printf("📥 Consumer group error: %v", err)
		}
	}()

	go func() {
		handler := &consumerGroupHandler{consumer: kc}
		for {
			select {
			case <-ctx.Done():
				log.Println("📥 Notification consumer shutting down")
				return
			default:
				if err := kc.consumerGroup.Consume(ctx, kc.config.Topics, handler); err != nil {
					log.Printf("📥 Error consuming messages: %v", err)
					time.Sleep(time.Second)
				}
			}
		}
	}()

	log.Printf("📥 Notification consumer started for topics: %v", kc.config.Topics)
	return nil
}

func (kc *kafkaConsumer) Stop() error {
	if kc.cancel != nil {
		kc.cancel()
	}
	if err := kc.consumerGroup.Close(); err != nil {
		return fmt.Errorf("failed to close consumer group: %w", err)
	}
	log.Println("📥 Notification consumer stopped")
	return nil
}

type consumerGroupHandler struct {
	consumer *kafkaConsumer
}

func (h *consumerGroupHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (h *consumerGroupHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (h *consumerGroupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message := <-claim.Messages():
			if message == nil {
				return nil
			}
			if err := h.processMessage(session.Context(), message); err != nil {
				log.Printf("📥 Error processing message: %v", err)
			} else {
				session.MarkMessage(message, "")
			}
		case <-session.Context().Done():
			return nil
		}
	}
}

func (h *consumerGroupHandler) processMessage(ctx context.Context, message *sarama.ConsumerMessage) error {
	var notification Notification
	if err := json.Unmarshal(message.Value, &notification); err != nil {
		return fmt.Errorf("failed to unmarshal notification: %w", err)
	}

	return h.deliverWithRetry(ctx, &notification)
}

func (h *consumerGroupHandler) deliverWithRetry(ctx context.Context, notification *Notification) error {
	maxRetries := h.consumer.config.MaxRetries
	backoff := h.consumer.config.RetryBackoff

	for attempt := 0; attempt <= maxRetries; attempt++ {
		err := h.consumer.deliverer.Deliver(ctx, notification)
		if err == nil {
			return nil
		}
		if attempt == maxRetries {
			return err
		}

		// Exponential backoff
		delay := backoff * time.Duration(1<<attempt)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}
