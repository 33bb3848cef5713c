// Package notify delivers one-time passcodes and application status changes
// to citizens, either through a Kafka topic consumed by the mailer or to the
// log for local development.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/sevakendra/portal-api/internal/core/ports"
)

const (
	messageTypeOTP          = "otp"
	messageTypeStatusChange = "status_change"

	writeTimeout = 10 * time.Second
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaConfig captures the settings of the notification topic.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// KafkaNotifier publishes notifications as JSON messages. It implements both
// ports.OTPSender and ports.StatusNotifier.
type KafkaNotifier struct {
	writer messageWriter
}

// NewKafkaWriter returns a writer for cfg.Topic.
func NewKafkaWriter(cfg KafkaConfig) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
	}
}

func NewKafkaNotifier(writer messageWriter) *KafkaNotifier {
	return &KafkaNotifier{writer: writer}
}

type envelope struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

func (n *KafkaNotifier) SendOTP(ctx context.Context, msg ports.OTPMessage) error {
	return n.publish(ctx, messageTypeOTP, msg.Email, msg)
}

// NotifyStatusChange keys messages by application ID so changes to one
// application stay ordered within a partition.
func (n *KafkaNotifier) NotifyStatusChange(ctx context.Context, sn ports.StatusNotification) error {
	return n.publish(ctx, messageTypeStatusChange, sn.ApplicationID, sn)
}

func (n *KafkaNotifier) publish(ctx context.Context, typ, key string, payload any) error {
	value, err := json.Marshal(envelope{Type: typ, Payload: payload})
	if err != nil {
		return fmt.Errorf("encode %s message: %w", typ, err)
	}

	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	err = n.writer.WriteMessages(ctx, kafka.Message{
		Key:     []byte(key),
		Value:   value,
		Headers: []kafka.Header{{Key: "type", Value: []byte(typ)}},
	})
	if err != nil {
		return fmt.Errorf("publish %s message: %w", typ, err)
	}
	return nil
}

func (n *KafkaNotifier) Close() error {
	return n.writer.Close()
}
