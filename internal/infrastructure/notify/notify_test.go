package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/sevakendra/portal-api/internal/core/domain"
	"github.com/sevakendra/portal-api/internal/core/ports"
)

type stubWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *stubWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *stubWriter) Close() error { return nil }

func TestKafkaNotifier_SendOTP(t *testing.T) {
	w := &stubWriter{}
	n := NewKafkaNotifier(w)

	err := n.SendOTP(context.Background(), ports.OTPMessage{
		Email:      "ram@example.com",
		Code:       "123456",
		RedirectTo: "http://localhost:5173/dashboard",
		ExpiresAt:  time.Now().Add(10 * time.Minute),
	})
	if err != nil {
		t.Fatalf("SendOTP returned error: %v", err)
	}
	if len(w.msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(w.msgs))
	}
	msg := w.msgs[0]
	if string(msg.Key) != "ram@example.com" {
		t.Errorf("key = %q", msg.Key)
	}

	var got struct {
		Type    string           `json:"type"`
		Payload ports.OTPMessage `json:"payload"`
	}
	if err := json.Unmarshal(msg.Value, &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Type != messageTypeOTP || got.Payload.Code != "123456" {
		t.Errorf("unexpected message: %+v", got)
	}
}

func TestKafkaNotifier_StatusChangeKeyedByApplication(t *testing.T) {
	w := &stubWriter{}
	n := NewKafkaNotifier(w)

	err := n.NotifyStatusChange(context.Background(), ports.StatusNotification{
		ApplicationID: "app-1",
		From:          domain.StatusSubmitted,
		To:            domain.StatusApproved,
	})
	if err != nil {
		t.Fatalf("NotifyStatusChange returned error: %v", err)
	}
	if string(w.msgs[0].Key) != "app-1" {
		t.Errorf("key = %q, want app-1", w.msgs[0].Key)
	}
	if len(w.msgs[0].Headers) != 1 || string(w.msgs[0].Headers[0].Value) != messageTypeStatusChange {
		t.Errorf("unexpected headers: %+v", w.msgs[0].Headers)
	}
}

func TestKafkaNotifier_WriteError(t *testing.T) {
	cause := errors.New("broker down")
	n := NewKafkaNotifier(&stubWriter{err: cause})

	if err := n.SendOTP(context.Background(), ports.OTPMessage{Email: "a@b.c"}); !errors.Is(err, cause) {
		t.Fatalf("expected wrapped cause, got %v", err)
	}
}
