package kafka

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"go.uber.org/zap/zaptest"

	"github.com/linkedleaders/platform-api/internal/core/domain"
	"github.com/linkedleaders/platform-api/internal/infra/config"
)

type fakeAsyncProducer struct {
	input  chan *sarama.ProducerMessage
	errors chan *sarama.ProducerError
}

func newFakeAsyncProducer() *fakeAsyncProducer {
	return &fakeAsyncProducer{
		input:  make(chan *sarama.ProducerMessage, 1),
		errors: make(chan *sarama.ProducerError, 1),
	}
}

func (f *fakeAsyncProducer) AsyncClose() {}

func (f *fakeAsyncProducer) Close() error { return nil }

func (f *fakeAsyncProducer) Input() chan<- *sarama.ProducerMessage { return f.input }

func (f *fakeAsyncProducer) Successes() <-chan *sarama.ProducerMessage { return nil }

func (f *fakeAsyncProducer) Errors() <-chan *sarama.ProducerError { return f.errors }

func (f *fakeAsyncProducer) IsTransactional() bool { return false }

func (f *fakeAsyncProducer) BeginTxn() error { return nil }

func (f *fakeAsyncProducer) CommitTxn() error { return nil }

func (f *fakeAsyncProducer) AbortTxn() error { return nil }

func (f *fakeAsyncProducer) AddOffsetsToTxn(offsets map[string][]*sarama.PartitionOffsetMetadata, groupID string) error {
	return nil
}

func (f *fakeAsyncProducer) AddMessageToTxn(msg *sarama.ConsumerMessage, groupID string, metadata *string) error {
	return nil
}

func (f *fakeAsyncProducer) TxnStatus() sarama.ProducerTxnStatusFlag {
	return sarama.ProducerTxnStatusFlag(0)
}

func newTestPublisher(t *testing.T) (*EventPublisher, *fakeAsyncProducer) {
	t.Helper()

	asyncProducer := newFakeAsyncProducer()
	producer := &Producer{
		producer: asyncProducer,
		logger:   zaptest.NewLogger(t),
		cfg: config.KafkaSettings{
			TopicPrefix: "platform",
		},
		errChan: make(chan error, 1),
		done:    make(chan struct{}),
	}

	publisher := NewEventPublisher(producer, config.AppSettings{
		Name: "linkedleaders-api",
		Env:  "test",
	}, zaptest.NewLogger(t))

	return publisher, asyncProducer
}

func TestPublishSessionBooked(t *testing.T) {
	publisher, asyncProducer := newTestPublisher(t)

	bookedAt := time.Date(2026, 3, 14, 15, 0, 0, 0, time.UTC)
	event := domain.SessionBookedEvent{
		EventID:   "event-123",
		BookingID: "booking-456",
		MenteeID:  "mentee-789",
		MentorID:  "mentor-001",
		Credits:   1,
		BookedAt:  bookedAt,
	}

	if err := publisher.PublishSessionBooked(context.Background(), event); err != nil {
		t.Fatalf("PublishSessionBooked returned error: %v", err)
	}

	select {
	case msg := <-asyncProducer.input:
		if msg.Topic != "platform.booking.created" {
			t.Errorf("topic = %q, want platform.booking.created", msg.Topic)
		}

		raw, err := msg.Value.Encode()
		if err != nil {
			t.Fatalf("encode message value: %v", err)
		}

		var envelope struct {
			EventID   string    `json:"event_id"`
			EventType string    `json:"event_type"`
			SubjectID string    `json:"subject_id"`
			Timestamp time.Time `json:"timestamp"`
			Version   string    `json:"version"`
			Payload   struct {
				BookingID string `json:"booking_id"`
				MenteeID  string `json:"mentee_id"`
				MentorID  string `json:"mentor_id"`
				Credits   int    `json:"credits"`
			} `json:"payload"`
		}
		if err := json.Unmarshal(raw, &envelope); err != nil {
			t.Fatalf("unmarshal envelope: %v", err)
		}

		if envelope.EventID != "event-123" {
			t.Errorf("event_id = %q, want event-123", envelope.EventID)
		}
		if envelope.EventType != "booking.created" {
			t.Errorf("event_type = %q, want booking.created", envelope.EventType)
		}
		if envelope.SubjectID != "mentee-789" {
			t.Errorf("subject_id = %q, want mentee-789", envelope.SubjectID)
		}
		if !envelope.Timestamp.Equal(bookedAt) {
			t.Errorf("timestamp = %v, want %v", envelope.Timestamp, bookedAt)
		}
		if envelope.Payload.BookingID != "booking-456" || envelope.Payload.Credits != 1 {
			t.Errorf("unexpected payload: %+v", envelope.Payload)
		}
	default:
		t.Fatal("no message produced")
	}
}

func TestPublishUserRegisteredGeneratesEventID(t *testing.T) {
	publisher, asyncProducer := newTestPublisher(t)

	email := "leader@example.com"
	event := domain.UserRegisteredEvent{
		UserID:       "user-123",
		Email:        &email,
		Role:         domain.RoleSubscriber,
		Status:       "active",
		RegisteredAt: time.Now().UTC(),
	}

	if err := publisher.PublishUserRegistered(context.Background(), event); err != nil {
		t.Fatalf("PublishUserRegistered returned error: %v", err)
	}

	select {
	case msg := <-asyncProducer.input:
		raw, err := msg.Value.Encode()
		if err != nil {
			t.Fatalf("encode message value: %v", err)
		}

		var envelope struct {
			EventID string `json:"event_id"`
		}
		if err := json.Unmarshal(raw, &envelope); err != nil {
			t.Fatalf("unmarshal envelope: %v", err)
		}

		if envelope.EventID == "" {
			t.Error("event_id was not generated")
		}
	default:
		t.Fatal("no message produced")
	}
}

func TestPublishRespectsContextCancellation(t *testing.T) {
	publisher, asyncProducer := newTestPublisher(t)

	// Fill the buffered input channel so the next publish blocks.
	asyncProducer.input <- &sarama.ProducerMessage{}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := publisher.PublishSessionRevoked(ctx, domain.SessionRevokedEvent{
		SessionID: "session-1",
		UserID:    "user-1",
		RevokedAt: time.Now(),
	})
	if err == nil {
		t.Fatal("expected context error")
	}
}
