package event

import (
	"context"
	"log/slog"
	"sync"

	pkgkafka "github.com/taskvault/taskvault/pkg/kafka"
)

// Kafka topics for relayed task events.
var (
	TopicTaskCreated   = pkgkafka.Topic("task", "created")
	TopicTaskCompleted = pkgkafka.Topic("task", "completed")
)

// Aggregate type and source identifiers for the event envelope.
const (
	AggregateTypeTask = "task"
	SourceTaskService = "taskvault"
)

// Publisher is the subset of the Kafka producer used by the relay.
type Publisher interface {
	Publish(ctx context.Context, topic string, event *pkgkafka.Event) error
}

// KafkaRelay forwards bus events to Kafka using the standard event
// envelope. It is an optional subscriber; a broker outage is logged and
// the event dropped, never surfaced to the task mutation that caused it.
type KafkaRelay struct {
	producer Publisher
	logger   *slog.Logger
	wg       sync.WaitGroup
}

// NewKafkaRelay creates a relay publishing through the given producer.
func NewKafkaRelay(producer Publisher, logger *slog.Logger) *KafkaRelay {
	return &KafkaRelay{
		producer: producer,
		logger:   logger,
	}
}

// Start consumes events from the channel until it is closed.
func (r *KafkaRelay) Start(ch <-chan TaskEvent) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		for evt := range ch {
			r.relay(evt)
		}
	}()
}

// Wait blocks until the relay goroutine has drained its channel.
func (r *KafkaRelay) Wait() {
	r.wg.Wait()
}

func (r *KafkaRelay) relay(evt TaskEvent) {
	topic := TopicTaskCreated
	if evt.Type == TypeTaskCompleted {
		topic = TopicTaskCompleted
	}

	envelope, err := pkgkafka.NewEvent(evt.Type, evt.TaskID, AggregateTypeTask, SourceTaskService, evt)
	if err != nil {
		r.logger.Error("build task event envelope",
			slog.String("event_type", evt.Type),
			slog.String("error", err.Error()),
		)
		return
	}

	if err := r.producer.Publish(context.Background(), topic, envelope); err != nil {
		r.logger.Error("relay task event to kafka",
			slog.String("topic", topic),
			slog.String("event_type", evt.Type),
			slog.String("error", err.Error()),
		)
	}
}
