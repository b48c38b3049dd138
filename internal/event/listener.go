package event

import (
	"log/slog"
	"sync"
)

// LogListener consumes bus events and writes a structured log line for
// each. It is the default subscriber; a panicking or failing consumer never
// affects the publisher.
type LogListener struct {
	logger *slog.Logger
	wg     sync.WaitGroup
}

// NewLogListener creates a listener logging to the given logger.
func NewLogListener(logger *slog.Logger) *LogListener {
	return &LogListener{logger: logger}
}

// Start consumes events from the channel until it is closed.
func (l *LogListener) Start(ch <-chan TaskEvent) {
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		for evt := range ch {
			l.handle(evt)
		}
	}()
}

// Wait blocks until the consuming goroutine has drained its channel.
func (l *LogListener) Wait() {
	l.wg.Wait()
}

func (l *LogListener) handle(evt TaskEvent) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("event listener panic recovered", slog.Any("panic", r))
		}
	}()

	l.logger.Info("task event",
		slog.String("event_type", evt.Type),
		slog.String("task_id", evt.TaskID),
		slog.String("user_id", evt.UserID),
		slog.String("title", evt.Title),
		slog.Time("occurred_at", evt.OccurredAt),
	)
}
