package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hance08/teller/internal/model"
	"github.com/hance08/teller/internal/reconcile"
	"github.com/pterm/pterm"
	"github.com/segmentio/kafka-go"
)

const EventCycleCompleted = "reconcile.cycle_completed"

// CycleCompleted is the message published after every reconciliation cycle.
type CycleCompleted struct {
	EventID    string         `json:"event_id"`
	Type       string         `json:"type"`
	CycleID    string         `json:"cycle_id"`
	Mode       string         `json:"mode"`
	Succeeded  bool           `json:"succeeded"`
	Error      string         `json:"error,omitempty"`
	Inserted   map[string]int `json:"inserted"`
	Duplicates map[string]int `json:"duplicates"`
	Checkpoint string         `json:"checkpoint"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
}

func NewCycleCompleted(res reconcile.CycleResult) CycleCompleted {
	ev := CycleCompleted{
		EventID:    uuid.NewString(),
		Type:       EventCycleCompleted,
		CycleID:    res.ID,
		Mode:       string(res.Mode),
		Succeeded:  res.Succeeded(),
		Inserted:   make(map[string]int, len(model.Collections)),
		Duplicates: make(map[string]int, len(model.Collections)),
		Checkpoint: res.Checkpoint,
		StartedAt:  res.StartedAt,
		FinishedAt: res.FinishedAt,
	}
	if res.Err != nil {
		ev.Error = res.Err.Error()
	}
	for _, coll := range model.Collections {
		ev.Inserted[string(coll)] = res.Inserted[coll]
		ev.Duplicates[string(coll)] = res.Duplicates[coll]
	}
	return ev
}

// MessageWriter is the part of *kafka.Writer the publisher uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Publisher struct {
	writer  MessageWriter
	timeout time.Duration
	log     *pterm.Logger
}

func NewPublisher(brokers []string, topic string, logger *pterm.Logger) *Publisher {
	return NewPublisherWithWriter(&kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}, logger)
}

func NewPublisherWithWriter(w MessageWriter, logger *pterm.Logger) *Publisher {
	if logger == nil {
		logger = pterm.DefaultLogger.WithLevel(pterm.LogLevelInfo)
	}
	return &Publisher{writer: w, timeout: 5 * time.Second, log: logger}
}

// Publish writes one event keyed by its cycle ID.
func (p *Publisher) Publish(ctx context.Context, ev CycleCompleted) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to encode %s event: %w", ev.Type, err)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(ev.CycleID),
		Value: data,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(ev.Type)},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to publish %s event: %w", ev.Type, err)
	}
	return nil
}

// Observe publishes the outcome of a cycle. Delivery failures are logged and
// never affect the schedule.
func (p *Publisher) Observe(res reconcile.CycleResult) {
	if err := p.Publish(context.Background(), NewCycleCompleted(res)); err != nil {
		p.log.Warn("Event not delivered", p.log.Args("cycle", res.ID, "error", err.Error()))
	}
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}
