package learning

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"

	"resumatch/src/core/search"
)

// Topic is the single queue topic carrying all learning writes.
const Topic = "learning"

// Envelope wraps a learning task and its payload for transport.
type Envelope struct {
	Task    search.Task     `json:"task"`
	Payload json.RawMessage `json:"payload"`
}

// Queue publishes learning tasks to a watermill publisher. It implements
// search.LearningQueue over either the in-process gochannel transport or
// AMQP, depending on what publisher it is built with.
type Queue struct {
	publisher message.Publisher
}

func NewQueue(publisher message.Publisher) *Queue {
	return &Queue{publisher: publisher}
}

// Enqueue marshals the payload into an envelope and publishes it.
func (q *Queue) Enqueue(ctx context.Context, task search.Task, payload interface{}) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	envelope, err := json.Marshal(Envelope{Task: task, Payload: raw})
	if err != nil {
		return fmt.Errorf("failed to marshal envelope: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), envelope)
	if err := q.publisher.Publish(Topic, msg); err != nil {
		return fmt.Errorf("failed to publish learning task: %w", err)
	}

	return nil
}
