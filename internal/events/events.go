package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Event types published after a successful mutation.
const (
	BoardAdded       = "board_added"
	BoardEdited      = "board_edited"
	BoardDeleted     = "board_deleted"
	BoardActivated   = "board_activated"
	TaskAdded        = "task_added"
	TaskEdited       = "task_edited"
	TaskDeleted      = "task_deleted"
	TaskMoved        = "task_moved"
	SubtaskCompleted = "subtask_completed"
)

const channelPrefix = "kanban:boards:"

// Event describes a change to a user's boards.
type Event struct {
	Type       string    `json:"type"`
	UserID     uuid.UUID `json:"userId"`
	BoardIndex int       `json:"boardIndex"`
	ColIndex   *int      `json:"colIndex,omitempty"`
	TaskIndex  *int      `json:"taskIndex,omitempty"`
	At         time.Time `json:"at"`
}

// Channel is the pub/sub channel carrying a user's events.
func Channel(userID uuid.UUID) string {
	return channelPrefix + userID.String()
}

// Bus publishes and relays events through Redis pub/sub.
type Bus struct {
	client *redis.Client
	logger *zap.Logger
}

func NewBus(client *redis.Client, logger *zap.Logger) *Bus {
	return &Bus{client: client, logger: logger}
}

func (b *Bus) Publish(ctx context.Context, e Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := b.client.Publish(ctx, Channel(e.UserID), payload).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", e.Type, err)
	}
	return nil
}

// Subscribe relays the user's event payloads until ctx is done or the
// returned close function is called.
func (b *Bus) Subscribe(ctx context.Context, userID uuid.UUID) (<-chan []byte, func() error) {
	pubsub := b.client.Subscribe(ctx, Channel(userID))
	// wait for the subscription to be confirmed so no event published
	// after Subscribe returns is missed
	if _, err := pubsub.Receive(ctx); err != nil {
		b.logger.Warn("Board event subscription not confirmed",
			zap.String("user_id", userID.String()),
			zap.Error(err),
		)
	}
	out := make(chan []byte, 16)

	go func() {
		defer close(out)
		msgs := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				select {
				case out <- []byte(msg.Payload):
				default:
					b.logger.Warn("Dropping board event for slow subscriber",
						zap.String("user_id", userID.String()),
					)
				}
			}
		}
	}()

	return out, pubsub.Close
}

// Nop discards events. It is used when Redis is not configured.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }

// Subscribe yields no events. The channel closes when ctx is done.
func (Nop) Subscribe(ctx context.Context, _ uuid.UUID) (<-chan []byte, func() error) {
	out := make(chan []byte)
	go func() {
		<-ctx.Done()
		close(out)
	}()
	return out, func() error { return nil }
}
