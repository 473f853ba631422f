// Package fs implements a filesystem-backed message queue. Messages live as
// JSON files under per-state directories so that queue traffic survives a
// restart and can be inspected with plain storage tooling.
package fs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/modscope/modscope/service/messaging"
)

// MessageState represents the lifecycle state of a queued message.
type MessageState string

const (
	MessageStatePending    MessageState = "pending"
	MessageStateProcessing MessageState = "processing"
	MessageStateCompleted  MessageState = "completed"
	MessageStateFailed     MessageState = "failed"
)

// dirDead holds messages that exhausted their retries or could not be
// decoded; they are kept for inspection, never consumed again.
const dirDead = "dead"

// Config holds configuration for the filesystem queue.
type Config struct {
	BasePath   string        // Base directory for queue files
	MaxRetries int           // Maximum number of retry attempts
	RetryDelay time.Duration // Delay between retries
}

// DefaultConfig returns a default queue configuration.
func DefaultConfig() Config {
	return Config{
		BasePath:   "/tmp/modscope/queue",
		MaxRetries: 3,
		RetryDelay: time.Second,
	}
}

// Message is a consumed queue entry; Ack and Nack move its backing file to
// the matching state directory.
type Message[T any] struct {
	ID        string       `json:"id"`
	Data      T            `json:"data"`
	State     MessageState `json:"state"`
	Error     string       `json:"error,omitempty"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
	Retries   int          `json:"retries"`

	queue     *Queue[T]
	processed bool
	mu        sync.Mutex
}

// T returns the message payload.
func (m *Message[T]) T() *T {
	return &m.Data
}

// Ack marks the message as processed and moves it to the completed state.
func (m *Message[T]) Ack() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.processed {
		return fmt.Errorf("message already processed")
	}
	m.processed = true
	m.State = MessageStateCompleted
	m.UpdatedAt = time.Now()
	return m.queue.settle(context.Background(), m, string(MessageStateCompleted))
}

// Nack records a processing failure; the message is scheduled for retry or,
// once retries are exhausted, moved to the dead directory.
func (m *Message[T]) Nack(err error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.processed {
		return fmt.Errorf("message already processed")
	}
	m.processed = true
	m.State = MessageStateFailed
	if err != nil {
		m.Error = err.Error()
	}
	m.Retries++
	m.UpdatedAt = time.Now()

	destination := string(MessageStateFailed)
	if m.Retries > m.queue.config.MaxRetries {
		destination = dirDead
	}
	return m.queue.settle(context.Background(), m, destination)
}

// Queue implements messaging.Queue over the abstract file system.
type Queue[T any] struct {
	fs     afs.Service
	config Config
	mu     sync.Mutex
}

// NewQueue creates a filesystem queue rooted at config.BasePath and ensures
// its state directories exist.
func NewQueue[T any](fs afs.Service, config Config) (*Queue[T], error) {
	if config.BasePath == "" {
		return nil, fmt.Errorf("queue base path cannot be empty")
	}
	q := &Queue[T]{fs: fs, config: config}
	ctx := context.Background()
	states := []string{
		string(MessageStatePending),
		string(MessageStateProcessing),
		string(MessageStateCompleted),
		string(MessageStateFailed),
		dirDead,
	}
	for _, state := range states {
		location := q.dir(state)
		if exists, _ := fs.Exists(ctx, location); exists {
			continue
		}
		if err := fs.Create(ctx, location, file.DefaultDirOsMode, true); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", location, err)
		}
	}
	return q, nil
}

func (q *Queue[T]) dir(state string) string {
	return path.Join(q.config.BasePath, state)
}

// Publish writes a new pending message file.
func (q *Queue[T]) Publish(ctx context.Context, t *T) error {
	now := time.Now()
	message := &Message[T]{
		ID:        uuid.New().String(),
		Data:      *t,
		State:     MessageStatePending,
		CreatedAt: now,
		UpdatedAt: now,
		queue:     q,
	}
	return q.write(ctx, path.Join(q.dir(string(MessageStatePending)), message.ID+".json"), message)
}

// Consume takes the oldest available message, preferring failed messages
// eligible for retry over fresh pending ones. It returns (nil, nil) when the
// queue is empty.
func (q *Queue[T]) Consume(ctx context.Context) (messaging.Message[T], error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, state := range []string{string(MessageStateFailed), string(MessageStatePending)} {
		message, err := q.take(ctx, state)
		if err != nil {
			return nil, err
		}
		if message != nil {
			return message, nil
		}
	}
	return nil, nil
}

// take claims the oldest message file in the supplied state directory and
// moves it to processing.
func (q *Queue[T]) take(ctx context.Context, state string) (*Message[T], error) {
	objects, err := q.fs.List(ctx, q.dir(state))
	if err != nil {
		return nil, fmt.Errorf("failed to list %s messages: %w", state, err)
	}
	for _, object := range objects {
		if object.IsDir() || !strings.HasSuffix(object.Name(), ".json") {
			continue
		}
		message, err := q.read(ctx, object.URL())
		if err != nil {
			// undecodable payload goes straight to the dead directory
			_ = q.fs.Move(ctx, object.URL(), path.Join(q.dir(dirDead), "invalid-"+object.Name()))
			return nil, err
		}
		if state == string(MessageStateFailed) && message.Retries > q.config.MaxRetries {
			if err := q.fs.Move(ctx, object.URL(), path.Join(q.dir(dirDead), object.Name())); err != nil {
				return nil, fmt.Errorf("failed to move message to dead directory: %w", err)
			}
			continue
		}
		message.State = MessageStateProcessing
		message.UpdatedAt = time.Now()
		message.queue = q
		if err := q.write(ctx, path.Join(q.dir(string(MessageStateProcessing)), object.Name()), message); err != nil {
			return nil, err
		}
		if err := q.fs.Delete(ctx, object.URL()); err != nil {
			return nil, fmt.Errorf("failed to remove claimed message: %w", err)
		}
		return message, nil
	}
	return nil, nil
}

// settle writes the message to its final state directory and removes the
// processing copy.
func (q *Queue[T]) settle(ctx context.Context, m *Message[T], state string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	name := m.ID + ".json"
	if err := q.write(ctx, path.Join(q.dir(state), name), m); err != nil {
		return err
	}
	processing := path.Join(q.dir(string(MessageStateProcessing)), name)
	if exists, _ := q.fs.Exists(ctx, processing); exists {
		if err := q.fs.Delete(ctx, processing); err != nil {
			return fmt.Errorf("failed to remove processing copy: %w", err)
		}
	}
	return nil
}

func (q *Queue[T]) write(ctx context.Context, location string, m *Message[T]) error {
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to marshal message %s: %w", m.ID, err)
	}
	return q.fs.Upload(ctx, location, file.DefaultFileOsMode, bytes.NewBuffer(data))
}

func (q *Queue[T]) read(ctx context.Context, url string) (*Message[T], error) {
	data, err := q.fs.DownloadWithURL(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to read message %s: %w", url, err)
	}
	var message Message[T]
	if err := json.Unmarshal(data, &message); err != nil {
		return nil, fmt.Errorf("failed to unmarshal message %s: %w", url, err)
	}
	return &message, nil
}

var _ messaging.Queue[any] = (*Queue[any])(nil)
