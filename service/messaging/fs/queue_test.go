package fs

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/viant/afs"
)

type payload struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

func listJSON(t *testing.T, fs afs.Service, location string) int {
	t.Helper()
	objects, err := fs.List(context.Background(), location)
	assert.Nil(t, err)
	count := 0
	for _, object := range objects {
		if !object.IsDir() {
			count++
		}
	}
	return count
}

func TestQueue_PublishConsume(t *testing.T) {
	ctx := context.Background()
	fileService := afs.New()
	queue, err := NewQueue[payload](fileService, Config{
		BasePath:   t.TempDir(),
		MaxRetries: 2,
		RetryDelay: 10 * time.Millisecond,
	})
	if !assert.Nil(t, err) {
		return
	}

	items := []payload{
		{ID: "1", Message: "first"},
		{ID: "2", Message: "second"},
		{ID: "3", Message: "third"},
	}
	for i := range items {
		assert.Nil(t, queue.Publish(ctx, &items[i]))
	}
	assert.EqualValues(t, 3, listJSON(t, fileService, queue.dir(string(MessageStatePending))))

	seen := map[string]bool{}
	for range items {
		message, err := queue.Consume(ctx)
		if !assert.Nil(t, err) || !assert.NotNil(t, message) {
			return
		}
		seen[message.T().ID] = true
		assert.Nil(t, message.Ack())
		assert.NotNil(t, message.Ack(), "a message can only be settled once")
	}
	assert.EqualValues(t, 3, len(seen))
	assert.EqualValues(t, 3, listJSON(t, fileService, queue.dir(string(MessageStateCompleted))))

	message, err := queue.Consume(ctx)
	assert.Nil(t, err)
	assert.Nil(t, message, "drained queue yields no message")
}

func TestQueue_RetryToDead(t *testing.T) {
	ctx := context.Background()
	fileService := afs.New()
	queue, err := NewQueue[payload](fileService, Config{
		BasePath:   t.TempDir(),
		MaxRetries: 2,
		RetryDelay: 10 * time.Millisecond,
	})
	if !assert.Nil(t, err) {
		return
	}

	assert.Nil(t, queue.Publish(ctx, &payload{ID: "4", Message: "flaky"}))

	// MaxRetries+1 attempts: the first from pending, the rest from failed
	for attempt := 0; attempt <= queue.config.MaxRetries; attempt++ {
		message, err := queue.Consume(ctx)
		if !assert.Nil(t, err) || !assert.NotNil(t, message, "attempt %d", attempt) {
			return
		}
		assert.Nil(t, message.Nack(nil))
	}

	message, err := queue.Consume(ctx)
	assert.Nil(t, err)
	assert.Nil(t, message, "exhausted message is no longer consumable")
	assert.EqualValues(t, 1, listJSON(t, fileService, queue.dir(dirDead)))
}

func TestQueue_Initialization(t *testing.T) {
	fileService := afs.New()

	_, err := NewQueue[payload](fileService, Config{})
	assert.NotNil(t, err, "empty base path is rejected")

	queue, err := NewQueue[payload](fileService, Config{BasePath: t.TempDir()})
	assert.Nil(t, err)
	for _, state := range []string{
		string(MessageStatePending),
		string(MessageStateProcessing),
		string(MessageStateCompleted),
		string(MessageStateFailed),
		dirDead,
	} {
		exists, err := fileService.Exists(context.Background(), queue.dir(state))
		assert.Nil(t, err)
		assert.True(t, exists, state)
	}
}
