package event

import "time"

// Context carries the runtime coordinates an event was emitted from.
type Context struct {
	RuntimeID   string `json:"runtimeID"`
	SessionID   string `json:"sessionID,omitempty"`
	EventType   string `json:"eventType"`
	Module      string `json:"module,omitempty"`
	TimeTakenMs int    `json:"timeTakenMs"`
}

type Event[T any] struct {
	Context   *Context               `json:"context"`
	CreatedAt time.Time              `json:"createdAt"`
	Metadata  map[string]interface{} `json:"metadata"`
	Data      T                      `json:"data"`
}

func NewEvent[T any](context *Context, data T) *Event[T] {
	return &Event[T]{
		Context:   context,
		CreatedAt: time.Now(),
		Metadata:  make(map[string]interface{}),
		Data:      data,
	}
}

// ModuleLoaded is published after a module's initialization completed.
type ModuleLoaded struct {
	Module   string `json:"module"`
	Location string `json:"location,omitempty"`
	Session  string `json:"session,omitempty"`
}

// ModuleReloaded is published after a session reloaded one of its modules.
type ModuleReloaded struct {
	Module  string `json:"module"`
	Session string `json:"session"`
}

// SessionEntered is published when a session becomes active.
type SessionEntered struct {
	Session    string   `json:"session"`
	KeepGlobal []string `json:"keepGlobal,omitempty"`
}

// SessionExited is published when a session is deactivated.
type SessionExited struct {
	Session string `json:"session"`
}
