package approval

import (
	"time"
)

// Event is the envelope published to the approval queue for both requests
// and decisions.
type Event struct {
	Topic   string            // see topic constants below
	Data    interface{}       // *Request | *Decision
	Headers map[string]string `json:"headers,omitempty"`
}

// Standard event topics.
const (
	TopicRequestCreated  = "request.created"
	TopicDecisionCreated = "decision.created"
)

// Request asks for an explicit decision before a module load proceeds.
type Request struct {
	ID        string                 `json:"id"`                  // globally unique, primary key
	RuntimeID string                 `json:"runtimeId,omitempty"` // requesting runtime
	SessionID string                 `json:"sessionId,omitempty"` // active isolation session, if any
	Module    string                 `json:"module"`              // module name being loaded
	CreatedAt time.Time              `json:"createdAt"`
	ExpiresAt *time.Time             `json:"expiresAt,omitempty"` // optional deadline
	Meta      map[string]interface{} `json:"meta,omitempty"`      // free-form: tenant, user, environment
}

// Expired returns true when the request carries a deadline that has passed.
func (r *Request) Expired(now time.Time) bool {
	return r.ExpiresAt != nil && now.After(*r.ExpiresAt)
}

// Decision records the outcome for a request.
type Decision struct {
	ID        string    `json:"id"` // same as request.ID
	Approved  bool      `json:"approved"`
	Reason    string    `json:"reason,omitempty"`
	DecidedAt time.Time `json:"decidedAt"`
}
