package store

import (
	"context"
	"time"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit     int       // max results (0 = unlimited)
	After     int64     // sequence > After
	Before    int64     // sequence < Before
	From      time.Time // timestamp >= From
	To        time.Time // timestamp <= To
	SessionID string    // only events of this session
}

// SessionEventData captures one assessment session transition.
type SessionEventData struct {
	SessionID  string
	Action     string
	Stream     string
	QuestionID string
	Answers    int
}

// SessionEventRecord is a stored session event.
type SessionEventRecord struct {
	Sequence   int64
	Timestamp  time.Time
	SessionID  string
	Action     string
	Stream     string
	QuestionID string
	Answers    int
}

// EventRepo provides append and query access to session events.
type EventRepo interface {
	// AppendSessionEvent records a session transition.
	AppendSessionEvent(ctx context.Context, data SessionEventData) error

	// QuerySessionEvents returns events newest first.
	QuerySessionEvents(ctx context.Context, opts QueryOpts) ([]SessionEventRecord, error)
}
