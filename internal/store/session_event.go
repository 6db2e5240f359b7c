package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

type eventRepo struct {
	db      *sql.DB
	dialect string
	seq     *sequenceCounter
	now     func() time.Time
}

func (r *eventRepo) clock() time.Time {
	if r.now != nil {
		return r.now()
	}
	return time.Now()
}

func (r *eventRepo) AppendSessionEvent(ctx context.Context, data SessionEventData) error {
	if data.SessionID == "" || data.Action == "" {
		return fmt.Errorf("save session event: session id and action are required")
	}

	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	query, args := entsql.Dialect(r.dialect).
		Insert(eventsTable).
		Columns("sequence", "timestamp", "session_id", "action", "stream", "question_id", "answers").
		Values(seqNum, r.clock().UTC().UnixMilli(), data.SessionID, data.Action, data.Stream, data.QuestionID, data.Answers).
		Query()

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save session event: %w", err)
	}
	return nil
}

func (r *eventRepo) QuerySessionEvents(ctx context.Context, opts QueryOpts) ([]SessionEventRecord, error) {
	sel := entsql.Dialect(r.dialect).
		Select("sequence", "timestamp", "session_id", "action", "stream", "question_id", "answers").
		From(entsql.Table(eventsTable))

	var preds []*entsql.Predicate
	if opts.After > 0 {
		preds = append(preds, entsql.GT("sequence", opts.After))
	}
	if opts.Before > 0 {
		preds = append(preds, entsql.LT("sequence", opts.Before))
	}
	if !opts.From.IsZero() {
		preds = append(preds, entsql.GTE("timestamp", opts.From.UTC().UnixMilli()))
	}
	if !opts.To.IsZero() {
		preds = append(preds, entsql.LTE("timestamp", opts.To.UTC().UnixMilli()))
	}
	if opts.SessionID != "" {
		preds = append(preds, entsql.EQ("session_id", opts.SessionID))
	}
	if len(preds) > 0 {
		sel = sel.Where(entsql.And(preds...))
	}
	sel = sel.OrderBy(entsql.Desc("sequence"))
	if opts.Limit > 0 {
		sel = sel.Limit(opts.Limit)
	}

	query, args := sel.Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query session events: %w", err)
	}
	defer rows.Close()

	var out []SessionEventRecord
	for rows.Next() {
		var (
			rec SessionEventRecord
			ms  int64
		)
		if err := rows.Scan(&rec.Sequence, &ms, &rec.SessionID, &rec.Action, &rec.Stream, &rec.QuestionID, &rec.Answers); err != nil {
			return nil, fmt.Errorf("scan session event: %w", err)
		}
		rec.Timestamp = time.UnixMilli(ms).UTC()
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query session events: %w", err)
	}
	return out, nil
}
