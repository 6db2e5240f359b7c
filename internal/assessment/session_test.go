package assessment

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clario-app/clario/internal/catalog"
	"github.com/clario-app/clario/internal/recommend"
	"github.com/clario-app/clario/internal/storage"
)

type mockRecorder struct {
	events []Event
	err    error
}

func (m *mockRecorder) RecordEvent(_ context.Context, e Event) error {
	if m.err != nil {
		return m.err
	}
	m.events = append(m.events, e)
	return nil
}

func (m *mockRecorder) actions() []string {
	var out []string
	for _, e := range m.events {
		out = append(out, e.Action)
	}
	return out
}

type sessionFixture struct {
	session *Session
	backend *storage.MemoryBackend
	events  *mockRecorder
	clock   *fixedClock
}

func newTestSession(t *testing.T, opts ...SessionOption) sessionFixture {
	t.Helper()
	backend := storage.NewMemoryBackend()
	kv := storage.New(backend)
	clock := &fixedClock{t: time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)}
	cat := catalog.Default()
	svc := NewService(kv, cat, recommend.NewService(cat), WithClock(clock.Now))

	events := &mockRecorder{}
	n := 0
	base := []SessionOption{
		WithEventRecorder(events),
		WithSessionClock(clock.Now),
		WithIDGenerator(func() string {
			n++
			return fmt.Sprintf("session-%d", n)
		}),
	}
	return sessionFixture{
		session: NewSession(svc, kv, append(base, opts...)...),
		backend: backend,
		events:  events,
		clock:   clock,
	}
}

func TestSession_InitialState(t *testing.T) {
	f := newTestSession(t)
	ctx := context.Background()

	assert.Equal(t, StateNotStarted, f.session.State(ctx))
	assert.Empty(t, f.session.Recommendations(ctx))
	_, err := f.session.Result(ctx)
	assert.ErrorIs(t, err, ErrNotCompleted)

	snap := f.session.Snapshot(ctx)
	assert.Equal(t, StateNotStarted, snap.State)
	assert.Empty(t, snap.Questions)
	assert.Empty(t, snap.Answers)
}

func TestSession_OperationsBeforeStart(t *testing.T) {
	f := newTestSession(t)
	ctx := context.Background()

	assert.ErrorIs(t, f.session.Answer(ctx, "SCI_Q1", "A"), ErrNotStarted)
	_, _, err := f.session.Next(ctx)
	assert.ErrorIs(t, err, ErrNotStarted)
	_, _, err = f.session.Current(ctx)
	assert.ErrorIs(t, err, ErrNotStarted)
	_, err = f.session.Submit(ctx)
	assert.ErrorIs(t, err, ErrNotStarted)
}

func TestSession_SetUserName(t *testing.T) {
	f := newTestSession(t)
	ctx := context.Background()

	require.NoError(t, f.session.SetUserName(ctx, "  Ada Obi  "))
	assert.Equal(t, "Ada Obi", f.session.UserName(ctx))

	tests := []string{"", "   ", strings.Repeat("x", MaxNameLength+1)}
	for _, name := range tests {
		err := f.session.SetUserName(ctx, name)
		assert.ErrorIs(t, err, ErrInvalidName, "name %q", name)
	}
	assert.Equal(t, "Ada Obi", f.session.UserName(ctx), "rejected names must not overwrite")

	require.NoError(t, f.session.SetUserName(ctx, strings.Repeat("é", MaxNameLength)))
}

func TestSession_Start(t *testing.T) {
	f := newTestSession(t)
	ctx := context.Background()

	assert.ErrorIs(t, f.session.Start(ctx, "Engineering"), ErrUnknownStream)
	assert.Equal(t, StateNotStarted, f.session.State(ctx))

	require.NoError(t, f.session.Start(ctx, catalog.StreamScience))
	assert.Equal(t, StateInProgress, f.session.State(ctx))
	stream, ok := f.session.Stream(ctx)
	require.True(t, ok)
	assert.Equal(t, catalog.StreamScience, stream)

	// Same stream again is a no-op: no new session id, no new event.
	require.NoError(t, f.session.Start(ctx, catalog.StreamScience))
	assert.Equal(t, "session-1", f.session.Snapshot(ctx).SessionID)
	assert.Equal(t, []string{ActionStart}, f.events.actions())

	err := f.session.Start(ctx, catalog.StreamArts)
	assert.ErrorIs(t, err, ErrAlreadyStarted)
}

func TestSession_AnswerValidation(t *testing.T) {
	f := newTestSession(t)
	ctx := context.Background()
	require.NoError(t, f.session.Start(ctx, catalog.StreamScience))

	assert.ErrorIs(t, f.session.Answer(ctx, "ART_Q1", "A"), ErrUnknownQuestion)
	assert.ErrorIs(t, f.session.Answer(ctx, "NOPE", "A"), ErrUnknownQuestion)
	assert.ErrorIs(t, f.session.Answer(ctx, "SCI_Q1", "Z"), ErrUnknownOption)

	require.NoError(t, f.session.Answer(ctx, "SCI_Q1", "b"))
	require.NoError(t, f.session.Answer(ctx, "SCI_Q2", "SCI_Q2_5"))

	snap := f.session.Snapshot(ctx)
	require.Len(t, snap.Answers, 2)
	a, ok := snap.Answered("SCI_Q1")
	require.True(t, ok)
	assert.Equal(t, "SCI_Q1_B", a.SelectedOption.ID)
}

func TestSession_AnswerOverwrite(t *testing.T) {
	f := newTestSession(t)
	ctx := context.Background()
	require.NoError(t, f.session.Start(ctx, catalog.StreamScience))

	require.NoError(t, f.session.Answer(ctx, "SCI_Q1", "A"))
	require.NoError(t, f.session.Answer(ctx, "SCI_Q1", "D"))

	answers := f.session.Snapshot(ctx).Answers
	require.Len(t, answers, 1)
	assert.Equal(t, "SCI_Q1_D", answers[0].SelectedOption.ID)
}

func TestSession_Navigation(t *testing.T) {
	f := newTestSession(t)
	ctx := context.Background()
	require.NoError(t, f.session.Start(ctx, catalog.StreamArts))
	total := len(catalog.Default().QuestionsByStream(catalog.StreamArts))

	q, i, err := f.session.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, i)
	assert.Equal(t, "ART_Q1", q.ID)

	_, i, err = f.session.Previous(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, i, "previous at the first question stays put")

	for range total + 2 {
		_, i, err = f.session.Next(ctx)
		require.NoError(t, err)
	}
	assert.Equal(t, total-1, i, "next at the last question stays put")

	_, i, err = f.session.Previous(ctx)
	require.NoError(t, err)
	assert.Equal(t, total-2, i)

	_, i, err = f.session.Goto(ctx, 99)
	require.NoError(t, err)
	assert.Equal(t, total-1, i)

	assert.Equal(t, total-1, f.session.Snapshot(ctx).CurrentIndex)
}

func TestSession_SubmitCompletesAndCaches(t *testing.T) {
	f := newTestSession(t)
	ctx := context.Background()
	require.NoError(t, f.session.SetUserName(ctx, "Ada"))
	require.NoError(t, f.session.Start(ctx, catalog.StreamScience))
	require.NoError(t, f.session.Answer(ctx, "SCI_Q1", "A"))
	require.NoError(t, f.session.Answer(ctx, "SCI_Q2", "5"))

	f.clock.Advance(5 * time.Minute)
	recs, err := f.session.Submit(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, recs)
	assert.Equal(t, StateCompleted, f.session.State(ctx))

	if diff := cmp.Diff(recs, f.session.Recommendations(ctx)); diff != "" {
		t.Errorf("cache differs from submitted results (-submitted +cached):\n%s", diff)
	}

	res, err := f.session.Result(ctx)
	require.NoError(t, err)
	require.NotNil(t, res.Primary)
	assert.Equal(t, "medicine", res.Primary.Course.ID)
	assert.Len(t, res.Alternatives, 3)
	assert.Equal(t, "Ada", res.UserName)
	assert.Equal(t, catalog.StreamScience, res.Stream)
	assert.True(t, res.CompletedAt.Equal(f.clock.Now()), "completed at = %v", res.CompletedAt)

	assert.ErrorIs(t, f.session.Answer(ctx, "SCI_Q3", "A"), ErrCompleted)
	_, _, err = f.session.Next(ctx)
	assert.ErrorIs(t, err, ErrCompleted)
}

func TestSession_SubmitIsIdempotent(t *testing.T) {
	f := newTestSession(t)
	ctx := context.Background()
	require.NoError(t, f.session.Start(ctx, catalog.StreamCommercial))
	require.NoError(t, f.session.Answer(ctx, "COM_Q1", "A"))

	first, err := f.session.Submit(ctx)
	require.NoError(t, err)
	second, err := f.session.Submit(ctx)
	require.NoError(t, err)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("second submit differs (-first +second):\n%s", diff)
	}
	assert.Equal(t, []string{ActionStart, ActionAnswer, ActionSubmit}, f.events.actions())
}

func TestSession_SubmitEmptyLedger(t *testing.T) {
	f := newTestSession(t)
	ctx := context.Background()
	require.NoError(t, f.session.Start(ctx, catalog.StreamArts))

	recs, err := f.session.Submit(ctx)
	require.NoError(t, err)
	for _, r := range recs {
		assert.Zero(t, r.MatchPercentage)
		assert.Equal(t, []string{recommend.FallbackReason}, r.Reasons)
	}
}

func TestSession_ResetKeepsNameAndStream(t *testing.T) {
	f := newTestSession(t)
	ctx := context.Background()
	require.NoError(t, f.session.SetUserName(ctx, "Ada"))
	require.NoError(t, f.session.Start(ctx, catalog.StreamScience))
	require.NoError(t, f.session.Answer(ctx, "SCI_Q1", "A"))
	_, _, err := f.session.Next(ctx)
	require.NoError(t, err)
	_, err = f.session.Submit(ctx)
	require.NoError(t, err)

	f.session.Reset(ctx)

	assert.Equal(t, StateNotStarted, f.session.State(ctx))
	assert.Equal(t, "Ada", f.session.UserName(ctx))
	stream, ok := f.session.Stream(ctx)
	require.True(t, ok)
	assert.Equal(t, catalog.StreamScience, stream)
	assert.Empty(t, f.session.Recommendations(ctx))

	if diff := cmp.Diff([]string{KeyUserName, KeyStream}, f.backend.Keys()); diff != "" {
		t.Errorf("unexpected keys after reset (-want +got):\n%s", diff)
	}

	last := f.events.events[len(f.events.events)-1]
	assert.Equal(t, ActionReset, last.Action)
	assert.Equal(t, "session-1", last.SessionID)
}

func TestSession_ResetWhenNotStartedRecordsNothing(t *testing.T) {
	f := newTestSession(t)
	f.session.Reset(context.Background())
	assert.Empty(t, f.events.events)
}

func TestSession_RestartAfterCompletion(t *testing.T) {
	f := newTestSession(t)
	ctx := context.Background()
	require.NoError(t, f.session.Start(ctx, catalog.StreamScience))
	require.NoError(t, f.session.Answer(ctx, "SCI_Q1", "A"))
	_, err := f.session.Submit(ctx)
	require.NoError(t, err)

	require.NoError(t, f.session.Start(ctx, catalog.StreamArts))

	snap := f.session.Snapshot(ctx)
	assert.Equal(t, StateInProgress, snap.State)
	assert.Equal(t, catalog.StreamArts, snap.Stream)
	assert.Equal(t, "session-2", snap.SessionID)
	assert.Empty(t, snap.Answers)
	assert.Empty(t, snap.Recommendations)
}

func TestSession_RecorderFailureIsLogged(t *testing.T) {
	var buf bytes.Buffer
	f := newTestSession(t, WithLogger(zerolog.New(&buf)))
	f.events.err = errors.New("database is locked")
	ctx := context.Background()

	require.NoError(t, f.session.Start(ctx, catalog.StreamScience))
	require.NoError(t, f.session.Answer(ctx, "SCI_Q1", "A"))

	assert.Contains(t, buf.String(), "database is locked")
	assert.Contains(t, buf.String(), `"action":"answer"`)
}

func TestSession_EventsCarryContext(t *testing.T) {
	f := newTestSession(t)
	ctx := context.Background()
	require.NoError(t, f.session.Start(ctx, catalog.StreamScience))
	require.NoError(t, f.session.Answer(ctx, "SCI_Q1", "A"))
	require.NoError(t, f.session.Answer(ctx, "SCI_Q2", "3"))

	require.Len(t, f.events.events, 3)
	ev := f.events.events[2]
	assert.Equal(t, "session-1", ev.SessionID)
	assert.Equal(t, "Science", ev.Stream)
	assert.Equal(t, "SCI_Q2", ev.QuestionID)
	assert.Equal(t, 2, ev.Answers)
}

func TestSession_SurvivesRebuild(t *testing.T) {
	f := newTestSession(t)
	ctx := context.Background()
	require.NoError(t, f.session.Start(ctx, catalog.StreamScience))
	require.NoError(t, f.session.Answer(ctx, "SCI_Q1", "A"))

	kv := storage.New(f.backend)
	cat := catalog.Default()
	rebuilt := NewSession(NewService(kv, cat, recommend.NewService(cat)), kv)

	snap := rebuilt.Snapshot(ctx)
	assert.Equal(t, StateInProgress, snap.State)
	assert.Len(t, snap.Answers, 1)
}

func TestSession_CorruptFlagReadsAsNotCompleted(t *testing.T) {
	f := newTestSession(t)
	ctx := context.Background()
	require.NoError(t, f.session.Start(ctx, catalog.StreamScience))
	require.NoError(t, f.backend.Put(ctx, KeyComplete, []byte(`"yes"`)))

	assert.Equal(t, StateInProgress, f.session.State(ctx))
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "not started", StateNotStarted.String())
	assert.Equal(t, "in progress", StateInProgress.String())
	assert.Equal(t, "completed", StateCompleted.String())
	assert.Equal(t, "State(9)", State(9).String())
}
