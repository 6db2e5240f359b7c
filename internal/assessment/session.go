package assessment

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/clario-app/clario/internal/catalog"
	"github.com/clario-app/clario/internal/recommend"
	"github.com/clario-app/clario/internal/storage"
)

// MaxNameLength bounds the learner name.
const MaxNameLength = 100

// Session actions written to the event log.
const (
	ActionStart  = "start"
	ActionAnswer = "answer"
	ActionSubmit = "submit"
	ActionReset  = "reset"
)

// State is the lifecycle phase of an assessment session.
type State int

const (
	StateNotStarted State = iota // No session id stored
	StateInProgress              // Session id stored, not submitted
	StateCompleted               // Completion flag stored
)

func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "not started"
	case StateInProgress:
		return "in progress"
	case StateCompleted:
		return "completed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Event is one session transition handed to an EventRecorder.
type Event struct {
	SessionID  string
	Action     string
	Stream     string
	QuestionID string
	Answers    int
}

// EventRecorder receives session transitions.
type EventRecorder interface {
	RecordEvent(ctx context.Context, e Event) error
}

// Snapshot is a point-in-time copy of the session's view state.
type Snapshot struct {
	State           State
	SessionID       string
	UserName        string
	Stream          catalog.Stream
	Questions       []catalog.Question
	CurrentIndex    int
	Answers         []recommend.Answer
	Recommendations []recommend.CourseRecommendation
}

// Answered reports whether questionID has an answer in the snapshot.
func (s Snapshot) Answered(questionID string) (recommend.Answer, bool) {
	for _, a := range s.Answers {
		if a.QuestionID == questionID {
			return a, true
		}
	}
	return recommend.Answer{}, false
}

// Session drives one learner through an assessment. All state lives in the
// storage collaborator, so a Session can be rebuilt at any time.
type Session struct {
	svc    *Service
	store  storage.Storage
	events EventRecorder
	log    zerolog.Logger
	now    func() time.Time
	newID  func() string
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithEventRecorder records every transition to rec.
func WithEventRecorder(rec EventRecorder) SessionOption {
	return func(s *Session) { s.events = rec }
}

// WithLogger sets the logger for recorder failures.
func WithLogger(log zerolog.Logger) SessionOption {
	return func(s *Session) { s.log = log }
}

// WithSessionClock sets the clock used for completion times.
func WithSessionClock(now func() time.Time) SessionOption {
	return func(s *Session) { s.now = now }
}

// WithIDGenerator sets the session id generator.
func WithIDGenerator(newID func() string) SessionOption {
	return func(s *Session) { s.newID = newID }
}

// NewSession creates a Session over svc, persisting through st.
func NewSession(svc *Service, st storage.Storage, opts ...SessionOption) *Session {
	s := &Session{
		svc:   svc,
		store: st,
		log:   zerolog.Nop(),
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var nameValidator = sync.OnceValue(func() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
})

// State derives the lifecycle phase from the stored keys.
func (s *Session) State(ctx context.Context) State {
	var complete bool
	if s.store.Load(ctx, KeyComplete, &complete) && complete {
		return StateCompleted
	}
	if s.sessionID(ctx) != "" {
		return StateInProgress
	}
	return StateNotStarted
}

// SetUserName stores the learner's display name.
func (s *Session) SetUserName(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if err := nameValidator().Var(name, fmt.Sprintf("required,max=%d", MaxNameLength)); err != nil {
		return fmt.Errorf("%w: name must be 1-%d characters", ErrInvalidName, MaxNameLength)
	}
	s.store.Save(ctx, KeyUserName, name)
	return nil
}

// UserName returns the stored learner name, or "".
func (s *Session) UserName(ctx context.Context) string {
	var name string
	s.store.Load(ctx, KeyUserName, &name)
	return name
}

// Stream returns the selected stream, if any.
func (s *Session) Stream(ctx context.Context) (catalog.Stream, bool) {
	var raw string
	if !s.store.Load(ctx, KeyStream, &raw) {
		return "", false
	}
	return catalog.ParseStream(raw)
}

// Start begins an assessment for stream. Starting again with the running
// stream is a no-op; a different stream requires Reset first. Starting after
// completion discards the previous answers and results.
func (s *Session) Start(ctx context.Context, stream catalog.Stream) error {
	if !stream.Valid() || len(s.svc.QuestionsByStream(stream)) == 0 {
		return fmt.Errorf("start %q: %w", stream, ErrUnknownStream)
	}

	switch s.State(ctx) {
	case StateInProgress:
		current, _ := s.Stream(ctx)
		if current == stream {
			return nil
		}
		return fmt.Errorf("start %s while %s is running: %w", stream, current, ErrAlreadyStarted)
	case StateCompleted:
		s.clearProgress(ctx)
	}

	id := s.newID()
	s.store.Save(ctx, KeyStream, stream)
	s.store.Save(ctx, KeySessionID, id)
	s.store.Save(ctx, KeyCurrentQuestion, 0)
	s.record(ctx, Event{SessionID: id, Action: ActionStart, Stream: string(stream)})
	return nil
}

// Answer records optionID (an option ID or label) for questionID.
func (s *Session) Answer(ctx context.Context, questionID, optionID string) error {
	stream, err := s.requireInProgress(ctx)
	if err != nil {
		return err
	}

	q, ok := s.question(stream, questionID)
	if !ok {
		return fmt.Errorf("answer %q in %s: %w", questionID, stream, ErrUnknownQuestion)
	}
	opt, ok := q.Option(optionID)
	if !ok {
		return fmt.Errorf("answer %q with %q: %w", questionID, optionID, ErrUnknownOption)
	}

	s.svc.SaveAnswer(ctx, q.ID, opt)
	s.record(ctx, Event{
		SessionID:  s.sessionID(ctx),
		Action:     ActionAnswer,
		Stream:     string(stream),
		QuestionID: q.ID,
		Answers:    len(s.svc.Answers(ctx)),
	})
	return nil
}

// Current returns the question under the navigation cursor and its index.
func (s *Session) Current(ctx context.Context) (catalog.Question, int, error) {
	stream, err := s.requireInProgress(ctx)
	if err != nil {
		return catalog.Question{}, 0, err
	}
	questions := s.svc.QuestionsByStream(stream)
	if len(questions) == 0 {
		return catalog.Question{}, 0, fmt.Errorf("current: %w", ErrUnknownStream)
	}
	i := clamp(s.currentIndex(ctx), len(questions))
	return questions[i], i, nil
}

// Next moves the cursor forward, stopping at the last question.
func (s *Session) Next(ctx context.Context) (catalog.Question, int, error) {
	return s.move(ctx, 1)
}

// Previous moves the cursor back, stopping at the first question.
func (s *Session) Previous(ctx context.Context) (catalog.Question, int, error) {
	return s.move(ctx, -1)
}

// Goto moves the cursor to index, clamped to the question list.
func (s *Session) Goto(ctx context.Context, index int) (catalog.Question, int, error) {
	stream, err := s.requireInProgress(ctx)
	if err != nil {
		return catalog.Question{}, 0, err
	}
	questions := s.svc.QuestionsByStream(stream)
	if len(questions) == 0 {
		return catalog.Question{}, 0, fmt.Errorf("goto: %w", ErrUnknownStream)
	}
	i := clamp(index, len(questions))
	s.store.Save(ctx, KeyCurrentQuestion, i)
	return questions[i], i, nil
}

func (s *Session) move(ctx context.Context, delta int) (catalog.Question, int, error) {
	if _, err := s.requireInProgress(ctx); err != nil {
		return catalog.Question{}, 0, err
	}
	return s.Goto(ctx, s.currentIndex(ctx)+delta)
}

// Submit scores the ledger and completes the session. Submitting a completed
// session recomputes from the unchanged ledger and returns the same list.
func (s *Session) Submit(ctx context.Context) ([]recommend.CourseRecommendation, error) {
	state := s.State(ctx)
	if state == StateNotStarted {
		return nil, fmt.Errorf("submit: %w", ErrNotStarted)
	}
	stream, ok := s.Stream(ctx)
	if !ok {
		return nil, fmt.Errorf("submit: %w", ErrNotStarted)
	}

	results := s.svc.CalculateResults(ctx, stream)
	if state == StateCompleted {
		return results, nil
	}

	s.store.Save(ctx, KeyComplete, true)
	s.store.Save(ctx, KeyRecommendations, results)
	s.store.Save(ctx, KeyCompletedAt, s.now().UTC())
	s.record(ctx, Event{
		SessionID: s.sessionID(ctx),
		Action:    ActionSubmit,
		Stream:    string(stream),
		Answers:   len(s.svc.Answers(ctx)),
	})
	return results, nil
}

// Recommendations returns the cached results of the last submission.
func (s *Session) Recommendations(ctx context.Context) []recommend.CourseRecommendation {
	var recs []recommend.CourseRecommendation
	if !s.store.Load(ctx, KeyRecommendations, &recs) || recs == nil {
		return []recommend.CourseRecommendation{}
	}
	return recs
}

// Result summarizes the submitted assessment.
func (s *Session) Result(ctx context.Context) (recommend.Result, error) {
	if s.State(ctx) != StateCompleted {
		return recommend.Result{}, fmt.Errorf("result: %w", ErrNotCompleted)
	}
	stream, _ := s.Stream(ctx)
	var at time.Time
	s.store.Load(ctx, KeyCompletedAt, &at)
	return recommend.Summarize(s.Recommendations(ctx), s.UserName(ctx), stream, at), nil
}

// Reset returns the session to NotStarted. The learner name and stream
// preference are kept.
func (s *Session) Reset(ctx context.Context) {
	id := s.sessionID(ctx)
	stream, _ := s.Stream(ctx)
	s.clearProgress(ctx)
	if id != "" {
		s.record(ctx, Event{SessionID: id, Action: ActionReset, Stream: string(stream)})
	}
}

// Snapshot returns a copy of the session's view state.
func (s *Session) Snapshot(ctx context.Context) Snapshot {
	snap := Snapshot{
		State:           s.State(ctx),
		SessionID:       s.sessionID(ctx),
		UserName:        s.UserName(ctx),
		Answers:         s.svc.Answers(ctx),
		Recommendations: s.Recommendations(ctx),
		Questions:       []catalog.Question{},
	}
	if stream, ok := s.Stream(ctx); ok {
		snap.Stream = stream
		snap.Questions = s.svc.QuestionsByStream(stream)
		snap.CurrentIndex = clamp(s.currentIndex(ctx), len(snap.Questions))
	}
	return snap
}

func (s *Session) clearProgress(ctx context.Context) {
	s.svc.ClearAssessment(ctx)
	for _, key := range []string{KeyComplete, KeyRecommendations, KeyCompletedAt, KeySessionID, KeyCurrentQuestion} {
		s.store.Clear(ctx, key)
	}
}

func (s *Session) requireInProgress(ctx context.Context) (catalog.Stream, error) {
	switch s.State(ctx) {
	case StateNotStarted:
		return "", ErrNotStarted
	case StateCompleted:
		return "", ErrCompleted
	}
	stream, ok := s.Stream(ctx)
	if !ok {
		return "", ErrNotStarted
	}
	return stream, nil
}

func (s *Session) question(stream catalog.Stream, id string) (catalog.Question, bool) {
	for _, q := range s.svc.QuestionsByStream(stream) {
		if q.ID == id {
			return q, true
		}
	}
	return catalog.Question{}, false
}

func (s *Session) sessionID(ctx context.Context) string {
	var id string
	s.store.Load(ctx, KeySessionID, &id)
	return id
}

func (s *Session) currentIndex(ctx context.Context) int {
	var i int
	s.store.Load(ctx, KeyCurrentQuestion, &i)
	return i
}

func (s *Session) record(ctx context.Context, e Event) {
	if s.events == nil {
		return
	}
	if err := s.events.RecordEvent(ctx, e); err != nil {
		s.log.Warn().Err(err).Str("action", e.Action).Msg("record session event")
	}
}

// clamp bounds i to [0, n-1].
func clamp(i, n int) int {
	if n == 0 {
		return 0
	}
	return min(max(i, 0), n-1)
}
