// Package assessment keeps the learner's answer ledger and drives an
// assessment session from stream selection to submitted results.
package assessment

import (
	"context"
	"slices"
	"time"

	"github.com/clario-app/clario/internal/catalog"
	"github.com/clario-app/clario/internal/recommend"
	"github.com/clario-app/clario/internal/storage"
)

// QuestionSource supplies the ordered questions of a stream.
type QuestionSource interface {
	QuestionsByStream(stream catalog.Stream) []catalog.Question
}

// Recommender ranks courses for an answer ledger.
type Recommender interface {
	RankedRecommendations(answers []recommend.Answer, stream catalog.Stream) []recommend.CourseRecommendation
}

// Service owns the answer ledger. It holds at most one answer per question.
type Service struct {
	store       storage.Storage
	questions   QuestionSource
	recommender Recommender
	now         func() time.Time
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithClock sets the clock used to stamp answers.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) { s.now = now }
}

// NewService creates a Service over the given collaborators.
func NewService(store storage.Storage, questions QuestionSource, recommender Recommender, opts ...ServiceOption) *Service {
	s := &Service{
		store:       store,
		questions:   questions,
		recommender: recommender,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// QuestionsByStream returns the stream's questions, or none for an unknown stream.
func (s *Service) QuestionsByStream(stream catalog.Stream) []catalog.Question {
	return s.questions.QuestionsByStream(stream)
}

// SaveAnswer records option as the answer to questionID. An existing answer
// for the question is replaced in place; otherwise the answer is appended.
// The whole ledger is persisted.
func (s *Service) SaveAnswer(ctx context.Context, questionID string, option catalog.QuestionOption) {
	option.Traits = slices.Clone(option.Traits)
	a := recommend.Answer{
		QuestionID:     questionID,
		SelectedOption: option,
		Timestamp:      s.now(),
	}

	answers := s.Answers(ctx)
	i := slices.IndexFunc(answers, func(existing recommend.Answer) bool {
		return existing.QuestionID == questionID
	})
	if i >= 0 {
		answers[i] = a
	} else {
		answers = append(answers, a)
	}
	s.store.Save(ctx, KeyAnswers, answers)
}

// Answers returns the ledger. Missing or malformed data yields an empty ledger.
func (s *Service) Answers(ctx context.Context) []recommend.Answer {
	var answers []recommend.Answer
	if !s.store.Load(ctx, KeyAnswers, &answers) || answers == nil {
		return []recommend.Answer{}
	}
	return answers
}

// CalculateResults ranks the stream's courses against the current ledger.
func (s *Service) CalculateResults(ctx context.Context, stream catalog.Stream) []recommend.CourseRecommendation {
	return s.recommender.RankedRecommendations(s.Answers(ctx), stream)
}

// ClearAssessment removes the ledger and nothing else.
func (s *Service) ClearAssessment(ctx context.Context) {
	s.store.Clear(ctx, KeyAnswers)
}
