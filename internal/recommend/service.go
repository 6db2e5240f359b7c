// Package recommend scores courses against an answer ledger and explains
// the ranking. Everything here is a pure function of its inputs.
package recommend

import (
	"cmp"
	"maps"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/clario-app/clario/internal/catalog"
)

// CourseSource supplies the ordered courses of a stream.
type CourseSource interface {
	CoursesByStream(stream catalog.Stream) []catalog.Course
}

// Service ranks and explains course recommendations.
type Service struct {
	courses CourseSource
	reasons map[string]string
}

// Option configures a Service.
type Option func(*Service)

// WithReasons replaces the trait to sentence table.
func WithReasons(reasons map[string]string) Option {
	return func(s *Service) { s.reasons = maps.Clone(reasons) }
}

// NewService creates a Service drawing courses from src.
func NewService(src CourseSource, opts ...Option) *Service {
	s := &Service{courses: src, reasons: DefaultReasons()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// traitMatches is the matching rule shared by scoring and reasons: the trait
// equals the course ID or occurs inside it.
func traitMatches(trait, courseID string) bool {
	return trait == courseID || strings.Contains(courseID, trait)
}

// MatchPercentage scores answers against course on a 0..100 scale.
// An empty ledger scores 0.
func (s *Service) MatchPercentage(answers []Answer, course catalog.Course) int {
	if len(answers) == 0 {
		return 0
	}

	maxPossible := float64(len(answers) * MaxOptionValue)
	var total float64
	for _, a := range answers {
		matches := 0
		for _, trait := range a.SelectedOption.Traits {
			if traitMatches(trait, course.ID) {
				matches++
			}
		}
		value := float64(a.SelectedOption.Value)
		if matches > 0 {
			total += value * float64(matches+MatchBonus)
		} else {
			total += value * NonMatchFactor
		}
	}

	raw := total / (maxPossible * CeilingMultiplier) * 100
	return min(max(int(math.Round(raw)), 0), 100)
}

// Reasons explains why course fits: the most frequent matching traits,
// mapped through the reason table. Traits without a sentence are skipped.
func (s *Service) Reasons(answers []Answer, course catalog.Course) []string {
	type traitCount struct {
		trait string
		count int
	}

	var counts []traitCount
	index := make(map[string]int)
	for _, a := range answers {
		for _, trait := range a.SelectedOption.Traits {
			if !traitMatches(trait, course.ID) {
				continue
			}
			i, ok := index[trait]
			if !ok {
				i = len(counts)
				index[trait] = i
				counts = append(counts, traitCount{trait: trait})
			}
			counts[i].count++
		}
	}

	slices.SortStableFunc(counts, func(a, b traitCount) int {
		return cmp.Compare(b.count, a.count)
	})

	var reasons []string
	for _, tc := range counts[:min(len(counts), MaxReasons)] {
		if sentence, ok := s.reasons[tc.trait]; ok && sentence != "" {
			reasons = append(reasons, sentence)
		}
	}
	if len(reasons) == 0 {
		return []string{FallbackReason}
	}
	return reasons
}

// KeyTraits lists up to four answer traits from high-value options that
// appear, case-insensitively, inside one of the course's traits.
func (s *Service) KeyTraits(answers []Answer, course catalog.Course) []string {
	courseTraits := make([]string, len(course.Traits))
	for i, ct := range course.Traits {
		courseTraits[i] = strings.ToLower(ct)
	}

	traits := []string{}
	for _, a := range answers {
		if a.SelectedOption.Value < MinKeyTraitValue {
			continue
		}
		for _, trait := range a.SelectedOption.Traits {
			needle := strings.ToLower(trait)
			found := slices.ContainsFunc(courseTraits, func(ct string) bool {
				return strings.Contains(ct, needle)
			})
			if found && !slices.Contains(traits, trait) {
				traits = append(traits, trait)
			}
		}
	}
	return traits[:min(len(traits), MaxKeyTraits)]
}

// Recommend scores and explains a single course.
func (s *Service) Recommend(answers []Answer, course catalog.Course) CourseRecommendation {
	return CourseRecommendation{
		Course:          course,
		MatchPercentage: s.MatchPercentage(answers, course),
		Reasons:         s.Reasons(answers, course),
		KeyTraits:       s.KeyTraits(answers, course),
	}
}

// RankedRecommendations scores every course of stream and sorts them by
// match percentage, highest first. Equal scores keep catalog order.
// An unknown stream yields an empty list.
func (s *Service) RankedRecommendations(answers []Answer, stream catalog.Stream) []CourseRecommendation {
	courses := s.courses.CoursesByStream(stream)
	recs := make([]CourseRecommendation, 0, len(courses))
	for _, c := range courses {
		recs = append(recs, s.Recommend(answers, c))
	}
	slices.SortStableFunc(recs, func(a, b CourseRecommendation) int {
		return cmp.Compare(b.MatchPercentage, a.MatchPercentage)
	})
	return recs
}

// Summarize splits a ranked list into the primary recommendation and up to
// three alternatives.
func Summarize(recs []CourseRecommendation, userName string, stream catalog.Stream, at time.Time) Result {
	res := Result{
		Alternatives: []CourseRecommendation{},
		UserName:     userName,
		Stream:       stream,
		CompletedAt:  at,
	}
	if len(recs) == 0 {
		return res
	}
	primary := recs[0]
	res.Primary = &primary
	res.Alternatives = slices.Clone(recs[1:min(len(recs), 1+Alternatives)])
	return res
}
