package recommend

import (
	"time"

	"github.com/clario-app/clario/internal/catalog"
)

// Scoring constants. They are tuning values carried over unchanged from the
// first release; changing any of them changes every stored score.
const (
	// MaxOptionValue is the scale ceiling used for the maximum possible score.
	MaxOptionValue = catalog.MaxOptionValue

	// NonMatchFactor dampens answers whose traits do not touch the course.
	NonMatchFactor = 0.3

	// CeilingMultiplier leaves headroom above a fully matching answer set.
	CeilingMultiplier = 1.5

	// MatchBonus is added to the trait match count before amplifying a value.
	MatchBonus = 1

	// MinKeyTraitValue is the lowest option value considered for key traits.
	MinKeyTraitValue = 4

	MaxReasons   = 3
	MaxKeyTraits = 4
	Alternatives = 3
)

// FallbackReason is used when no matching trait has a reason sentence.
const FallbackReason = "Your responses show potential alignment with this field"

// Answer records the option a learner chose for a question. SelectedOption
// is a copy, so the ledger stays valid if the catalog changes.
type Answer struct {
	QuestionID     string                 `json:"questionId"`
	SelectedOption catalog.QuestionOption `json:"selectedOption"`
	Timestamp      time.Time              `json:"timestamp"`
}

// CourseRecommendation is a scored and explained course.
type CourseRecommendation struct {
	Course          catalog.Course `json:"course"`
	MatchPercentage int            `json:"matchPercentage"`
	Reasons         []string       `json:"reasons"`
	KeyTraits       []string       `json:"keyTraits"`
}

// Result summarizes a completed assessment.
type Result struct {
	Primary      *CourseRecommendation  `json:"primary,omitempty"`
	Alternatives []CourseRecommendation `json:"alternatives"`
	UserName     string                 `json:"userName"`
	Stream       catalog.Stream         `json:"stream"`
	CompletedAt  time.Time              `json:"completedAt"`
}
