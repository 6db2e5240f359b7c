package catalog

import "strings"

// Stream is a top-level subject track that partitions questions and courses.
type Stream string

const (
	StreamScience    Stream = "Science"
	StreamArts       Stream = "Arts"
	StreamCommercial Stream = "Commercial"
)

// AllStreams returns all streams in display order.
func AllStreams() []Stream {
	return []Stream{
		StreamScience,
		StreamArts,
		StreamCommercial,
	}
}

// ParseStream resolves a stream name case-insensitively.
func ParseStream(s string) (Stream, bool) {
	for _, st := range AllStreams() {
		if strings.EqualFold(string(st), s) {
			return st, true
		}
	}
	return "", false
}

// Valid reports whether s is one of the known streams.
func (s Stream) Valid() bool {
	for _, st := range AllStreams() {
		if s == st {
			return true
		}
	}
	return false
}

// StreamDescription returns the one-line blurb shown when picking a stream.
func StreamDescription(s Stream) string {
	switch s {
	case StreamScience:
		return "For students interested in mathematics, physics, chemistry, biology, and technology."
	case StreamArts:
		return "For students passionate about humanities, languages, social sciences, and creative expression."
	case StreamCommercial:
		return "For students drawn to business, finance, economics, and entrepreneurship."
	default:
		return ""
	}
}

// QuestionType distinguishes option lists from 1-5 rating scales.
type QuestionType string

const (
	QuestionMultipleChoice QuestionType = "multiple-choice"
	QuestionScale          QuestionType = "scale"
)

// Icon identifies the glyph shown next to a course. The set is closed:
// catalogs referencing any other identifier fail validation at load time.
type Icon string

const (
	IconCode        Icon = "code"
	IconStethoscope Icon = "stethoscope"
	IconCog         Icon = "cog"
	IconPill        Icon = "pill"
	IconMicroscope  Icon = "microscope"
	IconScale       Icon = "scale"
	IconMegaphone   Icon = "megaphone"
	IconBook        Icon = "book"
	IconDrama       Icon = "drama"
	IconCalculator  Icon = "calculator"
	IconTrendingUp  Icon = "trending-up"
	IconBriefcase   Icon = "briefcase"
	IconBarChart    Icon = "bar-chart"
	IconLandmark    Icon = "landmark"
)

// AllIcons returns every supported icon identifier.
func AllIcons() []Icon {
	return []Icon{
		IconCode, IconStethoscope, IconCog, IconPill, IconMicroscope,
		IconScale, IconMegaphone, IconBook, IconDrama,
		IconCalculator, IconTrendingUp, IconBriefcase, IconBarChart, IconLandmark,
	}
}

// Valid reports whether i is a supported icon.
func (i Icon) Valid() bool {
	for _, known := range AllIcons() {
		if i == known {
			return true
		}
	}
	return false
}

// Glyph returns a terminal-friendly symbol for the icon.
func (i Icon) Glyph() string {
	switch i {
	case IconCode:
		return "</>"
	case IconStethoscope, IconPill, IconMicroscope:
		return "+"
	case IconCog:
		return "*"
	case IconScale:
		return "="
	case IconMegaphone:
		return "!"
	case IconBook, IconDrama:
		return "~"
	case IconCalculator, IconBarChart:
		return "#"
	case IconTrendingUp:
		return "^"
	case IconBriefcase, IconLandmark:
		return "$"
	default:
		return "?"
	}
}

// MinOptionValue and MaxOptionValue bound QuestionOption.Value.
const (
	MinOptionValue = 1
	MaxOptionValue = 5
)

// QuestionOption is one selectable answer. Value is the subjective strength
// of the choice; Traits are the interest tags it signals.
type QuestionOption struct {
	ID     string   `json:"id" yaml:"id" validate:"required"`
	Label  string   `json:"label" yaml:"label" validate:"required"`
	Text   string   `json:"text" yaml:"text" validate:"required"`
	Value  int      `json:"value" yaml:"value" validate:"min=1,max=5"`
	Traits []string `json:"traits" yaml:"traits" validate:"dive,required"`
}

// Question is a catalog question owned by exactly one stream.
type Question struct {
	ID       string           `json:"id" yaml:"id" validate:"required"`
	Text     string           `json:"text" yaml:"text" validate:"required"`
	Type     QuestionType     `json:"type" yaml:"type" validate:"oneof=multiple-choice scale"`
	Stream   Stream           `json:"stream" yaml:"stream,omitempty" validate:"required"`
	Options  []QuestionOption `json:"options" yaml:"options" validate:"min=2,dive"`
	Category string           `json:"category" yaml:"category" validate:"required"`
}

// Option returns the option with the given ID or Label.
func (q Question) Option(idOrLabel string) (QuestionOption, bool) {
	for _, o := range q.Options {
		if o.ID == idOrLabel {
			return cloneOption(o), true
		}
	}
	for _, o := range q.Options {
		if strings.EqualFold(o.Label, idOrLabel) {
			return cloneOption(o), true
		}
	}
	return QuestionOption{}, false
}

// Course is a study programme a learner can be recommended.
type Course struct {
	ID               string   `json:"id" yaml:"id" validate:"required"`
	Name             string   `json:"name" yaml:"name" validate:"required"`
	Stream           Stream   `json:"stream" yaml:"stream,omitempty" validate:"required"`
	Description      string   `json:"description" yaml:"description" validate:"required"`
	Traits           []string `json:"traits" yaml:"traits" validate:"min=1,dive,required"`
	RequiredSubjects []string `json:"jambSubjects" yaml:"requiredSubjects" validate:"dive,required"`
	CareerPaths      []string `json:"careerPaths" yaml:"careerPaths" validate:"dive,required"`
	Icon             Icon     `json:"icon" yaml:"icon" validate:"required"`
}
