package catalog

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var structValidator = sync.OnceValue(func() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
})

// validateCatalog performs all field and cross-entity checks on c.
// Returns a combined error describing all problems found, or nil if valid.
func validateCatalog(c *Catalog) error {
	var errs []string

	questionIDs := make(map[string]bool)
	for _, stream := range sortedStreams(c.questions) {
		if !stream.Valid() {
			errs = append(errs, fmt.Sprintf("unknown stream %q in questions", stream))
		}
		for _, q := range c.questions[stream] {
			prefix := fmt.Sprintf("question %q", q.ID)
			errs = append(errs, structErrors(prefix, q)...)

			if questionIDs[q.ID] {
				errs = append(errs, fmt.Sprintf("duplicate question ID: %q", q.ID))
			}
			questionIDs[q.ID] = true

			if q.Stream != stream {
				errs = append(errs, fmt.Sprintf("%s declares stream %q but is filed under %q", prefix, q.Stream, stream))
			}

			optionIDs := make(map[string]bool, len(q.Options))
			labels := make(map[string]bool, len(q.Options))
			for _, o := range q.Options {
				if optionIDs[o.ID] {
					errs = append(errs, fmt.Sprintf("%s: duplicate option ID %q", prefix, o.ID))
				}
				optionIDs[o.ID] = true
				label := strings.ToLower(o.Label)
				if labels[label] {
					errs = append(errs, fmt.Sprintf("%s: duplicate option label %q", prefix, o.Label))
				}
				labels[label] = true
			}
		}
	}

	courseIDs := make(map[string]bool)
	for _, stream := range sortedStreams(c.courses) {
		if !stream.Valid() {
			errs = append(errs, fmt.Sprintf("unknown stream %q in courses", stream))
		}
		for _, co := range c.courses[stream] {
			prefix := fmt.Sprintf("course %q", co.ID)
			errs = append(errs, structErrors(prefix, co)...)

			if courseIDs[co.ID] {
				errs = append(errs, fmt.Sprintf("duplicate course ID: %q", co.ID))
			}
			courseIDs[co.ID] = true

			if co.Stream != stream {
				errs = append(errs, fmt.Sprintf("%s declares stream %q but is filed under %q", prefix, co.Stream, stream))
			}
			if co.Icon != "" && !co.Icon.Valid() {
				errs = append(errs, fmt.Sprintf("%s: unknown icon %q", prefix, co.Icon))
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("catalog validation failed:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}

// checkCoverage requires every known stream to carry questions and courses.
func checkCoverage(c *Catalog) error {
	var errs []string
	for _, s := range AllStreams() {
		if len(c.questions[s]) == 0 {
			errs = append(errs, fmt.Sprintf("stream %q has no questions", s))
		}
		if len(c.courses[s]) == 0 {
			errs = append(errs, fmt.Sprintf("stream %q has no courses", s))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("catalog validation failed:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}

// structErrors runs the struct-tag rules and renders each failure.
func structErrors(prefix string, v any) []string {
	err := structValidator().Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{fmt.Sprintf("%s: %v", prefix, err)}
	}
	out := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.SplitN(fe.Namespace(), ".", 2)
		name := fe.Namespace()
		if len(field) == 2 {
			name = field[1]
		}
		if fe.Param() != "" {
			out = append(out, fmt.Sprintf("%s: %s failed %s=%s (got %v)", prefix, name, fe.Tag(), fe.Param(), fe.Value()))
		} else {
			out = append(out, fmt.Sprintf("%s: %s failed %s", prefix, name, fe.Tag()))
		}
	}
	return out
}

// sortedStreams returns map keys with known streams first in display
// order, then unknown ones, so error output is stable.
func sortedStreams[T any](m map[Stream][]T) []Stream {
	var out []Stream
	for _, s := range AllStreams() {
		if _, ok := m[s]; ok {
			out = append(out, s)
		}
	}
	var unknown []string
	for s := range m {
		if !s.Valid() {
			unknown = append(unknown, string(s))
		}
	}
	slices.Sort(unknown)
	for _, s := range unknown {
		out = append(out, Stream(s))
	}
	return out
}
