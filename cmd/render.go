package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/clario-app/clario/internal/catalog"
	"github.com/clario-app/clario/internal/recommend"
	"github.com/clario-app/clario/internal/ui/theme"
)

const progressWidth = 24

func streamNames() string {
	names := make([]string, 0, len(catalog.AllStreams()))
	for _, s := range catalog.AllStreams() {
		names = append(names, string(s))
	}
	return strings.Join(names, ", ")
}

// renderQuestion prints q with its options. selected is the option ID the
// learner already chose, or "".
func renderQuestion(w io.Writer, q catalog.Question, index, total int, selected string) {
	fmt.Fprintf(w, "%s  %s\n",
		theme.Label.Render(fmt.Sprintf("Question %d of %d", index+1, total)),
		theme.ProgressBar(index+1, total, progressWidth))
	fmt.Fprintln(w, theme.Subtitle.Render(q.Category))
	fmt.Fprintln(w, theme.Title.Render(q.Text))
	for _, o := range q.Options {
		line := fmt.Sprintf("  %s) %s", o.Label, o.Text)
		if o.ID == selected {
			fmt.Fprintln(w, theme.Selected.Render(line+"  ✓"))
			continue
		}
		fmt.Fprintln(w, theme.Unselected.Render(line))
	}
	fmt.Fprintln(w)
}

// renderRecommendation prints one ranked course.
func renderRecommendation(w io.Writer, rec recommend.CourseRecommendation, primary bool) {
	var b strings.Builder
	c := rec.Course
	fmt.Fprintf(&b, "%s %s  %s\n",
		c.Icon.Glyph(),
		theme.Title.Render(c.Name),
		theme.MatchStyle(rec.MatchPercentage).Render(fmt.Sprintf("%d%% match", rec.MatchPercentage)))
	fmt.Fprint(&b, theme.Body.Render(c.Description))
	if primary {
		if len(rec.Reasons) > 0 {
			b.WriteString("\n\n" + theme.Label.Render("Why this fits you"))
			for _, r := range rec.Reasons {
				b.WriteString("\n  • " + r)
			}
		}
		if len(rec.KeyTraits) > 0 {
			tags := make([]string, len(rec.KeyTraits))
			for i, t := range rec.KeyTraits {
				tags[i] = theme.Tag.Render(t)
			}
			b.WriteString("\n\n" + theme.Label.Render("Key traits") + "  " + strings.Join(tags, "  "))
		}
		if len(c.CareerPaths) > 0 {
			b.WriteString("\n" + theme.Label.Render("Careers") + "  " + strings.Join(c.CareerPaths, ", "))
		}
		if len(c.RequiredSubjects) > 0 {
			b.WriteString("\n" + theme.Label.Render("Subjects") + "  " + strings.Join(c.RequiredSubjects, ", "))
		}
		fmt.Fprintln(w, theme.PrimaryCard.Render(b.String()))
		return
	}
	fmt.Fprintln(w, theme.Card.Render(b.String()))
}

// renderResult prints the primary recommendation and the alternatives.
func renderResult(w io.Writer, res recommend.Result) {
	name := res.UserName
	if name == "" {
		name = "there"
	}
	fmt.Fprintln(w, theme.Title.Render(fmt.Sprintf("Your %s results, %s", res.Stream, name)))
	if !res.CompletedAt.IsZero() {
		fmt.Fprintln(w, theme.Subtitle.Render("Completed "+res.CompletedAt.Local().Format("2 Jan 2006 15:04")))
	}
	fmt.Fprintln(w)

	if res.Primary == nil {
		fmt.Fprintln(w, "No courses are available for this stream.")
		return
	}
	fmt.Fprintln(w, theme.Label.Render("Top recommendation"))
	renderRecommendation(w, *res.Primary, true)

	if len(res.Alternatives) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, theme.Label.Render("Also worth a look"))
		for _, alt := range res.Alternatives {
			renderRecommendation(w, alt, false)
		}
	}
}

// renderCourse prints a catalog course.
func renderCourse(w io.Writer, c catalog.Course) {
	fmt.Fprintf(w, "%-4s %s\n", c.Icon.Glyph(), theme.Title.Render(c.Name))
	fmt.Fprintf(w, "     %s\n", c.Description)
	fmt.Fprintf(w, "     %s %s\n", theme.Label.Render("Traits:"), strings.Join(c.Traits, ", "))
	if len(c.RequiredSubjects) > 0 {
		fmt.Fprintf(w, "     %s %s\n", theme.Label.Render("Subjects:"), strings.Join(c.RequiredSubjects, ", "))
	}
	if len(c.CareerPaths) > 0 {
		fmt.Fprintf(w, "     %s %s\n", theme.Label.Render("Careers:"), strings.Join(c.CareerPaths, ", "))
	}
}

func hint(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, theme.Hint.Render(fmt.Sprintf(format, args...)))
}
