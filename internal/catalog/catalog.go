package catalog

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"slices"
	"sync"

	"github.com/goccy/go-json"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"
)

//go:embed seed.yaml
var seedYAML []byte

// SupportedMajor is the catalog file format major version this build reads.
const SupportedMajor = "v1"

// Catalog holds the stream-partitioned questions and courses. It is
// immutable after construction; accessors return copies.
type Catalog struct {
	version    string
	questions  map[Stream][]Question
	courses    map[Stream][]Course
	questionBy map[string]Question
	courseBy   map[string]Course
}

// file is the on-disk catalog layout.
type file struct {
	Version   string                `yaml:"version"`
	Questions map[Stream][]Question `yaml:"questions"`
	Courses   map[Stream][]Course   `yaml:"courses"`
}

var defaultCatalog = sync.OnceValue(func() *Catalog {
	c, err := Parse(seedYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded catalog is invalid: %v", err))
	}
	return c
})

// Default returns the catalog embedded in the binary.
func Default() *Catalog {
	return defaultCatalog()
}

// Load reads and validates a catalog file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return c, nil
}

// Parse decodes a YAML catalog document, checks it against the catalog
// schema and version gate, and validates its contents. Every stream must
// carry at least one question and one course.
func Parse(data []byte) (*Catalog, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	if err := validateDocument(doc); err != nil {
		return nil, err
	}

	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	if !semver.IsValid(f.Version) {
		return nil, fmt.Errorf("catalog version %q is not a semantic version", f.Version)
	}
	if major := semver.Major(f.Version); major != SupportedMajor {
		return nil, fmt.Errorf("catalog version %s is not supported (want %s.x.y)", f.Version, SupportedMajor)
	}

	c, err := New(f.Questions, f.Courses)
	if err != nil {
		return nil, err
	}
	if err := checkCoverage(c); err != nil {
		return nil, err
	}
	c.version = f.Version
	return c, nil
}

// New builds a catalog from stream-indexed questions and courses. Entries
// without a stream inherit the stream they are filed under.
func New(questions map[Stream][]Question, courses map[Stream][]Course) (*Catalog, error) {
	c := &Catalog{
		questions:  make(map[Stream][]Question, len(questions)),
		courses:    make(map[Stream][]Course, len(courses)),
		questionBy: make(map[string]Question),
		courseBy:   make(map[string]Course),
	}

	for stream, qs := range questions {
		list := make([]Question, 0, len(qs))
		for _, q := range qs {
			q = cloneQuestion(q)
			if q.Stream == "" {
				q.Stream = stream
			}
			list = append(list, q)
		}
		c.questions[stream] = list
	}
	for stream, cs := range courses {
		list := make([]Course, 0, len(cs))
		for _, co := range cs {
			co = cloneCourse(co)
			if co.Stream == "" {
				co.Stream = stream
			}
			list = append(list, co)
		}
		c.courses[stream] = list
	}

	if err := validateCatalog(c); err != nil {
		return nil, err
	}

	for _, qs := range c.questions {
		for _, q := range qs {
			c.questionBy[q.ID] = q
		}
	}
	for _, cs := range c.courses {
		for _, co := range cs {
			c.courseBy[co.ID] = co
		}
	}
	return c, nil
}

// Version returns the catalog file version, or "" for catalogs built with New.
func (c *Catalog) Version() string {
	return c.version
}

// Streams returns the streams that have questions or courses, in display order.
func (c *Catalog) Streams() []Stream {
	var out []Stream
	for _, s := range AllStreams() {
		if len(c.questions[s]) > 0 || len(c.courses[s]) > 0 {
			out = append(out, s)
		}
	}
	return out
}

// QuestionsByStream returns the ordered questions for a stream.
// An unknown stream yields an empty slice.
func (c *Catalog) QuestionsByStream(stream Stream) []Question {
	qs := c.questions[stream]
	out := make([]Question, len(qs))
	for i, q := range qs {
		out[i] = cloneQuestion(q)
	}
	return out
}

// CoursesByStream returns the ordered courses for a stream.
// An unknown stream yields an empty slice.
func (c *Catalog) CoursesByStream(stream Stream) []Course {
	cs := c.courses[stream]
	out := make([]Course, len(cs))
	for i, co := range cs {
		out[i] = cloneCourse(co)
	}
	return out
}

// Question looks up a question by ID.
func (c *Catalog) Question(id string) (Question, bool) {
	q, ok := c.questionBy[id]
	if !ok {
		return Question{}, false
	}
	return cloneQuestion(q), true
}

// Course looks up a course by ID.
func (c *Catalog) Course(id string) (Course, bool) {
	co, ok := c.courseBy[id]
	if !ok {
		return Course{}, false
	}
	return cloneCourse(co), true
}

func cloneOption(o QuestionOption) QuestionOption {
	o.Traits = slices.Clone(o.Traits)
	return o
}

func cloneQuestion(q Question) Question {
	opts := make([]QuestionOption, len(q.Options))
	for i, o := range q.Options {
		opts[i] = cloneOption(o)
	}
	q.Options = opts
	return q
}

func cloneCourse(c Course) Course {
	c.Traits = slices.Clone(c.Traits)
	c.RequiredSubjects = slices.Clone(c.RequiredSubjects)
	c.CareerPaths = slices.Clone(c.CareerPaths)
	return c
}

// validateDocument checks the decoded YAML tree against the catalog schema.
func validateDocument(doc any) error {
	compiled, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("compile catalog schema: %w", err)
	}

	// The schema validator expects JSON values (json.Number etc.), so the
	// YAML tree is round-tripped through JSON first.
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode catalog document: %w", err)
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("decode catalog document: %w", err)
	}
	if err := compiled.Validate(inst); err != nil {
		return fmt.Errorf("catalog schema validation failed: %w", err)
	}
	return nil
}
