// Package seed loads review fixtures (events, questions, applicants,
// applications and responses) into review storage.
package seed

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed fixtures/*.yaml
var fixturesFS embed.FS

// Fixture is one YAML seed document.
type Fixture struct {
	Events       []EventFixture       `yaml:"events"`
	Applicants   []ApplicantFixture   `yaml:"applicants"`
	Applications []ApplicationFixture `yaml:"applications"`
}

// EventFixture declares an event and its ordered questions.
type EventFixture struct {
	ID        string            `yaml:"id"`
	Name      string            `yaml:"name"`
	Questions []QuestionFixture `yaml:"questions"`
}

// QuestionFixture declares one question. Order follows the list position
// when unset.
type QuestionFixture struct {
	ID       string `yaml:"id"`
	Key      string `yaml:"key"`
	Prompt   string `yaml:"prompt"`
	Required bool   `yaml:"required"`
	Order    int    `yaml:"order"`
}

// ApplicantFixture declares one applicant.
type ApplicantFixture struct {
	UserID string   `yaml:"user_id"`
	Name   string   `yaml:"name"`
	Email  string   `yaml:"email"`
	Notes  string   `yaml:"notes"`
	Labels []string `yaml:"labels"`
}

// ApplicationFixture declares one application and its answers keyed by
// question key.
type ApplicationFixture struct {
	ID        string            `yaml:"id"`
	EventID   string            `yaml:"event_id"`
	UserID    string            `yaml:"user_id"`
	Status    string            `yaml:"status"`
	Responses map[string]string `yaml:"responses"`
}

// Decode parses and validates one fixture document. Unknown fields are rejected.
func Decode(r io.Reader) (Fixture, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	var fixture Fixture
	if err := decoder.Decode(&fixture); err != nil {
		if errors.Is(err, io.EOF) {
			return Fixture{}, fmt.Errorf("fixture is empty")
		}
		return Fixture{}, fmt.Errorf("decode fixture: %w", err)
	}
	if err := fixture.Validate(); err != nil {
		return Fixture{}, err
	}
	return fixture, nil
}

// Embedded returns a fixture bundled with the binary by name, without the
// .yaml suffix.
func Embedded(name string) (Fixture, error) {
	data, err := fixturesFS.ReadFile("fixtures/" + strings.TrimSuffix(strings.TrimSpace(name), ".yaml") + ".yaml")
	if err != nil {
		return Fixture{}, fmt.Errorf("read embedded fixture %q: %w", name, err)
	}
	return Decode(bytes.NewReader(data))
}

// Validate checks identifiers and references inside the fixture.
func (f Fixture) Validate() error {
	events := make(map[string]map[string]struct{}, len(f.Events))
	for _, event := range f.Events {
		if strings.TrimSpace(event.ID) == "" {
			return fmt.Errorf("event id is required")
		}
		if _, dup := events[event.ID]; dup {
			return fmt.Errorf("duplicate event %q", event.ID)
		}
		keys := make(map[string]struct{}, len(event.Questions))
		for _, question := range event.Questions {
			if strings.TrimSpace(question.Key) == "" {
				return fmt.Errorf("event %q: question key is required", event.ID)
			}
			if _, dup := keys[question.Key]; dup {
				return fmt.Errorf("event %q: duplicate question %q", event.ID, question.Key)
			}
			keys[question.Key] = struct{}{}
		}
		events[event.ID] = keys
	}

	applicants := make(map[string]struct{}, len(f.Applicants))
	for _, applicant := range f.Applicants {
		if strings.TrimSpace(applicant.UserID) == "" {
			return fmt.Errorf("applicant user_id is required")
		}
		applicants[applicant.UserID] = struct{}{}
	}

	for _, application := range f.Applications {
		if strings.TrimSpace(application.ID) == "" {
			return fmt.Errorf("application id is required")
		}
		keys, ok := events[application.EventID]
		if !ok {
			return fmt.Errorf("application %q: unknown event %q", application.ID, application.EventID)
		}
		if _, ok := applicants[application.UserID]; !ok {
			return fmt.Errorf("application %q: unknown applicant %q", application.ID, application.UserID)
		}
		for key := range application.Responses {
			if _, ok := keys[key]; !ok {
				return fmt.Errorf("application %q: unknown question %q", application.ID, key)
			}
		}
	}
	return nil
}
