package domain

import (
	"context"
	"errors"
	"slices"
	"strconv"
	"sync"
	"time"
)

var errIDGeneratorExhausted = errors.New("id generator exhausted")

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func sequentialIDGenerator(ids ...string) func() (string, error) {
	queue := append([]string(nil), ids...)
	index := 0
	var mu sync.Mutex
	return func() (string, error) {
		mu.Lock()
		defer mu.Unlock()
		if index >= len(queue) {
			return "", errIDGeneratorExhausted
		}
		value := queue[index]
		index++
		return value, nil
	}
}

type assignmentKey struct {
	applicationID string
	reviewerID    string
	stage         Stage
}

type fakeStore struct {
	mu           sync.Mutex
	events       map[string]Event
	questions    map[string][]Question
	applicants   map[string]Applicant
	applications map[string]Application
	appOrder     []string
	responses    map[string]map[string]Response
	assignments  map[assignmentKey]Assignment
	evaluations  map[assignmentKey]Evaluation
	emails       map[string]Email
	emailOrder   []string

	// failAssignment fails PutAssignment for the listed application ids.
	failAssignment map[string]error
	// failStatus fails UpdateApplicationStatus for the listed application ids.
	failStatus map[string]error
	// onGetEmail runs after GetEmail reads a record, outside the lock.
	onGetEmail func(emailID string)
	// failTransition fails TransitionEmail into the listed statuses.
	failTransition map[EmailStatus]error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		events:         map[string]Event{},
		questions:      map[string][]Question{},
		applicants:     map[string]Applicant{},
		applications:   map[string]Application{},
		responses:      map[string]map[string]Response{},
		assignments:    map[assignmentKey]Assignment{},
		evaluations:    map[assignmentKey]Evaluation{},
		emails:         map[string]Email{},
		failAssignment: map[string]error{},
		failStatus:     map[string]error{},
	}
}

func (s *fakeStore) addEvent(event Event, questions ...Question) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[event.ID] = event
	for i := range questions {
		questions[i].EventID = event.ID
		if questions[i].ID == "" {
			questions[i].ID = "q-" + questions[i].Key
		}
	}
	s.questions[event.ID] = questions
}

func (s *fakeStore) addApplicant(applicant Applicant) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.applicants[applicant.UserID] = applicant
}

func (s *fakeStore) addApplication(application Application) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.applications[application.ID]; !ok {
		s.appOrder = append(s.appOrder, application.ID)
	}
	s.applications[application.ID] = application
}

func (s *fakeStore) addResponse(applicationID, questionKey, answer string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.responses[applicationID] == nil {
		s.responses[applicationID] = map[string]Response{}
	}
	s.responses[applicationID][questionKey] = Response{
		ApplicationID: applicationID,
		QuestionID:    "q-" + questionKey,
		QuestionKey:   questionKey,
		Answer:        answer,
	}
}

func (s *fakeStore) addEvaluation(evaluation Evaluation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := assignmentKey{evaluation.ApplicationID, evaluation.ReviewerID, evaluation.Stage}
	s.assignments[key] = Assignment{ApplicationID: key.applicationID, ReviewerID: key.reviewerID, Stage: key.stage}
	s.evaluations[key] = evaluation
}

func (s *fakeStore) assignmentCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.assignments)
}

func (s *fakeStore) emailByID(emailID string) (Email, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	email, ok := s.emails[emailID]
	return email, ok
}

func (s *fakeStore) GetEvent(_ context.Context, eventID string) (Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	event, ok := s.events[eventID]
	if !ok {
		return Event{}, ErrNotFound
	}
	return event, nil
}

func (s *fakeStore) ListEventQuestions(_ context.Context, eventID string) ([]Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.questions[eventID]), nil
}

func (s *fakeStore) GetApplicant(_ context.Context, userID string) (Applicant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	applicant, ok := s.applicants[userID]
	if !ok {
		return Applicant{}, ErrNotFound
	}
	return applicant, nil
}

func (s *fakeStore) UpdateApplicantAnnotations(_ context.Context, userID string, notes string, labels []string, updatedAt time.Time) (Applicant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	applicant, ok := s.applicants[userID]
	if !ok {
		return Applicant{}, ErrNotFound
	}
	applicant.AdminNotes = notes
	applicant.AdminLabels = slices.Clone(labels)
	applicant.AdminUpdatedAt = &updatedAt
	s.applicants[userID] = applicant
	return applicant, nil
}

func (s *fakeStore) PutApplication(_ context.Context, application Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.applications[application.ID]; ok {
		return ErrConflict
	}
	s.applications[application.ID] = application
	s.appOrder = append(s.appOrder, application.ID)
	return nil
}

func (s *fakeStore) GetApplication(_ context.Context, applicationID string) (Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	application, ok := s.applications[applicationID]
	if !ok {
		return Application{}, ErrNotFound
	}
	return application, nil
}

// ListEventApplications pages by offset; the token is the index of the next
// matching application.
func (s *fakeStore) ListEventApplications(_ context.Context, query ApplicationQuery) (ApplicationPage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	offset := 0
	if query.PageToken != "" {
		parsed, err := strconv.Atoi(query.PageToken)
		if err != nil || parsed < 0 {
			return ApplicationPage{}, ErrInvalidPageToken
		}
		offset = parsed
	}
	matched := make([]Application, 0)
	for _, applicationID := range s.appOrder {
		application := s.applications[applicationID]
		if application.EventID != query.EventID {
			continue
		}
		if query.Status != "" && application.Status != query.Status {
			continue
		}
		matched = append(matched, application)
	}
	if offset > len(matched) {
		offset = len(matched)
	}
	page := ApplicationPage{Applications: matched[offset:]}
	if query.PageSize > 0 && len(page.Applications) > query.PageSize {
		page.Applications = page.Applications[:query.PageSize]
		page.NextPageToken = strconv.Itoa(offset + query.PageSize)
	}
	return page, nil
}

func (s *fakeStore) UpdateApplicationStatus(_ context.Context, update StatusUpdate) (Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failStatus[update.ApplicationID]; err != nil {
		return Application{}, err
	}
	application, ok := s.applications[update.ApplicationID]
	if !ok {
		return Application{}, ErrNotFound
	}
	if update.From != "" && application.Status != update.From {
		return Application{}, ErrConflict
	}
	application.Status = update.To
	application.UpdatedAt = update.UpdatedAt
	if update.SubmittedAt != nil && application.SubmittedAt == nil {
		submittedAt := *update.SubmittedAt
		application.SubmittedAt = &submittedAt
	}
	s.applications[update.ApplicationID] = application
	return application, nil
}

func (s *fakeStore) ListApplicationResponses(_ context.Context, applicationID string) ([]Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Response, 0, len(s.responses[applicationID]))
	for _, response := range s.responses[applicationID] {
		out = append(out, response)
	}
	return out, nil
}

func (s *fakeStore) PutResponse(_ context.Context, response Response) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.responses[response.ApplicationID] == nil {
		s.responses[response.ApplicationID] = map[string]Response{}
	}
	s.responses[response.ApplicationID][response.QuestionKey] = response
	return nil
}

func (s *fakeStore) PutAssignment(_ context.Context, assignment Assignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failAssignment[assignment.ApplicationID]; err != nil {
		return err
	}
	if _, ok := s.applications[assignment.ApplicationID]; !ok {
		return ErrNotFound
	}
	key := assignmentKey{assignment.ApplicationID, assignment.ReviewerID, assignment.Stage}
	if _, ok := s.assignments[key]; ok {
		return ErrConflict
	}
	s.assignments[key] = assignment
	return nil
}

func (s *fakeStore) GetAssignment(_ context.Context, applicationID string, reviewerID string, stage Stage) (Assignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	assignment, ok := s.assignments[assignmentKey{applicationID, reviewerID, stage}]
	if !ok {
		return Assignment{}, ErrNotFound
	}
	return assignment, nil
}

func (s *fakeStore) PutEvaluation(_ context.Context, evaluation Evaluation) (Evaluation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := assignmentKey{evaluation.ApplicationID, evaluation.ReviewerID, evaluation.Stage}
	if existing, ok := s.evaluations[key]; ok {
		evaluation.CreatedAt = existing.CreatedAt
	}
	s.evaluations[key] = evaluation
	return evaluation, nil
}

func (s *fakeStore) ListEvaluatedApplications(_ context.Context, eventID string, responseKeys []string) ([]EvaluatedApplication, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]EvaluatedApplication, 0)
	for _, applicationID := range s.appOrder {
		application := s.applications[applicationID]
		if application.EventID != eventID {
			continue
		}
		var evaluations []Evaluation
		for key, evaluation := range s.evaluations {
			if key.applicationID == applicationID {
				evaluations = append(evaluations, evaluation)
			}
		}
		if len(evaluations) == 0 {
			continue
		}
		slices.SortFunc(evaluations, func(a, b Evaluation) int {
			if a.ReviewerID < b.ReviewerID {
				return -1
			}
			if a.ReviewerID > b.ReviewerID {
				return 1
			}
			return 0
		})
		responses := map[string]string{}
		for _, key := range responseKeys {
			if response, ok := s.responses[applicationID][key]; ok {
				responses[key] = response.Answer
			}
		}
		out = append(out, EvaluatedApplication{
			Application: application,
			Applicant:   s.applicants[application.UserID],
			Evaluations: evaluations,
			Responses:   responses,
		})
	}
	return out, nil
}

func (s *fakeStore) PutEmail(_ context.Context, email Email) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.emails[email.ID]; ok {
		return ErrConflict
	}
	s.emails[email.ID] = email
	s.emailOrder = append(s.emailOrder, email.ID)
	return nil
}

func (s *fakeStore) GetEmail(_ context.Context, emailID string) (Email, error) {
	s.mu.Lock()
	email, ok := s.emails[emailID]
	hook := s.onGetEmail
	s.mu.Unlock()
	if !ok {
		return Email{}, ErrNotFound
	}
	if hook != nil {
		hook(emailID)
	}
	return email, nil
}

func (s *fakeStore) ListApplicationEmails(_ context.Context, applicationID string) ([]Email, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Email, 0)
	for _, emailID := range s.emailOrder {
		email, ok := s.emails[emailID]
		if ok && email.ApplicationID == applicationID {
			out = append(out, email)
		}
	}
	return out, nil
}

func (s *fakeStore) TransitionEmail(ctx context.Context, transition EmailTransition) (Email, error) {
	if err := ctx.Err(); err != nil {
		return Email{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failTransition[transition.To]; err != nil {
		return Email{}, err
	}
	email, ok := s.emails[transition.EmailID]
	if !ok {
		return Email{}, ErrNotFound
	}
	if email.Status != transition.From {
		return Email{}, ErrConflict
	}
	email.Status = transition.To
	email.UpdatedAt = transition.At
	if transition.SentAt != nil {
		sentAt := *transition.SentAt
		email.SentAt = &sentAt
	}
	if transition.FailureReason != "" {
		email.FailureReason = transition.FailureReason
	}
	s.emails[transition.EmailID] = email
	return email, nil
}

func (s *fakeStore) DeleteEmail(_ context.Context, emailID string, requiredStatus EmailStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	email, ok := s.emails[emailID]
	if !ok {
		return ErrNotFound
	}
	if email.Status != requiredStatus {
		return ErrConflict
	}
	delete(s.emails, emailID)
	return nil
}

type fakeSafety struct {
	mu       sync.Mutex
	snapshot SafetySnapshot
	err      error
	calls    int
	recorded []string
	// recordErrs holds the context error seen by each RecordSend call.
	recordErrs []error
}

func (f *fakeSafety) Snapshot(context.Context) (SafetySnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.snapshot, f.err
}

func (f *fakeSafety) RecordSend(ctx context.Context, email Email, _ time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.recorded = append(f.recorded, email.ID)
	f.recordErrs = append(f.recordErrs, ctx.Err())
	return nil
}

type fakeSender struct {
	mu   sync.Mutex
	err  error
	sent []string
	// onSend runs before the send is recorded.
	onSend func()
}

func (f *fakeSender) Send(_ context.Context, email Email) error {
	if f.onSend != nil {
		f.onSend()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, email.ID)
	return nil
}

type fakeRenderer struct{}

func (fakeRenderer) RenderMissingInfo(content MissingInfoContent) (RenderedEmail, error) {
	text := "Hi " + content.ApplicantName + " (" + content.Locale + ")"
	for _, field := range content.MissingFields {
		text += "\n- " + field.Prompt
	}
	return RenderedEmail{
		Subject: "Missing info for " + content.EventName,
		HTML:    "<p>" + text + "</p>",
		Text:    text,
	}, nil
}
