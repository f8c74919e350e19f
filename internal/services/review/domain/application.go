package domain

import "time"

// Event is the event an application targets.
type Event struct {
	ID   string
	Name string
}

// Applicant is the user who owns applications, with admin annotations.
type Applicant struct {
	UserID         string
	Name           string
	Email          string
	AdminNotes     string
	AdminLabels    []string
	AdminUpdatedAt *time.Time
}

// DisplayName returns the name used for sorting and greetings.
func (a Applicant) DisplayName() string {
	if a.Name != "" {
		return a.Name
	}
	return a.Email
}

// Application is one applicant's submission to one event.
type Application struct {
	ID          string
	EventID     string
	UserID      string
	Status      Status
	SubmittedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Question is one entry of an event's completeness contract.
type Question struct {
	ID       string
	EventID  string
	Key      string
	Prompt   string
	Required bool
	Order    int
}

// Response is the answer to one question for one application.
type Response struct {
	ApplicationID string
	QuestionID    string
	QuestionKey   string
	Answer        string
	UpdatedAt     time.Time
}

// StatusUpdate describes one status write. From guards the write when set;
// SubmittedAt is applied only when the application has none yet.
type StatusUpdate struct {
	ApplicationID string
	From          Status
	To            Status
	UpdatedAt     time.Time
	SubmittedAt   *time.Time
}

// ApplicationQuery selects one page of applications of one event.
type ApplicationQuery struct {
	EventID   string
	Status    Status
	Filter    string
	OrderBy   string
	PageSize  int
	PageToken string
}

// ApplicationPage is one page of an event listing. NextPageToken is empty on
// the last page.
type ApplicationPage struct {
	Applications  []Application
	NextPageToken string
}

// CreateApplicationInput describes a new draft application.
type CreateApplicationInput struct {
	EventID string
	UserID  string
}

// ListApplicationsInput configures event application listing. PageToken
// continues a previous listing with the same status, filter and order.
type ListApplicationsInput struct {
	EventID   string
	Status    string
	Filter    string
	OrderBy   string
	PageSize  int
	PageToken string
}

// SaveResponseInput describes one applicant answer.
type SaveResponseInput struct {
	ApplicationID string
	QuestionKey   string
	Answer        string
}

// AnnotationsInput replaces the admin annotations of an applicant.
type AnnotationsInput struct {
	UserID string
	Notes  string
	Labels []string
}

// BulkFailure records one item a bulk operation could not apply.
type BulkFailure struct {
	ApplicationID string
	Err           error
}

// BulkStatusResult reports a bulk status update.
type BulkStatusResult struct {
	Updated int
	Failed  []BulkFailure
}
