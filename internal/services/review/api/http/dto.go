package httpapi

import (
	"time"

	apperrors "github.com/ftcplatform/platform/internal/platform/errors"
	"github.com/ftcplatform/platform/internal/services/review/domain"
)

type applicationView struct {
	ID          string     `json:"id"`
	EventID     string     `json:"event_id"`
	UserID      string     `json:"user_id"`
	Status      string     `json:"status"`
	SubmittedAt *time.Time `json:"submitted_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func toApplicationView(application domain.Application) applicationView {
	return applicationView{
		ID:          application.ID,
		EventID:     application.EventID,
		UserID:      application.UserID,
		Status:      string(application.Status),
		SubmittedAt: application.SubmittedAt,
		CreatedAt:   application.CreatedAt,
		UpdatedAt:   application.UpdatedAt,
	}
}

func toApplicationViews(applications []domain.Application) []applicationView {
	views := make([]applicationView, 0, len(applications))
	for _, application := range applications {
		views = append(views, toApplicationView(application))
	}
	return views
}

type applicantView struct {
	UserID         string     `json:"user_id"`
	Name           string     `json:"name"`
	Email          string     `json:"email"`
	AdminNotes     string     `json:"admin_notes,omitempty"`
	AdminLabels    []string   `json:"admin_labels"`
	AdminUpdatedAt *time.Time `json:"admin_updated_at,omitempty"`
}

func toApplicantView(applicant domain.Applicant) applicantView {
	labels := applicant.AdminLabels
	if labels == nil {
		labels = []string{}
	}
	return applicantView{
		UserID:         applicant.UserID,
		Name:           applicant.Name,
		Email:          applicant.Email,
		AdminNotes:     applicant.AdminNotes,
		AdminLabels:    labels,
		AdminUpdatedAt: applicant.AdminUpdatedAt,
	}
}

type responseView struct {
	ApplicationID string    `json:"application_id"`
	QuestionKey   string    `json:"question_key"`
	Answer        string    `json:"answer"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type evaluationView struct {
	ApplicationID  string    `json:"application_id"`
	ReviewerID     string    `json:"reviewer_id"`
	Stage          string    `json:"stage"`
	OverallScore   *float64  `json:"overall_score"`
	Recommendation string    `json:"recommendation,omitempty"`
	Comments       string    `json:"comments,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func toEvaluationView(evaluation domain.Evaluation) evaluationView {
	return evaluationView{
		ApplicationID:  evaluation.ApplicationID,
		ReviewerID:     evaluation.ReviewerID,
		Stage:          string(evaluation.Stage),
		OverallScore:   evaluation.OverallScore,
		Recommendation: string(evaluation.Recommendation),
		Comments:       evaluation.Comments,
		CreatedAt:      evaluation.CreatedAt,
		UpdatedAt:      evaluation.UpdatedAt,
	}
}

type recommendationsView struct {
	Accept   int `json:"accept"`
	Reject   int `json:"reject"`
	Waitlist int `json:"waitlist"`
	None     int `json:"none"`
}

type consensusView struct {
	Application     applicationView     `json:"application"`
	Applicant       applicantView       `json:"applicant"`
	Evaluations     []evaluationView    `json:"evaluations"`
	AverageScore    float64             `json:"average_score"`
	ScoredCount     int                 `json:"scored_count"`
	EvaluationCount int                 `json:"evaluation_count"`
	Region          string              `json:"region"`
	Recommendations recommendationsView `json:"recommendations"`
}

func toConsensusViews(rows []domain.ConsensusApplication) []consensusView {
	views := make([]consensusView, 0, len(rows))
	for _, row := range rows {
		evaluations := make([]evaluationView, 0, len(row.Evaluations))
		for _, evaluation := range row.Evaluations {
			evaluations = append(evaluations, toEvaluationView(evaluation))
		}
		views = append(views, consensusView{
			Application:     toApplicationView(row.Application),
			Applicant:       toApplicantView(row.Applicant),
			Evaluations:     evaluations,
			AverageScore:    row.AverageScore,
			ScoredCount:     row.ScoredCount,
			EvaluationCount: row.EvaluationCount,
			Region:          string(row.Region),
			Recommendations: recommendationsView{
				Accept:   row.Recommendations.Accept,
				Reject:   row.Recommendations.Reject,
				Waitlist: row.Recommendations.Waitlist,
				None:     row.Recommendations.None,
			},
		})
	}
	return views
}

// checkView doubles as the optional request body of the missing-info draft.
type checkView struct {
	ApplicationID string    `json:"application_id"`
	IsComplete    bool      `json:"is_complete"`
	MissingFields []string  `json:"missing_fields"`
	CheckedAt     time.Time `json:"checked_at"`
}

func toCheckView(result domain.CheckResult) checkView {
	missing := result.MissingFields
	if missing == nil {
		missing = []string{}
	}
	return checkView{
		ApplicationID: result.ApplicationID,
		IsComplete:    result.IsComplete,
		MissingFields: missing,
		CheckedAt:     result.CheckedAt,
	}
}

func (v checkView) toDomain() domain.CheckResult {
	return domain.CheckResult{
		ApplicationID: v.ApplicationID,
		IsComplete:    v.IsComplete,
		MissingFields: v.MissingFields,
		CheckedAt:     v.CheckedAt,
	}
}

type emailView struct {
	ID            string     `json:"id"`
	ApplicationID string     `json:"application_id"`
	Type          string     `json:"type"`
	Status        string     `json:"status"`
	Recipient     string     `json:"recipient"`
	Subject       string     `json:"subject"`
	MissingFields []string   `json:"missing_fields"`
	HTMLContent   string     `json:"html_content"`
	TextContent   string     `json:"text_content"`
	FailureReason string     `json:"failure_reason,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	SentAt        *time.Time `json:"sent_at,omitempty"`
}

func toEmailView(email domain.Email) emailView {
	missing := email.MissingFields
	if missing == nil {
		missing = []string{}
	}
	return emailView{
		ID:            email.ID,
		ApplicationID: email.ApplicationID,
		Type:          string(email.Type),
		Status:        string(email.Status),
		Recipient:     email.Recipient,
		Subject:       email.Subject,
		MissingFields: missing,
		HTMLContent:   email.HTMLContent,
		TextContent:   email.TextContent,
		FailureReason: email.FailureReason,
		CreatedAt:     email.CreatedAt,
		UpdatedAt:     email.UpdatedAt,
		SentAt:        email.SentAt,
	}
}

type sendResultView struct {
	Success bool      `json:"success"`
	Error   string    `json:"error,omitempty"`
	Email   emailView `json:"email"`
}

type deleteResultView struct {
	Deleted bool   `json:"deleted"`
	Status  string `json:"status,omitempty"`
}

type safetyView struct {
	Safe          bool      `json:"safe"`
	Reason        string    `json:"reason,omitempty"`
	Paused        bool      `json:"paused"`
	SentInWindow  int       `json:"sent_in_window"`
	Limit         int       `json:"limit"`
	WindowSeconds int64     `json:"window_seconds"`
	CheckedAt     time.Time `json:"checked_at"`
}

func toSafetyView(snapshot domain.SafetySnapshot) safetyView {
	return safetyView{
		Safe:          snapshot.Safe,
		Reason:        snapshot.Reason,
		Paused:        snapshot.Paused,
		SentInWindow:  snapshot.SentInWindow,
		Limit:         snapshot.Limit,
		WindowSeconds: int64(snapshot.Window.Seconds()),
		CheckedAt:     snapshot.CheckedAt,
	}
}

type bulkFailureView struct {
	ApplicationID string `json:"application_id"`
	Code          string `json:"code"`
	Message       string `json:"message"`
}

func toBulkFailureViews(failures []domain.BulkFailure) []bulkFailureView {
	views := make([]bulkFailureView, 0, len(failures))
	for _, failure := range failures {
		views = append(views, bulkFailureView{
			ApplicationID: failure.ApplicationID,
			Code:          string(apperrors.CodeOf(failure.Err)),
			Message:       failure.Err.Error(),
		})
	}
	return views
}

// Retryable marks results whose failures include transient ones; repeating
// the same request is safe.
type bulkStatusView struct {
	Updated   int               `json:"updated"`
	Failed    []bulkFailureView `json:"failed"`
	Retryable bool              `json:"retryable"`
}

type bulkAssignView struct {
	Created   int               `json:"created"`
	Skipped   int               `json:"skipped"`
	Failed    []bulkFailureView `json:"failed"`
	Retryable bool              `json:"retryable"`
}

type statusView struct {
	Status string   `json:"status"`
	Label  string   `json:"label"`
	Color  string   `json:"color"`
	Icon   string   `json:"icon"`
	Next   []string `json:"next"`
}

func toStatusViews() []statusView {
	statuses := domain.Statuses()
	views := make([]statusView, 0, len(statuses))
	for _, status := range statuses {
		presentation, _ := status.Presentation()
		next := make([]string, 0)
		for _, candidate := range domain.NextStatuses(status) {
			next = append(next, string(candidate))
		}
		views = append(views, statusView{
			Status: string(status),
			Label:  presentation.Label,
			Color:  presentation.Color,
			Icon:   presentation.Icon,
			Next:   next,
		})
	}
	return views
}

// Request bodies.

type createApplicationRequest struct {
	UserID string `json:"user_id"`
}

type statusRequest struct {
	Status string `json:"status"`
}

type bulkStatusRequest struct {
	ApplicationIDs []string `json:"application_ids"`
	Status         string   `json:"status"`
}

type bulkAssignRequest struct {
	ApplicationIDs []string `json:"application_ids"`
	ReviewerID     string   `json:"reviewer_id"`
	Stage          string   `json:"stage"`
	Priority       int      `json:"priority"`
	Notes          string   `json:"notes"`
}

type responseRequest struct {
	Answer string `json:"answer"`
}

type evaluationRequest struct {
	ReviewerID     string   `json:"reviewer_id"`
	OverallScore   *float64 `json:"overall_score"`
	Recommendation string   `json:"recommendation"`
	Comments       string   `json:"comments"`
}

type annotationsRequest struct {
	Notes  string   `json:"notes"`
	Labels []string `json:"labels"`
}

type missingInfoRequest struct {
	Check  *checkView `json:"check"`
	Locale string     `json:"locale"`
}

type sendRequest struct {
	BypassSafety bool `json:"bypass_safety"`
}

type pauseRequest struct {
	Paused bool `json:"paused"`
}
