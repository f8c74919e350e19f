// Package httpapi exposes the review pipeline as a JSON HTTP API.
package httpapi

import (
	"errors"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/ftcplatform/platform/internal/platform/errors"
	"github.com/ftcplatform/platform/internal/services/review/domain"
)

// Pauser switches outbound email on or off.
type Pauser interface {
	SetPaused(paused bool)
}

// Config wires the handler's collaborators.
type Config struct {
	Service  *domain.Service
	Verifier *TokenVerifier
	// Checks holds the last completeness check per application. A nil value
	// gets a fresh cache.
	Checks *domain.CheckCache
	// Pauser is optional; without it the pause endpoint reports unavailable.
	Pauser         Pauser
	RequestTimeout time.Duration
}

// Handler serves the review API.
type Handler struct {
	service        *domain.Service
	verifier       *TokenVerifier
	checks         *domain.CheckCache
	pauser         Pauser
	requestTimeout time.Duration
}

// NewHandler validates cfg and builds a handler.
func NewHandler(cfg Config) (*Handler, error) {
	if cfg.Service == nil {
		return nil, errors.New("review service is required")
	}
	if cfg.Verifier == nil {
		return nil, errors.New("token verifier is required")
	}
	checks := cfg.Checks
	if checks == nil {
		checks = domain.NewCheckCache()
	}
	return &Handler{
		service:        cfg.Service,
		verifier:       cfg.Verifier,
		checks:         checks,
		pauser:         cfg.Pauser,
		requestTimeout: cfg.RequestTimeout,
	}, nil
}

// Routes returns the instrumented, authenticated route tree.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)
	return instrument(accessLog(withRequestTimeout(h.requestTimeout, authenticate(h.verifier, mux))))
}

// RegisterRoutes registers the review endpoints on mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	if mux == nil {
		return
	}
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	mux.HandleFunc("GET /statuses", h.handleStatuses)

	mux.HandleFunc("POST /events/{eventID}/applications", h.handleCreateApplication)
	mux.HandleFunc("GET /events/{eventID}/applications", h.handleListApplications)
	mux.HandleFunc("GET /events/{eventID}/completeness", h.handleCheckEvent)
	mux.HandleFunc("GET /events/{eventID}/consensus", h.handleConsensus)

	mux.HandleFunc("GET /applications/{id}", h.handleGetApplication)
	mux.HandleFunc("PUT /applications/{id}/status", h.handleSetStatus)
	mux.HandleFunc("POST /applications/{id}/transitions", h.handleTransition)
	mux.HandleFunc("POST /applications/status:bulk", h.handleBulkStatus)
	mux.HandleFunc("PUT /applications/{id}/responses/{questionKey}", h.handleSaveResponse)
	mux.HandleFunc("GET /applications/{id}/completeness", h.handleCheckApplication)
	mux.HandleFunc("POST /applications/{id}/emails/missing-info", h.handleCreateMissingInfoEmail)
	mux.HandleFunc("GET /applications/{id}/emails", h.handleListEmails)
	mux.HandleFunc("PUT /applications/{id}/evaluations/{stage}", h.handleSubmitEvaluation)

	mux.HandleFunc("POST /assignments:bulk", h.handleBulkAssign)
	mux.HandleFunc("PUT /applicants/{userID}/annotations", h.handleAnnotations)

	mux.HandleFunc("GET /emails/{id}", h.handleGetEmail)
	mux.HandleFunc("POST /emails/{id}/send", h.handleSendEmail)
	mux.HandleFunc("POST /emails/{id}/cancel", h.handleCancelEmail)
	mux.HandleFunc("DELETE /emails/{id}", h.handleDeleteEmail)

	mux.HandleFunc("GET /email-safety", h.handleEmailSafety)
	mux.HandleFunc("PUT /email-safety/pause", h.handlePause)
}

func (h *Handler) handleStatuses(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"statuses": toStatusViews()})
}

func (h *Handler) handleCreateApplication(w http.ResponseWriter, r *http.Request) {
	var body createApplicationRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &body); err != nil {
			writeError(w, r, err)
			return
		}
	}
	caller := callerFrom(r)
	userID := strings.TrimSpace(body.UserID)
	if userID == "" {
		userID = caller.UserID
	}
	if userID != caller.UserID && !caller.IsAdmin() {
		writeError(w, r, permissionDenied("creating an application for another user"))
		return
	}
	application, err := h.service.CreateApplication(r.Context(), domain.CreateApplicationInput{
		EventID: r.PathValue("eventID"),
		UserID:  userID,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toApplicationView(application))
}

func (h *Handler) handleListApplications(w http.ResponseWriter, r *http.Request) {
	if !requireStaff(w, r, "listing applications") {
		return
	}
	query := r.URL.Query()
	pageSize, err := queryInt(query, "page_size")
	if err != nil {
		writeError(w, r, err)
		return
	}
	page, err := h.service.ListEventApplications(r.Context(), domain.ListApplicationsInput{
		EventID:   r.PathValue("eventID"),
		Status:    query.Get("status"),
		Filter:    query.Get("filter"),
		OrderBy:   query.Get("order_by"),
		PageSize:  pageSize,
		PageToken: query.Get("page_token"),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"applications":    toApplicationViews(page.Applications),
		"next_page_token": page.NextPageToken,
	})
}

func (h *Handler) handleGetApplication(w http.ResponseWriter, r *http.Request) {
	application, ok := h.loadReadableApplication(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toApplicationView(application))
}

// loadReadableApplication admits the owner and staff.
func (h *Handler) loadReadableApplication(w http.ResponseWriter, r *http.Request) (domain.Application, bool) {
	application, err := h.service.GetApplication(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return domain.Application{}, false
	}
	caller := callerFrom(r)
	if application.UserID == caller.UserID || isStaff(caller) {
		return application, true
	}
	writeError(w, r, permissionDenied("reading this application"))
	return domain.Application{}, false
}

func (h *Handler) handleSetStatus(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r, "overriding an application status") {
		return
	}
	var body statusRequest
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	application, err := h.service.SetStatus(r.Context(), r.PathValue("id"), body.Status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toApplicationView(application))
}

// handleTransition applies a guarded transition. Applicants may only submit
// or cancel their own application.
func (h *Handler) handleTransition(w http.ResponseWriter, r *http.Request) {
	var body statusRequest
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	caller := callerFrom(r)
	if !caller.IsAdmin() {
		application, err := h.service.GetApplication(r.Context(), r.PathValue("id"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		target, err := domain.ParseStatus(body.Status)
		if err != nil {
			writeError(w, r, err)
			return
		}
		ownerMove := target == domain.StatusSubmitted || target == domain.StatusCancelled
		if application.UserID != caller.UserID || !ownerMove {
			writeError(w, r, permissionDenied("changing this application status"))
			return
		}
	}
	application, err := h.service.TransitionStatus(r.Context(), r.PathValue("id"), body.Status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toApplicationView(application))
}

func (h *Handler) handleBulkStatus(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r, "bulk status updates") {
		return
	}
	var body bulkStatusRequest
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	result, err := h.service.BulkSetStatus(r.Context(), body.ApplicationIDs, body.Status)
	if err != nil && result.Updated == 0 && len(result.Failed) == 0 {
		writeError(w, r, err)
		return
	}
	if err != nil {
		log.Printf("bulk status: transient failures: %v", err)
	}
	log.Printf("bulk status: status=%s updated=%d failed=%d", strings.ToUpper(strings.TrimSpace(body.Status)), result.Updated, len(result.Failed))
	writeJSON(w, http.StatusOK, bulkStatusView{
		Updated:   result.Updated,
		Failed:    toBulkFailureViews(result.Failed),
		Retryable: err != nil,
	})
}

func (h *Handler) handleBulkAssign(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r, "assigning reviewers") {
		return
	}
	var body bulkAssignRequest
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	result, err := h.service.BulkAssign(r.Context(), domain.BulkAssignInput{
		ApplicationIDs: body.ApplicationIDs,
		ReviewerID:     body.ReviewerID,
		Stage:          body.Stage,
		Priority:       body.Priority,
		Notes:          body.Notes,
	})
	if err != nil && result.Created == 0 && result.Skipped == 0 && len(result.Failed) == 0 {
		writeError(w, r, err)
		return
	}
	if err != nil {
		log.Printf("bulk assign: transient failures: %v", err)
	}
	log.Printf("bulk assign: created=%d skipped=%d failed=%d", result.Created, result.Skipped, len(result.Failed))
	writeJSON(w, http.StatusOK, bulkAssignView{
		Created:   result.Created,
		Skipped:   result.Skipped,
		Failed:    toBulkFailureViews(result.Failed),
		Retryable: err != nil,
	})
}

// handleSaveResponse lets the owner or an admin answer a question. The cached
// completeness check of the application is dropped.
func (h *Handler) handleSaveResponse(w http.ResponseWriter, r *http.Request) {
	var body responseRequest
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	caller := callerFrom(r)
	if !caller.IsAdmin() {
		application, err := h.service.GetApplication(r.Context(), r.PathValue("id"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		if application.UserID != caller.UserID {
			writeError(w, r, permissionDenied("answering for another applicant"))
			return
		}
	}
	response, err := h.service.SaveResponse(r.Context(), domain.SaveResponseInput{
		ApplicationID: r.PathValue("id"),
		QuestionKey:   r.PathValue("questionKey"),
		Answer:        body.Answer,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.checks.Invalidate(response.ApplicationID)
	writeJSON(w, http.StatusOK, responseView{
		ApplicationID: response.ApplicationID,
		QuestionKey:   response.QuestionKey,
		Answer:        response.Answer,
		UpdatedAt:     response.UpdatedAt,
	})
}

func (h *Handler) handleCheckApplication(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.loadReadableApplication(w, r); !ok {
		return
	}
	result, err := h.service.CheckApplication(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.checks.Record(result)
	writeJSON(w, http.StatusOK, toCheckView(result))
}

func (h *Handler) handleCheckEvent(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r, "checking event completeness") {
		return
	}
	results, err := h.service.CheckEventApplications(r.Context(), r.PathValue("eventID"), r.URL.Query().Get("status"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	views := make([]checkView, 0, len(results))
	incomplete := 0
	for _, result := range results {
		h.checks.Record(result)
		if !result.IsComplete {
			incomplete++
		}
		views = append(views, toCheckView(result))
	}
	writeJSON(w, http.StatusOK, map[string]any{"checks": views, "incomplete": incomplete})
}

// handleCreateMissingInfoEmail drafts from the check in the body, falling
// back to the last check recorded for the application.
func (h *Handler) handleCreateMissingInfoEmail(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r, "drafting emails") {
		return
	}
	var body missingInfoRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &body); err != nil {
			writeError(w, r, err)
			return
		}
	}
	applicationID := r.PathValue("id")
	var check domain.CheckResult
	if body.Check != nil {
		check = body.Check.toDomain()
	} else if cached, ok := h.checks.Get(applicationID); ok {
		check = cached
	}
	email, err := h.service.CreateMissingInfoEmail(r.Context(), domain.CreateMissingInfoEmailInput{
		ApplicationID: applicationID,
		Check:         check,
		Locale:        body.Locale,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toEmailView(email))
}

func (h *Handler) handleListEmails(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r, "reading emails") {
		return
	}
	emails, err := h.service.ListApplicationEmails(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	views := make([]emailView, 0, len(emails))
	for _, email := range emails {
		views = append(views, toEmailView(email))
	}
	writeJSON(w, http.StatusOK, map[string]any{"emails": views})
}

// handleSubmitEvaluation records the caller's evaluation. Admins may submit
// on behalf of another reviewer.
func (h *Handler) handleSubmitEvaluation(w http.ResponseWriter, r *http.Request) {
	if !requireStaff(w, r, "evaluating applications") {
		return
	}
	var body evaluationRequest
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	caller := callerFrom(r)
	reviewerID := strings.TrimSpace(body.ReviewerID)
	if reviewerID == "" {
		reviewerID = caller.UserID
	}
	if reviewerID != caller.UserID && !caller.IsAdmin() {
		writeError(w, r, permissionDenied("evaluating for another reviewer"))
		return
	}
	evaluation, err := h.service.SubmitEvaluation(r.Context(), domain.SubmitEvaluationInput{
		ApplicationID:  r.PathValue("id"),
		ReviewerID:     reviewerID,
		Stage:          r.PathValue("stage"),
		OverallScore:   body.OverallScore,
		Recommendation: body.Recommendation,
		Comments:       body.Comments,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toEvaluationView(evaluation))
}

func (h *Handler) handleConsensus(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r, "reading consensus") {
		return
	}
	query := r.URL.Query()
	order, err := domain.ParseConsensusSort(query.Get("sort"), query.Get("dir"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	region, err := domain.ParseRegionFilter(query.Get("region"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	includeAll, err := queryBool(query, "all")
	if err != nil {
		writeError(w, r, err)
		return
	}
	rows, err := h.service.GetConsensusApplications(r.Context(), domain.ConsensusQuery{
		EventID:    r.PathValue("eventID"),
		Sort:       order,
		ReviewerID: query.Get("reviewer"),
		Region:     region,
		Labels:     query["label"],
		IncludeAll: includeAll,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"sort":         string(order.Field),
		"dir":          string(order.Direction),
		"applications": toConsensusViews(rows),
	})
}

func (h *Handler) handleAnnotations(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r, "annotating applicants") {
		return
	}
	var body annotationsRequest
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	applicant, err := h.service.UpdateApplicantAnnotations(r.Context(), domain.AnnotationsInput{
		UserID: r.PathValue("userID"),
		Notes:  body.Notes,
		Labels: body.Labels,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toApplicantView(applicant))
}

func (h *Handler) handleGetEmail(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r, "reading emails") {
		return
	}
	email, err := h.service.GetEmail(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toEmailView(email))
}

// handleSendEmail reports business outcomes in the body. A blocked or failed
// send is 200 with success false; only lookups and dependency failures are
// errors.
func (h *Handler) handleSendEmail(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r, "sending emails") {
		return
	}
	var body sendRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &body); err != nil {
			writeError(w, r, err)
			return
		}
	}
	result, err := h.service.SendEmail(r.Context(), r.PathValue("id"), body.BypassSafety)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if body.BypassSafety {
		log.Printf("email send: id=%s safety bypassed by %s", result.Email.ID, callerFrom(r).UserID)
	}
	writeJSON(w, http.StatusOK, sendResultView{
		Success: result.Success,
		Error:   result.Error,
		Email:   toEmailView(result.Email),
	})
}

func (h *Handler) handleCancelEmail(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r, "cancelling emails") {
		return
	}
	email, err := h.service.CancelEmail(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toEmailView(email))
}

// handleDeleteEmail answers 409 when the email exists but is no longer a draft.
func (h *Handler) handleDeleteEmail(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r, "deleting emails") {
		return
	}
	result, err := h.service.DeleteEmail(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	status := http.StatusOK
	if !result.Deleted {
		status = http.StatusConflict
	}
	writeJSON(w, status, deleteResultView{Deleted: result.Deleted, Status: string(result.Status)})
}

func (h *Handler) handleEmailSafety(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r, "reading email safety") {
		return
	}
	snapshot, err := h.service.EmailSafety(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSafetyView(snapshot))
}

func (h *Handler) handlePause(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r, "pausing email") {
		return
	}
	if h.pauser == nil {
		writeError(w, r, apperrors.New(apperrors.CodeUnavailable, "email safety policy is not configured"))
		return
	}
	var body pauseRequest
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	h.pauser.SetPaused(body.Paused)
	log.Printf("email safety: paused=%t by %s", body.Paused, callerFrom(r).UserID)
	snapshot, err := h.service.EmailSafety(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSafetyView(snapshot))
}

func invalidQueryParam(name string, cause error) error {
	err := apperrors.WithMetadata(apperrors.CodeQueryParamInvalid, "invalid query parameter "+name, map[string]string{"Param": name})
	err.Cause = cause
	return err
}

// queryInt reads an optional integer parameter; absent means zero.
func queryInt(query url.Values, name string) (int, error) {
	raw := strings.TrimSpace(query.Get(name))
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, invalidQueryParam(name, err)
	}
	return value, nil
}

// queryBool reads an optional boolean parameter; absent means false.
func queryBool(query url.Values, name string) (bool, error) {
	raw := strings.TrimSpace(query.Get(name))
	if raw == "" {
		return false, nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return false, invalidQueryParam(name, err)
	}
	return value, nil
}
