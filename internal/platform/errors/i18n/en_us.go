package i18n

// Error codes must match the codes defined in internal/platform/errors/codes.go.
// These are duplicated as strings to avoid an import cycle.
const (
	CodeApplicationIDRequired              = "APPLICATION_ID_REQUIRED"
	CodeApplicationEventIDRequired         = "APPLICATION_EVENT_ID_REQUIRED"
	CodeApplicationUserIDRequired          = "APPLICATION_USER_ID_REQUIRED"
	CodeApplicationInvalidStatus           = "APPLICATION_INVALID_STATUS"
	CodeApplicationInvalidStatusTransition = "APPLICATION_INVALID_STATUS_TRANSITION"
	CodeApplicationIDsRequired             = "APPLICATION_IDS_REQUIRED"
	CodeResponseQuestionKeyRequired        = "RESPONSE_QUESTION_KEY_REQUIRED"
	CodeResponseQuestionUnknown            = "RESPONSE_QUESTION_UNKNOWN"
	CodeAssignmentInvalidStage             = "ASSIGNMENT_INVALID_STAGE"
	CodeAssignmentReviewerRequired         = "ASSIGNMENT_REVIEWER_REQUIRED"
	CodeAssignmentMissing                  = "ASSIGNMENT_MISSING"
	CodeEvaluationInvalidScore             = "EVALUATION_INVALID_SCORE"
	CodeEvaluationInvalidRecommendation    = "EVALUATION_INVALID_RECOMMENDATION"
	CodeCheckApplicationMismatch           = "CHECK_APPLICATION_MISMATCH"
	CodeCheckApplicationComplete           = "CHECK_APPLICATION_COMPLETE"
	CodeCheckRequired                      = "CHECK_REQUIRED"
	CodeEmailIDRequired                    = "EMAIL_ID_REQUIRED"
	CodeEmailNotDraft                      = "EMAIL_NOT_DRAFT"
	CodeEmailRecipientMissing              = "EMAIL_RECIPIENT_MISSING"
	CodeConsensusInvalidSort               = "CONSENSUS_INVALID_SORT"
	CodeConsensusInvalidRegion             = "CONSENSUS_INVALID_REGION"
	CodeFilterInvalid                      = "FILTER_INVALID"
	CodePageTokenInvalid                   = "PAGE_TOKEN_INVALID"
	CodeQueryParamInvalid                  = "QUERY_PARAM_INVALID"
	CodeRequestBodyInvalid                 = "REQUEST_BODY_INVALID"
	CodeUnauthenticated                    = "UNAUTHENTICATED"
	CodePermissionDenied                   = "PERMISSION_DENIED"
	CodeNotFound                           = "NOT_FOUND"
	CodeAlreadyExists                      = "ALREADY_EXISTS"
	CodeUnavailable                        = "UNAVAILABLE"
)

var enUSMessages = map[Code]string{
	CodeApplicationIDRequired:              "Application ID is required.",
	CodeApplicationEventIDRequired:         "Event ID is required.",
	CodeApplicationUserIDRequired:          "Applicant user ID is required.",
	CodeApplicationInvalidStatus:           "Status {{.Status}} is not a valid application status.",
	CodeApplicationInvalidStatusTransition: "An application cannot move from {{.From}} to {{.To}}.",
	CodeApplicationIDsRequired:             "Select at least one application.",
	CodeResponseQuestionKeyRequired:        "Question key is required.",
	CodeResponseQuestionUnknown:            "Question {{.QuestionKey}} does not belong to this event.",
	CodeAssignmentInvalidStage:             "Review stage {{.Stage}} is not supported.",
	CodeAssignmentReviewerRequired:         "Reviewer ID is required.",
	CodeAssignmentMissing:                  "The reviewer is not assigned to this application for the {{.Stage}} stage.",
	CodeEvaluationInvalidScore:             "Scores must be between {{.Min}} and {{.Max}}.",
	CodeEvaluationInvalidRecommendation:    "Recommendation {{.Recommendation}} is not supported.",
	CodeCheckApplicationMismatch:           "The completeness check belongs to a different application.",
	CodeCheckApplicationComplete:           "The application has no missing information.",
	CodeCheckRequired:                      "Run the completeness check before drafting this email.",
	CodeEmailIDRequired:                    "Email ID is required.",
	CodeEmailNotDraft:                      "Only draft emails can be changed; this email is {{.Status}}.",
	CodeEmailRecipientMissing:              "The applicant has no email address on file.",
	CodeConsensusInvalidSort:               "Sort field {{.Sort}} is not supported.",
	CodeConsensusInvalidRegion:             "Region {{.Region}} is not supported.",
	CodeFilterInvalid:                      "The filter expression is invalid.",
	CodePageTokenInvalid:                   "The page token is invalid or belongs to another listing.",
	CodeQueryParamInvalid:                  "Query parameter {{.Param}} has an invalid value.",
	CodeRequestBodyInvalid:                 "The request body could not be read.",
	CodeUnauthenticated:                    "Sign in to continue.",
	CodePermissionDenied:                   "You do not have permission to do that.",
	CodeNotFound:                           "The requested record was not found.",
	CodeAlreadyExists:                      "The record already exists.",
	CodeUnavailable:                        "The service is temporarily unavailable. Try again.",
}
