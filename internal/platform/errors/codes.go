// Package errors provides structured error handling with i18n support.
package errors

import (
	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"google.golang.org/grpc/codes"
)

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Application errors
	CodeApplicationIDRequired              Code = "APPLICATION_ID_REQUIRED"
	CodeApplicationEventIDRequired         Code = "APPLICATION_EVENT_ID_REQUIRED"
	CodeApplicationUserIDRequired          Code = "APPLICATION_USER_ID_REQUIRED"
	CodeApplicationInvalidStatus           Code = "APPLICATION_INVALID_STATUS"
	CodeApplicationInvalidStatusTransition Code = "APPLICATION_INVALID_STATUS_TRANSITION"
	CodeApplicationIDsRequired             Code = "APPLICATION_IDS_REQUIRED"

	// Response errors
	CodeResponseQuestionKeyRequired Code = "RESPONSE_QUESTION_KEY_REQUIRED"
	CodeResponseQuestionUnknown     Code = "RESPONSE_QUESTION_UNKNOWN"

	// Assignment errors
	CodeAssignmentInvalidStage     Code = "ASSIGNMENT_INVALID_STAGE"
	CodeAssignmentReviewerRequired Code = "ASSIGNMENT_REVIEWER_REQUIRED"
	CodeAssignmentMissing          Code = "ASSIGNMENT_MISSING"

	// Evaluation errors
	CodeEvaluationInvalidScore          Code = "EVALUATION_INVALID_SCORE"
	CodeEvaluationInvalidRecommendation Code = "EVALUATION_INVALID_RECOMMENDATION"

	// Completeness errors
	CodeCheckApplicationMismatch Code = "CHECK_APPLICATION_MISMATCH"
	CodeCheckApplicationComplete Code = "CHECK_APPLICATION_COMPLETE"
	CodeCheckRequired            Code = "CHECK_REQUIRED"

	// Email errors
	CodeEmailIDRequired       Code = "EMAIL_ID_REQUIRED"
	CodeEmailNotDraft         Code = "EMAIL_NOT_DRAFT"
	CodeEmailRecipientMissing Code = "EMAIL_RECIPIENT_MISSING"

	// Consensus and listing errors
	CodeConsensusInvalidSort   Code = "CONSENSUS_INVALID_SORT"
	CodeConsensusInvalidRegion Code = "CONSENSUS_INVALID_REGION"
	CodeFilterInvalid          Code = "FILTER_INVALID"
	CodePageTokenInvalid       Code = "PAGE_TOKEN_INVALID"
	CodeQueryParamInvalid      Code = "QUERY_PARAM_INVALID"

	// Transport errors
	CodeRequestBodyInvalid Code = "REQUEST_BODY_INVALID"

	// Access errors
	CodeUnauthenticated  Code = "UNAUTHENTICATED"
	CodePermissionDenied Code = "PERMISSION_DENIED"

	// Storage errors
	CodeNotFound      Code = "NOT_FOUND"
	CodeAlreadyExists Code = "ALREADY_EXISTS"
	CodeUnavailable   Code = "UNAVAILABLE"
)

// GRPCCode maps domain codes to gRPC status codes.
func (c Code) GRPCCode() codes.Code {
	switch c {
	// InvalidArgument - validation failures, bad input
	case CodeApplicationIDRequired,
		CodeApplicationEventIDRequired,
		CodeApplicationUserIDRequired,
		CodeApplicationInvalidStatus,
		CodeApplicationIDsRequired,
		CodeResponseQuestionKeyRequired,
		CodeResponseQuestionUnknown,
		CodeAssignmentInvalidStage,
		CodeAssignmentReviewerRequired,
		CodeEvaluationInvalidScore,
		CodeEvaluationInvalidRecommendation,
		CodeCheckApplicationMismatch,
		CodeEmailIDRequired,
		CodeConsensusInvalidSort,
		CodeConsensusInvalidRegion,
		CodeFilterInvalid,
		CodePageTokenInvalid,
		CodeQueryParamInvalid,
		CodeRequestBodyInvalid:
		return codes.InvalidArgument

	// FailedPrecondition - state doesn't allow operation
	case CodeApplicationInvalidStatusTransition,
		CodeAssignmentMissing,
		CodeCheckApplicationComplete,
		CodeCheckRequired,
		CodeEmailNotDraft,
		CodeEmailRecipientMissing:
		return codes.FailedPrecondition

	case CodeNotFound:
		return codes.NotFound
	case CodeAlreadyExists:
		return codes.AlreadyExists
	case CodeUnavailable:
		return codes.Unavailable
	case CodeUnauthenticated:
		return codes.Unauthenticated
	case CodePermissionDenied:
		return codes.PermissionDenied

	default:
		return codes.Internal
	}
}

// HTTPStatus maps domain codes to HTTP status codes through their gRPC code.
func (c Code) HTTPStatus() int {
	return runtime.HTTPStatusFromCode(c.GRPCCode())
}

// Transient reports whether the code describes an external-dependency failure
// that a caller may retry.
func (c Code) Transient() bool {
	return c == CodeUnavailable
}
