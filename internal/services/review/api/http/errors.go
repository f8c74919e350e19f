package httpapi

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	apperrors "github.com/ftcplatform/platform/internal/platform/errors"
	"github.com/ftcplatform/platform/internal/platform/errors/i18n"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/status"
)

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code     string            `json:"code"`
	Message  string            `json:"message"`
	Reason   string            `json:"reason,omitempty"`
	Domain   string            `json:"domain,omitempty"`
	Locale   string            `json:"locale,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// writeError renders err as a localized JSON error. Errors without a domain
// code are logged and reported as internal.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := apperrors.CodeOf(err)
	locale := i18n.ResolveAcceptLanguage(r.Header.Get("Accept-Language"))

	var domainErr *apperrors.Error
	if code == apperrors.CodeUnknown || !errors.As(err, &domainErr) {
		log.Printf("%s %s: internal error: %v", r.Method, r.URL.Path, err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: errorDetail{
			Code:    string(apperrors.CodeUnknown),
			Message: http.StatusText(http.StatusInternalServerError),
		}})
		return
	}
	if code.Transient() {
		log.Printf("%s %s: dependency failure: %v", r.Method, r.URL.Path, err)
	}
	catalog := i18n.GetCatalog(locale)
	message := catalog.Format(string(code), domainErr.Metadata)
	writeJSON(w, code.HTTPStatus(), errorBody{Error: statusDetail(code, message, domainErr.ToGRPCStatus(catalog.Locale(), message))})
}

// statusDetail renders the ErrorInfo and LocalizedMessage details of a gRPC
// status the way a gateway would.
func statusDetail(code apperrors.Code, message string, err error) errorDetail {
	detail := errorDetail{Code: string(code), Message: message}
	st, ok := status.FromError(err)
	if !ok {
		return detail
	}
	for _, item := range st.Details() {
		switch d := item.(type) {
		case *errdetails.ErrorInfo:
			detail.Reason = d.Reason
			detail.Domain = d.Domain
			detail.Metadata = d.Metadata
		case *errdetails.LocalizedMessage:
			detail.Locale = d.Locale
			detail.Message = d.Message
		}
	}
	return detail
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	encoder := json.NewEncoder(w)
	_ = encoder.Encode(payload)
}

// decodeJSON reads a JSON body into dst. Unknown fields are rejected.
func decodeJSON(r *http.Request, dst any) error {
	decoder := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return apperrors.Wrap(apperrors.CodeRequestBodyInvalid, "decode request body", err)
	}
	return nil
}

const maxBodyBytes = 1 << 20
