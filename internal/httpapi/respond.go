package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fittrack/fittrack"
	"github.com/fittrack/fittrack/internal/logging"
	"github.com/fittrack/fittrack/middleware"
	"github.com/fittrack/fittrack/schema"
)

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Code    string              `json:"code"`
	Message string              `json:"message"`
	Errors  []schema.FieldError `json:"errors,omitempty"`
}

// publicMessages are the client-facing texts per error code.
var publicMessages = map[string]string{
	fittrack.CodeValidation:         "request body is invalid",
	fittrack.CodeEmailTaken:         "email is already registered",
	fittrack.CodeInvalidCredentials: "invalid email or password",
	fittrack.CodeUserNotFound:       "user not found",
	fittrack.CodeTokenInvalid:       "verification link is invalid",
	fittrack.CodeTokenExpired:       "verification link has expired",
	fittrack.CodeDeliveryFailed:     "email could not be delivered",
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorBody{Code: code, Message: message})
}

// fail maps err onto a response. Server-side failures are logged, client
// errors are not.
func (h *handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := fittrack.ErrorToHTTPStatus(err)
	code := fittrack.ErrorCode(err)

	body := errorBody{Code: code, Message: publicMessages[code]}
	if body.Message == "" {
		body.Code = fittrack.CodeInternal
		body.Message = http.StatusText(http.StatusInternalServerError)
	}

	var verr *schema.ValidationError
	if errors.As(err, &verr) {
		body.Errors = verr.Fields
	}

	if status >= http.StatusInternalServerError {
		logging.LogError(r.Context(), h.logger, "request failed", err)
	}
	writeJSON(w, status, body)
}

// authError is the error handler of the bearer token middleware.
func authError(w http.ResponseWriter, _ *http.Request, err error) {
	status := middleware.ErrorToHTTPStatus(err)
	if status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", `Bearer realm="fittrack"`)
		writeError(w, status, "UNAUTHORIZED", "missing or invalid access token")
		return
	}
	writeError(w, status, "UNAVAILABLE", http.StatusText(status))
}
