package httpapi

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/fittrack/fittrack"
	"github.com/fittrack/fittrack/middleware"
	"github.com/fittrack/fittrack/schema"
)

type signupResponse struct {
	ID               string `json:"id"`
	Email            string `json:"email"`
	Name             string `json:"name"`
	VerificationSent bool   `json:"verification_sent"`
}

type loginResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

type statusResponse struct {
	Status string `json:"status"`
}

// readBody reads at most maxBodyBytes of the request body.
func (h *handler) readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "BODY_TOO_LARGE", "request body is too large")
		} else {
			writeError(w, http.StatusBadRequest, "BAD_REQUEST", "request body could not be read")
		}
		return nil, err
	}
	return data, nil
}

func (h *handler) healthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, "ok")
}

func (h *handler) signup(w http.ResponseWriter, r *http.Request) {
	data, err := h.readBody(w, r)
	if err != nil {
		return
	}

	payload, err := schema.DecodeSignup(data)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	res, err := h.app.Signup(r.Context(), *payload)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, signupResponse{
		ID:               res.User.ID.String(),
		Email:            res.User.Email,
		Name:             res.User.Name,
		VerificationSent: res.VerificationSent,
	})
}

func (h *handler) login(w http.ResponseWriter, r *http.Request) {
	data, err := h.readBody(w, r)
	if err != nil {
		return
	}

	payload, err := schema.DecodeLogin(data)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	res, err := h.app.Login(r.Context(), *payload)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		AccessToken: res.AccessToken,
		TokenType:   res.TokenType,
		ExpiresAt:   res.ExpiresAt.UTC(),
	})
}

func (h *handler) verify(w http.ResponseWriter, r *http.Request) {
	tok := r.URL.Query().Get("token")
	if tok == "" {
		writeError(w, http.StatusBadRequest, fittrack.CodeTokenInvalid, "token query parameter is required")
		return
	}

	if _, err := h.app.VerifyEmail(r.Context(), tok); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Status: "verified"})
}

// resend answers 202 for every valid body, whether or not the address is
// registered. Response latency still differs when a mail is actually sent.
func (h *handler) resend(w http.ResponseWriter, r *http.Request) {
	data, err := h.readBody(w, r)
	if err != nil {
		return
	}

	req, err := schema.DecodeResend(data)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.app.ResendVerification(r.Context(), req.Email)
	writeJSON(w, http.StatusAccepted, statusResponse{Status: "accepted"})
}

func (h *handler) progress(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.app.Progress())
}

func (h *handler) me(w http.ResponseWriter, r *http.Request) {
	user, err := h.app.Profile(r.Context(), middleware.EmailFrom(r.Context()))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}
