package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/custodia-labs/sercha-hubspot/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-hubspot/internal/worker"
)

// TruncatedHeader reports whether a listing stopped before the last page.
const TruncatedHeader = "X-Integration-Truncated"

// maxFormSize bounds form bodies on integration endpoints.
const maxFormSize = 1 << 20

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// Health endpoints

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ReadyResponse is the readiness check body
type ReadyResponse struct {
	Status  string         `json:"status"`
	Janitor *worker.Health `json:"janitor,omitempty"`
}

// handleReady reports 503 while the store is unreachable or the expiry
// worker has stopped.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.store != nil {
		if err := s.store.Ping(r.Context()); err != nil {
			s.logger.Warn("readiness check failed", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, ReadyResponse{Status: "unavailable"})
			return
		}
	}

	resp := ReadyResponse{Status: "ready"}
	if s.janitor != nil {
		health := s.janitor.Health(r.Context())
		resp.Janitor = &health
		if !health.Running || !health.StoreHealth {
			s.logger.Warn("readiness check failed", "janitor_running", health.Running, "error", health.Error)
			resp.Status = "unavailable"
			writeJSON(w, http.StatusServiceUnavailable, resp)
			return
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"version": s.version})
}

// Integration endpoints

// handleAuthorize starts an authorization flow. Form: user_id, org_id.
// Responds with the authorization URL as a JSON string.
func (s *Server) handleAuthorize(w http.ResponseWriter, r *http.Request) {
	userID, orgID, ok := s.identityFromForm(w, r)
	if !ok {
		return
	}

	resp, err := s.integrationService.Authorize(r.Context(), driving.AuthorizeRequest{
		UserID: userID,
		OrgID:  orgID,
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resp.AuthorizationURL)
}

// handleCallback receives the HubSpot redirect. Query: code, state, error,
// error_description.
func (s *Server) handleCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	_, err := s.integrationService.Callback(r.Context(), driving.CallbackRequest{
		Code:             q.Get("code"),
		State:            q.Get("state"),
		Error:            q.Get("error"),
		ErrorDescription: q.Get("error_description"),
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	if err := writeCallbackPage(w); err != nil {
		s.logger.Error("failed to render callback page", "error", err)
	}
}

// handleCredentials hands over stored credentials once. Form: user_id, org_id.
func (s *Server) handleCredentials(w http.ResponseWriter, r *http.Request) {
	userID, orgID, ok := s.identityFromForm(w, r)
	if !ok {
		return
	}

	creds, err := s.integrationService.Credentials(r.Context(), driving.CredentialsRequest{
		UserID: userID,
		OrgID:  orgID,
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, creds)
}

// handleLoad lists contacts. Form: credentials (the JSON returned by
// the credentials endpoint).
func (s *Server) handleLoad(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormSize)

	resp, err := s.integrationService.Items(r.Context(), r.PostFormValue("credentials"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	w.Header().Set(TruncatedHeader, strconv.FormatBool(resp.Truncated))
	writeJSON(w, http.StatusOK, resp.Items)
}

// identityFromForm reads user_id and org_id and, when the caller is
// authenticated, checks the token covers that identity.
func (s *Server) identityFromForm(w http.ResponseWriter, r *http.Request) (string, string, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormSize)
	userID := r.PostFormValue("user_id")
	orgID := r.PostFormValue("org_id")
	if userID == "" || orgID == "" {
		writeError(w, http.StatusBadRequest, driving.ErrMissingParameter.Message)
		return "", "", false
	}

	if authCtx := GetAuthContext(r.Context()); authCtx != nil && !authCtx.CanActFor(userID, orgID) {
		writeError(w, http.StatusForbidden, "token does not grant access to this identity")
		return "", "", false
	}
	return userID, orgID, true
}

// writeServiceError maps integration errors to status codes. Anything outside
// the taxonomy is logged and reported as a 500 without details.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var integrationErr *driving.IntegrationError
	if !errors.As(err, &integrationErr) {
		s.logger.Error("request failed",
			"request_id", GetRequestID(r.Context()),
			"path", r.URL.Path,
			"error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	status := statusForError(integrationErr)
	if status >= http.StatusInternalServerError {
		s.logger.Error("integration request failed",
			"request_id", GetRequestID(r.Context()),
			"path", r.URL.Path,
			"code", integrationErr.Code)
	}
	writeError(w, status, integrationErr.Message)
}

func statusForError(err *driving.IntegrationError) int {
	switch err {
	case driving.ErrProviderDenied,
		driving.ErrMissingParameter,
		driving.ErrMalformedState,
		driving.ErrStateNotFound,
		driving.ErrStateMismatch,
		driving.ErrMissingAccessToken,
		driving.ErrInvalidCredentials:
		return http.StatusBadRequest
	case driving.ErrCredentialsNotFound:
		return http.StatusNotFound
	case driving.ErrTokenExchangeFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Helper functions

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Detail: message})
}
