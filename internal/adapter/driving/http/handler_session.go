package httphandler

import (
	"encoding/json"
	"net/http"
	"strings"
)

// GetSession reports whether a GitLab client is connected.
func (h *Handler) GetSession(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, toSessionResponse(h.sessions.Current()))
}

// TestSession checks credentials against GitLab without logging in.
func (h *Handler) TestSession(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeSessionRequest(w, r)
	if !ok {
		return
	}

	user, err := h.sessions.TestCredentials(r.Context(), req.URL, req.Token)
	if err != nil {
		h.writeAppError(w, "credential test failed", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"username": user.Username})
}

// Connect logs in with the given credentials and loads the listing.
func (h *Handler) Connect(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeSessionRequest(w, r)
	if !ok {
		return
	}

	info, err := h.sessions.Connect(r.Context(), req.URL, req.Token)
	if err != nil {
		h.writeAppError(w, "login failed", err)
		return
	}

	// A listing failure is reported through the listing state.
	_ = h.store.Load(r.Context())

	writeJSON(w, http.StatusOK, toSessionResponse(info))
}

// Logout drops the connection and clears the listing.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Logout(r.Context()); err != nil {
		h.writeAppError(w, "logout failed", err)
		return
	}
	h.store.Reset()

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) decodeSessionRequest(w http.ResponseWriter, r *http.Request) (SessionRequest, bool) {
	var req SessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return req, false
	}

	req.URL = strings.TrimSpace(req.URL)
	req.Token = strings.TrimSpace(req.Token)

	if err := h.validate.Struct(req); err != nil {
		h.logger.Debug("session request validation failed", "error", err)
		writeError(w, http.StatusBadRequest, "url and token are required; url must be absolute")
		return req, false
	}
	return req, true
}
