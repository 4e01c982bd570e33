package server

import (
	"encoding/json"
	"net/http"

	"github.com/chatbridge/go-wa-gateway/internal/errors"
	"github.com/chatbridge/go-wa-gateway/qr"
)

const contentTypeJSON = "application/json; charset=utf-8"

type createSessionRequest struct {
	SessionID  string `json:"sessionId"`
	WebhookURL string `json:"webhookUrl"`
}

type sendMessageRequest struct {
	SessionID string `json:"sessionId"`
	To        string `json:"to"`
	Message   string `json:"message"`
}

type disconnectRequest struct {
	SessionID string `json:"sessionId"`
}

// CreateSessionHandler drives the synchronous pairing flow: it blocks until
// a pairing code arrives, stored credentials resume silently, or the
// pairing deadline elapses.
func (s *Server) CreateSessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createSessionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		result, err := s.service.CreateSession(r.Context(), req.SessionID, req.WebhookURL)
		switch {
		case err == nil:
		case errors.Is(err, errors.ErrInvalidSessionID), errors.Is(err, errors.ErrInvalidWebhookURL):
			writeError(w, http.StatusBadRequest, err.Error())
			return
		case errors.Is(err, errors.ErrPairingTimeout):
			writeError(w, http.StatusInternalServerError, "timeout")
			return
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}

		if result.Connected {
			writeJSON(w, http.StatusOK, map[string]any{
				"success":     true,
				"connected":   true,
				"phoneNumber": result.Identity.PhoneNumber(),
			})
			return
		}

		image, err := qr.DataURL(result.Code)
		if err != nil {
			s.log.Error().Err(err).Str("session_id", req.SessionID).Msg("render pairing code")
			image = ""
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"success":     true,
			"pairingCode": result.Code,
			"qrImage":     image,
		})
	}
}

// SendMessageHandler delivers outbound text through a connected session.
func (s *Server) SendMessageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req sendMessageRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.To == "" || req.Message == "" {
			writeError(w, http.StatusBadRequest, "to and message are required")
			return
		}

		err := s.service.SendText(r.Context(), req.SessionID, req.To, req.Message)
		switch {
		case err == nil:
			writeJSON(w, http.StatusOK, map[string]any{"success": true})
		case errors.Is(err, errors.ErrSessionNotFound):
			writeError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, errors.ErrSessionNotConnected):
			writeError(w, http.StatusConflict, err.Error())
		default:
			// The delegate's message is surfaced verbatim; never a stack trace.
			writeError(w, http.StatusInternalServerError, err.Error())
		}
	}
}

// DeleteSessionHandler tears down the session named in the path.
func (s *Server) DeleteSessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.teardown(w, r, r.PathValue("id"))
	}
}

// DisconnectHandler is the body-based alias for session teardown.
func (s *Server) DisconnectHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req disconnectRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		s.teardown(w, r, req.SessionID)
	}
}

func (s *Server) teardown(w http.ResponseWriter, r *http.Request, sessionID string) {
	if err := s.service.Teardown(r.Context(), sessionID); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// HealthHandler reports liveness and the live session count.
func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status":   "ok",
			"sessions": s.registry.Count(),
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"success": false, "error": message})
}
