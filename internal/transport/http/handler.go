package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"pairquiz-service/internal/app"
	"pairquiz-service/internal/domain"
)

// Handler exposes the pair quiz use cases over JSON HTTP. The handler is
// stateless; all session state lives behind the service's store.
type Handler struct {
	service *app.PairService
}

func NewHandler(service *app.PairService) *Handler {
	return &Handler{service: service}
}

// Register mounts the REST routes on the mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /pair/sessions", h.createSession)
	mux.HandleFunc("POST /pair/join", h.joinSession)
	mux.HandleFunc("GET /pair/sessions/{id}", h.getSession)
	mux.HandleFunc("POST /pair/sessions/{id}/answer", h.submitAnswer)
	mux.HandleFunc("POST /pair/sessions/{id}/cancel", h.cancelSession)
}

type createRequest struct {
	UserID     string            `json:"userId"`
	QuizConfig domain.QuizConfig `json:"quizConfig"`
}

type joinRequest struct {
	UserID      string `json:"userId"`
	SessionCode string `json:"sessionCode"`
}

type answerRequest struct {
	UserID      string `json:"userId"`
	QuestionID  string `json:"questionId"`
	OptionIndex int    `json:"optionIndex"`
}

type cancelRequest struct {
	UserID string `json:"userId"`
	Reason string `json:"reason"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *Handler) createSession(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if !decode(w, r, &req) {
		return
	}
	snap, err := h.service.Create(r.Context(), req.UserID, req.QuizConfig)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, snap)
}

func (h *Handler) joinSession(w http.ResponseWriter, r *http.Request) {
	var req joinRequest
	if !decode(w, r, &req) {
		return
	}
	snap, err := h.service.Join(r.Context(), req.UserID, req.SessionCode)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (h *Handler) getSession(w http.ResponseWriter, r *http.Request) {
	snap, err := h.service.Fetch(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (h *Handler) submitAnswer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if !decode(w, r, &req) {
		return
	}
	result, err := h.service.SubmitAnswer(r.Context(), r.PathValue("id"), req.UserID, req.QuestionID, req.OptionIndex)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) cancelSession(w http.ResponseWriter, r *http.Request) {
	var req cancelRequest
	if !decode(w, r, &req) {
		return
	}
	snap, err := h.service.Cancel(r.Context(), r.PathValue("id"), req.UserID, req.Reason)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), errorResponse{Error: err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, domain.ErrSessionExpired):
		return http.StatusGone
	default:
		return http.StatusInternalServerError
	}
}
