package session

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/flashnotes/backend/internal/models"
	"github.com/flashnotes/backend/internal/scheduler"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type startRequest struct {
	Mode    Mode `json:"mode"`
	Shuffle bool `json:"shuffle"`
}

func (h *Handler) Start(w http.ResponseWriter, r *http.Request) {
	topicID := mux.Vars(r)["topicID"]

	var req startRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
			return
		}
	}
	if req.Mode == "" {
		req.Mode = ModeAll
	}
	if req.Mode != ModeAll && req.Mode != ModeDue {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "mode must be 'all' or 'due'"})
		return
	}

	v, err := h.svc.Start(topicID, req.Mode, req.Shuffle)
	if err != nil {
		if errors.Is(err, models.ErrEmptyDeck) {
			writeJSON(w, http.StatusUnprocessableEntity, models.ErrorResponse{Error: "No cards to study for this topic"})
			return
		}
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, v)
}

func (h *Handler) Current(w http.ResponseWriter, r *http.Request) {
	v, err := h.svc.Current(mux.Vars(r)["topicID"])
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *Handler) Reveal(w http.ResponseWriter, r *http.Request) {
	v, err := h.svc.Reveal(mux.Vars(r)["topicID"])
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *Handler) Skip(w http.ResponseWriter, r *http.Request) {
	v, err := h.svc.Skip(mux.Vars(r)["topicID"])
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

type scoreRequest struct {
	Quality int `json:"quality"`
}

func (h *Handler) Score(w http.ResponseWriter, r *http.Request) {
	topicID := mux.Vars(r)["topicID"]

	var req scoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	q := scheduler.Quality(req.Quality)
	if !q.Valid() {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "quality must be between 1 and 5"})
		return
	}

	v, err := h.svc.Score(topicID, q)
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *Handler) End(w http.ResponseWriter, r *http.Request) {
	sum, err := h.svc.End(mux.Vars(r)["topicID"])
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

func writeSessionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrNoSession):
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: err.Error()})
	case errors.Is(err, models.ErrInvalidTransition):
		writeJSON(w, http.StatusConflict, models.ErrorResponse{Error: err.Error()})
	case errors.Is(err, models.ErrStorageCapacityExceeded):
		writeJSON(w, http.StatusInsufficientStorage, models.ErrorResponse{Error: err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: err.Error()})
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
