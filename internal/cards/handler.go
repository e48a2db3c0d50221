package cards

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/flashnotes/backend/internal/extractor"
	"github.com/flashnotes/backend/internal/models"
)

type Handler struct {
	store *Store
	ext   *extractor.Extractor
}

func NewHandler(store *Store, ext *extractor.Extractor) *Handler {
	return &Handler{store: store, ext: ext}
}

type extractRequest struct {
	Text string `json:"text"`
}

type extractResponse struct {
	Candidates []models.CandidateCard `json:"candidates"`
}

// Extract mines candidates from a pasted block of notes without storing
// anything; the caller decides which candidates to accept.
func (h *Handler) Extract(w http.ResponseWriter, r *http.Request) {
	var req extractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if req.Text == "" {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "text is required"})
		return
	}

	candidates := h.ext.Extract(req.Text)
	if candidates == nil {
		candidates = []models.CandidateCard{}
	}
	writeJSON(w, http.StatusOK, extractResponse{Candidates: candidates})
}

type acceptRequest struct {
	Candidates []models.CandidateCard `json:"candidates"`
}

type acceptResponse struct {
	Accepted []models.Flashcard `json:"accepted"`
	Skipped  int                `json:"skipped"`
}

// Accept stores submitted candidates after validity filtering and
// deduplication. Used both for accepting extractor output and for manual
// card creation.
func (h *Handler) Accept(w http.ResponseWriter, r *http.Request) {
	topicID := mux.Vars(r)["topicID"]

	var req acceptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if len(req.Candidates) == 0 {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "candidates are required"})
		return
	}
	for i := range req.Candidates {
		if req.Candidates[i].Origin == "" {
			req.Candidates[i].Origin = models.OriginManual
		}
	}

	accepted, skipped, err := h.store.AcceptCandidates(topicID, req.Candidates, time.Now())
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if accepted == nil {
		accepted = []models.Flashcard{}
	}
	writeJSON(w, http.StatusCreated, acceptResponse{Accepted: accepted, Skipped: skipped})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	topicID := mux.Vars(r)["topicID"]

	deck, err := h.store.Get(topicID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if deck == nil {
		deck = []models.Flashcard{}
	}
	writeJSON(w, http.StatusOK, deck)
}

func (h *Handler) Due(w http.ResponseWriter, r *http.Request) {
	topicID := mux.Vars(r)["topicID"]

	due, err := h.store.DueCards(topicID, time.Now())
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if due == nil {
		due = []models.Flashcard{}
	}
	writeJSON(w, http.StatusOK, due)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if err := h.store.Delete(vars["topicID"], vars["cardID"]); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) GetConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.LoadConfig())
}

func (h *Handler) UpdateConfig(w http.ResponseWriter, r *http.Request) {
	var cfg models.SchedulerConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if err := h.store.SaveConfig(cfg); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.store.LoadConfig())
}

func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	topicID := mux.Vars(r)["topicID"]

	rec, err := h.store.Export(topicID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

type importResponse struct {
	Added   int `json:"added"`
	Skipped int `json:"skipped"`
}

func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	topicID := mux.Vars(r)["topicID"]

	var rec models.ExportRecord
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	added, skipped, err := h.store.Import(topicID, rec)
	if err != nil {
		if errors.Is(err, models.ErrStorageCapacityExceeded) {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, importResponse{Added: added, Skipped: skipped})
}

func writeStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, models.ErrStorageCapacityExceeded) {
		writeJSON(w, http.StatusInsufficientStorage, models.ErrorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Storage failure: " + err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
