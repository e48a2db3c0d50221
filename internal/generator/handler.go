package generator

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/flashnotes/backend/internal/cards"
	"github.com/flashnotes/backend/internal/models"
)

type Handler struct {
	gen   *Generator
	store *cards.Store
}

func NewHandler(gen *Generator, store *cards.Store) *Handler {
	return &Handler{gen: gen, store: store}
}

type generateRequest struct {
	Text  string `json:"text"`
	Count int    `json:"count"`
}

type generateResponse struct {
	Accepted     []models.Flashcard `json:"accepted"`
	Skipped      int                `json:"skipped"`
	ModelUsed    string             `json:"model_used"`
	PromptTokens int                `json:"prompt_tokens"`
	OutputTokens int                `json:"output_tokens"`
}

// Generate runs the notes through the LLM and submits the produced cards
// to the store, where the shared validity and deduplication rules apply.
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	topicID := mux.Vars(r)["topicID"]

	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if req.Text == "" {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "text is required"})
		return
	}
	if req.Count <= 0 || req.Count > 50 {
		req.Count = 10
	}

	batch, resp, err := h.gen.GenerateCards(r.Context(), req.Text, req.Count)
	if err != nil {
		writeJSON(w, http.StatusBadGateway, models.ErrorResponse{Error: "Generation failed: " + err.Error()})
		return
	}

	accepted, skipped, err := h.store.AcceptCandidates(topicID, batch.Candidates(), time.Now())
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, models.ErrStorageCapacityExceeded) {
			status = http.StatusInsufficientStorage
		}
		writeJSON(w, status, models.ErrorResponse{Error: err.Error()})
		return
	}
	if accepted == nil {
		accepted = []models.Flashcard{}
	}

	writeJSON(w, http.StatusCreated, generateResponse{
		Accepted:     accepted,
		Skipped:      skipped,
		ModelUsed:    h.gen.ModelName(),
		PromptTokens: resp.PromptTokens,
		OutputTokens: resp.OutputTokens,
	})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
