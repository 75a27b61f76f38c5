package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/snappy-loop/decks/internal/deck"
	"github.com/snappy-loop/decks/internal/models"
	"github.com/snappy-loop/decks/internal/themes"
)

// DeckGenerator is the service surface the HTTP layer depends on.
type DeckGenerator interface {
	GenerateDeck(ctx context.Context, req *models.GenerateDeckRequest) (*models.Deck, error)
	GenerateOutline(ctx context.Context, req *models.OutlineRequest) (*models.Outline, error)
	DeckFromOutline(ctx context.Context, req *models.DeckFromOutlineRequest) (*models.Deck, error)
	EnhanceSlide(req *models.EnhanceSlideRequest) (*models.Slide, error)
	ListModels() []models.ModelInfo
	ListThemes() []themes.Theme
	CreateTheme(t themes.Theme) (themes.Theme, error)
}

// Handler contains all HTTP handlers
type Handler struct {
	decks DeckGenerator
}

// NewHandler creates a new handler
func NewHandler(decks DeckGenerator) *Handler {
	return &Handler{decks: decks}
}

// CreateDeck handles POST /v1/decks
func (h *Handler) CreateDeck(w http.ResponseWriter, r *http.Request) {
	var req models.GenerateDeckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Topic) == "" {
		writeJSONError(w, http.StatusBadRequest, "topic is required")
		return
	}

	d, err := h.decks.GenerateDeck(r.Context(), &req)
	if err != nil {
		writeGenerationError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, d)
}

// CreateOutline handles POST /v1/outlines
func (h *Handler) CreateOutline(w http.ResponseWriter, r *http.Request) {
	var req models.OutlineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		writeJSONError(w, http.StatusBadRequest, "content is required")
		return
	}

	outline, err := h.decks.GenerateOutline(r.Context(), &req)
	if err != nil {
		log.Error().Err(err).Msg("Failed to generate outline")
		writeJSONError(w, http.StatusBadGateway, "outline generation failed")
		return
	}

	writeJSON(w, http.StatusOK, outline)
}

// CreateDeckFromOutline handles POST /v1/outlines/deck
func (h *Handler) CreateDeckFromOutline(w http.ResponseWriter, r *http.Request) {
	var req models.DeckFromOutlineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Outline.Sections) == 0 {
		writeJSONError(w, http.StatusBadRequest, "outline must have at least one section")
		return
	}

	d, err := h.decks.DeckFromOutline(r.Context(), &req)
	if err != nil {
		writeGenerationError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, d)
}

// EnhanceSlide handles POST /v1/slides/enhance
func (h *Handler) EnhanceSlide(w http.ResponseWriter, r *http.Request) {
	var req models.EnhanceSlideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Slide.Title) == "" && strings.TrimSpace(req.Slide.Content) == "" {
		writeJSONError(w, http.StatusBadRequest, "slide is required")
		return
	}

	slide, err := h.decks.EnhanceSlide(&req)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, slide)
}

// ListModels handles GET /v1/models
func (h *Handler) ListModels(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"models": h.decks.ListModels()})
}

// ListThemes handles GET /v1/themes
func (h *Handler) ListThemes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"themes": h.decks.ListThemes()})
}

// CreateTheme handles POST /v1/themes
func (h *Handler) CreateTheme(w http.ResponseWriter, r *http.Request) {
	var t themes.Theme
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := h.decks.CreateTheme(t)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

// Healthz handles GET /healthz
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeGenerationError maps pipeline errors to status codes. The pipeline
// self-heals almost everything; a response with no slide array is the one
// failure pushed back to the caller.
func writeGenerationError(w http.ResponseWriter, err error) {
	if errors.Is(err, deck.ErrNoSlideArray) {
		log.Warn().Err(err).Msg("Deck generation rejected")
		writeJSONError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	log.Error().Err(err).Msg("Deck generation failed")
	writeJSONError(w, http.StatusInternalServerError, "deck generation failed")
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(models.ErrorResponse{Error: message})
}
