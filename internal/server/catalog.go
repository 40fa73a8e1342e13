package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/choirbook/internal/catalog"
	"github.com/desertthunder/choirbook/internal/models"
	"github.com/desertthunder/choirbook/internal/shared"
)

// Catalog is the read side the HTTP handlers serve. [catalog.Service] implements it.
type Catalog interface {
	ListEntries(ctx context.Context, search, selector string, role models.Role) (catalog.Result, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
	Entry(ctx context.Context, id string, role models.Role) (models.Entry, error)
	Invalidate()
}

// CatalogHandler serves the catalog JSON API.
type CatalogHandler struct {
	catalog Catalog
	logger  *log.Logger
	mux     *http.ServeMux
}

// NewCatalogHandler creates a CatalogHandler over c.
func NewCatalogHandler(c Catalog, logger *log.Logger) *CatalogHandler {
	h := &CatalogHandler{catalog: c, logger: logger, mux: http.NewServeMux()}
	h.mux.HandleFunc("GET /api/categories", h.categories)
	h.mux.HandleFunc("GET /api/entries", h.entries)
	h.mux.HandleFunc("GET /api/entries/{id}", h.entry)
	h.mux.HandleFunc("POST /api/cache/invalidate", h.invalidate)
	return h
}

// NewCatalogRouter builds the full middleware stack around a [CatalogHandler].
func NewCatalogRouter(c Catalog, cfg shared.ServerConfig, logger *log.Logger) *BasicRouter {
	router := NewBasicRouter()
	router.Use(RequestLogger(logger), RateLimit(cfg.RateLimit, cfg.Burst), RequesterRole())
	router.Handler(NewCatalogHandler(c, logger))
	router.Handle(http.MethodGet, "/healthz", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}))
	return router
}

// Routes returns the HTTP routes this handler serves.
func (h *CatalogHandler) Routes() []string {
	return []string{
		"GET /api/categories",
		"GET /api/entries",
		"GET /api/entries/{id}",
		"POST /api/cache/invalidate",
	}
}

func (h *CatalogHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *CatalogHandler) categories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalog.ListCategories(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": categories})
}

func (h *CatalogHandler) entries(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	role := RoleFromContext(r.Context())

	result, err := h.catalog.ListEntries(r.Context(), query.Get("q"), query.Get("category"), role)
	if err != nil {
		h.fail(w, err)
		return
	}

	views := make([]EntryView, 0, len(result.Entries))
	for _, e := range result.Entries {
		views = append(views, NewEntryView(e))
	}

	writeJSON(w, http.StatusOK, entriesBody{
		Entries:       views,
		Truncated:     result.Truncated,
		AwaitingQuery: result.AwaitingQuery,
	})
}

func (h *CatalogHandler) entry(w http.ResponseWriter, r *http.Request) {
	entry, err := h.catalog.Entry(r.Context(), r.PathValue("id"), RoleFromContext(r.Context()))
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, NewEntryView(entry))
}

func (h *CatalogHandler) invalidate(w http.ResponseWriter, r *http.Request) {
	role := RoleFromContext(r.Context())
	if !role.CanCurate() {
		writeError(w, http.StatusForbidden, shared.ErrForbidden)
		return
	}

	h.catalog.Invalidate()
	h.logger.Info("catalog cache invalidated over http", "role", role)
	w.WriteHeader(http.StatusNoContent)
}

// fail maps catalog errors to status codes.
func (h *CatalogHandler) fail(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, shared.ErrFetchFailed):
		status = http.StatusBadGateway
	case errors.Is(err, shared.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, shared.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, shared.ErrInvalidInput):
		status = http.StatusBadRequest
	}

	if status >= http.StatusInternalServerError {
		h.logger.Error("catalog request failed", "error", err)
	}
	writeError(w, status, err)
}

type errorBody struct {
	Error string `json:"error"`
}

type entriesBody struct {
	Entries       []EntryView `json:"entries"`
	Truncated     bool        `json:"truncated"`
	AwaitingQuery bool        `json:"awaiting_query"`
}

// EntryView is the JSON form of an entry.
//
// Songs carry Verses and Versions. Hymns carry Verses (English) and the English and Localized
// sequences, which are null when the stored text is absent.
type EntryView struct {
	ID            string   `json:"id"`
	Kind          string   `json:"kind"`
	Title         string   `json:"title"`
	Author        string   `json:"author,omitempty"`
	Composer      string   `json:"composer,omitempty"`
	Category      string   `json:"category"`
	Number        *int     `json:"number,omitempty"`
	YearWritten   *int     `json:"year_written,omitempty"`
	Tags          []string `json:"tags"`
	Verses        []string `json:"verses"`
	VerseCount    int      `json:"verse_count"`
	Versions      []string `json:"versions,omitempty"`
	English       []string `json:"english_verses"`
	Localized     []string `json:"localized_verses"`
	SheetMusicURL string   `json:"sheet_music_url,omitempty"`
	AudioURL      string   `json:"audio_url,omitempty"`
	VideoURL      string   `json:"video_url,omitempty"`
	KeySignature  string   `json:"key_signature,omitempty"`
	TimeSignature string   `json:"time_signature,omitempty"`
	Tempo         string   `json:"tempo,omitempty"`
}

// NewEntryView converts e for JSON output.
func NewEntryView(e models.Entry) EntryView {
	view := EntryView{
		ID:            e.ID,
		Kind:          e.Kind.String(),
		Title:         e.Title,
		Author:        e.Author,
		Composer:      e.Composer,
		Category:      e.Category,
		Number:        e.NumberLabel,
		YearWritten:   e.YearWritten,
		Tags:          e.Tags,
		Verses:        e.Verses(),
		VerseCount:    e.VerseCount(),
		SheetMusicURL: e.SheetMusicURL,
		AudioURL:      e.AudioURL,
		VideoURL:      e.VideoURL,
		KeySignature:  e.KeySignature,
		TimeSignature: e.TimeSignature,
		Tempo:         e.Tempo,
	}

	switch l := e.Lyrics.(type) {
	case models.SongLyrics:
		view.Versions = l.Versions
	case models.HymnLyrics:
		if l.English.Valid {
			view.English = l.English.Lines
		}
		if l.Localized.Valid {
			view.Localized = l.Localized.Lines
		}
	}

	if view.Tags == nil {
		view.Tags = []string{}
	}
	if view.Verses == nil {
		view.Verses = []string{}
	}
	return view
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorBody{Error: err.Error()})
}
