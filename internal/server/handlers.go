package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/songbook/internal/catalog"
	"github.com/desertthunder/songbook/internal/models"
	"github.com/desertthunder/songbook/internal/music"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// SongListResponse is the body of GET /songs.
type SongListResponse struct {
	Count  int                `json:"count"`
	Filter catalog.FilterSpec `json:"filter"`
	Sort   catalog.SortSpec   `json:"sort"`
	Songs  []models.Song      `json:"songs"`
}

// CatalogHandler serves song queries and statistics from a [catalog.Catalog].
type CatalogHandler struct {
	catalog *catalog.Catalog
	logger  *log.Logger
}

// NewCatalogHandler creates a handler over cat.
func NewCatalogHandler(cat *catalog.Catalog, logger *log.Logger) *CatalogHandler {
	return &CatalogHandler{catalog: cat, logger: logger}
}

func (h *CatalogHandler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "songs": h.catalog.Len()})
}

// listSongs handles GET /songs?language=&capo=&range=&songbook=&q=&sort=&order=
func (h *CatalogHandler) listSongs(w http.ResponseWriter, r *http.Request) {
	filter, order, err := ParseQuery(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	songs, err := h.catalog.Query(filter, order)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, SongListResponse{Count: len(songs), Filter: filter, Sort: order, Songs: songs})
}

// getSong handles GET /songs/{id}. An optional transpose=n returns the song n semitones away.
func (h *CatalogHandler) getSong(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	song, ok := h.catalog.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "song not found: "+id)
		return
	}

	if raw := r.URL.Query().Get("transpose"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid transpose: "+raw)
			return
		}
		song = song.Transposed(n)
	}

	writeJSON(w, http.StatusOK, song)
}

func (h *CatalogHandler) stats(w http.ResponseWriter, r *http.Request) {
	agg := h.catalog.Aggregate()
	writeJSON(w, http.StatusOK, struct {
		catalog.Aggregate
		Languages []string `json:"languages"`
	}{agg, agg.Languages()})
}

// ParseQuery reads filter and sort parameters. Absent parameters select every song in title order.
func ParseQuery(q url.Values) (catalog.FilterSpec, catalog.SortSpec, error) {
	capo := false
	if raw := q.Get("capo"); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return catalog.FilterSpec{}, catalog.SortSpec{}, errors.New("invalid capo: " + raw)
		}
		capo = b
	}

	filter, err := catalog.ParseFilterSpec(q.Get("language"), q.Get("range"), q.Get("songbook"), q.Get("q"), capo)
	if err != nil {
		return catalog.FilterSpec{}, catalog.SortSpec{}, err
	}

	order := catalog.DefaultSort()
	if field := q.Get("sort"); field != "" || q.Get("order") != "" {
		if field == "" {
			field = order.Field.String()
		}
		order, err = catalog.ParseSortSpec(field, q.Get("order"))
		if err != nil {
			return catalog.FilterSpec{}, catalog.SortSpec{}, err
		}
	}

	return filter, order, nil
}

// KeyHandler serves key arithmetic under /keys/.
type KeyHandler struct{}

func NewKeyHandler() *KeyHandler { return &KeyHandler{} }

func (h *KeyHandler) Routes() []string {
	return []string{"GET /keys", "GET /keys/transpose", "GET /keys/distance"}
}

// KeyResult is the body of the key arithmetic endpoints.
type KeyResult struct {
	From      music.Key `json:"from"`
	To        music.Key `json:"to"`
	Semitones int       `json:"semitones"`
}

func (h *KeyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	switch strings.TrimSuffix(r.URL.Path, "/") {
	case "/keys":
		writeJSON(w, http.StatusOK, music.Keys())
	case "/keys/transpose":
		from, err := music.ParseKey(q.Get("key"))
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		n, err := strconv.Atoi(q.Get("n"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid n: "+q.Get("n"))
			return
		}
		writeJSON(w, http.StatusOK, KeyResult{From: from, To: music.Transpose(from, n), Semitones: n})
	case "/keys/distance":
		from, err := music.ParseKey(q.Get("from"))
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		to, err := music.ParseKey(q.Get("to"))
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, KeyResult{From: from, To: to, Semitones: music.Distance(from, to)})
	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}
