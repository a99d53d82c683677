package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/ItsHarfer/CineShelf/internal/apperror"
	"github.com/ItsHarfer/CineShelf/internal/model"
	"github.com/ItsHarfer/CineShelf/internal/omdb"
	"github.com/ItsHarfer/CineShelf/internal/service"
)

// Resolver looks a title up in the external movie database.
// *omdb.Client satisfies it.
type Resolver interface {
	Resolve(ctx context.Context, title string) (omdb.Result, error)
}

// MovieHandler serves /api/users/{userID}/movies.
//
// Every route first confirms the user exists, and every movie route confirms
// the movie belongs to that user before touching it.
type MovieHandler struct {
	svc      *service.CollectionService
	resolver Resolver // nil when no OMDb key is configured
	logger   *slog.Logger
}

func NewMovieHandler(svc *service.CollectionService, resolver Resolver, logger *slog.Logger) *MovieHandler {
	return &MovieHandler{svc: svc, resolver: resolver, logger: logger}
}

// addMovieRequest mirrors the search result a client picked. With Resolve set
// only Title is read and the other fields come from a fresh lookup.
type addMovieRequest struct {
	Title    string    `json:"title"`
	Director string    `json:"director"`
	Year     yearInput `json:"year"`
	Poster   string    `json:"poster"`
	Resolve  bool      `json:"resolve"`
}

type updateMovieRequest struct {
	Name     *string   `json:"name"`
	Director *string   `json:"director"`
	Year     yearInput `json:"year"`
}

// SearchResponse is the outcome of a title search.
type SearchResponse struct {
	Found        bool         `json:"found"`
	Record       *omdb.Record `json:"record,omitempty"`
	Reason       string       `json:"reason,omitempty"`
	AlreadyAdded bool         `json:"alreadyAdded"`
}

// owner resolves and checks the {userID} parameter. It writes the error
// response itself and returns false when the request cannot go on.
func (h *MovieHandler) owner(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := idParam(r, "userID")
	if err != nil {
		writeError(w, err)
		return 0, false
	}
	if _, err := h.svc.GetUser(r.Context(), id); err != nil {
		writeError(w, err)
		return 0, false
	}
	return id, true
}

// HandleList returns the user's movies.
//
// HTTP: GET /api/users/{userID}/movies
func (h *MovieHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.owner(w, r)
	if !ok {
		return
	}

	movies, err := h.svc.ListMovies(r.Context(), ownerID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, movies)
}

// HandleSearch looks a title up without saving anything and reports whether
// the user already has it.
//
// HTTP: GET /api/users/{userID}/movies/search?title=Inception
func (h *MovieHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.owner(w, r)
	if !ok {
		return
	}
	if h.resolver == nil {
		h.lookupDisabled(w)
		return
	}

	title := strings.TrimSpace(r.URL.Query().Get("title"))
	result, err := h.resolver.Resolve(r.Context(), title)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := SearchResponse{Found: result.Found(), Reason: result.Reason}
	if result.Found() {
		record := result.Record
		resp.Record = &record
		if record.Title != "" {
			resp.AlreadyAdded, err = h.svc.HasMovie(r.Context(), ownerID, record.Title)
			if err != nil {
				writeError(w, err)
				return
			}
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleAdd stores a movie in the user's collection.
//
// HTTP: POST /api/users/{userID}/movies
// REQUEST BODY: {"title": "Inception", "director": "Christopher Nolan", "year": "2010", "poster": ""}
//
//	or {"title": "Inception", "resolve": true}
//
// The lookup, when requested, completes before any database write starts.
func (h *MovieHandler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.owner(w, r)
	if !ok {
		return
	}

	var req addMovieRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	var movie *model.Movie
	if req.Resolve {
		if h.resolver == nil {
			h.lookupDisabled(w)
			return
		}
		result, err := h.resolver.Resolve(r.Context(), req.Title)
		if err != nil {
			writeError(w, err)
			return
		}
		if !result.Found() {
			writeError(w, apperror.NotFound("title", req.Title))
			return
		}
		movie = result.Record.ToMovie(ownerID)
	} else {
		movie = omdb.Record{
			Title:    omdb.Clean(req.Title),
			Year:     string(req.Year),
			Poster:   req.Poster,
			Director: omdb.Clean(req.Director),
		}.ToMovie(ownerID)
	}

	added, err := h.svc.AddMovie(r.Context(), movie)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, added)
}

// HandleUpdate edits name, director or year of one of the user's movies.
// A year that does not parse is ignored.
//
// HTTP: PATCH /api/users/{userID}/movies/{movieID}
// REQUEST BODY: {"name": "Inception", "director": "C. Nolan", "year": "2010"}
func (h *MovieHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.owner(w, r)
	if !ok {
		return
	}
	movieID, err := idParam(r, "movieID")
	if err != nil {
		writeError(w, err)
		return
	}

	var req updateMovieRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	updated, err := h.svc.UpdateMovieFields(r.Context(), ownerID, movieID, service.MovieEdit{
		Name:     req.Name,
		Director: req.Director,
		Year:     string(req.Year),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// HandleDelete removes one of the user's movies.
//
// HTTP: DELETE /api/users/{userID}/movies/{movieID}
func (h *MovieHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.owner(w, r)
	if !ok {
		return
	}
	movieID, err := idParam(r, "movieID")
	if err != nil {
		writeError(w, err)
		return
	}

	if _, err := h.svc.RemoveMovie(r.Context(), ownerID, movieID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *MovieHandler) lookupDisabled(w http.ResponseWriter) {
	writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{
		Error:   "lookup_disabled",
		Message: "Movie lookup is not configured",
	})
}
