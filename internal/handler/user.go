package handler

import (
	"log/slog"
	"net/http"

	"github.com/ItsHarfer/CineShelf/internal/model"
	"github.com/ItsHarfer/CineShelf/internal/service"
)

// UserHandler serves /api/users.
type UserHandler struct {
	svc    *service.CollectionService
	logger *slog.Logger
}

func NewUserHandler(svc *service.CollectionService, logger *slog.Logger) *UserHandler {
	return &UserHandler{svc: svc, logger: logger}
}

type createUserRequest struct {
	Name string `json:"name"`
}

// UserDetail is a user together with its collection.
type UserDetail struct {
	model.User
	Movies []model.Movie `json:"movies"`
}

// HandleList returns all users ordered by name.
//
// HTTP: GET /api/users
func (h *UserHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.ListUsers(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// HandleCreate adds a user.
//
// HTTP: POST /api/users
// REQUEST BODY: {"name": "Herbert"}
func (h *UserHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.logger.Warn("invalid user JSON", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}

	user, err := h.svc.CreateUser(r.Context(), req.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

// HandleGet returns one user and its movies.
//
// HTTP: GET /api/users/{userID}
func (h *UserHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "userID")
	if err != nil {
		writeError(w, err)
		return
	}

	user, err := h.svc.GetUser(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	movies, err := h.svc.ListMovies(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, UserDetail{User: *user, Movies: movies})
}

// HandleDelete removes a user and every movie it owns.
//
// HTTP: DELETE /api/users/{userID}
func (h *UserHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "userID")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.svc.DeleteUser(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
