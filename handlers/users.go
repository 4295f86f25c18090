package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/pulsekit/pulse/internal/services"
	"github.com/pulsekit/pulse/internal/validator"
)

// UserRequest is the create/update input.
type UserRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (req *UserRequest) validate() *validator.Validator {
	v := &validator.Validator{}
	v.CheckField(validator.NotBlank(req.Name), "name", "must not be blank")
	v.CheckField(validator.MaxChars(req.Name, 100), "name", "must be at most 100 characters")
	v.CheckField(validator.NotBlank(req.Email), "email", "must not be blank")
	v.CheckField(validator.MaxChars(req.Email, 254), "email", "must be at most 254 characters")
	if validator.NotBlank(req.Email) {
		v.CheckField(validator.Matches(req.Email, validator.EmailRX), "email", "must be a valid email address")
	}
	return v
}

func errJSON(w http.ResponseWriter, r *http.Request, code int, message string) {
	render.Status(r, code)
	render.JSON(w, r, map[string]string{"error": message})
}

func userID(r *http.Request) (int32, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 32)
	if err != nil || id < 1 {
		return 0, false
	}
	return int32(id), true
}

// CreateUser handles POST /users.
func CreateUser(w http.ResponseWriter, r *http.Request) {
	var req UserRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		errJSON(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	if v := req.validate(); !v.Valid() {
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, map[string]any{"errors": v.FieldErrors})
		return
	}

	user, err := userStore.Create(r.Context(), req.Name, req.Email)
	if err != nil {
		if errors.Is(err, services.ErrDuplicateEmail) {
			errJSON(w, r, http.StatusConflict, "email already in use")
			return
		}
		errJSON(w, r, http.StatusInternalServerError, "failed to create user")
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, user)
}

// ListUsers handles GET /users.
func ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := userStore.List(r.Context())
	if err != nil {
		errJSON(w, r, http.StatusInternalServerError, "failed to list users")
		return
	}
	render.JSON(w, r, users)
}

// GetUser handles GET /users/{id}.
func GetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(r)
	if !ok {
		errJSON(w, r, http.StatusBadRequest, "invalid user id")
		return
	}

	user, err := userStore.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			errJSON(w, r, http.StatusNotFound, "user not found")
			return
		}
		errJSON(w, r, http.StatusInternalServerError, "failed to fetch user")
		return
	}
	render.JSON(w, r, user)
}

// UpdateUser handles PUT /users/{id}.
func UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(r)
	if !ok {
		errJSON(w, r, http.StatusBadRequest, "invalid user id")
		return
	}

	var req UserRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		errJSON(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	if v := req.validate(); !v.Valid() {
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, map[string]any{"errors": v.FieldErrors})
		return
	}

	user, err := userStore.Update(r.Context(), id, req.Name, req.Email)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUserNotFound):
			errJSON(w, r, http.StatusNotFound, "user not found")
		case errors.Is(err, services.ErrDuplicateEmail):
			errJSON(w, r, http.StatusConflict, "email already in use")
		default:
			errJSON(w, r, http.StatusInternalServerError, "failed to update user")
		}
		return
	}
	render.JSON(w, r, user)
}

// DeleteUser handles DELETE /users/{id}.
func DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(r)
	if !ok {
		errJSON(w, r, http.StatusBadRequest, "invalid user id")
		return
	}

	if err := userStore.Delete(r.Context(), id); err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			errJSON(w, r, http.StatusNotFound, "user not found")
			return
		}
		errJSON(w, r, http.StatusInternalServerError, "failed to delete user")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
