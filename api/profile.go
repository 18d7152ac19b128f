package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/blocniti/blocniti/internal/schema"
	"github.com/blocniti/blocniti/pkg/models"
	"github.com/blocniti/blocniti/pkg/repository"
)

type ProfileHandler struct {
	userRepo repository.UserRepo
	schemas  *schema.Loader
}

func NewProfileHandler(ur repository.UserRepo, schemas *schema.Loader) *ProfileHandler {
	return &ProfileHandler{userRepo: ur, schemas: schemas}
}

// UpdateProfile applies a partial update of the caller's tenancy details.
func (h *ProfileHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(w, r)
	if !ok {
		return
	}
	body, ok := readValid(w, r, h.schemas, schema.ProfileUpdate)
	if !ok {
		return
	}

	var p models.ProfileUpdate
	if err := json.Unmarshal(body, &p); err != nil {
		writeValidation(w, []schema.FieldError{{Field: "body", Message: err.Error()}})
		return
	}
	// an empty date clears nothing and is not a date
	if p.DateOfBirth != nil && strings.TrimSpace(*p.DateOfBirth) == "" {
		p.DateOfBirth = nil
	}

	user, err := h.userRepo.UpdateUserProfile(r.Context(), id, &p)
	if errors.Is(err, repository.ErrNotFound) {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		writeInternal(w, r, "Failed to update profile", err)
		return
	}
	writeJSON(w, user, http.StatusOK)
}
