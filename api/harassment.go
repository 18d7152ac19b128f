package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/blocniti/blocniti/internal/cache"
	"github.com/blocniti/blocniti/internal/schema"
	"github.com/blocniti/blocniti/pkg/models"
	"github.com/blocniti/blocniti/pkg/repository"
)

const harassmentReportsPath = "/api/harassment-reports"

type HarassmentHandler struct {
	repo    repository.HarassmentReportRepo
	schemas *schema.Loader
	cache   *cache.ReadThrough
}

func NewHarassmentHandler(repo repository.HarassmentReportRepo, schemas *schema.Loader, rt *cache.ReadThrough) *HarassmentHandler {
	return &HarassmentHandler{repo: repo, schemas: schemas, cache: rt}
}

func (h *HarassmentHandler) ListHarassmentReports(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	reports, err := cache.Fetch(r.Context(), h.cache, cache.Key(uid, harassmentReportsPath), func(ctx context.Context) ([]models.HarassmentReport, error) {
		return h.repo.ListHarassmentReportsForUser(ctx, uid)
	})
	if err != nil {
		writeInternal(w, r, "Failed to fetch harassment reports", err)
		return
	}
	if reports == nil {
		reports = []models.HarassmentReport{}
	}
	writeJSON(w, reports, http.StatusOK)
}

func (h *HarassmentHandler) CreateHarassmentReport(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	body, ok := readValid(w, r, h.schemas, schema.HarassmentReport)
	if !ok {
		return
	}

	var in models.NewHarassmentReport
	if err := json.Unmarshal(body, &in); err != nil {
		writeValidation(w, []schema.FieldError{{Field: "body", Message: err.Error()}})
		return
	}
	types, unknown := models.NormalizeHarassmentTypes(in.HarassmentTypes)
	if len(unknown) > 0 || len(types) == 0 {
		writeValidation(w, []schema.FieldError{{Field: "harassmentTypes", Message: "unknown harassment type: " + strings.Join(unknown, ", ")}})
		return
	}
	in.HarassmentTypes = types
	in.AdditionalDetails = strings.TrimSpace(in.AdditionalDetails)
	if tooShort(in.AdditionalDetails) {
		writeValidation(w, []schema.FieldError{{Field: "additionalDetails", Message: "must be at least 10 characters"}})
		return
	}

	rep, err := h.repo.CreateHarassmentReport(r.Context(), uid, &in)
	if err != nil {
		writeInternal(w, r, "Failed to create harassment report", err)
		return
	}
	_ = h.cache.Invalidate(r.Context(), cache.Key(uid, harassmentReportsPath))
	writeJSON(w, rep, http.StatusOK)
}
