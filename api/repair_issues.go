package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/blocniti/blocniti/internal/cache"
	"github.com/blocniti/blocniti/internal/classify"
	"github.com/blocniti/blocniti/internal/logging"
	"github.com/blocniti/blocniti/internal/report"
	"github.com/blocniti/blocniti/internal/schema"
	"github.com/blocniti/blocniti/pkg/models"
	"github.com/blocniti/blocniti/pkg/repository"
)

const repairIssuesPath = "/api/repair-issues"

type RepairIssueHandler struct {
	repo       repository.RepairIssueRepo
	classifier *classify.Classifier
	schemas    *schema.Loader
	cache      *cache.ReadThrough
	now        func() time.Time
}

func NewRepairIssueHandler(repo repository.RepairIssueRepo, classifier *classify.Classifier, schemas *schema.Loader, rt *cache.ReadThrough) *RepairIssueHandler {
	return &RepairIssueHandler{repo: repo, classifier: classifier, schemas: schemas, cache: rt, now: time.Now}
}

func (h *RepairIssueHandler) list(ctx context.Context, userID string) ([]models.RepairIssue, error) {
	issues, err := cache.Fetch(ctx, h.cache, cache.Key(userID, repairIssuesPath), func(ctx context.Context) ([]models.RepairIssue, error) {
		return h.repo.ListRepairIssuesForUser(ctx, userID)
	})
	if err != nil {
		return nil, err
	}
	if issues == nil {
		issues = []models.RepairIssue{}
	}
	return issues, nil
}

func (h *RepairIssueHandler) ListRepairIssues(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(w, r)
	if !ok {
		return
	}
	issues, err := h.list(r.Context(), id)
	if err != nil {
		writeInternal(w, r, "Failed to fetch repair issues", err)
		return
	}
	writeJSON(w, issues, http.StatusOK)
}

// CreateRepairIssue stores the issue, classifies its description once and
// returns the stored record. Classification problems never fail the request.
func (h *RepairIssueHandler) CreateRepairIssue(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	body, ok := readValid(w, r, h.schemas, schema.RepairIssue)
	if !ok {
		return
	}

	var in models.NewRepairIssue
	if err := json.Unmarshal(body, &in); err != nil {
		writeValidation(w, []schema.FieldError{{Field: "body", Message: err.Error()}})
		return
	}
	in.RoomName = strings.TrimSpace(in.RoomName)
	in.Area = strings.TrimSpace(in.Area)
	in.IssueDescription = strings.TrimSpace(in.IssueDescription)
	if tooShort(in.IssueDescription) {
		writeValidation(w, []schema.FieldError{{Field: "issueDescription", Message: "must be at least 10 characters"}})
		return
	}
	in.ProposedRemediation = blankToNil(in.ProposedRemediation)
	in.FirstRequestDate = blankToNil(in.FirstRequestDate)
	in.IssueBegan = blankToNil(in.IssueBegan)

	ctx := r.Context()
	log := logging.FromContext(ctx, logger)

	issue, err := h.repo.CreateRepairIssue(ctx, uid, &in)
	if err != nil {
		writeInternal(w, r, "Failed to create repair issue", err)
		return
	}
	_ = h.cache.Invalidate(ctx, cache.Key(uid, repairIssuesPath))

	// the classification is stored even if the client goes away mid-call
	detached := context.WithoutCancel(ctx)
	result := h.classifier.Classify(detached, issue.IssueDescription)
	if err := h.repo.ApplyClassification(detached, issue.ID, result); err != nil {
		log.Error("apply classification", slog.Int64("issue_id", issue.ID), slog.Any("err", err))
		writeJSON(w, issue, http.StatusOK)
		return
	}

	updated, err := h.repo.GetRepairIssue(ctx, issue.ID)
	if err != nil || updated == nil {
		log.Warn("re-read classified issue", slog.Int64("issue_id", issue.ID), slog.Any("err", err))
		writeJSON(w, issue, http.StatusOK)
		return
	}
	_ = h.cache.Invalidate(ctx, cache.Key(uid, repairIssuesPath))
	writeJSON(w, updated, http.StatusOK)
}

func (h *RepairIssueHandler) GetRepairIssue(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	id, ok := issueID(w, r)
	if !ok {
		return
	}
	issue, err := h.repo.GetRepairIssue(r.Context(), id)
	if err != nil {
		writeInternal(w, r, "Failed to fetch repair issue", err)
		return
	}
	if issue == nil || issue.UserID != uid {
		writeError(w, http.StatusNotFound, "Repair issue not found")
		return
	}
	writeJSON(w, issue, http.StatusOK)
}

func (h *RepairIssueHandler) DeleteRepairIssue(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	id, ok := issueID(w, r)
	if !ok {
		return
	}
	err := h.repo.DeleteRepairIssue(r.Context(), id, uid)
	if errors.Is(err, repository.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Repair issue not found")
		return
	}
	if err != nil {
		writeInternal(w, r, "Failed to delete repair issue", err)
		return
	}
	_ = h.cache.Invalidate(r.Context(), cache.Key(uid, repairIssuesPath))
	writeError(w, http.StatusOK, "Repair issue deleted successfully")
}

// Report renders the caller's repair issues as a PDF download.
func (h *RepairIssueHandler) Report(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	issues, err := h.list(r.Context(), uid)
	if err != nil {
		writeInternal(w, r, "Failed to fetch repair issues", err)
		return
	}

	now := h.now()
	var buf bytes.Buffer
	if err := report.Render(&buf, issues, now); err != nil {
		if errors.Is(err, report.ErrNoIssues) {
			writeError(w, http.StatusNotFound, "No repair issues to report")
			return
		}
		writeInternal(w, r, "Failed to generate report", err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+report.Filename(now)+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		logging.FromContext(r.Context(), logger).Warn("write report", slog.Any("err", err))
	}
}

func issueID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		writeValidation(w, []schema.FieldError{{Field: "id", Message: "must be a positive integer"}})
		return 0, false
	}
	return id, true
}

func blankToNil(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}
