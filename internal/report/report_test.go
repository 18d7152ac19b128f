package report_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/ledongthuc/pdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blocniti/blocniti/internal/report"
	"github.com/blocniti/blocniti/pkg/models"
)

func ptr[T any](v T) *T { return &v }

// extract returns the plain text of every page in the rendered document.
func extract(t *testing.T, b []byte) (string, int) {
	t.Helper()
	r, err := pdf.NewReader(bytes.NewReader(b), int64(len(b)))
	require.NoError(t, err)

	var sb strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		require.NoError(t, err)
		sb.WriteString(text)
		sb.WriteString("\n")
	}
	return sb.String(), r.NumPage()
}

func TestRender_NoIssues(t *testing.T) {
	var buf bytes.Buffer
	err := report.Render(&buf, nil, time.Now())
	require.ErrorIs(t, err, report.ErrNoIssues)
	assert.Zero(t, buf.Len())
}

func TestRender_Content(t *testing.T) {
	issues := []models.RepairIssue{
		{
			ID:                  1,
			RoomNumber:          ptr(2),
			RoomName:            "Kitchen",
			Area:                "Sink",
			Status:              models.StatusUrgent,
			IssueDescription:    "Leak under sink",
			ProposedRemediation: ptr("Replace trap"),
			FirstRequestDate:    ptr("2024-03-01"),
			HPDViolationClass:   ptr("Class B"),
			CorrectionDeadline:  ptr("30 days"),
			AIAnalysis:          ptr("Hazardous leak"),
		},
		{
			ID:               2,
			RoomName:         "Hallway",
			Area:             "Ceiling",
			Status:           models.StatusNonUrgent,
			IssueDescription: "Peeling paint",
		},
	}

	var buf bytes.Buffer
	at := time.Date(2024, time.March, 5, 12, 0, 0, 0, time.UTC)
	require.NoError(t, report.Render(&buf, issues, at))
	require.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))

	text, pages := extract(t, buf.Bytes())
	assert.GreaterOrEqual(t, pages, 1)

	for _, want := range []string{
		"BlocNiti AI - Tenant Repair Report",
		"Generated on: March 5, 2024",
		"Repair Issues Summary",
		"Total Issues: 2",
		"Urgent: 1",
		"Priority: 0",
		"Non-Urgent: 1",
		"1. Room 2 - Kitchen (Sink)",
		"STATUS: URGENT",
		"First Request Date: 2024-03-01",
		"Issue Description:",
		"Leak under sink",
		"Proposed Remediation:",
		"Replace trap",
		"AI Analysis (Alma):",
		"HPD Violation Class: Class B",
		"Correction Deadline: 30 days",
		"Hazardous leak",
		"2. Hallway (Ceiling)",
		"STATUS: NON-URGENT",
		"Peeling paint",
		"Emergency: 911 | City Services: 311",
	} {
		assert.Contains(t, text, want)
	}
	// unclassified issues carry no analysis block
	assert.Equal(t, 1, strings.Count(text, "AI Analysis (Alma):"))
}

func TestRender_ManyIssuesPaginate(t *testing.T) {
	var issues []models.RepairIssue
	for i := 0; i < 20; i++ {
		issues = append(issues, models.RepairIssue{
			ID:               int64(i + 1),
			RoomNumber:       ptr(i + 1),
			RoomName:         "Bedroom",
			Area:             "Window",
			Status:           models.StatusPriority,
			IssueDescription: strings.Repeat("Draft from the window frame. ", 8),
		})
	}

	var buf bytes.Buffer
	require.NoError(t, report.Render(&buf, issues, time.Now()))

	text, pages := extract(t, buf.Bytes())
	assert.Greater(t, pages, 1)
	assert.Contains(t, text, "Total Issues: 20")
	assert.Contains(t, text, "20. Room 20 - Bedroom (Window)")
	assert.Contains(t, text, "For legal advice, contact a qualified attorney")
}

func TestFilename(t *testing.T) {
	at := time.Date(2025, time.January, 9, 23, 30, 0, 0, time.UTC)
	assert.Equal(t, "BlocNiti_Repair_Report_2025-01-09.pdf", report.Filename(at))
}
