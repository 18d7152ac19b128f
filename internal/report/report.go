// Package report renders a tenant's repair issues as a printable PDF.
package report

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/blocniti/blocniti/pkg/models"
)

// ErrNoIssues is returned when there is nothing to render.
var ErrNoIssues = errors.New("no repair issues to generate PDF")

const (
	title  = "BlocNiti AI - Tenant Repair Report"
	margin = 20.0
	// an issue header is not started this close to the bottom of the page
	issueBreak = 80.0
	footerZone = 40.0
)

var footer = []string{
	"This report was generated by BlocNiti AI to document housing repair issues.",
	"For legal advice, contact a qualified attorney or legal aid organization.",
	"Emergency: 911 | City Services: 311 | Legal Aid: (212) 577-3300",
}

type rgb struct{ r, g, b int }

var (
	black = rgb{0, 0, 0}
	grey  = rgb{100, 100, 100}
	rule  = rgb{200, 200, 200}
)

func statusColor(s models.RepairStatus) rgb {
	switch s {
	case models.StatusUrgent:
		return rgb{220, 38, 38}
	case models.StatusPriority:
		return rgb{217, 119, 6}
	case models.StatusNonUrgent:
		return rgb{107, 114, 128}
	default:
		return black
	}
}

// Filename is the download name for a report generated at t.
func Filename(t time.Time) string {
	return "BlocNiti_Repair_Report_" + t.UTC().Format("2006-01-02") + ".pdf"
}

type writer struct {
	pdf    *fpdf.Fpdf
	tr     func(string) string
	width  float64
	height float64
}

func (w *writer) font(style string, size float64) {
	w.pdf.SetFont("Helvetica", style, size)
}

func (w *writer) color(c rgb) {
	w.pdf.SetTextColor(c.r, c.g, c.b)
}

// line writes a single line at the given indent and advances by h.
func (w *writer) line(indent, h float64, text string) {
	w.pdf.SetX(margin + indent)
	w.pdf.CellFormat(w.width-2*margin-indent, h, w.tr(text), "", 1, "L", false, 0, "")
}

// block writes wrapped text at the given indent.
func (w *writer) block(indent, h float64, text string) {
	w.pdf.SetX(margin + indent)
	w.pdf.MultiCell(w.width-2*margin-indent, h, w.tr(text), "", "L", false)
}

func (w *writer) gap(h float64) {
	w.pdf.Ln(h)
}

// Render writes a PDF summarizing issues to out. The issues are rendered in
// the order given.
func Render(out io.Writer, issues []models.RepairIssue, generatedAt time.Time) error {
	if len(issues) == 0 {
		return ErrNoIssues
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(true, margin)
	pdf.SetTitle(title, true)
	pdf.SetCreator("BlocNiti", true)
	pdf.AddPage()

	width, height := pdf.GetPageSize()
	w := &writer{
		pdf:    pdf,
		tr:     pdf.UnicodeTranslatorFromDescriptor(""),
		width:  width,
		height: height,
	}

	w.font("B", 20)
	w.line(0, 10, title)
	w.gap(2)

	w.font("", 12)
	w.line(0, 6, "Generated on: "+generatedAt.Format("January 2, 2006"))
	w.gap(8)

	w.font("B", 14)
	w.line(0, 8, "Repair Issues Summary")
	w.gap(2)

	counts := make(map[models.RepairStatus]int, len(models.RepairStatuses))
	for _, is := range issues {
		counts[is.Status]++
	}

	w.font("", 11)
	w.line(0, 5, "Total Issues: "+strconv.Itoa(len(issues)))
	for _, s := range []struct {
		status models.RepairStatus
		label  string
	}{
		{models.StatusUrgent, "Urgent"},
		{models.StatusPriority, "Priority"},
		{models.StatusNonUrgent, "Non-Urgent"},
	} {
		w.color(statusColor(s.status))
		w.line(0, 5, fmt.Sprintf("%s: %d", s.label, counts[s.status]))
	}
	w.color(black)
	w.gap(10)

	for i, is := range issues {
		if pdf.GetY() > height-issueBreak {
			pdf.AddPage()
		}
		w.issue(i+1, is)
	}

	if pdf.GetY() < height-footerZone {
		pdf.SetY(height - footerZone)
	} else {
		pdf.AddPage()
	}
	w.font("I", 9)
	w.color(grey)
	for _, l := range footer {
		w.line(0, 4, l)
	}

	if err := pdf.Output(out); err != nil {
		return fmt.Errorf("render repair report: %w", err)
	}
	return nil
}

func (w *writer) issue(n int, is models.RepairIssue) {
	w.font("B", 14)
	w.color(black)
	w.line(0, 7, fmt.Sprintf("%d. %s", n, heading(is)))

	w.color(statusColor(is.Status))
	w.font("B", 10)
	w.line(0, 6, "STATUS: "+strings.ToUpper(string(is.Status)))
	w.gap(2)

	w.color(black)
	w.font("", 10)

	if s := deref(is.FirstRequestDate); s != "" {
		w.line(0, 5, "First Request Date: "+s)
	}
	if s := deref(is.IssueBegan); s != "" {
		w.line(0, 5, "Issue Began: "+s)
	}

	w.line(0, 5, "Issue Description:")
	w.block(5, 4, is.IssueDescription)
	w.gap(3)

	if s := deref(is.ProposedRemediation); s != "" {
		w.line(0, 5, "Proposed Remediation:")
		w.block(5, 4, s)
		w.gap(3)
	}

	class, analysis := deref(is.HPDViolationClass), deref(is.AIAnalysis)
	if class != "" || analysis != "" {
		w.line(0, 5, "AI Analysis (Alma):")
		if class != "" {
			w.line(5, 4, "HPD Violation Class: "+class)
		}
		if s := deref(is.CorrectionDeadline); s != "" {
			w.line(5, 4, "Correction Deadline: "+s)
		}
		if analysis != "" {
			w.block(5, 4, analysis)
		}
		w.gap(5)
	}

	y := w.pdf.GetY()
	w.pdf.SetDrawColor(rule.r, rule.g, rule.b)
	w.pdf.Line(margin, y, w.width-margin, y)
	w.gap(10)
}

func heading(is models.RepairIssue) string {
	place := is.RoomName + " (" + is.Area + ")"
	if is.RoomNumber == nil {
		return place
	}
	return "Room " + strconv.Itoa(*is.RoomNumber) + " - " + place
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}
