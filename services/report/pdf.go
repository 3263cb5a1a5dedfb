// Package reportsvc renders printable promotion reports.
package reportsvc

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/promotion"
)

var nowFunc = time.Now // mockable

type pdfGenerator struct {
	schoolName string
}

var _ promotion.ReportGenerator = (*pdfGenerator)(nil)

// NewPDFGenerator returns a generator of A4 promotion reports headed with schoolName.
func NewPDFGenerator(schoolName string) promotion.ReportGenerator {
	return &pdfGenerator{schoolName: schoolName}
}

func (g *pdfGenerator) WritePromotionReport(w io.Writer, ev promotion.Evaluation) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("") // cp1252
	pdf.AddPage()

	// Header
	pdf.SetFont("Arial", "B", 18)
	pdf.Cell(0, 8, tr(strings.ToUpper(g.schoolName)))
	pdf.Ln(9)
	pdf.SetDrawColor(40, 145, 108)
	pdf.SetLineWidth(0.5)
	pdf.Line(10, pdf.GetY(), 200, pdf.GetY())
	pdf.Ln(6)

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, tr(fmt.Sprintf("PROMOTION REPORT %s", ev.AcademicYear)))
	pdf.Ln(14)

	// Student
	section(pdf, "STUDENT INFORMATION")
	field(pdf, "Name:", tr(ev.StudentName))
	field(pdf, "Department:", string(ev.Department))
	field(pdf, "Grade:", fmt.Sprintf("%d", ev.CurrentGrade))
	pdf.Ln(5)

	// Grades
	section(pdf, "ACADEMIC RECORD")
	pdf.SetFont("Arial", "B", 9)
	pdf.SetFillColor(40, 145, 108)
	pdf.SetTextColor(255, 255, 255)
	pdf.CellFormat(70, 8, "SUBJECT", "1", 0, "L", true, 0, "")
	pdf.CellFormat(30, 8, "SEMESTER 1", "1", 0, "C", true, 0, "")
	pdf.CellFormat(30, 8, "SEMESTER 2", "1", 0, "C", true, 0, "")
	pdf.CellFormat(30, 8, "YEARLY", "1", 0, "C", true, 0, "")
	pdf.CellFormat(30, 8, "RESULT", "1", 1, "C", true, 0, "")
	pdf.SetTextColor(0, 0, 0)

	pdf.SetFont("Arial", "", 9)
	pdf.SetFillColor(245, 245, 245)
	for i, s := range ev.Summary.Subjects {
		fill := i%2 == 0
		pdf.CellFormat(70, 7, tr(s.Subject), "1", 0, "L", fill, 0, "")
		pdf.CellFormat(30, 7, score(s.Semester1Average), "1", 0, "C", fill, 0, "")
		pdf.CellFormat(30, 7, score(s.Semester2Average), "1", 0, "C", fill, 0, "")
		pdf.CellFormat(30, 7, score(s.YearlyAverage), "1", 0, "C", fill, 0, "")
		pdf.CellFormat(30, 7, s.PassFail, "1", 1, "C", fill, 0, "")
	}
	if len(ev.Summary.Subjects) == 0 {
		pdf.SetFont("Arial", "I", 10)
		pdf.Cell(0, 10, "No grades recorded for this academic year.")
		pdf.Ln(10)
	}
	pdf.SetFont("Arial", "B", 9)
	pdf.CellFormat(130, 7, "OVERALL AVERAGE", "1", 0, "R", false, 0, "")
	pdf.CellFormat(60, 7, fmt.Sprintf("%.2f", ev.Summary.OverallAverage), "1", 1, "C", false, 0, "")
	pdf.Ln(8)

	// Decision
	section(pdf, "DECISION")
	field(pdf, "Result:", string(ev.Status))
	next := "-"
	if ev.PromotedToGrade.Valid {
		next = fmt.Sprintf("%d", ev.PromotedToGrade.Int)
	}
	if ev.Graduated {
		next = "Graduated"
	}
	field(pdf, "Next grade:", next)
	if len(ev.Decision.FailingCoreSubjects) > 0 {
		field(pdf, "Failing core:", tr(strings.Join(ev.Decision.FailingCoreSubjects, ", ")))
	}
	if len(ev.Decision.FailingNonCoreSubjects) > 0 {
		field(pdf, "Failing other:", tr(strings.Join(ev.Decision.FailingNonCoreSubjects, ", ")))
	}
	pdf.Ln(2)
	pdf.SetFont("Arial", "", 10)
	pdf.MultiCell(0, 5, tr(ev.Decision.Reason), "", "L", false)
	pdf.Ln(3)

	if len(ev.Decision.Recommendations) > 0 {
		section(pdf, "RECOMMENDATIONS")
		pdf.SetFont("Arial", "", 10)
		for _, r := range ev.Decision.Recommendations {
			pdf.MultiCell(0, 5, tr("- "+r), "", "L", false)
		}
		pdf.Ln(3)
	}

	// Footer
	pdf.Ln(6)
	pdf.SetFont("Arial", "I", 8)
	pdf.SetTextColor(100, 100, 100)
	pdf.Cell(0, 5, fmt.Sprintf("Document generated on: %s", nowFunc().Format("January 02, 2006 at 3:04 PM")))

	if err := pdf.Output(w); err != nil {
		return errors.Wrap(err, "writing promotion report")
	}
	return nil
}

func section(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Arial", "B", 10)
	pdf.Cell(0, 6, title)
	pdf.Ln(6)
	pdf.SetDrawColor(200, 200, 200)
	pdf.SetLineWidth(0.3)
	pdf.Line(10, pdf.GetY(), 200, pdf.GetY())
	pdf.Ln(3)
}

func field(pdf *gofpdf.Fpdf, label, value string) {
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(40, 6, label)
	pdf.SetFont("Arial", "B", 10)
	pdf.Cell(0, 6, value)
	pdf.Ln(6)
}

func score(avg float64) string {
	if avg <= 0 {
		return "-"
	}
	return fmt.Sprintf("%.2f", avg)
}
