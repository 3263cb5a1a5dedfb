package promotion

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/mail"
	"strconv"
	"strings"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/student"
)

const promotionResultTemplate = "promotion_result"

type (
	// Notifier is told about every committed promotion.
	Notifier interface {
		NotifyPromotion(ctx context.Context, st student.Student, ev Evaluation)
	}

	// ReportGenerator renders the printable report of an Evaluation.
	ReportGenerator interface {
		WritePromotionReport(w io.Writer, ev Evaluation) error
	}

	guardianNotifier struct {
		mailSvc         core.EmailService
		reports         ReportGenerator
		logger          core.Logger
		frontendBaseURL string
	}

	promotionResultData struct {
		AcademicYear    string
		StudentName     string
		Status          string
		PreviousGrade   int
		NewGrade        string
		Reason          string
		Recommendations []string
	}
)

// NewGuardianNotifier emails promotion results, with the PDF report attached, to the
// student's guardian. Students without a guardian email are skipped.
func NewGuardianNotifier(mailSvc core.EmailService, reports ReportGenerator, logger core.Logger, frontendBaseURL string) Notifier {
	return &guardianNotifier{
		mailSvc:         mailSvc,
		reports:         reports,
		logger:          logger,
		frontendBaseURL: frontendBaseURL,
	}
}

func (n *guardianNotifier) NotifyPromotion(_ context.Context, st student.Student, ev Evaluation) {
	if st.GuardianEmail == "" {
		return
	}

	data := promotionResultData{
		AcademicYear:    ev.AcademicYear,
		StudentName:     ev.StudentName,
		Status:          string(ev.Status),
		PreviousGrade:   ev.CurrentGrade,
		Reason:          ev.Decision.Reason,
		Recommendations: ev.Decision.Recommendations,
	}
	if ev.PromotedToGrade.Valid {
		data.NewGrade = strconv.Itoa(ev.PromotedToGrade.Int)
	}

	msg := (&core.EmailMessage{
		To:           []mail.Address{{Name: st.FullName(), Address: st.GuardianEmail}},
		Subject:      fmt.Sprintf("%s promotion results: %s", ev.AcademicYear, ev.StudentName),
		TemplateName: promotionResultTemplate,
		TemplateData: data,
	}).WithFrontendBaseURL(n.frontendBaseURL)

	if n.reports != nil {
		var buf bytes.Buffer
		if err := n.reports.WritePromotionReport(&buf, ev); err != nil {
			n.logger.Error(fmt.Sprintf("rendering promotion report for %s: %v", st.ID, err), err)
		} else if err = msg.Attach(&buf, ReportFilename(ev), "application/pdf"); err != nil {
			n.logger.Error(fmt.Sprintf("attaching promotion report for %s: %v", st.ID, err), err)
		}
	}
	n.mailSvc.SendMessages(msg)
}

// ReportFilename names the PDF report of ev, e.g. "promotion-2024-2025-ama-mensah.pdf".
func ReportFilename(ev Evaluation) string {
	name := strings.ToLower(strings.Join(strings.Fields(ev.StudentName), "-"))
	year := strings.ReplaceAll(ev.AcademicYear, "/", "-")
	return fmt.Sprintf("promotion-%s-%s.pdf", year, name)
}
