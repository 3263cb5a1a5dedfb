package promotion

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kat-co/vala"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/academic"
	"github.com/trezcool/darasa/core/grade"
	"github.com/trezcool/darasa/core/student"
)

var (
	nowFunc = time.Now // mockable

	// errors
	ErrNoGrades         = core.NewNotFoundError("no grade records found for this academic year")
	ErrIncompleteYear   = core.NewPreconditionError("incomplete academic year: both semesters must be graded")
	ErrAlreadyGraduated = core.NewPreconditionError("student has already graduated")
)

type (
	// Repository is the append-only promotion audit log.
	Repository interface {
		CreatePromotionRecord(ctx context.Context, rec Record) (Record, error)
		// QueryPromotionRecords returns the matching records, newest first.
		QueryPromotionRecords(ctx context.Context, filter QueryFilter) ([]Record, error)
	}

	Service interface {
		// Preview evaluates a student's academic year without changing anything.
		Preview(ctx context.Context, studentID, academicYear string) (Evaluation, error)
		// Promote evaluates a student's academic year and applies the outcome.
		Promote(ctx context.Context, actorID, studentID, academicYear, notes string) (Evaluation, error)
		// PromoteBatch promotes every student of studentIDs; one student's failure does not
		// affect the others.
		PromoteBatch(ctx context.Context, actorID, academicYear string, studentIDs []string) (BatchResult, error)
		History(ctx context.Context, studentID string) ([]Record, error)
	}

	Options struct {
		Students     student.Repository
		Grades       grade.Repository
		Records      Repository
		Transactor   core.Transactor
		Logger       core.Logger
		Notifier     Notifier // optional
		Metrics      *Metrics // optional
		BatchWorkers int      // <= 1 runs batches sequentially
	}

	service struct {
		students     student.Repository
		grades       grade.Repository
		records      Repository
		tx           core.Transactor
		logger       core.Logger
		notifier     Notifier
		metrics      *Metrics
		batchWorkers int
		locks        *keyedMutex
	}
)

var _ Service = (*service)(nil)

func NewService(opts Options) Service {
	return &service{
		students:     opts.Students,
		grades:       opts.Grades,
		records:      opts.Records,
		tx:           opts.Transactor,
		logger:       opts.Logger,
		notifier:     opts.Notifier,
		metrics:      opts.Metrics,
		batchWorkers: opts.BatchWorkers,
		locks:        newKeyedMutex(),
	}
}

// IsRefusal reports whether err is an expected, caller-facing outcome (missing data,
// unmet precondition, invalid argument) rather than a failure.
func IsRefusal(err error) bool {
	if core.IsNotFound(err) || core.IsPreconditionFailed(err) {
		return true
	}
	_, ok := errors.Cause(err).(*core.ValidationError)
	return ok
}

func refusalReason(err error) string {
	switch {
	case core.IsNotFound(err):
		return "not_found"
	case core.IsPreconditionFailed(err):
		return "precondition"
	case IsRefusal(err):
		return "invalid"
	default:
		return "error"
	}
}

func academicYearFormat(academicYear string) vala.Checker {
	return func() (bool, string) {
		return academic.IsValidAcademicYear(academicYear),
			fmt.Sprintf("academicYear %q must be formatted as YYYY/YYYY", academicYear)
	}
}

func checkArgs(checkers ...vala.Checker) error {
	if err := vala.BeginValidation().Validate(checkers...).Check(); err != nil {
		return core.NewValidationError(err)
	}
	return nil
}

func (svc *service) Preview(ctx context.Context, studentID, academicYear string) (Evaluation, error) {
	academicYear = core.CleanString(academicYear)
	if err := checkArgs(vala.StringNotEmpty(studentID, "studentID"), academicYearFormat(academicYear)); err != nil {
		return Evaluation{}, err
	}

	st, err := svc.students.GetStudent(ctx, studentID)
	if err != nil {
		return Evaluation{}, errors.Wrap(err, "finding student")
	}
	ev, err := svc.evaluate(ctx, st, academicYear)
	if err != nil {
		return Evaluation{}, err
	}

	if st.Graduated {
		ev.Warnings = append(ev.Warnings, ErrAlreadyGraduated.Error())
	}
	if !ev.Summary.Semester1Exists {
		ev.Warnings = append(ev.Warnings, "semester 1 has not been graded yet")
	}
	if !ev.Summary.Semester2Exists {
		ev.Warnings = append(ev.Warnings, "semester 2 has not been graded yet")
	}
	if st.PromotionStatus == academic.StatusAskedNotToEnroll {
		ev.Warnings = append(ev.Warnings, "student has asked not to enroll")
	}
	return ev, nil
}

// evaluate aggregates st's grades for academicYear, applies the promotion rules and
// projects the outcome onto st.
func (svc *service) evaluate(ctx context.Context, st student.Student, academicYear string) (Evaluation, error) {
	recs, err := svc.grades.QueryGradeRecords(ctx, grade.QueryFilter{StudentID: st.ID, AcademicYear: academicYear})
	if err != nil {
		return Evaluation{}, errors.Wrap(err, "querying grade records")
	}
	if len(recs) == 0 {
		return Evaluation{}, ErrNoGrades
	}

	summary := Aggregate(recs)
	decision := Decide(summary.Subjects, st.Department)
	ev := Evaluation{
		StudentID:    st.ID,
		StudentName:  st.FullName(),
		AcademicYear: academicYear,
		Department:   st.Department,
		CurrentGrade: st.GradeLevel,
		Status:       decision.Status,
		Decision:     decision,
		Summary:      summary,
		CoreSubjects: academic.CoreSubjects(st.Department),
	}
	switch {
	case decision.CanPromote && st.GradeLevel >= academic.TerminalGrade:
		ev.Status = academic.StatusGraduated
		ev.Graduated = true
	case decision.CanPromote:
		ev.PromotedToGrade = null.IntFrom(st.GradeLevel + 1)
	}
	return ev, nil
}

func (svc *service) Promote(ctx context.Context, actorID, studentID, academicYear, notes string) (Evaluation, error) {
	academicYear = core.CleanString(academicYear)
	if err := checkArgs(vala.StringNotEmpty(studentID, "studentID"), academicYearFormat(academicYear)); err != nil {
		return Evaluation{}, err
	}

	// promotions of the same student never interleave within this process
	unlock := svc.locks.lock(studentID)
	ev, st, err := svc.promote(ctx, actorID, studentID, academicYear, notes)
	unlock()
	if err != nil {
		svc.metrics.observeFailure(refusalReason(err))
		return Evaluation{}, err
	}
	svc.metrics.observeOutcome(Outcome(ev.Status))

	if svc.notifier != nil {
		svc.notifier.NotifyPromotion(ctx, st, ev)
	}
	return ev, nil
}

// promote applies the promotion and returns the evaluation with the updated student.
func (svc *service) promote(ctx context.Context, actorID, studentID, academicYear, notes string) (Evaluation, student.Student, error) {
	st, err := svc.students.GetStudent(ctx, studentID)
	if err != nil {
		return Evaluation{}, student.Student{}, errors.Wrap(err, "finding student")
	}
	if st.Graduated {
		return Evaluation{}, student.Student{}, ErrAlreadyGraduated
	}

	ev, err := svc.evaluate(ctx, st, academicYear)
	if err != nil {
		return Evaluation{}, student.Student{}, err
	}
	if !ev.Summary.Complete() {
		return Evaluation{}, student.Student{}, ErrIncompleteYear
	}

	now := nowFunc().UTC()
	st.PromotionStatus = ev.Status
	st.PromotedToGrade = ev.PromotedToGrade
	if ev.PromotedToGrade.Valid {
		st.GradeLevel = ev.PromotedToGrade.Int
	}
	if ev.Graduated {
		st.Graduated = true
		st.GraduationDate = null.TimeFrom(now)
	}
	st.UpdatedAt = now

	rec := Record{
		StudentID:     st.ID,
		AcademicYear:  academicYear,
		PreviousGrade: ev.CurrentGrade,
		NewGrade:      ev.PromotedToGrade,
		Status:        ev.Status,
		PromotedBy:    actorID,
		Notes:         promotionNotes(ev, notes),
		CreatedAt:     now,
	}

	err = svc.tx.RunInTx(ctx, func(ctx context.Context) error {
		var txErr error
		if st, txErr = svc.students.UpdateStudent(ctx, st); txErr != nil {
			return errors.Wrap(txErr, "updating student")
		}
		if rec, txErr = svc.records.CreatePromotionRecord(ctx, rec); txErr != nil {
			return errors.Wrap(txErr, "recording promotion")
		}
		return nil
	})
	if err != nil {
		return Evaluation{}, student.Student{}, errors.Wrap(err, "applying promotion")
	}
	ev.Record = &rec

	svc.logger.Info(fmt.Sprintf(
		"promotion: student %s %s -> %s (%s)", st.ID, academicYear, ev.Status, ev.Decision.Rule,
	))
	return ev, st, nil
}

// promotionNotes summarizes the rationale of ev, followed by the actor's own notes.
func promotionNotes(ev Evaluation, extra string) string {
	var b strings.Builder
	_, _ = fmt.Fprintf(&b, "%s: %s. Overall average %.2f over %d graded subjects.",
		ev.Status, ev.Decision.Reason, ev.Summary.OverallAverage, ev.Decision.TotalSubjects)
	if ev.Graduated {
		b.WriteString(" Graduated from the terminal grade.")
	}
	if extra = strings.TrimSpace(extra); extra != "" {
		b.WriteString(" ")
		b.WriteString(extra)
	}
	return b.String()
}

func (svc *service) History(ctx context.Context, studentID string) ([]Record, error) {
	if _, err := svc.students.GetStudent(ctx, studentID); err != nil {
		return nil, errors.Wrap(err, "finding student")
	}
	recs, err := svc.records.QueryPromotionRecords(ctx, QueryFilter{StudentID: studentID})
	if err != nil {
		return nil, errors.Wrap(err, "querying promotion records")
	}
	return recs, nil
}
