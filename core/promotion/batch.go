package promotion

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/trezcool/darasa/core"
)

const (
	msgDuplicateInBatch = "student is listed more than once in this batch"
	msgUnexpected       = "an unexpected error occurred"
)

func (svc *service) PromoteBatch(ctx context.Context, actorID, academicYear string, studentIDs []string) (BatchResult, error) {
	academicYear = core.CleanString(academicYear)
	if err := checkArgs(academicYearFormat(academicYear)); err != nil {
		return BatchResult{}, err
	}
	svc.metrics.observeBatch()

	res := BatchResult{
		AcademicYear: academicYear,
		Total:        len(studentIDs),
		Items:        make([]BatchItem, len(studentIDs)),
	}

	// only the first occurrence of a student is promoted
	seen := make(map[string]bool, len(studentIDs))
	duplicate := make([]bool, len(studentIDs))
	for i, id := range studentIDs {
		duplicate[i] = seen[id]
		seen[id] = true
	}

	run := func(i int) {
		id := studentIDs[i]
		switch {
		case duplicate[i]:
			res.Items[i] = BatchItem{StudentID: id, Message: msgDuplicateInBatch}
			return
		case ctx.Err() != nil:
			res.Items[i] = BatchItem{StudentID: id, Message: "batch cancelled: " + ctx.Err().Error()}
			return
		}

		ev, err := svc.Promote(ctx, actorID, id, academicYear, "")
		if err != nil {
			res.Items[i] = BatchItem{StudentID: id, Message: svc.failureMessage(id, err)}
			return
		}
		res.Items[i] = BatchItem{StudentID: id, Success: true, Message: ev.Decision.Reason, Status: ev.Status}
	}

	if svc.batchWorkers <= 1 {
		for i := range studentIDs {
			run(i)
		}
	} else {
		// every goroutine writes its own item; none returns an error
		var g errgroup.Group
		g.SetLimit(svc.batchWorkers)
		for i := range studentIDs {
			i := i
			g.Go(func() error {
				run(i)
				return nil
			})
		}
		_ = g.Wait()
	}

	for _, item := range res.Items {
		if !item.Success {
			res.Counts.Errors++
			continue
		}
		switch Outcome(item.Status) {
		case OutcomePromoted:
			res.Counts.Promoted++
		case OutcomeConditional:
			res.Counts.Conditional++
		case OutcomeGraduated:
			res.Counts.Graduated++
		default:
			res.Counts.NotPromoted++
		}
	}
	return res, nil
}

// failureMessage is the caller-facing message of a failed promotion; unexpected
// failures are logged and reported generically.
func (svc *service) failureMessage(studentID string, err error) string {
	if IsRefusal(err) {
		return errors.Cause(err).Error()
	}
	svc.logger.Error(fmt.Sprintf("promoting student %s: %v", studentID, err), err)
	return msgUnexpected
}
