package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/promotion"
	"github.com/trezcool/darasa/core/student"
)

type promoteOptions struct {
	year      string
	studentID string
	grade     int
	dryRun    bool
}

// promote promotes one student, or every non-graduated student (of a grade level),
// and prints one line per student.
func (cli *commandLine) promote(opts promoteOptions) error {
	ctx := context.Background()

	ids := []string{opts.studentID}
	if opts.studentID == "" {
		graduated := false
		students, err := cli.students.Query(ctx, &student.QueryFilter{GradeLevel: opts.grade, Graduated: &graduated}, nil)
		if err != nil {
			return errors.Wrap(err, "querying students")
		}
		ids = make([]string, 0, len(students))
		for _, st := range students {
			ids = append(ids, st.ID)
		}
	}

	w := tabwriter.NewWriter(cli.out, 0, 4, 2, ' ', 0)
	defer w.Flush()

	if opts.dryRun {
		fmt.Fprintln(w, "STUDENT\tNAME\tGRADE\tOUTCOME\tREASON")
		for _, id := range ids {
			ev, err := cli.promoSvc.Preview(ctx, id, opts.year)
			if err != nil {
				if !promotion.IsRefusal(err) {
					return errors.Wrap(err, "previewing promotion")
				}
				fmt.Fprintf(w, "%s\t\t\terror\t%s\n", id, errors.Cause(err))
				continue
			}
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n", id, ev.StudentName, ev.CurrentGrade, ev.Status, ev.Decision.Reason)
		}
		return nil
	}

	res, err := cli.promoSvc.PromoteBatch(ctx, "admin-cli", opts.year, ids)
	if err != nil {
		return errors.Wrap(err, "promoting students")
	}
	fmt.Fprintln(w, "STUDENT\tSUCCESS\tSTATUS\tMESSAGE")
	for _, item := range res.Items {
		fmt.Fprintf(w, "%s\t%t\t%s\t%s\n", item.StudentID, item.Success, item.Status, item.Message)
	}
	fmt.Fprintf(w, "\npromoted: %d, conditional: %d, not promoted: %d, graduated: %d, errors: %d\n",
		res.Counts.Promoted, res.Counts.Conditional, res.Counts.NotPromoted, res.Counts.Graduated, res.Counts.Errors)
	return nil
}
