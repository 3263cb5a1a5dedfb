package inmemdb

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/darasa/core/academic"
	"github.com/trezcool/darasa/core/grade"
	"github.com/trezcool/darasa/core/promotion"
	"github.com/trezcool/darasa/core/student"
	"github.com/trezcool/darasa/core/user"
)

var errAbort = errors.New("abort")

func TestDB_RunInTx(t *testing.T) {
	ctx := context.Background()

	t.Run("commit", func(t *testing.T) {
		db := Open()
		students := NewStudentRepository(db)

		var st student.Student
		err := db.RunInTx(ctx, func(ctx context.Context) error {
			var err error
			st, err = students.CreateStudent(ctx, student.Student{FirstName: "Ama", GradeLevel: 7})
			return err
		})
		require.NoError(t, err)

		_, err = students.GetStudent(ctx, st.ID)
		assert.NoError(t, err)
	})

	t.Run("rollback only undoes its own rows", func(t *testing.T) {
		db := Open()
		students := NewStudentRepository(db)
		grades := NewGradeRepository(db)
		records := NewPromotionRepository(db)

		st, err := students.CreateStudent(ctx, student.Student{FirstName: "Ama", GradeLevel: 7})
		require.NoError(t, err)

		var (
			other    student.Student
			gradeRec grade.Record
		)
		err = db.RunInTx(ctx, func(txCtx context.Context) error {
			promoted := st
			promoted.GradeLevel = 8
			promoted.PromotionStatus = academic.StatusPromoted
			if _, err := students.UpdateStudent(txCtx, promoted); err != nil {
				return err
			}
			if _, err := records.CreatePromotionRecord(txCtx, promotion.Record{StudentID: st.ID}); err != nil {
				return err
			}

			// writes made outside the transaction meanwhile
			var err error
			if other, err = students.CreateStudent(ctx, student.Student{FirstName: "Kofi", GradeLevel: 9}); err != nil {
				return err
			}
			if gradeRec, err = grades.UpsertGradeRecord(ctx, grade.Record{StudentID: st.ID, AcademicYear: "2024/2025", Semester: 1}); err != nil {
				return err
			}
			return errAbort
		})
		assert.Equal(t, errAbort, err)

		got, err := students.GetStudent(ctx, st.ID)
		require.NoError(t, err)
		assert.Equal(t, st, got)

		recs, err := records.QueryPromotionRecords(ctx, promotion.QueryFilter{StudentID: st.ID})
		require.NoError(t, err)
		assert.Empty(t, recs)

		_, err = students.GetStudent(ctx, other.ID)
		assert.NoError(t, err)
		gradeRecs, err := grades.QueryGradeRecords(ctx, grade.QueryFilter{StudentID: st.ID})
		require.NoError(t, err)
		require.Len(t, gradeRecs, 1)
		assert.Equal(t, gradeRec.ID, gradeRecs[0].ID)
	})

	t.Run("rollback restores deleted rows in place", func(t *testing.T) {
		db := Open()
		users := NewUserRepository(db)

		var ids []string
		for _, uname := range []string{"abena", "kojo", "yaw"} {
			usr, err := users.CreateUser(ctx, user.User{Username: uname, Email: uname + "@darasa.test"})
			require.NoError(t, err)
			ids = append(ids, usr.ID)
		}

		err := db.RunInTx(ctx, func(ctx context.Context) error {
			if _, err := users.DeleteUsersByID(ctx, ids[1]); err != nil {
				return err
			}
			return errAbort
		})
		assert.Equal(t, errAbort, err)
		assert.Equal(t, ids, db.user.order)
	})

	t.Run("nested calls join the outer transaction", func(t *testing.T) {
		db := Open()
		students := NewStudentRepository(db)

		err := db.RunInTx(ctx, func(ctx context.Context) error {
			err := db.RunInTx(ctx, func(ctx context.Context) error {
				_, err := students.CreateStudent(ctx, student.Student{FirstName: "Ama"})
				return err
			})
			require.NoError(t, err)
			return errAbort
		})
		assert.Equal(t, errAbort, err)

		all, err := students.QueryStudents(ctx, nil, nil)
		require.NoError(t, err)
		assert.Empty(t, all)
	})
}
