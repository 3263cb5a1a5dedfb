package echoapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/darasa/core/academic"
	"github.com/trezcool/darasa/core/grade"
	"github.com/trezcool/darasa/core/promotion"
	"github.com/trezcool/darasa/core/student"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (app *testApp) enroll(t *testing.T, level int) student.Student {
	t.Helper()
	rec := app.do(http.MethodPost, "/v1/students", app.token(t, app.admin), student.NewStudent{
		FirstName:     "Ama",
		LastName:      "Mensah",
		GuardianEmail: "guardian@example.com",
		GradeLevel:    level,
		Department:    "jhs",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var st student.Student
	decode(t, rec, &st)
	return st
}

func jhsRecord(semester int, avg float64) grade.NewRecord {
	nr := grade.NewRecord{AcademicYear: testYear, Semester: semester}
	for _, subject := range academic.Subjects(academic.DepartmentJHS)[:8] {
		nr.Subjects = append(nr.Subjects, grade.NewSubjectScore{Subject: subject, Scores: []float64{avg - 5, avg + 5}})
	}
	return nr
}

func (app *testApp) saveGrades(t *testing.T, studentID string, nr grade.NewRecord) {
	t.Helper()
	rec := app.do(http.MethodPut, "/v1/students/"+studentID+"/grades", app.token(t, app.teacher), nr)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestStudentAPI(t *testing.T) {
	app := setup(t)
	st := app.enroll(t, 7)
	assert.Equal(t, academic.DepartmentJHS, st.Department)
	assert.Equal(t, academic.StatusNotPromoted, st.PromotionStatus)

	tests := []struct {
		name     string
		method   string
		path     string
		token    string
		body     interface{}
		wantCode int
	}{
		{"list as teacher", http.MethodGet, "/v1/students?grade_level=7", app.token(t, app.teacher), nil, http.StatusOK},
		{"list as student", http.MethodGet, "/v1/students", app.token(t, app.student), nil, http.StatusForbidden},
		{"retrieve", http.MethodGet, "/v1/students/" + st.ID, app.token(t, app.teacher), nil, http.StatusOK},
		{"retrieve unknown", http.MethodGet, "/v1/students/ghost", app.token(t, app.teacher), nil, http.StatusNotFound},
		{"create as teacher", http.MethodPost, "/v1/students", app.token(t, app.teacher), student.NewStudent{}, http.StatusForbidden},
		{"create invalid", http.MethodPost, "/v1/students", app.token(t, app.admin), student.NewStudent{FirstName: "X", LastName: "Y", GradeLevel: 13, Department: "Law"}, http.StatusBadRequest},
		{"enrollment status", http.MethodPut, "/v1/students/" + st.ID + "/enrollment-status", app.token(t, app.admin), student.EnrollmentStatus{Status: academic.StatusAskedNotToEnroll}, http.StatusOK},
		{"enrollment status promoted", http.MethodPut, "/v1/students/" + st.ID + "/enrollment-status", app.token(t, app.admin), student.EnrollmentStatus{Status: academic.StatusPromoted}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := app.do(tt.method, tt.path, tt.token, tt.body)
			assert.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
		})
	}
}

func TestGradeAPI(t *testing.T) {
	app := setup(t)
	st := app.enroll(t, 7)

	app.saveGrades(t, st.ID, jhsRecord(academic.Semester1, 80))

	t.Run("unknown subject", func(t *testing.T) {
		nr := jhsRecord(academic.Semester2, 80)
		nr.Subjects[0].Subject = "Astrology"
		rec := app.do(http.MethodPut, "/v1/students/"+st.ID+"/grades", app.token(t, app.teacher), nr)
		assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	})

	t.Run("query", func(t *testing.T) {
		rec := app.do(http.MethodGet, "/v1/students/"+st.ID+"/grades?"+yearQuery(testYear), app.token(t, app.teacher), nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var recs []grade.Record
		decode(t, rec, &recs)
		require.Len(t, recs, 1)
		assert.Equal(t, 80.0, recs[0].Subjects[0].SemesterAverage.Float64)
	})
}

func TestPromotionAPI(t *testing.T) {
	app := setup(t)
	st := app.enroll(t, 7)
	staff := app.token(t, app.teacher)
	admin := app.token(t, app.admin)

	t.Run("refusals", func(t *testing.T) {
		tests := []struct {
			name     string
			path     string
			wantCode int
		}{
			{"no grades", "/v1/promotions/" + st.ID + "/preview?" + yearQuery(testYear), http.StatusNotFound},
			{"unknown student", "/v1/promotions/ghost/preview?" + yearQuery(testYear), http.StatusNotFound},
			{"malformed year", "/v1/promotions/" + st.ID + "/preview?" + yearQuery("2024"), http.StatusBadRequest},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				rec := app.do(http.MethodGet, tt.path, staff, nil)
				require.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
				var got envelope
				decode(t, rec, &got)
				assert.False(t, got.Success)
				assert.NotEmpty(t, got.Message)
			})
		}
	})

	app.saveGrades(t, st.ID, jhsRecord(academic.Semester1, 80))

	t.Run("incomplete year", func(t *testing.T) {
		rec := app.do(http.MethodPost, "/v1/promotions/"+st.ID, admin, PromoteRequest{AcademicYear: testYear})
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
		var got envelope
		decode(t, rec, &got)
		assert.False(t, got.Success)
		assert.Equal(t, promotion.ErrIncompleteYear.Error(), got.Message)
	})

	app.saveGrades(t, st.ID, jhsRecord(academic.Semester2, 80))

	t.Run("preview", func(t *testing.T) {
		rec := app.do(http.MethodGet, "/v1/promotions/"+st.ID+"/preview?"+yearQuery(testYear), staff, nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var got envelope
		decode(t, rec, &got)
		assert.True(t, got.Success)
		var ev promotion.Evaluation
		require.NoError(t, json.Unmarshal(got.Data, &ev))
		assert.Equal(t, academic.StatusPromoted, ev.Status)
		assert.Equal(t, 8, ev.PromotedToGrade.Int)
		assert.Nil(t, ev.Record)
	})

	t.Run("report", func(t *testing.T) {
		rec := app.do(http.MethodGet, "/v1/promotions/"+st.ID+"/report?"+yearQuery(testYear), staff, nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
		assert.Contains(t, rec.Header().Get("Content-Disposition"), "promotion-2024-2025-ama-mensah.pdf")
		assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF-")))
	})

	t.Run("promote requires admin", func(t *testing.T) {
		rec := app.do(http.MethodPost, "/v1/promotions/"+st.ID, staff, PromoteRequest{AcademicYear: testYear})
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("promote", func(t *testing.T) {
		rec := app.do(http.MethodPost, "/v1/promotions/"+st.ID, admin, PromoteRequest{AcademicYear: testYear, Notes: "end of year"})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var got envelope
		decode(t, rec, &got)
		assert.True(t, got.Success)
		var ev promotion.Evaluation
		require.NoError(t, json.Unmarshal(got.Data, &ev))
		require.NotNil(t, ev.Record)
		assert.Equal(t, app.admin.ID, ev.Record.PromotedBy)
		assert.Contains(t, ev.Record.Notes, "end of year")
	})

	t.Run("history", func(t *testing.T) {
		rec := app.do(http.MethodGet, "/v1/promotions/"+st.ID+"/history", staff, nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var got envelope
		decode(t, rec, &got)
		var recs []promotion.Record
		require.NoError(t, json.Unmarshal(got.Data, &recs))
		require.Len(t, recs, 1)
		assert.Equal(t, 7, recs[0].PreviousGrade)
		assert.Equal(t, 8, recs[0].NewGrade.Int)
	})
}

func TestPromotionAPI_batch(t *testing.T) {
	app := setup(t)
	admin := app.token(t, app.admin)

	promoted := app.enroll(t, 7)
	app.saveGrades(t, promoted.ID, jhsRecord(academic.Semester1, 80))
	app.saveGrades(t, promoted.ID, jhsRecord(academic.Semester2, 80))

	failing := app.enroll(t, 8)
	app.saveGrades(t, failing.ID, jhsRecord(academic.Semester1, 50))
	app.saveGrades(t, failing.ID, jhsRecord(academic.Semester2, 50))

	incomplete := app.enroll(t, 9)
	app.saveGrades(t, incomplete.ID, jhsRecord(academic.Semester1, 80))

	rec := app.do(http.MethodPost, "/v1/promotions/batch", admin, BatchRequest{
		AcademicYear: testYear,
		StudentIDs:   []string{promoted.ID, failing.ID, incomplete.ID},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var got envelope
	decode(t, rec, &got)
	assert.True(t, got.Success)
	var res promotion.BatchResult
	require.NoError(t, json.Unmarshal(got.Data, &res))
	assert.Equal(t, 3, res.Total)
	assert.Equal(t, promotion.BatchCounts{Promoted: 1, NotPromoted: 1, Errors: 1}, res.Counts)
	require.Len(t, res.Items, 3)
	assert.Equal(t, incomplete.ID, res.Items[2].StudentID)
	assert.False(t, res.Items[2].Success)

	t.Run("malformed year", func(t *testing.T) {
		rec := app.do(http.MethodPost, "/v1/promotions/batch", admin, BatchRequest{AcademicYear: "2024-2025"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
